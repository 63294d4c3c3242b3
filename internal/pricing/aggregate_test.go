package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoplens/shoplens-cli/internal/match"
	"github.com/shoplens/shoplens-cli/internal/model"
	"github.com/shoplens/shoplens-cli/pkg/serper"
)

func newAggregator() *Aggregator {
	return NewAggregator(match.NewDefault(), 0)
}

func TestAggregate_SpecScenario(t *testing.T) {
	raw := []serper.ShoppingResult{
		{Title: "Phone X 128GB Black", Price: "$699", Source: "Amazon.com"},
		{Title: "Phone X 128GB Black", Price: "$649", Source: "eBay"},
		{Title: "Phone X 128GB Black", Price: "$0", Source: "Amazon.com"},
	}

	report := newAggregator().Aggregate(raw, "amazon", "Phone X 128GB Black")

	require.Len(t, report.Groups, 1)
	require.Len(t, report.Groups["ebay"], 1)
	assert.Equal(t, 649.0, report.Groups["ebay"][0].Price)

	assert.Equal(t, model.PriceSummary{Min: 649, Max: 649, Mean: 649, Median: 649, Count: 1}, report.Summary)

	require.NotNil(t, report.BestDeal)
	assert.Equal(t, "ebay", report.BestDeal.Platform)
	assert.Equal(t, 649.0, report.BestDeal.Price)
	assert.Equal(t, 0.0, report.BestDeal.Savings)
	assert.Equal(t, 0.0, report.BestDeal.SavingsPercent)
	assert.Equal(t, 1, report.TotalCount)
}

func TestAggregate_NeverIncludesSourcePlatform(t *testing.T) {
	raw := []serper.ShoppingResult{
		{Title: "Phone X 128GB", Price: "$700", Source: "Amazon.in"},
		{Title: "Phone X 128GB", Price: "$710", Source: "amazon"},
		{Title: "Phone X 128GB", Price: "$650", Source: "Walmart"},
	}

	report := newAggregator().Aggregate(raw, "amazon", "Phone X 128GB")

	for platform := range report.Groups {
		assert.NotEqual(t, "amazon", platform)
	}
	assert.Equal(t, 1, report.TotalCount)
}

func TestAggregate_DropsNonMatchingProducts(t *testing.T) {
	raw := []serper.ShoppingResult{
		{Title: "Apple iPhone 15 Pro 128GB Blue", Price: "₹1,29,900", Source: "Flipkart"},
		{Title: "iPhone 15 Pro tempered glass screen protector", Price: "₹299", Source: "Flipkart"},
	}

	report := newAggregator().Aggregate(raw, "amazon", "Apple iPhone 15 Pro 128GB Blue")

	require.Len(t, report.Groups["flipkart"], 1)
	assert.Contains(t, report.Groups["flipkart"][0].Title, "128GB")
}

func TestAggregate_EmptyInput(t *testing.T) {
	report := newAggregator().Aggregate(nil, "amazon", "Phone X")

	assert.Empty(t, report.Groups)
	assert.Equal(t, model.PriceSummary{}, report.Summary)
	assert.Nil(t, report.BestDeal)
	assert.Zero(t, report.TotalCount)
}

func TestAggregate_UnpricedOffersKeptInGroupsExcludedFromStats(t *testing.T) {
	raw := []serper.ShoppingResult{
		{Title: "Phone X 128GB Black", Price: "$649", Source: "eBay"},
		{Title: "Phone X 128GB Black", Price: "", Source: "Walmart"},
	}

	report := newAggregator().Aggregate(raw, "amazon", "Phone X 128GB Black")

	assert.Len(t, report.Groups, 2)
	assert.Equal(t, 1, report.Summary.Count)
	assert.Equal(t, 2, report.TotalCount)
}

func TestSummarize(t *testing.T) {
	offers := []model.Offer{
		{Price: 100}, {Price: 300}, {Price: 200}, {Price: 400},
	}

	s := Summarize(offers)
	assert.Equal(t, 100.0, s.Min)
	assert.Equal(t, 400.0, s.Max)
	assert.Equal(t, 250.0, s.Mean)
	assert.Equal(t, 250.0, s.Median)
	assert.Equal(t, 4, s.Count)
}

func TestSummarize_OddCountMedian(t *testing.T) {
	s := Summarize([]model.Offer{{Price: 10}, {Price: 90}, {Price: 20}})
	assert.Equal(t, 20.0, s.Median)
}

func TestFindBestDeal_TieBrokenByRating(t *testing.T) {
	offers := []model.Offer{
		{Platform: "ebay", Price: 649, Rating: 4.1},
		{Platform: "walmart", Price: 649, Rating: 4.8},
		{Platform: "croma", Price: 699, Rating: 5.0},
	}

	deal := FindBestDeal(offers)
	require.NotNil(t, deal)
	assert.Equal(t, "walmart", deal.Platform)
	assert.Equal(t, 50.0, deal.Savings)
	assert.InDelta(t, 7.15, deal.SavingsPercent, 0.01)
}

func TestFindBestDeal_SavingsNeverNegative(t *testing.T) {
	deal := FindBestDeal([]model.Offer{{Price: 500}})
	require.NotNil(t, deal)
	assert.GreaterOrEqual(t, deal.Savings, 0.0)
	assert.Equal(t, 0.0, deal.SavingsPercent)
}

func TestNormalizeOffer(t *testing.T) {
	offer := NormalizeOffer(serper.ShoppingResult{
		Title:       "Phone X 128GB",
		Price:       "₹15,999",
		URL:         "https://www.google.com/url?q=https://flipkart.com/phone-x&sa=D",
		Source:      "Flipkart.com",
		Rating:      4.3,
		RatingCount: 812,
	})

	assert.Equal(t, 15999.0, offer.Price)
	assert.Equal(t, "INR", offer.Currency)
	assert.Equal(t, "https://flipkart.com/phone-x", offer.URL)
	assert.Equal(t, "flipkart", offer.Platform)
	assert.True(t, offer.InStock)
}

func TestNormalizeOffer_PreParsedPriceWins(t *testing.T) {
	offer := NormalizeOffer(serper.ShoppingResult{Price: "$1,299.00", ExtractedPrice: 1299})
	assert.Equal(t, 1299.0, offer.Price)
	assert.Equal(t, "USD", offer.Currency)
}

func TestNormalizeOffer_UnparseablePrice(t *testing.T) {
	offer := NormalizeOffer(serper.ShoppingResult{Price: "call for price"})
	assert.Equal(t, 0.0, offer.Price)
	assert.Equal(t, DefaultCurrency, offer.Currency)
}

func TestDirectURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://google.com/url?q=https://ebay.com/itm/1", "https://ebay.com/itm/1"},
		{"https://www.google.com/shopping/product?url=https://croma.com/x", "https://croma.com/x"},
		{"https://ebay.com/itm/1", "https://ebay.com/itm/1"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DirectURL(tt.in))
	}
}

func TestPlatformFromSource(t *testing.T) {
	assert.Equal(t, "amazon", PlatformFromSource("Amazon.in"))
	assert.Equal(t, "flipkart", PlatformFromSource("Flipkart.com"))
	assert.Equal(t, "tata", PlatformFromSource("Tata CLiQ"))
	// Unknown sellers keep their own name.
	assert.Equal(t, "reliance digital", PlatformFromSource("Reliance Digital"))
}
