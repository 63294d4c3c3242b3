package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoplens/shoplens-cli/internal/enrich"
	"github.com/shoplens/shoplens-cli/internal/model"
	"github.com/shoplens/shoplens-cli/internal/scrape"
)

type fakeScraper struct {
	item       *model.SourceItem
	err        error
	scrapes    int
	productID  string
	supportAll bool
}

func (f *fakeScraper) Scrape(_ context.Context, _ string) (*model.SourceItem, error) {
	f.scrapes++
	if f.err != nil {
		return nil, f.err
	}
	return f.item, nil
}

func (f *fakeScraper) ExtractProductID(string) string { return f.productID }
func (f *fakeScraper) Supports(string) bool           { return f.supportAll }
func (f *fakeScraper) Platform() string               { return "amazon" }

type memCache struct {
	entries map[string][]byte
	getErr  error
	setErr  error
	sets    int
}

func newMemCache() *memCache {
	return &memCache{entries: map[string][]byte{}}
}

func (m *memCache) Get(_ context.Context, key string) ([]byte, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.entries[key], nil
}

func (m *memCache) SetWithTTL(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.sets++
	if m.setErr != nil {
		return m.setErr
	}
	m.entries[key] = value
	return nil
}

func (m *memCache) Purge(context.Context) (int, error) { return 0, nil }
func (m *memCache) Migrate(context.Context) error      { return nil }
func (m *memCache) Close() error                       { return nil }

type fakeEnricher struct {
	result *enrich.Result
	calls  int
}

func (f *fakeEnricher) Enrich(context.Context, *model.SourceItem) *enrich.Result {
	f.calls++
	return f.result
}

type fakeCompleter struct {
	response string
	err      error
	calls    int
}

func (f *fakeCompleter) Complete(_ context.Context, _ string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func testItem() *model.SourceItem {
	return &model.SourceItem{
		Platform:  "amazon",
		ProductID: "B0CHX1W1XY",
		URL:       "https://www.amazon.in/dp/B0CHX1W1XY",
		Title:     "Sony WH-1000XM5 Wireless Headphones",
		Brand:     "Sony",
		Price:     "26990",
		Currency:  "INR",
	}
}

func testEnrichResult() *enrich.Result {
	return &enrich.Result{
		Prices: model.PriceReport{
			Groups: model.OfferGroup{
				"flipkart": {
					{Title: "Sony WH-1000XM5", Price: 25990, Currency: "INR", URL: "https://flipkart.com/p/1", InStock: true},
				},
			},
			Summary:    model.PriceSummary{Min: 25990, Max: 25990, Mean: 25990, Median: 25990, Count: 1},
			TotalCount: 1,
		},
		Insights: &model.InsightBundle{
			KeyFindings:  []string{"Widely praised noise cancellation"},
			RedFlags:     []string{},
			TotalSources: 4,
		},
	}
}

type fixture struct {
	scraper  *fakeScraper
	cache    *memCache
	enricher *fakeEnricher
	llm      *fakeCompleter
	orch     *Orchestrator
}

func newFixture(opts Options) *fixture {
	f := &fixture{
		scraper:  &fakeScraper{item: testItem(), productID: "B0CHX1W1XY", supportAll: true},
		cache:    newMemCache(),
		enricher: &fakeEnricher{result: testEnrichResult()},
		llm:      &fakeCompleter{response: "A solid buy at the current price."},
	}
	f.orch = New(scrape.NewFactory(f.scraper), f.cache, f.enricher, f.llm, opts)
	return f
}

func TestRun_InvalidInput(t *testing.T) {
	t.Parallel()

	f := newFixture(Options{})
	f.scraper.supportAll = false

	out := f.orch.Run(context.Background(), "https://example.com/not-a-product")

	assert.False(t, out.Success)
	assert.Nil(t, out.Data)
	require.Len(t, out.Errors, 1)
	assert.Contains(t, out.Errors[0], "Invalid input:")
	assert.Zero(t, f.scraper.scrapes)
	assert.Zero(t, f.cache.sets)
}

func TestRun_ScrapeFailureIsFatal(t *testing.T) {
	t.Parallel()

	f := newFixture(Options{})
	f.scraper.err = errors.New("listing page blocked")

	out := f.orch.Run(context.Background(), "https://www.amazon.in/dp/B0CHX1W1XY")

	assert.False(t, out.Success)
	assert.Nil(t, out.Data)
	require.NotEmpty(t, out.Errors)
	assert.Contains(t, out.Errors[0], "Scraping error: listing page blocked")
	assert.Zero(t, f.cache.sets, "nothing should be cached on scrape failure")
	assert.Zero(t, f.enricher.calls)
}

func TestRun_FullFetchPath(t *testing.T) {
	t.Parallel()

	f := newFixture(Options{})

	out := f.orch.Run(context.Background(), "https://www.amazon.in/dp/B0CHX1W1XY")

	require.True(t, out.Success)
	assert.NotEmpty(t, out.RunID)
	assert.Empty(t, out.Errors)
	require.NotNil(t, out.Data)
	assert.Equal(t, model.RecordVersion, out.Data.Version)
	assert.Equal(t, "Sony WH-1000XM5 Wireless Headphones", out.Data.Item.Title)
	require.NotNil(t, out.Data.PriceComparison)
	require.NotNil(t, out.Data.WebSearch)

	require.Len(t, out.Data.CompetitorPrices, 1)
	assert.Equal(t, "flipkart", out.Data.CompetitorPrices[0].Site)
	assert.Equal(t, "₹25,990", out.Data.CompetitorPrices[0].Price)
	assert.Equal(t, "In Stock", out.Data.CompetitorPrices[0].Availability)

	assert.Equal(t, "A solid buy at the current price.", out.Analysis)

	assert.Contains(t, f.cache.entries, "item:B0CHX1W1XY")
	assert.Equal(t, []byte("A solid buy at the current price."), f.cache.entries["item:B0CHX1W1XY:analysis"])
}

func TestRun_FullyCachedSkipsScrape(t *testing.T) {
	t.Parallel()

	f := newFixture(Options{})

	first := f.orch.Run(context.Background(), "https://www.amazon.in/dp/B0CHX1W1XY")
	require.True(t, first.Success)
	require.Equal(t, 1, f.scraper.scrapes)

	second := f.orch.Run(context.Background(), "https://www.amazon.in/dp/B0CHX1W1XY")

	require.True(t, second.Success)
	assert.Equal(t, 1, f.scraper.scrapes, "cached run must not scrape again")
	assert.Equal(t, 1, f.enricher.calls)
	assert.Equal(t, 1, f.llm.calls, "cached analysis must not be regenerated")
	require.NotNil(t, second.Data)
	assert.Equal(t, first.Data.Item.Title, second.Data.Item.Title)
	assert.Equal(t, first.Analysis, second.Analysis)
}

func TestRun_PartialCachedRecordRefetches(t *testing.T) {
	t.Parallel()

	f := newFixture(Options{})

	partial := &model.EnrichedRecord{
		Version: model.RecordVersion,
		Item:    *testItem(),
		// WebSearch missing while the feature is enabled.
		PriceComparison: &model.PriceReport{},
	}
	data, err := json.Marshal(partial)
	require.NoError(t, err)
	f.cache.entries["item:B0CHX1W1XY"] = data

	out := f.orch.Run(context.Background(), "https://www.amazon.in/dp/B0CHX1W1XY")

	require.True(t, out.Success)
	assert.Equal(t, 1, f.scraper.scrapes, "incomplete record must trigger a refetch")
	require.NotNil(t, out.Data.WebSearch)
}

func TestRun_VersionMismatchRefetches(t *testing.T) {
	t.Parallel()

	f := newFixture(Options{})

	stale := &model.EnrichedRecord{
		Version:         model.RecordVersion + 1,
		Item:            *testItem(),
		PriceComparison: &model.PriceReport{},
		WebSearch:       &model.InsightBundle{},
	}
	data, err := json.Marshal(stale)
	require.NoError(t, err)
	f.cache.entries["item:B0CHX1W1XY"] = data

	out := f.orch.Run(context.Background(), "https://www.amazon.in/dp/B0CHX1W1XY")

	require.True(t, out.Success)
	assert.Equal(t, 1, f.scraper.scrapes)
}

func TestRun_DataCachedOnlySummarizes(t *testing.T) {
	t.Parallel()

	f := newFixture(Options{})

	complete := &model.EnrichedRecord{
		Version:         model.RecordVersion,
		Item:            *testItem(),
		PriceComparison: &model.PriceReport{},
		WebSearch:       &model.InsightBundle{},
	}
	data, err := json.Marshal(complete)
	require.NoError(t, err)
	f.cache.entries["item:B0CHX1W1XY"] = data

	out := f.orch.Run(context.Background(), "https://www.amazon.in/dp/B0CHX1W1XY")

	require.True(t, out.Success)
	assert.Zero(t, f.scraper.scrapes)
	assert.Zero(t, f.enricher.calls)
	assert.Equal(t, 1, f.llm.calls)
	assert.Equal(t, "A solid buy at the current price.", out.Analysis)
	assert.Contains(t, f.cache.entries, "item:B0CHX1W1XY:analysis")
}

func TestRun_FeatureFlagsRelaxCompleteness(t *testing.T) {
	t.Parallel()

	f := newFixture(Options{DisablePrices: true})

	rec := &model.EnrichedRecord{
		Version:   model.RecordVersion,
		Item:      *testItem(),
		WebSearch: &model.InsightBundle{},
	}
	data, err := json.Marshal(rec)
	require.NoError(t, err)
	f.cache.entries["item:B0CHX1W1XY"] = data
	f.cache.entries["item:B0CHX1W1XY:analysis"] = []byte("cached analysis")

	out := f.orch.Run(context.Background(), "https://www.amazon.in/dp/B0CHX1W1XY")

	require.True(t, out.Success)
	assert.Zero(t, f.scraper.scrapes, "record without prices is complete when prices are disabled")
	assert.Equal(t, "cached analysis", out.Analysis)
	assert.Zero(t, f.llm.calls)
}

func TestRun_SummarizeFailureKeepsData(t *testing.T) {
	t.Parallel()

	f := newFixture(Options{})
	f.llm.err = errors.New("model overloaded")

	out := f.orch.Run(context.Background(), "https://www.amazon.in/dp/B0CHX1W1XY")

	require.True(t, out.Success, "analysis failure must not fail the run")
	require.NotNil(t, out.Data)
	assert.Empty(t, out.Analysis)
	require.NotEmpty(t, out.Errors)
	assert.Contains(t, out.Errors[len(out.Errors)-1], "Analysis error: model overloaded")
	assert.NotContains(t, f.cache.entries, "item:B0CHX1W1XY:analysis")
}

func TestRun_CacheSaveFailureIsRecorded(t *testing.T) {
	t.Parallel()

	f := newFixture(Options{})
	f.cache.setErr = errors.New("disk full")

	out := f.orch.Run(context.Background(), "https://www.amazon.in/dp/B0CHX1W1XY")

	require.True(t, out.Success)
	require.NotNil(t, out.Data)
	assert.Equal(t, "A solid buy at the current price.", out.Analysis)

	var saveErrs int
	for _, e := range out.Errors {
		if strings.Contains(e, "Cache save error: disk full") {
			saveErrs++
		}
	}
	assert.Equal(t, 2, saveErrs, "record and analysis writes both fail")
}

func TestRun_CacheCheckErrorFallsThroughToFetch(t *testing.T) {
	t.Parallel()

	f := newFixture(Options{})
	f.cache.getErr = errors.New("connection refused")

	out := f.orch.Run(context.Background(), "https://www.amazon.in/dp/B0CHX1W1XY")

	require.True(t, out.Success)
	assert.Equal(t, 1, f.scraper.scrapes)
	require.NotEmpty(t, out.Errors)
	assert.Contains(t, out.Errors[0], "Cache check error: connection refused")
}

func TestRun_BranchErrorsPropagate(t *testing.T) {
	t.Parallel()

	f := newFixture(Options{})
	f.enricher.result.Errors = []string{"Price comparison error: search quota exceeded"}

	out := f.orch.Run(context.Background(), "https://www.amazon.in/dp/B0CHX1W1XY")

	require.True(t, out.Success)
	assert.Contains(t, out.Errors, "Price comparison error: search quota exceeded")
}

func TestFlattenCompetitors(t *testing.T) {
	t.Parallel()

	groups := model.OfferGroup{
		"flipkart": {
			{Price: 25990, Currency: "INR", URL: "https://flipkart.com/p/1", InStock: true},
			{Price: 0, Currency: "INR", URL: "https://flipkart.com/p/2", InStock: false},
		},
		"ebay": {
			{Price: 312.50, Currency: "USD", URL: "https://ebay.com/i/3", InStock: true},
		},
	}

	got := flattenCompetitors(groups)

	require.Len(t, got, 3)
	assert.Equal(t, "USD 312.50", got[0].Price)
	assert.Equal(t, "₹25,990", got[1].Price)
	assert.Equal(t, "N/A", got[2].Price, "unpriced offers sort last")
	assert.Equal(t, "Out of Stock", got[2].Availability)
}

func TestFlattenCompetitors_CapsAtFive(t *testing.T) {
	t.Parallel()

	offers := make([]model.Offer, 0, 8)
	for i := 0; i < 8; i++ {
		offers = append(offers, model.Offer{
			Price:    float64(1000 + i*100),
			Currency: "INR",
			InStock:  true,
		})
	}

	got := flattenCompetitors(model.OfferGroup{"flipkart": offers})

	require.Len(t, got, maxCompetitors)
	assert.Equal(t, "₹1,000", got[0].Price)
	assert.Equal(t, "₹1,400", got[4].Price)
}

func TestFormatPrice(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		price    float64
		currency string
		want     string
	}{
		{"rupees grouped no decimals", 64900, "INR", "₹64,900"},
		{"empty currency treated as rupees", 1250, "", "₹1,250"},
		{"foreign currency keeps decimals", 1234.5, "USD", "USD 1,234.50"},
		{"zero price", 0, "INR", "N/A"},
		{"negative price", -1, "USD", "N/A"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, formatPrice(tt.price, tt.currency))
		})
	}
}
