// Package pricing normalizes raw shopping results into cross-platform
// price comparisons.
package pricing

import (
	"math"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/shoplens/shoplens-cli/internal/match"
	"github.com/shoplens/shoplens-cli/internal/model"
	"github.com/shoplens/shoplens-cli/pkg/serper"
)

// DefaultCurrency is assumed when no currency symbol is recognized.
const DefaultCurrency = "INR"

var nonPricePattern = regexp.MustCompile(`[^\d.]`)

// knownPlatforms maps seller-name substrings to canonical platform tags.
// Order matters: first hit wins.
var knownPlatforms = []string{
	"amazon", "flipkart", "ebay", "walmart", "myntra", "snapdeal", "croma", "tata",
}

// Aggregator turns raw shopping results into grouped, summarized offers.
type Aggregator struct {
	matcher   *match.Matcher
	threshold float64
}

// NewAggregator creates an Aggregator using the given matcher. A threshold
// of 0 uses the matcher default.
func NewAggregator(matcher *match.Matcher, threshold float64) *Aggregator {
	return &Aggregator{matcher: matcher, threshold: threshold}
}

// Aggregate normalizes raw results, drops the source platform's own
// listings and any offer that is not the same product as referenceTitle,
// then groups survivors by platform and computes summary statistics and
// the best deal over the positively-priced subset. A nil or empty input
// yields a well-formed empty report.
func (a *Aggregator) Aggregate(raw []serper.ShoppingResult, sourcePlatform, referenceTitle string) model.PriceReport {
	sourceTag := PlatformFromSource(sourcePlatform)

	var offers []model.Offer
	ownPlatform, noMatch := 0, 0
	for _, r := range raw {
		offer := NormalizeOffer(r)
		if offer.Platform == sourceTag {
			ownPlatform++
			continue
		}
		if !a.matcher.IsSameProduct(referenceTitle, offer.Title, a.threshold) {
			noMatch++
			continue
		}
		offers = append(offers, offer)
	}

	zap.L().Debug("pricing: filtered offers",
		zap.Int("kept", len(offers)),
		zap.Int("own_platform", ownPlatform),
		zap.Int("no_match", noMatch),
	)

	priced := make([]model.Offer, 0, len(offers))
	for _, o := range offers {
		if o.Price > 0 {
			priced = append(priced, o)
		}
	}

	groups := make(model.OfferGroup)
	for _, o := range offers {
		groups[o.Platform] = append(groups[o.Platform], o)
	}

	return model.PriceReport{
		Groups:     groups,
		Summary:    Summarize(priced),
		BestDeal:   FindBestDeal(priced),
		TotalCount: len(offers),
	}
}

// NormalizeOffer converts one raw shopping result into an Offer: price
// parsed from the display string when no pre-parsed value exists, redirect
// URLs unwrapped, currency derived from the price symbol.
func NormalizeOffer(r serper.ShoppingResult) model.Offer {
	price := r.ExtractedPrice
	if price == 0 && r.Price != "" {
		price = parsePrice(r.Price)
	}

	return model.Offer{
		Title:       r.Title,
		Price:       price,
		Currency:    currencyFromPrice(r.Price),
		URL:         DirectURL(r.URL),
		Seller:      r.Source,
		Platform:    PlatformFromSource(r.Source),
		Rating:      r.Rating,
		ReviewCount: r.RatingCount,
		Delivery:    r.Delivery,
		InStock:     true, // listed implies available
	}
}

// Summarize computes price statistics over offers that all carry a
// positive price. An empty input yields the zero summary.
func Summarize(priced []model.Offer) model.PriceSummary {
	if len(priced) == 0 {
		return model.PriceSummary{}
	}

	prices := make([]float64, len(priced))
	var sum float64
	for i, o := range priced {
		prices[i] = o.Price
		sum += o.Price
	}
	sort.Float64s(prices)

	var median float64
	n := len(prices)
	if n%2 == 1 {
		median = prices[n/2]
	} else {
		median = (prices[n/2-1] + prices[n/2]) / 2
	}

	return model.PriceSummary{
		Min:    prices[0],
		Max:    prices[n-1],
		Mean:   sum / float64(n),
		Median: median,
		Count:  n,
	}
}

// FindBestDeal picks the lowest-priced offer, breaking ties by higher
// rating, and computes savings against the highest price in the subset.
// Returns nil when no positively-priced offer exists.
func FindBestDeal(priced []model.Offer) *model.BestDeal {
	if len(priced) == 0 {
		return nil
	}

	sorted := make([]model.Offer, len(priced))
	copy(sorted, priced)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Price != sorted[j].Price {
			return sorted[i].Price < sorted[j].Price
		}
		return sorted[i].Rating > sorted[j].Rating
	})

	best := sorted[0]
	maxPrice := sorted[len(sorted)-1].Price

	savings := maxPrice - best.Price
	var savingsPercent float64
	if maxPrice > 0 {
		savingsPercent = savings / maxPrice * 100
	}

	return &model.BestDeal{
		Platform:       best.Platform,
		Title:          best.Title,
		Price:          best.Price,
		Currency:       best.Currency,
		URL:            best.URL,
		Seller:         best.Seller,
		Rating:         best.Rating,
		Savings:        round2(savings),
		SavingsPercent: round2(savingsPercent),
	}
}

// PlatformFromSource derives a canonical platform tag from a seller name.
// Unknown sellers keep their own lowercased name rather than collapsing
// into an "other" bucket.
func PlatformFromSource(source string) string {
	lower := strings.ToLower(strings.TrimSpace(source))
	for _, p := range knownPlatforms {
		if strings.Contains(lower, p) {
			return p
		}
	}
	return lower
}

// DirectURL unwraps redirect-style URLs from known redirect hosts,
// extracting the q or url query parameter. Anything else passes through
// unchanged.
func DirectURL(raw string) string {
	if raw == "" {
		return ""
	}
	if !strings.Contains(raw, "google.com/url") && !strings.Contains(raw, "google.com/shopping") {
		return raw
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := parsed.Query()
	if target := q.Get("q"); target != "" {
		return target
	}
	if target := q.Get("url"); target != "" {
		return target
	}
	return raw
}

// parsePrice strips everything but digits and dots and parses the rest.
// Unparseable strings become 0.
func parsePrice(s string) float64 {
	clean := nonPricePattern.ReplaceAllString(s, "")
	v, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return 0
	}
	return v
}

func currencyFromPrice(s string) string {
	switch {
	case strings.Contains(s, "₹"):
		return "INR"
	case strings.Contains(s, "$"):
		return "USD"
	case strings.Contains(s, "€"):
		return "EUR"
	case strings.Contains(s, "£"):
		return "GBP"
	default:
		return DefaultCurrency
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
