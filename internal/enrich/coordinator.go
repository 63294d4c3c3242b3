// Package enrich fans a scraped item out into the price-comparison and
// web-search branches and joins their results.
package enrich

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/shoplens/shoplens-cli/internal/model"
	"github.com/shoplens/shoplens-cli/internal/pricing"
	"github.com/shoplens/shoplens-cli/pkg/serper"
)

// Searcher is the subset of the search client the coordinator needs.
type Searcher interface {
	Search(ctx context.Context, query string, opts ...serper.SearchOption) ([]serper.WebResult, error)
	Shopping(ctx context.Context, query string, opts ...serper.SearchOption) ([]serper.ShoppingResult, error)
}

// Synthesizer turns raw category findings into an InsightBundle.
type Synthesizer interface {
	Synthesize(ctx context.Context, raw map[model.FindingCategory][]model.SearchFinding, productName string) *model.InsightBundle
}

// Result is the joined output of both enrichment branches.
type Result struct {
	Prices   model.PriceReport
	Insights *model.InsightBundle
	Errors   []string
}

// Coordinator runs the two enrichment branches concurrently.
type Coordinator struct {
	search     Searcher
	aggregator *pricing.Aggregator
	insights   Synthesizer
}

// NewCoordinator creates a Coordinator.
func NewCoordinator(search Searcher, aggregator *pricing.Aggregator, insights Synthesizer) *Coordinator {
	return &Coordinator{
		search:     search,
		aggregator: aggregator,
		insights:   insights,
	}
}

// categoryQueries builds the five web-search queries for a product name.
func categoryQueries(name string) map[model.FindingCategory]string {
	return map[model.FindingCategory]string{
		model.CategoryReviews:     "Reviews of " + name,
		model.CategoryComparisons: name + " vs alternatives comparison",
		model.CategoryIssues:      name + " problems issues complaints",
		model.CategorySocial:      name + " site:reddit.com",
		model.CategoryNews:        name + " news launch announcement",
	}
}

// Enrich runs the price-comparison and web-search branches concurrently.
// A branch failure is caught inside the branch: it yields an empty result
// for its shape, records a descriptive error, and never aborts the sibling.
func (c *Coordinator) Enrich(ctx context.Context, item *model.SourceItem) *Result {
	res := &Result{}

	var mu sync.Mutex
	record := func(format string, args ...any) {
		mu.Lock()
		res.Errors = append(res.Errors, fmt.Sprintf(format, args...))
		mu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(2)

	g.Go(func() error {
		res.Prices = c.comparePrices(gctx, item, record)
		return nil
	})

	g.Go(func() error {
		res.Insights = c.searchWeb(gctx, item, record)
		return nil
	})

	_ = g.Wait()
	return res
}

// comparePrices issues a shopping search for the item's title and
// aggregates the results. On search failure it returns a well-formed empty
// report so the merge step always has the full shape.
func (c *Coordinator) comparePrices(ctx context.Context, item *model.SourceItem, record func(string, ...any)) model.PriceReport {
	query := searchQuery(func(name string) string { return name }, item.Title)

	zap.L().Debug("price comparison search",
		zap.String("platform", item.Platform),
		zap.String("query", query),
	)

	results, err := c.search.Shopping(ctx, query, serper.WithNumResults(10))
	if err != nil {
		record("Price comparison error: %v", err)
		results = nil
	}

	return c.aggregator.Aggregate(results, item.Platform, item.Title)
}

// searchWeb issues the five category searches concurrently, filters out the
// item's own platform (and non-reddit results for the social category), and
// synthesizes the pooled findings.
func (c *Coordinator) searchWeb(ctx context.Context, item *model.SourceItem, record func(string, ...any)) *model.InsightBundle {
	var mu sync.Mutex
	raw := make(map[model.FindingCategory][]model.SearchFinding, 5)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(5)

	for _, cat := range model.Categories() {
		g.Go(func() error {
			q := buildCategoryQuery(cat, item.Title)

			results, err := c.search.Search(gctx, q, serper.WithNumResults(10))
			if err != nil {
				record("Web search error (%s): %v", cat, err)
				return nil
			}

			findings := make([]model.SearchFinding, 0, len(results))
			for _, r := range results {
				if isSourcePlatformURL(r.URL, item.Platform) {
					continue
				}
				if cat == model.CategorySocial && !strings.Contains(strings.ToLower(r.URL), "reddit.com") {
					continue
				}
				findings = append(findings, model.SearchFinding{
					Title:   r.Title,
					Snippet: r.Snippet,
					URL:     r.URL,
					Source:  r.Source,
					Date:    r.Date,
				})
			}

			mu.Lock()
			raw[cat] = findings
			mu.Unlock()
			return nil
		})
	}

	_ = g.Wait()

	return c.insights.Synthesize(ctx, raw, item.Title)
}

// buildCategoryQuery builds one category query, shortening the title when
// the result would exceed the query cap.
func buildCategoryQuery(cat model.FindingCategory, title string) string {
	return searchQuery(func(name string) string {
		return categoryQueries(name)[cat]
	}, title)
}

// platformDomains maps a source platform to the marketplace domains whose
// results are excluded from external findings.
var platformDomains = map[string][]string{
	"amazon":   {"amazon.in", "amazon.com"},
	"flipkart": {"flipkart.com"},
	"ebay":     {"ebay.in", "ebay.com"},
	"walmart":  {"walmart.com"},
	"myntra":   {"myntra.com"},
	"snapdeal": {"snapdeal.com"},
}

func isSourcePlatformURL(rawURL, platform string) bool {
	if platform == "" {
		return false
	}
	domains, ok := platformDomains[strings.ToLower(platform)]
	if !ok {
		return false
	}
	lower := strings.ToLower(rawURL)
	for _, d := range domains {
		if strings.Contains(lower, d) {
			return true
		}
	}
	return false
}
