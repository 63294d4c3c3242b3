package scrape

import (
	"context"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/shoplens/shoplens-cli/internal/model"
)

// Flipkart URLs carry the item ID as ?pid=<FSN>, a /p/<FSN> path segment,
// or an itm<FSN> token.
var (
	flipkartPidPattern  = regexp.MustCompile(`(?i)[?&]pid=([A-Z0-9]+)`)
	flipkartPathPattern = regexp.MustCompile(`(?i)/p/([A-Z0-9]+)`)
	flipkartItmPattern  = regexp.MustCompile(`(?i)itm([a-z0-9]+)`)
)

// FlipkartScraper scrapes Flipkart product listings.
type FlipkartScraper struct {
	extractor *Extractor
}

// NewFlipkart creates a FlipkartScraper.
func NewFlipkart(extractor *Extractor) *FlipkartScraper {
	return &FlipkartScraper{extractor: extractor}
}

func (s *FlipkartScraper) Platform() string { return "flipkart" }

func (s *FlipkartScraper) Supports(url string) bool {
	if !strings.Contains(strings.ToLower(url), "flipkart.com") {
		return false
	}
	return s.ExtractProductID(url) != ""
}

func (s *FlipkartScraper) ExtractProductID(url string) string {
	if m := flipkartPidPattern.FindStringSubmatch(url); m != nil {
		return m[1]
	}
	if m := flipkartPathPattern.FindStringSubmatch(url); m != nil {
		return m[1]
	}
	if m := flipkartItmPattern.FindStringSubmatch(url); m != nil {
		return m[1]
	}
	return ""
}

func (s *FlipkartScraper) Scrape(ctx context.Context, url string) (*model.SourceItem, error) {
	pid := s.ExtractProductID(url)
	if !s.Supports(url) {
		return nil, eris.Wrapf(ErrUnsupportedURL, "not a flipkart product url: %s", url)
	}

	zap.L().Info("scraping product",
		zap.String("platform", s.Platform()),
		zap.String("product_id", pid),
	)

	item, err := s.extractor.Extract(ctx, url)
	if err != nil {
		return nil, err
	}
	item.Platform = s.Platform()
	item.ProductID = pid
	return item, nil
}
