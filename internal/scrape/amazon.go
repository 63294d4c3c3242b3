package scrape

import (
	"context"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/shoplens/shoplens-cli/internal/model"
)

var amazonDomains = []string{"amazon.com", "amazon.in", "amazon.co.uk", "amazon.de", "amazon.fr"}

// ASIN is 10 alphanumeric characters after one of the known path markers.
var asinPatterns = []*regexp.Regexp{
	regexp.MustCompile(`/dp/([A-Z0-9]{10})`),
	regexp.MustCompile(`/gp/product/([A-Z0-9]{10})`),
	regexp.MustCompile(`/ASIN/([A-Z0-9]{10})`),
	regexp.MustCompile(`/product/([A-Z0-9]{10})`),
}

// AmazonScraper scrapes Amazon product listings.
type AmazonScraper struct {
	extractor *Extractor
}

// NewAmazon creates an AmazonScraper.
func NewAmazon(extractor *Extractor) *AmazonScraper {
	return &AmazonScraper{extractor: extractor}
}

func (s *AmazonScraper) Platform() string { return "amazon" }

func (s *AmazonScraper) Supports(url string) bool {
	lower := strings.ToLower(url)
	for _, d := range amazonDomains {
		if strings.Contains(lower, d) {
			return s.ExtractProductID(url) != ""
		}
	}
	return false
}

func (s *AmazonScraper) ExtractProductID(url string) string {
	for _, p := range asinPatterns {
		if m := p.FindStringSubmatch(url); m != nil {
			return m[1]
		}
	}
	return ""
}

func (s *AmazonScraper) Scrape(ctx context.Context, url string) (*model.SourceItem, error) {
	asin := s.ExtractProductID(url)
	if !s.Supports(url) {
		return nil, eris.Wrapf(ErrUnsupportedURL, "not an amazon product url: %s", url)
	}

	zap.L().Info("scraping product",
		zap.String("platform", s.Platform()),
		zap.String("product_id", asin),
	)

	item, err := s.extractor.Extract(ctx, url)
	if err != nil {
		return nil, err
	}
	item.Platform = s.Platform()
	item.ProductID = asin
	return item, nil
}
