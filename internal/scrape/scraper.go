// Package scrape turns marketplace product URLs into SourceItems. Page
// content is fetched through the reader service and fields are extracted
// by the generative layer, so no per-site HTML parsing rules live here.
package scrape

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/shoplens/shoplens-cli/internal/model"
)

// ErrUnsupportedURL marks URLs no registered scraper can handle.
var ErrUnsupportedURL = eris.New("scrape: unsupported url")

// Scraper collects the base listing data for one marketplace.
type Scraper interface {
	// Scrape fetches and extracts the product at url.
	Scrape(ctx context.Context, url string) (*model.SourceItem, error)
	// ExtractProductID derives the platform-specific product ID from url,
	// or "" when none is present. Must be deterministic and side-effect-free.
	ExtractProductID(url string) string
	// Supports reports whether url belongs to this scraper's platform.
	Supports(url string) bool
	// Platform returns the platform tag, e.g. "amazon".
	Platform() string
}

// Factory selects the scraper for a URL.
type Factory struct {
	scrapers []Scraper
}

// NewFactory creates a Factory over the given scrapers.
func NewFactory(scrapers ...Scraper) *Factory {
	return &Factory{scrapers: scrapers}
}

// ForURL returns the scraper that supports url, or ErrUnsupportedURL.
func (f *Factory) ForURL(url string) (Scraper, error) {
	for _, s := range f.scrapers {
		if s.Supports(url) {
			return s, nil
		}
	}
	return nil, eris.Wrapf(ErrUnsupportedURL, "%s", url)
}
