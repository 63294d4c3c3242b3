package scrape

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/shoplens/shoplens-cli/internal/model"
	"github.com/shoplens/shoplens-cli/pkg/jina"
)

// maxPageChars truncates reader output to stay inside the prompt budget.
const maxPageChars = 50000

// Completer produces a text completion for a prompt.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Extractor fetches a product page through the reader service and extracts
// structured fields with a single generative call.
type Extractor struct {
	reader jina.Client
	llm    Completer
}

// NewExtractor creates an Extractor.
func NewExtractor(reader jina.Client, llm Completer) *Extractor {
	return &Extractor{reader: reader, llm: llm}
}

// extraction is the strict field schema the generative layer must return.
type extraction struct {
	Title        string   `json:"title"`
	Brand        string   `json:"brand"`
	Price        string   `json:"price"`
	Currency     string   `json:"currency"`
	Rating       string   `json:"rating"`
	TotalReviews string   `json:"total_reviews"`
	Category     string   `json:"category"`
	Availability string   `json:"availability"`
	Features     []string `json:"features"`
}

// Extract fetches url and returns the extracted item fields. Platform and
// ProductID are left for the calling scraper to fill in.
func (e *Extractor) Extract(ctx context.Context, url string) (*model.SourceItem, error) {
	page, err := e.reader.Read(ctx, url)
	if err != nil {
		return nil, eris.Wrapf(err, "scrape: fetch %s", url)
	}

	content := page.Data.Content
	if content == "" {
		return nil, eris.Errorf("scrape: empty page content for %s", url)
	}
	if isBlockedContent(content) {
		return nil, eris.Errorf("scrape: automated access blocked for %s", url)
	}
	if len(content) > maxPageChars {
		content = content[:maxPageChars]
		zap.L().Debug("scrape: page content truncated",
			zap.String("url", url),
			zap.Int("chars", maxPageChars),
		)
	}

	resp, err := e.llm.Complete(ctx, extractionPrompt(content, url))
	if err != nil {
		return nil, eris.Wrapf(err, "scrape: extract fields for %s", url)
	}

	ex, err := parseExtraction(resp)
	if err != nil {
		return nil, eris.Wrapf(err, "scrape: parse extraction for %s", url)
	}
	if ex.Title == "" {
		return nil, eris.Errorf("scrape: extraction returned no title for %s", url)
	}

	return &model.SourceItem{
		URL:          url,
		Title:        ex.Title,
		Brand:        ex.Brand,
		Price:        ex.Price,
		Currency:     ex.Currency,
		Rating:       ex.Rating,
		TotalReviews: ex.TotalReviews,
		Category:     ex.Category,
		Availability: ex.Availability,
		Features:     ex.Features,
	}, nil
}

func extractionPrompt(content, url string) string {
	var b strings.Builder
	b.WriteString("Extract the product listing fields from this marketplace page.\n\n")
	fmt.Fprintf(&b, "URL: %s\n\nPage content:\n%s\n\n", url, content)
	b.WriteString("Respond with a single JSON object using exactly these keys and no others:\n")
	b.WriteString(`{"title": "", "brand": "", "price": "", "currency": "", "rating": "", "total_reviews": "", "category": "", "availability": "", "features": []}` + "\n")
	b.WriteString("All values except features are strings; features is an array of short strings. Use \"\" for anything the page does not show.\n")
	return b.String()
}

var (
	fencedJSONPattern = regexp.MustCompile("(?s)```json\\s*(\\{.*?\\})\\s*```")
	rawJSONPattern    = regexp.MustCompile(`(?s)(\{.*\})`)
)

// parseExtraction decodes the JSON object in a completion, tolerating a
// markdown code fence around it. Unknown keys are rejected so schema drift
// in the generative layer surfaces as an error instead of silent data loss.
func parseExtraction(text string) (*extraction, error) {
	jsonStr := text
	if m := fencedJSONPattern.FindStringSubmatch(text); m != nil {
		jsonStr = m[1]
	} else if m := rawJSONPattern.FindStringSubmatch(text); m != nil {
		jsonStr = m[1]
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(jsonStr)))
	dec.DisallowUnknownFields()

	var ex extraction
	if err := dec.Decode(&ex); err != nil {
		return nil, eris.Wrap(err, "decode extraction json")
	}
	return &ex, nil
}
