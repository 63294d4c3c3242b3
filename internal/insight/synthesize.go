// Package insight filters web-search findings for relevance and distills
// them into key findings, red flags, and an overall sentiment.
package insight

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/shoplens/shoplens-cli/internal/model"
)

const (
	// poolLimit caps how many pooled findings feed each synthesis prompt.
	poolLimit = 20
	// sentimentPoolLimit caps the sentiment prompt, which inlines snippets.
	sentimentPoolLimit = 15
)

// Completer produces a text completion for a prompt.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Synthesizer runs the relevance filters and synthesis operations.
type Synthesizer struct {
	llm Completer
}

// NewSynthesizer creates a Synthesizer around llm.
func NewSynthesizer(llm Completer) *Synthesizer {
	return &Synthesizer{llm: llm}
}

// Synthesize filters each category for relevance and distills the pooled
// findings into key findings, red flags, and sentiment. All seven generative
// operations run concurrently; any individual failure degrades that operation
// (filters fail open, synthesis falls back to a neutral result) and is
// recorded in the bundle's Degraded list. Synthesize never returns an error.
func (s *Synthesizer) Synthesize(ctx context.Context, raw map[model.FindingCategory][]model.SearchFinding, productName string) *model.InsightBundle {
	// Pool the raw findings in canonical category order. Synthesis reads
	// this pre-filter pool so all seven operations can run concurrently.
	var pool []model.SearchFinding
	for _, cat := range model.Categories() {
		pool = append(pool, raw[cat]...)
	}

	bundle := &model.InsightBundle{
		Issues:       raw[model.CategoryIssues],
		Videos:       extractVideos(pool),
		TotalSources: len(pool),
	}
	if bundle.Issues == nil {
		bundle.Issues = []model.SearchFinding{}
	}

	var (
		mu       sync.Mutex
		degraded []string
	)
	markDegraded := func(op string, err error) {
		zap.L().Warn("insight operation degraded",
			zap.String("op", op),
			zap.String("product", productName),
			zap.Error(err),
		)
		mu.Lock()
		degraded = append(degraded, op)
		mu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(7)

	filtered := map[model.FindingCategory]*[]model.SearchFinding{
		model.CategoryReviews:     &bundle.Reviews,
		model.CategoryComparisons: &bundle.Comparisons,
		model.CategorySocial:      &bundle.Social,
		model.CategoryNews:        &bundle.News,
	}
	for cat, dst := range filtered {
		g.Go(func() error {
			kept, err := s.filterCategory(gctx, cat, raw[cat], productName)
			if err != nil {
				markDegraded("filter:"+string(cat), err)
				kept = raw[cat] // fail open
			}
			if kept == nil {
				kept = []model.SearchFinding{}
			}
			*dst = kept
			return nil
		})
	}

	g.Go(func() error {
		findings, err := s.keyFindings(gctx, pool, productName)
		if err != nil {
			markDegraded("key_findings", err)
			findings = []string{"No key findings could be generated"}
		}
		bundle.KeyFindings = findings
		return nil
	})

	g.Go(func() error {
		flags, err := s.redFlags(gctx, pool, productName)
		if err != nil {
			markDegraded("red_flags", err)
			flags = []string{}
		}
		bundle.RedFlags = flags
		return nil
	})

	g.Go(func() error {
		sentiment, err := s.sentiment(gctx, pool, productName)
		if err != nil {
			markDegraded("sentiment", err)
			sentiment = neutralSentiment()
		}
		bundle.Overall = sentiment
		return nil
	})

	_ = g.Wait() // goroutines always return nil; failures degrade in place

	bundle.Degraded = degraded
	return bundle
}

// filterCategory asks the generative layer which findings to keep, by
// 1-based index. A "NONE" response keeps nothing.
func (s *Synthesizer) filterCategory(ctx context.Context, cat model.FindingCategory, findings []model.SearchFinding, productName string) ([]model.SearchFinding, error) {
	if len(findings) == 0 {
		return []model.SearchFinding{}, nil
	}

	resp, err := s.llm.Complete(ctx, filterPrompt(cat, productName, findings))
	if err != nil {
		return nil, err
	}

	keep, none := parseKeepList(resp)
	if none {
		zap.L().Debug("all findings filtered as irrelevant",
			zap.String("category", string(cat)),
			zap.String("product", productName),
		)
		return []model.SearchFinding{}, nil
	}

	kept := make([]model.SearchFinding, 0, len(findings))
	for i, f := range findings {
		if keep[i+1] {
			kept = append(kept, f)
		}
	}
	if removed := len(findings) - len(kept); removed > 0 {
		zap.L().Debug("filtered irrelevant findings",
			zap.String("category", string(cat)),
			zap.Int("removed", removed),
		)
	}
	return kept, nil
}

func (s *Synthesizer) keyFindings(ctx context.Context, pool []model.SearchFinding, productName string) ([]string, error) {
	if len(pool) == 0 {
		return []string{"No external information found"}, nil
	}

	resp, err := s.llm.Complete(ctx, keyFindingsPrompt(productName, pool))
	if err != nil {
		return nil, err
	}

	findings := parseKeyFindings(resp)
	if len(findings) == 0 {
		return []string{"Analysis completed but no specific findings extracted"}, nil
	}
	return findings, nil
}

func (s *Synthesizer) redFlags(ctx context.Context, pool []model.SearchFinding, productName string) ([]string, error) {
	if len(pool) == 0 {
		return []string{}, nil
	}

	resp, err := s.llm.Complete(ctx, redFlagsPrompt(productName, pool))
	if err != nil {
		return nil, err
	}
	return parseRedFlags(resp), nil
}

func (s *Synthesizer) sentiment(ctx context.Context, pool []model.SearchFinding, productName string) (model.Sentiment, error) {
	if len(pool) == 0 {
		return neutralSentiment(), nil
	}

	resp, err := s.llm.Complete(ctx, sentimentPrompt(productName, pool))
	if err != nil {
		return model.Sentiment{}, err
	}
	return parseSentiment(resp), nil
}

func neutralSentiment() model.Sentiment {
	return model.Sentiment{
		Label:      "unknown",
		Confidence: "low",
		Summary:    "No external data available for sentiment analysis",
	}
}

// extractVideos pulls findings hosted on known video platforms out of the
// pool. Extraction is independent of relevance filtering.
func extractVideos(pool []model.SearchFinding) []model.VideoMention {
	videos := []model.VideoMention{}
	for _, f := range pool {
		url := strings.ToLower(f.URL)
		if strings.Contains(url, "youtube.com") || strings.Contains(url, "youtu.be") {
			videos = append(videos, model.VideoMention{
				Title:   f.Title,
				URL:     f.URL,
				Channel: f.Source,
				Snippet: f.Snippet,
			})
		}
	}
	return videos
}
