// Package workflow drives the cache-gated enrichment run for one catalog
// item: check cache, scrape, fan out, combine, persist, summarize.
package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/shoplens/shoplens-cli/internal/cache"
	"github.com/shoplens/shoplens-cli/internal/enrich"
	"github.com/shoplens/shoplens-cli/internal/model"
	"github.com/shoplens/shoplens-cli/internal/scrape"
)

// DefaultCacheTTL bounds staleness of cached records and analyses.
const DefaultCacheTTL = 24 * time.Hour

// Enricher runs the price and web-search branches for a scraped item.
type Enricher interface {
	Enrich(ctx context.Context, item *model.SourceItem) *enrich.Result
}

// Completer produces a text completion for a prompt.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Options tunes an Orchestrator.
type Options struct {
	// CacheTTL overrides DefaultCacheTTL when positive.
	CacheTTL time.Duration
	// DisablePrices drops the price-comparison requirement from cache
	// completeness checks and skips that branch's output in Combine.
	DisablePrices bool
	// DisableWebSearch does the same for the web-search branch.
	DisableWebSearch bool
}

// Orchestrator is the top-level state machine for one enrichment run.
type Orchestrator struct {
	factory  *scrape.Factory
	cache    cache.Cache
	enricher Enricher
	llm      Completer
	opts     Options
}

// New creates an Orchestrator.
func New(factory *scrape.Factory, c cache.Cache, enricher Enricher, llm Completer, opts Options) *Orchestrator {
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = DefaultCacheTTL
	}
	return &Orchestrator{
		factory:  factory,
		cache:    c,
		enricher: enricher,
		llm:      llm,
		opts:     opts,
	}
}

// run carries the mutable state of a single run between transitions.
type run struct {
	url       string
	productID string
	scraper   scrape.Scraper

	item     *model.SourceItem
	enriched *enrich.Result
	record   *model.EnrichedRecord
	analysis string

	errors []string
	fatal  bool
}

func (r *run) recordError(format string, args ...any) {
	r.errors = append(r.errors, fmt.Sprintf(format, args...))
}

func (r *run) dataKey() string     { return "item:" + r.productID }
func (r *run) analysisKey() string { return "item:" + r.productID + ":analysis" }

// Run executes the state machine for url. It always returns a structured
// outcome; Success is false only when the input was invalid or the scrape
// itself failed.
func (o *Orchestrator) Run(ctx context.Context, url string) *model.RunOutcome {
	runID := uuid.New().String()
	log := zap.L().With(zap.String("run_id", runID), zap.String("url", url))
	log.Info("workflow: starting run")

	r := &run{url: url}

	scraper, err := o.factory.ForURL(url)
	if err != nil {
		// Invalid input is fatal before any network call.
		log.Warn("workflow: invalid input", zap.Error(err))
		return &model.RunOutcome{
			RunID:   runID,
			Success: false,
			Errors:  []string{fmt.Sprintf("Invalid input: %v", err)},
		}
	}
	r.scraper = scraper
	r.productID = scraper.ExtractProductID(url)

	for state := StateCheckCache; state != StateDone; {
		next := o.transition(ctx, state, r)
		log.Debug("workflow: transition",
			zap.String("from", string(state)),
			zap.String("to", string(next)),
		)
		state = next
	}

	outcome := &model.RunOutcome{
		RunID:    runID,
		Success:  !r.fatal,
		Data:     r.record,
		Analysis: r.analysis,
		Errors:   r.errors,
	}
	log.Info("workflow: run complete",
		zap.Bool("success", outcome.Success),
		zap.Int("errors", len(outcome.Errors)),
	)
	return outcome
}

// transition executes one state and returns the next.
func (o *Orchestrator) transition(ctx context.Context, s State, r *run) State {
	switch s {
	case StateCheckCache:
		return o.checkCache(ctx, r)
	case StateFullyCached:
		return StateDone
	case StateDataCached:
		return StateSummarize
	case StateFetch:
		return StateScrape
	case StateScrape:
		return o.scrape(ctx, r)
	case StateEnrich:
		r.enriched = o.enricher.Enrich(ctx, r.item)
		r.errors = append(r.errors, r.enriched.Errors...)
		return StateCombine
	case StateCombine:
		r.record = o.combine(r)
		return StatePersistCache
	case StatePersistCache:
		o.persist(ctx, r)
		return StateSummarize
	case StateSummarize:
		return o.summarize(ctx, r)
	default:
		return StateDone
	}
}

// checkCache decides how much of the run can be skipped. A cached record
// missing any sub-record this deployment produces is treated as absent: a
// partially-enriched record is never served as complete.
func (o *Orchestrator) checkCache(ctx context.Context, r *run) State {
	data, err := o.cache.Get(ctx, r.dataKey())
	if err != nil {
		r.recordError("Cache check error: %v", err)
		return StateFetch
	}
	if data == nil {
		return StateFetch
	}

	var rec model.EnrichedRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		r.recordError("Cache check error: %v", err)
		return StateFetch
	}

	if !o.cacheComplete(&rec) {
		zap.L().Debug("workflow: partial cached record, refetching",
			zap.String("product_id", r.productID),
		)
		return StateFetch
	}

	r.record = &rec

	analysis, err := o.cache.Get(ctx, r.analysisKey())
	if err != nil {
		r.recordError("Cache check error: %v", err)
		return StateDataCached
	}
	if analysis != nil {
		r.analysis = string(analysis)
		return StateFullyCached
	}
	return StateDataCached
}

// cacheComplete reports whether rec covers every enabled feature at the
// current schema version.
func (o *Orchestrator) cacheComplete(rec *model.EnrichedRecord) bool {
	if rec.Version != model.RecordVersion {
		return false
	}
	if !o.opts.DisablePrices && rec.PriceComparison == nil {
		return false
	}
	if !o.opts.DisableWebSearch && rec.WebSearch == nil {
		return false
	}
	return true
}

// scrape acquires the SourceItem. Failure here is the one fatal condition
// past input validation: without a base item there is nothing to enrich.
func (o *Orchestrator) scrape(ctx context.Context, r *run) State {
	item, err := r.scraper.Scrape(ctx, r.url)
	if err != nil {
		r.recordError("Scraping error: %v", err)
		r.fatal = true
		return StateDone
	}
	r.item = item
	if r.productID == "" {
		r.productID = item.ProductID
	}
	return StateEnrich
}

// combine merges the source item with both branch outputs into one record.
func (o *Orchestrator) combine(r *run) *model.EnrichedRecord {
	rec := &model.EnrichedRecord{
		Version: model.RecordVersion,
		Item:    *r.item,
	}
	if !o.opts.DisablePrices {
		prices := r.enriched.Prices
		rec.PriceComparison = &prices
		rec.CompetitorPrices = flattenCompetitors(prices.Groups)
	}
	if !o.opts.DisableWebSearch {
		rec.WebSearch = r.enriched.Insights
	}
	return rec
}

// persist writes the combined record with the run TTL. Cache failure is
// recorded but never blocks returning data.
func (o *Orchestrator) persist(ctx context.Context, r *run) {
	data, err := json.Marshal(r.record)
	if err != nil {
		r.recordError("Cache save error: %v", err)
		return
	}
	if err := o.cache.SetWithTTL(ctx, r.dataKey(), data, o.opts.CacheTTL); err != nil {
		r.recordError("Cache save error: %v", err)
		return
	}
	zap.L().Debug("workflow: record cached",
		zap.String("key", r.dataKey()),
		zap.Duration("ttl", o.opts.CacheTTL),
	)
}

// summarize asks the generative layer for a narrative analysis of the full
// record. Failure yields an empty analysis and never invalidates the data.
func (o *Orchestrator) summarize(ctx context.Context, r *run) State {
	if r.record == nil {
		return StateDone
	}

	prompt, err := analysisPrompt(r.record)
	if err != nil {
		r.recordError("Analysis error: %v", err)
		return StateDone
	}

	analysis, err := o.llm.Complete(ctx, prompt)
	if err != nil {
		r.recordError("Analysis error: %v", err)
		r.analysis = ""
		return StateDone
	}
	r.analysis = analysis

	if analysis != "" {
		if err := o.cache.SetWithTTL(ctx, r.analysisKey(), []byte(analysis), o.opts.CacheTTL); err != nil {
			r.recordError("Cache save error: %v", err)
		}
	}
	return StateDone
}

func analysisPrompt(rec *model.EnrichedRecord) (string, error) {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", eris.Wrap(err, "workflow: marshal record for analysis")
	}
	return fmt.Sprintf(
		"You are a shopping analyst. Write a concise buying recommendation for %q "+
			"based on this collected data. Cover price competitiveness, what external "+
			"reviewers say, and any warnings. Keep it under 300 words.\n\n%s\n",
		rec.Item.Title, data,
	), nil
}
