package model

// RecordVersion tags cached EnrichedRecords so that a schema or feature
// change invalidates stale entries instead of serving them as complete.
const RecordVersion = 1

// EnrichedRecord is the cached unit of work: the source item plus price
// and web-search enrichment.
type EnrichedRecord struct {
	Version          int               `json:"version"`
	Item             SourceItem        `json:"item"`
	PriceComparison  *PriceReport      `json:"price_comparison,omitempty"`
	CompetitorPrices []CompetitorPrice `json:"competitor_prices,omitempty"`
	WebSearch        *InsightBundle    `json:"web_search_analysis,omitempty"`
}

// RunOutcome is what the orchestrator hands back to its caller. Callers
// must inspect Errors to learn about degraded enrichment; Success is false
// only when the scrape itself failed.
type RunOutcome struct {
	RunID    string          `json:"run_id"`
	Success  bool            `json:"success"`
	Data     *EnrichedRecord `json:"data,omitempty"`
	Analysis string          `json:"analysis"`
	Errors   []string        `json:"errors"`
}
