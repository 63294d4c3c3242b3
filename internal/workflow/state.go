package workflow

// State identifies one step of the orchestration state machine.
type State string

const (
	StateCheckCache   State = "check_cache"
	StateFullyCached  State = "fully_cached"
	StateDataCached   State = "data_cached"
	StateFetch        State = "fetch"
	StateScrape       State = "scrape"
	StateEnrich       State = "enrich"
	StateCombine      State = "combine"
	StatePersistCache State = "persist_cache"
	StateSummarize    State = "summarize"
	StateDone         State = "done"
)
