package recorder

// FetchResult holds the outcome of one source fetch within a cycle.
type FetchResult struct {
	Source     string
	Status     int // layered status code: HTTP / -256 decode / -512 network
	ValidCount int // populated records (assets for pages, 1/0 for weather)
}

// CycleRecord summarizes one refresh cycle.
type CycleRecord struct {
	DurationMs int64
	Degraded   bool
	Rendered   bool
}

// Recorder persists fetch diagnostics for later inspection. Fetched
// weather and market data itself is never persisted; each frame is used
// once and discarded.
type Recorder interface {
	RecordFetch(res *FetchResult) error
	RecordCycle(rec *CycleRecord) error
	Close() error
}
