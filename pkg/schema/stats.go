package schema

// ModelStats is the per-model runtime snapshot reported by the grid's
// status endpoint, keyed by literal model name. Every field is optional:
// a missing field means the grid did not measure it, which downstream
// display code must keep distinct from a measured zero.
type ModelStats struct {
	WorkerCount *int     `json:"worker_count,omitempty"`
	QueuedJobs  *int     `json:"queued_jobs,omitempty"`
	Performance *float64 `json:"performance,omitempty"` // aggregate tokens/sec across workers
	ETA         *int     `json:"eta,omitempty"`         // seconds until queue drains
	Queued      *float64 `json:"queued,omitempty"`      // tokens currently waiting

	UsageStats      *UsageCounters           `json:"usage_stats,omitempty"`
	WorkerSummaries map[string]WorkerSummary `json:"worker_summaries,omitempty"`

	// BackendVariations is present when the grid pre-splits a model's
	// traffic per serving engine. Keys are opaque; each value describes
	// one variation's own counters, not the aggregate above.
	BackendVariations map[string]BackendVariation `json:"backend_variations,omitempty"`
}

// UsageCounters are rolling request counters for one model.
type UsageCounters struct {
	Day   int64 `json:"day"`
	Month int64 `json:"month"`
	Total int64 `json:"total"`
}

// BackendVariation is one serving engine's share of a model's runtime
// stats. Backend is the engine tag as the grid reported it, including the
// pseudo-tag "canonical" for the entry that stands in for the plain model
// name itself.
type BackendVariation struct {
	Backend     string   `json:"backend"`
	VariantName string   `json:"variant_name"`
	WorkerCount int      `json:"worker_count"`
	Performance *float64 `json:"performance,omitempty"`
	Queued      *float64 `json:"queued,omitempty"`
	QueuedJobs  *int     `json:"queued_jobs,omitempty"`
	ETA         *int     `json:"eta,omitempty"`
	UsageDay    int64    `json:"usage_day"`
	UsageMonth  int64    `json:"usage_month"`
	UsageTotal  int64    `json:"usage_total"`
}

// WorkerSummary identifies one serving worker. Workers host several models
// at once, so the same ID shows up under every model they serve; identity
// for deduplication is ID alone.
type WorkerSummary struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Performance float64 `json:"performance"`
	Online      bool    `json:"online"`
	Trusted     bool    `json:"trusted"`
	Uptime      int64   `json:"uptime"` // seconds
}
