package domain

import "time"

// SnapshotMeta describes the provenance of the snapshot currently being
// served: when it was assembled and how much each upstream contributed.
type SnapshotMeta struct {
	FetchedAt      time.Time `json:"fetched_at"`
	ReferenceCount int       `json:"reference_count"` // catalogue records fetched
	StatsCount     int       `json:"stats_count"`     // names the grid reported stats for
	RecordCount    int       `json:"record_count"`    // unified records after variation expansion
}

// RefreshSummary describes one completed refresh cycle.
type RefreshSummary struct {
	StartedAt      time.Time `json:"started_at"`
	DurationMillis int64     `json:"duration_ms"`
	ReferenceCount int       `json:"reference_count"`
	StatsCount     int       `json:"stats_count"`
	RecordCount    int       `json:"record_count"`
	EntryCount     int       `json:"entry_count"` // display entries after grouping
}
