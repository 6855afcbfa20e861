// Package resolve turns raw catalogue records and grid runtime statistics
// into the unified, grouped records the admin surfaces render. The whole
// package is pure in-memory transformation: no I/O, no retained state, and
// every call builds fresh output from its own snapshot of the inputs.
package resolve

import (
	"encoding/json"

	"github.com/modelheap/registry-admin/internal/core/modelname"
	"github.com/modelheap/registry-admin/pkg/schema"
)

// unifiedKeys are the JSON keys UnifiedModel models explicitly; everything
// else round-trips through Extra, mirroring schema.ReferenceRecord.
var unifiedKeys = []string{
	"name", "parsed_name", "description", "baseline", "parameters",
	"tags", "nsfw", "group", "version", "worker_count", "queued_jobs",
	"performance", "eta", "queued", "usage_stats", "workers",
}

// UnifiedModel is one record per literal model name: the catalogue's
// reference fields merged with whatever runtime statistics the grid
// reported for that exact name. Runtime fields are pointers because
// absence means "not measured", which display code keeps distinct from a
// measured zero.
type UnifiedModel struct {
	Name   string                `json:"name"`
	Parsed *modelname.ParsedName `json:"parsed_name,omitempty"`

	Description string   `json:"description,omitempty"`
	Baseline    string   `json:"baseline,omitempty"`
	Parameters  string   `json:"parameters,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	NSFW        bool     `json:"nsfw"`
	Group       string   `json:"group,omitempty"`
	Version     string   `json:"version,omitempty"`

	WorkerCount *int                   `json:"worker_count,omitempty"`
	QueuedJobs  *int                   `json:"queued_jobs,omitempty"`
	Performance *float64               `json:"performance,omitempty"`
	ETA         *int                   `json:"eta,omitempty"`
	Queued      *float64               `json:"queued,omitempty"`
	Usage       *schema.UsageCounters  `json:"usage_stats,omitempty"`
	Workers     []schema.WorkerSummary `json:"workers,omitempty"`

	// Extra carries the catalogue fields this service does not model,
	// preserved verbatim through merge and re-serialization.
	Extra map[string]json.RawMessage `json:"-"`
}

func (m *UnifiedModel) UnmarshalJSON(data []byte) error {
	type plain UnifiedModel
	var um plain
	if err := json.Unmarshal(data, &um); err != nil {
		return err
	}
	extra, err := schema.PruneKnown(data, unifiedKeys)
	if err != nil {
		return err
	}
	um.Extra = extra
	*m = UnifiedModel(um)
	return nil
}

func (m UnifiedModel) MarshalJSON() ([]byte, error) {
	type plain UnifiedModel
	known, err := json.Marshal(plain(m))
	if err != nil {
		return nil, err
	}
	return schema.FoldExtra(known, m.Extra)
}

// GroupedModel is the aggregate identity spanning every variation of one
// logical model. Variations keeps full membership in input order and is
// never deduplicated. Representative display fields are copied from the
// first member; when variations disagree, the first one wins — a
// deliberate simplification, not an attempt at a best-value merge.
type GroupedModel struct {
	Name               string          `json:"name"`
	Grouped            bool            `json:"is_grouped"`
	HasAggregatedStats bool            `json:"has_aggregated_stats"`
	Variations         []*UnifiedModel `json:"variations"`
	AvailableBackends  []string        `json:"available_backends"`
	AvailableAuthors   []string        `json:"available_authors"`

	Description string   `json:"description,omitempty"`
	Baseline    string   `json:"baseline,omitempty"`
	Parameters  string   `json:"parameters,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	NSFW        bool     `json:"nsfw"`

	WorkerCount int                    `json:"worker_count"`
	QueuedJobs  int                    `json:"queued_jobs"`
	Usage       *schema.UsageCounters  `json:"usage_stats,omitempty"`
	Workers     []schema.WorkerSummary `json:"workers"`
}

// Aggregate is the statistical fold over one group's variations.
// CombinedUsage stays nil when no variation carried usage counters, so
// "zero usage" and "no usage data" remain distinct downstream.
type Aggregate struct {
	TotalWorkerCount int                    `json:"total_worker_count"`
	TotalQueuedJobs  int                    `json:"total_queued_jobs"`
	CombinedUsage    *schema.UsageCounters  `json:"combined_usage,omitempty"`
	AllWorkers       []schema.WorkerSummary `json:"all_workers"`
}

// DisplayEntry is one element of the admin list view: either a lone
// *UnifiedModel or a *GroupedModel. Consumers branch on IsGrouped.
type DisplayEntry interface {
	EntryName() string
	IsGrouped() bool
}

func (m *UnifiedModel) EntryName() string { return m.Name }

func (m *UnifiedModel) IsGrouped() bool { return false }

func (g *GroupedModel) EntryName() string { return g.Name }

func (g *GroupedModel) IsGrouped() bool { return true }
