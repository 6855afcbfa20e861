package resolve

import "github.com/modelheap/registry-admin/pkg/schema"

// AggregateStats folds variation stats into one summary. Worker counts
// and queue depths sum with absent treated as zero. Usage counters sum
// only when at least one variation carries them; otherwise CombinedUsage
// stays nil. Workers union by ID with the first-seen entry winning and
// insertion order preserved. The input is never modified, and missing
// fields degrade to the defaults above rather than failing.
func AggregateStats(variations []*UnifiedModel) Aggregate {
	agg := Aggregate{AllWorkers: make([]schema.WorkerSummary, 0)}
	seen := make(map[string]struct{})
	for _, m := range variations {
		if m == nil {
			continue
		}
		if m.WorkerCount != nil {
			agg.TotalWorkerCount += *m.WorkerCount
		}
		if m.QueuedJobs != nil {
			agg.TotalQueuedJobs += *m.QueuedJobs
		}
		if m.Usage != nil {
			if agg.CombinedUsage == nil {
				agg.CombinedUsage = &schema.UsageCounters{}
			}
			agg.CombinedUsage.Day += m.Usage.Day
			agg.CombinedUsage.Month += m.Usage.Month
			agg.CombinedUsage.Total += m.Usage.Total
		}
		for _, w := range m.Workers {
			if _, ok := seen[w.ID]; ok {
				continue
			}
			seen[w.ID] = struct{}{}
			agg.AllWorkers = append(agg.AllWorkers, w)
		}
	}
	return agg
}
