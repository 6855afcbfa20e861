package resolve

// GroupKey returns the identity a record clusters under: the catalogue's
// explicit group label when present, else the parsed base name, else the
// literal name for records that were never parsed.
func GroupKey(m *UnifiedModel) string {
	if m.Group != "" {
		return m.Group
	}
	if m.Parsed != nil {
		return m.Parsed.ModelName
	}
	return m.Name
}

// GroupByBase clusters records by GroupKey, returning the keys in first
// appearance order alongside the groups. Member order inside each group
// follows the input.
func GroupByBase(records []*UnifiedModel) ([]string, map[string][]*UnifiedModel) {
	keys := make([]string, 0, len(records))
	groups := make(map[string][]*UnifiedModel, len(records))
	for _, m := range records {
		if m == nil {
			continue
		}
		key := GroupKey(m)
		if _, ok := groups[key]; !ok {
			keys = append(keys, key)
		}
		groups[key] = append(groups[key], m)
	}
	return keys, groups
}

// DisplayList folds merged records into the shape the admin list view
// renders. Records without a parsed name pass through untouched at their
// original position and never cluster with parsed records, even under a
// matching name. Parsed records cluster by GroupKey: a cluster of one
// emits its lone record unchanged, a larger cluster emits one
// GroupedModel at the position of its first member.
func DisplayList(records []*UnifiedModel) []DisplayEntry {
	parsed := make([]*UnifiedModel, 0, len(records))
	for _, m := range records {
		if m != nil && m.Parsed != nil {
			parsed = append(parsed, m)
		}
	}
	_, groups := GroupByBase(parsed)

	out := make([]DisplayEntry, 0, len(records))
	emitted := make(map[string]struct{}, len(groups))
	for _, m := range records {
		if m == nil {
			continue
		}
		if m.Parsed == nil {
			out = append(out, m)
			continue
		}
		key := GroupKey(m)
		if _, ok := emitted[key]; ok {
			continue
		}
		emitted[key] = struct{}{}
		members := groups[key]
		if len(members) == 1 {
			out = append(out, members[0])
			continue
		}
		out = append(out, buildGroup(key, members))
	}
	return out
}

// buildGroup reduces one cluster into a single grouped record, with
// representative display fields taken from the first member.
func buildGroup(name string, members []*UnifiedModel) *GroupedModel {
	agg := AggregateStats(members)
	first := members[0]
	g := &GroupedModel{
		Name:               name,
		Grouped:            true,
		HasAggregatedStats: len(members) >= 2,
		Variations:         members,
		AvailableBackends:  collectBackends(members),
		AvailableAuthors:   collectAuthors(members),
		Description:        first.Description,
		Baseline:           first.Baseline,
		Parameters:         first.Parameters,
		NSFW:               first.NSFW,
		WorkerCount:        agg.TotalWorkerCount,
		QueuedJobs:         agg.TotalQueuedJobs,
		Usage:              agg.CombinedUsage,
		Workers:            agg.AllWorkers,
	}
	if len(first.Tags) > 0 {
		g.Tags = append([]string(nil), first.Tags...)
	}
	return g
}

func collectBackends(members []*UnifiedModel) []string {
	out := make([]string, 0, 2)
	seen := make(map[string]struct{}, 2)
	for _, m := range members {
		if m.Parsed == nil || m.Parsed.Backend == "" {
			continue
		}
		b := string(m.Parsed.Backend)
		if _, ok := seen[b]; ok {
			continue
		}
		seen[b] = struct{}{}
		out = append(out, b)
	}
	return out
}

func collectAuthors(members []*UnifiedModel) []string {
	out := make([]string, 0, 2)
	seen := make(map[string]struct{}, 2)
	for _, m := range members {
		if m.Parsed == nil || m.Parsed.Author == "" {
			continue
		}
		if _, ok := seen[m.Parsed.Author]; ok {
			continue
		}
		seen[m.Parsed.Author] = struct{}{}
		out = append(out, m.Parsed.Author)
	}
	return out
}
