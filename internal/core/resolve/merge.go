package resolve

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/modelheap/registry-admin/internal/core/modelname"
	"github.com/modelheap/registry-admin/pkg/schema"
)

// CanonicalVariation is the pseudo-backend tag the grid uses for the
// variation that stands in for the plain model name itself.
const CanonicalVariation = "canonical"

// MergeOptions controls how merging builds unified records.
type MergeOptions struct {
	// ParseNames attaches a ParsedName to every produced record. Only
	// records parsed this way participate in base-identity grouping.
	ParseNames bool
}

// MergeOne merges a single catalogue record with the stats reported under
// its literal name, if any. Pure: neither input is modified.
func MergeOne(rec schema.ReferenceRecord, stats map[string]schema.ModelStats, opts MergeOptions) *UnifiedModel {
	if st, ok := stats[rec.Name]; ok {
		return mergeRecord(rec, &st, opts)
	}
	return mergeRecord(rec, nil, opts)
}

// MergeAll merges every catalogue record with its stats, producing one
// record per literal output name. Records whose stats carry backend
// variations are expanded: each variation becomes a standalone record
// named "<backend>/<variant>" ("<variant>" bare for the canonical
// pseudo-backend) populated from that variation's own counters, never the
// parent aggregate. When some variation emits the record's own literal
// name, the plain merged record is suppressed in its favor. Variation
// keys are visited in sorted order and the output never contains two
// records with the same name.
func MergeAll(recs []schema.ReferenceRecord, stats map[string]schema.ModelStats, opts MergeOptions) []*UnifiedModel {
	out := make([]*UnifiedModel, 0, len(recs))
	seen := make(map[string]struct{}, len(recs))
	push := func(m *UnifiedModel) {
		if _, ok := seen[m.Name]; ok {
			return
		}
		seen[m.Name] = struct{}{}
		out = append(out, m)
	}

	for _, rec := range recs {
		st, ok := stats[rec.Name]
		if !ok {
			push(mergeRecord(rec, nil, opts))
			continue
		}
		if len(st.BackendVariations) == 0 {
			push(mergeRecord(rec, &st, opts))
			continue
		}
		keys := sortedVariationKeys(st.BackendVariations)
		if !variationSuppliesCanonical(rec.Name, st.BackendVariations, keys) {
			push(mergeRecord(rec, &st, opts))
		}
		for _, k := range keys {
			push(variationRecord(rec, st.BackendVariations[k], opts))
		}
	}
	return out
}

// variationRule describes how one backend tag shapes its synthetic
// record: the name prefix to emit (empty means the variant name is used
// bare) and the authoritative backend to stamp on the parsed name. Tags
// outside the table keep their own spelling as prefix and get no stamp,
// so the grammar's closed backend set stays closed.
type variationRule struct {
	prefix   string
	override modelname.Backend
}

var variationRules = buildVariationRules()

func buildVariationRules() map[string]variationRule {
	rules := map[string]variationRule{CanonicalVariation: {}}
	for _, b := range modelname.KnownBackends() {
		rules[string(b)] = variationRule{prefix: string(b), override: b}
	}
	return rules
}

func ruleFor(tag string) variationRule {
	if r, ok := variationRules[strings.ToLower(tag)]; ok {
		return r
	}
	return variationRule{prefix: tag}
}

// variationName is the literal name a variation's record will carry.
func variationName(v schema.BackendVariation) string {
	r := ruleFor(v.Backend)
	if r.prefix == "" {
		return v.VariantName
	}
	return r.prefix + "/" + v.VariantName
}

// variationSuppliesCanonical reports whether some variation will emit the
// record's own literal name, in which case the plain merged record must
// not be pushed.
func variationSuppliesCanonical(name string, vars map[string]schema.BackendVariation, keys []string) bool {
	for _, k := range keys {
		if variationName(vars[k]) == name {
			return true
		}
	}
	return false
}

// variationRecord builds the standalone record for one backend variation.
// Static catalogue fields come from the parent record; runtime fields
// come strictly from the variation's own counters.
func variationRecord(rec schema.ReferenceRecord, v schema.BackendVariation, opts MergeOptions) *UnifiedModel {
	rule := ruleFor(v.Backend)
	m := fromReference(rec)
	m.Name = variationName(v)
	m.WorkerCount = intPtr(v.WorkerCount)
	m.Performance = copyFloat(v.Performance)
	m.Queued = copyFloat(v.Queued)
	m.QueuedJobs = copyInt(v.QueuedJobs)
	m.ETA = copyInt(v.ETA)
	m.Usage = &schema.UsageCounters{Day: v.UsageDay, Month: v.UsageMonth, Total: v.UsageTotal}
	if opts.ParseNames {
		p := modelname.Parse(m.Name)
		if rule.override != "" {
			// The grid's tag is authoritative over grammar inference.
			p.Backend = rule.override
		}
		m.Parsed = &p
	}
	return m
}

// mergeRecord merges one catalogue record with the stats snapshot for its
// name. Runtime fields copy only when the source field is present, so a
// missing measurement stays missing instead of decaying to zero.
func mergeRecord(rec schema.ReferenceRecord, st *schema.ModelStats, opts MergeOptions) *UnifiedModel {
	m := fromReference(rec)
	if opts.ParseNames {
		p := modelname.Parse(rec.Name)
		m.Parsed = &p
	}
	if st == nil {
		return m
	}
	m.WorkerCount = copyInt(st.WorkerCount)
	m.QueuedJobs = copyInt(st.QueuedJobs)
	m.Performance = copyFloat(st.Performance)
	m.ETA = copyInt(st.ETA)
	m.Queued = copyFloat(st.Queued)
	if st.UsageStats != nil {
		u := *st.UsageStats
		m.Usage = &u
	}
	m.Workers = workerList(st.WorkerSummaries)
	return m
}

// fromReference copies the catalogue side of a record into a fresh
// UnifiedModel, cloning slices and the extra-attribute map so the output
// shares no mutable state with the input.
func fromReference(rec schema.ReferenceRecord) *UnifiedModel {
	m := &UnifiedModel{
		Name:        rec.Name,
		Description: rec.Description,
		Baseline:    rec.Baseline,
		Parameters:  rec.Parameters,
		NSFW:        rec.NSFW,
		Group:       rec.Group,
		Version:     rec.Version,
	}
	if len(rec.Tags) > 0 {
		m.Tags = append([]string(nil), rec.Tags...)
	}
	if len(rec.Extra) > 0 {
		m.Extra = make(map[string]json.RawMessage, len(rec.Extra))
		for k, v := range rec.Extra {
			m.Extra[k] = v
		}
	}
	return m
}

// workerList flattens the grid's worker map into a slice ordered by
// worker ID, so repeated merges over one snapshot are deterministic. An
// entry missing its inner ID inherits the map key.
func workerList(summaries map[string]schema.WorkerSummary) []schema.WorkerSummary {
	if len(summaries) == 0 {
		return nil
	}
	ids := make([]string, 0, len(summaries))
	for id := range summaries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	workers := make([]schema.WorkerSummary, 0, len(summaries))
	for _, id := range ids {
		w := summaries[id]
		if w.ID == "" {
			w.ID = id
		}
		workers = append(workers, w)
	}
	return workers
}

func sortedVariationKeys(vars map[string]schema.BackendVariation) []string {
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func intPtr(v int) *int { return &v }

func copyInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func copyFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
