package resolve

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modelheap/registry-admin/internal/core/modelname"
	"github.com/modelheap/registry-admin/pkg/schema"
)

func fptr(v float64) *float64 { return &v }

func TestMergeOneWithoutStats(t *testing.T) {
	rec := schema.ReferenceRecord{Name: "L3-8B", Description: "general purpose", Tags: []string{"base"}}
	m := MergeOne(rec, nil, MergeOptions{})

	assert.Equal(t, "L3-8B", m.Name)
	assert.Equal(t, "general purpose", m.Description)
	assert.Nil(t, m.Parsed)
	assert.Nil(t, m.WorkerCount)
	assert.Nil(t, m.QueuedJobs)
	assert.Nil(t, m.Usage)
	assert.Nil(t, m.Workers)
}

func TestMergeOneCopiesOnlyPresentStats(t *testing.T) {
	rec := schema.ReferenceRecord{Name: "L3-8B"}
	stats := map[string]schema.ModelStats{
		"L3-8B": {
			WorkerCount: intPtr(4),
			Performance: fptr(42.5),
			WorkerSummaries: map[string]schema.WorkerSummary{
				"w2": {ID: "w2", Name: "beta"},
				"w1": {ID: "w1", Name: "alpha"},
			},
		},
	}

	m := MergeOne(rec, stats, MergeOptions{ParseNames: true})

	require.NotNil(t, m.WorkerCount)
	assert.Equal(t, 4, *m.WorkerCount)
	require.NotNil(t, m.Performance)
	assert.Equal(t, 42.5, *m.Performance)
	assert.Nil(t, m.QueuedJobs, "absent measurements stay absent")
	assert.Nil(t, m.ETA)
	assert.Nil(t, m.Queued)
	assert.Nil(t, m.Usage)

	require.Len(t, m.Workers, 2)
	assert.Equal(t, "w1", m.Workers[0].ID, "workers are ordered by ID")
	assert.Equal(t, "w2", m.Workers[1].ID)

	require.NotNil(t, m.Parsed)
	assert.Equal(t, "L3-8B", m.Parsed.ModelName)
}

func TestMergeOneFillsWorkerIDFromKey(t *testing.T) {
	stats := map[string]schema.ModelStats{
		"m": {WorkerSummaries: map[string]schema.WorkerSummary{"w9": {Name: "quiet"}}},
	}
	m := MergeOne(schema.ReferenceRecord{Name: "m"}, stats, MergeOptions{})
	require.Len(t, m.Workers, 1)
	assert.Equal(t, "w9", m.Workers[0].ID)
}

func TestMergeAllSuppressesCanonicalDuplicate(t *testing.T) {
	recs := []schema.ReferenceRecord{{Name: "L3-8B", Description: "ref copy"}}
	stats := map[string]schema.ModelStats{
		"L3-8B": {
			// Aggregate counter; must not leak into the canonical entry.
			WorkerCount: intPtr(99),
			BackendVariations: map[string]schema.BackendVariation{
				"canonical": {
					Backend: "canonical", VariantName: "L3-8B",
					WorkerCount: 3, UsageDay: 10, UsageMonth: 20, UsageTotal: 30,
				},
			},
		},
	}

	out := MergeAll(recs, stats, MergeOptions{ParseNames: true})

	require.Len(t, out, 1)
	m := out[0]
	assert.Equal(t, "L3-8B", m.Name)
	assert.Equal(t, "ref copy", m.Description, "catalogue fields carry onto the variation record")
	require.NotNil(t, m.WorkerCount)
	assert.Equal(t, 3, *m.WorkerCount, "runtime comes from the variation's own counters")
	require.NotNil(t, m.Usage)
	assert.Equal(t, schema.UsageCounters{Day: 10, Month: 20, Total: 30}, *m.Usage)
	require.NotNil(t, m.Parsed)
	assert.Empty(t, m.Parsed.Backend)
}

func TestMergeAllExpandsVariations(t *testing.T) {
	recs := []schema.ReferenceRecord{{Name: "L3-8B", Baseline: "llama-3"}}
	stats := map[string]schema.ModelStats{
		"L3-8B": {
			WorkerCount: intPtr(7),
			BackendVariations: map[string]schema.BackendVariation{
				"kcpp": {Backend: "KoboldCpp", VariantName: "L3-8B", WorkerCount: 4, UsageDay: 1, UsageMonth: 2, UsageTotal: 3},
				"aphr": {Backend: "aphrodite", VariantName: "L3-8B", WorkerCount: 3, UsageDay: 4, UsageMonth: 5, UsageTotal: 6},
			},
		},
	}

	out := MergeAll(recs, stats, MergeOptions{ParseNames: true})

	require.Len(t, out, 3)
	assert.Equal(t, "L3-8B", out[0].Name)
	require.NotNil(t, out[0].WorkerCount)
	assert.Equal(t, 7, *out[0].WorkerCount)

	// Variation keys visit in sorted order: "aphr" before "kcpp".
	assert.Equal(t, "aphrodite/L3-8B", out[1].Name)
	assert.Equal(t, "koboldcpp/L3-8B", out[2].Name)
	assert.Equal(t, "llama-3", out[2].Baseline)
	require.NotNil(t, out[2].WorkerCount)
	assert.Equal(t, 4, *out[2].WorkerCount)
	require.NotNil(t, out[2].Parsed)
	assert.Equal(t, modelname.BackendKoboldCpp, out[2].Parsed.Backend,
		"the grid's tag is authoritative and normalized to canonical case")
}

func TestMergeAllUnknownBackendTag(t *testing.T) {
	recs := []schema.ReferenceRecord{{Name: "m"}}
	stats := map[string]schema.ModelStats{
		"m": {BackendVariations: map[string]schema.BackendVariation{
			"x": {Backend: "vllm", VariantName: "m", WorkerCount: 1},
		}},
	}

	out := MergeAll(recs, stats, MergeOptions{ParseNames: true})

	require.Len(t, out, 2)
	assert.Equal(t, "m", out[0].Name)
	v := out[1]
	assert.Equal(t, "vllm/m", v.Name)
	require.NotNil(t, v.Parsed)
	assert.Empty(t, v.Parsed.Backend, "unrecognized tags never mint new backends")
	assert.Equal(t, "vllm", v.Parsed.Author)
}

func TestMergeAllPlainPaths(t *testing.T) {
	recs := []schema.ReferenceRecord{{Name: "a"}, {Name: "b"}}
	stats := map[string]schema.ModelStats{"b": {QueuedJobs: intPtr(2)}}

	out := MergeAll(recs, stats, MergeOptions{})

	require.Len(t, out, 2)
	assert.Nil(t, out[0].QueuedJobs)
	require.NotNil(t, out[1].QueuedJobs)
	assert.Equal(t, 2, *out[1].QueuedJobs)
}

func TestMergeAllNeverEmitsDuplicateNames(t *testing.T) {
	recs := []schema.ReferenceRecord{{Name: "m"}, {Name: "koboldcpp/m"}}
	stats := map[string]schema.ModelStats{
		"m": {BackendVariations: map[string]schema.BackendVariation{
			"k": {Backend: "koboldcpp", VariantName: "m", WorkerCount: 1},
		}},
	}

	out := MergeAll(recs, stats, MergeOptions{ParseNames: true})

	require.Len(t, out, 2)
	names := make(map[string]int)
	for _, m := range out {
		names[m.Name]++
	}
	for name, n := range names {
		assert.Equal(t, 1, n, "name %q emitted more than once", name)
	}
}

func TestMergeCopiesDoNotAliasInput(t *testing.T) {
	rec := schema.ReferenceRecord{Name: "m", Tags: []string{"a"}}
	m := MergeOne(rec, nil, MergeOptions{})
	m.Tags[0] = "changed"
	assert.Equal(t, []string{"a"}, rec.Tags)
}

func TestMergeCarriesExtraAttributes(t *testing.T) {
	rec := schema.ReferenceRecord{
		Name:  "m",
		Extra: map[string]json.RawMessage{"homepage": json.RawMessage(`"https://example.com"`)},
	}
	m := MergeOne(rec, nil, MergeOptions{})
	require.Contains(t, m.Extra, "homepage")

	out, err := json.Marshal(m)
	require.NoError(t, err)

	var decoded map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.JSONEq(t, `"https://example.com"`, string(decoded["homepage"]))
}
