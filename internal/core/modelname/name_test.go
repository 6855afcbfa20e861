package modelname

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want ParsedName
	}{
		{
			name: "empty input",
			in:   "",
			want: ParsedName{},
		},
		{
			name: "bare model name",
			in:   "L3-8B",
			want: ParsedName{ModelName: "L3-8B", FullName: "L3-8B"},
		},
		{
			name: "backend and model",
			in:   "koboldcpp/L3-8B",
			want: ParsedName{Backend: BackendKoboldCpp, ModelName: "L3-8B", FullName: "koboldcpp/L3-8B"},
		},
		{
			name: "author and model",
			in:   "PygmalionAI/pygmalion-2-7b",
			want: ParsedName{Author: "PygmalionAI", ModelName: "pygmalion-2-7b", FullName: "PygmalionAI/pygmalion-2-7b"},
		},
		{
			name: "backend author model",
			in:   "aphrodite/NeverSleep/Noromaid-13b",
			want: ParsedName{Backend: BackendAphrodite, Author: "NeverSleep", ModelName: "Noromaid-13b", FullName: "aphrodite/NeverSleep/Noromaid-13b"},
		},
		{
			name: "three segments without backend keeps slash in model name",
			in:   "org/family/model",
			want: ParsedName{Author: "org", ModelName: "family/model", FullName: "org/family/model"},
		},
		{
			name: "four segments with backend take no author",
			in:   "koboldcpp/org/family/model",
			want: ParsedName{Backend: BackendKoboldCpp, ModelName: "org/family/model", FullName: "koboldcpp/org/family/model"},
		},
		{
			name: "four segments without backend absorb one author segment",
			in:   "org/family/line/model",
			want: ParsedName{Author: "org", ModelName: "family/line/model", FullName: "org/family/line/model"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.in))
		})
	}
}

func TestParseBackendCaseInsensitive(t *testing.T) {
	for _, in := range []string{"Aphrodite/Foo", "aphrodite/Foo", "APHRODITE/Foo"} {
		p := Parse(in)
		assert.Equal(t, BackendAphrodite, p.Backend, "input %q", in)
		assert.Equal(t, "Foo", p.ModelName)
		assert.Empty(t, p.Author)
	}
	for _, in := range []string{"KoboldCpp/Foo", "koboldcpp/Foo", "KOBOLDCPP/Foo"} {
		assert.Equal(t, BackendKoboldCpp, Parse(in).Backend, "input %q", in)
	}
}

func TestUnknownPrefixBecomesAuthor(t *testing.T) {
	p := Parse("unknown-backend/Model")
	assert.Empty(t, p.Backend)
	assert.Equal(t, "unknown-backend", p.Author)
	assert.Equal(t, "Model", p.ModelName)
}

func TestBuild(t *testing.T) {
	tests := []struct {
		name  string
		parts ParsedName
		want  string
	}{
		{"missing model name yields empty", ParsedName{Backend: BackendKoboldCpp, Author: "org"}, ""},
		{"model only", ParsedName{ModelName: "L3-8B"}, "L3-8B"},
		{"author and model", ParsedName{Author: "org", ModelName: "m"}, "org/m"},
		{"backend and model", ParsedName{Backend: BackendAphrodite, ModelName: "m"}, "aphrodite/m"},
		{"all parts", ParsedName{Backend: BackendKoboldCpp, Author: "org", ModelName: "m"}, "koboldcpp/org/m"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Build(tt.parts))
		})
	}
}

// Build(Parse(x)) must reproduce x for any name without empty segments
// whose backend prefix, if present, is already in canonical case.
func TestBuildParseRoundTrip(t *testing.T) {
	names := []string{
		"L3-8B",
		"model.v2_Final",
		"Henk717/airochronos-33B",
		"koboldcpp/L3-8B",
		"aphrodite/PygmalionAI/pygmalion-2-7b",
		"koboldcpp/org/family/model",
		"org/family/model",
		"org/family/line/model",
	}
	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, name, Build(Parse(name)))
		})
	}
}

func TestBaseName(t *testing.T) {
	assert.Equal(t, "L3-8B", BaseName("L3-8B"))
	assert.Equal(t, "L3-8B", BaseName("koboldcpp/L3-8B"))
	assert.Equal(t, "pygmalion-2-7b", BaseName("aphrodite/PygmalionAI/pygmalion-2-7b"))
	assert.Equal(t, "", BaseName(""))
}

func TestWithoutBackend(t *testing.T) {
	assert.Equal(t, "org/m", WithoutBackend("koboldcpp/org/m"))
	assert.Equal(t, "org/m", WithoutBackend("org/m"))
	assert.Equal(t, "m", WithoutBackend("aphrodite/m"))
	assert.Equal(t, "m", WithoutBackend("m"))
}

func TestHasBackendPrefix(t *testing.T) {
	assert.True(t, HasBackendPrefix("koboldcpp/L3-8B"))
	assert.True(t, HasBackendPrefix("Aphrodite/L3-8B"))
	assert.False(t, HasBackendPrefix("PygmalionAI/L3-8B"))
	assert.False(t, HasBackendPrefix("L3-8B"))
	assert.False(t, HasBackendPrefix(""))
}

func TestAllBackendVariations(t *testing.T) {
	assert.Equal(t,
		[]string{"org/m", "koboldcpp/org/m", "aphrodite/org/m"},
		AllBackendVariations("org/m"))

	// A backend-prefixed input produces its own prefix as one of the
	// variants, not a doubled prefix.
	assert.Equal(t,
		[]string{"L3-8B", "koboldcpp/L3-8B", "aphrodite/L3-8B"},
		AllBackendVariations("koboldcpp/L3-8B"))
}
