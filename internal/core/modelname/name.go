// Package modelname implements the grammar for hierarchical model names.
//
// A model name is a "/"-delimited sequence of segments carrying up to three
// semantic components: an optional serving backend, an optional author or
// organization, and the required base model name. Examples:
//
//	L3-8B                              base name only
//	PygmalionAI/pygmalion-2-7b         author + base name
//	koboldcpp/L3-8B                    backend + base name
//	aphrodite/NeverSleep/Noromaid-13b  backend + author + base name
//
// Backend recognition is case-insensitive against a small closed set; an
// unrecognized leading segment is classified as an author, never as a
// backend.
package modelname

import "strings"

// Backend identifies a recognized serving engine. The stored value is
// always the canonical lowercase form.
type Backend string

const (
	BackendKoboldCpp Backend = "koboldcpp"
	BackendAphrodite Backend = "aphrodite"
)

// knownBackends is the closed recognition set. Adding an engine here is
// the only change needed to extend the grammar.
var knownBackends = []Backend{BackendKoboldCpp, BackendAphrodite}

// KnownBackends returns the recognized serving engines in a fresh slice.
func KnownBackends() []Backend {
	out := make([]Backend, len(knownBackends))
	copy(out, knownBackends)
	return out
}

// ParseBackend matches s against the recognized backend set, ignoring
// case, and returns the canonical form.
func ParseBackend(s string) (Backend, bool) {
	for _, b := range knownBackends {
		if strings.EqualFold(s, string(b)) {
			return b, true
		}
	}
	return "", false
}

// ParsedName is the structured form of one model name. Backend is empty
// when the name carries no recognized backend prefix; Author is empty
// when no author segment is present. FullName preserves the input string
// untouched for fallback display and round-trip checks.
type ParsedName struct {
	Backend   Backend `json:"backend,omitempty"`
	Author    string  `json:"author,omitempty"`
	ModelName string  `json:"model_name"`
	FullName  string  `json:"full_name"`
}

// String renders the canonical form, equivalent to Build.
func (p ParsedName) String() string {
	return Build(p)
}

// Parse splits fullName into its components. It never fails: empty input
// yields an inert ParsedName with an empty ModelName.
//
// Classification by segment count:
//   - one segment: the base name.
//   - two segments: backend/name when the first segment is a recognized
//     backend, author/name otherwise.
//   - three segments: backend/author/name when the first segment is a
//     recognized backend; otherwise the first segment is the author and
//     the rest joins back into the base name.
//   - more than three: the first segment is consumed as backend or author
//     as above and everything after it joins back into the base name.
func Parse(fullName string) ParsedName {
	p := ParsedName{FullName: fullName}
	if fullName == "" {
		return p
	}
	segs := strings.Split(fullName, "/")
	switch len(segs) {
	case 1:
		p.ModelName = segs[0]
	case 2:
		if b, ok := ParseBackend(segs[0]); ok {
			p.Backend = b
		} else {
			p.Author = segs[0]
		}
		p.ModelName = segs[1]
	case 3:
		if b, ok := ParseBackend(segs[0]); ok {
			p.Backend = b
			p.Author = segs[1]
			p.ModelName = segs[2]
		} else {
			p.Author = segs[0]
			p.ModelName = strings.Join(segs[1:], "/")
		}
	default:
		if b, ok := ParseBackend(segs[0]); ok {
			p.Backend = b
		} else {
			p.Author = segs[0]
		}
		p.ModelName = strings.Join(segs[1:], "/")
	}
	return p
}

// Build reconstructs a literal name from parts, joining the present
// components in backend/author/name order. A missing ModelName yields "".
func Build(p ParsedName) string {
	if p.ModelName == "" {
		return ""
	}
	segs := make([]string, 0, 3)
	if p.Backend != "" {
		segs = append(segs, string(p.Backend))
	}
	if p.Author != "" {
		segs = append(segs, p.Author)
	}
	segs = append(segs, p.ModelName)
	return strings.Join(segs, "/")
}

// BaseName returns fullName with backend and author prefixes stripped.
func BaseName(fullName string) string {
	return Parse(fullName).ModelName
}

// WithoutBackend rebuilds fullName with any recognized backend prefix
// removed, keeping the author segment.
func WithoutBackend(fullName string) string {
	p := Parse(fullName)
	p.Backend = ""
	return Build(p)
}

// HasBackendPrefix reports whether fullName starts with a recognized
// backend segment.
func HasBackendPrefix(fullName string) bool {
	return Parse(fullName).Backend != ""
}

// AllBackendVariations returns the backend-free form of fullName followed
// by one variant per recognized backend, deduplicated in order.
func AllBackendVariations(fullName string) []string {
	p := Parse(fullName)
	p.Backend = ""
	names := make([]string, 0, len(knownBackends)+1)
	seen := make(map[string]struct{}, len(knownBackends)+1)
	push := func(name string) {
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	push(Build(p))
	for _, b := range knownBackends {
		p.Backend = b
		push(Build(p))
	}
	return names
}
