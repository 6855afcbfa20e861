package services

import (
	"strings"

	"github.com/modelheap/registry-admin/internal/core/ports"
	"github.com/modelheap/registry-admin/internal/core/resolve"
)

func filterEntries(entries []resolve.DisplayEntry, f ports.ModelFilter) []resolve.DisplayEntry {
	if f.Backend == "" && f.Author == "" && f.NSFW == nil && f.Query == "" {
		return entries
	}

	out := make([]resolve.DisplayEntry, 0, len(entries))
	for _, entry := range entries {
		if entryMatches(entry, f) {
			out = append(out, entry)
		}
	}
	return out
}

func entryMatches(entry resolve.DisplayEntry, f ports.ModelFilter) bool {
	switch e := entry.(type) {
	case *resolve.GroupedModel:
		if f.Backend != "" && !containsFold(e.AvailableBackends, f.Backend) {
			return false
		}
		if f.Author != "" && !containsFold(e.AvailableAuthors, f.Author) {
			return false
		}
		if f.NSFW != nil && e.NSFW != *f.NSFW {
			return false
		}
		if f.Query != "" && !groupMatchesQuery(e, f.Query) {
			return false
		}
		return true

	case *resolve.UnifiedModel:
		if f.Backend != "" && !backendMatches(e, f.Backend) {
			return false
		}
		if f.Author != "" && !authorMatches(e, f.Author) {
			return false
		}
		if f.NSFW != nil && e.NSFW != *f.NSFW {
			return false
		}
		if f.Query != "" && !strings.Contains(strings.ToLower(e.Name), strings.ToLower(f.Query)) {
			return false
		}
		return true
	}
	return false
}

func backendMatches(m *resolve.UnifiedModel, backend string) bool {
	return m.Parsed != nil && strings.EqualFold(string(m.Parsed.Backend), backend)
}

func authorMatches(m *resolve.UnifiedModel, author string) bool {
	return m.Parsed != nil && strings.EqualFold(m.Parsed.Author, author)
}

// groupMatchesQuery matches the group name or any variation's literal name.
func groupMatchesQuery(g *resolve.GroupedModel, query string) bool {
	query = strings.ToLower(query)
	if strings.Contains(strings.ToLower(g.Name), query) {
		return true
	}
	for _, v := range g.Variations {
		if strings.Contains(strings.ToLower(v.Name), query) {
			return true
		}
	}
	return false
}

func containsFold(values []string, want string) bool {
	for _, v := range values {
		if strings.EqualFold(v, want) {
			return true
		}
	}
	return false
}
