package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"strconv"
	"strings"

	"github.com/modelheap/registry-admin/internal/core/ports"
	"github.com/modelheap/registry-admin/internal/core/resolve"
	"github.com/modelheap/registry-admin/pkg/schema"
)

var exportHeader = []string{
	"name", "grouped", "variations", "backends", "authors",
	"worker_count", "queued_jobs",
	"usage_day", "usage_month", "usage_total",
	"nsfw", "description",
}

// ExportCSV renders the filtered display list as CSV. Runtime counters
// the grid never measured render as empty cells, not zeros.
func (s *RegistryService) ExportCSV(ctx context.Context, filter ports.ModelFilter) ([]byte, error) {
	entries, _, err := s.Display(ctx, filter)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(exportHeader); err != nil {
		return nil, err
	}

	for _, entry := range entries {
		if err := w.Write(csvRow(entry)); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func csvRow(entry resolve.DisplayEntry) []string {
	switch e := entry.(type) {
	case *resolve.GroupedModel:
		day, month, total := usageColumns(e.Usage)
		return []string{
			e.Name,
			"true",
			strconv.Itoa(len(e.Variations)),
			strings.Join(e.AvailableBackends, "|"),
			strings.Join(e.AvailableAuthors, "|"),
			strconv.Itoa(e.WorkerCount),
			strconv.Itoa(e.QueuedJobs),
			day, month, total,
			strconv.FormatBool(e.NSFW),
			e.Description,
		}

	case *resolve.UnifiedModel:
		var backend, author string
		if e.Parsed != nil {
			backend = string(e.Parsed.Backend)
			author = e.Parsed.Author
		}
		day, month, total := usageColumns(e.Usage)
		return []string{
			e.Name,
			"false",
			"1",
			backend,
			author,
			intColumn(e.WorkerCount),
			intColumn(e.QueuedJobs),
			day, month, total,
			strconv.FormatBool(e.NSFW),
			e.Description,
		}
	}
	return nil
}

func intColumn(p *int) string {
	if p == nil {
		return ""
	}
	return strconv.Itoa(*p)
}

func usageColumns(u *schema.UsageCounters) (string, string, string) {
	if u == nil {
		return "", "", ""
	}
	return strconv.FormatInt(u.Day, 10), strconv.FormatInt(u.Month, 10), strconv.FormatInt(u.Total, 10)
}
