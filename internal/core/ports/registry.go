package ports

import (
	"context"

	"github.com/modelheap/registry-admin/internal/core/domain"
	"github.com/modelheap/registry-admin/internal/core/resolve"
	"github.com/modelheap/registry-admin/pkg/schema"
)

// ModelFilter narrows the display list.
type ModelFilter struct {
	Backend string // only entries with a variation on this backend
	Author  string
	NSFW    *bool  // nil matches both
	Query   string // case-insensitive substring match on entry name
}

// Registry defines the admin-facing business logic over the merged
// catalogue/grid snapshot.
type Registry interface {
	// Refresh fetches catalogue and grid data and rebuilds the snapshot.
	Refresh(ctx context.Context) (*domain.RefreshSummary, error)

	// Display returns the grouped display list for the current snapshot.
	Display(ctx context.Context, filter ModelFilter) ([]resolve.DisplayEntry, *domain.SnapshotMeta, error)

	// Get resolves one entry by its display name, falling back to
	// variation names inside groups.
	Get(ctx context.Context, name string) (resolve.DisplayEntry, error)

	// Update writes an edited record through to the catalogue and patches
	// the snapshot.
	Update(ctx context.Context, rec schema.ReferenceRecord) (*resolve.UnifiedModel, error)

	// ExportCSV renders the filtered display list as CSV.
	ExportCSV(ctx context.Context, filter ModelFilter) ([]byte, error)
}
