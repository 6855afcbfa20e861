package ports

import (
	"context"

	"github.com/modelheap/registry-admin/pkg/schema"
)

// ReferenceClient is the contract for the model reference catalogue: the
// human-curated source of truth for model metadata.
type ReferenceClient interface {
	// FetchAll returns every catalogue record. When the catalogue carries
	// several versions of one name, implementations return the newest.
	FetchAll(ctx context.Context) ([]schema.ReferenceRecord, error)

	// Push writes one edited record back to the catalogue.
	Push(ctx context.Context, rec schema.ReferenceRecord) error
}

// StatsClient is the contract for the serving grid's status API.
type StatsClient interface {
	// FetchStats returns the current runtime snapshot keyed by literal
	// model name.
	FetchStats(ctx context.Context) (map[string]schema.ModelStats, error)
}
