package store

import (
	"context"

	"github.com/modelheap/registry-admin/internal/store/model"
)

type contextKey string

const (
	ContextKeyAPIKey   contextKey = "api_key"
	ContextKeyActor    contextKey = "actor"
	ContextKeyAppName  contextKey = "app_name"
	ContextKeyClientIP contextKey = "client_ip"
)

// Repository is the main contract for the data layer.
type Repository interface {
	APIKeys() APIKeyRepository
	Snapshots() SnapshotRepository
	Audit() AuditRepository

	// transaction support
	WithTx(ctx context.Context, fn func(repo Repository) error) error

	// Ping verifies the underlying connection, for readiness probes.
	Ping(ctx context.Context) error

	Close() error
}

type APIKeyRepository interface {
	// GetByHash retrieves a key by its hashed value (for auth).
	GetByHash(ctx context.Context, hash string) (*model.APIKey, error)
	// Create issues a new API key.
	Create(ctx context.Context, key *model.APIKey) error
	// Touch stamps the key's last use.
	Touch(ctx context.Context, id string) error
	// List returns every key, newest first.
	List(ctx context.Context) ([]model.APIKey, error)
}

type SnapshotRepository interface {
	// InsertBatch stores the usage rows captured by one refresh cycle.
	InsertBatch(ctx context.Context, rows []model.UsageSnapshot) error
	// Trend returns the per-day usage trend for one model name.
	Trend(ctx context.Context, name string, days int) ([]model.UsagePoint, error)
	// TopModels returns the busiest models over the window, by peak daily usage.
	TopModels(ctx context.Context, days, limit int) ([]model.ModelActivity, error)
	// Prune drops snapshots older than the retention window and reports
	// how many rows went away.
	Prune(ctx context.Context, keepDays int) (int64, error)
}

type AuditRepository interface {
	// Log records an audit event.
	Log(ctx context.Context, event *model.AuditEvent) error
	// Recent returns the latest events, newest first.
	Recent(ctx context.Context, limit int) ([]model.AuditEvent, error)
}
