package model

import (
	"database/sql"
	"time"
)

// APIKey is the credential used to access the admin API.
type APIKey struct {
	ID         string       `db:"id" json:"id"`
	Name       string       `db:"name" json:"name"`
	KeyHash    string       `db:"key_hash" json:"-"`            // Never return hash
	KeyPrefix  string       `db:"key_prefix" json:"key_prefix"` // Display only
	Role       string       `db:"role" json:"role"`             // 'admin', 'viewer'
	LastUsedAt sql.NullTime `db:"last_used_at" json:"last_used_at,omitempty"`
	IsActive   bool         `db:"is_active" json:"is_active"`
	CreatedAt  time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time    `db:"updated_at" json:"updated_at"`
}

// UsageSnapshot is one model's runtime counters captured during one
// refresh cycle. The nullable columns mirror the upstream contract: a
// NULL means the grid did not measure the field, which stays distinct
// from a measured zero all the way into trend queries.
type UsageSnapshot struct {
	ID          string        `db:"id" json:"id"`
	ModelName   string        `db:"model_name" json:"model_name"`
	GroupKey    string        `db:"group_key" json:"group_key"`
	WorkerCount sql.NullInt64 `db:"worker_count" json:"worker_count,omitempty"`
	QueuedJobs  sql.NullInt64 `db:"queued_jobs" json:"queued_jobs,omitempty"`
	UsageDay    sql.NullInt64 `db:"usage_day" json:"usage_day,omitempty"`
	UsageMonth  sql.NullInt64 `db:"usage_month" json:"usage_month,omitempty"`
	UsageTotal  sql.NullInt64 `db:"usage_total" json:"usage_total,omitempty"`
	CapturedAt  time.Time     `db:"captured_at" json:"captured_at"`
}

// UsagePoint is one day of aggregated activity for a model.
type UsagePoint struct {
	Date         string  `db:"date" json:"date"`
	AvgWorkers   float64 `db:"avg_workers" json:"avg_workers"`
	MaxQueued    int64   `db:"max_queued" json:"max_queued"`
	PeakDayUsage int64   `db:"peak_day_usage" json:"peak_day_usage"`
}

// ModelActivity ranks one model's activity over a query window.
type ModelActivity struct {
	ModelName    string  `db:"model_name" json:"model_name"`
	PeakDayUsage int64   `db:"peak_day_usage" json:"peak_day_usage"`
	AvgWorkers   float64 `db:"avg_workers" json:"avg_workers"`
}

// AuditEvent represents an administrative action against the catalogue.
type AuditEvent struct {
	ID          string    `db:"id" json:"id"`
	ActorKeyID  string    `db:"actor_key_id" json:"actor_key_id"`
	ModelName   string    `db:"model_name" json:"model_name"`
	Action      string    `db:"action" json:"action"` // 'update', 'refresh', 'export'
	DetailsJSON string    `db:"details_json" json:"details_json"`
	IPAddress   string    `db:"ip_address" json:"ip_address,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
