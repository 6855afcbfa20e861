package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/modelheap/registry-admin/internal/store"
	"github.com/modelheap/registry-admin/internal/store/model"
)

// DB defines the interface for database operations (satisfied by *sqlx.DB and *sqlx.Tx)
type DB interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	NamedExecContext(ctx context.Context, query string, arg interface{}) (sql.Result, error)
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// SqliteRepository implements store.Repository
type SqliteRepository struct {
	db       *sqlx.DB // Required for starting new transactions
	executor DB       // Used for actual queries (can be *sqlx.DB or *sqlx.Tx)
}

func NewSqliteRepository(db *sqlx.DB) *SqliteRepository {
	return &SqliteRepository{
		db:       db,
		executor: db,
	}
}

func (r *SqliteRepository) Close() error {
	return r.db.Close()
}

func (r *SqliteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SqliteRepository) WithTx(ctx context.Context, fn func(repo store.Repository) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	// Create a repository instance that uses the transaction
	txRepo := &SqliteRepository{
		db:       r.db, // Keep the original DB handle
		executor: tx,
	}

	if err := fn(txRepo); err != nil {
		// attempt rollback, but prioritize original error
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

func (r *SqliteRepository) APIKeys() store.APIKeyRepository {
	return &apiKeyRepo{db: r.executor}
}

func (r *SqliteRepository) Snapshots() store.SnapshotRepository {
	return &snapshotRepo{db: r.executor}
}

func (r *SqliteRepository) Audit() store.AuditRepository {
	return &auditRepo{db: r.executor}
}

type apiKeyRepo struct {
	db DB
}

func (r *apiKeyRepo) GetByHash(ctx context.Context, hash string) (*model.APIKey, error) {
	var key model.APIKey
	// active check is part of the query for speed
	query := `SELECT * FROM api_keys WHERE key_hash = ? AND is_active = 1`
	err := r.db.GetContext(ctx, &key, query, hash)
	if err != nil {
		return nil, err
	}
	return &key, nil
}

func (r *apiKeyRepo) Create(ctx context.Context, key *model.APIKey) error {
	query := `
	INSERT INTO api_keys (id, name, key_hash, key_prefix, role, is_active, created_at, updated_at)
	VALUES (:id, :name, :key_hash, :key_prefix, :role, :is_active, :created_at, :updated_at)`
	_, err := r.db.NamedExecContext(ctx, query, key)
	return err
}

func (r *apiKeyRepo) Touch(ctx context.Context, id string) error {
	query := `UPDATE api_keys SET last_used_at = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, time.Now(), id)
	return err
}

func (r *apiKeyRepo) List(ctx context.Context) ([]model.APIKey, error) {
	var keys []model.APIKey
	err := r.db.SelectContext(ctx, &keys, `SELECT * FROM api_keys ORDER BY created_at DESC`)
	return keys, err
}

type snapshotRepo struct {
	db DB
}

func (r *snapshotRepo) InsertBatch(ctx context.Context, rows []model.UsageSnapshot) error {
	// Using NamedExec for cleaner mapping
	query := `
	INSERT INTO usage_snapshots (
		id, model_name, group_key,
		worker_count, queued_jobs,
		usage_day, usage_month, usage_total,
		captured_at
	) VALUES (
		:id, :model_name, :group_key,
		:worker_count, :queued_jobs,
		:usage_day, :usage_month, :usage_total,
		:captured_at
	)`
	for _, row := range rows {
		if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
			return err
		}
	}
	return nil
}

func (r *snapshotRepo) Trend(ctx context.Context, name string, days int) ([]model.UsagePoint, error) {
	var points []model.UsagePoint
	// AVG/MAX skip NULL counters, so refresh cycles where the grid did
	// not measure a field never drag the aggregate toward zero.
	query := `
		SELECT
			DATE(captured_at) as date,
			COALESCE(AVG(worker_count), 0) as avg_workers,
			COALESCE(MAX(queued_jobs), 0) as max_queued,
			COALESCE(MAX(usage_day), 0) as peak_day_usage
		FROM usage_snapshots
		WHERE model_name = ? AND captured_at >= DATE('now', ?)
		GROUP BY date
		ORDER BY date ASC
	`
	// SQLite date offset format is '-7 days'
	err := r.db.SelectContext(ctx, &points, query, name, fmt.Sprintf("-%d days", days))
	return points, err
}

func (r *snapshotRepo) TopModels(ctx context.Context, days, limit int) ([]model.ModelActivity, error) {
	var activity []model.ModelActivity
	query := `
		SELECT
			model_name,
			COALESCE(MAX(usage_day), 0) as peak_day_usage,
			COALESCE(AVG(worker_count), 0) as avg_workers
		FROM usage_snapshots
		WHERE captured_at >= DATE('now', ?)
		GROUP BY model_name
		ORDER BY peak_day_usage DESC
		LIMIT ?
	`
	err := r.db.SelectContext(ctx, &activity, query, fmt.Sprintf("-%d days", days), limit)
	return activity, err
}

func (r *snapshotRepo) Prune(ctx context.Context, keepDays int) (int64, error) {
	query := `DELETE FROM usage_snapshots WHERE captured_at < DATE('now', ?)`
	res, err := r.db.ExecContext(ctx, query, fmt.Sprintf("-%d days", keepDays))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type auditRepo struct {
	db DB
}

func (r *auditRepo) Log(ctx context.Context, event *model.AuditEvent) error {
	query := `
	INSERT INTO audit_events (id, actor_key_id, model_name, action, details_json, ip_address, created_at)
	VALUES (:id, :actor_key_id, :model_name, :action, :details_json, :ip_address, :created_at)`
	_, err := r.db.NamedExecContext(ctx, query, event)
	return err
}

func (r *auditRepo) Recent(ctx context.Context, limit int) ([]model.AuditEvent, error) {
	var events []model.AuditEvent
	query := `SELECT * FROM audit_events ORDER BY created_at DESC LIMIT ?`
	err := r.db.SelectContext(ctx, &events, query, limit)
	return events, err
}
