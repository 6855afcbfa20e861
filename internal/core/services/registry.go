package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/modelheap/registry-admin/internal/analytics"
	"github.com/modelheap/registry-admin/internal/core/domain"
	"github.com/modelheap/registry-admin/internal/core/ports"
	"github.com/modelheap/registry-admin/internal/core/resolve"
	"github.com/modelheap/registry-admin/internal/store"
	"github.com/modelheap/registry-admin/internal/store/model"
	"github.com/modelheap/registry-admin/pkg/schema"
	"go.uber.org/zap"
)

const (
	cacheKeySnapshot = "registry:snapshot"
	snapshotCacheTTL = 15 * time.Minute
)

// RegistryService merges the reference catalogue with the grid's runtime
// stats and serves the result as an in-memory snapshot. The cache carries
// the raw inputs across restarts; ingestor and repo are optional and may
// be nil when persistence is disabled.
type RegistryService struct {
	logger    *zap.Logger
	reference ports.ReferenceClient
	grid      ports.StatsClient
	cache     ports.CacheService
	ingestor  analytics.Ingestor
	repo      store.Repository
	opts      resolve.MergeOptions

	refreshMu sync.Mutex   // serializes refresh cycles
	mu        sync.RWMutex // guards snap
	snap      *snapshot
}

type snapshot struct {
	records []schema.ReferenceRecord
	stats   map[string]schema.ModelStats
	merged  []*resolve.UnifiedModel
	entries []resolve.DisplayEntry
	meta    domain.SnapshotMeta
}

// cachedSnapshot is the cache payload: raw inputs, not the merged output,
// so the resolve pipeline always runs against the current rules.
type cachedSnapshot struct {
	Records []schema.ReferenceRecord     `json:"records"`
	Stats   map[string]schema.ModelStats `json:"stats"`
	Meta    domain.SnapshotMeta          `json:"meta"`
}

func NewRegistryService(
	logger *zap.Logger,
	reference ports.ReferenceClient,
	grid ports.StatsClient,
	cache ports.CacheService,
	ingestor analytics.Ingestor,
	repo store.Repository,
	opts resolve.MergeOptions,
) *RegistryService {
	return &RegistryService{
		logger:    logger,
		reference: reference,
		grid:      grid,
		cache:     cache,
		ingestor:  ingestor,
		repo:      repo,
		opts:      opts,
	}
}

func (s *RegistryService) Refresh(ctx context.Context) (*domain.RefreshSummary, error) {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	started := time.Now()

	records, err := s.reference.FetchAll(ctx)
	if err != nil {
		return nil, err
	}

	stats, err := s.grid.FetchStats(ctx)
	if err != nil {
		// The catalogue without live stats is still a usable snapshot.
		s.logger.Warn("Grid stats unavailable, serving catalogue only", zap.Error(err))
		stats = nil
	}

	snap := s.buildSnapshot(records, stats, time.Now())
	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()

	s.persist(ctx, snap)

	summary := &domain.RefreshSummary{
		StartedAt:      started,
		DurationMillis: time.Since(started).Milliseconds(),
		ReferenceCount: snap.meta.ReferenceCount,
		StatsCount:     snap.meta.StatsCount,
		RecordCount:    snap.meta.RecordCount,
		EntryCount:     len(snap.entries),
	}
	s.logger.Info("Registry snapshot refreshed",
		zap.Int("references", summary.ReferenceCount),
		zap.Int("stats", summary.StatsCount),
		zap.Int("entries", summary.EntryCount),
		zap.Int64("duration_ms", summary.DurationMillis),
	)
	return summary, nil
}

func (s *RegistryService) Display(ctx context.Context, filter ports.ModelFilter) ([]resolve.DisplayEntry, *domain.SnapshotMeta, error) {
	snap, err := s.ensureSnapshot(ctx)
	if err != nil {
		return nil, nil, err
	}

	meta := snap.meta
	return filterEntries(snap.entries, filter), &meta, nil
}

func (s *RegistryService) Get(ctx context.Context, name string) (resolve.DisplayEntry, error) {
	snap, err := s.ensureSnapshot(ctx)
	if err != nil {
		return nil, err
	}

	for _, entry := range snap.entries {
		if entry.EntryName() == name {
			return entry, nil
		}
	}

	// The name may be one variation inside a group.
	for _, entry := range snap.entries {
		group, ok := entry.(*resolve.GroupedModel)
		if !ok {
			continue
		}
		for _, v := range group.Variations {
			if v.Name == name {
				return v, nil
			}
		}
	}

	return nil, domain.NotFoundError(fmt.Sprintf("model %q is not in the current snapshot", name))
}

func (s *RegistryService) Update(ctx context.Context, rec schema.ReferenceRecord) (*resolve.UnifiedModel, error) {
	if rec.Name == "" {
		return nil, domain.BadRequestError("record name is required")
	}

	if err := s.reference.Push(ctx, rec); err != nil {
		return nil, err
	}

	// Patch the in-memory snapshot so the edit is visible before the next
	// full refresh.
	var stats map[string]schema.ModelStats
	s.mu.Lock()
	if s.snap != nil {
		records := make([]schema.ReferenceRecord, len(s.snap.records))
		copy(records, s.snap.records)
		replaced := false
		for i := range records {
			if records[i].Name == rec.Name {
				records[i] = rec
				replaced = true
				break
			}
		}
		if !replaced {
			records = append(records, rec)
		}
		s.snap = s.buildSnapshot(records, s.snap.stats, s.snap.meta.FetchedAt)
		stats = s.snap.stats
	}
	s.mu.Unlock()

	if s.cache != nil {
		if err := s.cache.Delete(ctx, cacheKeySnapshot); err != nil {
			s.logger.Warn("Failed to invalidate snapshot cache", zap.Error(err))
		}
	}

	s.audit(ctx, rec)

	return resolve.MergeOne(rec, stats, s.opts), nil
}

// StartBackground refreshes the snapshot on a fixed interval until ctx is
// cancelled. The initial refresh runs immediately.
func (s *RegistryService) StartBackground(ctx context.Context, interval time.Duration) {
	go func() {
		if _, err := s.Refresh(ctx); err != nil {
			s.logger.Error("Initial refresh failed", zap.Error(err))
		}

		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if _, err := s.Refresh(ctx); err != nil {
					s.logger.Error("Scheduled refresh failed", zap.Error(err))
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (s *RegistryService) buildSnapshot(records []schema.ReferenceRecord, stats map[string]schema.ModelStats, at time.Time) *snapshot {
	merged := resolve.MergeAll(records, stats, s.opts)
	return &snapshot{
		records: records,
		stats:   stats,
		merged:  merged,
		entries: resolve.DisplayList(merged),
		meta: domain.SnapshotMeta{
			FetchedAt:      at,
			ReferenceCount: len(records),
			StatsCount:     len(stats),
			RecordCount:    len(merged),
		},
	}
}

func (s *RegistryService) ensureSnapshot(ctx context.Context) (*snapshot, error) {
	s.mu.RLock()
	snap := s.snap
	s.mu.RUnlock()
	if snap != nil {
		return snap, nil
	}

	// Cold start: another instance may have refreshed recently.
	if s.cache != nil {
		var cached cachedSnapshot
		err := s.cache.Get(ctx, cacheKeySnapshot, &cached)
		if err == nil {
			snap = s.buildSnapshot(cached.Records, cached.Stats, cached.Meta.FetchedAt)
			s.mu.Lock()
			s.snap = snap
			s.mu.Unlock()
			return snap, nil
		}
		if !errors.Is(err, ports.ErrCacheMiss) {
			s.logger.Warn("Snapshot cache read failed", zap.Error(err))
		}
	}

	if _, err := s.Refresh(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap, nil
}

func (s *RegistryService) persist(ctx context.Context, snap *snapshot) {
	if s.cache != nil {
		payload := cachedSnapshot{Records: snap.records, Stats: snap.stats, Meta: snap.meta}
		if err := s.cache.Set(ctx, cacheKeySnapshot, payload, snapshotCacheTTL); err != nil {
			s.logger.Warn("Failed to cache snapshot", zap.Error(err))
		}
	}
	if s.ingestor != nil {
		s.ingestor.Record(snapshotRows(snap.merged, snap.meta.FetchedAt))
	}
}

func (s *RegistryService) audit(ctx context.Context, rec schema.ReferenceRecord) {
	if s.repo == nil {
		return
	}

	actor, _ := ctx.Value(store.ContextKeyActor).(string)
	ip, _ := ctx.Value(store.ContextKeyClientIP).(string)

	fields := map[string]string{"name": rec.Name, "version": rec.Version}
	if app, ok := ctx.Value(store.ContextKeyAppName).(string); ok && app != "" {
		fields["app"] = app
	}
	details, _ := json.Marshal(fields)

	event := &model.AuditEvent{
		ID:          uuid.NewString(),
		ActorKeyID:  actor,
		ModelName:   rec.Name,
		Action:      "update",
		DetailsJSON: string(details),
		IPAddress:   ip,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.repo.Audit().Log(ctx, event); err != nil {
		s.logger.Warn("Failed to record audit event", zap.String("model", rec.Name), zap.Error(err))
	}
}

// snapshotRows flattens merged records into persistence rows. Records the
// grid never measured are skipped, and absent counters stay NULL rather
// than collapsing to zero.
func snapshotRows(merged []*resolve.UnifiedModel, at time.Time) []model.UsageSnapshot {
	rows := make([]model.UsageSnapshot, 0, len(merged))
	for _, m := range merged {
		if m.WorkerCount == nil && m.QueuedJobs == nil && m.Usage == nil {
			continue
		}
		row := model.UsageSnapshot{
			ID:         uuid.NewString(),
			ModelName:  m.Name,
			GroupKey:   resolve.GroupKey(m),
			CapturedAt: at,
		}
		if m.WorkerCount != nil {
			row.WorkerCount = sql.NullInt64{Int64: int64(*m.WorkerCount), Valid: true}
		}
		if m.QueuedJobs != nil {
			row.QueuedJobs = sql.NullInt64{Int64: int64(*m.QueuedJobs), Valid: true}
		}
		if m.Usage != nil {
			row.UsageDay = sql.NullInt64{Int64: m.Usage.Day, Valid: true}
			row.UsageMonth = sql.NullInt64{Int64: m.Usage.Month, Valid: true}
			row.UsageTotal = sql.NullInt64{Int64: m.Usage.Total, Valid: true}
		}
		rows = append(rows, row)
	}
	return rows
}
