package analytics

import (
	"context"
	"time"

	"github.com/modelheap/registry-admin/internal/store"
	"github.com/modelheap/registry-admin/internal/store/model"
	"go.uber.org/zap"
)

// Ingestor handles the asynchronous persistence of usage snapshots.
type Ingestor interface {
	Record(rows []model.UsageSnapshot)
	Start(ctx context.Context)
	Stop()
}

type ingestor struct {
	logger    *zap.Logger
	repo      store.Repository
	rowChan   chan model.UsageSnapshot
	batchSize int
	flushTime time.Duration

	pruneEvery time.Duration
	keepDays   int
}

func NewIngestor(logger *zap.Logger, repo store.Repository) Ingestor {
	return &ingestor{
		logger:     logger,
		repo:       repo,
		rowChan:    make(chan model.UsageSnapshot, 10000),
		batchSize:  100,
		flushTime:  5 * time.Second,
		pruneEvery: 24 * time.Hour,
		keepDays:   90,
	}
}

func (i *ingestor) Record(rows []model.UsageSnapshot) {
	for _, row := range rows {
		select {
		case i.rowChan <- row:
		default:
			i.logger.Warn("Snapshot buffer full, dropping row", zap.String("model", row.ModelName))
			return
		}
	}
}

func (i *ingestor) Start(ctx context.Context) {
	go i.worker(ctx)
}

func (i *ingestor) Stop() {
	close(i.rowChan)
}

func (i *ingestor) worker(ctx context.Context) {
	batch := make([]model.UsageSnapshot, 0, i.batchSize)
	ticker := time.NewTicker(i.flushTime)
	defer ticker.Stop()
	pruner := time.NewTicker(i.pruneEvery)
	defer pruner.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}

		rows := batch
		err := i.repo.WithTx(context.Background(), func(tx store.Repository) error {
			return tx.Snapshots().InsertBatch(context.Background(), rows)
		})
		if err != nil {
			i.logger.Error("Failed to persist snapshot batch", zap.Int("rows", len(rows)), zap.Error(err))
		}
		batch = batch[:0]
	}

	for {
		select {
		case row, ok := <-i.rowChan:
			if !ok {
				flush()
				return
			}
			batch = append(batch, row)
			if len(batch) >= i.batchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-pruner.C:
			dropped, err := i.repo.Snapshots().Prune(context.Background(), i.keepDays)
			if err != nil {
				i.logger.Error("Failed to prune snapshots", zap.Error(err))
			} else if dropped > 0 {
				i.logger.Info("Pruned old snapshots", zap.Int64("rows", dropped))
			}
		case <-ctx.Done():
			flush()
			return
		}
	}
}
