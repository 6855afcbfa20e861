package analytics

import (
	"context"

	"github.com/modelheap/registry-admin/internal/store"
	"github.com/modelheap/registry-admin/internal/store/model"
)

type Service interface {
	Trend(ctx context.Context, name string, days int) ([]model.UsagePoint, error)
	TopModels(ctx context.Context, days, limit int) ([]model.ModelActivity, error)
}

type service struct {
	repo store.Repository
}

func NewService(repo store.Repository) Service {
	return &service{
		repo: repo,
	}
}

func (s *service) Trend(ctx context.Context, name string, days int) ([]model.UsagePoint, error) {
	if days <= 0 {
		days = 7 // default to last week
	}
	return s.repo.Snapshots().Trend(ctx, name, days)
}

func (s *service) TopModels(ctx context.Context, days, limit int) ([]model.ModelActivity, error) {
	if days <= 0 {
		days = 7
	}
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	return s.repo.Snapshots().TopModels(ctx, days, limit)
}
