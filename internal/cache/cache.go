package cache

import (
	"context"
	"time"

	"pizzapos/internal/domain"
)

// DashboardCache holds computed dashboard statistics keyed by period.
// Invalidate drops every cached entry at once.
type DashboardCache interface {
	GetStats(ctx context.Context, period string) (*domain.DashboardStats, bool, error)
	SetStats(ctx context.Context, period string, value *domain.DashboardStats, ttl time.Duration) error
	Invalidate(ctx context.Context) error
}

type NoopDashboardCache struct{}

func (NoopDashboardCache) GetStats(_ context.Context, _ string) (*domain.DashboardStats, bool, error) {
	return nil, false, nil
}

func (NoopDashboardCache) SetStats(_ context.Context, _ string, _ *domain.DashboardStats, _ time.Duration) error {
	return nil
}

func (NoopDashboardCache) Invalidate(_ context.Context) error {
	return nil
}
