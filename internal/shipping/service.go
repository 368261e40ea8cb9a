package shipping

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/toybazaar/toybazaar/internal/pricing"
)

// Service holds the shipping rule snapshot for the process. It satisfies
// cart.RuleProvider: reads never fail, they return the last known rule or the
// zero-value default while no fetch has succeeded.
type Service struct {
	repo   Repository
	logger *slog.Logger
	ttl    time.Duration

	mu        sync.RWMutex
	rule      pricing.ShippingRule
	fetchedAt time.Time
}

// NewService constructs a Service. ttl bounds how long a snapshot is reused
// before the repository is consulted again.
func NewService(repo Repository, logger *slog.Logger, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &Service{repo: repo, logger: logger, ttl: ttl}
}

// CurrentRule returns the shipping rule snapshot, refreshing it when stale.
// A failed refresh keeps the previous snapshot in place; there is no retry
// beyond the next natural read.
func (s *Service) CurrentRule(ctx context.Context) pricing.ShippingRule {
	s.mu.RLock()
	rule, fetchedAt := s.rule, s.fetchedAt
	s.mu.RUnlock()

	if time.Since(fetchedAt) < s.ttl {
		return rule
	}

	fresh, err := s.repo.GetActive(ctx)
	if err != nil {
		if err != ErrNotConfigured {
			s.logger.Warn("shipping rule fetch failed, defaults retained", slog.Any("error", err))
		}
		s.mu.Lock()
		s.fetchedAt = time.Now()
		s.mu.Unlock()
		return rule
	}

	s.mu.Lock()
	s.rule = fresh
	s.fetchedAt = time.Now()
	s.mu.Unlock()
	return fresh
}

// Update persists a new rule and refreshes the snapshot immediately.
func (s *Service) Update(ctx context.Context, rule pricing.ShippingRule) error {
	if err := s.repo.Upsert(ctx, rule); err != nil {
		return err
	}
	s.mu.Lock()
	s.rule = rule
	s.fetchedAt = time.Now()
	s.mu.Unlock()
	return nil
}
