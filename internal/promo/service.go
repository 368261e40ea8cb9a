package promo

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/toybazaar/toybazaar/internal/catalog"
	"github.com/toybazaar/toybazaar/internal/pricing"
)

const homeConfigCacheKey = "promo:home-config"

// Service assembles the home configuration and manages hot deals. The home
// config is cached in redis and populated under singleflight so concurrent
// cache misses trigger a single rebuild.
type Service struct {
	repo    Repository
	catalog *catalog.Service
	client  *redis.Client
	logger  *slog.Logger
	ttl     time.Duration
	group   singleflight.Group
	now     func() time.Time
}

// NewService constructs a Service.
func NewService(repo Repository, catalogSvc *catalog.Service, client *redis.Client, logger *slog.Logger, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &Service{
		repo:    repo,
		catalog: catalogSvc,
		client:  client,
		logger:  logger,
		ttl:     ttl,
		now:     time.Now,
	}
}

// HomeConfig returns the cached home payload, rebuilding it on miss.
func (s *Service) HomeConfig(ctx context.Context) (*HomeConfig, error) {
	if s.client != nil {
		payload, err := s.client.Get(ctx, homeConfigCacheKey).Bytes()
		if err == nil {
			var cfg HomeConfig
			if jsonErr := json.Unmarshal(payload, &cfg); jsonErr == nil {
				return &cfg, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.logger.Warn("home config cache read failed", slog.Any("error", err))
		}
	}

	resultChan := s.group.DoChan(homeConfigCacheKey, func() (any, error) {
		return s.build(ctx)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-resultChan:
		if res.Err != nil {
			return nil, res.Err
		}
		cfg := res.Val.(*HomeConfig)
		s.cache(ctx, cfg)
		return cfg, nil
	}
}

func (s *Service) build(ctx context.Context) (*HomeConfig, error) {
	now := s.now()

	banners, err := s.repo.ListBanners(ctx)
	if err != nil {
		return nil, err
	}

	deals, err := s.repo.ListActiveDeals(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]HotDealItem, 0, len(deals))
	for _, deal := range deals {
		// expired deals are filtered here, before any pricing happens
		if !pricing.DealActive(deal.EndsAt, now) {
			continue
		}
		view, err := s.catalog.GetView(ctx, deal.ProductID)
		if err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				continue
			}
			return nil, err
		}
		items = append(items, HotDealItem{ProductView: *view, EndsAt: deal.EndsAt})
	}

	return &HomeConfig{Banners: banners, HotDealsItems: items, GeneratedAt: now}, nil
}

func (s *Service) cache(ctx context.Context, cfg *HomeConfig) {
	if s.client == nil {
		return
	}
	payload, err := json.Marshal(cfg)
	if err != nil {
		return
	}
	if err := s.client.Set(ctx, homeConfigCacheKey, payload, s.ttl).Err(); err != nil {
		s.logger.Warn("home config cache write failed", slog.Any("error", err))
	}
}

// CreateDeal registers a hot deal and drops the cached home config.
func (s *Service) CreateDeal(ctx context.Context, deal HotDeal) (int64, error) {
	if _, err := s.catalog.Get(ctx, deal.ProductID); err != nil {
		return 0, err
	}
	id, err := s.repo.CreateDeal(ctx, deal)
	if err != nil {
		return 0, err
	}
	s.invalidate(ctx)
	return id, nil
}

// DeactivateDeal retires a deal and drops the cached home config.
func (s *Service) DeactivateDeal(ctx context.Context, id int64) error {
	if err := s.repo.DeactivateDeal(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// SweepExpired deactivates deals whose window has closed. Called by the
// worker's cron schedule; returns the number of deals retired.
func (s *Service) SweepExpired(ctx context.Context) (int64, error) {
	n, err := s.repo.DeactivateExpired(ctx, s.now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.invalidate(ctx)
	}
	return n, nil
}

func (s *Service) invalidate(ctx context.Context) {
	if s.client == nil {
		return
	}
	if err := s.client.Del(ctx, homeConfigCacheKey).Err(); err != nil {
		s.logger.Warn("home config cache invalidate failed", slog.Any("error", err))
	}
}
