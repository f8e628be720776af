package chart

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const flatChartCacheKey = "primanota:chart:flat"

// Service exposes chart lookups to the rest of the application. The flattened
// projection backing account pickers is cached in Redis; concurrent cache
// misses are collapsed with singleflight so the tree is rebuilt once.
type Service struct {
	repo   Repository
	cache  *redis.Client
	ttl    time.Duration
	logger *slog.Logger
	group  singleflight.Group
}

func NewService(repo Repository, cache *redis.Client, ttl time.Duration, logger *slog.Logger) *Service {
	return &Service{repo: repo, cache: cache, ttl: ttl, logger: logger}
}

// Load builds the account tree from storage.
func (s *Service) Load(ctx context.Context) (*Tree, error) {
	accounts, err := s.repo.ListAccounts(ctx)
	if err != nil {
		return nil, err
	}
	return NewTree(accounts)
}

// FlatChart returns the picker projection, served from cache when possible.
func (s *Service) FlatChart(ctx context.Context) ([]FlatAccount, error) {
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, flatChartCacheKey).Bytes(); err == nil {
			var cached []FlatAccount
			if err := json.Unmarshal(raw, &cached); err == nil {
				return cached, nil
			}
			s.logger.Warn("discarding corrupt chart cache entry")
		}
	}
	result, err, _ := s.group.Do(flatChartCacheKey, func() (any, error) {
		tree, err := s.Load(ctx)
		if err != nil {
			return nil, err
		}
		flat := tree.Flatten()
		if s.cache != nil {
			if raw, err := json.Marshal(flat); err == nil {
				if err := s.cache.Set(ctx, flatChartCacheKey, raw, s.ttl).Err(); err != nil {
					s.logger.Warn("cache flat chart", slog.Any("error", err))
				}
			}
		}
		return flat, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]FlatAccount), nil
}

// Invalidate drops the cached projection after chart maintenance.
func (s *Service) Invalidate(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Del(ctx, flatChartCacheKey).Err()
}
