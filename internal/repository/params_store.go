package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"CryptoBrain/internal/domain/models"
	domrepo "CryptoBrain/internal/domain/repository"
	"CryptoBrain/pkg/cache"
)

var _ domrepo.ParamsStore = (*CacheParamsStore)(nil)

const (
	paramsKey = "params:adaptive"
	paramsTTL = 30 * 24 * time.Hour
)

// CacheParamsStore keeps the tuned parameters in the shared cache so every
// replica mines with the same thresholds.
type CacheParamsStore struct {
	cache cache.Service
}

func NewCacheParamsStore(c cache.Service) *CacheParamsStore {
	return &CacheParamsStore{cache: c}
}

// LoadParams reports false when nothing has been saved yet.
func (s *CacheParamsStore) LoadParams(ctx context.Context) (models.AdaptiveParameters, bool, error) {
	var p models.AdaptiveParameters
	if err := s.cache.Get(ctx, paramsKey, &p); err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return models.AdaptiveParameters{}, false, nil
		}
		return models.AdaptiveParameters{}, false, fmt.Errorf("load params: %w", err)
	}
	return p, true, nil
}

func (s *CacheParamsStore) SaveParams(ctx context.Context, p models.AdaptiveParameters) error {
	if err := s.cache.Set(ctx, paramsKey, p, paramsTTL); err != nil {
		return fmt.Errorf("save params: %w", err)
	}
	return nil
}
