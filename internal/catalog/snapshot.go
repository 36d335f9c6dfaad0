package catalog

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/pkg/logger"
)

// ErrStaleFetch is returned by Refresh when a newer refresh started while this
// one was loading.
var ErrStaleFetch = errors.New("catalog fetch superseded by a newer one")

// Loader fetches the full product list.
type Loader interface {
	LoadAll(ctx context.Context) ([]model.Product, error)
}

type LoaderFunc func(ctx context.Context) ([]model.Product, error)

func (f LoaderFunc) LoadAll(ctx context.Context) ([]model.Product, error) {
	return f(ctx)
}

// Snapshot caches the product list the filter pipeline runs against.
type Snapshot struct {
	loader Loader
	gen    Generation
	loads  singleflight.Group

	mu       sync.RWMutex
	products []model.Product
	loadedAt time.Time
}

func NewSnapshot(loader Loader) *Snapshot {
	return &Snapshot{loader: loader}
}

// Refresh reloads the product list. When refreshes overlap, only the one started
// last replaces the cached list.
func (s *Snapshot) Refresh(ctx context.Context) error {
	token := s.gen.Begin()

	products, err := s.loader.LoadAll(ctx)
	if err != nil {
		return err
	}

	applied := s.gen.Commit(token, func() {
		s.mu.Lock()
		s.products = products
		s.loadedAt = time.Now()
		s.mu.Unlock()
	})
	if !applied {
		logger.Debug("Discarded stale catalog fetch", map[string]interface{}{
			"token": uint64(token),
			"count": len(products),
		})
		return ErrStaleFetch
	}

	logger.Debug("Catalog snapshot refreshed", map[string]interface{}{
		"count": len(products),
	})
	return nil
}

// Products returns the cached list, loading it first if it was never loaded or
// was invalidated. Concurrent cold callers share one load. A load superseded
// by a newer fetch is retried until some fetch commits.
func (s *Snapshot) Products(ctx context.Context) ([]model.Product, error) {
	for {
		if products, ok := s.current(); ok {
			return products, nil
		}

		_, err, _ := s.loads.Do("products", func() (interface{}, error) {
			return nil, s.Refresh(ctx)
		})
		if err != nil && !errors.Is(err, ErrStaleFetch) {
			return nil, err
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}
}

func (s *Snapshot) current() ([]model.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.products, !s.loadedAt.IsZero()
}

// Invalidate forces the next Products call to reload. Fetches already in
// flight can no longer commit.
func (s *Snapshot) Invalidate() {
	s.gen.Begin()
	s.mu.Lock()
	s.loadedAt = time.Time{}
	s.mu.Unlock()
}

func (s *Snapshot) LoadedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadedAt
}
