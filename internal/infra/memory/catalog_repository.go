package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"flag-quiz-service/internal/domain"
	"flag-quiz-service/internal/game"
)

// CatalogLoader fetches country catalogs from a backing store (e.g., Postgres).
type CatalogLoader interface {
	LoadCatalog(ctx context.Context, catalogID string) ([]domain.Country, error)
}

// CatalogRepository caches catalogs with TTL to avoid repeated DB hits.
type CatalogRepository struct {
	loader CatalogLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedCatalog
}

type cachedCatalog struct {
	countries []domain.Country
	expiresAt time.Time
}

func NewCatalogRepository(loader CatalogLoader, ttl time.Duration) *CatalogRepository {
	return &CatalogRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedCatalog),
	}
}

// GetCatalog returns a copy of the catalog so callers can never mutate the cache.
func (r *CatalogRepository) GetCatalog(ctx context.Context, catalogID string) ([]domain.Country, error) {
	now := r.clock()

	r.mu.RLock()
	if entry, ok := r.cache[catalogID]; ok && entry.expiresAt.After(now) {
		r.mu.RUnlock()
		return cloneCountries(entry.countries), nil
	}
	r.mu.RUnlock()

	result, err, _ := r.sf.Do(catalogID, func() (interface{}, error) {
		now := r.clock()
		r.mu.RLock()
		if entry, ok := r.cache[catalogID]; ok && entry.expiresAt.After(now) {
			r.mu.RUnlock()
			return entry.countries, nil
		}
		r.mu.RUnlock()

		countries, err := r.loader.LoadCatalog(ctx, catalogID)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		r.cache[catalogID] = cachedCatalog{
			countries: cloneCountries(countries),
			expiresAt: now.Add(r.ttlWithJitter()),
		}
		r.mu.Unlock()
		return countries, nil
	})
	if err != nil {
		return nil, err
	}
	return cloneCountries(result.([]domain.Country)), nil
}

// StaticCatalogLoader is a simple loader backed by an in-memory map (useful for tests/demos).
type StaticCatalogLoader struct {
	catalogs map[string][]domain.Country
}

func NewStaticCatalogLoader(catalogs map[string][]domain.Country) *StaticCatalogLoader {
	return &StaticCatalogLoader{catalogs: catalogs}
}

// NewDefaultCatalogLoader serves only the built-in catalog.
func NewDefaultCatalogLoader() *StaticCatalogLoader {
	return NewStaticCatalogLoader(map[string][]domain.Country{
		game.DefaultCatalogID: game.DefaultCatalog(),
	})
}

func (l *StaticCatalogLoader) LoadCatalog(_ context.Context, catalogID string) ([]domain.Country, error) {
	if countries, ok := l.catalogs[catalogID]; ok {
		return cloneCountries(countries), nil
	}
	return nil, domain.ErrCatalogNotFound
}

func (r *CatalogRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

func cloneCountries(in []domain.Country) []domain.Country {
	out := make([]domain.Country, len(in))
	copy(out, in)
	return out
}
