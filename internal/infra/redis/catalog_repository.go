package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"flag-quiz-service/internal/domain"
)

// CatalogLoader fetches country catalogs from a backing store (e.g., Postgres).
type CatalogLoader interface {
	LoadCatalog(ctx context.Context, catalogID string) ([]domain.Country, error)
}

// CatalogRepository caches catalogs in Redis and falls back to a loader on cache miss.
// Catalogs are stored as: SET catalog:{catalogID} <json array of countries>
type CatalogRepository struct {
	client *redis.Client
	loader CatalogLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewCatalogRepository(client *redis.Client, loader CatalogLoader, ttl time.Duration) *CatalogRepository {
	return &CatalogRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *CatalogRepository) GetCatalog(ctx context.Context, catalogID string) ([]domain.Country, error) {
	key := r.key(catalogID)

	if countries, ok := r.readCache(ctx, key); ok {
		return countries, nil
	}

	result, err, _ := r.sf.Do(catalogID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if countries, ok := r.readCache(ctx, key); ok {
			return countries, nil
		}

		countries, err := r.loader.LoadCatalog(ctx, catalogID)
		if err != nil {
			return nil, err
		}

		data, err := json.Marshal(countries)
		if err != nil {
			return nil, err
		}
		// best-effort: a failed write only costs another load
		_ = r.client.Set(ctx, key, data, r.ttlWithJitter()).Err()

		return countries, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Country), nil
}

func (r *CatalogRepository) readCache(ctx context.Context, key string) ([]domain.Country, bool) {
	raw, err := r.client.Get(ctx, key).Bytes()
	if err != nil || len(raw) == 0 {
		return nil, false
	}
	var countries []domain.Country
	if err := json.Unmarshal(raw, &countries); err != nil || len(countries) == 0 {
		return nil, false
	}
	return countries, true
}

func (r *CatalogRepository) key(catalogID string) string {
	return "catalog:" + catalogID
}

func (r *CatalogRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
