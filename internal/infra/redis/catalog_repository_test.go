package redis

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"flag-quiz-service/internal/domain"
	"flag-quiz-service/internal/game"
	"flag-quiz-service/internal/infra/memory"
)

func TestCatalogRepositoryCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := newClient(mr)

	loader := &countingLoader{CatalogLoader: memory.NewDefaultCatalogLoader()}
	repo := NewCatalogRepository(client, loader, time.Minute)

	countries, err := repo.GetCatalog(context.Background(), game.DefaultCatalogID)
	if err != nil {
		t.Fatalf("get catalog: %v", err)
	}
	if len(countries) != 10 {
		t.Fatalf("expected 10 countries, got %d", len(countries))
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader called once, got %d", loader.calls)
	}
	if !mr.Exists("catalog:default") {
		t.Fatalf("expected catalog cached in redis")
	}
	if ttl := mr.TTL("catalog:default"); ttl < time.Minute {
		t.Fatalf("expected ttl of at least a minute, got %v", ttl)
	}

	// Second call should hit cache, loader not incremented.
	cached, _ := repo.GetCatalog(context.Background(), game.DefaultCatalogID)
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}
	if cached[0] != countries[0] {
		t.Fatalf("cached catalog differs: %+v vs %+v", cached[0], countries[0])
	}
}

func TestCatalogRepositoryIgnoresCorruptCache(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	_ = mr.Set("catalog:default", "not json")
	loader := &countingLoader{CatalogLoader: memory.NewDefaultCatalogLoader()}
	repo := NewCatalogRepository(newClient(mr), loader, time.Minute)

	if _, err := repo.GetCatalog(context.Background(), game.DefaultCatalogID); err != nil {
		t.Fatalf("get catalog: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader fallback, got %d calls", loader.calls)
	}

	raw, _ := mr.Get("catalog:default")
	var countries []domain.Country
	if err := json.Unmarshal([]byte(raw), &countries); err != nil {
		t.Fatalf("expected cache overwritten with json: %v", err)
	}
}

func TestCatalogRepositoryPropagatesLoaderError(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	repo := NewCatalogRepository(newClient(mr), memory.NewDefaultCatalogLoader(), time.Minute)
	_, err = repo.GetCatalog(context.Background(), "missing")
	if !errors.Is(err, domain.ErrCatalogNotFound) {
		t.Fatalf("expected catalog not found, got %v", err)
	}
	if mr.Exists("catalog:missing") {
		t.Fatalf("expected nothing cached for a failed load")
	}
}

type countingLoader struct {
	memory.CatalogLoader
	calls int
}

func (l *countingLoader) LoadCatalog(ctx context.Context, catalogID string) ([]domain.Country, error) {
	l.calls++
	return l.CatalogLoader.LoadCatalog(ctx, catalogID)
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
