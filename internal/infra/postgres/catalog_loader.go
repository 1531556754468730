package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"flag-quiz-service/internal/domain"
)

// CatalogLoader loads country catalogs from Postgres.
type CatalogLoader struct {
	pool *pgxpool.Pool
}

func NewCatalogLoader(pool *pgxpool.Pool) *CatalogLoader {
	return &CatalogLoader{pool: pool}
}

func (l *CatalogLoader) LoadCatalog(ctx context.Context, catalogID string) ([]domain.Country, error) {
	rows, err := l.pool.Query(ctx,
		`SELECT id, translation, image_ref FROM countries WHERE catalog_id=$1 ORDER BY position`,
		catalogID,
	)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	defer rows.Close()

	var countries []domain.Country
	for rows.Next() {
		var c domain.Country
		if err := rows.Scan(&c.ID, &c.Translation, &c.ImageRef); err != nil {
			return nil, fmt.Errorf("scan country: %w", err)
		}
		countries = append(countries, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	if len(countries) == 0 {
		return nil, domain.ErrCatalogNotFound
	}
	return countries, nil
}
