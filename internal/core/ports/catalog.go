package ports

import (
	"context"

	"github.com/ewilliams-labs/trackfinder/internal/core/domain"
)

// CatalogSource supplies the full catalog once at startup.
type CatalogSource interface {
	LoadCatalog(ctx context.Context) ([]domain.SongRecord, error)
}

// CatalogSearcher finds catalog songs by a text field.
type CatalogSearcher interface {
	SearchCatalog(ctx context.Context, field domain.SearchField, term string, limit int) ([]domain.SongRecord, error)
}
