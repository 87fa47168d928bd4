package ports

import (
	"context"

	"github.com/ewilliams-labs/trackfinder/internal/core/domain"
)

// PlaylistStore persists saved playlists, one isolated partition per user.
// Save is append only and never rewrites earlier playlists. A failed Save
// leaves no rows behind; it must not be retried blindly.
type PlaylistStore interface {
	Save(ctx context.Context, userID, name string, songs []domain.Match) (domain.PlaylistHandle, error)
	LoadOverview(ctx context.Context, userID string, sort domain.OverviewSort) ([]domain.OverviewRow, error)
	LoadRaw(ctx context.Context, userID string, columns []domain.Column) ([]domain.RawRow, error)
}
