package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ewilliams-labs/trackfinder/internal/core/domain"
	"github.com/ewilliams-labs/trackfinder/internal/core/ports"
	"github.com/ewilliams-labs/trackfinder/internal/core/similarity"
	"github.com/ewilliams-labs/trackfinder/internal/core/stats"
	"github.com/ewilliams-labs/trackfinder/internal/logging"
	"github.com/ewilliams-labs/trackfinder/internal/metrics"
)

// Orchestrator coordinates the cart, the similarity index and the playlist
// store for one session at a time. It holds no per-session state itself.
type Orchestrator struct {
	index        *similarity.Index
	searcher     ports.CatalogSearcher
	store        ports.PlaylistStore
	stats        *stats.Aggregator
	clearPolicy  domain.ClearPolicy
	excludeSeeds bool
	now          func() time.Time
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithClearPolicy sets what happens to the cart after a successful save.
func WithClearPolicy(p domain.ClearPolicy) Option {
	return func(o *Orchestrator) {
		o.clearPolicy = p
	}
}

// WithExcludeSeeds drops the seed songs from search results.
func WithExcludeSeeds(exclude bool) Option {
	return func(o *Orchestrator) {
		o.excludeSeeds = exclude
	}
}

// WithClock overrides the time source used to touch sessions.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		o.now = now
	}
}

// NewOrchestrator constructs an Orchestrator.
func NewOrchestrator(index *similarity.Index, searcher ports.CatalogSearcher, store ports.PlaylistStore, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		index:    index,
		searcher: searcher,
		store:    store,
		stats:    stats.NewAggregator(store),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// CatalogSize returns the number of indexed songs.
func (o *Orchestrator) CatalogSize() int {
	return o.index.Len()
}

// ToggleSong adds the catalog song with key to the cart, or removes it when
// already present. It returns the membership after the call.
func (o *Orchestrator) ToggleSong(s *domain.Session, key domain.SongKey) (bool, error) {
	song, ok := o.index.Lookup(key)
	if !ok {
		return false, fmt.Errorf("service: song %q by %q: %w", key.TrackName, key.TrackArtist, domain.ErrNotFound)
	}
	o.touch(s)
	return s.Cart.Toggle(song), nil
}

// AddSong adds the catalog song with key to the cart. Adding a song that is
// already present is a no-op; the bool reports whether the cart changed.
func (o *Orchestrator) AddSong(s *domain.Session, key domain.SongKey) (bool, error) {
	song, ok := o.index.Lookup(key)
	if !ok {
		return false, fmt.Errorf("service: song %q by %q: %w", key.TrackName, key.TrackArtist, domain.ErrNotFound)
	}
	o.touch(s)
	return s.Cart.Add(song), nil
}

// RemoveAt drops the cart entry at position i.
func (o *Orchestrator) RemoveAt(s *domain.Session, i int) error {
	if !s.Cart.RemoveAt(i) {
		return fmt.Errorf("service: cart position %d: %w", i, domain.ErrNotFound)
	}
	o.touch(s)
	return nil
}

// ClearCart empties the cart. The last search result is kept.
func (o *Orchestrator) ClearCart(s *domain.Session) {
	s.Cart.Clear()
	o.touch(s)
}

// FindSimilar runs a search seeded by the cart and stores the result on the
// session. The cart is not modified. On error the previous result is kept.
func (o *Orchestrator) FindSimilar(ctx context.Context, s *domain.Session, k int) (domain.SimilarityResult, error) {
	if !s.Cart.CanSearch() {
		return domain.SimilarityResult{}, &domain.InsufficientSeedsError{Got: s.Cart.Len()}
	}

	start := time.Now()
	res, err := similarity.FindSimilar(o.index, s.Cart.Songs(), k, similarity.WithExcludeSeeds(o.excludeSeeds))
	if err != nil {
		return domain.SimilarityResult{}, fmt.Errorf("service: find similar: %w", err)
	}
	elapsed := time.Since(start)
	metrics.RecordSearch(elapsed, res.Len())

	logging.Ctx(ctx).Debug().
		Str("session_id", s.ID).
		Int("seeds", res.Seeds).
		Int("k", k).
		Int("results", res.Len()).
		Dur("elapsed", elapsed).
		Msg("similarity search")

	s.Result = &res
	o.touch(s)
	return res, nil
}

// SavePlaylist persists the session's last search result under name. On
// success the result is consumed and the clear policy is applied to the cart.
// On failure the session is left exactly as it was.
func (o *Orchestrator) SavePlaylist(ctx context.Context, s *domain.Session, name string) (domain.PlaylistHandle, error) {
	if s.Result == nil {
		return domain.PlaylistHandle{}, domain.ErrNoResult
	}

	handle, err := o.store.Save(ctx, s.UserID, name, s.Result.Matches)
	metrics.RecordPlaylistSave(err)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("user_id", s.UserID).Msg("playlist save failed")
		return domain.PlaylistHandle{}, fmt.Errorf("service: failed to save playlist: %w", err)
	}

	logging.Ctx(ctx).Info().
		Str("user_id", s.UserID).
		Str("playlist_id", handle.ID).
		Int("rows", handle.Rows).
		Msg("playlist saved")

	s.Result = nil
	if o.clearPolicy == domain.ClearCartOnSave {
		s.Cart.Clear()
	}
	o.touch(s)
	return handle, nil
}

// Overview lists the distinct saved songs of a user.
func (o *Orchestrator) Overview(ctx context.Context, userID string, sort domain.OverviewSort) ([]domain.OverviewRow, error) {
	rows, err := o.store.LoadOverview(ctx, userID, sort)
	if err != nil {
		return nil, fmt.Errorf("service: load overview: %w", err)
	}
	return rows, nil
}

// SearchCatalog finds songs by a text field.
func (o *Orchestrator) SearchCatalog(ctx context.Context, field domain.SearchField, term string, limit int) ([]domain.SongRecord, error) {
	songs, err := o.searcher.SearchCatalog(ctx, field, term, limit)
	if err != nil {
		return nil, fmt.Errorf("service: search catalog: %w", err)
	}
	return songs, nil
}

// FilterCatalog returns catalog songs inside every feature range.
func (o *Orchestrator) FilterCatalog(ranges []domain.FeatureRange, limit int) ([]domain.SongRecord, error) {
	songs, err := o.index.Filter(ranges)
	if err != nil {
		return nil, fmt.Errorf("service: filter catalog: %w", err)
	}
	if limit > 0 && len(songs) > limit {
		songs = songs[:limit]
	}
	return songs, nil
}

// TopArtists counts the most saved artists of a user.
func (o *Orchestrator) TopArtists(ctx context.Context, userID string, n int) (stats.CountReport, error) {
	return wrapStats(o.stats.TopArtists(ctx, userID, n))
}

// GenreCounts counts saved songs per genre.
func (o *Orchestrator) GenreCounts(ctx context.Context, userID string) (stats.CountReport, error) {
	return wrapStats(o.stats.GenreCounts(ctx, userID))
}

// FeatureDistribution bins one feature over the user's saved songs.
func (o *Orchestrator) FeatureDistribution(ctx context.Context, userID, feature string, bins int) (stats.Distribution, error) {
	return wrapStats(o.stats.FeatureDistribution(ctx, userID, feature, bins))
}

func (o *Orchestrator) touch(s *domain.Session) {
	s.TouchedAt = o.now()
}

func wrapStats[T any](v T, err error) (T, error) {
	if err != nil {
		var zero T
		return zero, fmt.Errorf("service: %w", err)
	}
	return v, nil
}

// IsInvariant reports whether err is a caller mistake rather than a fault.
func IsInvariant(err error) bool {
	for _, target := range []error{
		domain.ErrInsufficientSeeds,
		domain.ErrInvalidNeighborCount,
		domain.ErrEmptyPlaylist,
		domain.ErrInvalidField,
		domain.ErrInvalidUserID,
		domain.ErrInvalidPlaylistName,
		domain.ErrNoResult,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
