package similarity

import (
	"fmt"

	"github.com/ewilliams-labs/trackfinder/internal/core/domain"
)

type options struct {
	excludeSeeds bool
}

// Option tunes FindSimilar.
type Option func(*options)

// WithExcludeSeeds drops the seed songs from the result when exclude is true.
// By default a seed present in the catalog is returned as its own nearest
// neighbor at distance 0.
func WithExcludeSeeds(exclude bool) Option {
	return func(o *options) {
		o.excludeSeeds = exclude
	}
}

// FindSimilar queries idx once per seed and merges the answers. Matches are
// ordered by seed, then by distance within a seed, and each natural key is
// kept at its first occurrence. The result holds at most k*len(seeds) songs.
func FindSimilar(idx *Index, seeds []domain.SongRecord, k int, opts ...Option) (domain.SimilarityResult, error) {
	if len(seeds) < domain.MinSeeds {
		return domain.SimilarityResult{}, &domain.InsufficientSeedsError{Got: len(seeds)}
	}
	if k < 1 {
		return domain.SimilarityResult{}, &domain.InvalidNeighborCountError{K: k}
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	seen := make(map[domain.SongKey]struct{}, len(seeds)*k)
	if o.excludeSeeds {
		for _, s := range seeds {
			seen[s.Key()] = struct{}{}
		}
	}

	result := domain.SimilarityResult{
		Neighbors: k,
		Seeds:     len(seeds),
		Matches:   []domain.Match{},
	}
	for i, seed := range seeds {
		neighbors, err := idx.Query(seed.Features, k)
		if err != nil {
			return domain.SimilarityResult{}, fmt.Errorf("similarity: seed %d (%q by %q): %w", i, seed.TrackName, seed.TrackArtist, err)
		}
		for _, n := range neighbors {
			key := n.Song.Key()
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			result.Matches = append(result.Matches, domain.Match{
				Song:      n.Song,
				Distance:  n.Distance,
				SeedIndex: i,
			})
		}
	}
	return result, nil
}
