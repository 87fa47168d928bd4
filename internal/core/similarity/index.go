package similarity

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/ewilliams-labs/trackfinder/internal/core/domain"
)

// Neighbor is one query answer.
type Neighbor struct {
	Song     domain.SongRecord
	Distance float64
	// Position is the catalog insertion index, used to break distance ties.
	Position int
}

// Index holds the catalog in insertion order.
type Index struct {
	songs   []domain.SongRecord
	vectors [][domain.FeatureCount]float64
	byKey   map[domain.SongKey]int
}

// Build validates the catalog and constructs an Index over a copy of it.
func Build(songs []domain.SongRecord) (*Index, error) {
	if len(songs) == 0 {
		return nil, domain.ErrEmptyCatalog
	}

	idx := &Index{
		songs:   make([]domain.SongRecord, len(songs)),
		vectors: make([][domain.FeatureCount]float64, len(songs)),
		byKey:   make(map[domain.SongKey]int, len(songs)),
	}
	for i, s := range songs {
		if err := s.Features.Validate(); err != nil {
			var shapeErr *domain.FeatureShapeError
			if errors.As(err, &shapeErr) {
				shapeErr.Key = s.Key()
			}
			return nil, fmt.Errorf("similarity: catalog record %d: %w", i, err)
		}
		idx.songs[i] = s
		idx.vectors[i] = s.Features.Values()
		if _, seen := idx.byKey[s.Key()]; !seen {
			idx.byKey[s.Key()] = i
		}
	}
	return idx, nil
}

// Len returns the number of catalog records, duplicates included.
func (idx *Index) Len() int {
	return len(idx.songs)
}

// Lookup returns the first catalog record with the given natural key.
func (idx *Index) Lookup(key domain.SongKey) (domain.SongRecord, bool) {
	i, ok := idx.byKey[key]
	if !ok {
		return domain.SongRecord{}, false
	}
	return idx.songs[i], true
}

// Songs returns a copy of the catalog in insertion order.
func (idx *Index) Songs() []domain.SongRecord {
	return slices.Clone(idx.songs)
}

// Query returns the k records closest to v, ascending by distance, ties in
// catalog order. A k larger than the catalog returns the whole catalog.
func (idx *Index) Query(v domain.FeatureVector, k int) ([]Neighbor, error) {
	if k < 1 {
		return nil, &domain.InvalidNeighborCountError{K: k}
	}
	if err := v.Validate(); err != nil {
		return nil, err
	}

	q := v.Values()
	all := make([]Neighbor, len(idx.songs))
	for i := range idx.songs {
		all[i] = Neighbor{Song: idx.songs[i], Distance: euclidean(q, idx.vectors[i]), Position: i}
	}
	slices.SortFunc(all, func(a, b Neighbor) int {
		if c := cmp.Compare(a.Distance, b.Distance); c != 0 {
			return c
		}
		return cmp.Compare(a.Position, b.Position)
	})

	if k > len(all) {
		k = len(all)
	}
	return all[:k:k], nil
}

// Filter returns the catalog songs inside every range, in catalog order and
// deduplicated by natural key.
func (idx *Index) Filter(ranges []domain.FeatureRange) ([]domain.SongRecord, error) {
	for _, r := range ranges {
		if err := r.Validate(); err != nil {
			return nil, err
		}
	}

	seen := make(map[domain.SongKey]struct{})
	out := []domain.SongRecord{}
	for _, s := range idx.songs {
		if _, dup := seen[s.Key()]; dup {
			continue
		}
		if !inAll(s.Features, ranges) {
			continue
		}
		seen[s.Key()] = struct{}{}
		out = append(out, s)
	}
	return out, nil
}

func inAll(v domain.FeatureVector, ranges []domain.FeatureRange) bool {
	for _, r := range ranges {
		if !r.Contains(v) {
			return false
		}
	}
	return true
}

func euclidean(a, b [domain.FeatureCount]float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}
