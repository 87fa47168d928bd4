// Package stats summarizes the playlists a user has saved.
package stats

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"slices"

	"github.com/ewilliams-labs/trackfinder/internal/core/domain"
	"github.com/ewilliams-labs/trackfinder/internal/core/ports"
)

const (
	DefaultTopArtists = 10
	DefaultBins       = 20
	DefaultFeature    = domain.FeatureValence
)

// Count is one label frequency.
type Count struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// CountReport is a frequency table, most frequent first.
type CountReport struct {
	Column domain.Column `json:"column"`
	Total  int           `json:"total"`
	Counts []Count       `json:"counts"`
	NoData bool          `json:"no_data"`
}

// Bin is one histogram bucket covering [Lower, Upper).
// The last bin also includes Upper.
type Bin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// Distribution describes the values of one feature.
type Distribution struct {
	Feature string  `json:"feature"`
	Count   int     `json:"count"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Mean    float64 `json:"mean"`
	Bins    []Bin   `json:"bins"`
	NoData  bool    `json:"no_data"`
}

// Aggregator only reads from the store.
type Aggregator struct {
	store ports.PlaylistStore
}

// NewAggregator constructs an Aggregator.
func NewAggregator(store ports.PlaylistStore) *Aggregator {
	return &Aggregator{store: store}
}

// TopArtists returns the n most frequent artists across all saved rows.
func (a *Aggregator) TopArtists(ctx context.Context, userID string, n int) (CountReport, error) {
	if n <= 0 {
		n = DefaultTopArtists
	}
	report, err := a.count(ctx, userID, domain.ColumnTrackArtist)
	if err != nil {
		return CountReport{}, err
	}
	if len(report.Counts) > n {
		report.Counts = report.Counts[:n]
	}
	return report, nil
}

// GenreCounts returns the frequency of every playlist genre.
func (a *Aggregator) GenreCounts(ctx context.Context, userID string) (CountReport, error) {
	return a.count(ctx, userID, domain.ColumnPlaylistGenre)
}

// FeatureDistribution buckets one feature into equal-width bins.
func (a *Aggregator) FeatureDistribution(ctx context.Context, userID, feature string, bins int) (Distribution, error) {
	if feature == "" {
		feature = DefaultFeature
	}
	if !domain.IsFeature(feature) {
		return Distribution{}, fmt.Errorf("stats: %w: feature %q", domain.ErrInvalidField, feature)
	}
	if bins <= 0 {
		bins = DefaultBins
	}

	col := domain.Column(feature)
	rows, err := a.store.LoadRaw(ctx, userID, []domain.Column{col})
	if err != nil {
		return Distribution{}, fmt.Errorf("stats: load %s: %w", feature, err)
	}

	values := make([]float64, 0, len(rows))
	for _, row := range rows {
		if v, ok := row.Number(col); ok {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return Distribution{Feature: feature, Bins: []Bin{}, NoData: true}, nil
	}
	return histogram(feature, values, bins), nil
}

func (a *Aggregator) count(ctx context.Context, userID string, col domain.Column) (CountReport, error) {
	rows, err := a.store.LoadRaw(ctx, userID, []domain.Column{col})
	if err != nil {
		return CountReport{}, fmt.Errorf("stats: load %s: %w", col, err)
	}
	if len(rows) == 0 {
		return CountReport{Column: col, Counts: []Count{}, NoData: true}, nil
	}

	freq := make(map[string]int)
	for _, row := range rows {
		freq[row.Text(col)]++
	}
	counts := make([]Count, 0, len(freq))
	for label, n := range freq {
		counts = append(counts, Count{Label: label, Count: n})
	}
	slices.SortFunc(counts, func(x, y Count) int {
		if c := cmp.Compare(y.Count, x.Count); c != 0 {
			return c
		}
		return cmp.Compare(x.Label, y.Label)
	})
	return CountReport{Column: col, Total: len(rows), Counts: counts}, nil
}

func histogram(feature string, values []float64, bins int) Distribution {
	lo, hi := math.Inf(1), math.Inf(-1)
	var sum float64
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
		sum += v
	}

	d := Distribution{
		Feature: feature,
		Count:   len(values),
		Min:     lo,
		Max:     hi,
		Mean:    sum / float64(len(values)),
	}
	if hi == lo {
		d.Bins = []Bin{{Lower: lo, Upper: hi, Count: len(values)}}
		return d
	}

	width := (hi - lo) / float64(bins)
	d.Bins = make([]Bin, bins)
	for i := range d.Bins {
		d.Bins[i].Lower = lo + float64(i)*width
		d.Bins[i].Upper = lo + float64(i+1)*width
	}
	d.Bins[bins-1].Upper = hi
	for _, v := range values {
		i := int((v - lo) / width)
		if i >= bins {
			i = bins - 1
		}
		d.Bins[i].Count++
	}
	return d
}
