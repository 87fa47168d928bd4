package domain

import "fmt"

// Column names one field of a stored playlist row. Only the values declared
// here are ever turned into SQL identifiers.
type Column string

const (
	ColumnPlaylistID       Column = "playlist_id"
	ColumnPlaylistName     Column = "playlist_name"
	ColumnTrackName        Column = "track_name"
	ColumnTrackArtist      Column = "track_artist"
	ColumnTrackAlbumName   Column = "track_album_name"
	ColumnPlaylistGenre    Column = "playlist_genre"
	ColumnPlaylistSubgenre Column = "playlist_subgenre"
)

var textColumns = map[Column]struct{}{
	ColumnPlaylistID:       {},
	ColumnPlaylistName:     {},
	ColumnTrackName:        {},
	ColumnTrackArtist:      {},
	ColumnTrackAlbumName:   {},
	ColumnPlaylistGenre:    {},
	ColumnPlaylistSubgenre: {},
}

var overviewColumns = map[Column]struct{}{
	ColumnPlaylistName:     {},
	ColumnTrackName:        {},
	ColumnTrackArtist:      {},
	ColumnTrackAlbumName:   {},
	ColumnPlaylistGenre:    {},
	ColumnPlaylistSubgenre: {},
}

// ParseColumn validates a caller-supplied column name.
func ParseColumn(name string) (Column, error) {
	c := Column(name)
	if !c.Valid() {
		return "", fmt.Errorf("%w: column %q", ErrInvalidField, name)
	}
	return c, nil
}

// Valid reports whether c is a text column or one of the feature columns.
func (c Column) Valid() bool {
	_, text := textColumns[c]
	return text || IsFeature(string(c))
}

// Numeric reports whether c holds a feature value.
func (c Column) Numeric() bool {
	return IsFeature(string(c))
}

// Overview reports whether c can order the overview.
func (c Column) Overview() bool {
	_, ok := overviewColumns[c]
	return ok
}

// RawRow is a projection of one stored row. Text columns hold a string,
// feature columns a float64.
type RawRow map[Column]any

// Text returns the string value of c, empty when absent.
func (r RawRow) Text(c Column) string {
	s, _ := r[c].(string)
	return s
}

// Number returns the float value of c.
func (r RawRow) Number(c Column) (float64, bool) {
	f, ok := r[c].(float64)
	return f, ok
}

// SearchField is a catalog field open to text search.
type SearchField string

const (
	SearchTrackArtist   SearchField = "track_artist"
	SearchTrackName     SearchField = "track_name"
	SearchPlaylistGenre SearchField = "playlist_genre"
)

// SearchFields lists the searchable catalog fields.
var SearchFields = []SearchField{SearchTrackArtist, SearchTrackName, SearchPlaylistGenre}

// ParseSearchField validates a caller-supplied search field.
func ParseSearchField(name string) (SearchField, error) {
	for _, f := range SearchFields {
		if string(f) == name {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: search field %q", ErrInvalidField, name)
}

// FeatureRange is an inclusive bound on one feature.
type FeatureRange struct {
	Feature string  `json:"feature"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
}

// Validate checks the feature name and the bounds order.
func (r FeatureRange) Validate() error {
	if !IsFeature(r.Feature) {
		return fmt.Errorf("%w: feature %q", ErrInvalidField, r.Feature)
	}
	if r.Min > r.Max {
		return fmt.Errorf("%w: feature %q has min above max", ErrInvalidField, r.Feature)
	}
	return nil
}

// Contains reports whether v lies in the range on the range's feature.
func (r FeatureRange) Contains(v FeatureVector) bool {
	val, ok := v.Get(r.Feature)
	return ok && val >= r.Min && val <= r.Max
}
