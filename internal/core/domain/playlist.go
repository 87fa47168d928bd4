package domain

import (
	"strings"
	"time"
)

// PlaylistIDLayout formats the save time into a playlist id.
const PlaylistIDLayout = "2006-01-02 15:04:05"

// Match is one search candidate with the distance that earned its inclusion.
type Match struct {
	Song      SongRecord `json:"song"`
	Distance  float64    `json:"distance"`
	SeedIndex int        `json:"seed_index"`
}

// SimilarityResult is the deduplicated, ordered output of a search.
type SimilarityResult struct {
	Neighbors int     `json:"neighbors"`
	Seeds     int     `json:"seeds"`
	Matches   []Match `json:"matches"`
}

// Len returns the number of matches.
func (r SimilarityResult) Len() int {
	return len(r.Matches)
}

// Truncate returns a copy holding at most n matches. n <= 0 keeps everything.
func (r SimilarityResult) Truncate(n int) SimilarityResult {
	out := r
	if n <= 0 || n >= len(r.Matches) {
		out.Matches = append([]Match(nil), r.Matches...)
		return out
	}
	out.Matches = append([]Match(nil), r.Matches[:n]...)
	return out
}

// Songs returns the matched songs in result order.
func (r SimilarityResult) Songs() []SongRecord {
	songs := make([]SongRecord, len(r.Matches))
	for i, m := range r.Matches {
		songs[i] = m.Song
	}
	return songs
}

// PlaylistRow is one persisted song of a saved playlist.
type PlaylistRow struct {
	PlaylistID       string
	PlaylistName     string
	PlaylistGenre    string
	PlaylistSubgenre string
	SavedAt          time.Time
	Song             SongRecord
	Distance         float64
}

// PlaylistHandle identifies a saved batch.
type PlaylistHandle struct {
	UserID  string    `json:"user_id"`
	ID      string    `json:"playlist_id"`
	Name    string    `json:"playlist_name"`
	SavedAt time.Time `json:"saved_at"`
	Rows    int       `json:"rows"`
}

// MixUpLabel is the generated genre label for songs that carry none.
func MixUpLabel(t time.Time) string {
	return "Mix Up " + t.Format("2006-01-02 15:04")
}

// NewPlaylistRows stamps every match with the playlist name, id and labels.
func NewPlaylistRows(name string, matches []Match, savedAt time.Time) ([]PlaylistRow, error) {
	if len(matches) == 0 {
		return nil, ErrEmptyPlaylist
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidPlaylistName
	}

	id := savedAt.Format(PlaylistIDLayout)
	label := MixUpLabel(savedAt)
	rows := make([]PlaylistRow, 0, len(matches))
	for _, m := range matches {
		rows = append(rows, PlaylistRow{
			PlaylistID:       id,
			PlaylistName:     name,
			PlaylistGenre:    fallbackIfEmpty(m.Song.Genre, label),
			PlaylistSubgenre: fallbackIfEmpty(m.Song.Subgenre, label),
			SavedAt:          savedAt,
			Song:             m.Song,
			Distance:         m.Distance,
		})
	}
	return rows, nil
}

// OverviewRow is one distinct line of the saved-playlists overview.
type OverviewRow struct {
	PlaylistName     string `json:"playlist_name"`
	TrackName        string `json:"track_name"`
	TrackArtist      string `json:"track_artist"`
	TrackAlbumName   string `json:"track_album_name"`
	PlaylistGenre    string `json:"playlist_genre"`
	PlaylistSubgenre string `json:"playlist_subgenre"`
}

// OverviewSort orders the overview. The zero value means subgenre descending.
type OverviewSort struct {
	Column     Column
	Descending bool
}

// DefaultOverviewSort matches the default saved-songs view.
var DefaultOverviewSort = OverviewSort{Column: ColumnPlaylistSubgenre, Descending: true}

// Normalize applies the default and validates the sort column.
func (s OverviewSort) Normalize() (OverviewSort, error) {
	if s.Column == "" {
		return DefaultOverviewSort, nil
	}
	if !s.Column.Overview() {
		return OverviewSort{}, ErrInvalidField
	}
	return s, nil
}

func fallbackIfEmpty(value string, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
