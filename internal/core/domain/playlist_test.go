package domain

import (
	"errors"
	"testing"
	"time"
)

func TestNewPlaylistRows(t *testing.T) {
	savedAt := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	tagged := Match{Song: SongRecord{TrackName: "Song One", TrackArtist: "Artist A", Genre: "pop", Subgenre: "dance pop"}, Distance: 0}
	untagged := Match{Song: SongRecord{TrackName: "Song Two", TrackArtist: "Artist B"}, Distance: 1.5}

	tests := []struct {
		name         string
		playlistName string
		matches      []Match
		wantErr      error
		wantLen      int
		wantGenres   []string
		wantSubs     []string
	}{
		{
			name:         "fails with empty playlist",
			playlistName: "Mix1",
			matches:      nil,
			wantErr:      ErrEmptyPlaylist,
		},
		{
			name:         "empty playlist wins over blank name",
			playlistName: "",
			matches:      nil,
			wantErr:      ErrEmptyPlaylist,
		},
		{
			name:         "fails with blank name",
			playlistName: "   ",
			matches:      []Match{tagged},
			wantErr:      ErrInvalidPlaylistName,
		},
		{
			name:         "reuses song labels and generates missing ones",
			playlistName: "Road Trip",
			matches:      []Match{tagged, untagged},
			wantLen:      2,
			wantGenres:   []string{"pop", "Mix Up 2026-03-14 09:26"},
			wantSubs:     []string{"dance pop", "Mix Up 2026-03-14 09:26"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rows, err := NewPlaylistRows(tc.playlistName, tc.matches, savedAt)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected error %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(rows) != tc.wantLen {
				t.Fatalf("expected %d rows, got %d", tc.wantLen, len(rows))
			}
			for i, row := range rows {
				if row.PlaylistName != tc.playlistName {
					t.Fatalf("row %d name: got %q, want %q", i, row.PlaylistName, tc.playlistName)
				}
				if row.PlaylistID != "2026-03-14 09:26:53" {
					t.Fatalf("row %d id: got %q", i, row.PlaylistID)
				}
				if row.PlaylistGenre != tc.wantGenres[i] {
					t.Fatalf("row %d genre: got %q, want %q", i, row.PlaylistGenre, tc.wantGenres[i])
				}
				if row.PlaylistSubgenre != tc.wantSubs[i] {
					t.Fatalf("row %d subgenre: got %q, want %q", i, row.PlaylistSubgenre, tc.wantSubs[i])
				}
			}
		})
	}
}

func TestSimilarityResult_Truncate(t *testing.T) {
	r := SimilarityResult{Matches: []Match{
		{Song: SongRecord{TrackName: "a"}},
		{Song: SongRecord{TrackName: "b"}},
		{Song: SongRecord{TrackName: "c"}},
	}}

	tests := []struct {
		name string
		n    int
		want int
	}{
		{name: "zero keeps all", n: 0, want: 3},
		{name: "cap below length", n: 2, want: 2},
		{name: "cap above length", n: 10, want: 3},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := r.Truncate(tc.n)
			if got.Len() != tc.want {
				t.Fatalf("expected %d matches, got %d", tc.want, got.Len())
			}
			if r.Len() != 3 {
				t.Fatalf("truncate mutated the original result")
			}
		})
	}
}

func TestOverviewSort_Normalize(t *testing.T) {
	got, err := OverviewSort{}.Normalize()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != DefaultOverviewSort {
		t.Fatalf("expected default sort, got %+v", got)
	}

	if _, err := (OverviewSort{Column: ColumnPlaylistID}).Normalize(); !errors.Is(err, ErrInvalidField) {
		t.Fatalf("expected ErrInvalidField, got %v", err)
	}
	if _, err := (OverviewSort{Column: "danceability; DROP TABLE user_songs"}).Normalize(); !errors.Is(err, ErrInvalidField) {
		t.Fatalf("expected ErrInvalidField, got %v", err)
	}
}
