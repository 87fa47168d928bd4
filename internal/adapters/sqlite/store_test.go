package sqlite

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/ewilliams-labs/trackfinder/internal/core/domain"
)

func fixedClock(ts ...time.Time) func() time.Time {
	var mu sync.Mutex
	i := 0
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t := ts[i]
		if i < len(ts)-1 {
			i++
		}
		return t
	}
}

func match(name, artist, genre, subgenre string, valence float64) domain.Match {
	return domain.Match{
		Song: domain.SongRecord{
			TrackName:   name,
			TrackArtist: artist,
			AlbumName:   name + " LP",
			Genre:       genre,
			Subgenre:    subgenre,
			Features:    domain.FeatureVector{Valence: valence, Tempo: 120},
		},
		Distance: valence,
	}
}

func newTestStore(t *testing.T, clock ...time.Time) (*PlaylistStore, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "songs")
	if len(clock) == 0 {
		clock = []time.Time{time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)}
	}
	return NewPlaylistStore(dir, WithClock(fixedClock(clock...))), dir
}

func TestPlaylistStore_Save(t *testing.T) {
	tests := []struct {
		name     string
		userID   string
		playlist string
		songs    []domain.Match
		wantErr  error
		wantRows int
	}{
		{
			name:     "saves rows",
			userID:   "alice",
			playlist: "Road Trip",
			songs:    []domain.Match{match("A", "x", "pop", "dance pop", 0.1), match("B", "y", "", "", 0.2)},
			wantRows: 2,
		},
		{
			name:     "empty playlist",
			userID:   "alice",
			playlist: "Nothing",
			wantErr:  domain.ErrEmptyPlaylist,
		},
		{
			name:     "invalid user",
			userID:   "../alice",
			playlist: "Road Trip",
			songs:    []domain.Match{match("A", "x", "pop", "dance pop", 0.1)},
			wantErr:  domain.ErrInvalidUserID,
		},
		{
			name:     "blank name",
			userID:   "alice",
			playlist: "  ",
			songs:    []domain.Match{match("A", "x", "pop", "dance pop", 0.1)},
			wantErr:  domain.ErrInvalidPlaylistName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, dir := newTestStore(t)
			handle, err := store.Save(context.Background(), tt.userID, tt.playlist, tt.songs)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				if _, statErr := os.Stat(dir); !errors.Is(statErr, os.ErrNotExist) {
					t.Errorf("failed save must not create the store dir")
				}
				return
			}
			if err != nil {
				t.Fatalf("Save: %v", err)
			}
			if handle.Rows != tt.wantRows || handle.ID != "2024-03-09 14:05:07" || handle.Name != tt.playlist || handle.UserID != tt.userID {
				t.Errorf("unexpected handle: %+v", handle)
			}
			if _, err := os.Stat(filepath.Join(dir, tt.userID+".db")); err != nil {
				t.Errorf("expected partition file: %v", err)
			}
		})
	}
}

func TestPlaylistStore_SaveIsAppendOnly(t *testing.T) {
	store, _ := newTestStore(t,
		time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC),
		time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC),
	)
	ctx := context.Background()

	if _, err := store.Save(ctx, "bob", "First", []domain.Match{match("A", "x", "pop", "p1", 0.1)}); err != nil {
		t.Fatalf("first save: %v", err)
	}
	if _, err := store.Save(ctx, "bob", "First", []domain.Match{match("A", "x", "pop", "p1", 0.1), match("B", "y", "rock", "r1", 0.3)}); err != nil {
		t.Fatalf("second save: %v", err)
	}
	if _, err := store.Save(ctx, "bob", "Empty", nil); !errors.Is(err, domain.ErrEmptyPlaylist) {
		t.Fatalf("expected ErrEmptyPlaylist, got %v", err)
	}

	rows, err := store.LoadRaw(ctx, "bob", []domain.Column{domain.ColumnPlaylistID, domain.ColumnTrackName})
	if err != nil {
		t.Fatalf("LoadRaw: %v", err)
	}
	want := [][2]string{
		{"2024-03-09 14:05:07", "A"},
		{"2024-03-10 09:00:00", "A"},
		{"2024-03-10 09:00:00", "B"},
	}
	if len(rows) != len(want) {
		t.Fatalf("expected %d rows, got %d", len(want), len(rows))
	}
	for i, w := range want {
		if rows[i].Text(domain.ColumnPlaylistID) != w[0] || rows[i].Text(domain.ColumnTrackName) != w[1] {
			t.Errorf("row %d = %v, want %v", i, rows[i], w)
		}
	}
}

func TestPlaylistStore_MixUpFallback(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	if _, err := store.Save(ctx, "carol", "Mine", []domain.Match{match("A", "x", "", "", 0.1)}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	rows, err := store.LoadRaw(ctx, "carol", []domain.Column{domain.ColumnPlaylistGenre, domain.ColumnPlaylistSubgenre})
	if err != nil {
		t.Fatalf("LoadRaw: %v", err)
	}
	want := "Mix Up 2024-03-09 14:05"
	if rows[0].Text(domain.ColumnPlaylistGenre) != want || rows[0].Text(domain.ColumnPlaylistSubgenre) != want {
		t.Errorf("unexpected labels: %v", rows[0])
	}
}

func TestPlaylistStore_LoadOverview(t *testing.T) {
	store, _ := newTestStore(t,
		time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC),
		time.Date(2024, 3, 9, 14, 6, 0, 0, time.UTC),
	)
	ctx := context.Background()
	if _, err := store.Save(ctx, "dave", "Mix", []domain.Match{
		match("A", "x", "pop", "b-sub", 0.1),
		match("B", "y", "rock", "c-sub", 0.2),
	}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	// Same songs under the same name collapse in the overview.
	if _, err := store.Save(ctx, "dave", "Mix", []domain.Match{
		match("A", "x", "pop", "b-sub", 0.1),
		match("C", "z", "edm", "a-sub", 0.3),
	}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	tests := []struct {
		name string
		sort domain.OverviewSort
		want []string
	}{
		{"default subgenre desc", domain.OverviewSort{}, []string{"B", "A", "C"}},
		{"track name asc", domain.OverviewSort{Column: domain.ColumnTrackName}, []string{"A", "B", "C"}},
		{"genre desc", domain.OverviewSort{Column: domain.ColumnPlaylistGenre, Descending: true}, []string{"B", "A", "C"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := store.LoadOverview(ctx, "dave", tt.sort)
			if err != nil {
				t.Fatalf("LoadOverview: %v", err)
			}
			if len(rows) != len(tt.want) {
				t.Fatalf("expected %d rows, got %d: %+v", len(tt.want), len(rows), rows)
			}
			for i, name := range tt.want {
				if rows[i].TrackName != name {
					t.Errorf("row %d = %q, want %q", i, rows[i].TrackName, name)
				}
			}
		})
	}

	if _, err := store.LoadOverview(ctx, "dave", domain.OverviewSort{Column: domain.ColumnPlaylistID}); !errors.Is(err, domain.ErrInvalidField) {
		t.Errorf("expected ErrInvalidField for playlist_id sort, got %v", err)
	}
}

func TestPlaylistStore_MissingPartition(t *testing.T) {
	store, dir := newTestStore(t)
	ctx := context.Background()

	overview, err := store.LoadOverview(ctx, "ghost", domain.OverviewSort{})
	if err != nil || len(overview) != 0 {
		t.Fatalf("expected empty overview, got %v / %v", overview, err)
	}
	raw, err := store.LoadRaw(ctx, "ghost", nil)
	if err != nil || len(raw) != 0 {
		t.Fatalf("expected empty raw rows, got %v / %v", raw, err)
	}
	if _, err := os.Stat(filepath.Join(dir, "ghost.db")); !errors.Is(err, os.ErrNotExist) {
		t.Error("reads must not create a partition")
	}
}

func TestPlaylistStore_LoadRaw(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	if _, err := store.Save(ctx, "erin", "Mix", []domain.Match{match("A", "x", "pop", "p", 0.25)}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	rows, err := store.LoadRaw(ctx, "erin", []domain.Column{domain.Column(domain.FeatureValence), domain.ColumnTrackArtist})
	if err != nil {
		t.Fatalf("LoadRaw: %v", err)
	}
	if v, ok := rows[0].Number(domain.Column(domain.FeatureValence)); !ok || v != 0.25 {
		t.Errorf("valence = %v (%v), want 0.25", v, ok)
	}
	if rows[0].Text(domain.ColumnTrackArtist) != "x" {
		t.Errorf("artist = %q", rows[0].Text(domain.ColumnTrackArtist))
	}

	all, err := store.LoadRaw(ctx, "erin", nil)
	if err != nil {
		t.Fatalf("LoadRaw all: %v", err)
	}
	if len(all[0]) != len(AllColumns()) {
		t.Errorf("expected %d columns, got %d", len(AllColumns()), len(all[0]))
	}

	if _, err := store.LoadRaw(ctx, "erin", []domain.Column{"popularity"}); !errors.Is(err, domain.ErrInvalidField) {
		t.Errorf("expected ErrInvalidField, got %v", err)
	}
	if _, err := store.LoadRaw(ctx, "bad/user", nil); !errors.Is(err, domain.ErrInvalidUserID) {
		t.Errorf("expected ErrInvalidUserID, got %v", err)
	}
}

func TestPlaylistStore_FailedSaveLeavesNoRows(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if _, err := store.Save(ctx, "carol", "Kept", []domain.Match{match("Old", "x", "pop", "p1", 0.1)}); err != nil {
		t.Fatalf("first save: %v", err)
	}

	broken := match("B", "y", "rock", "r1", 0.2)
	broken.Song.Features.Energy = math.NaN()
	_, err := store.Save(ctx, "carol", "Broken", []domain.Match{match("A", "x", "pop", "p1", 0.1), broken})
	if err == nil {
		t.Fatal("expected save with a non-finite feature to fail")
	}

	rows, err := store.LoadRaw(ctx, "carol", []domain.Column{domain.ColumnPlaylistName, domain.ColumnTrackName})
	if err != nil {
		t.Fatalf("LoadRaw: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected only the earlier row to survive, got %d rows", len(rows))
	}
	if got := rows[0].Text(domain.ColumnPlaylistName); got != "Kept" {
		t.Errorf("unexpected surviving playlist %q", got)
	}
}

func TestPlaylistStore_SameUserSavesAreSerialized(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	const writers = 8
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			songs := []domain.Match{match("A", "x", "pop", "p1", 0.1), match("B", "y", "rock", "r1", 0.2)}
			if _, err := store.Save(ctx, "u2", "p", songs); err != nil {
				t.Errorf("writer %d: %v", i, err)
			}
		}(i)
	}
	wg.Wait()

	rows, err := store.LoadRaw(ctx, "u2", []domain.Column{domain.ColumnTrackName})
	if err != nil {
		t.Fatalf("LoadRaw: %v", err)
	}
	if len(rows) != 2*writers {
		t.Errorf("expected %d rows, got %d", 2*writers, len(rows))
	}
}

func TestPlaylistStore_PartitionsAreIsolated(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for _, user := range []string{"u1", "u2", "u3"} {
		wg.Add(1)
		go func(user string) {
			defer wg.Done()
			for i := 0; i < 5; i++ {
				if _, err := store.Save(ctx, user, "p", []domain.Match{match(user, "a", "pop", "s", 0.1)}); err != nil {
					t.Errorf("save %s: %v", user, err)
				}
			}
		}(user)
	}
	wg.Wait()

	for _, user := range []string{"u1", "u2", "u3"} {
		rows, err := store.LoadRaw(ctx, user, []domain.Column{domain.ColumnTrackName})
		if err != nil {
			t.Fatalf("LoadRaw %s: %v", user, err)
		}
		if len(rows) != 5 {
			t.Errorf("%s: expected 5 rows, got %d", user, len(rows))
		}
		for _, r := range rows {
			if r.Text(domain.ColumnTrackName) != user {
				t.Errorf("%s partition holds %q", user, r.Text(domain.ColumnTrackName))
			}
		}
	}
}
