package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ewilliams-labs/trackfinder/internal/core/domain"
)

type catalogRow struct {
	name, artist, genre string
	features            []any
}

// writeCatalog creates a spotify_songs database under t.TempDir and returns
// its path.
func writeCatalog(t *testing.T, rows []catalogRow) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "spotify_songs.db")
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	cols := []string{"track_name TEXT", "track_artist TEXT", "track_album_name TEXT", "playlist_genre TEXT", "playlist_subgenre TEXT"}
	for _, f := range domain.FeatureNames {
		cols = append(cols, quoteIdent(f)+" REAL")
	}
	if _, err := db.Exec("CREATE TABLE spotify_songs (" + strings.Join(cols, ", ") + ")"); err != nil {
		t.Fatalf("create: %v", err)
	}

	marks := strings.TrimSuffix(strings.Repeat("?, ", 5+domain.FeatureCount), ", ")
	for _, r := range rows {
		args := []any{r.name, r.artist, "album " + r.name, r.genre, r.genre + " sub"}
		args = append(args, r.features...)
		if _, err := db.Exec("INSERT INTO spotify_songs VALUES ("+marks+")", args...); err != nil {
			t.Fatalf("insert %s: %v", r.name, err)
		}
	}
	return path
}

func features(first float64) []any {
	out := make([]any, domain.FeatureCount)
	out[0] = first
	for i := 1; i < domain.FeatureCount; i++ {
		out[i] = 0.5
	}
	return out
}

func openTestCatalog(t *testing.T, rows []catalogRow) *Catalog {
	t.Helper()
	c, err := OpenCatalog(writeCatalog(t, rows))
	if err != nil {
		t.Fatalf("OpenCatalog: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestCatalog_LoadCatalog(t *testing.T) {
	c := openTestCatalog(t, []catalogRow{
		{"Yellow", "Coldplay", "pop", features(0.1)},
		{"Clocks", "Coldplay", "pop", features(0.2)},
		{"Numb", "Linkin Park", "rock", features(0.3)},
	})

	songs, err := c.LoadCatalog(context.Background())
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	if len(songs) != 3 {
		t.Fatalf("expected 3 songs, got %d", len(songs))
	}
	if songs[2].TrackName != "Numb" || songs[2].Genre != "rock" || songs[2].Subgenre != "rock sub" {
		t.Errorf("unexpected third song: %+v", songs[2])
	}
	if songs[1].Features.Danceability != 0.2 || songs[1].Features.Tempo != 0.5 {
		t.Errorf("unexpected features: %+v", songs[1].Features)
	}
}

func TestCatalog_LoadCatalogRejectsBadFeatures(t *testing.T) {
	tests := []struct {
		name  string
		value any
	}{
		{"null", nil},
		{"text", "loud"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bad := features(0.4)
			bad[domain.FeatureCount-1] = tt.value
			c := openTestCatalog(t, []catalogRow{
				{"Ok", "A", "pop", features(0.1)},
				{"Broken", "B", "pop", bad},
			})

			_, err := c.LoadCatalog(context.Background())
			if !errors.Is(err, domain.ErrFeatureShape) {
				t.Fatalf("expected ErrFeatureShape, got %v", err)
			}
			var shape *domain.FeatureShapeError
			if !errors.As(err, &shape) {
				t.Fatalf("expected *FeatureShapeError, got %T", err)
			}
			if shape.Key.TrackName != "Broken" || shape.Field != domain.FeatureDurationMs {
				t.Errorf("error names %+v / %q", shape.Key, shape.Field)
			}
		})
	}
}

func TestCatalog_NumericText(t *testing.T) {
	f := features(0.1)
	f[1] = "0.75"
	c := openTestCatalog(t, []catalogRow{{"Text", "A", "pop", f}})

	songs, err := c.LoadCatalog(context.Background())
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	if songs[0].Features.Energy != 0.75 {
		t.Errorf("energy = %v, want 0.75", songs[0].Features.Energy)
	}
}

func TestOpenCatalog_MissingFile(t *testing.T) {
	if _, err := OpenCatalog(filepath.Join(t.TempDir(), "nope.db")); err == nil {
		t.Fatal("expected error for missing catalog")
	}
}

func TestCatalog_SearchCatalog(t *testing.T) {
	c := openTestCatalog(t, []catalogRow{
		{"Yellow", "Coldplay", "pop", features(0.1)},
		{"Yellow", "Coldplay", "pop", features(0.1)},
		{"Clocks", "Coldplay", "pop", features(0.2)},
		{"Numb", "Linkin Park", "rock", features(0.3)},
		{"100% Pure", "Someone", "edm", features(0.4)},
	})
	ctx := context.Background()

	tests := []struct {
		name  string
		field domain.SearchField
		term  string
		limit int
		want  []string
	}{
		{"artist case insensitive", domain.SearchTrackArtist, "coldPLAY", 0, []string{"Yellow", "Clocks"}},
		{"substring", domain.SearchTrackName, "umb", 0, []string{"Numb"}},
		{"genre", domain.SearchPlaylistGenre, "ROCK", 0, []string{"Numb"}},
		{"limit", domain.SearchTrackArtist, "o", 2, []string{"Yellow", "Clocks"}},
		{"wildcard is literal", domain.SearchTrackName, "%", 0, []string{"100% Pure"}},
		{"no match", domain.SearchTrackName, "zzz", 0, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			songs, err := c.SearchCatalog(ctx, tt.field, tt.term, tt.limit)
			if err != nil {
				t.Fatalf("SearchCatalog: %v", err)
			}
			got := make([]string, len(songs))
			for i, s := range songs {
				got[i] = s.TrackName
			}
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}

	if _, err := c.SearchCatalog(ctx, domain.SearchField("album; DROP TABLE"), "x", 0); !errors.Is(err, domain.ErrInvalidField) {
		t.Errorf("expected ErrInvalidField, got %v", err)
	}
}
