// Package sqlite implements the catalog source and the per-user playlist
// store on SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/mattn/go-sqlite3" // Import the driver anonymously

	"github.com/ewilliams-labs/trackfinder/internal/core/domain"
)

const catalogTable = "spotify_songs"

// searchColumns maps each searchable field to its SQL column.
var searchColumns = map[domain.SearchField]string{
	domain.SearchTrackArtist:   "track_artist",
	domain.SearchTrackName:     "track_name",
	domain.SearchPlaylistGenre: "playlist_genre",
}

// Catalog reads the song catalog. The database is opened read only.
type Catalog struct {
	db *sql.DB
}

// OpenCatalog opens the catalog file at path in read-only mode.
func OpenCatalog(path string) (*Catalog, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?mode=ro", path))
	if err != nil {
		return nil, fmt.Errorf("sqlite catalog: open %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite catalog: ping %s: %w", path, err)
	}
	return &Catalog{db: db}, nil
}

// Close releases the connection pool.
func (c *Catalog) Close() error {
	return c.db.Close()
}

// LoadCatalog returns every catalog row in storage order. Any row whose
// features are NULL or non-numeric fails the whole load with a
// *domain.FeatureShapeError.
func (c *Catalog) LoadCatalog(ctx context.Context) ([]domain.SongRecord, error) {
	rows, err := c.db.QueryContext(ctx, selectSongs()+" ORDER BY rowid")
	if err != nil {
		return nil, fmt.Errorf("sqlite catalog: load: %w", err)
	}
	defer rows.Close()

	var songs []domain.SongRecord
	for rows.Next() {
		s, err := scanSong(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite catalog: row %d: %w", len(songs)+1, err)
		}
		songs = append(songs, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite catalog: iterate: %w", err)
	}
	return songs, nil
}

// SearchCatalog returns songs whose field contains term, ignoring case.
// Duplicate natural keys collapse to their first row. limit <= 0 means no
// limit.
func (c *Catalog) SearchCatalog(ctx context.Context, field domain.SearchField, term string, limit int) ([]domain.SongRecord, error) {
	col, ok := searchColumns[field]
	if !ok {
		return nil, fmt.Errorf("sqlite catalog: %w: search field %q", domain.ErrInvalidField, field)
	}

	query := selectSongs() +
		fmt.Sprintf(` WHERE lower(%s) LIKE '%%' || lower(?) || '%%' ESCAPE '\' ORDER BY rowid`, col)
	rows, err := c.db.QueryContext(ctx, query, escapeLike(term))
	if err != nil {
		return nil, fmt.Errorf("sqlite catalog: search %s: %w", field, err)
	}
	defer rows.Close()

	songs := []domain.SongRecord{}
	seen := make(map[domain.SongKey]struct{})
	for rows.Next() {
		s, err := scanSong(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite catalog: search %s: %w", field, err)
		}
		if _, dup := seen[s.Key()]; dup {
			continue
		}
		seen[s.Key()] = struct{}{}
		songs = append(songs, s)
		if limit > 0 && len(songs) == limit {
			break
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite catalog: iterate: %w", err)
	}
	return songs, nil
}

func selectSongs() string {
	cols := []string{"track_name", "track_artist", "track_album_name", "playlist_genre", "playlist_subgenre"}
	for _, f := range domain.FeatureNames {
		cols = append(cols, quoteIdent(f))
	}
	return "SELECT " + strings.Join(cols, ", ") + " FROM " + catalogTable
}

func scanSong(rows *sql.Rows) (domain.SongRecord, error) {
	var name, artist, album, genre, subgenre sql.NullString
	raw := make([]any, domain.FeatureCount)
	dest := []any{&name, &artist, &album, &genre, &subgenre}
	for i := range raw {
		dest = append(dest, &raw[i])
	}
	if err := rows.Scan(dest...); err != nil {
		return domain.SongRecord{}, fmt.Errorf("scan: %w", err)
	}

	s := domain.SongRecord{
		TrackName:   name.String,
		TrackArtist: artist.String,
		AlbumName:   album.String,
		Genre:       genre.String,
		Subgenre:    subgenre.String,
	}

	values := make([]float64, domain.FeatureCount)
	for i, v := range raw {
		f, err := toFloat(v)
		if err != nil {
			return domain.SongRecord{}, &domain.FeatureShapeError{
				Key:    s.Key(),
				Field:  domain.FeatureNames[i],
				Reason: err.Error(),
			}
		}
		values[i] = f
	}
	fv, err := domain.FeatureVectorFromValues(values)
	if err != nil {
		return domain.SongRecord{}, err
	}
	if err := fv.Validate(); err != nil {
		var shape *domain.FeatureShapeError
		if errors.As(err, &shape) {
			shape.Key = s.Key()
		}
		return domain.SongRecord{}, err
	}
	s.Features = fv
	return s, nil
}

// toFloat converts a value scanned into any. SQLite column affinity means a
// REAL column can come back as int64 or even text.
func toFloat(v any) (float64, error) {
	switch t := v.(type) {
	case nil:
		return 0, fmt.Errorf("value is NULL")
	case int64:
		return float64(t), nil
	case float64:
		return t, nil
	case []byte:
		return parseFloat(string(t))
	case string:
		return parseFloat(t)
	default:
		return 0, fmt.Errorf("unsupported type %T", v)
	}
}

func parseFloat(s string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("not numeric: %q", s)
	}
	return f, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
