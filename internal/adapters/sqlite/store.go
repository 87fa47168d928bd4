package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/ewilliams-labs/trackfinder/internal/core/domain"
	"github.com/ewilliams-labs/trackfinder/internal/validation"
)

const partitionTable = "user_songs"

// PlaylistStore keeps each user's saved playlists in <dir>/<user_id>.db.
// Every call opens its own connection and closes it before returning.
type PlaylistStore struct {
	dir   string
	now   func() time.Time
	mu    sync.Mutex
	locks map[string]*sync.RWMutex
}

// StoreOption configures a PlaylistStore.
type StoreOption func(*PlaylistStore)

// WithClock overrides the save timestamp source.
func WithClock(now func() time.Time) StoreOption {
	return func(s *PlaylistStore) {
		s.now = now
	}
}

// NewPlaylistStore returns a store rooted at dir. The directory is created on
// first save.
func NewPlaylistStore(dir string, opts ...StoreOption) *PlaylistStore {
	s := &PlaylistStore{
		dir:   dir,
		now:   time.Now,
		locks: make(map[string]*sync.RWMutex),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save appends one row per match to the user's partition in a single
// transaction. Earlier rows are never touched.
func (s *PlaylistStore) Save(ctx context.Context, userID, name string, songs []domain.Match) (domain.PlaylistHandle, error) {
	if !validation.ValidUserID(userID) {
		return domain.PlaylistHandle{}, domain.ErrInvalidUserID
	}
	savedAt := s.now()
	rows, err := domain.NewPlaylistRows(name, songs, savedAt)
	if err != nil {
		return domain.PlaylistHandle{}, err
	}

	lock := s.lockFor(userID)
	lock.Lock()
	defer lock.Unlock()

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return domain.PlaylistHandle{}, fmt.Errorf("sqlite store: create dir: %w", err)
	}

	db, err := sql.Open("sqlite3", s.path(userID)+"?_busy_timeout=5000")
	if err != nil {
		return domain.PlaylistHandle{}, fmt.Errorf("sqlite store: open partition: %w", err)
	}
	defer db.Close()

	if err := migrate(ctx, db); err != nil {
		return domain.PlaylistHandle{}, fmt.Errorf("sqlite store: migration failed: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return domain.PlaylistHandle{}, fmt.Errorf("sqlite store: begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, insertRow())
	if err != nil {
		return domain.PlaylistHandle{}, fmt.Errorf("sqlite store: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		args := []any{
			r.PlaylistID,
			r.PlaylistName,
			r.Song.TrackName,
			r.Song.TrackArtist,
			r.Song.AlbumName,
			r.PlaylistGenre,
			r.PlaylistSubgenre,
		}
		for _, v := range r.Song.Features.Values() {
			args = append(args, v)
		}
		args = append(args, r.Distance, r.SavedAt.UTC().Format(time.RFC3339Nano))

		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return domain.PlaylistHandle{}, fmt.Errorf("sqlite store: insert %q: %w", r.Song.TrackName, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return domain.PlaylistHandle{}, fmt.Errorf("sqlite store: transaction commit failed: %w", err)
	}

	return domain.PlaylistHandle{
		UserID:  userID,
		ID:      rows[0].PlaylistID,
		Name:    rows[0].PlaylistName,
		SavedAt: savedAt,
		Rows:    len(rows),
	}, nil
}

// LoadOverview returns the distinct saved songs of a user. A user who never
// saved gets an empty slice.
func (s *PlaylistStore) LoadOverview(ctx context.Context, userID string, sort domain.OverviewSort) ([]domain.OverviewRow, error) {
	sort, err := sort.Normalize()
	if err != nil {
		return nil, err
	}

	out := []domain.OverviewRow{}
	err = s.read(ctx, userID, func(db *sql.DB) error {
		dir := "ASC"
		if sort.Descending {
			dir = "DESC"
		}
		query := fmt.Sprintf(`
			SELECT DISTINCT playlist_name, track_name, track_artist, track_album_name, playlist_genre, playlist_subgenre
			FROM %s
			ORDER BY %s %s, playlist_name, track_name, track_artist`,
			partitionTable, quoteIdent(string(sort.Column)), dir)

		rows, err := db.QueryContext(ctx, query)
		if err != nil {
			return fmt.Errorf("query overview: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var r domain.OverviewRow
			var album sql.NullString
			if err := rows.Scan(&r.PlaylistName, &r.TrackName, &r.TrackArtist, &album, &r.PlaylistGenre, &r.PlaylistSubgenre); err != nil {
				return fmt.Errorf("scan overview: %w", err)
			}
			r.TrackAlbumName = album.String
			out = append(out, r)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// LoadRaw projects the given columns over every stored row in insertion
// order. No columns means all of them.
func (s *PlaylistStore) LoadRaw(ctx context.Context, userID string, columns []domain.Column) ([]domain.RawRow, error) {
	if len(columns) == 0 {
		columns = AllColumns()
	}
	idents := make([]string, len(columns))
	for i, c := range columns {
		if !c.Valid() {
			return nil, fmt.Errorf("sqlite store: %w: column %q", domain.ErrInvalidField, c)
		}
		idents[i] = quoteIdent(string(c))
	}

	out := []domain.RawRow{}
	err := s.read(ctx, userID, func(db *sql.DB) error {
		query := fmt.Sprintf("SELECT %s FROM %s ORDER BY rowid", strings.Join(idents, ", "), partitionTable)
		rows, err := db.QueryContext(ctx, query)
		if err != nil {
			return fmt.Errorf("query raw: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			dest := make([]any, len(columns))
			for i, c := range columns {
				if c.Numeric() {
					dest[i] = new(sql.NullFloat64)
				} else {
					dest[i] = new(sql.NullString)
				}
			}
			if err := rows.Scan(dest...); err != nil {
				return fmt.Errorf("scan raw: %w", err)
			}

			row := make(domain.RawRow, len(columns))
			for i, c := range columns {
				switch v := dest[i].(type) {
				case *sql.NullFloat64:
					if v.Valid {
						row[c] = v.Float64
					}
				case *sql.NullString:
					row[c] = v.String
				}
			}
			out = append(out, row)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// AllColumns lists every stored column in schema order.
func AllColumns() []domain.Column {
	cols := []domain.Column{
		domain.ColumnPlaylistID,
		domain.ColumnPlaylistName,
		domain.ColumnTrackName,
		domain.ColumnTrackArtist,
		domain.ColumnTrackAlbumName,
		domain.ColumnPlaylistGenre,
		domain.ColumnPlaylistSubgenre,
	}
	for _, f := range domain.FeatureNames {
		cols = append(cols, domain.Column(f))
	}
	return cols
}

// read opens the user's partition read only under the shared lock. A missing
// partition is not an error: fn is skipped.
func (s *PlaylistStore) read(ctx context.Context, userID string, fn func(db *sql.DB) error) error {
	if !validation.ValidUserID(userID) {
		return domain.ErrInvalidUserID
	}

	lock := s.lockFor(userID)
	lock.RLock()
	defer lock.RUnlock()

	path := s.path(userID)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	} else if err != nil {
		return fmt.Errorf("sqlite store: stat partition: %w", err)
	}

	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?mode=ro&_busy_timeout=5000", path))
	if err != nil {
		return fmt.Errorf("sqlite store: open partition: %w", err)
	}
	defer db.Close()

	var n int
	err = db.QueryRowContext(ctx, "SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = ?", partitionTable).Scan(&n)
	if err != nil {
		return fmt.Errorf("sqlite store: inspect partition: %w", err)
	}
	if n == 0 {
		return nil
	}

	if err := fn(db); err != nil {
		return fmt.Errorf("sqlite store: %w", err)
	}
	return nil
}

func (s *PlaylistStore) lockFor(userID string) *sync.RWMutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[userID]
	if !ok {
		l = &sync.RWMutex{}
		s.locks[userID] = l
	}
	return l
}

func (s *PlaylistStore) path(userID string) string {
	return filepath.Join(s.dir, userID+".db")
}

func insertRow() string {
	cols := []string{
		"playlist_id", "playlist_name", "track_name", "track_artist", "track_album_name",
		"playlist_genre", "playlist_subgenre",
	}
	for _, f := range domain.FeatureNames {
		cols = append(cols, quoteIdent(f))
	}
	cols = append(cols, "distance", "saved_at")
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", partitionTable, strings.Join(cols, ", "), marks)
}

func migrate(ctx context.Context, db *sql.DB) error {
	var b strings.Builder
	b.WriteString("CREATE TABLE IF NOT EXISTS " + partitionTable + " (\n")
	b.WriteString(`
		playlist_id TEXT NOT NULL,
		playlist_name TEXT NOT NULL,
		track_name TEXT NOT NULL,
		track_artist TEXT NOT NULL,
		track_album_name TEXT,
		playlist_genre TEXT NOT NULL,
		playlist_subgenre TEXT NOT NULL,
	`)
	for _, f := range domain.FeatureNames {
		b.WriteString("\t" + quoteIdent(f) + " REAL NOT NULL,\n")
	}
	b.WriteString(`
		distance REAL NOT NULL,
		saved_at TEXT NOT NULL
	);`)

	if _, err := db.ExecContext(ctx, b.String()); err != nil {
		return err
	}
	_, err := db.ExecContext(ctx, "CREATE INDEX IF NOT EXISTS idx_user_songs_playlist ON "+partitionTable+" (playlist_id)")
	return err
}
