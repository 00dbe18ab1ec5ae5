// Package playlists stores playlists in the local sqlite database. A playlist
// is an ordered list of entries, each pointing at a known track.
package playlists

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrNotFound is returned for an unknown playlist.
	ErrNotFound = errors.New("playlist not found")
	// ErrNotPermutation is returned by ReorderPlaylist when the given entry
	// ids are not exactly the entries of the playlist.
	ErrNotPermutation = errors.New("entry ids are not a permutation of the playlist entries")
)

// Playlist represents a playlist metadata (without entries).
type Playlist struct {
	ID        int64
	Name      string
	CreatedAt int64
	UpdatedAt int64
}

// Playlists provides database operations for playlists.
type Playlists struct {
	db     *sql.DB
	logger *zap.Logger
}

// New creates a new Playlists instance. A nil logger disables logging.
func New(db *sql.DB, logger *zap.Logger) *Playlists {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Playlists{db: db, logger: logger}
}

// Create creates a new playlist.
func (p *Playlists) Create(ctx context.Context, name string) (int64, error) {
	now := time.Now().Unix()
	result, err := p.db.ExecContext(ctx, `
		INSERT INTO playlists (name, created_at, updated_at)
		VALUES (?, ?, ?)
	`, name, now, now)
	if err != nil {
		return 0, fmt.Errorf("create playlist %q: %w", name, err)
	}
	return result.LastInsertId()
}

// Rename renames a playlist.
func (p *Playlists) Rename(ctx context.Context, id int64, name string) error {
	result, err := p.db.ExecContext(ctx, `
		UPDATE playlists SET name = ?, updated_at = ? WHERE id = ?
	`, name, time.Now().Unix(), id)
	if err != nil {
		return err
	}
	return requireRow(result)
}

// Delete deletes a playlist and all its entries.
func (p *Playlists) Delete(ctx context.Context, id int64) error {
	_, err := p.db.ExecContext(ctx, `DELETE FROM playlists WHERE id = ?`, id)
	return err
}

// List returns all playlists ordered by name.
func (p *Playlists) List(ctx context.Context) ([]Playlist, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, name, created_at, updated_at
		FROM playlists
		ORDER BY name COLLATE NOCASE
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var playlists []Playlist
	for rows.Next() {
		var pl Playlist
		if err := rows.Scan(&pl.ID, &pl.Name, &pl.CreatedAt, &pl.UpdatedAt); err != nil {
			return nil, err
		}
		playlists = append(playlists, pl)
	}
	return playlists, rows.Err()
}

// Get returns a playlist by its ID.
func (p *Playlists) Get(ctx context.Context, id int64) (*Playlist, error) {
	row := p.db.QueryRowContext(ctx, `
		SELECT id, name, created_at, updated_at
		FROM playlists
		WHERE id = ?
	`, id)

	var pl Playlist
	if err := row.Scan(&pl.ID, &pl.Name, &pl.CreatedAt, &pl.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &pl, nil
}

func requireRow(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
