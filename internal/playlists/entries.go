package playlists

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	dbutil "github.com/llehouerou/meeloq/internal/db"
	"github.com/llehouerou/meeloq/internal/queue"
)

const entryColumns = `
	pe.id, t.id, t.name, t.type, t.duration_ms, t.source_file_id,
	t.song_id, t.release_id, t.artist_id, t.artist_name, t.artist_slug`

// AddEntries appends tracks to a playlist and returns the ids of the new
// entries. The tracks must have been stored with UpsertTracks.
func (p *Playlists) AddEntries(ctx context.Context, playlistID int64, trackIDs []int64) ([]int64, error) {
	if len(trackIDs) == 0 {
		return nil, nil
	}

	ids := make([]int64, 0, len(trackIDs))
	err := dbutil.WithTx(ctx, p.db, func(tx *sql.Tx) error {
		// Get current max position
		var maxPos sql.NullInt64
		if err := tx.QueryRowContext(ctx, `
			SELECT MAX(position) FROM playlist_entries WHERE playlist_id = ?
		`, playlistID).Scan(&maxPos); err != nil {
			return err
		}
		nextPos := dbutil.NullInt64Value(maxPos)
		if maxPos.Valid {
			nextPos++
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO playlist_entries (playlist_id, position, track_id)
			VALUES (?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i, trackID := range trackIDs {
			result, err := stmt.ExecContext(ctx, playlistID, nextPos+int64(i), trackID)
			if err != nil {
				return fmt.Errorf("add track %d: %w", trackID, err)
			}
			id, err := result.LastInsertId()
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}
		return touch(ctx, tx, playlistID)
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// Entries returns all entries of a playlist in playlist order. Entry ids are
// playlist entry ids.
func (p *Playlists) Entries(ctx context.Context, playlistID int64) ([]queue.Entry, error) {
	return p.entriesAfter(ctx, playlistID, nil, -1)
}

// EntryCount returns the number of entries in a playlist.
func (p *Playlists) EntryCount(ctx context.Context, playlistID int64) (int, error) {
	var count int
	err := p.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM playlist_entries WHERE playlist_id = ?
	`, playlistID).Scan(&count)
	return count, err
}

// PlaylistEntryIDs returns the entry ids of a playlist in playlist order.
func (p *Playlists) PlaylistEntryIDs(ctx context.Context, playlistID int64) ([]int64, error) {
	return listEntryIDs(ctx, p.db, playlistID)
}

// ReorderPlaylist rewrites the order of a playlist. entryIDs must list every
// entry of the playlist exactly once, otherwise ErrNotPermutation is returned
// and nothing changes.
func (p *Playlists) ReorderPlaylist(ctx context.Context, playlistID int64, entryIDs []int64) error {
	err := dbutil.WithTx(ctx, p.db, func(tx *sql.Tx) error {
		current, err := listEntryIDs(ctx, tx, playlistID)
		if err != nil {
			return err
		}
		if !samePermutation(current, entryIDs) {
			return ErrNotPermutation
		}

		// Move every entry to a negative position first so the final
		// positions never collide with the UNIQUE(playlist_id, position) index.
		if _, err := tx.ExecContext(ctx, `
			UPDATE playlist_entries SET position = -1 - position WHERE playlist_id = ?
		`, playlistID); err != nil {
			return err
		}

		stmt, err := tx.PrepareContext(ctx, `
			UPDATE playlist_entries SET position = ? WHERE playlist_id = ? AND id = ?
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for pos, id := range entryIDs {
			if _, err := stmt.ExecContext(ctx, pos, playlistID, id); err != nil {
				return err
			}
		}
		return touch(ctx, tx, playlistID)
	})
	if err != nil {
		return fmt.Errorf("reorder playlist %d: %w", playlistID, err)
	}
	p.logger.Debug("playlist reordered", zap.Int64("playlist", playlistID), zap.Int("entries", len(entryIDs)))
	return nil
}

// entriesAfter returns up to limit entries following the entry afterID, or
// from the start when afterID is nil. A negative limit returns all of them.
func (p *Playlists) entriesAfter(ctx context.Context, playlistID int64, afterID *int64, limit int) ([]queue.Entry, error) {
	query := `SELECT ` + entryColumns + `
		FROM playlist_entries pe
		JOIN tracks t ON pe.track_id = t.id
		WHERE pe.playlist_id = ?`
	args := []any{playlistID}
	if afterID != nil {
		query += ` AND pe.position > (SELECT position FROM playlist_entries WHERE id = ? AND playlist_id = ?)`
		args = append(args, *afterID, playlistID)
	}
	query += ` ORDER BY pe.position LIMIT ?`
	args = append(args, limit)

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []queue.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func listEntryIDs(ctx context.Context, q queryer, playlistID int64) ([]int64, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id FROM playlist_entries WHERE playlist_id = ? ORDER BY position
	`, playlistID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func touch(ctx context.Context, tx *sql.Tx, playlistID int64) error {
	_, err := tx.ExecContext(ctx, `UPDATE playlists SET updated_at = ? WHERE id = ?`, time.Now().Unix(), playlistID)
	return err
}

// samePermutation reports whether b holds exactly the ids of a.
func samePermutation(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	count := make(map[int64]int, len(a))
	for _, id := range a {
		count[id]++
	}
	for _, id := range b {
		if count[id] == 0 {
			return false
		}
		count[id]--
	}
	return true
}
