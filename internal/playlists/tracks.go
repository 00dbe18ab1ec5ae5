package playlists

import (
	"context"
	"database/sql"
	"time"

	dbutil "github.com/llehouerou/meeloq/internal/db"
	"github.com/llehouerou/meeloq/internal/queue"
)

// UpsertTracks stores the tracks of entries along with their primary artist,
// replacing rows of tracks already known.
func (p *Playlists) UpsertTracks(ctx context.Context, entries []queue.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	return dbutil.WithTx(ctx, p.db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO tracks (id, name, type, duration_ms, source_file_id, song_id, release_id, artist_id, artist_name, artist_slug)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				name = excluded.name,
				type = excluded.type,
				duration_ms = excluded.duration_ms,
				source_file_id = excluded.source_file_id,
				song_id = excluded.song_id,
				release_id = excluded.release_id,
				artist_id = excluded.artist_id,
				artist_name = excluded.artist_name,
				artist_slug = excluded.artist_slug
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, e := range entries {
			t := e.Track
			if _, err := stmt.ExecContext(ctx,
				t.ID, t.Name, string(t.Type), nullIfZero(t.Duration.Milliseconds()), t.SourceFileID,
				nullIfZero(t.SongID), nullIfZero(t.ReleaseID),
				nullIfZero(e.Artist.ID), e.Artist.Name, e.Artist.Slug,
			); err != nil {
				return err
			}
		}
		return nil
	})
}

// scanEntry reads an entry row: entry id followed by the track columns.
func scanEntry(rows *sql.Rows) (queue.Entry, error) {
	var (
		id                        int64
		t                         queue.Track
		typ                       string
		durationMs, song, release sql.NullInt64
		artistID                  sql.NullInt64
		artist                    queue.Artist
	)
	if err := rows.Scan(&id, &t.ID, &t.Name, &typ, &durationMs, &t.SourceFileID,
		&song, &release, &artistID, &artist.Name, &artist.Slug); err != nil {
		return queue.Entry{}, err
	}
	t.Type = queue.TrackType(typ)
	t.Duration = time.Duration(dbutil.NullInt64Value(durationMs)) * time.Millisecond
	t.SongID = dbutil.NullInt64Value(song)
	t.ReleaseID = dbutil.NullInt64Value(release)
	artist.ID = dbutil.NullInt64Value(artistID)
	// Featured artists are not stored locally.
	return queue.NewEntry(id, t, artist, nil), nil
}

func nullIfZero(v int64) sql.NullInt64 {
	return sql.NullInt64{Int64: v, Valid: v != 0}
}
