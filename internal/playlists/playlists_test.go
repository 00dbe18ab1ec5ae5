package playlists

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	dbutil "github.com/llehouerou/meeloq/internal/db"
	"github.com/llehouerou/meeloq/internal/queue"
)

// setupTestDB creates an in-memory SQLite database with the schema initialized.
// Each test gets its own named database; shared cache makes all connections
// of the pool see it.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	db, err := sql.Open("sqlite", "file:"+name+"?mode=memory&cache=shared&_pragma=foreign_keys(1)")
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	if err := dbutil.InitSchema(db); err != nil {
		db.Close()
		t.Fatalf("failed to create tables: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testEntry(trackID int64) queue.Entry {
	return queue.NewEntry(0, queue.Track{
		ID:           trackID,
		Name:         "Track",
		Type:         queue.TrackAudio,
		Duration:     3 * time.Minute,
		SourceFileID: trackID * 100,
		SongID:       trackID + 1000,
	}, queue.Artist{ID: 7, Name: "Artist", Slug: "artist"}, nil)
}

// newPlaylist creates a playlist holding tracks with the given ids and
// returns the playlist id and its entry ids.
func newPlaylist(t *testing.T, p *Playlists, trackIDs ...int64) (int64, []int64) {
	t.Helper()
	ctx := context.Background()

	entries := make([]queue.Entry, len(trackIDs))
	for i, id := range trackIDs {
		entries[i] = testEntry(id)
	}
	if err := p.UpsertTracks(ctx, entries); err != nil {
		t.Fatalf("UpsertTracks failed: %v", err)
	}
	id, err := p.Create(ctx, "Playlist "+t.Name())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	entryIDs, err := p.AddEntries(ctx, id, trackIDs)
	if err != nil {
		t.Fatalf("AddEntries failed: %v", err)
	}
	return id, entryIDs
}

func trackIDs(entries []queue.Entry) []int64 {
	ids := make([]int64, len(entries))
	for i, e := range entries {
		ids[i] = e.Track.ID
	}
	return ids
}

func equalIDs(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestPlaylist_CreateGet(t *testing.T) {
	p := New(setupTestDB(t), nil)
	ctx := context.Background()

	id, err := p.Create(ctx, "My Playlist")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if id <= 0 {
		t.Errorf("expected positive ID, got %d", id)
	}

	pl, err := p.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if pl.Name != "My Playlist" {
		t.Errorf("Name = %q, want %q", pl.Name, "My Playlist")
	}
}

func TestPlaylist_GetMissing(t *testing.T) {
	p := New(setupTestDB(t), nil)

	_, err := p.Get(context.Background(), 42)

	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestPlaylist_RenameListDelete(t *testing.T) {
	p := New(setupTestDB(t), nil)
	ctx := context.Background()
	a, _ := p.Create(ctx, "b-side")
	_, _ = p.Create(ctx, "Anthems")

	if err := p.Rename(ctx, a, "Covers"); err != nil {
		t.Fatalf("Rename failed: %v", err)
	}
	if err := p.Rename(ctx, 999, "x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Rename missing: err = %v, want ErrNotFound", err)
	}

	list, err := p.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 2 || list[0].Name != "Anthems" || list[1].Name != "Covers" {
		t.Errorf("List = %+v, want [Anthems Covers]", list)
	}

	if err := p.Delete(ctx, a); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	list, _ = p.List(ctx)
	if len(list) != 1 {
		t.Errorf("len(List) = %d after delete, want 1", len(list))
	}
}

func TestEntries_AddAndGet(t *testing.T) {
	p := New(setupTestDB(t), nil)
	ctx := context.Background()
	id, entryIDs := newPlaylist(t, p, 11, 12, 13)

	entries, err := p.Entries(ctx, id)
	if err != nil {
		t.Fatalf("Entries failed: %v", err)
	}

	if !equalIDs(trackIDs(entries), []int64{11, 12, 13}) {
		t.Errorf("tracks = %v, want [11 12 13]", trackIDs(entries))
	}
	if !equalIDs(queue.IDs(entries), entryIDs) {
		t.Errorf("entry ids = %v, want %v", queue.IDs(entries), entryIDs)
	}
	e := entries[0]
	if e.Track.Duration != 3*time.Minute || e.Track.SongID != 1011 || e.Track.SourceFileID != 1100 {
		t.Errorf("track not round-tripped: %+v", e.Track)
	}
	if e.Artist.Name != "Artist" || e.Artist.ID != 7 {
		t.Errorf("artist = %+v", e.Artist)
	}
	if e.FeaturingLoaded() {
		t.Error("featured artists are not stored locally")
	}

	count, err := p.EntryCount(ctx, id)
	if err != nil || count != 3 {
		t.Errorf("EntryCount = %d, %v; want 3", count, err)
	}
}

func TestEntries_AppendKeepsOrder(t *testing.T) {
	p := New(setupTestDB(t), nil)
	ctx := context.Background()
	id, _ := newPlaylist(t, p, 11, 12)

	if _, err := p.AddEntries(ctx, id, []int64{11}); err != nil {
		t.Fatalf("AddEntries failed: %v", err)
	}

	entries, _ := p.Entries(ctx, id)
	if !equalIDs(trackIDs(entries), []int64{11, 12, 11}) {
		t.Errorf("tracks = %v, want [11 12 11]", trackIDs(entries))
	}
}

func TestEntries_UnknownTrack(t *testing.T) {
	p := New(setupTestDB(t), nil)
	ctx := context.Background()
	id, _ := p.Create(ctx, "P")

	if _, err := p.AddEntries(ctx, id, []int64{404}); err == nil {
		t.Error("adding an unknown track should fail")
	}
	if count, _ := p.EntryCount(ctx, id); count != 0 {
		t.Errorf("EntryCount = %d, want 0 (rolled back)", count)
	}
}

func TestUpsertTracks_Updates(t *testing.T) {
	p := New(setupTestDB(t), nil)
	ctx := context.Background()
	id, _ := newPlaylist(t, p, 11)

	renamed := testEntry(11)
	renamed.Track.Name = "Renamed"
	if err := p.UpsertTracks(ctx, []queue.Entry{renamed}); err != nil {
		t.Fatalf("UpsertTracks failed: %v", err)
	}

	entries, _ := p.Entries(ctx, id)
	if entries[0].Track.Name != "Renamed" {
		t.Errorf("Name = %q, want Renamed", entries[0].Track.Name)
	}
}

func TestReorderPlaylist(t *testing.T) {
	p := New(setupTestDB(t), nil)
	ctx := context.Background()
	id, e := newPlaylist(t, p, 11, 12, 13, 14)

	order := []int64{e[3], e[1], e[0], e[2]}
	if err := p.ReorderPlaylist(ctx, id, order); err != nil {
		t.Fatalf("ReorderPlaylist failed: %v", err)
	}

	got, err := p.PlaylistEntryIDs(ctx, id)
	if err != nil {
		t.Fatalf("PlaylistEntryIDs failed: %v", err)
	}
	if !equalIDs(got, order) {
		t.Errorf("order = %v, want %v", got, order)
	}
	entries, _ := p.Entries(ctx, id)
	if !equalIDs(trackIDs(entries), []int64{14, 12, 11, 13}) {
		t.Errorf("tracks = %v, want [14 12 11 13]", trackIDs(entries))
	}
}

func TestReorderPlaylist_NotPermutation(t *testing.T) {
	p := New(setupTestDB(t), nil)
	ctx := context.Background()
	id, e := newPlaylist(t, p, 11, 12, 13)

	tests := []struct {
		name  string
		order []int64
	}{
		{"missing entry", []int64{e[0], e[1]}},
		{"duplicate entry", []int64{e[0], e[0], e[1]}},
		{"foreign entry", []int64{e[0], e[1], 9999}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := p.ReorderPlaylist(ctx, id, tt.order)
			if !errors.Is(err, ErrNotPermutation) {
				t.Errorf("err = %v, want ErrNotPermutation", err)
			}
		})
	}

	got, _ := p.PlaylistEntryIDs(ctx, id)
	if !equalIDs(got, e) {
		t.Errorf("order changed to %v, want %v", got, e)
	}
}

func TestSource_Pages(t *testing.T) {
	p := New(setupTestDB(t), nil)
	ctx := context.Background()
	id, e := newPlaylist(t, p, 1, 2, 3, 4, 5)
	src := p.Source(id)

	first, err := src.FetchPage(ctx, queue.PageParams{PageSize: 2})
	if err != nil {
		t.Fatalf("FetchPage failed: %v", err)
	}
	if !equalIDs(queue.IDs(first.Entries), e[:2]) || first.Next == nil {
		t.Fatalf("first page = %v (next %v), want %v with next", queue.IDs(first.Entries), first.Next, e[:2])
	}

	after := e[3]
	last, err := src.FetchPage(ctx, queue.PageParams{PageSize: 2, AfterID: &after})
	if err != nil {
		t.Fatalf("FetchPage failed: %v", err)
	}
	if !equalIDs(queue.IDs(last.Entries), e[4:]) || last.Next != nil {
		t.Errorf("last page = %v (next %v), want %v without next", queue.IDs(last.Entries), last.Next, e[4:])
	}
}

func TestSource_FollowsReorder(t *testing.T) {
	p := New(setupTestDB(t), nil)
	ctx := context.Background()
	id, e := newPlaylist(t, p, 1, 2, 3)
	if err := p.ReorderPlaylist(ctx, id, []int64{e[2], e[0], e[1]}); err != nil {
		t.Fatalf("ReorderPlaylist failed: %v", err)
	}

	after := e[2]
	page, err := p.Source(id).FetchPage(ctx, queue.PageParams{PageSize: 10, AfterID: &after})
	if err != nil {
		t.Fatalf("FetchPage failed: %v", err)
	}
	if !equalIDs(queue.IDs(page.Entries), []int64{e[0], e[1]}) {
		t.Errorf("page = %v, want entries after %d in playlist order", queue.IDs(page.Entries), after)
	}
}

func TestSource_BacksQueue(t *testing.T) {
	p := New(setupTestDB(t), nil)
	ctx := context.Background()
	id, e := newPlaylist(t, p, 1, 2, 3, 4, 5)
	q := queue.New(queue.NewStore(), queue.WithPageSize(2))
	defer q.Close()

	if err := q.PlayFromRemoteQuery(ctx, p.Source(id)); err != nil {
		t.Fatalf("PlayFromRemoteQuery failed: %v", err)
	}
	for q.State().Infinite() {
		if err := q.LoadNextPage(ctx); err != nil {
			t.Fatalf("LoadNextPage failed: %v", err)
		}
	}

	if got := queue.IDs(q.State().Entries); !equalIDs(got, e) {
		t.Errorf("queue = %v, want %v", got, e)
	}
}
