package queuepanel

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/x/ansi"

	"github.com/llehouerou/meeloq/internal/queue"
	"github.com/llehouerou/meeloq/internal/reorder"
)

// testEntry creates an entry with the given title and artist.
func testEntry(id int64, title, artist string) queue.Entry {
	return queue.NewEntry(id, queue.Track{
		ID:       id,
		Name:     title,
		Type:     queue.TrackAudio,
		Duration: 3*time.Minute + 5*time.Second,
	}, queue.Artist{ID: 1, Name: artist}, []queue.Artist{})
}

func testEntries(n int) []queue.Entry {
	entries := make([]queue.Entry, n)
	for i := range entries {
		id := int64(i + 1)
		entries[i] = testEntry(id, "Song "+string(rune('A'+i)), "Artist")
	}
	return entries
}

// newTestPanel creates a focused panel showing a queue playing entries at
// cursor.
func newTestPanel(entries []queue.Entry, cursor int) (Model, *queue.Queue) {
	q := queue.New(queue.NewStore())
	if len(entries) > 0 {
		q.PlayMany(entries, cursor)
	}
	m := New()
	m.SetSize(60, 10)
	m.SetFocused(true)
	m.SetState(q.State())
	return m, q
}

func TestView_EmptyQueue(t *testing.T) {
	m, _ := newTestPanel(nil, 0)

	stripped := ansi.Strip(m.View())

	if !strings.Contains(stripped, "Queue (0/0)") {
		t.Errorf("empty queue should show 'Queue (0/0)', got: %s", stripped)
	}
}

func TestView_ZeroSize(t *testing.T) {
	m := New()

	if m.View() != "" {
		t.Error("View() should be empty before the panel is sized")
	}
}

func TestView_SingleEntry(t *testing.T) {
	m, _ := newTestPanel([]queue.Entry{testEntry(1, "Test Song", "Test Artist")}, 0)

	stripped := ansi.Strip(m.View())

	for _, want := range []string{"Test Song", "Test Artist", "3:05", "Queue (1/1)", "▶"} {
		if !strings.Contains(stripped, want) {
			t.Errorf("view should contain %q, got: %s", want, stripped)
		}
	}
}

func TestView_CurrentEntryInHeader(t *testing.T) {
	m, _ := newTestPanel(testEntries(3), 1)

	stripped := ansi.Strip(m.View())

	if !strings.Contains(stripped, "Queue (2/3)") {
		t.Errorf("should show 'Queue (2/3)', got: %s", stripped)
	}
}

func TestView_StoppedQueue(t *testing.T) {
	m, q := newTestPanel(testEntries(2), 1)
	m.SetState(q.Skip())

	stripped := ansi.Strip(m.View())

	if !strings.Contains(stripped, "Queue (0/2)") {
		t.Errorf("stopped queue should show 'Queue (0/2)', got: %s", stripped)
	}
	if strings.Contains(stripped, "▶") {
		t.Errorf("stopped queue should not mark a playing entry, got: %s", stripped)
	}
}

func TestView_LargeCountsUseSeparators(t *testing.T) {
	m, _ := newTestPanel(testEntries(1200), 0)

	stripped := ansi.Strip(m.View())

	if !strings.Contains(stripped, "Queue (1/1,200)") {
		t.Errorf("should show 'Queue (1/1,200)', got: %s", stripped)
	}
}

func TestView_FeaturedArtists(t *testing.T) {
	e := queue.NewEntry(1, queue.Track{ID: 1, Name: "Duet"}, queue.Artist{Name: "Main"},
		[]queue.Artist{{Name: "Guest"}})
	m, _ := newTestPanel([]queue.Entry{e}, 0)
	m.SetSize(80, 6)

	stripped := ansi.Strip(m.View())

	if !strings.Contains(stripped, "Main feat. Guest") {
		t.Errorf("should show featured artist, got: %s", stripped)
	}
}

func TestView_LoadingAndMore(t *testing.T) {
	m, _ := newTestPanel(nil, 0)

	m.SetState(queue.State{Cursor: -1, Loading: true})
	if stripped := ansi.Strip(m.View()); !strings.Contains(stripped, "loading") {
		t.Errorf("loading state should show 'loading', got: %s", stripped)
	}

	m.SetState(queue.State{
		Entries:      testEntries(2),
		Cursor:       0,
		Continuation: &queue.Continuation{AfterID: 2},
	})
	stripped := ansi.Strip(m.View())
	if !strings.Contains(stripped, "more") {
		t.Errorf("infinite queue should show 'more', got: %s", stripped)
	}
	if strings.Contains(stripped, "loading") {
		t.Errorf("loaded state should not show 'loading', got: %s", stripped)
	}
}

func TestView_LongTitleTruncated(t *testing.T) {
	long := strings.Repeat("Very Long Title ", 10)
	m, _ := newTestPanel([]queue.Entry{testEntry(1, long, "Artist")}, 0)

	for i, line := range strings.Split(m.View(), "\n") {
		if w := ansi.StringWidth(line); w != 60 {
			t.Errorf("line %d width = %d, want 60", i, w)
		}
	}
	if !strings.Contains(ansi.Strip(m.View()), "...") {
		t.Error("long title should be truncated with an ellipsis")
	}
}

func TestView_ScrollsToCursor(t *testing.T) {
	m, _ := newTestPanel(testEntries(20), 0)

	// 6 visible rows
	m.cursor = 15
	m.ensureCursorVisible()
	stripped := ansi.Strip(m.View())

	if !strings.Contains(stripped, "Song P") {
		t.Errorf("cursor row should be visible, got: %s", stripped)
	}
	if strings.Contains(stripped, "Song A ") {
		t.Errorf("first row should be scrolled out, got: %s", stripped)
	}
}

func TestView_ReorderMode(t *testing.T) {
	m, q := newTestPanel(testEntries(3), 0)
	s := reorder.Begin(q)
	m.BeginReorder(s)

	stripped := ansi.Strip(m.View())
	if !strings.Contains(stripped, "Reorder (3 entries)") {
		t.Errorf("should show reorder header, got: %s", stripped)
	}
	if strings.Contains(stripped, "modified") {
		t.Errorf("unchanged staging should not show 'modified', got: %s", stripped)
	}

	s.Move(0, 2)
	stripped = ansi.Strip(m.View())
	if !strings.Contains(stripped, "modified") {
		t.Errorf("changed staging should show 'modified', got: %s", stripped)
	}
	// border, header, separator, then rows
	lines := strings.Split(stripped, "\n")
	if !strings.Contains(lines[3], "Song C") || !strings.Contains(lines[5], "Song A") {
		t.Errorf("rows should follow the staged order, got: %s", stripped)
	}
}
