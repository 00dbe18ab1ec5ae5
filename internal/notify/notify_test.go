package notify

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/llehouerou/meeloq/internal/queue"
)

type fakeNotifier struct {
	sent   []Notification
	closed []uint32
	nextID uint32
	err    error
}

func (f *fakeNotifier) Notify(n Notification) (uint32, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.sent = append(f.sent, n)
	f.nextID++
	return f.nextID, nil
}

func (f *fakeNotifier) Close(id uint32) error {
	f.closed = append(f.closed, id)
	return nil
}

func entry(id int64, name string) *queue.Entry {
	e := queue.NewEntry(id, queue.Track{ID: id, Name: name, Type: queue.TrackAudio},
		queue.Artist{Name: "Artist"}, []queue.Artist{{Name: "Guest"}})
	return &e
}

func TestUrgencyValues(t *testing.T) {
	// Verify urgency constants match D-Bus spec
	assert.Equal(t, Urgency(0), UrgencyLow)
	assert.Equal(t, Urgency(1), UrgencyNormal)
	assert.Equal(t, Urgency(2), UrgencyCritical)
}

func TestNowPlaying(t *testing.T) {
	n := NowPlaying(*entry(1, "Song\x00"))

	assert.Equal(t, "Song", n.Title)
	assert.Equal(t, "Artist feat. Guest", n.Body)
	assert.Equal(t, "audio-x-generic", n.Icon)
	assert.Equal(t, UrgencyLow, n.Urgency)
	assert.True(t, n.Transient)
	assert.Equal(t, "x-meeloq.playing", n.Category)

	video := entry(2, "Clip")
	video.Track.Type = queue.TrackVideo
	assert.Equal(t, "video-x-generic", NowPlaying(*video).Icon)
}

func TestAnnouncer_ReplacesPrevious(t *testing.T) {
	f := &fakeNotifier{}
	a := NewAnnouncer(f, nil)

	a.Update(entry(1, "One"))
	a.Update(entry(1, "One"))
	a.Update(entry(2, "Two"))

	if assert.Len(t, f.sent, 2, "same entry is announced once") {
		assert.Equal(t, uint32(0), f.sent[0].ReplacesID)
		assert.Equal(t, uint32(1), f.sent[1].ReplacesID)
		assert.Equal(t, "Two", f.sent[1].Title)
	}
}

func TestAnnouncer_StopClosesNotification(t *testing.T) {
	f := &fakeNotifier{}
	a := NewAnnouncer(f, nil)

	a.Update(entry(1, "One"))
	a.Update(nil)
	a.Update(nil)

	assert.Equal(t, []uint32{1}, f.closed)

	// Replaying the same entry after a stop announces it again
	a.Update(entry(1, "One"))
	assert.Len(t, f.sent, 2)
	assert.Equal(t, uint32(0), f.sent[1].ReplacesID)
}

func TestAnnouncer_FailureIsNotFatal(t *testing.T) {
	f := &fakeNotifier{err: errors.New("no notification daemon")}
	a := NewAnnouncer(f, nil)

	a.Update(entry(1, "One"))
	f.err = nil
	a.Update(entry(2, "Two"))

	assert.Len(t, f.sent, 1)
	assert.Equal(t, uint32(0), f.sent[0].ReplacesID)
}

func TestNoop(t *testing.T) {
	var n Notifier = noop{}

	id, err := n.Notify(NowPlaying(*entry(1, "One")))

	assert.NoError(t, err)
	assert.Zero(t, id)
	assert.NoError(t, n.Close(id))
}
