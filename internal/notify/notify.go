// Package notify provides desktop notifications via D-Bus.
package notify

import (
	"go.uber.org/zap"

	"github.com/llehouerou/meeloq/internal/queue"
	"github.com/llehouerou/meeloq/internal/ui/render"
)

// Urgency represents notification priority levels per freedesktop spec.
type Urgency byte

const (
	UrgencyLow      Urgency = 0
	UrgencyNormal   Urgency = 1
	UrgencyCritical Urgency = 2
)

// Notification contains data for a desktop notification.
type Notification struct {
	Title      string  // Summary text (required)
	Body       string  // Body text (optional, supports basic markup)
	Icon       string  // Path to image file or icon name (optional)
	Timeout    int32   // ms, -1 = server default, 0 = never expire
	ReplacesID uint32  // 0 = new notification, >0 = replace existing
	Urgency    Urgency // Low, Normal, Critical
	Category   string  // freedesktop category hint, e.g. "x-meeloq.playing"
	Transient  bool    // not kept in the notification history
}

// Notifier sends desktop notifications.
type Notifier interface {
	// Notify sends a notification and returns its ID.
	// Returns 0 and nil error if notifications are disabled or unavailable.
	Notify(n Notification) (uint32, error)
	// Close closes a notification by ID.
	Close(id uint32) error
}

// noop is the Notifier used when no notification server is reachable.
type noop struct{}

func (noop) Notify(Notification) (uint32, error) { return 0, nil }

func (noop) Close(uint32) error { return nil }

const (
	nowPlayingTimeout  = 5000
	nowPlayingCategory = "x-meeloq.playing"
)

// NowPlaying builds the notification shown when e starts playing.
func NowPlaying(e queue.Entry) Notification {
	icon := "audio-x-generic"
	if e.Track.Type == queue.TrackVideo {
		icon = "video-x-generic"
	}
	return Notification{
		Title:     render.Sanitize(e.Track.Name),
		Body:      render.Sanitize(render.Artists(e)),
		Icon:      icon,
		Timeout:   nowPlayingTimeout,
		Urgency:   UrgencyLow,
		Category:  nowPlayingCategory,
		Transient: true,
	}
}

// Announcer shows a single "now playing" notification, replacing the
// previous one each time the playing entry changes.
type Announcer struct {
	notifier Notifier
	logger   *zap.Logger
	lastID   uint32
	playing  *int64
}

// NewAnnouncer returns an Announcer sending through n.
func NewAnnouncer(n Notifier, logger *zap.Logger) *Announcer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Announcer{notifier: n, logger: logger}
}

// Update announces current if it differs from the last announced entry.
// A nil current (stopped queue) closes the notification.
func (a *Announcer) Update(current *queue.Entry) {
	if current == nil {
		if a.playing != nil && a.lastID != 0 {
			if err := a.notifier.Close(a.lastID); err != nil {
				a.logger.Debug("close notification failed", zap.Error(err))
			}
			a.lastID = 0
		}
		a.playing = nil
		return
	}
	if a.playing != nil && *a.playing == current.ID {
		return
	}

	id := current.ID
	a.playing = &id
	n := NowPlaying(*current)
	n.ReplacesID = a.lastID
	nid, err := a.notifier.Notify(n)
	if err != nil {
		a.logger.Warn("notification failed", zap.Int64("entry", id), zap.Error(err))
		return
	}
	a.lastID = nid
}
