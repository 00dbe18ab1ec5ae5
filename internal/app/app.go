// Package app is the terminal front end driving the queue engine.
package app

import (
	"context"
	"math/rand/v2"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/llehouerou/meeloq/internal/keymap"
	"github.com/llehouerou/meeloq/internal/queue"
	"github.com/llehouerou/meeloq/internal/reorder"
	"github.com/llehouerou/meeloq/internal/ui/queuepanel"
)

// Catalog provides the song queries the front end can play.
type Catalog interface {
	// Songs returns all songs, shuffled by the server when seed is set.
	Songs(seed *int64) queue.Source
}

// Playlist is a playlist the front end can play and persist reorders to.
type Playlist struct {
	ID        int64
	Source    queue.Source
	Persister reorder.Persister
}

// Announcer is told about the playing entry after every queue change.
type Announcer interface {
	Update(current *queue.Entry)
}

// Options configures the front end.
type Options struct {
	Catalog   Catalog
	Playlist  *Playlist // nil disables "P"
	Rollback  bool      // restore the queue order when saving a playlist order fails
	Announcer Announcer // nil disables notifications
	Logger    *zap.Logger
	Seed      func() int64 // shuffle seeds, random by default
}

// Model is the bubbletea model of the application.
type Model struct {
	Queue  *queue.Queue
	Width  int
	Height int

	sub       *queue.Subscription
	catalog   Catalog
	playlist  *Playlist
	rollback  bool
	announcer Announcer
	logger    *zap.Logger
	seed      func() int64
	ctx       context.Context

	keys     *keymap.Resolver
	panel    queuepanel.Model
	staging  *reorder.Session
	saving   bool // staging is bound to the playlist
	status   string
	showHelp bool

	// playingPlaylist is true while the queue holds the playlist unchanged,
	// so a reorder of the queue is a reorder of the playlist.
	playingPlaylist bool
}

// New creates the application model on q. The model subscribes to the
// queue store; the subscription ends when the queue is closed.
func New(ctx context.Context, q *queue.Queue, opts Options) Model {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	seed := opts.Seed
	if seed == nil {
		seed = func() int64 { return rand.Int64N(1 << 31) }
	}

	panel := queuepanel.New()
	panel.SetFocused(true)
	panel.SetState(q.State())

	return Model{
		Queue:     q,
		sub:       q.Store().Subscribe(),
		catalog:   opts.Catalog,
		playlist:  opts.Playlist,
		rollback:  opts.Rollback,
		announcer: opts.Announcer,
		logger:    logger,
		seed:      seed,
		ctx:       ctx,
		keys:      keymap.NewResolver(keymap.Bindings),
		panel:     panel,
	}
}

// Init starts listening to queue events.
func (m Model) Init() tea.Cmd {
	return m.WatchQueueEvents()
}

// Status returns the status line text.
func (m Model) Status() string {
	return m.status
}

// Reordering reports whether a reorder is being staged.
func (m Model) Reordering() bool {
	return m.staging != nil
}
