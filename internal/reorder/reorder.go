// Package reorder stages a reordering of the queue so it can be edited
// freely and applied in one write, optionally persisting it to a playlist.
package reorder

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/llehouerou/meeloq/internal/queue"
)

var (
	// ErrStale is returned by Commit when the queue no longer starts with the
	// entries the session was begun on.
	ErrStale = queue.ErrOrderMismatch
	// ErrClosed is returned by Commit on a session already committed or
	// cancelled.
	ErrClosed = errors.New("reorder session closed")
)

// Persister stores a playlist order. Implemented by the Meelo HTTP client
// and the local playlist store.
type Persister interface {
	ReorderPlaylist(ctx context.Context, playlistID int64, entryIDs []int64) error
	PlaylistEntryIDs(ctx context.Context, playlistID int64) ([]int64, error)
}

// Result reports the outcome of persisting a committed order.
type Result struct {
	PlaylistID int64
	// Order is the order the persister reports after the reorder.
	Order []int64
	// Err is non-nil if the reorder or the refetch failed.
	Err error
	// RolledBack is true if the queue was restored to its order before Commit.
	RolledBack bool
}

// Option configures a Session.
type Option func(*Session)

// WithPlaylist persists committed orders to the playlist with the given id.
func WithPlaylist(id int64, p Persister) Option {
	return func(s *Session) {
		s.playlistID = id
		s.persister = p
	}
}

// WithRollback restores the previous queue order when persisting fails.
func WithRollback(enabled bool) Option {
	return func(s *Session) {
		s.rollback = enabled
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// Session is a staging buffer over a snapshot of the queue entries.
// Moves only touch the buffer; the queue changes on Commit.
//
// A Session is not safe for concurrent use.
type Session struct {
	id       uuid.UUID
	q        *queue.Queue
	snapshot []queue.Entry
	slots    []int // slots[k] is the snapshot index staged at position k

	playlistID int64
	persister  Persister
	rollback   bool
	logger     *zap.Logger

	closed bool
}

// Begin starts a reorder session over the current entries of q.
func Begin(q *queue.Queue, opts ...Option) *Session {
	snapshot := q.Store().Entries()
	slots := make([]int, len(snapshot))
	for i := range slots {
		slots[i] = i
	}
	s := &Session{
		id:       uuid.New(),
		q:        q,
		snapshot: snapshot,
		slots:    slots,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(zap.Stringer("session", s.id))
	return s
}

// ID returns the session identifier.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// Len returns the number of staged entries.
func (s *Session) Len() int {
	return len(s.slots)
}

// Move swaps the staged entries at positions from and to. Moving an entry by
// more than one position is a sequence of adjacent moves. It is a no-op on a
// closed session. Panics if either position is out of range.
func (s *Session) Move(from, to int) {
	if s.closed {
		return
	}
	if from < 0 || from >= len(s.slots) || to < 0 || to >= len(s.slots) {
		panic(fmt.Sprintf("reorder: move %d -> %d out of range [0,%d)", from, to, len(s.slots)))
	}
	s.slots[from], s.slots[to] = s.slots[to], s.slots[from]
}

// Entries returns the staged entries in their staged order.
func (s *Session) Entries() []queue.Entry {
	out := make([]queue.Entry, len(s.slots))
	for k, i := range s.slots {
		out[k] = s.snapshot[i]
	}
	return out
}

// Order returns the staged entry ids.
func (s *Session) Order() []int64 {
	return queue.IDs(s.Entries())
}

// Changed reports whether the staged order differs from the snapshot.
func (s *Session) Changed() bool {
	for k, i := range s.slots {
		if k != i {
			return true
		}
	}
	return false
}

// Commit applies the staged order to the queue in one write. The entry that
// was playing keeps playing, and entries added to the queue after Begin stay
// after the reordered ones.
//
// If the queue no longer starts with the snapshot entries, ErrStale is
// returned and the queue is untouched; the session stays open so it can be
// cancelled. An unchanged order writes nothing.
//
// When a playlist is bound, the order is persisted in the background and the
// outcome delivered on the returned channel, which is closed afterwards. The
// channel is closed without a value when there is nothing to persist.
func (s *Session) Commit(ctx context.Context) (<-chan Result, error) {
	if s.closed {
		return nil, ErrClosed
	}
	results := make(chan Result, 1)
	if !s.Changed() {
		s.closed = true
		close(results)
		return results, nil
	}

	base := queue.IDs(s.snapshot)
	perm := slices.Clone(s.slots)
	if _, err := s.q.ApplyOrder(base, perm); err != nil {
		s.logger.Debug("reorder commit rejected", zap.Error(err))
		return nil, err
	}
	s.closed = true
	committed := s.Order()
	s.logger.Info("queue reordered", zap.Int("entries", len(committed)))

	if s.persister == nil {
		close(results)
		return results, nil
	}
	go func() {
		defer close(results)
		results <- s.persist(ctx, committed, perm)
	}()
	return results, nil
}

// Cancel discards the staged order. The queue is left untouched.
func (s *Session) Cancel() {
	s.closed = true
	s.slots = nil
	s.snapshot = nil
}

// Closed reports whether the session was committed or cancelled.
func (s *Session) Closed() bool {
	return s.closed
}

func (s *Session) persist(ctx context.Context, committed []int64, perm []int) Result {
	res := Result{PlaylistID: s.playlistID}
	log := s.logger.With(zap.Int64("playlist", s.playlistID))

	err := s.persister.ReorderPlaylist(ctx, s.playlistID, committed)
	if err == nil {
		res.Order, err = s.persister.PlaylistEntryIDs(ctx, s.playlistID)
	}
	if err != nil {
		res.Err = fmt.Errorf("persist playlist %d order: %w", s.playlistID, err)
		log.Warn("playlist reorder failed", zap.Error(err))
		if s.rollback {
			res.RolledBack = s.restore(committed, perm)
		}
		return res
	}

	if !slices.Equal(res.Order, committed) {
		log.Info("playlist order differs from the committed order",
			zap.Int64s("committed", committed),
			zap.Int64s("stored", res.Order))
	} else {
		log.Debug("playlist reorder persisted")
	}
	return res
}

// restore puts back the order of the snapshot if the queue still starts with
// the committed order.
func (s *Session) restore(committed []int64, perm []int) bool {
	inverse := make([]int, len(perm))
	for k, i := range perm {
		inverse[i] = k
	}
	if _, err := s.q.ApplyOrder(committed, inverse); err != nil {
		s.logger.Info("queue changed since commit, keeping local order", zap.Error(err))
		return false
	}
	s.logger.Info("queue order rolled back")
	return true
}
