// Package queue implements the playback queue engine: the queue state, the
// operations that mutate it, and the continuation controller that grows a
// queue backed by a remote paginated source as playback approaches its tail.
package queue

import (
	"context"
	"math/rand/v2"
	"sync"

	"go.uber.org/zap"
)

const (
	// DefaultPageSize matches the Meelo API default page size.
	DefaultPageSize = 35
	// DefaultPrefetchThreshold is how close to the loaded tail the cursor
	// gets before the next page is fetched.
	DefaultPrefetchThreshold = 2
	// DefaultHistorySize is the number of undo steps kept.
	DefaultHistorySize = 50
)

// Option configures a Queue.
type Option func(*Queue)

// WithPageSize sets the page size used for remote fetches.
func WithPageSize(n int) Option {
	return func(q *Queue) {
		if n > 0 {
			q.pageSize = n
		}
	}
}

// WithPrefetchThreshold sets how many entries before the loaded tail the
// next page starts loading.
func WithPrefetchThreshold(n int) Option {
	return func(q *Queue) {
		if n >= 0 {
			q.threshold = n
		}
	}
}

// WithHistorySize sets the number of undo steps kept.
func WithHistorySize(n int) Option {
	return func(q *Queue) {
		if n > 0 {
			q.history = NewHistory(n)
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(q *Queue) {
		if l != nil {
			q.logger = l
		}
	}
}

// WithRand sets the random source used by Shuffle.
func WithRand(r *rand.Rand) Option {
	return func(q *Queue) {
		if r != nil {
			q.rand = r
		}
	}
}

// Queue applies playback operations to a Store.
//
// Every operation is a read-compute-write of the whole State through the
// store, so operations are atomic with respect to each other. Only
// PlayFromRemoteQuery and LoadNextPage block on I/O, and they do so without
// holding the store.
type Queue struct {
	store     *Store
	pageSize  int
	threshold int
	logger    *zap.Logger

	// Only touched from store update functions, which the store serializes.
	history *History
	rand    *rand.Rand

	mu       sync.Mutex
	sessions uint64
	fetching map[uint64]bool // sessions with a fetch in flight

	ctx    context.Context // parent of background prefetches
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a queue operating on store.
func New(store *Store, opts ...Option) *Queue {
	ctx, cancel := context.WithCancel(context.Background())
	q := &Queue{
		store:     store,
		pageSize:  DefaultPageSize,
		threshold: DefaultPrefetchThreshold,
		logger:    zap.NewNop(),
		history:   NewHistory(DefaultHistorySize),
		rand:      rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())), //nolint:gosec // shuffling, not crypto
		fetching:  make(map[uint64]bool),
		ctx:       ctx,
		cancel:    cancel,
	}
	for _, opt := range opts {
		opt(q)
	}
	q.history.Push(store.State())
	return q
}

// Store returns the underlying store.
func (q *Queue) Store() *Store {
	return q.store
}

// State returns the current state.
func (q *Queue) State() State {
	return q.store.State()
}

// PageSize returns the page size used for remote fetches.
func (q *Queue) PageSize() int {
	return q.pageSize
}

// Close cancels background prefetches and waits for them to return.
func (q *Queue) Close() {
	q.cancel()
	q.wg.Wait()
}

// apply writes fn(current) as a new undo step.
func (q *Queue) apply(fn func(State) State) State {
	return q.store.Update(func(s State) State {
		next := fn(s)
		q.history.Push(next)
		return next
	})
}

// navigate writes fn(current) without creating an undo step.
func (q *Queue) navigate(fn func(State) State) State {
	return q.store.Update(func(s State) State {
		next := fn(s)
		q.history.Amend(next)
		return next
	})
}

// PlayOne replaces the queue with a single entry and plays it.
func (q *Queue) PlayOne(e Entry) State {
	return q.apply(func(State) State { return playOne(e) })
}

// PlayMany replaces the queue with entries, playing from cursor (0 if
// omitted). An out of range cursor is clamped.
func (q *Queue) PlayMany(entries []Entry, cursor ...int) State {
	start := 0
	if len(cursor) > 0 {
		start = cursor[0]
	}
	return q.apply(func(State) State { return playMany(entries, start) })
}

// Skip advances to the next entry. Past the end of a finite queue playback
// stops (cursor -1). On an infinite queue, reaching the prefetch window
// starts loading the next page in the background; running past the loaded
// tail parks playback until that page arrives.
func (q *Queue) Skip() State {
	var prefetch bool
	next := q.navigate(func(s State) State {
		n, p := skip(s, q.threshold)
		prefetch = p
		return n
	})
	if prefetch {
		q.prefetch(next.Continuation)
	}
	return next
}

// Previous goes back one entry. It never moves below the first entry.
func (q *Queue) Previous() State {
	return q.navigate(previous)
}

// JumpTo makes the entry at index current. Returns false if index is invalid.
func (q *Queue) JumpTo(index int) bool {
	var ok bool
	q.store.UpdateIf(func(s State) (State, bool) {
		var next State
		next, ok = jumpTo(s, index)
		if ok {
			q.history.Amend(next)
		}
		return next, ok
	})
	return ok
}

// InsertNext inserts e right after the current entry.
func (q *Queue) InsertNext(e Entry) State {
	return q.apply(func(s State) State { return insertNext(s, e) })
}

// InsertAfter appends e to the end of the queue.
func (q *Queue) InsertAfter(e Entry) State {
	return q.apply(func(s State) State { return insertAfter(s, e) })
}

// Remove deletes the entry at index. The current entry stays current unless
// it is the one removed. Panics if index is out of range.
func (q *Queue) Remove(index int) State {
	return q.apply(func(s State) State { return remove(s, index) })
}

// Reorder moves the entry at from to position to. The current entry stays
// current. Panics if either index is out of range.
func (q *Queue) Reorder(from, to int) State {
	return q.apply(func(s State) State { return reorder(s, from, to) })
}

// ApplyOrder rearranges the head of the queue in one write: position k
// receives the entry previously at perm[k]. expected is the head the order
// was computed against; if the queue no longer starts with those entries
// ErrOrderMismatch is returned and nothing is written.
func (q *Queue) ApplyOrder(expected []int64, perm []int) (State, error) {
	if len(expected) != len(perm) || !validPermutation(perm) {
		return q.State(), ErrInvalidOrder
	}
	var mismatch bool
	next, _ := q.store.UpdateIf(func(s State) (State, bool) {
		if !hasPrefix(s.Entries, expected) {
			mismatch = true
			return s, false
		}
		n := applyOrder(s, perm)
		q.history.Push(n)
		return n, true
	})
	if mismatch {
		return next, ErrOrderMismatch
	}
	return next, nil
}

// Shuffle plays the queue entries in random order from the start.
// Like PlayMany, the result is a finite queue.
func (q *Queue) Shuffle() State {
	return q.apply(func(s State) State {
		entries := make([]Entry, len(s.Entries))
		for i, p := range q.rand.Perm(len(s.Entries)) {
			entries[i] = s.Entries[p]
		}
		return playMany(entries, 0)
	})
}

// Empty resets the queue.
func (q *Queue) Empty() State {
	return q.apply(func(State) State { return Initial() })
}

// Undo restores the state before the last queue modification.
func (q *Queue) Undo() bool {
	return q.restore(q.history.Undo)
}

// Redo re-applies the last undone modification.
func (q *Queue) Redo() bool {
	return q.restore(q.history.Redo)
}

func (q *Queue) restore(step func() (State, bool)) bool {
	_, ok := q.store.UpdateIf(func(State) (State, bool) {
		s, ok := step()
		// A restored placeholder has no fetch resolving it anymore unless
		// its session is still in flight, in which case the result applies.
		s.Loading = false
		return s, ok
	})
	return ok
}

// CanUndo reports whether Undo would change the queue.
func (q *Queue) CanUndo() bool {
	var ok bool
	q.store.UpdateIf(func(s State) (State, bool) {
		ok = q.history.CanUndo()
		return s, false
	})
	return ok
}

// CanRedo reports whether Redo would change the queue.
func (q *Queue) CanRedo() bool {
	var ok bool
	q.store.UpdateIf(func(s State) (State, bool) {
		ok = q.history.CanRedo()
		return s, false
	})
	return ok
}

func hasPrefix(entries []Entry, ids []int64) bool {
	if len(entries) < len(ids) {
		return false
	}
	for i, id := range ids {
		if entries[i].ID != id {
			return false
		}
	}
	return true
}
