package queue

import (
	"slices"
	"sync"
)

// Store holds the State of one queue and notifies subscribers of every write.
// All writes are whole-value replacements serialized by the store's lock, so
// a read-compute-write done through Update is atomic.
type Store struct {
	mu    sync.RWMutex
	state State

	subs   []*Subscription
	subsMu sync.RWMutex
	closed bool
}

// NewStore creates a store holding the initial empty queue.
func NewStore() *Store {
	return &Store{state: Initial()}
}

// State returns the current state. The returned Entries slice is shared and
// must not be modified.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Write replaces the state.
func (s *Store) Write(next State) {
	s.Update(func(State) State { return next })
}

// Update replaces the state with fn(current) and returns the new state.
// fn runs under the store lock and must not call back into the store.
func (s *Store) Update(fn func(State) State) State {
	next, _ := s.UpdateIf(func(cur State) (State, bool) {
		return fn(cur), true
	})
	return next
}

// UpdateIf is like Update but only writes, and notifies, when fn returns true.
func (s *Store) UpdateIf(fn func(State) (State, bool)) (State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.state
	next, ok := fn(prev)
	if !ok {
		return prev, false
	}
	s.state = next

	// Sends never block, so notifying under the lock keeps events in write order.
	s.notify(Change{Previous: prev, Current: next})
	return next, true
}

// Entries returns a copy of the queue entries.
func (s *Store) Entries() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.state.Entries)
}

// Cursor returns the index of the current entry (-1 if stopped).
func (s *Store) Cursor() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Cursor
}

// Loading returns true while the first page of a remote queue is fetched.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Loading
}

// Continuation returns the continuation of an infinite queue, or nil.
func (s *Store) Continuation() *Continuation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Continuation
}

// Current returns the current entry, or nil if stopped.
func (s *Store) Current() *Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Current()
}

// Subscribe creates a new subscription. Subscribing to a closed store
// returns a subscription whose Done channel is already closed.
func (s *Store) Subscribe() *Subscription {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	sub := newSubscription()
	if s.closed {
		sub.close()
		return sub
	}
	s.subs = append(s.subs, sub)
	return sub
}

// Close closes every subscription. The store stays readable and writable.
func (s *Store) Close() {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for _, sub := range s.subs {
		sub.close()
	}
	s.subs = nil
}

func (s *Store) notify(c Change) {
	s.subsMu.RLock()
	defer s.subsMu.RUnlock()
	for _, sub := range s.subs {
		sub.sendChange(c)
	}
}

func (s *Store) notifyError(e ErrorEvent) {
	s.subsMu.RLock()
	defer s.subsMu.RUnlock()
	for _, sub := range s.subs {
		sub.sendError(e)
	}
}
