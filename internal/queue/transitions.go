package queue

import (
	"fmt"
	"slices"
)

// Transitions are pure: they never modify the Entries slice of their input
// and always return a State satisfying the cursor invariant.

func playOne(e Entry) State {
	return State{Entries: []Entry{e}, Cursor: 0}
}

func playMany(entries []Entry, cursor int) State {
	entries = slices.Clone(entries)
	if len(entries) == 0 {
		return State{Entries: entries, Cursor: -1}
	}
	return State{Entries: entries, Cursor: min(max(cursor, 0), len(entries)-1)}
}

// skip advances the cursor. The second result reports whether the next page
// of an infinite queue should be fetched: the new cursor is within threshold
// entries of the loaded tail, or playback ran past it.
func skip(s State, threshold int) (State, bool) {
	c := s.Continuation
	if c != nil && c.resuming {
		if c.resumeAt >= len(s.Entries) {
			// Still parked past the tail, waiting for the next page.
			return s, true
		}
		// Entries were added while parked: play them.
		next := s
		next.Cursor = c.resumeAt
		next.Continuation = c.withoutResume()
		return next, next.Cursor >= len(s.Entries)-threshold
	}

	next := s
	next.Cursor = s.Cursor + 1
	exhausted := next.Cursor >= len(s.Entries)
	if exhausted {
		next.Cursor = -1
		if c != nil {
			parked := *c
			parked.resuming = true
			parked.resumeAt = len(s.Entries)
			next.Continuation = &parked
		}
	}
	prefetch := c != nil && (exhausted || next.Cursor >= len(s.Entries)-threshold)
	return next, prefetch
}

func previous(s State) State {
	next := s
	next.Continuation = s.Continuation.withoutResume()
	if s.Cursor > 0 {
		next.Cursor = s.Cursor - 1
	}
	return next
}

func jumpTo(s State, index int) (State, bool) {
	if index < 0 || index >= len(s.Entries) {
		return s, false
	}
	next := s
	next.Cursor = index
	next.Continuation = s.Continuation.withoutResume()
	return next, true
}

// insertNext inserts e after the current entry. While parked past the tail
// "next" is the resume index, so e plays before the next page.
func insertNext(s State, e Entry) State {
	at := s.Cursor + 1
	if c := s.Continuation; c != nil && c.resuming {
		at = c.resumeAt
	}
	next := s
	next.Entries = slices.Insert(slices.Clone(s.Entries), at, e)
	return next
}

func insertAfter(s State, e Entry) State {
	next := s
	next.Entries = append(slices.Clip(s.Entries), e)
	return next
}

// remove deletes the entry at index. The cursor keeps pointing at the entry
// that was playing; when that entry is the one removed, the entry after it
// becomes current (or the new last entry if it was the last one).
func remove(s State, index int) State {
	checkIndex("remove", index, len(s.Entries))

	next := s
	next.Entries = slices.Delete(slices.Clone(s.Entries), index, index+1)
	next.Continuation = s.Continuation.shiftResume(func(at int) int {
		if index < at {
			return at - 1
		}
		return at
	})
	switch {
	case s.Cursor > index:
		next.Cursor--
	case s.Cursor == index && s.Cursor >= len(next.Entries):
		next.Cursor = len(next.Entries) - 1
	}
	return next
}

// reorder moves the entry at from to position to. The cursor follows the
// playing entry.
func reorder(s State, from, to int) State {
	checkIndex("reorder from", from, len(s.Entries))
	checkIndex("reorder to", to, len(s.Entries))

	next := s
	if from == to {
		return next
	}
	next.Continuation = s.Continuation.shiftResume(func(at int) int {
		switch {
		case from < at && to >= at:
			return at - 1
		case from >= at && to < at:
			return at + 1
		}
		return at
	})

	moved := s.Entries[from]
	entries := slices.Delete(slices.Clone(s.Entries), from, from+1)
	next.Entries = slices.Insert(entries, to, moved)

	c := s.Cursor
	switch {
	case c == from:
		next.Cursor = to
	case from < c && c <= to:
		next.Cursor = c - 1
	case to <= c && c < from:
		next.Cursor = c + 1
	}
	return next
}

// applyOrder rearranges the first len(perm) entries so that position k holds
// the entry previously at perm[k]. Entries past the prefix are untouched.
func applyOrder(s State, perm []int) State {
	next := s
	entries := slices.Clone(s.Entries)
	cursor := s.Cursor
	for k, from := range perm {
		entries[k] = s.Entries[from]
		if from == s.Cursor {
			cursor = k
		}
	}
	next.Entries = entries
	next.Cursor = cursor
	next.Continuation = s.Continuation
	return next
}

// appendPage appends a fetched page and installs the continuation computed
// for it. A queue parked past its tail resumes at its resume index, and an
// empty queue (a retried first fetch) starts on the first new entry.
func appendPage(s State, page []Entry, cont *Continuation) State {
	next := s
	next.Entries = slices.Concat(s.Entries, page)
	next.Continuation = cont
	if len(page) == 0 || s.Cursor != -1 {
		return next
	}
	switch c := s.Continuation; {
	case c != nil && c.resuming:
		next.Cursor = min(c.resumeAt, len(next.Entries)-1)
	case len(s.Entries) == 0:
		next.Cursor = 0
	}
	return next
}

func checkIndex(op string, index, length int) {
	if index < 0 || index >= length {
		panic(fmt.Sprintf("queue: %s index %d out of range [0,%d)", op, index, length))
	}
}

// validPermutation reports whether perm is a permutation of [0, len(perm)).
func validPermutation(perm []int) bool {
	seen := make([]bool, len(perm))
	for _, p := range perm {
		if p < 0 || p >= len(perm) || seen[p] {
			return false
		}
		seen[p] = true
	}
	return true
}
