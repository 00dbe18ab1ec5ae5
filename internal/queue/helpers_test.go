package queue

import (
	"context"
	"fmt"
	"strconv"
	"sync"
)

// entry creates a test entry with the given resource id.
func entry(id int64) Entry {
	return NewEntry(id,
		Track{ID: id * 10, Name: "Track " + strconv.FormatInt(id, 10), Type: TrackAudio, SourceFileID: id * 100},
		Artist{ID: 1, Name: "Artist"},
		nil,
	)
}

// entries creates test entries with the given ids.
func entries(ids ...int64) []Entry {
	result := make([]Entry, len(ids))
	for i, id := range ids {
		result[i] = entry(id)
	}
	return result
}

// seq returns the ids from..to inclusive.
func seq(from, to int64) []int64 {
	var ids []int64
	for id := from; id <= to; id++ {
		ids = append(ids, id)
	}
	return ids
}

// catalogSource pages through entries with ids 1..n the way the Meelo API
// does: entries after AfterID, and a next token when the page is full.
type catalogSource struct {
	mu    sync.Mutex
	items []Entry
	calls []PageParams
	err   error
	gate  chan struct{} // when set, FetchPage waits for it to be closed
}

func newCatalog(n int64) *catalogSource {
	var items []Entry
	if n > 0 {
		items = entries(seq(1, n)...)
	}
	return &catalogSource{items: items}
}

func (c *catalogSource) Key() []string { return []string{"songs"} }

func (c *catalogSource) FetchPage(ctx context.Context, p PageParams) (Page, error) {
	c.mu.Lock()
	c.calls = append(c.calls, p)
	gate, err := c.gate, c.err
	c.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return Page{}, ctx.Err()
		}
	}
	if err != nil {
		return Page{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	var page []Entry
	for _, e := range c.items {
		if p.AfterID != nil && e.ID <= *p.AfterID {
			continue
		}
		if len(page) == p.PageSize {
			break
		}
		page = append(page, e)
	}
	var next *string
	if len(page) == p.PageSize && len(page) > 0 {
		token := fmt.Sprintf("/songs?afterId=%d", page[len(page)-1].ID)
		next = &token
	}
	return Page{Entries: page, Next: next}, nil
}

func (c *catalogSource) setGate(g chan struct{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gate = g
}

func (c *catalogSource) setErr(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = err
}

func (c *catalogSource) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.calls)
}

func (c *catalogSource) lastCall() PageParams {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[len(c.calls)-1]
}

// scriptedSource returns preset results in order.
type scriptedSource struct {
	mu      sync.Mutex
	results []scriptedResult
	calls   int
}

type scriptedResult struct {
	page Page
	err  error
}

func (s *scriptedSource) Key() []string { return []string{"scripted"} }

func (s *scriptedSource) FetchPage(context.Context, PageParams) (Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.calls >= len(s.results) {
		return Page{}, fmt.Errorf("unexpected fetch #%d", s.calls+1)
	}
	r := s.results[s.calls]
	s.calls++
	return r.page, r.err
}

func token(s string) *string { return &s }

func stateIDs(s State) []int64 {
	return IDs(s.Entries)
}
