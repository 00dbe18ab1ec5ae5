package queue

// Continuation records how an infinite queue grows: the source the entries
// came from and the pagination cursor of the next page.
type Continuation struct {
	Source  Source
	AfterID int64 // -1 until the first page is fetched

	session  uint64 // PlayFromRemoteQuery call that created the queue
	resuming bool   // playback ran past the loaded tail; resume on next append
	resumeAt int    // index playback resumes at; entries before it were played
}

// fetchParams returns the page parameters continuing after c.
func (c *Continuation) fetchParams(pageSize int) PageParams {
	p := PageParams{PageSize: pageSize, NoCache: true}
	if c.AfterID >= 0 {
		after := c.AfterID
		p.AfterID = &after
	}
	return p
}

// sameFetch reports whether o continues the same queue from the same point.
func (c *Continuation) sameFetch(o *Continuation) bool {
	if c == nil || o == nil {
		return false
	}
	return c.session == o.session && c.AfterID == o.AfterID
}

// withoutResume returns c with any pending resume dropped.
func (c *Continuation) withoutResume() *Continuation {
	if c == nil || !c.resuming {
		return c
	}
	cp := *c
	cp.resuming = false
	return &cp
}

// shiftResume returns c with its resume index moved by fn. Entries
// inserted, removed or moved around the resume index keep it pointing at the
// first entry not played yet.
func (c *Continuation) shiftResume(fn func(at int) int) *Continuation {
	if c == nil || !c.resuming {
		return c
	}
	cp := *c
	cp.resumeAt = fn(c.resumeAt)
	return &cp
}

// State is the whole queue. It is replaced wholesale by every operation;
// the Entries slice of a State is never modified after the State is built.
type State struct {
	Entries      []Entry
	Cursor       int // -1 when stopped
	Loading      bool
	Continuation *Continuation // nil for finite or exhausted queues
}

// Initial returns the state of a new, empty queue.
func Initial() State {
	return State{Cursor: -1}
}

// Current returns the entry at the cursor, or nil when stopped.
func (s State) Current() *Entry {
	if s.Cursor < 0 || s.Cursor >= len(s.Entries) {
		return nil
	}
	e := s.Entries[s.Cursor]
	return &e
}

// Len returns the number of entries.
func (s State) Len() int {
	return len(s.Entries)
}

// IsEmpty returns true if the queue has no entries.
func (s State) IsEmpty() bool {
	return len(s.Entries) == 0
}

// Infinite reports whether more entries may still be fetched.
func (s State) Infinite() bool {
	return s.Continuation != nil
}

// Valid reports whether the cursor invariant holds.
func (s State) Valid() bool {
	return s.Cursor >= -1 && s.Cursor < len(s.Entries)
}
