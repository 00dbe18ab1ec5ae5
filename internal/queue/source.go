package queue

import "context"

// PageParams selects one page of a paginated source.
type PageParams struct {
	AfterID  *int64 // nil fetches from the start
	PageSize int
	NoCache  bool // bypass any result cache and read fresh data
}

// Page is one page of entries, already mapped into queue entries.
type Page struct {
	Entries []Entry
	Next    *string // nil when the source reports no further page
}

// Last returns the last entry of the page, or nil if the page is empty.
func (p Page) Last() *Entry {
	if len(p.Entries) == 0 {
		return nil
	}
	return &p.Entries[len(p.Entries)-1]
}

// Source is a remote, paginated list of entries backing an infinite queue.
type Source interface {
	// Key identifies the query. It is opaque to the queue and only used
	// for caching and logging.
	Key() []string
	// FetchPage fetches the page described by p.
	FetchPage(ctx context.Context, p PageParams) (Page, error)
}
