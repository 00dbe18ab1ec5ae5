package queue

import (
	"context"
	"slices"

	"go.uber.org/zap"
)

// PlayOption configures PlayFromRemoteQuery.
type PlayOption func(*playOptions)

type playOptions struct {
	afterID *int64
	startAt *int64
}

// AfterID resumes the remote list after the entry with the given id instead
// of fetching from the start. Used when playback starts deep inside a list
// the user has already scrolled through.
func AfterID(id int64) PlayOption {
	return func(o *playOptions) { o.afterID = &id }
}

// StartAt makes the fetched entry with the given id current. Falls back to
// the first entry if the id is not in the first page.
func StartAt(id int64) PlayOption {
	return func(o *playOptions) { o.startAt = &id }
}

// PlayFromRemoteQuery replaces the queue with an infinite queue backed by src.
//
// A loading placeholder is written immediately so observers never see stale
// entries, then the first page is fetched. It blocks until the page is
// fetched; the error, if any, is a *FetchError and leaves the queue in a
// retryable state (see LoadNextPage). If another queue replaced this one
// while the fetch was outstanding, the result is dropped and nil returned.
func (q *Queue) PlayFromRemoteQuery(ctx context.Context, src Source, opts ...PlayOption) error {
	var o playOptions
	for _, opt := range opts {
		opt(&o)
	}

	placeholder := &Continuation{Source: src, AfterID: -1, session: q.newSession()}
	q.apply(func(State) State {
		return State{Cursor: -1, Loading: true, Continuation: placeholder}
	})
	defer q.release(placeholder.session)

	op := FetchFirstPage
	params := PageParams{PageSize: q.pageSize}
	retry := placeholder
	if o.afterID != nil {
		op = FetchNextPage
		params = (&Continuation{AfterID: *o.afterID}).fetchParams(q.pageSize)
		resumed := *placeholder
		resumed.AfterID = *o.afterID
		retry = &resumed
	}

	q.logger.Debug("fetching queue page",
		zap.Strings("key", src.Key()),
		zap.String("op", string(op)),
		zap.Int64p("afterId", params.AfterID),
		zap.Int("pageSize", q.pageSize))

	page, err := src.FetchPage(ctx, params)
	if err != nil {
		q.store.UpdateIf(func(s State) (State, bool) {
			if !s.Continuation.sameFetch(placeholder) {
				return s, false
			}
			next := s
			next.Loading = false
			next.Continuation = retry
			q.history.Amend(next)
			return next, true
		})
		afterID := int64(-1)
		if o.afterID != nil {
			afterID = *o.afterID
		}
		return &FetchError{Op: op, AfterID: afterID, Err: err}
	}

	_, applied := q.store.UpdateIf(func(s State) (State, bool) {
		if !s.Continuation.sameFetch(placeholder) {
			return s, false
		}
		next := Initial()
		if len(page.Entries) > 0 {
			next = State{
				Entries:      slices.Clone(page.Entries),
				Cursor:       startIndex(page.Entries, o.startAt),
				Continuation: q.continueAfter(placeholder, page),
			}
		}
		q.history.Amend(next)
		return next, true
	})
	if !applied {
		q.logger.Debug("dropping superseded queue page", zap.Strings("key", src.Key()))
		return nil
	}
	q.logger.Debug("queue page loaded",
		zap.Strings("key", src.Key()),
		zap.Int("count", len(page.Entries)),
		zap.Bool("more", page.Next != nil))
	return nil
}

// LoadNextPage fetches the page following the loaded tail of an infinite
// queue and appends it, keeping the cursor and the loaded entries.
//
// It is a no-op returning nil when the queue is finite or exhausted, or when
// a fetch for the same queue is already in flight. Continuation fetches
// always bypass result caches. On failure the continuation is left as it was
// and a *FetchError is returned so the caller can retry.
func (q *Queue) LoadNextPage(ctx context.Context) error {
	cont := q.store.Continuation()
	if cont == nil || !q.claim(cont.session) {
		return nil
	}
	defer q.release(cont.session)
	return q.fetchNext(ctx, cont)
}

// Fetching reports whether a page fetch is in flight for the current queue.
func (q *Queue) Fetching() bool {
	cont := q.store.Continuation()
	if cont == nil {
		return false
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.fetching[cont.session]
}

// prefetch starts LoadNextPage in the background. Failures are logged and
// delivered to subscribers as ErrorEvent.
func (q *Queue) prefetch(cont *Continuation) {
	if cont == nil || !q.claim(cont.session) {
		return
	}
	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		defer q.release(cont.session)
		if err := q.fetchNext(q.ctx, cont); err != nil {
			q.logger.Warn("queue prefetch failed", zap.Error(err))
			q.store.notifyError(ErrorEvent{Operation: "prefetch", Err: err})
		}
	}()
}

func (q *Queue) fetchNext(ctx context.Context, cont *Continuation) error {
	params := cont.fetchParams(q.pageSize)
	q.logger.Debug("fetching next queue page",
		zap.Strings("key", cont.Source.Key()),
		zap.Int64("afterId", cont.AfterID),
		zap.Int("pageSize", q.pageSize))

	page, err := cont.Source.FetchPage(ctx, params)
	if err != nil {
		// Nothing to roll back: the continuation is only replaced on success.
		return &FetchError{Op: FetchNextPage, AfterID: cont.AfterID, Err: err}
	}

	_, applied := q.store.UpdateIf(func(s State) (State, bool) {
		if !s.Continuation.sameFetch(cont) {
			return s, false
		}
		next := appendPage(s, page.Entries, q.continueAfter(cont, page))
		next.Loading = false
		q.history.Amend(next)
		return next, true
	})
	if !applied {
		q.logger.Debug("dropping superseded queue page",
			zap.Strings("key", cont.Source.Key()),
			zap.Int64("afterId", cont.AfterID))
		return nil
	}
	q.logger.Debug("queue page appended",
		zap.Strings("key", cont.Source.Key()),
		zap.Int("count", len(page.Entries)),
		zap.Bool("more", page.Next != nil))
	return nil
}

// continueAfter computes the continuation following page: none when the
// source reports no further page or the page is short.
func (q *Queue) continueAfter(cont *Continuation, page Page) *Continuation {
	last := page.Last()
	if last == nil || page.Next == nil || len(page.Entries) < q.pageSize {
		return nil
	}
	return &Continuation{Source: cont.Source, AfterID: last.ID, session: cont.session}
}

func startIndex(entries []Entry, startAt *int64) int {
	if startAt == nil {
		return 0
	}
	return max(0, slices.IndexFunc(entries, func(e Entry) bool { return e.ID == *startAt }))
}

func (q *Queue) newSession() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.sessions++
	q.fetching[q.sessions] = true
	return q.sessions
}

// claim marks a fetch in flight for session. Returns false if one already is.
func (q *Queue) claim(session uint64) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.fetching[session] {
		return false
	}
	q.fetching[session] = true
	return true
}

func (q *Queue) release(session uint64) {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.fetching, session)
}
