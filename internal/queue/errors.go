package queue

import (
	"errors"
	"fmt"
)

var (
	// ErrFetch matches every page fetch failure (see FetchError).
	ErrFetch = errors.New("queue page fetch failed")
	// ErrOrderMismatch is returned by ApplyOrder when the queue changed since
	// the order was computed.
	ErrOrderMismatch = errors.New("queue changed since the order was staged")
	// ErrInvalidOrder is returned by ApplyOrder for a malformed permutation.
	ErrInvalidOrder = errors.New("invalid queue order")
)

// FetchOp names the fetch that failed.
type FetchOp string

const (
	FetchFirstPage FetchOp = "first page"
	FetchNextPage  FetchOp = "next page"
)

// FetchError is returned when fetching a page of an infinite queue fails.
// The queue is left usable: Loading is false and the continuation is the one
// that was current before the attempt, so the fetch can be retried.
type FetchError struct {
	Op      FetchOp
	AfterID int64 // -1 for a fetch from the start
	Err     error
}

func (e *FetchError) Error() string {
	if e.AfterID < 0 {
		return fmt.Sprintf("fetch %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("fetch %s after %d: %v", e.Op, e.AfterID, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrFetch) true for any FetchError.
func (e *FetchError) Is(target error) bool {
	return target == ErrFetch
}
