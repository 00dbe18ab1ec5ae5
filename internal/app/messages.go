package app

import (
	"github.com/llehouerou/meeloq/internal/errmsg"
	"github.com/llehouerou/meeloq/internal/queue"
	"github.com/llehouerou/meeloq/internal/reorder"
)

// QueueChangedMsg carries a queue store change.
type QueueChangedMsg queue.Change

// QueueErrorMsg carries a failure of a background queue operation.
type QueueErrorMsg queue.ErrorEvent

// QueueClosedMsg is sent when the queue store is closed.
type QueueClosedMsg struct{}

// FetchDoneMsg is sent when a foreground fetch (first page or next page)
// completes.
type FetchDoneMsg struct {
	Op  errmsg.Op
	Err error
}

// ReorderPersistedMsg is sent when a committed order has been persisted to
// the playlist, or failed to be.
type ReorderPersistedMsg reorder.Result
