package app

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/meeloq/internal/errmsg"
	"github.com/llehouerou/meeloq/internal/reorder"
)

// WatchQueueEvents returns a command that waits for the next queue event.
// It listens on all subscription channels and converts events to tea.Msg.
func (m Model) WatchQueueEvents() tea.Cmd {
	if m.sub == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case c := <-m.sub.Changed:
			return QueueChangedMsg(c)
		case e := <-m.sub.Errors:
			return QueueErrorMsg(e)
		case <-m.sub.Done:
			return QueueClosedMsg{}
		}
	}
}

// fetchCmd runs a fetch off the update loop and reports its outcome.
func (m Model) fetchCmd(op errmsg.Op, fetch func(ctx context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return FetchDoneMsg{Op: op, Err: fetch(ctx)}
	}
}

// watchReorder waits for the persistence result of a commit. A channel
// closed without a result means nothing was persisted.
func watchReorder(results <-chan reorder.Result) tea.Cmd {
	return waitForChannel(results, func(r reorder.Result, ok bool) tea.Msg {
		if !ok {
			return nil
		}
		return ReorderPersistedMsg(r)
	})
}

// waitForChannel creates a command that waits for a value from a channel and converts it to a message.
// onResult receives the value and a boolean indicating if the channel is still open (false means channel closed).
func waitForChannel[T any](ch <-chan T, onResult func(T, bool) tea.Msg) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		result, ok := <-ch
		return onResult(result, ok)
	}
}
