package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/llehouerou/meeloq/internal/errmsg"
	"github.com/llehouerou/meeloq/internal/keymap"
	"github.com/llehouerou/meeloq/internal/queue"
	"github.com/llehouerou/meeloq/internal/reorder"
	"github.com/llehouerou/meeloq/internal/ui/queuepanel"
)

// Height of the status and help lines below the panel.
const footerHeight = 2

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.panel.SetSize(msg.Width, max(msg.Height-footerHeight, 0))
		return m, nil

	case tea.KeyMsg:
		return m.handleAction(m.keys.Resolve(m.panel.Context(), msg.String()))

	case QueueChangedMsg:
		return m.handleQueueChanged(queue.Change(msg))

	case QueueErrorMsg:
		m.status = errmsg.Format(errmsg.OpQueuePrefetch, msg.Err)
		return m, m.WatchQueueEvents()

	case QueueClosedMsg:
		return m, nil

	case FetchDoneMsg:
		if msg.Err != nil {
			m.status = errmsg.Format(msg.Op, msg.Err)
		}
		return m, nil

	case ReorderPersistedMsg:
		return m.handleReorderPersisted(reorder.Result(msg))

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.panel, cmd = m.panel.Update(msg)
		return m, cmd

	case queuepanel.JumpToEntryMsg:
		m.Queue.JumpTo(msg.Index)
		return m, nil

	case queuepanel.RemoveEntryMsg:
		if msg.Index < m.Queue.State().Len() {
			m.Queue.Remove(msg.Index)
			m.playingPlaylist = false
		}
		return m, nil

	case queuepanel.InsertEntryMsg:
		return m.handleInsert(msg), nil

	case queuepanel.CommitReorderMsg:
		return m.commitReorder()

	case queuepanel.CancelReorderMsg:
		if m.staging != nil {
			m.staging.Cancel()
			m.endReorder()
		}
		return m, nil
	}

	return m, nil
}

func (m Model) handleQueueChanged(c queue.Change) (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{m.WatchQueueEvents(), m.panel.SetState(c.Current)}
	if c.Current.Cursor != c.Previous.Cursor {
		m.panel.SyncCursor()
	}
	if m.announcer != nil {
		m.announcer.Update(c.Current.Current())
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handleAction(a keymap.Action) (tea.Model, tea.Cmd) {
	switch a {
	case keymap.ActionQuit:
		if m.staging != nil {
			m.staging.Cancel()
		}
		m.Queue.Close()
		m.Queue.Store().Close()
		return m, tea.Quit

	case keymap.ActionHelp:
		m.showHelp = !m.showHelp

	case keymap.ActionPlayAll:
		return m.play(m.catalog.Songs(nil), false)

	case keymap.ActionPlayShuffled:
		seed := m.seed()
		return m.play(m.catalog.Songs(&seed), false)

	case keymap.ActionPlayPlaylist:
		if m.playlist == nil {
			m.status = "No playlist configured"
			return m, nil
		}
		return m.play(m.playlist.Source, true)

	case keymap.ActionLoadMore:
		if !m.Queue.State().Infinite() {
			m.status = "No more entries to load"
			return m, nil
		}
		return m, m.fetchCmd(errmsg.OpQueueNextPage, m.Queue.LoadNextPage)

	case keymap.ActionNext:
		m.Queue.Skip()

	case keymap.ActionPrevious:
		m.Queue.Previous()

	case keymap.ActionShuffle:
		m.Queue.Shuffle()
		m.playingPlaylist = false

	case keymap.ActionEmpty:
		m.Queue.Empty()
		m.playingPlaylist = false

	case keymap.ActionUndo:
		if !m.Queue.Undo() {
			m.status = "Nothing to undo"
			return m, nil
		}
		// The restored queue may come from any earlier source.
		m.playingPlaylist = false

	case keymap.ActionRedo:
		if !m.Queue.Redo() {
			m.status = "Nothing to redo"
			return m, nil
		}
		m.playingPlaylist = false

	case keymap.ActionReorder:
		return m.beginReorder(), nil

	default:
		var cmd tea.Cmd
		m.panel, cmd = m.panel.HandleAction(a)
		return m, cmd
	}
	return m, nil
}

// play replaces the queue with the pages of src.
func (m Model) play(src queue.Source, playlist bool) (tea.Model, tea.Cmd) {
	m.status = ""
	m.playingPlaylist = playlist
	return m, m.fetchCmd(errmsg.OpQueueFetch, func(ctx context.Context) error {
		return m.Queue.PlayFromRemoteQuery(ctx, src)
	})
}

func (m Model) handleInsert(msg queuepanel.InsertEntryMsg) Model {
	entries := m.Queue.State().Entries
	if msg.Index >= len(entries) {
		return m
	}
	e := entries[msg.Index]
	if msg.Next {
		m.Queue.InsertNext(e)
	} else {
		m.Queue.InsertAfter(e)
	}
	m.playingPlaylist = false
	return m
}

func (m Model) beginReorder() Model {
	if m.staging != nil {
		return m
	}
	m.status = ""
	s := m.Queue.State()
	if s.IsEmpty() {
		m.status = "Queue is empty"
		return m
	}

	opts := []reorder.Option{
		reorder.WithLogger(m.logger),
		reorder.WithRollback(m.rollback),
	}
	switch {
	case m.playingPlaylist && s.Infinite():
		// A partial order cannot be saved to the playlist
		m.status = "Reordering the queue only: load all entries to save the playlist order"
	case m.playingPlaylist:
		opts = append(opts, reorder.WithPlaylist(m.playlist.ID, m.playlist.Persister))
		m.saving = true
	}

	m.staging = reorder.Begin(m.Queue, opts...)
	m.panel.BeginReorder(m.staging)
	return m
}

func (m Model) commitReorder() (tea.Model, tea.Cmd) {
	if m.staging == nil {
		return m, nil
	}
	changed := m.staging.Changed()
	results, err := m.staging.Commit(m.ctx)
	if err != nil {
		if errors.Is(err, reorder.ErrStale) {
			m.staging.Cancel()
			m.endReorder()
		}
		m.status = errmsg.Format(errmsg.OpReorderCommit, err)
		return m, nil
	}
	if changed && !m.saving {
		// The queue no longer follows the playlist order.
		m.playingPlaylist = false
	}
	m.endReorder()
	return m, watchReorder(results)
}

// endReorder leaves staging mode and resyncs the panel with the queue.
func (m *Model) endReorder() {
	m.staging = nil
	m.saving = false
	m.panel.EndReorder()
	m.panel.SetState(m.Queue.State())
	m.panel.SyncCursor()
}

func (m Model) handleReorderPersisted(r reorder.Result) (tea.Model, tea.Cmd) {
	if r.Err == nil {
		m.status = fmt.Sprintf("Playlist order saved (%d entries)", len(r.Order))
		return m, nil
	}
	m.logger.Warn("playlist order not saved", zap.Int64("playlist", r.PlaylistID), zap.Error(r.Err))
	m.status = errmsg.Format(errmsg.OpReorderPersist, r.Err)
	if r.RolledBack {
		m.status += " (queue order restored)"
	}
	return m, nil
}
