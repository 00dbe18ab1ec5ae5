// Package queuepanel renders the playback queue and stages reorders.
package queuepanel

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/meeloq/internal/keymap"
	"github.com/llehouerou/meeloq/internal/queue"
	"github.com/llehouerou/meeloq/internal/reorder"
)

// Panel overhead: border + header + separator.
const (
	borderSize    = 2
	panelOverhead = borderSize + 2
)

// JumpToEntryMsg is sent when the user plays the selected entry.
type JumpToEntryMsg struct {
	Index int
}

// RemoveEntryMsg is sent when the user removes the selected entry.
type RemoveEntryMsg struct {
	Index int
}

// InsertEntryMsg is sent when the user queues a copy of the selected entry,
// either right after the playing entry or at the end.
type InsertEntryMsg struct {
	Index int
	Next  bool
}

// CommitReorderMsg is sent when the user applies the staged order.
type CommitReorderMsg struct{}

// CancelReorderMsg is sent when the user discards the staged order.
type CancelReorderMsg struct{}

// Model represents the queue panel state.
type Model struct {
	state   queue.State
	staging *reorder.Session
	cursor  int
	offset  int
	width   int
	height  int
	focused bool
	spinner spinner.Model
}

// New creates a new queue panel model.
func New() Model {
	return Model{
		state:   queue.Initial(),
		spinner: spinner.New(spinner.WithSpinner(spinner.MiniDot), spinner.WithStyle(spinnerStyle)),
	}
}

// SetFocused sets whether the panel is focused.
func (m *Model) SetFocused(focused bool) {
	m.focused = focused
}

// IsFocused returns whether the panel is focused.
func (m Model) IsFocused() bool {
	return m.focused
}

// SetSize sets the panel dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.ensureCursorVisible()
}

// SetState replaces the displayed queue state. It returns a command that
// starts the loading spinner when the state begins loading.
func (m *Model) SetState(s queue.State) tea.Cmd {
	wasLoading := m.state.Loading
	m.state = s
	if m.staging == nil {
		m.clampCursor()
	}
	if s.Loading && !wasLoading {
		return m.spinner.Tick
	}
	return nil
}

// State returns the displayed queue state.
func (m Model) State() queue.State {
	return m.state
}

// BeginReorder switches the panel to staging mode on s.
func (m *Model) BeginReorder(s *reorder.Session) {
	m.staging = s
	m.clampCursor()
}

// EndReorder leaves staging mode.
func (m *Model) EndReorder() {
	m.staging = nil
	m.clampCursor()
}

// Reordering reports whether a reorder is being staged.
func (m Model) Reordering() bool {
	return m.staging != nil
}

// Context returns the key binding context of the panel.
func (m Model) Context() string {
	if m.staging != nil {
		return keymap.ContextReorder
	}
	return keymap.ContextQueue
}

// Selected returns the index under the cursor, or -1 for an empty list.
func (m Model) Selected() int {
	if m.len() == 0 {
		return -1
	}
	return m.cursor
}

// SyncCursor moves the cursor to the playing entry.
func (m *Model) SyncCursor() {
	if m.staging == nil && m.state.Cursor >= 0 {
		m.cursor = m.state.Cursor
		m.ensureCursorVisible()
	}
}

// Update advances the loading spinner.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if _, ok := msg.(spinner.TickMsg); !ok || !m.state.Loading {
		return m, nil
	}
	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	return m, cmd
}

// HandleAction applies a panel action. Queue changes are requested through
// the returned command; the panel never mutates the queue itself.
func (m Model) HandleAction(a keymap.Action) (Model, tea.Cmd) {
	if !m.focused {
		return m, nil
	}

	switch a {
	case keymap.ActionMoveDown:
		m.moveCursor(1)
	case keymap.ActionMoveUp:
		m.moveCursor(-1)
	case keymap.ActionJumpStart:
		m.cursor = 0
		m.offset = 0
	case keymap.ActionJumpEnd:
		if n := m.len(); n > 0 {
			m.cursor = n - 1
			m.ensureCursorVisible()
		}
	case keymap.ActionPlaySelected:
		return m, m.emitSelected(func(i int) tea.Msg { return JumpToEntryMsg{Index: i} })
	case keymap.ActionRemove:
		return m, m.emitSelected(func(i int) tea.Msg { return RemoveEntryMsg{Index: i} })
	case keymap.ActionInsertNext:
		return m, m.emitSelected(func(i int) tea.Msg { return InsertEntryMsg{Index: i, Next: true} })
	case keymap.ActionInsertLast:
		return m, m.emitSelected(func(i int) tea.Msg { return InsertEntryMsg{Index: i} })
	case keymap.ActionStageDown:
		m.stageMove(1)
	case keymap.ActionStageUp:
		m.stageMove(-1)
	case keymap.ActionCommit:
		if m.staging != nil {
			return m, func() tea.Msg { return CommitReorderMsg{} }
		}
	case keymap.ActionCancel:
		if m.staging != nil {
			return m, func() tea.Msg { return CancelReorderMsg{} }
		}
	}
	return m, nil
}

func (m Model) emitSelected(msg func(int) tea.Msg) tea.Cmd {
	idx := m.Selected()
	if idx < 0 || m.staging != nil {
		return nil
	}
	return func() tea.Msg { return msg(idx) }
}

// stageMove moves the entry under the cursor by delta in the staging buffer
// and keeps the cursor on it.
func (m *Model) stageMove(delta int) {
	if m.staging == nil {
		return
	}
	to := m.cursor + delta
	if to < 0 || to >= m.staging.Len() {
		return
	}
	m.staging.Move(m.cursor, to)
	m.cursor = to
	m.ensureCursorVisible()
}

// entries returns the rows to display: the staged order in reorder mode,
// the queue otherwise.
func (m Model) entries() []queue.Entry {
	if m.staging != nil {
		return m.staging.Entries()
	}
	return m.state.Entries
}

func (m Model) len() int {
	if m.staging != nil {
		return m.staging.Len()
	}
	return len(m.state.Entries)
}

func (m Model) listHeight() int {
	return m.height - panelOverhead
}

// moveCursor moves the cursor by delta positions and ensures visibility.
func (m *Model) moveCursor(delta int) {
	if m.len() == 0 {
		return
	}
	m.cursor = min(max(m.cursor+delta, 0), m.len()-1)
	m.ensureCursorVisible()
}

// clampCursor keeps the cursor inside the list after it shrank.
func (m *Model) clampCursor() {
	m.cursor = min(m.cursor, max(m.len()-1, 0))
	m.ensureCursorVisible()
}

// ensureCursorVisible adjusts the scroll offset to keep the cursor in view.
func (m *Model) ensureCursorVisible() {
	listHeight := m.listHeight()
	if listHeight <= 0 {
		return
	}
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+listHeight {
		m.offset = m.cursor - listHeight + 1
	}
	m.offset = min(m.offset, max(m.len()-listHeight, 0))
}
