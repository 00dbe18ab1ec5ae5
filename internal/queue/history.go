package queue

// History maintains queue state snapshots for undo/redo.
//
// States are immutable values, so snapshots share their Entries slices with
// the store instead of copying them.
type History struct {
	states  []State
	current int // index of current state (-1 = before any state)
	maxSize int
}

// NewHistory creates a new history with the given maximum size.
func NewHistory(maxSize int) *History {
	return &History{
		states:  make([]State, 0, maxSize),
		current: -1,
		maxSize: max(maxSize, 1),
	}
}

// Push saves a snapshot. Clears any redo states and trims if over limit.
func (h *History) Push(s State) {
	if h.current < len(h.states)-1 {
		h.states = h.states[:h.current+1]
	}

	h.states = append(h.states, s)
	h.current = len(h.states) - 1

	if len(h.states) > h.maxSize {
		excess := len(h.states) - h.maxSize
		h.states = h.states[excess:]
		h.current -= excess
	}
}

// Amend replaces the current snapshot without creating an undo step.
// Used for navigation and page appends, which are not undoable on their own.
func (h *History) Amend(s State) {
	if h.current < 0 {
		h.Push(s)
		return
	}
	h.states[h.current] = s
}

// Undo returns the previous state.
// Returns false if nothing to undo.
func (h *History) Undo() (State, bool) {
	if !h.CanUndo() {
		return State{}, false
	}
	h.current--
	return h.states[h.current], true
}

// Redo returns the next state.
// Returns false if nothing to redo.
func (h *History) Redo() (State, bool) {
	if !h.CanRedo() {
		return State{}, false
	}
	h.current++
	return h.states[h.current], true
}

// CanUndo returns true if there is a previous state to undo to.
func (h *History) CanUndo() bool {
	return h.current > 0
}

// CanRedo returns true if there is a next state to redo to.
func (h *History) CanRedo() bool {
	return h.current < len(h.states)-1
}
