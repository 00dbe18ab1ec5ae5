package queue

import "testing"

func TestNewHistory(t *testing.T) {
	h := NewHistory(10)

	if h.CanUndo() {
		t.Error("new history should not be able to undo")
	}
	if h.CanRedo() {
		t.Error("new history should not be able to redo")
	}
}

func TestHistory_Push(t *testing.T) {
	h := NewHistory(10)
	h.Push(playMany(entries(1, 2), 0))

	// After first push, still can't undo (need at least 2 states)
	if h.CanUndo() {
		t.Error("after first push, should not be able to undo")
	}

	h.Push(playOne(entry(3)))

	if !h.CanUndo() {
		t.Error("after second push, should be able to undo")
	}
}

func TestHistory_Undo(t *testing.T) {
	h := NewHistory(10)
	h.Push(playOne(entry(1)))
	h.Push(playOne(entry(2)))

	restored, ok := h.Undo()

	if !ok {
		t.Fatal("Undo should succeed")
	}
	if len(restored.Entries) != 1 || restored.Entries[0].ID != 1 {
		t.Errorf("restored = %v, want [1]", stateIDs(restored))
	}
}

func TestHistory_Undo_AtStart(t *testing.T) {
	h := NewHistory(10)
	h.Push(playOne(entry(1)))

	if _, ok := h.Undo(); ok {
		t.Error("Undo at start should return false")
	}
}

func TestHistory_Redo(t *testing.T) {
	h := NewHistory(10)
	h.Push(playOne(entry(1)))
	h.Push(playOne(entry(2)))
	h.Undo()

	restored, ok := h.Redo()

	if !ok {
		t.Fatal("Redo should succeed")
	}
	if len(restored.Entries) != 1 || restored.Entries[0].ID != 2 {
		t.Errorf("restored = %v, want [2]", stateIDs(restored))
	}
}

func TestHistory_Redo_AtEnd(t *testing.T) {
	h := NewHistory(10)
	h.Push(playOne(entry(1)))

	if _, ok := h.Redo(); ok {
		t.Error("Redo at end should return false")
	}
}

func TestHistory_PushClearsRedo(t *testing.T) {
	h := NewHistory(10)
	h.Push(playOne(entry(1)))
	h.Push(playOne(entry(2)))
	h.Push(playOne(entry(3)))
	h.Undo() // back to 2
	h.Undo() // back to 1

	h.Push(playOne(entry(4)))

	if h.CanRedo() {
		t.Error("push after undo should clear redo states")
	}
	restored, _ := h.Undo()
	if restored.Entries[0].ID != 1 {
		t.Errorf("undo after push = %v, want [1]", stateIDs(restored))
	}
}

func TestHistory_Amend(t *testing.T) {
	h := NewHistory(10)
	h.Push(playMany(entries(1, 2, 3), 0))
	h.Push(playMany(entries(4, 5, 6), 0))

	amended := playMany(entries(4, 5, 6), 2)
	h.Amend(amended)

	if h.CanRedo() {
		t.Error("Amend should not create a redo step")
	}
	h.Undo()
	restored, _ := h.Redo()
	if restored.Cursor != 2 {
		t.Errorf("redo cursor = %d, want 2 (amended)", restored.Cursor)
	}
}

func TestHistory_Amend_Empty(t *testing.T) {
	h := NewHistory(10)

	h.Amend(playOne(entry(1)))

	if h.CanUndo() || h.CanRedo() {
		t.Error("Amend on empty history should only record a first state")
	}
}

func TestHistory_MaxSize(t *testing.T) {
	h := NewHistory(3)
	for id := int64(1); id <= 5; id++ {
		h.Push(playOne(entry(id)))
	}

	var undos int
	for h.CanUndo() {
		h.Undo()
		undos++
	}

	if undos != 2 {
		t.Errorf("undo steps = %d, want 2", undos)
	}
	restored, _ := h.Redo()
	if restored.Entries[0].ID != 4 {
		t.Errorf("redo from oldest kept state = %v, want [4]", stateIDs(restored))
	}
}
