// Package keymap defines key bindings and resolves keys to actions.
package keymap

// Action represents a user-triggerable action.
type Action string

const (
	// Global actions
	ActionQuit Action = "quit"
	ActionHelp Action = "help"

	// Queue sources
	ActionPlayAll      Action = "play_all"
	ActionPlayShuffled Action = "play_shuffled"
	ActionPlayPlaylist Action = "play_playlist"
	ActionLoadMore     Action = "load_more"

	// Playback
	ActionNext     Action = "next"
	ActionPrevious Action = "previous"

	// Queue edits
	ActionShuffle Action = "shuffle"
	ActionEmpty   Action = "empty"
	ActionUndo    Action = "undo"
	ActionRedo    Action = "redo"
	ActionReorder Action = "reorder"

	// Queue panel
	ActionMoveUp       Action = "move_up"
	ActionMoveDown     Action = "move_down"
	ActionJumpStart    Action = "jump_start"
	ActionJumpEnd      Action = "jump_end"
	ActionPlaySelected Action = "play_selected"
	ActionRemove       Action = "remove"
	ActionInsertNext   Action = "insert_next"
	ActionInsertLast   Action = "insert_last"

	// Reorder mode
	ActionStageUp   Action = "stage_up"
	ActionStageDown Action = "stage_down"
	ActionCommit    Action = "commit"
	ActionCancel    Action = "cancel"
)

// Binding contexts.
const (
	ContextGlobal  = "global"
	ContextQueue   = "queue"
	ContextReorder = "reorder"
)

// Binding associates keys with an action in a context.
type Binding struct {
	Action      Action
	Keys        []string
	Description string
	Context     string
}

// Bindings contains every key binding of the application.
var Bindings = []Binding{
	// Global
	{ActionQuit, []string{"q", "ctrl+c"}, "Quit", ContextGlobal},
	{ActionHelp, []string{"?"}, "Toggle help", ContextGlobal},
	{ActionPlayAll, []string{"a"}, "Play all songs", ContextGlobal},
	{ActionPlayShuffled, []string{"S"}, "Play all songs shuffled", ContextGlobal},
	{ActionPlayPlaylist, []string{"P"}, "Play configured playlist", ContextGlobal},
	{ActionLoadMore, []string{"L"}, "Load next page", ContextGlobal},
	{ActionNext, []string{"n", "pgdown"}, "Next entry", ContextGlobal},
	{ActionPrevious, []string{"p", "pgup"}, "Previous entry", ContextGlobal},
	{ActionShuffle, []string{"s"}, "Shuffle queue", ContextGlobal},
	{ActionEmpty, []string{"x"}, "Empty queue", ContextGlobal},
	{ActionUndo, []string{"ctrl+z"}, "Undo", ContextGlobal},
	{ActionRedo, []string{"ctrl+y"}, "Redo", ContextGlobal},
	{ActionReorder, []string{"m"}, "Reorder mode", ContextGlobal},

	// Queue panel
	{ActionMoveUp, []string{"k", "up"}, "Move up", ContextQueue},
	{ActionMoveDown, []string{"j", "down"}, "Move down", ContextQueue},
	{ActionJumpStart, []string{"g", "home"}, "First entry", ContextQueue},
	{ActionJumpEnd, []string{"G", "end"}, "Last entry", ContextQueue},
	{ActionPlaySelected, []string{"enter"}, "Play selected", ContextQueue},
	{ActionRemove, []string{"d", "delete"}, "Remove selected", ContextQueue},
	{ActionInsertNext, []string{"i"}, "Play selected next", ContextQueue},
	{ActionInsertLast, []string{"I"}, "Append selected", ContextQueue},

	// Reorder mode
	{ActionMoveUp, []string{"k", "up"}, "Move up", ContextReorder},
	{ActionMoveDown, []string{"j", "down"}, "Move down", ContextReorder},
	{ActionStageUp, []string{"K", "shift+up"}, "Move entry up", ContextReorder},
	{ActionStageDown, []string{"J", "shift+down"}, "Move entry down", ContextReorder},
	{ActionCommit, []string{"enter"}, "Apply order", ContextReorder},
	{ActionCancel, []string{"esc"}, "Discard order", ContextReorder},
}
