// Package errmsg provides consistent error formatting for user-facing messages.
package errmsg

import "fmt"

// Op represents an operation that can fail.
type Op string

// Operation constants - grouped by domain.
const (
	// Queue operations
	OpQueueFetch    Op = "load queue"
	OpQueueNextPage Op = "load more entries"
	OpQueuePrefetch Op = "prefetch entries"

	// Reorder operations
	OpReorderCommit  Op = "reorder queue"
	OpReorderPersist Op = "save playlist order"

	// Playlist operations
	OpPlaylistLoad Op = "load playlist"

	// Initialization
	OpConfigLoad Op = "load configuration"
	OpDBOpen     Op = "open database"
	OpInitialize Op = "initialize application"
)

// Format creates a user-friendly error message.
func Format(op Op, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Failed to %s: %v", op, err)
}

// FormatWith creates an error message with additional context.
func FormatWith(op Op, context string, err error) string {
	if err == nil {
		return ""
	}
	if context == "" {
		return Format(op, err)
	}
	return fmt.Sprintf("Failed to %s '%s': %v", op, context, err)
}
