package queuepanel

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/llehouerou/meeloq/internal/queue"
	"github.com/llehouerou/meeloq/internal/ui/render"
)

const durationWidth = 8

// View renders the queue panel.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	innerWidth := m.width - borderSize
	content := m.renderHeader(innerWidth) + "\n" +
		render.Separator(innerWidth) + "\n" +
		m.renderEntryList(innerWidth, m.listHeight())

	return frameStyle(m.focused, m.staging != nil).
		Width(innerWidth).
		Render(content)
}

// renderHeader renders the title with entry counts on the left and the
// pagination status on the right.
func (m Model) renderHeader(innerWidth int) string {
	if m.staging != nil {
		left := fmt.Sprintf("Reorder (%s entries)", humanize.Comma(int64(m.staging.Len())))
		right := ""
		if m.staging.Changed() {
			right = "modified "
		}
		return reorderHeaderStyle.Render(render.TruncateAndPad(left, innerWidth-lipgloss.Width(right))) +
			infoStyle.Render(right)
	}

	left := fmt.Sprintf("Queue (%s/%s)",
		humanize.Comma(int64(m.state.Cursor+1)),
		humanize.Comma(int64(len(m.state.Entries))))

	right := m.renderStatus()
	leftWidth := max(innerWidth-lipgloss.Width(right), 0)
	return headerStyle.Render(render.TruncateAndPad(left, leftWidth)) + right
}

// renderStatus shows the loading spinner while a page is being fetched and
// a marker when more pages follow.
func (m Model) renderStatus() string {
	switch {
	case m.state.Loading:
		return m.spinner.View() + infoStyle.Render(" loading ")
	case m.state.Infinite():
		return infoStyle.Render("more ")
	default:
		return ""
	}
}

// renderEntryList renders the visible rows.
func (m Model) renderEntryList(innerWidth, listHeight int) string {
	entries := m.entries()
	playingIdx := m.playingIndex(entries)

	lines := make([]string, 0, listHeight)
	for i := range listHeight {
		idx := i + m.offset
		if idx >= len(entries) {
			lines = append(lines, render.EmptyLine(innerWidth))
			continue
		}
		lines = append(lines, m.renderEntryLine(entries[idx], idx, playingIdx, innerWidth))
	}
	return strings.Join(lines, "\n")
}

// playingIndex returns the row of the playing entry. While staging, the
// playing entry is found by id since rows have moved.
func (m Model) playingIndex(entries []queue.Entry) int {
	if m.staging == nil {
		return m.state.Cursor
	}
	current := m.state.Current()
	if current == nil {
		return -1
	}
	for i, e := range entries {
		if e.ID == current.ID {
			return i
		}
	}
	return -1
}

// renderEntryLine renders one row: marker, title, artists and duration.
func (m Model) renderEntryLine(e queue.Entry, idx, playingIdx, width int) string {
	prefix := "  "
	switch {
	case m.staging != nil && idx == m.cursor:
		prefix = movingSymbol + " "
	case idx == playingIdx:
		prefix = playingSymbol + " "
	}

	contentWidth := max(width-2-durationWidth, 0)
	titleWidth := contentWidth / 2
	artistWidth := contentWidth - titleWidth

	line := prefix +
		render.TruncateAndPad(e.Track.Name, titleWidth) +
		render.TruncateAndPad(render.Artists(e), artistWidth) +
		fmt.Sprintf("%*s", durationWidth, render.Duration(e.Track.Duration))

	return m.rowStyle(idx, playingIdx).Render(line)
}

// rowStyle returns the style of a row based on its state.
func (m Model) rowStyle(idx, playingIdx int) lipgloss.Style {
	isCursor := idx == m.cursor && m.focused
	isPlaying := idx == playingIdx
	isPlayed := m.staging == nil && idx < playingIdx

	switch {
	case isCursor && isPlaying:
		return cursorStyle.Inherit(playingStyle)
	case isCursor && isPlayed:
		return cursorStyle.Inherit(dimmedStyle)
	case isCursor:
		return cursorStyle
	case isPlaying:
		return playingStyle
	case isPlayed:
		return dimmedStyle
	default:
		return trackStyle
	}
}
