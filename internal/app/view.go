package app

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/llehouerou/meeloq/internal/ui/render"
)

var (
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	keyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

// View renders the queue panel with a status line and a help line.
func (m Model) View() string {
	if m.Width == 0 || m.Height == 0 {
		return ""
	}
	status := statusStyle.Render(render.TruncateAndPad(m.status, m.Width))
	return m.panel.View() + "\n" + status + "\n" + m.renderHelp()
}

// renderHelp lists the bindings of the active context, or a hint to show
// them.
func (m Model) renderHelp() string {
	if !m.showHelp {
		return helpStyle.Render(render.Truncate("? help  q quit", m.Width))
	}

	var parts []string
	for _, b := range m.keys.Help(m.panel.Context()) {
		parts = append(parts, keyStyle.Render(b.Keys[0])+" "+helpStyle.Render(b.Description))
	}
	line := strings.Join(parts, "  ")
	if lipgloss.Width(line) > m.Width {
		// Fall back to the plain text, which can be cut safely
		var plain []string
		for _, b := range m.keys.Help(m.panel.Context()) {
			plain = append(plain, b.Keys[0]+" "+b.Description)
		}
		return helpStyle.Render(render.Truncate(strings.Join(plain, "  "), m.Width))
	}
	return line
}
