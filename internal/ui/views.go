package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/linuxmatters/ladspa-source/internal/module"
)

var (
	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#888888")).
			Padding(0, 1).
			Width(72)

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Italic(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A40000"))
)

// renderMonitorView renders the main monitor view
func renderMonitorView(m Model) string {
	var b strings.Builder

	b.WriteString(renderHeader(m))
	b.WriteString("\n\n")

	b.WriteString(renderModules(m.Snapshot.Modules))
	b.WriteString("\n")

	b.WriteString(renderNodes(m.Snapshot))
	b.WriteString("\n")

	b.WriteString(renderEvents(m.Events))
	b.WriteString("\n")

	b.WriteString(renderFooter(m))

	return b.String()
}

// renderHeader renders the application header
func renderHeader(m Model) string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#3465A4")).
		Render("LADSPA Source 🎛 - Module Lifecycle Monitor")

	subtitle := mutedStyle.Render(m.Argument)

	return title + "\n" + subtitle
}

// stateIcon returns the coloured marker for a lifecycle state
func stateIcon(s module.State) string {
	switch s {
	case module.StateLoaded:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("#00AA00")).Render("✓")
	case module.StateUnloadScheduled:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("#FFA500")).Render("⚙")
	case module.StateUnloaded:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("#A40000")).Render("✗")
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")).Render("○")
	}
}

// renderModules renders every module the monitor loaded with its state
func renderModules(modules []ModuleView) string {
	if len(modules) == 0 {
		return boxStyle.Render("No modules loaded yet")
	}

	var content strings.Builder
	for i, mv := range modules {
		if i > 0 {
			content.WriteString("\n")
		}
		content.WriteString(fmt.Sprintf("%s #%d %s  %s", stateIcon(mv.State), mv.Index, mv.Name, mv.State))
		if mv.Audio != "" {
			content.WriteString("\n   ")
			content.WriteString(mutedStyle.Render(mv.Audio))
		}
	}
	return boxStyle.Render(content.String())
}

// renderNodes renders the host's live nodes and counters
func renderNodes(s SnapshotMsg) string {
	var content strings.Builder
	content.WriteString(fmt.Sprintf("Nodes: %d | Destroy hooks: %d | Pending tasks: %d", len(s.Nodes), s.Hooks, s.Pending))
	for _, n := range s.Nodes {
		content.WriteString(fmt.Sprintf("\n  %3d %-24s %-20s %s", n.ID, n.Name, n.MediaClass, n.Group))
	}
	return boxStyle.Render(content.String())
}

// renderEvents renders the event log, oldest first
func renderEvents(events []Event) string {
	var b strings.Builder
	for _, e := range events {
		b.WriteString(" • ")
		b.WriteString(e.Text)
		if e.Err != nil {
			b.WriteString(": ")
			b.WriteString(errorStyle.Render(e.Err.Error()))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// renderFooter renders the key help
func renderFooter(m Model) string {
	if m.Quitting {
		return mutedStyle.Render("Unloading... (q again to force quit)")
	}
	return mutedStyle.Render("l load • d destroy delegated module • u unload • q quit")
}
