// Package ui provides the Bubbletea lifecycle monitor for a module loaded into
// the reference host
package ui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// maxEvents is how many events the monitor keeps
const maxEvents = 8

// Event is one line of the monitor's event log
type Event struct {
	Text string
	Err  error
}

// Model is the Bubbletea model for the lifecycle monitor
type Model struct {
	Argument string

	// Latest host state
	Snapshot SnapshotMsg
	Events   []Event

	// Quitting is set once a quit has been requested
	Quitting bool
	Done     bool

	// post hands actions to the host loop
	post func(Action)

	// Terminal dimensions
	Width  int
	Height int
}

// NewModel creates a monitor for argument. Actions are handed to post.
func NewModel(argument string, post func(Action)) Model {
	return Model{
		Argument: argument,
		post:     post,
	}
}

// Init loads the first module
func (m Model) Init() tea.Cmd {
	post := m.post
	return func() tea.Msg {
		post(ActionLoad)
		return nil
	}
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			if m.Quitting {
				// Second request: the loop is not answering
				return m, tea.Quit
			}
			m.Quitting = true
			m.post(ActionQuit)
		case "l":
			if !m.Quitting {
				m.post(ActionLoad)
			}
		case "d":
			if !m.Quitting {
				m.post(ActionDestroy)
			}
		case "u":
			if !m.Quitting {
				m.post(ActionUnload)
			}
		}

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height

	case SnapshotMsg:
		m.Snapshot = msg
		m.addEvent(Event{Text: msg.Event, Err: msg.Err})
		if msg.Quit {
			m.Done = true
			return m, tea.Quit
		}
	}

	return m, nil
}

func (m *Model) addEvent(e Event) {
	m.Events = append(m.Events, e)
	if len(m.Events) > maxEvents {
		m.Events = m.Events[len(m.Events)-maxEvents:]
	}
}

// View renders the UI
func (m Model) View() string {
	if m.Width == 0 {
		return fmt.Sprintf("Initializing...\nArgument: %s\n", m.Argument)
	}
	return renderMonitorView(m)
}
