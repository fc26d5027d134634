package ui

import (
	"time"

	"github.com/linuxmatters/ladspa-source/internal/module"
)

// Action is a request from the monitor, run on the host loop
type Action int

const (
	ActionLoad    Action = iota // load another module with the argument
	ActionDestroy               // destroy the delegated module behind the host's back
	ActionUnload                // unload the module as a client would
	ActionQuit                  // unload everything and stop
)

func (a Action) String() string {
	switch a {
	case ActionLoad:
		return "load"
	case ActionDestroy:
		return "destroy"
	case ActionUnload:
		return "unload"
	case ActionQuit:
		return "quit"
	default:
		return "unknown"
	}
}

// ModuleView is a module as seen from the loop
type ModuleView struct {
	Index uint32
	Name  string
	State module.State
	Audio string
}

// NodeView is a host node as seen from the loop
type NodeView struct {
	ID         uint32
	Name       string
	MediaClass string
	Group      string
}

// SnapshotMsg carries the host state after an action or deferred task ran
type SnapshotMsg struct {
	Time    time.Time
	Event   string
	Err     error
	Modules []ModuleView
	Nodes   []NodeView
	Hooks   int
	Pending int
	Quit    bool
}
