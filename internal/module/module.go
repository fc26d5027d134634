// Package module implements legacy sound-server modules on top of the graph
// server: the module handle and its lifecycle, the module registry, and the
// virtual LADSPA source adapter.
package module

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/linuxmatters/ladspa-source/internal/audioinfo"
	"github.com/linuxmatters/ladspa-source/internal/props"
)

// Hook is a listener registration that can be removed.
type Hook interface {
	Remove()
}

// Delegate is a module owned by the host that an adapter loads on its
// caller's behalf and observes.
type Delegate interface {
	// AddDestroyListener registers fn to run when the delegate is destroyed.
	AddDestroyListener(fn func()) Hook
	// Destroy tears the delegate down, emitting its destroy listeners.
	Destroy()
}

// Impl is the host contract a module runs against. All calls happen on the
// host's main loop.
type Impl interface {
	// LoadModule synchronously loads a graph server module with args.
	LoadModule(name, args string) (Delegate, error)
	// ScheduleUnload queues unloading of m on the main loop.
	ScheduleUnload(m *Module)
	// Defaults returns the host's audio format convention.
	Defaults() audioinfo.Defaults
	// Logger returns the host logger.
	Logger() *log.Logger
}

// Client identifies the protocol client that requested a module operation.
type Client struct {
	Name string
}

// Methods are the per-module operations.
type Methods interface {
	Load(client *Client, m *Module) error
	Unload(m *Module) error
}

// State is the lifecycle state of a module.
type State int

const (
	StateCreated State = iota
	StateLoaded
	StateUnloadScheduled
	StateUnloaded
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateLoaded:
		return "loaded"
	case StateUnloadScheduled:
		return "unload-scheduled"
	case StateUnloaded:
		return "unloaded"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Info is the metadata published for a module type.
type Info struct {
	Author      string
	Description string
	Usage       string
	Version     string
}

func (i Info) props() *props.Props {
	return props.New(
		props.Item{Key: props.KeyModuleAuthor, Value: i.Author},
		props.Item{Key: props.KeyModuleDescription, Value: i.Description},
		props.Item{Key: props.KeyModuleUsage, Value: i.Usage},
		props.Item{Key: props.KeyModuleVersion, Value: i.Version},
	)
}

// Module is a loaded (or loading) legacy module instance.
type Module struct {
	// Index is assigned by the host before Load.
	Index uint32
	Name  string
	Props *props.Props

	impl    Impl
	methods Methods
	state   State
	loaded  []func(m *Module, err error)
}

func newModule(impl Impl, name string, info Info) *Module {
	return &Module{
		Name:  name,
		Props: info.props(),
		impl:  impl,
		state: StateCreated,
	}
}

// State returns the current lifecycle state.
func (m *Module) State() State {
	return m.state
}

// Methods returns the module's implementation.
func (m *Module) Methods() Methods {
	return m.methods
}

// OnLoaded registers fn to be told when the module finished loading.
func (m *Module) OnLoaded(fn func(m *Module, err error)) {
	m.loaded = append(m.loaded, fn)
}

// EmitLoaded notifies the loaded listeners.
func (m *Module) EmitLoaded(err error) {
	for _, fn := range m.loaded {
		fn(m, err)
	}
}

// Load runs the module's load method and emits the loaded notification.
// A failed load releases the module.
func (m *Module) Load(client *Client) error {
	if m.state != StateCreated {
		return fmt.Errorf("%w: load in state %s", ErrInvalidState, m.state)
	}
	if err := m.methods.Load(client, m); err != nil {
		m.impl.Logger().Error("failed to load module", "id", m.Index, "name", m.Name, "err", err)
		m.EmitLoaded(err)
		m.release()
		return err
	}
	m.state = StateLoaded
	m.EmitLoaded(nil)
	return nil
}

// Unload runs the module's unload method and releases its properties.
// Unloading an unloaded module does nothing.
func (m *Module) Unload() error {
	if m.state == StateUnloaded {
		return nil
	}
	m.impl.Logger().Info("unload module", "id", m.Index, "name", m.Name)

	var err error
	if m.state != StateCreated {
		err = m.methods.Unload(m)
	}
	m.release()
	return err
}

// ScheduleUnload asks the host to unload the module from its main loop.
// Only the first request has an effect.
func (m *Module) ScheduleUnload() {
	if m.state == StateUnloadScheduled || m.state == StateUnloaded {
		return
	}
	m.state = StateUnloadScheduled
	m.impl.ScheduleUnload(m)
}

func (m *Module) release() {
	if r, ok := m.methods.(interface{ release() }); ok {
		r.release()
	}
	if m.Props != nil {
		m.Props.Clear()
		m.Props = nil
	}
	m.loaded = nil
	m.state = StateUnloaded
}

// Endpoints is implemented by modules that own capture and playback
// property bags.
type Endpoints interface {
	Capture() *props.Props
	Playback() *props.Props
}

// Renderer is implemented by modules that hand a document to the host.
type Renderer interface {
	Render(m *Module) (string, error)
}

// Delegator is implemented by modules that run on top of a delegated module.
// Delegate returns nil when none is loaded.
type Delegator interface {
	Delegate() Delegate
}
