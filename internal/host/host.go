// Package host is an in-memory graph server host. It runs legacy modules
// against the module.Impl contract, loads delegated modules through a loader
// table and keeps a registry of the nodes they expose.
package host

import (
	"errors"
	"fmt"
	"sort"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/linuxmatters/ladspa-source/internal/audioinfo"
	"github.com/linuxmatters/ladspa-source/internal/module"
	"github.com/linuxmatters/ladspa-source/internal/props"
)

// Errors returned by the host. Each carries the errno a graph server would
// report.
var (
	ErrInvalidArgument = fmt.Errorf("invalid argument: %w", syscall.EINVAL)
	ErrNoSuchModule    = fmt.Errorf("no such module: %w", syscall.ENOENT)
	ErrTooManyModules  = fmt.Errorf("module limit reached: %w", syscall.ENOMEM)
)

// Loader initialises a delegated module from its argument string,
// registering the nodes it exposes.
type Loader func(h *Host, m *ImplModule, args string) error

// Node is an endpoint exposed by a delegated module
type Node struct {
	ID         uint32
	Name       string
	MediaClass string
	Props      *props.Props
	Module     uint32 // owning delegated module
}

// Host runs modules on its loop
type Host struct {
	cfg      Config
	defaults audioinfo.Defaults
	logger   *log.Logger
	loop     *Loop
	loaders  map[string]Loader

	modules   map[uint32]*module.Module
	nextIndex uint32

	implModules map[uint32]*ImplModule
	nextImplID  uint32

	nodes      []*Node
	nextNodeID uint32
}

// New creates a host. The filter-chain loader is registered under
// cfg.FilterChain.
func New(cfg Config, logger *log.Logger) (*Host, error) {
	defs, err := cfg.Defaults()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.Default()
	}
	h := &Host{
		cfg:         cfg,
		defaults:    defs,
		logger:      logger,
		loop:        NewLoop(),
		loaders:     map[string]Loader{},
		modules:     map[uint32]*module.Module{},
		implModules: map[uint32]*ImplModule{},
	}
	name := cfg.FilterChain
	if name == "" {
		name = module.FilterChainModule
	}
	h.RegisterLoader(name, loadFilterChain)
	return h, nil
}

// Loop returns the host's main loop
func (h *Host) Loop() *Loop { return h.loop }

// Logger returns the host logger
func (h *Host) Logger() *log.Logger { return h.logger }

// RegisterLoader makes a delegated module type loadable by name
func (h *Host) RegisterLoader(name string, loader Loader) {
	h.loaders[name] = loader
}

// Create builds a legacy module against the host without loading it. The
// module is given the index the next load would get.
func (h *Host) Create(name, args string) (*module.Module, error) {
	m, err := module.Create(implFor(h), name, args)
	if err != nil {
		return nil, err
	}
	m.Index = h.nextIndex
	return m, nil
}

// LoadModule creates a legacy module, assigns it the next index and loads
// it. A module that fails to load is not kept.
func (h *Host) LoadModule(name, args string) (*module.Module, error) {
	m, err := h.Create(name, args)
	if err != nil {
		return nil, err
	}
	h.nextIndex++
	h.modules[m.Index] = m

	if err := m.Load(&module.Client{Name: "host"}); err != nil {
		delete(h.modules, m.Index)
		return nil, err
	}
	return m, nil
}

// UnloadModule unloads the legacy module with index idx
func (h *Host) UnloadModule(idx uint32) error {
	m, ok := h.modules[idx]
	if !ok {
		return fmt.Errorf("%w: index %d", ErrNoSuchModule, idx)
	}
	delete(h.modules, idx)
	return m.Unload()
}

// Module returns the legacy module with index idx
func (h *Host) Module(idx uint32) (*module.Module, bool) {
	m, ok := h.modules[idx]
	return m, ok
}

// Modules returns the loaded legacy modules ordered by index
func (h *Host) Modules() []*module.Module {
	mods := make([]*module.Module, 0, len(h.modules))
	for _, m := range h.modules {
		mods = append(mods, m)
	}
	sort.Slice(mods, func(i, j int) bool { return mods[i].Index < mods[j].Index })
	return mods
}

// LoadImplModule loads a delegated module through the loader table
func (h *Host) LoadImplModule(name, args string) (*ImplModule, error) {
	loader, ok := h.loaders[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoSuchModule, name)
	}
	if h.cfg.MaxModules > 0 && len(h.implModules) >= h.cfg.MaxModules {
		return nil, ErrTooManyModules
	}

	m := &ImplModule{ID: h.nextImplID, Name: name, Args: args, host: h}
	if err := loader(h, m, args); err != nil {
		h.removeNodes(m)
		return nil, fmt.Errorf("load %s: %w", name, err)
	}
	h.nextImplID++
	h.implModules[m.ID] = m

	h.logger.Debug("loaded delegated module", "id", m.ID, "name", name, "nodes", len(m.nodes))
	return m, nil
}

// ImplModules returns the delegated modules ordered by id
func (h *Host) ImplModules() []*ImplModule {
	mods := make([]*ImplModule, 0, len(h.implModules))
	for _, m := range h.implModules {
		mods = append(mods, m)
	}
	sort.Slice(mods, func(i, j int) bool { return mods[i].ID < mods[j].ID })
	return mods
}

// DestroyImplModule tears down a delegated module: destroy listeners run in
// registration order, then its nodes are removed. Destroying twice does
// nothing.
func (h *Host) DestroyImplModule(m *ImplModule) {
	if m.destroyed {
		return
	}
	m.destroyed = true

	for _, l := range append([]*listener(nil), m.listeners...) {
		if !l.removed {
			l.fn()
		}
	}

	h.removeNodes(m)
	delete(h.implModules, m.ID)
	h.logger.Debug("destroyed delegated module", "id", m.ID, "name", m.Name)
}

// Nodes returns the live nodes ordered by id
func (h *Host) Nodes() []Node {
	nodes := make([]Node, len(h.nodes))
	for i, n := range h.nodes {
		nodes[i] = *n
	}
	return nodes
}

// HookCount returns the number of destroy listeners registered on live
// delegated modules.
func (h *Host) HookCount() int {
	n := 0
	for _, m := range h.implModules {
		n += len(m.listeners)
	}
	return n
}

func (h *Host) addNode(m *ImplModule, name, mediaClass string, p *props.Props) *Node {
	n := &Node{
		ID:         h.nextNodeID,
		Name:       name,
		MediaClass: mediaClass,
		Props:      p,
		Module:     m.ID,
	}
	h.nextNodeID++
	h.nodes = append(h.nodes, n)
	m.nodes = append(m.nodes, n.ID)
	return n
}

func (h *Host) removeNodes(m *ImplModule) {
	kept := h.nodes[:0]
	for _, n := range h.nodes {
		if n.Module != m.ID {
			kept = append(kept, n)
		}
	}
	for i := len(kept); i < len(h.nodes); i++ {
		h.nodes[i] = nil
	}
	h.nodes = kept
	m.nodes = nil
}

// ImplModule is a delegated module loaded by the host
type ImplModule struct {
	ID   uint32
	Name string
	Args string

	host      *Host
	listeners []*listener
	nodes     []uint32
	destroyed bool
}

// AddDestroyListener registers fn to run when the module is destroyed
func (m *ImplModule) AddDestroyListener(fn func()) module.Hook {
	l := &listener{fn: fn, owner: m}
	m.listeners = append(m.listeners, l)
	return l
}

// Destroy tears the module down through its host
func (m *ImplModule) Destroy() {
	m.host.DestroyImplModule(m)
}

// Destroyed reports whether the module has been torn down
func (m *ImplModule) Destroyed() bool { return m.destroyed }

type listener struct {
	fn      func()
	owner   *ImplModule
	removed bool
}

func (l *listener) Remove() {
	if l.removed {
		return
	}
	l.removed = true
	ls := l.owner.listeners
	for i, other := range ls {
		if other == l {
			l.owner.listeners = append(ls[:i:i], ls[i+1:]...)
			break
		}
	}
}

// impl adapts the host to the module.Impl contract
type impl struct {
	h *Host
}

func implFor(h *Host) module.Impl { return impl{h: h} }

func (i impl) LoadModule(name, args string) (module.Delegate, error) {
	m, err := i.h.LoadImplModule(name, args)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// ScheduleUnload defers the unload to the next loop iteration. A module
// already unloaded by then is left alone.
func (i impl) ScheduleUnload(m *module.Module) {
	i.h.loop.Schedule(func() {
		if cur, ok := i.h.modules[m.Index]; !ok || cur != m {
			return
		}
		if err := i.h.UnloadModule(m.Index); err != nil && !errors.Is(err, ErrNoSuchModule) {
			i.h.logger.Error("failed to unload module", "id", m.Index, "name", m.Name, "err", err)
		}
	})
}

func (i impl) Defaults() audioinfo.Defaults { return i.h.defaults }

func (i impl) Logger() *log.Logger { return i.h.logger }
