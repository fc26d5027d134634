package ui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/linuxmatters/ladspa-source/internal/audioinfo"
	"github.com/linuxmatters/ladspa-source/internal/host"
	"github.com/linuxmatters/ladspa-source/internal/module"
	"github.com/linuxmatters/ladspa-source/internal/props"
)

// Driver runs monitor actions on the host loop and reports the outcome as
// snapshots. Only Post may be called off the loop.
type Driver struct {
	host     *host.Host
	name     string
	argument string
	send     func(tea.Msg)

	// every module loaded by this driver, unloaded ones included
	modules []*module.Module
}

// NewDriver creates a driver that loads module name with argument
func NewDriver(h *host.Host, name, argument string) *Driver {
	return &Driver{
		host:     h,
		name:     name,
		argument: argument,
		send:     func(tea.Msg) {},
	}
}

// Attach sets where snapshots are sent, normally tea.Program.Send
func (d *Driver) Attach(send func(tea.Msg)) {
	d.send = send
}

// Post queues an action on the host loop
func (d *Driver) Post(a Action) {
	d.host.Loop().Schedule(func() { d.handle(a) })
}

func (d *Driver) handle(a Action) {
	logger := d.host.Logger()
	logger.Debug("monitor action", "action", a)

	switch a {
	case ActionLoad:
		m, err := d.host.LoadModule(d.name, d.argument)
		if err != nil {
			d.publish("load failed", err, false)
			return
		}
		d.modules = append(d.modules, m)
		d.publish(fmt.Sprintf("loaded module #%d", m.Index), nil, false)

	case ActionDestroy:
		m := d.current()
		if m == nil {
			d.publish("nothing to destroy", nil, false)
			return
		}
		dl, ok := m.Methods().(module.Delegator)
		if !ok || dl.Delegate() == nil {
			d.publish(fmt.Sprintf("module #%d has no delegated module", m.Index), nil, false)
			return
		}
		dl.Delegate().Destroy()
		d.publish(fmt.Sprintf("destroyed delegated module of #%d", m.Index), nil, false)
		// Queued behind the deferred unload
		d.host.Loop().Schedule(func() {
			d.publish(fmt.Sprintf("module #%d %s", m.Index, m.State()), nil, false)
		})

	case ActionUnload:
		m := d.current()
		if m == nil {
			d.publish("nothing to unload", nil, false)
			return
		}
		err := d.host.UnloadModule(m.Index)
		d.publish(fmt.Sprintf("unloaded module #%d", m.Index), err, false)

	case ActionQuit:
		var firstErr error
		for _, m := range d.host.Modules() {
			if err := d.host.UnloadModule(m.Index); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		d.publish("unloaded all modules", firstErr, true)
	}
}

// current returns the most recent module that is still loaded
func (d *Driver) current() *module.Module {
	for i := len(d.modules) - 1; i >= 0; i-- {
		if d.modules[i].State() == module.StateLoaded {
			return d.modules[i]
		}
	}
	return nil
}

func (d *Driver) publish(event string, err error, quit bool) {
	if err != nil {
		d.host.Logger().Error(event, "err", err)
	}
	d.send(d.Snapshot(event, err, quit))
}

// Snapshot captures the host state. It must run on the loop.
func (d *Driver) Snapshot(event string, err error, quit bool) SnapshotMsg {
	snap := SnapshotMsg{
		Time:    time.Now(),
		Event:   event,
		Err:     err,
		Hooks:   d.host.HookCount(),
		Pending: d.host.Loop().Pending(),
		Quit:    quit,
	}

	for _, m := range d.modules {
		mv := ModuleView{Index: m.Index, Name: m.Name, State: m.State()}
		if ai, ok := m.Methods().(interface{ AudioInfo() audioinfo.Info }); ok {
			mv.Audio = ai.AudioInfo().String()
		}
		snap.Modules = append(snap.Modules, mv)
	}

	for _, n := range d.host.Nodes() {
		snap.Nodes = append(snap.Nodes, NodeView{
			ID:         n.ID,
			Name:       n.Name,
			MediaClass: n.MediaClass,
			Group:      n.Props.Value(props.KeyNodeGroup),
		})
	}
	return snap
}
