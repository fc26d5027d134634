package module

import (
	"fmt"
	"strings"

	"github.com/linuxmatters/ladspa-source/internal/audioinfo"
	"github.com/linuxmatters/ladspa-source/internal/graph"
	"github.com/linuxmatters/ladspa-source/internal/props"
)

// LADSPASourceName is the registered name of the virtual LADSPA source.
const LADSPASourceName = "module-ladspa-source"

// FilterChainModule is the graph server module that runs the plugin.
const FilterChainModule = "libpipewire-module-filter-chain"

// Version is published as module.version.
var Version = "0.0.1"

var ladspaSourceUsage = strings.Join([]string{
	"source_name=<name for the source>",
	"source_properties=<properties for the source>",
	"source_output_properties=<properties for the source output>",
	"master=<name of source to filter>",
	"source_master=<name of source to filter>",
	"format=<sample format>",
	"rate=<sample rate>",
	"channels=<number of channels>",
	"channel_map=<input channel map>",
	"plugin=<ladspa plugin name>",
	"label=<ladspa plugin label>",
	"control=<comma separated list of input control values>",
	"input_ladspaport_map=<comma separated list of input LADSPA port names>",
	"output_ladspaport_map=<comma separated list of output LADSPA port names>",
}, " ")

func init() {
	Register(LADSPASourceName, Info{
		Author:      "Wim Taymans <wim.taymans@gmail.com>",
		Description: "Virtual LADSPA source",
		Usage:       ladspaSourceUsage,
		Version:     Version,
	}, createLADSPASource)
}

// Where a routed argument ends up.
type bag int

const (
	bagModule bag = iota
	bagCapture
	bagPlayback
)

// route moves an argument out of the module properties. An empty target
// parses the value as nested arguments and merges them into the bag.
type route struct {
	key    string
	bag    bag
	target string
}

// Applied in order; master follows source_master so that it wins.
var ladspaSourceRoutes = []route{
	{key: "source_name", bag: bagModule, target: props.KeyNodeName},
	{key: "source_properties", bag: bagCapture},
	{key: "source_output_properties", bag: bagPlayback},
	{key: "source_master", bag: bagPlayback, target: props.KeyNodeTarget},
	{key: "master", bag: bagPlayback, target: props.KeyNodeTarget},
	{key: "input_ladspaport_map", bag: bagModule, target: graph.KeyInputs},
	{key: "output_ladspaport_map", bag: bagModule, target: graph.KeyOutputs},
}

type ladspaSource struct {
	capture  *props.Props
	playback *props.Props
	info     audioinfo.Info

	mod     Delegate
	modHook Hook
}

func createLADSPASource(impl Impl, argument string) (*Module, error) {
	e, _ := Lookup(LADSPASourceName)
	m := newModule(impl, LADSPASourceName, e.Info)

	if err := m.Props.Update(argument); err != nil {
		return nil, err
	}

	d := &ladspaSource{
		capture:  props.New(),
		playback: props.New(),
	}
	if err := d.partition(m.Props); err != nil {
		return nil, err
	}

	info, err := audioinfo.Resolve(m.Props, impl.Defaults())
	if err != nil {
		return nil, err
	}
	d.info = info
	info.ToProps(d.capture)
	info.ToProps(d.playback)

	d.capture.SetDefault(props.KeyNodePassive, "true")

	m.methods = d
	return m, nil
}

// partition routes the module arguments into the module, capture and
// playback bags and applies the defaults of each bag.
func (d *ladspaSource) partition(args *props.Props) error {
	bags := map[bag]*props.Props{
		bagModule:   args,
		bagCapture:  d.capture,
		bagPlayback: d.playback,
	}

	named := false
	for _, r := range ladspaSourceRoutes {
		value, ok := args.Take(r.key)
		if !ok {
			continue
		}
		if r.key == "source_name" {
			named = true
		}
		dst := bags[r.bag]
		if r.target != "" {
			dst.Set(r.target, value)
			continue
		}
		if err := dst.Update(value); err != nil {
			return fmt.Errorf("%s: %w", r.key, err)
		}
	}

	// Without source_name the node name is always null, even if node.name
	// was passed directly.
	if !named {
		args.Set(props.KeyNodeName, "null")
	}
	d.playback.SetDefault(props.KeyMediaClass, "Audio/Source")
	return nil
}

func (d *ladspaSource) Capture() *props.Props  { return d.capture }
func (d *ladspaSource) Playback() *props.Props { return d.playback }

// AudioInfo returns the resolved raw audio format.
func (d *ladspaSource) AudioInfo() audioinfo.Info { return d.info }

func (d *ladspaSource) Delegate() Delegate { return d.mod }

// Render couples both endpoints into one scheduling group and renders the
// filter-chain document.
func (d *ladspaSource) Render(m *Module) (string, error) {
	group := fmt.Sprintf("ladspa-source-%d", m.Index)
	d.capture.Set(props.KeyNodeGroup, group)
	d.playback.Set(props.KeyNodeGroup, group)

	doc, err := graph.NewLADSPA(m.Props, d.capture, d.playback)
	if err != nil {
		return "", err
	}
	return doc.Render(), nil
}

func (d *ladspaSource) Load(client *Client, m *Module) error {
	args, err := d.Render(m)
	if err != nil {
		return err
	}

	mod, err := m.impl.LoadModule(FilterChainModule, args)
	if err != nil {
		return NewHostLoadError(FilterChainModule, err)
	}
	d.mod = mod
	d.modHook = mod.AddDestroyListener(func() { d.delegateDestroyed(m) })

	m.impl.Logger().Info("loaded module", "id", m.Index, "name", m.Name)
	return nil
}

func (d *ladspaSource) Unload(m *Module) error {
	if d.mod != nil {
		d.modHook.Remove()
		d.modHook = nil
		d.mod.Destroy()
		d.mod = nil
	}
	return nil
}

// delegateDestroyed runs from the host when the filter-chain module goes
// away. The unload is deferred to the main loop.
func (d *ladspaSource) delegateDestroyed(m *Module) {
	if d.modHook != nil {
		d.modHook.Remove()
		d.modHook = nil
	}
	d.mod = nil
	m.ScheduleUnload()
}

func (d *ladspaSource) release() {
	if d.capture != nil {
		d.capture.Clear()
		d.capture = nil
	}
	if d.playback != nil {
		d.playback.Clear()
		d.playback = nil
	}
}
