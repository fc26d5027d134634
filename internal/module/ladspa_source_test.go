package module

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"syscall"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/linuxmatters/ladspa-source/internal/audioinfo"
	"github.com/linuxmatters/ladspa-source/internal/graph"
	"github.com/linuxmatters/ladspa-source/internal/props"
)

type fakeHook struct {
	fn      func()
	removed bool
}

func (h *fakeHook) Remove() { h.removed = true }

type fakeDelegate struct {
	name      string
	args      string
	hooks     []*fakeHook
	destroyed int
}

func (d *fakeDelegate) AddDestroyListener(fn func()) Hook {
	h := &fakeHook{fn: fn}
	d.hooks = append(d.hooks, h)
	return h
}

func (d *fakeDelegate) Destroy() {
	d.destroyed++
	for _, h := range append([]*fakeHook(nil), d.hooks...) {
		if !h.removed {
			h.fn()
		}
	}
}

func (d *fakeDelegate) activeHooks() int {
	n := 0
	for _, h := range d.hooks {
		if !h.removed {
			n++
		}
	}
	return n
}

// fakeImpl records every host interaction.
type fakeImpl struct {
	loadErr   error
	delegates []*fakeDelegate
	scheduled []*Module
}

func (f *fakeImpl) LoadModule(name, args string) (Delegate, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	d := &fakeDelegate{name: name, args: args}
	f.delegates = append(f.delegates, d)
	return d, nil
}

func (f *fakeImpl) ScheduleUnload(m *Module)     { f.scheduled = append(f.scheduled, m) }
func (f *fakeImpl) Defaults() audioinfo.Defaults { return audioinfo.DefaultDefaults() }
func (f *fakeImpl) Logger() *log.Logger          { return log.New(io.Discard) }

func createSource(t *testing.T, impl Impl, arg string) *Module {
	t.Helper()
	m, err := Create(impl, LADSPASourceName, arg)
	if err != nil {
		t.Fatalf("Create(%q): %v", arg, err)
	}
	return m
}

func endpoints(t *testing.T, m *Module) (*props.Props, *props.Props) {
	t.Helper()
	ep, ok := m.Methods().(Endpoints)
	if !ok {
		t.Fatal("module does not expose endpoints")
	}
	return ep.Capture(), ep.Playback()
}

func loadedDocument(t *testing.T, f *fakeImpl) *graph.Object {
	t.Helper()
	if len(f.delegates) != 1 {
		t.Fatalf("expected one delegated load, got %d", len(f.delegates))
	}
	if f.delegates[0].name != FilterChainModule {
		t.Errorf("delegated module = %q, want %q", f.delegates[0].name, FilterChainModule)
	}
	doc, err := graph.Parse(f.delegates[0].args)
	if err != nil {
		t.Fatalf("document does not parse: %v\n%s", err, f.delegates[0].args)
	}
	return doc
}

func TestLoadRendersLADSPANode(t *testing.T) {
	f := &fakeImpl{}
	m := createSource(t, f, "plugin=foo label=bar rate=48000 channels=2 channel_map=FL,FR")
	if err := m.Load(&Client{Name: "test"}); err != nil {
		t.Fatalf("Load: %v", err)
	}

	doc := loadedDocument(t, f)
	fg, ok := doc.Object("filter.graph")
	if !ok {
		t.Fatal("filter.graph missing")
	}
	nodes, ok := fg.Array("nodes")
	if !ok || len(nodes) != 1 {
		t.Fatalf("nodes = %#v", nodes)
	}
	node := nodes[0].(*graph.Object)
	for key, want := range map[string]string{"type": "ladspa", "plugin": "foo", "label": "bar"} {
		if got, _ := node.String(key); got != want {
			t.Errorf("node %s = %q, want %q", key, got, want)
		}
	}
	if len(node.Members) != 3 {
		t.Errorf("node has %d members, want 3", len(node.Members))
	}

	capture, _ := doc.Object("capture.props")
	if got, _ := capture.String("audio.channels"); got != "2" {
		t.Errorf("capture audio.channels = %q, want 2", got)
	}
	if got, _ := capture.String("audio.position"); got != "FL,FR" {
		t.Errorf("capture audio.position = %q, want FL,FR", got)
	}
	if got, _ := capture.String("node.passive"); got != "true" {
		t.Errorf("capture node.passive = %q, want true", got)
	}

	// Audio keys are consumed and do not leak into the top level
	for _, key := range []string{"rate", "channels", "channel_map"} {
		if _, ok := doc.Get(key); ok {
			t.Errorf("top level still carries %q", key)
		}
	}
	if got, _ := doc.String("module.description"); got != "Virtual LADSPA source" {
		t.Errorf("module.description = %q", got)
	}
}

func TestLoadRequiresPluginAndLabel(t *testing.T) {
	tests := []struct {
		name string
		arg  string
		want error
	}{
		{"missing plugin", "label=bar rate=48000 channels=2 channel_map=FL,FR", ErrMissingPlugin},
		{"missing label", "plugin=foo", ErrMissingLabel},
		{"missing both", "", ErrMissingPlugin},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeImpl{}
			m := createSource(t, f, tt.arg)

			var loadedErr error
			m.OnLoaded(func(_ *Module, err error) { loadedErr = err })

			err := m.Load(&Client{})
			if !errors.Is(err, tt.want) {
				t.Fatalf("Load error = %v, want %v", err, tt.want)
			}
			if len(f.delegates) != 0 {
				t.Error("no delegated module may be loaded")
			}
			if !errors.Is(loadedErr, tt.want) {
				t.Errorf("loaded notification error = %v", loadedErr)
			}
			if m.State() != StateUnloaded {
				t.Errorf("state = %s, want unloaded", m.State())
			}
			if m.Props != nil {
				t.Error("module props not released")
			}
			capture, playback := endpoints(t, m)
			if capture != nil || playback != nil {
				t.Error("endpoint props not released")
			}
		})
	}
}

func TestPartition(t *testing.T) {
	t.Run("source_name sets node.name", func(t *testing.T) {
		f := &fakeImpl{}
		m := createSource(t, f, "source_name=mic plugin=p label=l rate=48000 channels=1 channel_map=MONO")
		_, playback := endpoints(t, m)

		if got := m.Props.Value(props.KeyNodeName); got != "mic" {
			t.Errorf("node.name = %q, want mic", got)
		}
		if got := playback.Value(props.KeyMediaClass); got != "Audio/Source" {
			t.Errorf("media.class = %q, want Audio/Source", got)
		}
		if got := playback.Value(props.KeyAudioPosition); got != "MONO" {
			t.Errorf("playback audio.position = %q, want MONO", got)
		}
	})

	t.Run("node.name defaults to null", func(t *testing.T) {
		m := createSource(t, &fakeImpl{}, "plugin=p label=l")
		if got, ok := m.Props.Get(props.KeyNodeName); !ok || got != "null" {
			t.Errorf("node.name = %q, %v; want null", got, ok)
		}
	})

	t.Run("node.name without source_name is overridden", func(t *testing.T) {
		m := createSource(t, &fakeImpl{}, "node.name=custom plugin=p label=l")
		if got := m.Props.Value(props.KeyNodeName); got != "null" {
			t.Errorf("node.name = %q, want null", got)
		}
	})

	t.Run("source_name beats node.name", func(t *testing.T) {
		m := createSource(t, &fakeImpl{}, "node.name=custom source_name=mic plugin=p label=l")
		if got := m.Props.Value(props.KeyNodeName); got != "mic" {
			t.Errorf("node.name = %q, want mic", got)
		}
	})

	t.Run("master sets node.target", func(t *testing.T) {
		m := createSource(t, &fakeImpl{}, "master=hw_in plugin=p label=l rate=48000 channels=1 channel_map=MONO")
		_, playback := endpoints(t, m)
		if got := playback.Value(props.KeyNodeTarget); got != "hw_in" {
			t.Errorf("node.target = %q, want hw_in", got)
		}
		if m.Props.Has("master") {
			t.Error("master left in module props")
		}
	})

	t.Run("source_master sets node.target", func(t *testing.T) {
		m := createSource(t, &fakeImpl{}, "source_master=hw_in plugin=p label=l")
		_, playback := endpoints(t, m)
		if got := playback.Value(props.KeyNodeTarget); got != "hw_in" {
			t.Errorf("node.target = %q, want hw_in", got)
		}
		if m.Props.Has("source_master") {
			t.Error("source_master left in module props")
		}
	})

	t.Run("master wins over source_master", func(t *testing.T) {
		m := createSource(t, &fakeImpl{}, "master=a source_master=b plugin=p label=l")
		_, playback := endpoints(t, m)
		if got := playback.Value(props.KeyNodeTarget); got != "a" {
			t.Errorf("node.target = %q, want a", got)
		}
		if m.Props.Has("master") || m.Props.Has("source_master") {
			t.Error("both master keys must be stripped")
		}
	})

	t.Run("source_properties merge into capture", func(t *testing.T) {
		m := createSource(t, &fakeImpl{}, `source_properties="device.description='Gate' node.passive=false" plugin=p label=l`)
		capture, _ := endpoints(t, m)
		if got := capture.Value("device.description"); got != "Gate" {
			t.Errorf("device.description = %q, want Gate", got)
		}
		if got := capture.Value(props.KeyNodePassive); got != "false" {
			t.Errorf("node.passive = %q, explicit value must win over default", got)
		}
	})

	t.Run("source_output_properties merge into playback", func(t *testing.T) {
		m := createSource(t, &fakeImpl{}, `source_output_properties="media.class=Audio/Source/Virtual" plugin=p label=l`)
		_, playback := endpoints(t, m)
		if got := playback.Value(props.KeyMediaClass); got != "Audio/Source/Virtual" {
			t.Errorf("media.class = %q, explicit value must win over default", got)
		}
	})

	t.Run("port maps become node inputs and outputs", func(t *testing.T) {
		f := &fakeImpl{}
		m := createSource(t, f, "plugin=p label=l input_ladspaport_map=in1,in2 output_ladspaport_map=out1 rate=48000 channels=2 channel_map=FL,FR")
		if err := m.Load(&Client{}); err != nil {
			t.Fatal(err)
		}
		args := f.delegates[0].args
		for _, want := range []string{"inputs = [ in1,in2 ]", "outputs = [ out1 ]"} {
			if !strings.Contains(args, want) {
				t.Errorf("document missing %q:\n%s", want, args)
			}
		}
		if m.Props.Has("input_ladspaport_map") || m.Props.Has("output_ladspaport_map") {
			t.Error("port map keys left in module props")
		}
	})

	t.Run("control passes through", func(t *testing.T) {
		m := createSource(t, &fakeImpl{}, "plugin=p label=l control=1,0.5")
		if got := m.Props.Value("control"); got != "1,0.5" {
			t.Errorf("control = %q", got)
		}
	})
}

func TestPartitionRemovesRoutedKeys(t *testing.T) {
	args := []string{
		"",
		"source_name=x",
		`source_properties="a=b"`,
		`source_output_properties="c=d"`,
		"master=m",
		"source_master=m",
		`source_name=x source_properties="a=b" master=m source_master=n plugin=p label=l`,
	}
	for _, arg := range args {
		t.Run(arg, func(t *testing.T) {
			m := createSource(t, &fakeImpl{}, arg)
			for _, key := range []string{"source_name", "source_properties", "source_output_properties", "master", "source_master"} {
				if m.Props.Has(key) {
					t.Errorf("%q left in module props", key)
				}
			}
		})
	}
}

func TestCreateErrors(t *testing.T) {
	tests := []struct {
		name string
		arg  string
		want error
	}{
		{"unbalanced quote", `plugin="foo label=bar`, ErrMalformedArgument},
		{"nested unbalanced quote", `source_properties="a='b" plugin=p label=l`, ErrMalformedArgument},
		{"channel mismatch", "plugin=p label=l channels=2 channel_map=MONO", ErrInvalidAudioInfo},
		{"bad rate", "plugin=p label=l rate=abc", ErrInvalidAudioInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeImpl{}
			m, err := Create(f, LADSPASourceName, tt.arg)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Create error = %v, want %v", err, tt.want)
			}
			if m != nil {
				t.Error("Create returned a module on error")
			}
			if len(f.delegates) != 0 {
				t.Error("no delegated module may be loaded")
			}
		})
	}

	if _, err := Create(&fakeImpl{}, "module-unknown", ""); !errors.Is(err, ErrUnknownModule) {
		t.Errorf("unknown module error = %v", err)
	}
}

func TestNodeGroup(t *testing.T) {
	f := &fakeImpl{}
	m := createSource(t, f, "plugin=p label=l")
	m.Index = 7
	if err := m.Load(&Client{}); err != nil {
		t.Fatal(err)
	}
	doc := loadedDocument(t, f)
	for _, key := range []string{"capture.props", "playback.props"} {
		obj, _ := doc.Object(key)
		if got, _ := obj.String("node.group"); got != "ladspa-source-7" {
			t.Errorf("%s node.group = %q, want ladspa-source-7", key, got)
		}
	}
}

func TestLoadThenUnload(t *testing.T) {
	f := &fakeImpl{}
	m := createSource(t, f, "plugin=p label=l")

	var loadedState State
	m.OnLoaded(func(m *Module, err error) {
		if err != nil {
			t.Errorf("loaded with error: %v", err)
		}
		loadedState = m.State()
	})

	if err := m.Load(&Client{}); err != nil {
		t.Fatal(err)
	}
	if loadedState != StateLoaded {
		t.Errorf("loaded notification saw state %s", loadedState)
	}
	d := f.delegates[0]
	if d.activeHooks() != 1 {
		t.Fatalf("active hooks = %d, want 1", d.activeHooks())
	}

	if err := m.Unload(); err != nil {
		t.Fatal(err)
	}
	if d.activeHooks() != 0 {
		t.Errorf("active hooks after unload = %d, want 0", d.activeHooks())
	}
	if d.destroyed != 1 {
		t.Errorf("delegate destroyed %d times, want 1", d.destroyed)
	}
	if len(f.scheduled) != 0 {
		t.Error("explicit unload must not schedule another unload")
	}
	if m.State() != StateUnloaded {
		t.Errorf("state = %s", m.State())
	}

	if err := m.Load(&Client{}); !errors.Is(err, ErrInvalidState) {
		t.Errorf("Load after unload error = %v, want ErrInvalidState", err)
	}
}

func TestDelegateDestroyedSchedulesUnload(t *testing.T) {
	f := &fakeImpl{}
	m := createSource(t, f, "plugin=p label=l")
	if err := m.Load(&Client{}); err != nil {
		t.Fatal(err)
	}
	d := f.delegates[0]

	d.Destroy() // host-initiated

	if m.State() != StateUnloadScheduled {
		t.Fatalf("state = %s, want unload-scheduled", m.State())
	}
	if len(f.scheduled) != 1 || f.scheduled[0] != m {
		t.Fatalf("scheduled = %v, want exactly this module", f.scheduled)
	}
	if d.activeHooks() != 0 {
		t.Error("destroy hook still registered")
	}
	if m.Props == nil {
		t.Error("unload must be deferred, not performed in the callback")
	}

	// The host's loop runs the scheduled unload
	if err := m.Unload(); err != nil {
		t.Fatal(err)
	}
	if m.State() != StateUnloaded {
		t.Errorf("state = %s, want unloaded", m.State())
	}
	if d.destroyed != 1 {
		t.Errorf("delegate destroyed %d times, want 1", d.destroyed)
	}

	// A later explicit unload changes nothing
	if err := m.Unload(); err != nil {
		t.Fatal(err)
	}
	m.ScheduleUnload()
	if len(f.scheduled) != 1 {
		t.Errorf("unload scheduled %d times, want 1", len(f.scheduled))
	}
}

func TestHostLoadFailure(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code syscall.Errno
		oom  bool
	}{
		{"invalid argument", fmt.Errorf("%w: filter.graph missing", syscall.EINVAL), syscall.EINVAL, false},
		{"out of memory", syscall.ENOMEM, syscall.ENOMEM, true},
		{"no errno", errors.New("boom"), syscall.EIO, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeImpl{loadErr: tt.err}
			m := createSource(t, f, "plugin=p label=l")

			err := m.Load(&Client{})
			if !errors.Is(err, ErrHostLoadFailed) {
				t.Fatalf("error = %v, want ErrHostLoadFailed", err)
			}
			var hle *HostLoadError
			if !errors.As(err, &hle) {
				t.Fatalf("error %T is not a HostLoadError", err)
			}
			if hle.Code != tt.code {
				t.Errorf("code = %v, want %v", hle.Code, tt.code)
			}
			if got := errors.Is(err, ErrOutOfMemory); got != tt.oom {
				t.Errorf("errors.Is(ErrOutOfMemory) = %v, want %v", got, tt.oom)
			}
			if !errors.Is(err, tt.err) {
				t.Error("host error not preserved in chain")
			}
			if m.State() != StateUnloaded || m.Props != nil {
				t.Error("failed load must release the module")
			}
		})
	}
}

func TestRegistry(t *testing.T) {
	e, ok := Lookup(LADSPASourceName)
	if !ok {
		t.Fatal("module-ladspa-source not registered")
	}
	if e.Info.Description != "Virtual LADSPA source" {
		t.Errorf("description = %q", e.Info.Description)
	}
	if !strings.Contains(e.Info.Usage, "input_ladspaport_map=") {
		t.Error("usage does not document input_ladspaport_map")
	}

	found := false
	for _, name := range Names() {
		if name == LADSPASourceName {
			found = true
		}
	}
	if !found {
		t.Errorf("Names() = %v", Names())
	}
}

func TestStateString(t *testing.T) {
	tests := map[State]string{
		StateCreated:         "created",
		StateLoaded:          "loaded",
		StateUnloadScheduled: "unload-scheduled",
		StateUnloaded:        "unloaded",
		State(9):             "State(9)",
	}
	for s, want := range tests {
		if got := s.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", int(s), got, want)
		}
	}
}
