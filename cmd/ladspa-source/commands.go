package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/linuxmatters/ladspa-source/internal/audioinfo"
	"github.com/linuxmatters/ladspa-source/internal/cli"
	"github.com/linuxmatters/ladspa-source/internal/host"
	"github.com/linuxmatters/ladspa-source/internal/logging"
	"github.com/linuxmatters/ladspa-source/internal/module"
	"github.com/linuxmatters/ladspa-source/internal/ui"
)

// RenderCmd prints the filter-chain document a module would hand to the host
type RenderCmd struct {
	Module   string `short:"m" default:"module-ladspa-source" help:"Module to create"`
	Argument string `arg:"" help:"Module argument string, e.g. 'plugin=amp label=amp_stereo'"`
	Check    bool   `help:"Load the document into the reference filter-chain loader"`
}

func (c *RenderCmd) Run(g *Globals) error {
	h, err := g.newHost()
	if err != nil {
		return err
	}
	m, err := h.Create(c.Module, c.Argument)
	if err != nil {
		return err
	}
	defer m.Unload()

	r, ok := m.Methods().(module.Renderer)
	if !ok {
		return fmt.Errorf("%s does not render a document", c.Module)
	}
	doc, err := r.Render(m)
	if err != nil {
		return err
	}
	fmt.Println(doc)

	if c.Check {
		im, err := h.LoadImplModule(module.FilterChainModule, doc)
		if err != nil {
			return err
		}
		for _, n := range h.Nodes() {
			cli.PrintKeyValue(os.Stderr, n.MediaClass, n.Name)
		}
		h.DestroyImplModule(im)
	}
	return nil
}

// DescribeCmd shows the module, capture and playback bags side by side
type DescribeCmd struct {
	Module   string `short:"m" default:"module-ladspa-source" help:"Module to create"`
	Argument string `arg:"" help:"Module argument string"`
}

func (c *DescribeCmd) Run(g *Globals) error {
	h, err := g.newHost()
	if err != nil {
		return err
	}
	m, err := h.Create(c.Module, c.Argument)
	if err != nil {
		return err
	}
	defer m.Unload()

	fmt.Println(cli.TitleStyle.Render(m.Name))
	cli.PrintKeyValue(os.Stdout, "Index", fmt.Sprintf("%d", m.Index))
	cli.PrintKeyValue(os.Stdout, "State", m.State().String())
	if ai, ok := m.Methods().(interface{ AudioInfo() audioinfo.Info }); ok {
		info := ai.AudioInfo()
		format := info.BeepFormat()
		cli.PrintKeyValue(os.Stdout, "Audio", info.String())
		cli.PrintKeyValue(os.Stdout, "Frame", fmt.Sprintf("%d bytes", format.Width()))
	}
	fmt.Println()

	table := logging.NewPropTable()
	if ep, ok := m.Methods().(module.Endpoints); ok {
		table.AddBags(m.Props, ep.Capture(), ep.Playback())
	} else {
		table.AddBags(m.Props, nil, nil)
	}
	cli.PrintSection(os.Stdout, "Properties", table.String())
	return nil
}

// RunCmd loads a module into the reference host and opens the monitor
type RunCmd struct {
	Module   string `short:"m" default:"module-ladspa-source" help:"Module to load"`
	Argument string `arg:"" help:"Module argument string"`
}

func (c *RunCmd) Run(g *Globals) error {
	cfg, level, err := g.loadConfig()
	if err != nil {
		return err
	}

	// The monitor owns the terminal, so the host logs to a file
	logger, debugLog, err := logging.OpenDebugLog(level, g.Debug)
	if err != nil {
		return err
	}
	defer debugLog.Close()

	h, err := host.New(cfg, logger)
	if err != nil {
		return err
	}

	driver := ui.NewDriver(h, c.Module, c.Argument)
	p := tea.NewProgram(ui.NewModel(c.Argument, driver.Post), tea.WithAltScreen())
	driver.Attach(p.Send)

	ctx, cancel := context.WithCancel(context.Background())
	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		_ = h.Loop().Run(ctx)
	}()

	final, runErr := p.Run()
	cancel()
	<-loopDone

	// A forced quit can leave modules behind; the loop has stopped so they
	// are unloaded from here.
	for _, m := range h.Modules() {
		if err := h.UnloadModule(m.Index); err != nil {
			logger.Error("failed to unload module", "id", m.Index, "err", err)
		}
	}

	if runErr != nil {
		return fmt.Errorf("UI error: %w", runErr)
	}
	if fm, ok := final.(ui.Model); ok {
		for _, e := range fm.Events {
			if e.Err != nil {
				fmt.Printf("%s: %v\n", e.Text, e.Err)
			}
		}
	}
	return nil
}

// ModulesCmd lists the registered modules
type ModulesCmd struct{}

func (c *ModulesCmd) Run(g *Globals) error {
	for _, name := range module.Names() {
		e, _ := module.Lookup(name)
		fmt.Println(cli.TitleStyle.Render(name))
		cli.PrintKeyValue(os.Stdout, "About", e.Info.Description)
		cli.PrintKeyValue(os.Stdout, "Author", e.Info.Author)
		cli.PrintKeyValue(os.Stdout, "Version", e.Info.Version)
		cli.PrintSection(os.Stdout, "Arguments", "  "+strings.ReplaceAll(e.Info.Usage, "> ", ">\n  "))
	}
	return nil
}
