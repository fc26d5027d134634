package main

import (
	"os"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/linuxmatters/ladspa-source/internal/cli"
	"github.com/linuxmatters/ladspa-source/internal/host"
	"github.com/linuxmatters/ladspa-source/internal/logging"
	"github.com/linuxmatters/ladspa-source/internal/module"
)

// versionFlag prints the version and exits before any command runs
type versionFlag bool

func (v versionFlag) BeforeApply(app *kong.Kong) error {
	cli.PrintVersion(module.Version)
	app.Exit(0)
	return nil
}

// Globals are the flags shared by every command
type Globals struct {
	Version versionFlag `short:"v" help:"Show version information"`
	Config  string      `short:"c" type:"path" env:"LADSPA_SOURCE_CONFIG" help:"Path to TOML host config file (optional)"`
	Debug   bool        `help:"Log at debug level"`
}

// CLI defines the command-line interface
type CLI struct {
	Globals

	Render   RenderCmd   `cmd:"" help:"Render the filter-chain document for a module argument"`
	Describe DescribeCmd `cmd:"" help:"Show how a module argument is split between module, capture and playback"`
	Run      RunCmd      `cmd:"" help:"Load a module into the reference host and monitor its lifecycle"`
	Modules  ModulesCmd  `cmd:"" help:"List the registered modules and their arguments"`
}

func main() {
	cliArgs := &CLI{}
	ctx := kong.Parse(cliArgs,
		kong.Name("ladspa-source"),
		kong.Description("Virtual LADSPA source for the PulseAudio compatibility layer"),
		kong.UsageOnError(),
		kong.Vars{
			"version": module.Version,
		},
		kong.Help(cli.StyledHelpPrinter(kong.HelpOptions{Compact: true})),
	)

	if err := ctx.Run(&cliArgs.Globals); err != nil {
		cli.PrintError(err.Error())
		os.Exit(1)
	}
}

// loadConfig returns the host configuration, read from --config when set
func (g *Globals) loadConfig() (host.Config, log.Level, error) {
	cfg := host.DefaultConfig()
	if g.Config != "" {
		var err error
		if cfg, err = host.LoadConfig(g.Config); err != nil {
			return host.Config{}, 0, err
		}
	}
	level, err := cfg.Level()
	if err != nil {
		return host.Config{}, 0, err
	}
	return cfg, level, nil
}

// newHost creates a reference host logging to stderr
func (g *Globals) newHost() (*host.Host, error) {
	cfg, level, err := g.loadConfig()
	if err != nil {
		return nil, err
	}
	return host.New(cfg, logging.New(os.Stderr, level, g.Debug))
}
