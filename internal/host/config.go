package host

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"github.com/gopxl/beep"
	"github.com/linuxmatters/ladspa-source/internal/audioinfo"
	"github.com/linuxmatters/ladspa-source/internal/module"
)

// Config holds the reference host settings
type Config struct {
	// Audio defaults applied to modules that leave format, rate, channels
	// or channel_map unset
	Format     string `toml:"format"`
	Rate       int    `toml:"rate"`
	Channels   int    `toml:"channels"`
	ChannelMap string `toml:"channel_map"`

	// FilterChain is the name the filter-chain loader is registered under
	FilterChain string `toml:"filter_chain"`

	// MaxModules caps the number of delegated modules; 0 means no limit.
	// Loads beyond the cap fail as out of memory.
	MaxModules int `toml:"max_modules"`

	LogLevel string `toml:"log_level"`
}

// DefaultConfig returns the built-in host configuration
func DefaultConfig() Config {
	return Config{
		Format:      "float32le",
		Rate:        48000,
		Channels:    2,
		ChannelMap:  "front-left,front-right",
		FilterChain: module.FilterChainModule,
		LogLevel:    "info",
	}
}

// LoadConfig reads a TOML file over the defaults. Unknown keys are an error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if _, err := cfg.Defaults(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	if _, err := cfg.Level(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Defaults converts the audio settings into the host's audio-info
// convention.
func (c Config) Defaults() (audioinfo.Defaults, error) {
	format, ok := audioinfo.ParseSampleFormat(c.Format)
	if !ok {
		return audioinfo.Defaults{}, fmt.Errorf("%w: unknown format %q", audioinfo.ErrInvalidAudioInfo, c.Format)
	}
	if c.Rate <= 0 || c.Rate > audioinfo.MaxRate {
		return audioinfo.Defaults{}, fmt.Errorf("%w: invalid rate %d", audioinfo.ErrInvalidAudioInfo, c.Rate)
	}
	if c.Channels <= 0 || c.Channels > audioinfo.MaxChannels {
		return audioinfo.Defaults{}, fmt.Errorf("%w: invalid channels %d", audioinfo.ErrInvalidAudioInfo, c.Channels)
	}

	defs := audioinfo.Defaults{
		Format:   format,
		Rate:     beep.SampleRate(c.Rate),
		Channels: c.Channels,
	}
	if c.ChannelMap != "" {
		positions, err := audioinfo.ParseChannelMap(c.ChannelMap)
		if err != nil {
			return audioinfo.Defaults{}, err
		}
		defs.Positions = positions
	}
	return defs, nil
}

// Level returns the configured log level
func (c Config) Level() (log.Level, error) {
	if c.LogLevel == "" {
		return log.InfoLevel, nil
	}
	return log.ParseLevel(c.LogLevel)
}
