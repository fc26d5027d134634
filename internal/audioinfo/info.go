// Package audioinfo resolves the legacy audio format arguments (format, rate,
// channels, channel_map) into a raw audio descriptor.
package audioinfo

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gopxl/beep"
	"github.com/linuxmatters/ladspa-source/internal/props"
)

// ErrInvalidAudioInfo is returned when audio arguments are unparseable or
// inconsistent with each other.
var ErrInvalidAudioInfo = errors.New("invalid audio info")

// MaxRate bounds the accepted sample rate.
const MaxRate = 384000

// Argument keys consumed by Resolve.
const (
	KeyFormat     = "format"
	KeyRate       = "rate"
	KeyChannels   = "channels"
	KeyChannelMap = "channel_map"
)

// Info is a raw audio descriptor.
type Info struct {
	Format    SampleFormat
	Rate      beep.SampleRate
	Channels  int
	Positions []Channel
}

// Defaults holds the host's audio convention, used for any key that is not
// given explicitly.
type Defaults struct {
	Format    SampleFormat
	Rate      beep.SampleRate
	Channels  int
	Positions []Channel
}

// DefaultDefaults returns the built-in convention: float32le, 48 kHz, stereo.
func DefaultDefaults() Defaults {
	return Defaults{
		Format:    FormatF32LE,
		Rate:      48000,
		Channels:  2,
		Positions: []Channel{ChannelFL, ChannelFR},
	}
}

// Resolve reads the audio keys from args, removes them, and returns the
// resulting descriptor. Keys that are absent take their value from defs.
func Resolve(args *props.Props, defs Defaults) (Info, error) {
	info := Info{Format: defs.Format, Rate: defs.Rate}

	if str, ok := args.Get(KeyFormat); ok {
		f, ok := ParseSampleFormat(str)
		if !ok {
			return Info{}, fmt.Errorf("%w: unknown format %q", ErrInvalidAudioInfo, str)
		}
		info.Format = f
	}

	if str, ok := args.Get(KeyRate); ok {
		rate, err := strconv.Atoi(strings.TrimSpace(str))
		if err != nil || rate <= 0 || rate > MaxRate {
			return Info{}, fmt.Errorf("%w: invalid rate %q", ErrInvalidAudioInfo, str)
		}
		info.Rate = beep.SampleRate(rate)
	}

	if str, ok := args.Get(KeyChannels); ok {
		n, err := strconv.Atoi(strings.TrimSpace(str))
		if err != nil || n <= 0 || n > MaxChannels {
			return Info{}, fmt.Errorf("%w: invalid channels %q", ErrInvalidAudioInfo, str)
		}
		info.Channels = n
	}

	if str, ok := args.Get(KeyChannelMap); ok {
		positions, err := ParseChannelMap(str)
		if err != nil {
			return Info{}, err
		}
		if info.Channels == 0 {
			info.Channels = len(positions)
		}
		if info.Channels != len(positions) {
			return Info{}, fmt.Errorf("%w: channels=%d does not match channel_map %q (%d entries)",
				ErrInvalidAudioInfo, info.Channels, str, len(positions))
		}
		info.Positions = positions
	} else {
		if info.Channels == 0 {
			info.Channels = defs.Channels
		}
		if info.Channels == len(defs.Positions) {
			info.Positions = append([]Channel(nil), defs.Positions...)
		} else {
			info.Positions = DefaultPositions(info.Channels)
		}
	}

	if err := info.Validate(); err != nil {
		return Info{}, err
	}

	for _, key := range []string{KeyFormat, KeyRate, KeyChannels, KeyChannelMap} {
		args.Delete(key)
	}
	return info, nil
}

// Validate checks the descriptor invariants.
func (i Info) Validate() error {
	if i.Format == FormatUnknown {
		return fmt.Errorf("%w: no sample format", ErrInvalidAudioInfo)
	}
	if i.Rate <= 0 {
		return fmt.Errorf("%w: no sample rate", ErrInvalidAudioInfo)
	}
	if i.Channels < 1 || i.Channels > MaxChannels {
		return fmt.Errorf("%w: %d channels", ErrInvalidAudioInfo, i.Channels)
	}
	if len(i.Positions) != i.Channels {
		return fmt.Errorf("%w: %d positions for %d channels", ErrInvalidAudioInfo, len(i.Positions), i.Channels)
	}
	return nil
}

// ToProps writes audio.channels and audio.position into p.
func (i Info) ToProps(p *props.Props) {
	p.Set(props.KeyAudioChannels, strconv.Itoa(i.Channels))
	p.Set(props.KeyAudioPosition, FormatPositions(i.Positions))
}

// BeepFormat converts the descriptor into a beep stream format.
func (i Info) BeepFormat() beep.Format {
	return beep.Format{
		SampleRate:  i.Rate,
		NumChannels: i.Channels,
		Precision:   i.Format.Width(),
	}
}

// String describes the descriptor, e.g. "F32LE 48000Hz 2ch [FL,FR]".
func (i Info) String() string {
	return fmt.Sprintf("%s %dHz %dch [%s]", i.Format, int(i.Rate), i.Channels, FormatPositions(i.Positions))
}
