package audioinfo

import (
	"fmt"
	"strconv"
	"strings"
)

// Channel identifies a speaker position.
type Channel uint32

// Channel positions. The numbering follows the graph server's enum; AUX
// channels occupy the range starting at ChannelAux0.
const (
	ChannelUnknown Channel = iota
	ChannelNA
	ChannelMono
	ChannelFL
	ChannelFR
	ChannelFC
	ChannelLFE
	ChannelSL
	ChannelSR
	ChannelFLC
	ChannelFRC
	ChannelRC
	ChannelRL
	ChannelRR
	ChannelTC
	ChannelTFL
	ChannelTFC
	ChannelTFR
	ChannelTRL
	ChannelTRC
	ChannelTRR
	ChannelRLC
	ChannelRRC
	ChannelFLW
	ChannelFRW
	ChannelLFE2
	ChannelFLH
	ChannelFCH
	ChannelFRH
	ChannelTFLC
	ChannelTFRC
	ChannelTSL
	ChannelTSR
	ChannelLLFE
	ChannelRLFE
	ChannelBC
	ChannelBLC
	ChannelBRC

	ChannelAux0 Channel = 0x1000
)

// MaxChannels is the largest channel count a raw audio descriptor can carry.
const MaxChannels = 64

var channelNames = [...]string{
	ChannelUnknown: "UNK",
	ChannelNA:      "NA",
	ChannelMono:    "MONO",
	ChannelFL:      "FL",
	ChannelFR:      "FR",
	ChannelFC:      "FC",
	ChannelLFE:     "LFE",
	ChannelSL:      "SL",
	ChannelSR:      "SR",
	ChannelFLC:     "FLC",
	ChannelFRC:     "FRC",
	ChannelRC:      "RC",
	ChannelRL:      "RL",
	ChannelRR:      "RR",
	ChannelTC:      "TC",
	ChannelTFL:     "TFL",
	ChannelTFC:     "TFC",
	ChannelTFR:     "TFR",
	ChannelTRL:     "TRL",
	ChannelTRC:     "TRC",
	ChannelTRR:     "TRR",
	ChannelRLC:     "RLC",
	ChannelRRC:     "RRC",
	ChannelFLW:     "FLW",
	ChannelFRW:     "FRW",
	ChannelLFE2:    "LFE2",
	ChannelFLH:     "FLH",
	ChannelFCH:     "FCH",
	ChannelFRH:     "FRH",
	ChannelTFLC:    "TFLC",
	ChannelTFRC:    "TFRC",
	ChannelTSL:     "TSL",
	ChannelTSR:     "TSR",
	ChannelLLFE:    "LLFE",
	ChannelRLFE:    "RLFE",
	ChannelBC:      "BC",
	ChannelBLC:     "BLC",
	ChannelBRC:     "BRC",
}

// Legacy long channel names and aliases accepted in channel_map.
var legacyChannelNames = map[string]Channel{
	"mono":                  ChannelMono,
	"left":                  ChannelFL,
	"right":                 ChannelFR,
	"center":                ChannelFC,
	"subwoofer":             ChannelLFE,
	"front-left":            ChannelFL,
	"front-right":           ChannelFR,
	"front-center":          ChannelFC,
	"rear-center":           ChannelRC,
	"rear-left":             ChannelRL,
	"rear-right":            ChannelRR,
	"lfe":                   ChannelLFE,
	"front-left-of-center":  ChannelFLC,
	"front-right-of-center": ChannelFRC,
	"side-left":             ChannelSL,
	"side-right":            ChannelSR,
	"top-center":            ChannelTC,
	"top-front-left":        ChannelTFL,
	"top-front-right":       ChannelTFR,
	"top-front-center":      ChannelTFC,
	"top-rear-left":         ChannelTRL,
	"top-rear-right":        ChannelTRR,
	"top-rear-center":       ChannelTRC,
}

// Named standard layouts accepted as a whole channel_map value.
var namedLayouts = map[string][]Channel{
	"mono":        {ChannelMono},
	"stereo":      {ChannelFL, ChannelFR},
	"surround-21": {ChannelFL, ChannelFR, ChannelLFE},
	"surround-40": {ChannelFL, ChannelFR, ChannelRL, ChannelRR},
	"surround-41": {ChannelFL, ChannelFR, ChannelRL, ChannelRR, ChannelLFE},
	"surround-50": {ChannelFL, ChannelFR, ChannelRL, ChannelRR, ChannelFC},
	"surround-51": {ChannelFL, ChannelFR, ChannelRL, ChannelRR, ChannelFC, ChannelLFE},
	"surround-71": {ChannelFL, ChannelFR, ChannelRL, ChannelRR, ChannelFC, ChannelLFE, ChannelSL, ChannelSR},
}

// Layouts used when only a channel count is known.
var countLayouts = map[int][]Channel{
	1: {ChannelMono},
	2: {ChannelFL, ChannelFR},
	3: {ChannelFL, ChannelFR, ChannelFC},
	4: {ChannelFL, ChannelFR, ChannelRL, ChannelRR},
	5: {ChannelFL, ChannelFR, ChannelFC, ChannelRL, ChannelRR},
	6: {ChannelFL, ChannelFR, ChannelFC, ChannelLFE, ChannelRL, ChannelRR},
	7: {ChannelFL, ChannelFR, ChannelFC, ChannelLFE, ChannelRC, ChannelSL, ChannelSR},
	8: {ChannelFL, ChannelFR, ChannelFC, ChannelLFE, ChannelRL, ChannelRR, ChannelSL, ChannelSR},
}

// String returns the canonical short name of the channel, e.g. "FL" or "AUX3".
func (c Channel) String() string {
	if c >= ChannelAux0 {
		return fmt.Sprintf("AUX%d", c-ChannelAux0)
	}
	if int(c) < len(channelNames) {
		return channelNames[c]
	}
	return "UNK"
}

// ParseChannel resolves a single channel name. Both the short names ("FL")
// and the legacy long names ("front-left", "aux0") are accepted.
func ParseChannel(name string) (Channel, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return ChannelUnknown, false
	}
	if c, ok := legacyChannelNames[strings.ToLower(name)]; ok {
		return c, true
	}
	upper := strings.ToUpper(name)
	if rest, ok := strings.CutPrefix(upper, "AUX"); ok {
		if n, err := strconv.Atoi(rest); err == nil && strconv.Itoa(n) == rest && n >= 0 && n < MaxChannels {
			return ChannelAux0 + Channel(n), true
		}
		return ChannelUnknown, false
	}
	for i, s := range channelNames {
		if s == upper && Channel(i) != ChannelUnknown {
			return Channel(i), true
		}
	}
	return ChannelUnknown, false
}

// ParseChannelMap parses a channel_map value: either a named layout or a
// comma separated list of channel names.
func ParseChannelMap(s string) ([]Channel, error) {
	s = strings.TrimSpace(s)
	if layout, ok := namedLayouts[strings.ToLower(s)]; ok {
		return append([]Channel(nil), layout...), nil
	}
	if s == "" {
		return nil, fmt.Errorf("%w: empty channel map", ErrInvalidAudioInfo)
	}

	names := strings.Split(s, ",")
	if len(names) > MaxChannels {
		return nil, fmt.Errorf("%w: channel map has %d entries, max %d", ErrInvalidAudioInfo, len(names), MaxChannels)
	}
	positions := make([]Channel, 0, len(names))
	for _, name := range names {
		c, ok := ParseChannel(name)
		if !ok {
			return nil, fmt.Errorf("%w: unknown channel %q", ErrInvalidAudioInfo, name)
		}
		positions = append(positions, c)
	}
	return positions, nil
}

// DefaultPositions returns the standard layout for a channel count, falling
// back to AUX channels for counts without one.
func DefaultPositions(channels int) []Channel {
	if layout, ok := countLayouts[channels]; ok {
		return append([]Channel(nil), layout...)
	}
	positions := make([]Channel, channels)
	for i := range positions {
		positions[i] = ChannelAux0 + Channel(i)
	}
	return positions
}

// FormatPositions joins channel names with commas, e.g. "FL,FR".
func FormatPositions(positions []Channel) string {
	names := make([]string, len(positions))
	for i, c := range positions {
		names[i] = c.String()
	}
	return strings.Join(names, ",")
}
