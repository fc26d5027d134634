package audioinfo

import "strings"

// SampleFormat is the raw sample encoding tag.
type SampleFormat int

const (
	FormatUnknown SampleFormat = iota
	FormatU8
	FormatALaw
	FormatULaw
	FormatS16LE
	FormatS16BE
	FormatF32LE
	FormatF32BE
	FormatS32LE
	FormatS32BE
	FormatS24LE
	FormatS24BE
	FormatS24_32LE
	FormatS24_32BE
)

type formatDesc struct {
	tag    string // graph server tag
	legacy string // name accepted in the format argument
	width  int    // bytes per sample
}

var formats = map[SampleFormat]formatDesc{
	FormatU8:       {"U8", "u8", 1},
	FormatALaw:     {"ALAW", "aLaw", 1},
	FormatULaw:     {"ULAW", "uLaw", 1},
	FormatS16LE:    {"S16LE", "s16le", 2},
	FormatS16BE:    {"S16BE", "s16be", 2},
	FormatF32LE:    {"F32LE", "float32le", 4},
	FormatF32BE:    {"F32BE", "float32be", 4},
	FormatS32LE:    {"S32LE", "s32le", 4},
	FormatS32BE:    {"S32BE", "s32be", 4},
	FormatS24LE:    {"S24LE", "s24le", 3},
	FormatS24BE:    {"S24BE", "s24be", 3},
	FormatS24_32LE: {"S24_32LE", "s24-32le", 4},
	FormatS24_32BE: {"S24_32BE", "s24-32be", 4},
}

// Native-endian aliases; the host is assumed little endian.
var formatAliases = map[string]SampleFormat{
	"s16":       FormatS16LE,
	"s16ne":     FormatS16LE,
	"float32":   FormatF32LE,
	"float32ne": FormatF32LE,
	"s32":       FormatS32LE,
	"s32ne":     FormatS32LE,
	"s24":       FormatS24LE,
	"s24ne":     FormatS24LE,
	"s24-32":    FormatS24_32LE,
	"s24-32ne":  FormatS24_32LE,
}

// ParseSampleFormat resolves a legacy format name such as "s16le" or
// "float32". Matching is case-insensitive.
func ParseSampleFormat(name string) (SampleFormat, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if f, ok := formatAliases[name]; ok {
		return f, true
	}
	for f, d := range formats {
		if strings.ToLower(d.legacy) == name || strings.ToLower(d.tag) == name {
			return f, true
		}
	}
	return FormatUnknown, false
}

// String returns the graph server tag, e.g. "S16LE".
func (f SampleFormat) String() string {
	if d, ok := formats[f]; ok {
		return d.tag
	}
	return "UNKNOWN"
}

// LegacyName returns the name used in module arguments, e.g. "s16le".
func (f SampleFormat) LegacyName() string {
	if d, ok := formats[f]; ok {
		return d.legacy
	}
	return "invalid"
}

// Width returns the number of bytes per sample, or 0 for unknown formats.
func (f SampleFormat) Width() int {
	return formats[f].width
}
