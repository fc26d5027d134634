// Package graph renders and reads the filter-chain configuration document
// handed to the graph server's filter-chain module.
package graph

import (
	"fmt"
	"strings"
)

// Kind classifies a property value by its textual shape.
type Kind int

const (
	KindNull       Kind = iota // absent, or the literal null
	KindNumeric                // decimal number, rendered verbatim
	KindStructured             // starts with { or [, rendered verbatim
	KindText                   // anything else, rendered as a quoted string
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindNumeric:
		return "numeric"
	case KindStructured:
		return "structured"
	default:
		return "text"
	}
}

// Value is a classified scalar ready for rendering.
type Value struct {
	Kind Kind
	Text string
}

// Classify inspects a property value once and records how it renders.
// A nil pointer means the value is absent.
func Classify(v *string) Value {
	if v == nil {
		return Value{Kind: KindNull}
	}
	s := *v
	switch {
	case s == "null":
		return Value{Kind: KindNull, Text: s}
	case isNumber(s):
		return Value{Kind: KindNumeric, Text: s}
	case strings.HasPrefix(s, "{") || strings.HasPrefix(s, "["):
		return Value{Kind: KindStructured, Text: s}
	default:
		return Value{Kind: KindText, Text: s}
	}
}

// ClassifyString classifies a present value.
func ClassifyString(s string) Value {
	return Classify(&s)
}

// Render returns the document form of the value.
func (v Value) Render() string {
	switch v.Kind {
	case KindNull:
		return "null"
	case KindNumeric, KindStructured:
		return v.Text
	default:
		return Quote(v.Text)
	}
}

// isNumber reports whether s is a decimal number: an optional minus sign,
// digits, an optional fraction and an optional exponent.
func isNumber(s string) bool {
	i := 0
	if i < len(s) && (s[i] == '-' || s[i] == '+') {
		i++
	}
	digits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && isDigit(s[i]) {
			i++
			digits++
		}
	}
	if digits == 0 {
		return false
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		i++
		if i < len(s) && (s[i] == '-' || s[i] == '+') {
			i++
		}
		exp := 0
		for i < len(s) && isDigit(s[i]) {
			i++
			exp++
		}
		if exp == 0 {
			return false
		}
	}
	return i == len(s)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// Quote renders s as a double quoted string with JSON escapes. Bytes other
// than quotes, backslashes and control characters are copied as they are.
func Quote(s string) string {
	var sb strings.Builder
	sb.Grow(len(s) + 2)
	sb.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		case '\b':
			sb.WriteString(`\b`)
		case '\f':
			sb.WriteString(`\f`)
		default:
			if c < 0x20 {
				fmt.Fprintf(&sb, `\u%04x`, c)
			} else {
				sb.WriteByte(c)
			}
		}
	}
	sb.WriteByte('"')
	return sb.String()
}
