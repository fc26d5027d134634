package props

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedArgument is returned when an argument string cannot be split
// into key=value pairs.
var ErrMalformedArgument = errors.New("malformed module argument")

// Update parses a legacy argument string of the form
//
//	key=value key2="value with spaces" key3='single quoted'
//
// and stores every pair in p. Later occurrences of a key replace earlier ones.
// Inside quotes a backslash escapes the following character.
func (p *Props) Update(argument string) error {
	pairs, err := splitArgs(argument)
	if err != nil {
		return err
	}
	for _, it := range pairs {
		p.Set(it.Key, it.Value)
	}
	return nil
}

func splitArgs(s string) ([]Item, error) {
	var items []Item
	pos := 0
	for {
		pos = skipSpace(s, pos)
		if pos >= len(s) {
			return items, nil
		}

		start := pos
		for pos < len(s) && s[pos] != '=' && !isSpace(s[pos]) {
			pos++
		}
		key := s[start:pos]
		if pos >= len(s) || s[pos] != '=' {
			return nil, fmt.Errorf("%w: %q has no value at offset %d", ErrMalformedArgument, key, start)
		}
		if key == "" {
			return nil, fmt.Errorf("%w: empty key at offset %d", ErrMalformedArgument, start)
		}
		pos++ // '='

		var value string
		if pos < len(s) && (s[pos] == '"' || s[pos] == '\'') {
			var err error
			value, pos, err = readQuoted(s, pos)
			if err != nil {
				return nil, fmt.Errorf("%w: value of %q: %v", ErrMalformedArgument, key, err)
			}
			if pos < len(s) && !isSpace(s[pos]) {
				return nil, fmt.Errorf("%w: value of %q: unexpected %q after closing quote", ErrMalformedArgument, key, s[pos])
			}
		} else {
			vs := pos
			for pos < len(s) && !isSpace(s[pos]) {
				pos++
			}
			value = s[vs:pos]
		}

		items = append(items, Item{Key: key, Value: value})
	}
}

// readQuoted reads a quoted value starting at the opening quote and returns
// the unescaped value and the position after the closing quote.
func readQuoted(s string, pos int) (string, int, error) {
	quote := s[pos]
	open := pos
	pos++

	var sb strings.Builder
	for pos < len(s) {
		c := s[pos]
		switch {
		case c == '\\':
			if pos+1 >= len(s) {
				return "", pos, fmt.Errorf("dangling escape at offset %d", pos)
			}
			sb.WriteByte(s[pos+1])
			pos += 2
		case c == quote:
			return sb.String(), pos + 1, nil
		default:
			sb.WriteByte(c)
			pos++
		}
	}
	return "", pos, fmt.Errorf("unterminated %c quote opened at offset %d", quote, open)
}

func skipSpace(s string, pos int) int {
	for pos < len(s) && isSpace(s[pos]) {
		pos++
	}
	return pos
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
