package graph

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// TokenType represents the type of a lexical token
type TokenType int

const (
	TokenError TokenType = iota
	TokenEOF

	TokenString // "quoted"
	TokenBare   // unquoted word: keys, null, numbers, identifiers

	TokenEqual    // = or :
	TokenComma    // ,
	TokenLBrace   // {
	TokenRBrace   // }
	TokenLBracket // [
	TokenRBracket // ]
)

// Token represents a lexical token
type Token struct {
	Type    TokenType
	Literal string
	Line    int
	Col     int
}

func (t Token) String() string {
	switch t.Type {
	case TokenEOF:
		return "EOF"
	case TokenError:
		return fmt.Sprintf("Error(%s)", t.Literal)
	}
	if len(t.Literal) > 20 {
		return fmt.Sprintf("%q...", t.Literal[:20])
	}
	return fmt.Sprintf("%q", t.Literal)
}

// Lexer splits a document into tokens
type Lexer struct {
	input string
	pos   int
	line  int
	col   int
}

func NewLexer(input string) *Lexer {
	return &Lexer{input: input, line: 1}
}

// NextToken returns the next token in the stream
func (l *Lexer) NextToken() Token {
	l.skipWhitespaceAndComments()

	if l.pos >= len(l.input) {
		return l.token(TokenEOF, "", l.line, l.col)
	}

	line, col := l.line, l.col
	ch := l.input[l.pos]
	switch ch {
	case '=', ':':
		l.advance()
		return l.token(TokenEqual, string(ch), line, col)
	case ',':
		l.advance()
		return l.token(TokenComma, ",", line, col)
	case '{':
		l.advance()
		return l.token(TokenLBrace, "{", line, col)
	case '}':
		l.advance()
		return l.token(TokenRBrace, "}", line, col)
	case '[':
		l.advance()
		return l.token(TokenLBracket, "[", line, col)
	case ']':
		l.advance()
		return l.token(TokenRBracket, "]", line, col)
	case '"':
		return l.readString(line, col)
	}
	return l.readBare(line, col)
}

func (l *Lexer) token(typ TokenType, literal string, line, col int) Token {
	return Token{Type: typ, Literal: literal, Line: line, Col: col}
}

func (l *Lexer) advance() rune {
	if l.pos >= len(l.input) {
		return 0
	}
	r, w := utf8.DecodeRuneInString(l.input[l.pos:])
	l.pos += w
	if r == '\n' {
		l.line++
		l.col = 0
	} else {
		l.col++
	}
	return r
}

func (l *Lexer) skipWhitespaceAndComments() {
	for l.pos < len(l.input) {
		switch c := l.input[l.pos]; {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			l.advance()
		case c == '#':
			for l.pos < len(l.input) && l.input[l.pos] != '\n' {
				l.advance()
			}
		default:
			return
		}
	}
}

func (l *Lexer) readString(line, col int) Token {
	l.advance() // opening quote

	var sb strings.Builder
	for l.pos < len(l.input) {
		start := l.pos
		r := l.advance()
		switch r {
		case '"':
			return l.token(TokenString, sb.String(), line, col)
		case '\\':
			if l.pos >= len(l.input) {
				return l.token(TokenError, "unterminated escape", line, col)
			}
			esc := l.advance()
			switch esc {
			case '"', '\\', '/':
				sb.WriteRune(esc)
			case 'b':
				sb.WriteByte('\b')
			case 'f':
				sb.WriteByte('\f')
			case 'n':
				sb.WriteByte('\n')
			case 'r':
				sb.WriteByte('\r')
			case 't':
				sb.WriteByte('\t')
			case 'u':
				if l.pos+4 > len(l.input) {
					return l.token(TokenError, "short \\u escape", line, col)
				}
				code, err := strconv.ParseUint(l.input[l.pos:l.pos+4], 16, 32)
				if err != nil {
					return l.token(TokenError, "invalid \\u escape", line, col)
				}
				for i := 0; i < 4; i++ {
					l.advance()
				}
				sb.WriteRune(rune(code))
			default:
				sb.WriteRune(esc)
			}
		default:
			// raw bytes, so invalid UTF-8 survives unchanged
			sb.WriteString(l.input[start:l.pos])
		}
	}
	return l.token(TokenError, "unterminated string", line, col)
}

func (l *Lexer) readBare(line, col int) Token {
	start := l.pos
	for l.pos < len(l.input) && !isDelimiter(l.input[l.pos]) {
		l.advance()
	}
	if l.pos == start {
		l.advance()
		return l.token(TokenError, fmt.Sprintf("unexpected character %q", l.input[start]), line, col)
	}
	return l.token(TokenBare, l.input[start:l.pos], line, col)
}

func isDelimiter(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '=', ':', ',', '{', '}', '[', ']', '"', '#':
		return true
	}
	return false
}
