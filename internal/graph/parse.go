package graph

import (
	"errors"
	"fmt"
)

// ErrSyntax is returned by Parse for documents that are not well formed.
var ErrSyntax = errors.New("document syntax error")

// Bare is an unquoted word such as null, ladspa or 48000.
type Bare string

// Member is one key/value pair of an Object.
type Member struct {
	Key   string
	Value any
}

// Object is an ordered set of members. Values are Object, Array, string
// (quoted in the source) or Bare.
type Object struct {
	Members []Member
}

// Array is a list of values.
type Array []any

// Get returns the last value stored under key.
func (o *Object) Get(key string) (any, bool) {
	for i := len(o.Members) - 1; i >= 0; i-- {
		if o.Members[i].Key == key {
			return o.Members[i].Value, true
		}
	}
	return nil, false
}

// Object returns the member under key if it is an object.
func (o *Object) Object(key string) (*Object, bool) {
	v, ok := o.Get(key)
	if !ok {
		return nil, false
	}
	obj, ok := v.(*Object)
	return obj, ok
}

// Array returns the member under key if it is an array.
func (o *Object) Array(key string) (Array, bool) {
	v, ok := o.Get(key)
	if !ok {
		return nil, false
	}
	arr, ok := v.(Array)
	return arr, ok
}

// String returns the textual form of a scalar member.
func (o *Object) String(key string) (string, bool) {
	v, ok := o.Get(key)
	if !ok {
		return "", false
	}
	return Text(v)
}

// Text returns the text of a scalar value (quoted string or bare word).
func Text(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case Bare:
		return string(s), true
	}
	return "", false
}

// Parser builds a value tree from tokens
type Parser struct {
	lexer     *Lexer
	curToken  Token
	peekToken Token
}

func NewParser(input string) *Parser {
	p := &Parser{lexer: NewLexer(input)}
	p.nextToken()
	p.nextToken()
	return p
}

// Parse reads a complete document whose root must be an object.
func Parse(input string) (*Object, error) {
	p := NewParser(input)
	if p.curToken.Type != TokenLBrace {
		return nil, p.errorf("expected '{' at start of document, got %s", p.curToken)
	}
	v, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	if p.curToken.Type != TokenEOF {
		return nil, p.errorf("unexpected %s after document", p.curToken)
	}
	return v.(*Object), nil
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.lexer.NextToken()
}

func (p *Parser) errorf(format string, args ...any) error {
	return fmt.Errorf("%w: line %d col %d: %s", ErrSyntax, p.curToken.Line, p.curToken.Col, fmt.Sprintf(format, args...))
}

func (p *Parser) parseValue() (any, error) {
	switch p.curToken.Type {
	case TokenLBrace:
		return p.parseObject()
	case TokenLBracket:
		return p.parseArray()
	case TokenString:
		s := p.curToken.Literal
		p.nextToken()
		return s, nil
	case TokenBare:
		s := Bare(p.curToken.Literal)
		p.nextToken()
		return s, nil
	case TokenError:
		return nil, p.errorf("%s", p.curToken.Literal)
	default:
		return nil, p.errorf("unexpected %s", p.curToken)
	}
}

func (p *Parser) parseObject() (*Object, error) {
	p.nextToken() // consume {
	obj := &Object{}
	for {
		switch p.curToken.Type {
		case TokenRBrace:
			p.nextToken()
			return obj, nil
		case TokenComma:
			p.nextToken()
			continue
		case TokenString, TokenBare:
		case TokenEOF:
			return nil, p.errorf("unterminated object")
		default:
			return nil, p.errorf("expected key, got %s", p.curToken)
		}

		key := p.curToken.Literal
		p.nextToken()
		if p.curToken.Type == TokenEqual {
			p.nextToken()
		}
		value, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		obj.Members = append(obj.Members, Member{Key: key, Value: value})
	}
}

func (p *Parser) parseArray() (Array, error) {
	p.nextToken() // consume [
	arr := Array{}
	for {
		switch p.curToken.Type {
		case TokenRBracket:
			p.nextToken()
			return arr, nil
		case TokenComma:
			p.nextToken()
			continue
		case TokenEOF:
			return nil, p.errorf("unterminated array")
		}

		value, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		arr = append(arr, value)
	}
}
