// Package parser reads the schema language into a schema.Document.
//
// The grammar is small:
//
//	namespace <scope> <value>
//	enum <Name> { <Symbol> [= <int>] ... }
//	struct|union <Name> { <id>: [required|optional] <type> <name> [= <default>] ... }
//
// where <type> is a primitive, a declared name, or map<K,V>, list<T>, set<T>
// nested to any depth. Members may be separated by ',' or ';'.
package parser

import (
	"fmt"
	"math"
	"strconv"

	"github.com/anirudhraja/thriftlite/schema"
)

// SyntaxError reports malformed schema source.
type SyntaxError struct {
	Line int
	Msg  string
}

// Error implements the error interface.
func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

// Parse parses schema source into a new document.
func Parse(src string) (*schema.Document, error) {
	tokens, err := Tokenize(src)
	if err != nil {
		return nil, err
	}
	p := &Parser{tokens: tokens, doc: schema.NewDocument()}
	if err := p.parseDocument(); err != nil {
		return nil, err
	}
	return p.doc, nil
}

// Parser is a recursive-descent parser over a token slice.
type Parser struct {
	tokens []Token
	pos    int
	doc    *schema.Document
}

func (p *Parser) peek() Token {
	return p.tokens[p.pos]
}

func (p *Parser) next() Token {
	t := p.tokens[p.pos]
	if t.Type != TokenEOF {
		p.pos++
	}
	return t
}

func (p *Parser) errorf(t Token, format string, args ...any) error {
	return &SyntaxError{Line: t.Line, Msg: fmt.Sprintf(format, args...)}
}

func (p *Parser) expect(types ...TokenType) (Token, error) {
	t := p.next()
	for _, typ := range types {
		if t.Type == typ {
			return t, nil
		}
	}
	if t.Type == TokenEOF {
		return t, p.errorf(t, "unexpected end of input, expected %v", types[0])
	}
	return t, p.errorf(t, "expected %v, got %q", types[0], t.Value)
}

// skipSeparators consumes any ',' or ';' between members.
func (p *Parser) skipSeparators() {
	for {
		switch p.peek().Type {
		case TokenComma, TokenSemi:
			p.next()
		default:
			return
		}
	}
}

func (p *Parser) parseDocument() error {
	for {
		p.skipSeparators()
		t, err := p.expect(TokenIdent, TokenEOF)
		if err != nil {
			return err
		}
		switch t.Value {
		case "":
			return nil
		case "namespace":
			err = p.parseNamespace()
		case "enum":
			err = p.parseEnum()
		case "struct":
			err = p.parseObject(schema.KindStruct)
		case "union":
			err = p.parseObject(schema.KindUnion)
		default:
			return p.errorf(t, "unknown token: %s", t.Value)
		}
		if err != nil {
			return err
		}
	}
}

func (p *Parser) parseNamespace() error {
	scope, err := p.expect(TokenIdent)
	if err != nil {
		return err
	}
	value, err := p.expect(TokenIdent, TokenString)
	if err != nil {
		return err
	}
	p.doc.Namespaces = append(p.doc.Namespaces, &schema.Namespace{Scope: scope.Value, Value: value.Value})
	return nil
}

func (p *Parser) addDecl(t Token, decl schema.Decl) error {
	if err := p.doc.Add(decl); err != nil {
		return p.errorf(t, "%v", err)
	}
	return nil
}

func (p *Parser) parseEnum() error {
	name, err := p.expect(TokenIdent)
	if err != nil {
		return err
	}
	e := &schema.Enum{Name: name.Value}
	if err := p.addDecl(name, e); err != nil {
		return err
	}
	if _, err := p.expect(TokenLBrace); err != nil {
		return err
	}

	next := int64(0)
	for {
		p.skipSeparators()
		t, err := p.expect(TokenRBrace, TokenIdent)
		if err != nil {
			return err
		}
		if t.Type == TokenRBrace {
			return nil
		}

		value := next
		if p.peek().Type == TokenEqual {
			p.next()
			lit, err := p.expect(TokenInt)
			if err != nil {
				return err
			}
			value, err = parseInt(lit)
			if err != nil {
				return err
			}
		}
		if value < math.MinInt32 || value > math.MaxInt32 {
			return p.errorf(t, "enum value %d out of range for %s", value, t.Value)
		}
		e.Members = append(e.Members, &schema.EnumMember{Name: t.Value, Value: int32(value)})
		next = value + 1
	}
}

func (p *Parser) parseObject(kind schema.ObjectKind) error {
	name, err := p.expect(TokenIdent)
	if err != nil {
		return err
	}
	o := &schema.Object{Name: name.Value, Kind: kind}
	if err := p.addDecl(name, o); err != nil {
		return err
	}
	if _, err := p.expect(TokenLBrace); err != nil {
		return err
	}

	for {
		p.skipSeparators()
		t, err := p.expect(TokenRBrace, TokenInt)
		if err != nil {
			return err
		}
		if t.Type == TokenRBrace {
			return nil
		}
		f, err := p.parseField(t)
		if err != nil {
			return err
		}
		o.Fields = append(o.Fields, f)
	}
}

func (p *Parser) parseField(idToken Token) (*schema.Field, error) {
	id, err := parseInt(idToken)
	if err != nil {
		return nil, err
	}
	if id < math.MinInt16 || id > math.MaxInt16 {
		return nil, p.errorf(idToken, "field id %d out of range", id)
	}
	if _, err := p.expect(TokenColon); err != nil {
		return nil, err
	}

	f := &schema.Field{ID: int16(id)}
	if q := p.peek(); q.Type == TokenIdent {
		switch q.Value {
		case "required":
			f.Required = true
			p.next()
		case "optional":
			p.next()
		}
	}

	if f.Type, err = p.parseType(); err != nil {
		return nil, err
	}
	fieldName, err := p.expect(TokenIdent)
	if err != nil {
		return nil, err
	}
	f.Name = fieldName.Value

	if p.peek().Type == TokenEqual {
		p.next()
		lit, err := p.expect(TokenInt, TokenFloat, TokenString)
		if err != nil {
			return nil, err
		}
		if f.Default, err = parseLiteral(lit); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func (p *Parser) parseType() (schema.TypeRef, error) {
	t, err := p.expect(TokenIdent)
	if err != nil {
		return schema.TypeRef{}, err
	}
	ref := schema.Ref(t.Value)
	if p.peek().Type != TokenLAngle {
		return ref, nil
	}
	p.next()

	for {
		inner, err := p.parseType()
		if err != nil {
			return schema.TypeRef{}, err
		}
		ref.Inner = append(ref.Inner, inner)

		sep, err := p.expect(TokenRAngle, TokenComma)
		if err != nil {
			return schema.TypeRef{}, err
		}
		if sep.Type == TokenRAngle {
			return ref, nil
		}
	}
}

func parseInt(t Token) (int64, error) {
	v, err := strconv.ParseInt(t.Value, 0, 64)
	if err != nil {
		return 0, &SyntaxError{Line: t.Line, Msg: fmt.Sprintf("invalid integer %q", t.Value)}
	}
	return v, nil
}

func parseLiteral(t Token) (*schema.Literal, error) {
	switch t.Type {
	case TokenInt:
		v, err := parseInt(t)
		if err != nil {
			return nil, err
		}
		return schema.IntLiteral(v), nil
	case TokenFloat:
		v, err := strconv.ParseFloat(t.Value, 64)
		if err != nil {
			return nil, &SyntaxError{Line: t.Line, Msg: fmt.Sprintf("invalid float %q", t.Value)}
		}
		return &schema.Literal{Kind: schema.LiteralFloat, Float: v}, nil
	default:
		return schema.StringLiteral(t.Value), nil
	}
}
