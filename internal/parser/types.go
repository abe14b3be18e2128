package parser

import (
	"strings"

	"sharpcheck/internal/syntax"
)

// parseType parses a type reference: predefined, qualified, generic, tuple, nullable, array or pointer.
func (p *parser) parseType() *syntax.TypeRef {
	start := p.tok().Start
	var t *syntax.TypeRef

	switch {
	case p.is("("):
		t = p.parseTupleType()
	case p.tok().Kind == TokKeyword && predefinedTypes[p.tok().Text]:
		t = &syntax.TypeRef{Name: p.advance().Text}
	case p.isIdent():
		t = p.parseNamedType()
	default:
		p.failf("expected type, found %s", describe(p.tok()))
	}

	for {
		switch {
		case p.is("?") && !p.peekIs(1, ".") && !p.peekIs(1, "["):
			p.advance()
			t.Nullable = true
		case p.is("*"):
			p.advance()
			t.Pointer = true
		case p.is("[") && (p.peekIs(1, "]") || p.peekIs(1, ",")):
			p.advance()
			for p.accept(",") {
			}
			p.expect("]")
			t.Rank++
		default:
			t.Span = p.span(start)
			return t
		}
	}
}

func (p *parser) parseNamedType() *syntax.TypeRef {
	t := &syntax.TypeRef{}
	var parts []string
	first := p.expectIdent().Text
	if p.accept("::") {
		// global::System.String
		first = p.expectIdent().Text
	}
	parts = append(parts, first)
	for {
		if p.is("<") {
			t.Args = p.parseTypeArgs()
		}
		if p.is(".") && p.peek(1).Kind == TokIdent {
			p.advance()
			parts = append(parts, p.advance().Text)
			continue
		}
		break
	}
	t.Name = strings.Join(parts, ".")
	return t
}

func (p *parser) parseTupleType() *syntax.TypeRef {
	p.expect("(")
	t := &syntax.TypeRef{Name: "(tuple)"}
	for {
		elem := p.parseType()
		name := ""
		if p.isIdent() {
			name = p.advance().Text
		}
		t.Args = append(t.Args, elem)
		t.TupleNames = append(t.TupleNames, name)
		if !p.accept(",") {
			break
		}
	}
	p.expect(")")
	if len(t.Args) < 2 {
		p.failf("tuple type needs at least two elements")
	}
	return t
}

// parseTypeArgs parses `<T, U>`; unbound forms like `<,>` yield empty entries.
func (p *parser) parseTypeArgs() []*syntax.TypeRef {
	p.expect("<")
	var args []*syntax.TypeRef
	for {
		if p.is(",") || p.is(">") {
			args = append(args, &syntax.TypeRef{})
		} else {
			args = append(args, p.parseType())
		}
		if !p.accept(",") {
			break
		}
	}
	p.expect(">")
	return args
}

// typeArgFollowers are tokens that may follow a generic name in an expression.
var typeArgFollowers = map[string]bool{
	"(": true, ")": true, "]": true, "}": true, ":": true, ";": true, ",": true, ".": true,
	"?": true, "==": true, "!=": true, "|": true, "^": true, "&&": true, "||": true, "&": true,
	"[": true, "?.": true, "=>": true,
}

// tryTypeArgsInExpr speculatively parses type arguments after a name in expression context.
func (p *parser) tryTypeArgsInExpr() ([]*syntax.TypeRef, bool) {
	var args []*syntax.TypeRef
	mark := p.pos
	ok := p.try(func() { args = p.parseTypeArgs() })
	if !ok {
		return nil, false
	}
	t := p.tok()
	if t.Kind == TokEOF || (t.Kind == TokPunct && typeArgFollowers[t.Text]) {
		return args, true
	}
	p.pos = mark
	return nil, false
}

// isTypeThenIdent reports whether a type followed by an identifier starts at the current token.
func (p *parser) isTypeThenIdent() bool {
	mark := p.pos
	defer func() { p.pos = mark }()
	ok := p.try(func() { p.parseType() })
	return ok && p.isIdent()
}
