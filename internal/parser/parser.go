// Package parser implements a recursive-descent parser for the C# subset analyzed by sharpcheck.
package parser

import (
	"fmt"

	"sharpcheck/internal/syntax"
)

// bailout is raised to abandon a parse at the first error.
type bailout struct{ err *ParseError }

type parser struct {
	src    string
	tokens []Token
	pos    int
}

// Parse parses one source file.
func Parse(source string) (*syntax.CompilationUnit, error) {
	cu, _, err := ParseWithSpans(source)
	return cu, err
}

// ParseWithSpans parses one source file and returns the declaration span table alongside the AST.
func ParseWithSpans(source string) (cu *syntax.CompilationUnit, spans syntax.SpanTable, err error) {
	tokens, nullable, lexErr := Lex(source)
	if lexErr != nil {
		return nil, nil, lexErr
	}
	p := &parser{src: source, tokens: tokens}
	defer func() {
		if r := recover(); r != nil {
			b, ok := r.(bailout)
			if !ok {
				panic(r)
			}
			cu, spans, err = nil, nil, b.err
		}
	}()
	cu = p.parseCompilationUnit()
	cu.NullableEnabled = nullable
	return cu, BuildSpanTable(cu), nil
}

// token helpers

func (p *parser) tok() Token { return p.tokens[p.pos] }

func (p *parser) peek(n int) Token {
	if p.pos+n < len(p.tokens) {
		return p.tokens[p.pos+n]
	}
	return p.tokens[len(p.tokens)-1]
}

func (p *parser) advance() Token {
	t := p.tokens[p.pos]
	if t.Kind != TokEOF {
		p.pos++
	}
	return t
}

// prevEnd is the end offset of the last consumed token.
func (p *parser) prevEnd() int {
	if p.pos == 0 {
		return 0
	}
	return p.tokens[p.pos-1].End
}

func (p *parser) atEOF() bool { return p.tok().Kind == TokEOF }

// is reports whether the current token is the punctuator or keyword text.
func (p *parser) is(text string) bool {
	t := p.tok()
	return (t.Kind == TokPunct || t.Kind == TokKeyword) && t.Text == text
}

func (p *parser) peekIs(n int, text string) bool {
	t := p.peek(n)
	return (t.Kind == TokPunct || t.Kind == TokKeyword) && t.Text == text
}

// isWord reports whether the current token is the contextual keyword text.
func (p *parser) isWord(text string) bool {
	t := p.tok()
	return t.Kind == TokIdent && t.Text == text
}

func (p *parser) isIdent() bool { return p.tok().Kind == TokIdent }

func (p *parser) accept(text string) bool {
	if p.is(text) {
		p.advance()
		return true
	}
	return false
}

func (p *parser) expect(text string) Token {
	if !p.is(text) {
		p.failf("expected %q, found %s", text, describe(p.tok()))
	}
	return p.advance()
}

func (p *parser) expectIdent() Token {
	if !p.isIdent() {
		p.failf("expected identifier, found %s", describe(p.tok()))
	}
	return p.advance()
}

// adjacent reports whether tokens i and i+1 (relative to pos) touch with no whitespace.
func (p *parser) adjacent(i int) bool {
	return p.peek(i).End == p.peek(i+1).Start
}

func describe(t Token) string {
	if t.Kind == TokEOF {
		return "end of file"
	}
	return fmt.Sprintf("%s %q", t.Kind, t.Text)
}

func (p *parser) failf(format string, args ...any) {
	panic(bailout{newParseError(p.src, p.tok().Start, format, args...)})
}

// try runs fn speculatively; on failure the position is restored and false returned.
func (p *parser) try(fn func()) (ok bool) {
	mark := p.pos
	defer func() {
		if r := recover(); r != nil {
			if _, isBail := r.(bailout); !isBail {
				panic(r)
			}
			p.pos = mark
			ok = false
		}
	}()
	fn()
	return true
}

// skipBalanced consumes a bracketed group starting at the current open token.
func (p *parser) skipBalanced(open, close string) {
	p.expect(open)
	depth := 1
	for depth > 0 {
		if p.atEOF() {
			p.failf("unbalanced %q", open)
		}
		switch {
		case p.is(open):
			depth++
		case p.is(close):
			depth--
		}
		p.advance()
	}
}

func (p *parser) span(start int) syntax.Span {
	return syntax.Span{Start: start, End: p.prevEnd()}
}

// compilation unit and namespaces

func (p *parser) parseCompilationUnit() *syntax.CompilationUnit {
	cu := &syntax.CompilationUnit{}
	for !p.atEOF() {
		switch {
		case p.is("extern") && p.peek(1).Text == "alias":
			for !p.is(";") && !p.atEOF() {
				p.advance()
			}
			p.expect(";")
		case p.isUsingDirective():
			cu.Usings = append(cu.Usings, p.parseUsingDirective())
		case p.is("[") && p.isGlobalAttribute():
			cu.Attributes = append(cu.Attributes, p.parseAttributes()...)
		case p.is("namespace"):
			ns := p.parseNamespace()
			if ns.FileScoped {
				if cu.FileScopedNamespace != nil {
					p.failf("multiple file-scoped namespaces")
				}
				cu.FileScopedNamespace = ns
				continue
			}
			cu.Members = append(cu.Members, ns)
		default:
			decl := p.parseTypeLevelDecl()
			if cu.FileScopedNamespace != nil {
				cu.FileScopedNamespace.Members = append(cu.FileScopedNamespace.Members, decl)
				cu.FileScopedNamespace.End = decl.Bounds().End
			} else {
				cu.Members = append(cu.Members, decl)
			}
		}
	}
	cu.Span = syntax.Span{Start: 0, End: len(p.src)}
	return cu
}

func (p *parser) isUsingDirective() bool {
	if p.isWord("global") && p.peekIs(1, "using") {
		return true
	}
	// `using (` and `using var` are statements, never seen at namespace level
	return p.is("using") && !p.peekIs(1, "(")
}

func (p *parser) isGlobalAttribute() bool {
	t := p.peek(1)
	return (t.Text == "assembly" || t.Text == "module") && p.peekIs(2, ":")
}

func (p *parser) parseUsingDirective() *syntax.UsingDirective {
	start := p.tok().Start
	u := &syntax.UsingDirective{}
	if p.isWord("global") {
		p.advance()
		u.Global = true
	}
	p.expect("using")
	if p.accept("static") {
		u.Static = true
	}
	if p.isIdent() && p.peekIs(1, "=") {
		u.Alias = p.advance().Text
		p.advance()
		u.Name = p.parseType().String()
	} else {
		u.Name = p.parseQualifiedName()
	}
	p.expect(";")
	u.Span = p.span(start)
	return u
}

// parseQualifiedName parses `A.B.C` including an optional `global::` prefix.
func (p *parser) parseQualifiedName() string {
	name := p.expectIdent().Text
	if p.accept("::") {
		name = p.expectIdent().Text
	}
	for p.is(".") && p.peek(1).Kind == TokIdent {
		p.advance()
		name += "." + p.advance().Text
	}
	return name
}

func (p *parser) parseNamespace() *syntax.NamespaceDecl {
	start := p.tok().Start
	p.expect("namespace")
	nameStart := p.tok().Start
	ns := &syntax.NamespaceDecl{Name: p.parseQualifiedName()}
	ns.NameSpan = p.span(nameStart)
	if p.accept(";") {
		ns.FileScoped = true
		ns.Span = p.span(start)
		return ns
	}
	p.expect("{")
	for !p.is("}") {
		if p.atEOF() {
			p.failf("unterminated namespace %s", ns.Name)
		}
		switch {
		case p.isUsingDirective():
			ns.Usings = append(ns.Usings, p.parseUsingDirective())
		case p.is("namespace"):
			inner := p.parseNamespace()
			if inner.FileScoped {
				p.failf("file-scoped namespace inside namespace %s", ns.Name)
			}
			ns.Members = append(ns.Members, inner)
		default:
			ns.Members = append(ns.Members, p.parseTypeLevelDecl())
		}
	}
	p.expect("}")
	p.accept(";")
	ns.Span = p.span(start)
	return ns
}
