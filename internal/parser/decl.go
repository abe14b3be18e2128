package parser

import (
	"sharpcheck/internal/syntax"
)

// contextualModifiers are identifiers that act as modifiers when followed by more declaration.
var contextualModifiers = map[string]syntax.Modifiers{
	"partial":  syntax.ModPartial,
	"async":    syntax.ModAsync,
	"required": syntax.ModRequired,
	"file":     syntax.ModFile,
}

// declHeader collects what precedes a declaration keyword.
type declHeader struct {
	start int
	doc   string
	attrs []*syntax.Attribute
	mods  syntax.Modifiers
}

func (p *parser) parseDeclHeader() declHeader {
	h := declHeader{start: p.tok().Start, doc: p.tok().Doc}
	if p.is("[") {
		h.attrs = p.parseAttributes()
	}
	if h.doc == "" {
		h.doc = p.tok().Doc
	}
	h.mods = p.parseModifiers()
	return h
}

func (p *parser) parseModifiers() syntax.Modifiers {
	var mods syntax.Modifiers
	for {
		t := p.tok()
		if t.Kind == TokKeyword {
			m := syntax.ModifierFromKeyword(t.Text)
			if m == 0 || m == syntax.ModFile {
				return mods
			}
			// `new` as a modifier is always followed by more declaration, never `(` or a type argument
			if m == syntax.ModNew && (p.peekIs(1, "(") || p.peekIs(1, "[")) {
				return mods
			}
			mods |= m
			p.advance()
			continue
		}
		if t.Kind == TokIdent {
			if m, ok := contextualModifiers[t.Text]; ok && p.startsDeclaration(1) {
				mods |= m
				p.advance()
				continue
			}
		}
		return mods
	}
}

// startsDeclaration reports whether the token at offset n can continue a declaration after a contextual modifier.
func (p *parser) startsDeclaration(n int) bool {
	t := p.peek(n)
	switch t.Kind {
	case TokIdent:
		return true
	case TokKeyword:
		return t.Text != "operator" && t.Text != "this" && t.Text != "in" && t.Text != "is" && t.Text != "as"
	case TokPunct:
		return t.Text == "(" && p.peek(n+1).Kind != TokPunct
	}
	return false
}

func (p *parser) parseAttributes() []*syntax.Attribute {
	var attrs []*syntax.Attribute
	for p.is("[") {
		p.advance()
		target := ""
		if (p.isIdent() || p.tok().Kind == TokKeyword) && p.peekIs(1, ":") && !p.peekIs(2, ":") {
			target = p.advance().Text
			p.advance()
		}
		for {
			start := p.tok().Start
			a := &syntax.Attribute{Target: target, Name: p.parseQualifiedName()}
			if p.is("<") {
				p.parseTypeArgs()
			}
			if p.is("(") {
				a.Args = p.parseArguments("(", ")")
			}
			a.Span = p.span(start)
			attrs = append(attrs, a)
			if !p.accept(",") || p.is("]") {
				break
			}
		}
		p.expect("]")
	}
	return attrs
}

// parseTypeLevelDecl parses a type or delegate declaration at namespace level.
func (p *parser) parseTypeLevelDecl() syntax.Decl {
	h := p.parseDeclHeader()
	switch {
	case p.is("delegate"):
		return p.parseDelegate(h)
	case p.isTypeKeyword():
		return p.parseTypeDecl(h)
	}
	p.failf("expected type declaration, found %s", describe(p.tok()))
	return nil
}

func (p *parser) isTypeKeyword() bool {
	if p.is("class") || p.is("struct") || p.is("interface") || p.is("enum") {
		return true
	}
	if p.isWord("record") {
		n := p.peek(1)
		return n.Kind == TokIdent || (n.Kind == TokKeyword && (n.Text == "class" || n.Text == "struct"))
	}
	return false
}

func (p *parser) parseTypeDecl(h declHeader) *syntax.TypeDecl {
	t := &syntax.TypeDecl{Modifiers: h.mods, Attributes: h.attrs, Doc: h.doc}
	switch kw := p.advance().Text; kw {
	case "class":
		t.Kind = syntax.KindClass
	case "struct":
		t.Kind = syntax.KindStruct
	case "interface":
		t.Kind = syntax.KindInterface
	case "enum":
		t.Kind = syntax.KindEnum
	case "record":
		t.Kind = syntax.KindRecord
		if p.accept("struct") {
			t.Kind = syntax.KindRecordStruct
		} else {
			p.accept("class")
		}
	}
	name := p.expectIdent()
	t.Name, t.NameSpan = name.Text, syntax.Span{Start: name.Start, End: name.End}
	if p.is("<") {
		t.TypeParams = p.parseTypeParams()
	}
	if p.is("(") {
		t.PrimaryParams = p.parseParams("(", ")")
	}
	if p.accept(":") {
		for {
			t.BaseTypes = append(t.BaseTypes, p.parseType())
			if p.is("(") {
				// record base with positional arguments
				p.parseArguments("(", ")")
			}
			if !p.accept(",") {
				break
			}
		}
	}
	t.Constraints = p.parseConstraints()

	if t.Kind == syntax.KindEnum {
		p.parseEnumBody(t)
	} else if !p.accept(";") {
		p.expect("{")
		for !p.is("}") {
			if p.atEOF() {
				p.failf("unterminated %s %s", t.Kind, t.Name)
			}
			t.Members = append(t.Members, p.parseMember())
		}
		p.expect("}")
		p.accept(";")
	}
	t.Span = p.span(h.start)
	return t
}

func (p *parser) parseEnumBody(t *syntax.TypeDecl) {
	p.expect("{")
	for !p.is("}") {
		start := p.tok().Start
		var attrs []*syntax.Attribute
		if p.is("[") {
			attrs = p.parseAttributes()
		}
		em := &syntax.EnumMember{Name: p.expectIdent().Text, Attributes: attrs}
		if p.accept("=") {
			em.Value = p.parseExpr()
		}
		em.Span = p.span(start)
		t.EnumMembers = append(t.EnumMembers, em)
		if !p.accept(",") {
			break
		}
	}
	p.expect("}")
	p.accept(";")
}

func (p *parser) parseDelegate(h declHeader) *syntax.DelegateDecl {
	p.expect("delegate")
	d := &syntax.DelegateDecl{Modifiers: h.mods, Attributes: h.attrs, Doc: h.doc}
	d.ReturnType = p.parseType()
	name := p.expectIdent()
	d.Name, d.NameSpan = name.Text, syntax.Span{Start: name.Start, End: name.End}
	if p.is("<") {
		d.TypeParams = p.parseTypeParams()
	}
	d.Params = p.parseParams("(", ")")
	p.parseConstraints()
	p.expect(";")
	d.Span = p.span(h.start)
	return d
}

func (p *parser) parseTypeParams() []*syntax.TypeParam {
	p.expect("<")
	var params []*syntax.TypeParam
	for {
		start := p.tok().Start
		if p.is("[") {
			p.parseAttributes()
		}
		tp := &syntax.TypeParam{}
		if p.is("in") || p.is("out") {
			tp.Variance = p.advance().Text
		}
		tp.Name = p.expectIdent().Text
		tp.Span = p.span(start)
		params = append(params, tp)
		if !p.accept(",") {
			break
		}
	}
	p.expect(">")
	return params
}

func (p *parser) parseConstraints() []*syntax.Constraint {
	var out []*syntax.Constraint
	for p.isWord("where") {
		start := p.tok().Start
		p.advance()
		c := &syntax.Constraint{Param: p.expectIdent().Text}
		p.expect(":")
		for {
			switch {
			case p.is("new") && p.peekIs(1, "("):
				p.advance()
				p.expect("(")
				p.expect(")")
				c.Types = append(c.Types, &syntax.TypeRef{Name: "new()"})
			case p.is("class") || p.is("struct") || p.is("default"):
				tok := p.advance()
				c.Types = append(c.Types, &syntax.TypeRef{Span: syntax.Span{Start: tok.Start, End: tok.End}, Name: tok.Text, Nullable: p.accept("?")})
			case p.isWord("allows"):
				p.advance()
				p.expect("ref")
				p.expectIdent()
			default:
				c.Types = append(c.Types, p.parseType())
			}
			if !p.accept(",") {
				break
			}
		}
		c.Span = p.span(start)
		out = append(out, c)
	}
	return out
}

// parseParams parses a parameter list delimited by open/close.
func (p *parser) parseParams(open, close string) []*syntax.Param {
	p.expect(open)
	var params []*syntax.Param
	for !p.is(close) {
		params = append(params, p.parseParam())
		if !p.accept(",") {
			break
		}
	}
	p.expect(close)
	return params
}

var paramModifiers = map[string]bool{"ref": true, "out": true, "in": true, "params": true, "this": true, "readonly": true}

func (p *parser) parseParam() *syntax.Param {
	start := p.tok().Start
	prm := &syntax.Param{}
	if p.is("[") {
		prm.Attributes = p.parseAttributes()
	}
	for {
		t := p.tok()
		if (t.Kind == TokKeyword && paramModifiers[t.Text]) || (t.Kind == TokIdent && t.Text == "scoped" && p.peek(1).Kind != TokPunct) {
			if prm.Modifier == "" || t.Text == "this" {
				prm.Modifier = t.Text
			}
			p.advance()
			continue
		}
		break
	}
	prm.Type = p.parseType()
	name := p.expectIdent()
	prm.Name, prm.NameSpan = name.Text, syntax.Span{Start: name.Start, End: name.End}
	if p.accept("=") {
		prm.Default = p.parseExpr()
	}
	prm.Span = p.span(start)
	return prm
}

// parseMember parses one member of a type body.
func (p *parser) parseMember() syntax.Member {
	h := p.parseDeclHeader()

	switch {
	case p.is("delegate"):
		return p.parseDelegate(h)
	case p.isTypeKeyword():
		return p.parseTypeDecl(h)
	case p.is("~"):
		return p.parseDestructor(h)
	case p.is("event"):
		return p.parseEvent(h)
	case p.is("implicit") || p.is("explicit"):
		return p.parseConversionOperator(h)
	case p.isIdent() && p.peekIs(1, "("):
		// a member without a return type is a constructor, whatever its name
		return p.parseConstructor(h)
	}

	typ := p.parseType()

	switch {
	case p.is("operator"):
		return p.parseOperator(h, typ)
	case p.is("this") && p.peekIs(1, "["):
		return p.parseIndexer(h, typ, "")
	}

	nameStart := p.tok().Start
	name, explicit := p.parseMemberName()
	nameSpan := p.span(nameStart)

	switch {
	case p.is(".") && p.peekIs(1, "this"):
		p.advance()
		return p.parseIndexer(h, typ, name)
	case p.is("(") || p.is("<"):
		return p.parseMethodRest(h, typ, name, nameSpan, explicit)
	case p.is("{") || p.is("=>"):
		return p.parsePropertyRest(h, typ, name, nameSpan)
	}
	return p.parseFieldRest(h, typ, name, nameSpan)
}

// parseMemberName parses `Name` or `IFoo<T>.Name`, returning the name and the explicit interface prefix.
func (p *parser) parseMemberName() (string, string) {
	name := p.expectIdent().Text
	explicit := ""
	for {
		if p.is("<") && p.isExplicitInterfaceTypeArgs() {
			args := p.parseTypeArgs()
			name += (&syntax.TypeRef{Name: "", Args: args}).String()
		}
		if p.is(".") && p.peek(1).Kind == TokIdent {
			p.advance()
			if explicit != "" {
				explicit += "."
			}
			explicit += name
			name = p.advance().Text
			continue
		}
		return name, explicit
	}
}

// isExplicitInterfaceTypeArgs distinguishes `IFoo<T>.M` from a generic method `M<T>(`.
func (p *parser) isExplicitInterfaceTypeArgs() bool {
	mark := p.pos
	defer func() { p.pos = mark }()
	ok := p.try(func() { p.parseTypeArgs() })
	return ok && p.is(".")
}

func (p *parser) parseMethodRest(h declHeader, ret *syntax.TypeRef, name string, nameSpan syntax.Span, explicit string) *syntax.MethodDecl {
	m := &syntax.MethodDecl{
		Name: name, NameSpan: nameSpan, Modifiers: h.mods, Attributes: h.attrs,
		ReturnType: ret, Doc: h.doc, ExplicitInterface: explicit,
	}
	if p.is("<") {
		m.TypeParams = p.parseTypeParams()
	}
	m.Params = p.parseParams("(", ")")
	m.Constraints = p.parseConstraints()
	p.parseMethodBody(&m.Body, &m.ExprBody)
	m.Span = p.span(h.start)
	return m
}

func (p *parser) parseMethodBody(body **syntax.Block, exprBody *syntax.Expr) {
	switch {
	case p.is("{"):
		*body = p.parseBlock()
	case p.accept("=>"):
		*exprBody = p.parseExpr()
		p.expect(";")
	default:
		p.expect(";")
	}
}

func (p *parser) parseConstructor(h declHeader) *syntax.ConstructorDecl {
	name := p.expectIdent()
	c := &syntax.ConstructorDecl{
		Name: name.Text, NameSpan: syntax.Span{Start: name.Start, End: name.End},
		Modifiers: h.mods, Attributes: h.attrs, Doc: h.doc,
	}
	c.Params = p.parseParams("(", ")")
	if p.accept(":") {
		start := p.tok().Start
		init := &syntax.ConstructorInitializer{}
		switch {
		case p.accept("base"):
			init.Base = true
		case p.accept("this"):
		default:
			p.failf("expected 'base' or 'this' in constructor initializer")
		}
		init.Args = p.parseArguments("(", ")")
		init.Span = p.span(start)
		c.Initializer = init
	}
	p.parseMethodBody(&c.Body, &c.ExprBody)
	c.Span = p.span(h.start)
	return c
}

func (p *parser) parseDestructor(h declHeader) *syntax.MethodDecl {
	p.expect("~")
	name := p.expectIdent()
	m := &syntax.MethodDecl{
		Name: "~" + name.Text, NameSpan: syntax.Span{Start: name.Start, End: name.End},
		Modifiers: h.mods, Attributes: h.attrs, Doc: h.doc, IsDestructor: true,
		ReturnType: &syntax.TypeRef{Name: "void"},
	}
	m.Params = p.parseParams("(", ")")
	p.parseMethodBody(&m.Body, &m.ExprBody)
	m.Span = p.span(h.start)
	return m
}

var overloadableOperators = map[string]bool{
	"+": true, "-": true, "!": true, "~": true, "++": true, "--": true, "true": true, "false": true,
	"*": true, "/": true, "%": true, "&": true, "|": true, "^": true, "<<": true,
	"==": true, "!=": true, "<": true, "<=": true, ">=": true,
}

func (p *parser) parseOperator(h declHeader, ret *syntax.TypeRef) *syntax.MethodDecl {
	opTok := p.expect("operator")
	p.accept("checked")
	op := ""
	switch {
	case p.is(">") && p.peekIs(1, ">") && p.adjacent(0):
		p.advance()
		p.advance()
		op = ">>"
		if p.is(">") && p.adjacent(-1) {
			p.advance()
			op = ">>>"
		}
	case p.is(">"):
		p.advance()
		op = ">"
	case overloadableOperators[p.tok().Text]:
		op = p.advance().Text
	default:
		p.failf("expected overloadable operator, found %s", describe(p.tok()))
	}
	m := &syntax.MethodDecl{
		Name: "operator" + op, NameSpan: syntax.Span{Start: opTok.Start, End: p.prevEnd()},
		Modifiers: h.mods, Attributes: h.attrs, ReturnType: ret, Doc: h.doc, IsOperator: true,
	}
	m.Params = p.parseParams("(", ")")
	p.parseMethodBody(&m.Body, &m.ExprBody)
	m.Span = p.span(h.start)
	return m
}

func (p *parser) parseConversionOperator(h declHeader) *syntax.MethodDecl {
	kind := p.advance().Text
	opTok := p.expect("operator")
	p.accept("checked")
	ret := p.parseType()
	m := &syntax.MethodDecl{
		Name: kind + " operator " + ret.String(), NameSpan: syntax.Span{Start: opTok.Start, End: p.prevEnd()},
		Modifiers: h.mods, Attributes: h.attrs, ReturnType: ret, Doc: h.doc, IsOperator: true,
	}
	m.Params = p.parseParams("(", ")")
	p.parseMethodBody(&m.Body, &m.ExprBody)
	m.Span = p.span(h.start)
	return m
}

func (p *parser) parseIndexer(h declHeader, typ *syntax.TypeRef, explicit string) *syntax.PropertyDecl {
	thisTok := p.expect("this")
	prop := &syntax.PropertyDecl{
		Name: "this", NameSpan: syntax.Span{Start: thisTok.Start, End: thisTok.End},
		Type: typ, Modifiers: h.mods, Attributes: h.attrs, Doc: h.doc,
	}
	if explicit != "" {
		prop.Name = explicit + ".this"
	}
	prop.IndexParams = p.parseParams("[", "]")
	if p.accept("=>") {
		prop.ExprBody = p.parseExpr()
		p.expect(";")
	} else {
		prop.Accessors = p.parseAccessors()
	}
	prop.Span = p.span(h.start)
	return prop
}

func (p *parser) parsePropertyRest(h declHeader, typ *syntax.TypeRef, name string, nameSpan syntax.Span) *syntax.PropertyDecl {
	prop := &syntax.PropertyDecl{
		Name: name, NameSpan: nameSpan, Type: typ,
		Modifiers: h.mods, Attributes: h.attrs, Doc: h.doc,
	}
	if p.accept("=>") {
		prop.ExprBody = p.parseExpr()
		p.expect(";")
	} else {
		prop.Accessors = p.parseAccessors()
		if p.accept("=") {
			prop.Initializer = p.parseExpr()
			p.expect(";")
		}
	}
	prop.Span = p.span(h.start)
	return prop
}

func (p *parser) parseAccessors() []*syntax.Accessor {
	p.expect("{")
	var out []*syntax.Accessor
	for !p.is("}") {
		start := p.tok().Start
		if p.is("[") {
			p.parseAttributes()
		}
		acc := &syntax.Accessor{Modifiers: p.parseModifiers()}
		kind := p.expectIdent().Text
		switch kind {
		case "get", "set", "init", "add", "remove":
		default:
			p.failf("unexpected accessor %q", kind)
		}
		acc.Kind = kind
		p.parseMethodBody(&acc.Body, &acc.ExprBody)
		acc.Span = p.span(start)
		out = append(out, acc)
	}
	p.expect("}")
	return out
}

func (p *parser) parseFieldRest(h declHeader, typ *syntax.TypeRef, name string, nameSpan syntax.Span) *syntax.FieldDecl {
	f := &syntax.FieldDecl{Type: typ, Modifiers: h.mods, Attributes: h.attrs, Doc: h.doc}
	first := &syntax.VarDeclarator{Name: name, NameSpan: nameSpan}
	if p.accept("=") {
		first.Init = p.parseVarInitializer()
	}
	first.Span = p.span(nameSpan.Start)
	f.Vars = append(f.Vars, first)
	for p.accept(",") {
		f.Vars = append(f.Vars, p.parseVarDeclarator())
	}
	p.expect(";")
	f.Span = p.span(h.start)
	return f
}

func (p *parser) parseVarDeclarator() *syntax.VarDeclarator {
	name := p.expectIdent()
	d := &syntax.VarDeclarator{Name: name.Text, NameSpan: syntax.Span{Start: name.Start, End: name.End}}
	if p.is("[") {
		// fixed-size buffer
		p.skipBalanced("[", "]")
	}
	if p.accept("=") {
		d.Init = p.parseVarInitializer()
	}
	d.Span = p.span(name.Start)
	return d
}

// parseVarInitializer accepts an expression or a bare array initializer `{ 1, 2 }`.
func (p *parser) parseVarInitializer() syntax.Expr {
	if p.is("{") {
		return p.parseInitializer()
	}
	return p.parseExpr()
}

func (p *parser) parseEvent(h declHeader) *syntax.EventDecl {
	p.expect("event")
	e := &syntax.EventDecl{Modifiers: h.mods, Attributes: h.attrs, Type: p.parseType()}
	name := p.expectIdent()
	e.Name, e.NameSpan = name.Text, syntax.Span{Start: name.Start, End: name.End}
	for p.is(".") && p.peek(1).Kind == TokIdent {
		p.advance()
		e.Name = p.advance().Text
	}
	if p.is("{") {
		e.Accessors = p.parseAccessors()
	} else {
		if p.accept("=") {
			p.parseExpr()
		}
		for p.accept(",") {
			p.parseVarDeclarator()
		}
		p.expect(";")
	}
	e.Span = p.span(h.start)
	return e
}
