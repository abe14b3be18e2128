package parser

import (
	"sharpcheck/internal/syntax"
)

func (p *parser) parseBlock() *syntax.Block {
	start := p.tok().Start
	p.expect("{")
	b := &syntax.Block{}
	for !p.is("}") {
		if p.atEOF() {
			p.failf("unterminated block")
		}
		b.Stmts = append(b.Stmts, p.parseStatement())
	}
	p.expect("}")
	b.Span = p.span(start)
	return b
}

func (p *parser) parseStatement() syntax.Stmt {
	start := p.tok().Start
	t := p.tok()

	if t.Kind == TokKeyword || t.Kind == TokPunct {
		switch t.Text {
		case "{":
			return p.parseBlock()
		case ";":
			p.advance()
			return &syntax.EmptyStmt{Span: p.span(start)}
		case "if":
			return p.parseIf()
		case "for":
			return p.parseFor()
		case "foreach":
			return p.parseForeach(start, false)
		case "while":
			p.advance()
			p.expect("(")
			s := &syntax.WhileStmt{Cond: p.parseExpr()}
			p.expect(")")
			s.Body = p.parseStatement()
			s.Span = p.span(start)
			return s
		case "do":
			p.advance()
			s := &syntax.DoStmt{Body: p.parseStatement()}
			p.expect("while")
			p.expect("(")
			s.Cond = p.parseExpr()
			p.expect(")")
			p.expect(";")
			s.Span = p.span(start)
			return s
		case "switch":
			return p.parseSwitch()
		case "using":
			return p.parseUsing(start, false)
		case "try":
			return p.parseTry()
		case "return":
			p.advance()
			s := &syntax.ReturnStmt{}
			if !p.is(";") {
				s.Result = p.parseExpr()
			}
			p.expect(";")
			s.Span = p.span(start)
			return s
		case "break":
			p.advance()
			p.expect(";")
			return &syntax.BreakStmt{Span: p.span(start)}
		case "continue":
			p.advance()
			p.expect(";")
			return &syntax.ContinueStmt{Span: p.span(start)}
		case "throw":
			p.advance()
			s := &syntax.ThrowStmt{}
			if !p.is(";") {
				s.X = p.parseExpr()
			}
			p.expect(";")
			s.Span = p.span(start)
			return s
		case "lock":
			p.advance()
			p.expect("(")
			s := &syntax.LockStmt{X: p.parseExpr()}
			p.expect(")")
			s.Body = p.parseStatement()
			s.Span = p.span(start)
			return s
		case "goto":
			p.advance()
			s := &syntax.GotoStmt{}
			switch {
			case p.accept("case"):
				s.Label = "case " + exprText(p, p.parseExpr())
			case p.accept("default"):
				s.Label = "default"
			default:
				s.Label = p.expectIdent().Text
			}
			p.expect(";")
			s.Span = p.span(start)
			return s
		case "checked", "unchecked", "unsafe":
			if p.peekIs(1, "{") {
				kw := p.advance().Text
				return &syntax.CheckedStmt{Keyword: kw, Body: p.parseBlock(), Span: p.span(start)}
			}
		case "fixed":
			p.advance()
			p.expect("(")
			p.parseLocalDeclNoSemicolon()
			p.expect(")")
			return &syntax.CheckedStmt{Keyword: "fixed", Body: p.parseStatement(), Span: p.span(start)}
		case "const":
			p.advance()
			decl := p.parseLocalDeclNoSemicolon()
			decl.Const = true
			p.expect(";")
			decl.Span = p.span(start)
			return decl
		}
	}

	if t.Kind == TokIdent {
		switch {
		case t.Text == "yield" && (p.peekIs(1, "return") || p.peekIs(1, "break")):
			p.advance()
			s := &syntax.YieldStmt{}
			if p.accept("break") {
				s.Break = true
			} else {
				p.expect("return")
				s.X = p.parseExpr()
			}
			p.expect(";")
			s.Span = p.span(start)
			return s
		case t.Text == "await" && p.peekIs(1, "foreach"):
			p.advance()
			return p.parseForeach(start, true)
		case t.Text == "await" && p.peekIs(1, "using"):
			p.advance()
			return p.parseUsing(start, true)
		case p.peekIs(1, ":") && !p.peekIs(2, ":"):
			label := p.advance().Text
			p.advance()
			return &syntax.LabeledStmt{Label: label, Stmt: p.parseStatement(), Span: p.span(start)}
		}
	}

	if s := p.tryLocalDeclOrFunc(); s != nil {
		return s
	}

	x := p.parseExpr()
	p.expect(";")
	return &syntax.ExprStmt{X: x, Span: p.span(start)}
}

// exprText returns the source text covered by e.
func exprText(p *parser, e syntax.Expr) string {
	sp := e.Bounds()
	return p.src[sp.Start:sp.End]
}

// tryLocalDeclOrFunc speculatively parses a local variable declaration or a local function.
func (p *parser) tryLocalDeclOrFunc() syntax.Stmt {
	start := p.tok().Start
	var out syntax.Stmt
	p.try(func() {
		ref := false
		if p.is("ref") {
			p.advance()
			ref = true
			p.accept("readonly")
		}
		if p.isWord("scoped") && p.peek(1).Kind != TokPunct {
			p.advance()
		}
		h := declHeader{start: start, doc: p.tok().Doc}
		if p.is("[") {
			h.attrs = p.parseAttributes()
		}
		h.mods = p.parseModifiers()

		typ := p.parseType()
		if !p.isIdent() || typ.Name == "await" {
			p.failf("not a declaration")
		}
		if p.peekIs(1, "(") || p.peekIs(1, "<") {
			name := p.advance()
			fn := p.parseMethodRest(h, typ, name.Text, syntax.Span{Start: name.Start, End: name.End}, "")
			out = &syntax.LocalFuncStmt{Func: fn, Span: p.span(start)}
			return
		}
		if h.mods != 0 && h.mods != syntax.ModUnsafe {
			p.failf("modifiers on local declaration")
		}
		if !p.peekIs(1, "=") && !p.peekIs(1, ";") && !p.peekIs(1, ",") {
			p.failf("not a declaration")
		}
		decl := p.finishLocalDecl(typ)
		decl.Ref = ref
		p.expect(";")
		decl.Span = p.span(start)
		out = decl
	})
	return out
}

// parseLocalDeclNoSemicolon parses `Type a = 1, b` used by for, using, fixed and const.
func (p *parser) parseLocalDeclNoSemicolon() *syntax.LocalDecl {
	start := p.tok().Start
	decl := p.finishLocalDecl(p.parseType())
	decl.Span = p.span(start)
	return decl
}

func (p *parser) finishLocalDecl(typ *syntax.TypeRef) *syntax.LocalDecl {
	decl := &syntax.LocalDecl{Type: typ}
	if typ.Name == "var" && len(typ.Args) == 0 && !typ.Nullable && typ.Rank == 0 {
		decl.Type = nil
	}
	for {
		decl.Vars = append(decl.Vars, p.parseVarDeclarator())
		if !p.accept(",") {
			break
		}
	}
	return decl
}

func (p *parser) parseIf() syntax.Stmt {
	start := p.tok().Start
	p.expect("if")
	p.expect("(")
	s := &syntax.IfStmt{Cond: p.parseExpr()}
	p.expect(")")
	s.Then = p.parseStatement()
	if p.accept("else") {
		s.Else = p.parseStatement()
	}
	s.Span = p.span(start)
	return s
}

func (p *parser) parseFor() syntax.Stmt {
	start := p.tok().Start
	p.expect("for")
	p.expect("(")
	s := &syntax.ForStmt{}
	if !p.is(";") {
		var decl *syntax.LocalDecl
		if p.try(func() {
			decl = p.parseLocalDeclNoSemicolon()
			if !p.is(";") {
				p.failf("not a declaration")
			}
		}) {
			s.Init = append(s.Init, decl)
		} else {
			for {
				es := p.tok().Start
				x := p.parseExpr()
				s.Init = append(s.Init, &syntax.ExprStmt{X: x, Span: p.span(es)})
				if !p.accept(",") {
					break
				}
			}
		}
	}
	p.expect(";")
	if !p.is(";") {
		s.Cond = p.parseExpr()
	}
	p.expect(";")
	for !p.is(")") {
		s.Post = append(s.Post, p.parseExpr())
		if !p.accept(",") {
			break
		}
	}
	p.expect(")")
	s.Body = p.parseStatement()
	s.Span = p.span(start)
	return s
}

func (p *parser) parseForeach(start int, await bool) syntax.Stmt {
	p.expect("foreach")
	p.expect("(")
	s := &syntax.ForeachStmt{Await: await}
	s.Type = p.parseType()
	if s.Type.Name == "var" && len(s.Type.Args) == 0 {
		s.Type = nil
	}
	nameStart := p.tok().Start
	if p.is("(") {
		// deconstruction: var (key, value)
		p.skipBalanced("(", ")")
		s.VarName = p.src[nameStart:p.prevEnd()]
	} else {
		s.VarName = p.expectIdent().Text
	}
	s.VarSpan = p.span(nameStart)
	p.expect("in")
	s.Collection = p.parseExpr()
	p.expect(")")
	s.Body = p.parseStatement()
	s.Span = p.span(start)
	return s
}

func (p *parser) parseSwitch() syntax.Stmt {
	start := p.tok().Start
	p.expect("switch")
	s := &syntax.SwitchStmt{}
	if p.is("(") {
		s.Tag = p.parsePrimary()
	} else {
		s.Tag = p.parseExpr()
	}
	p.expect("{")
	for !p.is("}") {
		if p.atEOF() {
			p.failf("unterminated switch")
		}
		secStart := p.tok().Start
		sec := &syntax.SwitchSection{}
		for p.is("case") || (p.is("default") && p.peekIs(1, ":")) {
			sec.Labels = append(sec.Labels, p.parseCaseLabel())
		}
		if len(sec.Labels) == 0 {
			p.failf("expected case label, found %s", describe(p.tok()))
		}
		for !p.is("case") && !(p.is("default") && p.peekIs(1, ":")) && !p.is("}") {
			if p.atEOF() {
				p.failf("unterminated switch section")
			}
			sec.Stmts = append(sec.Stmts, p.parseStatement())
		}
		sec.Span = p.span(secStart)
		s.Sections = append(s.Sections, sec)
	}
	p.expect("}")
	s.Span = p.span(start)
	return s
}

func (p *parser) parseCaseLabel() *syntax.CaseLabel {
	start := p.tok().Start
	l := &syntax.CaseLabel{}
	if p.accept("default") {
		p.expect(":")
		l.Span = p.span(start)
		return l
	}
	p.expect("case")
	declared := p.try(func() {
		typ := p.parseType()
		name := p.expectIdent()
		if !p.is(":") && !p.isWord("when") {
			p.failf("not a declaration pattern")
		}
		l.PatternType, l.PatternVar = typ, name.Text
	})
	if !declared {
		l.Value = p.parsePattern()
	}
	if p.isWord("when") {
		p.advance()
		l.When = p.parseExpr()
	}
	p.expect(":")
	l.Span = p.span(start)
	return l
}

func (p *parser) parseUsing(start int, await bool) syntax.Stmt {
	p.expect("using")
	s := &syntax.UsingStmt{Await: await}
	if p.accept("(") {
		var decl *syntax.LocalDecl
		if p.try(func() {
			decl = p.parseLocalDeclNoSemicolon()
			if !p.is(")") {
				p.failf("not a declaration")
			}
		}) {
			s.Decl = decl
		} else {
			s.Resource = p.parseExpr()
		}
		p.expect(")")
		s.Body = p.parseStatement()
	} else {
		s.Decl = p.parseLocalDeclNoSemicolon()
		p.expect(";")
	}
	s.Span = p.span(start)
	return s
}

func (p *parser) parseTry() syntax.Stmt {
	start := p.tok().Start
	p.expect("try")
	s := &syntax.TryStmt{Body: p.parseBlock()}
	for p.is("catch") {
		cs := p.tok().Start
		p.advance()
		c := &syntax.CatchClause{}
		if p.accept("(") {
			c.Type = p.parseType()
			if p.isIdent() {
				c.VarName = p.advance().Text
			}
			p.expect(")")
		}
		if p.isWord("when") {
			p.advance()
			p.expect("(")
			c.Filter = p.parseExpr()
			p.expect(")")
		}
		c.Body = p.parseBlock()
		c.Span = p.span(cs)
		s.Catches = append(s.Catches, c)
	}
	if p.accept("finally") {
		s.Finally = p.parseBlock()
	}
	if len(s.Catches) == 0 && s.Finally == nil {
		p.failf("try statement needs a catch or finally clause")
	}
	s.Span = p.span(start)
	return s
}
