package parser

import (
	"sharpcheck/internal/syntax"
)

// binary operator precedence, higher binds tighter
const (
	precNone = iota
	precCoalesce
	precOr
	precAnd
	precBitOr
	precBitXor
	precBitAnd
	precEquality
	precRelational
	precShift
	precAdditive
	precRange
	precMultiplicative
)

var binaryPrec = map[string]int{
	"??": precCoalesce,
	"||": precOr,
	"&&": precAnd,
	"|":  precBitOr,
	"^":  precBitXor,
	"&":  precBitAnd,
	"==": precEquality, "!=": precEquality,
	"<": precRelational, ">": precRelational, "<=": precRelational, ">=": precRelational,
	"<<": precShift,
	"+": precAdditive, "-": precAdditive,
	"..": precRange,
	"*": precMultiplicative, "/": precMultiplicative, "%": precMultiplicative,
}

var assignOps = map[string]bool{
	"=": true, "+=": true, "-=": true, "*=": true, "/=": true, "%=": true,
	"&=": true, "|=": true, "^=": true, "<<=": true, "??=": true,
}

// parseExpr parses a full expression including assignment, lambda and throw.
func (p *parser) parseExpr() syntax.Expr {
	start := p.tok().Start
	if lam := p.tryLambda(); lam != nil {
		return lam
	}
	if p.is("throw") {
		p.advance()
		return &syntax.ThrowExpr{X: p.parseExpr(), Span: p.span(start)}
	}
	lhs := p.parseConditional()

	// `>>=` arrives as `>` followed by an adjacent `>=`
	if p.is(">") && p.peekIs(1, ">=") && p.adjacent(0) {
		p.advance()
		p.advance()
		return &syntax.AssignExpr{Op: ">>=", Lhs: lhs, Rhs: p.parseExpr(), Span: p.span(start)}
	}
	if t := p.tok(); t.Kind == TokPunct && assignOps[t.Text] {
		p.advance()
		var rhs syntax.Expr
		if t.Text == "=" && p.is("{") {
			rhs = p.parseInitializer()
		} else if t.Text == "=" && p.is("ref") {
			p.advance()
			rhs = p.parseExpr()
		} else {
			rhs = p.parseExpr()
		}
		return &syntax.AssignExpr{Op: t.Text, Lhs: lhs, Rhs: rhs, Span: p.span(start)}
	}
	return lhs
}

func (p *parser) parseConditional() syntax.Expr {
	start := p.tok().Start
	cond := p.parseBinary(precCoalesce)
	if p.is("?") {
		p.advance()
		then := p.parseExpr()
		p.expect(":")
		els := p.parseExpr()
		return &syntax.ConditionalExpr{Cond: cond, Then: then, Else: els, Span: p.span(start)}
	}
	return cond
}

// currentBinaryOp returns the binary operator at the current position and its token count.
func (p *parser) currentBinaryOp() (string, int) {
	t := p.tok()
	if t.Kind == TokKeyword && (t.Text == "is" || t.Text == "as") {
		return t.Text, 1
	}
	if t.Kind != TokPunct {
		return "", 0
	}
	if t.Text == ">" && p.adjacent(0) {
		if p.peekIs(1, ">") {
			if p.peekIs(2, ">") && p.adjacent(1) {
				return ">>>", 3
			}
			return ">>", 2
		}
		if p.peekIs(1, ">=") {
			// `>>=` is an assignment, handled by parseExpr
			return "", 0
		}
	}
	if _, ok := binaryPrec[t.Text]; ok {
		return t.Text, 1
	}
	return "", 0
}

func opPrec(op string) int {
	switch op {
	case "is", "as":
		return precRelational
	case ">>", ">>>":
		return precShift
	}
	return binaryPrec[op]
}

func (p *parser) parseBinary(minPrec int) syntax.Expr {
	start := p.tok().Start
	x := p.parseUnary()
	for {
		op, width := p.currentBinaryOp()
		if op == "" {
			return x
		}
		prec := opPrec(op)
		if prec < minPrec {
			return x
		}
		for i := 0; i < width; i++ {
			p.advance()
		}
		switch op {
		case "is":
			x = p.finishIs(x, start)
			continue
		case "as":
			x = &syntax.AsExpr{X: x, Type: p.parseType(), Span: p.span(start)}
			continue
		}
		var y syntax.Expr
		if op == "??" && p.is("throw") {
			throwStart := p.tok().Start
			p.advance()
			y = &syntax.ThrowExpr{X: p.parseExpr(), Span: p.span(throwStart)}
		} else if op == "??" {
			// right associative
			y = p.parseBinary(prec)
		} else {
			y = p.parseBinary(prec + 1)
		}
		x = &syntax.BinaryExpr{Op: op, X: x, Y: y, Span: p.span(start)}
	}
}

func (p *parser) finishIs(x syntax.Expr, start int) syntax.Expr {
	is := &syntax.IsExpr{X: x}
	if p.isWord("not") {
		p.advance()
		is.Not = true
	}
	declared := p.try(func() {
		typ := p.parseType()
		if !p.isIdent() || p.isWord("and") || p.isWord("or") || p.isWord("when") {
			p.failf("not a declaration pattern")
		}
		is.Type, is.VarName = typ, p.advance().Text
	})
	if !declared {
		is.Pattern = p.parsePattern()
		if name := syntax.QualifiedName(is.Pattern); name != "" {
			is.Type = &syntax.TypeRef{Name: name, Span: is.Pattern.Bounds()}
		}
	}
	is.Span = p.span(start)
	return is
}

// parsePattern parses the pattern forms used after `is` and `case`.
func (p *parser) parsePattern() syntax.Expr {
	start := p.tok().Start
	x := p.parsePrimaryPattern()
	for p.isWord("and") || p.isWord("or") {
		op := p.advance().Text
		y := p.parsePrimaryPattern()
		x = &syntax.BinaryExpr{Op: op, X: x, Y: y, Span: p.span(start)}
	}
	return x
}

func (p *parser) parsePrimaryPattern() syntax.Expr {
	start := p.tok().Start
	switch {
	case p.isWord("not"):
		p.advance()
		return &syntax.UnaryExpr{Op: "not", X: p.parsePrimaryPattern(), Span: p.span(start)}
	case p.is("<") || p.is(">") || p.is("<=") || p.is(">="):
		op := p.advance().Text
		return &syntax.UnaryExpr{Op: op, X: p.parseBinary(precShift), Span: p.span(start)}
	case p.is("{"):
		p.skipBalanced("{", "}")
		p.acceptPatternDesignation()
		return &syntax.InitializerExpr{Span: p.span(start)}
	case p.is("["):
		p.skipBalanced("[", "]")
		p.acceptPatternDesignation()
		return &syntax.InitializerExpr{Span: p.span(start)}
	case p.isWord("var") && p.peek(1).Kind == TokIdent:
		p.advance()
		name := p.advance().Text
		return &syntax.DeclExpr{Name: name, Span: p.span(start)}
	case p.is("(") && !p.isCastAhead():
		p.advance()
		inner := p.parsePattern()
		p.expect(")")
		return &syntax.ParenExpr{X: inner, Span: p.span(start)}
	}
	var decl *syntax.DeclExpr
	if p.try(func() {
		typ := p.parseType()
		if !p.isIdent() || p.isWord("and") || p.isWord("or") || p.isWord("when") {
			p.failf("not a declaration pattern")
		}
		decl = &syntax.DeclExpr{Type: typ, Name: p.advance().Text}
	}) {
		// declaration pattern: string s
		decl.Span = p.span(start)
		return decl
	}
	x := p.parseBinary(precShift)
	if p.is("{") {
		// type pattern with a property sub-pattern: Point { X: 0 }
		p.skipBalanced("{", "}")
		p.acceptPatternDesignation()
	}
	return x
}

func (p *parser) acceptPatternDesignation() {
	if p.isIdent() && !p.isWord("and") && !p.isWord("or") && !p.isWord("when") {
		p.advance()
	}
}

func (p *parser) parseUnary() syntax.Expr {
	start := p.tok().Start
	t := p.tok()
	if t.Kind == TokPunct {
		switch t.Text {
		case "+", "-", "!", "~", "++", "--", "^", "&", "*":
			p.advance()
			return &syntax.UnaryExpr{Op: t.Text, X: p.parseUnary(), Span: p.span(start)}
		case "(":
			if cast := p.tryCast(); cast != nil {
				return cast
			}
		}
	}
	if t.Kind == TokIdent && t.Text == "await" && p.startsOperand(1) {
		p.advance()
		return &syntax.AwaitExpr{X: p.parseUnary(), Span: p.span(start)}
	}
	if t.Kind == TokKeyword && (t.Text == "ref" || t.Text == "out" || t.Text == "in") {
		p.advance()
		return &syntax.UnaryExpr{Op: t.Text, X: p.parseUnary(), Span: p.span(start)}
	}
	x := p.parsePostfix(p.parsePrimary(), start)
	if p.is("switch") && p.peekIs(1, "{") {
		x = p.parseSwitchExpr(x, start)
	}
	return x
}

// startsOperand reports whether the token at offset n can begin an operand.
func (p *parser) startsOperand(n int) bool {
	t := p.peek(n)
	switch t.Kind {
	case TokIdent, TokInt, TokReal, TokString, TokChar:
		return true
	case TokKeyword:
		switch t.Text {
		case "this", "base", "new", "typeof", "default", "sizeof", "true", "false", "null", "checked", "unchecked", "stackalloc", "delegate":
			return true
		}
		return predefinedTypes[t.Text]
	case TokPunct:
		return t.Text == "(" || t.Text == "!" || t.Text == "~" || t.Text == "[" || t.Text == "@"
	}
	return false
}

// isCastAhead reports whether `( type )` followed by an operand starts at the current token.
func (p *parser) isCastAhead() bool {
	mark := p.pos
	cast := false
	p.try(func() { cast = p.tryCast() != nil })
	p.pos = mark
	return cast
}

func (p *parser) tryCast() syntax.Expr {
	start := p.tok().Start
	mark := p.pos
	var typ *syntax.TypeRef
	ok := p.try(func() {
		p.expect("(")
		typ = p.parseType()
		p.expect(")")
	})
	if !ok {
		return nil
	}
	predefined := predefinedTypes[typ.Name]
	complexType := predefined || len(typ.Args) > 0 || typ.Nullable || typ.Rank > 0 || typ.Pointer || typ.Name == "(tuple)"
	next := p.tok()
	castable := false
	switch next.Kind {
	case TokIdent, TokInt, TokReal, TokString, TokChar:
		castable = !(next.Kind == TokIdent && (next.Text == "and" || next.Text == "or" || next.Text == "when"))
	case TokKeyword:
		castable = p.startsOperand(0)
	case TokPunct:
		switch next.Text {
		case "(", "!", "~", "@":
			castable = true
		case "-", "+", "&", "*", "++", "--", "^":
			castable = complexType
		}
	}
	if !castable {
		p.pos = mark
		return nil
	}
	x := p.parseUnary()
	return &syntax.CastExpr{Type: typ, X: x, Span: p.span(start)}
}

func (p *parser) parsePostfix(x syntax.Expr, start int) syntax.Expr {
	for {
		switch {
		case p.is("."), p.is("?."), p.is("->"):
			nullCond := p.advance().Text == "?."
			name := p.expectIdentOrKeywordMember()
			ma := &syntax.MemberAccess{X: x, Name: name, NullCond: nullCond}
			if p.is("<") {
				if args, ok := p.tryTypeArgsInExpr(); ok {
					ma.TypeArgs = args
				}
			}
			ma.Span = p.span(start)
			x = ma
		case p.is("?") && p.peekIs(1, "[") && p.adjacent(0):
			p.advance()
			args := p.parseArguments("[", "]")
			x = &syntax.ElementAccess{X: x, Args: args, NullCond: true, Span: p.span(start)}
		case p.is("("):
			args := p.parseArguments("(", ")")
			x = &syntax.Invocation{Fun: x, Args: args, Span: p.span(start)}
		case p.is("["):
			args := p.parseArguments("[", "]")
			x = &syntax.ElementAccess{X: x, Args: args, Span: p.span(start)}
		case p.is("++"), p.is("--"):
			op := p.advance().Text
			x = &syntax.UnaryExpr{Op: op, X: x, Postfix: true, Span: p.span(start)}
		case p.is("!") && p.isNullForgiving():
			p.advance()
			x = &syntax.UnaryExpr{Op: "!", X: x, Postfix: true, Span: p.span(start)}
		default:
			return x
		}
	}
}

// isNullForgiving reports whether `!` at the current position is a postfix null-forgiving operator.
func (p *parser) isNullForgiving() bool {
	n := p.peek(1)
	if n.Kind == TokEOF {
		return true
	}
	if n.Kind != TokPunct {
		return false
	}
	switch n.Text {
	case ".", "?.", ";", ")", "]", ",", "}", "[", "(", ":", "?", "=":
		return true
	}
	return false
}

func (p *parser) expectIdentOrKeywordMember() string {
	t := p.tok()
	if t.Kind == TokIdent || (t.Kind == TokKeyword && predefinedTypes[t.Text]) {
		p.advance()
		return t.Text
	}
	p.failf("expected member name, found %s", describe(t))
	return ""
}

func (p *parser) parseArguments(open, close string) []*syntax.Argument {
	p.expect(open)
	var args []*syntax.Argument
	for !p.is(close) {
		args = append(args, p.parseArgument())
		if !p.accept(",") {
			break
		}
	}
	p.expect(close)
	return args
}

func (p *parser) parseArgument() *syntax.Argument {
	start := p.tok().Start
	a := &syntax.Argument{}
	if p.isIdent() && p.peekIs(1, ":") && !p.peekIs(2, ":") {
		a.Name = p.advance().Text
		p.advance()
	}
	if p.is("ref") || p.is("out") || p.is("in") {
		a.Modifier = p.advance().Text
		if a.Modifier == "out" {
			declStart := p.tok().Start
			if p.isTypeThenIdent() {
				typ := p.parseType()
				name := p.advance().Text
				if typ.Name == "var" {
					typ = nil
				}
				a.Value = &syntax.DeclExpr{Type: typ, Name: name, Span: p.span(declStart)}
				a.Span = p.span(start)
				return a
			}
		}
	}
	a.Value = p.parseExpr()
	a.Span = p.span(start)
	return a
}

func (p *parser) parseInitializer() syntax.Expr {
	start := p.tok().Start
	p.expect("{")
	init := &syntax.InitializerExpr{}
	for !p.is("}") {
		if p.is("{") {
			init.Elems = append(init.Elems, p.parseInitializer())
		} else {
			init.Elems = append(init.Elems, p.parseExpr())
		}
		if !p.accept(",") {
			break
		}
	}
	p.expect("}")
	init.Span = p.span(start)
	return init
}

func (p *parser) parseSwitchExpr(x syntax.Expr, start int) syntax.Expr {
	p.expect("switch")
	p.expect("{")
	sw := &syntax.SwitchExpr{X: x}
	for !p.is("}") {
		armStart := p.tok().Start
		arm := &syntax.SwitchArm{Pattern: p.parsePattern()}
		if p.isWord("when") {
			p.advance()
			arm.When = p.parseExpr()
		}
		p.expect("=>")
		arm.Value = p.parseExpr()
		arm.Span = p.span(armStart)
		sw.Arms = append(sw.Arms, arm)
		if !p.accept(",") {
			break
		}
	}
	p.expect("}")
	sw.Span = p.span(start)
	return sw
}

// tryLambda parses `x => ...`, `async x => ...`, `(a, b) => ...` and `(int a) => ...`.
func (p *parser) tryLambda() syntax.Expr {
	start := p.tok().Start
	off := 0
	async := false
	if p.isWord("async") && (p.peek(1).Kind == TokIdent || p.peekIs(1, "(")) {
		async = true
		off = 1
	}
	if tokenIs(p.peek(off), "static") {
		off++
	}
	switch {
	case p.peek(off).Kind == TokIdent && p.peekIs(off+1, "=>"):
		for i := 0; i < off; i++ {
			p.advance()
		}
		name := p.advance()
		p.advance()
		param := &syntax.Param{Name: name.Text, NameSpan: syntax.Span{Start: name.Start, End: name.End}, Span: syntax.Span{Start: name.Start, End: name.End}}
		return &syntax.LambdaExpr{Params: []*syntax.Param{param}, Body: p.parseLambdaBody(), Async: async, Span: p.span(start)}
	case p.peekIs(off, "("):
		close := p.matchingParen(p.pos + off)
		if close < 0 || close+1 >= len(p.tokens) || !tokenIs(p.tokens[close+1], "=>") {
			return nil
		}
		for i := 0; i < off; i++ {
			p.advance()
		}
		params := p.parseLambdaParams()
		p.expect("=>")
		return &syntax.LambdaExpr{Params: params, Body: p.parseLambdaBody(), Async: async, Span: p.span(start)}
	}
	return nil
}

func tokenIs(t Token, text string) bool {
	return (t.Kind == TokPunct || t.Kind == TokKeyword) && t.Text == text
}

// matchingParen returns the index of the `)` closing the `(` at index open, or -1.
func (p *parser) matchingParen(open int) int {
	depth := 0
	for i := open; i < len(p.tokens); i++ {
		switch {
		case tokenIs(p.tokens[i], "("):
			depth++
		case tokenIs(p.tokens[i], ")"):
			depth--
			if depth == 0 {
				return i
			}
		case p.tokens[i].Kind == TokEOF:
			return -1
		}
	}
	return -1
}

func (p *parser) parseLambdaParams() []*syntax.Param {
	p.expect("(")
	var params []*syntax.Param
	for !p.is(")") {
		start := p.tok().Start
		if p.isIdent() && (p.peekIs(1, ",") || p.peekIs(1, ")")) {
			name := p.advance()
			params = append(params, &syntax.Param{Name: name.Text, NameSpan: syntax.Span{Start: name.Start, End: name.End}, Span: p.span(start)})
		} else {
			params = append(params, p.parseParam())
		}
		if !p.accept(",") {
			break
		}
	}
	p.expect(")")
	return params
}

func (p *parser) parseLambdaBody() syntax.Node {
	if p.is("{") {
		return p.parseBlock()
	}
	return p.parseExpr()
}

func (p *parser) parsePrimary() syntax.Expr {
	start := p.tok().Start
	t := p.tok()

	switch t.Kind {
	case TokInt:
		p.advance()
		return &syntax.Literal{Kind: syntax.LitInt, Value: t.Text, Span: p.span(start)}
	case TokReal:
		p.advance()
		return &syntax.Literal{Kind: syntax.LitReal, Value: t.Text, Span: p.span(start)}
	case TokString:
		p.advance()
		return &syntax.Literal{Kind: syntax.LitString, Value: t.Text, Span: p.span(start)}
	case TokChar:
		p.advance()
		return &syntax.Literal{Kind: syntax.LitChar, Value: t.Text, Span: p.span(start)}
	case TokIdent:
		p.advance()
		id := &syntax.Ident{Name: t.Text}
		if p.accept("::") {
			// alias-qualified name: global::System
			id.Name = p.expectIdent().Text
		}
		if p.is("<") {
			if args, ok := p.tryTypeArgsInExpr(); ok {
				id.TypeArgs = args
			}
		}
		id.Span = p.span(start)
		return id
	case TokKeyword:
		return p.parseKeywordPrimary(t, start)
	case TokPunct:
		switch t.Text {
		case "(":
			return p.parseParenOrTuple()
		case "[":
			// collection expression
			args := p.parseArguments("[", "]")
			init := &syntax.InitializerExpr{}
			for _, a := range args {
				init.Elems = append(init.Elems, a.Value)
			}
			init.Span = p.span(start)
			return init
		case "{":
			return p.parseInitializer()
		}
	}
	p.failf("unexpected %s in expression", describe(t))
	return nil
}

func (p *parser) parseKeywordPrimary(t Token, start int) syntax.Expr {
	switch t.Text {
	case "true", "false":
		p.advance()
		return &syntax.Literal{Kind: syntax.LitBool, Value: t.Text, Span: p.span(start)}
	case "null":
		p.advance()
		return &syntax.Literal{Kind: syntax.LitNull, Value: t.Text, Span: p.span(start)}
	case "this":
		p.advance()
		return &syntax.ThisExpr{Span: p.span(start)}
	case "base":
		p.advance()
		return &syntax.BaseExpr{Span: p.span(start)}
	case "new":
		return p.parseNew()
	case "stackalloc":
		p.advance()
		n := &syntax.NewExpr{}
		if !p.is("[") {
			n.Type = p.parseType()
		}
		if p.is("[") {
			for _, a := range p.parseArguments("[", "]") {
				n.ArraySize = append(n.ArraySize, a.Value)
			}
		}
		if p.is("{") {
			n.Init = p.parseInitializer().(*syntax.InitializerExpr).Elems
		}
		n.Span = p.span(start)
		return n
	case "typeof", "sizeof":
		p.advance()
		p.expect("(")
		typ := p.parseType()
		p.expect(")")
		return &syntax.TypeOfExpr{Keyword: t.Text, Type: typ, Span: p.span(start)}
	case "default":
		p.advance()
		if p.accept("(") {
			typ := p.parseType()
			p.expect(")")
			return &syntax.TypeOfExpr{Keyword: "default", Type: typ, Span: p.span(start)}
		}
		return &syntax.DefaultExpr{Span: p.span(start)}
	case "checked", "unchecked":
		p.advance()
		p.expect("(")
		x := p.parseExpr()
		p.expect(")")
		return &syntax.ParenExpr{X: x, Span: p.span(start)}
	case "delegate":
		p.advance()
		var params []*syntax.Param
		if p.is("(") {
			params = p.parseParams("(", ")")
		}
		body := p.parseBlock()
		return &syntax.LambdaExpr{Params: params, Body: body, Span: p.span(start)}
	}
	if predefinedTypes[t.Text] {
		p.advance()
		return &syntax.PredefinedType{Name: t.Text, Span: p.span(start)}
	}
	p.failf("unexpected %s in expression", describe(t))
	return nil
}

func (p *parser) parseNew() syntax.Expr {
	start := p.tok().Start
	p.expect("new")
	n := &syntax.NewExpr{}
	switch {
	case p.is("("):
		// target-typed new()
		n.Args = p.parseArguments("(", ")")
	case p.is("["):
		// implicitly typed array new[] { }
		p.skipBalanced("[", "]")
	case p.is("{"):
		// anonymous type
	default:
		n.Type = p.parseNewType()
		if p.is("[") {
			for _, a := range p.parseArguments("[", "]") {
				n.ArraySize = append(n.ArraySize, a.Value)
			}
			for p.is("[") {
				p.skipBalanced("[", "]")
			}
			n.Type.Rank++
		} else if p.is("(") {
			n.Args = p.parseArguments("(", ")")
		}
	}
	if p.is("{") {
		n.Init = p.parseInitializer().(*syntax.InitializerExpr).Elems
	}
	n.Span = p.span(start)
	return n
}

// parseNewType parses the type after `new`, stopping before a sized array bracket.
func (p *parser) parseNewType() *syntax.TypeRef {
	start := p.tok().Start
	var t *syntax.TypeRef
	switch {
	case p.tok().Kind == TokKeyword && predefinedTypes[p.tok().Text]:
		t = &syntax.TypeRef{Name: p.advance().Text}
	case p.is("("):
		t = p.parseTupleType()
	default:
		t = p.parseNamedType()
	}
	if p.is("?") && !p.peekIs(1, ".") {
		p.advance()
		t.Nullable = true
	}
	for p.is("[") && (p.peekIs(1, "]") || p.peekIs(1, ",")) {
		p.advance()
		for p.accept(",") {
		}
		p.expect("]")
		t.Rank++
	}
	t.Span = p.span(start)
	return t
}

func (p *parser) parseParenOrTuple() syntax.Expr {
	start := p.tok().Start
	p.expect("(")
	first := p.parseArgument()
	if p.accept(")") {
		if first.Name == "" && first.Modifier == "" {
			return &syntax.ParenExpr{X: first.Value, Span: p.span(start)}
		}
		p.failf("tuple needs at least two elements")
	}
	tuple := &syntax.TupleExpr{Elems: []*syntax.Argument{first}}
	for p.accept(",") {
		tuple.Elems = append(tuple.Elems, p.parseArgument())
	}
	p.expect(")")
	tuple.Span = p.span(start)
	return tuple
}
