package parser

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// TokenKind classifies lexer output.
type TokenKind int

const (
	TokEOF TokenKind = iota
	TokIdent
	TokKeyword
	TokInt
	TokReal
	TokString
	TokChar
	TokPunct
)

func (k TokenKind) String() string {
	switch k {
	case TokEOF:
		return "end of file"
	case TokIdent:
		return "identifier"
	case TokKeyword:
		return "keyword"
	case TokInt, TokReal:
		return "number"
	case TokString:
		return "string"
	case TokChar:
		return "char"
	case TokPunct:
		return "punctuation"
	default:
		return "unknown"
	}
}

// Token is one lexeme with its byte range.
type Token struct {
	Kind  TokenKind
	Text  string
	Start int
	End   int
	// Doc carries the `///` comment block immediately preceding the token.
	Doc string
}

var keywords = map[string]bool{
	"abstract": true, "as": true, "base": true, "bool": true, "break": true, "byte": true,
	"case": true, "catch": true, "char": true, "checked": true, "class": true, "const": true,
	"continue": true, "decimal": true, "default": true, "delegate": true, "do": true, "double": true,
	"else": true, "enum": true, "event": true, "explicit": true, "extern": true, "false": true,
	"finally": true, "fixed": true, "float": true, "for": true, "foreach": true, "goto": true,
	"if": true, "implicit": true, "in": true, "int": true, "interface": true, "internal": true,
	"is": true, "lock": true, "long": true, "namespace": true, "new": true, "null": true,
	"object": true, "operator": true, "out": true, "override": true, "params": true, "private": true,
	"protected": true, "public": true, "readonly": true, "ref": true, "return": true, "sbyte": true,
	"sealed": true, "short": true, "sizeof": true, "stackalloc": true, "static": true, "string": true,
	"struct": true, "switch": true, "this": true, "throw": true, "true": true, "try": true,
	"typeof": true, "uint": true, "ulong": true, "unchecked": true, "unsafe": true, "ushort": true,
	"using": true, "virtual": true, "void": true, "volatile": true, "while": true,
}

// predefinedTypes are keywords that name a type.
var predefinedTypes = map[string]bool{
	"bool": true, "byte": true, "char": true, "decimal": true, "double": true, "float": true,
	"int": true, "long": true, "object": true, "sbyte": true, "short": true, "string": true,
	"uint": true, "ulong": true, "ushort": true, "void": true,
}

// punctuators ordered longest first so the first prefix match wins.
var punctuators = []string{
	"<<=", "??=", "...",
	"=>", "==", "!=", "<=", ">=", "&&", "||", "++", "--", "+=", "-=", "*=", "/=", "%=",
	"&=", "|=", "^=", "<<", "->", "::", "??", "?.", "..",
	"{", "}", "(", ")", "[", "]", ";", ",", ".", ":", "?", "+", "-", "*", "/", "%",
	"&", "|", "^", "!", "~", "=", "<", ">", "@",
}

type lexer struct {
	src      string
	pos      int
	tokens   []Token
	doc      []string
	nullable bool
}

// Lex splits source into tokens. Comments and preprocessor lines are dropped;
// `#nullable enable` is reported through the second result.
func Lex(src string) ([]Token, bool, error) {
	lx := &lexer{src: src}
	if strings.HasPrefix(lx.src, "\uFEFF") {
		lx.pos = len("\uFEFF")
	}
	for {
		if err := lx.skipTrivia(); err != nil {
			return nil, false, err
		}
		if lx.pos >= len(lx.src) {
			lx.emit(TokEOF, lx.pos, lx.pos)
			return lx.tokens, lx.nullable, nil
		}
		if err := lx.next(); err != nil {
			return nil, false, err
		}
	}
}

func (lx *lexer) emit(kind TokenKind, start, end int) {
	tok := Token{Kind: kind, Text: lx.src[start:end], Start: start, End: end}
	if len(lx.doc) > 0 {
		tok.Doc = strings.Join(lx.doc, "\n")
		lx.doc = nil
	}
	lx.tokens = append(lx.tokens, tok)
}

func (lx *lexer) errorf(offset int, format string, args ...any) error {
	return newParseError(lx.src, offset, format, args...)
}

func (lx *lexer) peekByte(off int) byte {
	if lx.pos+off < len(lx.src) {
		return lx.src[lx.pos+off]
	}
	return 0
}

func (lx *lexer) atLineStart() bool {
	for i := lx.pos - 1; i >= 0; i-- {
		switch lx.src[i] {
		case ' ', '\t', '\r':
			continue
		case '\n':
			return true
		default:
			return false
		}
	}
	return true
}

func (lx *lexer) skipTrivia() error {
	for lx.pos < len(lx.src) {
		c := lx.src[lx.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '\f' || c == '\v':
			lx.pos++
		case c == '/' && lx.peekByte(1) == '/':
			end := strings.IndexByte(lx.src[lx.pos:], '\n')
			if end < 0 {
				end = len(lx.src) - lx.pos
			}
			line := lx.src[lx.pos : lx.pos+end]
			if strings.HasPrefix(line, "///") && !strings.HasPrefix(line, "////") {
				lx.doc = append(lx.doc, strings.TrimSpace(strings.TrimPrefix(line, "///")))
			}
			lx.pos += end
		case c == '/' && lx.peekByte(1) == '*':
			end := strings.Index(lx.src[lx.pos+2:], "*/")
			if end < 0 {
				return lx.errorf(lx.pos, "unterminated block comment")
			}
			lx.pos += end + 4
		case c == '#' && lx.atLineStart():
			end := strings.IndexByte(lx.src[lx.pos:], '\n')
			if end < 0 {
				end = len(lx.src) - lx.pos
			}
			directive := strings.Fields(lx.src[lx.pos+1 : lx.pos+end])
			if len(directive) >= 2 && directive[0] == "nullable" && directive[1] == "enable" {
				lx.nullable = true
			}
			lx.pos += end
		case c >= utf8.RuneSelf:
			r, size := utf8.DecodeRuneInString(lx.src[lx.pos:])
			if !unicode.IsSpace(r) {
				return nil
			}
			lx.pos += size
		default:
			return nil
		}
	}
	return nil
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r) || unicode.Is(unicode.Pc, r)
}

func (lx *lexer) next() error {
	start := lx.pos
	c := lx.src[lx.pos]
	r, size := utf8.DecodeRuneInString(lx.src[lx.pos:])

	switch {
	case isIdentStart(r):
		lx.pos += size
		lx.scanIdentTail()
		text := lx.src[start:lx.pos]
		if keywords[text] {
			lx.emit(TokKeyword, start, lx.pos)
		} else {
			lx.emit(TokIdent, start, lx.pos)
		}
		return nil

	case c == '@' && lx.pos+1 < len(lx.src):
		n := lx.src[lx.pos+1]
		if n == '"' {
			return lx.scanVerbatimString(start, lx.pos+1)
		}
		if n == '$' && lx.peekByte(2) == '"' {
			return lx.scanInterpolatedString(start, lx.pos+2, true)
		}
		nr, nsize := utf8.DecodeRuneInString(lx.src[lx.pos+1:])
		if isIdentStart(nr) {
			// verbatim identifier: the token text excludes '@'
			lx.pos += 1 + nsize
			lx.scanIdentTail()
			lx.emit(TokIdent, start+1, lx.pos)
			return nil
		}

	case c == '$':
		switch {
		case lx.peekByte(1) == '"':
			if strings.HasPrefix(lx.src[lx.pos+1:], `"""`) {
				return lx.scanRawString(start, lx.pos+1)
			}
			return lx.scanInterpolatedString(start, lx.pos+1, false)
		case lx.peekByte(1) == '@' && lx.peekByte(2) == '"':
			return lx.scanInterpolatedString(start, lx.pos+2, true)
		case lx.peekByte(1) == '$':
			i := lx.pos
			for i < len(lx.src) && lx.src[i] == '$' {
				i++
			}
			if strings.HasPrefix(lx.src[i:], `"""`) {
				return lx.scanRawString(start, i)
			}
		}

	case c == '"':
		if strings.HasPrefix(lx.src[lx.pos:], `"""`) {
			return lx.scanRawString(start, lx.pos)
		}
		return lx.scanQuoted(start, '"', TokString)

	case c == '\'':
		return lx.scanQuoted(start, '\'', TokChar)

	case c >= '0' && c <= '9', c == '.' && lx.peekByte(1) >= '0' && lx.peekByte(1) <= '9':
		lx.scanNumber(start)
		return nil
	}

	for _, p := range punctuators {
		if strings.HasPrefix(lx.src[lx.pos:], p) {
			lx.pos += len(p)
			lx.emit(TokPunct, start, lx.pos)
			return nil
		}
	}
	return lx.errorf(start, "unexpected character %q", r)
}

func (lx *lexer) scanIdentTail() {
	for lx.pos < len(lx.src) {
		r, size := utf8.DecodeRuneInString(lx.src[lx.pos:])
		if !isIdentPart(r) {
			return
		}
		lx.pos += size
	}
}

func (lx *lexer) scanNumber(start int) {
	kind := TokInt
	if lx.src[lx.pos] == '0' && (lx.peekByte(1) == 'x' || lx.peekByte(1) == 'X' || lx.peekByte(1) == 'b' || lx.peekByte(1) == 'B') {
		lx.pos += 2
		for lx.pos < len(lx.src) && (isHexDigit(lx.src[lx.pos]) || lx.src[lx.pos] == '_') {
			lx.pos++
		}
	} else {
		lx.scanDigits()
		if lx.pos < len(lx.src) && lx.src[lx.pos] == '.' && lx.peekByte(1) >= '0' && lx.peekByte(1) <= '9' {
			kind = TokReal
			lx.pos++
			lx.scanDigits()
		}
		if lx.pos < len(lx.src) && (lx.src[lx.pos] == 'e' || lx.src[lx.pos] == 'E') {
			kind = TokReal
			lx.pos++
			if lx.pos < len(lx.src) && (lx.src[lx.pos] == '+' || lx.src[lx.pos] == '-') {
				lx.pos++
			}
			lx.scanDigits()
		}
	}
	for lx.pos < len(lx.src) && strings.IndexByte("uUlLfFdDmM", lx.src[lx.pos]) >= 0 {
		if strings.IndexByte("fFdDmM", lx.src[lx.pos]) >= 0 {
			kind = TokReal
		}
		lx.pos++
	}
	lx.emit(kind, start, lx.pos)
}

func (lx *lexer) scanDigits() {
	for lx.pos < len(lx.src) && ((lx.src[lx.pos] >= '0' && lx.src[lx.pos] <= '9') || lx.src[lx.pos] == '_') {
		lx.pos++
	}
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func (lx *lexer) scanQuoted(start int, quote byte, kind TokenKind) error {
	lx.pos++
	for lx.pos < len(lx.src) {
		switch lx.src[lx.pos] {
		case '\\':
			lx.pos += 2
		case '\n':
			return lx.errorf(start, "newline in literal")
		case quote:
			lx.pos++
			lx.emit(kind, start, lx.pos)
			return nil
		default:
			lx.pos++
		}
	}
	return lx.errorf(start, "unterminated literal")
}

// scanVerbatimString scans @"..." where "" escapes a quote. quotePos is the opening quote.
func (lx *lexer) scanVerbatimString(start, quotePos int) error {
	lx.pos = quotePos + 1
	for lx.pos < len(lx.src) {
		if lx.src[lx.pos] == '"' {
			if lx.peekByte(1) == '"' {
				lx.pos += 2
				continue
			}
			lx.pos++
			lx.emit(TokString, start, lx.pos)
			return nil
		}
		lx.pos++
	}
	return lx.errorf(start, "unterminated verbatim string")
}

// scanInterpolatedString scans $"..." including nested holes; quotePos is the opening quote.
func (lx *lexer) scanInterpolatedString(start, quotePos int, verbatim bool) error {
	lx.pos = quotePos + 1
	depth := 0
	for lx.pos < len(lx.src) {
		c := lx.src[lx.pos]
		switch {
		case depth == 0 && c == '{' && lx.peekByte(1) == '{':
			lx.pos += 2
		case depth == 0 && c == '}' && lx.peekByte(1) == '}':
			lx.pos += 2
		case c == '{':
			depth++
			lx.pos++
		case c == '}' && depth > 0:
			depth--
			lx.pos++
		case depth > 0 && (c == '"' || c == '\''):
			// nested literal inside a hole
			if err := lx.skipNestedLiteral(c); err != nil {
				return err
			}
		case depth == 0 && !verbatim && c == '\\':
			lx.pos += 2
		case depth == 0 && c == '"':
			if verbatim && lx.peekByte(1) == '"' {
				lx.pos += 2
				continue
			}
			lx.pos++
			lx.emit(TokString, start, lx.pos)
			return nil
		case depth == 0 && !verbatim && c == '\n':
			return lx.errorf(start, "newline in interpolated string")
		default:
			lx.pos++
		}
	}
	return lx.errorf(start, "unterminated interpolated string")
}

func (lx *lexer) skipNestedLiteral(quote byte) error {
	begin := lx.pos
	lx.pos++
	for lx.pos < len(lx.src) {
		switch lx.src[lx.pos] {
		case '\\':
			lx.pos += 2
		case quote:
			lx.pos++
			return nil
		default:
			lx.pos++
		}
	}
	return lx.errorf(begin, "unterminated literal")
}

// scanRawString scans a """ raw string """; quotePos points at the first quote of the delimiter.
func (lx *lexer) scanRawString(start, quotePos int) error {
	n := 0
	for quotePos+n < len(lx.src) && lx.src[quotePos+n] == '"' {
		n++
	}
	delim := strings.Repeat(`"`, n)
	end := strings.Index(lx.src[quotePos+n:], delim)
	if end < 0 {
		return lx.errorf(start, "unterminated raw string")
	}
	lx.pos = quotePos + n + end + n
	lx.emit(TokString, start, lx.pos)
	return nil
}
