package gocas

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ============================================================
// Scanner
// ============================================================

type tokenType int

const (
	tokEOF tokenType = iota
	tokNumber
	tokIdent
	tokOp
	tokLParen
	tokRParen
	tokLBracket
	tokRBracket
	tokComma
	tokIllegal
)

type token struct {
	typ tokenType
	lit string
	pos int
}

type scanner struct {
	src string
	pos int
}

func (s *scanner) next() token {
	for s.pos < len(s.src) {
		r, w := utf8.DecodeRuneInString(s.src[s.pos:])
		if !unicode.IsSpace(r) {
			break
		}
		s.pos += w
	}
	if s.pos >= len(s.src) {
		return token{typ: tokEOF, pos: s.pos}
	}
	start := s.pos
	c := s.src[s.pos]
	switch {
	case c == '*' && strings.HasPrefix(s.src[s.pos:], "**"):
		s.pos += 2
		return token{typ: tokOp, lit: "^", pos: start}
	case strings.IndexByte("+-*/^", c) >= 0:
		s.pos++
		return token{typ: tokOp, lit: string(c), pos: start}
	case c == '(':
		s.pos++
		return token{typ: tokLParen, lit: "(", pos: start}
	case c == ')':
		s.pos++
		return token{typ: tokRParen, lit: ")", pos: start}
	case c == '[':
		s.pos++
		return token{typ: tokLBracket, lit: "[", pos: start}
	case c == ']':
		s.pos++
		return token{typ: tokRBracket, lit: "]", pos: start}
	case c == ',':
		s.pos++
		return token{typ: tokComma, lit: ",", pos: start}
	case isDigit(c) || c == '.':
		return s.number()
	case isIdentStart(c):
		for s.pos < len(s.src) && isIdentPart(s.src[s.pos]) {
			s.pos++
		}
		return token{typ: tokIdent, lit: s.src[start:s.pos], pos: start}
	}
	_, w := utf8.DecodeRuneInString(s.src[s.pos:])
	s.pos += w
	return token{typ: tokIllegal, lit: s.src[start:s.pos], pos: start}
}

// number scans digits, an optional fraction and an optional exponent.
func (s *scanner) number() token {
	start := s.pos
	for s.pos < len(s.src) && isDigit(s.src[s.pos]) {
		s.pos++
	}
	if s.pos < len(s.src) && s.src[s.pos] == '.' {
		s.pos++
		for s.pos < len(s.src) && isDigit(s.src[s.pos]) {
			s.pos++
		}
	}
	if s.pos < len(s.src) && (s.src[s.pos] == 'e' || s.src[s.pos] == 'E') {
		save := s.pos
		s.pos++
		if s.pos < len(s.src) && (s.src[s.pos] == '+' || s.src[s.pos] == '-') {
			s.pos++
		}
		if s.pos < len(s.src) && isDigit(s.src[s.pos]) {
			for s.pos < len(s.src) && isDigit(s.src[s.pos]) {
				s.pos++
			}
		} else {
			s.pos = save
		}
	}
	return token{typ: tokNumber, lit: s.src[start:s.pos], pos: start}
}

func isDigit(c byte) bool      { return c >= '0' && c <= '9' }
func isIdentStart(c byte) bool { return c == '_' || (c|0x20) >= 'a' && (c|0x20) <= 'z' }
func isIdentPart(c byte) bool  { return isIdentStart(c) || isDigit(c) }

// ============================================================
// Parser
// ============================================================

// Parser turns linear notation into an expression tree.
//
// Grammar, loosest first: + and - (left), * and / (left), prefix -,
// ^ and ** (right). Integers read as exact numbers; literals with a decimal
// point or exponent read as inexact. name(expr) is a function application
// and integrate[expr, x] is the deferred integration marker.
type Parser struct {
	// MaxDepth bounds the depth of the resulting tree. Zero, or a value
	// above the package MaxDepth, means MaxDepth.
	MaxDepth int

	s     scanner
	cur   token
	peek  token
	depth int
}

// Parse reads text with the default limits.
func Parse(text string) (Expr, error) {
	return (&Parser{}).Parse(text)
}

// MustParse is like Parse but panics on error. It is meant for tests and
// package-level tables.
func MustParse(text string) Expr {
	e, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return e
}

func (p *Parser) limit() int {
	if p.MaxDepth <= 0 || p.MaxDepth > MaxDepth {
		return MaxDepth
	}
	return p.MaxDepth
}

// Parse reads a complete expression from text.
func (p *Parser) Parse(text string) (Expr, error) {
	p.s = scanner{src: text}
	p.depth = 0
	p.nextToken()
	p.nextToken()
	if p.cur.typ == tokEOF {
		return nil, &ParseError{Pos: 0, Msg: "empty expression"}
	}
	e, err := p.parseExpression(0)
	if err != nil {
		return nil, err
	}
	if p.peek.typ != tokEOF {
		return nil, p.errorf(p.peek, "unexpected %q after expression", p.peek.lit)
	}
	if Depth(e) > p.limit() {
		return nil, fmt.Errorf("%w: depth exceeds %d", ErrTooDeep, p.limit())
	}
	return e, nil
}

func (p *Parser) nextToken() {
	p.cur = p.peek
	p.peek = p.s.next()
}

func (p *Parser) errorf(t token, format string, args ...interface{}) error {
	return &ParseError{Pos: t.pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *Parser) expectPeek(typ tokenType, what string) error {
	if p.peek.typ != typ {
		if p.peek.typ == tokEOF {
			return p.errorf(p.peek, "expected %s, got end of input", what)
		}
		return p.errorf(p.peek, "expected %s, got %q", what, p.peek.lit)
	}
	p.nextToken()
	return nil
}

func (p *Parser) peekPrecedence() int {
	if p.peek.typ != tokOp {
		return 0
	}
	return Precedence(Op(p.peek.lit[0]))
}

// parseExpression parses the expression starting at p.cur whose operators
// bind tighter than prec.
func (p *Parser) parseExpression(prec int) (Expr, error) {
	p.depth++
	defer func() { p.depth-- }()
	if p.depth > p.limit() {
		return nil, fmt.Errorf("%w: nesting exceeds %d", ErrTooDeep, p.limit())
	}

	left, err := p.parsePrefix()
	if err != nil {
		return nil, err
	}
	for prec < p.peekPrecedence() {
		p.nextToken()
		op := Op(p.cur.lit[0])
		rprec := Precedence(op)
		if RightAssoc(op) {
			rprec--
		}
		if p.peek.typ == tokEOF {
			return nil, p.errorf(p.peek, "missing right operand of %s", op)
		}
		p.nextToken()
		right, err := p.parseExpression(rprec)
		if err != nil {
			return nil, err
		}
		left = newBinOp(op, left, right)
	}
	return left, nil
}

func (p *Parser) parsePrefix() (Expr, error) {
	t := p.cur
	switch t.typ {
	case tokNumber:
		return parseNumber(t)
	case tokIdent:
		return p.parseIdent()
	case tokLParen:
		p.nextToken()
		e, err := p.parseExpression(0)
		if err != nil {
			return nil, err
		}
		if err := p.expectPeek(tokRParen, "')'"); err != nil {
			return nil, err
		}
		return e, nil
	case tokOp:
		if t.lit == "-" {
			if p.peek.typ == tokEOF {
				return nil, p.errorf(p.peek, "missing operand of unary -")
			}
			p.nextToken()
			arg, err := p.parseExpression(precUnary)
			if err != nil {
				return nil, err
			}
			return Negate(arg), nil
		}
		return nil, p.errorf(t, "unexpected operator %q", t.lit)
	case tokEOF:
		return nil, p.errorf(t, "unexpected end of input")
	}
	return nil, p.errorf(t, "unexpected %q", t.lit)
}

func (p *Parser) parseIdent() (Expr, error) {
	name := p.cur.lit
	switch p.peek.typ {
	case tokLParen:
		return p.parseCall(name)
	case tokLBracket:
		switch name {
		case TransformIntegrate:
			return p.parseIntegral()
		case "d":
			fname, err := p.parseDerivName()
			if err != nil {
				return nil, err
			}
			if p.peek.typ != tokLParen {
				return nil, p.errorf(p.peek, "expected '(' after %s", fname)
			}
			return p.parseCall(fname)
		}
		return nil, p.errorf(p.peek, "unknown transform %q", name)
	}
	return S(name), nil
}

// parseCall parses (arg) following the function name at p.cur.
func (p *Parser) parseCall(name string) (Expr, error) {
	p.nextToken()
	p.nextToken()
	arg, err := p.parseExpression(0)
	if err != nil {
		return nil, err
	}
	if err := p.expectPeek(tokRParen, "')'"); err != nil {
		return nil, err
	}
	return Call(name, arg), nil
}

func (p *Parser) parseIntegral() (Expr, error) {
	p.nextToken()
	p.nextToken()
	target, err := p.parseExpression(0)
	if err != nil {
		return nil, err
	}
	if err := p.expectPeek(tokComma, "','"); err != nil {
		return nil, err
	}
	if err := p.expectPeek(tokIdent, "variable name"); err != nil {
		return nil, err
	}
	v := p.cur.lit
	if err := p.expectPeek(tokRBracket, "']'"); err != nil {
		return nil, err
	}
	return Integral(target, v), nil
}

// parseDerivName reads d[f, x], where f may itself be such a name, and
// returns it in the form Diff gives unknown functions.
func (p *Parser) parseDerivName() (string, error) {
	p.depth++
	defer func() { p.depth-- }()
	if p.depth > p.limit() {
		return "", fmt.Errorf("%w: nesting exceeds %d", ErrTooDeep, p.limit())
	}

	p.nextToken()
	if err := p.expectPeek(tokIdent, "function name"); err != nil {
		return "", err
	}
	f := p.cur.lit
	if f == "d" && p.peek.typ == tokLBracket {
		var err error
		if f, err = p.parseDerivName(); err != nil {
			return "", err
		}
	}
	if err := p.expectPeek(tokComma, "','"); err != nil {
		return "", err
	}
	if err := p.expectPeek(tokIdent, "variable name"); err != nil {
		return "", err
	}
	x := p.cur.lit
	if err := p.expectPeek(tokRBracket, "']'"); err != nil {
		return "", err
	}
	return derivName(f, x), nil
}

func parseNumber(t token) (Expr, error) {
	if strings.ContainsAny(t.lit, ".eE") {
		f, err := strconv.ParseFloat(t.lit, 64)
		if err != nil {
			return nil, &ParseError{Pos: t.pos, Msg: fmt.Sprintf("invalid number %q", t.lit)}
		}
		return NFloat(f), nil
	}
	r, ok := new(big.Rat).SetString(t.lit)
	if !ok {
		return nil, &ParseError{Pos: t.pos, Msg: fmt.Sprintf("invalid number %q", t.lit)}
	}
	return &Num{rat: r}, nil
}
