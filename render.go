package gocas

import "strings"

// ============================================================
// Rendering (unparsing)
// ============================================================

// Mode selects the output notation.
type Mode int

const (
	// Standard writes exponentiation as ^.
	Standard Mode = iota
	// Gnuplot writes exponentiation as ** for the plotting collaborator.
	Gnuplot
)

func (m Mode) String() string {
	if m == Gnuplot {
		return "gnuplot"
	}
	return "standard"
}

func (m Mode) opToken(op Op) string {
	if op == OpPow && m == Gnuplot {
		return "**"
	}
	return op.String()
}

// Render returns the token sequence for e in the given mode. Concatenating
// the tokens gives the linear notation.
func Render(e Expr, mode Mode) []string {
	r := &renderer{mode: mode}
	r.expr(e)
	return r.toks
}

// RenderString concatenates Render(e, mode).
func RenderString(e Expr, mode Mode) string {
	return strings.Join(Render(e, mode), "")
}

// String renders e in standard notation.
func String(e Expr) string { return RenderString(e, Standard) }

type renderer struct {
	mode Mode
	toks []string
}

func (r *renderer) emit(toks ...string) { r.toks = append(r.toks, toks...) }

func (r *renderer) expr(e Expr) {
	switch v := e.(type) {
	case *Num:
		r.emit(v.String())
	case *Name:
		r.emit(v.id)
	case *BinOp:
		r.operand(v.left, needsParens(v, v.left, false))
		r.emit(r.mode.opToken(v.op))
		r.operand(v.right, needsParens(v, v.right, true))
	case *Neg:
		r.emit("-")
		r.operand(v.arg, negNeedsParens(v.arg))
	case *Func:
		r.emit(v.name, "(")
		r.expr(v.arg)
		r.emit(")")
	case *Transform:
		r.emit(v.name, "[")
		r.expr(v.target)
		r.emit(", ")
		r.expr(v.v)
		r.emit("]")
	}
}

func (r *renderer) operand(e Expr, parens bool) {
	if !parens {
		r.expr(e)
		return
	}
	r.emit("(")
	r.expr(e)
	r.emit(")")
}

// isFraction reports whether e is an exact non-integer number, which renders
// as p/q and so groups like a division.
func isFraction(e Expr) bool {
	n, ok := e.(*Num)
	return ok && n.Exact() && !n.IsInteger()
}

// needsParens decides whether child, on the given side of parent, must be
// wrapped so that re-reading the text yields the same grouping.
func needsParens(parent *BinOp, child Expr, right bool) bool {
	switch c := child.(type) {
	case *BinOp:
		return bindsLooser(c.op, parent.op, right)
	case *Num:
		if c.Sign() < 0 {
			return true
		}
		if isFraction(c) {
			if parent.op == OpPow && right {
				return true
			}
			return bindsLooser(OpDiv, parent.op, right)
		}
	case *Neg:
		// -x^y reads as -(x^y)
		return parent.op == OpPow && !right
	}
	return false
}

// bindsLooser reports whether a child operator must be parenthesized under
// parent on the given side: it binds looser, or binds the same but sits on
// the side opposite to parent's associativity.
func bindsLooser(child, parent Op, right bool) bool {
	switch RelativePrecedence(child, parent) {
	case Looser:
		return true
	case Same:
		return right != RightAssoc(parent)
	}
	return false
}

func negNeedsParens(arg Expr) bool {
	switch a := arg.(type) {
	case *BinOp:
		return Precedence(a.op) < precUnary
	case *Num:
		return a.Sign() < 0 || isFraction(a)
	}
	return false
}
