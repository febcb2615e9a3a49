package gocas

import (
	"fmt"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// ============================================================
// Differentiation
// ============================================================

// funcDerivs maps a function name to the derivative of f(u) with respect to
// u. The chain rule factor d(u) is applied by the caller.
var funcDerivs = map[string]func(u Expr) Expr{
	"sin":  func(u Expr) Expr { return Cos(u) },
	"cos":  func(u Expr) Expr { return Negate(Sin(u)) },
	"tan":  func(u Expr) Expr { return Add(N(1), Pow(Tan(u), N(2))) },
	"exp":  func(u Expr) Expr { return Exp(u) },
	"ln":   func(u Expr) Expr { return Pow(u, Negate(N(1))) },
	"sinh": func(u Expr) Expr { return Call("cosh", u) },
	"cosh": func(u Expr) Expr { return Call("sinh", u) },
	"atan": func(u Expr) Expr { return Pow(Add(N(1), Pow(u, N(2))), Negate(N(1))) },
}

// DifferentiableFunctions returns the names of functions with a closed
// derivative, sorted.
func DifferentiableFunctions() []string {
	names := maps.Keys(funcDerivs)
	slices.Sort(names)
	return names
}

// Diff returns the derivative of e with respect to varName, simplified.
//
// Functions without a known derivative produce a symbolic d[f, x](u) factor
// rather than an error. A node with no rule at all (a deferred transform)
// yields an error matching ErrUnsupportedDifferentiation.
func Diff(e Expr, varName string) (Expr, error) {
	if err := checkDepth(e); err != nil {
		return nil, err
	}
	raw, err := diffRaw(e, varName)
	if err != nil {
		return nil, err
	}
	return Simplify(raw)
}

func diffRaw(e Expr, x string) (Expr, error) {
	switch v := e.(type) {
	case *Num:
		return N(0), nil
	case *Name:
		if v.id == x {
			return N(1), nil
		}
		return N(0), nil
	case *BinOp:
		return diffOp(v, x)
	case *Neg:
		d, err := diffRaw(v.arg, x)
		if err != nil {
			return nil, err
		}
		return Negate(d), nil
	case *Func:
		return diffFunc(v, x)
	}
	return nil, &UnsupportedDiffError{Kind: KindOf(e), Expr: e}
}

func diffOp(b *BinOp, x string) (Expr, error) {
	if b.op == OpDiv {
		// l/r is differentiated as l * r^(-1) through the product and
		// power rules.
		return diffRaw(Mul(b.left, Pow(b.right, Negate(N(1)))), x)
	}
	dl, err := diffRaw(b.left, x)
	if err != nil {
		return nil, err
	}
	if b.op == OpPow {
		// power rule, exponent treated as constant
		outer := Mul(b.right, Pow(b.left, Sub(b.right, N(1))))
		return Mul(outer, dl), nil
	}
	dr, err := diffRaw(b.right, x)
	if err != nil {
		return nil, err
	}
	switch b.op {
	case OpAdd, OpSub:
		return newBinOp(b.op, dl, dr), nil
	case OpMul:
		return Add(Mul(b.left, dr), Mul(dl, b.right)), nil
	}
	return nil, &UnsupportedDiffError{Kind: KindOperator, Expr: b}
}

func diffFunc(f *Func, x string) (Expr, error) {
	du, err := diffRaw(f.arg, x)
	if err != nil {
		return nil, err
	}
	var outer Expr
	if rule, ok := funcDerivs[f.name]; ok {
		outer = rule(f.arg)
	} else {
		outer = Call(derivName(f.name, x), f.arg)
	}
	return Mul(outer, du), nil
}

// MaxDiffOrder bounds DiffN. Like terms are never combined, so each order
// multiplies the size of the result.
const MaxDiffOrder = 8

// derivName names the derivative of an unknown function f with respect to x.
// Parse reads the name back as a function.
func derivName(f, x string) string { return "d[" + f + ", " + x + "]" }

// DiffN differentiates e n times with respect to varName. n must lie in
// [0, MaxDiffOrder].
func DiffN(e Expr, varName string, n int) (Expr, error) {
	if n < 0 || n > MaxDiffOrder {
		return nil, fmt.Errorf("gocas: derivative order %d outside [0, %d]", n, MaxDiffOrder)
	}
	for i := 0; i < n; i++ {
		d, err := Diff(e, varName)
		if err != nil {
			return nil, err
		}
		e = d
	}
	return e, nil
}

// Gradient returns the partial derivatives of e with respect to each name.
func Gradient(e Expr, varNames []string) ([]Expr, error) {
	out := make([]Expr, len(varNames))
	for i, v := range varNames {
		d, err := Diff(e, v)
		if err != nil {
			return nil, fmt.Errorf("d/d%s: %w", v, err)
		}
		out[i] = d
	}
	return out, nil
}
