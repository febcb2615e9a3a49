package gocas

import (
	"math"
	"math/big"
	"strconv"
	"strings"
)

// ============================================================
// Num — exact rational or inexact float
// ============================================================

// Num is a numeric leaf. An exact Num holds a *big.Rat; an inexact Num holds
// a float64. Folding keeps exact operands exact and lets any inexact operand
// force an inexact result.
type Num struct {
	rat *big.Rat // nil when inexact
	f   float64
}

func N(n int64) *Num { return &Num{rat: new(big.Rat).SetInt64(n)} }

// F returns the exact rational p/q. It panics when q is zero.
func F(p, q int64) *Num {
	if q == 0 {
		panic("gocas: denominator is zero")
	}
	return &Num{rat: big.NewRat(p, q)}
}

func NFloat(f float64) *Num { return &Num{f: f} }

// NRat returns an exact Num holding a copy of r.
func NRat(r *big.Rat) *Num { return &Num{rat: new(big.Rat).Set(r)} }

func (n *Num) exprNode()   {}
func (n *Num) Exact() bool { return n.rat != nil }

// Rat returns a copy of the exact value, or nil for an inexact Num.
func (n *Num) Rat() *big.Rat {
	if n.rat == nil {
		return nil
	}
	return new(big.Rat).Set(n.rat)
}

func (n *Num) Float64() float64 {
	if n.rat == nil {
		return n.f
	}
	f, _ := n.rat.Float64()
	return f
}

func (n *Num) Sign() int {
	if n.rat != nil {
		return n.rat.Sign()
	}
	switch {
	case n.f > 0:
		return 1
	case n.f < 0:
		return -1
	}
	return 0
}

func (n *Num) IsZero() bool { return n.Sign() == 0 }

// IsOne matches both the exact 1 and the inexact 1.0.
func (n *Num) IsOne() bool {
	if n.rat != nil {
		return n.rat.IsInt() && n.rat.Num().IsInt64() && n.rat.Num().Int64() == 1
	}
	return n.f == 1
}

// IsInteger reports whether n is an exact integer.
func (n *Num) IsInteger() bool { return n.rat != nil && n.rat.IsInt() }

func (n *Num) String() string {
	if n.rat != nil {
		if n.rat.IsInt() {
			return n.rat.Num().String()
		}
		return n.rat.RatString()
	}
	return formatFloat(n.f)
}

// Equal reports whether other is a Num with the same value and exactness.
func (n *Num) Equal(other Expr) bool {
	o, ok := other.(*Num)
	if !ok || n.Exact() != o.Exact() {
		return false
	}
	if n.rat != nil {
		return n.rat.Cmp(o.rat) == 0
	}
	return n.f == o.f
}

// formatFloat renders f so that it always reads back as an inexact number.
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return s
	}
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

// ============================================================
// Numeric folding
// ============================================================

// maxExactExponent bounds exact integer exponentiation; larger exponents fold
// through float64.
const maxExactExponent = 1024

// maxExactPowBits bounds the estimated size of an exact power. Nested powers
// such as (10^1024)^1024 fold through float64 instead, where they overflow and
// are left unfolded.
const maxExactPowBits = 1 << 16

// foldNumeric evaluates a op b. ok is false when the operation should not be
// folded (the float result is NaN or infinite). Division by an exact or
// inexact zero, and zero raised to a negative power, return ErrDivisionByZero.
func foldNumeric(op Op, a, b *Num) (res *Num, ok bool, err error) {
	switch op {
	case OpDiv:
		if b.IsZero() {
			return nil, false, ErrDivisionByZero
		}
	case OpPow:
		if a.IsZero() && b.Sign() < 0 {
			return nil, false, ErrDivisionByZero
		}
	}
	if a.Exact() && b.Exact() {
		if r, ok := foldExact(op, a.rat, b.rat); ok {
			return &Num{rat: r}, true, nil
		}
	}
	f := foldFloat(op, a.Float64(), b.Float64())
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, false, nil
	}
	return NFloat(f), true, nil
}

func foldExact(op Op, a, b *big.Rat) (*big.Rat, bool) {
	switch op {
	case OpAdd:
		return new(big.Rat).Add(a, b), true
	case OpSub:
		return new(big.Rat).Sub(a, b), true
	case OpMul:
		return new(big.Rat).Mul(a, b), true
	case OpDiv:
		return new(big.Rat).Quo(a, b), true
	case OpPow:
		if !b.IsInt() || !b.Num().IsInt64() {
			return nil, false
		}
		k := b.Num().Int64()
		if k > maxExactExponent || k < -maxExactExponent {
			return nil, false
		}
		if powBits(a, k) > maxExactPowBits {
			return nil, false
		}
		return powRat(a, k), true
	}
	return nil, false
}

// powBits estimates the bit length of a^k from the sizes of a's numerator and
// denominator.
func powBits(a *big.Rat, k int64) int64 {
	if k < 0 {
		k = -k
	}
	return int64(a.Num().BitLen()+a.Denom().BitLen()) * k
}

// powRat computes a^k exactly. a must be non-zero when k is negative.
func powRat(a *big.Rat, k int64) *big.Rat {
	neg := k < 0
	if neg {
		k = -k
	}
	e := big.NewInt(k)
	num := new(big.Int).Exp(a.Num(), e, nil)
	den := new(big.Int).Exp(a.Denom(), e, nil)
	if neg {
		num, den = den, num
	}
	return new(big.Rat).SetFrac(num, den)
}

func foldFloat(op Op, a, b float64) float64 {
	switch op {
	case OpAdd:
		return a + b
	case OpSub:
		return a - b
	case OpMul:
		return a * b
	case OpDiv:
		return a / b
	case OpPow:
		return math.Pow(a, b)
	}
	return math.NaN()
}
