package gocas

// ============================================================
// Integration (closed rule set)
// ============================================================

// trigAntiderivs holds the antiderivatives of f(x) for a bare variable x.
var trigAntiderivs = map[string]func(x *Name) Expr{
	"sin": func(x *Name) Expr { return Negate(Cos(x)) },
	"cos": func(x *Name) Expr { return Sin(x) },
	"tan": func(x *Name) Expr { return Negate(Ln(Abs(Cos(x)))) },
}

// Integrate returns an antiderivative of e with respect to varName.
//
// Only a closed set of shapes resolve: constants, the variable itself, sums
// and differences, a product with a numeric factor, powers of the bare
// variable with an exponent free of it, and sin/cos/tan of the bare variable.
// x^x and other powers whose exponent mentions the variable are deferred.
// Any other subtree becomes the deferred marker integrate[e, varName].
//
// A power whose exponent is -1, or whose exponent does not simplify, is
// deferred on its own so resolved siblings are kept. Integrate never fails:
// if the assembled result still cannot be simplified the whole input is
// deferred.
func Integrate(e Expr, varName string) Expr {
	if Depth(e) > MaxDepth {
		return Integral(e, varName)
	}
	raw := integrateRaw(e, S(varName))
	out, err := Simplify(raw)
	if err != nil {
		return Integral(e, varName)
	}
	return out
}

func integrateRaw(e Expr, x *Name) Expr {
	switch v := e.(type) {
	case *Num:
		return Mul(v, x)
	case *Name:
		if v.id == x.id {
			return Div(Pow(v, N(2)), N(2))
		}
		return Mul(v, x)
	case *BinOp:
		return integrateOp(v, x)
	case *Func:
		if rule, ok := trigAntiderivs[v.name]; ok {
			if arg, ok := v.arg.(*Name); ok && arg.id == x.id {
				return rule(x)
			}
		}
	}
	return Integral(e, x.id)
}

func integrateOp(b *BinOp, x *Name) Expr {
	switch b.op {
	case OpAdd, OpSub:
		return newBinOp(b.op, integrateRaw(b.left, x), integrateRaw(b.right, x))
	case OpMul:
		if c, ok := b.left.(*Num); ok {
			return Mul(c, integrateRaw(b.right, x))
		}
		if c, ok := b.right.(*Num); ok {
			return Mul(c, integrateRaw(b.left, x))
		}
	case OpPow:
		if base, ok := b.left.(*Name); ok && base.id == x.id && FreeOf(b.right, x.id) {
			if !powerRuleApplies(b.right) {
				break
			}
			n1 := Add(b.right, N(1))
			return Div(Pow(base, n1), n1)
		}
	}
	return Integral(b, x.id)
}

// powerRuleApplies reports whether x^(n+1)/(n+1) is usable for exponent n:
// n must simplify and must not be -1.
func powerRuleApplies(n Expr) bool {
	s, err := Simplify(n)
	if err != nil {
		return false
	}
	if neg, ok := s.(*Neg); ok {
		if c, ok := neg.arg.(*Num); ok && c.IsOne() {
			return false
		}
	}
	n1, err := Simplify(Add(s, N(1)))
	if err != nil {
		return false
	}
	c, ok := n1.(*Num)
	return !ok || !c.IsZero()
}
