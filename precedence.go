package gocas

// Relation is the result of comparing how tightly two operators bind.
type Relation int

const (
	Looser Relation = iota - 1
	Same
	Tighter
)

func (r Relation) String() string {
	switch r {
	case Looser:
		return "looser"
	case Tighter:
		return "tighter"
	}
	return "same"
}

// Binding levels of the grammar. Unary minus sits between the
// multiplicative operators and ^, so -x^2 reads as -(x^2).
const (
	precAdditive = 1 + iota
	precMultiplicative
	precUnary
	precPower
)

// Precedence returns the binding level of a binary operator.
func Precedence(op Op) int {
	switch op {
	case OpAdd, OpSub:
		return precAdditive
	case OpMul, OpDiv:
		return precMultiplicative
	case OpPow:
		return precPower
	}
	return 0
}

// RightAssoc reports whether op groups right to left. Only ^ does.
func RightAssoc(op Op) bool { return op == OpPow }

// RelativePrecedence reports whether a binds tighter than, looser than, or
// the same as b.
func RelativePrecedence(a, b Op) Relation {
	pa, pb := Precedence(a), Precedence(b)
	switch {
	case pa > pb:
		return Tighter
	case pa < pb:
		return Looser
	}
	return Same
}
