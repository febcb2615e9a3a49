package gocas

// ============================================================
// Simplification
// ============================================================

// Simplify performs one bottom-up pass of numeric folding and identity
// elimination. Each node is rewritten at most once, after its children;
// there is no fixed-point iteration, so a fold at a parent may expose a new
// opportunity that is left in place.
//
// The only failure is ErrDivisionByZero (x/0, or 0 raised to a negative
// power) and ErrTooDeep for trees deeper than MaxDepth.
func Simplify(e Expr) (Expr, error) {
	if err := checkDepth(e); err != nil {
		return nil, err
	}
	return reduce(e)
}

func reduce(e Expr) (Expr, error) {
	switch v := e.(type) {
	case *BinOp:
		l, err := reduce(v.left)
		if err != nil {
			return nil, err
		}
		r, err := reduce(v.right)
		if err != nil {
			return nil, err
		}
		return minimalSimplify(v.with(l, r))
	case *Neg:
		a, err := reduce(v.arg)
		if err != nil {
			return nil, err
		}
		if a == v.arg {
			return v, nil
		}
		return Negate(a), nil
	case *Func:
		a, err := reduce(v.arg)
		if err != nil {
			return nil, err
		}
		if a == v.arg {
			return v, nil
		}
		return Call(v.name, a), nil
	case *Transform:
		t, err := reduce(v.target)
		if err != nil {
			return nil, err
		}
		if t == v.target {
			return v, nil
		}
		return &Transform{name: v.name, target: t, v: v.v}, nil
	}
	return e, nil
}

// numLeaf returns e as a *Num when it is a numeric leaf. Identity rules
// only consult leaves; an internal node never counts as 0 or 1.
func numLeaf(e Expr) (*Num, bool) {
	n, ok := e.(*Num)
	return n, ok
}

func isZero(e Expr) bool { n, ok := numLeaf(e); return ok && n.IsZero() }
func isOne(e Expr) bool  { n, ok := numLeaf(e); return ok && n.IsOne() }

// minimalSimplify applies the single rewrite step for an operator node whose
// children are already reduced.
func minimalSimplify(b *BinOp) (Expr, error) {
	if ln, ok := numLeaf(b.left); ok {
		if rn, ok := numLeaf(b.right); ok {
			res, folded, err := foldNumeric(b.op, ln, rn)
			if err != nil {
				return nil, err
			}
			if folded {
				return res, nil
			}
		}
	}
	switch b.op {
	case OpSub:
		if isZero(b.left) {
			return Negate(b.right), nil
		}
		if isZero(b.right) {
			return b.left, nil
		}
	case OpAdd:
		if isZero(b.left) {
			return b.right, nil
		}
		if isZero(b.right) {
			return b.left, nil
		}
	case OpMul:
		if isZero(b.left) || isZero(b.right) {
			return N(0), nil
		}
		if isOne(b.left) {
			return b.right, nil
		}
		if isOne(b.right) {
			return b.left, nil
		}
	case OpDiv:
		if isOne(b.right) {
			return b.left, nil
		}
		if isZero(b.right) {
			return nil, ErrDivisionByZero
		}
	case OpPow:
		if isOne(b.right) {
			return b.left, nil
		}
		if isZero(b.right) {
			return N(1), nil
		}
	}
	return b, nil
}
