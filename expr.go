// Package gocas is a small symbolic algebra engine for Go.
//
// It works on immutable expression trees and provides:
//   - Simplify: one bottom-up pass of numeric folding and identity elimination
//   - Diff: rule-based symbolic differentiation
//   - Integrate: a closed set of antiderivative rules with a deferred fallback
//   - Render: precedence-aware linear notation (standard and gnuplot)
//
// Numbers are exact rationals (math/big.Rat) or inexact floats; exactness is
// tracked through every fold.
package gocas

// ============================================================
// Core Interface
// ============================================================

// Expr is a node of an expression tree. The set of node types is closed:
// *Num, *Name, *BinOp, *Neg, *Func and *Transform.
//
// Trees are never mutated after construction, so subtrees may be shared
// freely between the input and the output of any rewrite.
type Expr interface {
	String() string
	Equal(other Expr) bool
	exprNode()
}

// Kind identifies the variant of an Expr.
type Kind int

const (
	KindInvalid Kind = iota
	KindNumber
	KindName
	KindOperator
	KindUnaryMinus
	KindFunction
	KindTransform
)

var kindNames = [...]string{
	KindInvalid:    "invalid",
	KindNumber:     "number",
	KindName:       "name",
	KindOperator:   "operator",
	KindUnaryMinus: "unary-minus",
	KindFunction:   "function",
	KindTransform:  "transform",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return kindNames[KindInvalid]
	}
	return kindNames[k]
}

// KindOf reports the variant of e. A nil expression is KindInvalid.
func KindOf(e Expr) Kind {
	switch e.(type) {
	case *Num:
		return KindNumber
	case *Name:
		return KindName
	case *BinOp:
		return KindOperator
	case *Neg:
		return KindUnaryMinus
	case *Func:
		return KindFunction
	case *Transform:
		return KindTransform
	}
	return KindInvalid
}

// ============================================================
// Name — symbolic variable
// ============================================================

type Name struct{ id string }

func S(id string) *Name { return &Name{id: id} }

func (s *Name) exprNode()      {}
func (s *Name) ID() string     { return s.id }
func (s *Name) String() string { return s.id }
func (s *Name) Equal(other Expr) bool {
	o, ok := other.(*Name)
	return ok && s.id == o.id
}

// ============================================================
// BinOp — binary operator node
// ============================================================

// Op is one of the five binary operators.
type Op byte

const (
	OpAdd Op = '+'
	OpSub Op = '-'
	OpMul Op = '*'
	OpDiv Op = '/'
	OpPow Op = '^'
)

func (o Op) String() string { return string(rune(o)) }

// Valid reports whether o is one of the five operators.
func (o Op) Valid() bool {
	switch o {
	case OpAdd, OpSub, OpMul, OpDiv, OpPow:
		return true
	}
	return false
}

// BinOp is an operator node; both children are always present.
type BinOp struct {
	op          Op
	left, right Expr
}

func newBinOp(op Op, l, r Expr) *BinOp { return &BinOp{op: op, left: l, right: r} }

func Add(l, r Expr) *BinOp { return newBinOp(OpAdd, l, r) }
func Sub(l, r Expr) *BinOp { return newBinOp(OpSub, l, r) }
func Mul(l, r Expr) *BinOp { return newBinOp(OpMul, l, r) }
func Div(l, r Expr) *BinOp { return newBinOp(OpDiv, l, r) }
func Pow(l, r Expr) *BinOp { return newBinOp(OpPow, l, r) }

// Binary builds an operator node. It panics if op is not a valid operator or
// a child is nil, since such a node would violate the tree invariants.
func Binary(op Op, l, r Expr) *BinOp {
	if !op.Valid() {
		panic("gocas: invalid operator " + op.String())
	}
	if l == nil || r == nil {
		panic("gocas: operator node needs two children")
	}
	return newBinOp(op, l, r)
}

func (b *BinOp) exprNode()      {}
func (b *BinOp) Op() Op         { return b.op }
func (b *BinOp) Left() Expr     { return b.left }
func (b *BinOp) Right() Expr    { return b.right }
func (b *BinOp) String() string { return String(b) }
func (b *BinOp) Equal(other Expr) bool {
	o, ok := other.(*BinOp)
	return ok && b.op == o.op && b.left.Equal(o.left) && b.right.Equal(o.right)
}

// with returns b with new children, or b itself when neither changed.
func (b *BinOp) with(l, r Expr) *BinOp {
	if l == b.left && r == b.right {
		return b
	}
	return newBinOp(b.op, l, r)
}

// ============================================================
// Neg — unary minus
// ============================================================

type Neg struct{ arg Expr }

func Negate(arg Expr) *Neg { return &Neg{arg: arg} }

func (n *Neg) exprNode()      {}
func (n *Neg) Arg() Expr      { return n.arg }
func (n *Neg) String() string { return String(n) }
func (n *Neg) Equal(other Expr) bool {
	o, ok := other.(*Neg)
	return ok && n.arg.Equal(o.arg)
}

// ============================================================
// Func — named function application
// ============================================================

type Func struct {
	name string
	arg  Expr
}

func Call(name string, arg Expr) *Func { return &Func{name: name, arg: arg} }

func Sin(arg Expr) *Func { return Call("sin", arg) }
func Cos(arg Expr) *Func { return Call("cos", arg) }
func Tan(arg Expr) *Func { return Call("tan", arg) }
func Exp(arg Expr) *Func { return Call("exp", arg) }
func Ln(arg Expr) *Func  { return Call("ln", arg) }
func Abs(arg Expr) *Func { return Call("abs", arg) }

func (f *Func) exprNode()        {}
func (f *Func) FuncName() string { return f.name }
func (f *Func) Arg() Expr        { return f.arg }
func (f *Func) String() string   { return String(f) }
func (f *Func) Equal(other Expr) bool {
	o, ok := other.(*Func)
	return ok && f.name == o.name && f.arg.Equal(o.arg)
}

// ============================================================
// Transform — deferred operation marker
// ============================================================

// TransformIntegrate is the only transform currently produced.
const TransformIntegrate = "integrate"

// Transform records an operation that could not be resolved in closed form,
// e.g. integrate[target, x].
type Transform struct {
	name   string
	target Expr
	v      *Name
}

// Integral builds the deferred marker for the integral of target with
// respect to varName.
func Integral(target Expr, varName string) *Transform {
	return &Transform{name: TransformIntegrate, target: target, v: S(varName)}
}

func (t *Transform) exprNode()      {}
func (t *Transform) Name() string   { return t.name }
func (t *Transform) Target() Expr   { return t.target }
func (t *Transform) Var() *Name     { return t.v }
func (t *Transform) String() string { return String(t) }
func (t *Transform) Equal(other Expr) bool {
	o, ok := other.(*Transform)
	return ok && t.name == o.name && t.target.Equal(o.target) && t.v.Equal(o.v)
}

// ============================================================
// Traversal
// ============================================================

// Children returns the direct children of e in left-to-right order.
func Children(e Expr) []Expr {
	switch v := e.(type) {
	case *BinOp:
		return []Expr{v.left, v.right}
	case *Neg:
		return []Expr{v.arg}
	case *Func:
		return []Expr{v.arg}
	case *Transform:
		return []Expr{v.target, v.v}
	}
	return nil
}

// Walk calls fn for every node of e in pre-order. Returning false from fn
// skips the children of that node. Walk uses an explicit stack, so it is safe
// on trees of any depth.
func Walk(e Expr, fn func(Expr) bool) {
	stack := []Expr{e}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(n) {
			continue
		}
		cs := Children(n)
		for i := len(cs) - 1; i >= 0; i-- {
			stack = append(stack, cs[i])
		}
	}
}

// Depth returns the number of nodes on the longest root-to-leaf path.
func Depth(e Expr) int {
	type frame struct {
		e Expr
		d int
	}
	max := 0
	stack := []frame{{e, 1}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if f.d > max {
			max = f.d
		}
		for _, c := range Children(f.e) {
			stack = append(stack, frame{c, f.d + 1})
		}
	}
	return max
}

// MaxDepth bounds the depth of trees accepted by Simplify, Diff and the
// parser. Every rewrite recurses once per level.
const MaxDepth = 4096

func checkDepth(e Expr) error {
	if Depth(e) > MaxDepth {
		return ErrTooDeep
	}
	return nil
}

// FreeOf reports whether no Name in e equals varName.
func FreeOf(e Expr, varName string) bool {
	free := true
	Walk(e, func(n Expr) bool {
		if s, ok := n.(*Name); ok && s.id == varName {
			free = false
		}
		return free
	})
	return free
}

// Names returns the distinct variable names in e, in order of first
// appearance. Transform variables are included.
func Names(e Expr) []string {
	seen := map[string]bool{}
	var out []string
	Walk(e, func(n Expr) bool {
		if s, ok := n.(*Name); ok && !seen[s.id] {
			seen[s.id] = true
			out = append(out, s.id)
		}
		return true
	})
	return out
}

// Resolved reports whether e contains no deferred Transform marker.
func Resolved(e Expr) bool {
	ok := true
	Walk(e, func(n Expr) bool {
		if _, isT := n.(*Transform); isT {
			ok = false
		}
		return ok
	})
	return ok
}

// Equal reports whether a and b are structurally identical. Numbers compare
// by value and exactness, so 1 and 1.0 differ.
func Equal(a, b Expr) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(b)
}
