package gocas_test

import (
	"testing"

	gocas "github.com/njchilds90/gocas"
)

// ============================================================
// Variants
// ============================================================

func TestKindOf(t *testing.T) {
	tests := []struct {
		in   gocas.Expr
		want gocas.Kind
	}{
		{gocas.N(1), gocas.KindNumber},
		{x, gocas.KindName},
		{gocas.Add(x, y), gocas.KindOperator},
		{gocas.Negate(x), gocas.KindUnaryMinus},
		{gocas.Sin(x), gocas.KindFunction},
		{gocas.Integral(x, "x"), gocas.KindTransform},
		{nil, gocas.KindInvalid},
	}
	for _, tt := range tests {
		if got := gocas.KindOf(tt.in); got != tt.want {
			t.Errorf("want %s, got %s", tt.want, got)
		}
	}
}

func TestBinary_PanicsOnInvalidOperator(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for operator %")
		}
	}()
	gocas.Binary(gocas.Op('%'), x, y)
}

func TestBinary_PanicsOnNilChild(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for nil child")
		}
	}()
	gocas.Binary(gocas.OpAdd, x, nil)
}

func TestF_PanicsOnZeroDenominator(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for zero denominator")
		}
	}()
	gocas.F(1, 0)
}

// ============================================================
// Equality
// ============================================================

func TestEqual(t *testing.T) {
	if !gocas.Equal(gocas.MustParse("sin(x)+1"), gocas.Add(gocas.Sin(x), gocas.N(1))) {
		t.Error("structurally equal trees should be Equal")
	}
	if gocas.Equal(gocas.N(1), gocas.NFloat(1)) {
		t.Error("1 and 1.0 must differ")
	}
	if gocas.Equal(gocas.Add(x, y), gocas.Add(y, x)) {
		t.Error("operand order matters")
	}
	if gocas.Equal(gocas.Sin(x), gocas.Cos(x)) {
		t.Error("function name matters")
	}
	if gocas.Equal(gocas.Integral(x, "x"), gocas.Integral(x, "y")) {
		t.Error("transform variable matters")
	}
	if !gocas.Equal(nil, nil) || gocas.Equal(x, nil) {
		t.Error("nil handling")
	}
}

func TestNum_Accessors(t *testing.T) {
	n := gocas.F(6, 4)
	if !n.Exact() || n.IsInteger() || n.Float64() != 1.5 {
		t.Errorf("unexpected state for 3/2: %s", n)
	}
	r := n.Rat()
	r.SetInt64(9)
	if n.String() != "3/2" {
		t.Error("Rat must return a copy")
	}
	if gocas.NFloat(0.5).Rat() != nil {
		t.Error("inexact Rat should be nil")
	}
	if !gocas.NFloat(1).IsOne() || !gocas.N(1).IsOne() || gocas.F(1, 2).IsOne() {
		t.Error("IsOne mismatch")
	}
}

// ============================================================
// Traversal
// ============================================================

func TestWalk_PreOrder(t *testing.T) {
	var got []string
	gocas.Walk(gocas.MustParse("x+sin(y)"), func(e gocas.Expr) bool {
		got = append(got, gocas.KindOf(e).String())
		return true
	})
	want := []string{"operator", "name", "function", "name"}
	if len(got) != len(want) {
		t.Fatalf("want %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("node %d: want %s, got %s", i, want[i], got[i])
		}
	}
}

func TestWalk_Prune(t *testing.T) {
	n := 0
	gocas.Walk(gocas.MustParse("sin(x+y)+z"), func(e gocas.Expr) bool {
		n++
		_, isFunc := e.(*gocas.Func)
		return !isFunc
	})
	// +, sin, z
	if n != 3 {
		t.Errorf("want 3 visited nodes, got %d", n)
	}
}

func TestDepth(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"x", 1},
		{"x+y", 2},
		{"sin(x+y)*z", 4},
		{"integrate[x, x]", 2},
	}
	for _, tt := range tests {
		if got := gocas.Depth(gocas.MustParse(tt.in)); got != tt.want {
			t.Errorf("Depth(%s): want %d, got %d", tt.in, tt.want, got)
		}
	}
}

func TestDepth_VeryDeepTree(t *testing.T) {
	var e gocas.Expr = x
	for i := 0; i < 100000; i++ {
		e = gocas.Negate(e)
	}
	if got := gocas.Depth(e); got != 100001 {
		t.Errorf("want 100001, got %d", got)
	}
}

func TestNames(t *testing.T) {
	got := gocas.Names(gocas.MustParse("b*a+sin(b)+c^a"))
	want := []string{"b", "a", "c"}
	if len(got) != len(want) {
		t.Fatalf("want %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("want %v, got %v", want, got)
		}
	}
	if names := gocas.Names(gocas.N(3)); len(names) != 0 {
		t.Errorf("constant has no names, got %v", names)
	}
}

func TestFreeOf(t *testing.T) {
	e := gocas.MustParse("y^2+sin(z)")
	if !gocas.FreeOf(e, "x") {
		t.Error("expression does not contain x")
	}
	if gocas.FreeOf(e, "z") {
		t.Error("expression contains z")
	}
}

func TestResolved(t *testing.T) {
	if !gocas.Resolved(gocas.MustParse("x+1")) {
		t.Error("x+1 is resolved")
	}
	if gocas.Resolved(gocas.MustParse("x+integrate[x*y, x]")) {
		t.Error("a nested marker is not resolved")
	}
}

// ============================================================
// Fingerprint
// ============================================================

func TestFingerprint(t *testing.T) {
	a := gocas.Fingerprint(gocas.MustParse("x^2+sin(y)"))
	b := gocas.Fingerprint(gocas.Add(gocas.Pow(x, gocas.N(2)), gocas.Sin(y)))
	if a != b {
		t.Error("equal trees must have equal fingerprints")
	}
	distinct := []gocas.Expr{
		gocas.N(1),
		gocas.NFloat(1),
		gocas.Add(x, y),
		gocas.Add(y, x),
		gocas.Sub(x, y),
		gocas.Sin(x),
		gocas.Cos(x),
		gocas.Negate(x),
		gocas.Integral(x, "x"),
		gocas.S("xy"),
		gocas.Mul(x, y),
	}
	seen := map[uint64]string{}
	for _, e := range distinct {
		fp := gocas.Fingerprint(e)
		if prev, ok := seen[fp]; ok {
			t.Errorf("%s and %s collide", prev, e)
		}
		seen[fp] = gocas.String(e)
	}
}
