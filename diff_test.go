package gocas_test

import (
	"errors"
	"testing"

	gocas "github.com/njchilds90/gocas"
)

func mustDiff(t *testing.T, e gocas.Expr, v string) gocas.Expr {
	t.Helper()
	out, err := gocas.Diff(e, v)
	if err != nil {
		t.Fatalf("Diff(%s, %s): unexpected error: %v", gocas.String(e), v, err)
	}
	return out
}

// ============================================================
// Leaves
// ============================================================

func TestDiff_Number(t *testing.T) {
	if got := mustDiff(t, gocas.N(5), "x"); !gocas.Equal(got, gocas.N(0)) {
		t.Errorf("d/dx(5) should be 0, got %s", got)
	}
}

func TestDiff_Name(t *testing.T) {
	if got := mustDiff(t, x, "x"); !gocas.Equal(got, gocas.N(1)) {
		t.Errorf("d/dx(x) should be 1, got %s", got)
	}
	if got := mustDiff(t, y, "x"); !gocas.Equal(got, gocas.N(0)) {
		t.Errorf("d/dx(y) should be 0, got %s", got)
	}
}

// ============================================================
// Operators and functions
// ============================================================

func TestDiff_Rules(t *testing.T) {
	tests := []struct {
		in, v, want string
	}{
		{"x+3", "x", "1"},
		{"x-y", "x", "1"},
		{"x*y", "x", "y"},
		{"x*y", "y", "x"},
		{"x^2", "x", "2*x"},
		{"x^3", "x", "3*x^2"},
		{"-x", "x", "-1"},
		{"sin(x)", "x", "cos(x)"},
		{"cos(x)", "x", "-sin(x)"},
		{"tan(x)", "x", "1+tan(x)^2"},
		{"exp(x)", "x", "exp(x)"},
		{"exp(2*x)", "x", "exp(2*x)*2"},
		{"sin(x^2)", "x", "cos(x^2)*(2*x)"},
		{"ln(x)", "x", "x^-1"},
		{"sinh(x)", "x", "cosh(x)"},
		{"f(x)", "x", "d[f, x](x)"},
		{"f(y)", "x", "0"},
	}
	for _, tt := range tests {
		got := mustDiff(t, gocas.MustParse(tt.in), tt.v)
		if gocas.String(got) != tt.want {
			t.Errorf("d/d%s(%s): want %s, got %s", tt.v, tt.in, tt.want, gocas.String(got))
		}
	}
}

func TestDiff_QuotientGoesThroughPowerRule(t *testing.T) {
	// 1/x is differentiated as 1*x^(-1); the exponent arithmetic on -1 is
	// not folded because unary minus is not a number.
	got := mustDiff(t, gocas.MustParse("1/x"), "x")
	if gocas.String(got) != "-1*x^(-1-1)" {
		t.Errorf("want -1*x^(-1-1), got %s", gocas.String(got))
	}
}

func TestDiff_ExactnessPreserved(t *testing.T) {
	// 2.0-1 folds to the inexact 1.0, which still counts as one for x^1
	got := mustDiff(t, gocas.Pow(x, gocas.NFloat(2)), "x")
	if gocas.String(got) != "2.0*x" {
		t.Errorf("want 2.0*x, got %s", gocas.String(got))
	}
}

func TestDiff_DoesNotMutateInput(t *testing.T) {
	in := gocas.MustParse("x^2+sin(x)")
	before := gocas.String(in)
	mustDiff(t, in, "x")
	if gocas.String(in) != before {
		t.Errorf("input changed from %s to %s", before, gocas.String(in))
	}
}

// ============================================================
// Failures
// ============================================================

func TestDiff_TransformHasNoRule(t *testing.T) {
	in := gocas.Add(x, gocas.Integral(gocas.Sin(gocas.Mul(gocas.N(2), x)), "x"))
	_, err := gocas.Diff(in, "x")
	if !errors.Is(err, gocas.ErrUnsupportedDifferentiation) {
		t.Fatalf("want ErrUnsupportedDifferentiation, got %v", err)
	}
	var ue *gocas.UnsupportedDiffError
	if !errors.As(err, &ue) {
		t.Fatalf("want *UnsupportedDiffError, got %T", err)
	}
	if ue.Kind != gocas.KindTransform {
		t.Errorf("want kind transform, got %s", ue.Kind)
	}
}

func TestDiff_DivisionByZeroSurfaces(t *testing.T) {
	// the product rule keeps y/0 as a factor of d(x)*(y/0)
	_, err := gocas.Diff(gocas.Mul(x, gocas.Div(y, gocas.N(0))), "x")
	if !errors.Is(err, gocas.ErrDivisionByZero) {
		t.Errorf("want ErrDivisionByZero, got %v", err)
	}
}

// ============================================================
// Higher-order derivatives
// ============================================================

func TestDiffN(t *testing.T) {
	// d^4/dx^4(x^4) = 24
	got, err := gocas.DiffN(gocas.MustParse("x^4"), "x", 4)
	if err != nil {
		t.Fatal(err)
	}
	if !gocas.Equal(got, gocas.N(24)) {
		t.Errorf("d^4/dx^4(x^4) should be 24, got %s", gocas.String(got))
	}
}

func TestDiffN_Zero(t *testing.T) {
	in := gocas.MustParse("x^4")
	got, err := gocas.DiffN(in, "x", 0)
	if err != nil || got != in {
		t.Errorf("zeroth derivative should return the input, got %v, %v", got, err)
	}
	if _, err := gocas.DiffN(in, "x", -1); err == nil {
		t.Error("negative order should fail")
	}
}

func TestDiffN_OrderIsBounded(t *testing.T) {
	in := gocas.MustParse("sin(x)*cos(x)*exp(x)")
	if _, err := gocas.DiffN(in, "x", gocas.MaxDiffOrder); err != nil {
		t.Errorf("order %d should succeed: %v", gocas.MaxDiffOrder, err)
	}
	if _, err := gocas.DiffN(in, "x", gocas.MaxDiffOrder+1); err == nil {
		t.Errorf("order %d should fail", gocas.MaxDiffOrder+1)
	}
}

func TestGradient(t *testing.T) {
	grad, err := gocas.Gradient(gocas.MustParse("x*y"), []string{"x", "y", "z"})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"y", "x", "0"}
	for i, g := range grad {
		if gocas.String(g) != want[i] {
			t.Errorf("grad[%d]: want %s, got %s", i, want[i], gocas.String(g))
		}
	}
}

func TestDifferentiableFunctions_Sorted(t *testing.T) {
	names := gocas.DifferentiableFunctions()
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Fatalf("not sorted: %v", names)
		}
	}
	if len(names) < 4 {
		t.Errorf("expected at least sin, cos, tan, exp; got %v", names)
	}
}
