package gocas_test

import (
	"testing"

	gocas "github.com/njchilds90/gocas"
)

// ============================================================
// Closed rules
// ============================================================

func TestIntegrate_Variable(t *testing.T) {
	got := gocas.Integrate(x, "x")
	want := gocas.Div(gocas.Pow(x, gocas.N(2)), gocas.N(2))
	if !gocas.Equal(got, want) {
		t.Errorf("want x^2/2, got %s", got)
	}
}

func TestIntegrate_Constant(t *testing.T) {
	got := gocas.Integrate(gocas.N(3), "x")
	if !gocas.Equal(got, gocas.Mul(gocas.N(3), x)) {
		t.Errorf("want 3*x, got %s", got)
	}
	got = gocas.Integrate(y, "x")
	if !gocas.Equal(got, gocas.Mul(y, x)) {
		t.Errorf("want y*x, got %s", got)
	}
}

func TestIntegrate_Rules(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"x^2", "x^3/3"},
		{"x^y", "x^(y+1)/(y+1)"},
		{"x^(1/2)", "x^(3/2)/(3/2)"},
		{"2*x", "2*(x^2/2)"},
		{"x*2", "2*(x^2/2)"},
		{"x+1", "x^2/2+x"},
		{"x-sin(x)", "x^2/2--cos(x)"},
		{"sin(x)", "-cos(x)"},
		{"cos(x)", "sin(x)"},
		{"tan(x)", "-ln(abs(cos(x)))"},
		{"3*cos(x)", "3*sin(x)"},
	}
	for _, tt := range tests {
		got := gocas.Integrate(gocas.MustParse(tt.in), "x")
		if gocas.String(got) != tt.want {
			t.Errorf("integrate(%s): want %s, got %s", tt.in, tt.want, gocas.String(got))
		}
		if !gocas.Resolved(got) {
			t.Errorf("integrate(%s) should be resolved", tt.in)
		}
	}
}

// ============================================================
// Deferred results
// ============================================================

func TestIntegrate_UnknownFunctionIsDeferred(t *testing.T) {
	in := gocas.Call("unknown", x)
	got := gocas.Integrate(in, "x")
	tr, ok := got.(*gocas.Transform)
	if !ok {
		t.Fatalf("want *Transform, got %T (%s)", got, got)
	}
	if tr.Name() != gocas.TransformIntegrate {
		t.Errorf("want integrate transform, got %s", tr.Name())
	}
	if !gocas.Equal(tr.Target(), in) {
		t.Errorf("want target %s, got %s", in, tr.Target())
	}
	if !gocas.Equal(tr.Var(), x) {
		t.Errorf("want var x, got %s", tr.Var())
	}
}

func TestIntegrate_Deferred(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"sin(2*x)", "integrate[sin(2*x), x]"},
		{"x*y", "integrate[x*y, x]"},
		{"1/x", "integrate[1/x, x]"},
		{"x^x", "integrate[x^x, x]"},
		{"2^x", "integrate[2^x, x]"},
		{"-x", "integrate[-x, x]"},
		{"exp(x)", "integrate[exp(x), x]"},
		{"x+x*y", "x^2/2+integrate[x*y, x]"},
		{"x^-1", "integrate[x^-1, x]"},
		{"x+x^-1", "x^2/2+integrate[x^-1, x]"},
		{"x^(y/0)", "integrate[x^(y/0), x]"},
	}
	for _, tt := range tests {
		got := gocas.Integrate(gocas.MustParse(tt.in), "x")
		if gocas.String(got) != tt.want {
			t.Errorf("integrate(%s): want %s, got %s", tt.in, tt.want, gocas.String(got))
		}
		if gocas.Resolved(got) {
			t.Errorf("integrate(%s) should not be resolved", tt.in)
		}
	}
}

func TestIntegrate_PowerRuleDivisionByZeroDefers(t *testing.T) {
	// n+1 folds to 0, so the closed form would divide by zero
	in := gocas.Pow(x, gocas.N(-1))
	got := gocas.Integrate(in, "x")
	if !gocas.Equal(got, gocas.Integral(in, "x")) {
		t.Errorf("want integrate[x^(-1), x], got %s", got)
	}
}

func TestIntegrate_MinusOnePowerKeepsResolvedSiblings(t *testing.T) {
	inv := gocas.Pow(x, gocas.N(-1))
	got := gocas.Integrate(gocas.Add(x, inv), "x")
	want := gocas.Add(gocas.Div(gocas.Pow(x, gocas.N(2)), gocas.N(2)), gocas.Integral(inv, "x"))
	if !gocas.Equal(got, want) {
		t.Errorf("want %s, got %s", want, got)
	}
}

func TestIntegrate_NeverFailsOnDivisionByZero(t *testing.T) {
	in := gocas.Add(x, gocas.Div(x, gocas.N(0)))
	got := gocas.Integrate(in, "x")
	if !gocas.Equal(got, gocas.Integral(in, "x")) {
		t.Errorf("want the whole input deferred, got %s", got)
	}
}

func TestIntegrate_ThenDiff(t *testing.T) {
	anti := gocas.Integrate(gocas.Cos(x), "x")
	if got := mustDiff(t, anti, "x"); gocas.String(got) != "cos(x)" {
		t.Errorf("want cos(x), got %s", gocas.String(got))
	}
}

func TestIntegrate_TooDeepIsDeferred(t *testing.T) {
	var e gocas.Expr = x
	for i := 0; i < gocas.MaxDepth+1; i++ {
		e = gocas.Add(e, gocas.N(1))
	}
	got := gocas.Integrate(e, "x")
	if _, ok := got.(*gocas.Transform); !ok {
		t.Errorf("want a deferred marker, got %T", got)
	}
}
