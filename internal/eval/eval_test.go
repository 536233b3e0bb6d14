package eval

import (
	"errors"
	"math"
	"testing"

	"condcomp/internal/env"
)

func evalOK(t *testing.T, expr string, e *env.Environment) env.Value {
	t.Helper()
	v, err := Evaluate(expr, e)
	if err != nil {
		t.Fatalf("Evaluate(%q) failed: %v", expr, err)
	}
	return v
}

func TestArithmetic(t *testing.T) {
	e := env.New(nil)
	cases := []struct {
		expr string
		want env.Value
	}{
		{"1 + 2", 3.0},
		{"2 * 3 + 1", 7.0},
		{"2 + 3 * 4", 14.0},
		{"(1 + 2) * 3", 9.0},
		{"10 / 4", 2.5},
		{"7 % 3", 1.0},
		{"-3", -3.0},
		{"+'5'", 5.0},
		{"-'3'", -3.0},
		{"0xff", 255.0},
		{"1e3", 1000.0},
		{".5 + .5", 1.0},
		{"'a' + 'b'", "ab"},
		{"1 + 'px'", "1px"},
		{"'v' + 2", "v2"},
	}
	for _, c := range cases {
		if got := evalOK(t, c.expr, e); got != c.want {
			t.Errorf("%q = %v, want %v", c.expr, got, c.want)
		}
	}
}

func TestNaNAndInfinityPropagation(t *testing.T) {
	e := env.New(nil)

	if v := evalOK(t, "1 / 0", e).(float64); !math.IsInf(v, 1) {
		t.Errorf("1/0 = %v, want Infinity", v)
	}
	if v := evalOK(t, "-1 / 0", e).(float64); !math.IsInf(v, -1) {
		t.Errorf("-1/0 = %v, want -Infinity", v)
	}
	for _, expr := range []string{"0 / 0", "'x' * 2", "+'nope'", "NaN + 1", "7 % 0"} {
		if v := evalOK(t, expr, e).(float64); !math.IsNaN(v) {
			t.Errorf("%q = %v, want NaN", expr, v)
		}
	}
}

func TestComparisons(t *testing.T) {
	e := env.New(nil)
	cases := []struct {
		expr string
		want bool
	}{
		{"1 < 2", true},
		{"2 <= 2", true},
		{"3 > 4", false},
		{"'a' < 'b'", true},
		{"'b' >= 'b'", true},
		{"'10' < 9", false}, // numeric compare when only one side is a string
		{"NaN == NaN", false},
		{"NaN < 1", false},
		{"NaN >= 1", false},
		{"null == undefined", true},
		{"null === undefined", false},
		{"undefined === undefined", true},
		{"1 == '1'", true},
		{"1 === '1'", false},
		{"true == 1", true},
		{"1 != 2", true},
		{"1 !== 1", false},
	}
	for _, c := range cases {
		if got := evalOK(t, c.expr, e); got != c.want {
			t.Errorf("%q = %v, want %v", c.expr, got, c.want)
		}
	}
}

func TestLogicalOperatorsYieldOperands(t *testing.T) {
	e := env.New(nil)

	if got := evalOK(t, "0 || 'fallback'", e); got != "fallback" {
		t.Errorf("0 || 'fallback' = %v", got)
	}
	if got := evalOK(t, "'first' || 'second'", e); got != "first" {
		t.Errorf("'first' || 'second' = %v", got)
	}
	if got := evalOK(t, "0 && 1", e); got != 0.0 {
		t.Errorf("0 && 1 = %v", got)
	}
	if got := evalOK(t, "1 && 'yes'", e); got != "yes" {
		t.Errorf("1 && 'yes' = %v", got)
	}
	// Short circuit must skip the right side entirely.
	if got := evalOK(t, "0 && undefined.boom", e); got != 0.0 {
		t.Errorf("short-circuited && = %v", got)
	}
	if got := evalOK(t, "1 || undefined.boom", e); got != 1.0 {
		t.Errorf("short-circuited || = %v", got)
	}
}

func TestTernary(t *testing.T) {
	e := env.New(map[string]interface{}{"__N": 5})

	if got := evalOK(t, "__N > 3 ? 'big' : 'small'", e); got != "big" {
		t.Errorf("ternary = %v", got)
	}
	if got := evalOK(t, "false ? 1 : true ? 2 : 3", e); got != 2.0 {
		t.Errorf("nested ternary = %v", got)
	}
	// Only the taken branch is evaluated.
	if got := evalOK(t, "true ? 1 : undefined.boom", e); got != 1.0 {
		t.Errorf("ternary dead branch = %v", got)
	}
}

func TestIdentifierResolution(t *testing.T) {
	e := env.New(map[string]interface{}{"__DEBUG": true, "__NAME": "app"})

	if got := evalOK(t, "__DEBUG", e); got != true {
		t.Errorf("__DEBUG = %v", got)
	}
	if got := evalOK(t, "__NAME + '!'", e); got != "app!" {
		t.Errorf("__NAME concat = %v", got)
	}
	if got := evalOK(t, "__MISSING", e); !env.IsUndefined(got) {
		t.Errorf("unknown identifier = %v, want undefined", got)
	}
}

func TestMemberAndIndexAccess(t *testing.T) {
	e := env.New(map[string]interface{}{"__S": "abc"})

	if got := evalOK(t, "__S.length", e); got != 3.0 {
		t.Errorf("__S.length = %v", got)
	}
	if got := evalOK(t, "__S[1]", e); got != "b" {
		t.Errorf("__S[1] = %v", got)
	}
	if got := evalOK(t, "__S['length']", e); got != 3.0 {
		t.Errorf("__S['length'] = %v", got)
	}
	if got := evalOK(t, "__S[9]", e); !env.IsUndefined(got) {
		t.Errorf("out-of-range index = %v, want undefined", got)
	}
	if got := evalOK(t, "__S.nope", e); !env.IsUndefined(got) {
		t.Errorf("unknown property = %v, want undefined", got)
	}
}

func TestRuntimeErrors(t *testing.T) {
	e := env.New(nil)
	for _, expr := range []string{"__MISSING.prop", "undefined.x", "null.x", "__MISSING[0]"} {
		_, err := Evaluate(expr, e)
		var runtimeErr *RuntimeError
		if !errors.As(err, &runtimeErr) {
			t.Errorf("Evaluate(%q) err = %v, want RuntimeError", expr, err)
		}
	}
}

func TestSyntaxErrors(t *testing.T) {
	e := env.New(nil)
	for _, expr := range []string{"", "1 +", "(1", "? :", "1 ? 2", "'unterminated", "1 2", "@", "0x"} {
		_, err := Evaluate(expr, e)
		var syntaxErr *SyntaxError
		if !errors.As(err, &syntaxErr) {
			t.Errorf("Evaluate(%q) err = %v, want SyntaxError", expr, err)
		}
	}
}

func TestStringEscapes(t *testing.T) {
	e := env.New(nil)
	if got := evalOK(t, `'a\nb'`, e); got != "a\nb" {
		t.Errorf("escape = %q", got)
	}
	if got := evalOK(t, `"say \"hi\""`, e); got != `say "hi"` {
		t.Errorf("quote escape = %q", got)
	}
}
