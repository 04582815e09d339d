package stdlib_test

import (
	"errors"
	"testing"

	"github.com/thomasrohde/biglisp/go/pkg/diagnostics"
	"github.com/thomasrohde/biglisp/go/pkg/evaluator"
	"github.com/thomasrohde/biglisp/go/pkg/stdlib"
)

func newRegistry() *stdlib.Registry {
	reg := stdlib.NewRegistry()
	stdlib.RegisterDefaults(reg)
	return reg
}

// call invokes a registered builtin and fails the test if it is missing.
func call(t *testing.T, name string, args ...evaluator.Value) (evaluator.Value, error) {
	t.Helper()
	fn := newRegistry().Get(name)
	if fn == nil {
		t.Fatalf("builtin %q not registered", name)
	}
	return fn.Execute(args)
}

func mustCall(t *testing.T, name string, args ...evaluator.Value) evaluator.Value {
	t.Helper()
	val, err := call(t, name, args...)
	if err != nil {
		t.Fatalf("%s: unexpected error: %v", name, err)
	}
	return val
}

func expectCode(t *testing.T, err error, code string) {
	t.Helper()
	var evalErr *evaluator.EvalError
	if !errors.As(err, &evalErr) {
		t.Fatalf("expected *EvalError with %s, got %v", code, err)
	}
	if evalErr.Code != code {
		t.Errorf("got code %s (%s), want %s", evalErr.Code, evalErr.Message, code)
	}
}

func expectRepr(t *testing.T, val evaluator.Value, want string) {
	t.Helper()
	if got := evaluator.Repr(val); got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

var (
	i = evaluator.NewInt
	f = evaluator.NewFloat
	s = evaluator.NewString
)

func list(items ...evaluator.Value) evaluator.Value {
	return evaluator.NewList(items)
}

func TestRegistry(t *testing.T) {
	reg := newRegistry()
	for _, name := range []string{"min", "max", "abs", "inc", "dec", "zero", "pos", "neg", "even", "odd"} {
		if reg.Get(name) == nil {
			t.Errorf("expected %q to be registered", name)
		}
	}
	if len(reg.Builtins()) != len(reg.All()) {
		t.Error("Builtins should mirror All")
	}
	names := reg.Names()
	for k := 1; k < len(names); k++ {
		if names[k-1] > names[k] {
			t.Fatalf("names not sorted: %v", names)
		}
	}
}

func TestRegisterIgnoresCoreForms(t *testing.T) {
	reg := stdlib.NewRegistry()
	reg.Register(stdlib.Fn{Name: "if", Execute: func([]evaluator.Value) (evaluator.Value, error) { return nil, nil }})
	if reg.Get("if") != nil {
		t.Error("core form names must not be registered")
	}
}

// ---- math ----

func TestMinMax(t *testing.T) {
	expectRepr(t, mustCall(t, "min", i(3), i(1), i(2)), "1")
	expectRepr(t, mustCall(t, "max", i(3), f(7.5), i(2)), "7.5")
	expectRepr(t, mustCall(t, "max", i(4)), "4")

	_, err := call(t, "min")
	expectCode(t, err, diagnostics.EArity)
	_, err = call(t, "max", i(1), s("x"))
	expectCode(t, err, diagnostics.EType)
}

func TestAbsIncDec(t *testing.T) {
	expectRepr(t, mustCall(t, "abs", i(-4)), "4")
	expectRepr(t, mustCall(t, "abs", f(-2.5)), "2.5")
	expectRepr(t, mustCall(t, "inc", i(41)), "42")
	expectRepr(t, mustCall(t, "dec", f(1.5)), "0.5")

	_, err := call(t, "inc", s("1"))
	expectCode(t, err, diagnostics.EType)
	_, err = call(t, "abs", i(1), i(2))
	expectCode(t, err, diagnostics.EArity)
}

// ---- predicates ----

func TestNumberPredicates(t *testing.T) {
	tests := []struct {
		name string
		arg  evaluator.Value
		want bool
	}{
		{"zero", i(0), true},
		{"zero", f(0.5), false},
		{"pos", i(3), true},
		{"pos", i(0), false},
		{"neg", f(-0.1), true},
		{"even", i(4), true},
		{"even", i(-3), false},
		{"odd", i(-3), true},
	}
	for _, tt := range tests {
		got := mustCall(t, tt.name, tt.arg)
		if !evaluator.DeepEqual(got, evaluator.NewBool(tt.want)) {
			t.Errorf("(%s %s) = %s, want %v", tt.name, evaluator.Repr(tt.arg), evaluator.Repr(got), tt.want)
		}
	}

	_, err := call(t, "even", f(2))
	expectCode(t, err, diagnostics.EType)
	_, err = call(t, "zero")
	expectCode(t, err, diagnostics.EArity)
}

func TestContainsEmptyTypeof(t *testing.T) {
	expectRepr(t, mustCall(t, "contains", list(i(1), list(i(2))), list(i(2))), "true")
	expectRepr(t, mustCall(t, "contains", s("hello"), s("ell")), "true")
	expectRepr(t, mustCall(t, "contains", list(), i(1)), "false")
	expectRepr(t, mustCall(t, "empty", list()), "true")
	expectRepr(t, mustCall(t, "empty", s("x")), "false")
	expectRepr(t, mustCall(t, "typeof", f(1)), `"float"`)

	_, err := call(t, "contains", i(1), i(1))
	expectCode(t, err, diagnostics.EType)
}

// ---- lists ----

func TestListBuiltins(t *testing.T) {
	xs := list(i(3), i(1), i(2), i(1))
	expectRepr(t, mustCall(t, "append", xs, i(9)), "[3 1 2 1 9]")
	expectRepr(t, mustCall(t, "concat", xs, list(s("a"))), `[3 1 2 1 "a"]`)
	expectRepr(t, mustCall(t, "concat"), "[]")
	expectRepr(t, mustCall(t, "nth", xs, i(2)), "2")
	expectRepr(t, mustCall(t, "reverse", xs), "[1 2 1 3]")
	expectRepr(t, mustCall(t, "sort", xs), "[1 1 2 3]")
	expectRepr(t, mustCall(t, "sort", list(s("b"), s("a"))), `["a" "b"]`)
	expectRepr(t, mustCall(t, "sort", list(f(2.5), i(1), i(3))), "[1 2.5 3]")
	expectRepr(t, mustCall(t, "unique", xs), "[3 1 2]")
	expectRepr(t, mustCall(t, "flat", list(i(1), list(i(2), list(i(3))))), "[1 2 [3]]")
	expectRepr(t, mustCall(t, "join", list(s("a"), i(1)), s(", ")), `"a, 1"`)
	expectRepr(t, mustCall(t, "range", i(3)), "[0 1 2]")
	expectRepr(t, mustCall(t, "range", i(2), i(5)), "[2 3 4]")
	expectRepr(t, mustCall(t, "range", i(5), i(2)), "[]")

	// the input list is left untouched
	expectRepr(t, xs, "[3 1 2 1]")
}

func TestListBuiltinErrors(t *testing.T) {
	_, err := call(t, "nth", list(i(1)), i(5))
	expectCode(t, err, diagnostics.EType)
	_, err = call(t, "nth", list(), i(0))
	expectCode(t, err, diagnostics.EEmptyList)
	_, err = call(t, "append", i(1), i(2))
	expectCode(t, err, diagnostics.EType)
	_, err = call(t, "range", i(0), i(2000000))
	expectCode(t, err, diagnostics.EBudget)
	_, err = call(t, "range")
	expectCode(t, err, diagnostics.EArity)
}

// ---- strings ----

func TestStringBuiltins(t *testing.T) {
	expectRepr(t, mustCall(t, "split", s("a,b,c"), s(",")), `["a" "b" "c"]`)
	expectRepr(t, mustCall(t, "starts-with", s("biglisp"), s("big")), "true")
	expectRepr(t, mustCall(t, "ends-with", s("biglisp"), s("big")), "false")
	expectRepr(t, mustCall(t, "replace", s("a-b-c"), s("-"), s("+")), `"a+b+c"`)
	expectRepr(t, mustCall(t, "upper", s("abc")), `"ABC"`)
	expectRepr(t, mustCall(t, "lower", s("ABC")), `"abc"`)
	expectRepr(t, mustCall(t, "trim", s("  x \n")), `"x"`)

	_, err := call(t, "split", s("a"), i(1))
	expectCode(t, err, diagnostics.EType)
}

// ---- json ----

func TestParseJSON(t *testing.T) {
	expectRepr(t, mustCall(t, "parse-json", s(`[1, 2.5, "x", true, null, [3]]`)), `[1 2.5 "x" true nil [3]]`)

	_, err := call(t, "parse-json", s(`{"a": 1}`))
	expectCode(t, err, diagnostics.EType)
	_, err = call(t, "parse-json", s(`[1`))
	expectCode(t, err, diagnostics.EType)
	_, err = call(t, "parse-json", s(`1 2`))
	expectCode(t, err, diagnostics.EType)
}

func TestToJSON(t *testing.T) {
	expectRepr(t, mustCall(t, "to-json", list(i(1), f(2.5), s("x"), evaluator.NewUnit())), `"[1,2.5,\"x\",null]"`)
}
