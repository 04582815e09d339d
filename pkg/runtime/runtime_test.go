package runtime_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/thomasrohde/biglisp/go/pkg/diagnostics"
	"github.com/thomasrohde/biglisp/go/pkg/evaluator"
	"github.com/thomasrohde/biglisp/go/pkg/runtime"
	"github.com/thomasrohde/biglisp/go/pkg/stdlib"
)

func TestRunReturnsLastValue(t *testing.T) {
	var out bytes.Buffer
	rt := runtime.New(runtime.WithOutput(&out))

	res, err := rt.Run(context.Background(), "(defn sq [x] (* x x))\n(println \"hi\")\n(call sq (inc 4))", "test.lisp")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := evaluator.Repr(res.Value); got != "25" {
		t.Errorf("got %s, want 25", got)
	}
	if out.String() != "hi\n" {
		t.Errorf("got output %q", out.String())
	}
	if res.Stats.Calls == 0 {
		t.Error("expected call stats to be recorded")
	}
}

func TestRunParseError(t *testing.T) {
	rt := runtime.New()
	_, err := rt.Run(context.Background(), "(+ 1 2", "test.lisp")

	var de *runtime.DiagnosticError
	if !errors.As(err, &de) {
		t.Fatalf("expected DiagnosticError, got %v", err)
	}
	if de.Diagnostics[0].Code != diagnostics.EUnbalanced {
		t.Errorf("got code %s", de.Diagnostics[0].Code)
	}
	if !de.Incomplete {
		t.Error("expected an unclosed form to be reported as incomplete")
	}
}

func TestRunRuntimeError(t *testing.T) {
	rt := runtime.New()
	res, err := rt.Run(context.Background(), "(dotimes i 3 i)\n(/ 1 0)", "test.lisp")

	var evalErr *evaluator.EvalError
	if !errors.As(err, &evalErr) || evalErr.Code != diagnostics.EDivZero {
		t.Fatalf("expected E_DIV_ZERO, got %v", err)
	}
	if res == nil || res.Stats.Iterations != 3 {
		t.Errorf("expected stats to survive the error, got %+v", res)
	}
}

func TestBindingsAndBudget(t *testing.T) {
	rt := runtime.New(
		runtime.WithBindings(map[string]evaluator.Value{"price": evaluator.NewInt(100)}),
		runtime.WithBudget(evaluator.Budget{MaxIterations: 10}),
	)

	val, err := rt.Eval(context.Background(), "(* price 2)")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if evaluator.Repr(val) != "200" {
		t.Errorf("got %s", evaluator.Repr(val))
	}

	_, err = rt.Run(context.Background(), "(dotimes i 100 i)", "test.lisp")
	var evalErr *evaluator.EvalError
	if !errors.As(err, &evalErr) || evalErr.Code != diagnostics.EBudget {
		t.Fatalf("expected E_BUDGET, got %v", err)
	}
}

func TestEvalRejectsMultipleExpressions(t *testing.T) {
	_, err := runtime.New().Eval(context.Background(), "1 2")
	var de *runtime.DiagnosticError
	if !errors.As(err, &de) || de.Diagnostics[0].Code != diagnostics.EUnexpectedToken {
		t.Fatalf("expected E_UNEXPECTED_TOKEN, got %v", err)
	}
}

func TestCheck(t *testing.T) {
	rt := runtime.New(runtime.WithBindings(map[string]evaluator.Value{"limit": evaluator.NewInt(3)}))

	if diags := rt.Check("(max limit (abs -4))", "test.lisp"); len(diags) != 0 {
		t.Errorf("expected no diagnostics, got %v", diags)
	}

	diags := rt.Check("(frob limit)", "test.lisp")
	if len(diags) != 1 || diags[0].Code != diagnostics.EUnknownForm {
		t.Errorf("expected E_UNKNOWN_FORM, got %v", diags)
	}

	diags = rt.Check("(let [a 1", "test.lisp")
	if len(diags) != 1 || diags[0].Code != diagnostics.EUnbalanced {
		t.Errorf("expected E_UNBALANCED_DELIMITER, got %v", diags)
	}
}

func TestCustomStdlib(t *testing.T) {
	reg := stdlib.NewRegistry()
	reg.Register(stdlib.Fn{Name: "answer", Execute: func([]evaluator.Value) (evaluator.Value, error) {
		return evaluator.NewInt(42), nil
	}})
	rt := runtime.New(runtime.WithStdlib(reg))

	val, err := rt.Eval(context.Background(), "(answer)")
	if err != nil || evaluator.Repr(val) != "42" {
		t.Fatalf("got %v, %v", val, err)
	}
	if _, err := rt.Eval(context.Background(), "(abs 1)"); err == nil {
		t.Error("default builtins should not be registered with a custom registry")
	}
}

func TestFormat(t *testing.T) {
	got, err := runtime.New().Format("(+  1   2)", "test.lisp")
	if err != nil {
		t.Fatal(err)
	}
	if got != "(+ 1 2)\n" {
		t.Errorf("got %q", got)
	}
}

func TestSessionKeepsDefinitions(t *testing.T) {
	s := runtime.New().NewSession()
	ctx := context.Background()

	if _, err := s.Run(ctx, "(defn twice [x] (* 2 x))", "<repl>"); err != nil {
		t.Fatal(err)
	}
	res, err := s.Run(ctx, "(call twice 21)", "<repl>")
	if err != nil {
		t.Fatal(err)
	}
	if evaluator.Repr(res.Value) != "42" {
		t.Errorf("got %s", evaluator.Repr(res.Value))
	}
	if names := s.Names(); len(names) != 1 || names[0] != "twice" {
		t.Errorf("got names %v", names)
	}
}

func TestTraceEvents(t *testing.T) {
	var events []evaluator.TraceEvent
	rt := runtime.New(
		runtime.WithRunID("r1"),
		runtime.WithTrace(func(ev evaluator.TraceEvent) { events = append(events, ev) }),
	)
	if _, err := rt.Run(context.Background(), "(+ 1 2)", "test.lisp"); err != nil {
		t.Fatal(err)
	}
	if len(events) < 2 || events[0].Event != evaluator.TraceRunStart || events[len(events)-1].Event != evaluator.TraceRunEnd {
		t.Fatalf("unexpected events: %+v", events)
	}
	if events[0].RunID != "r1" {
		t.Errorf("got run id %q", events[0].RunID)
	}
}
