package stdlib

import (
	"fmt"

	"github.com/thomasrohde/biglisp/go/pkg/evaluator"
)

func exactly(name string, args []evaluator.Value, n int) error {
	if len(args) != n {
		want := fmt.Sprintf("%d arguments", n)
		if n == 1 {
			want = "1 argument"
		}
		return evaluator.ArityError(name, want, len(args))
	}
	return nil
}

func atLeast(name string, args []evaluator.Value, n int) error {
	if len(args) < n {
		return evaluator.ArityError(name, fmt.Sprintf("at least %d argument(s)", n), len(args))
	}
	return nil
}

func wantList(name string, v evaluator.Value) (evaluator.List, error) {
	list, ok := v.(evaluator.List)
	if !ok {
		return evaluator.List{}, evaluator.TypeError(name, "a list", v)
	}
	return list, nil
}

func wantString(name string, v evaluator.Value) (string, error) {
	s, ok := v.(evaluator.String)
	if !ok {
		return "", evaluator.TypeError(name, "a string", v)
	}
	return s.Value, nil
}

func wantInt(name string, v evaluator.Value) (int64, error) {
	n, ok := v.(evaluator.Int)
	if !ok {
		return 0, evaluator.TypeError(name, "an integer", v)
	}
	return n.Value, nil
}

// wantNumber returns v as a float64 and whether it was an Int.
func wantNumber(name string, v evaluator.Value) (float64, bool, error) {
	switch n := v.(type) {
	case evaluator.Int:
		return float64(n.Value), true, nil
	case evaluator.Float:
		return n.Value, false, nil
	}
	return 0, false, evaluator.TypeError(name, "a number", v)
}
