package stdlib

import (
	"strings"

	"github.com/thomasrohde/biglisp/go/pkg/evaluator"
)

func numberPredicate(name string, pred func(float64) bool) func([]evaluator.Value) (evaluator.Value, error) {
	return func(args []evaluator.Value) (evaluator.Value, error) {
		if err := exactly(name, args, 1); err != nil {
			return nil, err
		}
		n, _, err := wantNumber(name, args[0])
		if err != nil {
			return nil, err
		}
		return evaluator.NewBool(pred(n)), nil
	}
}

func intPredicate(name string, pred func(int64) bool) func([]evaluator.Value) (evaluator.Value, error) {
	return func(args []evaluator.Value) (evaluator.Value, error) {
		if err := exactly(name, args, 1); err != nil {
			return nil, err
		}
		n, err := wantInt(name, args[0])
		if err != nil {
			return nil, err
		}
		return evaluator.NewBool(pred(n)), nil
	}
}

// empty list|string → bool
func stdlibEmpty(args []evaluator.Value) (evaluator.Value, error) {
	if err := exactly("empty", args, 1); err != nil {
		return nil, err
	}
	switch v := args[0].(type) {
	case evaluator.List:
		return evaluator.NewBool(len(v.Items) == 0), nil
	case evaluator.String:
		return evaluator.NewBool(v.Value == ""), nil
	}
	return nil, evaluator.TypeError("empty", "a list or string", args[0])
}

// contains list|string value → bool
// Lists use deep element equality; strings check for a substring.
func stdlibContains(args []evaluator.Value) (evaluator.Value, error) {
	if err := exactly("contains", args, 2); err != nil {
		return nil, err
	}
	switch in := args[0].(type) {
	case evaluator.String:
		sub, err := wantString("contains", args[1])
		if err != nil {
			return nil, err
		}
		return evaluator.NewBool(strings.Contains(in.Value, sub)), nil

	case evaluator.List:
		for _, item := range in.Items {
			if evaluator.DeepEqual(item, args[1]) {
				return evaluator.NewBool(true), nil
			}
		}
		return evaluator.NewBool(false), nil
	}
	return nil, evaluator.TypeError("contains", "a list or string", args[0])
}

// typeof any → string
func stdlibTypeof(args []evaluator.Value) (evaluator.Value, error) {
	if err := exactly("typeof", args, 1); err != nil {
		return nil, err
	}
	return evaluator.NewString(evaluator.TypeName(args[0])), nil
}
