package stdlib

import (
	"strings"

	"github.com/thomasrohde/biglisp/go/pkg/evaluator"
)

// split string sep → list of strings
func stdlibSplit(args []evaluator.Value) (evaluator.Value, error) {
	strs, err := stringArgs("split", args, 2)
	if err != nil {
		return nil, err
	}
	parts := strings.Split(strs[0], strs[1])
	items := make([]evaluator.Value, len(parts))
	for i, p := range parts {
		items[i] = evaluator.NewString(p)
	}
	return evaluator.NewList(items), nil
}

// starts-with string prefix → bool
func stdlibStartsWith(args []evaluator.Value) (evaluator.Value, error) {
	strs, err := stringArgs("starts-with", args, 2)
	if err != nil {
		return nil, err
	}
	return evaluator.NewBool(strings.HasPrefix(strs[0], strs[1])), nil
}

// ends-with string suffix → bool
func stdlibEndsWith(args []evaluator.Value) (evaluator.Value, error) {
	strs, err := stringArgs("ends-with", args, 2)
	if err != nil {
		return nil, err
	}
	return evaluator.NewBool(strings.HasSuffix(strs[0], strs[1])), nil
}

// replace string from to → string with every occurrence replaced
func stdlibReplace(args []evaluator.Value) (evaluator.Value, error) {
	strs, err := stringArgs("replace", args, 3)
	if err != nil {
		return nil, err
	}
	return evaluator.NewString(strings.ReplaceAll(strs[0], strs[1], strs[2])), nil
}

func stdlibUpper(args []evaluator.Value) (evaluator.Value, error) {
	strs, err := stringArgs("upper", args, 1)
	if err != nil {
		return nil, err
	}
	return evaluator.NewString(strings.ToUpper(strs[0])), nil
}

func stdlibLower(args []evaluator.Value) (evaluator.Value, error) {
	strs, err := stringArgs("lower", args, 1)
	if err != nil {
		return nil, err
	}
	return evaluator.NewString(strings.ToLower(strs[0])), nil
}

func stdlibTrim(args []evaluator.Value) (evaluator.Value, error) {
	strs, err := stringArgs("trim", args, 1)
	if err != nil {
		return nil, err
	}
	return evaluator.NewString(strings.TrimSpace(strs[0])), nil
}

func stringArgs(name string, args []evaluator.Value, n int) ([]string, error) {
	if err := exactly(name, args, n); err != nil {
		return nil, err
	}
	strs := make([]string, n)
	for i, arg := range args {
		s, err := wantString(name, arg)
		if err != nil {
			return nil, err
		}
		strs[i] = s
	}
	return strs, nil
}
