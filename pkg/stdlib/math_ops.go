package stdlib

import (
	"math"

	"github.com/thomasrohde/biglisp/go/pkg/evaluator"
)

// min number... → number
func stdlibMin(args []evaluator.Value) (evaluator.Value, error) {
	return extremum("min", args, func(a, b float64) bool { return a < b })
}

// max number... → number
func stdlibMax(args []evaluator.Value) (evaluator.Value, error) {
	return extremum("max", args, func(a, b float64) bool { return a > b })
}

// extremum returns the winning argument itself, keeping its Int or Float type.
func extremum(name string, args []evaluator.Value, better func(a, b float64) bool) (evaluator.Value, error) {
	if err := atLeast(name, args, 1); err != nil {
		return nil, err
	}
	best := args[0]
	bestNum, _, err := wantNumber(name, best)
	if err != nil {
		return nil, err
	}
	for _, arg := range args[1:] {
		n, _, err := wantNumber(name, arg)
		if err != nil {
			return nil, err
		}
		if better(n, bestNum) {
			best, bestNum = arg, n
		}
	}
	return best, nil
}

// abs number → number
func stdlibAbs(args []evaluator.Value) (evaluator.Value, error) {
	if err := exactly("abs", args, 1); err != nil {
		return nil, err
	}
	switch n := args[0].(type) {
	case evaluator.Int:
		if n.Value < 0 {
			return evaluator.NewInt(-n.Value), nil
		}
		return n, nil
	case evaluator.Float:
		return evaluator.NewFloat(math.Abs(n.Value)), nil
	}
	return nil, evaluator.TypeError("abs", "a number", args[0])
}

// inc number → number + 1
func stdlibInc(args []evaluator.Value) (evaluator.Value, error) {
	return step("inc", args, 1)
}

// dec number → number - 1
func stdlibDec(args []evaluator.Value) (evaluator.Value, error) {
	return step("dec", args, -1)
}

func step(name string, args []evaluator.Value, delta int64) (evaluator.Value, error) {
	if err := exactly(name, args, 1); err != nil {
		return nil, err
	}
	switch n := args[0].(type) {
	case evaluator.Int:
		return evaluator.NewInt(n.Value + delta), nil
	case evaluator.Float:
		return evaluator.NewFloat(n.Value + float64(delta)), nil
	}
	return nil, evaluator.TypeError(name, "a number", args[0])
}
