package evaluator

import (
	"math"
	"strings"

	"github.com/thomasrohde/biglisp/go/pkg/ast"
	"github.com/thomasrohde/biglisp/go/pkg/diagnostics"
)

// number is a numeric operand; f is only meaningful when isFloat is set.
type number struct {
	i       int64
	f       float64
	isFloat bool
}

func toNumber(v Value) (number, bool) {
	switch n := v.(type) {
	case Int:
		return number{i: n.Value}, true
	case Float:
		return number{f: n.Value, isFloat: true}, true
	}
	return number{}, false
}

func (n number) float() float64 {
	if n.isFloat {
		return n.f
	}
	return float64(n.i)
}

func (n number) isZero() bool {
	if n.isFloat {
		return n.f == 0
	}
	return n.i == 0
}

func (n number) toValue() Value {
	if n.isFloat {
		return Float{Value: n.f}
	}
	return Int{Value: n.i}
}

// compareNumbers returns -1, 0 or 1. Mixed pairs compare as floats.
func compareNumbers(a, b number) int {
	if !a.isFloat && !b.isFloat {
		switch {
		case a.i < b.i:
			return -1
		case a.i > b.i:
			return 1
		}
		return 0
	}
	af, bf := a.float(), b.float()
	switch {
	case af < bf:
		return -1
	case af > bf:
		return 1
	}
	return 0
}

func numericArgs(op string, args []Value, span ast.Span) ([]number, bool, error) {
	nums := make([]number, len(args))
	anyFloat := false
	for i, arg := range args {
		n, ok := toNumber(arg)
		if !ok {
			return nil, false, typeAt(span, op, "numbers", arg)
		}
		nums[i] = n
		anyFloat = anyFloat || n.isFloat
	}
	if anyFloat {
		for i := range nums {
			nums[i] = number{f: nums[i].float(), isFloat: true}
		}
	}
	return nums, anyFloat, nil
}

// arithmetic folds + - * / left to right. The result is an integer unless
// some operand is a float; integer overflow wraps.
func arithmetic(op string, args []Value, span ast.Span) (Value, error) {
	nums, isFloat, err := numericArgs(op, args, span)
	if err != nil {
		return nil, err
	}

	switch op {
	case "+":
		acc := number{isFloat: isFloat}
		for _, n := range nums {
			acc.i += n.i
			acc.f += n.f
		}
		return acc.toValue(), nil

	case "*":
		acc := number{i: 1, f: 1, isFloat: isFloat}
		for _, n := range nums {
			acc.i *= n.i
			acc.f *= n.f
		}
		return acc.toValue(), nil

	case "-":
		if len(nums) == 0 {
			return nil, arityAt(span, op, "at least 1 argument", 0)
		}
		if len(nums) == 1 {
			return number{i: -nums[0].i, f: -nums[0].f, isFloat: isFloat}.toValue(), nil
		}
		acc := nums[0]
		for _, n := range nums[1:] {
			acc.i -= n.i
			acc.f -= n.f
		}
		return acc.toValue(), nil

	case "/":
		if len(nums) == 0 {
			return nil, arityAt(span, op, "at least 1 argument", 0)
		}
		acc := nums[0]
		divisors := nums[1:]
		if len(nums) == 1 {
			acc = number{i: 1, f: 1, isFloat: isFloat}
			divisors = nums
		}
		for _, n := range divisors {
			if n.isZero() {
				return nil, errAt(diagnostics.EDivZero, span, "division by zero")
			}
			if isFloat {
				acc.f /= n.f
			} else {
				acc.i /= n.i
			}
		}
		return acc.toValue(), nil
	}

	return nil, errAt(diagnostics.EUnknownForm, span, "unknown arithmetic operator '%s'", op)
}

// modulo takes exactly two numbers. An integer remainder has the sign of the dividend.
func modulo(op string, args []Value, span ast.Span) (Value, error) {
	if len(args) != 2 {
		return nil, arityAt(span, op, "2 arguments", len(args))
	}
	nums, isFloat, err := numericArgs(op, args, span)
	if err != nil {
		return nil, err
	}
	if nums[1].isZero() {
		return nil, errAt(diagnostics.EDivZero, span, "modulo by zero")
	}
	if isFloat {
		return Float{Value: math.Mod(nums[0].f, nums[1].f)}, nil
	}
	return Int{Value: nums[0].i % nums[1].i}, nil
}

// compareChain applies a comparison to each adjacent pair of already-evaluated
// arguments, left to right. The first failing pair decides the result.
func compareChain(op string, args []Value, span ast.Span) (Value, error) {
	if len(args) == 0 {
		return nil, arityAt(span, op, "at least 1 argument", 0)
	}
	for i := 0; i+1 < len(args); i++ {
		ok, err := comparePair(op, args[i], args[i+1], span)
		if err != nil {
			return nil, err
		}
		if !ok {
			return Bool{Value: false}, nil
		}
	}
	return Bool{Value: true}, nil
}

func comparePair(op string, a, b Value, span ast.Span) (bool, error) {
	equality := op == "=" || op == "eq" || op == "ne"

	if an, ok := toNumber(a); ok {
		if bn, ok := toNumber(b); ok {
			return orderHolds(op, compareNumbers(an, bn)), nil
		}
	}
	if as, ok := a.(String); ok {
		if bs, ok := b.(String); ok {
			return orderHolds(op, strings.Compare(as.Value, bs.Value)), nil
		}
	}

	if equality && sameKind(a, b) {
		eq := DeepEqual(a, b)
		if op == "ne" {
			return !eq, nil
		}
		return eq, nil
	}

	return false, errAt(diagnostics.EType, span, "'%s' cannot compare %s with %s", op, TypeName(a), TypeName(b))
}

func orderHolds(op string, cmp int) bool {
	switch op {
	case "=", "eq":
		return cmp == 0
	case "ne":
		return cmp != 0
	case "<":
		return cmp < 0
	case ">":
		return cmp > 0
	case "lte":
		return cmp <= 0
	case "gte":
		return cmp >= 0
	}
	return false
}

// sameKind reports whether equality between a and b is defined: both booleans,
// both unit, both lists or both functions.
func sameKind(a, b Value) bool {
	switch a.(type) {
	case Bool:
		_, ok := b.(Bool)
		return ok
	case Unit:
		_, ok := b.(Unit)
		return ok
	case List:
		_, ok := b.(List)
		return ok
	case *Function:
		_, ok := b.(*Function)
		return ok
	}
	return false
}
