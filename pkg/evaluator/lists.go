package evaluator

import (
	"github.com/thomasrohde/biglisp/go/pkg/ast"
	"github.com/thomasrohde/biglisp/go/pkg/diagnostics"
)

// listOp implements first, rest, count and cons. Lists are never modified;
// rest and cons return fresh lists.
func listOp(op string, args []Value, span ast.Span) (Value, error) {
	want := 1
	if op == "cons" {
		want = 2
	}
	if len(args) != want {
		if want == 1 {
			return nil, arityAt(span, op, "1 argument", len(args))
		}
		return nil, arityAt(span, op, "2 arguments", len(args))
	}

	listArg := args[len(args)-1]
	list, ok := listArg.(List)
	if !ok {
		return nil, typeAt(span, op, "a list", listArg)
	}

	switch op {
	case "first":
		if len(list.Items) == 0 {
			return nil, errAt(diagnostics.EEmptyList, span, "'first' of an empty list")
		}
		return list.Items[0], nil

	case "rest":
		if len(list.Items) == 0 {
			return NewList(nil), nil
		}
		items := make([]Value, len(list.Items)-1)
		copy(items, list.Items[1:])
		return NewList(items), nil

	case "count":
		return Int{Value: int64(len(list.Items))}, nil

	case "cons":
		items := make([]Value, 0, len(list.Items)+1)
		items = append(items, args[0])
		items = append(items, list.Items...)
		return NewList(items), nil
	}

	return nil, errAt(diagnostics.EUnknownForm, span, "unknown list operator '%s'", op)
}
