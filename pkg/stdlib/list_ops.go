package stdlib

import (
	"sort"
	"strings"

	"github.com/thomasrohde/biglisp/go/pkg/diagnostics"
	"github.com/thomasrohde/biglisp/go/pkg/evaluator"
)

// maxRange bounds the size of lists built by range.
const maxRange = 1000000

// append list value → list
func stdlibAppend(args []evaluator.Value) (evaluator.Value, error) {
	if err := exactly("append", args, 2); err != nil {
		return nil, err
	}
	list, err := wantList("append", args[0])
	if err != nil {
		return nil, err
	}
	newItems := make([]evaluator.Value, len(list.Items)+1)
	copy(newItems, list.Items)
	newItems[len(list.Items)] = args[1]
	return evaluator.NewList(newItems), nil
}

// concat list... → list
func stdlibConcat(args []evaluator.Value) (evaluator.Value, error) {
	var newItems []evaluator.Value
	for _, arg := range args {
		list, err := wantList("concat", arg)
		if err != nil {
			return nil, err
		}
		newItems = append(newItems, list.Items...)
	}
	return evaluator.NewList(newItems), nil
}

// nth list index → any
func stdlibNth(args []evaluator.Value) (evaluator.Value, error) {
	if err := exactly("nth", args, 2); err != nil {
		return nil, err
	}
	list, err := wantList("nth", args[0])
	if err != nil {
		return nil, err
	}
	idx, err := wantInt("nth", args[1])
	if err != nil {
		return nil, err
	}
	if idx < 0 || idx >= int64(len(list.Items)) {
		if len(list.Items) == 0 {
			return nil, evaluator.Errorf(diagnostics.EEmptyList, "'nth' of an empty list")
		}
		return nil, evaluator.Errorf(diagnostics.EType, "'nth' index %d out of range for list of %d", idx, len(list.Items))
	}
	return list.Items[idx], nil
}

// reverse list → list
func stdlibReverse(args []evaluator.Value) (evaluator.Value, error) {
	if err := exactly("reverse", args, 1); err != nil {
		return nil, err
	}
	list, err := wantList("reverse", args[0])
	if err != nil {
		return nil, err
	}
	n := len(list.Items)
	newItems := make([]evaluator.Value, n)
	for i, item := range list.Items {
		newItems[n-1-i] = item
	}
	return evaluator.NewList(newItems), nil
}

// sort list → list
// Numbers sort numerically and strings lexicographically; mixed lists fall
// back to comparing JSON encodings.
func stdlibSort(args []evaluator.Value) (evaluator.Value, error) {
	if err := exactly("sort", args, 1); err != nil {
		return nil, err
	}
	list, err := wantList("sort", args[0])
	if err != nil {
		return nil, err
	}

	sorted := make([]evaluator.Value, len(list.Items))
	copy(sorted, list.Items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return compareValues(sorted[i], sorted[j]) < 0
	})
	return evaluator.NewList(sorted), nil
}

func compareValues(a, b evaluator.Value) int {
	aNum, aIsInt, aErr := wantNumber("sort", a)
	bNum, bIsInt, bErr := wantNumber("sort", b)
	if aErr == nil && bErr == nil {
		if aIsInt && bIsInt {
			ai, bi := a.(evaluator.Int).Value, b.(evaluator.Int).Value
			switch {
			case ai < bi:
				return -1
			case ai > bi:
				return 1
			}
			return 0
		}
		switch {
		case aNum < bNum:
			return -1
		case aNum > bNum:
			return 1
		}
		return 0
	}

	aStr, aIsStr := a.(evaluator.String)
	bStr, bIsStr := b.(evaluator.String)
	if aIsStr && bIsStr {
		return strings.Compare(aStr.Value, bStr.Value)
	}

	return strings.Compare(valueToSortKey(a), valueToSortKey(b))
}

func valueToSortKey(v evaluator.Value) string {
	b, err := evaluator.ValueToJSON(v)
	if err != nil {
		return evaluator.Repr(v)
	}
	return string(b)
}

// range [from] to → list of integers in [from, to)
func stdlibRange(args []evaluator.Value) (evaluator.Value, error) {
	if len(args) != 1 && len(args) != 2 {
		return nil, evaluator.ArityError("range", "1 or 2 arguments", len(args))
	}
	var from, to int64
	var err error
	if len(args) == 1 {
		if to, err = wantInt("range", args[0]); err != nil {
			return nil, err
		}
	} else {
		if from, err = wantInt("range", args[0]); err != nil {
			return nil, err
		}
		if to, err = wantInt("range", args[1]); err != nil {
			return nil, err
		}
	}

	if to <= from {
		return evaluator.NewList(nil), nil
	}
	if to-from > maxRange || to-from < 0 {
		return nil, evaluator.Errorf(diagnostics.EBudget, "range too large: more than %d items", maxRange)
	}

	items := make([]evaluator.Value, 0, to-from)
	for i := from; i < to; i++ {
		items = append(items, evaluator.NewInt(i))
	}
	return evaluator.NewList(items), nil
}

// unique list → list, keeping the first occurrence of each value
func stdlibUnique(args []evaluator.Value) (evaluator.Value, error) {
	if err := exactly("unique", args, 1); err != nil {
		return nil, err
	}
	list, err := wantList("unique", args[0])
	if err != nil {
		return nil, err
	}
	var out []evaluator.Value
	for _, item := range list.Items {
		seen := false
		for _, kept := range out {
			if evaluator.DeepEqual(item, kept) {
				seen = true
				break
			}
		}
		if !seen {
			out = append(out, item)
		}
	}
	return evaluator.NewList(out), nil
}

// flat list → list, flattening one level
func stdlibFlat(args []evaluator.Value) (evaluator.Value, error) {
	if err := exactly("flat", args, 1); err != nil {
		return nil, err
	}
	list, err := wantList("flat", args[0])
	if err != nil {
		return nil, err
	}
	var out []evaluator.Value
	for _, item := range list.Items {
		if inner, ok := item.(evaluator.List); ok {
			out = append(out, inner.Items...)
		} else {
			out = append(out, item)
		}
	}
	return evaluator.NewList(out), nil
}

// join list [sep] → string of display forms
func stdlibJoin(args []evaluator.Value) (evaluator.Value, error) {
	if len(args) != 1 && len(args) != 2 {
		return nil, evaluator.ArityError("join", "1 or 2 arguments", len(args))
	}
	list, err := wantList("join", args[0])
	if err != nil {
		return nil, err
	}
	sep := ""
	if len(args) == 2 {
		if sep, err = wantString("join", args[1]); err != nil {
			return nil, err
		}
	}
	parts := make([]string, len(list.Items))
	for i, item := range list.Items {
		parts[i] = evaluator.Display(item)
	}
	return evaluator.NewString(strings.Join(parts, sep)), nil
}
