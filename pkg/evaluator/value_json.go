package evaluator

import (
	"encoding/json"
	"fmt"
	"math"
)

// ValueToJSON marshals a Value to JSON bytes. Unit becomes null and
// functions become their display form.
func ValueToJSON(v Value) ([]byte, error) {
	raw, err := valueToRaw(v)
	if err != nil {
		return nil, err
	}
	return json.Marshal(raw)
}

func valueToRaw(v Value) (any, error) {
	if v == nil {
		return nil, nil
	}

	switch val := v.(type) {
	case Unit:
		return nil, nil

	case Bool:
		return val.Value, nil

	case Int:
		return val.Value, nil

	case Float:
		if math.IsInf(val.Value, 0) || math.IsNaN(val.Value) {
			return nil, fmt.Errorf("cannot encode %s as JSON", formatFloat(val.Value))
		}
		return val.Value, nil

	case String:
		return val.Value, nil

	case List:
		items := make([]any, len(val.Items))
		for i, item := range val.Items {
			raw, err := valueToRaw(item)
			if err != nil {
				return nil, err
			}
			items[i] = raw
		}
		return items, nil

	case *Function:
		return Display(val), nil
	}

	return nil, fmt.Errorf("cannot encode %T as JSON", v)
}

// ValueToJSONString is a convenience that returns a string.
func ValueToJSONString(v Value) string {
	b, err := ValueToJSON(v)
	if err != nil {
		return "null"
	}
	return string(b)
}
