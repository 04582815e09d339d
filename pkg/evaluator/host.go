package evaluator

import (
	"fmt"
	"math"
	"reflect"
)

// FromGo converts a host Go value into a Value for use as a binding.
// Supported: nil, bool, signed and unsigned integers up to MaxInt64,
// float32/64, string, slices and arrays of supported values, and Value.
func FromGo(v any) (Value, error) {
	switch val := v.(type) {
	case nil:
		return Unit{}, nil
	case Value:
		return val, nil
	case bool:
		return Bool{Value: val}, nil
	case string:
		return String{Value: val}, nil
	case int:
		return Int{Value: int64(val)}, nil
	case int8:
		return Int{Value: int64(val)}, nil
	case int16:
		return Int{Value: int64(val)}, nil
	case int32:
		return Int{Value: int64(val)}, nil
	case int64:
		return Int{Value: val}, nil
	case uint:
		return fromUint(uint64(val))
	case uint8:
		return Int{Value: int64(val)}, nil
	case uint16:
		return Int{Value: int64(val)}, nil
	case uint32:
		return Int{Value: int64(val)}, nil
	case uint64:
		return fromUint(val)
	case float32:
		return Float{Value: float64(val)}, nil
	case float64:
		return Float{Value: val}, nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		items := make([]Value, rv.Len())
		for i := range items {
			item, err := FromGo(rv.Index(i).Interface())
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			items[i] = item
		}
		return NewList(items), nil
	}

	return nil, fmt.Errorf("unsupported host value of type %T", v)
}

func fromUint(u uint64) (Value, error) {
	if u > math.MaxInt64 {
		return nil, fmt.Errorf("unsigned value %d overflows int64", u)
	}
	return Int{Value: int64(u)}, nil
}

// Bindings converts a map of host values with FromGo.
func Bindings(vars map[string]any) (map[string]Value, error) {
	out := make(map[string]Value, len(vars))
	for name, v := range vars {
		val, err := FromGo(v)
		if err != nil {
			return nil, fmt.Errorf("binding '%s': %w", name, err)
		}
		out[name] = val
	}
	return out, nil
}
