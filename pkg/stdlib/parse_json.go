package stdlib

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"

	"github.com/thomasrohde/biglisp/go/pkg/diagnostics"
	"github.com/thomasrohde/biglisp/go/pkg/evaluator"
)

// parse-json string → value
// Arrays become lists and whole numbers become integers. Objects have no
// BigLisp counterpart and are rejected.
func stdlibParseJSON(args []evaluator.Value) (evaluator.Value, error) {
	if err := exactly("parse-json", args, 1); err != nil {
		return nil, err
	}
	in, err := wantString("parse-json", args[0])
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(in)))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, evaluator.Errorf(diagnostics.EType, "parse-json: %s", err.Error())
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, evaluator.Errorf(diagnostics.EType, "parse-json: trailing data after JSON value")
	}
	return anyToValue(raw)
}

func anyToValue(v any) (evaluator.Value, error) {
	switch val := v.(type) {
	case nil:
		return evaluator.NewUnit(), nil
	case bool:
		return evaluator.NewBool(val), nil
	case string:
		return evaluator.NewString(val), nil
	case json.Number:
		if n, err := val.Int64(); err == nil {
			return evaluator.NewInt(n), nil
		}
		f, err := val.Float64()
		if err != nil {
			return nil, evaluator.Errorf(diagnostics.EType, "parse-json: invalid number %s", val.String())
		}
		return evaluator.NewFloat(f), nil
	case []any:
		items := make([]evaluator.Value, len(val))
		for i, item := range val {
			converted, err := anyToValue(item)
			if err != nil {
				return nil, err
			}
			items[i] = converted
		}
		return evaluator.NewList(items), nil
	}
	return nil, evaluator.Errorf(diagnostics.EType, "parse-json: JSON objects are not supported")
}

// to-json value → string
func stdlibToJSON(args []evaluator.Value) (evaluator.Value, error) {
	if err := exactly("to-json", args, 1); err != nil {
		return nil, err
	}
	b, err := evaluator.ValueToJSON(args[0])
	if err != nil {
		return nil, evaluator.Errorf(diagnostics.EType, "to-json: %s", err.Error())
	}
	return evaluator.NewString(string(b)), nil
}
