package stdlib

// RegisterDefaults adds all supplementary builtins.
func RegisterDefaults(r *Registry) {
	// Math
	r.Register(Fn{Name: "min", Execute: stdlibMin})
	r.Register(Fn{Name: "max", Execute: stdlibMax})
	r.Register(Fn{Name: "abs", Execute: stdlibAbs})
	r.Register(Fn{Name: "inc", Execute: stdlibInc})
	r.Register(Fn{Name: "dec", Execute: stdlibDec})

	// Predicates
	r.Register(Fn{Name: "zero", Execute: numberPredicate("zero", func(f float64) bool { return f == 0 })})
	r.Register(Fn{Name: "pos", Execute: numberPredicate("pos", func(f float64) bool { return f > 0 })})
	r.Register(Fn{Name: "neg", Execute: numberPredicate("neg", func(f float64) bool { return f < 0 })})
	r.Register(Fn{Name: "even", Execute: intPredicate("even", func(n int64) bool { return n%2 == 0 })})
	r.Register(Fn{Name: "odd", Execute: intPredicate("odd", func(n int64) bool { return n%2 != 0 })})
	r.Register(Fn{Name: "empty", Execute: stdlibEmpty})
	r.Register(Fn{Name: "contains", Execute: stdlibContains})
	r.Register(Fn{Name: "typeof", Execute: stdlibTypeof})

	// List ops
	r.Register(Fn{Name: "append", Execute: stdlibAppend})
	r.Register(Fn{Name: "concat", Execute: stdlibConcat})
	r.Register(Fn{Name: "nth", Execute: stdlibNth})
	r.Register(Fn{Name: "reverse", Execute: stdlibReverse})
	r.Register(Fn{Name: "sort", Execute: stdlibSort})
	r.Register(Fn{Name: "range", Execute: stdlibRange})
	r.Register(Fn{Name: "unique", Execute: stdlibUnique})
	r.Register(Fn{Name: "flat", Execute: stdlibFlat})
	r.Register(Fn{Name: "join", Execute: stdlibJoin})

	// String ops
	r.Register(Fn{Name: "split", Execute: stdlibSplit})
	r.Register(Fn{Name: "starts-with", Execute: stdlibStartsWith})
	r.Register(Fn{Name: "ends-with", Execute: stdlibEndsWith})
	r.Register(Fn{Name: "replace", Execute: stdlibReplace})
	r.Register(Fn{Name: "upper", Execute: stdlibUpper})
	r.Register(Fn{Name: "lower", Execute: stdlibLower})
	r.Register(Fn{Name: "trim", Execute: stdlibTrim})

	// JSON
	r.Register(Fn{Name: "parse-json", Execute: stdlibParseJSON})
	r.Register(Fn{Name: "to-json", Execute: stdlibToJSON})
}
