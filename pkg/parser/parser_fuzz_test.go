package parser_test

import (
	"testing"

	"github.com/thomasrohde/biglisp/go/pkg/parser"
)

// FuzzParse feeds random inputs to the parser to catch panics.
// The parser should never panic; invalid input must come back as a ParseError.
func FuzzParse(f *testing.F) {
	seeds := []string{
		// Literals
		`42`,
		`-5`,
		`3.14`,
		`"hello\nworld"`,
		`true`,
		// Arithmetic
		`(+ 1 2 3 4 5)`,
		`(- 100 20 5 3)`,
		`(/ 120 3 2)`,
		`(- 5)`,
		// Conditionals
		`(if (> 5 3) "yes" "no")`,
		`(if true 1 (/ 1 0))`,
		// Let
		`(let [a 1 b (+ a 1)] b)`,
		`(let [a 1 b] a)`,
		`(let [] 1)`,
		`(let x 1)`,
		`(let [1 2] 3)`,
		// Vectors
		`[1 [2 [3]] (+ 1 2)]`,
		`(cons 0 [1 2 3])`,
		// Functions
		`(defn square [x] (* x x))`,
		`(do (defn sq [x] (* x x)) (call sq 5))`,
		// Loops and recovery
		`(dotimes i 3 (println i))`,
		`(try (/ 10 0) -1)`,
		// Invalid operators
		`(1 2 3)`,
		`((fn) 1)`,
		`([1] 2)`,
		`()`,
		// Structural errors
		`(+ 1 2`,
		`(+ 1 2))`,
		`[1 2)`,
		`(+ 1 2]`,
		`"unterminated`,
		``,
		`   `,
		`; only a comment`,
		`1 2`,
	}

	for _, s := range seeds {
		f.Add(s)
	}

	f.Fuzz(func(t *testing.T, input string) {
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Fatalf("parser.Parse panicked on input %q: %v", input, r)
				}
			}()
			parser.Parse(input, "fuzz.lisp")
			parser.ParseProgram(input, "fuzz.lisp")
		}()
	})
}
