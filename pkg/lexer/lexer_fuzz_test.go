package lexer

import (
	"testing"
)

// FuzzTokenize feeds random inputs to the lexer to catch panics.
// The lexer should never panic; invalid input must come back as an error.
func FuzzTokenize(f *testing.F) {
	seeds := []string{
		// Delimiters
		`()[]`,
		`((([[[`,
		`)]`,
		// Literals
		`42 -5 3.14 -0.5 007`,
		`true false`,
		`"hello" "with\nescape" "quote\""`,
		// Symbols
		`+ - * / = < > gte lte ne`,
		`with-vars dotimes 1.2.3 12abc`,
		// Comments
		`; this is a comment`,
		"(+ 1 2) ; trailing\n",
		// Mixed
		`(let [x 5 y (+ x 1)] (str "y=" y))`,
		`(defn sq [x] (* x x))`,
		// Edge cases
		``,
		`   `,
		"\t\n\r,",
		`"unterminated`,
		`"\`,
		`"\q"`,
		`"""`,
		"\x00",
		"\"\xff\"",
		`99999999999999999999`,
		`-`,
		`-.`,
	}

	for _, s := range seeds {
		f.Add(s)
	}

	f.Fuzz(func(t *testing.T, input string) {
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Fatalf("Tokenize panicked on input %q: %v", input, r)
				}
			}()
			Tokenize(input, "fuzz.lisp")
		}()
	})
}
