// Package formatter implements the BigLisp source code formatter.
package formatter

import (
	"math"
	"strconv"
	"strings"

	"github.com/thomasrohde/biglisp/go/pkg/ast"
	"github.com/thomasrohde/biglisp/go/pkg/evaluator"
)

const (
	indent    = "  "
	lineWidth = 72
)

// bodyForms print their leading arguments on the opening line and the rest as
// an indented body when the form does not fit on one line.
var bodyForms = map[string]int{
	"defn":      2,
	"dotimes":   2,
	"while":     1,
	"with-vars": 1,
	"if":        1,
	"try":       0,
	"do":        0,
}

// Format pretty-prints a BigLisp AST back to source code. Comments are not
// preserved; use HasComments to detect sources that would lose them.
func Format(program *ast.Program) string {
	lines := make([]string, len(program.Exprs))
	for i, e := range program.Exprs {
		lines[i] = formatExpr(e, 0)
	}
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

// FormatExpr renders a single expression on as few lines as fit.
func FormatExpr(e ast.Expr) string {
	return formatExpr(e, 0)
}

// HasComments checks if a source string contains comments (; prefix).
func HasComments(source string) bool {
	inString := false
	escaped := false
	for i := 0; i < len(source); i++ {
		ch := source[i]
		switch {
		case escaped:
			escaped = false
		case inString && ch == '\\':
			escaped = true
		case ch == '"':
			inString = !inString
		case !inString && ch == ';':
			return true
		}
	}
	return false
}

func formatExpr(e ast.Expr, depth int) string {
	switch expr := e.(type) {
	case *ast.IntLiteral:
		return strconv.FormatInt(expr.Value, 10)
	case *ast.FloatLiteral:
		return formatFloatLiteral(expr.Value)
	case *ast.BoolLiteral:
		if expr.Value {
			return "true"
		}
		return "false"
	case *ast.StrLiteral:
		return evaluator.QuoteString(expr.Value)
	case *ast.Symbol:
		return expr.Name
	case *ast.VectorExpr:
		return formatVector(expr.Elements, depth)
	case *ast.LetExpr:
		return formatLet(expr, depth)
	case *ast.FormExpr:
		return formatForm(expr, depth)
	}
	return ""
}

func formatVector(elems []ast.Expr, depth int) string {
	if len(elems) == 0 {
		return "[]"
	}
	parts := make([]string, len(elems))
	for i, e := range elems {
		parts[i] = formatExpr(e, depth+1)
	}
	inline := "[" + strings.Join(parts, " ") + "]"
	if fits(inline, depth) {
		return inline
	}

	inner := "\n" + strings.Repeat(indent, depth+1)
	return "[" + strings.Join(parts, inner) + "]"
}

func formatLet(let *ast.LetExpr, depth int) string {
	pairs := make([]string, len(let.Bindings))
	for i, b := range let.Bindings {
		pairs[i] = b.Name + " " + formatExpr(b.Value, depth+2)
	}
	body := formatAll(let.Body, depth+1)

	inline := "(let [" + strings.Join(pairs, " ") + "]"
	if len(body) > 0 {
		inline += " " + strings.Join(body, " ")
	}
	inline += ")"
	if fits(inline, depth) {
		return inline
	}

	// one binding pair per line, aligned under the first
	pairSep := "\n" + strings.Repeat(indent, depth) + "      "
	out := "(let [" + strings.Join(pairs, pairSep) + "]"
	return out + formatBody(body, depth) + ")"
}

func formatForm(form *ast.FormExpr, depth int) string {
	args := formatAll(form.Args, depth+1)
	inline := "(" + form.Op
	if len(args) > 0 {
		inline += " " + strings.Join(args, " ")
	}
	inline += ")"
	if fits(inline, depth) {
		return inline
	}

	head := len(args)
	if n, ok := bodyForms[form.Op]; ok && n < head {
		head = n
	} else if !ok && head > 1 {
		// ordinary calls keep their first argument beside the operator
		head = 1
	}
	out := "(" + form.Op
	if head > 0 {
		out += " " + strings.Join(args[:head], " ")
	}
	return out + formatBody(args[head:], depth) + ")"
}

func formatAll(exprs []ast.Expr, depth int) []string {
	out := make([]string, len(exprs))
	for i, e := range exprs {
		out[i] = formatExpr(e, depth)
	}
	return out
}

func formatBody(lines []string, depth int) string {
	if len(lines) == 0 {
		return ""
	}
	prefix := "\n" + strings.Repeat(indent, depth+1)
	return prefix + strings.Join(lines, prefix)
}

func fits(s string, depth int) bool {
	return !strings.Contains(s, "\n") && len(s)+len(indent)*depth <= lineWidth
}

// formatFloatLiteral renders a float the way the reader accepts it:
// digits, a decimal point and digits, never scientific notation.
func formatFloatLiteral(value float64) string {
	if math.IsInf(value, 0) || math.IsNaN(value) {
		// not representable as a literal; emit an expression of the same value
		switch {
		case math.IsNaN(value):
			return "(/ 0.0 0.0)"
		case value > 0:
			return "(/ 1.0 0.0)"
		default:
			return "(/ -1.0 0.0)"
		}
	}

	raw := strconv.FormatFloat(value, 'g', -1, 64)
	if strings.ContainsAny(raw, "eE") {
		raw = expandScientificNotation(raw)
	}
	if !strings.Contains(raw, ".") {
		raw += ".0"
	}
	return raw
}

func expandScientificNotation(value string) string {
	lower := strings.ToLower(value)
	parts := strings.SplitN(lower, "e", 2)
	if len(parts) != 2 {
		return value
	}

	mantissa := parts[0]
	exponent, err := strconv.Atoi(parts[1])
	if err != nil {
		return value
	}

	sign := ""
	digits := mantissa
	if strings.HasPrefix(digits, "-") {
		sign = "-"
		digits = digits[1:]
	}

	intPart, fracPart, _ := strings.Cut(digits, ".")
	compact := intPart + fracPart
	decimalIndex := len(intPart) + exponent

	if decimalIndex <= 0 {
		return sign + "0." + strings.Repeat("0", -decimalIndex) + compact
	}
	if decimalIndex >= len(compact) {
		return sign + compact + strings.Repeat("0", decimalIndex-len(compact)) + ".0"
	}
	return sign + compact[:decimalIndex] + "." + compact[decimalIndex:]
}
