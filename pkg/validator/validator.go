// Package validator implements static checks of BigLisp programs.
// It never evaluates.
package validator

import (
	"fmt"

	"github.com/thomasrohde/biglisp/go/pkg/ast"
	"github.com/thomasrohde/biglisp/go/pkg/diagnostics"
	"github.com/thomasrohde/biglisp/go/pkg/evaluator"
)

// arity bounds for core forms; max < 0 means unbounded.
type arity struct {
	min, max int
	want     string
}

var formArity = map[string]arity{
	"-":         {1, -1, "at least 1 argument"},
	"/":         {1, -1, "at least 1 argument"},
	"%":         {2, 2, "2 arguments"},
	"modulo":    {2, 2, "2 arguments"},
	"=":         {1, -1, "at least 1 argument"},
	"eq":        {1, -1, "at least 1 argument"},
	"<":         {1, -1, "at least 1 argument"},
	">":         {1, -1, "at least 1 argument"},
	"gte":       {1, -1, "at least 1 argument"},
	"lte":       {1, -1, "at least 1 argument"},
	"ne":        {1, -1, "at least 1 argument"},
	"not":       {1, 1, "1 argument"},
	"if":        {2, 3, "2 or 3 arguments"},
	"defn":      {3, -1, "a name, a parameter vector and a body"},
	"call":      {1, -1, "a function and its arguments"},
	"first":     {1, 1, "1 argument"},
	"rest":      {1, 1, "1 argument"},
	"count":     {1, 1, "1 argument"},
	"cons":      {2, 2, "2 arguments"},
	"try":       {1, 2, "1 or 2 arguments"},
	"dotimes":   {2, -1, "a counter symbol, a count and a body"},
	"while":     {1, -1, "a condition and a body"},
	"with-vars": {1, -1, "a variable vector and a body"},
}

// Options supplies the names bound outside the program.
type Options struct {
	// Globals are host binding names.
	Globals []string
	// Builtins reports whether a name is a registered builtin. When nil,
	// unknown operators are not reported.
	Builtins func(name string) bool
}

type scope struct {
	bindings map[string]bool
	parent   *scope
}

func newScope(parent *scope) *scope {
	return &scope{bindings: make(map[string]bool), parent: parent}
}

func (s *scope) has(name string) bool {
	if s.bindings[name] {
		return true
	}
	if s.parent != nil {
		return s.parent.has(name)
	}
	return false
}

func (s *scope) add(name string) {
	s.bindings[name] = true
}

type validator struct {
	diags    []diagnostics.Diagnostic
	opts     Options
	tryDepth int // inside the body of a try, recoverable errors are not reported
}

// Validate checks a program with no host bindings.
func Validate(program *ast.Program) []diagnostics.Diagnostic {
	return ValidateWith(program, Options{})
}

// ValidateWith checks a program and returns diagnostics in source order.
func ValidateWith(program *ast.Program, opts Options) []diagnostics.Diagnostic {
	v := &validator{opts: opts}

	host := newScope(nil)
	for _, name := range opts.Globals {
		host.add(name)
	}
	v.validateBody(program.Exprs, newScope(host))

	return v.diags
}

func (v *validator) addDiag(code, msg string, span ast.Span) {
	if v.tryDepth > 0 && code != diagnostics.EDupBinding {
		return
	}
	v.diags = append(v.diags, diagnostics.MakeDiag(code, msg, &span, ""))
}

// validateBody checks a sequence of expressions sharing one scope. Function
// names defined anywhere in the sequence are visible throughout it, so that
// functions may call each other regardless of definition order.
func (v *validator) validateBody(exprs []ast.Expr, sc *scope) {
	for _, expr := range exprs {
		if form, ok := expr.(*ast.FormExpr); ok && form.Op == "defn" && len(form.Args) > 0 {
			if name, ok := ast.SymbolName(form.Args[0]); ok {
				sc.add(name)
			}
		}
	}
	for _, expr := range exprs {
		v.validateExpr(expr, sc)
	}
}

func (v *validator) validateAll(exprs []ast.Expr, sc *scope) {
	for _, expr := range exprs {
		v.validateExpr(expr, sc)
	}
}

func (v *validator) validateExpr(expr ast.Expr, sc *scope) {
	switch e := expr.(type) {
	case *ast.IntLiteral, *ast.FloatLiteral, *ast.BoolLiteral, *ast.StrLiteral:
		// literals are always valid

	case *ast.Symbol:
		if !sc.has(e.Name) {
			v.addDiag(diagnostics.EUnbound, fmt.Sprintf("unbound symbol '%s'", e.Name), e.Span)
		}

	case *ast.VectorExpr:
		v.validateAll(e.Elements, sc)

	case *ast.LetExpr:
		letScope := newScope(sc)
		seen := make(map[string]bool, len(e.Bindings))
		for _, b := range e.Bindings {
			if seen[b.Name] {
				v.addDiag(diagnostics.EDupBinding, fmt.Sprintf("duplicate binding '%s' in let", b.Name), b.Span)
			}
			seen[b.Name] = true
			v.validateExpr(b.Value, letScope)
			letScope.add(b.Name)
		}
		v.validateBody(e.Body, letScope)

	case *ast.FormExpr:
		v.validateForm(e, sc)
	}
}

func (v *validator) validateForm(e *ast.FormExpr, sc *scope) {
	if a, ok := formArity[e.Op]; ok {
		n := len(e.Args)
		if n < a.min || (a.max >= 0 && n > a.max) {
			v.addDiag(diagnostics.EArity, fmt.Sprintf("'%s' expects %s, got %d", e.Op, a.want, n), e.Span)
			return
		}
	}

	switch e.Op {
	case "defn":
		v.validateDefn(e, sc)

	case "do":
		v.validateBody(e.Args, sc)

	case "try":
		v.tryDepth++
		v.validateExpr(e.Args[0], sc)
		v.tryDepth--
		v.validateAll(e.Args[1:], sc)

	case "dotimes":
		if _, ok := ast.SymbolName(e.Args[0]); !ok {
			v.addDiag(diagnostics.EType, fmt.Sprintf("dotimes counter must be a symbol, got %s", e.Args[0].Kind()), e.Args[0].NodeSpan())
			return
		}
		v.validateExpr(e.Args[1], sc)
		loopScope := newScope(sc)
		loopScope.add(e.Args[0].(*ast.Symbol).Name)
		v.validateBody(e.Args[2:], loopScope)

	case "with-vars":
		names, ok := v.symbolVector("with-vars variables", e.Args[0])
		if !ok {
			return
		}
		capScope := newScope(sc)
		for _, name := range names {
			if !sc.has(name) {
				v.addDiag(diagnostics.EUnbound, fmt.Sprintf("captured variable '%s' is not bound", name), e.Args[0].NodeSpan())
			}
			capScope.add(name)
		}
		v.validateBody(e.Args[1:], capScope)

	case "/", "%", "modulo":
		v.validateAll(e.Args, sc)
		divisors := e.Args[1:]
		if len(e.Args) == 1 {
			divisors = e.Args
		}
		for _, d := range divisors {
			if isZeroLiteral(d) {
				v.addDiag(diagnostics.EDivZero, "division by a literal zero", d.NodeSpan())
			}
		}

	default:
		if !evaluator.IsCoreForm(e.Op) && !sc.has(e.Op) && v.opts.Builtins != nil && !v.opts.Builtins(e.Op) {
			v.addDiag(diagnostics.EUnknownForm, fmt.Sprintf("unknown form '%s'", e.Op), e.OpSpan)
		}
		v.validateAll(e.Args, sc)
	}
}

func (v *validator) validateDefn(e *ast.FormExpr, sc *scope) {
	name, ok := ast.SymbolName(e.Args[0])
	if !ok {
		v.addDiag(diagnostics.EType, fmt.Sprintf("defn name must be a symbol, got %s", e.Args[0].Kind()), e.Args[0].NodeSpan())
		return
	}
	if evaluator.IsCoreForm(name) {
		v.addDiag(diagnostics.EType, fmt.Sprintf("cannot redefine core form '%s'", name), e.Args[0].NodeSpan())
		return
	}
	sc.add(name)

	params, ok := v.symbolVector("defn parameters", e.Args[1])
	if !ok {
		return
	}
	fnScope := newScope(sc)
	for _, p := range params {
		if fnScope.bindings[p] {
			v.addDiag(diagnostics.EType, fmt.Sprintf("duplicate parameter '%s' in function '%s'", p, name), e.Args[1].NodeSpan())
		}
		fnScope.add(p)
	}
	v.validateBody(e.Args[2:], fnScope)
}

func (v *validator) symbolVector(what string, expr ast.Expr) ([]string, bool) {
	vec, ok := expr.(*ast.VectorExpr)
	if !ok {
		v.addDiag(diagnostics.EType, fmt.Sprintf("%s must be a vector of symbols, got %s", what, expr.Kind()), expr.NodeSpan())
		return nil, false
	}
	names := make([]string, 0, len(vec.Elements))
	for _, elem := range vec.Elements {
		name, ok := ast.SymbolName(elem)
		if !ok {
			v.addDiag(diagnostics.EType, fmt.Sprintf("%s must be symbols, got %s", what, elem.Kind()), elem.NodeSpan())
			return nil, false
		}
		names = append(names, name)
	}
	return names, true
}

func isZeroLiteral(expr ast.Expr) bool {
	switch lit := expr.(type) {
	case *ast.IntLiteral:
		return lit.Value == 0
	case *ast.FloatLiteral:
		return lit.Value == 0
	}
	return false
}
