package evaluator

import (
	"fmt"

	"github.com/thomasrohde/biglisp/go/pkg/ast"
	"github.com/thomasrohde/biglisp/go/pkg/diagnostics"
)

// EvalError is a runtime error raised while evaluating an expression.
// Symbol names the offending symbol for E_UNBOUND and E_UNKNOWN_FORM.
type EvalError struct {
	Code    string
	Message string
	Symbol  string
	Span    *ast.Span
}

func (e *EvalError) Error() string {
	return e.Message
}

// ToDiagnostic converts the error into a diagnostic for display.
func (e *EvalError) ToDiagnostic() diagnostics.Diagnostic {
	return diagnostics.MakeDiag(e.Code, e.Message, e.Span, "")
}

// Errorf creates an EvalError without a span. The evaluator attaches the
// span of the enclosing form when the error surfaces from a builtin.
func Errorf(code, format string, args ...any) *EvalError {
	return &EvalError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// ArityError reports a wrong argument count for the named form.
func ArityError(name, want string, got int) *EvalError {
	return Errorf(diagnostics.EArity, "'%s' expects %s, got %d", name, want, got)
}

// TypeError reports an argument of the wrong type for the named form.
func TypeError(name, want string, got Value) *EvalError {
	return Errorf(diagnostics.EType, "'%s' expects %s, got %s", name, want, TypeName(got))
}

func errAt(code string, span ast.Span, format string, args ...any) *EvalError {
	return &EvalError{Code: code, Message: fmt.Sprintf(format, args...), Span: &span}
}

func arityAt(span ast.Span, name, want string, got int) *EvalError {
	err := ArityError(name, want, got)
	err.Span = &span
	return err
}

func typeAt(span ast.Span, name, want string, got Value) *EvalError {
	err := TypeError(name, want, got)
	err.Span = &span
	return err
}
