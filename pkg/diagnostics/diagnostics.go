// Package diagnostics defines BigLisp diagnostic types for parse, validation and runtime errors.
package diagnostics

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/thomasrohde/biglisp/go/pkg/ast"
)

// Parse error codes.
const (
	EUnbalanced        = "E_UNBALANCED_DELIMITER"
	EInvalidOperator   = "E_INVALID_OPERATOR"
	EMalformedBindings = "E_MALFORMED_BINDINGS"
	EUnexpectedToken   = "E_UNEXPECTED_TOKEN"
)

// Evaluation error codes.
const (
	EUnbound        = "E_UNBOUND"
	EType           = "E_TYPE"
	EDivZero        = "E_DIV_ZERO"
	EArity          = "E_ARITY"
	EEmptyList      = "E_EMPTY_LIST"
	ERecursionLimit = "E_RECURSION_LIMIT"
	EUnknownForm    = "E_UNKNOWN_FORM"
	EBudget         = "E_BUDGET"
)

// Validation and tooling codes.
const (
	EDupBinding = "E_DUP_BINDING"
	EIO         = "E_IO"
	EConfig     = "E_CONFIG"
)

var parseCodes = map[string]bool{
	EUnbalanced:        true,
	EInvalidOperator:   true,
	EMalformedBindings: true,
	EUnexpectedToken:   true,
}

// IsParseCode reports whether code belongs to the parse error taxonomy.
func IsParseCode(code string) bool {
	return parseCodes[code]
}

// Diagnostic represents a parse, validation, or runtime diagnostic.
type Diagnostic struct {
	Code    string    `json:"code"`
	Message string    `json:"message"`
	Span    *ast.Span `json:"span,omitempty"`
	Hint    string    `json:"hint,omitempty"`
}

// MakeDiag creates a new Diagnostic.
func MakeDiag(code, message string, span *ast.Span, hint string) Diagnostic {
	return Diagnostic{
		Code:    code,
		Message: message,
		Span:    span,
		Hint:    hint,
	}
}

// FormatDiagnostic formats a single diagnostic for display.
func FormatDiagnostic(d Diagnostic, pretty bool) string {
	if !pretty {
		b, _ := json.Marshal(d)
		return string(b)
	}
	loc := "<unknown>"
	if d.Span != nil {
		loc = fmt.Sprintf("%s:%d:%d", d.Span.File, d.Span.StartLine, d.Span.StartCol)
	}
	out := fmt.Sprintf("error[%s]: %s\n  --> %s", d.Code, d.Message, loc)
	if d.Hint != "" {
		out += fmt.Sprintf("\n  hint: %s", d.Hint)
	}
	return out
}

// FormatDiagnostics formats a slice of diagnostics for display.
func FormatDiagnostics(diags []Diagnostic, pretty bool) string {
	if !pretty {
		b, _ := json.Marshal(diags)
		return string(b)
	}
	parts := make([]string, len(diags))
	for i, d := range diags {
		parts[i] = FormatDiagnostic(d, true)
	}
	return strings.Join(parts, "\n\n")
}
