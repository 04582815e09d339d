package diagnostics_test

import (
	"strings"
	"testing"

	"github.com/thomasrohde/biglisp/go/pkg/ast"
	"github.com/thomasrohde/biglisp/go/pkg/diagnostics"
)

func TestMakeDiag(t *testing.T) {
	span := &ast.Span{File: "test.lisp", StartLine: 1, StartCol: 1, EndLine: 1, EndCol: 5}
	d := diagnostics.MakeDiag(diagnostics.EUnbalanced, "unclosed '('", span, "add ')'")

	if d.Code != diagnostics.EUnbalanced {
		t.Errorf("got Code = %q, want %q", d.Code, diagnostics.EUnbalanced)
	}
	if d.Message != "unclosed '('" {
		t.Errorf("got Message = %q, want %q", d.Message, "unclosed '('")
	}
}

func TestFormatDiagnosticPretty(t *testing.T) {
	span := &ast.Span{File: "test.lisp", StartLine: 3, StartCol: 5, EndLine: 3, EndCol: 10}
	d := diagnostics.MakeDiag(diagnostics.EUnbound, "unbound symbol 'x'", span, "bind it with let")

	out := diagnostics.FormatDiagnostic(d, true)
	if !strings.Contains(out, "error[E_UNBOUND]") {
		t.Errorf("expected error code in output, got: %s", out)
	}
	if !strings.Contains(out, "test.lisp:3:5") {
		t.Errorf("expected location in output, got: %s", out)
	}
	if !strings.Contains(out, "hint:") {
		t.Errorf("expected hint in output, got: %s", out)
	}
}

func TestFormatDiagnosticJSON(t *testing.T) {
	d := diagnostics.MakeDiag(diagnostics.EUnexpectedToken, "bad token", nil, "")
	out := diagnostics.FormatDiagnostic(d, false)
	if !strings.Contains(out, `"code":"E_UNEXPECTED_TOKEN"`) {
		t.Errorf("expected JSON code in output, got: %s", out)
	}
}

func TestIsParseCode(t *testing.T) {
	for _, code := range []string{diagnostics.EUnbalanced, diagnostics.EInvalidOperator, diagnostics.EMalformedBindings, diagnostics.EUnexpectedToken} {
		if !diagnostics.IsParseCode(code) {
			t.Errorf("expected %s to be a parse code", code)
		}
	}
	for _, code := range []string{diagnostics.EUnbound, diagnostics.EType, diagnostics.EDivZero, diagnostics.EBudget} {
		if diagnostics.IsParseCode(code) {
			t.Errorf("expected %s not to be a parse code", code)
		}
	}
}
