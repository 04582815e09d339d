package ast_test

import (
	"testing"

	"github.com/thomasrohde/biglisp/go/pkg/ast"
)

func TestNodeKinds(t *testing.T) {
	nodes := []ast.Node{
		&ast.IntLiteral{Value: 42},
		&ast.FloatLiteral{Value: 3.14},
		&ast.BoolLiteral{Value: true},
		&ast.StrLiteral{Value: "hello"},
		&ast.Symbol{Name: "x"},
		&ast.VectorExpr{},
		&ast.FormExpr{Op: "+"},
		&ast.LetExpr{},
		&ast.Binding{Name: "a"},
		&ast.Program{},
	}

	expected := []string{
		"IntLiteral", "FloatLiteral", "BoolLiteral", "StrLiteral",
		"Symbol", "VectorExpr", "FormExpr", "LetExpr", "Binding", "Program",
	}

	for i, node := range nodes {
		if got := node.Kind(); got != expected[i] {
			t.Errorf("node %d: got Kind() = %q, want %q", i, got, expected[i])
		}
	}
}

func TestSymbolName(t *testing.T) {
	if name, ok := ast.SymbolName(&ast.Symbol{Name: "xs"}); !ok || name != "xs" {
		t.Errorf("got (%q, %v), want (\"xs\", true)", name, ok)
	}
	if _, ok := ast.SymbolName(&ast.IntLiteral{Value: 1}); ok {
		t.Error("expected IntLiteral not to be a symbol")
	}
}
