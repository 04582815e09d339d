// Package ast defines the BigLisp AST node types.
package ast

// Span represents a source location range.
type Span struct {
	File      string `json:"file"`
	StartLine int    `json:"startLine"`
	StartCol  int    `json:"startCol"`
	EndLine   int    `json:"endLine"`
	EndCol    int    `json:"endCol"`
}

// Node is the interface implemented by all AST nodes.
type Node interface {
	Kind() string
	NodeSpan() Span
}

// Expr is the interface for all expression nodes.
type Expr interface {
	Node
	exprNode() // sealed marker
}

// --- Literal Expressions ---

type IntLiteral struct {
	Span  Span
	Value int64
}

func (n *IntLiteral) Kind() string   { return "IntLiteral" }
func (n *IntLiteral) NodeSpan() Span { return n.Span }
func (n *IntLiteral) exprNode()      {}

type FloatLiteral struct {
	Span  Span
	Value float64
}

func (n *FloatLiteral) Kind() string   { return "FloatLiteral" }
func (n *FloatLiteral) NodeSpan() Span { return n.Span }
func (n *FloatLiteral) exprNode()      {}

type BoolLiteral struct {
	Span  Span
	Value bool
}

func (n *BoolLiteral) Kind() string   { return "BoolLiteral" }
func (n *BoolLiteral) NodeSpan() Span { return n.Span }
func (n *BoolLiteral) exprNode()      {}

type StrLiteral struct {
	Span  Span
	Value string
}

func (n *StrLiteral) Kind() string   { return "StrLiteral" }
func (n *StrLiteral) NodeSpan() Span { return n.Span }
func (n *StrLiteral) exprNode()      {}

// --- Identifiers ---

// Symbol is an identifier resolved against the lexical environment at evaluation time.
type Symbol struct {
	Span Span
	Name string
}

func (n *Symbol) Kind() string   { return "Symbol" }
func (n *Symbol) NodeSpan() Span { return n.Span }
func (n *Symbol) exprNode()      {}

// --- Collections ---

// VectorExpr is a bracketed literal: [a b c].
type VectorExpr struct {
	Span     Span
	Elements []Expr
}

func (n *VectorExpr) Kind() string   { return "VectorExpr" }
func (n *VectorExpr) NodeSpan() Span { return n.Span }
func (n *VectorExpr) exprNode()      {}

// --- Forms ---

// FormExpr is a parenthesised form whose operator is a symbol.
// Every form except let is represented this way; the evaluator dispatches on Op.
type FormExpr struct {
	Span   Span
	Op     string
	OpSpan Span
	Args   []Expr
}

func (n *FormExpr) Kind() string   { return "FormExpr" }
func (n *FormExpr) NodeSpan() Span { return n.Span }
func (n *FormExpr) exprNode()      {}

// Binding is one name/expression pair of a let binding vector.
type Binding struct {
	Span  Span
	Name  string
	Value Expr
}

func (n *Binding) Kind() string   { return "Binding" }
func (n *Binding) NodeSpan() Span { return n.Span }

// LetExpr is (let [name expr ...] body...).
type LetExpr struct {
	Span     Span
	Bindings []*Binding
	Body     []Expr
}

func (n *LetExpr) Kind() string   { return "LetExpr" }
func (n *LetExpr) NodeSpan() Span { return n.Span }
func (n *LetExpr) exprNode()      {}

// --- Program ---

// Program is a sequence of top-level expressions, as read from a file or a REPL entry.
type Program struct {
	Span  Span
	Exprs []Expr
}

func (n *Program) Kind() string   { return "Program" }
func (n *Program) NodeSpan() Span { return n.Span }

// SymbolName returns the name of e when it is a Symbol.
func SymbolName(e Expr) (string, bool) {
	if s, ok := e.(*Symbol); ok {
		return s.Name, true
	}
	return "", false
}
