// Package parser implements the BigLisp reader: a recursive-descent parser
// from s-expression text to the AST.
package parser

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/thomasrohde/biglisp/go/pkg/ast"
	"github.com/thomasrohde/biglisp/go/pkg/diagnostics"
	"github.com/thomasrohde/biglisp/go/pkg/lexer"
)

// MaxNesting bounds how deeply forms and vectors may nest.
const MaxNesting = 10000

// ParseError is a structural error found while reading source text.
// Code is one of the diagnostics parse codes.
type ParseError struct {
	Code    string
	Message string
	Span    *ast.Span

	atEOF bool // input ended inside an open form, vector or string
}

func (e *ParseError) Error() string {
	if e.Span != nil {
		return fmt.Sprintf("%d:%d: %s", e.Span.StartLine, e.Span.StartCol, e.Message)
	}
	return e.Message
}

// Diagnostic converts the error into a diagnostic for display.
func (e *ParseError) Diagnostic() diagnostics.Diagnostic {
	return diagnostics.MakeDiag(e.Code, e.Message, e.Span, "")
}

type parser struct {
	tokens []lexer.Token
	pos    int
	depth  int
}

// Parse reads exactly one expression from source.
func Parse(source, filename string) (ast.Expr, error) {
	p, err := newParser(source, filename)
	if err != nil {
		return nil, err
	}
	if p.peek() == lexer.TokEOF {
		return nil, p.errorAt(diagnostics.EUnexpectedToken, "expected an expression, got end of input", p.current().Span)
	}
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.peek() != lexer.TokEOF {
		tok := p.current()
		if tok.Type == lexer.TokRParen || tok.Type == lexer.TokRBracket {
			return nil, p.errorAt(diagnostics.EUnbalanced, fmt.Sprintf("unmatched %s", tok.Type), tok.Span)
		}
		return nil, p.errorAt(diagnostics.EUnexpectedToken,
			fmt.Sprintf("unexpected %s '%s' after expression", tok.Type, tok.Value), tok.Span)
	}
	return expr, nil
}

// ParseProgram reads zero or more top-level expressions from source.
func ParseProgram(source, filename string) (*ast.Program, error) {
	p, err := newParser(source, filename)
	if err != nil {
		return nil, err
	}
	start := p.current().Span
	var exprs []ast.Expr
	for p.peek() != lexer.TokEOF {
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, expr)
	}
	return &ast.Program{
		Span:  spanFromTo(start, p.current().Span),
		Exprs: exprs,
	}, nil
}

// IsIncomplete reports whether err means the input ended inside an open form,
// vector or string, so that more input could complete it.
func IsIncomplete(err error) bool {
	var pe *ParseError
	if !errors.As(err, &pe) {
		return false
	}
	return pe.atEOF
}

func newParser(source, filename string) (*parser, error) {
	tokens, err := lexer.Tokenize(source, filename)
	if err != nil {
		var le *lexer.LexError
		if errors.As(err, &le) {
			// the lexer only reports unbalanced input for an unterminated string
			return nil, &ParseError{
				Code:    le.Diag.Code,
				Message: le.Diag.Message,
				Span:    le.Diag.Span,
				atEOF:   le.Diag.Code == diagnostics.EUnbalanced,
			}
		}
		return nil, &ParseError{Code: diagnostics.EUnexpectedToken, Message: err.Error()}
	}
	return &parser{tokens: tokens}, nil
}

func (p *parser) current() lexer.Token {
	if p.pos >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1] // EOF
	}
	return p.tokens[p.pos]
}

func (p *parser) peek() lexer.TokenType {
	return p.current().Type
}

func (p *parser) advance() lexer.Token {
	tok := p.current()
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return tok
}

func (p *parser) errorAt(code, msg string, span ast.Span) error {
	return &ParseError{Code: code, Message: msg, Span: &span}
}

func spanFromTo(start, end ast.Span) ast.Span {
	return ast.Span{
		File:      start.File,
		StartLine: start.StartLine,
		StartCol:  start.StartCol,
		EndLine:   end.EndLine,
		EndCol:    end.EndCol,
	}
}

// --- Expressions ---

func (p *parser) parseExpr() (ast.Expr, error) {
	tok := p.current()

	switch tok.Type {
	case lexer.TokIntLit:
		p.advance()
		v, err := strconv.ParseInt(tok.Value, 10, 64)
		if err != nil {
			return nil, p.errorAt(diagnostics.EUnexpectedToken, fmt.Sprintf("invalid integer literal '%s'", tok.Value), tok.Span)
		}
		return &ast.IntLiteral{Span: tok.Span, Value: v}, nil

	case lexer.TokFloatLit:
		p.advance()
		v, err := strconv.ParseFloat(tok.Value, 64)
		if err != nil {
			return nil, p.errorAt(diagnostics.EUnexpectedToken, fmt.Sprintf("invalid float literal '%s'", tok.Value), tok.Span)
		}
		return &ast.FloatLiteral{Span: tok.Span, Value: v}, nil

	case lexer.TokStringLit:
		p.advance()
		return &ast.StrLiteral{Span: tok.Span, Value: tok.Value}, nil

	case lexer.TokTrue, lexer.TokFalse:
		p.advance()
		return &ast.BoolLiteral{Span: tok.Span, Value: tok.Type == lexer.TokTrue}, nil

	case lexer.TokSymbol:
		p.advance()
		return &ast.Symbol{Span: tok.Span, Name: tok.Value}, nil

	case lexer.TokLBracket:
		return p.parseVector()

	case lexer.TokLParen:
		return p.parseForm()

	case lexer.TokRParen, lexer.TokRBracket:
		return nil, p.errorAt(diagnostics.EUnbalanced, fmt.Sprintf("unmatched %s", tok.Type), tok.Span)

	default:
		return nil, p.errorAt(diagnostics.EUnexpectedToken, "unexpected end of input", tok.Span)
	}
}

// parseElements parses expressions up to the closing delimiter and consumes it.
func (p *parser) parseElements(open lexer.Token, closer lexer.TokenType) ([]ast.Expr, lexer.Token, error) {
	var elems []ast.Expr
	for {
		tok := p.current()
		switch tok.Type {
		case closer:
			p.advance()
			return elems, tok, nil
		case lexer.TokEOF:
			span := open.Span
			return nil, tok, &ParseError{
				Code:    diagnostics.EUnbalanced,
				Message: fmt.Sprintf("unclosed %s opened at %d:%d", open.Type, open.Span.StartLine, open.Span.StartCol),
				Span:    &span,
				atEOF:   true,
			}
		case lexer.TokRParen, lexer.TokRBracket:
			return nil, tok, p.errorAt(diagnostics.EUnbalanced,
				fmt.Sprintf("mismatched %s, expected %s to close %s opened at %d:%d",
					tok.Type, closer, open.Type, open.Span.StartLine, open.Span.StartCol), tok.Span)
		}
		elem, err := p.parseExpr()
		if err != nil {
			return nil, tok, err
		}
		elems = append(elems, elem)
	}
}

func (p *parser) enter(tok lexer.Token) error {
	p.depth++
	if p.depth > MaxNesting {
		return p.errorAt(diagnostics.EUnexpectedToken, fmt.Sprintf("nesting deeper than %d levels", MaxNesting), tok.Span)
	}
	return nil
}

func (p *parser) parseVector() (ast.Expr, error) {
	open := p.advance() // consume '['
	if err := p.enter(open); err != nil {
		return nil, err
	}
	defer func() { p.depth-- }()

	elems, closeTok, err := p.parseElements(open, lexer.TokRBracket)
	if err != nil {
		return nil, err
	}
	return &ast.VectorExpr{
		Span:     spanFromTo(open.Span, closeTok.Span),
		Elements: elems,
	}, nil
}

func (p *parser) parseForm() (ast.Expr, error) {
	open := p.advance() // consume '('
	if err := p.enter(open); err != nil {
		return nil, err
	}
	defer func() { p.depth-- }()

	opTok := p.current()
	switch opTok.Type {
	case lexer.TokSymbol:
		p.advance()
	case lexer.TokRParen:
		return nil, p.errorAt(diagnostics.EInvalidOperator, "empty form has no operator", spanFromTo(open.Span, opTok.Span))
	case lexer.TokEOF, lexer.TokRBracket:
		// let parseElements report the structural problem
		_, _, err := p.parseElements(open, lexer.TokRParen)
		return nil, err
	default:
		return nil, p.errorAt(diagnostics.EInvalidOperator,
			fmt.Sprintf("form operator must be a symbol, got %s", opTok.Type), opTok.Span)
	}

	args, closeTok, err := p.parseElements(open, lexer.TokRParen)
	if err != nil {
		return nil, err
	}
	span := spanFromTo(open.Span, closeTok.Span)

	if opTok.Value == "let" {
		return p.buildLet(span, opTok, args)
	}

	return &ast.FormExpr{
		Span:   span,
		Op:     opTok.Value,
		OpSpan: opTok.Span,
		Args:   args,
	}, nil
}

// buildLet turns (let [name expr ...] body...) into a LetExpr.
func (p *parser) buildLet(span ast.Span, opTok lexer.Token, args []ast.Expr) (ast.Expr, error) {
	if len(args) == 0 {
		return nil, p.errorAt(diagnostics.EMalformedBindings, "let requires a binding vector", opTok.Span)
	}
	vec, ok := args[0].(*ast.VectorExpr)
	if !ok {
		return nil, p.errorAt(diagnostics.EMalformedBindings, "let bindings must be a vector [name expr ...]", args[0].NodeSpan())
	}
	if len(vec.Elements)%2 != 0 {
		return nil, p.errorAt(diagnostics.EMalformedBindings,
			fmt.Sprintf("let binding vector has an odd number of elements (%d)", len(vec.Elements)), vec.Span)
	}

	bindings := make([]*ast.Binding, 0, len(vec.Elements)/2)
	for i := 0; i < len(vec.Elements); i += 2 {
		nameExpr := vec.Elements[i]
		name, ok := ast.SymbolName(nameExpr)
		if !ok {
			return nil, p.errorAt(diagnostics.EMalformedBindings,
				fmt.Sprintf("let binding name must be a symbol, got %s", nameExpr.Kind()), nameExpr.NodeSpan())
		}
		value := vec.Elements[i+1]
		bindings = append(bindings, &ast.Binding{
			Span:  spanFromTo(nameExpr.NodeSpan(), value.NodeSpan()),
			Name:  name,
			Value: value,
		})
	}

	return &ast.LetExpr{
		Span:     span,
		Bindings: bindings,
		Body:     args[1:],
	}, nil
}
