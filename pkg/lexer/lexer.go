// Package lexer implements the BigLisp tokenizer.
package lexer

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/thomasrohde/biglisp/go/pkg/ast"
	"github.com/thomasrohde/biglisp/go/pkg/diagnostics"
)

// TokenType identifies the type of a lexer token.
type TokenType int

const (
	// Delimiters
	TokLParen   TokenType = iota // (
	TokRParen                    // )
	TokLBracket                  // [
	TokRBracket                  // ]

	// Literals
	TokIntLit
	TokFloatLit
	TokStringLit
	TokTrue
	TokFalse

	// Identifiers
	TokSymbol

	// Special
	TokEOF
)

var tokenNames = [...]string{
	TokLParen:    "'('",
	TokRParen:    "')'",
	TokLBracket:  "'['",
	TokRBracket:  "']'",
	TokIntLit:    "integer",
	TokFloatLit:  "float",
	TokStringLit: "string",
	TokTrue:      "true",
	TokFalse:     "false",
	TokSymbol:    "symbol",
	TokEOF:       "end of input",
}

func (t TokenType) String() string {
	if int(t) < len(tokenNames) {
		return tokenNames[t]
	}
	return fmt.Sprintf("token(%d)", int(t))
}

// Token represents a single lexer token.
type Token struct {
	Type  TokenType
	Value string
	Span  ast.Span
}

type scanner struct {
	source   string
	filename string
	pos      int
	line     int
	col      int
}

func newScanner(source, filename string) *scanner {
	return &scanner{
		source:   source,
		filename: filename,
		pos:      0,
		line:     1,
		col:      1,
	}
}

func (s *scanner) atEnd() bool {
	return s.pos >= len(s.source)
}

func (s *scanner) peek() byte {
	if s.atEnd() {
		return 0
	}
	return s.source[s.pos]
}

func (s *scanner) advance() byte {
	ch := s.source[s.pos]
	s.pos++
	if ch == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}
	return ch
}

func (s *scanner) span(startLine, startCol int) ast.Span {
	return ast.Span{
		File:      s.filename,
		StartLine: startLine,
		StartCol:  startCol,
		EndLine:   s.line,
		EndCol:    s.col,
	}
}

func isWhitespace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n' || ch == ','
}

func isDelimiter(ch byte) bool {
	switch ch {
	case '(', ')', '[', ']', '"', ';':
		return true
	}
	return isWhitespace(ch)
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func (s *scanner) skipWhitespaceAndComments() {
	for !s.atEnd() {
		ch := s.peek()
		if isWhitespace(ch) {
			s.advance()
		} else if ch == ';' {
			for !s.atEnd() && s.peek() != '\n' {
				s.advance()
			}
		} else {
			break
		}
	}
}

func (s *scanner) scanString() (Token, error) {
	startLine, startCol := s.line, s.col
	s.advance() // consume opening "

	var buf strings.Builder
	for !s.atEnd() {
		ch := s.peek()
		if ch == '"' {
			s.advance()
			return Token{
				Type:  TokStringLit,
				Value: buf.String(),
				Span:  s.span(startLine, startCol),
			}, nil
		}
		if ch == '\\' {
			escLine, escCol := s.line, s.col
			s.advance()
			if s.atEnd() {
				break
			}
			esc := s.advance()
			switch esc {
			case '"':
				buf.WriteByte('"')
			case '\\':
				buf.WriteByte('\\')
			case 'n':
				buf.WriteByte('\n')
			case 't':
				buf.WriteByte('\t')
			case 'r':
				buf.WriteByte('\r')
			default:
				return Token{}, s.lexError(diagnostics.EUnexpectedToken, escLine, escCol,
					fmt.Sprintf("invalid escape sequence '\\%c' in string literal", esc))
			}
			continue
		}
		r, size := utf8.DecodeRuneInString(s.source[s.pos:])
		if r == utf8.RuneError && size == 1 {
			return Token{}, s.lexError(diagnostics.EUnexpectedToken, s.line, s.col, "invalid UTF-8 in string literal")
		}
		buf.WriteString(s.source[s.pos : s.pos+size])
		for i := 0; i < size; i++ {
			s.advance()
		}
	}
	return Token{}, s.lexError(diagnostics.EUnbalanced, startLine, startCol, "unterminated string literal")
}

// scanAtom reads a maximal run of non-delimiter characters and classifies it.
func (s *scanner) scanAtom() (Token, error) {
	startLine, startCol := s.line, s.col
	startPos := s.pos
	for !s.atEnd() && !isDelimiter(s.peek()) {
		s.advance()
	}
	text := s.source[startPos:s.pos]
	span := s.span(startLine, startCol)

	switch classifyNumber(text) {
	case TokIntLit:
		if _, err := strconv.ParseInt(text, 10, 64); err != nil {
			return Token{}, s.lexError(diagnostics.EUnexpectedToken, startLine, startCol,
				fmt.Sprintf("integer literal out of range: %s", text))
		}
		return Token{Type: TokIntLit, Value: text, Span: span}, nil
	case TokFloatLit:
		return Token{Type: TokFloatLit, Value: text, Span: span}, nil
	}

	switch text {
	case "true":
		return Token{Type: TokTrue, Value: text, Span: span}, nil
	case "false":
		return Token{Type: TokFalse, Value: text, Span: span}, nil
	}
	return Token{Type: TokSymbol, Value: text, Span: span}, nil
}

// classifyNumber returns TokIntLit for -?digits, TokFloatLit for -?digits.digits
// and TokSymbol for anything else.
func classifyNumber(text string) TokenType {
	i := 0
	if i < len(text) && text[i] == '-' {
		i++
	}
	intStart := i
	for i < len(text) && isDigit(text[i]) {
		i++
	}
	if i == intStart {
		return TokSymbol
	}
	if i == len(text) {
		return TokIntLit
	}
	if text[i] != '.' {
		return TokSymbol
	}
	i++
	fracStart := i
	for i < len(text) && isDigit(text[i]) {
		i++
	}
	if i == fracStart || i != len(text) {
		return TokSymbol
	}
	return TokFloatLit
}

func (s *scanner) lexError(code string, line, col int, msg string) error {
	diag := diagnostics.MakeDiag(
		code,
		msg,
		&ast.Span{File: s.filename, StartLine: line, StartCol: col, EndLine: line, EndCol: col + 1},
		"",
	)
	return &LexError{Diag: diag}
}

// LexError wraps a diagnostic for lex errors.
type LexError struct {
	Diag diagnostics.Diagnostic
}

func (e *LexError) Error() string {
	return e.Diag.Message
}

func (s *scanner) nextToken() (Token, error) {
	s.skipWhitespaceAndComments()

	if s.atEnd() {
		return Token{
			Type:  TokEOF,
			Value: "",
			Span:  s.span(s.line, s.col),
		}, nil
	}

	ch := s.peek()
	startLine, startCol := s.line, s.col

	switch ch {
	case '(':
		s.advance()
		return Token{Type: TokLParen, Value: "(", Span: s.span(startLine, startCol)}, nil
	case ')':
		s.advance()
		return Token{Type: TokRParen, Value: ")", Span: s.span(startLine, startCol)}, nil
	case '[':
		s.advance()
		return Token{Type: TokLBracket, Value: "[", Span: s.span(startLine, startCol)}, nil
	case ']':
		s.advance()
		return Token{Type: TokRBracket, Value: "]", Span: s.span(startLine, startCol)}, nil
	case '"':
		return s.scanString()
	}

	return s.scanAtom()
}

// Tokenize breaks source code into a slice of tokens terminated by TokEOF.
func Tokenize(source, filename string) ([]Token, error) {
	s := newScanner(source, filename)
	var tokens []Token

	for {
		tok, err := s.nextToken()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Type == TokEOF {
			break
		}
	}

	return tokens, nil
}
