package evaluator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/thomasrohde/biglisp/go/pkg/ast"
	"github.com/thomasrohde/biglisp/go/pkg/diagnostics"
)

// TraceEventType identifies the type of a trace event.
type TraceEventType string

const (
	TraceRunStart       TraceEventType = "run_start"
	TraceRunEnd         TraceEventType = "run_end"
	TraceExprStart      TraceEventType = "expr_start"
	TraceExprEnd        TraceEventType = "expr_end"
	TraceFnCallStart    TraceEventType = "fn_call_start"
	TraceFnCallEnd      TraceEventType = "fn_call_end"
	TraceBuiltinStart   TraceEventType = "builtin_start"
	TraceBuiltinEnd     TraceEventType = "builtin_end"
	TraceTryStart       TraceEventType = "try_start"
	TraceTryEnd         TraceEventType = "try_end"
	TraceLoopStart      TraceEventType = "loop_start"
	TraceLoopEnd        TraceEventType = "loop_end"
	TraceBudgetExceeded TraceEventType = "budget_exceeded"
)

// TraceEvent represents a single trace event emitted during execution.
type TraceEvent struct {
	Timestamp string            `json:"ts"`
	RunID     string            `json:"runId"`
	Event     TraceEventType    `json:"event"`
	Span      *ast.Span         `json:"span,omitempty"`
	Data      map[string]string `json:"data,omitempty"`
}

// Builtin is a function applied to already-evaluated arguments.
// Errors should be *EvalError so that try can recover them.
type Builtin struct {
	Name    string
	Execute func(args []Value) (Value, error)
}

// ExecOptions configures evaluation.
type ExecOptions struct {
	Bindings map[string]Value
	Builtins map[string]*Builtin
	Output   io.Writer // println target; os.Stdout when nil
	Budget   Budget
	Trace    func(event TraceEvent)
	RunID    string
}

// ExecResult holds the result of a program execution.
type ExecResult struct {
	Value Value
	Stats Stats
}

var errTimeBudget = errors.New("time budget exhausted")

var coreForms = map[string]bool{
	"+": true, "-": true, "*": true, "/": true, "%": true, "modulo": true,
	"=": true, "eq": true, "<": true, ">": true, "gte": true, "lte": true, "ne": true,
	"and": true, "or": true, "not": true,
	"if": true, "let": true, "do": true, "defn": true, "call": true,
	"first": true, "rest": true, "count": true, "cons": true,
	"str": true, "try": true, "dotimes": true, "println": true,
	"while": true, "with-vars": true,
}

// IsCoreForm reports whether name is a special form handled by the evaluator.
// Core forms cannot be shadowed by bindings or builtins.
func IsCoreForm(name string) bool {
	return coreForms[name]
}

// Session evaluates successive programs against one persistent top-level scope.
type Session struct {
	opts ExecOptions
	env  *Env
}

// NewSession creates a session. Host bindings live in a root scope that
// top-level definitions shadow but never overwrite.
func NewSession(opts ExecOptions) *Session {
	root := NewEnv(nil)
	for name, val := range opts.Bindings {
		root.Define(name, val)
	}
	return &Session{opts: opts, env: root.Child()}
}

// Env returns the session's top-level scope.
func (s *Session) Env() *Env {
	return s.env
}

// Execute evaluates every top-level expression of program in order and
// returns the value of the last one.
func (s *Session) Execute(ctx context.Context, program *ast.Program) (*ExecResult, error) {
	return s.run(ctx, program.Exprs, program.Span)
}

// Execute evaluates a program in a fresh session.
func Execute(ctx context.Context, program *ast.Program, opts ExecOptions) (*ExecResult, error) {
	return NewSession(opts).Execute(ctx, program)
}

// Eval evaluates a single expression with bindings as the host scope.
func Eval(ctx context.Context, expr ast.Expr, bindings map[string]Value, opts ExecOptions) (Value, error) {
	opts.Bindings = bindings
	res, err := NewSession(opts).run(ctx, []ast.Expr{expr}, expr.NodeSpan())
	if err != nil {
		return nil, err
	}
	return res.Value, nil
}

type evaluator struct {
	ctx    context.Context
	opts   ExecOptions
	out    io.Writer
	budget Budget
	depth  int
	stats  Stats
}

func (s *Session) run(ctx context.Context, exprs []ast.Expr, span ast.Span) (*ExecResult, error) {
	ev := &evaluator{
		ctx:    ctx,
		opts:   s.opts,
		out:    s.opts.Output,
		budget: s.opts.Budget,
	}
	if ev.out == nil {
		ev.out = os.Stdout
	}

	if ev.budget.TimeMs > 0 {
		var cancel context.CancelFunc
		ev.ctx, cancel = context.WithTimeoutCause(ctx, time.Duration(ev.budget.TimeMs)*time.Millisecond, errTimeBudget)
		defer cancel()
	}

	ev.emit(TraceRunStart, &span)

	var last Value = Unit{}
	for _, expr := range exprs {
		exprSpan := expr.NodeSpan()
		ev.emit(TraceExprStart, &exprSpan)
		val, err := ev.eval(expr, s.env)
		ev.emit(TraceExprEnd, &exprSpan)
		if err != nil {
			var evalErr *EvalError
			if errors.As(err, &evalErr) && evalErr.Code == diagnostics.EBudget {
				ev.emitWithData(TraceBudgetExceeded, evalErr.Span, map[string]string{"message": evalErr.Message})
			}
			ev.emit(TraceRunEnd, &span)
			return &ExecResult{Stats: ev.stats}, err
		}
		last = val
	}

	ev.emit(TraceRunEnd, &span)
	return &ExecResult{Value: last, Stats: ev.stats}, nil
}

func (ev *evaluator) emit(event TraceEventType, span *ast.Span) {
	ev.emitWithData(event, span, nil)
}

func (ev *evaluator) emitWithData(event TraceEventType, span *ast.Span, data map[string]string) {
	if ev.opts.Trace != nil {
		ev.opts.Trace(TraceEvent{
			Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
			RunID:     ev.opts.RunID,
			Event:     event,
			Span:      span,
			Data:      data,
		})
	}
}

// checkContext surfaces cancellation. An expired time budget becomes an
// E_BUDGET error; any other cancellation is returned as the context error.
func (ev *evaluator) checkContext(span ast.Span) error {
	if ev.ctx.Err() == nil {
		return nil
	}
	if context.Cause(ev.ctx) == errTimeBudget {
		return errAt(diagnostics.EBudget, span, "time budget exceeded (%dms)", ev.budget.TimeMs)
	}
	return ev.ctx.Err()
}

func (ev *evaluator) eval(expr ast.Expr, env *Env) (Value, error) {
	ev.depth++
	defer func() { ev.depth-- }()
	if ev.depth > ev.stats.MaxDepth {
		ev.stats.MaxDepth = ev.depth
	}
	if limit := ev.budget.maxDepth(); ev.depth > limit {
		return nil, errAt(diagnostics.ERecursionLimit, expr.NodeSpan(), "evaluation nested deeper than %d levels", limit)
	}

	switch e := expr.(type) {
	case *ast.IntLiteral:
		return Int{Value: e.Value}, nil

	case *ast.FloatLiteral:
		return Float{Value: e.Value}, nil

	case *ast.BoolLiteral:
		return Bool{Value: e.Value}, nil

	case *ast.StrLiteral:
		return String{Value: e.Value}, nil

	case *ast.Symbol:
		val, ok := env.Get(e.Name)
		if !ok {
			return nil, &EvalError{
				Code:    diagnostics.EUnbound,
				Message: fmt.Sprintf("unbound symbol '%s'", e.Name),
				Symbol:  e.Name,
				Span:    &e.Span,
			}
		}
		return val, nil

	case *ast.VectorExpr:
		items, err := ev.evalArgs(e.Elements, env)
		if err != nil {
			return nil, err
		}
		return NewList(items), nil

	case *ast.LetExpr:
		return ev.evalLet(e, env)

	case *ast.FormExpr:
		return ev.evalForm(e, env)

	default:
		return nil, errAt(diagnostics.EType, expr.NodeSpan(), "unsupported expression type: %T", expr)
	}
}

func (ev *evaluator) evalArgs(exprs []ast.Expr, env *Env) ([]Value, error) {
	vals := make([]Value, 0, len(exprs))
	for _, expr := range exprs {
		val, err := ev.eval(expr, env)
		if err != nil {
			return nil, err
		}
		vals = append(vals, val)
	}
	return vals, nil
}

// evalBody evaluates exprs in order and returns the last value, or unit when empty.
func (ev *evaluator) evalBody(exprs []ast.Expr, env *Env) (Value, error) {
	var last Value = Unit{}
	for _, expr := range exprs {
		val, err := ev.eval(expr, env)
		if err != nil {
			return nil, err
		}
		last = val
	}
	return last, nil
}

func (ev *evaluator) evalForm(e *ast.FormExpr, env *Env) (Value, error) {
	switch e.Op {
	case "+", "-", "*", "/":
		args, err := ev.evalArgs(e.Args, env)
		if err != nil {
			return nil, err
		}
		return arithmetic(e.Op, args, e.Span)

	case "%", "modulo":
		args, err := ev.evalArgs(e.Args, env)
		if err != nil {
			return nil, err
		}
		return modulo(e.Op, args, e.Span)

	case "=", "eq", "<", ">", "gte", "lte", "ne":
		args, err := ev.evalArgs(e.Args, env)
		if err != nil {
			return nil, err
		}
		return compareChain(e.Op, args, e.Span)

	case "and":
		return ev.evalAnd(e, env)
	case "or":
		return ev.evalOr(e, env)
	case "not":
		return ev.evalNot(e, env)
	case "if":
		return ev.evalIf(e, env)
	case "do":
		return ev.evalBody(e.Args, env)
	case "defn":
		return ev.evalDefn(e, env)
	case "call":
		return ev.evalCall(e, env)

	case "first", "rest", "count", "cons":
		args, err := ev.evalArgs(e.Args, env)
		if err != nil {
			return nil, err
		}
		return listOp(e.Op, args, e.Span)

	case "str":
		args, err := ev.evalArgs(e.Args, env)
		if err != nil {
			return nil, err
		}
		var sb strings.Builder
		for _, arg := range args {
			if _, ok := arg.(Unit); ok {
				continue
			}
			sb.WriteString(Display(arg))
		}
		return String{Value: sb.String()}, nil

	case "println":
		return ev.evalPrintln(e, env)
	case "try":
		return ev.evalTry(e, env)
	case "dotimes":
		return ev.evalDotimes(e, env)
	case "while":
		return ev.evalWhile(e, env)
	case "with-vars":
		return ev.evalWithVars(e, env)

	default:
		return ev.evalApply(e, env)
	}
}

// evalApply resolves a non-core operator: a bound function, then a builtin.
func (ev *evaluator) evalApply(e *ast.FormExpr, env *Env) (Value, error) {
	if bound, ok := env.Get(e.Op); ok {
		fn, ok := bound.(*Function)
		if !ok {
			return nil, &EvalError{
				Code:    diagnostics.EType,
				Message: fmt.Sprintf("'%s' is bound to a %s, not a function", e.Op, TypeName(bound)),
				Symbol:  e.Op,
				Span:    &e.OpSpan,
			}
		}
		args, err := ev.evalArgs(e.Args, env)
		if err != nil {
			return nil, err
		}
		return ev.callFunction(fn, args, e.Span)
	}

	if builtin, ok := ev.opts.Builtins[e.Op]; ok {
		args, err := ev.evalArgs(e.Args, env)
		if err != nil {
			return nil, err
		}
		return ev.callBuiltin(builtin, args, e.Span)
	}

	return nil, &EvalError{
		Code:    diagnostics.EUnknownForm,
		Message: fmt.Sprintf("unknown form '%s'", e.Op),
		Symbol:  e.Op,
		Span:    &e.OpSpan,
	}
}

func (ev *evaluator) callBuiltin(b *Builtin, args []Value, span ast.Span) (Value, error) {
	ev.stats.Calls++
	ev.emitWithData(TraceBuiltinStart, &span, map[string]string{"fn": b.Name})
	result, err := b.Execute(args)
	ev.emitWithData(TraceBuiltinEnd, &span, map[string]string{"fn": b.Name})
	if err != nil {
		var evalErr *EvalError
		if errors.As(err, &evalErr) {
			if evalErr.Span == nil {
				evalErr.Span = &span
			}
			return nil, evalErr
		}
		return nil, errAt(diagnostics.EType, span, "builtin '%s' failed: %s", b.Name, err.Error())
	}
	return result, nil
}

func (ev *evaluator) callFunction(fn *Function, args []Value, span ast.Span) (Value, error) {
	if len(args) != len(fn.Params) {
		return nil, errAt(diagnostics.EArity, span,
			"function '%s' expects %d argument(s), got %d", fn.Name, len(fn.Params), len(args))
	}
	if err := ev.checkContext(span); err != nil {
		return nil, err
	}

	ev.stats.Calls++
	ev.emitWithData(TraceFnCallStart, &span, map[string]string{"fn": fn.Name})

	callEnv := fn.Env.Child()
	for i, param := range fn.Params {
		callEnv.Define(param, args[i])
	}
	result, err := ev.evalBody(fn.Body, callEnv)

	ev.emitWithData(TraceFnCallEnd, &span, map[string]string{"fn": fn.Name})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// --- Bindings and control flow ---

func (ev *evaluator) evalLet(e *ast.LetExpr, env *Env) (Value, error) {
	letEnv := env.Child()
	for _, b := range e.Bindings {
		val, err := ev.eval(b.Value, letEnv)
		if err != nil {
			return nil, err
		}
		letEnv.Define(b.Name, val)
	}
	return ev.evalBody(e.Body, letEnv)
}

func (ev *evaluator) evalAnd(e *ast.FormExpr, env *Env) (Value, error) {
	var result Value = Bool{Value: true}
	for _, arg := range e.Args {
		val, err := ev.eval(arg, env)
		if err != nil {
			return nil, err
		}
		if !Truthiness(val) {
			return val, nil
		}
		result = val
	}
	return result, nil
}

func (ev *evaluator) evalOr(e *ast.FormExpr, env *Env) (Value, error) {
	var result Value = Bool{Value: false}
	for _, arg := range e.Args {
		val, err := ev.eval(arg, env)
		if err != nil {
			return nil, err
		}
		if Truthiness(val) {
			return val, nil
		}
		result = val
	}
	return result, nil
}

func (ev *evaluator) evalNot(e *ast.FormExpr, env *Env) (Value, error) {
	if len(e.Args) != 1 {
		return nil, arityAt(e.Span, "not", "1 argument", len(e.Args))
	}
	val, err := ev.eval(e.Args[0], env)
	if err != nil {
		return nil, err
	}
	return Bool{Value: !Truthiness(val)}, nil
}

func (ev *evaluator) evalIf(e *ast.FormExpr, env *Env) (Value, error) {
	if len(e.Args) < 2 || len(e.Args) > 3 {
		return nil, arityAt(e.Span, "if", "2 or 3 arguments", len(e.Args))
	}
	cond, err := ev.eval(e.Args[0], env)
	if err != nil {
		return nil, err
	}
	if Truthiness(cond) {
		return ev.eval(e.Args[1], env)
	}
	if len(e.Args) == 3 {
		return ev.eval(e.Args[2], env)
	}
	return Unit{}, nil
}

func (ev *evaluator) evalDefn(e *ast.FormExpr, env *Env) (Value, error) {
	if len(e.Args) < 3 {
		return nil, arityAt(e.Span, "defn", "a name, a parameter vector and a body", len(e.Args))
	}
	name, ok := ast.SymbolName(e.Args[0])
	if !ok {
		return nil, errAt(diagnostics.EType, e.Args[0].NodeSpan(), "defn name must be a symbol, got %s", e.Args[0].Kind())
	}
	if IsCoreForm(name) {
		return nil, errAt(diagnostics.EType, e.Args[0].NodeSpan(), "cannot redefine core form '%s'", name)
	}
	params, err := symbolVector("defn parameters", e.Args[1])
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(params))
	for _, p := range params {
		if seen[p] {
			return nil, errAt(diagnostics.EType, e.Args[1].NodeSpan(), "duplicate parameter '%s' in function '%s'", p, name)
		}
		seen[p] = true
	}

	fn := &Function{Name: name, Params: params, Body: e.Args[2:], Env: env}
	env.Define(name, fn)
	return fn, nil
}

// symbolVector extracts the names of a [a b c] vector of symbols.
func symbolVector(what string, expr ast.Expr) ([]string, error) {
	vec, ok := expr.(*ast.VectorExpr)
	if !ok {
		return nil, errAt(diagnostics.EType, expr.NodeSpan(), "%s must be a vector of symbols, got %s", what, expr.Kind())
	}
	names := make([]string, 0, len(vec.Elements))
	for _, elem := range vec.Elements {
		name, ok := ast.SymbolName(elem)
		if !ok {
			return nil, errAt(diagnostics.EType, elem.NodeSpan(), "%s must be symbols, got %s", what, elem.Kind())
		}
		names = append(names, name)
	}
	return names, nil
}

func (ev *evaluator) evalCall(e *ast.FormExpr, env *Env) (Value, error) {
	if len(e.Args) < 1 {
		return nil, arityAt(e.Span, "call", "a function and its arguments", 0)
	}
	target, err := ev.eval(e.Args[0], env)
	if err != nil {
		return nil, err
	}
	fn, ok := target.(*Function)
	if !ok {
		return nil, typeAt(e.Args[0].NodeSpan(), "call", "a function", target)
	}
	args, err := ev.evalArgs(e.Args[1:], env)
	if err != nil {
		return nil, err
	}
	return ev.callFunction(fn, args, e.Span)
}

func (ev *evaluator) evalPrintln(e *ast.FormExpr, env *Env) (Value, error) {
	args, err := ev.evalArgs(e.Args, env)
	if err != nil {
		return nil, err
	}
	parts := make([]string, len(args))
	for i, arg := range args {
		parts[i] = Display(arg)
	}
	if _, err := fmt.Fprintln(ev.out, strings.Join(parts, " ")); err != nil {
		return nil, fmt.Errorf("println: %w", err)
	}
	return Unit{}, nil
}

// evalTry recovers evaluation errors raised by its body. Budget errors and
// context cancellation propagate.
func (ev *evaluator) evalTry(e *ast.FormExpr, env *Env) (Value, error) {
	if len(e.Args) < 1 || len(e.Args) > 2 {
		return nil, arityAt(e.Span, "try", "1 or 2 arguments", len(e.Args))
	}
	span := e.Span
	ev.emit(TraceTryStart, &span)

	val, err := ev.eval(e.Args[0], env)
	if err != nil {
		var evalErr *EvalError
		if errors.As(err, &evalErr) && evalErr.Code != diagnostics.EBudget {
			ev.emitWithData(TraceTryEnd, &span, map[string]string{"recovered": evalErr.Code})
			if len(e.Args) == 1 {
				return Unit{}, nil
			}
			return ev.eval(e.Args[1], env)
		}
		ev.emit(TraceTryEnd, &span)
		return nil, err
	}
	ev.emit(TraceTryEnd, &span)
	return val, nil
}

func (ev *evaluator) evalDotimes(e *ast.FormExpr, env *Env) (Value, error) {
	if len(e.Args) < 2 {
		return nil, arityAt(e.Span, "dotimes", "a counter symbol, a count and a body", len(e.Args))
	}
	name, ok := ast.SymbolName(e.Args[0])
	if !ok {
		return nil, errAt(diagnostics.EType, e.Args[0].NodeSpan(), "dotimes counter must be a symbol, got %s", e.Args[0].Kind())
	}
	countVal, err := ev.eval(e.Args[1], env)
	if err != nil {
		return nil, err
	}
	n, ok := countVal.(Int)
	if !ok {
		return nil, typeAt(e.Args[1].NodeSpan(), "dotimes", "an integer count", countVal)
	}

	span := e.Span
	ev.emitWithData(TraceLoopStart, &span, map[string]string{"form": "dotimes"})

	var last Value = Unit{}
	var i int64
	for i = 0; i < n.Value; i++ {
		if err := ev.checkContext(span); err != nil {
			return nil, err
		}
		if err := ev.checkIterationBudget("dotimes", i); err != nil {
			err.Span = &span
			return nil, err
		}
		ev.stats.Iterations++

		iterEnv := env.Child()
		iterEnv.Define(name, Int{Value: i})
		last, err = ev.evalBody(e.Args[2:], iterEnv)
		if err != nil {
			return nil, err
		}
	}

	ev.emitWithData(TraceLoopEnd, &span, map[string]string{"form": "dotimes", "iterations": strconv.FormatInt(i, 10)})
	return last, nil
}

// evalWhile evaluates its body in the enclosing scope, so a defn in the body
// can rebind names the condition reads.
func (ev *evaluator) evalWhile(e *ast.FormExpr, env *Env) (Value, error) {
	if len(e.Args) < 1 {
		return nil, arityAt(e.Span, "while", "a condition and a body", 0)
	}

	span := e.Span
	ev.emitWithData(TraceLoopStart, &span, map[string]string{"form": "while"})

	var last Value = Unit{}
	var count int64
	for ; ; count++ {
		if err := ev.checkContext(span); err != nil {
			return nil, err
		}
		cond, err := ev.eval(e.Args[0], env)
		if err != nil {
			return nil, err
		}
		if !Truthiness(cond) {
			break
		}
		if err := ev.checkIterationBudget("while", count); err != nil {
			err.Span = &span
			return nil, err
		}
		ev.stats.Iterations++

		last, err = ev.evalBody(e.Args[1:], env)
		if err != nil {
			return nil, err
		}
	}

	ev.emitWithData(TraceLoopEnd, &span, map[string]string{"form": "while", "iterations": strconv.FormatInt(count, 10)})
	return last, nil
}

// evalWithVars evaluates its body with the listed variables captured from the
// enclosing scopes; each must already be bound.
func (ev *evaluator) evalWithVars(e *ast.FormExpr, env *Env) (Value, error) {
	if len(e.Args) < 1 {
		return nil, arityAt(e.Span, "with-vars", "a variable vector and a body", 0)
	}
	names, err := symbolVector("with-vars variables", e.Args[0])
	if err != nil {
		return nil, err
	}
	capEnv := env.Child()
	for _, name := range names {
		val, ok := env.Get(name)
		if !ok {
			return nil, &EvalError{
				Code:    diagnostics.EUnbound,
				Message: fmt.Sprintf("captured variable '%s' is not bound", name),
				Symbol:  name,
				Span:    &e.Span,
			}
		}
		capEnv.Define(name, val)
	}
	return ev.evalBody(e.Args[1:], capEnv)
}
