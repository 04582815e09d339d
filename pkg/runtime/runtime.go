// Package runtime provides the top-level BigLisp runtime orchestrator.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/thomasrohde/biglisp/go/pkg/ast"
	"github.com/thomasrohde/biglisp/go/pkg/diagnostics"
	"github.com/thomasrohde/biglisp/go/pkg/evaluator"
	"github.com/thomasrohde/biglisp/go/pkg/formatter"
	"github.com/thomasrohde/biglisp/go/pkg/parser"
	"github.com/thomasrohde/biglisp/go/pkg/stdlib"
	"github.com/thomasrohde/biglisp/go/pkg/validator"
)

// Result holds the outcome of a program execution.
type Result struct {
	Value evaluator.Value
	Stats evaluator.Stats
}

// Runtime wires together all BigLisp components for program execution.
type Runtime struct {
	stdlib   *stdlib.Registry
	bindings map[string]evaluator.Value
	output   io.Writer
	budget   evaluator.Budget
	runID    string
	trace    func(event evaluator.TraceEvent)
}

// Option is a functional option for configuring the Runtime.
type Option func(*Runtime)

// WithStdlib sets the builtin registry.
func WithStdlib(r *stdlib.Registry) Option {
	return func(rt *Runtime) {
		rt.stdlib = r
	}
}

// WithOutput sets the println target.
func WithOutput(w io.Writer) Option {
	return func(rt *Runtime) {
		rt.output = w
	}
}

// WithBindings adds host variables to the root scope.
func WithBindings(b map[string]evaluator.Value) Option {
	return func(rt *Runtime) {
		for name, val := range b {
			rt.bindings[name] = val
		}
	}
}

// WithBudget sets the resource limits.
func WithBudget(b evaluator.Budget) Option {
	return func(rt *Runtime) {
		rt.budget = b
	}
}

// WithRunID sets the run ID for trace events.
func WithRunID(id string) Option {
	return func(rt *Runtime) {
		rt.runID = id
	}
}

// WithTrace sets the trace callback.
func WithTrace(fn func(event evaluator.TraceEvent)) Option {
	return func(rt *Runtime) {
		rt.trace = fn
	}
}

// New creates a new Runtime with the given options.
// By default the stdlib builtins are registered and no host bindings exist.
func New(opts ...Option) *Runtime {
	reg := stdlib.NewRegistry()
	stdlib.RegisterDefaults(reg)

	rt := &Runtime{
		stdlib:   reg,
		bindings: make(map[string]evaluator.Value),
		runID:    "cli",
	}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

// Run parses and executes a BigLisp program. Parse failures are returned as
// *DiagnosticError; evaluation failures as *evaluator.EvalError, or the
// context error when ctx is cancelled.
func (rt *Runtime) Run(ctx context.Context, source, filename string) (*Result, error) {
	program, err := rt.parse(source, filename)
	if err != nil {
		return nil, err
	}

	result, err := evaluator.Execute(ctx, program, rt.buildExecOptions())
	if err != nil {
		if result != nil {
			return &Result{Stats: result.Stats}, err
		}
		return nil, err
	}
	return &Result{Value: result.Value, Stats: result.Stats}, nil
}

// Eval reads exactly one expression from source and evaluates it.
func (rt *Runtime) Eval(ctx context.Context, source string) (evaluator.Value, error) {
	expr, err := parser.Parse(source, "<eval>")
	if err != nil {
		return nil, diagnosticError(err)
	}
	return evaluator.Eval(ctx, expr, rt.bindings, rt.buildExecOptions())
}

// Check parses and validates a BigLisp program without executing it.
func (rt *Runtime) Check(source, filename string) []diagnostics.Diagnostic {
	program, err := rt.parse(source, filename)
	if err != nil {
		var de *DiagnosticError
		if errors.As(err, &de) {
			return de.Diagnostics
		}
		return []diagnostics.Diagnostic{diagnostics.MakeDiag(diagnostics.EIO, err.Error(), nil, "")}
	}

	return validator.ValidateWith(program, validator.Options{
		Globals:  rt.bindingNames(),
		Builtins: func(name string) bool { return rt.stdlib.Get(name) != nil },
	})
}

// Format parses and formats a BigLisp program.
func (rt *Runtime) Format(source, filename string) (string, error) {
	program, err := rt.parse(source, filename)
	if err != nil {
		return "", err
	}
	return formatter.Format(program), nil
}

// Session evaluates successive sources against one persistent scope, so that
// definitions made by one Run are visible to the next.
type Session struct {
	rt      *Runtime
	session *evaluator.Session
}

// NewSession starts a session using the runtime's bindings and builtins.
func (rt *Runtime) NewSession() *Session {
	return &Session{rt: rt, session: evaluator.NewSession(rt.buildExecOptions())}
}

// Run parses source and evaluates it in the session scope.
func (s *Session) Run(ctx context.Context, source, filename string) (*Result, error) {
	program, err := s.rt.parse(source, filename)
	if err != nil {
		return nil, err
	}
	result, err := s.session.Execute(ctx, program)
	if err != nil {
		if result != nil {
			return &Result{Stats: result.Stats}, err
		}
		return nil, err
	}
	return &Result{Value: result.Value, Stats: result.Stats}, nil
}

// Names lists the names defined at the session's top level.
func (s *Session) Names() []string {
	return s.session.Env().Names()
}

func (rt *Runtime) parse(source, filename string) (*ast.Program, error) {
	program, err := parser.ParseProgram(source, filename)
	if err != nil {
		return nil, diagnosticError(err)
	}
	return program, nil
}

func (rt *Runtime) bindingNames() []string {
	names := make([]string, 0, len(rt.bindings))
	for name := range rt.bindings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// buildExecOptions constructs evaluator options from the runtime's configuration.
func (rt *Runtime) buildExecOptions() evaluator.ExecOptions {
	return evaluator.ExecOptions{
		Bindings: rt.bindings,
		Builtins: rt.stdlib.Builtins(),
		Output:   rt.output,
		Budget:   rt.budget,
		Trace:    rt.trace,
		RunID:    rt.runID,
	}
}

// DiagnosticError wraps diagnostics as an error.
type DiagnosticError struct {
	Diagnostics []diagnostics.Diagnostic
	Incomplete  bool // the source ended inside an open form, vector or string
}

func (e *DiagnosticError) Error() string {
	msgs := make([]string, len(e.Diagnostics))
	for i, d := range e.Diagnostics {
		msgs[i] = fmt.Sprintf("%s: %s", d.Code, d.Message)
	}
	return strings.Join(msgs, "; ")
}

func diagnosticError(err error) error {
	var pe *parser.ParseError
	if !errors.As(err, &pe) {
		return err
	}
	return &DiagnosticError{
		Diagnostics: []diagnostics.Diagnostic{pe.Diagnostic()},
		Incomplete:  parser.IsIncomplete(err),
	}
}
