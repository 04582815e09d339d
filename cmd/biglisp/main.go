// Command biglisp is the BigLisp CLI entry point.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/thomasrohde/biglisp/go/internal/log"
	"github.com/thomasrohde/biglisp/go/pkg/config"
	"github.com/thomasrohde/biglisp/go/pkg/diagnostics"
	"github.com/thomasrohde/biglisp/go/pkg/evaluator"
	"github.com/thomasrohde/biglisp/go/pkg/formatter"
	"github.com/thomasrohde/biglisp/go/pkg/runtime"
)

// Exit codes.
const (
	exitOK      = 0
	exitUsage   = 1 // usage, IO and configuration errors
	exitParse   = 2 // parse and validation diagnostics
	exitRuntime = 4
)

const usage = `usage: biglisp [--log-level <level>] <command> [options]
commands:
  run <file|->    evaluate a program and print its value
  check <file|->  parse and validate without evaluating
  fmt <file>      print the program in canonical form
  trace <file>    summarise an NDJSON trace written by run --trace
  repl            interactive session
  config          print the effective configuration`

// app carries the process streams so commands can be exercised in tests.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	cwd    string
	cfg    *config.Config
}

func main() {
	cwd, _ := os.Getwd()
	a := &app{stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr, cwd: cwd}
	code := a.main(os.Args[1:])
	log.Close()
	os.Exit(code)
}

func (a *app) main(args []string) int {
	logLevel := ""
	for len(args) > 0 && strings.HasPrefix(args[0], "--") {
		switch {
		case args[0] == "--log-level" && len(args) > 1:
			logLevel = args[1]
			args = args[2:]
		case strings.HasPrefix(args[0], "--log-level="):
			logLevel = strings.TrimPrefix(args[0], "--log-level=")
			args = args[1:]
		case args[0] == "--help":
			fmt.Fprintln(a.stdout, usage)
			return exitOK
		default:
			fmt.Fprintf(a.stderr, "unknown option: %s\n%s\n", args[0], usage)
			return exitUsage
		}
	}
	if len(args) < 1 {
		fmt.Fprintln(a.stderr, usage)
		return exitUsage
	}

	cfg, err := config.Load(a.cwd)
	if err != nil {
		a.printDiag(diagnostics.MakeDiag(diagnostics.EConfig, err.Error(), nil, ""), true)
		return exitUsage
	}
	if logLevel != "" {
		if !log.ValidLevel(logLevel) {
			fmt.Fprintf(a.stderr, "invalid log level: %s\n", logLevel)
			return exitUsage
		}
		cfg.LogLevel = logLevel
	}
	a.cfg = cfg
	log.InitLogger(cfg.LogLevel, cfg.LogFile, true)
	if cfg.Source != "" {
		log.Debug("loaded configuration from %s", cfg.Source)
	}

	cmd := args[0]
	log.Trace("command %s %v", cmd, args[1:])
	switch cmd {
	case "run":
		return a.cmdRun(args[1:])
	case "check":
		return a.cmdCheck(args[1:])
	case "fmt":
		return a.cmdFmt(args[1:])
	case "trace":
		return a.cmdTrace(args[1:])
	case "repl":
		return a.cmdRepl(args[1:])
	case "config":
		return a.cmdConfig(args[1:])
	case "help", "-h":
		fmt.Fprintln(a.stdout, usage)
		return exitOK
	default:
		fmt.Fprintf(a.stderr, "Unknown command: %s\n", cmd)
		return exitUsage
	}
}

func (a *app) cmdRun(args []string) int {
	var file string
	pretty := a.cfg.Pretty
	jsonOutput := false
	tracePath := ""
	budget := a.cfg.Budget()
	var vars []string

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--pretty":
			pretty = true
		case "--json":
			jsonOutput = true
			pretty = false
		case "--trace", "--var", "--time-ms", "--max-depth", "--max-iterations":
			if i+1 >= len(args) {
				fmt.Fprintf(a.stderr, "%s requires a value\n", args[i])
				return exitUsage
			}
			flagName, value := args[i], args[i+1]
			i++
			if err := applyRunFlag(flagName, value, &tracePath, &vars, &budget); err != nil {
				fmt.Fprintln(a.stderr, err)
				return exitUsage
			}
		default:
			if args[i] == "-" || !strings.HasPrefix(args[i], "-") {
				file = args[i]
			}
		}
	}

	if file == "" {
		fmt.Fprintln(a.stderr, "usage: biglisp run <file|-> [--pretty] [--json] [--trace <path>] [--var name=expr]...")
		return exitUsage
	}

	source, filename, exitCode := a.readSource(file, pretty)
	if exitCode != 0 {
		return exitCode
	}

	bindings, exitCode := a.evalVars(vars, pretty)
	if exitCode != 0 {
		return exitCode
	}

	opts := []runtime.Option{
		runtime.WithOutput(a.stdout),
		runtime.WithBindings(bindings),
		runtime.WithBudget(budget),
	}
	if tracePath != "" {
		f, err := os.Create(tracePath)
		if err != nil {
			a.printDiag(diagnostics.MakeDiag(diagnostics.EIO, fmt.Sprintf("cannot create trace file: %s", tracePath), nil, ""), pretty)
			return exitUsage
		}
		defer f.Close()
		enc := json.NewEncoder(f)
		opts = append(opts, runtime.WithRunID(filename), runtime.WithTrace(func(ev evaluator.TraceEvent) {
			_ = enc.Encode(ev)
		}))
	}
	rt := runtime.New(opts...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	log.Debug("running %s with budget %+v", filename, budget)
	result, err := rt.Run(ctx, source, filename)
	if result != nil {
		log.Debug("stats: calls=%d iterations=%d maxDepth=%d", result.Stats.Calls, result.Stats.Iterations, result.Stats.MaxDepth)
	}
	if err != nil {
		return a.reportError(err, pretty)
	}

	if jsonOutput {
		b, err := evaluator.ValueToJSON(result.Value)
		if err != nil {
			fmt.Fprintf(a.stderr, "error serializing result: %s\n", err)
			return exitRuntime
		}
		fmt.Fprintln(a.stdout, string(b))
		return exitOK
	}
	if _, isUnit := result.Value.(evaluator.Unit); !isUnit {
		fmt.Fprintln(a.stdout, evaluator.Repr(result.Value))
	}
	return exitOK
}

func applyRunFlag(name, value string, tracePath *string, vars *[]string, budget *evaluator.Budget) error {
	switch name {
	case "--trace":
		*tracePath = value
	case "--var":
		*vars = append(*vars, value)
	default:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil || n < 0 {
			return fmt.Errorf("%s expects a non-negative integer, got %q", name, value)
		}
		switch name {
		case "--time-ms":
			budget.TimeMs = n
		case "--max-depth":
			budget.MaxDepth = int(n)
		case "--max-iterations":
			budget.MaxIterations = n
		}
	}
	return nil
}

// evalVars evaluates each name=expr pair into a host binding.
func (a *app) evalVars(vars []string, pretty bool) (map[string]evaluator.Value, int) {
	bindings := make(map[string]evaluator.Value, len(vars))
	if len(vars) == 0 {
		return bindings, exitOK
	}
	rt := runtime.New(runtime.WithBudget(a.cfg.Budget()), runtime.WithOutput(io.Discard))
	for _, v := range vars {
		name, expr, ok := strings.Cut(v, "=")
		if !ok || name == "" {
			fmt.Fprintf(a.stderr, "--var expects name=expr, got %q\n", v)
			return nil, exitUsage
		}
		val, err := rt.Eval(context.Background(), expr)
		if err != nil {
			return nil, a.reportError(err, pretty)
		}
		log.Debug("bound %s = %s", name, evaluator.Repr(val))
		bindings[name] = val
	}
	return bindings, exitOK
}

func (a *app) cmdCheck(args []string) int {
	var file string
	pretty := a.cfg.Pretty

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--pretty":
			pretty = true
		case "--json":
			pretty = false
		default:
			if args[i] == "-" || !strings.HasPrefix(args[i], "-") {
				file = args[i]
			}
		}
	}

	if file == "" {
		fmt.Fprintln(a.stderr, "usage: biglisp check <file|-> [--pretty]")
		return exitUsage
	}

	source, filename, exitCode := a.readSource(file, pretty)
	if exitCode != 0 {
		return exitCode
	}

	rt := runtime.New()
	diags := rt.Check(source, filename)
	if len(diags) > 0 {
		fmt.Fprintln(a.stderr, diagnostics.FormatDiagnostics(diags, pretty))
		return exitParse
	}

	// Valid program
	if pretty {
		fmt.Fprintln(a.stdout, "No errors found.")
	} else {
		fmt.Fprintln(a.stdout, "[]")
	}
	return exitOK
}

func (a *app) cmdFmt(args []string) int {
	var file string
	write := false

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--write":
			write = true
		default:
			if !strings.HasPrefix(args[i], "-") {
				file = args[i]
			}
		}
	}

	if file == "" {
		fmt.Fprintln(a.stderr, "usage: biglisp fmt <file> [--write]")
		return exitUsage
	}

	source, filename, exitCode := a.readSource(file, a.cfg.Pretty)
	if exitCode != 0 {
		return exitCode
	}

	rt := runtime.New()
	formatted, err := rt.Format(source, filename)
	if err != nil {
		return a.reportError(err, a.cfg.Pretty)
	}

	if formatter.HasComments(source) {
		log.Warn("comments are not preserved by the formatter")
		fmt.Fprintln(a.stderr, "warning: comments are not preserved by the formatter")
	}

	if write {
		if err := os.WriteFile(file, []byte(formatted), 0644); err != nil {
			fmt.Fprintf(a.stderr, "error writing file: %s\n", err)
			return exitUsage
		}
		return exitOK
	}
	fmt.Fprint(a.stdout, formatted)
	return exitOK
}

func (a *app) cmdConfig(_ []string) int {
	if a.cfg.Source != "" {
		fmt.Fprintf(a.stdout, "# %s\n", a.cfg.Source)
	} else {
		fmt.Fprintln(a.stdout, "# defaults")
	}
	if err := a.cfg.Encode(a.stdout); err != nil {
		fmt.Fprintf(a.stderr, "error encoding configuration: %s\n", err)
		return exitUsage
	}
	return exitOK
}

// reportError prints err as a diagnostic and returns the matching exit code.
func (a *app) reportError(err error, pretty bool) int {
	var diagErr *runtime.DiagnosticError
	if errors.As(err, &diagErr) {
		fmt.Fprintln(a.stderr, diagnostics.FormatDiagnostics(diagErr.Diagnostics, pretty))
		return exitParse
	}
	var evalErr *evaluator.EvalError
	if errors.As(err, &evalErr) {
		a.printDiag(evalErr.ToDiagnostic(), pretty)
		return exitRuntime
	}
	if errors.Is(err, context.Canceled) {
		fmt.Fprintln(a.stderr, "interrupted")
		return exitRuntime
	}
	fmt.Fprintln(a.stderr, err.Error())
	return exitRuntime
}

func (a *app) printDiag(d diagnostics.Diagnostic, pretty bool) {
	fmt.Fprintln(a.stderr, diagnostics.FormatDiagnostics([]diagnostics.Diagnostic{d}, pretty))
}

func (a *app) readSource(file string, pretty bool) (string, string, int) {
	if file == "-" {
		data, err := io.ReadAll(a.stdin)
		if err != nil {
			fmt.Fprintf(a.stderr, "error reading stdin: %s\n", err)
			return "", "", exitUsage
		}
		return string(data), "<stdin>", exitOK
	}

	source, err := os.ReadFile(file)
	if err != nil {
		a.printDiag(diagnostics.MakeDiag(diagnostics.EIO, fmt.Sprintf("cannot read file: %s", file), nil, ""), pretty)
		return "", "", exitUsage
	}
	return string(source), file, exitOK
}
