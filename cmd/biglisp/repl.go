package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/thomasrohde/biglisp/go/internal/log"
	"github.com/thomasrohde/biglisp/go/pkg/evaluator"
	"github.com/thomasrohde/biglisp/go/pkg/parser"
	"github.com/thomasrohde/biglisp/go/pkg/runtime"
)

const (
	promptMain = "biglisp> "
	promptCont = "     ... "
	banner     = "BigLisp REPL\nCtrl+C cancels input, Ctrl+D exits. Type :quit to exit."
)

// prompter is the part of *liner.State the read loop needs.
type prompter interface {
	Prompt(prompt string) (string, error)
}

func (a *app) cmdRepl(_ []string) int {
	fmt.Fprintln(a.stdout, banner)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	histPath := a.cfg.HistoryPath()
	if histPath != "" {
		if f, err := os.Open(histPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
		defer func() {
			if err := os.MkdirAll(filepath.Dir(histPath), 0o755); err != nil {
				log.Warn("cannot create history directory: %v", err)
				return
			}
			if f, err := os.Create(histPath); err == nil {
				_, _ = ln.WriteHistory(f)
				_ = f.Close()
			}
		}()
	}

	rt := runtime.New(runtime.WithOutput(a.stdout), runtime.WithBudget(a.cfg.Budget()))
	return a.replLoop(ln, rt.NewSession(), ln.AppendHistory)
}

func (a *app) replLoop(p prompter, session *runtime.Session, remember func(string)) int {
	for {
		code, ok := readByParseProbe(p, promptMain, promptCont)
		if !ok {
			fmt.Fprintln(a.stdout)
			return exitOK
		}

		trimmed := strings.TrimSpace(code)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, ":") {
			switch strings.ToLower(trimmed) {
			case ":quit":
				return exitOK
			case ":env":
				fmt.Fprintln(a.stdout, strings.Join(session.Names(), " "))
			default:
				fmt.Fprintln(a.stdout, "unknown command. Type :quit to exit.")
			}
			continue
		}

		remember(strings.ReplaceAll(code, "\n", " "))
		a.evalEntry(session, code)
	}
}

func (a *app) evalEntry(session *runtime.Session, code string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	result, err := session.Run(ctx, code, "<repl>")
	if err != nil {
		a.reportError(err, true)
		return
	}
	fmt.Fprintln(a.stdout, evaluator.Repr(result.Value))
}

// readByParseProbe reads lines until they form a complete program. Input that
// fails to parse for any reason other than ending early is returned as is so
// the error is reported. The second result is false at end of input.
func readByParseProbe(p prompter, prompt, cont string) (string, bool) {
	var b strings.Builder

	for {
		var line string
		var err error
		if b.Len() == 0 {
			line, err = p.Prompt(prompt)
		} else {
			line, err = p.Prompt(cont)
		}
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			// Ctrl+C discards the pending entry
			return "", true
		}
		if err != nil {
			return "", false
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		_, perr := parser.ParseProgram(src, "<repl>")
		if perr != nil && parser.IsIncomplete(perr) {
			continue
		}
		return src, true
	}
}
