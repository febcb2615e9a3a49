// Package repl is the interactive gocas shell.
package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"
	"go.uber.org/zap"
	"golang.org/x/exp/slices"

	gocas "github.com/njchilds90/gocas"
	"github.com/njchilds90/gocas/internal/logging"
	"github.com/njchilds90/gocas/plot"
)

const (
	prompt             = "gocas> "
	continuationPrompt = "   ... "
)

const helpText = `Enter an expression to see it simplified, or a command:
  :d <var> <expr>     derivative with respect to var
  :i <var> <expr>     antiderivative with respect to var
  :s <expr>           simplify
  :gnuplot <expr>     render with ** for exponentiation
  :json <expr>        show the JSON form
  :plot <expr>        plot with gnuplot
  :help               show this help
  :quit               exit (Ctrl+D also works)`

var commands = []string{":d", ":i", ":s", ":gnuplot", ":json", ":plot", ":help", ":quit"}

// REPL evaluates gocas commands read from a terminal.
type REPL struct {
	Out         io.Writer
	Parser      *gocas.Parser
	Plotter     *plot.Plotter
	PlotOptions plot.Options
	// HistoryFile persists line history; empty disables it.
	HistoryFile string
	Logger      *zap.Logger
}

func (r *REPL) logger() *zap.Logger { return logging.OrNop(r.Logger) }

func (r *REPL) parse(text string) (gocas.Expr, error) {
	if r.Parser == nil {
		return gocas.Parse(text)
	}
	return r.Parser.Parse(text)
}

// Run reads lines until :quit, Ctrl+D or ctx is done.
func (r *REPL) Run(ctx context.Context) error {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	line.SetCompleter(complete)

	if r.HistoryFile != "" {
		if f, err := os.Open(r.HistoryFile); err == nil {
			_, _ = line.ReadHistory(f)
			f.Close()
		}
		defer func() {
			f, err := os.Create(r.HistoryFile)
			if err != nil {
				r.logger().Warn("failed to save history", zap.Error(err))
				return
			}
			_, _ = line.WriteHistory(f)
			f.Close()
		}()
	}

	fmt.Fprintln(r.Out, "gocas symbolic algebra shell. Type :help for commands.")

	var buf strings.Builder
	for ctx.Err() == nil {
		p := prompt
		if buf.Len() > 0 {
			p = continuationPrompt
		}
		input, err := line.Prompt(p)
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) {
				buf.Reset()
				fmt.Fprintln(r.Out, "^C")
				continue
			}
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(r.Out)
				return nil
			}
			return fmt.Errorf("read input: %w", err)
		}

		if buf.Len() > 0 {
			buf.WriteString(" ")
		}
		buf.WriteString(input)
		text := buf.String()
		if needsMoreInput(text) {
			continue
		}
		buf.Reset()

		if strings.TrimSpace(text) == "" {
			continue
		}
		line.AppendHistory(text)
		if quit := r.Exec(ctx, text); quit {
			return nil
		}
	}
	return ctx.Err()
}

// Exec evaluates one input line and writes the result to r.Out. It reports
// whether the user asked to quit.
func (r *REPL) Exec(ctx context.Context, input string) (quit bool) {
	input = strings.TrimSpace(input)
	if !strings.HasPrefix(input, ":") {
		r.show(r.simplify(input))
		return false
	}

	cmd, rest, _ := strings.Cut(input, " ")
	rest = strings.TrimSpace(rest)
	switch cmd {
	case ":quit", ":q":
		return true
	case ":help", ":h", ":?":
		fmt.Fprintln(r.Out, helpText)
	case ":s":
		r.show(r.simplify(rest))
	case ":d":
		r.show(r.withVar(rest, gocas.Diff))
	case ":i":
		r.show(r.withVar(rest, func(e gocas.Expr, v string) (gocas.Expr, error) {
			return gocas.Integrate(e, v), nil
		}))
	case ":gnuplot":
		e, err := r.parse(rest)
		if err != nil {
			r.fail(err)
			break
		}
		fmt.Fprintln(r.Out, gocas.RenderString(e, gocas.Gnuplot))
	case ":json":
		e, err := r.parse(rest)
		if err != nil {
			r.fail(err)
			break
		}
		j, err := gocas.ToJSON(e)
		if err != nil {
			r.fail(err)
			break
		}
		fmt.Fprintln(r.Out, j)
	case ":plot":
		r.plot(ctx, rest)
	default:
		fmt.Fprintf(r.Out, "unknown command %s (type :help for commands)\n", cmd)
	}
	return false
}

func (r *REPL) simplify(text string) (gocas.Expr, error) {
	e, err := r.parse(text)
	if err != nil {
		return nil, err
	}
	return gocas.Simplify(e)
}

// withVar splits "<var> <expr>" and applies op.
func (r *REPL) withVar(args string, op func(gocas.Expr, string) (gocas.Expr, error)) (gocas.Expr, error) {
	v, text, ok := strings.Cut(args, " ")
	if !ok || v == "" || strings.TrimSpace(text) == "" {
		return nil, errors.New("usage: <var> <expr>")
	}
	e, err := r.parse(text)
	if err != nil {
		return nil, err
	}
	return op(e, v)
}

func (r *REPL) plot(ctx context.Context, text string) {
	if r.Plotter == nil {
		fmt.Fprintln(r.Out, "error: plotting is not configured")
		return
	}
	e, err := r.parse(text)
	if err != nil {
		r.fail(err)
		return
	}
	if err := r.Plotter.Plot(ctx, e, r.PlotOptions); err != nil {
		r.fail(err)
	}
}

func (r *REPL) show(e gocas.Expr, err error) {
	if err != nil {
		r.fail(err)
		return
	}
	fmt.Fprintln(r.Out, gocas.String(e))
}

func (r *REPL) fail(err error) {
	r.logger().Debug("command failed", zap.Error(err))
	fmt.Fprintf(r.Out, "error: %v\n", err)
}

// completionWords are the command names and the functions with known rules.
var completionWords = func() []string {
	words := append([]string{"abs", "integrate"}, gocas.DifferentiableFunctions()...)
	words = append(words, commands...)
	slices.Sort(words)
	return slices.Compact(words)
}()

// complete returns line with its last word replaced by each completion.
func complete(line string) []string {
	if line == "" || strings.HasSuffix(line, " ") {
		return nil
	}
	start := strings.LastIndexFunc(line, func(r rune) bool {
		return !(r == ':' || r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9')
	}) + 1
	prefix, word := line[:start], line[start:]
	if word == "" {
		return nil
	}
	var out []string
	for _, w := range completionWords {
		if strings.HasPrefix(w, word) {
			out = append(out, prefix+w)
		}
	}
	return out
}

// needsMoreInput reports whether text has unclosed ( or [.
func needsMoreInput(text string) bool {
	depth := 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '(', '[':
			depth++
		case ')', ']':
			depth--
		}
	}
	return depth > 0
}
