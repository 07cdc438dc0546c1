package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/ardnew/clac/cli/cmd/repl"
	"github.com/ardnew/clac/lang"
	"github.com/ardnew/clac/log"
	"github.com/ardnew/clac/pkg"
)

// Eval evaluates source files and command-line expressions in order on one
// interpreter, printing the value of every top-level statement.
//
// With neither files nor arguments, Eval reads stdin as a single program, or
// starts the REPL when stdin is a terminal.
type Eval struct {
	Expr []string `arg:"" help:"Expression to evaluate (arguments are joined with spaces)" name:"expr" optional:""`

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// Run executes the eval command.
func (e *Eval) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	in, err := newInterpreter(ctx)
	if err != nil {
		return err
	}

	files := sourceFilesFrom(ctx)
	hasFiles := files != nil && !files.IsZero()

	if !hasFiles && len(e.Expr) == 0 {
		if e.interactive() {
			log.TraceContext(ctx, "eval falling back to repl")

			return repl.Run(ctx, in, pkg.CacheDir(), log.Default())
		}

		return e.exec(ctx, in, e.input(), "stdin")
	}

	if hasFiles {
		if err := e.exec(ctx, in, files, "file"); err != nil {
			return err
		}
	}

	if len(e.Expr) > 0 {
		return e.exec(ctx, in, strings.NewReader(strings.Join(e.Expr, " ")), "args")
	}

	return nil
}

// exec parses and evaluates everything read from r. A failing program is
// reported on stderr the same way regardless of where it came from.
func (e *Eval) exec(
	ctx context.Context,
	in *lang.Interpreter,
	r io.Reader,
	origin string,
) error {
	log.TraceContext(ctx, "eval", slog.String("origin", origin))

	ast, err := lang.ParseReader(ctx, r, lang.WithLogger(in.Logger()))
	if err == nil {
		out := e.output()

		err = in.RunAST(ctx, ast, func(v lang.Value) error {
			_, err := fmt.Fprintln(out, lang.FormatValue(v))

			return err
		})
	}

	if err != nil {
		fmt.Fprintln(e.errOutput(), "Error: "+lang.Describe(err))

		return ErrEvaluation.
			With(slog.String("origin", origin)).
			Wrap(err)
	}

	return nil
}

func (e *Eval) interactive() bool {
	if e.stdin != nil {
		return false
	}

	return isTerminal(os.Stdin)
}

func isTerminal(f *os.File) bool {
	fd := f.Fd()

	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func (e *Eval) input() io.Reader {
	if e.stdin != nil {
		return e.stdin
	}

	return os.Stdin
}

func (e *Eval) output() io.Writer {
	if e.stdout != nil {
		return e.stdout
	}

	return os.Stdout
}

func (e *Eval) errOutput() io.Writer {
	if e.stderr != nil {
		return e.stderr
	}

	return os.Stderr
}
