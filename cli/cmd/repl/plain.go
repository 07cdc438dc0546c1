package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/ardnew/clac/lang"
	"github.com/ardnew/clac/log"
)

// prompter reads one line of input. It is satisfied by [liner.State].
type prompter interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
}

// plain is a line-oriented session. Lines starting with ':' are commands
// unless they continue unfinished input.
type plain struct {
	in      *lang.Interpreter
	out     io.Writer
	history *History
	logger  log.Logger
	pending string
}

// RunPlain starts a line-oriented REPL on the given interpreter, writing
// results and errors to w. It works without a capable terminal, reading
// plain lines from stdin.
func RunPlain(
	ctx context.Context,
	in *lang.Interpreter,
	cacheDir string,
	w io.Writer,
	logger log.Logger,
) error {
	history := NewHistory(filepath.Join(cacheDir, baseHistory))
	if err := history.Load(); err != nil {
		logger.WarnContext(ctx, "could not load history",
			slog.String("path", history.path),
			slog.String("error", err.Error()))
	}

	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	line.SetTabCompletionStyle(liner.TabPrints)
	line.SetWordCompleter(func(s string, pos int) (string, []string, string) {
		return complete(in, s, pos)
	})

	for _, l := range history.Lines(modeEval) {
		line.AppendHistory(l)
	}

	p := &plain{in: in, out: w, history: history, logger: logger}

	return p.loop(ctx, line)
}

func (p *plain) loop(ctx context.Context, line prompter) error {
	fmt.Fprintln(p.out, Banner)

	for {
		if ctx.Err() != nil {
			return context.Cause(ctx)
		}

		prompt := evalPrompt
		if p.pending != "" {
			prompt = contPrompt
		}

		text, err := line.Prompt(prompt)

		switch {
		case errors.Is(err, liner.ErrPromptAborted):
			p.pending = ""

			continue

		case errors.Is(err, io.EOF):
			fmt.Fprintln(p.out)

			return nil

		case err != nil:
			return err
		}

		if quit := p.handle(ctx, line, text); quit {
			return nil
		}
	}
}

// handle processes one line of input and reports whether the session should
// end.
func (p *plain) handle(ctx context.Context, line prompter, text string) bool {
	input := strings.TrimSpace(text)

	if p.pending == "" {
		if input == "" {
			return false
		}

		if cmd, ok := strings.CutPrefix(input, ":"); ok {
			return p.command(strings.TrimSpace(cmd))
		}
	}

	if input != "" {
		line.AppendHistory(input)

		if _, err := p.history.Write(input); err != nil {
			p.logger.DebugContext(ctx, "could not write history",
				slog.String("error", err.Error()))
		}
	}

	src := text
	if p.pending != "" {
		src = p.pending + "\n" + text
	}

	ast, err := lang.ParseString(ctx, src, lang.WithLogger(p.logger))
	if lang.IsIncomplete(err) {
		p.pending = src

		return false
	}

	p.pending = ""

	if err == nil {
		err = p.in.RunAST(ctx, ast, func(v lang.Value) error {
			_, err := fmt.Fprintln(p.out, lang.FormatValue(v))

			return err
		})
	}

	if err != nil {
		fmt.Fprintln(p.out, "Error: "+lang.Describe(err))
	}

	return false
}

func (p *plain) command(cmd string) bool {
	switch cmd {
	case "q", "quit", "exit":
		return true

	case "h", "help", "?":
		fmt.Fprintln(p.out, strings.Join([]string{
			"  :help      Print this cruft",
			"  :list      List global bindings",
			"  :builtins  List builtin functions",
			"  :quit      Exit REPL",
		}, "\n"))

	case "l", "list", "vars":
		for name, v := range p.in.Global().All() {
			fmt.Fprintf(p.out, "  %s %s\n", name, formatPreview(v))
		}

	case "b", "builtins":
		for _, name := range p.in.Registry().Names() {
			if signature, _ := getSignature(p.in, name); signature != "" {
				fmt.Fprintf(p.out, "  %s\n", signature)
			}
		}

	default:
		fmt.Fprintf(p.out, "Unknown command: %s (try ':help')\n", cmd)
	}

	return false
}

// complete implements [liner.WordCompleter] by prefix-matching the word at
// pos against the names visible in the session.
func complete(in *lang.Interpreter, s string, pos int) (string, []string, string) {
	word, start, end := wordBounds(s, pos)
	if word == "" {
		return s[:pos], nil, s[pos:]
	}

	var out []string

	for _, name := range candidates(in) {
		if strings.HasPrefix(name, word) {
			out = append(out, name)
		}
	}

	return s[:start], out, s[end:]
}
