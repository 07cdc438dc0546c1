package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/ardnew/clac/lang"
	"github.com/ardnew/clac/pkg"
)

// Fmt parses a program and writes it back out in the chosen format.
type Fmt struct {
	Native Native `cmd:"" default:"withargs" help:"Format as canonical clac syntax (default)."`
	JSON   JSON   `cmd:""                    help:"Format as JSON."`
	YAML   YAML   `cmd:""                    help:"Format as YAML."`
	AST    AST    `cmd:""                    help:"Format as abstract syntax tree."`
}

// Input names the program a fmt subcommand reads.
type Input struct {
	Source string `arg:"" default:"-" help:"Source input file or '-' for --file sources, or stdin." name:"source"`

	stdin  io.Reader
	stdout io.Writer
}

// parse reads and parses the selected source. The default source "-" reads
// the --file sources when any were given, and stdin otherwise.
func (s *Input) parse(ctx context.Context, format string) (*lang.AST, error) {
	var r io.Reader

	switch files := sourceFilesFrom(ctx); {
	case s.Source != stdinSource:
		file, err := os.Open(s.Source)
		if err != nil {
			return nil, pkg.ErrReadSource.Wrap(err)
		}
		defer file.Close()

		r = file

	case files != nil && !files.IsZero():
		r = files

	case s.stdin != nil:
		r = s.stdin

	default:
		r = os.Stdin
	}

	ast, err := lang.ParseReader(ctx, r)
	if err != nil {
		return nil, lang.WrapError(err).
			With(slog.String("format", format))
	}

	return ast, nil
}

func (s *Input) output() io.Writer {
	if s.stdout != nil {
		return s.stdout
	}

	return os.Stdout
}

// Native formats input as canonical clac syntax.
type Native struct {
	Indent int `default:"0" help:"Indent width; 0 writes each block on one line" short:"i"`

	Input
}

// Run executes the native format command.
func (f *Native) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	ast, err := f.parse(ctx, "native")
	if err != nil {
		return err
	}

	return ast.Format(ctx, f.output(), f.Indent)
}

// JSON formats the syntax tree of the input as JSON.
type JSON struct {
	Indent int `default:"2" help:"Indent width for JSON output" short:"i"`

	Input
}

// Run executes the json command.
func (j *JSON) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	ast, err := j.parse(ctx, "json")
	if err != nil {
		return err
	}

	return ast.FormatJSON(ctx, j.output(), j.Indent)
}

// YAML formats the syntax tree of the input as YAML.
type YAML struct {
	Indent int `default:"2" help:"Indent width for YAML output; 0 selects flow style" short:"i"`

	Input
}

// Run executes the yaml command.
func (y *YAML) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	ast, err := y.parse(ctx, "yaml")
	if err != nil {
		return err
	}

	return ast.FormatYAML(ctx, y.output(), y.Indent)
}

// AST prints the syntax tree of the input as an indented outline.
type AST struct {
	Input
}

// Run executes the ast command.
func (a *AST) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	ast, err := a.parse(ctx, "ast")
	if err != nil {
		return err
	}

	ast.Print(a.output())

	return nil
}
