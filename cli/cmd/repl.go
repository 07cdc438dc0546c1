package cmd

import (
	"context"
	"os"

	"github.com/ardnew/clac/cli/cmd/repl"
	"github.com/ardnew/clac/log"
	"github.com/ardnew/clac/pkg"
)

// Repl starts an interactive session. Definitions persist across inputs.
type Repl struct {
	Plain bool `help:"Use a line-oriented prompt instead of the full-screen editor (implied when stdin is not a terminal)"`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	in, err := newInterpreter(ctx)
	if err != nil {
		return err
	}

	// Sources given with --file are evaluated before the first prompt.
	if files := sourceFilesFrom(ctx); files != nil && !files.IsZero() {
		if err := (&Eval{}).exec(ctx, in, files, "file"); err != nil {
			return err
		}
	}

	if r.Plain || !isTerminal(os.Stdin) {
		return repl.RunPlain(ctx, in, pkg.CacheDir(), os.Stdout, log.Default())
	}

	return repl.Run(ctx, in, pkg.CacheDir(), log.Default())
}
