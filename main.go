package main

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/ardnew/clac/cli"
	"github.com/ardnew/clac/cli/cmd"
	"github.com/ardnew/clac/log"
)

func main() {
	err := cli.Run(context.Background(), os.Exit, os.Args[1:]...)

	switch {
	case err == nil:

	case errors.Is(err, cmd.ErrEvaluation):
		// Already reported on stderr.
		os.Exit(1)

	default:
		log.Error(
			"run failed",
			slog.Any("error", err),
		) // slog automatically uses LogValue()
		os.Exit(1)
	}
}
