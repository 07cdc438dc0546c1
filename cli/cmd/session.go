package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/ardnew/clac/lang"
	"github.com/ardnew/clac/log"
	"github.com/ardnew/clac/pkg"
)

// newInterpreter builds the interpreter shared by every command from the
// [Environment] stored in ctx: the default registry extended with the
// configured expression builtins, and a global frame populated by the
// prelude files.
func newInterpreter(ctx context.Context) (*lang.Interpreter, error) {
	env := environmentFrom(ctx)

	reg := lang.DefaultRegistry()

	var errs []error

	for _, b := range env.Builtins {
		if _, err := reg.RegisterExpr(b); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", b.Name, err))
		}
	}

	if len(errs) > 0 {
		return nil, pkg.ErrRegisterBuiltin.Wrap(errs...)
	}

	in := lang.NewInterpreter(
		lang.WithLogger(log.Default()),
		lang.WithRegistry(reg),
	)

	if err := loadPrelude(ctx, in, env); err != nil {
		return nil, err
	}

	return in, nil
}

// loadPrelude evaluates each prelude file of env into the global frame of in,
// discarding statement values. Every failing file is reported.
func loadPrelude(ctx context.Context, in *lang.Interpreter, env Environment) error {
	if len(env.Prelude) == 0 {
		return nil
	}

	dirs := searchPath(pkg.ConfigDir(), env.PreludePath...)

	var errs []error

	for _, name := range env.Prelude {
		path, err := findPrelude(name, dirs)
		if err != nil {
			errs = append(errs, err)

			continue
		}

		src, err := os.ReadFile(path)
		if err != nil {
			errs = append(errs, pkg.ErrReadSource.Wrap(err))

			continue
		}

		err = in.Run(ctx, string(src), func(lang.Value) error { return nil })
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", path, err))

			continue
		}

		log.DebugContext(ctx, "prelude loaded", slog.String("path", path))
	}

	if len(errs) > 0 {
		return pkg.ErrPrelude.Wrap(errs...)
	}

	return nil
}
