package cli

import (
	"context"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/clac/cli/cmd"
	"github.com/ardnew/clac/pkg"
)

// CLI is the top-level command-line interface for clac.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	File        []string `help:"Source file(s) to evaluate, or '-' for stdin" name:"file"         short:"f" type:"existingfile"`
	Prelude     []string `help:"Prelude file(s) evaluated before any input"    name:"prelude"      short:"P"`
	PreludePath []string `help:"Directories searched for prelude files"        name:"prelude-path"           type:"path"`

	Version kong.VersionFlag `help:"Print version and exit" short:"V"`

	Eval cmd.Eval `cmd:"" default:"withargs" help:"Evaluate expressions"`
	Repl cmd.Repl `cmd:""                    help:"Start an interactive session"`
	Fmt  cmd.Fmt  `cmd:""                    help:"Format a program"`
	Init cmd.Init `cmd:""                    help:"Initialize configuration file"`
}

// Run executes the clac CLI with the given context and arguments.
// The exit function is called with the appropriate exit code upon completion.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	var (
		cli  CLI
		conf config
	)

	err := mkdirAllRequired()
	if err != nil {
		return err
	}

	configFilePath := configPath(baseConfig + ".yaml")

	vars := kong.Vars{
		"version":            strings.TrimSpace(pkg.Version),
		cmd.ConfigIdentifier: configFilePath,
		cmd.CacheIdentifier:  pkg.CacheDir(),
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Pre-scan for logger flags so the logger is configured before parsing,
	// regardless of flag position.
	cli.Log.scan(args)

	parser, err := kong.New(&cli,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups(
			[]kong.Group{cli.Log.group(), cli.Pprof.group()},
		),
		kong.BindSingletonProvider(func() context.Context {
			return ctx
		}),
		kong.ConfigureHelp(
			kong.HelpOptions{
				Compact:             true,
				Summary:             true,
				Tree:                true,
				FlagsLast:           false,
				NoAppSummary:        false,
				NoExpandSubcommands: true,
			}),
		kong.Configuration(kong.JSON, configPath(baseConfig+".json")),
		kong.Configuration(conf.loader(ctx), configFilePath),
		vars,
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(operandArgs(parser.Model, args))
	if err != nil {
		return err
	}

	cli.Log.start(ctx)

	// Stuff additional context values for use by commands
	ctx = cmd.WithContext(ctx, ktx)
	ctx = cmd.WithEnvironment(ctx, cmd.Environment{
		Builtins:    conf.Builtins,
		Prelude:     cli.Prelude,
		PreludePath: cli.PreludePath,
	})

	ctx, errs := cmd.WithSourceFiles(ctx, cli.File)
	if len(errs) > 0 {
		return pkg.ErrReadSource.Wrap(errs...)
	}

	// [pprofConfig.start] is no-op unless built with tag pprof and enabled.
	defer cli.Pprof.start(ctx)()

	return ktx.Run(ctx, &cli)
}
