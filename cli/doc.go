// Package cli contains the command line interface for clac.
//
// # Usage
//
// The default command evaluates its arguments as one program and prints
// each result on its own line:
//
//	clac 'hyp(a, b) = sqrt(a^2 + b^2), hyp(3, 4)'
//	clac -f lib.clac -f main.clac
//	echo '1 + 2' | clac
//
// With no arguments and a terminal on stdin, clac starts the interactive
// REPL. See the cmd package for the subcommands.
//
// # Configuration
//
// Flag values are read from config.yaml (and config.json) in the user
// configuration directory. Keys are flag names. The YAML file may also
// declare expression builtins:
//
//	log-level: info
//	prelude: [units]
//	builtins:
//	  - name: norm
//	    params: [x, y]
//	    expr: sqrt(x^2 + y^2)
//
// Run "clac init" to write the current flag values as a starting point.
// Command-line flags override config file values.
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (json, text)
//   - --log-time-layout: Set timestamp format (RFC3339, RFC3339Nano, etc.)
//   - --log-caller: Include caller information in log output
//   - --log-pretty: Colorize log output
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o clac .
//
//   - --pprof-mode: Enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: Set profile output directory (default ~/.cache/clac/pprof)
package cli
