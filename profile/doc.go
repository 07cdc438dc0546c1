// Package profile provides optional runtime profiling for clac.
//
// It wraps [github.com/pkg/profile] behind the "pprof" build tag. Without the
// tag, [Config.Start] always returns a no-op and [Modes] is empty, so the
// interpreter carries no profiling code at all.
//
//	go build -tags pprof .
//	clac --pprof-mode cpu 'fib(n) = n < 2 ? n : fib(n-1) + fib(n-2), fib(25)'
//	go tool pprof ~/.cache/clac/pprof/cpu.pprof
//
// Profiles are written to the --pprof-dir directory (by default the pprof
// subdirectory of the user cache directory).
package profile

// Tag is the build tag required to enable pprof profiling.
const Tag = `pprof`
