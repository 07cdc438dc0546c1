package profile

// Profiler is a running profiling session.
type Profiler interface {
	// Stop flushes the profile to disk. It is safe to call more than once.
	Stop()
}

// Config describes a profiling session.
type Config struct {
	Mode  string // one of [Modes]; empty disables profiling
	Path  string // output directory; empty uses the working directory
	Quiet bool   // suppress the profiler's own log messages
}

// Start begins profiling as configured. Without the pprof build tag, or with
// an empty or unknown mode, the returned Profiler does nothing.
func (c Config) Start() Profiler {
	if c.Mode == "" {
		return ignore{}
	}

	return start(c)
}

type ignore struct{}

func (ignore) Stop() {}
