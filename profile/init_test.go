package profile

import "testing"

func TestConfig_StartWithoutMode(t *testing.T) {
	p := Config{Path: t.TempDir(), Quiet: true}.Start()

	if _, ok := p.(ignore); !ok {
		t.Errorf("expected no-op profiler, got %T", p)
	}

	p.Stop()
	p.Stop()
}
