package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestPackage_LogFunctions_UseDefaultLogger(t *testing.T) {
	original := Default()
	t.Cleanup(func() { SetDefault(original) })

	var buf bytes.Buffer

	SetDefault(Make(&buf, WithLevel(LevelTrace), WithFormat(FormatJSON), WithPretty(false)))

	tests := []struct {
		name  string
		fn    func(string, ...slog.Attr)
		level string
		msg   string
	}{
		{"Trace", Trace, "TRACE", "trace message"},
		{"Debug", Debug, "DEBUG", "debug message"},
		{"Info", Info, "INFO", "info message"},
		{"Warn", Warn, "WARN", "warn message"},
		{"Error", Error, "ERROR", "error message"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			tt.fn(tt.msg, slog.String("key", "value"))

			output := buf.String()

			for _, want := range []string{tt.msg, `"level":"` + tt.level + `"`, `"key":"value"`} {
				if !strings.Contains(output, want) {
					t.Errorf("expected output to contain %q, got: %s", want, output)
				}
			}
		})
	}
}

func TestPackage_Config_WrapsDefault(t *testing.T) {
	original := Default()
	t.Cleanup(func() { SetDefault(original) })

	var buf bytes.Buffer

	SetDefault(Make(&buf, WithPretty(false)))
	Config(WithLevel(LevelDebug), WithFormat(FormatJSON))

	if Default().Level() != LevelDebug || Default().Format() != FormatJSON {
		t.Fatalf("expected debug/json, got %v/%v", Default().Level(), Default().Format())
	}

	DebugContext(t.Context(), "configured")

	if !strings.Contains(buf.String(), `"msg":"configured"`) {
		t.Errorf("expected reconfigured logger to keep its output, got: %s", buf.String())
	}
}

func TestPackage_Caller_ReportsCallSite(t *testing.T) {
	original := Default()
	t.Cleanup(func() { SetDefault(original) })

	var buf bytes.Buffer

	SetDefault(Make(&buf, WithCaller(true), WithPretty(false)))
	Warn("where")

	if !strings.Contains(buf.String(), "pkg_test.go") {
		t.Errorf("expected source in pkg_test.go, got: %s", buf.String())
	}

	buf.Reset()
	Default().Warn("where")

	if !strings.Contains(buf.String(), "pkg_test.go") {
		t.Errorf("expected source in pkg_test.go, got: %s", buf.String())
	}
}
