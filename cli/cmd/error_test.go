package cmd

import (
	"errors"
	"io/fs"
	"log/slog"
	"testing"
)

func TestError(t *testing.T) {
	err := ErrWriteConfig.
		With(slog.String("file", "config.yaml")).
		Wrap(fs.ErrPermission)

	if err.Error() != "write configuration file: permission denied" {
		t.Errorf("unexpected message %q", err.Error())
	}

	if !errors.Is(err, ErrWriteConfig) || !errors.Is(err, fs.ErrPermission) {
		t.Errorf("expected %v to match its sentinel and cause", err)
	}

	if errors.Is(err, ErrYAMLMarshal) {
		t.Error("expected no match with an unrelated sentinel")
	}

	if len(ErrWriteConfig.attrs) != 0 || ErrWriteConfig.err != nil {
		t.Error("expected sentinel to be unchanged")
	}

	group := err.LogValue().Group()
	if len(group) != 3 || group[2].Key != "file" {
		t.Errorf("unexpected log value %v", group)
	}
}
