package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/clac/lang"
)

type initCLI struct {
	Prelude []string `name:"prelude"`
	Level   string   `default:"warn" name:"level"`
	Output  string   `name:"output"`
	Count   int      `default:"3"    name:"count"`
	Secret  string   `default:"x"    hidden:""       name:"secret"`

	Init Init `cmd:""`
}

func TestInit_Run(t *testing.T) {
	tests := []struct {
		name    string
		force   bool
		exists  bool
		wantErr error
	}{
		{name: "create", force: false, exists: false},
		{name: "overwrite with force", force: true, exists: true},
		{name: "refuse existing", force: false, exists: true, wantErr: ErrFileExists},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")

			if tt.exists {
				if err := os.WriteFile(path, []byte("existing: true\n"), 0o600); err != nil {
					t.Fatal(err)
				}
			}

			var cli initCLI

			parser, err := kong.New(&cli, kong.Vars{ConfigIdentifier: path})
			if err != nil {
				t.Fatal(err)
			}

			kctx, err := parser.Parse([]string{"--prelude=base", "--prelude=units", "init"})
			if err != nil {
				t.Fatal(err)
			}

			ctx := WithContext(t.Context(), kctx)
			ctx = WithEnvironment(ctx, Environment{
				Builtins: []lang.ExprBuiltin{{Name: "cube", Params: []string{"x"}, Expr: "x^3"}},
			})

			err = (&Init{Force: tt.force}).Run(ctx)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}

				data, _ := os.ReadFile(path)
				if string(data) != "existing: true\n" {
					t.Errorf("existing file was modified: %q", data)
				}

				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatal(err)
			}

			var doc struct {
				Prelude  []string           `yaml:"prelude"`
				Level    string             `yaml:"level"`
				Count    int                `yaml:"count"`
				Builtins []lang.ExprBuiltin `yaml:"builtins"`
			}

			if err := yaml.Unmarshal(data, &doc); err != nil {
				t.Fatalf("invalid YAML %q: %v", data, err)
			}

			if strings.Join(doc.Prelude, ",") != "base,units" {
				t.Errorf("unexpected prelude %v", doc.Prelude)
			}

			if doc.Level != "warn" || doc.Count != 3 {
				t.Errorf("unexpected flag values: level=%q count=%d", doc.Level, doc.Count)
			}

			if len(doc.Builtins) != 1 || doc.Builtins[0].Name != "cube" {
				t.Errorf("unexpected builtins %v", doc.Builtins)
			}

			for _, absent := range []string{"output:", "secret:", "help:"} {
				if strings.Contains(string(data), absent) {
					t.Errorf("expected %q to be omitted:\n%s", absent, data)
				}
			}
		})
	}
}

func TestInit_EmptyBuiltins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	var cli initCLI

	parser, err := kong.New(&cli, kong.Vars{ConfigIdentifier: path})
	if err != nil {
		t.Fatal(err)
	}

	kctx, err := parser.Parse([]string{"init"})
	if err != nil {
		t.Fatal(err)
	}

	if err := (&Init{}).Run(WithContext(t.Context(), kctx)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(string(data), "builtins: []") {
		t.Errorf("expected empty builtins list:\n%s", data)
	}
}
