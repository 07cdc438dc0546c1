package cli

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/alecthomas/kong"

	"github.com/ardnew/clac/cli/cmd"
	"github.com/ardnew/clac/lang"
)

type resolverCLI struct {
	LogLevel    string   `default:"warn" name:"log-level"`
	PreludePath []string `name:"prelude-path"`
	Count       int      `name:"count"`
	Ratio       float64  `name:"ratio"`
	Quiet       bool     `name:"quiet"`
}

func loadConfig(t *testing.T, src string) *config {
	t.Helper()

	var conf config

	res, err := conf.loader(t.Context())(strings.NewReader(src))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if res != &conf {
		t.Fatal("expected loader to resolve into its receiver")
	}

	return &conf
}

func TestConfig_Resolve(t *testing.T) {
	conf := loadConfig(t, strings.Join([]string{
		"log-level: debug",
		"prelude_path:",
		"  - /opt/clac",
		"  - lib",
		"count: 3",
		"ratio: 1.5",
		"quiet: true",
		"builtins:",
		"  - name: norm",
		"    params: [x, y]",
		"    expr: sqrt(x^2 + y^2)",
	}, "\n"))

	tests := []struct {
		name string
		args []string
		want resolverCLI
	}{
		{
			name: "from config",
			want: resolverCLI{
				LogLevel:    "debug",
				PreludePath: []string{"/opt/clac", "lib"},
				Count:       3,
				Ratio:       1.5,
				Quiet:       true,
			},
		},
		{
			name: "flags override config",
			args: []string{"--log-level=error", "--count=7"},
			want: resolverCLI{
				LogLevel:    "error",
				PreludePath: []string{"/opt/clac", "lib"},
				Count:       7,
				Ratio:       1.5,
				Quiet:       true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cli resolverCLI

			parser, err := kong.New(&cli, kong.Resolvers(conf))
			if err != nil {
				t.Fatal(err)
			}

			if _, err := parser.Parse(tt.args); err != nil {
				t.Fatalf("parse: %v", err)
			}

			if cli.LogLevel != tt.want.LogLevel ||
				!slices.Equal(cli.PreludePath, tt.want.PreludePath) ||
				cli.Count != tt.want.Count ||
				cli.Ratio != tt.want.Ratio ||
				cli.Quiet != tt.want.Quiet {
				t.Errorf("expected %+v, got %+v", tt.want, cli)
			}
		})
	}

	want := []lang.ExprBuiltin{
		{Name: "norm", Params: []string{"x", "y"}, Expr: "sqrt(x^2 + y^2)"},
	}

	if len(conf.Builtins) != 1 ||
		conf.Builtins[0].Name != want[0].Name ||
		conf.Builtins[0].Expr != want[0].Expr ||
		!slices.Equal(conf.Builtins[0].Params, want[0].Params) {
		t.Errorf("expected builtins %v, got %v", want, conf.Builtins)
	}

	if _, ok := conf.flags[cmd.BuiltinsKey]; ok {
		t.Error("expected builtins to be removed from flag values")
	}
}

func TestConfig_InvalidYAML(t *testing.T) {
	conf := loadConfig(t, "log-level: [unclosed\n")

	if len(conf.flags) != 0 || len(conf.Builtins) != 0 {
		t.Errorf("expected empty config, got %+v", conf)
	}

	var cli resolverCLI

	parser, err := kong.New(&cli, kong.Resolvers(conf))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := parser.Parse(nil); err != nil {
		t.Fatalf("parse: %v", err)
	}

	if cli.LogLevel != "warn" {
		t.Errorf("expected default log level, got %q", cli.LogLevel)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name     string
		builtins []lang.ExprBuiltin
		wantErr  bool
	}{
		{"none", nil, false},
		{"complete", []lang.ExprBuiltin{{Name: "one", Expr: "1"}}, false},
		{"missing name", []lang.ExprBuiltin{{Expr: "1"}}, true},
		{"missing expr", []lang.ExprBuiltin{{Name: "f", Params: []string{"x"}}}, true},
		{"blank expr", []lang.ExprBuiltin{{Name: "f", Expr: "  "}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conf := &config{Builtins: tt.builtins}

			err := conf.Validate(nil)
			if tt.wantErr != errors.Is(err, cmd.ErrInvalidBuiltin) {
				t.Errorf("unexpected error %v", err)
			}

			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error %v", err)
			}
		})
	}
}

func TestFlagValue(t *testing.T) {
	tests := []struct {
		in   any
		want any
	}{
		{uint64(42), "42"},
		{int64(-3), "-3"},
		{7, "7"},
		{2.5, "2.5"},
		{true, true},
		{"text", "text"},
	}

	for _, tt := range tests {
		if got := flagValue(tt.in); got != tt.want {
			t.Errorf("flagValue(%v): expected %v, got %v", tt.in, tt.want, got)
		}
	}

	list, ok := flagValue([]any{uint64(1), "a"}).([]any)
	if !ok || len(list) != 2 || list[0] != "1" || list[1] != "a" {
		t.Errorf("unexpected list conversion %v", list)
	}
}
