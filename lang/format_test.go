package lang

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestAST_Format(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		indent int
		want   string
	}{
		{"empty", "", 0, "\n"},
		{"arithmetic", "1+2*3", 0, "1 + 2 * 3\n"},
		{"juxtaposed", "1 2 3", 0, "1, 2, 3\n"},
		{"groups kept", "(1+2)*3", 0, "(1 + 2) * 3\n"},
		{"unary", "- -x, !!true", 0, "--x, !!true\n"},
		{"signature", "f(x)=x*x", 0, "f(x) = x * x\n"},
		{"nullary signature", "g()=1", 0, "g() = 1\n"},
		{"bare parameter", "(x)->x", 0, "x -> x\n"},
		{"parameter list", "(a,b,)->a", 0, "(a, b) -> a\n"},
		{"nullary function", "()->1", 0, "() -> 1\n"},
		{"call", "f(1,2,)", 0, "f(1, 2)\n"},
		{"conditional", "a?b:c", 0, "a ? b : c\n"},
		{"number lexeme", "3. + 007", 0, "3. + 007\n"},
		{"block", "x=1 y=2 {a=1 a}", 0, "x = 1, y = 2, {a = 1, a}\n"},
		{"indented", "x=1 y=2 {a=1 a}", 2, "x = 1,\ny = 2,\n{\n  a = 1,\n  a\n}\n"},
		{"indented empty block", "{}", 4, "{}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ast, err := ParseString(t.Context(), tt.input)
			if err != nil {
				t.Fatalf("parse error: %v", err)
			}

			var out strings.Builder
			if err := ast.Format(t.Context(), &out, tt.indent); err != nil {
				t.Fatalf("format error: %v", err)
			}

			if out.String() != tt.want {
				t.Errorf("expected %q, got %q", tt.want, out.String())
			}
		})
	}
}

func TestAST_FormatRoundTrip(t *testing.T) {
	inputs := []string{
		"1 -1 2",
		"n = 10, n + 1",
		"curry(f,r)=l->f(l,r), add=(l,r)->l+r, add5=curry(add,5), add5(100)",
		"fact(n) = n <= 1 ? 1 : n * fact(n - 1)\nfact(10)",
		"x -> y -> x + y",
		"a || b && !c == d",
		"-2 ^ -x ^ 2",
		"{even(n) = n == 0 ? true : odd(n - 1), odd(n) = n == 0 ? false : even(n - 1), even(10)}",
		"((a, b) -> a - b)(10, 4)",
		"get_adder()(9, 10)",
		"{{}, {1}, ({2})}",
	}

	for _, src := range inputs {
		t.Run(src, func(t *testing.T) {
			want, err := ParseString(t.Context(), src)
			if err != nil {
				t.Fatalf("parse error: %v", err)
			}

			for _, indent := range []int{0, 2} {
				var out strings.Builder
				if err := want.Format(t.Context(), &out, indent); err != nil {
					t.Fatalf("format error: %v", err)
				}

				got, err := ParseString(t.Context(), out.String())
				if err != nil {
					t.Fatalf("re-parse %q: %v", out.String(), err)
				}

				if got.String() != want.String() {
					t.Errorf("indent %d: expected %s, got %s", indent, want, got)
				}
			}
		})
	}
}

func TestAST_FormatJSON(t *testing.T) {
	ast, err := ParseString(t.Context(), "sq(x) = x * x, sq(3)")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	var out strings.Builder
	if err := ast.FormatJSON(t.Context(), &out, 2); err != nil {
		t.Fatalf("format error: %v", err)
	}

	var doc struct {
		Program []map[string]any `json:"program"`
	}

	if err := json.Unmarshal([]byte(out.String()), &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if len(doc.Program) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(doc.Program))
	}

	define := doc.Program[0]
	if define["node"] != "define" || define["name"] != "sq" || define["pos"] != "1:1" {
		t.Errorf("unexpected define node: %v", define)
	}

	call := doc.Program[1]
	if call["node"] != "call" {
		t.Errorf("expected call node, got %v", call["node"])
	}

	args, ok := call["args"].([]any)
	if !ok || len(args) != 1 {
		t.Fatalf("expected one argument, got %v", call["args"])
	}

	if arg, _ := args[0].(map[string]any); arg["value"] != "3" {
		t.Errorf("expected argument 3, got %v", args[0])
	}
}

func TestAST_FormatYAML(t *testing.T) {
	ast, err := ParseString(t.Context(), "adder(step) = x -> x + step")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	var block strings.Builder
	if err := ast.FormatYAML(t.Context(), &block, 2); err != nil {
		t.Fatalf("format error: %v", err)
	}

	for _, want := range []string{"program:", "node: define", "node: function", "captures:", "- step"} {
		if !strings.Contains(block.String(), want) {
			t.Errorf("expected YAML to contain %q:\n%s", want, block.String())
		}
	}

	var flow strings.Builder
	if err := ast.FormatYAML(t.Context(), &flow, 0); err != nil {
		t.Fatalf("format error: %v", err)
	}

	if !strings.HasPrefix(flow.String(), "{") {
		t.Errorf("expected flow style, got %q", flow.String())
	}
}
