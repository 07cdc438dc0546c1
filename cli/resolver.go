package cli

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/clac/cli/cmd"
	"github.com/ardnew/clac/lang"
	"github.com/ardnew/clac/log"
)

// config is the decoded YAML configuration file. It implements
// [kong.Resolver] for flag values and carries the expression builtins,
// which have no flag of their own.
//
// A config file looks like this:
//
//	log-level: debug
//	prelude:
//	  - units
//	prelude-path:
//	  - ~/lib/clac
//	builtins:
//	  - name: norm
//	    params: [x, y]
//	    expr: sqrt(x^2 + y^2)
//
// Keys are flag names; underscores may be used in place of hyphens.
// Command-line flags override config file values.
type config struct {
	flags    map[string]any
	Builtins []lang.ExprBuiltin
}

// loader returns a [kong.ConfigurationLoader] that decodes YAML into c.
// A file that is not valid YAML is logged and otherwise ignored.
func (c *config) loader(ctx context.Context) kong.ConfigurationLoader {
	return func(r io.Reader) (kong.Resolver, error) {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}

		var doc struct {
			Builtins []lang.ExprBuiltin `yaml:"builtins"`
		}

		var flags map[string]any

		if err = yaml.Unmarshal(data, &flags); err == nil {
			err = yaml.Unmarshal(data, &doc)
		}

		if err != nil {
			log.WarnContext(ctx, "ignoring invalid configuration",
				slog.String("error", err.Error()))

			return c, nil
		}

		delete(flags, cmd.BuiltinsKey)

		c.flags = make(map[string]any, len(flags))
		for key, val := range flags {
			c.flags[key] = flagValue(val)
		}

		c.Builtins = doc.Builtins

		return c, nil
	}
}

// Validate implements [kong.Resolver].
func (c *config) Validate(*kong.Application) error {
	for i, b := range c.Builtins {
		if strings.TrimSpace(b.Name) == "" || strings.TrimSpace(b.Expr) == "" {
			return cmd.ErrInvalidBuiltin.With(
				slog.Int("index", i),
				slog.String("name", b.Name),
			)
		}
	}

	return nil
}

// Resolve implements [kong.Resolver].
func (c *config) Resolve(
	_ *kong.Context,
	_ *kong.Path,
	flag *kong.Flag,
) (any, error) {
	for _, name := range []string{
		flag.Name,
		strings.ReplaceAll(flag.Name, "-", "_"),
	} {
		if val, ok := c.flags[name]; ok {
			return val, nil
		}
	}

	return nil, nil
}

// flagValue converts a decoded YAML value into a form kong can map onto a
// flag. Kong parses numbers from strings.
func flagValue(val any) any {
	switch v := val.(type) {
	case uint64:
		return strconv.FormatUint(v, 10)

	case int64:
		return strconv.FormatInt(v, 10)

	case int:
		return strconv.Itoa(v)

	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)

	case []any:
		out := make([]any, len(v))
		for i, elem := range v {
			out[i] = flagValue(elem)
		}

		return out

	default:
		return val
	}
}
