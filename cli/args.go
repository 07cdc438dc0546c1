package cli

import (
	"slices"
	"strings"

	"github.com/alecthomas/kong"
)

// defaultCommand receives expressions given without a command name.
const defaultCommand = "eval"

// operandArgs rewrites args so that an expression beginning with '-', such as
// "-5 * 2" or "1 -1", reaches the eval command as source text instead of
// failing as an unknown flag. A "--" is inserted where the expression starts,
// preceded by the eval command name when no command was given.
//
// Args are returned unchanged when they already contain "--", when another
// command was named, or when no argument looks like a negative operand.
func operandArgs(app *kong.Application, args []string) []string {
	var (
		valued   = valueFlags(app)
		commands = commandNames(app)
		command  string
		start    = -1 // index of the first expression argument
	)

	for i := 0; i < len(args); i++ {
		arg := args[i]

		switch {
		case arg == "--":
			return args

		case isOperand(arg):
			if start < 0 {
				start = i
			}

			return insertSeparator(args, start, command)

		case strings.HasPrefix(arg, "-") && len(arg) > 1:
			if valued[arg] {
				i++ // skip the flag's value
			}

		case command == "" && start < 0 && slices.Contains(commands, arg):
			if command = arg; command != defaultCommand {
				return args
			}

		case start < 0:
			start = i
		}
	}

	return args
}

func insertSeparator(args []string, at int, command string) []string {
	out := make([]string, 0, len(args)+2)
	out = append(out, args[:at]...)

	if command == "" {
		out = append(out, defaultCommand)
	}

	out = append(out, "--")

	return append(out, args[at:]...)
}

// isOperand reports whether arg starts with '-' followed by a character that
// can begin an expression but never a flag name.
func isOperand(arg string) bool {
	if len(arg) < 2 || arg[0] != '-' {
		return false
	}

	return strings.IndexByte("0123456789.(!{", arg[1]) >= 0
}

// valueFlags returns the spellings of every flag that takes its value from
// the following argument.
func valueFlags(app *kong.Application) map[string]bool {
	valued := make(map[string]bool)

	add := func(node *kong.Node) {
		for _, group := range node.AllFlags(false) {
			for _, flag := range group {
				if flag.IsBool() || flag.IsCounter() {
					continue
				}

				valued["--"+flag.Name] = true

				if flag.Short != 0 {
					valued["-"+string(flag.Short)] = true
				}
			}
		}
	}

	add(app.Node)

	for _, child := range app.Children {
		add(child)
	}

	return valued
}

func commandNames(app *kong.Application) []string {
	names := make([]string, 0, len(app.Children))

	for _, child := range app.Children {
		if child.Type == kong.CommandNode {
			names = append(names, child.Name)
			names = append(names, child.Aliases...)
		}
	}

	return names
}
