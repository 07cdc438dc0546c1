package repl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/clac/lang"
	"github.com/ardnew/clac/log"
)

// Banner is printed when an interactive session starts.
const Banner = "Clac - Command line calculator\nEnter [Ctrl+D] to exit."

// editMsg is sent when an edited buffer parsed successfully.
type editMsg struct {
	ast     *lang.AST
	content string
}

// editCancelledMsg is sent when the user cleared the editor content.
type editCancelledMsg struct{}

// editDeclinedMsg is sent when the user declined to re-edit after a parse
// error.
type editDeclinedMsg struct{ content string }

// editErrorMsg is sent when the edit process encounters a non-parse error.
type editErrorMsg struct{ err error }

const (
	evalPrompt = "clac> "
	contPrompt = "  ... "
	ctrlPrompt = "    : "
)

func helpMessage() string {
	return `
: Commands (press Esc to toggle mode):

  help      Print this cruft
  list      List global bindings
  builtins  List builtin functions
  edit      Edit and evaluate a scratch buffer in $EDITOR
  clear     Clear screen
  quit      Exit REPL

Usage:
  Type an expression to evaluate it; definitions persist between inputs
  Unfinished input (open brace, trailing operator) continues on the next line
  Completions appear automatically as you type
  Press Tab / Shift-Tab to cycle through candidates
  Press Space to accept the current candidate
  Press Esc to toggle between eval and command modes
  Use Up/Down arrows for history navigation (mode switches automatically)
  Use Shift+Up/Shift+Down for history navigation within current mode only
  Use Alt+Up/Alt+Down to switch to command mode and navigate command history
    (restores original mode when reaching end of history)
  Press Ctrl+C to discard input, and on an empty line or Ctrl+D to exit
`
}

// inputMode represents the current input mode.
type inputMode int

const (
	modeEval inputMode = iota
	modeCtrl
)

// Styles.
var (
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)
	ctrlPromptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("5")).
			Bold(true)
	inputStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	resultStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hintStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	suggestionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	selectedStyle   = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4"))
)

// echo formats a submitted line with its prompt styled.
func echo(prompt string, style lipgloss.Style, input string) string {
	return style.Render(prompt) + inputStyle.Render(input)
}

// altNav holds the state saved when Alt+Up/Down first switches to command
// history, restored when navigation runs off either end.
type altNav struct {
	active bool
	mode   inputMode
	text   string
	cursor int
}

// model is the Bubble Tea model for the REPL.
type model struct {
	ctxFunc      func() context.Context
	in           *lang.Interpreter
	logger       log.Logger
	history      *History
	input        textinput.Model
	matches      fuzzy.Matches // current fuzzy match results
	candidates   []string      // backing candidate list
	pending      string        // incomplete source awaiting continuation
	scratch      string        // last buffer edited with the edit command
	evalText     string
	ctrlText     string
	preTabText   string // input text before tab-cycling began
	alt          altNav
	historyIdx   int
	wordStart    int // byte offset of current word start
	wordEnd      int // byte offset of current word end
	suggIdx      int // selected candidate index
	preTabCursor int // cursor position before tab-cycling began
	width        int // terminal width for ellipsization
	evalCursor   int
	ctrlCursor   int
	mode         inputMode
	tabActive    bool // whether user is tab-cycling
	quitting     bool
}

// Run starts the full-screen REPL on the given interpreter. History is kept
// in cacheDir.
func Run(
	ctx context.Context,
	in *lang.Interpreter,
	cacheDir string,
	logger log.Logger,
) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	logger.TraceContext(
		ctx,
		"repl start",
		slog.String("cache_dir", cacheDir),
		slog.Int("global_count", len(in.Global().Names())),
	)

	history := NewHistory(filepath.Join(cacheDir, baseHistory))
	if err := history.Load(); err != nil {
		logger.WarnContext(ctx, "could not load history",
			slog.String("path", history.path),
			slog.String("error", err.Error()))
	}

	logger.TraceContext(
		ctx,
		"repl history loaded",
		slog.Int("entry_count", history.Len()),
	)

	m := newModel(ctx, in, history, logger)

	p := tea.NewProgram(m, tea.WithContext(ctx))
	_, err = p.Run()

	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return context.Cause(ctx)
	}

	return err
}

const defaultWidth = 80

func newModel(
	ctx context.Context,
	in *lang.Interpreter,
	history *History,
	logger log.Logger,
) model {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render(evalPrompt)
	ti.Focus()
	ti.CharLimit = 1024
	ti.Width = defaultWidth

	return model{
		ctxFunc:    func() context.Context { return ctx },
		in:         in,
		input:      ti,
		logger:     logger,
		history:    history,
		historyIdx: history.Len(),
		width:      defaultWidth,
		mode:       modeEval,
		suggIdx:    -1,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, tea.Println(hintStyle.Render(Banner)))
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - len(evalPrompt) - 2

		return m, nil

	case editMsg:
		m.scratch = msg.content
		m.logger.TraceContext(
			m.ctxFunc(),
			"repl edit complete",
			slog.Int("statement_count", msg.ast.Len()),
		)

		return m, m.runAST(msg.ast)

	case editCancelledMsg:
		return m, tea.Println(hintStyle.Render("edit cancelled"))

	case editDeclinedMsg:
		m.scratch = msg.content

		return m, tea.Println(hintStyle.Render("edit discarded"))

	case editErrorMsg:
		return m, tea.Println(
			errorStyle.Render("Error: " + msg.err.Error()),
		)
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.input.View())
	b.WriteString("\n")

	input := m.input.Value()
	funcCall := detectFunctionCall(input, m.input.Position())

	var hint string

	switch {
	case m.historyIdx < m.history.Len():
		hint = hintStyle.Render(fmt.Sprintf("%s/%d",
			lipgloss.NewStyle().Bold(true).Render(strconv.Itoa(m.historyIdx+1)),
			m.history.Len()))

	case strings.TrimSpace(input) == "":
		switch {
		case m.mode == modeCtrl:
			hint = "Type: " + strings.Join(ctrlCommands, ", ") + " (press Esc to return)"
		case m.pending != "":
			hint = "Continue the unfinished input or press Ctrl+C to discard it"
		default:
			hint = "Type an expression or press Esc for commands"
		}

		hint = hintStyle.Render(hint)

	case funcCall.inCall && m.mode == modeEval:
		if signature, params := getSignature(m.in, funcCall.name); signature != "" {
			hint = renderSignatureHint(signature, params, funcCall.argIndex)

			break
		}

		hint = m.candidateBar()

	default:
		hint = m.candidateBar()
	}

	b.WriteString(hint)
	b.WriteString("\n")

	return b.String()
}

func (m model) candidateBar() string {
	callable := func(name string) bool { return isFunction(m.in, name) }
	if m.mode == modeCtrl {
		callable = nil
	}

	return renderCandidateBar(m.matches, m.suggIdx, m.tabActive, m.width, callable)
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	m.logger.TraceContext(
		m.ctxFunc(),
		"repl keypress",
		slog.String("key", msg.String()),
		slog.Int("type", int(msg.Type)),
	)

	switch msg.Type {
	case tea.KeyCtrlC:
		if m.input.Value() == "" && m.pending == "" {
			m.quitting = true

			return m, tea.Quit
		}

		m.input.SetValue("")
		m.setPending("")
		m.tabActive = false
		m.alt.active = false
		m.historyIdx = m.history.Len()
		refreshMatches(&m, false)

		return m, nil

	case tea.KeyCtrlD:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		return m, nil

	case tea.KeyEnter:
		if !m.tabActive || len(m.matches) == 0 {
			m.alt.active = false

			return m.executeInput()
		}
		// Lock in the current tab candidate without executing.
		m.tabActive = false
		m.alt.active = false
		refreshMatches(&m, true)

		return m, nil

	case tea.KeyTab:
		return m.cycleCandidate(1), nil

	case tea.KeyShiftTab:
		return m.cycleCandidate(-1), nil

	case tea.KeyUp:
		if msg.Alt {
			return m.historyCtrl(-1), nil
		}

		return m.historySeek(-1, false), nil

	case tea.KeyDown:
		if msg.Alt {
			return m.historyCtrl(1), nil
		}

		return m.historySeek(1, false), nil

	case tea.KeyShiftUp:
		return m.historySeek(-1, true), nil

	case tea.KeyShiftDown:
		return m.historySeek(1, true), nil

	case tea.KeyEsc:
		if m.tabActive {
			m.tabActive = false
			m.input.SetValue(m.preTabText)
			m.input.SetCursor(m.preTabCursor)
			refreshMatches(&m, false)

			return m, nil
		}

		m.alt.active = false

		if m.mode == modeEval {
			return m.switchToMode(modeCtrl), nil
		}

		return m.switchToMode(modeEval), nil

	case tea.KeyRunes:
		// Space breaks out of tab-cycling and keeps the candidate.
		if m.tabActive && msg.String() == " " {
			m.tabActive = false
		}

		var cmd tea.Cmd

		m.historyIdx = m.history.Len()
		m.input, cmd = m.input.Update(msg)
		refreshMatches(&m, true)

		return m, cmd
	}

	// Any other key (backspace, delete, arrows) edits without auto-confirm.
	var cmd tea.Cmd

	m.tabActive = false
	m.alt.active = false
	m.historyIdx = m.history.Len()
	m.input, cmd = m.input.Update(msg)
	refreshMatches(&m, false)

	return m, cmd
}

// cycleCandidate moves the tab selection by step, wrapping at either end.
// A single candidate is completed and confirmed immediately.
func (m model) cycleCandidate(step int) model {
	n := len(m.matches)

	switch {
	case n == 0:
		return m

	case n == 1:
		replaceCurrentWord(&m, m.matches[0].Str)
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil

		return m

	case m.tabActive:
		m.suggIdx = (m.suggIdx + step + n) % n

	default:
		m.tabActive = true
		m.preTabText = m.input.Value()
		m.preTabCursor = m.input.Position()

		m.suggIdx = 0
		if step < 0 {
			m.suggIdx = n - 1
		}
	}

	replaceCurrentWord(&m, m.matches[m.suggIdx].Str)

	return m
}

// replaceCurrentWord replaces the current word boundaries in the input with
// the given replacement text and repositions the cursor.
func replaceCurrentWord(m *model, replacement string) {
	input := m.input.Value()
	newInput := input[:m.wordStart] + replacement + input[m.wordEnd:]
	newCursor := m.wordStart + len(replacement)

	m.input.SetValue(newInput)
	m.input.SetCursor(newCursor)

	m.wordEnd = newCursor
}

// refreshMatches recomputes fuzzy matches for the current input state.
// When autoConfirm is true it also confirms the completion when exactly one
// candidate remains and the typed word already equals it. Deletions and
// cursor movement pass false so editing never completes unexpectedly.
func refreshMatches(m *model, autoConfirm bool) {
	m.matches, m.candidates, m.wordStart, m.wordEnd = m.computeMatches()

	if !m.tabActive {
		m.suggIdx = -1
	}

	if !autoConfirm || len(m.matches) != 1 {
		return
	}

	if m.input.Value()[m.wordStart:m.wordEnd] == m.matches[0].Str {
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil
	}
}

// setPending stores incomplete source and switches the prompt to show that
// the next line continues it.
func (m *model) setPending(src string) {
	m.pending = src

	if m.mode != modeEval {
		return
	}

	if src == "" {
		m.input.Prompt = promptStyle.Render(evalPrompt)
	} else {
		m.input.Prompt = promptStyle.Render(contPrompt)
	}
}

func (m model) executeInput() (model, tea.Cmd) {
	line := m.input.Value()
	input := strings.TrimSpace(line)

	if input == "" && m.pending == "" {
		return m, nil
	}

	m.evalText, m.evalCursor = "", 0
	m.ctrlText, m.ctrlCursor = "", 0
	m.input.SetValue("")

	if m.mode == modeCtrl {
		_, _ = m.history.WriteWithMode(input, modeCtrl)
		m.historyIdx = m.history.Len()

		return m.executeCommand(input)
	}

	if input != "" {
		_, _ = m.history.WriteWithMode(input, modeEval)
	}

	m.historyIdx = m.history.Len()

	prompt := evalPrompt

	src := input
	if m.pending != "" {
		prompt = contPrompt
		src = m.pending + "\n" + line
	}

	echoCmd := tea.Println(echo(prompt, promptStyle, input))

	ast, err := lang.ParseString(m.ctxFunc(), src, lang.WithLogger(m.logger))
	if lang.IsIncomplete(err) {
		m.setPending(src)

		return m, echoCmd
	}

	m.setPending("")

	m.logger.TraceContext(
		m.ctxFunc(),
		"repl eval",
		slog.String("input", src),
	)

	if err != nil {
		return m, tea.Sequence(echoCmd, printError(err))
	}

	return m, tea.Sequence(echoCmd, m.runAST(ast))
}

// runAST evaluates ast in the session and prints every value it produces,
// followed by the error that stopped it, if any.
func (m model) runAST(ast *lang.AST) tea.Cmd {
	var out []string

	err := m.in.RunAST(m.ctxFunc(), ast, func(v lang.Value) error {
		out = append(out, resultStyle.Render(lang.FormatValue(v)))

		return nil
	})

	m.logger.TraceContext(
		m.ctxFunc(),
		"repl eval result",
		slog.Int("value_count", len(out)),
		slog.Bool("failed", err != nil),
	)

	var cmds []tea.Cmd

	if len(out) > 0 {
		cmds = append(cmds, tea.Println(strings.Join(out, "\n")))
	}

	if err != nil {
		cmds = append(cmds, printError(err))
	}

	return tea.Sequence(cmds...)
}

func printError(err error) tea.Cmd {
	return tea.Println(errorStyle.Render("Error: " + lang.Describe(err)))
}

func (m model) executeCommand(input string) (model, tea.Cmd) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return m, nil
	}

	echoCmd := tea.Println(echo(ctrlPrompt, ctrlPromptStyle, input))

	cmd := parts[0]

	m.logger.TraceContext(
		m.ctxFunc(),
		"repl exec command",
		slog.String("command", cmd),
		slog.Any("args", parts[1:]),
	)

	switch cmd {
	case "q", "quit", "exit":
		m.quitting = true

		return m, tea.Sequence(echoCmd, tea.Quit)

	case "h", "help":
		return m, tea.Sequence(echoCmd, tea.Println(helpMessage()))

	case "l", "list":
		return m, tea.Sequence(echoCmd, tea.Println(m.listGlobals()))

	case "b", "builtins":
		return m, tea.Sequence(echoCmd, tea.Println(m.listBuiltins()))

	case "c", "clear":
		return m, tea.ClearScreen

	case "e", "edit":
		return m, tea.Sequence(echoCmd, m.edit())

	default:
		return m, tea.Println(
			errorStyle.Render("Unknown command: " + cmd + " (try 'help')"),
		)
	}
}

// edit opens the scratch buffer in the user's editor and evaluates it once
// it parses.
func (m model) edit() tea.Cmd {
	cmd := &editCommand{
		ctxFunc: m.ctxFunc,
		logger:  m.logger,
		content: m.scratch,
	}

	return tea.Exec(cmd, func(err error) tea.Msg {
		switch {
		case errors.Is(err, ErrEditDeclined):
			return editDeclinedMsg{content: cmd.content}

		case err != nil:
			return editErrorMsg{err: err}

		case cmd.ast == nil:
			return editCancelledMsg{}
		}

		return editMsg{ast: cmd.ast, content: cmd.content}
	})
}

// historySeek moves step entries through history. With sameMode, entries of
// the other mode are skipped; otherwise the mode follows the entry. Moving
// past the newest entry clears the input.
func (m model) historySeek(step int, sameMode bool) model {
	for i := m.historyIdx + step; i >= 0 && i < m.history.Len(); i += step {
		entry, err := m.history.GetEntry(i)
		if err != nil || sameMode && entry.Mode != m.mode {
			continue
		}

		if entry.Mode != m.mode {
			m = m.switchToMode(entry.Mode)
		}

		m.historyIdx = i
		m.setInput(entry.Line)

		return m
	}

	if step > 0 && m.historyIdx < m.history.Len() {
		m.historyIdx = m.history.Len()
		m.setInput("")
	}

	return m
}

// historyCtrl navigates command history only, switching to command mode on
// first use and restoring the original mode and input at either end.
func (m model) historyCtrl(step int) model {
	if !m.alt.active {
		m.alt = altNav{
			active: true,
			mode:   m.mode,
			text:   m.input.Value(),
			cursor: m.input.Position(),
		}

		if m.mode != modeCtrl {
			m = m.switchToMode(modeCtrl)
		}
	}

	for i := m.historyIdx + step; i >= 0 && i < m.history.Len(); i += step {
		if entry, err := m.history.GetEntry(i); err == nil && entry.Mode == modeCtrl {
			m.historyIdx = i
			m.setInput(entry.Line)

			return m
		}
	}

	m.alt.active = false
	if m.alt.mode != m.mode {
		m = m.switchToMode(m.alt.mode)
	}

	m.input.SetValue(m.alt.text)
	m.input.SetCursor(m.alt.cursor)
	m.historyIdx = m.history.Len()
	refreshMatches(&m, false)

	return m
}

func (m *model) setInput(s string) {
	m.input.SetValue(s)
	m.input.SetCursor(len(s))
	refreshMatches(m, false)
}

func (m model) listGlobals() string {
	var b strings.Builder

	for name, v := range m.in.Global().All() {
		fmt.Fprintf(&b, "  %s %s\n", name, hintStyle.Render(formatPreview(v)))
	}

	if b.Len() == 0 {
		return hintStyle.Render("  (no bindings)")
	}

	return b.String()
}

func (m model) listBuiltins() string {
	var b strings.Builder

	for _, name := range m.in.Registry().Names() {
		if signature, _ := getSignature(m.in, name); signature != "" {
			fmt.Fprintf(&b, "  %s\n", signature)
		}
	}

	return b.String()
}

// switchToMode switches to the specified mode, preserving each mode's input.
func (m model) switchToMode(mode inputMode) model {
	if m.mode == modeEval {
		m.evalText = m.input.Value()
		m.evalCursor = m.input.Position()
	} else {
		m.ctrlText = m.input.Value()
		m.ctrlCursor = m.input.Position()
	}

	m.mode = mode
	if mode == modeEval {
		m.setPending(m.pending)
		m.input.SetValue(m.evalText)
		m.input.SetCursor(m.evalCursor)
	} else {
		m.input.Prompt = ctrlPromptStyle.Render(ctrlPrompt)
		m.input.SetValue(m.ctrlText)
		m.input.SetCursor(m.ctrlCursor)
	}

	refreshMatches(&m, false)

	return m
}
