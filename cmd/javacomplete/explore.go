package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/cockroachdb/errors"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/rlch/javacomplete"
	"github.com/rlch/javacomplete/complete"
	"github.com/rlch/javacomplete/model"
)

var ErrNotTerminal = errors.New("explore needs an interactive terminal")

func exploreCommand() *cli.Command {
	flags := append(sessionFlags(),
		&cli.StringFlag{
			Name:    "expr",
			Aliases: []string{"e"},
			Usage:   `initial expression, e.g. "List<String>::"`,
		},
		&cli.IntFlag{
			Name:    "line",
			Aliases: []string{"l"},
			Usage:   "line the expression is typed on (1-based; default appends a line)",
		},
	)

	return &cli.Command{
		Name:   "explore",
		Usage:  "Edit an expression and watch its completions update live",
		Flags:  flags,
		Action: runExplore,
	}
}

func runExplore(ctx context.Context, cmd *cli.Command) error {
	if !isatty.IsTerminal(os.Stdin.Fd()) || !isatty.IsTerminal(os.Stdout.Fd()) {
		return ErrNotTerminal
	}

	s, err := openSession(cmd, false)
	if err != nil {
		return err
	}

	// The explorer owns the terminal.
	s.logger = zap.NewNop()

	line := int(cmd.Int("line")) - 1
	if line < 0 {
		line = strings.Count(s.text, "\n") + 1
	}

	m := newExplorer(ctx, s, line, cmd.String("expr"))

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	final, err := p.Run()
	if err != nil {
		return errors.Wrap(err, "run explorer")
	}

	if e, ok := final.(*explorer); ok && !e.aborted {
		fmt.Println(e.input.Value())
	}

	return nil
}

// explorer is the bubbletea model for the live completion view.
type explorer struct {
	ctx    context.Context //nolint:containedctx // bubbletea models carry their own state
	s      *session
	line   int
	styles *Styles
	input  textinput.Model

	query    complete.Query
	result   *model.Result
	elapsed  time.Duration
	selected int

	width   int
	height  int
	aborted bool
}

func newExplorer(ctx context.Context, s *session, line int, expr string) *explorer {
	ti := textinput.New()
	ti.Prompt = "❯ "
	ti.Placeholder = "List<String>::"
	ti.SetValue(expr)
	ti.CursorEnd()
	ti.Focus()

	e := &explorer{
		ctx:    ctx,
		s:      s,
		line:   line,
		styles: DefaultStyles(),
		input:  ti,
		width:  80,
		height: 24,
	}
	e.refresh()

	return e
}

func (e *explorer) Init() tea.Cmd {
	return textinput.Blink
}

func (e *explorer) Update(msg tea.Msg) (tea.Model, tea.Cmd) { //nolint:ireturn // bubbletea.Model interface required by tea.Program
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		e.width = msg.Width
		e.height = msg.Height

		return e, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			e.aborted = true

			return e, tea.Quit
		case "enter":
			return e, tea.Quit
		case "up", "ctrl+p":
			if e.selected > 0 {
				e.selected--
			}

			return e, nil
		case "down", "ctrl+n":
			if e.selected < len(e.result.Items)-1 {
				e.selected++
			}

			return e, nil
		case "tab":
			e.accept()

			return e, nil
		}
	}

	before := e.input.Value()

	var cmd tea.Cmd

	e.input, cmd = e.input.Update(msg)

	if e.input.Value() != before {
		e.refresh()
	}

	return e, cmd
}

// refresh re-runs completion with the input typed on the explorer's line
// and the cursor at the input's cursor.
func (e *explorer) refresh() {
	value := e.input.Value()
	cursor := e.cursor()
	text, offset := withLine(e.s.text, e.line, value)

	start := time.Now()
	e.query, e.result = e.s.completeAt(e.ctx, text, model.Position{
		Line:   e.line,
		Column: cursor,
		Offset: offset + cursor,
	})
	e.elapsed = time.Since(start)
	e.selected = 0
}

// cursor returns the input cursor as a byte offset into its value.
func (e *explorer) cursor() int {
	runes := []rune(e.input.Value())

	return len(string(runes[:min(e.input.Position(), len(runes))]))
}

// accept replaces the identifier before the cursor with the selected item.
func (e *explorer) accept() {
	if e.selected < 0 || e.selected >= len(e.result.Items) {
		return
	}

	value := e.input.Value()
	cursor := e.cursor()
	ident := complete.NewQuery("", value[:cursor], model.Position{Column: cursor}, javacomplete.IsIdentifierPart).Prefix

	insert := e.result.Items[e.selected].InsertText
	next := value[:cursor-len(ident)] + insert

	e.input.SetValue(next + value[cursor:])
	e.input.SetCursor(len([]rune(next)))
	e.refresh()
}

func (e *explorer) View() string {
	var b strings.Builder

	st := e.styles

	b.WriteString(st.Bold.Render("javacomplete explore"))
	b.WriteString(st.Dim.Render(fmt.Sprintf("  %s:%d", e.s.file, e.line+1)))
	b.WriteString("\n\n")
	b.WriteString(e.input.View())
	b.WriteString("\n\n")

	items := e.result.Items
	visible := max(e.height-8, 1)
	first := max(e.selected-visible+1, 0)

	switch {
	case e.result.IsEmpty():
		b.WriteString(st.Error.Render("no result"))
		b.WriteString("\n")
	case len(items) == 0:
		b.WriteString(st.Dim.Render("no matching members"))
		b.WriteString("\n")
	}

	for i := first; i < len(items) && i < first+visible; i++ {
		b.WriteString(e.renderItem(items[i], i == e.selected))
		b.WriteString("\n")
	}

	status := fmt.Sprintf("%d items · prefix %q · %s", len(items), e.query.Prefix, e.elapsed.Round(time.Microsecond))
	if e.result.Trimmed {
		status += " · trimmed"
	}

	b.WriteString("\n")
	b.WriteString(st.Muted.Render(status))
	b.WriteString("\n")
	b.WriteString(st.Dim.Render("tab accept · ↑/↓ select · enter done · esc quit"))

	return b.String()
}

func (e *explorer) renderItem(item model.CompletionItem, selected bool) string {
	st := e.styles

	pointer := "  "
	if selected {
		pointer = st.SymbolPointer + " "
	}

	label := st.Kind(item.Kind).Render(item.Label)
	if selected {
		label = st.Selected.Render(item.Label)
	}

	detail := item.Detail
	if n := len(item.Overloads); n > 1 {
		detail = fmt.Sprintf("%s (+%d)", detail, n-1)
	}

	line := fmt.Sprintf("%s%s %s %s",
		pointer,
		label,
		st.Dim.Render(item.Kind.String()),
		st.Level(item.MatchLevel).Render(detail))

	return lipgloss.NewStyle().MaxWidth(e.width).Render(line)
}

// withLine returns text with line replaced by content, padding with empty
// lines when text is shorter, and the byte offset of that line.
func withLine(text string, line int, content string) (string, int) {
	lines := strings.Split(text, "\n")
	for len(lines) <= line {
		lines = append(lines, "")
	}

	lines[line] = content

	offset := 0
	for _, l := range lines[:line] {
		offset += len(l) + 1
	}

	return strings.Join(lines, "\n"), offset
}
