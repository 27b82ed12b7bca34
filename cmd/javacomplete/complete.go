package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/cockroachdb/errors"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v3"

	"github.com/rlch/javacomplete/complete"
	"github.com/rlch/javacomplete/model"
)

func completeCommand() *cli.Command {
	flags := append(sessionFlags(),
		&cli.IntFlag{
			Name:     "line",
			Aliases:  []string{"l"},
			Usage:    "cursor line (1-based)",
			Required: true,
		},
		&cli.IntFlag{
			Name:     "col",
			Aliases:  []string{"c"},
			Usage:    "cursor column in characters (1-based; the cursor sits before this character)",
			Required: true,
		},
		&cli.StringFlag{
			Name:    "where",
			Aliases: []string{"w"},
			Usage:   `keep items matching an expression, e.g. kind == "method" && priority > 30`,
		},
		&cli.BoolFlag{
			Name:  "json",
			Usage: "output results as JSON",
		},
	)

	return &cli.Command{
		Name:   "complete",
		Usage:  "Print the ranked completions at a cursor position",
		Flags:  flags,
		Action: runComplete,
	}
}

func runComplete(ctx context.Context, cmd *cli.Command) error {
	filter, err := compileFilter(cmd.String("where"))
	if err != nil {
		return err
	}

	s, err := openSession(cmd, true)
	if err != nil {
		return err
	}

	defer func() { _ = s.logger.Sync() }()

	pos, err := cursorPosition(s.text, int(cmd.Int("line")), int(cmd.Int("col")))
	if err != nil {
		return err
	}

	q, result := s.completeAt(ctx, s.text, pos)

	items, err := filter.Apply(result.Items)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return writeJSON(os.Stdout, q, result, items)
	}

	plain := !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd())

	return writeTable(os.Stdout, DefaultStyles(), items, result.Trimmed, plain)
}

// cursorPosition converts a 1-based line and character column to a
// 0-based byte position in text.
func cursorPosition(text string, line, col int) (model.Position, error) {
	if line < 1 || col < 1 {
		return model.Position{}, errors.Wrapf(ErrBadCursor, "got %d:%d", line, col)
	}

	offset := 0
	rest := text

	for range line - 1 {
		nl := strings.IndexByte(rest, '\n')
		if nl < 0 {
			return model.Position{}, errors.Newf("line %d is past the end of the document", line)
		}

		offset += nl + 1
		rest = rest[nl+1:]
	}

	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		rest = rest[:nl]
	}

	rest = strings.TrimSuffix(rest, "\r")

	column := 0
	for range col - 1 {
		if column >= len(rest) {
			break
		}

		_, size := utf8.DecodeRuneInString(rest[column:])
		column += size
	}

	return model.Position{Line: line - 1, Column: column, Offset: offset + column}, nil
}

type jsonItem struct {
	Label     string   `json:"label"`
	Insert    string   `json:"insertText"`
	Kind      string   `json:"kind"`
	Detail    string   `json:"detail,omitempty"`
	Priority  int      `json:"priority"`
	Level     string   `json:"matchLevel"`
	Overloads []string `json:"overloads,omitempty"`
}

type jsonResult struct {
	File    string     `json:"file"`
	Line    int        `json:"line"`
	Column  int        `json:"column"`
	Prefix  string     `json:"prefix"`
	Empty   bool       `json:"empty"`
	Trimmed bool       `json:"trimmed"`
	Items   []jsonItem `json:"items"`
}

func writeJSON(w io.Writer, q complete.Query, result *model.Result, items []model.CompletionItem) error {
	out := jsonResult{
		File:    q.File,
		Line:    q.Position.Line + 1,
		Column:  q.Position.Column + 1,
		Prefix:  q.Prefix,
		Empty:   result.IsEmpty(),
		Trimmed: result.Trimmed,
		Items:   make([]jsonItem, 0, len(items)),
	}

	for _, item := range items {
		env := newItemEnv(item)
		out.Items = append(out.Items, jsonItem{
			Label:     env.Label,
			Insert:    env.Insert,
			Kind:      env.Kind,
			Detail:    env.Detail,
			Priority:  env.Priority,
			Level:     env.Level,
			Overloads: env.Overloads,
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return errors.Wrap(enc.Encode(out), "write json")
}

var tableHeaders = []string{"#", "LABEL", "KIND", "DETAIL", "PRIORITY", "MATCH"}

func tableRows(items []model.CompletionItem) [][]string {
	rows := make([][]string, len(items))

	for i, item := range items {
		detail := item.Detail
		if n := len(item.Overloads); n > 1 {
			detail = fmt.Sprintf("%s (+%d overloads)", detail, n-1)
		}

		rows[i] = []string{
			strconv.Itoa(i + 1),
			item.Label,
			item.Kind.String(),
			detail,
			strconv.Itoa(item.SortPriority),
			item.MatchLevel.String(),
		}
	}

	return rows
}

// writeTable prints items as a bordered table, or as tab-aligned columns
// when plain is set.
func writeTable(w io.Writer, styles *Styles, items []model.CompletionItem, trimmed, plain bool) error {
	rows := tableRows(items)

	if plain {
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, strings.Join(tableHeaders, "\t"))

		for _, row := range rows {
			fmt.Fprintln(tw, strings.Join(row, "\t"))
		}

		if trimmed {
			fmt.Fprintln(tw, "...\t(trimmed)")
		}

		return errors.Wrap(tw.Flush(), "write table")
	}

	if len(items) == 0 {
		_, err := fmt.Fprintln(w, styles.Dim.Render("no completions"))

		return errors.Wrap(err, "write table")
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styles.Border).
		Headers(tableHeaders...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			cell := lipgloss.NewStyle().Padding(0, 1)

			switch {
			case row == table.HeaderRow:
				return styles.Header
			case col == 1:
				return styles.Level(items[row].MatchLevel).Padding(0, 1)
			case col == 2:
				return styles.Kind(items[row].Kind).Padding(0, 1)
			case col == 0 || col == 4:
				return styles.Dim.Padding(0, 1).Align(lipgloss.Right)
			case col == 5:
				return styles.Muted.Padding(0, 1)
			default:
				return cell
			}
		})

	_, err := fmt.Fprintln(w, t.Render())
	if err == nil && trimmed {
		_, err = fmt.Fprintln(w, styles.Dim.Render(fmt.Sprintf("showing the first %d items", len(items))))
	}

	return errors.Wrap(err, "write table")
}
