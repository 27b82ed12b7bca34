package main

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/rlch/javacomplete/match"
	"github.com/rlch/javacomplete/model"
)

var (
	colorMethod   = lipgloss.Color("#3b82f6") // blue-500
	colorField    = lipgloss.Color("#06b6d4") // cyan-500
	colorVariable = lipgloss.Color("#10b981") // green-500
	colorType     = lipgloss.Color("#d946ef") // fuchsia-500
	colorKeyword  = lipgloss.Color("#f59e0b") // amber-500
	colorError    = lipgloss.Color("#ef4444") // red-500

	colorDim    = lipgloss.Color("#6b7280") // gray-500
	colorMuted  = lipgloss.Color("#9ca3af") // gray-400
	colorBorder = lipgloss.Color("#374151") // gray-700
)

// Styles holds the lipgloss styles shared by the table and the explorer.
type Styles struct {
	Method   lipgloss.Style
	Field    lipgloss.Style
	Variable lipgloss.Style
	Type     lipgloss.Style
	Keyword  lipgloss.Style
	Error    lipgloss.Style

	Dim      lipgloss.Style
	Muted    lipgloss.Style
	Bold     lipgloss.Style
	Header   lipgloss.Style
	Border   lipgloss.Style
	Selected lipgloss.Style

	SymbolPointer string
}

// DefaultStyles returns the default styles.
func DefaultStyles() *Styles {
	return &Styles{
		Method:   lipgloss.NewStyle().Foreground(colorMethod),
		Field:    lipgloss.NewStyle().Foreground(colorField),
		Variable: lipgloss.NewStyle().Foreground(colorVariable),
		Type:     lipgloss.NewStyle().Foreground(colorType),
		Keyword:  lipgloss.NewStyle().Foreground(colorKeyword).Bold(true),
		Error:    lipgloss.NewStyle().Foreground(colorError).Bold(true),

		Dim:      lipgloss.NewStyle().Foreground(colorDim),
		Muted:    lipgloss.NewStyle().Foreground(colorMuted),
		Bold:     lipgloss.NewStyle().Bold(true),
		Header:   lipgloss.NewStyle().Foreground(colorMuted).Bold(true).Padding(0, 1),
		Border:   lipgloss.NewStyle().Foreground(colorBorder),
		Selected: lipgloss.NewStyle().Bold(true).Reverse(true),

		SymbolPointer: "❯",
	}
}

// Kind returns the style for an item kind.
func (s *Styles) Kind(k model.ItemKind) lipgloss.Style {
	switch k {
	case model.ItemMethod, model.ItemConstructor:
		return s.Method
	case model.ItemField:
		return s.Field
	case model.ItemVariable:
		return s.Variable
	case model.ItemClass, model.ItemInterface, model.ItemEnum, model.ItemTypeParameter:
		return s.Type
	case model.ItemKeyword:
		return s.Keyword
	default:
		return s.Muted
	}
}

// Level returns the style for a match level; weaker matches fade out.
func (s *Styles) Level(l match.Level) lipgloss.Style {
	switch l {
	case match.Exact, match.CaseInsensitiveExact:
		return s.Bold
	case match.Prefix, match.CaseInsensitivePrefix:
		return lipgloss.NewStyle()
	default:
		return s.Dim
	}
}
