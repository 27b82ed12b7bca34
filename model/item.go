package model

import (
	"github.com/rlch/javacomplete/match"
)

// ItemKind classifies a completion item for display.
type ItemKind int

// Item kinds.
const (
	ItemMethod ItemKind = iota
	ItemField
	ItemVariable
	ItemClass
	ItemInterface
	ItemEnum
	ItemTypeParameter
	ItemConstructor
	ItemKeyword
)

func (k ItemKind) String() string {
	switch k {
	case ItemMethod:
		return "method"
	case ItemField:
		return "field"
	case ItemVariable:
		return "variable"
	case ItemClass:
		return "class"
	case ItemInterface:
		return "interface"
	case ItemEnum:
		return "enum"
	case ItemTypeParameter:
		return "type_parameter"
	case ItemConstructor:
		return "constructor"
	case ItemKeyword:
		return "keyword"
	default:
		return "unknown"
	}
}

// ItemKindForType returns the item kind used to present a type declaration.
func ItemKindForType(e *TypeElement) ItemKind {
	switch e.Kind {
	case Interface, Annotation:
		return ItemInterface
	case Enum:
		return ItemEnum
	default:
		return ItemClass
	}
}

// CompletionItem is one entry of a completion result.
type CompletionItem struct {
	Label      string
	InsertText string
	Kind       ItemKind
	Detail     string
	// SortPriority ranks items; higher values sort first.
	SortPriority int
	MatchLevel   match.Level
	// Overloads holds every member behind a grouped method item, in a
	// stable order. It is empty for other kinds.
	Overloads []*Member
}

// Result is an ordered list of completion items.
type Result struct {
	Items []CompletionItem
	// Trimmed is set when items were dropped to honour the result ceiling.
	Trimmed bool
}

// Empty is the shared "no result" value returned on failure or
// cancellation. Compare by identity; a valid result with zero items is a
// different value.
var Empty = &Result{}

// NewResult wraps items in a non-sentinel result.
func NewResult(items []CompletionItem) *Result {
	if items == nil {
		items = []CompletionItem{}
	}

	return &Result{Items: items}
}

// IsEmpty reports whether r is the Empty sentinel.
func (r *Result) IsEmpty() bool {
	return r == Empty
}
