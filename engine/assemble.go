package engine

import (
	"cmp"
	"slices"
	"strconv"

	"github.com/rlch/javacomplete"
	"github.com/rlch/javacomplete/match"
	"github.com/rlch/javacomplete/model"
)

// NewKeywordPriority pins the constructor-reference item above every
// scored item.
const NewKeywordPriority = 100

var levelWeights = map[match.Level]int{
	match.Exact:                 50,
	match.CaseInsensitiveExact:  40,
	match.Prefix:                30,
	match.CaseInsensitivePrefix: 20,
	match.SubsequenceCamel:      10,
}

var kindWeights = map[model.ItemKind]int{
	model.ItemVariable:      9,
	model.ItemField:         8,
	model.ItemMethod:        7,
	model.ItemClass:         6,
	model.ItemInterface:     6,
	model.ItemEnum:          6,
	model.ItemTypeParameter: 5,
	model.ItemConstructor:   4,
	model.ItemKeyword:       1,
}

// Priority derives the sort priority of an item from its match tier and a
// fixed per-kind weight. Scored items always stay below NewKeywordPriority.
func Priority(level match.Level, kind model.ItemKind) int {
	return levelWeights[level] + kindWeights[kind]
}

// AssembleOptions controls how groups become completion items.
type AssembleOptions struct {
	// Static appends the synthetic "new" constructor-reference item.
	Static bool
	// Prefix is the typed partial name, recorded on the "new" item only.
	Prefix string
	// Call inserts call parentheses after method names (member select).
	Call bool
	// EndsWithParen suppresses call parentheses when '(' already follows.
	EndsWithParen bool
	// Limits is the result ceiling policy.
	Limits javacomplete.CompletionConfig
}

// Assemble emits one item per group, appends the "new" item in a static
// context, ranks the items and applies the result ceiling. It never fails
// and returns a valid, possibly empty, result.
func Assemble(groups []Group, opts AssembleOptions) *model.Result {
	items := make([]model.CompletionItem, 0, len(groups)+1)

	for _, g := range groups {
		items = append(items, groupItem(g, opts))
	}

	if opts.Static {
		items = append(items, NewKeywordItem(opts.Prefix))
	}

	return Finish(items, opts.Limits)
}

// NewKeywordItem is the synthetic constructor-reference item (Type::new).
// It is not filtered by the match scorer.
func NewKeywordItem(prefix string) model.CompletionItem {
	return model.CompletionItem{
		Label:        "new",
		InsertText:   "new",
		Kind:         model.ItemKeyword,
		Detail:       "constructor reference",
		SortPriority: NewKeywordPriority,
		MatchLevel:   match.Score("new", prefix),
	}
}

// Finish ranks items by priority, then match tier, then label, and applies
// the ceiling when TrimToMax is set.
func Finish(items []model.CompletionItem, limits javacomplete.CompletionConfig) *model.Result {
	Rank(items)

	result := model.NewResult(items)

	if limits.TrimToMax && limits.MaxItems > 0 && len(result.Items) > limits.MaxItems {
		result.Items = result.Items[:limits.MaxItems]
		result.Trimmed = true
	}

	return result
}

// Rank sorts items in place, best first.
func Rank(items []model.CompletionItem) {
	slices.SortStableFunc(items, func(a, b model.CompletionItem) int {
		return cmp.Or(
			cmp.Compare(b.SortPriority, a.SortPriority),
			match.Compare(a.MatchLevel, b.MatchLevel),
			cmp.Compare(a.Label, b.Label),
			cmp.Compare(a.Kind, b.Kind),
		)
	})
}

func groupItem(g Group, opts AssembleOptions) model.CompletionItem {
	kind := itemKind(g)
	first := g.Members[0]

	item := model.CompletionItem{
		Label:        g.Name,
		InsertText:   g.Name,
		Kind:         kind,
		Detail:       first.Detail(),
		SortPriority: Priority(g.Level, kind),
		MatchLevel:   g.Level,
	}

	if g.Kind == model.Method {
		item.Overloads = g.Members
		if n := len(g.Members) - 1; n > 0 {
			item.Detail += " (+" + strconv.Itoa(n) + " overloads)"
		}

		if opts.Call && !opts.EndsWithParen {
			item.InsertText = callText(g)
		}
	}

	return item
}

// callText is name() when no overload takes arguments, name( otherwise.
func callText(g Group) string {
	for _, m := range g.Members {
		if m.Signature != nil && len(m.Signature.Params) > 0 {
			return g.Name + "("
		}
	}

	return g.Name + "()"
}

func itemKind(g Group) model.ItemKind {
	switch g.Kind {
	case model.Method:
		return model.ItemMethod
	case model.Field:
		return model.ItemField
	case model.Constructor:
		return model.ItemConstructor
	case model.NestedType:
		if dt, ok := g.Members[0].Type.(*model.DeclaredType); ok && dt.Element != nil {
			return model.ItemKindForType(dt.Element)
		}

		return model.ItemClass
	default:
		return model.ItemField
	}
}
