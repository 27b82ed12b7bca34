package main

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/rlch/javacomplete/model"
)

var ErrFilterNotBool = errors.New("filter expression must return a boolean")

// itemEnv is what a --where expression sees for each item.
type itemEnv struct {
	Label     string   `expr:"label"`
	Insert    string   `expr:"insert"`
	Kind      string   `expr:"kind"`
	Detail    string   `expr:"detail"`
	Priority  int      `expr:"priority"`
	Level     string   `expr:"level"`
	Overloads []string `expr:"overloads"`
}

func newItemEnv(item model.CompletionItem) itemEnv {
	overloads := make([]string, len(item.Overloads))
	for i, m := range item.Overloads {
		overloads[i] = m.Detail()
	}

	return itemEnv{
		Label:     item.Label,
		Insert:    item.InsertText,
		Kind:      item.Kind.String(),
		Detail:    item.Detail,
		Priority:  item.SortPriority,
		Level:     item.MatchLevel.String(),
		Overloads: overloads,
	}
}

// itemFilter keeps the items a boolean expression accepts. The zero value
// keeps everything.
type itemFilter struct {
	source  string
	program *vm.Program
}

func compileFilter(source string) (*itemFilter, error) {
	if strings.TrimSpace(source) == "" {
		return &itemFilter{}, nil
	}

	program, err := expr.Compile(source, expr.Env(itemEnv{}), expr.AsBool())
	if err != nil {
		return nil, errors.Wrapf(err, "compile filter %q", source)
	}

	return &itemFilter{source: source, program: program}, nil
}

// Apply returns the items the filter accepts, in order.
func (f *itemFilter) Apply(items []model.CompletionItem) ([]model.CompletionItem, error) {
	if f.program == nil {
		return items, nil
	}

	kept := make([]model.CompletionItem, 0, len(items))

	for _, item := range items {
		out, err := expr.Run(f.program, newItemEnv(item))
		if err != nil {
			return nil, errors.Wrapf(err, "evaluate filter %q on %s", f.source, item.Label)
		}

		ok, isBool := out.(bool)
		if !isBool {
			return nil, errors.Wrapf(ErrFilterNotBool, "%q returned %T", f.source, out)
		}

		if ok {
			kept = append(kept, item)
		}
	}

	return kept, nil
}
