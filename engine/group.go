package engine

import (
	"cmp"
	"slices"

	"github.com/rlch/javacomplete/match"
	"github.com/rlch/javacomplete/model"
)

// Group is one display candidate: a single field or nested type, or every
// overload of a method name.
type Group struct {
	Name  string
	Kind  model.MemberKind
	Level match.Level
	// Members holds the overloads ordered by signature, or the single member.
	Members []*model.Member
}

type groupKey struct {
	kind model.MemberKind
	name string
}

// GroupCandidates merges same-named methods into one group and gives every
// other member a group of its own. A method group keeps the first match
// level recorded for its name. Groups are sorted, and since a match level
// depends only on the name, every overload scores the same and the result
// does not depend on input order.
func GroupCandidates(candidates []Candidate) []Group {
	methods := make(map[string][]*model.Member)
	levels := make(map[string]match.Level)
	singles := make(map[groupKey]Candidate)

	for _, c := range candidates {
		if c.Level == match.NoMatch {
			continue
		}

		if c.Member.Kind != model.Method {
			key := groupKey{kind: c.Member.Kind, name: c.Member.Name}
			if prev, ok := singles[key]; !ok || preferSingle(c, prev) {
				singles[key] = c
			}

			continue
		}

		methods[c.Member.Name] = append(methods[c.Member.Name], c.Member)
		if _, ok := levels[c.Member.Name]; !ok {
			levels[c.Member.Name] = c.Level
		}
	}

	groups := make([]Group, 0, len(methods)+len(singles))

	for name, overloads := range methods {
		level, ok := levels[name]
		if !ok || level == match.NoMatch {
			continue
		}

		groups = append(groups, Group{
			Name:    name,
			Kind:    model.Method,
			Level:   level,
			Members: sortOverloads(overloads),
		})
	}

	for key, c := range singles {
		groups = append(groups, Group{
			Name:    key.name,
			Kind:    key.kind,
			Level:   c.Level,
			Members: []*model.Member{c.Member},
		})
	}

	slices.SortFunc(groups, compareGroups)

	return groups
}

// preferSingle breaks ties between two same-named non-method members
// independently of arrival order.
func preferSingle(c, prev Candidate) bool {
	if c.Level != prev.Level {
		return c.Level.Better(prev.Level)
	}

	return declaringName(c.Member) < declaringName(prev.Member)
}

// sortOverloads orders overloads by signature and drops duplicates of the
// same signature reached through different supertypes.
func sortOverloads(members []*model.Member) []*model.Member {
	sorted := slices.Clone(members)
	slices.SortFunc(sorted, func(a, b *model.Member) int {
		return cmp.Or(
			cmp.Compare(a.Key(), b.Key()),
			cmp.Compare(declaringName(a), declaringName(b)),
		)
	})

	return slices.CompactFunc(sorted, func(a, b *model.Member) bool {
		return a.Key() == b.Key()
	})
}

func compareGroups(a, b Group) int {
	return cmp.Or(
		match.Compare(a.Level, b.Level),
		cmp.Compare(a.Name, b.Name),
		cmp.Compare(a.Kind, b.Kind),
	)
}

func declaringName(m *model.Member) string {
	if m.Declaring == nil {
		return ""
	}

	return m.Declaring.QualifiedName
}
