// Package match scores how well a candidate name matches the prefix the user typed.
package match

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Level is a match tier. Lower values rank higher.
type Level int

// Match tiers, best first.
const (
	Exact Level = iota
	CaseInsensitiveExact
	Prefix
	CaseInsensitivePrefix
	SubsequenceCamel
	// NoMatch is a sentinel; candidates with this level never reach a result.
	NoMatch
)

var levelNames = [...]string{
	Exact:                 "EXACT",
	CaseInsensitiveExact:  "CASE_INSENSITIVE_EXACT",
	Prefix:                "PREFIX",
	CaseInsensitivePrefix: "CASE_INSENSITIVE_PREFIX",
	SubsequenceCamel:      "SUBSEQUENCE_CAMEL",
	NoMatch:               "NO_MATCH",
}

func (l Level) String() string {
	if l < Exact || l > NoMatch {
		return "UNKNOWN"
	}

	return levelNames[l]
}

// Matched reports whether l is any tier other than NoMatch.
func (l Level) Matched() bool {
	return l >= Exact && l < NoMatch
}

// Better reports whether l ranks strictly above other.
func (l Level) Better(other Level) bool {
	return l < other
}

// Compare orders levels best first, for use with slices.SortFunc.
func Compare(a, b Level) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Score returns the tier at which name matches prefix.
// An empty prefix matches everything at the Prefix tier.
func Score(name, prefix string) Level {
	if prefix == "" {
		return Prefix
	}

	return ScoreStrict(name, prefix)
}

// ScoreStrict is Score without the empty-prefix relaxation: an empty prefix
// only matches an empty name.
func ScoreStrict(name, prefix string) Level {
	switch {
	case name == prefix:
		return Exact
	case strings.EqualFold(name, prefix):
		return CaseInsensitiveExact
	case prefix == "":
		return NoMatch
	case strings.HasPrefix(name, prefix):
		return Prefix
	case hasPrefixFold(name, prefix):
		return CaseInsensitivePrefix
	case matchesCamelHumps(name, prefix):
		return SubsequenceCamel
	default:
		return NoMatch
	}
}

func hasPrefixFold(s, prefix string) bool {
	for _, pr := range prefix {
		sr, size := utf8.DecodeRuneInString(s)
		if size == 0 || !equalFoldRune(sr, pr) {
			return false
		}

		s = s[size:]
	}

	return true
}

func equalFoldRune(a, b rune) bool {
	return a == b || unicode.ToLower(a) == unicode.ToLower(b)
}

// matchesCamelHumps reports whether prefix is a subsequence of the hump
// letters of name. Upper-case prefix letters must match a hump exactly;
// lower-case ones match either case. gCN and gcn match getClassName, and
// MV matches MAX_VALUE.
func matchesCamelHumps(name, prefix string) bool {
	humps := Humps(name)
	if humps == "" {
		return false
	}

	i := 0
	for _, pr := range prefix {
		found := false

		for i < len(humps) {
			hr, size := utf8.DecodeRuneInString(humps[i:])
			i += size

			if hr == pr || (!unicode.IsUpper(pr) && equalFoldRune(hr, pr)) {
				found = true

				break
			}
		}

		if !found {
			return false
		}
	}

	return true
}

// Humps returns the letters that start a word of an identifier, in order: the
// first letter, a letter after '_', '$' or a digit, an upper-case letter
// after a lower-case one, and the last capital of an acronym that is
// followed by a lower-case letter.
func Humps(name string) string {
	runes := []rune(name)

	var b strings.Builder

	boundary := true
	for i, r := range runes {
		if r == '_' || r == '$' || unicode.IsDigit(r) {
			boundary = true

			continue
		}

		if !unicode.IsLetter(r) {
			boundary = false

			continue
		}

		if boundary || startsWord(runes, i) {
			b.WriteRune(r)
		}

		boundary = false
	}

	return b.String()
}

func startsWord(runes []rune, i int) bool {
	if i == 0 || !unicode.IsUpper(runes[i]) {
		return false
	}

	prev := runes[i-1]
	if unicode.IsLower(prev) {
		return true
	}

	return unicode.IsUpper(prev) && i+1 < len(runes) && unicode.IsLower(runes[i+1])
}
