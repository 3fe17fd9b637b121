package highlight

import (
	"github.com/lumen-editor/tmcore/grammar"
	"github.com/lumen-editor/tmcore/regexp"
)

type label int

const (
	labelEnd label = iota
	labelBegin
	labelNormal
)

// candidate is one winning pattern search result: where it starts, which
// rule produced it, and its capture groups.
type candidate struct {
	Start, End int
	Groups     []regexp.Range
	Label      label
	Rule       *grammar.Rule
}

// searchPatterns finds the earliest match among the active context's end
// pattern and every descendant match/begin rule reachable from top.Rule
// without entering another range rule's own patterns. Ties go to whichever
// candidate was found first in traversal order, since later candidates only
// replace the best on a strictly smaller Start.
func searchPatterns(text string, cursor int, top ContextItem) *candidate {
	var best *candidate

	// consider reports whether the search can stop early: no later
	// candidate can beat a match that starts exactly at cursor.
	consider := func(c *candidate) bool {
		if c == nil {
			return false
		}
		if best == nil || c.Start < best.Start {
			best = c
		}
		return best.Start == cursor
	}

	if top.FormattedEnd != nil {
		if groups, _ := top.FormattedEnd.Search(text, 0, len(text), cursor, len(text), regexp.OptionNone); groups != nil {
			if consider(&candidate{Start: groups[0].Start, End: groups[0].End, Groups: groups, Label: labelEnd, Rule: top.Rule}) {
				return best
			}
		}
	}

	visited := map[*grammar.Rule]bool{}
	var walk func(rule *grammar.Rule) bool
	walk = func(rule *grammar.Rule) bool {
		if rule == nil || visited[rule] {
			return false
		}
		visited[rule] = true

		if rule.Include != nil {
			return walk(rule.Include)
		}

		switch {
		case rule.IsMatch():
			if groups, _ := rule.Match.Search(text, 0, len(text), cursor, len(text), regexp.OptionNone); groups != nil {
				if consider(&candidate{Start: groups[0].Start, End: groups[0].End, Groups: groups, Label: labelNormal, Rule: rule}) {
					return true
				}
			}
		case rule.IsRange():
			if groups, _ := rule.Begin.Search(text, 0, len(text), cursor, len(text), regexp.OptionNone); groups != nil {
				if consider(&candidate{Start: groups[0].Start, End: groups[0].End, Groups: groups, Label: labelBegin, Rule: rule}) {
					return true
				}
			}
		default:
			for _, child := range rule.Patterns {
				if walk(child) {
					return true
				}
			}
		}
		return false
	}

	for _, child := range top.Rule.Patterns {
		if walk(child) {
			break
		}
	}
	return best
}
