package highlight

import (
	"hash/fnv"

	"github.com/lumen-editor/tmcore/grammar"
	"github.com/lumen-editor/tmcore/regexp"
	"github.com/lumen-editor/tmcore/selector"
)

// ContextItem is one open range-rule instance: the rule that opened it, and
// its end pattern after \N backreference substitution against the
// begin-match's captures.
type ContextItem struct {
	Rule         *grammar.Rule
	FormattedEnd *regexp.Regexp
	endSource    string // formatted source, kept for hashing
}

// State is the block state carried between lines: the context stack (bottom
// always the grammar root) and the scope path active at the end of the line.
type State struct {
	Stack []ContextItem
	Path  selector.Path
}

// Hash is a coarse, deterministic digest of a State, covering each stack
// frame's begin and formatted-end pattern sources plus the scope path.
// Hosts use it to decide whether a re-highlighted line's successor needs
// re-work: an unchanged hash means the successor's starting state is
// unchanged, so it does not need to be re-run.
func (s State) Hash() uint64 {
	h := fnv.New64a()
	for _, item := range s.Stack {
		if item.Rule != nil && item.Rule.Begin != nil {
			h.Write([]byte(item.Rule.Begin.String()))
		}
		h.Write([]byte{0})
		h.Write([]byte(item.endSource))
		h.Write([]byte{0})
	}
	h.Write([]byte(s.Path.String()))
	return h.Sum64()
}

// trivial reports whether the stack holds only the grammar root, in which
// case the next line should start fresh rather than carry this state.
func (s State) trivial() bool { return len(s.Stack) <= 1 }
