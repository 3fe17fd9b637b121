// Package selector implements TextMate scope paths and scope selectors:
// parsing, hierarchical matching and the ordering used to iterate a theme's
// selector-to-style table deterministically.
package selector

import "strings"

// Token is one dot-separated scope component list, e.g. "string.quoted.double"
// split into ["string", "quoted", "double"].
type Token []string

// splitToken splits a dotted scope identifier into its components.
func splitToken(s string) Token {
	if s == "" {
		return nil
	}
	return strings.Split(s, ".")
}

// Path is an ordered scope path, outermost scope first, as attached to a
// substring by the grammar while highlighting.
type Path []Token

// NewPath builds a Path from dotted scope strings, outermost first. Empty
// strings are dropped.
func NewPath(scopes ...string) Path {
	p := make(Path, 0, len(scopes))
	for _, s := range scopes {
		if s == "" {
			continue
		}
		p = append(p, splitToken(s))
	}
	return p
}

// Push appends a scope token onto the path (rule/capture opens).
func (p Path) Push(scope string) Path {
	if scope == "" {
		return p
	}
	return append(p, splitToken(scope))
}

// Pop removes the last token. A highlighter never pops from an empty path;
// Pop panics if that invariant is violated, surfacing the bug immediately
// rather than silently corrupting the stack.
func (p Path) Pop() Path {
	if len(p) == 0 {
		panic("selector: Pop on empty scope path")
	}
	return p[:len(p)-1]
}

// String renders the path as a space-joined, dot-joined string for display.
func (p Path) String() string {
	parts := make([]string, len(p))
	for i, tok := range p {
		parts[i] = strings.Join(tok, ".")
	}
	return strings.Join(parts, " ")
}

// Selector is an ordered sequence of scope-token prefixes, outermost first,
// e.g. "string.quoted source" -> [["string","quoted"], ["source"]].
type Selector []Token

// Parse splits a selector string on whitespace into prefixes, each split on
// '.' into components.
func Parse(s string) Selector {
	fields := strings.Fields(s)
	sel := make(Selector, 0, len(fields))
	for _, f := range fields {
		sel = append(sel, splitToken(f))
	}
	return sel
}

// Empty reports whether the selector has no prefixes (the theme-default
// entry, registered under "").
func (s Selector) Empty() bool { return len(s) == 0 }

// componentPrefix reports whether prefix is a component-wise prefix of
// token: same length <= len(token), each component equal one for one.
func componentPrefix(token, prefix Token) bool {
	if len(prefix) > len(token) {
		return false
	}
	for i, c := range prefix {
		if token[i] != c {
			return false
		}
	}
	return true
}

// Matches reports whether the selector matches path: walking innermost to
// outermost selector prefix, each must find a path token (searching from
// the current path cursor leftward) of which it is a component-wise prefix,
// and the cursor only ever moves left.
func (s Selector) Matches(path Path) bool {
	i := len(path)
	for k := len(s) - 1; k >= 0; k-- {
		prefix := s[k]
		for {
			if i == 0 {
				return false
			}
			i--
			if componentPrefix(path[i], prefix) {
				break
			}
		}
	}
	return true
}

// Less imposes a deterministic ordering over selectors: compare prefixes
// innermost-first, then component-by-component lexicographically. A shorter
// selector that is a suffix-match of a longer one sorts first.
func Less(a, b Selector) bool {
	if equalSelector(a, b) {
		return false
	}
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if i >= len(a) {
			return true
		}
		if i >= len(b) {
			return false
		}
		l := a[len(a)-1-i]
		r := b[len(b)-1-i]
		if !equalToken(l, r) {
			return lessToken(l, r)
		}
	}
	return false
}

func lessToken(l, r Token) bool {
	n := len(l)
	if len(r) > n {
		n = len(r)
	}
	for j := 0; j < n; j++ {
		if j >= len(l) {
			return true
		}
		if j >= len(r) {
			return false
		}
		if l[j] != r[j] {
			return l[j] < r[j]
		}
	}
	return false
}

func equalToken(l, r Token) bool {
	if len(l) != len(r) {
		return false
	}
	for i := range l {
		if l[i] != r[i] {
			return false
		}
	}
	return true
}

func equalSelector(a, b Selector) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !equalToken(a[i], b[i]) {
			return false
		}
	}
	return true
}
