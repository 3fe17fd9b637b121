// Package highlight implements the per-line block tokenizer: given a line
// of text and the previous line's context stack, it produces styled spans
// covering the line exactly and a new context stack for the next line.
package highlight

import (
	"log/slog"
	"strings"

	"github.com/lumen-editor/tmcore/grammar"
	"github.com/lumen-editor/tmcore/regexp"
	"github.com/lumen-editor/tmcore/selector"
	"github.com/lumen-editor/tmcore/theme"
)

// Span is one styled run of a highlighted line.
type Span struct {
	Start, Length int
	Style         theme.Style
	ScopePath     string
}

// Highlighter combines one compiled grammar with one theme. Both are
// immutable and may be shared across documents; Highlighter itself holds no
// per-document state.
type Highlighter struct {
	Grammar *grammar.Grammar
	Theme   *theme.Theme
}

// New builds a Highlighter for g styled by th.
func New(g *grammar.Grammar, th *theme.Theme) *Highlighter {
	return &Highlighter{Grammar: g, Theme: th}
}

// HighlightLine tokenizes text, resuming from prev (nil starts fresh at
// the grammar root). It returns the emitted spans (partitioning
// [0, len(text)) exactly), the state to carry into the next line, and that
// state's hash.
func (h *Highlighter) HighlightLine(text string, prev *State) ([]Span, State, uint64) {
	var stack []ContextItem
	var path selector.Path

	if prev != nil && len(prev.Stack) > 0 {
		stack = append([]ContextItem(nil), prev.Stack...)
		path = append(selector.Path(nil), prev.Path...)
	} else {
		stack = []ContextItem{{Rule: h.Grammar.Root}}
	}

	var spans []Span
	cursor := 0

	emit := func(start, length int) {
		if length <= 0 {
			return
		}
		spans = append(spans, Span{Start: start, Length: length, Style: h.Theme.FindStyle(path), ScopePath: path.String()})
	}

	for cursor < len(text) {
		top := stack[len(stack)-1]
		win := searchPatterns(text, cursor, top)

		if win == nil {
			emit(cursor, len(text)-cursor)
			break
		}

		if win.Start > cursor {
			emit(cursor, win.Start-cursor)
		}

		switch win.Label {
		case labelEnd:
			// The content scope pushed when this context's begin matched is
			// still on path; pop it before styling the end-match itself
			// with the rule's own (transient) name.
			if top.Rule.ContentName != "" {
				path = path.Pop()
			}
			path = path.Push(top.Rule.Name)
			emitMatchSpan(h, &spans, &path, text, win.Start, win.End, win.Groups, top.Rule.EndCaptures)
			path = popScope(path, top.Rule.Name)
			stack = stack[:len(stack)-1]

		case labelBegin:
			path = path.Push(win.Rule.Name)
			emitMatchSpan(h, &spans, &path, text, win.Start, win.End, win.Groups, win.Rule.BeginCaptures)
			path = popScope(path, win.Rule.Name)
			formattedEnd := formatEndPattern(win.Rule.End, win.Groups, text)
			compiledEnd, err := regexp.Compile(formattedEnd, regexp.OptionCaptureGroup)
			if err != nil {
				slog.Warn("highlight: formatted end pattern failed to compile", "pattern", formattedEnd, "error", err)
			}
			stack = append(stack, ContextItem{Rule: win.Rule, FormattedEnd: compiledEnd, endSource: formattedEnd})
			if win.Rule.ContentName != "" {
				path = path.Push(win.Rule.ContentName)
			}

		case labelNormal:
			path = path.Push(win.Rule.Name)
			emitMatchSpan(h, &spans, &path, text, win.Start, win.End, win.Groups, win.Rule.Captures)
			path = popScope(path, win.Rule.Name)
		}

		if win.End == win.Start {
			// Zero-width match loop guard: advance one character, styled
			// with the current scope, rather than spinning at the same
			// cursor forever.
			emit(win.Start, 1)
			cursor = win.Start + 1
		} else {
			cursor = win.End
		}
	}

	next := State{Stack: stack, Path: path}
	if next.trivial() {
		next = State{Stack: []ContextItem{{Rule: h.Grammar.Root}}}
	}
	return spans, next, next.Hash()
}

// popScope undoes the transient push of a rule's own name around its span.
// A no-op when name is empty, since Path.Push treats "" as a no-op push.
func popScope(path selector.Path, name string) selector.Path {
	if name == "" {
		return path
	}
	return path.Pop()
}

// emitMatchSpan tiles [matchStart, matchEnd) with spans: capture group
// sub-ranges (processed in index order, each styled with its sub-rule's
// Name pushed onto path) and, between/around them, the surrounding spans
// styled with path as already set by the caller (with the rule's own Name
// pushed). The match range stays an exact partition while captures
// still get their own style, as if the whole match were painted with the
// rule's format first and the capture formats overlaid on top.
func emitMatchSpan(h *Highlighter, spans *[]Span, path *selector.Path, text string, matchStart, matchEnd int, groups []regexp.Range, captures map[int]*grammar.Rule) {
	pos := matchStart
	emitPlain := func(start, end int) {
		if end > start {
			*spans = append(*spans, Span{Start: start, Length: end - start, Style: h.Theme.FindStyle(*path), ScopePath: path.String()})
		}
	}

	if captures != nil {
		for i := 1; i < len(groups); i++ {
			g := groups[i]
			if !g.Matched() || g.Start < pos {
				continue
			}
			sub, ok := captures[i]
			if !ok {
				continue
			}
			emitPlain(pos, g.Start)
			*path = path.Push(sub.Name)
			*spans = append(*spans, Span{Start: g.Start, Length: g.Len(), Style: h.Theme.FindStyle(*path), ScopePath: path.String()})
			*path = popScope(*path, sub.Name)
			pos = g.End
		}
	}
	emitPlain(pos, matchEnd)
}

// formatEndPattern substitutes \0..\9 backreferences in an end pattern
// source with the corresponding captured text from the begin-match that
// opened this context. Substitution is literal, matching TextMate
// convention (end backreferences are almost always simple identifiers,
// e.g. a heredoc tag captured by \w+).
func formatEndPattern(end string, beginGroups []regexp.Range, text string) string {
	if !strings.ContainsRune(end, '\\') {
		return end
	}
	var b strings.Builder
	for i := 0; i < len(end); i++ {
		c := end[i]
		if c == '\\' && i+1 < len(end) && end[i+1] >= '0' && end[i+1] <= '9' {
			idx := int(end[i+1] - '0')
			if idx < len(beginGroups) && beginGroups[idx].Matched() {
				b.WriteString(beginGroups[idx].Text(text))
			}
			i++
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}
