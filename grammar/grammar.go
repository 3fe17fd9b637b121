// Package grammar compiles a TextMate grammar plist into a resolved rule
// graph: a shared DAG of Rules rooted at one Grammar, with include edges
// that may form cycles (a grammar referencing itself via $self, or a
// repository entry referencing another that refers back).
package grammar

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/lumen-editor/tmcore/plist"
	"github.com/lumen-editor/tmcore/regexp"
)

// Rule is one node of the compiled rule graph. A rule is a range rule
// (begin+end), a match rule, an include reference, or a plain container of
// child patterns.
type Rule struct {
	Name        string
	ContentName string

	Begin *regexp.Regexp
	End   string // source text; substituted per-instance when a context opens
	Match *regexp.Regexp

	Captures      map[int]*Rule
	BeginCaptures map[int]*Rule
	EndCaptures   map[int]*Rule

	Patterns []*Rule // owning: strong references

	Include     *Rule  // resolved include target; non-owning back/cross edge
	includeName string // raw "include" string before resolution

	visited bool // cycle guard during resolveChildRules
}

// IsRange reports whether r is a begin/end range rule.
func (r *Rule) IsRange() bool { return r.Begin != nil && r.End != "" }

// IsMatch reports whether r is a plain match rule.
func (r *Rule) IsMatch() bool { return r.Match != nil }

// IsContainer reports whether r only holds child patterns.
func (r *Rule) IsContainer() bool {
	return r.Begin == nil && r.Match == nil && r.Include == nil && r.includeName == ""
}

// Grammar is the compiled rule graph for one scopeName. Immutable after
// Compile returns; safe to share across highlighter instances.
type Grammar struct {
	ScopeName string
	FileTypes []string

	Root       *Rule
	Repository map[string]*Rule

	// Optional, unused by the highlighter itself but carried through from
	// the grammar source for hosts that want them (editor folding UI,
	// "detect language from first line").
	FirstLineMatch     *regexp.Regexp
	FoldingStartMarker *regexp.Regexp
	FoldingStopMarker  *regexp.Regexp

	referenced map[string]*Rule // cross-grammar include cache, keyed by scope name
}

// resolver carries the state threaded through one Compile call: the global
// scopeName->syntax table and a cache of already-compiled cross-referenced
// grammars. Cycles are broken by each Rule's visited mark, not here.
type resolver struct {
	syntaxTable map[string]plist.Value
	cache       *sync.Map // scopeName -> *Grammar, shared across Compile calls from one Registry
}

// Compile builds a Grammar for scopeName out of syntaxTable, a map from
// scope name to the raw parsed grammar plist. cache may be nil, in which
// case cross-grammar includes each compile their own sub-grammar (no
// sharing across Compile calls).
func Compile(syntaxTable map[string]plist.Value, scopeName string, cache *sync.Map) (*Grammar, error) {
	raw, ok := syntaxTable[scopeName]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrGrammarMissing, scopeName)
	}
	if cache == nil {
		cache = &sync.Map{}
	}
	r := &resolver{syntaxTable: syntaxTable, cache: cache}
	return r.compile(raw, scopeName, nil)
}

// compile builds the grammar for scopeName. base is the root rule of the
// grammar the original caller requested, threaded through cross-grammar
// pulls so a $base include inside a pulled grammar resolves to the
// requesting grammar's root; nil means this grammar is itself the base.
func (r *resolver) compile(raw plist.Value, scopeName string, base *Rule) (*Grammar, error) {
	if cached, ok := r.cache.Load(scopeName); ok {
		return cached.(*Grammar), nil
	}

	g := &Grammar{
		ScopeName:  scopeName,
		Repository: map[string]*Rule{},
		referenced: map[string]*Rule{},
	}
	// Store a placeholder before recursing so a self-referential scope
	// pull (grammar A includes grammar A by scope name) terminates.
	r.cache.Store(scopeName, g)

	d := raw.Dict
	g.FileTypes = d.StringArray("fileTypes")

	if v, ok := d.Get("firstLineMatch"); ok && v.Kind == plist.KindString {
		g.FirstLineMatch = tryCompile(v.String)
	}
	if v, ok := d.Get("foldingStartMarker"); ok && v.Kind == plist.KindString {
		g.FoldingStartMarker = tryCompile(v.String)
	}
	if v, ok := d.Get("foldingStopMarker"); ok && v.Kind == plist.KindString {
		g.FoldingStopMarker = tryCompile(v.String)
	}

	if repoVal, ok := d.Get("repository"); ok && repoVal.Kind == plist.KindDict {
		for _, key := range repoVal.Dict.Keys() {
			v, _ := repoVal.Dict.Get(key)
			if v.Kind != plist.KindDict {
				continue
			}
			g.Repository["#"+key] = buildRaw(v.Dict)
		}
	}

	root := &Rule{}
	if patterns, ok := d.Get("patterns"); ok && patterns.Kind == plist.KindArray {
		root.Patterns = buildRawList(patterns.Array)
	}
	g.Root = root

	if base == nil {
		base = root
	}
	r.resolveChildRules(root, g, base, root)

	return g, nil
}

// buildRaw maps one plist rule dict to a Rule, compiling match/begin now.
// end stays source text: it needs per-instance backreference substitution
// when a context opens, so it cannot be compiled until then.
func buildRaw(d plist.Dict) *Rule {
	rule := &Rule{}
	rule.Name = d.StringOr("name", "")
	rule.ContentName = d.StringOr("contentName", rule.Name)

	if v, ok := d.Get("include"); ok && v.Kind == plist.KindString {
		rule.includeName = v.String
	}
	if v, ok := d.Get("match"); ok && v.Kind == plist.KindString {
		rule.Match = tryCompile(v.String)
	}
	if v, ok := d.Get("begin"); ok && v.Kind == plist.KindString {
		rule.Begin = tryCompile(v.String)
		if v, ok := d.Get("end"); ok && v.Kind == plist.KindString {
			rule.End = v.String
		} else {
			slog.Warn("grammar: begin without end, treating as non-range rule", "begin", v.String)
			rule.Begin = nil
		}
	}

	rule.Captures = buildCaptures(d, "captures")
	rule.BeginCaptures = buildCaptures(d, "beginCaptures")
	rule.EndCaptures = buildCaptures(d, "endCaptures")
	if rule.BeginCaptures == nil {
		rule.BeginCaptures = rule.Captures
	}
	if rule.EndCaptures == nil {
		rule.EndCaptures = rule.Captures
	}

	if patterns, ok := d.Get("patterns"); ok && patterns.Kind == plist.KindArray {
		rule.Patterns = buildRawList(patterns.Array)
	}
	return rule
}

func buildRawList(items []plist.Value) []*Rule {
	out := make([]*Rule, 0, len(items))
	for _, item := range items {
		if item.Kind != plist.KindDict {
			continue
		}
		out = append(out, buildRaw(item.Dict))
	}
	return out
}

func buildCaptures(d plist.Dict, key string) map[int]*Rule {
	v, ok := d.Get(key)
	if !ok || v.Kind != plist.KindDict {
		return nil
	}
	out := map[int]*Rule{}
	for _, idxStr := range v.Dict.Keys() {
		idx, err := strconv.Atoi(idxStr)
		if err != nil {
			slog.Warn("grammar: non-numeric capture index", "key", idxStr)
			continue
		}
		entry, _ := v.Dict.Get(idxStr)
		if entry.Kind != plist.KindDict {
			continue
		}
		out[idx] = buildRaw(entry.Dict)
	}
	return out
}

func tryCompile(pattern string) *regexp.Regexp {
	re, err := regexp.Compile(pattern, regexp.OptionCaptureGroup)
	if err != nil {
		slog.Warn("grammar: regex compile failed, rule disabled", "pattern", pattern, "error", err)
		return nil
	}
	return re
}

// resolveChildRules resolves rule's include edge (if any) and recurses into
// its capture sub-rules and child patterns. base is the root of the grammar
// originally requested by the caller; self is the root of the grammar
// currently being resolved, which differs from base once a cross-grammar
// scope pull has been followed.
func (r *resolver) resolveChildRules(rule *Rule, g *Grammar, base, self *Rule) {
	if rule.visited {
		return
	}
	rule.visited = true

	if rule.includeName != "" {
		rule.Include = r.resolveInclude(rule.includeName, g, base, self)
	}

	for _, sub := range rule.Captures {
		r.resolveChildRules(sub, g, base, self)
	}
	for _, sub := range rule.BeginCaptures {
		r.resolveChildRules(sub, g, base, self)
	}
	for _, sub := range rule.EndCaptures {
		r.resolveChildRules(sub, g, base, self)
	}
	for _, child := range rule.Patterns {
		r.resolveChildRules(child, g, base, self)
	}
}

func (r *resolver) resolveInclude(name string, g *Grammar, base, self *Rule) *Rule {
	switch {
	case name == "$base":
		return base
	case name == "$self":
		return self
	case strings.HasPrefix(name, "#"):
		if target, ok := g.Repository[name]; ok {
			r.resolveChildRules(target, g, base, self)
			return target
		}
		slog.Warn("grammar: pattern not in repository", "include", name)
		return nil
	default:
		// Cross-grammar scope pull: compile (or reuse the cached compile
		// of) the referenced grammar. The pulled grammar's own root
		// becomes self for its resolution, but the caller's base is
		// retained so $base inside it still reaches the outer grammar.
		if cached, ok := g.referenced[name]; ok {
			return cached
		}
		raw, ok := r.syntaxTable[name]
		if !ok {
			slog.Warn("grammar: include references unknown scope", "include", name)
			return nil
		}
		other, err := r.compile(raw, name, base)
		if err != nil {
			slog.Warn("grammar: unresolved external grammar include", "include", name, "error", err)
			return nil
		}
		g.referenced[name] = other.Root
		return other.Root
	}
}
