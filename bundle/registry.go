// Package bundle indexes TextMate bundles (syntaxes and themes) and hands
// out compiled grammars and the active theme on demand. An fsnotify watch
// can keep the indexes current as bundle directories change on disk.
package bundle

import (
	"fmt"
	"io/fs"
	"iter"
	"log/slog"
	"maps"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/lumen-editor/tmcore/grammar"
	"github.com/lumen-editor/tmcore/plist"
	"github.com/lumen-editor/tmcore/theme"
)

// ChangeKind identifies what a ChangeEvent reports.
type ChangeKind int

const (
	ChangeSyntaxAdded ChangeKind = iota
	ChangeThemeChanged
)

// ChangeEvent is emitted on the channel returned by Watch.
type ChangeEvent struct {
	Kind ChangeKind
	Path string
}

// Registry indexes fileExtension->scopeName, scopeName->syntax plist, and
// themeName->theme, and caches compiled grammars behind a single-writer
// mutex.
type Registry struct {
	mu sync.Mutex

	fileTypes map[string]string       // extension (no leading dot) -> scopeName
	syntaxes  map[string]plist.Value  // scopeName -> raw grammar plist
	themes    map[string]*theme.Theme // themeName -> compiled theme

	grammarCache *sync.Map // scopeName -> *grammar.Grammar

	activeThemeName string
	watcher         *fsnotify.Watcher
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{
		fileTypes:    map[string]string{},
		syntaxes:     map[string]plist.Value{},
		themes:       map[string]*theme.Theme{},
		grammarCache: &sync.Map{},
	}
}

// LoadSyntaxFile parses one *.tmLanguage/.plist syntax file and indexes it
// by scopeName and fileTypes.
func (r *Registry) LoadSyntaxFile(path string) error {
	v, err := plist.ParseFile(path)
	if err != nil {
		return fmt.Errorf("bundle: loading syntax %s: %w", path, err)
	}
	scopeName := v.Dict.StringOr("scopeName", "")
	if scopeName == "" {
		return fmt.Errorf("bundle: %s has no scopeName", path)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.syntaxes[scopeName] = v
	r.grammarCache.Delete(scopeName) // invalidate any stale compile
	for _, ft := range v.Dict.StringArray("fileTypes") {
		r.fileTypes[strings.TrimPrefix(ft, ".")] = scopeName
	}
	return nil
}

// LoadThemeFile parses one *.tmTheme file and indexes it by its "name" key.
func (r *Registry) LoadThemeFile(path string) error {
	v, err := plist.ParseFile(path)
	if err != nil {
		return fmt.Errorf("bundle: loading theme %s: %w", path, err)
	}
	name := v.Dict.StringOr("name", path)
	th := theme.Compile(v)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.themes[name] = th
	if r.activeThemeName == "" {
		r.activeThemeName = name
	}
	return nil
}

// WalkBundles discovers *.tmbundle/Syntaxes/*.{plist,tmLanguage} and
// *.tmTheme files under root and loads each.
func (r *Registry) WalkBundles(root string) error {
	for path := range syntaxFilesUnder(root) {
		if err := r.LoadSyntaxFile(path); err != nil {
			slog.Warn("bundle: skipping unreadable syntax file", "path", path, "error", err)
		}
	}
	for path := range themeFilesUnder(root) {
		if err := r.LoadThemeFile(path); err != nil {
			slog.Warn("bundle: skipping unreadable theme file", "path", path, "error", err)
		}
	}
	return nil
}

func syntaxFilesUnder(root string) iter.Seq[string] {
	return func(yield func(string) bool) {
		filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return nil
			}
			if !strings.Contains(filepath.ToSlash(path), "/Syntaxes/") {
				return nil
			}
			if ext := filepath.Ext(path); ext == ".plist" || ext == ".tmLanguage" {
				if !yield(path) {
					return filepath.SkipAll
				}
			}
			return nil
		})
	}
}

func themeFilesUnder(root string) iter.Seq[string] {
	return func(yield func(string) bool) {
		filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return nil
			}
			if filepath.Ext(path) == ".tmTheme" {
				if !yield(path) {
					return filepath.SkipAll
				}
			}
			return nil
		})
	}
}

// Grammar compiles (or returns the cached compile of) the grammar for
// scopeName. A missing scope yields a sentinel empty grammar rather than an
// error: highlighting it produces a single default-styled span per line
// since its root has no patterns.
func (r *Registry) Grammar(scopeName string) *grammar.Grammar {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, err := grammar.Compile(r.syntaxes, scopeName, r.grammarCache)
	if err != nil {
		slog.Warn("bundle: grammar missing, using empty sentinel", "scope", scopeName, "error", err)
		return &grammar.Grammar{ScopeName: scopeName, Root: &grammar.Rule{}}
	}
	return g
}

// GrammarForExtension resolves extension (with or without a leading dot) to
// a scopeName via fileTypes and compiles it. Bundles are inconsistent about
// whether fileTypes entries carry a leading dot, so both forms resolve.
func (r *Registry) GrammarForExtension(extension string) (*grammar.Grammar, bool) {
	r.mu.Lock()
	scopeName, ok := r.fileTypes[strings.TrimPrefix(extension, ".")]
	r.mu.Unlock()
	if !ok {
		return nil, false
	}
	return r.Grammar(scopeName), true
}

// GrammarForFileName tries the file's extension, then its bare basename (for
// extensionless conventions like "Makefile"), against fileTypes.
func (r *Registry) GrammarForFileName(name string) (*grammar.Grammar, bool) {
	if g, ok := r.GrammarForExtension(filepath.Ext(name)); ok {
		return g, true
	}
	return r.GrammarForExtension(filepath.Base(name))
}

// Theme returns the currently active theme, or nil if none is loaded.
func (r *Registry) Theme() *theme.Theme {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.themes[r.activeThemeName]
}

// SetActiveTheme switches the active theme by name.
func (r *Registry) SetActiveTheme(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.themes[name]; !ok {
		return fmt.Errorf("bundle: unknown theme %q", name)
	}
	r.activeThemeName = name
	return nil
}

// ThemeNames lists every loaded theme's name.
func (r *Registry) ThemeNames() iter.Seq[string] {
	r.mu.Lock()
	defer r.mu.Unlock()
	return maps.Keys(maps.Clone(r.themes))
}

// FileTypes lists every indexed file extension with its scope name.
func (r *Registry) FileTypes() iter.Seq2[string, string] {
	r.mu.Lock()
	defer r.mu.Unlock()
	return maps.All(maps.Clone(r.fileTypes))
}

// Watch starts an fsnotify watch over dirs and returns a channel of change
// events: a modified *.tmTheme is reloaded into the theme index under its
// name, replacing the active theme when the names are equal, and reported
// (ChangeThemeChanged); a modified syntax file invalidates its grammar
// cache entry and republishes (ChangeSyntaxAdded) so the next Grammar call
// recompiles it.
func (r *Registry) Watch(dirs ...string) (<-chan ChangeEvent, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("bundle: starting watcher: %w", err)
	}
	for _, dir := range dirs {
		if err := w.Add(dir); err != nil {
			w.Close()
			return nil, fmt.Errorf("bundle: watching %s: %w", dir, err)
		}
	}
	r.watcher = w

	events := make(chan ChangeEvent, 16)
	go func() {
		defer close(events)
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				switch filepath.Ext(ev.Name) {
				case ".tmTheme":
					if err := r.LoadThemeFile(ev.Name); err != nil {
						slog.Warn("bundle: reload theme failed", "path", ev.Name, "error", err)
						continue
					}
					events <- ChangeEvent{Kind: ChangeThemeChanged, Path: ev.Name}
				case ".plist", ".tmLanguage":
					if err := r.LoadSyntaxFile(ev.Name); err != nil {
						slog.Warn("bundle: reload syntax failed", "path", ev.Name, "error", err)
						continue
					}
					events <- ChangeEvent{Kind: ChangeSyntaxAdded, Path: ev.Name}
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				slog.Warn("bundle: watcher error", "error", err)
			}
		}
	}()
	return events, nil
}

// Close stops the directory watch started by Watch, if any.
func (r *Registry) Close() error {
	if r.watcher == nil {
		return nil
	}
	return r.watcher.Close()
}
