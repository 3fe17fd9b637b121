package theme

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/lumen-editor/tmcore/plist"
	"github.com/lumen-editor/tmcore/selector"
)

// entry pairs a compiled selector with the style it contributes; entries
// are kept sorted by selector.Less so FindStyle iterates deterministically
// regardless of the plist <settings> array's original order.
type entry struct {
	sel   selector.Selector
	style Style
}

// Theme is a compiled selector-to-style table plus the theme-default style
// registered under the empty selector.
type Theme struct {
	Name    string
	Default Style
	entries []entry
}

// Compile iterates a .tmTheme plist's "settings" array in document order
// and builds a sorted selector table.
func Compile(root plist.Value) *Theme {
	t := &Theme{
		Name: root.Dict.StringOr("name", ""),
	}

	settingsList, ok := root.Dict.Get("settings")
	if !ok || settingsList.Kind != plist.KindArray {
		return t
	}

	for _, item := range settingsList.Array {
		if item.Kind != plist.KindDict {
			continue
		}
		style := parseSettings(item.Dict.DictOr("settings"))
		scopeStr, hasScope := item.Dict.Get("scope")

		if !hasScope || scopeStr.Kind != plist.KindString || scopeStr.String == "" {
			// Entry with a name but no scope is the theme-default.
			t.Default = t.Default.Merge(style)
			t.entries = append(t.entries, entry{sel: selector.Parse(""), style: style})
			continue
		}

		for _, part := range strings.Split(scopeStr.String, ",") {
			sel := selector.Parse(strings.TrimSpace(part))
			t.entries = append(t.entries, entry{sel: sel, style: style})
		}
	}

	sort.SliceStable(t.entries, func(i, j int) bool {
		return selector.Less(t.entries[i].sel, t.entries[j].sel)
	})

	return t
}

// parseSettings reads the recognised foreground/background/fontStyle/caret
// keys from a theme settings dict, warning on anything else.
func parseSettings(d plist.Dict) Style {
	var s Style
	for _, key := range d.Keys() {
		v, _ := d.Get(key)
		if v.Kind != plist.KindString {
			continue
		}
		switch key {
		case "foreground":
			if c, err := parseColor(v.String); err == nil {
				s.Foreground = &c
			} else {
				slog.Warn("theme: invalid foreground color", "value", v.String, "error", err)
			}
		case "background":
			if c, err := parseColor(v.String); err == nil {
				s.Background = &c
			} else {
				slog.Warn("theme: invalid background color", "value", v.String, "error", err)
			}
		case "caret":
			if c, err := parseColor(v.String); err == nil {
				s.Caret = &c
			} else {
				slog.Warn("theme: invalid caret color", "value", v.String, "error", err)
			}
		case "fontStyle":
			s.Weight = WeightNormal
			s.Italic = triFalse
			s.Underline = triFalse
			for _, flag := range strings.Fields(v.String) {
				switch flag {
				case "bold":
					s.Weight = WeightBold
				case "italic":
					s.Italic = triTrue
				case "underline":
					s.Underline = triTrue
				default:
					slog.Warn("theme: unknown fontStyle flag", "flag", flag)
				}
			}
		default:
			slog.Warn("theme: unrecognised settings key", "key", key)
		}
	}
	return s
}

// FindStyle starts from the default style and merges every registered
// selector that matches path, in selector order, later entries overriding
// earlier ones. Deterministic and order-independent across runs because
// entries are pre-sorted at Compile time.
func (t *Theme) FindStyle(path selector.Path) Style {
	style := t.Default
	for _, e := range t.entries {
		if e.sel.Matches(path) {
			style = style.Merge(e.style)
		}
	}
	return style
}
