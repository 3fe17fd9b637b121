// Package theme compiles a TextMate .tmTheme property list into a
// selector-to-style table and resolves a scope path to a merged style.
package theme

import "fmt"

// RGBA is a theme color, alpha defaulting to fully opaque when the source
// hex string ("#RRGGBB" or "#RRGGBBAA", alpha last) carries no alpha
// channel.
type RGBA struct {
	R, G, B, A uint8
}

// Weight is the font weight axis of a Style.
type Weight int

const (
	WeightUnset Weight = iota
	WeightNormal
	WeightBold
)

// triState represents an optional boolean style flag (italic/underline):
// unset means "inherit from the base style during merge".
type triState int

const (
	triUnset triState = iota
	triFalse
	triTrue
)

func (t triState) bool() bool { return t == triTrue }

// Style is a merged set of formatting attributes. Unset fields are left at
// their zero value and inherit from the base style when merged.
type Style struct {
	Foreground *RGBA
	Background *RGBA
	Caret      *RGBA
	Weight     Weight
	Italic     triState
	Underline  triState
}

// Bold reports the resolved weight.
func (s Style) Bold() bool { return s.Weight == WeightBold }

// IsItalic reports the resolved italic flag.
func (s Style) IsItalic() bool { return s.Italic.bool() }

// IsUnderline reports the resolved underline flag.
func (s Style) IsUnderline() bool { return s.Underline.bool() }

// Merge returns a new Style with over's set fields taking precedence over
// s's, and s's fields used wherever over leaves a field unset.
func (s Style) Merge(over Style) Style {
	out := s
	if over.Foreground != nil {
		out.Foreground = over.Foreground
	}
	if over.Background != nil {
		out.Background = over.Background
	}
	if over.Caret != nil {
		out.Caret = over.Caret
	}
	if over.Weight != WeightUnset {
		out.Weight = over.Weight
	}
	if over.Italic != triUnset {
		out.Italic = over.Italic
	}
	if over.Underline != triUnset {
		out.Underline = over.Underline
	}
	return out
}

// parseColor parses "#RRGGBB" or "#RRGGBBAA" into an RGBA, alpha defaulting
// to opaque.
func parseColor(s string) (RGBA, error) {
	if len(s) != 7 && len(s) != 9 {
		return RGBA{}, fmt.Errorf("theme: bad color %q: want #RRGGBB or #RRGGBBAA", s)
	}
	if s[0] != '#' {
		return RGBA{}, fmt.Errorf("theme: bad color %q: missing '#'", s)
	}
	var r, g, b, a uint32
	a = 0xff
	if _, err := fmt.Sscanf(s[1:3], "%02x", &r); err != nil {
		return RGBA{}, fmt.Errorf("theme: bad color %q: %w", s, err)
	}
	if _, err := fmt.Sscanf(s[3:5], "%02x", &g); err != nil {
		return RGBA{}, fmt.Errorf("theme: bad color %q: %w", s, err)
	}
	if _, err := fmt.Sscanf(s[5:7], "%02x", &b); err != nil {
		return RGBA{}, fmt.Errorf("theme: bad color %q: %w", s, err)
	}
	if len(s) == 9 {
		if _, err := fmt.Sscanf(s[7:9], "%02x", &a); err != nil {
			return RGBA{}, fmt.Errorf("theme: bad color %q: %w", s, err)
		}
	}
	return RGBA{R: uint8(r), G: uint8(g), B: uint8(b), A: uint8(a)}, nil
}
