// Command tmview is a read-only terminal pager for TextMate-highlighted
// source files: it never mutates the buffer it displays, only scrolls
// through it.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/lumen-editor/tmcore/bundle"
	"github.com/lumen-editor/tmcore/highlight"
	"github.com/lumen-editor/tmcore/internal/styles"
	"github.com/lumen-editor/tmcore/theme"
)

var (
	bundleDirs []string
	syntaxName string
	themeName  string
)

var rootCmd = &cobra.Command{
	Use:   "tmview <file>",
	Short: "Page through a source file with TextMate-grammar syntax highlighting",
	Args:  cobra.ExactArgs(1),
	RunE:  run,
}

func init() {
	rootCmd.Flags().StringSliceVar(&bundleDirs, "bundles", defaultBundleDirs(), "directories to search for *.tmbundle and *.tmTheme files")
	rootCmd.Flags().StringVar(&syntaxName, "syntax", "", "scope name or file extension to force")
	rootCmd.Flags().StringVar(&themeName, "theme", "", "theme name to use")
}

func defaultBundleDirs() []string {
	dirs := []string{"/usr/share/tmcore"}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".local", "share", "tmcore"))
	}
	return dirs
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	path := args[0]
	source, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("tmview: %w", err)
	}

	reg := bundle.New()
	for _, dir := range bundleDirs {
		if err := reg.WalkBundles(dir); err != nil {
			return fmt.Errorf("tmview: %w", err)
		}
	}
	if themeName != "" {
		if err := reg.SetActiveTheme(themeName); err != nil {
			return fmt.Errorf("tmview: %w", err)
		}
	}
	th := reg.Theme()
	if th == nil {
		return fmt.Errorf("tmview: no theme loaded from %v", bundleDirs)
	}
	name := syntaxName
	var g = reg.Grammar("source.plain")
	if name != "" {
		if gg, ok := reg.GrammarForExtension(name); ok {
			g = gg
		} else {
			g = reg.Grammar(name)
		}
	} else if gg, ok := reg.GrammarForFileName(path); ok {
		g = gg
	}

	rendered := renderLines(highlight.New(g, th), string(source))

	p := tea.NewProgram(newModel(path, rendered), tea.WithAltScreen())
	_, err = p.Run()
	return err
}

// renderLines runs the highlighter over every line, carrying context state
// across lines, and returns each line pre-rendered as a lipgloss string.
func renderLines(h *highlight.Highlighter, source string) []string {
	var state *highlight.State
	var out []string
	for _, line := range strings.Split(source, "\n") {
		spans, next, _ := h.HighlightLine(line, state)
		state = &next

		var b strings.Builder
		for _, span := range spans {
			text := line[span.Start : span.Start+span.Length]
			fr, fg, fb := colorOr(span.Style.Foreground, 0xcc, 0xcc, 0xcc)
			style := styles.RGBStyle(fr, fg, fb, span.Style.Bold(), span.Style.IsItalic(), span.Style.IsUnderline())
			b.WriteString(style.Render(text))
		}
		out = append(out, b.String())
	}
	return out
}

func colorOr(c *theme.RGBA, r, g, b uint8) (uint8, uint8, uint8) {
	if c == nil {
		return r, g, b
	}
	return c.R, c.G, c.B
}

type model struct {
	title    string
	viewport viewport.Model
}

func newModel(path string, lines []string) model {
	vp := viewport.New(80, 24)
	vp.SetContent(strings.Join(lines, "\n"))
	return model{title: path, viewport: vp}
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.viewport.Width = msg.Width
		m.viewport.Height = msg.Height - 2
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m model) View() string {
	header := styles.TitleStyle.Render(m.title)
	footer := styles.MutedStyle.Render(fmt.Sprintf("%3.f%% (q to quit)", m.viewport.ScrollPercent()*100))
	return lipgloss.JoinVertical(lipgloss.Left, header, m.viewport.View(), footer)
}
