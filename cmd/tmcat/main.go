// Command tmcat renders a source file to the terminal with TextMate-grammar
// syntax highlighting, resolved theme colors translated to 24-bit ANSI
// escapes.
package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/lumen-editor/tmcore/bundle"
	"github.com/lumen-editor/tmcore/grammar"
	"github.com/lumen-editor/tmcore/highlight"
	"github.com/lumen-editor/tmcore/internal/logging"
)

var (
	bundleDirs []string
	syntaxName string
	themeName  string
	listOnly   bool
	plainText  bool
)

var rootCmd = &cobra.Command{
	Use:   "tmcat [file]",
	Short: "Render a file with TextMate-grammar syntax highlighting",
	Args:  cobra.MaximumNArgs(1),
	RunE:  run,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Init(viper.GetString("log_level"))
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $HOME/.tmcat.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "info", "log level (debug, info, warn, error)")
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.Flags().StringSliceVar(&bundleDirs, "bundles", defaultBundleDirs(), "directories to search for *.tmbundle and *.tmTheme files")
	rootCmd.Flags().StringVar(&syntaxName, "syntax", "", "scope name or file extension to force (default: infer from file name)")
	rootCmd.Flags().StringVar(&themeName, "theme", "", "theme name to use (default: first theme found)")
	rootCmd.Flags().BoolVar(&listOnly, "list", false, "list indexed file types and themes, then exit")
	rootCmd.Flags().BoolVar(&plainText, "no-color", false, "disable ANSI color output even on a tty")

	cobra.OnInitialize(initConfig)
}

var (
	cfgFile      string
	logLevelFlag string
)

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".tmcat")
	}
	viper.SetEnvPrefix("TMCAT")
	viper.AutomaticEnv()
	viper.SetDefault("log_level", "info")
	viper.ReadInConfig()
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
	reg := bundle.New()
	for _, dir := range bundleDirs {
		if err := reg.WalkBundles(dir); err != nil {
			return fmt.Errorf("tmcat: %w", err)
		}
	}

	if listOnly {
		return printIndex(reg)
	}

	var in io.Reader = os.Stdin
	fileName := ""
	if len(args) == 1 {
		fileName = args[0]
		f, err := os.Open(fileName)
		if err != nil {
			return fmt.Errorf("tmcat: %w", err)
		}
		defer f.Close()
		in = f
	}

	var g = resolveGrammar(reg, syntaxName, fileName)
	if themeName != "" {
		if err := reg.SetActiveTheme(themeName); err != nil {
			return fmt.Errorf("tmcat: %w", err)
		}
	}
	th := reg.Theme()
	if th == nil {
		return fmt.Errorf("tmcat: no theme loaded from %v", bundleDirs)
	}

	source, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("tmcat: reading input: %w", err)
	}

	useColor := !plainText && term.IsTerminal(int(os.Stdout.Fd()))
	return render(os.Stdout, highlight.New(g, th), string(source), useColor)
}

func resolveGrammar(reg *bundle.Registry, forced, fileName string) *grammar.Grammar {
	if forced != "" {
		if g, ok := reg.GrammarForExtension(forced); ok {
			return g
		}
		return reg.Grammar(forced)
	}
	if fileName != "" {
		if g, ok := reg.GrammarForFileName(fileName); ok {
			return g
		}
	}
	return reg.Grammar("source.plain")
}

func printIndex(reg *bundle.Registry) error {
	fmt.Println("File types:")
	for ext, scope := range reg.FileTypes() {
		fmt.Printf("  %-12s %s\n", ext, scope)
	}
	fmt.Println("Themes:")
	for name := range reg.ThemeNames() {
		fmt.Printf("  %s\n", name)
	}
	return nil
}

// render runs the highlighter line by line, carrying context state across
// lines, and writes each span as plain text or as a 24-bit-color ANSI run.
func render(w io.Writer, h *highlight.Highlighter, source string, useColor bool) error {
	var state *highlight.State
	lines := strings.SplitAfter(source, "\n")
	for _, line := range lines {
		trimmed := strings.TrimSuffix(line, "\n")
		spans, next, _ := h.HighlightLine(trimmed, state)
		state = &next

		for _, span := range spans {
			text := trimmed[span.Start : span.Start+span.Length]
			if !useColor {
				io.WriteString(w, text)
				continue
			}
			writeANSI(w, span, text)
		}
		if strings.HasSuffix(line, "\n") {
			io.WriteString(w, "\n")
		}
	}
	if useColor {
		io.WriteString(w, "\033[0m")
	}
	return nil
}

func writeANSI(w io.Writer, span highlight.Span, text string) {
	var csi bytes.Buffer
	csi.WriteString("\033[0")
	if span.Style.Bold() {
		csi.WriteString(";1")
	}
	if span.Style.IsItalic() {
		csi.WriteString(";3")
	}
	if span.Style.IsUnderline() {
		csi.WriteString(";4")
	}
	if fg := span.Style.Foreground; fg != nil {
		fmt.Fprintf(&csi, ";38;2;%d;%d;%d", fg.R, fg.G, fg.B)
	}
	if bg := span.Style.Background; bg != nil {
		fmt.Fprintf(&csi, ";48;2;%d;%d;%d", bg.R, bg.G, bg.B)
	}
	csi.WriteByte('m')
	csi.WriteTo(w)
	io.WriteString(w, text)
}
