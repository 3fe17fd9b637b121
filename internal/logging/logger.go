// Package logging provides a colorized slog.Handler for tmcore's CLIs.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/lumen-editor/tmcore/internal/styles"
)

var currentLevel = slog.LevelInfo

// ColorTextHandler renders one line per record: a colored level tag, the
// message, then space-separated key=value attributes.
type ColorTextHandler struct {
	w io.Writer
}

func NewColorTextHandler(w io.Writer) *ColorTextHandler {
	return &ColorTextHandler{w: w}
}

func (h *ColorTextHandler) Handle(_ context.Context, r slog.Record) error {
	var levelText string
	switch r.Level {
	case slog.LevelDebug:
		levelText = styles.LogDebugStyle.Render("DEBUG")
	case slog.LevelInfo:
		levelText = styles.LogInfoStyle.Render("INFO")
	case slog.LevelWarn:
		levelText = styles.LogWarnStyle.Render("WARN")
	case slog.LevelError:
		levelText = styles.LogErrorStyle.Render("ERROR")
	default:
		levelText = r.Level.String()
	}

	var attrs strings.Builder
	r.Attrs(func(a slog.Attr) bool {
		fmt.Fprintf(&attrs, " %s=%s", a.Key, formatAttrValue(a.Value))
		return true
	})

	_, err := fmt.Fprintf(h.w, "%s %s%s\n", levelText, r.Message, attrs.String())
	return err
}

func formatAttrValue(v slog.Value) string {
	switch v.Kind() {
	case slog.KindString:
		return styles.MutedStyle.Render(fmt.Sprintf("%q", v.String()))
	case slog.KindInt64:
		return fmt.Sprintf("%d", v.Int64())
	case slog.KindDuration:
		return v.Duration().String()
	default:
		return fmt.Sprintf("%v", v.Any())
	}
}

func (h *ColorTextHandler) WithAttrs(_ []slog.Attr) slog.Handler { return h }
func (h *ColorTextHandler) WithGroup(_ string) slog.Handler      { return h }
func (h *ColorTextHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= currentLevel
}

// Init installs a ColorTextHandler on slog's default logger at the given
// level ("debug", "info", "warn", "error"; anything else is "info").
func Init(level string) {
	currentLevel = parseLevel(level)
	slog.SetDefault(slog.New(NewColorTextHandler(os.Stderr)))
}

// SetOutput reinstalls the default handler writing to w, for tests and
// embedding hosts that capture log output.
func SetOutput(w io.Writer) {
	slog.SetDefault(slog.New(NewColorTextHandler(w)))
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
