package bundle

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumen-editor/tmcore/selector"
)

const sampleSyntax = `<plist><dict>
	<key>scopeName</key><string>source.sample</string>
	<key>fileTypes</key><array><string>smp</string></array>
	<key>patterns</key>
	<array><dict><key>match</key><string>\d+</string><key>name</key><string>constant.numeric</string></dict></array>
</dict></plist>`

const sampleTheme = `<plist><dict>
	<key>name</key><string>Sample</string>
	<key>settings</key>
	<array><dict><key>scope</key><string>constant.numeric</string><key>settings</key><dict><key>foreground</key><string>#FF0000</string></dict></dict></array>
</dict></plist>`

func writeBundle(t *testing.T, dir string) string {
	t.Helper()
	syntaxDir := filepath.Join(dir, "Sample.tmbundle", "Syntaxes")
	require.NoError(t, os.MkdirAll(syntaxDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(syntaxDir, "sample.tmLanguage"), []byte(sampleSyntax), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sample.tmTheme"), []byte(sampleTheme), 0o644))
	return dir
}

func TestWalkBundlesIndexesSyntaxAndTheme(t *testing.T) {
	dir := writeBundle(t, t.TempDir())
	reg := New()
	require.NoError(t, reg.WalkBundles(dir))

	g, ok := reg.GrammarForExtension("smp")
	require.True(t, ok)
	assert.Equal(t, "source.sample", g.ScopeName)

	th := reg.Theme()
	require.NotNil(t, th)
	style := th.FindStyle(selector.NewPath("constant.numeric"))
	require.NotNil(t, style.Foreground)
}

func TestGrammarForExtensionStripsLeadingDot(t *testing.T) {
	dir := writeBundle(t, t.TempDir())
	reg := New()
	require.NoError(t, reg.WalkBundles(dir))

	_, ok := reg.GrammarForExtension(".smp")
	assert.True(t, ok)
}

func TestGrammarMissingReturnsSentinel(t *testing.T) {
	reg := New()
	g := reg.Grammar("source.does-not-exist")
	assert.Empty(t, g.Root.Patterns)
}

func TestGrammarCompileIsCachedAcrossCalls(t *testing.T) {
	dir := writeBundle(t, t.TempDir())
	reg := New()
	require.NoError(t, reg.WalkBundles(dir))

	a := reg.Grammar("source.sample")
	b := reg.Grammar("source.sample")
	assert.Same(t, a, b, "repeated lookups must reuse the cached compile")
}

func TestSetActiveThemeRejectsUnknownName(t *testing.T) {
	reg := New()
	err := reg.SetActiveTheme("nope")
	assert.Error(t, err)
}
