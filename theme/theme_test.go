package theme

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumen-editor/tmcore/plist"
	"github.com/lumen-editor/tmcore/selector"
)

func mustParse(t *testing.T, doc string) plist.Value {
	t.Helper()
	v, err := plist.Parse(strings.NewReader(doc))
	require.NoError(t, err)
	return v
}

const sampleTheme = `<plist><dict>
	<key>name</key><string>Sample</string>
	<key>settings</key>
	<array>
		<dict>
			<key>settings</key>
			<dict>
				<key>foreground</key><string>#CCCCCC</string>
				<key>background</key><string>#1E1E1E</string>
			</dict>
		</dict>
		<dict>
			<key>scope</key><string>string</string>
			<key>settings</key>
			<dict><key>foreground</key><string>#FF0000</string></dict>
		</dict>
		<dict>
			<key>scope</key><string>string.quoted.double</string>
			<key>settings</key>
			<dict><key>fontStyle</key><string>italic</string></dict>
		</dict>
	</array>
</dict></plist>`

func TestCompileAndFindStyleMerges(t *testing.T) {
	th := Compile(mustParse(t, sampleTheme))

	path := selector.NewPath("string.quoted.double")
	style := th.FindStyle(path)

	require.NotNil(t, style.Foreground)
	assert.Equal(t, RGBA{0xFF, 0x00, 0x00, 0xFF}, *style.Foreground)
	assert.True(t, style.IsItalic())

	// default background carries through since nothing overrides it
	require.NotNil(t, style.Background)
	assert.Equal(t, RGBA{0x1E, 0x1E, 0x1E, 0xFF}, *style.Background)
}

func TestFindStyleIsDeterministicAndOrderIndependent(t *testing.T) {
	th := Compile(mustParse(t, sampleTheme))
	path := selector.NewPath("string.quoted.double")

	a := th.FindStyle(path)
	b := th.FindStyle(path)
	assert.Equal(t, a, b)
}

func TestParseColorWithAlpha(t *testing.T) {
	c, err := parseColor("#11223344")
	require.NoError(t, err)
	assert.Equal(t, RGBA{0x11, 0x22, 0x33, 0x44}, c)
}

func TestParseColorRejectsBadInput(t *testing.T) {
	_, err := parseColor("red")
	assert.Error(t, err)
}

func TestUnmatchedPathFallsBackToDefault(t *testing.T) {
	th := Compile(mustParse(t, sampleTheme))
	style := th.FindStyle(selector.NewPath("comment.line"))
	require.NotNil(t, style.Foreground)
	assert.Equal(t, RGBA{0xCC, 0xCC, 0xCC, 0xFF}, *style.Foreground)
}
