package plist

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleGrammar = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
	<key>scopeName</key>
	<string>source.xml</string>
	<key>fileTypes</key>
	<array>
		<string>xml</string>
		<string>xsd</string>
	</array>
	<key>count</key>
	<integer>42</integer>
	<key>patterns</key>
	<array>
		<dict>
			<key>match</key>
			<string>foo</string>
		</dict>
	</array>
</dict>
</plist>
`

func TestParseGrammarSubset(t *testing.T) {
	v, err := Parse(strings.NewReader(sampleGrammar))
	require.NoError(t, err)
	require.Equal(t, KindDict, v.Kind)

	assert.Equal(t, "source.xml", v.Dict.StringOr("scopeName", ""))
	assert.Equal(t, []string{"xml", "xsd"}, v.Dict.StringArray("fileTypes"))

	count, ok := v.Dict.Get("count")
	require.True(t, ok)
	assert.Equal(t, KindInteger, count.Kind)
	assert.Equal(t, 42, count.Integer)

	patterns, ok := v.Dict.Get("patterns")
	require.True(t, ok)
	require.Equal(t, KindArray, patterns.Kind)
	require.Len(t, patterns.Array, 1)
	assert.Equal(t, "foo", patterns.Array[0].Dict.StringOr("match", ""))
}

func TestDictPreservesKeyOrder(t *testing.T) {
	const doc = `<plist><dict>
		<key>z</key><string>1</string>
		<key>a</key><string>2</string>
		<key>m</key><string>3</string>
	</dict></plist>`

	v, err := Parse(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, []string{"z", "a", "m"}, v.Dict.Keys())
}

func TestUnknownElementIsSkippedNotFatal(t *testing.T) {
	const doc = `<plist><dict>
		<key>scopeName</key><string>source.x</string>
		<key>flag</key><true/>
		<key>fileTypes</key><array><string>x</string></array>
	</dict></plist>`

	v, err := Parse(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, "source.x", v.Dict.StringOr("scopeName", ""))
	_, ok := v.Dict.Get("flag")
	assert.False(t, ok, "unsupported element types are skipped, not stored")
	assert.Equal(t, []string{"x"}, v.Dict.StringArray("fileTypes"))
}

func TestMalformedXMLReturnsParseError(t *testing.T) {
	_, err := Parse(strings.NewReader(`<plist><dict><key>oops</dict>`))
	require.Error(t, err)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
}

func TestDictSetOverwritesInPlace(t *testing.T) {
	d := newDict()
	d.Set("a", Value{Kind: KindInteger, Integer: 1})
	d.Set("b", Value{Kind: KindInteger, Integer: 2})
	d.Set("a", Value{Kind: KindInteger, Integer: 3})

	assert.Equal(t, []string{"a", "b"}, d.Keys())
	v, _ := d.Get("a")
	assert.Equal(t, 3, v.Integer)
}
