package regexp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchFindsEarliestMatchAfterFrom(t *testing.T) {
	re, err := Compile(`\d+`, OptionNone)
	require.NoError(t, err)
	defer re.Free()

	text := "ab12cd34"
	groups, err := re.Search(text, 0, len(text), 0, len(text), OptionNone)
	require.NoError(t, err)
	require.NotEmpty(t, groups)
	require.True(t, groups[0].Matched())
	assert.Equal(t, "12", groups[0].Text(text))
}

func TestSearchRespectsFromWindow(t *testing.T) {
	re, err := Compile(`\d+`, OptionNone)
	require.NoError(t, err)
	defer re.Free()

	text := "ab12cd34"
	groups, err := re.Search(text, 0, len(text), 4, len(text), OptionNone)
	require.NoError(t, err)
	require.NotEmpty(t, groups)
	assert.Equal(t, "34", groups[0].Text(text))
}

func TestSearchNoMatchReturnsNil(t *testing.T) {
	re, err := Compile(`xyz`, OptionNone)
	require.NoError(t, err)
	defer re.Free()

	groups, err := re.Search("abc", 0, 3, 0, 3, OptionNone)
	require.NoError(t, err)
	assert.Nil(t, groups)
}

func TestSearchBackreference(t *testing.T) {
	re, err := Compile(`(\w+) \1`, OptionNone)
	require.NoError(t, err)
	defer re.Free()

	text := "hello hello world"
	groups, err := re.Search(text, 0, len(text), 0, len(text), OptionNone)
	require.NoError(t, err)
	require.NotEmpty(t, groups)
	assert.Equal(t, "hello hello", groups[0].Text(text))
}

func TestSearchLookbehind(t *testing.T) {
	re, err := Compile(`(?<=\$)\w+`, OptionNone)
	require.NoError(t, err)
	defer re.Free()

	text := "cost $price today"
	groups, err := re.Search(text, 0, len(text), 0, len(text), OptionNone)
	require.NoError(t, err)
	require.NotEmpty(t, groups)
	assert.Equal(t, "price", groups[0].Text(text))
}

func TestSearchUnmatchedGroupReportsNotMatched(t *testing.T) {
	re, err := Compile(`(a)|(b)`, OptionNone)
	require.NoError(t, err)
	defer re.Free()

	groups, err := re.Search("b", 0, 1, 0, 1, OptionNone)
	require.NoError(t, err)
	require.Len(t, groups, 3)
	assert.False(t, groups[1].Matched())
	assert.True(t, groups[2].Matched())
}

func TestCompileInvalidPatternFails(t *testing.T) {
	_, err := Compile(`(unclosed`, OptionNone)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRegexpSyntax)
}
