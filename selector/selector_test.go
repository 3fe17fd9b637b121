package selector

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchesScopeQuoted(t *testing.T) {
	path := NewPath("source.xml", "string.quoted.double.xml")

	assert.True(t, Parse("string.quoted").Matches(path))
	assert.False(t, Parse("string quoted").Matches(path), "two separate prefixes, 'quoted' is a component not a scope")
	assert.False(t, Parse("string.quoted source").Matches(path), "order must be respected")
	assert.True(t, Parse("source").Matches(path))
	assert.True(t, Parse("source string.quoted").Matches(path))
}

func TestMatchesRequiresOrderPreservingInjectiveMap(t *testing.T) {
	// A selector matches iff there's an injective, order-preserving map
	// from its prefixes to the path's tokens such that each prefix is a
	// component-wise prefix of its mapped token.
	path := NewPath("a.b", "c.d", "e.f")

	assert.True(t, Parse("a c e").Matches(path))
	assert.True(t, Parse("a.b c.d e.f").Matches(path))
	assert.False(t, Parse("e a").Matches(path), "out of order")
	assert.False(t, Parse("a.b.c").Matches(path), "prefix longer than any token")
}

func TestMatchesEmptySelectorAlwaysMatches(t *testing.T) {
	assert.True(t, Parse("").Matches(NewPath("a.b")))
	assert.True(t, Parse("").Matches(NewPath()))
}

func TestMatchesNeverPopsBelowZero(t *testing.T) {
	assert.False(t, Parse("a b c").Matches(NewPath("a")))
}

func TestPathPushPop(t *testing.T) {
	p := NewPath("source.xml")
	p = p.Push("string.quoted.double")
	assert.Equal(t, "source.xml string.quoted.double", p.String())
	p = p.Pop()
	assert.Equal(t, "source.xml", p.String())
}

func TestPathPopOnEmptyPanics(t *testing.T) {
	assert.Panics(t, func() {
		NewPath().Pop()
	})
}

func TestLessOrdersBySelectorSortDeterministically(t *testing.T) {
	sels := []Selector{
		Parse("string.quoted.double"),
		Parse("string"),
		Parse("string.quoted"),
		Parse(""),
		Parse("source.xml string"),
	}
	sort.Slice(sels, func(i, j int) bool { return Less(sels[i], sels[j]) })

	// empty selector (theme default) sorts first; deeper suffixes of the
	// same scope sort after shallower ones.
	assert.True(t, sels[0].Empty())
	for i := 1; i < len(sels); i++ {
		assert.False(t, Less(sels[i], sels[i-1]), "sort.Slice result must already satisfy Less in order")
	}
}

func TestLessIsIrreflexive(t *testing.T) {
	s := Parse("string.quoted")
	assert.False(t, Less(s, s))
}
