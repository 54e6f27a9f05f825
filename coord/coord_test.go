package coord

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRevCRoundTrip(t *testing.T) {
	const length = 37
	for c := 1; c <= length; c++ {
		assert.Equal(t, c, RevC(RevC(c, length), length))
	}
}

func TestRevCPanicsOnOverflow(t *testing.T) {
	require.Panics(t, func() { RevC(10, 5) })
}

func TestRangeContainsRange(t *testing.T) {
	outer := Range{Pos{1, 1}, Pos{100, 100}}
	inner := Range{Pos{10, 20}, Pos{50, 60}}
	assert.True(t, outer.ContainsRange(inner))
	assert.False(t, inner.ContainsRange(outer))

	straddling := Range{Pos{90, 1}, Pos{110, 10}}
	assert.False(t, outer.ContainsRange(straddling))
}

func TestRangeIntersects(t *testing.T) {
	a := Range{Pos{1, 1}, Pos{10, 10}}
	b := Range{Pos{5, 5}, Pos{20, 20}}
	c := Range{Pos{11, 11}, Pos{20, 20}}
	assert.True(t, a.Intersects(b))
	assert.False(t, a.Intersects(c))
}
