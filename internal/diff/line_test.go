package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestDiffLines(t *testing.T) {
	before := "def solve():\n    total = 0\n    return total\n"
	after := "def solve():\n    total = 0\n    total += 1\n    return total\n"

	d := DiffLines(before, after)
	assert.Equal(t, []string{"    total += 1"}, d.Added)
	assert.Empty(t, d.Removed)
	assert.False(t, d.Empty())
}

func TestDiffLines_ReplacedLine(t *testing.T) {
	d := DiffLines("a = 1\nb = 2\n", "a = 1\nb = 3\n")
	assert.Equal(t, []string{"b = 3"}, d.Added)
	assert.Equal(t, []string{"b = 2"}, d.Removed)
}

func TestDiffLines_Identical(t *testing.T) {
	code := "x = 1\ny = 2\n"
	assert.True(t, DiffLines(code, code).Empty())
	assert.True(t, DiffLines("", "").Empty())
}

func TestSimilarity_Identity(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("print('hi')\n", "print('hi')\n"))
	assert.Equal(t, 1.0, Similarity("", ""))
}

func TestSimilarity_OrderedByCloseness(t *testing.T) {
	base := "def solve():\n    return sum(range(10))\n"
	near := "def solve():\n    return sum(range(11))\n"
	far := "class Widget:\n    pass\n"

	assert.Greater(t, Similarity(base, near), Similarity(base, far))
	assert.Greater(t, Similarity(base, near), 0.8)
}

func TestSimilarity_SymmetricAndBounded(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := rapid.StringN(0, 200, -1).Draw(t, "a")
		b := rapid.StringN(0, 200, -1).Draw(t, "b")

		ab := Similarity(a, b)
		assert.Equal(t, ab, Similarity(b, a))
		assert.GreaterOrEqual(t, ab, 0.0)
		assert.LessOrEqual(t, ab, 1.0)
	})
}

func TestCountLines(t *testing.T) {
	assert.Equal(t, 0, CountLines(""))
	assert.Equal(t, 1, CountLines("x = 1"))
	assert.Equal(t, 1, CountLines("x = 1\n"))
	assert.Equal(t, 3, CountLines("a\nb\nc\n"))
}
