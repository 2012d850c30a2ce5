package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevenshteinDistance(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"kitten", "sitting", 3},
		{"tokyo", "tokyo", 0},
		{"新宿", "新宿区", 1},
		{"東京", "东京", 1},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, LevenshteinDistance(c.a, c.b), "%q vs %q", c.a, c.b)
	}
}

func TestSimilarity_IdentityAndSymmetry(t *testing.T) {
	words := []string{"", "a", "tokyo", "Shinjuku Washington Hotel", "新宿华盛顿酒店", "ホテル", "x1y2z3"}
	for _, a := range words {
		assert.Equal(t, 1.0, Similarity(a, a), "identity for %q", a)
		for _, b := range words {
			assert.Equal(t, Similarity(a, b), Similarity(b, a), "symmetry for %q, %q", a, b)
			s := Similarity(a, b)
			assert.True(t, s >= 0 && s <= 1, "range for %q, %q: %v", a, b, s)
		}
	}
}

func TestSimilarity_Values(t *testing.T) {
	assert.InDelta(t, 1-3.0/7, Similarity("kitten", "sitting"), 1e-9)
	assert.InDelta(t, 1-1.0/3, Similarity("新宿", "新宿区"), 1e-9)
	assert.Equal(t, 0.0, Similarity("abc", ""))
}
