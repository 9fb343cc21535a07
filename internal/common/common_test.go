package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRelationTest(t *testing.T) {
	cases := []struct {
		name     string
		lhs, rhs float64
		op       string
		want     bool
	}{
		{"equal", 5, 5, "=", true},
		{"empty defaults to equal", 5, 5, "", true},
		{"empty defaults to equal, mismatch", 5, 4, "", false},
		{"less or equal", 3, 5, "<=", true},
		{"greater", 3, 5, ">", false},
		{"less", 3, 5, "<", true},
		{"greater or equal", 5, 5, ">=", true},
		{"not equal", 3, 5, "!=", true},
		{"unknown operator", 5, 5, "==", false},
		{"garbage operator", 5, 5, "approx", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, RelationTest(tc.lhs, tc.rhs, tc.op))
		})
	}
}

func TestStringRelationTest(t *testing.T) {
	assert.True(t, StringRelationTest("a", "a", "="))
	assert.True(t, StringRelationTest("a", "a", ""))
	assert.True(t, StringRelationTest("a", "b", "!="))
	assert.False(t, StringRelationTest("a", "b", "<"))
}

func TestLogicalNegation(t *testing.T) {
	assert.False(t, LogicalNegation(true))
	assert.True(t, LogicalNegation(false))
}

func TestRandom_ZeroIsAlwaysZero(t *testing.T) {
	r := NewRand(42)
	for i := 0; i < 1000; i++ {
		require.Zero(t, Random(r, 0))
	}
	require.Zero(t, Random(nil, 0))
}

func TestRandom_StaysWithinClosedInterval(t *testing.T) {
	r := NewRand(7)
	const max = 5
	seen := make(map[uint64]bool)

	for i := 0; i < 5000; i++ {
		v := Random(r, max)
		require.LessOrEqual(t, v, uint64(max))
		seen[v] = true
	}

	// Both bounds are reachable over repeated sampling.
	assert.True(t, seen[0], "lower bound never sampled")
	assert.True(t, seen[max], "upper bound never sampled")
}

func TestNewRand_IsDeterministic(t *testing.T) {
	a, b := NewRand(99), NewRand(99)
	for i := 0; i < 10; i++ {
		require.Equal(t, Random(a, 1000), Random(b, 1000))
	}
}

func TestModifyNumber(t *testing.T) {
	cases := []struct {
		op     string
		v      float64
		want   float64
		wantOK bool
	}{
		{"=", 3, 3, true},
		{"", 3, 3, true},
		{"+", 3, 13, true},
		{"-", 3, 7, true},
		{"*", 3, 30, true},
		{"/", 4, 2.5, true},
		{"/", 0, 10, false},
		{"%", 3, 10, false},
	}
	for _, tc := range cases {
		got, ok := ModifyNumber(10, tc.op, tc.v)
		assert.Equal(t, tc.wantOK, ok, tc.op)
		assert.Equal(t, tc.want, got, tc.op)
	}
}

func TestModifyText(t *testing.T) {
	got, ok := ModifyText("abc", "+", "def")
	assert.True(t, ok)
	assert.Equal(t, "abcdef", got)

	got, ok = ModifyText("abc", "-", "c")
	assert.False(t, ok)
	assert.Equal(t, "abc", got)
}
