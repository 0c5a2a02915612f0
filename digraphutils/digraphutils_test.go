package digraphutils

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFollow(t *testing.T) {
	require := require.New(t)

	edges := map[string]string{"a": "b", "b": "c"}
	next := func(k string) (string, bool) {
		v, ok := edges[k]
		return v, ok
	}

	chain, err := Follow("a", next)
	require.NoError(err)
	require.Equal([]string{"a", "b", "c"}, chain)

	chain, err = Follow("z", next)
	require.NoError(err)
	require.Equal([]string{"z"}, chain)

	edges["c"] = "a"
	_, err = Follow("a", next)
	var cycErr *CycleError[string]
	require.True(errors.As(err, &cycErr))
	require.Equal([]string{"a", "b", "c", "a"}, cycErr.Chain)
	require.Equal("cycle: a -> b -> c -> a", err.Error())

	edges = map[string]string{"self": "self"}
	_, err = Follow("self", next)
	require.Error(err)
}

func TestReachable(t *testing.T) {
	edges := map[int][]int{1: {2, 3}, 2: {4}, 4: {2}, 5: {6}}
	got := Reachable([]int{1}, func(k int) []int { return edges[k] })
	require.Equal(t, map[int]struct{}{1: {}, 2: {}, 3: {}, 4: {}}, got)
}

func TestDOTCode(t *testing.T) {
	edges := map[string][]string{"uint": {"u32"}, "u32": {"outside"}}
	got := DOTCode([]string{"uint", "u32"}, func(k string) []string { return edges[k] }, "typedefs", "rankdir=LR")
	require.Equal(t, `digraph "typedefs" {
  rankdir=LR
  0 [label="uint"]
  1 [label="u32"]
  0 -> {1}
}
`, string(got))
}
