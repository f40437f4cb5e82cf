package streetcover

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// matrixOf fills a PathMatrix from explicit pair costs.
func matrixOf(costs map[pairKey]float64) *PathMatrix {
	pm := newPathMatrix()
	for k, cost := range costs {
		pm.set(k.u, k.v, cost, []int{})
	}
	return pm
}

func TestExactMatcherFindsOptimum(t *testing.T) {
	// greedy would grab (0,1) for 1 and be stuck with (2,3) for 10;
	// the optimum crosses: (0,2) + (1,3) = 4
	pm := matrixOf(map[pairKey]float64{
		{0, 1}: 1, {2, 3}: 10,
		{0, 2}: 2, {1, 3}: 2,
		{0, 3}: 100, {1, 2}: 100,
	})

	matching, err := (&exactMatcher{}).Solve(pm, []int{0, 1, 2, 3})
	require.NoError(t, err)

	assert.Equal(t, 4.0, matching.TotalCost)
	require.Len(t, matching.Pairs, 2)
	assert.Equal(t, MatchedPair{U: 0, V: 2, Cost: 2, Path: []int{}}, matching.Pairs[0])
	assert.Equal(t, MatchedPair{U: 1, V: 3, Cost: 2, Path: []int{}}, matching.Pairs[1])
}

func TestGreedyMatcherSwapRefinement(t *testing.T) {
	pm := matrixOf(map[pairKey]float64{
		{0, 1}: 1, {2, 3}: 10,
		{0, 2}: 2, {1, 3}: 2,
		{0, 3}: 100, {1, 2}: 100,
	})

	matching, err := (&greedyMatcher{}).Solve(pm, []int{0, 1, 2, 3})
	require.NoError(t, err)

	// the swap pass recombines the greedy (0,1)(2,3) start into the optimum
	assert.Equal(t, 4.0, matching.TotalCost)
	assert.Equal(t, 0, matching.Pairs[0].U)
	assert.Equal(t, 2, matching.Pairs[0].V)
}

func TestMatchersRejectOddCount(t *testing.T) {
	pm := matrixOf(map[pairKey]float64{{0, 1}: 1})

	_, err := (&exactMatcher{}).Solve(pm, []int{0, 1, 2})
	assert.ErrorIs(t, err, ErrNoMatching)

	_, err = (&greedyMatcher{}).Solve(pm, []int{0, 1, 2})
	assert.ErrorIs(t, err, ErrNoMatching)
}

func TestMatchersEmptyInput(t *testing.T) {
	pm := newPathMatrix()

	matching, err := (&exactMatcher{}).Solve(pm, nil)
	require.NoError(t, err)
	assert.Empty(t, matching.Pairs)
	assert.Zero(t, matching.TotalCost)
}

func TestExactMatcherUnreachablePair(t *testing.T) {
	// no finite cost for any pairing that covers vertex 3
	pm := matrixOf(map[pairKey]float64{{0, 1}: 1})

	_, err := (&exactMatcher{}).Solve(pm, []int{0, 1, 2, 3})
	assert.ErrorIs(t, err, ErrNoMatching)
}

func TestAutoMatcherRespectsLimit(t *testing.T) {
	pm := matrixOf(map[pairKey]float64{
		{0, 1}: 1, {2, 3}: 10,
		{0, 2}: 2, {1, 3}: 2,
		{0, 3}: 100, {1, 2}: 100,
	})

	// both regimes must cover all vertices; on this input they agree
	for _, limit := range []int{2, 10} {
		matching, err := (&autoMatcher{limit: limit}).Solve(pm, []int{0, 1, 2, 3})
		require.NoError(t, err)
		assert.Equal(t, 4.0, matching.TotalCost)
	}
}
