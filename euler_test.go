package streetcover

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// requireClosedWalk asserts the traversals chain vertex to vertex and
// return to the start.
func requireClosedWalk(t *testing.T, circuit *EulerianCircuit) {
	t.Helper()
	at := circuit.Start
	for i, tr := range circuit.Traversals {
		require.Equal(t, at, tr.From, "traversal %d does not continue the walk", i)
		at = tr.To
	}
	require.Equal(t, circuit.Start, at, "walk does not close")
}

func TestEulerianCircuitSquare(t *testing.T) {
	g, err := BuildWorkingGraph(squareSegments(), DefaultSnapTolerance)
	require.NoError(t, err)

	circuit, err := eulerianCircuit(g, 0)
	require.NoError(t, err)

	assert.Equal(t, 0, circuit.Start)
	require.Len(t, circuit.Traversals, 4)
	requireClosedWalk(t, circuit)

	seen := map[int]bool{}
	for _, tr := range circuit.Traversals {
		assert.False(t, seen[tr.edgeID], "edge %d walked twice", tr.edgeID)
		seen[tr.edgeID] = true
	}
	assert.InDelta(t, g.totalWeight(), circuit.Length(g), 1e-9)
}

func TestEulerianCircuitSplicesSubCircuits(t *testing.T) {
	// two triangles sharing one vertex: a plain walk from the start closes
	// after the first triangle, the second must be spliced in
	segments := []RoadSegment{
		testSegment("1_1_2", pt(0, 0), pt(0.001, 0)),
		testSegment("1_2_3", pt(0.001, 0), pt(0, 0.001)),
		testSegment("1_3_1", pt(0, 0.001), pt(0, 0)),
		testSegment("2_1_4", pt(0, 0), pt(-0.001, 0)),
		testSegment("2_4_5", pt(-0.001, 0), pt(0, -0.001)),
		testSegment("2_5_1", pt(0, -0.001), pt(0, 0)),
	}
	g, err := BuildWorkingGraph(segments, DefaultSnapTolerance)
	require.NoError(t, err)

	circuit, err := eulerianCircuit(g, 0)
	require.NoError(t, err)

	require.Len(t, circuit.Traversals, 6)
	requireClosedWalk(t, circuit)
}

func TestEulerianCircuitForwardFlag(t *testing.T) {
	g, err := BuildWorkingGraph(squareSegments(), DefaultSnapTolerance)
	require.NoError(t, err)

	circuit, err := eulerianCircuit(g, 0)
	require.NoError(t, err)

	for _, tr := range circuit.Traversals {
		e := g.edges[tr.edgeID]
		if tr.Forward {
			assert.Equal(t, e.u, tr.From)
			assert.Equal(t, e.v, tr.To)
		} else {
			assert.Equal(t, e.v, tr.From)
			assert.Equal(t, e.u, tr.To)
		}
	}
}

func TestEulerianCircuitDeterministic(t *testing.T) {
	g1, err := BuildWorkingGraph(squareSegments(), DefaultSnapTolerance)
	require.NoError(t, err)
	g2, err := BuildWorkingGraph(squareSegments(), DefaultSnapTolerance)
	require.NoError(t, err)

	c1, err := eulerianCircuit(g1, 0)
	require.NoError(t, err)
	c2, err := eulerianCircuit(g2, 0)
	require.NoError(t, err)

	require.Len(t, c2.Traversals, len(c1.Traversals))
	for i := range c1.Traversals {
		assert.Equal(t, c1.Traversals[i].Segment.OSMID, c2.Traversals[i].Segment.OSMID)
		assert.Equal(t, c1.Traversals[i].Forward, c2.Traversals[i].Forward)
	}
}

func TestEulerianCircuitRejectsOddDegrees(t *testing.T) {
	g, err := BuildWorkingGraph(plusSegments(), DefaultSnapTolerance)
	require.NoError(t, err)

	_, err = eulerianCircuit(g, 0)
	assert.ErrorIs(t, err, ErrNotEulerian)
}

func TestAugmentGraphMakesEulerian(t *testing.T) {
	// chain 0 - 1 - 2: both ends odd, augmentation duplicates the chain
	segments := []RoadSegment{
		testSegment("1_1_2", pt(0, 0), pt(0.001, 0)),
		testSegment("1_2_3", pt(0.001, 0), pt(0.002, 0)),
	}
	g, err := BuildWorkingGraph(segments, DefaultSnapTolerance)
	require.NoError(t, err)
	odd := g.OddVertices()
	require.Equal(t, []int{0, 2}, odd)

	pm, err := (&dijkstraOracle{workers: 1}).PairwisePaths(g, odd)
	require.NoError(t, err)
	matching, err := (&autoMatcher{}).Solve(pm, odd)
	require.NoError(t, err)

	added, err := augmentGraph(g, matching)
	require.NoError(t, err)

	assert.InDelta(t, matching.TotalCost, added, 1e-9)
	assert.Empty(t, g.OddVertices())
	assert.Equal(t, 4, g.EdgeCount())

	circuit, err := eulerianCircuit(g, 0)
	require.NoError(t, err)
	assert.Len(t, circuit.Traversals, 4)
	requireClosedWalk(t, circuit)
}
