package streetcover

import (
	"sort"

	"github.com/pkg/errors"
)

// Traversal is one directed pass over an edge of the augmented graph.
// Forward is true when the edge is walked from its segment's stored
// first endpoint towards its last.
type Traversal struct {
	Segment *RoadSegment
	From    int
	To      int
	Forward bool
	edgeID  int
}

// EulerianCircuit is a closed walk that starts and ends at the same
// vertex and uses every edge of the augmented graph exactly once.
type EulerianCircuit struct {
	Start      int
	Traversals []Traversal
}

// eulerianCircuit extracts an Eulerian circuit from g starting at the
// given vertex using iterative Hierholzer circuit-splicing: walk until
// the start recurs, then splice in sub-circuits rooted at vertices of
// the walk that still carry unused edges. The explicit stack keeps the
// depth independent of edge count.
//
// Determinism: at every vertex the unused incident edge with the
// smallest (segment OSMID, edge id) is taken first.
//
// Returns ErrNotEulerian when any vertex has odd degree.
func eulerianCircuit(g *WorkingGraph, start int) (*EulerianCircuit, error) {
	if odd := g.OddVertices(); len(odd) != 0 {
		return nil, errors.Wrapf(ErrNotEulerian, "%d odd vertices", len(odd))
	}
	if start < 0 || start >= g.VertexCount() {
		return nil, errors.Errorf("start vertex %d is not in the graph", start)
	}
	if g.EdgeCount() == 0 {
		return &EulerianCircuit{Start: start}, nil
	}

	// incident edge ids pre-sorted by the deterministic order; cursor[v]
	// skips entries consumed from the other endpoint
	incident := make([][]int, g.VertexCount())
	for v := range g.adjacency {
		incident[v] = append([]int{}, g.adjacency[v]...)
		sort.Slice(incident[v], func(i, j int) bool {
			return edgeLess(g, incident[v][i], incident[v][j])
		})
	}
	cursor := make([]int, g.VertexCount())
	used := make([]bool, g.EdgeCount())

	type frame struct {
		vertex int
		edge   int // edge used to arrive here, -1 for the start
	}
	stack := []frame{{vertex: start, edge: -1}}
	walkEdges := make([]int, 0, g.EdgeCount())

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		v := top.vertex
		advanced := false
		for cursor[v] < len(incident[v]) {
			eid := incident[v][cursor[v]]
			if used[eid] {
				cursor[v]++
				continue
			}
			used[eid] = true
			cursor[v]++
			stack = append(stack, frame{vertex: g.edges[eid].other(v), edge: eid})
			advanced = true
			break
		}
		if advanced {
			continue
		}
		// dead end: vertex has no unused edges, emit its arrival edge
		if top.edge >= 0 {
			walkEdges = append(walkEdges, top.edge)
		}
		stack = stack[:len(stack)-1]
	}

	if len(walkEdges) != g.EdgeCount() {
		return nil, errors.Wrapf(ErrDisconnectedGraph,
			"circuit used %d of %d edges", len(walkEdges), g.EdgeCount())
	}

	// walk and walkEdges were emitted in reverse
	circuit := &EulerianCircuit{
		Start:      start,
		Traversals: make([]Traversal, 0, len(walkEdges)),
	}
	from := start
	for i := len(walkEdges) - 1; i >= 0; i-- {
		eid := walkEdges[i]
		e := g.edges[eid]
		to := e.other(from)
		circuit.Traversals = append(circuit.Traversals, Traversal{
			Segment: e.segment,
			From:    from,
			To:      to,
			Forward: from == e.u,
			edgeID:  eid,
		})
		from = to
	}
	if from != start {
		return nil, errors.Wrap(ErrNotEulerian, "circuit does not close at its start vertex")
	}
	return circuit, nil
}

// Length returns the total walked distance of the circuit in meters.
func (c *EulerianCircuit) Length(g *WorkingGraph) float64 {
	total := 0.0
	for _, t := range c.Traversals {
		total += g.edges[t.edgeID].weight
	}
	return total
}
