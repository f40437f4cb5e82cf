package streetcover

import (
	"github.com/LdDl/ch"
	"github.com/pkg/errors"
)

// CHOracle answers pairwise shortest-path queries through contraction
// hierarchies instead of per-source Dijkstra. Preparation cost is paid
// once per graph, after which point-to-point queries are fast, which
// pays off when the odd-vertex set is large.
//
// The library picks among equal-cost paths itself, so this oracle does
// not honor the segment-identifier tie-break of the default oracle; the
// solver keeps Dijkstra as the default for reproducibility.
type CHOracle struct{}

// PairwisePaths implements PathOracle.
func (o *CHOracle) PairwisePaths(g *WorkingGraph, vertices []int) (*PathMatrix, error) {
	chGraph := ch.Graph{}
	for v := 0; v < g.VertexCount(); v++ {
		if err := chGraph.CreateVertex(int64(v)); err != nil {
			return nil, errors.Wrapf(err, "Can't create vertex %d", v)
		}
	}
	// undirected edges become arc pairs; for parallel edges the cheapest
	// arc wins, which matches what a shortest path would use anyway
	for _, e := range g.edges {
		if err := chGraph.AddEdge(int64(e.u), int64(e.v), e.weight); err != nil {
			return nil, errors.Wrapf(err, "Can't add edge %d->%d", e.u, e.v)
		}
		if err := chGraph.AddEdge(int64(e.v), int64(e.u), e.weight); err != nil {
			return nil, errors.Wrapf(err, "Can't add edge %d->%d", e.v, e.u)
		}
	}
	chGraph.PrepareContractionHierarchies()

	pm := newPathMatrix()
	for i, source := range vertices {
		for j := i + 1; j < len(vertices); j++ {
			target := vertices[j]
			cost, vertexPath := chGraph.ShortestPath(int64(source), int64(target))
			if cost < 0 || len(vertexPath) < 2 {
				return nil, errors.Wrapf(ErrDisconnectedGraph, "no path between vertices %d and %d", source, target)
			}
			edgeIDs, err := g.edgePath(vertexPath)
			if err != nil {
				return nil, errors.Wrapf(err, "Can't map path %d->%d back to edges", source, target)
			}
			pm.set(source, target, cost, edgeIDs)
		}
	}
	return pm, nil
}

// edgePath converts a vertex id path into edge ids, picking the cheapest
// parallel edge between consecutive vertices (ties by segment OSMID).
func (g *WorkingGraph) edgePath(vertexPath []int64) ([]int, error) {
	edgeIDs := make([]int, 0, len(vertexPath)-1)
	for i := 1; i < len(vertexPath); i++ {
		a, b := int(vertexPath[i-1]), int(vertexPath[i])
		best := -1
		for _, eid := range g.adjacency[a] {
			if g.edges[eid].other(a) != b {
				continue
			}
			if best < 0 ||
				g.edges[eid].weight < g.edges[best].weight ||
				(g.edges[eid].weight == g.edges[best].weight && edgeLess(g, eid, best)) {
				best = eid
			}
		}
		if best < 0 {
			return nil, errors.Errorf("no edge between adjacent path vertices %d and %d", a, b)
		}
		edgeIDs = append(edgeIDs, best)
	}
	return edgeIDs, nil
}
