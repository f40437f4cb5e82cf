package streetcover

import (
	"container/heap"
	"math"
	"sync"

	"github.com/pkg/errors"
)

// PathOracle computes the complete pairwise distance/path matrix over a
// set of vertices of the working graph.
//
// The default implementation runs a deterministic Dijkstra search from
// each vertex; CHOracle is an alternative built on contraction
// hierarchies.
type PathOracle interface {
	PairwisePaths(g *WorkingGraph, vertices []int) (*PathMatrix, error)
}

// pairKey identifies an unordered vertex pair, always u < v.
type pairKey struct {
	u, v int
}

func makePairKey(a, b int) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{u: a, v: b}
}

// PathMatrix holds shortest-path distances and edge-id paths between
// vertex pairs. Paths are stored from the smaller vertex id to the
// larger; callers that need direction walk the edge list themselves.
type PathMatrix struct {
	dist map[pairKey]float64
	path map[pairKey][]int
}

func newPathMatrix() *PathMatrix {
	return &PathMatrix{
		dist: make(map[pairKey]float64),
		path: make(map[pairKey][]int),
	}
}

// Dist returns the shortest-path distance between a and b, or +Inf when
// no path is known.
func (pm *PathMatrix) Dist(a, b int) float64 {
	if d, ok := pm.dist[makePairKey(a, b)]; ok {
		return d
	}
	return math.Inf(1)
}

// Path returns edge ids of the shortest path between a and b.
func (pm *PathMatrix) Path(a, b int) []int {
	return pm.path[makePairKey(a, b)]
}

func (pm *PathMatrix) set(a, b int, d float64, edgeIDs []int) {
	k := makePairKey(a, b)
	pm.dist[k] = d
	pm.path[k] = edgeIDs
}

// dijkstraOracle runs one Dijkstra search per source vertex. Searches are
// independent; workers > 1 fans them out over a worker pool (results are
// identical either way).
type dijkstraOracle struct {
	workers int
}

// PairwisePaths implements PathOracle.
func (o *dijkstraOracle) PairwisePaths(g *WorkingGraph, vertices []int) (*PathMatrix, error) {
	type sourceResult struct {
		dist     []float64
		prevEdge []int
	}
	results := make([]sourceResult, len(vertices))

	workers := o.workers
	if workers < 1 {
		workers = 1
	}
	var wg sync.WaitGroup
	sem := make(chan struct{}, workers)
	for i := range vertices {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			dist, prevEdge := dijkstraFrom(g, vertices[i])
			results[i] = sourceResult{dist: dist, prevEdge: prevEdge}
		}(i)
	}
	wg.Wait()

	pm := newPathMatrix()
	for i, source := range vertices {
		for _, target := range vertices {
			if target <= source {
				continue
			}
			d := results[i].dist[target]
			if math.IsInf(d, 1) {
				return nil, errors.Wrapf(ErrDisconnectedGraph, "no path between vertices %d and %d", source, target)
			}
			pm.set(source, target, d, reconstructPath(g, results[i].prevEdge, source, target))
		}
	}
	return pm, nil
}

// dijkstraFrom computes shortest distances from source to every vertex.
// prevEdge[v] is the edge used to arrive at v on the shortest path, -1
// for the source and unreachable vertices.
//
// Tie-break rule: among equal-cost paths the one whose arriving edge has
// the lexicographically smaller segment OSMID (then smaller edge id)
// wins, so results are reproducible run to run.
func dijkstraFrom(g *WorkingGraph, source int) ([]float64, []int) {
	n := g.VertexCount()
	dist := make([]float64, n)
	prevEdge := make([]int, n)
	visited := make([]bool, n)
	for i := range dist {
		dist[i] = math.Inf(1)
		prevEdge[i] = -1
	}
	dist[source] = 0

	pq := &vertexHeap{}
	heap.Init(pq)
	heap.Push(pq, vertexItem{id: source, dist: 0})

	for pq.Len() > 0 {
		item := heap.Pop(pq).(vertexItem)
		u := item.id
		if visited[u] {
			continue
		}
		visited[u] = true
		for _, eid := range g.adjacency[u] {
			e := g.edges[eid]
			v := e.other(u)
			if visited[v] {
				continue
			}
			newDist := dist[u] + e.weight
			if newDist > dist[v] {
				continue
			}
			if newDist == dist[v] && (prevEdge[v] < 0 || !edgeLess(g, eid, prevEdge[v])) {
				continue
			}
			dist[v] = newDist
			prevEdge[v] = eid
			heap.Push(pq, vertexItem{id: v, dist: newDist})
		}
	}
	return dist, prevEdge
}

// edgeLess orders edges by (segment OSMID, edge id).
func edgeLess(g *WorkingGraph, a, b int) bool {
	ea, eb := g.edges[a], g.edges[b]
	if ea.segment.OSMID != eb.segment.OSMID {
		return ea.segment.OSMID < eb.segment.OSMID
	}
	return ea.id < eb.id
}

// reconstructPath walks prevEdge pointers back from target to source and
// returns the edge ids in source-to-target order.
func reconstructPath(g *WorkingGraph, prevEdge []int, source, target int) []int {
	edgeIDs := []int{}
	v := target
	for v != source {
		eid := prevEdge[v]
		if eid < 0 {
			return nil
		}
		edgeIDs = append(edgeIDs, eid)
		v = g.edges[eid].other(v)
	}
	for i, j := 0, len(edgeIDs)-1; i < j; i, j = i+1, j-1 {
		edgeIDs[i], edgeIDs[j] = edgeIDs[j], edgeIDs[i]
	}
	return edgeIDs
}

// vertexItem represents a vertex and its tentative distance from source.
type vertexItem struct {
	id   int
	dist float64
}

// vertexHeap is a min-heap of vertexItem with lazy decrease-key: stale
// entries stay in the heap and are skipped when popped.
type vertexHeap []vertexItem

func (h vertexHeap) Len() int { return len(h) }
func (h vertexHeap) Less(i, j int) bool {
	if h[i].dist != h[j].dist {
		return h[i].dist < h[j].dist
	}
	return h[i].id < h[j].id
}
func (h vertexHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *vertexHeap) Push(x interface{}) { *h = append(*h, x.(vertexItem)) }
func (h *vertexHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
