package streetcover

import (
	"math"
	"sort"

	"github.com/pkg/errors"
)

// DefaultSnapTolerance is the coordinate snapping tolerance (in degrees)
// used to merge segment endpoints into a shared intersection vertex.
// 1e-7 degrees is roughly a centimeter: endpoints produced from the same
// OSM node always snap, distinct intersections never do.
const DefaultSnapTolerance = 1e-7

// Vertex is an intersection point of the working graph. Vertices exist
// only for the duration of one route computation.
type Vertex struct {
	ID int
	Pt GeoPoint
}

// graphEdge is one traversable edge of the working graph. Parallel edges
// and self loops are allowed; duplicates are added by augmentation and
// share the segment of the edge they copy.
type graphEdge struct {
	id        int
	segment   *RoadSegment
	u, v      int // vertex ids; u corresponds to the segment's first endpoint
	weight    float64
	duplicate bool
}

// other returns the endpoint of e opposite to vertex w.
func (e *graphEdge) other(w int) int {
	if e.u == w {
		return e.v
	}
	return e.u
}

// vertexKey quantizes a coordinate by the snap tolerance so that nearly
// equal endpoints map to the same vertex.
type vertexKey struct {
	x, y int64
}

// WorkingGraph is an undirected weighted multigraph over intersection
// vertices and road-segment edges. It is owned by a single computation
// and must not be shared across concurrent solves.
type WorkingGraph struct {
	snapTolerance float64
	vertices      []Vertex
	keys          map[vertexKey]int
	edges         []*graphEdge
	adjacency     [][]int // vertex id -> incident edge ids (self loops listed twice)
}

func newWorkingGraph(snapTolerance float64) *WorkingGraph {
	if snapTolerance <= 0 {
		snapTolerance = DefaultSnapTolerance
	}
	return &WorkingGraph{
		snapTolerance: snapTolerance,
		keys:          make(map[vertexKey]int),
	}
}

// BuildWorkingGraph converts a flat collection of road segments into a
// working graph. Every segment becomes exactly one edge; segments sharing
// an endpoint (within snapTolerance degrees) join at a common vertex.
// Returns ErrDisconnectedGraph if the segments span more than one
// connected component.
func BuildWorkingGraph(segments []RoadSegment, snapTolerance float64) (*WorkingGraph, error) {
	if len(segments) == 0 {
		return nil, ErrEmptyNetwork
	}
	g := newWorkingGraph(snapTolerance)
	for i := range segments {
		if err := g.addSegment(&segments[i]); err != nil {
			return nil, errors.Wrapf(err, "Can't add segment '%s'", segments[i].OSMID)
		}
	}
	if n := g.componentCount(); n > 1 {
		return nil, errors.Wrapf(ErrDisconnectedGraph, "%d components", n)
	}
	return g, nil
}

func (g *WorkingGraph) key(pt GeoPoint) vertexKey {
	return vertexKey{
		x: int64(math.Round(pt.Lon / g.snapTolerance)),
		y: int64(math.Round(pt.Lat / g.snapTolerance)),
	}
}

// vertex returns the id of the vertex for pt, creating it on first use.
func (g *WorkingGraph) vertex(pt GeoPoint) int {
	k := g.key(pt)
	if id, ok := g.keys[k]; ok {
		return id
	}
	id := len(g.vertices)
	g.vertices = append(g.vertices, Vertex{ID: id, Pt: pt})
	g.keys[k] = id
	g.adjacency = append(g.adjacency, nil)
	return id
}

func (g *WorkingGraph) addSegment(rs *RoadSegment) error {
	if len(rs.Geom) < 2 {
		return errors.Errorf("segment geometry needs at least 2 points, got %d", len(rs.Geom))
	}
	weight := rs.LengthMeters
	if weight <= 0 {
		weight = sphericalLength(rs.Geom)
	}
	u := g.vertex(rs.First())
	v := g.vertex(rs.Last())
	g.addEdge(rs, u, v, weight, false)
	return nil
}

func (g *WorkingGraph) addEdge(rs *RoadSegment, u, v int, weight float64, duplicate bool) *graphEdge {
	e := &graphEdge{
		id:        len(g.edges),
		segment:   rs,
		u:         u,
		v:         v,
		weight:    weight,
		duplicate: duplicate,
	}
	g.edges = append(g.edges, e)
	g.adjacency[u] = append(g.adjacency[u], e.id)
	if u != v {
		g.adjacency[v] = append(g.adjacency[v], e.id)
	} else {
		// A self loop contributes 2 to the degree of its vertex.
		g.adjacency[u] = append(g.adjacency[u], e.id)
	}
	return e
}

// duplicateEdge adds a parallel copy of the edge with the given id,
// preserving weight and segment identity. Used by augmentation only.
func (g *WorkingGraph) duplicateEdge(edgeID int) *graphEdge {
	orig := g.edges[edgeID]
	return g.addEdge(orig.segment, orig.u, orig.v, orig.weight, true)
}

// VertexCount returns number of vertices in the graph.
func (g *WorkingGraph) VertexCount() int {
	return len(g.vertices)
}

// EdgeCount returns number of edges in the graph (duplicates included).
func (g *WorkingGraph) EdgeCount() int {
	return len(g.edges)
}

// Degree returns number of edge ends incident to the vertex.
func (g *WorkingGraph) Degree(v int) int {
	return len(g.adjacency[v])
}

// OddVertices returns ids of all odd-degree vertices in ascending order.
// An empty result means the graph is already Eulerian.
func (g *WorkingGraph) OddVertices() []int {
	odd := []int{}
	for v := range g.adjacency {
		if len(g.adjacency[v])%2 == 1 {
			odd = append(odd, v)
		}
	}
	sort.Ints(odd)
	return odd
}

// NearestVertex returns the id of the graph vertex closest to pt by
// great-circle distance. Ties resolve to the smaller vertex id.
func (g *WorkingGraph) NearestVertex(pt GeoPoint) int {
	best := 0
	bestDist := math.Inf(1)
	for i := range g.vertices {
		d := greatCircleDistance(pt, g.vertices[i].Pt)
		if d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best
}

// baseWeight returns the summed weight of original (non-duplicated) edges.
func (g *WorkingGraph) baseWeight() float64 {
	total := 0.0
	for _, e := range g.edges {
		if !e.duplicate {
			total += e.weight
		}
	}
	return total
}

// totalWeight returns the summed weight of all edges, duplicates included.
func (g *WorkingGraph) totalWeight() float64 {
	total := 0.0
	for _, e := range g.edges {
		total += e.weight
	}
	return total
}

// componentCount returns the number of connected components.
func (g *WorkingGraph) componentCount() int {
	_, count := g.componentLabels()
	return count
}

// componentLabels assigns every vertex a component label in [0, count).
func (g *WorkingGraph) componentLabels() ([]int, int) {
	labels := make([]int, len(g.vertices))
	for i := range labels {
		labels[i] = -1
	}
	count := 0
	for start := range g.vertices {
		if labels[start] >= 0 {
			continue
		}
		stack := []int{start}
		labels[start] = count
		for len(stack) > 0 {
			v := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for _, eid := range g.adjacency[v] {
				w := g.edges[eid].other(v)
				if labels[w] < 0 {
					labels[w] = count
					stack = append(stack, w)
				}
			}
		}
		count++
	}
	return labels, count
}
