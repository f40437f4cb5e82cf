package streetcover

import (
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// RouteSegment is one persisted traversal of a road segment within a
// route. Order is 1-based and strictly increasing; Forward mirrors the
// traversal direction relative to the segment's stored geometry.
type RouteSegment struct {
	SegmentOSMID string
	Order        int
	Forward      bool
}

// Route is the persisted outcome of one edge-cover computation: an
// ordered closed walk over road segments starting and ending at the
// vertex nearest the requested location.
type Route struct {
	ID               uuid.UUID
	Name             string
	CreatedAt        time.Time
	Start            GeoPoint
	TotalMeters      float64
	DuplicatedMeters float64
	Segments         []RouteSegment
}

// assembleRoute linearizes the circuit into an ordered route anchored at
// startVertex. The circuit is a closed walk, so it is rotated until its
// first traversal leaves startVertex; edge order is otherwise untouched.
func assembleRoute(g *WorkingGraph, circuit *EulerianCircuit, startVertex int, duplicated float64) (*Route, error) {
	n := len(circuit.Traversals)
	if n == 0 {
		return nil, errors.Wrap(ErrEmptyNetwork, "empty circuit")
	}

	offset := -1
	if circuit.Start == startVertex {
		offset = 0
	} else {
		for i, t := range circuit.Traversals {
			if t.From == startVertex {
				offset = i
				break
			}
		}
	}
	if offset < 0 {
		return nil, errors.Errorf("start vertex %d does not appear on the circuit", startVertex)
	}

	route := &Route{
		ID:               uuid.New(),
		CreatedAt:        time.Now().UTC(),
		Start:            g.vertices[startVertex].Pt,
		DuplicatedMeters: duplicated,
		Segments:         make([]RouteSegment, 0, n),
	}
	for i := 0; i < n; i++ {
		t := circuit.Traversals[(offset+i)%n]
		route.Segments = append(route.Segments, RouteSegment{
			SegmentOSMID: t.Segment.OSMID,
			Order:        i + 1,
			Forward:      t.Forward,
		})
		route.TotalMeters += g.edges[t.edgeID].weight
	}
	return route, nil
}
