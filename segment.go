package streetcover

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
)

// RoadSegment is a single stretch of road between two intersections.
//
// OSMID is the sole stable identity of a segment: "<wayID>_<firstNode>_<lastNode>".
// It survives re-imports of the same area, unlike storage-generated ids.
// Segments are read-only during route computation.
type RoadSegment struct {
	OSMID        string
	WayID        osm.WayID
	Name         string
	RoadType     string
	Geom         orb.LineString
	LengthMeters float64
}

// SegmentID builds the stable external identifier for a piece of an OSM way.
func SegmentID(wayID osm.WayID, firstNode, lastNode osm.NodeID) string {
	return fmt.Sprintf("%d_%d_%d", wayID, firstNode, lastNode)
}

// First returns the first endpoint of the segment geometry.
func (rs *RoadSegment) First() GeoPoint {
	return pointToGeo(rs.Geom[0])
}

// Last returns the last endpoint of the segment geometry.
func (rs *RoadSegment) Last() GeoPoint {
	return pointToGeo(rs.Geom[len(rs.Geom)-1])
}

// Reversed returns geometry of the segment in reverse point order.
func (rs *RoadSegment) Reversed() orb.LineString {
	rev := make(orb.LineString, len(rs.Geom))
	for i := range rs.Geom {
		rev[i] = rs.Geom[len(rs.Geom)-1-i]
	}
	return rev
}
