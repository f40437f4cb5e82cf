package streetcover

import (
	"github.com/paulmach/orb"
)

// testSegment builds a road segment over the given points; length is
// computed from the geometry.
func testSegment(id string, pts ...orb.Point) RoadSegment {
	geom := orb.LineString(pts)
	return RoadSegment{
		OSMID:        id,
		Name:         id,
		RoadType:     "residential",
		Geom:         geom,
		LengthMeters: sphericalLength(geom),
	}
}

func pt(lon, lat float64) orb.Point {
	return orb.Point{lon, lat}
}

// squareSegments is a 2x2 block: four corners, four streets, every
// intersection of even degree.
func squareSegments() []RoadSegment {
	return []RoadSegment{
		testSegment("1_1_2", pt(0, 0), pt(0.001, 0)),
		testSegment("1_2_3", pt(0.001, 0), pt(0.001, 0.001)),
		testSegment("1_3_4", pt(0.001, 0.001), pt(0, 0.001)),
		testSegment("1_4_1", pt(0, 0.001), pt(0, 0)),
	}
}

// plusSegments is a four-way intersection with dead-end streets: the
// center has degree 4, every leaf has degree 1.
func plusSegments() []RoadSegment {
	return []RoadSegment{
		testSegment("2_0_1", pt(0, 0), pt(0.001, 0)),
		testSegment("2_0_2", pt(0, 0), pt(-0.001, 0)),
		testSegment("2_0_3", pt(0, 0), pt(0, 0.001)),
		testSegment("2_0_4", pt(0, 0), pt(0, -0.001)),
	}
}
