package streetcover

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouteFeatureCollection(t *testing.T) {
	segments := []RoadSegment{
		testSegment("1_1_2", pt(0, 0), pt(0.001, 0)),
		testSegment("1_2_3", pt(0.001, 0), pt(0.002, 0)),
	}
	route := &Route{
		Start: GeoPoint{Lat: 0, Lon: 0},
		Segments: []RouteSegment{
			{SegmentOSMID: "1_1_2", Order: 1, Forward: true},
			{SegmentOSMID: "1_2_3", Order: 2, Forward: true},
			{SegmentOSMID: "1_2_3", Order: 3, Forward: false},
			{SegmentOSMID: "1_1_2", Order: 4, Forward: false},
		},
	}

	fc, err := RouteFeatureCollection(route, SegmentIndex(segments))
	require.NoError(t, err)

	// start marker plus one feature per traversal
	require.Len(t, fc.Features, 5)
	assert.Equal(t, "start", fc.Features[0].Properties["kind"])

	forward := fc.Features[1]
	assert.Equal(t, "1_1_2", forward.Properties["osm_id"])
	assert.Equal(t, [][]float64{{0, 0}, {0.001, 0}}, forward.Geometry.LineString)

	backward := fc.Features[4]
	assert.Equal(t, false, backward.Properties["forward"])
	assert.Equal(t, [][]float64{{0.001, 0}, {0, 0}}, backward.Geometry.LineString)
}

func TestRouteFeatureCollectionUnknownSegment(t *testing.T) {
	route := &Route{
		Segments: []RouteSegment{{SegmentOSMID: "nope", Order: 1, Forward: true}},
	}
	_, err := RouteFeatureCollection(route, SegmentIndex(nil))
	assert.Error(t, err)
}

func TestWriteRouteGeoJSON(t *testing.T) {
	segments := []RoadSegment{testSegment("1_1_2", pt(0, 0), pt(0.001, 0))}
	route := &Route{
		Segments: []RouteSegment{{SegmentOSMID: "1_1_2", Order: 1, Forward: true}},
	}
	fname := filepath.Join(t.TempDir(), "route.geojson")

	require.NoError(t, WriteRouteGeoJSON(fname, route, SegmentIndex(segments)))

	data, err := os.ReadFile(fname)
	require.NoError(t, err)
	assert.Contains(t, string(data), "FeatureCollection")
	assert.Contains(t, string(data), "1_1_2")
}
