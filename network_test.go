package streetcover

import (
	"testing"

	"github.com/paulmach/osm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNetworkConfigCheckTag(t *testing.T) {
	cfg := DefaultNetworkConfig()
	assert.True(t, cfg.CheckTag("residential"))
	assert.False(t, cfg.CheckTag("footway"))
}

func TestSplitWaysAtSharedNode(t *testing.T) {
	// way 10 runs 1-2-3, way 20 runs 4-2-5: node 2 is an intersection and
	// way 10 must split there
	nodes := map[osm.NodeID]GeoPoint{
		1: {Lat: 0, Lon: 0},
		2: {Lat: 0, Lon: 0.001},
		3: {Lat: 0, Lon: 0.002},
		4: {Lat: 0.001, Lon: 0.001},
		5: {Lat: -0.001, Lon: 0.001},
	}
	ways := []scannedWay{
		{id: 10, name: "Main", roadType: "residential", nodes: []osm.NodeID{1, 2, 3}},
		{id: 20, name: "Cross", roadType: "residential", nodes: []osm.NodeID{4, 2, 5}},
	}

	segments, err := splitWays(ways, nodes)
	require.NoError(t, err)
	require.Len(t, segments, 4)

	ids := make([]string, len(segments))
	for i := range segments {
		ids[i] = segments[i].OSMID
	}
	assert.Equal(t, []string{"10_1_2", "10_2_3", "20_4_2", "20_2_5"}, ids)

	assert.Equal(t, "Main", segments[0].Name)
	assert.Len(t, segments[0].Geom, 2)
	assert.Greater(t, segments[0].LengthMeters, 0.0)
}

func TestSplitWaysKeepsUnbrokenWay(t *testing.T) {
	nodes := map[osm.NodeID]GeoPoint{
		1: {Lat: 0, Lon: 0},
		2: {Lat: 0, Lon: 0.001},
		3: {Lat: 0, Lon: 0.002},
	}
	ways := []scannedWay{
		{id: 10, roadType: "residential", nodes: []osm.NodeID{1, 2, 3}},
	}

	segments, err := splitWays(ways, nodes)
	require.NoError(t, err)
	require.Len(t, segments, 1)
	assert.Equal(t, "10_1_3", segments[0].OSMID)
	assert.Len(t, segments[0].Geom, 3)
}

func TestSplitWaysMissingNode(t *testing.T) {
	ways := []scannedWay{
		{id: 10, roadType: "residential", nodes: []osm.NodeID{1, 2}},
	}
	_, err := splitWays(ways, map[osm.NodeID]GeoPoint{1: {Lat: 0, Lon: 0}})
	assert.Error(t, err)
}

func TestCropByRadius(t *testing.T) {
	segments := []RoadSegment{
		testSegment("1_1_2", pt(0, 0), pt(0.001, 0)),
		testSegment("9_1_2", pt(0.5, 0.5), pt(0.501, 0.5)),
	}
	kept := cropByRadius(segments, GeoPoint{Lat: 0, Lon: 0}, 500)
	require.Len(t, kept, 1)
	assert.Equal(t, "1_1_2", kept[0].OSMID)
}

func TestLargestComponentSegments(t *testing.T) {
	segments := append(squareSegments(),
		testSegment("9_1_2", pt(0.5, 0.5), pt(0.501, 0.5)))

	trimmed, err := largestComponentSegments(segments, DefaultSnapTolerance)
	require.NoError(t, err)
	require.Len(t, trimmed, 4)
	for _, segment := range trimmed {
		assert.NotEqual(t, "9_1_2", segment.OSMID)
	}

	// already connected input passes through untouched
	connected, err := largestComponentSegments(squareSegments(), DefaultSnapTolerance)
	require.NoError(t, err)
	assert.Len(t, connected, 4)
}

func TestOSMFileSourceRejectsBadRadius(t *testing.T) {
	src := &OSMFileSource{Filename: "missing.osm"}
	_, err := src.RoadNetwork(GeoPoint{}, 0)
	assert.Error(t, err)
}
