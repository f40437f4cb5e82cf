package streetcover

import (
	"os"

	geojson "github.com/paulmach/go.geojson"
	"github.com/pkg/errors"
)

// SegmentIndex builds an OSMID lookup over a segment collection.
func SegmentIndex(segments []RoadSegment) map[string]*RoadSegment {
	index := make(map[string]*RoadSegment, len(segments))
	for i := range segments {
		index[segments[i].OSMID] = &segments[i]
	}
	return index
}

// RouteFeatureCollection renders a route as a GeoJSON FeatureCollection:
// one LineString feature per traversal, oriented in walking direction,
// plus a Point feature marking the start. Any GeoJSON viewer displays it.
func RouteFeatureCollection(route *Route, segments map[string]*RoadSegment) (*geojson.FeatureCollection, error) {
	fc := geojson.NewFeatureCollection()

	startFeature := geojson.NewPointFeature([]float64{route.Start.Lon, route.Start.Lat})
	startFeature.SetProperty("kind", "start")
	fc.AddFeature(startFeature)

	for _, rs := range route.Segments {
		segment, ok := segments[rs.SegmentOSMID]
		if !ok {
			return nil, errors.Errorf("route references unknown segment '%s'", rs.SegmentOSMID)
		}
		geom := segment.Geom
		if !rs.Forward {
			geom = segment.Reversed()
		}
		coords := make([][]float64, len(geom))
		for i := range geom {
			coords[i] = []float64{geom[i][0], geom[i][1]}
		}
		feature := geojson.NewLineStringFeature(coords)
		feature.SetProperty("osm_id", segment.OSMID)
		feature.SetProperty("name", segment.Name)
		feature.SetProperty("road_type", segment.RoadType)
		feature.SetProperty("order", rs.Order)
		feature.SetProperty("forward", rs.Forward)
		feature.SetProperty("length_meters", segment.LengthMeters)
		fc.AddFeature(feature)
	}
	return fc, nil
}

// WriteRouteGeoJSON writes the rendered route to a file.
func WriteRouteGeoJSON(fname string, route *Route, segments map[string]*RoadSegment) error {
	fc, err := RouteFeatureCollection(route, segments)
	if err != nil {
		return errors.Wrap(err, "Can't render route")
	}
	b, err := fc.MarshalJSON()
	if err != nil {
		return errors.Wrap(err, "Can't marshal feature collection")
	}
	if err := os.WriteFile(fname, b, 0644); err != nil {
		return errors.Wrap(err, "Can't write file")
	}
	return nil
}
