package streetcover

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
	"github.com/pkg/errors"
)

// PrepareWKTLinestring creates WKT LineString from segment geometry
func PrepareWKTLinestring(line orb.LineString) string {
	return wkt.MarshalString(line)
}

// PrepareWKTPoint creates WKT Point from given point
func PrepareWKTPoint(pt GeoPoint) string {
	return wkt.MarshalString(pt.Point())
}

// ParseWKTLinestring parses a WKT LINESTRING back into geometry
func ParseWKTLinestring(s string) (orb.LineString, error) {
	line, err := wkt.UnmarshalLineString(s)
	if err != nil {
		return nil, errors.Wrap(err, "Can't parse WKT linestring")
	}
	return line, nil
}
