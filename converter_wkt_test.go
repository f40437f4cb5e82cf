package streetcover

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWKTLinestringRoundTrip(t *testing.T) {
	line := orb.LineString{pt(0, 0), pt(0.001, 0), pt(0.001, 0.001)}

	s := PrepareWKTLinestring(line)
	assert.Contains(t, s, "LINESTRING")

	parsed, err := ParseWKTLinestring(s)
	require.NoError(t, err)
	assert.Equal(t, line, parsed)
}

func TestParseWKTLinestringBadInput(t *testing.T) {
	_, err := ParseWKTLinestring("POINT(1 2)")
	assert.Error(t, err)
}

func TestPrepareWKTPoint(t *testing.T) {
	s := PrepareWKTPoint(GeoPoint{Lat: 1, Lon: 2})
	assert.Contains(t, s, "POINT")
	assert.Contains(t, s, "2 1")
}
