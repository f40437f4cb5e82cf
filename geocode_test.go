package streetcover

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNominatimGeocoder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		assert.Equal(t, "Broadway", r.URL.Query().Get("q"))
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		w.Write([]byte(`[{"lat":"40.8142","lon":"-73.9625"}]`))
	}))
	defer server.Close()

	g := &NominatimGeocoder{BaseURL: server.URL, UserAgent: "test-agent", Client: server.Client()}
	point, err := g.Geocode(context.Background(), "Broadway")
	require.NoError(t, err)
	assert.InDelta(t, 40.8142, point.Lat, 1e-9)
	assert.InDelta(t, -73.9625, point.Lon, 1e-9)
}

func TestNominatimGeocoderNoResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	g := &NominatimGeocoder{BaseURL: server.URL, UserAgent: "test-agent", Client: server.Client()}
	_, err := g.Geocode(context.Background(), "nowhere at all")
	assert.ErrorIs(t, err, ErrAddressNotFound)
}

func TestNominatimGeocoderEmptyAddress(t *testing.T) {
	g := NewNominatimGeocoder()
	_, err := g.Geocode(context.Background(), "")
	assert.ErrorIs(t, err, ErrAddressNotFound)
}

func TestNominatimGeocoderServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	g := &NominatimGeocoder{BaseURL: server.URL, UserAgent: "test-agent", Client: server.Client()}
	_, err := g.Geocode(context.Background(), "Broadway")
	assert.Error(t, err)
}
