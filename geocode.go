package streetcover

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

// Geocoder resolves a free-text address into a coordinate.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (GeoPoint, error)
}

// NominatimGeocoder resolves addresses through the OSM Nominatim search
// API. Nominatim requires an identifying User-Agent; requests honor the
// context deadline. No retries: a failed lookup is an input error for
// the caller to report.
type NominatimGeocoder struct {
	BaseURL   string
	UserAgent string
	Client    *http.Client
}

// NewNominatimGeocoder creates a geocoder against the public Nominatim
// instance.
func NewNominatimGeocoder() *NominatimGeocoder {
	return &NominatimGeocoder{
		BaseURL:   "https://nominatim.openstreetmap.org",
		UserAgent: "streetcover",
		Client:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Geocode implements Geocoder.
func (g *NominatimGeocoder) Geocode(ctx context.Context, address string) (GeoPoint, error) {
	if address == "" {
		return GeoPoint{}, errors.Wrap(ErrAddressNotFound, "empty address")
	}

	endpoint := g.BaseURL + "/search?" + url.Values{
		"q":      []string{address},
		"format": []string{"json"},
		"limit":  []string{"1"},
	}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return GeoPoint{}, errors.Wrap(err, "Can't build geocoding request")
	}
	req.Header.Set("User-Agent", g.UserAgent)

	client := g.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return GeoPoint{}, errors.Wrap(err, "Geocoding request failed")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return GeoPoint{}, errors.Errorf("geocoder returned status %d", resp.StatusCode)
	}

	var results []struct {
		Lat string `json:"lat"`
		Lon string `json:"lon"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return GeoPoint{}, errors.Wrap(err, "Can't decode geocoder response")
	}
	if len(results) == 0 {
		return GeoPoint{}, errors.Wrapf(ErrAddressNotFound, "'%s'", address)
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return GeoPoint{}, errors.Wrap(err, "Can't parse latitude")
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return GeoPoint{}, errors.Wrap(err, "Can't parse longitude")
	}
	return GeoPoint{Lat: lat, Lon: lon}, nil
}
