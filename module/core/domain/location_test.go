package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRadiusLatLng_Equator(t *testing.T) {
	center := LatLng{Lat: 0, Lon: 10}
	handle := RadiusLatLng(center, 200)

	assert.Equal(t, center.Lat, handle.Lat)
	assert.InDelta(t, 10.0017986, handle.Lon, 1e-6)
	assert.InDelta(t, 200, RadiusMeters(center, handle), 1e-6)
}

func TestRadiusLatLng_WidensWithLatitude(t *testing.T) {
	equator := RadiusLatLng(LatLng{Lat: 0, Lon: 0}, 500)
	north := RadiusLatLng(LatLng{Lat: 60, Lon: 0}, 500)

	// cos(60°) = 0.5 doubles the longitude offset
	assert.InDelta(t, equator.Lon*2, north.Lon, 1e-9)
	assert.Equal(t, 60.0, north.Lat)
}

func TestRadiusLatLng_RoundTrip(t *testing.T) {
	center := LatLng{Lat: -6.2088, Lon: 106.8456}
	for _, r := range []float64{1, 50, 200, 1000, 5000} {
		got := RadiusMeters(center, RadiusLatLng(center, r))
		assert.InDelta(t, r, got, r*1e-4, "radius %v", r)
	}
}

func TestRadiusLatLng_ZeroRadius(t *testing.T) {
	center := LatLng{Lat: 51.5, Lon: -0.12}
	assert.Equal(t, center, RadiusLatLng(center, 0))
}

func TestRadiusMeters(t *testing.T) {
	// same point should be 0
	p := LatLng{Lat: -6.2088, Lon: 106.8456}
	assert.Equal(t, 0.0, RadiusMeters(p, p))

	// roughly 133m between these two points
	d := RadiusMeters(p, LatLng{Lat: -6.2100, Lon: 106.8456})
	assert.InDelta(t, 133.4, d, 0.5)
}

func TestLatLngValid(t *testing.T) {
	tests := []struct {
		name    string
		p       LatLng
		wantErr bool
	}{
		{"valid", LatLng{Lat: 0, Lon: 0}, false},
		{"bounds", LatLng{Lat: 90, Lon: -180}, false},
		{"lat too low", LatLng{Lat: -91}, true},
		{"lat too high", LatLng{Lat: 91}, true},
		{"lon too low", LatLng{Lon: -181}, true},
		{"lon too high", LatLng{Lon: 181}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.p.Valid()
			assert.Equal(t, tt.wantErr, err != nil, "Valid() error = %v", err)
		})
	}
}
