package domain

import (
	"fmt"
	"math"

	"github.com/golang/geo/s2"
)

// EarthRadiusMeters is the mean radius used for every meters/angle conversion.
const EarthRadiusMeters = 6371009

type LatLng struct {
	Lat float64 `json:"latitude"`
	Lon float64 `json:"longitude"`
}

func (p LatLng) Valid() error {
	if p.Lat < -90 || p.Lat > 90 {
		return fmt.Errorf("latitude: must be between -90 and 90")
	}
	if p.Lon < -180 || p.Lon > 180 {
		return fmt.Errorf("longitude: must be between -180 and 180")
	}
	return nil
}

func (p LatLng) String() string {
	return fmt.Sprintf("(%f, %f)", p.Lat, p.Lon)
}

// RadiusLatLng returns the point radius meters due east of center.
//
// It uses a flat-earth small-angle approximation and is only meaningful for
// radii that are small compared to the Earth's radius, away from the poles.
func RadiusLatLng(center LatLng, radius float64) LatLng {
	radiusAngle := toDegrees(radius/EarthRadiusMeters) / math.Cos(toRadians(center.Lat))
	return LatLng{Lat: center.Lat, Lon: center.Lon + radiusAngle}
}

// RadiusMeters returns the great-circle distance between center and handle.
func RadiusMeters(center, handle LatLng) float64 {
	a := s2.LatLngFromDegrees(center.Lat, center.Lon)
	b := s2.LatLngFromDegrees(handle.Lat, handle.Lon)
	return a.Distance(b).Radians() * EarthRadiusMeters
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

func toDegrees(rad float64) float64 {
	return rad * 180 / math.Pi
}

type MeasureUnit string

const (
	UnitMeters MeasureUnit = "meters"
	UnitPixels MeasureUnit = "pixels"
)

// Measure is a radius expressed either in meters or in screen pixels.
type Measure struct {
	Value float64     `json:"value"`
	Unit  MeasureUnit `json:"unit"`
}

func Meters(v float64) Measure {
	return Measure{Value: v, Unit: UnitMeters}
}

func Pixels(v float64) Measure {
	return Measure{Value: v, Unit: UnitPixels}
}
