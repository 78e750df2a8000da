package service

import (
	"math"

	"github.com/ac-opensource/MarkerBuilder/module/core/domain"
)

// Projection converts screen distances to ground distances.
type Projection interface {
	MetersPerPixel(at domain.LatLng) float64
}

// equatorMetersPerPixel is the ground resolution of a 256px tile at zoom 0.
const equatorMetersPerPixel = 156543.03392

// WebMercator is the projection used by slippy-map tile servers.
type WebMercator struct {
	Zoom float64
}

func (w WebMercator) MetersPerPixel(at domain.LatLng) float64 {
	return equatorMetersPerPixel * math.Cos(at.Lat*math.Pi/180) / math.Pow(2, w.Zoom)
}
