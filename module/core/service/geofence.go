package service

import (
	"fmt"

	geo "github.com/kellydunn/golang-geo"
	"github.com/tidwall/geojson"
	"github.com/tidwall/geojson/geometry"

	"github.com/ac-opensource/MarkerBuilder/module/core/domain"
)

// circleSteps is the polygon resolution used when a circle is approximated.
const circleSteps = 64

type savedCircleSource interface {
	SavedCircles() []domain.Circle
}

type Relation string

const (
	RelationDisjoint   Relation = "disjoint"
	RelationIntersects Relation = "intersects"
	RelationContains   Relation = "contains"
	RelationWithin     Relation = "within"
)

type Overlap struct {
	CircleID int64    `json:"circle_id"`
	Relation Relation `json:"relation"`
	Distance float64  `json:"distance"`
}

// GeofenceService answers read-only queries over the saved circles.
type GeofenceService struct {
	circles savedCircleSource
}

func NewGeofenceService(circles savedCircleSource) *GeofenceService {
	return &GeofenceService{circles: circles}
}

// Containing returns the saved circles whose area contains point.
func (s *GeofenceService) Containing(point domain.LatLng) []domain.Circle {
	p := geojson.NewPoint(geometry.Point{X: point.Lon, Y: point.Lat})

	var results []domain.Circle
	for _, c := range s.circles.SavedCircles() {
		if toGeoJSON(c).Contains(p) {
			results = append(results, c)
		}
	}
	return results
}

// Overlaps relates the saved circle id to every other saved circle.
func (s *GeofenceService) Overlaps(id int64) ([]Overlap, error) {
	circles := s.circles.SavedCircles()

	var target *domain.Circle
	for i := range circles {
		if circles[i].ID == id {
			target = &circles[i]
			break
		}
	}
	if target == nil {
		return nil, fmt.Errorf("circle %d: %w", id, ErrCircleNotFound)
	}

	results := make([]Overlap, 0, len(circles)-1)
	for i := range circles {
		if &circles[i] == target {
			continue
		}
		rel, dist := relate(*target, circles[i])
		results = append(results, Overlap{CircleID: circles[i].ID, Relation: rel, Distance: dist})
	}
	return results, nil
}

// FeatureCollection renders the saved circles as GeoJSON.
func (s *GeofenceService) FeatureCollection() []byte {
	circles := s.circles.SavedCircles()
	features := make([]geojson.Object, len(circles))
	for i, c := range circles {
		features[i] = toGeoJSON(c)
	}
	return geojson.NewFeatureCollection(features).AppendJSON(nil)
}

func toGeoJSON(c domain.Circle) *geojson.Circle {
	return geojson.NewCircle(geometry.Point{X: c.Center.Lon, Y: c.Center.Lat}, c.Radius, circleSteps)
}

func relate(a, b domain.Circle) (Relation, float64) {
	pa := geo.NewPoint(a.Center.Lat, a.Center.Lon)
	pb := geo.NewPoint(b.Center.Lat, b.Center.Lon)
	distance := pa.GreatCircleDistance(pb) * 1000

	switch {
	case distance > a.Radius+b.Radius:
		return RelationDisjoint, distance
	case distance+b.Radius <= a.Radius:
		return RelationContains, distance
	case distance+a.Radius <= b.Radius:
		return RelationWithin, distance
	}
	return RelationIntersects, distance
}
