package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// NoRadiusBound disables a min or max radius bound.
const NoRadiusBound = -1

type Color uint32

const (
	DefaultFillColor   Color = 0x46ff0400
	DefaultStrokeColor Color = 0xffff0000
)

const (
	DefaultRadiusMeters = 200
	DefaultStrokeWidth  = 4
)

type Style struct {
	StrokeWidth float32 `json:"stroke_width"`
	StrokeColor Color   `json:"stroke_color"`
	FillColor   Color   `json:"fill_color"`
}

type MarkerRole string

const (
	RoleNone    MarkerRole = ""
	RoleCenter  MarkerRole = "center"
	RoleResizer MarkerRole = "resizer"
)

type Marker struct {
	ID       string     `json:"id"`
	Role     MarkerRole `json:"role"`
	Position LatLng     `json:"position"`
}

func newMarker(role MarkerRole, pos LatLng) Marker {
	return Marker{ID: uuid.NewString(), Role: role, Position: pos}
}

type CircleKind string

const (
	KindDraft     CircleKind = "draft"
	KindSaved     CircleKind = "saved"
	KindDataPoint CircleKind = "data_point"
)

type MoveResult string

const (
	MoveNone         MoveResult = "none"
	MoveMoved        MoveResult = "moved"
	MoveRadiusChange MoveResult = "radius_change"
	MoveMinRadius    MoveResult = "min_radius"
	MoveMaxRadius    MoveResult = "max_radius"
)

// CircleOptions holds the settings every new circle is built from.
type CircleOptions struct {
	Radius    Measure
	CircleID  int64
	MinRadius float64
	MaxRadius float64
	Enabled   bool
	Style     Style
}

func DefaultCircleOptions() CircleOptions {
	return CircleOptions{
		Radius:    Meters(DefaultRadiusMeters),
		MinRadius: NoRadiusBound,
		MaxRadius: NoRadiusBound,
		Enabled:   true,
		Style: Style{
			StrokeWidth: DefaultStrokeWidth,
			StrokeColor: DefaultStrokeColor,
			FillColor:   DefaultFillColor,
		},
	}
}

func (o CircleOptions) Validate() error {
	if o.Radius.Value < 0 {
		return fmt.Errorf("radius: must not be negative")
	}
	if o.Radius.Unit != UnitMeters && o.Radius.Unit != UnitPixels {
		return fmt.Errorf("radius unit: unknown %q", o.Radius.Unit)
	}
	if o.MinRadius < 0 && o.MinRadius != NoRadiusBound {
		return fmt.Errorf("min radius: must be %d or not negative", NoRadiusBound)
	}
	if o.MaxRadius < 0 && o.MaxRadius != NoRadiusBound {
		return fmt.Errorf("max radius: must be %d or not negative", NoRadiusBound)
	}
	if o.MinRadius >= 0 && o.MaxRadius >= 0 && o.MinRadius > o.MaxRadius {
		return fmt.Errorf("min radius: must not exceed max radius")
	}
	return nil
}

// Circle is a geofence with a center marker and, unless it is a data point,
// a resizer marker sitting on its edge.
type Circle struct {
	ID            int64      `json:"id"`
	Kind          CircleKind `json:"kind"`
	Center        LatLng     `json:"center"`
	Radius        float64    `json:"radius"`
	MinRadius     float64    `json:"min_radius"`
	MaxRadius     float64    `json:"max_radius"`
	Enabled       bool       `json:"enabled"`
	Count         int        `json:"count,omitempty"`
	Style         Style      `json:"style"`
	CenterMarker  Marker     `json:"center_marker"`
	ResizerMarker *Marker    `json:"resizer_marker,omitempty"`
}

func NewCircle(opts CircleOptions, kind CircleKind, center LatLng, radius float64) *Circle {
	resizer := newMarker(RoleResizer, RadiusLatLng(center, radius))
	return &Circle{
		ID:            opts.CircleID,
		Kind:          kind,
		Center:        center,
		Radius:        radius,
		MinRadius:     opts.MinRadius,
		MaxRadius:     opts.MaxRadius,
		Enabled:       opts.Enabled,
		Style:         opts.Style,
		CenterMarker:  newMarker(RoleCenter, center),
		ResizerMarker: &resizer,
	}
}

// NewDataPoint builds a center-only marker carrying a count.
func NewDataPoint(enabled bool, center LatLng, count int) *Circle {
	return &Circle{
		Kind:         KindDataPoint,
		Center:       center,
		MinRadius:    NoRadiusBound,
		MaxRadius:    NoRadiusBound,
		Enabled:      enabled,
		Count:        count,
		CenterMarker: newMarker(RoleCenter, center),
	}
}

func (c *Circle) Role(markerID string) MarkerRole {
	if markerID == "" {
		return RoleNone
	}
	if c.CenterMarker.ID == markerID {
		return RoleCenter
	}
	if c.ResizerMarker != nil && c.ResizerMarker.ID == markerID {
		return RoleResizer
	}
	return RoleNone
}

// OnMarkerMoved applies a marker drag to the circle if it owns the marker.
//
// Dragging the center translates the circle. Dragging the resizer sets the
// radius to the distance from the center, unless that distance falls outside
// the configured bounds, in which case nothing changes and the violated bound
// is reported.
func (c *Circle) OnMarkerMoved(markerID string, pos LatLng) MoveResult {
	if !c.Enabled {
		return MoveNone
	}

	switch c.Role(markerID) {
	case RoleCenter:
		c.SetCenter(pos)
		return MoveMoved
	case RoleResizer:
		newRadius := RadiusMeters(c.Center, pos)
		if c.MinRadius != NoRadiusBound && newRadius < c.MinRadius {
			return MoveMinRadius
		}
		if c.MaxRadius != NoRadiusBound && newRadius > c.MaxRadius {
			return MoveMaxRadius
		}
		c.Radius = newRadius
		c.ResizerMarker.Position = pos
		return MoveRadiusChange
	}
	return MoveNone
}

func (c *Circle) SetCenter(center LatLng) {
	c.Center = center
	c.CenterMarker.Position = center
	if c.ResizerMarker != nil {
		c.ResizerMarker.Position = RadiusLatLng(center, c.Radius)
	}
}

func (c *Circle) SetRadius(radius float64) {
	c.Radius = radius
	if c.ResizerMarker != nil {
		c.ResizerMarker.Position = RadiusLatLng(c.Center, radius)
	}
}

func (c *Circle) Snapshot() Circle {
	s := *c
	if c.ResizerMarker != nil {
		m := *c.ResizerMarker
		s.ResizerMarker = &m
	}
	return s
}

func (c *Circle) String() string {
	return fmt.Sprintf("center: %s radius: %f", c.Center, c.Radius)
}
