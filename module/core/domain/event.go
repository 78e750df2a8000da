package domain

type CircleEventType string

const (
	CircleInitCreated CircleEventType = "circle_init_created"
	CircleCreated     CircleEventType = "circle_created"
	CircleMarkerClick CircleEventType = "circle_marker_click"
	CircleMoveStart   CircleEventType = "move_start"
	CircleMoveEnd     CircleEventType = "move_end"
	CircleResizeStart CircleEventType = "resize_start"
	CircleResizeEnd   CircleEventType = "resize_end"
	CircleMinRadius   CircleEventType = "min_radius"
	CircleMaxRadius   CircleEventType = "max_radius"
	CircleSaved       CircleEventType = "circle_saved"
	CircleRemoved     CircleEventType = "circle_removed"
)

type CircleEvent struct {
	Event     CircleEventType `json:"event"`
	Circle    Circle          `json:"circle"`
	Timestamp int64           `json:"timestamp"`
}

type GestureType string

const (
	GestureMapClick        GestureType = "map_click"
	GestureMapLongClick    GestureType = "map_long_click"
	GestureMarkerClick     GestureType = "marker_click"
	GestureMarkerDragStart GestureType = "marker_drag_start"
	GestureMarkerDrag      GestureType = "marker_drag"
	GestureMarkerDragEnd   GestureType = "marker_drag_end"
)

// Gesture is a user interaction already decoded by the host map.
// MarkerID is empty for map gestures.
type Gesture struct {
	Type     GestureType `json:"type"`
	MarkerID string      `json:"marker_id,omitempty"`
	Position LatLng      `json:"position"`
}

func (t GestureType) IsMarker() bool {
	switch t {
	case GestureMarkerClick, GestureMarkerDragStart, GestureMarkerDrag, GestureMarkerDragEnd:
		return true
	}
	return false
}

func (t GestureType) Known() bool {
	return t == GestureMapClick || t == GestureMapLongClick || t.IsMarker()
}

// MoveOutcome reports what a gesture did and to which circle.
// Circle is nil when no tracked circle owns the marker.
type MoveOutcome struct {
	Result MoveResult `json:"result"`
	Circle *Circle    `json:"circle,omitempty"`
}
