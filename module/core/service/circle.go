package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ac-opensource/MarkerBuilder/module/core/domain"
	"github.com/ac-opensource/MarkerBuilder/module/core/internal/repository/database"
	"github.com/ac-opensource/MarkerBuilder/module/core/internal/repository/publisher"
)

var (
	ErrNoDraft        = errors.New("no draft circle")
	ErrCircleNotFound = errors.New("circle not found")
	ErrNoProjection   = errors.New("pixel radius needs a map projection")
	ErrUnknownGesture = errors.New("unknown gesture")
	ErrInvalidBounds  = errors.New("invalid radius bounds")
)

type dragPhase int

const (
	dragStart dragPhase = iota
	dragMove
	dragEnd
)

// CircleManager tracks the circles on one map and applies gestures to them.
//
// Circles live in three ordered lists: drafts, saved circles and data points.
// A marker gesture is offered to each circle in that order and the first
// circle owning the marker handles it.
type CircleManager struct {
	mu         sync.Mutex
	opts       domain.CircleOptions
	repo       database.GeofenceRepository
	publisher  publisher.CircleEventPublisher
	projection Projection
	now        func() time.Time

	areas      []*domain.Circle
	saved      []*domain.Circle
	dataPoints []*domain.Circle
}

type Option func(*CircleManager)

func WithProjection(p Projection) Option {
	return func(m *CircleManager) { m.projection = p }
}

func WithClock(now func() time.Time) Option {
	return func(m *CircleManager) { m.now = now }
}

// NewCircleManager builds a manager. A nil publisher disables notifications.
func NewCircleManager(repo database.GeofenceRepository, pub publisher.CircleEventPublisher, opts domain.CircleOptions, options ...Option) *CircleManager {
	m := &CircleManager{
		opts:      opts,
		repo:      repo,
		publisher: pub,
		now:       time.Now,
	}
	for _, o := range options {
		o(m)
	}
	return m
}

// MarkThis clears the drafts and places a new circle at point. A saved
// circle is inserted into storage before it is tracked.
func (m *CircleManager) MarkThis(ctx context.Context, point domain.LatLng, isSaved bool) (domain.Circle, error) {
	m.mu.Lock()
	radius, err := m.initialRadius(point)
	opts := m.opts
	m.mu.Unlock()
	if err != nil {
		return domain.Circle{}, err
	}

	kind := domain.KindDraft
	if isSaved {
		kind = domain.KindSaved
	}
	c := domain.NewCircle(opts, kind, point, radius)
	if isSaved {
		snap := c.Snapshot()
		id, err := m.repo.Insert(ctx, &snap)
		if err != nil {
			return domain.Circle{}, fmt.Errorf("save circle: %w", err)
		}
		c.ID = id
	}

	m.mu.Lock()
	events := m.removedEvents(m.areas)
	m.areas = nil
	if isSaved {
		m.saved = append(m.saved, c)
	} else {
		m.areas = append(m.areas, c)
	}
	snap := c.Snapshot()
	events = append(events, m.event(domain.CircleCreated, snap))
	m.mu.Unlock()

	return snap, m.notify(ctx, events...)
}

func (m *CircleManager) OnMapClick(ctx context.Context, point domain.LatLng) (domain.Circle, error) {
	return m.MarkThis(ctx, point, false)
}

func (m *CircleManager) OnMapLongClick(context.Context, domain.LatLng) {}

// PlotPoints adds a circle that already exists on the server.
func (m *CircleManager) PlotPoints(ctx context.Context, point domain.LatLng, radius float64, id int64, fill domain.Color) (domain.Circle, error) {
	c := m.AddSavedPoint(point, radius, id, fill)
	return c, m.notify(ctx, m.event(domain.CircleInitCreated, c))
}

// AddSavedPoint tracks a circle stored under id. An id of 0 marks a circle
// that has no storage row, so its moves are never persisted.
func (m *CircleManager) AddSavedPoint(point domain.LatLng, radius float64, id int64, fill domain.Color) domain.Circle {
	m.mu.Lock()
	defer m.mu.Unlock()
	opts := m.opts
	opts.CircleID = id
	opts.Style.FillColor = fill

	c := domain.NewCircle(opts, domain.KindSaved, point, radius)
	m.saved = append(m.saved, c)
	return c.Snapshot()
}

func (m *CircleManager) AddDataPoint(point domain.LatLng, count int) domain.Circle {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := domain.NewDataPoint(m.opts.Enabled, point, count)
	m.dataPoints = append(m.dataPoints, c)
	return c.Snapshot()
}

// RemoveCircle stops tracking the first saved circle with the given id.
func (m *CircleManager) RemoveCircle(ctx context.Context, id int64) (bool, error) {
	m.mu.Lock()
	var removed *domain.Circle
	for i, c := range m.saved {
		if c.ID == id {
			removed = c
			m.saved = append(m.saved[:i], m.saved[i+1:]...)
			break
		}
	}
	m.mu.Unlock()

	if removed == nil {
		return false, nil
	}
	return true, m.notify(ctx, m.event(domain.CircleRemoved, removed.Snapshot()))
}

func (m *CircleManager) ClearCircles(ctx context.Context) error {
	m.mu.Lock()
	events := m.removedEvents(m.areas)
	m.areas = nil
	m.mu.Unlock()
	return m.notify(ctx, events...)
}

func (m *CircleManager) ClearSavedCircles(ctx context.Context) error {
	m.mu.Lock()
	events := m.removedEvents(m.saved)
	m.saved = nil
	m.mu.Unlock()
	return m.notify(ctx, events...)
}

func (m *CircleManager) ClearSavedDataPoints(ctx context.Context) error {
	m.mu.Lock()
	events := m.removedEvents(m.dataPoints)
	m.dataPoints = nil
	m.mu.Unlock()
	return m.notify(ctx, events...)
}

func (m *CircleManager) Circles() []domain.Circle {
	m.mu.Lock()
	defer m.mu.Unlock()
	return snapshots(m.areas)
}

func (m *CircleManager) SavedCircles() []domain.Circle {
	m.mu.Lock()
	defer m.mu.Unlock()
	return snapshots(m.saved)
}

func (m *CircleManager) DataPoints() []domain.Circle {
	m.mu.Lock()
	defer m.mu.Unlock()
	return snapshots(m.dataPoints)
}

// OnMarkerClick reports the circle owning the marker, or nil.
func (m *CircleManager) OnMarkerClick(ctx context.Context, markerID string) (*domain.Circle, error) {
	m.mu.Lock()
	var found *domain.Circle
	for _, c := range m.all() {
		if c.Role(markerID) != domain.RoleNone {
			snap := c.Snapshot()
			found = &snap
			break
		}
	}
	m.mu.Unlock()

	if found == nil {
		return nil, nil
	}
	return found, m.notify(ctx, m.event(domain.CircleMarkerClick, *found))
}

func (m *CircleManager) OnMarkerDragStart(ctx context.Context, markerID string, pos domain.LatLng) (domain.MoveOutcome, error) {
	return m.drag(ctx, dragStart, markerID, pos)
}

func (m *CircleManager) OnMarkerDrag(ctx context.Context, markerID string, pos domain.LatLng) (domain.MoveOutcome, error) {
	return m.drag(ctx, dragMove, markerID, pos)
}

func (m *CircleManager) OnMarkerDragEnd(ctx context.Context, markerID string, pos domain.LatLng) (domain.MoveOutcome, error) {
	return m.drag(ctx, dragEnd, markerID, pos)
}

// HandleGesture routes a decoded host gesture to the matching handler.
func (m *CircleManager) HandleGesture(ctx context.Context, g domain.Gesture) (domain.MoveOutcome, error) {
	out := domain.MoveOutcome{Result: domain.MoveNone}
	switch g.Type {
	case domain.GestureMapClick:
		c, err := m.OnMapClick(ctx, g.Position)
		if c.CenterMarker.ID != "" {
			out.Circle = &c
		}
		return out, err
	case domain.GestureMapLongClick:
		m.OnMapLongClick(ctx, g.Position)
		return out, nil
	case domain.GestureMarkerClick:
		c, err := m.OnMarkerClick(ctx, g.MarkerID)
		out.Circle = c
		return out, err
	case domain.GestureMarkerDragStart:
		return m.OnMarkerDragStart(ctx, g.MarkerID, g.Position)
	case domain.GestureMarkerDrag:
		return m.OnMarkerDrag(ctx, g.MarkerID, g.Position)
	case domain.GestureMarkerDragEnd:
		return m.OnMarkerDragEnd(ctx, g.MarkerID, g.Position)
	}
	return out, fmt.Errorf("%w: %q", ErrUnknownGesture, g.Type)
}

// SaveDraft persists the most recent draft and moves it to the saved list.
func (m *CircleManager) SaveDraft(ctx context.Context) (domain.Circle, error) {
	m.mu.Lock()
	if len(m.areas) == 0 {
		m.mu.Unlock()
		return domain.Circle{}, ErrNoDraft
	}
	c := m.areas[len(m.areas)-1]
	snap := c.Snapshot()
	m.mu.Unlock()

	id, err := m.repo.Insert(ctx, &snap)
	if err != nil {
		return domain.Circle{}, fmt.Errorf("save draft: %w", err)
	}

	m.mu.Lock()
	idx := -1
	for i, a := range m.areas {
		if a == c {
			idx = i
			break
		}
	}
	if idx < 0 {
		// the draft was cleared or saved by someone else during the insert
		m.mu.Unlock()
		if err := m.repo.Delete(ctx, id); err != nil {
			return domain.Circle{}, errors.Join(ErrNoDraft, fmt.Errorf("discard circle %d: %w", id, err))
		}
		return domain.Circle{}, ErrNoDraft
	}
	m.areas = append(m.areas[:idx], m.areas[idx+1:]...)
	c.ID = id
	c.Kind = domain.KindSaved
	m.saved = append(m.saved, c)
	snap = c.Snapshot()
	m.mu.Unlock()

	return snap, m.notify(ctx, m.event(domain.CircleSaved, snap))
}

// DeleteSaved removes a saved circle from storage and from the map.
func (m *CircleManager) DeleteSaved(ctx context.Context, id int64) error {
	if err := m.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return fmt.Errorf("delete circle %d: %w", id, ErrCircleNotFound)
		}
		return fmt.Errorf("delete circle %d: %w", id, err)
	}
	_, err := m.RemoveCircle(ctx, id)
	return err
}

// LoadSaved replaces the saved circles with the ones in storage.
func (m *CircleManager) LoadSaved(ctx context.Context) error {
	stored, err := m.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("load saved circles: %w", err)
	}

	m.mu.Lock()
	events := m.removedEvents(m.saved)
	m.saved = make([]*domain.Circle, 0, len(stored))
	for _, s := range stored {
		opts := m.opts
		opts.CircleID = s.ID
		opts.MinRadius = s.MinRadius
		opts.MaxRadius = s.MaxRadius
		opts.Style.FillColor = s.Style.FillColor
		c := domain.NewCircle(opts, domain.KindSaved, s.Center, s.Radius)
		m.saved = append(m.saved, c)
		events = append(events, m.event(domain.CircleInitCreated, c.Snapshot()))
	}
	m.mu.Unlock()

	return m.notify(ctx, events...)
}

// SetRadiusBounds changes the min and max radius given to circles created
// from now on. Use domain.NoRadiusBound to disable either bound.
func (m *CircleManager) SetRadiusBounds(minRadius, maxRadius float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	opts := m.opts
	opts.MinRadius = minRadius
	opts.MaxRadius = maxRadius
	if err := opts.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBounds, err)
	}
	m.opts = opts
	return nil
}

// RadiusBounds returns the bounds new circles are created with.
func (m *CircleManager) RadiusBounds() (minRadius, maxRadius float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.opts.MinRadius, m.opts.MaxRadius
}

func (m *CircleManager) drag(ctx context.Context, phase dragPhase, markerID string, pos domain.LatLng) (domain.MoveOutcome, error) {
	m.mu.Lock()
	result, c := m.onMarkerMoved(markerID, pos)
	out := domain.MoveOutcome{Result: result}
	if c == nil {
		m.mu.Unlock()
		return out, nil
	}
	snap := c.Snapshot()
	out.Circle = &snap
	m.mu.Unlock()

	var errs []error
	changed := result == domain.MoveMoved || result == domain.MoveRadiusChange
	if phase == dragEnd && changed && snap.Kind == domain.KindSaved && snap.ID != 0 {
		if err := m.repo.Update(ctx, &snap); err != nil {
			errs = append(errs, fmt.Errorf("persist circle %d: %w", snap.ID, err))
		}
	}

	if ev, ok := dragEvent(phase, result); ok {
		errs = append(errs, m.notify(ctx, m.event(ev, snap)))
	}
	return out, errors.Join(errs...)
}

func dragEvent(phase dragPhase, result domain.MoveResult) (domain.CircleEventType, bool) {
	switch result {
	case domain.MoveMinRadius:
		return domain.CircleMinRadius, true
	case domain.MoveMaxRadius:
		return domain.CircleMaxRadius, true
	case domain.MoveRadiusChange:
		switch phase {
		case dragStart:
			return domain.CircleResizeStart, true
		case dragEnd:
			return domain.CircleResizeEnd, true
		}
	case domain.MoveMoved:
		switch phase {
		case dragStart:
			return domain.CircleMoveStart, true
		case dragEnd:
			return domain.CircleMoveEnd, true
		}
	}
	return "", false
}

// onMarkerMoved must be called with mu held.
func (m *CircleManager) onMarkerMoved(markerID string, pos domain.LatLng) (domain.MoveResult, *domain.Circle) {
	for _, c := range m.all() {
		if result := c.OnMarkerMoved(markerID, pos); result != domain.MoveNone {
			return result, c
		}
	}
	return domain.MoveNone, nil
}

func (m *CircleManager) all() []*domain.Circle {
	all := make([]*domain.Circle, 0, len(m.areas)+len(m.saved)+len(m.dataPoints))
	all = append(all, m.areas...)
	all = append(all, m.saved...)
	return append(all, m.dataPoints...)
}

func (m *CircleManager) initialRadius(at domain.LatLng) (float64, error) {
	r := m.opts.Radius
	if r.Value == 0 {
		return domain.DefaultRadiusMeters, nil
	}
	if r.Unit != domain.UnitPixels {
		return r.Value, nil
	}
	if m.projection == nil {
		return 0, ErrNoProjection
	}
	return r.Value * m.projection.MetersPerPixel(at), nil
}

func (m *CircleManager) event(t domain.CircleEventType, c domain.Circle) domain.CircleEvent {
	return domain.CircleEvent{Event: t, Circle: c, Timestamp: m.now().Unix()}
}

func (m *CircleManager) removedEvents(circles []*domain.Circle) []domain.CircleEvent {
	events := make([]domain.CircleEvent, 0, len(circles))
	for _, c := range circles {
		events = append(events, m.event(domain.CircleRemoved, c.Snapshot()))
	}
	return events
}

func (m *CircleManager) notify(ctx context.Context, events ...domain.CircleEvent) error {
	if m.publisher == nil {
		return nil
	}
	var errs []error
	for i := range events {
		if err := m.publisher.PublishEvent(ctx, &events[i]); err != nil {
			errs = append(errs, fmt.Errorf("publish %s: %w", events[i].Event, err))
		}
	}
	return errors.Join(errs...)
}

func snapshots(circles []*domain.Circle) []domain.Circle {
	out := make([]domain.Circle, len(circles))
	for i, c := range circles {
		out[i] = c.Snapshot()
	}
	return out
}
