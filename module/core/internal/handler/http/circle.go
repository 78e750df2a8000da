package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ac-opensource/MarkerBuilder/module/core/domain"
	"github.com/ac-opensource/MarkerBuilder/module/core/service"
)

type circleService interface {
	MarkThis(ctx context.Context, point domain.LatLng, isSaved bool) (domain.Circle, error)
	PlotPoints(ctx context.Context, point domain.LatLng, radius float64, id int64, fill domain.Color) (domain.Circle, error)
	AddDataPoint(point domain.LatLng, count int) domain.Circle
	SaveDraft(ctx context.Context) (domain.Circle, error)
	DeleteSaved(ctx context.Context, id int64) error
	ClearCircles(ctx context.Context) error
	ClearSavedCircles(ctx context.Context) error
	ClearSavedDataPoints(ctx context.Context) error
	Circles() []domain.Circle
	SavedCircles() []domain.Circle
	DataPoints() []domain.Circle
	HandleGesture(ctx context.Context, g domain.Gesture) (domain.MoveOutcome, error)
	SetRadiusBounds(minRadius, maxRadius float64) error
	RadiusBounds() (minRadius, maxRadius float64)
}

type geofenceService interface {
	Containing(point domain.LatLng) []domain.Circle
	Overlaps(id int64) ([]service.Overlap, error)
	FeatureCollection() []byte
}

type markRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Saved     bool    `json:"saved"`
}

type plotRequest struct {
	ID        int64        `json:"id"`
	Latitude  float64      `json:"latitude"`
	Longitude float64      `json:"longitude"`
	Radius    float64      `json:"radius" binding:"gt=0"`
	FillColor domain.Color `json:"fill_color"`
}

type dataPointRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Count     int     `json:"count" binding:"gte=0"`
}

type gestureRequest struct {
	Type      domain.GestureType `json:"type" binding:"required"`
	MarkerID  string             `json:"marker_id"`
	Latitude  float64            `json:"latitude"`
	Longitude float64            `json:"longitude"`
}

// radiusBounds uses -1 for a disabled bound.
type radiusBounds struct {
	MinRadius *float64 `json:"min_radius" binding:"required"`
	MaxRadius *float64 `json:"max_radius" binding:"required"`
}

type CircleHandler struct {
	circleSvc   circleService
	geofenceSvc geofenceService
}

func NewCircleHandler(circleSvc circleService, geofenceSvc geofenceService) *CircleHandler {
	return &CircleHandler{circleSvc: circleSvc, geofenceSvc: geofenceSvc}
}

func (h *CircleHandler) Register(r *gin.RouterGroup) {
	r.GET("/circles", h.GetCircles)
	r.GET("/circles/saved", h.GetSavedCircles)
	r.GET("/circles/data-points", h.GetDataPoints)
	r.POST("/circles", h.MarkThis)
	r.POST("/circles/saved", h.PlotPoints)
	r.POST("/circles/data-points", h.AddDataPoint)
	r.POST("/circles/draft/save", h.SaveDraft)
	r.DELETE("/circles", h.ClearCircles)
	r.DELETE("/circles/saved", h.ClearSavedCircles)
	r.DELETE("/circles/saved/:id", h.DeleteSaved)
	r.DELETE("/circles/data-points", h.ClearDataPoints)
	r.POST("/gestures", h.HandleGesture)
	r.GET("/circles/radius-bounds", h.GetRadiusBounds)
	r.PUT("/circles/radius-bounds", h.SetRadiusBounds)

	r.GET("/geofences/containing", h.Containing)
	r.GET("/geofences/geojson", h.GeoJSON)
	r.GET("/geofences/:id/overlaps", h.Overlaps)
}

func (h *CircleHandler) GetCircles(c *gin.Context) {
	c.JSON(http.StatusOK, h.circleSvc.Circles())
}

func (h *CircleHandler) GetSavedCircles(c *gin.Context) {
	c.JSON(http.StatusOK, h.circleSvc.SavedCircles())
}

func (h *CircleHandler) GetDataPoints(c *gin.Context) {
	c.JSON(http.StatusOK, h.circleSvc.DataPoints())
}

func (h *CircleHandler) MarkThis(c *gin.Context) {
	var req markRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	point := domain.LatLng{Lat: req.Latitude, Lon: req.Longitude}
	if err := point.Valid(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	circle, err := h.circleSvc.MarkThis(c.Request.Context(), point, req.Saved)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, circle)
}

func (h *CircleHandler) PlotPoints(c *gin.Context) {
	var req plotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	point := domain.LatLng{Lat: req.Latitude, Lon: req.Longitude}
	if err := point.Valid(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	circle, err := h.circleSvc.PlotPoints(c.Request.Context(), point, req.Radius, req.ID, req.FillColor)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, circle)
}

func (h *CircleHandler) AddDataPoint(c *gin.Context) {
	var req dataPointRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	point := domain.LatLng{Lat: req.Latitude, Lon: req.Longitude}
	if err := point.Valid(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, h.circleSvc.AddDataPoint(point, req.Count))
}

func (h *CircleHandler) SaveDraft(c *gin.Context) {
	circle, err := h.circleSvc.SaveDraft(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, circle)
}

func (h *CircleHandler) DeleteSaved(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id parameter"})
		return
	}

	if err := h.circleSvc.DeleteSaved(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CircleHandler) ClearCircles(c *gin.Context) {
	h.clear(c, h.circleSvc.ClearCircles)
}

func (h *CircleHandler) ClearSavedCircles(c *gin.Context) {
	h.clear(c, h.circleSvc.ClearSavedCircles)
}

func (h *CircleHandler) ClearDataPoints(c *gin.Context) {
	h.clear(c, h.circleSvc.ClearSavedDataPoints)
}

func (h *CircleHandler) clear(c *gin.Context, fn func(context.Context) error) {
	if err := fn(c.Request.Context()); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CircleHandler) HandleGesture(c *gin.Context) {
	var req gestureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	g := domain.Gesture{
		Type:     req.Type,
		MarkerID: req.MarkerID,
		Position: domain.LatLng{Lat: req.Latitude, Lon: req.Longitude},
	}
	if !g.Type.Known() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown gesture type"})
		return
	}
	if g.Type.IsMarker() && g.MarkerID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "marker_id is required"})
		return
	}
	if err := g.Position.Valid(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	out, err := h.circleSvc.HandleGesture(c.Request.Context(), g)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *CircleHandler) GetRadiusBounds(c *gin.Context) {
	lo, hi := h.circleSvc.RadiusBounds()
	c.JSON(http.StatusOK, radiusBounds{MinRadius: &lo, MaxRadius: &hi})
}

func (h *CircleHandler) SetRadiusBounds(c *gin.Context) {
	var req radiusBounds
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.circleSvc.SetRadiusBounds(*req.MinRadius, *req.MaxRadius); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

func (h *CircleHandler) Containing(c *gin.Context) {
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lat parameter"})
		return
	}

	lon, err := strconv.ParseFloat(c.Query("lon"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lon parameter"})
		return
	}

	point := domain.LatLng{Lat: lat, Lon: lon}
	if err := point.Valid(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	circles := h.geofenceSvc.Containing(point)
	if circles == nil {
		circles = []domain.Circle{}
	}
	c.JSON(http.StatusOK, circles)
}

func (h *CircleHandler) GeoJSON(c *gin.Context) {
	c.Data(http.StatusOK, "application/geo+json", h.geofenceSvc.FeatureCollection())
}

func (h *CircleHandler) Overlaps(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id parameter"})
		return
	}

	overlaps, err := h.geofenceSvc.Overlaps(id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, overlaps)
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCircleNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "circle not found"})
	case errors.Is(err, service.ErrNoDraft):
		c.JSON(http.StatusConflict, gin.H{"error": "no draft circle"})
	case errors.Is(err, service.ErrNoProjection), errors.Is(err, service.ErrUnknownGesture),
		errors.Is(err, service.ErrInvalidBounds):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
