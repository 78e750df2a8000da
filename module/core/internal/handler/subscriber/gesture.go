package subscriber

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/ac-opensource/MarkerBuilder/module/core/domain"
)

const topicPattern = "/geofence/map/+/gesture"

type gestureHandler interface {
	HandleGesture(ctx context.Context, g domain.Gesture) (domain.MoveOutcome, error)
}

type gestureMessage struct {
	Type      domain.GestureType `json:"type"`
	MarkerID  string             `json:"marker_id"`
	Latitude  float64            `json:"latitude"`
	Longitude float64            `json:"longitude"`
	Timestamp int64              `json:"timestamp"`
}

// GestureSubscriber feeds map gestures published by host clients into the
// circle manager.
type GestureSubscriber struct {
	client    mqtt.Client
	circleSvc  gestureHandler
	log        *zap.Logger
	subscribed atomic.Bool
}

func NewGestureSubscriber(client mqtt.Client, circleSvc gestureHandler, log *zap.Logger) *GestureSubscriber {
	return &GestureSubscriber{
		client:    client,
		circleSvc: circleSvc,
		log:       log,
	}
}

func (s *GestureSubscriber) Start() error {
	token := s.client.Subscribe(topicPattern, 1, s.handleMessage)
	token.Wait()
	if err := token.Error(); err != nil {
		return err
	}
	s.subscribed.Store(true)
	s.log.Info("subscribed", zap.String("topic", topicPattern))
	return nil
}

// Subscribed reports whether gestures are being received.
func (s *GestureSubscriber) Subscribed() bool {
	return s.subscribed.Load() && s.client.IsConnected()
}

func (s *GestureSubscriber) handleMessage(_ mqtt.Client, msg mqtt.Message) {
	var raw gestureMessage
	if err := json.Unmarshal(msg.Payload(), &raw); err != nil {
		s.log.Warn("invalid gesture message", zap.String("topic", msg.Topic()), zap.Error(err))
		return
	}

	if err := validateGestureMessage(&raw); err != nil {
		s.log.Warn("validation error", zap.String("topic", msg.Topic()), zap.Error(err))
		return
	}

	g := domain.Gesture{
		Type:     raw.Type,
		MarkerID: raw.MarkerID,
		Position: domain.LatLng{Lat: raw.Latitude, Lon: raw.Longitude},
	}

	out, err := s.circleSvc.HandleGesture(context.Background(), g)
	if err != nil {
		s.log.Error("handle gesture error",
			zap.String("type", string(g.Type)),
			zap.String("marker_id", g.MarkerID),
			zap.Error(err))
		return
	}

	s.log.Debug("gesture handled",
		zap.String("type", string(g.Type)),
		zap.String("marker_id", g.MarkerID),
		zap.String("result", string(out.Result)))
}

func validateGestureMessage(msg *gestureMessage) error {
	if !msg.Type.Known() {
		return fmt.Errorf("type: unknown gesture %q", msg.Type)
	}
	if msg.Type.IsMarker() && msg.MarkerID == "" {
		return fmt.Errorf("marker_id: required")
	}
	if msg.Latitude < -90 || msg.Latitude > 90 {
		return fmt.Errorf("latitude: must be between -90 and 90")
	}
	if msg.Longitude < -180 || msg.Longitude > 180 {
		return fmt.Errorf("longitude: must be between -180 and 180")
	}
	if msg.Timestamp <= 0 {
		return fmt.Errorf("timestamp: must be positive")
	}
	return nil
}
