package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ac-opensource/MarkerBuilder/module/core/domain"
)

type gestureMessage struct {
	Type      domain.GestureType `json:"type"`
	MarkerID  string             `json:"marker_id,omitempty"`
	Latitude  float64            `json:"latitude"`
	Longitude float64            `json:"longitude"`
	Timestamp int64              `json:"timestamp"`
}

type simulator struct {
	client mqtt.Client
	topic  string
	api    string
	log    *zap.Logger
}

var (
	broker   string
	apiURL   string
	mapID    string
	lat      float64
	lon      float64
	interval time.Duration
	steps    int
	growth   float64
)

var rootCmd = &cobra.Command{
	Use:   "publisher",
	Short: "Simulate map gestures against a running geofence server",
	Long: `Publishes a map click to drop a circle, looks up its markers over HTTP,
then drags the resizer outward step by step and finally drags the center.`,
	RunE: run,
}

func init() {
	rootCmd.Flags().StringVar(&broker, "broker", envOr("MQTT_BROKER", "tcp://localhost:1883"), "MQTT broker URL")
	rootCmd.Flags().StringVar(&apiURL, "api", "http://localhost:8080", "geofence server base URL")
	rootCmd.Flags().StringVar(&mapID, "map", "main", "map id used in the gesture topic")
	rootCmd.Flags().Float64Var(&lat, "lat", -6.2088, "latitude of the first click")
	rootCmd.Flags().Float64Var(&lon, "lon", 106.8456, "longitude of the first click")
	rootCmd.Flags().DurationVar(&interval, "interval", time.Second, "delay between gestures")
	rootCmd.Flags().IntVar(&steps, "steps", 5, "number of resize drag steps")
	rootCmd.Flags().Float64Var(&growth, "growth", 50, "meters added to the radius per drag step")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func run(cmd *cobra.Command, _ []string) error {
	if steps <= 0 {
		return fmt.Errorf("steps must be positive")
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID("geofence-gesture-simulator")

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("mqtt connect: %w", token.Error())
	}
	defer client.Disconnect(250)

	sim := &simulator{
		client: client,
		topic:  fmt.Sprintf("/geofence/map/%s/gesture", mapID),
		api:    apiURL,
		log:    logger,
	}
	logger.Info("connected", zap.String("broker", broker), zap.String("topic", sim.topic))

	center := domain.LatLng{Lat: lat, Lon: lon}
	if err := sim.publish(gestureMessage{Type: domain.GestureMapClick, Latitude: center.Lat, Longitude: center.Lon}); err != nil {
		return err
	}
	time.Sleep(interval)

	circle, err := sim.lastDraft()
	if err != nil {
		return err
	}
	if circle.ResizerMarker == nil {
		return fmt.Errorf("circle %s has no resizer", circle.CenterMarker.ID)
	}
	logger.Info("draft circle", zap.String("circle", circle.String()))

	resizer := circle.ResizerMarker.ID
	radius := circle.Radius
	for i := 0; i < steps; i++ {
		gt := domain.GestureMarkerDrag
		switch i {
		case 0:
			gt = domain.GestureMarkerDragStart
		case steps - 1:
			gt = domain.GestureMarkerDragEnd
		}

		radius += growth
		pos := domain.RadiusLatLng(circle.Center, radius)
		if err := sim.publish(gestureMessage{Type: gt, MarkerID: resizer, Latitude: pos.Lat, Longitude: pos.Lon}); err != nil {
			return err
		}
		time.Sleep(interval)
	}

	moved := domain.LatLng{Lat: center.Lat + 0.001, Lon: center.Lon + 0.001}
	for _, gt := range []domain.GestureType{domain.GestureMarkerDragStart, domain.GestureMarkerDragEnd} {
		if err := sim.publish(gestureMessage{Type: gt, MarkerID: circle.CenterMarker.ID, Latitude: moved.Lat, Longitude: moved.Lon}); err != nil {
			return err
		}
		time.Sleep(interval)
	}

	final, err := sim.lastDraft()
	if err != nil {
		return err
	}
	logger.Info("done", zap.String("circle", final.String()))
	return nil
}

func (s *simulator) publish(msg gestureMessage) error {
	msg.Timestamp = time.Now().Unix()
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal gesture: %w", err)
	}

	token := s.client.Publish(s.topic, 1, false, payload)
	token.Wait()
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", msg.Type, err)
	}

	s.log.Info("published", zap.String("type", string(msg.Type)), zap.ByteString("payload", payload))
	return nil
}

func (s *simulator) lastDraft() (*domain.Circle, error) {
	resp, err := http.Get(s.api + "/circles")
	if err != nil {
		return nil, fmt.Errorf("list circles: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list circles: unexpected status %d", resp.StatusCode)
	}

	var circles []domain.Circle
	if err := json.NewDecoder(resp.Body).Decode(&circles); err != nil {
		return nil, fmt.Errorf("decode circles: %w", err)
	}
	if len(circles) == 0 {
		return nil, fmt.Errorf("no draft circle on the map")
	}
	return &circles[len(circles)-1], nil
}
