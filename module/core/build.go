package core

import (
	"context"
	"database/sql"
	"fmt"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gin-gonic/gin"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/ac-opensource/MarkerBuilder/module/core/domain"
	handler "github.com/ac-opensource/MarkerBuilder/module/core/internal/handler/http"
	"github.com/ac-opensource/MarkerBuilder/module/core/internal/handler/subscriber"
	"github.com/ac-opensource/MarkerBuilder/module/core/internal/repository/database/postgres"
	"github.com/ac-opensource/MarkerBuilder/module/core/internal/repository/publisher/rabbitmq"
	"github.com/ac-opensource/MarkerBuilder/module/core/service"
)

type Module struct {
	CircleMgr   *service.CircleManager
	GeofenceSvc *service.GeofenceService
	handler     *handler.CircleHandler
	subscriber  *subscriber.GestureSubscriber
}

type Params struct {
	DB         *sql.DB
	AMQPConn   *amqp.Connection
	MQTTClient mqtt.Client
	Circle     domain.CircleOptions
	MapZoom    float64
	Logger     *zap.Logger
}

func Build(p Params) (*Module, error) {
	geofenceRepo := postgres.NewGeofenceRepo(p.DB)

	circlePub, err := rabbitmq.NewCirclePublisher(p.AMQPConn)
	if err != nil {
		return nil, fmt.Errorf("circle publisher: %w", err)
	}

	circleMgr := service.NewCircleManager(geofenceRepo, circlePub, p.Circle,
		service.WithProjection(service.WebMercator{Zoom: p.MapZoom}))
	geofenceSvc := service.NewGeofenceService(circleMgr)

	h := handler.NewCircleHandler(circleMgr, geofenceSvc)
	sub := subscriber.NewGestureSubscriber(p.MQTTClient, circleMgr, p.Logger.Named("gesture"))

	return &Module{
		CircleMgr:   circleMgr,
		GeofenceSvc: geofenceSvc,
		handler:     h,
		subscriber:  sub,
	}, nil
}

// LoadSaved plots the circles already in storage.
func (m *Module) LoadSaved(ctx context.Context) error {
	return m.CircleMgr.LoadSaved(ctx)
}

func (m *Module) RegisterRoutes(r *gin.RouterGroup) {
	m.handler.Register(r)
}

func (m *Module) StartSubscribers() error {
	return m.subscriber.Start()
}

func (m *Module) Subscribed() bool {
	return m.subscriber.Subscribed()
}
