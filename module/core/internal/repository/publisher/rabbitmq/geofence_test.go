package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/ac-opensource/MarkerBuilder/module/core/domain"
)

type fakeChannel struct {
	exchange string
	msg      amqp.Publishing
	err      error
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, _ string, _, _ bool, msg amqp.Publishing) error {
	f.exchange = exchange
	f.msg = msg
	return f.err
}

func TestPublishEvent_Success(t *testing.T) {
	ch := &fakeChannel{}
	p := &CirclePublisher{ch: ch}

	event := &domain.CircleEvent{
		Event: domain.CircleResizeEnd,
		Circle: domain.Circle{
			ID:        3,
			Kind:      domain.KindSaved,
			Center:    domain.LatLng{Lat: -6.2088, Lon: 106.8456},
			Radius:    250,
			MinRadius: domain.NoRadiusBound,
			MaxRadius: 500,
		},
		Timestamp: 1715003456,
	}

	if err := p.PublishEvent(context.Background(), event); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ch.exchange != ExchangeName {
		t.Errorf("expected %s, got %s", ExchangeName, ch.exchange)
	}
	if ch.msg.ContentType != "application/json" {
		t.Errorf("expected application/json, got %s", ch.msg.ContentType)
	}

	var got eventMessage
	if err := json.Unmarshal(ch.msg.Body, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Event != domain.CircleResizeEnd {
		t.Errorf("expected resize_end, got %s", got.Event)
	}
	if got.CircleID != 3 {
		t.Errorf("expected 3, got %d", got.CircleID)
	}
	if got.Center.Latitude != -6.2088 {
		t.Errorf("expected -6.2088, got %f", got.Center.Latitude)
	}
	if got.Radius != 250 {
		t.Errorf("expected 250, got %f", got.Radius)
	}
}

func TestPublishEvent_ChannelError(t *testing.T) {
	p := &CirclePublisher{ch: &fakeChannel{err: errors.New("channel closed")}}

	err := p.PublishEvent(context.Background(), &domain.CircleEvent{Event: domain.CircleCreated})
	if err == nil {
		t.Fatal("expected error")
	}
}
