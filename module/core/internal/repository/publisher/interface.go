package publisher

import (
	"context"

	"github.com/ac-opensource/MarkerBuilder/module/core/domain"
)

type CircleEventPublisher interface {
	PublishEvent(ctx context.Context, event *domain.CircleEvent) error
}
