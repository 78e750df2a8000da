package database

import (
	"context"
	"errors"

	"github.com/ac-opensource/MarkerBuilder/module/core/domain"
)

var ErrNotFound = errors.New("not found")

type GeofenceRepository interface {
	Insert(ctx context.Context, c *domain.Circle) (int64, error)
	Update(ctx context.Context, c *domain.Circle) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]domain.Circle, error)
}
