package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ac-opensource/MarkerBuilder/module/core/domain"
	"github.com/ac-opensource/MarkerBuilder/module/core/internal/repository/database"
)

var _ database.GeofenceRepository = (*GeofenceRepo)(nil)

type GeofenceRepo struct {
	db *sql.DB
}

func NewGeofenceRepo(db *sql.DB) *GeofenceRepo {
	return &GeofenceRepo{db: db}
}

func (r *GeofenceRepo) Insert(ctx context.Context, c *domain.Circle) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO geofence_circles (latitude, longitude, radius, min_radius, max_radius, fill_color, updated_at) VALUES ($1, $2, $3, $4, $5, $6, now()) RETURNING id`,
		c.Center.Lat, c.Center.Lon, c.Radius, c.MinRadius, c.MaxRadius, int64(c.Style.FillColor),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert geofence circle: %w", err)
	}
	return id, nil
}

func (r *GeofenceRepo) Update(ctx context.Context, c *domain.Circle) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE geofence_circles SET latitude = $1, longitude = $2, radius = $3, updated_at = now() WHERE id = $4`,
		c.Center.Lat, c.Center.Lon, c.Radius, c.ID,
	)
	if err != nil {
		return fmt.Errorf("update geofence circle %d: %w", c.ID, err)
	}
	return expectOneRow(res, c.ID)
}

func (r *GeofenceRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM geofence_circles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete geofence circle %d: %w", id, err)
	}
	return expectOneRow(res, id)
}

func (r *GeofenceRepo) List(ctx context.Context) ([]domain.Circle, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, latitude, longitude, radius, min_radius, max_radius, fill_color FROM geofence_circles ORDER BY id ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var results []domain.Circle
	for rows.Next() {
		var (
			c    domain.Circle
			fill int64
		)
		if err := rows.Scan(&c.ID, &c.Center.Lat, &c.Center.Lon, &c.Radius, &c.MinRadius, &c.MaxRadius, &fill); err != nil {
			return nil, err
		}
		c.Kind = domain.KindSaved
		c.Style.FillColor = domain.Color(fill)
		results = append(results, c)
	}
	return results, rows.Err()
}

func expectOneRow(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("geofence circle %d: %w", id, database.ErrNotFound)
	}
	return nil
}
