package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ac-opensource/MarkerBuilder/module/core/domain"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 15.0, cfg.MapZoom)
	assert.Equal(t, 200.0, cfg.Circle.Radius)
	assert.Equal(t, "meters", cfg.Circle.RadiusUnit)
	assert.Equal(t, -1.0, cfg.Circle.MinRadius)
	assert.True(t, cfg.Circle.Enabled)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("CIRCLE_RADIUS", "40")
	t.Setenv("CIRCLE_RADIUS_UNIT", "pixels")
	t.Setenv("CIRCLE_MIN_RADIUS", "50")
	t.Setenv("CIRCLE_MAX_RADIUS", "500")
	t.Setenv("CIRCLE_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.HTTPPort)
	assert.Equal(t, CircleConfig{Radius: 40, RadiusUnit: "pixels", MinRadius: 50, MaxRadius: 500}, cfg.Circle)
}

func TestLoadError(t *testing.T) {
	t.Setenv("CIRCLE_RADIUS", "wide")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env:")
}

func TestCircleOptions(t *testing.T) {
	cfg := &Config{Circle: CircleConfig{Radius: 40, RadiusUnit: "pixels", MinRadius: 50, MaxRadius: 500, Enabled: true}}

	opts, err := cfg.CircleOptions()
	require.NoError(t, err)

	assert.Equal(t, domain.Pixels(40), opts.Radius)
	assert.Equal(t, 50.0, opts.MinRadius)
	assert.Equal(t, 500.0, opts.MaxRadius)
	assert.True(t, opts.Enabled)
	assert.Equal(t, domain.DefaultFillColor, opts.Style.FillColor)
}

func TestCircleOptionsInvalid(t *testing.T) {
	tests := []struct {
		name   string
		circle CircleConfig
	}{
		{"unknown unit", CircleConfig{Radius: 40, RadiusUnit: "feet", MinRadius: -1, MaxRadius: -1}},
		{"min above max", CircleConfig{Radius: 40, RadiusUnit: "meters", MinRadius: 600, MaxRadius: 500}},
		{"negative radius", CircleConfig{Radius: -3, RadiusUnit: "meters", MinRadius: -1, MaxRadius: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Circle: tt.circle}
			_, err := cfg.CircleOptions()
			assert.Error(t, err)
		})
	}
}
