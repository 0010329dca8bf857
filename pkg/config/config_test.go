package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViperDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg := fromViper(v)
	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.False(t, cfg.JWT.Enabled)
	assert.Equal(t, 10*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, 31, cfg.Planner.MaxRangeDays)
	assert.Equal(t, "09:00", cfg.Planner.DefaultWorkStart)
	assert.Equal(t, 8.0, cfg.Planner.DefaultSleepHours)
	assert.Equal(t, time.Hour, cfg.Export.SignedURLTTL)
	assert.Nil(t, cfg.CORS.AllowedOrigins)
}

func TestFromViperOverrides(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("ALLOWED_ORIGINS", " https://a.example , ,https://b.example")
	v.Set("TIMETABLE_CACHE_TTL", "not-a-duration")
	v.Set("PLANNER_MAX_TASKS", -4)
	v.Set("PLANNER_DEFAULT_WORK_HOURS", 7.5)
	v.Set("AUTH_ENABLED", true)

	cfg := fromViper(v)
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 10*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, 200, cfg.Planner.MaxTasks)
	assert.Equal(t, 7.5, cfg.Planner.DefaultWorkHours)
	assert.True(t, cfg.JWT.Enabled)
}
