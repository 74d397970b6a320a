package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/sma-adp-timetable/internal/timetable"
)

func TestDefaultsMatchEngineDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg := fromViper(v)

	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, 30*time.Minute, cfg.Scheduler.ProposalTTL)
	assert.Equal(t, timetable.DefaultConfig(), cfg.Scheduler.EngineConfig())
}

func TestSchedulerOverrides(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("SCHEDULER_PROPOSAL_TTL", "2h")
	v.Set("SCHEDULER_MAX_SAME_UNIT_PER_DAY", 3)
	v.Set("SCHEDULER_CORE_SUBJECTS", " quran , , arabic")
	v.Set("SCHEDULER_DEFAULT_CATEGORY", "tertiary")
	v.Set("ALLOWED_ORIGINS", "https://a.test, https://b.test")

	cfg := fromViper(v)
	engine := cfg.Scheduler.EngineConfig()

	assert.Equal(t, 2*time.Hour, cfg.Scheduler.ProposalTTL)
	assert.Equal(t, 3, engine.MaxSameUnitPerDay)
	assert.Equal(t, []string{"quran", "arabic"}, engine.CoreSubjectMarkers)
	assert.Equal(t, timetable.CategoryTertiary, engine.DefaultCategory)
	assert.Equal(t, []string{"https://a.test", "https://b.test"}, cfg.CORS.AllowedOrigins)
}

func TestParseDurationFallsBack(t *testing.T) {
	assert.Equal(t, time.Minute, parseDuration("soon", time.Minute))
	assert.Equal(t, time.Minute, parseDuration("", time.Minute))
	assert.Equal(t, 90*time.Second, parseDuration("90s", time.Minute))
}
