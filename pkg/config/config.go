package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/noah-isme/sma-adp-timetable/internal/timetable"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database  DatabaseConfig
	Redis     RedisConfig
	CORS      CORSConfig
	Log       LogConfig
	Metrics   MetricsConfig
	Scheduler SchedulerConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool
}

// SchedulerConfig tunes the timetable engine and preview lifetime.
type SchedulerConfig struct {
	ProposalTTL          time.Duration
	MaxSameUnitPerDay    int
	FreePeriodsPerDay    int
	MaxFreePeriodsPerDay int
	CoreSubjects         []string
	CoreWeight           int
	DefaultWeight        int
	WorkloadLow          int
	WorkloadNormal       int
	WorkloadHigh         int
	DefaultCategory      string
}

// EngineConfig converts scheduler settings into the engine value object.
func (s SchedulerConfig) EngineConfig() timetable.Config {
	return timetable.Config{
		CoreSubjectMarkers:   s.CoreSubjects,
		CoreWeight:           s.CoreWeight,
		DefaultWeight:        s.DefaultWeight,
		MaxSameUnitPerDay:    s.MaxSameUnitPerDay,
		FreePeriodsPerDay:    s.FreePeriodsPerDay,
		MaxFreePeriodsPerDay: s.MaxFreePeriodsPerDay,
		Thresholds: timetable.WorkloadThresholds{
			Low:    s.WorkloadLow,
			Normal: s.WorkloadNormal,
			High:   s.WorkloadHigh,
		},
		DefaultCategory: timetable.ParseCategory(s.DefaultCategory),
	}
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !isMissingFile(err) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Enabled:  v.GetBool("ENABLE_REDIS"),
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Metrics = MetricsConfig{Enabled: v.GetBool("ENABLE_METRICS")}

	cfg.Scheduler = SchedulerConfig{
		ProposalTTL:          parseDuration(v.GetString("SCHEDULER_PROPOSAL_TTL"), 30*time.Minute),
		MaxSameUnitPerDay:    v.GetInt("SCHEDULER_MAX_SAME_UNIT_PER_DAY"),
		FreePeriodsPerDay:    v.GetInt("SCHEDULER_FREE_PERIODS_PER_DAY"),
		MaxFreePeriodsPerDay: v.GetInt("SCHEDULER_MAX_FREE_PERIODS_PER_DAY"),
		CoreSubjects:         splitAndTrim(v.GetString("SCHEDULER_CORE_SUBJECTS")),
		CoreWeight:           v.GetInt("SCHEDULER_CORE_WEIGHT"),
		DefaultWeight:        v.GetInt("SCHEDULER_DEFAULT_WEIGHT"),
		WorkloadLow:          v.GetInt("SCHEDULER_WORKLOAD_LOW"),
		WorkloadNormal:       v.GetInt("SCHEDULER_WORKLOAD_NORMAL"),
		WorkloadHigh:         v.GetInt("SCHEDULER_WORKLOAD_HIGH"),
		DefaultCategory:      v.GetString("SCHEDULER_DEFAULT_CATEGORY"),
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "admin_panel_sma")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("ENABLE_REDIS", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("ENABLE_METRICS", true)

	v.SetDefault("SCHEDULER_PROPOSAL_TTL", "30m")
	v.SetDefault("SCHEDULER_MAX_SAME_UNIT_PER_DAY", 2)
	v.SetDefault("SCHEDULER_FREE_PERIODS_PER_DAY", 1)
	v.SetDefault("SCHEDULER_MAX_FREE_PERIODS_PER_DAY", 2)
	v.SetDefault("SCHEDULER_CORE_SUBJECTS", "english,mathematics,math,basic science,science")
	v.SetDefault("SCHEDULER_CORE_WEIGHT", 3)
	v.SetDefault("SCHEDULER_DEFAULT_WEIGHT", 2)
	v.SetDefault("SCHEDULER_WORKLOAD_LOW", 10)
	v.SetDefault("SCHEDULER_WORKLOAD_NORMAL", 25)
	v.SetDefault("SCHEDULER_WORKLOAD_HIGH", 30)
	v.SetDefault("SCHEDULER_DEFAULT_CATEGORY", string(timetable.CategoryPrimary))
}

// isMissingFile treats an absent .env as "no overrides".
func isMissingFile(err error) bool {
	return strings.Contains(err.Error(), "no such file")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
