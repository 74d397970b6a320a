package main

import (
	"context"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/sma-adp-timetable/api/swagger"
	"github.com/noah-isme/sma-adp-timetable/internal/handler"
	internalmiddleware "github.com/noah-isme/sma-adp-timetable/internal/middleware"
	"github.com/noah-isme/sma-adp-timetable/internal/repository"
	"github.com/noah-isme/sma-adp-timetable/internal/service"
	"github.com/noah-isme/sma-adp-timetable/pkg/cache"
	"github.com/noah-isme/sma-adp-timetable/pkg/config"
	"github.com/noah-isme/sma-adp-timetable/pkg/database"
	"github.com/noah-isme/sma-adp-timetable/pkg/logger"
	corsmiddleware "github.com/noah-isme/sma-adp-timetable/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/sma-adp-timetable/pkg/middleware/requestid"
)

// @title SMA ADP Timetable API
// @version 1.0.0
// @description Timetable generation and teacher workload analysis
// @BasePath /api/v1
// @schemes http

type redisPinger struct {
	client *redis.Client
}

func (p redisPinger) PingContext(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx := context.Background()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	deps := map[string]handler.Pinger{"postgres": db}

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Fatal("failed to connect to redis", zap.Error(err))
	}
	var previews *repository.PreviewRepository
	if redisClient != nil {
		defer redisClient.Close() //nolint:errcheck
		deps["redis"] = redisPinger{client: redisClient}
		previews = repository.NewPreviewRepository(repository.NewCacheRepository(redisClient, logr))
	}

	var metrics *service.MetricsService
	if cfg.Metrics.Enabled {
		metrics = service.NewMetricsService()
	}

	svcCfg := service.TimetableServiceConfig{
		ProposalTTL: cfg.Scheduler.ProposalTTL,
		Engine:      cfg.Scheduler.EngineConfig(),
	}
	var timetableSvc *service.TimetableService
	classRepo := repository.NewClassRepository(db)
	rosterRepo := repository.NewUnitRosterRepository(db)
	periodRepo := repository.NewTimetablePeriodRepository(db)
	if previews != nil {
		timetableSvc = service.NewTimetableService(classRepo, rosterRepo, periodRepo, previews, db, metrics, validator.New(), logr, svcCfg)
	} else {
		logr.Info("redis disabled, keeping timetable previews in memory")
		timetableSvc = service.NewTimetableService(classRepo, rosterRepo, periodRepo, nil, db, metrics, validator.New(), logr, svcCfg)
	}

	timetableHandler := handler.NewTimetableHandler(timetableSvc)
	metricsHandler := handler.NewMetricsHandler(metrics, deps)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	if metrics != nil {
		r.Use(internalmiddleware.Metrics(metrics))
		r.GET("/metrics", metricsHandler.Prometheus)
	}

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)

	api := r.Group(cfg.APIPrefix)
	timetables := api.Group("/timetables")
	timetables.GET("/templates/:category", timetableHandler.Template)
	timetables.POST("/previews", timetableHandler.Preview)
	timetables.GET("/previews/:id", timetableHandler.GetPreview)
	timetables.GET("/previews/:id/export", timetableHandler.Export)
	timetables.POST("/analyze", timetableHandler.Analyze)
	timetables.POST("/apply", timetableHandler.Apply)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "redis", redisClient != nil)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
