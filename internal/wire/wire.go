// Package wire provides dependency injection for the cadastre application.
// It creates singleton services with lazy initialization.
package wire

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/example/cadastre/internal/adapters/httpapi"
	"github.com/example/cadastre/internal/adapters/persistence"
	redisadapter "github.com/example/cadastre/internal/adapters/redis"
	"github.com/example/cadastre/internal/adapters/sqlite"
	"github.com/example/cadastre/internal/app"
	"github.com/example/cadastre/internal/config"
	"github.com/example/cadastre/internal/core/geo"
	"github.com/example/cadastre/internal/db"
	"github.com/example/cadastre/internal/logger"
	"github.com/example/cadastre/internal/ports/primary"
	"github.com/example/cadastre/internal/ports/secondary"
)

var (
	cfg             *config.Config
	projection      geo.Projection
	redisClient     *redis.Client
	surveyorService primary.SurveyorService
	jobService      primary.JobService
	pillarService   primary.PillarService
	logService      primary.LogService
	once            sync.Once
)

// Configure sets the configuration used on first initialization. Calls made
// after any service has been requested have no effect.
func Configure(c *config.Config) {
	cfg = c
}

// SurveyorService returns the singleton SurveyorService instance.
func SurveyorService() primary.SurveyorService {
	once.Do(initServices)
	return surveyorService
}

// JobService returns the singleton JobService instance.
func JobService() primary.JobService {
	once.Do(initServices)
	return jobService
}

// PillarService returns the singleton PillarService instance.
func PillarService() primary.PillarService {
	once.Do(initServices)
	return pillarService
}

// LogService returns the singleton LogService instance.
func LogService() primary.LogService {
	once.Do(initServices)
	return logService
}

// Config returns the configuration in effect.
func Config() *config.Config {
	once.Do(initServices)
	return cfg
}

// Projection returns the configured projection preset.
func Projection() geo.Projection {
	once.Do(initServices)
	return projection
}

// HTTPServer returns a new HTTP adapter over the singleton services.
func HTTPServer() *httpapi.Server {
	once.Do(initServices)
	return httpapi.NewServer(surveyorService, jobService, pillarService, logger.L())
}

// Close releases the database and Redis connections.
func Close() {
	if redisClient != nil {
		_ = redisClient.Close()
	}
	_ = db.Close()
}

// initServices initializes all services and their dependencies.
// This is called once via sync.Once.
func initServices() {
	l := logger.L()
	if cfg == nil {
		c, err := config.Load()
		if err != nil {
			fatal("config_load_error", err)
		}
		cfg = c
	}

	database, err := db.GetDB(cfg.DBPath)
	if err != nil {
		fatal("db_open_error", err)
	}
	l.Debug("db_open_ok", "path", cfg.DBPath)

	projection, err = geo.LookupProjection(cfg.Projection)
	if err != nil {
		fatal("projection_error", err)
	}

	// Create repository adapters (secondary ports) - sqlite adapters with injected DB
	transactor := sqlite.NewTransactor(database)
	surveyorRepo := sqlite.NewSurveyorRepository(database)
	jobRepo := sqlite.NewJobRepository(database)
	stepRepo := sqlite.NewStepRepository(database)
	pillarRepo := sqlite.NewPillarRepository(database)
	sequenceRepo := sqlite.NewSequenceRepository(database)
	documentRepo := sqlite.NewDocumentRepository(database)
	auditRepo := sqlite.NewAuditLogRepository(database)
	logWriter := sqlite.NewLogWriterAdapter(auditRepo)
	actors := persistence.NewContextActorProvider()
	cache := searchCache(l)

	allocator := app.NewSequenceAllocator(sequenceRepo, pillarRepo, cfg.MaxBatch)

	// Create services (primary ports implementation)
	surveyorService = app.NewSurveyorService(transactor, surveyorRepo, actors, logWriter)
	jobService = app.NewJobService(app.JobServiceDeps{
		Transactor:   transactor,
		JobRepo:      jobRepo,
		StepRepo:     stepRepo,
		SurveyorRepo: surveyorRepo,
		PillarRepo:   pillarRepo,
		DocumentRepo: documentRepo,
		Allocator:    allocator,
		Actors:       actors,
		LogWriter:    logWriter,
		Cache:        cache,
		SeriesPrefix: cfg.SeriesPrefix,
		MaxBatch:     cfg.MaxBatch,
	})
	logService = app.NewLogService(auditRepo, actors)
	pillarService = app.NewPillarService(transactor, pillarRepo, sequenceRepo, allocator, actors, cache, projection, app.SearchSettings{
		DefaultRadiusKm: cfg.RadiusKm,
		MaxRadiusKm:     cfg.MaxRadiusKm,
		Limit:           cfg.SearchLimit,
	})
}

// searchCache returns the Redis search cache, or a no-op cache when Redis is
// not configured. An unreachable server is only logged; its failures are misses.
func searchCache(l *slog.Logger) secondary.SearchCache {
	redisClient = redisadapter.Open(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if redisClient == nil {
		l.Info("redis_disabled")
		return redisadapter.NoopCache{}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		l.Warn("redis_ping_error", "addr", cfg.RedisAddr, "err", err)
	} else {
		l.Info("redis_ping_ok", "addr", cfg.RedisAddr)
	}
	return redisadapter.NewPillarCache(redisClient, cfg.CacheTTL)
}

func fatal(msg string, err error) {
	logger.L().Error(msg, "err", err)
	os.Exit(1)
}
