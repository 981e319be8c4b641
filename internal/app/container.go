package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	patternCommands "github.com/peksity/police-chief-bot-sub002/internal/patterns/application/commands"
	patternQueries "github.com/peksity/police-chief-bot-sub002/internal/patterns/application/queries"
	patternServices "github.com/peksity/police-chief-bot-sub002/internal/patterns/application/services"
	patternSubs "github.com/peksity/police-chief-bot-sub002/internal/patterns/application/subscribers"
	patternWorkers "github.com/peksity/police-chief-bot-sub002/internal/patterns/application/workers"
	patternsDomain "github.com/peksity/police-chief-bot-sub002/internal/patterns/domain"
	patternCache "github.com/peksity/police-chief-bot-sub002/internal/patterns/infrastructure/cache"
	patternPersistence "github.com/peksity/police-chief-bot-sub002/internal/patterns/infrastructure/persistence"
	planningQueries "github.com/peksity/police-chief-bot-sub002/internal/planning/application/queries"
	planningServices "github.com/peksity/police-chief-bot-sub002/internal/planning/application/services"
	planningDomain "github.com/peksity/police-chief-bot-sub002/internal/planning/domain"
	"github.com/peksity/police-chief-bot-sub002/internal/planning/infrastructure/catalogfile"
	"github.com/peksity/police-chief-bot-sub002/internal/planning/infrastructure/narrative"
	sharedApplication "github.com/peksity/police-chief-bot-sub002/internal/shared/application"
	"github.com/peksity/police-chief-bot-sub002/internal/shared/infrastructure/database"
	_ "github.com/peksity/police-chief-bot-sub002/internal/shared/infrastructure/database/postgres" // Register PostgreSQL driver
	_ "github.com/peksity/police-chief-bot-sub002/internal/shared/infrastructure/database/sqlite"   // Register SQLite driver
	"github.com/peksity/police-chief-bot-sub002/internal/shared/infrastructure/eventbus"
	"github.com/peksity/police-chief-bot-sub002/internal/shared/infrastructure/migrations"
	"github.com/peksity/police-chief-bot-sub002/internal/shared/infrastructure/outbox"
	"github.com/peksity/police-chief-bot-sub002/pkg/config"
	"github.com/peksity/police-chief-bot-sub002/pkg/observability"
)

// Container holds all application dependencies.
type Container struct {
	Config  *config.Config
	Logger  *slog.Logger
	Metrics *observability.PrometheusMetrics

	// Database
	DBConn   database.Connection
	DBDriver database.Driver

	// Redis
	RedisClient *redis.Client

	// Repositories
	PatternRepo     patternsDomain.Repository
	OutboxRepo      outbox.Repository
	PredictionCache patternsDomain.PredictionCache

	// Unit of Work
	UnitOfWork sharedApplication.UnitOfWork

	// Publishers. LocalBus is set when no broker is configured; the outbox
	// then delivers straight to in-process consumers.
	EventPublisher eventbus.Publisher
	LocalBus       *eventbus.InProcessEventBus

	// Planning
	Catalogs           *planningDomain.CatalogSet
	Scheduler          *planningServices.GreedyScheduler
	AlternativePlanner planningServices.AlternativePlanner

	PlanSessionHandler  *planningQueries.PlanSessionHandler
	ListCatalogsHandler *planningQueries.ListCatalogsHandler

	// Patterns
	Predictor *patternServices.TemporalPredictor

	RecordEngagementHandler  *patternCommands.RecordEngagementHandler
	GetTopPatternsHandler    *patternQueries.GetTopPatternsHandler
	GetScopePeakTimesHandler *patternQueries.GetScopePeakTimesHandler
	PredictBestTimeHandler   *patternQueries.PredictBestTimeHandler
	ShouldNotifyHandler      *patternQueries.ShouldNotifyHandler

	// Subscribers
	CacheInvalidator *patternSubs.CacheInvalidator

	// Workers
	OutboxProcessor *outbox.Processor
	NotifySweeper   *patternWorkers.NotifySweeper
}

// NewContainer wires every dependency from cfg. An empty DATABASE_URL runs
// in local mode on SQLite; Redis and RabbitMQ are optional everywhere.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	c := &Container{
		Config:  cfg,
		Logger:  logger,
		Metrics: observability.NewPrometheusMetrics(observability.PrometheusConfig{Logger: logger}),
	}

	if err := c.initDatabase(ctx); err != nil {
		return nil, err
	}
	if err := c.initCache(ctx); err != nil {
		c.Close()
		return nil, err
	}
	if err := c.initPublisher(); err != nil {
		c.Close()
		return nil, err
	}

	catalogs, err := catalogfile.LoadFile(cfg.CatalogPath)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to load catalogs: %w", err)
	}
	c.Catalogs = catalogs

	if cfg.NarrativeEnabled() {
		planner, err := narrative.NewOpenAIPlanner(narrativeConfig(cfg), logger)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("failed to create alternative planner: %w", err)
		}
		c.AlternativePlanner = planner
		logger.Info("alternative plans enabled", "model", cfg.OpenAIModel)
	}

	c.wireHandlers()

	logger.Info("container ready",
		"driver", c.DBDriver,
		"redis", c.RedisClient != nil,
		"local_bus", c.LocalBus != nil,
		"catalogs", c.Catalogs.Names(),
	)
	return c, nil
}

func (c *Container) initDatabase(ctx context.Context) error {
	cfg := c.Config

	dbCfg := database.Config{
		Driver:     database.Driver(cfg.DatabaseDriver),
		URL:        cfg.DatabaseURL,
		SQLitePath: cfg.SQLitePath,
	}
	if dbCfg.Driver == database.DriverSQLite && dbCfg.SQLitePath == "" {
		dbCfg.SQLitePath = database.DefaultSQLitePath()
	}

	conn, err := database.NewConnection(ctx, dbCfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}
	if err := migrations.Run(ctx, conn); err != nil {
		_ = conn.Close()
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	c.DBConn = conn
	c.DBDriver = conn.Driver()
	c.PatternRepo = patternPersistence.NewSQLPatternRepository(conn)
	c.OutboxRepo = outbox.NewSQLRepository(conn)
	c.UnitOfWork = database.NewUnitOfWork(conn)

	c.Logger.Info("connected to database", "driver", c.DBDriver)
	return nil
}

func (c *Container) initCache(ctx context.Context) error {
	cfg := c.Config

	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			if !cfg.IsDevelopment() {
				return fmt.Errorf("failed to parse Redis URL: %w", err)
			}
			c.Logger.Warn("invalid Redis URL, predictions will use in-memory cache", "error", err)
		} else {
			client := redis.NewClient(opt)
			if err := client.Ping(ctx).Err(); err != nil {
				_ = client.Close()
				if !cfg.IsDevelopment() {
					return fmt.Errorf("failed to connect to Redis: %w", err)
				}
				c.Logger.Warn("Redis not available, predictions will use in-memory cache", "error", err)
			} else {
				c.RedisClient = client
				c.Logger.Info("connected to Redis")
			}
		}
	}

	if c.RedisClient != nil {
		redisCfg := patternCache.DefaultRedisConfig()
		redisCfg.TTL = cfg.PredictionCacheTTL
		c.PredictionCache = patternCache.NewRedisPredictionCache(c.RedisClient, redisCfg, c.Logger)
	} else {
		c.PredictionCache = patternCache.NewInMemoryPredictionCache(cfg.PredictionCacheTTL)
	}
	return nil
}

func (c *Container) initPublisher() error {
	cfg := c.Config

	if cfg.RabbitMQURL != "" {
		publisher, err := eventbus.NewRabbitMQPublisher(cfg.RabbitMQURL, c.Logger)
		if err == nil {
			c.EventPublisher = publisher
			return nil
		}
		if !cfg.IsDevelopment() {
			return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
		}
		c.Logger.Warn("RabbitMQ not available, delivering events in-process", "error", err)
	}

	c.LocalBus = eventbus.NewInProcessEventBus(c.Logger)
	c.EventPublisher = c.LocalBus
	return nil
}

func (c *Container) wireHandlers() {
	cfg := c.Config

	// Planning
	c.Scheduler = planningServices.NewGreedyScheduler(planningServices.SchedulerConfig{
		SlackMinutes: cfg.SchedulerSlackMinutes,
	})
	c.PlanSessionHandler = planningQueries.NewPlanSessionHandler(c.Catalogs, c.Scheduler, c.AlternativePlanner, c.Logger, c.Metrics)
	c.ListCatalogsHandler = planningQueries.NewListCatalogsHandler(c.Catalogs)

	// Patterns
	c.Predictor = patternServices.NewTemporalPredictor(c.PatternRepo, c.PredictionCache, patternServices.PredictorConfig{
		ConfidenceThreshold: cfg.NotifyConfidenceThreshold,
		Location:            cfg.Location,
	}, c.Logger, c.Metrics)

	c.RecordEngagementHandler = patternCommands.NewRecordEngagementHandler(c.PatternRepo, c.OutboxRepo, c.UnitOfWork, c.PredictionCache, cfg.Location, c.Logger, c.Metrics)
	c.GetTopPatternsHandler = patternQueries.NewGetTopPatternsHandler(c.PatternRepo)
	c.GetScopePeakTimesHandler = patternQueries.NewGetScopePeakTimesHandler(c.PatternRepo)
	c.PredictBestTimeHandler = patternQueries.NewPredictBestTimeHandler(c.Predictor)
	c.ShouldNotifyHandler = patternQueries.NewShouldNotifyHandler(c.Predictor)

	// Subscribers
	c.CacheInvalidator = patternSubs.NewCacheInvalidator(c.PredictionCache, c.Logger)
	if c.LocalBus != nil {
		c.LocalBus.RegisterConsumer(c.CacheInvalidator)
	}

	// Workers
	processorCfg := outbox.DefaultProcessorConfig()
	if cfg.OutboxPollInterval > 0 {
		processorCfg.PollInterval = cfg.OutboxPollInterval
	}
	if cfg.OutboxBatchSize > 0 {
		processorCfg.BatchSize = cfg.OutboxBatchSize
	}
	if cfg.OutboxMaxRetries > 0 {
		processorCfg.MaxRetries = cfg.OutboxMaxRetries
	}
	c.OutboxProcessor = outbox.NewProcessor(c.OutboxRepo, c.EventPublisher, processorCfg, c.Logger, c.Metrics)

	c.NotifySweeper = patternWorkers.NewNotifySweeper(c.PatternRepo, c.Predictor, c.OutboxRepo, patternWorkers.NotifySweeperConfig{
		Interval:    cfg.NotifySweepInterval,
		Concurrency: cfg.NotifySweepConcurrency,
		Scopes:      cfg.NotifyScopes,
		Location:    cfg.Location,
	}, c.Logger, c.Metrics)
}

func narrativeConfig(cfg *config.Config) narrative.Config {
	nc := narrative.DefaultConfig()
	nc.APIKey = cfg.OpenAIAPIKey
	nc.BaseURL = cfg.OpenAIBaseURL
	if cfg.OpenAIModel != "" {
		nc.Model = cfg.OpenAIModel
	}
	if cfg.NarrativeTimeout > 0 {
		nc.Timeout = cfg.NarrativeTimeout
	}
	nc.RatePerSecond = cfg.NarrativeRatePerSec
	return nc
}

// Ping checks the database and, when configured, Redis.
func (c *Container) Ping(ctx context.Context) error {
	var errs []error
	if c.DBConn != nil {
		if err := c.DBConn.Ping(ctx); err != nil {
			errs = append(errs, fmt.Errorf("database: %w", err))
		}
	}
	if c.RedisClient != nil {
		if err := c.RedisClient.Ping(ctx).Err(); err != nil {
			errs = append(errs, fmt.Errorf("redis: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Close cleans up all resources.
func (c *Container) Close() {
	if c.EventPublisher != nil {
		if err := c.EventPublisher.Close(); err != nil {
			c.Logger.Warn("error closing event publisher", "error", err)
		}
	}

	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			c.Logger.Warn("error closing Redis connection", "error", err)
		} else {
			c.Logger.Info("Redis connection closed")
		}
	}

	if c.DBConn != nil {
		if err := c.DBConn.Close(); err != nil {
			c.Logger.Warn("error closing database connection", "error", err, "driver", c.DBDriver)
		} else {
			c.Logger.Info("database connection closed", "driver", c.DBDriver)
		}
	}
}

// shutdownTimeout bounds graceful shutdown in the binaries.
const shutdownTimeout = 10 * time.Second

// ShutdownContext returns a context for graceful shutdown work.
func ShutdownContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), shutdownTimeout)
}
