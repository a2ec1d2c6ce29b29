package app

import (
	"context"
	"fmt"

	"github.com/khrees2412/talentmatch/internal/config"
	"github.com/khrees2412/talentmatch/internal/database"
	"github.com/khrees2412/talentmatch/internal/database/postgres"
	"github.com/khrees2412/talentmatch/internal/logger"
	"github.com/khrees2412/talentmatch/internal/matcher"
	"github.com/khrees2412/talentmatch/internal/matching"
	"github.com/khrees2412/talentmatch/internal/notify"
	"github.com/khrees2412/talentmatch/pkg/models"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Store is what both database drivers provide: the matching store plus
// seeding and lookup helpers used by the CLI.
type Store interface {
	matching.Store
	CreateCompany(ctx context.Context, c *models.Company) error
	CreateCandidate(ctx context.Context, c *models.Candidate) error
	CreatePosting(ctx context.Context, p *models.JobPosting) error
	CreateProfile(ctx context.Context, p *models.JobProfile) error
	ListCandidateProfiles(ctx context.Context, candidateID int64) ([]models.JobProfile, error)
	CountSwipes(ctx context.Context, candidateID, postingID int64, actor models.Actor) (int, error)
	Close() error
}

var (
	_ Store = (*database.Store)(nil)
	_ Store = (*postgres.Store)(nil)
)

// App is the dependency container for the CLI application
type App struct {
	Config     *config.Config
	Logger     *zap.Logger
	Store      Store
	Dispatcher notify.Dispatcher
	Service    *matching.Service
	Redis      *redis.Client
}

// NewApp initializes and returns a new App instance
func NewApp(ctx context.Context) (*App, error) {
	// Initialize config
	if err := config.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize config: %w", err)
	}

	log, err := logger.New(config.AppConfig.LogJSON, config.AppConfig.LogDebug)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	a, err := Build(ctx, config.AppConfig, log)
	if err != nil {
		log.Sync()
		return nil, err
	}
	return a, nil
}

// Build wires an App from an already loaded configuration.
func Build(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}

	store, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	a := &App{Config: cfg, Logger: log, Store: store}

	sinks := notify.Fanout{notify.NewInbox(store), notify.Logging{Logger: log.Named("notify")}}
	if cfg.RedisURL != "" {
		rdb, err := notify.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		a.Redis = rdb
		sinks = append(sinks, notify.NewRedisPublisher(rdb, cfg.NotifyChannel))
	}
	a.Dispatcher = sinks

	ranker := matcher.NewRanker(cfg.MinScore, cfg.ScoreWorkers)
	a.Service = matching.NewService(store, a.Dispatcher, ranker, log.Named("matching"))
	return a, nil
}

// OpenStore opens the database selected by cfg.DatabaseDriver.
func OpenStore(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.DatabaseDriver {
	case config.DriverPostgres:
		return postgres.Open(ctx, cfg.DatabaseURL)
	case config.DriverSQLite, "":
		return database.Open(cfg.DatabasePath)
	}
	return nil, fmt.Errorf("unknown database driver %q", cfg.DatabaseDriver)
}

// Close closes all resources
func (a *App) Close() error {
	var err error
	if a.Redis != nil {
		err = a.Redis.Close()
	}
	if a.Store != nil {
		if cerr := a.Store.Close(); cerr != nil {
			err = cerr
		}
	}
	if a.Logger != nil {
		a.Logger.Sync()
	}
	return err
}
