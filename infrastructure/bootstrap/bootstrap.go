// Package bootstrap assembles storage and use cases from configuration.
package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/juju/clock"
	_ "github.com/lib/pq"

	"github.com/complyance/governance/application/port/inbound"
	"github.com/complyance/governance/application/port/outbound"
	"github.com/complyance/governance/application/usecase/post"
	"github.com/complyance/governance/application/usecase/preference"
	"github.com/complyance/governance/application/usecase/system"
	"github.com/complyance/governance/application/usecase/user_lifecycle"
	"github.com/complyance/governance/infrastructure/adapter/memory"
	"github.com/complyance/governance/infrastructure/adapter/postgres"
	"github.com/complyance/governance/infrastructure/config"
	"github.com/complyance/governance/infrastructure/service/logger"
)

// Storage is one backing store and the repositories over it.
type Storage struct {
	Driver      string
	Users       outbound.UserRepository
	Posts       outbound.PostRepository
	Preferences outbound.PreferenceRepository
	Transactor  outbound.Transactor
	Health      outbound.HealthChecker

	db *sql.DB
}

// NewMemoryStorage keeps everything in process memory.
func NewMemoryStorage() *Storage {
	store := memory.NewStore()
	return &Storage{
		Driver:      config.StorageDriverMemory,
		Users:       memory.NewUserRepository(store),
		Posts:       memory.NewPostRepository(store),
		Preferences: memory.NewPreferenceRepository(store),
		Transactor:  store.Transactor(),
		Health:      store,
	}
}

// NewPostgresStorage wraps an open connection pool.
func NewPostgresStorage(db *sql.DB) *Storage {
	return &Storage{
		Driver:      config.StorageDriverPostgres,
		Users:       postgres.NewUserRepositoryAdapter(db),
		Posts:       postgres.NewPostgresPostRepository(db),
		Preferences: postgres.NewPostgresPreferenceRepository(db),
		Transactor:  postgres.NewTransactor(db),
		Health:      postgres.NewHealthChecker(db),
		db:          db,
	}
}

// OpenStorage connects to the store named by cfg.StorageDriver.
func OpenStorage(ctx context.Context, cfg *config.Config, log logger.Logger) (*Storage, error) {
	if cfg.StorageDriver == config.StorageDriverMemory {
		log.Warn(ctx, "Using in-memory storage, data is lost on restart", nil)
		return NewMemoryStorage(), nil
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	db.SetConnMaxLifetime(cfg.DBConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info(ctx, "Database connection established", map[string]interface{}{
		"max_open_conns": cfg.DBMaxOpenConns,
		"max_idle_conns": cfg.DBMaxIdleConns,
	})
	return NewPostgresStorage(db), nil
}

func (s *Storage) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// UseCases are the inbound ports served over HTTP.
type UseCases struct {
	Users       inbound.UserLifecycleUseCase
	Posts       inbound.PostUseCase
	Preferences inbound.PreferenceUseCase
	System      inbound.SystemUseCase
}

// Options tune NewUseCases. Zero values fall back to the wall clock and
// no-op metrics.
type Options struct {
	GracePeriod time.Duration
	Clock       clock.Clock
	Metrics     outbound.LifecycleMetrics
	Events      outbound.LifecycleEventPublisher
	Logger      logger.Logger
}

func NewUseCases(storage *Storage, opts Options) *UseCases {
	if opts.Clock == nil {
		opts.Clock = clock.WallClock
	}
	if opts.Metrics == nil {
		opts.Metrics = outbound.NoopLifecycleMetrics{}
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNopLogger()
	}

	posts := post.NewPostUseCase(storage.Posts, storage.Users, opts.Clock, opts.Logger)
	prefs := preference.NewPreferenceUseCase(storage.Preferences, storage.Users, opts.Clock, opts.Logger)

	users := user_lifecycle.NewUserLifecycleUseCase(user_lifecycle.Dependencies{
		Users:       storage.Users,
		Posts:       posts,
		Preferences: prefs,
		Transactor:  storage.Transactor,
		Clock:       opts.Clock,
		Metrics:     opts.Metrics,
		Events:      opts.Events,
		Logger:      opts.Logger,
		GracePeriod: opts.GracePeriod,
	})

	sys := system.NewSystemUseCase(storage.Health, map[string]system.Counter{
		"users":       storage.Users,
		"posts":       storage.Posts,
		"preferences": storage.Preferences,
	}, opts.Clock, opts.Logger)

	return &UseCases{
		Users:       users,
		Posts:       posts,
		Preferences: prefs,
		System:      sys,
	}
}
