package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/abhicism/dailyplanner/internal/core/ports"
	"github.com/abhicism/dailyplanner/internal/core/service"
	"github.com/abhicism/dailyplanner/internal/infrastructure/config"
	mongostore "github.com/abhicism/dailyplanner/internal/infrastructure/db/mongo"
	redisstore "github.com/abhicism/dailyplanner/internal/infrastructure/db/redis"
	"github.com/abhicism/dailyplanner/internal/infrastructure/db/sqlstore"
	"github.com/abhicism/dailyplanner/internal/infrastructure/http/handlers"
)

// Backends holds the storage adapters selected by configuration plus the
// probes and shutdown hooks that belong to them.
type Backends struct {
	Users     ports.UserRepository
	Days      ports.DayEntryRepository
	Throttle  service.LoginThrottle
	Readiness map[string]handlers.PingFunc

	closers []func(context.Context) error
}

// OnClose registers fn to run when the backends are closed, in reverse order.
func (b *Backends) OnClose(fn func(context.Context) error) {
	b.closers = append(b.closers, fn)
}

func (b *Backends) Close(ctx context.Context) error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// OpenBackends connects the configured store, creates its schema and, when
// REDIS_ADDR is set, the login throttle.
func OpenBackends(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Backends, error) {
	b := &Backends{Readiness: make(map[string]handlers.PingFunc)}

	if err := b.openStore(ctx, cfg, log); err != nil {
		_ = b.Close(ctx)
		return nil, err
	}

	if cfg.Redis.Addr != "" {
		rdb, err := redisstore.Connect(ctx, redisstore.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			_ = b.Close(ctx)
			return nil, fmt.Errorf("redis: %w", err)
		}
		b.OnClose(func(context.Context) error { return rdb.Close() })
		b.Readiness["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
		b.Throttle = redisstore.NewLoginThrottle(rdb, cfg.Auth.LoginMaxAttempts, cfg.Auth.LoginLockout)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("login throttle enabled")
	} else {
		log.Warn().Msg("REDIS_ADDR not set, login throttle disabled")
	}

	return b, nil
}

func (b *Backends) openStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	switch cfg.Storage.Driver {
	case config.DriverSQLite, config.DriverPostgres:
		driver, dsn := sqlstore.DriverSQLite, cfg.Storage.SQLitePath
		if cfg.Storage.Driver == config.DriverPostgres {
			driver, dsn = sqlstore.DriverPostgres, cfg.Storage.DatabaseURL
		}

		db, err := sqlstore.Open(ctx, sqlstore.Config{Driver: driver, DSN: dsn})
		if err != nil {
			return err
		}
		b.OnClose(func(context.Context) error { return db.Close() })

		if err := sqlstore.Migrate(ctx, db, "up", log); err != nil {
			return err
		}

		b.Users = sqlstore.NewUserRepository(db)
		b.Days = sqlstore.NewDayEntryRepository(db)
		b.Readiness["database"] = db.PingContext

	case config.DriverMongo:
		client, db, err := mongostore.Connect(ctx, mongostore.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return err
		}
		b.OnClose(client.Disconnect)

		if err := mongostore.EnsureIndexes(ctx, db); err != nil {
			return err
		}

		b.Users = mongostore.NewUserRepository(db)
		b.Days = mongostore.NewDayEntryRepository(db)
		b.Readiness["database"] = func(ctx context.Context) error { return client.Ping(ctx, nil) }

	default:
		return fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}

	log.Info().Str("driver", cfg.Storage.Driver).Msg("storage ready")
	return nil
}
