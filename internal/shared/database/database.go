package database

import (
	"context"
	"fmt"
	"time"

	"parkly/internal/shared/config"
	"parkly/pkg/cache"
	applog "parkly/pkg/logger"

	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
)

// DB holds database connections
type DB struct {
	SQL   *gorm.DB
	Redis *redis.Client
}

// InitDB opens the relational store, migrates it and connects Redis.
// Redis is optional: when it is disabled or unreachable the service runs without cache or rate limits.
func InitDB(cfg *config.Config) (*DB, error) {
	db, err := Open(cfg.Database, cfg.IsDevelopment())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s: %w", cfg.Database.Driver, err)
	}

	if cfg.Database.AutoMigrate {
		if err := Migrate(db); err != nil {
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		if err := MigrateConstraints(db); err != nil {
			return nil, fmt.Errorf("failed to add constraints: %w", err)
		}
	}

	var rdb *redis.Client
	if cfg.Redis.Enabled {
		rdb, err = initRedis(cfg)
		if err != nil {
			applog.Warn("redis unavailable, continuing without cache and rate limiting", "error", err)
			rdb = nil
		}
	}

	return &DB{
		SQL:   db,
		Redis: rdb,
	}, nil
}

func dialector(cfg config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case DriverPostgres, "":
		return postgres.Open(cfg.DSN), nil
	case DriverMySQL:
		return mysql.Open(cfg.DSN), nil
	case DriverSQLite:
		return sqlite.Open(cfg.DSN), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Driver)
	}
}

// Open connects GORM to the configured driver and sizes the pool.
func Open(cfg config.DatabaseConfig, verbose bool) (*gorm.DB, error) {
	dial, err := dialector(cfg)
	if err != nil {
		return nil, err
	}

	gormLogger := logger.Default.LogMode(logger.Silent)
	if verbose {
		gormLogger = logger.Default.LogMode(logger.Warn)
	}

	gormConfig := &gorm.Config{
		Logger: gormLogger,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
		PrepareStmt:                              cfg.Driver != DriverSQLite,
		TranslateError:                           true,
		DisableForeignKeyConstraintWhenMigrating: true,
	}

	db, err := gorm.Open(dial, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if cfg.Driver == DriverSQLite {
		// one connection: sqlite has no row locks, so writers queue on the pool
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	applog.Info("database connected", "driver", db.Dialector.Name())
	return db, nil
}

// initRedis initializes Redis connection
func initRedis(cfg *config.Config) (*redis.Client, error) {
	rdb, err := cache.Connect(context.Background(), cache.Config{
		Address:  cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return nil, err
	}

	applog.Info("redis connected", "addr", cfg.Redis.Addr)
	return rdb, nil
}

// Close closes all database connections
func (db *DB) Close() error {
	var errs []error

	if db.SQL != nil {
		if sqlDB, err := db.SQL.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				errs = append(errs, fmt.Errorf("failed to close database: %w", err))
			}
		}
	}

	if db.Redis != nil {
		if err := db.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close Redis: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors closing databases: %v", errs)
	}

	applog.Info("all database connections closed")
	return nil
}

// HealthCheck performs health checks on all database connections
func (db *DB) HealthCheck(ctx context.Context) error {
	if db.SQL != nil {
		sqlDB, err := db.SQL.DB()
		if err != nil {
			return fmt.Errorf("database health check failed: %w", err)
		}
		if err := sqlDB.PingContext(ctx); err != nil {
			return fmt.Errorf("database ping failed: %w", err)
		}
	}

	if db.Redis != nil {
		if err := db.Redis.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis ping failed: %w", err)
		}
	}

	return nil
}
