package config

import (
	"context"
	"fmt"
	"time"

	"github.com/yeremiapane/hotel-ops/database"
	"github.com/yeremiapane/hotel-ops/utils"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitStore connects the configured backend and prepares its schema.
func InitStore(ctx context.Context, cfg DatabaseConfig, debug bool) (database.Store, error) {
	switch cfg.Driver {
	case DriverMySQL, DriverSQLite:
		db, err := OpenGorm(cfg, debug)
		if err != nil {
			return nil, err
		}
		if err := database.AutoMigrate(db); err != nil {
			return nil, fmt.Errorf("failed to migrate: %w", err)
		}
		return database.NewGormStore(db), nil

	case DriverMongoDB:
		client, err := database.NewMongoClient(ctx, &database.MongoConfig{
			URI:      cfg.MongoURI,
			Database: cfg.MongoDatabase,
		})
		if err != nil {
			return nil, err
		}
		store := database.NewMongoStore(client, cfg.MongoDatabase)
		if err := store.EnsureIndexes(ctx); err != nil {
			_ = store.Close(ctx)
			return nil, fmt.Errorf("failed to create indexes: %w", err)
		}
		return store, nil
	}
	return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
}

// OpenGorm opens a MySQL or SQLite connection. Duplicate key and missing
// record errors are translated to gorm's sentinel errors.
func OpenGorm(cfg DatabaseConfig, debug bool) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case DriverMySQL:
		dialector = mysql.Open(cfg.DSN)
	case DriverSQLite:
		dialector = sqlite.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("driver %q is not a SQL driver", cfg.Driver)
	}

	logLevel := logger.Warn
	if debug {
		logLevel = logger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                                   logger.Default.LogMode(logLevel),
		TranslateError:                           true,
		DisableForeignKeyConstraintWhenMigrating: true,
		NowFunc:                                  func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.Driver == DriverMySQL {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	utils.InfoLogger.Printf("Connected to %s database", cfg.Driver)
	return db, nil
}
