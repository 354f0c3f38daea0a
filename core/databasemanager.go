package core

import (
	"context"
	"fmt"
	"time"

	"crmdesk.com/crmdesk/core/models"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type LogLevel int

const (
	LogLevelSilent LogLevel = iota + 1
	LogLevelError
	LogLevelWarn
	LogLevelInfo
)

// DatabaseManager owns the single connection pool for the process. It is
// built once in main and injected into every component that needs the
// database; nothing reaches for it through a global.
type DatabaseManager struct {
	db *gorm.DB
}

// NewDatabaseManager opens the pool against the full DSN, schema included.
// Driver errors are translated so unique-constraint violations surface as
// gorm.ErrDuplicatedKey.
func NewDatabaseManager(dsn string, maxConnection int, level LogLevel) (*DatabaseManager, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(gormLogLevel(level)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open gorm: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get pool: %w", err)
	}

	sqlDB.SetMaxOpenConns(maxConnection)
	sqlDB.SetMaxIdleConns(maxConnection)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, &UnavailableError{Dependency: "database", Err: err}
	}

	return &DatabaseManager{db: db}, nil
}

// NewFromDB wraps an already-open gorm handle. Tests use this with an
// in-memory sqlite database.
func NewFromDB(db *gorm.DB) *DatabaseManager {
	return &DatabaseManager{db: db}
}

func gormLogLevel(level LogLevel) logger.LogLevel {
	switch level {
	case LogLevelError:
		return logger.Error
	case LogLevelWarn:
		return logger.Warn
	case LogLevelInfo:
		return logger.Info
	default:
		return logger.Silent
	}
}

// DB returns the handle bound to the request context. An in-flight
// transaction still commits or rolls back cleanly if the client disconnects.
func (dm *DatabaseManager) DB(ctx context.Context) *gorm.DB {
	return dm.db.WithContext(ctx)
}

func (dm *DatabaseManager) Exec(ctx context.Context, fn func(db *gorm.DB) error) error {
	return fn(dm.DB(ctx))
}

func (dm *DatabaseManager) Close() error {
	sqlDB, err := dm.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// AutoMigrate creates or updates the five CRM tables with their foreign
// keys, cascade rules and unique indexes.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Customer{},
		&models.FollowUpRecord{},
		&models.Attachment{},
		&models.NextStepPlan{},
	)
}

func (dm *DatabaseManager) Migrate(ctx context.Context) error {
	return AutoMigrate(dm.DB(ctx))
}
