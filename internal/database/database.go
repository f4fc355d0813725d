package database

import (
	"fmt"
	"log/slog"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/bookshelf/internal/entities"
)

type Database struct {
	DB *gorm.DB
}

type options struct {
	logLevel logger.LogLevel
}

// Option customises how NewDatabase opens the connection.
type Option func(*options)

// WithLogLevel sets the SQL logger level: silent, error, warn or info.
func WithLogLevel(level string) Option {
	return func(o *options) {
		o.logLevel = ParseLogLevel(level)
	}
}

// ParseLogLevel maps a configuration value to a gorm logger level, falling
// back to warn.
func ParseLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}

func NewDatabase(dbPath string, opts ...Option) (*Database, error) {
	o := options{logLevel: logger.Warn}
	for _, opt := range opts {
		opt(&o)
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger:         logger.Default.LogMode(o.logLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	err = db.AutoMigrate(
		&entities.Book{},
		&entities.Category{},
		&entities.SyncProgress{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	database := &Database{DB: db}

	if err := database.seedCategories(); err != nil {
		return nil, fmt.Errorf("failed to seed categories: %w", err)
	}

	slog.Info("database initialized", "path", dbPath)

	return database, nil
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping checks the underlying connection.
func (d *Database) Ping() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// seedCategories inserts the default vocabulary, leaving existing rows alone.
func (d *Database) seedCategories() error {
	for _, name := range entities.DefaultCategories {
		var existing entities.Category
		result := d.DB.Where("name = ?", name).Limit(1).Find(&existing)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected > 0 {
			continue
		}
		if err := d.DB.Create(&entities.Category{Name: name}).Error; err != nil {
			return fmt.Errorf("failed to create category %s: %w", name, err)
		}
		slog.Debug("created category", "name", name)
	}
	return nil
}
