package db

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"inkpost/internal/logs"
	"inkpost/internal/models"
)

var DB *gorm.DB

// Init connects to PostgreSQL and stores the handle in DB.
func Init(dsn, logLevel string) error {
	conn, err := Open(postgres.Open(dsn), logLevel)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	DB = conn
	logs.Info.Println("Database connection established")
	return nil
}

// Open opens a gorm handle over any dialector. Tests use it with SQLite.
func Open(dialector gorm.Dialector, logLevel string) (*gorm.DB, error) {
	conn, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(parseLogLevel(logLevel)),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// Migrate creates or updates every table the blog needs.
func Migrate(conn *gorm.DB) error {
	err := conn.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.PostImage{},
		&models.Comment{},
		&models.Reaction{},
	)
	if err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	logs.Info.Println("Database migration completed")
	return nil
}

// Close releases the underlying connection pool.
func Close() {
	if DB == nil {
		return
	}
	sqlDB, err := DB.DB()
	if err != nil {
		logs.Error.Printf("Error getting SQL DB from GORM: %v", err)
		return
	}
	if err := sqlDB.Close(); err != nil {
		logs.Error.Printf("Error closing database connection: %v", err)
		return
	}
	logs.Info.Println("Database connection closed")
}

func parseLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
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
