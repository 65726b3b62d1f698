package dbtest

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"inkpost/internal/db"
	"inkpost/internal/models"
)

// Open swaps db.DB for a migrated in-memory SQLite database with foreign
// keys enforced, restoring the previous handle when the test ends.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	conn, err := db.Open(sqlite.Open("file::memory:?_foreign_keys=on"), "silent")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// a single connection keeps the in-memory database alive between queries
	sqlDB.SetMaxOpenConns(1)
	if err := conn.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}
	if err := db.Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	previous := db.DB
	db.DB = conn
	t.Cleanup(func() {
		db.DB = previous
		sqlDB.Close()
	})
	return conn
}

// CreateUser inserts a user with an unusable password.
func CreateUser(t testing.TB, username string) *models.User {
	t.Helper()
	user := &models.User{Username: username, Password: "!"}
	if err := db.DB.Create(user).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return user
}
