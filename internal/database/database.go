package database

import (
	"scrumboard-api/internal/logger"
	"scrumboard-api/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var DB *gorm.DB

// InitDB opens the SQLite database at path and runs migrations.
// Using glebarez/sqlite which is a pure Go implementation (no CGO required).
func InitDB(path string) {
	var err error

	// Foreign keys on so group deletion cascades to tasks at the store
	// level; the pragma in the DSN applies to every pooled connection.
	DB, err = gorm.Open(sqlite.Open(path+"?_pragma=foreign_keys(1)"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		logger.Fatal("failed to connect to database", err)
	}

	err = DB.AutoMigrate(
		&models.User{},
		&models.TaskGroup{},
		&models.Task{},
		&models.AuditLog{},
	)
	if err != nil {
		logger.Fatal("failed to migrate database", err)
	}

	logger.Info("database connected and migrated")
}

// GetDB returns the database connection
func GetDB() *gorm.DB {
	return DB
}
