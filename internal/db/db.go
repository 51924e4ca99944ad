package db

import (
	"log"
	"time"

	"github.com/maichel1859-sys/ShivGorakkshaAshram-app-sub001/internal/config"
	"github.com/maichel1859-sys/ShivGorakkshaAshram-app-sub001/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func NewDB(cfg *config.Config) *gorm.DB {
	// TranslateError turns driver unique violations into
	// gorm.ErrDuplicatedKey, which the join path relies on.
	db, err := gorm.Open(postgres.Open(cfg.DBUrl), &gorm.Config{
		PrepareStmt:    true,
		TranslateError: true,
	})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("failed to get sql.DB: %v", err)
	}

	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := db.AutoMigrate(
		&models.User{},
		&models.Appointment{},
		&models.QueueEntry{},
		&models.ConsultationSession{},
		&models.Remedy{},
		&models.Notification{},
		&models.AuditLog{},
	); err != nil {
		log.Fatalf("failed to migrate: %v", err)
	}

	// Partial indexes are not expressible through struct tags. This one
	// enforces a single active entry per user across all instances.
	if err := db.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_queue_entries_active_user
		 ON queue_entries (user_id)
		 WHERE status IN ('waiting', 'in_progress')`,
	).Error; err != nil {
		log.Fatalf("failed to create active-user index: %v", err)
	}

	return db
}
