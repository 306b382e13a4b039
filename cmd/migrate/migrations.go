package main

import (
	"gorm.io/gorm"

	"github.com/buildmarket/engine/internal/models"
)

// registerModels returns all models that need migration
func registerModels() []interface{} {
	return []interface{}{
		// Accounts
		&models.User{},
		&models.Contractor{},

		// Projects & workflow
		&models.Project{},
		&models.Stage{},
		&models.PaymentRecord{},
		&models.GCRequest{},

		// Async delivery
		&models.Notification{},
	}
}

// runMigrations executes all database migrations
func runMigrations(db *gorm.DB) error {
	models := registerModels()

	// Run AutoMigrate for all models
	if err := db.AutoMigrate(models...); err != nil {
		return err
	}

	// Run custom migrations
	return runCustomMigrations(db)
}

// runCustomMigrations handles schema changes AutoMigrate can't handle
func runCustomMigrations(db *gorm.DB) error {
	migrations := []func(*gorm.DB) error{
		enableUUIDExtension,
		addAcceptedRequestConstraint,
		addProjectIndexes,
	}

	for _, migration := range migrations {
		if err := migration(db); err != nil {
			return err
		}
	}

	return nil
}

// enableUUIDExtension ensures UUID generation is available
func enableUUIDExtension(db *gorm.DB) error {
	return db.Exec(`CREATE EXTENSION IF NOT EXISTS "pgcrypto"`).Error
}

// addAcceptedRequestConstraint ensures at most one accepted contractor
// request per project, enforced at the database level so concurrent
// accepts cannot both win.
func addAcceptedRequestConstraint(db *gorm.DB) error {
	return db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_gc_requests_one_accepted
		ON gc_requests(project_id)
		WHERE status = 'accepted' AND deleted_at IS NULL
	`).Error
}

// addProjectIndexes adds custom indexes for common lookups
func addProjectIndexes(db *gorm.DB) error {
	// Owner dashboards filter by status
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_projects_owner_status
		ON projects(owner_id, status)
		WHERE deleted_at IS NULL
	`).Error; err != nil {
		return err
	}

	// Contractor inboxes list pending requests
	return db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_gc_requests_contractor_status
		ON gc_requests(contractor_id, status)
		WHERE deleted_at IS NULL
	`).Error
}
