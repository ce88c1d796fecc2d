package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/lunarcms/lunar/internal/models"
)

// AutoMigrate creates or updates the database schema for all models and
// installs the partial unique indexes that guard active-row uniqueness.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.PermissionModule{},
		&models.Permission{},
		&models.UserPermission{},
		&models.Category{},
		&models.Blog{},
		&models.SEOEntry{},
		&models.FormSubmission{},
	); err != nil {
		return err
	}

	return ensureActiveUniqueIndexes(db)
}

// ensureActiveUniqueIndexes creates unique indexes scoped to non-deleted
// rows. Duplicate detection in the services is check-then-act and racy
// on its own; these constraints are the authoritative arbiter, surfaced
// to callers as conflicts.
//
// MySQL has no partial indexes, so there the pre-checks are the only
// guard for soft-deletable catalog rows; the grant table's composite
// unique index holds on every driver because grants are hard-deleted.
func ensureActiveUniqueIndexes(db *gorm.DB) error {
	if db.Dialector.Name() == "mysql" {
		return nil
	}

	statements := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS uniq_active_module_name
			ON permission_modules (name) WHERE deleted_at IS NULL`,
		`CREATE UNIQUE INDEX IF NOT EXISTS uniq_active_permission_action
			ON permissions (module_id, action) WHERE deleted_at IS NULL`,
	}

	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create partial index: %w", err)
		}
	}
	return nil
}

// SeedData populates the default permission catalog: one module per
// managed area with the standard action set. Existing entries are left
// untouched.
func SeedData(db *gorm.DB) error {
	catalog := map[string][]string{
		"blog":     {"create", "view", "update", "delete"},
		"category": {"create", "view", "update", "delete"},
		"seo":      {"create", "view", "update", "delete"},
		"user":     {"view", "update", "delete"},
		"form":     {"view", "update", "delete"},
	}

	for name, actions := range catalog {
		var module models.PermissionModule
		if err := db.Where(models.PermissionModule{Name: name}).
			FirstOrCreate(&module).Error; err != nil {
			return err
		}

		for _, action := range actions {
			if err := db.Where(models.Permission{Action: action, ModuleID: module.ID}).
				FirstOrCreate(&models.Permission{}).Error; err != nil {
				return err
			}
		}
	}

	return nil
}
