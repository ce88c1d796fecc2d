package models

import "gorm.io/gorm"

// PermissionModule identifies a functional area grouping related
// actions, e.g. "blog" or "user". Name uniqueness among active rows is
// enforced by a partial unique index created during migration.
//
// Soft-deleting a module does not cascade to or block its permissions;
// the decision procedure resolves modules by name first, so checks
// against a deleted module fail at step one while its permission rows
// stay active for catalog history.
type PermissionModule struct {
	BaseModel

	Name      string         `gorm:"size:256;not null;index" json:"name"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Permissions []Permission `gorm:"foreignKey:ModuleID" json:"permissions,omitempty"`
}
