package models

import "gorm.io/gorm"

// Permission represents one allowed action inside a module. The
// (module_id, action) pair is unique among active rows via a partial
// unique index; the module reference is validated at create/update
// time, not structurally.
type Permission struct {
	BaseModel

	Action    string         `gorm:"size:256;not null" json:"action"`
	ModuleID  string         `gorm:"type:uuid;not null;index" json:"module_id"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Module *PermissionModule `gorm:"foreignKey:ModuleID" json:"module,omitempty"`
}
