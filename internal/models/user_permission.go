package models

// UserPermission links one user to one permission. A grant is atomic:
// there is no update operation, and revoke removes the row outright, so
// the composite unique index spans every row in the table and acts as
// the final arbiter of "exactly one active grant" under concurrent
// assigns.
type UserPermission struct {
	BaseModel

	UserID       string `gorm:"type:uuid;not null;uniqueIndex:uniq_user_permission" json:"user_id"`
	PermissionID string `gorm:"type:uuid;not null;uniqueIndex:uniq_user_permission" json:"permission_id"`

	User       *User       `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Permission *Permission `gorm:"foreignKey:PermissionID" json:"permission,omitempty"`
}
