package models

import "gorm.io/gorm"

// Role values. RoleAdmin is the reserved sentinel that bypasses every
// permission check.
const (
	RoleUser  = 0
	RoleAdmin = 1
)

// User describes a platform user. Permissions are granted individually
// through UserPermission rows; an admin role short-circuits all checks.
type User struct {
	BaseModel

	FirstName   string `gorm:"size:64" json:"first_name"`
	LastName    string `gorm:"size:64" json:"last_name"`
	Email       string `gorm:"size:128;uniqueIndex;not null" json:"email"`
	Password    string `gorm:"not null" json:"-"`
	PhoneNumber string `gorm:"size:128" json:"phone_number"`

	Role int `gorm:"not null;default:0" json:"role"`

	// No column default: gorm would drop a zero-value false on insert
	// and the row would come back active. Create paths set the flag
	// explicitly.
	IsActive bool `gorm:"not null" json:"is_active"`

	ProfileImage string  `gorm:"type:text" json:"profile_image"`
	ReportingTo  *string `gorm:"type:uuid" json:"reporting_to"`

	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Reporting *User `gorm:"foreignKey:ReportingTo" json:"reporting,omitempty"`
}

// IsAdmin reports whether the user carries the admin sentinel role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
