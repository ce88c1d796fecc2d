package models

import "gorm.io/gorm"

// Category is a hierarchical grouping for blogs and SEO entries. Root
// categories have a nil parent.
type Category struct {
	BaseModel

	Name     string  `gorm:"size:256;not null" json:"name"`
	Slug     string  `gorm:"size:256;index" json:"slug"`
	ParentID *string `gorm:"type:uuid;index" json:"parent_id"`

	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Parent   *Category  `gorm:"foreignKey:ParentID" json:"parent,omitempty"`
	Children []Category `gorm:"foreignKey:ParentID" json:"children,omitempty"`
}
