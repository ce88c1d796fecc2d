package models

import (
	"time"

	"gorm.io/gorm"
)

// Blog is an authored post belonging to a category.
type Blog struct {
	BaseModel

	Title      string `gorm:"size:256;not null" json:"title"`
	Slug       string `gorm:"size:256;not null;index" json:"slug"`
	Content    string `gorm:"type:text;not null" json:"content"`
	AuthorID   string `gorm:"type:uuid;not null;index" json:"author_id"`
	CategoryID string `gorm:"type:uuid;not null;index" json:"category_id"`

	IsPublished bool       `gorm:"not null;default:false" json:"is_published"`
	IsFeatured  bool       `gorm:"not null;default:false" json:"is_featured"`
	PublishedAt *time.Time `json:"published_at"`
	CoverImage  string     `gorm:"type:text" json:"cover_image"`

	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Author   *User     `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}
