package models

import "gorm.io/gorm"

// SEOEntry stores page-level SEO metadata keyed by slug.
type SEOEntry struct {
	BaseModel

	Title string `gorm:"size:256;not null" json:"title"`
	Slug  string `gorm:"size:256;not null;index" json:"slug"`

	MetaTitle       string `gorm:"size:256" json:"meta_title"`
	MetaDescription string `gorm:"type:text" json:"meta_description"`
	MetaKeywords    string `gorm:"type:text" json:"meta_keywords"`
	CanonicalURL    string `gorm:"size:512" json:"canonical_url"`

	OGTitle       string `gorm:"size:256" json:"og_title"`
	OGDescription string `gorm:"type:text" json:"og_description"`
	OGImage       string `gorm:"size:512" json:"og_image"`
	OGType        string `gorm:"size:50;default:website" json:"og_type"`

	Robots              string `gorm:"size:50;default:'index, follow'" json:"robots"`
	CustomHeadScripts   string `gorm:"type:text" json:"custom_head_scripts"`
	CustomFooterScripts string `gorm:"type:text" json:"custom_footer_scripts"`
	GoogleCSEID         string `gorm:"size:128" json:"google_cseid"`

	AuthorID   string `gorm:"type:uuid;not null;index" json:"author_id"`
	CategoryID string `gorm:"type:uuid;not null;index" json:"category_id"`
	CoverImage string `gorm:"type:text" json:"cover_image"`

	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Author   *User     `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}
