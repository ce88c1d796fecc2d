package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/lunarcms/lunar/internal/models"
	apperrors "github.com/lunarcms/lunar/pkg/errors"
)

// CreateSEOInput carries the fields accepted when creating an SEO entry.
type CreateSEOInput struct {
	Title      string `json:"title" validate:"required"`
	Slug       string `json:"slug" validate:"required"`
	CategoryID string `json:"category_id" validate:"required"`

	MetaTitle       string `json:"meta_title"`
	MetaDescription string `json:"meta_description"`
	MetaKeywords    string `json:"meta_keywords"`
	CanonicalURL    string `json:"canonical_url"`

	OGTitle       string `json:"og_title"`
	OGDescription string `json:"og_description"`
	OGImage       string `json:"og_image"`
	OGType        string `json:"og_type"`

	Robots              string `json:"robots"`
	CustomHeadScripts   string `json:"custom_head_scripts"`
	CustomFooterScripts string `json:"custom_footer_scripts"`
	GoogleCSEID         string `json:"google_cseid"`
	CoverImage          string `json:"cover_image"`
}

// UpdateSEOInput carries partial SEO entry changes.
type UpdateSEOInput struct {
	Title      *string `json:"title"`
	Slug       *string `json:"slug"`
	CategoryID *string `json:"category_id"`

	MetaTitle       *string `json:"meta_title"`
	MetaDescription *string `json:"meta_description"`
	MetaKeywords    *string `json:"meta_keywords"`
	CanonicalURL    *string `json:"canonical_url"`

	OGTitle       *string `json:"og_title"`
	OGDescription *string `json:"og_description"`
	OGImage       *string `json:"og_image"`
	OGType        *string `json:"og_type"`

	Robots              *string `json:"robots"`
	CustomHeadScripts   *string `json:"custom_head_scripts"`
	CustomFooterScripts *string `json:"custom_footer_scripts"`
	GoogleCSEID         *string `json:"google_cseid"`
	CoverImage          *string `json:"cover_image"`
}

// SEOService manages page-level SEO metadata. Entries are addressed by
// slug throughout, mirroring how pages reference them.
type SEOService struct {
	db *gorm.DB
}

// NewSEOService constructs an SEOService using the provided database handle.
func NewSEOService(db *gorm.DB) (*SEOService, error) {
	if db == nil {
		return nil, errors.New("seo service: db is required")
	}
	return &SEOService{db: db}, nil
}

// Create adds an SEO entry owned by the authenticated author.
func (s *SEOService) Create(ctx context.Context, authorID string, input CreateSEOInput) (*models.SEOEntry, error) {
	ctx = ensureContext(ctx)

	input.Title = strings.TrimSpace(input.Title)
	input.Slug = strings.TrimSpace(input.Slug)
	if input.Title == "" || input.Slug == "" || input.CategoryID == "" {
		return nil, apperrors.NewValidation("Please fill all required fields")
	}

	var author models.User
	if err := s.db.WithContext(ctx).First(&author, "id = ?", authorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("Author not found")
		}
		return nil, fmt.Errorf("seo service: load author: %w", err)
	}

	var category models.Category
	if err := s.db.WithContext(ctx).First(&category, "id = ?", input.CategoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("Category not found")
		}
		return nil, fmt.Errorf("seo service: load category: %w", err)
	}

	if err := s.requireUniqueSlug(ctx, input.Slug, ""); err != nil {
		return nil, err
	}

	entry := &models.SEOEntry{
		Title:               input.Title,
		Slug:                input.Slug,
		CategoryID:          input.CategoryID,
		AuthorID:            authorID,
		MetaTitle:           input.MetaTitle,
		MetaDescription:     input.MetaDescription,
		MetaKeywords:        input.MetaKeywords,
		CanonicalURL:        input.CanonicalURL,
		OGTitle:             input.OGTitle,
		OGDescription:       input.OGDescription,
		OGImage:             input.OGImage,
		CustomHeadScripts:   input.CustomHeadScripts,
		CustomFooterScripts: input.CustomFooterScripts,
		GoogleCSEID:         input.GoogleCSEID,
		CoverImage:          input.CoverImage,
	}
	if input.OGType != "" {
		entry.OGType = input.OGType
	}
	if input.Robots != "" {
		entry.Robots = input.Robots
	}

	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, fmt.Errorf("seo service: create entry: %w", err)
	}
	return entry, nil
}

// List returns every active entry with author and category.
func (s *SEOService) List(ctx context.Context) ([]models.SEOEntry, error) {
	ctx = ensureContext(ctx)

	var entries []models.SEOEntry
	if err := s.db.WithContext(ctx).
		Preload("Author").
		Preload("Category").
		Order("created_at ASC").
		Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("seo service: list entries: %w", err)
	}
	return entries, nil
}

// GetBySlug loads one active entry by slug.
func (s *SEOService) GetBySlug(ctx context.Context, slug string) (*models.SEOEntry, error) {
	ctx = ensureContext(ctx)

	var entry models.SEOEntry
	if err := s.db.WithContext(ctx).
		Preload("Author").
		Preload("Category").
		First(&entry, "slug = ?", slug).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("SEO entry not found")
		}
		return nil, fmt.Errorf("seo service: load entry: %w", err)
	}
	return &entry, nil
}

// GetByCategoryName loads the first active entry whose category name
// matches case-insensitively.
func (s *SEOService) GetByCategoryName(ctx context.Context, name string) (*models.SEOEntry, error) {
	ctx = ensureContext(ctx)

	var entry models.SEOEntry
	err := s.db.WithContext(ctx).
		Preload("Author").
		Preload("Category").
		Where(
			"category_id IN (?)",
			s.db.Model(&models.Category{}).Select("id").Where("LOWER(name) = ?", strings.ToLower(name)),
		).
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("No SEO entries found for this category")
		}
		return nil, fmt.Errorf("seo service: load entry: %w", err)
	}
	return &entry, nil
}

// Update applies partial changes to the entry addressed by slug.
func (s *SEOService) Update(ctx context.Context, slug string, input UpdateSEOInput) (*models.SEOEntry, error) {
	ctx = ensureContext(ctx)

	var entry models.SEOEntry
	if err := s.db.WithContext(ctx).First(&entry, "slug = ?", slug).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("SEO entry not found")
		}
		return nil, fmt.Errorf("seo service: load entry: %w", err)
	}

	updates := map[string]any{}
	if input.Slug != nil {
		newSlug := strings.TrimSpace(*input.Slug)
		if newSlug == "" {
			return nil, apperrors.NewValidation("Slug cannot be empty")
		}
		if newSlug != entry.Slug {
			if err := s.requireUniqueSlug(ctx, newSlug, entry.ID); err != nil {
				return nil, err
			}
		}
		updates["slug"] = newSlug
	}
	if input.CategoryID != nil {
		var category models.Category
		if err := s.db.WithContext(ctx).First(&category, "id = ?", *input.CategoryID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.NewNotFound("Category not found")
			}
			return nil, fmt.Errorf("seo service: load category: %w", err)
		}
		updates["category_id"] = *input.CategoryID
	}

	setIfPresent := func(column string, value *string) {
		if value != nil {
			updates[column] = *value
		}
	}
	setIfPresent("title", input.Title)
	setIfPresent("meta_title", input.MetaTitle)
	setIfPresent("meta_description", input.MetaDescription)
	setIfPresent("meta_keywords", input.MetaKeywords)
	setIfPresent("canonical_url", input.CanonicalURL)
	setIfPresent("og_title", input.OGTitle)
	setIfPresent("og_description", input.OGDescription)
	setIfPresent("og_image", input.OGImage)
	setIfPresent("og_type", input.OGType)
	setIfPresent("robots", input.Robots)
	setIfPresent("custom_head_scripts", input.CustomHeadScripts)
	setIfPresent("custom_footer_scripts", input.CustomFooterScripts)
	setIfPresent("google_cse_id", input.GoogleCSEID)
	setIfPresent("cover_image", input.CoverImage)

	if len(updates) == 0 {
		return &entry, nil
	}

	if err := s.db.WithContext(ctx).Model(&entry).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("seo service: update entry: %w", err)
	}
	return &entry, nil
}

// Delete soft-deletes the entry addressed by slug.
func (s *SEOService) Delete(ctx context.Context, slug string) error {
	ctx = ensureContext(ctx)

	var entry models.SEOEntry
	if err := s.db.WithContext(ctx).First(&entry, "slug = ?", slug).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NewNotFound("SEO entry not found")
		}
		return fmt.Errorf("seo service: load entry: %w", err)
	}

	if err := s.db.WithContext(ctx).Delete(&entry).Error; err != nil {
		return fmt.Errorf("seo service: delete entry: %w", err)
	}
	return nil
}

func (s *SEOService) requireUniqueSlug(ctx context.Context, slug, excludeID string) error {
	query := s.db.WithContext(ctx).Model(&models.SEOEntry{}).Where("slug = ?", slug)
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return fmt.Errorf("seo service: check slug: %w", err)
	}
	if count > 0 {
		return apperrors.NewConflict("Slug already exists")
	}
	return nil
}
