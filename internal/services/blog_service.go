package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/lunarcms/lunar/internal/models"
	apperrors "github.com/lunarcms/lunar/pkg/errors"
)

// CreateBlogInput carries the fields accepted when authoring a post.
// The author comes from the verified token, never from the body.
type CreateBlogInput struct {
	Title       string `json:"title" validate:"required"`
	Slug        string `json:"slug" validate:"required"`
	Content     string `json:"content" validate:"required"`
	CategoryID  string `json:"category_id" validate:"required"`
	IsPublished bool   `json:"is_published"`
	IsFeatured  bool   `json:"is_featured"`
	CoverImage  string `json:"cover_image"`
}

// UpdateBlogInput carries partial blog changes.
type UpdateBlogInput struct {
	Title       *string `json:"title"`
	Slug        *string `json:"slug"`
	Content     *string `json:"content"`
	CategoryID  *string `json:"category_id"`
	IsPublished *bool   `json:"is_published"`
	IsFeatured  *bool   `json:"is_featured"`
	CoverImage  *string `json:"cover_image"`
}

// BlogListOptions extends the common list options with a search target.
// Filter selects the searched column (title or slug, default title).
type BlogListOptions struct {
	ListOptions

	Filter string
}

// BlogService manages blog posts.
type BlogService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewBlogService constructs a BlogService using the provided database handle.
func NewBlogService(db *gorm.DB) (*BlogService, error) {
	if db == nil {
		return nil, errors.New("blog service: db is required")
	}
	return &BlogService{db: db, now: time.Now}, nil
}

var blogSortable = map[string]string{
	"title":        "title",
	"slug":         "slug",
	"published_at": "published_at",
	"created_at":   "created_at",
}

// Create authors a new post. The author and category must both be
// active, and the slug unique among active posts. Publishing at
// creation stamps the publication time.
func (s *BlogService) Create(ctx context.Context, authorID string, input CreateBlogInput) (*models.Blog, error) {
	ctx = ensureContext(ctx)

	input.Title = strings.TrimSpace(input.Title)
	input.Slug = strings.TrimSpace(input.Slug)
	if input.Title == "" || input.Slug == "" || input.Content == "" || input.CategoryID == "" {
		return nil, apperrors.NewValidation("Please fill all required fields")
	}

	var author models.User
	if err := s.db.WithContext(ctx).First(&author, "id = ?", authorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("Sorry, this account does not exist")
		}
		return nil, fmt.Errorf("blog service: load author: %w", err)
	}

	var category models.Category
	if err := s.db.WithContext(ctx).First(&category, "id = ?", input.CategoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("Sorry, this category does not exist")
		}
		return nil, fmt.Errorf("blog service: load category: %w", err)
	}

	if err := s.requireUniqueSlug(ctx, input.Slug, ""); err != nil {
		return nil, err
	}

	blog := &models.Blog{
		Title:       input.Title,
		Slug:        input.Slug,
		Content:     input.Content,
		AuthorID:    authorID,
		CategoryID:  input.CategoryID,
		IsPublished: input.IsPublished,
		IsFeatured:  input.IsFeatured,
		CoverImage:  input.CoverImage,
	}
	if input.IsPublished {
		now := s.now()
		blog.PublishedAt = &now
	}

	if err := s.db.WithContext(ctx).Create(blog).Error; err != nil {
		return nil, fmt.Errorf("blog service: create blog: %w", err)
	}
	return blog, nil
}

// List returns active posts with their category (and its parent).
func (s *BlogService) List(ctx context.Context, opts BlogListOptions) ([]models.Blog, int64, error) {
	ctx = ensureContext(ctx)

	query := s.db.WithContext(ctx).Model(&models.Blog{})
	if search := strings.TrimSpace(opts.Search); search != "" {
		column := "title"
		if opts.Filter == "slug" {
			column = "slug"
		}
		query = query.Where(column+" LIKE ?", "%"+search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("blog service: count blogs: %w", err)
	}

	var blogs []models.Blog
	if err := applyOrder(query, opts.Order, blogSortable).
		Offset(opts.offset()).
		Limit(opts.limit()).
		Preload("Category.Parent").
		Find(&blogs).Error; err != nil {
		return nil, 0, fmt.Errorf("blog service: list blogs: %w", err)
	}

	return blogs, total, nil
}

// Get loads one active post by ID.
func (s *BlogService) Get(ctx context.Context, id string) (*models.Blog, error) {
	return s.getByColumn(ctx, "id", id)
}

// GetBySlug loads one active post by slug.
func (s *BlogService) GetBySlug(ctx context.Context, slug string) (*models.Blog, error) {
	return s.getByColumn(ctx, "slug", slug)
}

func (s *BlogService) getByColumn(ctx context.Context, column, value string) (*models.Blog, error) {
	ctx = ensureContext(ctx)

	var blog models.Blog
	if err := s.db.WithContext(ctx).
		Preload("Category.Parent").
		First(&blog, column+" = ?", value).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("Blog not found")
		}
		return nil, fmt.Errorf("blog service: load blog: %w", err)
	}
	return &blog, nil
}

// Update applies partial changes. First publication stamps the
// publication time; re-publishing keeps the original stamp.
func (s *BlogService) Update(ctx context.Context, id string, input UpdateBlogInput) (*models.Blog, error) {
	ctx = ensureContext(ctx)

	var blog models.Blog
	if err := s.db.WithContext(ctx).First(&blog, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("Blog not found")
		}
		return nil, fmt.Errorf("blog service: load blog: %w", err)
	}

	updates := map[string]any{}
	if input.Title != nil {
		updates["title"] = strings.TrimSpace(*input.Title)
	}
	if input.Slug != nil {
		slug := strings.TrimSpace(*input.Slug)
		if slug == "" {
			return nil, apperrors.NewValidation("Slug cannot be empty")
		}
		if slug != blog.Slug {
			if err := s.requireUniqueSlug(ctx, slug, blog.ID); err != nil {
				return nil, err
			}
		}
		updates["slug"] = slug
	}
	if input.Content != nil {
		updates["content"] = *input.Content
	}
	if input.CategoryID != nil {
		var category models.Category
		if err := s.db.WithContext(ctx).First(&category, "id = ?", *input.CategoryID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.NewNotFound("Sorry, this category does not exist")
			}
			return nil, fmt.Errorf("blog service: load category: %w", err)
		}
		updates["category_id"] = *input.CategoryID
	}
	if input.IsPublished != nil {
		updates["is_published"] = *input.IsPublished
		if *input.IsPublished && !blog.IsPublished {
			updates["published_at"] = s.now()
		}
	}
	if input.IsFeatured != nil {
		updates["is_featured"] = *input.IsFeatured
	}
	if input.CoverImage != nil {
		updates["cover_image"] = *input.CoverImage
	}

	if len(updates) == 0 {
		return &blog, nil
	}

	if err := s.db.WithContext(ctx).Model(&blog).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("blog service: update blog: %w", err)
	}
	return &blog, nil
}

// Delete soft-deletes a post. Published posts must be unpublished first.
func (s *BlogService) Delete(ctx context.Context, id string) error {
	ctx = ensureContext(ctx)

	var blog models.Blog
	if err := s.db.WithContext(ctx).First(&blog, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NewNotFound("Blog not found")
		}
		return fmt.Errorf("blog service: load blog: %w", err)
	}

	if blog.IsPublished {
		return apperrors.NewValidation("Please unpublish the blog before deleting it")
	}

	if err := s.db.WithContext(ctx).Delete(&blog).Error; err != nil {
		return fmt.Errorf("blog service: delete blog: %w", err)
	}
	return nil
}

func (s *BlogService) requireUniqueSlug(ctx context.Context, slug, excludeID string) error {
	query := s.db.WithContext(ctx).Model(&models.Blog{}).Where("slug = ?", slug)
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return fmt.Errorf("blog service: check slug: %w", err)
	}
	if count > 0 {
		return apperrors.NewConflict("Sorry, slug already exists")
	}
	return nil
}
