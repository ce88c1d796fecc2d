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

// CreateCategoryInput carries the fields accepted when creating a category.
type CreateCategoryInput struct {
	Name     string  `json:"name" validate:"required"`
	Slug     string  `json:"slug"`
	ParentID *string `json:"parent_id"`
}

// UpdateCategoryInput carries partial category changes. Setting ParentID
// to an empty string detaches the category from its parent.
type UpdateCategoryInput struct {
	Name     *string `json:"name"`
	Slug     *string `json:"slug"`
	ParentID *string `json:"parent_id"`
}

// CategoryListOptions extends the common list options with category
// filters. Filter selects the searched column (name or slug).
type CategoryListOptions struct {
	ListOptions

	Filter     string
	RootOnly   bool
	ParentSlug string
}

// CategoryNode is one entry of the nested category tree.
type CategoryNode struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Slug     string         `json:"slug"`
	ParentID *string        `json:"parent_id"`
	Children []CategoryNode `json:"children"`
}

// CategoryService manages the category hierarchy.
type CategoryService struct {
	db *gorm.DB
}

// NewCategoryService constructs a CategoryService using the provided database handle.
func NewCategoryService(db *gorm.DB) (*CategoryService, error) {
	if db == nil {
		return nil, errors.New("category service: db is required")
	}
	return &CategoryService{db: db}, nil
}

var categorySortable = map[string]string{
	"name":       "name",
	"slug":       "slug",
	"created_at": "created_at",
}

// Create adds a category, optionally under an existing parent. A
// non-empty slug must be unique among active categories.
func (s *CategoryService) Create(ctx context.Context, input CreateCategoryInput) (*models.Category, error) {
	ctx = ensureContext(ctx)

	input.Name = strings.TrimSpace(input.Name)
	input.Slug = strings.TrimSpace(input.Slug)
	if input.Name == "" {
		return nil, apperrors.NewValidation("Please provide a name")
	}

	if input.Slug != "" {
		if err := s.requireUniqueSlug(ctx, input.Slug, ""); err != nil {
			return nil, err
		}
	}

	if input.ParentID != nil && *input.ParentID != "" {
		var parent models.Category
		if err := s.db.WithContext(ctx).First(&parent, "id = ?", *input.ParentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.NewNotFound("Parent category not found")
			}
			return nil, fmt.Errorf("category service: load parent: %w", err)
		}
	} else {
		input.ParentID = nil
	}

	category := &models.Category{
		Name:     input.Name,
		Slug:     input.Slug,
		ParentID: input.ParentID,
	}
	if err := s.db.WithContext(ctx).Create(category).Error; err != nil {
		return nil, fmt.Errorf("category service: create category: %w", err)
	}
	return category, nil
}

// List returns active categories with parent and children preloaded.
func (s *CategoryService) List(ctx context.Context, opts CategoryListOptions) ([]models.Category, int64, error) {
	ctx = ensureContext(ctx)

	query := s.db.WithContext(ctx).Model(&models.Category{})
	if search := strings.TrimSpace(opts.Search); search != "" {
		column := "name"
		if opts.Filter == "slug" {
			column = "slug"
		}
		query = query.Where(column+" LIKE ?", "%"+search+"%")
	}
	if opts.RootOnly {
		query = query.Where("parent_id IS NULL")
	}
	if opts.ParentSlug != "" {
		query = query.Where(
			"parent_id IN (?)",
			s.db.Model(&models.Category{}).Select("id").Where("slug = ?", opts.ParentSlug),
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("category service: count categories: %w", err)
	}

	var categories []models.Category
	if err := applyOrder(query, opts.Order, categorySortable).
		Offset(opts.offset()).
		Limit(opts.limit()).
		Preload("Parent").
		Preload("Children").
		Find(&categories).Error; err != nil {
		return nil, 0, fmt.Errorf("category service: list categories: %w", err)
	}

	return categories, total, nil
}

// Get loads one active category by ID with its parent.
func (s *CategoryService) Get(ctx context.Context, id string) (*models.Category, error) {
	return s.getByColumn(ctx, "id", id)
}

// GetBySlug loads one active category by slug with its parent.
func (s *CategoryService) GetBySlug(ctx context.Context, slug string) (*models.Category, error) {
	return s.getByColumn(ctx, "slug", slug)
}

func (s *CategoryService) getByColumn(ctx context.Context, column, value string) (*models.Category, error) {
	ctx = ensureContext(ctx)

	var category models.Category
	if err := s.db.WithContext(ctx).
		Preload("Parent").
		First(&category, column+" = ?", value).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("Category not found")
		}
		return nil, fmt.Errorf("category service: load category: %w", err)
	}
	return &category, nil
}

// Update applies partial changes, re-checking slug uniqueness and parent
// existence where relevant.
func (s *CategoryService) Update(ctx context.Context, id string, input UpdateCategoryInput) (*models.Category, error) {
	ctx = ensureContext(ctx)

	var category models.Category
	if err := s.db.WithContext(ctx).First(&category, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("Category not found")
		}
		return nil, fmt.Errorf("category service: load category: %w", err)
	}

	updates := map[string]any{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, apperrors.NewValidation("Please provide a name")
		}
		updates["name"] = name
	}
	if input.Slug != nil {
		slug := strings.TrimSpace(*input.Slug)
		if slug != "" && slug != category.Slug {
			if err := s.requireUniqueSlug(ctx, slug, category.ID); err != nil {
				return nil, err
			}
		}
		updates["slug"] = slug
	}
	if input.ParentID != nil {
		if *input.ParentID == "" {
			updates["parent_id"] = nil
		} else {
			if *input.ParentID == category.ID {
				return nil, apperrors.NewValidation("A category cannot be its own parent")
			}
			var parent models.Category
			if err := s.db.WithContext(ctx).First(&parent, "id = ?", *input.ParentID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, apperrors.NewNotFound("Parent category does not exist")
				}
				return nil, fmt.Errorf("category service: load parent: %w", err)
			}
			updates["parent_id"] = *input.ParentID
		}
	}

	if len(updates) == 0 {
		return &category, nil
	}

	if err := s.db.WithContext(ctx).Model(&category).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("category service: update category: %w", err)
	}
	return &category, nil
}

// Delete soft-deletes a category. Categories with active children must
// be emptied or reassigned first.
func (s *CategoryService) Delete(ctx context.Context, id string) error {
	ctx = ensureContext(ctx)

	var category models.Category
	if err := s.db.WithContext(ctx).First(&category, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NewNotFound("Category not found")
		}
		return fmt.Errorf("category service: load category: %w", err)
	}

	var childCount int64
	if err := s.db.WithContext(ctx).Model(&models.Category{}).
		Where("parent_id = ?", id).Count(&childCount).Error; err != nil {
		return fmt.Errorf("category service: count children: %w", err)
	}
	if childCount > 0 {
		return apperrors.NewValidation("Please delete or reassign child categories before deleting this one")
	}

	if err := s.db.WithContext(ctx).Delete(&category).Error; err != nil {
		return fmt.Errorf("category service: delete category: %w", err)
	}
	return nil
}

// Tree returns the full active hierarchy as nested nodes, built from a
// single query.
func (s *CategoryService) Tree(ctx context.Context) ([]CategoryNode, error) {
	ctx = ensureContext(ctx)

	var categories []models.Category
	if err := s.db.WithContext(ctx).
		Order("created_at ASC").
		Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("category service: load categories: %w", err)
	}

	byParent := make(map[string][]models.Category)
	for _, category := range categories {
		key := ""
		if category.ParentID != nil {
			key = *category.ParentID
		}
		byParent[key] = append(byParent[key], category)
	}

	var build func(parentKey string) []CategoryNode
	build = func(parentKey string) []CategoryNode {
		nodes := make([]CategoryNode, 0, len(byParent[parentKey]))
		for _, category := range byParent[parentKey] {
			nodes = append(nodes, CategoryNode{
				ID:       category.ID,
				Name:     category.Name,
				Slug:     category.Slug,
				ParentID: category.ParentID,
				Children: build(category.ID),
			})
		}
		return nodes
	}

	return build(""), nil
}

func (s *CategoryService) requireUniqueSlug(ctx context.Context, slug, excludeID string) error {
	query := s.db.WithContext(ctx).Model(&models.Category{}).Where("slug = ?", slug)
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return fmt.Errorf("category service: check slug: %w", err)
	}
	if count > 0 {
		return apperrors.NewConflict("Slug already exists")
	}
	return nil
}
