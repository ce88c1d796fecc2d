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

// CatalogService manages the permission catalog: modules and the
// actions permitted within each. Static reference data, edited by
// administrators only.
type CatalogService struct {
	db *gorm.DB
}

// NewCatalogService constructs a CatalogService using the provided database handle.
func NewCatalogService(db *gorm.DB) (*CatalogService, error) {
	if db == nil {
		return nil, errors.New("catalog service: db is required")
	}
	return &CatalogService{db: db}, nil
}

var moduleSortable = map[string]string{
	"name":       "name",
	"created_at": "created_at",
}

var permissionSortable = map[string]string{
	"action":     "action",
	"created_at": "created_at",
}

// CreateModule registers a new functional area.
func (s *CatalogService) CreateModule(ctx context.Context, name string) (*models.PermissionModule, error) {
	ctx = ensureContext(ctx)

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidation("Module name is required")
	}

	var existing models.PermissionModule
	err := s.db.WithContext(ctx).First(&existing, "name = ?", name).Error
	switch {
	case err == nil:
		return nil, apperrors.NewConflict("Module name already exists")
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("catalog service: check module name: %w", err)
	}

	module := &models.PermissionModule{Name: name}
	if err := s.db.WithContext(ctx).Create(module).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.NewConflict("Module name already exists")
		}
		return nil, fmt.Errorf("catalog service: create module: %w", err)
	}

	return module, nil
}

// UpdateModule renames an existing active module.
func (s *CatalogService) UpdateModule(ctx context.Context, id, name string) (*models.PermissionModule, error) {
	ctx = ensureContext(ctx)

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidation("Module name is required")
	}

	var module models.PermissionModule
	if err := s.db.WithContext(ctx).First(&module, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("Module not found")
		}
		return nil, fmt.Errorf("catalog service: load module: %w", err)
	}

	var duplicate models.PermissionModule
	err := s.db.WithContext(ctx).
		First(&duplicate, "id <> ? AND name = ?", id, name).Error
	switch {
	case err == nil:
		return nil, apperrors.NewConflict("Module name already exists")
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("catalog service: check module name: %w", err)
	}

	if err := s.db.WithContext(ctx).Model(&module).Update("name", name).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.NewConflict("Module name already exists")
		}
		return nil, fmt.Errorf("catalog service: update module: %w", err)
	}

	return &module, nil
}

// GetModule loads one active module with its active permissions.
func (s *CatalogService) GetModule(ctx context.Context, id string) (*models.PermissionModule, error) {
	ctx = ensureContext(ctx)

	var module models.PermissionModule
	if err := s.db.WithContext(ctx).
		Preload("Permissions").
		First(&module, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("Module not found")
		}
		return nil, fmt.Errorf("catalog service: load module: %w", err)
	}
	return &module, nil
}

// ListModules returns active modules with their permissions, filtered by
// a substring search on the name.
func (s *CatalogService) ListModules(ctx context.Context, opts ListOptions) ([]models.PermissionModule, int64, error) {
	ctx = ensureContext(ctx)

	query := s.db.WithContext(ctx).Model(&models.PermissionModule{})
	if search := strings.TrimSpace(opts.Search); search != "" {
		query = query.Where("name LIKE ?", "%"+search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("catalog service: count modules: %w", err)
	}

	var modules []models.PermissionModule
	if err := applyOrder(query, opts.Order, moduleSortable).
		Offset(opts.offset()).
		Limit(opts.limit()).
		Preload("Permissions").
		Find(&modules).Error; err != nil {
		return nil, 0, fmt.Errorf("catalog service: list modules: %w", err)
	}

	return modules, total, nil
}

// DeleteModule soft-deletes a module. It fails with not-found when the
// module is missing or already soft-deleted.
//
// Deliberately no cascade: the module's permissions stay active so
// existing grants keep their referential history. Checks against the
// module still fail, because the decision procedure resolves the module
// by name among active rows first.
func (s *CatalogService) DeleteModule(ctx context.Context, id string) error {
	ctx = ensureContext(ctx)

	var module models.PermissionModule
	if err := s.db.WithContext(ctx).First(&module, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NewNotFound("Module not found")
		}
		return fmt.Errorf("catalog service: load module: %w", err)
	}

	if err := s.db.WithContext(ctx).Delete(&module).Error; err != nil {
		return fmt.Errorf("catalog service: delete module: %w", err)
	}
	return nil
}

// CreatePermission registers an action within an active module.
func (s *CatalogService) CreatePermission(ctx context.Context, action, moduleID string) (*models.Permission, error) {
	ctx = ensureContext(ctx)

	action = strings.TrimSpace(action)
	moduleID = strings.TrimSpace(moduleID)
	if action == "" || moduleID == "" {
		return nil, apperrors.NewValidation("Action and module_id are required")
	}

	if err := s.requireActiveModule(ctx, moduleID); err != nil {
		return nil, err
	}

	var existing models.Permission
	err := s.db.WithContext(ctx).
		First(&existing, "module_id = ? AND action = ?", moduleID, action).Error
	switch {
	case err == nil:
		return nil, apperrors.NewConflict("Permission action already exists for this module")
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("catalog service: check permission: %w", err)
	}

	permission := &models.Permission{Action: action, ModuleID: moduleID}
	if err := s.db.WithContext(ctx).Create(permission).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.NewConflict("Permission action already exists for this module")
		}
		return nil, fmt.Errorf("catalog service: create permission: %w", err)
	}

	return permission, nil
}

// UpdatePermission changes the action and/or owning module of an active
// permission, re-validating module existence and the duplicate-pair
// constraint while excluding the row being updated.
func (s *CatalogService) UpdatePermission(ctx context.Context, id, action, moduleID string) (*models.Permission, error) {
	ctx = ensureContext(ctx)

	action = strings.TrimSpace(action)
	moduleID = strings.TrimSpace(moduleID)
	if action == "" || moduleID == "" {
		return nil, apperrors.NewValidation("Action and module_id are required")
	}

	var permission models.Permission
	if err := s.db.WithContext(ctx).First(&permission, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("Permission not found")
		}
		return nil, fmt.Errorf("catalog service: load permission: %w", err)
	}

	if err := s.requireActiveModule(ctx, moduleID); err != nil {
		return nil, err
	}

	var duplicate models.Permission
	err := s.db.WithContext(ctx).
		First(&duplicate, "id <> ? AND module_id = ? AND action = ?", id, moduleID, action).Error
	switch {
	case err == nil:
		return nil, apperrors.NewConflict("Permission action already exists for this module")
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("catalog service: check permission: %w", err)
	}

	updates := map[string]any{"action": action, "module_id": moduleID}
	if err := s.db.WithContext(ctx).Model(&permission).Updates(updates).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.NewConflict("Permission action already exists for this module")
		}
		return nil, fmt.Errorf("catalog service: update permission: %w", err)
	}

	return &permission, nil
}

// GetPermission loads one active permission with its owning module.
func (s *CatalogService) GetPermission(ctx context.Context, id string) (*models.Permission, error) {
	ctx = ensureContext(ctx)

	var permission models.Permission
	if err := s.db.WithContext(ctx).
		Preload("Module").
		First(&permission, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("Permission not found")
		}
		return nil, fmt.Errorf("catalog service: load permission: %w", err)
	}
	return &permission, nil
}

// ListPermissions returns active permissions with their owning module,
// filtered by a substring search on the action.
func (s *CatalogService) ListPermissions(ctx context.Context, opts ListOptions) ([]models.Permission, int64, error) {
	ctx = ensureContext(ctx)

	query := s.db.WithContext(ctx).Model(&models.Permission{})
	if search := strings.TrimSpace(opts.Search); search != "" {
		query = query.Where("action LIKE ?", "%"+search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("catalog service: count permissions: %w", err)
	}

	var permissions []models.Permission
	if err := applyOrder(query, opts.Order, permissionSortable).
		Offset(opts.offset()).
		Limit(opts.limit()).
		Preload("Module").
		Find(&permissions).Error; err != nil {
		return nil, 0, fmt.Errorf("catalog service: list permissions: %w", err)
	}

	return permissions, total, nil
}

// DeletePermission soft-deletes a permission; not-found when missing or
// already soft-deleted. Grants referencing it are left in place, but the
// decision procedure stops resolving the action from that point on.
func (s *CatalogService) DeletePermission(ctx context.Context, id string) error {
	ctx = ensureContext(ctx)

	var permission models.Permission
	if err := s.db.WithContext(ctx).First(&permission, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NewNotFound("Permission not found")
		}
		return fmt.Errorf("catalog service: load permission: %w", err)
	}

	if err := s.db.WithContext(ctx).Delete(&permission).Error; err != nil {
		return fmt.Errorf("catalog service: delete permission: %w", err)
	}
	return nil
}

func (s *CatalogService) requireActiveModule(ctx context.Context, moduleID string) error {
	var module models.PermissionModule
	if err := s.db.WithContext(ctx).First(&module, "id = ?", moduleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NewNotFound("Permission module not found")
		}
		return fmt.Errorf("catalog service: load module: %w", err)
	}
	return nil
}
