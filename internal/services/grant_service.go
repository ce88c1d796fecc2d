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

// UserGrant is the denormalized view of one assignment, flattening the
// permission and its module so clients do not need follow-up lookups.
type UserGrant struct {
	ID           string `json:"id"`
	UserID       string `json:"user_id"`
	PermissionID string `json:"permission_id"`
	Action       string `json:"action"`
	ModuleID     string `json:"module_id"`
	ModuleName   string `json:"module_name"`
}

// GrantService manages user-permission assignments. Grants are
// hard-deleted on revocation; there is no grant history to keep.
type GrantService struct {
	db *gorm.DB
}

// NewGrantService constructs a GrantService using the provided database handle.
func NewGrantService(db *gorm.DB) (*GrantService, error) {
	if db == nil {
		return nil, errors.New("grant service: db is required")
	}
	return &GrantService{db: db}, nil
}

// Assign grants a permission to a user. The user and the permission must
// both be active, and the pair must not already exist.
func (s *GrantService) Assign(ctx context.Context, userID, permissionID string) (*models.UserPermission, error) {
	ctx = ensureContext(ctx)

	userID = strings.TrimSpace(userID)
	permissionID = strings.TrimSpace(permissionID)
	if userID == "" || permissionID == "" {
		return nil, apperrors.NewValidation("User ID and permission ID are required")
	}

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("User not found")
		}
		return nil, fmt.Errorf("grant service: load user: %w", err)
	}

	var permission models.Permission
	if err := s.db.WithContext(ctx).First(&permission, "id = ?", permissionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("Permission not found")
		}
		return nil, fmt.Errorf("grant service: load permission: %w", err)
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.UserPermission{}).
		Where("user_id = ? AND permission_id = ?", userID, permissionID).
		Count(&count).Error; err != nil {
		return nil, fmt.Errorf("grant service: check assignment: %w", err)
	}
	if count > 0 {
		return nil, apperrors.NewConflict("Permission already assigned to this user")
	}

	grant := &models.UserPermission{UserID: userID, PermissionID: permissionID}
	if err := s.db.WithContext(ctx).Create(grant).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.NewConflict("Permission already assigned to this user")
		}
		return nil, fmt.Errorf("grant service: create assignment: %w", err)
	}

	return grant, nil
}

// Revoke removes the assignment for a (user, permission) pair. The row
// is deleted outright.
func (s *GrantService) Revoke(ctx context.Context, userID, permissionID string) error {
	ctx = ensureContext(ctx)

	userID = strings.TrimSpace(userID)
	permissionID = strings.TrimSpace(permissionID)
	if userID == "" || permissionID == "" {
		return apperrors.NewValidation("User ID and permission ID are required")
	}

	var grant models.UserPermission
	if err := s.db.WithContext(ctx).
		First(&grant, "user_id = ? AND permission_id = ?", userID, permissionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NewNotFound("User permission not found")
		}
		return fmt.Errorf("grant service: load assignment: %w", err)
	}

	if err := s.db.WithContext(ctx).Delete(&grant).Error; err != nil {
		return fmt.Errorf("grant service: delete assignment: %w", err)
	}
	return nil
}

// ListForUser returns every assignment held by one user, flattened into
// the denormalized grant view. Grants whose permission or module has
// been soft-deleted are skipped: they no longer resolve to anything
// checkable.
func (s *GrantService) ListForUser(ctx context.Context, userID string) ([]UserGrant, error) {
	ctx = ensureContext(ctx)

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, apperrors.NewValidation("User ID is required")
	}

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("User not found")
		}
		return nil, fmt.Errorf("grant service: load user: %w", err)
	}

	var grants []models.UserPermission
	if err := s.db.WithContext(ctx).
		Preload("Permission.Module").
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&grants).Error; err != nil {
		return nil, fmt.Errorf("grant service: list assignments: %w", err)
	}

	return flattenGrants(grants), nil
}

// ListAll returns assignments across all users, paginated.
func (s *GrantService) ListAll(ctx context.Context, opts ListOptions) ([]UserGrant, int64, error) {
	ctx = ensureContext(ctx)

	var total int64
	if err := s.db.WithContext(ctx).Model(&models.UserPermission{}).
		Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("grant service: count assignments: %w", err)
	}

	var grants []models.UserPermission
	if err := s.db.WithContext(ctx).
		Preload("Permission.Module").
		Order("created_at ASC").
		Offset(opts.offset()).
		Limit(opts.limit()).
		Find(&grants).Error; err != nil {
		return nil, 0, fmt.Errorf("grant service: list assignments: %w", err)
	}

	return flattenGrants(grants), total, nil
}

func flattenGrants(grants []models.UserPermission) []UserGrant {
	out := make([]UserGrant, 0, len(grants))
	for _, grant := range grants {
		if grant.Permission == nil || grant.Permission.Module == nil {
			continue
		}
		out = append(out, UserGrant{
			ID:           grant.ID,
			UserID:       grant.UserID,
			PermissionID: grant.PermissionID,
			Action:       grant.Permission.Action,
			ModuleID:     grant.Permission.ModuleID,
			ModuleName:   grant.Permission.Module.Name,
		})
	}
	return out
}
