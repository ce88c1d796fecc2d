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

// UserListOptions extends the common list options with user filters.
type UserListOptions struct {
	ListOptions

	Role        *int
	IsActive    *bool
	ReportingTo string
}

// UpdateUserInput carries the mutable user fields. Nil pointers mean
// "leave unchanged".
type UpdateUserInput struct {
	FirstName    *string `json:"first_name"`
	LastName     *string `json:"last_name"`
	Email        *string `json:"email" validate:"omitempty,email"`
	PhoneNumber  *string `json:"phone_number"`
	Role         *int    `json:"role"`
	IsActive     *bool   `json:"is_active"`
	ProfileImage *string `json:"profile_image"`
	ReportingTo  *string `json:"reporting_to"`
}

// UserService manages platform user accounts.
type UserService struct {
	db *gorm.DB
}

// NewUserService constructs a UserService using the provided database handle.
func NewUserService(db *gorm.DB) (*UserService, error) {
	if db == nil {
		return nil, errors.New("user service: db is required")
	}
	return &UserService{db: db}, nil
}

var userSortable = map[string]string{
	"first_name": "first_name",
	"last_name":  "last_name",
	"email":      "email",
	"role":       "role",
	"created_at": "created_at",
}

// List returns active users, searchable across name and email, with
// optional role / activity / manager filters.
func (s *UserService) List(ctx context.Context, opts UserListOptions) ([]models.User, int64, error) {
	ctx = ensureContext(ctx)

	query := s.db.WithContext(ctx).Model(&models.User{})
	if search := strings.TrimSpace(opts.Search); search != "" {
		pattern := "%" + search + "%"
		query = query.Where(
			"first_name LIKE ? OR last_name LIKE ? OR email LIKE ?",
			pattern, pattern, pattern,
		)
	}
	if opts.Role != nil {
		query = query.Where("role = ?", *opts.Role)
	}
	if opts.IsActive != nil {
		query = query.Where("is_active = ?", *opts.IsActive)
	}
	if opts.ReportingTo != "" {
		query = query.Where("reporting_to = ?", opts.ReportingTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("user service: count users: %w", err)
	}

	var users []models.User
	if err := applyOrder(query, opts.Order, userSortable).
		Offset(opts.offset()).
		Limit(opts.limit()).
		Preload("Reporting").
		Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("user service: list users: %w", err)
	}

	return users, total, nil
}

// Get loads one active user with their manager.
func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	ctx = ensureContext(ctx)

	var user models.User
	if err := s.db.WithContext(ctx).
		Preload("Reporting").
		First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("User not found")
		}
		return nil, fmt.Errorf("user service: load user: %w", err)
	}
	return &user, nil
}

// Update applies partial changes to an active user. A changed email is
// re-checked for uniqueness among active users, excluding this row.
func (s *UserService) Update(ctx context.Context, id string, input UpdateUserInput) (*models.User, error) {
	ctx = ensureContext(ctx)

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("User not found")
		}
		return nil, fmt.Errorf("user service: load user: %w", err)
	}

	updates := map[string]any{}
	if input.FirstName != nil {
		updates["first_name"] = strings.TrimSpace(*input.FirstName)
	}
	if input.LastName != nil {
		updates["last_name"] = strings.TrimSpace(*input.LastName)
	}
	if input.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*input.Email))
		if email == "" {
			return nil, apperrors.NewValidation("Email cannot be empty")
		}
		if email != user.Email {
			var duplicate models.User
			err := s.db.WithContext(ctx).
				First(&duplicate, "id <> ? AND email = ?", id, email).Error
			switch {
			case err == nil:
				return nil, apperrors.NewConflict("Sorry, email already exists")
			case !errors.Is(err, gorm.ErrRecordNotFound):
				return nil, fmt.Errorf("user service: check email: %w", err)
			}
		}
		updates["email"] = email
	}
	if input.PhoneNumber != nil {
		updates["phone_number"] = *input.PhoneNumber
	}
	if input.Role != nil {
		updates["role"] = *input.Role
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}
	if input.ProfileImage != nil {
		updates["profile_image"] = *input.ProfileImage
	}
	if input.ReportingTo != nil {
		updates["reporting_to"] = *input.ReportingTo
	}

	if len(updates) == 0 {
		return &user, nil
	}

	if err := s.db.WithContext(ctx).Model(&user).Updates(updates).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.NewConflict("Sorry, email already exists")
		}
		return nil, fmt.Errorf("user service: update user: %w", err)
	}

	return &user, nil
}

// Delete soft-deletes a user. The email stays reserved until the row is
// purged by the retention job.
func (s *UserService) Delete(ctx context.Context, id string) error {
	ctx = ensureContext(ctx)

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NewNotFound("User not found")
		}
		return fmt.Errorf("user service: load user: %w", err)
	}

	if err := s.db.WithContext(ctx).Delete(&user).Error; err != nil {
		return fmt.Errorf("user service: delete user: %w", err)
	}
	return nil
}
