package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/lunarcms/lunar/internal/auth"
	"github.com/lunarcms/lunar/internal/models"
	"github.com/lunarcms/lunar/pkg/crypto"
	apperrors "github.com/lunarcms/lunar/pkg/errors"
	"github.com/lunarcms/lunar/pkg/metrics"
)

// RegisterInput carries the fields accepted when creating an account.
type RegisterInput struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
	PhoneNumber string `json:"phone_number"`
}

// ChangePasswordInput carries a password-change request. Identity comes
// from the verified token, not the body.
type ChangePasswordInput struct {
	Email       string `json:"email" validate:"required,email"`
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

// AuthService handles login, registration and password management.
type AuthService struct {
	db  *gorm.DB
	jwt *auth.JWTService
}

// NewAuthService constructs an AuthService from its dependencies.
func NewAuthService(db *gorm.DB, jwtService *auth.JWTService) (*AuthService, error) {
	if db == nil {
		return nil, errors.New("auth service: db is required")
	}
	if jwtService == nil {
		return nil, errors.New("auth service: jwt service is required")
	}
	return &AuthService{db: db, jwt: jwtService}, nil
}

// Login verifies credentials and issues an access token. Credential
// failures are domain soft-failures, not transport errors.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	ctx = ensureContext(ctx)

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return "", nil, apperrors.NewValidation("Please fill out all required fields")
	}

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			metrics.AuthAttempts.WithLabelValues("failure").Inc()
			return "", nil, apperrors.NewNotFound("Sorry, this account does not exist")
		}
		return "", nil, fmt.Errorf("auth service: load user: %w", err)
	}

	if !crypto.VerifyPassword(user.Password, password) {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		return "", nil, apperrors.NewValidation("Verify your account with valid credential")
	}

	token, err := s.jwt.GenerateAccessToken(auth.AccessTokenInput{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	})
	if err != nil {
		return "", nil, fmt.Errorf("auth service: issue token: %w", err)
	}

	metrics.AuthAttempts.WithLabelValues("success").Inc()
	return token, &user, nil
}

// Register creates a new account with a hashed password. The email is
// normalized to lower case and must not belong to an active account.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	return s.register(ctx, input, models.RoleUser, nil)
}

// RegisterStaff creates a staff account reporting to the given admin.
func (s *AuthService) RegisterStaff(ctx context.Context, adminID string, input RegisterInput) (*models.User, error) {
	adminID = strings.TrimSpace(adminID)
	if adminID == "" {
		return nil, apperrors.NewValidation("Admin ID is required")
	}
	return s.register(ctx, input, models.RoleUser, &adminID)
}

func (s *AuthService) register(ctx context.Context, input RegisterInput, role int, reportingTo *string) (*models.User, error) {
	ctx = ensureContext(ctx)

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || input.Password == "" {
		return nil, apperrors.NewValidation("Please fill out all required fields")
	}

	var existing models.User
	err := s.db.WithContext(ctx).First(&existing, "email = ?", email).Error
	switch {
	case err == nil:
		return nil, apperrors.NewConflict("This account is already associated")
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("auth service: check email: %w", err)
	}

	hashed, err := crypto.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth service: hash password: %w", err)
	}

	user := &models.User{
		FirstName:   strings.TrimSpace(input.FirstName),
		LastName:    strings.TrimSpace(input.LastName),
		Email:       email,
		Password:    hashed,
		PhoneNumber: input.PhoneNumber,
		Role:        role,
		IsActive:    true,
		ReportingTo: reportingTo,
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.NewConflict("This account is already associated")
		}
		return nil, fmt.Errorf("auth service: create user: %w", err)
	}

	return user, nil
}

// ChangePassword updates an account password. Admins reset any account
// without presenting the old password; everyone else must present and
// match it.
func (s *AuthService) ChangePassword(ctx context.Context, callerRole int, input ChangePasswordInput) error {
	ctx = ensureContext(ctx)

	isAdmin := callerRole == models.RoleAdmin
	if (input.OldPassword == "" || input.NewPassword == "") && !isAdmin {
		return apperrors.NewValidation("Both old and new passwords are required")
	}
	if input.NewPassword == "" {
		return apperrors.NewValidation("New password is required")
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NewNotFound("Account not found")
		}
		return fmt.Errorf("auth service: load user: %w", err)
	}

	if !isAdmin && !crypto.VerifyPassword(user.Password, input.OldPassword) {
		return apperrors.NewValidation("Old password is incorrect")
	}

	hashed, err := crypto.HashPassword(input.NewPassword)
	if err != nil {
		return fmt.Errorf("auth service: hash password: %w", err)
	}

	if err := s.db.WithContext(ctx).Model(&user).Update("password", hashed).Error; err != nil {
		return fmt.Errorf("auth service: update password: %w", err)
	}
	return nil
}

// Me returns the active account behind a verified token.
func (s *AuthService) Me(ctx context.Context, userID string) (*models.User, error) {
	ctx = ensureContext(ctx)

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("User not found")
		}
		return nil, fmt.Errorf("auth service: load user: %w", err)
	}
	return &user, nil
}
