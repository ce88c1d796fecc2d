package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lunarcms/lunar/internal/auth"
	"github.com/lunarcms/lunar/internal/database/testutil"
	"github.com/lunarcms/lunar/internal/models"
	apperrors "github.com/lunarcms/lunar/pkg/errors"
)

func setupAuth(t *testing.T) *AuthService {
	t.Helper()

	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	jwtService, err := auth.NewJWTService(auth.JWTConfig{Secret: "test-secret", Issuer: "lunar-test"})
	require.NoError(t, err)
	svc, err := NewAuthService(db, jwtService)
	require.NoError(t, err)
	return svc
}

func TestAuthServiceRegisterAndLogin(t *testing.T) {
	svc := setupAuth(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterInput{
		FirstName: "Jordan",
		LastName:  "Lee",
		Email:     "Jordan@Example.com",
		Password:  "swordfish-42",
	})
	require.NoError(t, err)
	require.Equal(t, "jordan@example.com", user.Email)
	require.NotEqual(t, "swordfish-42", user.Password)
	require.True(t, user.IsActive)
	require.Equal(t, models.RoleUser, user.Role)

	token, logged, err := svc.Login(ctx, "jordan@example.com", "swordfish-42")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.Equal(t, user.ID, logged.ID)

	// Email lookup is case-insensitive via normalization.
	_, _, err = svc.Login(ctx, "JORDAN@example.com ", "swordfish-42")
	require.NoError(t, err)
}

func TestAuthServiceLoginFailures(t *testing.T) {
	svc := setupAuth(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Email: "a@example.com", Password: "swordfish-42"})
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "", "swordfish-42")
	requireKind(t, err, apperrors.KindValidation)

	_, _, err = svc.Login(ctx, "nobody@example.com", "swordfish-42")
	requireKind(t, err, apperrors.KindNotFound)

	_, _, err = svc.Login(ctx, "a@example.com", "wrong-password")
	requireKind(t, err, apperrors.KindValidation)
}

func TestAuthServiceRegisterDuplicateEmail(t *testing.T) {
	svc := setupAuth(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Email: "a@example.com", Password: "swordfish-42"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterInput{Email: "A@Example.com", Password: "other-password"})
	requireKind(t, err, apperrors.KindConflict)
}

func TestAuthServiceRegisterStaff(t *testing.T) {
	svc := setupAuth(t)
	ctx := context.Background()

	admin, err := svc.Register(ctx, RegisterInput{Email: "admin@example.com", Password: "swordfish-42"})
	require.NoError(t, err)

	staff, err := svc.RegisterStaff(ctx, admin.ID, RegisterInput{
		Email:    "staff@example.com",
		Password: "swordfish-42",
	})
	require.NoError(t, err)
	require.Equal(t, models.RoleUser, staff.Role)
	require.NotNil(t, staff.ReportingTo)
	require.Equal(t, admin.ID, *staff.ReportingTo)
}

func TestAuthServiceChangePassword(t *testing.T) {
	svc := setupAuth(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Email: "a@example.com", Password: "old-password-1"})
	require.NoError(t, err)

	err = svc.ChangePassword(ctx, models.RoleUser, ChangePasswordInput{
		Email:       "a@example.com",
		OldPassword: "wrong",
		NewPassword: "new-password-1",
	})
	requireKind(t, err, apperrors.KindValidation)

	err = svc.ChangePassword(ctx, models.RoleUser, ChangePasswordInput{
		Email:       "a@example.com",
		NewPassword: "new-password-1",
	})
	requireKind(t, err, apperrors.KindValidation)

	err = svc.ChangePassword(ctx, models.RoleUser, ChangePasswordInput{
		Email:       "a@example.com",
		OldPassword: "old-password-1",
		NewPassword: "new-password-1",
	})
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "a@example.com", "new-password-1")
	require.NoError(t, err)
	_, _, err = svc.Login(ctx, "a@example.com", "old-password-1")
	requireKind(t, err, apperrors.KindValidation)
}

func TestAuthServiceChangePasswordAdminReset(t *testing.T) {
	svc := setupAuth(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Email: "a@example.com", Password: "old-password-1"})
	require.NoError(t, err)

	// Admin resets without the old password.
	err = svc.ChangePassword(ctx, models.RoleAdmin, ChangePasswordInput{
		Email:       "a@example.com",
		NewPassword: "reset-password-1",
	})
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "a@example.com", "reset-password-1")
	require.NoError(t, err)

	err = svc.ChangePassword(ctx, models.RoleAdmin, ChangePasswordInput{
		Email:       "missing@example.com",
		NewPassword: "reset-password-1",
	})
	requireKind(t, err, apperrors.KindNotFound)
}

func TestAuthServiceMe(t *testing.T) {
	svc := setupAuth(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterInput{Email: "a@example.com", Password: "swordfish-42"})
	require.NoError(t, err)

	me, err := svc.Me(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, user.Email, me.Email)

	_, err = svc.Me(ctx, "missing-id")
	requireKind(t, err, apperrors.KindNotFound)
}
