package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/lunarcms/lunar/internal/database/testutil"
	"github.com/lunarcms/lunar/internal/models"
	apperrors "github.com/lunarcms/lunar/pkg/errors"
)

func setupCatalog(t *testing.T) (*CatalogService, *gorm.DB) {
	t.Helper()

	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc, err := NewCatalogService(db)
	require.NoError(t, err)
	return svc, db
}

func requireKind(t *testing.T, err error, kind apperrors.Kind) {
	t.Helper()

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, kind, appErr.Kind)
}

func TestCatalogServiceCreateModule(t *testing.T) {
	svc, _ := setupCatalog(t)
	ctx := context.Background()

	module, err := svc.CreateModule(ctx, "  blog  ")
	require.NoError(t, err)
	require.Equal(t, "blog", module.Name)
	require.NotEmpty(t, module.ID)

	_, err = svc.CreateModule(ctx, "blog")
	requireKind(t, err, apperrors.KindConflict)

	_, err = svc.CreateModule(ctx, "   ")
	requireKind(t, err, apperrors.KindValidation)
}

func TestCatalogServiceCreateModuleReusesSoftDeletedName(t *testing.T) {
	svc, _ := setupCatalog(t)
	ctx := context.Background()

	module, err := svc.CreateModule(ctx, "gallery")
	require.NoError(t, err)
	require.NoError(t, svc.DeleteModule(ctx, module.ID))

	recreated, err := svc.CreateModule(ctx, "gallery")
	require.NoError(t, err)
	require.NotEqual(t, module.ID, recreated.ID)
}

func TestCatalogServiceUpdateModule(t *testing.T) {
	svc, _ := setupCatalog(t)
	ctx := context.Background()

	blog, err := svc.CreateModule(ctx, "blog")
	require.NoError(t, err)
	_, err = svc.CreateModule(ctx, "seo")
	require.NoError(t, err)

	updated, err := svc.UpdateModule(ctx, blog.ID, "articles")
	require.NoError(t, err)
	require.Equal(t, "articles", updated.Name)

	// Renaming onto another active module's name is rejected.
	_, err = svc.UpdateModule(ctx, blog.ID, "seo")
	requireKind(t, err, apperrors.KindConflict)

	// Saving the current name back is not a conflict.
	_, err = svc.UpdateModule(ctx, blog.ID, "articles")
	require.NoError(t, err)

	_, err = svc.UpdateModule(ctx, "missing-id", "anything")
	requireKind(t, err, apperrors.KindNotFound)

	_, err = svc.UpdateModule(ctx, blog.ID, "")
	requireKind(t, err, apperrors.KindValidation)
}

func TestCatalogServiceListModules(t *testing.T) {
	svc, _ := setupCatalog(t)
	ctx := context.Background()

	for _, name := range []string{"blog", "category", "seo"} {
		_, err := svc.CreateModule(ctx, name)
		require.NoError(t, err)
	}

	modules, total, err := svc.ListModules(ctx, ListOptions{})
	require.NoError(t, err)
	require.EqualValues(t, 3, total)
	require.Len(t, modules, 3)

	modules, total, err = svc.ListModules(ctx, ListOptions{Search: "cat"})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, "category", modules[0].Name)

	modules, total, err = svc.ListModules(ctx, ListOptions{Page: 2, Limit: 2, Order: "name.asc"})
	require.NoError(t, err)
	require.EqualValues(t, 3, total)
	require.Len(t, modules, 1)
	require.Equal(t, "seo", modules[0].Name)
}

func TestCatalogServiceDeleteModule(t *testing.T) {
	svc, db := setupCatalog(t)
	ctx := context.Background()

	module, err := svc.CreateModule(ctx, "blog")
	require.NoError(t, err)
	permission, err := svc.CreatePermission(ctx, "view", module.ID)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteModule(ctx, module.ID))

	// Already soft-deleted reads as missing.
	err = svc.DeleteModule(ctx, module.ID)
	requireKind(t, err, apperrors.KindNotFound)

	_, err = svc.GetModule(ctx, module.ID)
	requireKind(t, err, apperrors.KindNotFound)

	// No cascade: the permission row stays active.
	var count int64
	require.NoError(t, db.Model(&models.Permission{}).
		Where("id = ?", permission.ID).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestCatalogServiceCreatePermission(t *testing.T) {
	svc, _ := setupCatalog(t)
	ctx := context.Background()

	module, err := svc.CreateModule(ctx, "blog")
	require.NoError(t, err)

	permission, err := svc.CreatePermission(ctx, "create", module.ID)
	require.NoError(t, err)
	require.Equal(t, "create", permission.Action)
	require.Equal(t, module.ID, permission.ModuleID)

	_, err = svc.CreatePermission(ctx, "create", module.ID)
	requireKind(t, err, apperrors.KindConflict)

	// Same action under a different module is fine.
	other, err := svc.CreateModule(ctx, "seo")
	require.NoError(t, err)
	_, err = svc.CreatePermission(ctx, "create", other.ID)
	require.NoError(t, err)

	_, err = svc.CreatePermission(ctx, "", module.ID)
	requireKind(t, err, apperrors.KindValidation)

	_, err = svc.CreatePermission(ctx, "view", "missing-module")
	requireKind(t, err, apperrors.KindNotFound)
}

func TestCatalogServiceCreatePermissionRejectsSoftDeletedModule(t *testing.T) {
	svc, _ := setupCatalog(t)
	ctx := context.Background()

	module, err := svc.CreateModule(ctx, "blog")
	require.NoError(t, err)
	require.NoError(t, svc.DeleteModule(ctx, module.ID))

	_, err = svc.CreatePermission(ctx, "view", module.ID)
	requireKind(t, err, apperrors.KindNotFound)
}

func TestCatalogServiceUpdatePermission(t *testing.T) {
	svc, _ := setupCatalog(t)
	ctx := context.Background()

	blog, err := svc.CreateModule(ctx, "blog")
	require.NoError(t, err)
	seo, err := svc.CreateModule(ctx, "seo")
	require.NoError(t, err)

	view, err := svc.CreatePermission(ctx, "view", blog.ID)
	require.NoError(t, err)
	_, err = svc.CreatePermission(ctx, "update", blog.ID)
	require.NoError(t, err)

	// Move the permission to another module.
	moved, err := svc.UpdatePermission(ctx, view.ID, "view", seo.ID)
	require.NoError(t, err)
	require.Equal(t, seo.ID, moved.ModuleID)

	// Taking an action already present in the target module is rejected.
	_, err = svc.UpdatePermission(ctx, view.ID, "update", blog.ID)
	requireKind(t, err, apperrors.KindConflict)

	// The row under update is excluded from the duplicate check.
	_, err = svc.UpdatePermission(ctx, view.ID, "view", seo.ID)
	require.NoError(t, err)

	_, err = svc.UpdatePermission(ctx, "missing-id", "view", blog.ID)
	requireKind(t, err, apperrors.KindNotFound)

	_, err = svc.UpdatePermission(ctx, view.ID, "", blog.ID)
	requireKind(t, err, apperrors.KindValidation)
}

func TestCatalogServiceListPermissions(t *testing.T) {
	svc, _ := setupCatalog(t)
	ctx := context.Background()

	module, err := svc.CreateModule(ctx, "blog")
	require.NoError(t, err)
	for _, action := range []string{"create", "view", "update"} {
		_, err := svc.CreatePermission(ctx, action, module.ID)
		require.NoError(t, err)
	}

	permissions, total, err := svc.ListPermissions(ctx, ListOptions{Order: "action.asc"})
	require.NoError(t, err)
	require.EqualValues(t, 3, total)
	require.Len(t, permissions, 3)
	require.Equal(t, "create", permissions[0].Action)
	require.NotNil(t, permissions[0].Module)
	require.Equal(t, "blog", permissions[0].Module.Name)

	permissions, total, err = svc.ListPermissions(ctx, ListOptions{Search: "up"})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, "update", permissions[0].Action)
}

func TestCatalogServiceDeletePermission(t *testing.T) {
	svc, _ := setupCatalog(t)
	ctx := context.Background()

	module, err := svc.CreateModule(ctx, "blog")
	require.NoError(t, err)
	permission, err := svc.CreatePermission(ctx, "view", module.ID)
	require.NoError(t, err)

	require.NoError(t, svc.DeletePermission(ctx, permission.ID))

	err = svc.DeletePermission(ctx, permission.ID)
	requireKind(t, err, apperrors.KindNotFound)

	_, err = svc.GetPermission(ctx, permission.ID)
	requireKind(t, err, apperrors.KindNotFound)

	// The action is free for reuse within the module.
	_, err = svc.CreatePermission(ctx, "view", module.ID)
	require.NoError(t, err)
}
