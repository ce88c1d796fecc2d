package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lunarcms/lunar/internal/database/testutil"
	apperrors "github.com/lunarcms/lunar/pkg/errors"
)

func setupCategories(t *testing.T) *CategoryService {
	t.Helper()

	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc, err := NewCategoryService(db)
	require.NoError(t, err)
	return svc
}

func TestCategoryServiceCreate(t *testing.T) {
	svc := setupCategories(t)
	ctx := context.Background()

	root, err := svc.Create(ctx, CreateCategoryInput{Name: "Interiors", Slug: "interiors"})
	require.NoError(t, err)
	require.Nil(t, root.ParentID)

	child, err := svc.Create(ctx, CreateCategoryInput{
		Name:     "Kitchens",
		Slug:     "kitchens",
		ParentID: &root.ID,
	})
	require.NoError(t, err)
	require.NotNil(t, child.ParentID)
	require.Equal(t, root.ID, *child.ParentID)

	_, err = svc.Create(ctx, CreateCategoryInput{Slug: "nameless"})
	requireKind(t, err, apperrors.KindValidation)

	_, err = svc.Create(ctx, CreateCategoryInput{Name: "Dup", Slug: "interiors"})
	requireKind(t, err, apperrors.KindConflict)

	missing := "missing-parent"
	_, err = svc.Create(ctx, CreateCategoryInput{Name: "Orphan", ParentID: &missing})
	requireKind(t, err, apperrors.KindNotFound)
}

func TestCategoryServiceListFilters(t *testing.T) {
	svc := setupCategories(t)
	ctx := context.Background()

	root, err := svc.Create(ctx, CreateCategoryInput{Name: "Interiors", Slug: "interiors"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateCategoryInput{Name: "Kitchens", Slug: "kitchens", ParentID: &root.ID})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateCategoryInput{Name: "Exteriors", Slug: "exteriors"})
	require.NoError(t, err)

	categories, total, err := svc.List(ctx, CategoryListOptions{})
	require.NoError(t, err)
	require.EqualValues(t, 3, total)
	require.Len(t, categories, 3)

	categories, total, err = svc.List(ctx, CategoryListOptions{RootOnly: true})
	require.NoError(t, err)
	require.EqualValues(t, 2, total)

	categories, total, err = svc.List(ctx, CategoryListOptions{ParentSlug: "interiors"})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, "kitchens", categories[0].Slug)

	categories, _, err = svc.List(ctx, CategoryListOptions{
		ListOptions: ListOptions{Search: "kitchen"},
		Filter:      "slug",
	})
	require.NoError(t, err)
	require.Len(t, categories, 1)
	require.NotNil(t, categories[0].Parent)
	require.Equal(t, root.ID, categories[0].Parent.ID)
}

func TestCategoryServiceUpdate(t *testing.T) {
	svc := setupCategories(t)
	ctx := context.Background()

	a, err := svc.Create(ctx, CreateCategoryInput{Name: "A", Slug: "a"})
	require.NoError(t, err)
	b, err := svc.Create(ctx, CreateCategoryInput{Name: "B", Slug: "b"})
	require.NoError(t, err)

	name := "Renamed"
	updated, err := svc.Update(ctx, a.ID, UpdateCategoryInput{Name: &name})
	require.NoError(t, err)
	require.Equal(t, "Renamed", updated.Name)

	taken := "b"
	_, err = svc.Update(ctx, a.ID, UpdateCategoryInput{Slug: &taken})
	requireKind(t, err, apperrors.KindConflict)

	_, err = svc.Update(ctx, a.ID, UpdateCategoryInput{ParentID: &b.ID})
	require.NoError(t, err)

	// Detach via empty parent.
	detach := ""
	_, err = svc.Update(ctx, a.ID, UpdateCategoryInput{ParentID: &detach})
	require.NoError(t, err)

	// A category cannot parent itself.
	_, err = svc.Update(ctx, a.ID, UpdateCategoryInput{ParentID: &a.ID})
	requireKind(t, err, apperrors.KindValidation)

	_, err = svc.Update(ctx, "missing-id", UpdateCategoryInput{Name: &name})
	requireKind(t, err, apperrors.KindNotFound)
}

func TestCategoryServiceDelete(t *testing.T) {
	svc := setupCategories(t)
	ctx := context.Background()

	root, err := svc.Create(ctx, CreateCategoryInput{Name: "Root", Slug: "root"})
	require.NoError(t, err)
	child, err := svc.Create(ctx, CreateCategoryInput{Name: "Child", Slug: "child", ParentID: &root.ID})
	require.NoError(t, err)

	// Parents with active children are protected.
	err = svc.Delete(ctx, root.ID)
	requireKind(t, err, apperrors.KindValidation)

	require.NoError(t, svc.Delete(ctx, child.ID))
	require.NoError(t, svc.Delete(ctx, root.ID))

	err = svc.Delete(ctx, root.ID)
	requireKind(t, err, apperrors.KindNotFound)
}

func TestCategoryServiceTree(t *testing.T) {
	svc := setupCategories(t)
	ctx := context.Background()

	root, err := svc.Create(ctx, CreateCategoryInput{Name: "Root", Slug: "root"})
	require.NoError(t, err)
	child, err := svc.Create(ctx, CreateCategoryInput{Name: "Child", Slug: "child", ParentID: &root.ID})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateCategoryInput{Name: "Leaf", Slug: "leaf", ParentID: &child.ID})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateCategoryInput{Name: "Other", Slug: "other"})
	require.NoError(t, err)

	tree, err := svc.Tree(ctx)
	require.NoError(t, err)
	require.Len(t, tree, 2)
	require.Equal(t, "root", tree[0].Slug)
	require.Len(t, tree[0].Children, 1)
	require.Equal(t, "child", tree[0].Children[0].Slug)
	require.Len(t, tree[0].Children[0].Children, 1)
	require.Equal(t, "leaf", tree[0].Children[0].Children[0].Slug)
	require.Empty(t, tree[1].Children)
}
