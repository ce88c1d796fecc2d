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

type blogFixture struct {
	blogs    *BlogService
	db       *gorm.DB
	author   models.User
	category models.Category
}

func setupBlogs(t *testing.T) blogFixture {
	t.Helper()

	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc, err := NewBlogService(db)
	require.NoError(t, err)

	author := seedUser(t, db, "author@example.com")
	category := models.Category{Name: "General", Slug: "general"}
	require.NoError(t, db.Create(&category).Error)

	return blogFixture{blogs: svc, db: db, author: author, category: category}
}

func (f blogFixture) createBlog(t *testing.T, slug string, published bool) *models.Blog {
	t.Helper()

	blog, err := f.blogs.Create(context.Background(), f.author.ID, CreateBlogInput{
		Title:       "Post " + slug,
		Slug:        slug,
		Content:     "body",
		CategoryID:  f.category.ID,
		IsPublished: published,
	})
	require.NoError(t, err)
	return blog
}

func TestBlogServiceCreate(t *testing.T) {
	f := setupBlogs(t)
	ctx := context.Background()

	blog := f.createBlog(t, "hello-world", true)
	require.Equal(t, f.author.ID, blog.AuthorID)
	require.NotNil(t, blog.PublishedAt)

	draft := f.createBlog(t, "draft-post", false)
	require.Nil(t, draft.PublishedAt)

	_, err := f.blogs.Create(ctx, f.author.ID, CreateBlogInput{Slug: "x", Content: "y", CategoryID: f.category.ID})
	requireKind(t, err, apperrors.KindValidation)

	_, err = f.blogs.Create(ctx, "missing-author", CreateBlogInput{
		Title: "t", Slug: "s", Content: "c", CategoryID: f.category.ID,
	})
	requireKind(t, err, apperrors.KindNotFound)

	_, err = f.blogs.Create(ctx, f.author.ID, CreateBlogInput{
		Title: "t", Slug: "s", Content: "c", CategoryID: "missing-category",
	})
	requireKind(t, err, apperrors.KindNotFound)

	_, err = f.blogs.Create(ctx, f.author.ID, CreateBlogInput{
		Title: "t", Slug: "hello-world", Content: "c", CategoryID: f.category.ID,
	})
	requireKind(t, err, apperrors.KindConflict)
}

func TestBlogServiceListAndLookup(t *testing.T) {
	f := setupBlogs(t)
	ctx := context.Background()

	f.createBlog(t, "alpha", false)
	f.createBlog(t, "beta", false)

	blogs, total, err := f.blogs.List(ctx, BlogListOptions{})
	require.NoError(t, err)
	require.EqualValues(t, 2, total)
	require.Len(t, blogs, 2)
	require.NotNil(t, blogs[0].Category)

	blogs, total, err = f.blogs.List(ctx, BlogListOptions{
		ListOptions: ListOptions{Search: "alp"},
		Filter:      "slug",
	})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, "alpha", blogs[0].Slug)

	bySlug, err := f.blogs.GetBySlug(ctx, "beta")
	require.NoError(t, err)
	byID, err := f.blogs.Get(ctx, bySlug.ID)
	require.NoError(t, err)
	require.Equal(t, bySlug.ID, byID.ID)

	_, err = f.blogs.GetBySlug(ctx, "missing")
	requireKind(t, err, apperrors.KindNotFound)
}

func TestBlogServiceUpdate(t *testing.T) {
	f := setupBlogs(t)
	ctx := context.Background()

	blog := f.createBlog(t, "alpha", false)
	f.createBlog(t, "beta", false)

	published := true
	updated, err := f.blogs.Update(ctx, blog.ID, UpdateBlogInput{IsPublished: &published})
	require.NoError(t, err)
	require.True(t, updated.IsPublished)

	reloaded, err := f.blogs.Get(ctx, blog.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.PublishedAt)
	firstStamp := *reloaded.PublishedAt

	// Re-publishing keeps the original stamp.
	_, err = f.blogs.Update(ctx, blog.ID, UpdateBlogInput{IsPublished: &published})
	require.NoError(t, err)
	reloaded, err = f.blogs.Get(ctx, blog.ID)
	require.NoError(t, err)
	require.Equal(t, firstStamp.Unix(), reloaded.PublishedAt.Unix())

	taken := "beta"
	_, err = f.blogs.Update(ctx, blog.ID, UpdateBlogInput{Slug: &taken})
	requireKind(t, err, apperrors.KindConflict)

	_, err = f.blogs.Update(ctx, "missing-id", UpdateBlogInput{Slug: &taken})
	requireKind(t, err, apperrors.KindNotFound)
}

func TestBlogServiceDelete(t *testing.T) {
	f := setupBlogs(t)
	ctx := context.Background()

	published := f.createBlog(t, "published", true)
	draft := f.createBlog(t, "draft", false)

	// Published posts cannot be deleted.
	err := f.blogs.Delete(ctx, published.ID)
	requireKind(t, err, apperrors.KindValidation)

	require.NoError(t, f.blogs.Delete(ctx, draft.ID))

	err = f.blogs.Delete(ctx, draft.ID)
	requireKind(t, err, apperrors.KindNotFound)

	// The slug is free for reuse after soft delete.
	f.createBlog(t, "draft", false)
}
