package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhushyanth-h-m/blog-api/internal/database"
	"github.com/dhushyanth-h-m/blog-api/internal/models"
)

type fakeBlogStore struct {
	blogs map[string]*models.Blog

	getByIDCalls int
	listCalls    int
	searchCalls  int
}

func newFakeBlogStore() *fakeBlogStore {
	return &fakeBlogStore{blogs: map[string]*models.Blog{}}
}

func (f *fakeBlogStore) Create(_ context.Context, blog *models.Blog) error {
	stored := *blog
	stored.Author.Name = "Ann"
	stored.CreatedAt = time.Now().UTC()
	stored.UpdatedAt = stored.CreatedAt
	f.blogs[blog.ID] = &stored
	return nil
}

func (f *fakeBlogStore) GetByID(_ context.Context, id string) (*models.Blog, error) {
	f.getByIDCalls++
	blog, ok := f.blogs[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	copied := *blog
	return &copied, nil
}

func (f *fakeBlogStore) Update(_ context.Context, blog *models.Blog) error {
	if _, ok := f.blogs[blog.ID]; !ok {
		return database.ErrNotFound
	}
	stored := *blog
	stored.UpdatedAt = time.Now().UTC()
	f.blogs[blog.ID] = &stored
	return nil
}

func (f *fakeBlogStore) Delete(_ context.Context, id string) error {
	if _, ok := f.blogs[id]; !ok {
		return database.ErrNotFound
	}
	delete(f.blogs, id)
	return nil
}

func (f *fakeBlogStore) List(_ context.Context, filters models.BlogFilters) (*models.BlogList, error) {
	f.listCalls++
	var data []models.Blog
	for _, blog := range f.blogs {
		if filters.Status != "" && blog.Status != filters.Status {
			continue
		}
		data = append(data, *blog)
	}
	return &models.BlogList{
		Data:       data,
		Pagination: models.Pagination{Page: 1, Limit: len(data), Total: len(data), TotalPages: 1},
	}, nil
}

func (f *fakeBlogStore) Search(_ context.Context, term string, limit int) ([]models.Blog, error) {
	f.searchCalls++
	var out []models.Blog
	for _, blog := range f.blogs {
		if blog.Status != models.StatusPublished {
			continue
		}
		if strings.Contains(strings.ToLower(blog.Title), strings.ToLower(term)) {
			out = append(out, *blog)
		}
	}
	return out, nil
}

func newBlogService(t *testing.T, blogs *fakeBlogStore) *BlogService {
	t.Helper()
	return NewBlogService(blogs, newTestCache(t), newTestLogger())
}

func seedBlog(t *testing.T, svc *BlogService, title string) *models.Blog {
	t.Helper()
	blog, err := svc.Create(context.Background(), "u1", &CreateBlogRequest{
		Title:   title,
		Content: "content",
	})
	require.NoError(t, err)
	return blog
}

func TestBlogService_CreateDefaultsToPublished(t *testing.T) {
	blogs := newFakeBlogStore()
	svc := newBlogService(t, blogs)

	blog := seedBlog(t, svc, "Hello")
	assert.Equal(t, models.StatusPublished, blog.Status)
	assert.Equal(t, "u1", blog.Author.ID)
	assert.Equal(t, "Ann", blog.Author.Name, "author populated by re-read")
}

func TestBlogService_GetByIDReadThrough(t *testing.T) {
	blogs := newFakeBlogStore()
	svc := newBlogService(t, blogs)
	ctx := context.Background()

	blog := seedBlog(t, svc, "Hello")
	calls := blogs.getByIDCalls

	first, err := svc.GetByID(ctx, blog.ID)
	require.NoError(t, err)
	assert.Equal(t, calls+1, blogs.getByIDCalls)

	second, err := svc.GetByID(ctx, blog.ID)
	require.NoError(t, err)
	assert.Equal(t, calls+1, blogs.getByIDCalls, "second read is served from cache")
	assert.Equal(t, first, second)
}

func TestBlogService_GetByIDNotFound(t *testing.T) {
	svc := newBlogService(t, newFakeBlogStore())

	_, err := svc.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestBlogService_ListReadThrough(t *testing.T) {
	blogs := newFakeBlogStore()
	svc := newBlogService(t, blogs)
	ctx := context.Background()

	seedBlog(t, svc, "Hello")
	filters := models.BlogFilters{Status: models.StatusPublished, Page: 1, Limit: 10}

	first, err := svc.List(ctx, filters)
	require.NoError(t, err)
	require.Equal(t, 1, blogs.listCalls)

	second, err := svc.List(ctx, filters)
	require.NoError(t, err)
	assert.Equal(t, 1, blogs.listCalls, "equal filters reuse the cached page")
	assert.Equal(t, first, second)

	_, err = svc.List(ctx, models.BlogFilters{Status: models.StatusDraft, Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 2, blogs.listCalls, "different filters get their own entry")
}

func TestBlogService_SearchReadThrough(t *testing.T) {
	blogs := newFakeBlogStore()
	svc := newBlogService(t, blogs)
	ctx := context.Background()

	seedBlog(t, svc, "Go Patterns")

	first, err := svc.Search(ctx, "patterns", 0)
	require.NoError(t, err)
	require.Len(t, first, 1)
	require.Equal(t, 1, blogs.searchCalls)

	second, err := svc.Search(ctx, "patterns", 0)
	require.NoError(t, err)
	assert.Equal(t, 1, blogs.searchCalls)
	assert.Equal(t, first, second)
}

func TestBlogService_CreateInvalidatesList(t *testing.T) {
	blogs := newFakeBlogStore()
	svc := newBlogService(t, blogs)
	ctx := context.Background()

	seedBlog(t, svc, "First")
	filters := models.BlogFilters{Status: models.StatusPublished}

	list, err := svc.List(ctx, filters)
	require.NoError(t, err)
	require.Len(t, list.Data, 1)
	require.Equal(t, 1, blogs.listCalls)

	seedBlog(t, svc, "Second")

	list, err = svc.List(ctx, filters)
	require.NoError(t, err)
	assert.Equal(t, 2, blogs.listCalls, "create sweeps the list cache")
	assert.Len(t, list.Data, 2)
}

func TestBlogService_UpdateInvalidatesDetail(t *testing.T) {
	blogs := newFakeBlogStore()
	svc := newBlogService(t, blogs)
	ctx := context.Background()

	blog := seedBlog(t, svc, "Old Title")
	_, err := svc.GetByID(ctx, blog.ID)
	require.NoError(t, err)

	title := "New Title"
	updated, err := svc.Update(ctx, blog.ID, &UpdateBlogRequest{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "New Title", updated.Title)

	got, err := svc.GetByID(ctx, blog.ID)
	require.NoError(t, err)
	assert.Equal(t, "New Title", got.Title)
}

func TestBlogService_UpdatePartial(t *testing.T) {
	blogs := newFakeBlogStore()
	svc := newBlogService(t, blogs)
	ctx := context.Background()

	blog := seedBlog(t, svc, "Title")
	status := models.StatusDraft
	updated, err := svc.Update(ctx, blog.ID, &UpdateBlogRequest{Status: &status})
	require.NoError(t, err)

	assert.Equal(t, models.StatusDraft, updated.Status)
	assert.Equal(t, "Title", updated.Title, "nil fields keep their value")
	assert.Equal(t, "content", updated.Content)
}

func TestBlogService_UpdateNotFound(t *testing.T) {
	svc := newBlogService(t, newFakeBlogStore())

	title := "x"
	_, err := svc.Update(context.Background(), "missing", &UpdateBlogRequest{Title: &title})
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestBlogService_DeleteInvalidatesDetail(t *testing.T) {
	blogs := newFakeBlogStore()
	svc := newBlogService(t, blogs)
	ctx := context.Background()

	blog := seedBlog(t, svc, "Title")
	_, err := svc.GetByID(ctx, blog.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, blog.ID))

	_, err = svc.GetByID(ctx, blog.ID)
	assert.ErrorIs(t, err, database.ErrNotFound, "deleted post is not served from cache")
}

func TestBlogService_DeleteNotFound(t *testing.T) {
	svc := newBlogService(t, newFakeBlogStore())
	assert.ErrorIs(t, svc.Delete(context.Background(), "missing"), database.ErrNotFound)
}
