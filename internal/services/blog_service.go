package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/dhushyanth-h-m/blog-api/internal/cache"
	"github.com/dhushyanth-h-m/blog-api/internal/models"
)

// BlogStore is the persistence surface the blog service needs.
type BlogStore interface {
	Create(ctx context.Context, blog *models.Blog) error
	GetByID(ctx context.Context, id string) (*models.Blog, error)
	Update(ctx context.Context, blog *models.Blog) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filters models.BlogFilters) (*models.BlogList, error)
	Search(ctx context.Context, term string, limit int) ([]models.Blog, error)
}

// CreateBlogRequest is the payload for creating a blog post.
type CreateBlogRequest struct {
	Title   string   `json:"title" binding:"required,max=200"`
	Content string   `json:"content" binding:"required"`
	Tags    []string `json:"tags" binding:"omitempty,max=10"`
	Status  string   `json:"status" binding:"omitempty,oneof=draft published"`
}

// UpdateBlogRequest is the payload for updating a blog post. Nil fields
// keep their current value.
type UpdateBlogRequest struct {
	Title   *string   `json:"title" binding:"omitempty,max=200"`
	Content *string   `json:"content"`
	Tags    *[]string `json:"tags" binding:"omitempty,max=10"`
	Status  *string   `json:"status" binding:"omitempty,oneof=draft published"`
}

// BlogService handles blog CRUD, listing and search, with read-through
// caching and category invalidation on every write.
type BlogService struct {
	blogs BlogStore
	cache *cache.CacheService
	log   *logrus.Logger
}

// NewBlogService creates a new blog service.
func NewBlogService(blogs BlogStore, cacheService *cache.CacheService, log *logrus.Logger) *BlogService {
	return &BlogService{blogs: blogs, cache: cacheService, log: log}
}

// Create stores a new blog post and sweeps the list/search caches.
func (s *BlogService) Create(ctx context.Context, authorID string, req *CreateBlogRequest) (*models.Blog, error) {
	status := req.Status
	if status == "" {
		status = models.StatusPublished
	}

	blog := &models.Blog{
		ID:      uuid.New().String(),
		Title:   req.Title,
		Content: req.Content,
		Tags:    req.Tags,
		Status:  status,
		Author:  models.Author{ID: authorID},
	}
	if err := s.blogs.Create(ctx, blog); err != nil {
		return nil, err
	}

	// Re-read so the author is populated like every other read path.
	created, err := s.blogs.GetByID(ctx, blog.ID)
	if err != nil {
		return nil, err
	}

	s.cache.InvalidateBlogCaches(ctx, "")
	s.log.WithFields(logrus.Fields{"blog_id": created.ID, "author_id": authorID}).Info("blog created")
	return created, nil
}

// GetByID returns a single blog post through the detail cache.
func (s *BlogService) GetByID(ctx context.Context, id string) (*models.Blog, error) {
	var cached models.Blog
	if s.cache.GetBlog(ctx, id, &cached) {
		return &cached, nil
	}

	blog, err := s.blogs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.cache.SetBlog(ctx, id, blog)
	return blog, nil
}

// List returns a page of blog posts through the list cache.
func (s *BlogService) List(ctx context.Context, filters models.BlogFilters) (*models.BlogList, error) {
	var cached models.BlogList
	if s.cache.GetBlogList(ctx, filters, &cached) {
		return &cached, nil
	}

	list, err := s.blogs.List(ctx, filters)
	if err != nil {
		return nil, err
	}

	s.cache.SetBlogList(ctx, filters, list)
	return list, nil
}

// Search returns published posts matching query through the search cache.
func (s *BlogService) Search(ctx context.Context, query string, limit int) ([]models.Blog, error) {
	if limit < 1 {
		limit = 10
	}

	var cached []models.Blog
	if s.cache.GetSearchResults(ctx, query, nil, &cached) {
		return cached, nil
	}

	results, err := s.blogs.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	s.cache.SetSearchResults(ctx, query, nil, results)
	return results, nil
}

// Update applies the non-nil fields of req and invalidates the detail,
// list and search caches for the post.
func (s *BlogService) Update(ctx context.Context, id string, req *UpdateBlogRequest) (*models.Blog, error) {
	blog, err := s.blogs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		blog.Title = *req.Title
	}
	if req.Content != nil {
		blog.Content = *req.Content
	}
	if req.Tags != nil {
		blog.Tags = *req.Tags
	}
	if req.Status != nil {
		blog.Status = *req.Status
	}

	if err := s.blogs.Update(ctx, blog); err != nil {
		return nil, err
	}

	s.cache.InvalidateBlogCaches(ctx, id)
	s.log.WithField("blog_id", id).Info("blog updated")
	return blog, nil
}

// Delete removes a blog post and invalidates its cache entries.
func (s *BlogService) Delete(ctx context.Context, id string) error {
	if err := s.blogs.Delete(ctx, id); err != nil {
		return err
	}

	s.cache.InvalidateBlogCaches(ctx, id)
	s.log.WithField("blog_id", id).Info("blog deleted")
	return nil
}
