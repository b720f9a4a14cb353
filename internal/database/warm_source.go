package database

import (
	"context"
	"errors"
	"time"

	"github.com/dhushyanth-h-m/blog-api/internal/models"
)

// WarmSource adapts the repositories to the cache warmer's Source
// interface.
type WarmSource struct {
	blogs *BlogRepository
	users *UserRepository
}

// NewWarmSource builds a warmer data source over the two repositories.
func NewWarmSource(blogs *BlogRepository, users *UserRepository) *WarmSource {
	return &WarmSource{blogs: blogs, users: users}
}

func (s *WarmSource) RecentPublished(ctx context.Context, limit int) ([]models.Blog, error) {
	return s.blogs.RecentPublished(ctx, limit)
}

// UserByID returns nil without error for an unknown id, so warming simply
// skips authors that disappeared between queries.
func (s *WarmSource) UserByID(ctx context.Context, id string) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return user, err
}

func (s *WarmSource) CountBlogs(ctx context.Context, status string, since time.Time) (int, error) {
	return s.blogs.Count(ctx, status, since)
}

func (s *WarmSource) CountUsers(ctx context.Context, since time.Time) (int, error) {
	return s.users.Count(ctx, since)
}

func (s *WarmSource) SearchPublished(ctx context.Context, term string, limit int) ([]models.Blog, error) {
	return s.blogs.Search(ctx, term, limit)
}
