package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/dhushyanth-h-m/blog-api/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// BlogRepository handles blog post persistence.
type BlogRepository struct {
	pool *pgxpool.Pool
	log  *logrus.Logger
}

// NewBlogRepository creates a new BlogRepository.
func NewBlogRepository(pool *pgxpool.Pool, log *logrus.Logger) *BlogRepository {
	return &BlogRepository{pool: pool, log: log}
}

const blogColumns = `
	b.id, b.title, b.content, b.tags, b.status, b.created_at, b.updated_at,
	u.id, u.name, u.email
`

func scanBlog(row pgx.Row) (*models.Blog, error) {
	var blog models.Blog
	err := row.Scan(
		&blog.ID, &blog.Title, &blog.Content, &blog.Tags, &blog.Status,
		&blog.CreatedAt, &blog.UpdatedAt,
		&blog.Author.ID, &blog.Author.Name, &blog.Author.Email,
	)
	if err != nil {
		return nil, err
	}
	return &blog, nil
}

// Create inserts a new blog post and fills in the generated timestamps.
func (r *BlogRepository) Create(ctx context.Context, blog *models.Blog) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO blogs (id, title, content, tags, status, author_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`, blog.ID, blog.Title, blog.Content, blog.Tags, blog.Status, blog.Author.ID,
	).Scan(&blog.CreatedAt, &blog.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create blog: %w", err)
	}
	return nil
}

// GetByID returns a blog post with its author populated.
func (r *BlogRepository) GetByID(ctx context.Context, id string) (*models.Blog, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+blogColumns+`
		FROM blogs b
		JOIN users u ON u.id = b.author_id
		WHERE b.id = $1
	`, id)

	blog, err := scanBlog(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get blog: %w", err)
	}
	return blog, nil
}

// Update overwrites the mutable fields of a blog post.
func (r *BlogRepository) Update(ctx context.Context, blog *models.Blog) error {
	err := r.pool.QueryRow(ctx, `
		UPDATE blogs
		SET title = $1, content = $2, tags = $3, status = $4, updated_at = NOW()
		WHERE id = $5
		RETURNING updated_at
	`, blog.Title, blog.Content, blog.Tags, blog.Status, blog.ID,
	).Scan(&blog.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to update blog: %w", err)
	}
	return nil
}

// Delete removes a blog post.
func (r *BlogRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM blogs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete blog: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns a page of blog posts, newest first, with pagination
// metadata. An empty status means no status filter.
func (r *BlogRepository) List(ctx context.Context, filters models.BlogFilters) (*models.BlogList, error) {
	page := filters.Page
	if page < 1 {
		page = 1
	}
	limit := filters.Limit
	if limit < 1 {
		limit = 10
	}

	where := ""
	args := []interface{}{}
	if filters.Status != "" {
		where = "WHERE b.status = $1"
		args = append(args, filters.Status)
	}

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM blogs b %s", where)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count blogs: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT `+blogColumns+`
		FROM blogs b
		JOIN users u ON u.id = b.author_id
		%s
		ORDER BY b.created_at DESC
		LIMIT $%d OFFSET $%d
	`, where, len(args)+1, len(args)+2)
	args = append(args, limit, (page-1)*limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list blogs: %w", err)
	}
	defer rows.Close()

	blogs := []models.Blog{}
	for rows.Next() {
		blog, err := scanBlog(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan blog: %w", err)
		}
		blogs = append(blogs, *blog)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list blogs: %w", err)
	}

	totalPages := (total + limit - 1) / limit
	return &models.BlogList{
		Data: blogs,
		Pagination: models.Pagination{
			Page:        page,
			Limit:       limit,
			Total:       total,
			TotalPages:  totalPages,
			HasNextPage: page < totalPages,
			HasPrevPage: page > 1,
		},
	}, nil
}

// Count counts blogs, optionally filtered by status and a creation-date
// lower bound. Zero values disable the respective filter.
func (r *BlogRepository) Count(ctx context.Context, status string, since time.Time) (int, error) {
	query := "SELECT COUNT(*) FROM blogs WHERE 1=1"
	args := []interface{}{}
	if status != "" {
		args = append(args, status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if !since.IsZero() {
		args = append(args, since)
		query += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}

	var count int
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count blogs: %w", err)
	}
	return count, nil
}

// Search matches term case-insensitively against title and content of
// published posts, newest first.
func (r *BlogRepository) Search(ctx context.Context, term string, limit int) ([]models.Blog, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+blogColumns+`
		FROM blogs b
		JOIN users u ON u.id = b.author_id
		WHERE b.status = $1 AND (b.title ILIKE $2 OR b.content ILIKE $2)
		ORDER BY b.created_at DESC
		LIMIT $3
	`, models.StatusPublished, "%"+term+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search blogs: %w", err)
	}
	defer rows.Close()

	blogs := []models.Blog{}
	for rows.Next() {
		blog, err := scanBlog(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan blog: %w", err)
		}
		blogs = append(blogs, *blog)
	}
	return blogs, rows.Err()
}

// RecentPublished returns the newest published posts with their authors.
func (r *BlogRepository) RecentPublished(ctx context.Context, limit int) ([]models.Blog, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+blogColumns+`
		FROM blogs b
		JOIN users u ON u.id = b.author_id
		WHERE b.status = $1
		ORDER BY b.created_at DESC
		LIMIT $2
	`, models.StatusPublished, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent blogs: %w", err)
	}
	defer rows.Close()

	blogs := []models.Blog{}
	for rows.Next() {
		blog, err := scanBlog(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan blog: %w", err)
		}
		blogs = append(blogs, *blog)
	}
	return blogs, rows.Err()
}
