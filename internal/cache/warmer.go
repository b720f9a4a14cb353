package cache

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dhushyanth-h-m/blog-api/internal/models"
)

// Source supplies the persistence reads the warmer needs. The database
// layer satisfies it; tests plug in fixtures.
type Source interface {
	// RecentPublished returns the newest published posts, author populated.
	RecentPublished(ctx context.Context, limit int) ([]models.Blog, error)
	// UserByID returns a user including credential fields.
	UserByID(ctx context.Context, id string) (*models.User, error)
	// CountBlogs counts posts, optionally filtered by status and a
	// creation-date lower bound (zero time means unbounded).
	CountBlogs(ctx context.Context, status string, since time.Time) (int, error)
	// CountUsers counts users created at or after since (zero time means all).
	CountUsers(ctx context.Context, since time.Time) (int, error)
	// SearchPublished matches term case-insensitively against title and
	// content of published posts, newest first.
	SearchPublished(ctx context.Context, term string, limit int) ([]models.Blog, error)
}

// popularSearches are the fixed query terms pre-cached on every warming run.
var popularSearches = []string{"javascript", "node.js", "react", "tutorial", "guide"}

// WarmResult reports the outcome of one warming run. Categories breaks
// WarmedCount down; the two always sum to the same value.
type WarmResult struct {
	Success     bool           `json:"success"`
	WarmedCount int            `json:"warmed_count"`
	Categories  map[string]int `json:"categories,omitempty"`
	Error       string         `json:"error,omitempty"`
}

// Warmer proactively populates the cache from the persistence layer, at
// startup or on a repeating schedule. Warming is not transactional: a
// failing step aborts the run but leaves already-written entries in place.
type Warmer struct {
	cache  *CacheService
	source Source
	log    *logrus.Logger

	mu   sync.Mutex
	stop chan struct{}
}

// NewWarmer builds a warmer over the given cache service and data source.
func NewWarmer(cache *CacheService, source Source, log *logrus.Logger) *Warmer {
	return &Warmer{cache: cache, source: source, log: log}
}

type counterEntry struct {
	Count       int       `json:"count"`
	LastUpdated time.Time `json:"lastUpdated"`
}

type periodStats struct {
	TotalBlogs int    `json:"totalBlogs"`
	TotalUsers int    `json:"totalUsers"`
	Period     string `json:"period"`
}

// WarmCache runs the full warming sequence and reports what it populated.
// Failures are returned in the result, never panicked or propagated.
func (w *Warmer) WarmCache(ctx context.Context) WarmResult {
	if !w.cache.Enabled() {
		return WarmResult{Success: false, Error: "cache store not available"}
	}

	w.log.Info("starting cache warming")
	warmed := 0
	categories := map[string]int{}

	// 1. Detail entries for the most recently published posts.
	recent, err := w.source.RecentPublished(ctx, 20)
	if err != nil {
		return w.fail(err)
	}
	for i := range recent {
		if w.cache.SetBlog(ctx, recent[i].ID, &recent[i]) {
			warmed++
			categories["blogs"]++
		}
	}

	// 2. The two most common list views, each under its own filter hash.
	total, err := w.source.CountBlogs(ctx, models.StatusPublished, time.Time{})
	if err != nil {
		return w.fail(err)
	}
	listed, err := w.source.RecentPublished(ctx, 50)
	if err != nil {
		return w.fail(err)
	}
	page := &models.BlogList{
		Data: listed,
		Pagination: models.Pagination{
			Page:        1,
			Limit:       50,
			Total:       total,
			TotalPages:  (total + 49) / 50,
			HasNextPage: total > 50,
		},
	}
	defaultView := models.BlogFilters{Status: models.StatusPublished, Limit: 50}
	sortedView := models.BlogFilters{Status: models.StatusPublished, Limit: 50, Sort: "createdAt", Order: "desc"}
	for _, filters := range []models.BlogFilters{defaultView, sortedView} {
		if w.cache.SetBlogList(ctx, filters, page) {
			warmed++
			categories["blogs"]++
		}
	}

	// 3. Profiles for up to 10 distinct authors of the recent posts.
	seen := map[string]bool{}
	var authorIDs []string
	for _, blog := range recent {
		if !seen[blog.Author.ID] {
			seen[blog.Author.ID] = true
			authorIDs = append(authorIDs, blog.Author.ID)
		}
	}
	if len(authorIDs) > 10 {
		authorIDs = authorIDs[:10]
	}
	for _, id := range authorIDs {
		user, err := w.source.UserByID(ctx, id)
		if err != nil {
			return w.fail(err)
		}
		if user == nil {
			continue
		}
		user.PasswordHash = ""
		if w.cache.SetUser(ctx, id, user) {
			warmed++
			categories["users"]++
		}
	}

	// 4. System counters.
	userTotal, err := w.source.CountUsers(ctx, time.Time{})
	if err != nil {
		return w.fail(err)
	}
	now := time.Now().UTC()
	if w.cache.Set(ctx, "system", "blog_count", counterEntry{total, now}, 0) {
		warmed++
		categories["system"]++
	}
	if w.cache.Set(ctx, "system", "user_count", counterEntry{userTotal, now}, 0) {
		warmed++
		categories["system"]++
	}

	// 5. Search results for the fixed popular terms.
	for _, term := range popularSearches {
		results, err := w.source.SearchPublished(ctx, term, 10)
		if err != nil {
			return w.fail(err)
		}
		if len(results) == 0 {
			continue
		}
		if w.cache.SetSearchResults(ctx, term, nil, results) {
			warmed++
			categories["search"]++
		}
	}

	// 6. Trailing-window aggregate statistics.
	lastWeek := now.Add(-7 * 24 * time.Hour)
	lastMonth := now.Add(-30 * 24 * time.Hour)

	weekly, err := w.periodStats(ctx, "week", lastWeek)
	if err != nil {
		return w.fail(err)
	}
	monthly, err := w.periodStats(ctx, "month", lastMonth)
	if err != nil {
		return w.fail(err)
	}
	if w.cache.Set(ctx, "analytics", "weekly_stats", weekly, 3600*time.Second) {
		warmed++
		categories["analytics"]++
	}
	if w.cache.Set(ctx, "analytics", "monthly_stats", monthly, 7200*time.Second) {
		warmed++
		categories["analytics"]++
	}

	w.log.WithFields(logrus.Fields{
		"warmed":     warmed,
		"categories": categories,
	}).Info("cache warming completed")

	return WarmResult{Success: true, WarmedCount: warmed, Categories: categories}
}

func (w *Warmer) periodStats(ctx context.Context, period string, since time.Time) (periodStats, error) {
	blogs, err := w.source.CountBlogs(ctx, models.StatusPublished, since)
	if err != nil {
		return periodStats{}, err
	}
	users, err := w.source.CountUsers(ctx, since)
	if err != nil {
		return periodStats{}, err
	}
	return periodStats{TotalBlogs: blogs, TotalUsers: users, Period: period}, nil
}

func (w *Warmer) fail(err error) WarmResult {
	w.log.WithError(err).Error("cache warming error")
	return WarmResult{Success: false, Error: err.Error()}
}

// Schedule re-runs warming at the given interval until Stop. Starting a new
// schedule cancels the previous one; the timer is purely in-process.
func (w *Warmer) Schedule(interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stop != nil {
		close(w.stop)
	}
	stop := make(chan struct{})
	w.stop = stop

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				result := w.WarmCache(context.Background())
				if result.Success {
					w.log.WithField("warmed", result.WarmedCount).Info("scheduled cache warming completed")
				} else {
					w.log.WithField("error", result.Error).Error("scheduled cache warming failed")
				}
			case <-stop:
				return
			}
		}
	}()

	w.log.WithField("interval", interval).Info("automatic cache warming scheduled")
}

// Stop cancels the active warming schedule, if any.
func (w *Warmer) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stop != nil {
		close(w.stop)
		w.stop = nil
		w.log.Info("automatic cache warming stopped")
	}
}
