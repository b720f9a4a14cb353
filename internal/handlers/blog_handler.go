package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/dhushyanth-h-m/blog-api/internal/database"
	"github.com/dhushyanth-h-m/blog-api/internal/middleware"
	"github.com/dhushyanth-h-m/blog-api/internal/models"
	"github.com/dhushyanth-h-m/blog-api/internal/services"
)

// BlogHandler handles blog CRUD and search endpoints. Write endpoints
// invalidate the response cache for the affected routes after the
// mutation succeeds.
type BlogHandler struct {
	blogs       *services.BlogService
	invalidator *middleware.Invalidator
	log         *logrus.Logger
}

// NewBlogHandler creates a new blog handler.
func NewBlogHandler(blogs *services.BlogService, invalidator *middleware.Invalidator, log *logrus.Logger) *BlogHandler {
	return &BlogHandler{blogs: blogs, invalidator: invalidator, log: log}
}

// List handles GET /api/blogs.
func (h *BlogHandler) List(c *gin.Context) {
	filters := models.BlogFilters{
		Status: c.DefaultQuery("status", models.StatusPublished),
		Page:   queryInt(c, "page", 1),
		Limit:  queryInt(c, "limit", 10),
	}

	list, err := h.blogs.List(c.Request.Context(), filters)
	if err != nil {
		h.log.WithError(err).Error("blog list failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": list.Data, "pagination": list.Pagination})
}

// Get handles GET /api/blogs/:id.
func (h *BlogHandler) Get(c *gin.Context) {
	blog, err := h.blogs.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "blog not found"})
			return
		}
		h.log.WithError(err).Error("blog lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": blog})
}

// Search handles GET /api/blogs/search?q=term.
func (h *BlogHandler) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "query parameter q is required"})
		return
	}

	results, err := h.blogs.Search(c.Request.Context(), query, queryInt(c, "limit", 10))
	if err != nil {
		h.log.WithError(err).Error("blog search failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": results})
}

// Create handles POST /api/blogs.
func (h *BlogHandler) Create(c *gin.Context) {
	var req services.CreateBlogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	authorID := c.GetString(middleware.ContextUserID)
	blog, err := h.blogs.Create(c.Request.Context(), authorID, &req)
	if err != nil {
		h.log.WithError(err).Error("blog create failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "server error"})
		return
	}

	h.invalidator.InvalidateBlogList(c.Request.Context())

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": blog})
}

// Update handles PUT /api/blogs/:id.
func (h *BlogHandler) Update(c *gin.Context) {
	var req services.UpdateBlogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	id := c.Param("id")
	blog, err := h.blogs.Update(c.Request.Context(), id, &req)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "blog not found"})
			return
		}
		h.log.WithError(err).Error("blog update failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "server error"})
		return
	}

	h.invalidator.InvalidateBlog(c.Request.Context(), id)
	h.invalidator.InvalidateBlogList(c.Request.Context())

	c.JSON(http.StatusOK, gin.H{"success": true, "data": blog})
}

// Delete handles DELETE /api/blogs/:id.
func (h *BlogHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.blogs.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "blog not found"})
			return
		}
		h.log.WithError(err).Error("blog delete failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "server error"})
		return
	}

	h.invalidator.InvalidateBlog(c.Request.Context(), id)
	h.invalidator.InvalidateBlogList(c.Request.Context())

	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{}})
}

func queryInt(c *gin.Context, key string, fallback int) int {
	if value := c.Query(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			return parsed
		}
	}
	return fallback
}
