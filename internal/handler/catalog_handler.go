package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yamdb/yamdb/internal/middleware"
	"github.com/yamdb/yamdb/internal/models"
	"github.com/yamdb/yamdb/internal/service"
)

// CatalogHandler serves categories and genres.
type CatalogHandler struct {
	catalog    *service.CatalogService
	pagination Pagination
}

func NewCatalogHandler(catalog *service.CatalogService, pagination Pagination) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, pagination: pagination}
}

// GET /api/v1/categories
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	page := h.pagination.page(c)
	items, total, err := h.catalog.ListCategories(c.Request.Context(), c.Query("search"), page)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, paginate(c, page, total, mapSlice(items, categoryResponse)))
}

// POST /api/v1/categories
func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	var req TagRequest
	if !bindJSON(c, &req) {
		return
	}
	category, err := h.catalog.CreateCategory(c.Request.Context(), middleware.CurrentUser(c), req.Name, req.Slug)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, categoryResponse(category))
}

// DELETE /api/v1/categories/:slug
func (h *CatalogHandler) DeleteCategory(c *gin.Context) {
	if err := h.catalog.DeleteCategory(c.Request.Context(), middleware.CurrentUser(c), c.Param("slug")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GET /api/v1/genres
func (h *CatalogHandler) ListGenres(c *gin.Context) {
	page := h.pagination.page(c)
	items, total, err := h.catalog.ListGenres(c.Request.Context(), c.Query("search"), page)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, paginate(c, page, total, mapSlice(items, genreResponse)))
}

// POST /api/v1/genres
func (h *CatalogHandler) CreateGenre(c *gin.Context) {
	var req TagRequest
	if !bindJSON(c, &req) {
		return
	}
	genre, err := h.catalog.CreateGenre(c.Request.Context(), middleware.CurrentUser(c), req.Name, req.Slug)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, genreResponse(genre))
}

// DELETE /api/v1/genres/:slug
func (h *CatalogHandler) DeleteGenre(c *gin.Context) {
	if err := h.catalog.DeleteGenre(c.Request.Context(), middleware.CurrentUser(c), c.Param("slug")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func categoryResponse(c *models.Category) TagResponse {
	return TagResponse{Name: c.Name, Slug: c.Slug}
}

func genreResponse(g *models.Genre) TagResponse {
	return TagResponse{Name: g.Name, Slug: g.Slug}
}
