package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yamdb/yamdb/internal/apperrors"
	"github.com/yamdb/yamdb/internal/middleware"
	"github.com/yamdb/yamdb/internal/repository"
	"github.com/yamdb/yamdb/internal/service"
)

type TitleHandler struct {
	titles     *service.TitleService
	pagination Pagination
}

func NewTitleHandler(titles *service.TitleService, pagination Pagination) *TitleHandler {
	return &TitleHandler{titles: titles, pagination: pagination}
}

// List supports ?category=<slug>, ?genre=<slug>, ?name=<substring>, ?year=<n>.
// GET /api/v1/titles
func (h *TitleHandler) List(c *gin.Context) {
	filter := repository.TitleFilter{
		Category: c.Query("category"),
		Genre:    c.Query("genre"),
		Name:     c.Query("name"),
	}
	if raw := c.Query("year"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			respondError(c, apperrors.Field("year", "enter a whole number"))
			return
		}
		filter.Year = &year
	}

	page := h.pagination.page(c)
	titles, total, err := h.titles.List(c.Request.Context(), filter, page)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, paginate(c, page, total, mapSlice(titles, newTitleResponse)))
}

// GET /api/v1/titles/:title_id
func (h *TitleHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "title_id", "title")
	if !ok {
		return
	}
	title, err := h.titles.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newTitleResponse(title))
}

// POST /api/v1/titles
func (h *TitleHandler) Create(c *gin.Context) {
	var req TitleRequest
	if !bindJSON(c, &req) {
		return
	}
	title, err := h.titles.Create(c.Request.Context(), middleware.CurrentUser(c), req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newTitleResponse(title))
}

// PATCH /api/v1/titles/:title_id
func (h *TitleHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "title_id", "title")
	if !ok {
		return
	}
	var req TitleRequest
	if !bindJSON(c, &req) {
		return
	}
	title, err := h.titles.Update(c.Request.Context(), middleware.CurrentUser(c), id, req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newTitleResponse(title))
}

// DELETE /api/v1/titles/:title_id
func (h *TitleHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "title_id", "title")
	if !ok {
		return
	}
	if err := h.titles.Delete(c.Request.Context(), middleware.CurrentUser(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
