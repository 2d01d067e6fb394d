package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yamdb/yamdb/internal/apperrors"
	"github.com/yamdb/yamdb/internal/middleware"
	"github.com/yamdb/yamdb/internal/service"
)

type ReviewHandler struct {
	reviews    *service.ReviewService
	pagination Pagination
}

func NewReviewHandler(reviews *service.ReviewService, pagination Pagination) *ReviewHandler {
	return &ReviewHandler{reviews: reviews, pagination: pagination}
}

// GET /api/v1/titles/:title_id/reviews
func (h *ReviewHandler) List(c *gin.Context) {
	titleID, ok := pathID(c, "title_id", "title")
	if !ok {
		return
	}
	page := h.pagination.page(c)
	reviews, total, err := h.reviews.List(c.Request.Context(), titleID, page)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, paginate(c, page, total, mapSlice(reviews, newReviewResponse)))
}

// GET /api/v1/titles/:title_id/reviews/:review_id
func (h *ReviewHandler) Get(c *gin.Context) {
	titleID, reviewID, ok := reviewPath(c)
	if !ok {
		return
	}
	review, err := h.reviews.Get(c.Request.Context(), titleID, reviewID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newReviewResponse(review))
}

// POST /api/v1/titles/:title_id/reviews
func (h *ReviewHandler) Create(c *gin.Context) {
	titleID, ok := pathID(c, "title_id", "title")
	if !ok {
		return
	}
	var req ReviewRequest
	if !bindJSON(c, &req) {
		return
	}

	missing := map[string]string{}
	if req.Text == nil {
		missing["text"] = "this field is required"
	}
	if req.Score == nil {
		missing["score"] = "this field is required"
	}
	if len(missing) > 0 {
		respondError(c, apperrors.Validation("validation failed", missing))
		return
	}

	review, err := h.reviews.Create(c.Request.Context(), middleware.CurrentUser(c), titleID, *req.Text, *req.Score)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newReviewResponse(review))
}

// PATCH /api/v1/titles/:title_id/reviews/:review_id
func (h *ReviewHandler) Update(c *gin.Context) {
	titleID, reviewID, ok := reviewPath(c)
	if !ok {
		return
	}
	var req ReviewRequest
	if !bindJSON(c, &req) {
		return
	}
	review, err := h.reviews.Update(c.Request.Context(), middleware.CurrentUser(c), titleID, reviewID, req.Text, req.Score)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newReviewResponse(review))
}

// DELETE /api/v1/titles/:title_id/reviews/:review_id
func (h *ReviewHandler) Delete(c *gin.Context) {
	titleID, reviewID, ok := reviewPath(c)
	if !ok {
		return
	}
	if err := h.reviews.Delete(c.Request.Context(), middleware.CurrentUser(c), titleID, reviewID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func reviewPath(c *gin.Context) (titleID, reviewID int64, ok bool) {
	if titleID, ok = pathID(c, "title_id", "title"); !ok {
		return
	}
	reviewID, ok = pathID(c, "review_id", "review")
	return
}
