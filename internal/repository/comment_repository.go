package repository

import (
	"context"

	"github.com/yamdb/yamdb/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CommentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

func (r *CommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(comment).Error
}

// Get returns the comment only if it belongs to reviewID.
func (r *CommentRepository) Get(ctx context.Context, reviewID, commentID int64) (*models.Comment, error) {
	return first[models.Comment](r.db.WithContext(ctx).
		Preload("Author").
		Where("id = ? AND review_id = ?", commentID, reviewID))
}

func (r *CommentRepository) ListByReview(ctx context.Context, reviewID int64, page Page) ([]models.Comment, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Comment{}).Where("review_id = ?", reviewID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var comments []models.Comment
	q := r.db.WithContext(ctx).
		Preload("Author").
		Where("review_id = ?", reviewID).
		Order("pub_date DESC").Order("id DESC")
	if err := page.apply(q).Find(&comments).Error; err != nil {
		return nil, 0, err
	}
	return comments, total, nil
}

func (r *CommentRepository) Update(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Model(comment).Select("Text").Updates(comment).Error
}

func (r *CommentRepository) Delete(ctx context.Context, commentID int64) error {
	return r.db.WithContext(ctx).Where("id = ?", commentID).Delete(&models.Comment{}).Error
}
