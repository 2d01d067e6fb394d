package repository

import (
	"context"

	"github.com/yamdb/yamdb/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// Create inserts review. A second review by the same author on the same title
// fails with ErrDuplicate.
func (r *ReviewRepository) Create(ctx context.Context, review *models.Review) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(review).Error)
}

// Get returns the review only if it belongs to titleID.
func (r *ReviewRepository) Get(ctx context.Context, titleID, reviewID int64) (*models.Review, error) {
	return first[models.Review](r.db.WithContext(ctx).
		Preload("Author").
		Where("id = ? AND title_id = ?", reviewID, titleID))
}

// ListByTitle returns reviews newest first.
func (r *ReviewRepository) ListByTitle(ctx context.Context, titleID int64, page Page) ([]models.Review, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Review{}).Where("title_id = ?", titleID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var reviews []models.Review
	q := r.db.WithContext(ctx).
		Preload("Author").
		Where("title_id = ?", titleID).
		Order("pub_date DESC").Order("id DESC")
	if err := page.apply(q).Find(&reviews).Error; err != nil {
		return nil, 0, err
	}
	return reviews, total, nil
}

// Update writes text and score. Title and author never change.
func (r *ReviewRepository) Update(ctx context.Context, review *models.Review) error {
	return r.db.WithContext(ctx).Model(review).Select("Text", "Score").Updates(review).Error
}

// Delete removes the review and its comments.
func (r *ReviewRepository) Delete(ctx context.Context, reviewID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("review_id = ?", reviewID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", reviewID).Delete(&models.Review{}).Error
	})
}

// AverageScores returns the mean score per title for titleIDs. Titles without
// reviews are absent from the map.
func (r *ReviewRepository) AverageScores(ctx context.Context, titleIDs []int64) (map[int64]float64, error) {
	out := make(map[int64]float64, len(titleIDs))
	if len(titleIDs) == 0 {
		return out, nil
	}

	var rows []struct {
		TitleID int64
		Average float64
	}
	err := r.db.WithContext(ctx).Model(&models.Review{}).
		Select("title_id, CAST(AVG(score) AS DOUBLE PRECISION) AS average").
		Where("title_id IN ?", titleIDs).
		Group("title_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		out[row.TitleID] = row.Average
	}
	return out, nil
}
