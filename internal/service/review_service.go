package service

import (
	"context"
	"errors"

	"github.com/yamdb/yamdb/internal/apperrors"
	"github.com/yamdb/yamdb/internal/models"
	"github.com/yamdb/yamdb/internal/permission"
	"github.com/yamdb/yamdb/internal/repository"
	"github.com/yamdb/yamdb/pkg/logger"
	"go.uber.org/zap"
)

type ReviewService struct {
	reviews *repository.ReviewRepository
	titles  *repository.TitleRepository
}

func NewReviewService(reviews *repository.ReviewRepository, titles *repository.TitleRepository) *ReviewService {
	return &ReviewService{reviews: reviews, titles: titles}
}

func (s *ReviewService) List(ctx context.Context, titleID int64, page repository.Page) ([]models.Review, int64, error) {
	if err := s.requireTitle(ctx, titleID); err != nil {
		return nil, 0, err
	}
	reviews, total, err := s.reviews.ListByTitle(ctx, titleID, page)
	if err != nil {
		return nil, 0, logFailure("Failed to list reviews", err, zap.Int64("title_id", titleID))
	}
	return reviews, total, nil
}

func (s *ReviewService) Get(ctx context.Context, titleID, reviewID int64) (*models.Review, error) {
	review, err := s.reviews.Get(ctx, titleID, reviewID)
	if err != nil {
		return nil, logFailure("Failed to load review", err, zap.Int64("review_id", reviewID))
	}
	if review == nil {
		return nil, apperrors.NotFound("review")
	}
	return review, nil
}

// Create adds the caller's review of a title. Each author may review a title
// once; a second attempt is a conflict and leaves the first review intact.
func (s *ReviewService) Create(ctx context.Context, caller *models.User, titleID int64, text string, score int) (*models.Review, error) {
	if err := permission.Require(caller, permission.Create, permission.Review, nil); err != nil {
		return nil, err
	}
	if err := s.requireTitle(ctx, titleID); err != nil {
		return nil, err
	}

	errs := fieldErrors{}
	if text == "" {
		errs.add("text", "this field is required")
	}
	validateScore(errs, score)
	if err := errs.err(); err != nil {
		return nil, err
	}

	review := &models.Review{TitleID: titleID, AuthorID: caller.ID, Text: text, Score: score}
	if err := s.reviews.Create(ctx, review); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			err = apperrors.Conflict("title", "you have already reviewed this title")
		}
		return nil, logFailure("Failed to create review", err,
			zap.Int64("title_id", titleID),
			zap.String("author", caller.Username),
		)
	}
	review.Author = *caller

	logger.Log.Info("Review created",
		zap.Int64("review_id", review.ID),
		zap.Int64("title_id", titleID),
		zap.String("author", caller.Username),
		zap.Int("score", score),
	)
	return review, nil
}

func (s *ReviewService) Update(ctx context.Context, caller *models.User, titleID, reviewID int64, text *string, score *int) (*models.Review, error) {
	review, err := s.Get(ctx, titleID, reviewID)
	if err != nil {
		return nil, err
	}
	if err := permission.Require(caller, permission.Modify, permission.Review, &review.AuthorID); err != nil {
		return nil, err
	}

	errs := fieldErrors{}
	if text != nil {
		if *text == "" {
			errs.add("text", "this field may not be blank")
		}
		review.Text = *text
	}
	if score != nil {
		validateScore(errs, *score)
		review.Score = *score
	}
	if err := errs.err(); err != nil {
		return nil, err
	}

	if err := s.reviews.Update(ctx, review); err != nil {
		return nil, logFailure("Failed to update review", err, zap.Int64("review_id", reviewID))
	}

	logger.Log.Info("Review updated", zap.Int64("review_id", reviewID), zap.String("updated_by", caller.Username))
	return review, nil
}

// Delete removes the review and every comment on it.
func (s *ReviewService) Delete(ctx context.Context, caller *models.User, titleID, reviewID int64) error {
	review, err := s.Get(ctx, titleID, reviewID)
	if err != nil {
		return err
	}
	if err := permission.Require(caller, permission.Modify, permission.Review, &review.AuthorID); err != nil {
		return err
	}

	if err := s.reviews.Delete(ctx, reviewID); err != nil {
		return logFailure("Failed to delete review", err, zap.Int64("review_id", reviewID))
	}

	logger.Log.Info("Review deleted", zap.Int64("review_id", reviewID), zap.String("deleted_by", caller.Username))
	return nil
}

func (s *ReviewService) requireTitle(ctx context.Context, titleID int64) error {
	exists, err := s.titles.Exists(ctx, titleID)
	if err != nil {
		return logFailure("Failed to load title", err, zap.Int64("title_id", titleID))
	}
	if !exists {
		return apperrors.NotFound("title")
	}
	return nil
}
