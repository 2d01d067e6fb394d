package service

import (
	"context"

	"github.com/yamdb/yamdb/internal/apperrors"
	"github.com/yamdb/yamdb/internal/models"
	"github.com/yamdb/yamdb/internal/permission"
	"github.com/yamdb/yamdb/internal/repository"
	"github.com/yamdb/yamdb/pkg/logger"
	"go.uber.org/zap"
)

// CommentService manages comments; every call is scoped to a review of a
// title and fails with NotFound when that pair does not exist.
type CommentService struct {
	comments *repository.CommentRepository
	reviews  *ReviewService
}

func NewCommentService(comments *repository.CommentRepository, reviews *ReviewService) *CommentService {
	return &CommentService{comments: comments, reviews: reviews}
}

func (s *CommentService) List(ctx context.Context, titleID, reviewID int64, page repository.Page) ([]models.Comment, int64, error) {
	if _, err := s.reviews.Get(ctx, titleID, reviewID); err != nil {
		return nil, 0, err
	}
	comments, total, err := s.comments.ListByReview(ctx, reviewID, page)
	if err != nil {
		return nil, 0, logFailure("Failed to list comments", err, zap.Int64("review_id", reviewID))
	}
	return comments, total, nil
}

func (s *CommentService) Get(ctx context.Context, titleID, reviewID, commentID int64) (*models.Comment, error) {
	if _, err := s.reviews.Get(ctx, titleID, reviewID); err != nil {
		return nil, err
	}
	comment, err := s.comments.Get(ctx, reviewID, commentID)
	if err != nil {
		return nil, logFailure("Failed to load comment", err, zap.Int64("comment_id", commentID))
	}
	if comment == nil {
		return nil, apperrors.NotFound("comment")
	}
	return comment, nil
}

func (s *CommentService) Create(ctx context.Context, caller *models.User, titleID, reviewID int64, text string) (*models.Comment, error) {
	if err := permission.Require(caller, permission.Create, permission.Comment, nil); err != nil {
		return nil, err
	}
	if _, err := s.reviews.Get(ctx, titleID, reviewID); err != nil {
		return nil, err
	}
	if text == "" {
		return nil, apperrors.Field("text", "this field is required")
	}

	comment := &models.Comment{ReviewID: reviewID, AuthorID: caller.ID, Text: text}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, logFailure("Failed to create comment", err, zap.Int64("review_id", reviewID))
	}
	comment.Author = *caller

	logger.Log.Info("Comment created",
		zap.Int64("comment_id", comment.ID),
		zap.Int64("review_id", reviewID),
		zap.String("author", caller.Username),
	)
	return comment, nil
}

func (s *CommentService) Update(ctx context.Context, caller *models.User, titleID, reviewID, commentID int64, text *string) (*models.Comment, error) {
	comment, err := s.Get(ctx, titleID, reviewID, commentID)
	if err != nil {
		return nil, err
	}
	if err := permission.Require(caller, permission.Modify, permission.Comment, &comment.AuthorID); err != nil {
		return nil, err
	}

	if text != nil {
		if *text == "" {
			return nil, apperrors.Field("text", "this field may not be blank")
		}
		comment.Text = *text
	}

	if err := s.comments.Update(ctx, comment); err != nil {
		return nil, logFailure("Failed to update comment", err, zap.Int64("comment_id", commentID))
	}

	logger.Log.Info("Comment updated", zap.Int64("comment_id", commentID), zap.String("updated_by", caller.Username))
	return comment, nil
}

func (s *CommentService) Delete(ctx context.Context, caller *models.User, titleID, reviewID, commentID int64) error {
	comment, err := s.Get(ctx, titleID, reviewID, commentID)
	if err != nil {
		return err
	}
	if err := permission.Require(caller, permission.Modify, permission.Comment, &comment.AuthorID); err != nil {
		return err
	}

	if err := s.comments.Delete(ctx, commentID); err != nil {
		return logFailure("Failed to delete comment", err, zap.Int64("comment_id", commentID))
	}

	logger.Log.Info("Comment deleted", zap.Int64("comment_id", commentID), zap.String("deleted_by", caller.Username))
	return nil
}
