package service

import (
	"context"

	"github.com/yamdb/yamdb/internal/repository"
)

// RatingService computes title ratings from the live review table on every
// call. A title without reviews has no rating, never zero.
type RatingService struct {
	reviews *repository.ReviewRepository
}

func NewRatingService(reviews *repository.ReviewRepository) *RatingService {
	return &RatingService{reviews: reviews}
}

func (s *RatingService) Rating(ctx context.Context, titleID int64) (*float64, error) {
	ratings, err := s.Ratings(ctx, []int64{titleID})
	if err != nil {
		return nil, err
	}
	avg, ok := ratings[titleID]
	if !ok {
		return nil, nil
	}
	return &avg, nil
}

// Ratings returns the mean score for each of titleIDs in one query. Titles
// without reviews are absent from the map.
func (s *RatingService) Ratings(ctx context.Context, titleIDs []int64) (map[int64]float64, error) {
	ratings, err := s.reviews.AverageScores(ctx, titleIDs)
	if err != nil {
		return nil, logFailure("Failed to compute ratings", err)
	}
	return ratings, nil
}
