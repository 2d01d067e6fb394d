package service

import (
	"context"
	"strconv"
	"time"

	"github.com/yamdb/yamdb/internal/apperrors"
	"github.com/yamdb/yamdb/internal/models"
	"github.com/yamdb/yamdb/internal/permission"
	"github.com/yamdb/yamdb/internal/repository"
	"github.com/yamdb/yamdb/pkg/logger"
	"go.uber.org/zap"
)

// RatedTitle is a title with its derived rating; Rating is nil when the
// title has no reviews.
type RatedTitle struct {
	models.Title
	Rating *float64
}

// TitleInput carries title fields; nil means "leave unchanged". Category and
// Genres hold slugs. An empty Category clears it.
type TitleInput struct {
	Name        *string
	Year        *int
	Description *string
	Category    *string
	Genres      *[]string
}

type TitleService struct {
	titles     *repository.TitleRepository
	categories *repository.CategoryRepository
	genres     *repository.GenreRepository
	ratings    *RatingService
	now        func() time.Time
}

func NewTitleService(titles *repository.TitleRepository, categories *repository.CategoryRepository, genres *repository.GenreRepository, ratings *RatingService) *TitleService {
	return &TitleService{
		titles:     titles,
		categories: categories,
		genres:     genres,
		ratings:    ratings,
		now:        time.Now,
	}
}

func (s *TitleService) List(ctx context.Context, filter repository.TitleFilter, page repository.Page) ([]RatedTitle, int64, error) {
	titles, total, err := s.titles.List(ctx, filter, page)
	if err != nil {
		return nil, 0, logFailure("Failed to list titles", err)
	}

	ids := make([]int64, len(titles))
	for i := range titles {
		ids[i] = titles[i].ID
	}
	ratings, err := s.ratings.Ratings(ctx, ids)
	if err != nil {
		return nil, 0, err
	}

	out := make([]RatedTitle, len(titles))
	for i, t := range titles {
		out[i] = RatedTitle{Title: t}
		if avg, ok := ratings[t.ID]; ok {
			out[i].Rating = &avg
		}
	}
	return out, total, nil
}

func (s *TitleService) Get(ctx context.Context, id int64) (*RatedTitle, error) {
	title, err := s.titles.GetByID(ctx, id)
	if err != nil {
		return nil, logFailure("Failed to load title", err, zap.Int64("title_id", id))
	}
	if title == nil {
		return nil, apperrors.NotFound("title")
	}

	rating, err := s.ratings.Rating(ctx, id)
	if err != nil {
		return nil, err
	}
	return &RatedTitle{Title: *title, Rating: rating}, nil
}

func (s *TitleService) Create(ctx context.Context, caller *models.User, in TitleInput) (*RatedTitle, error) {
	if err := permission.Require(caller, permission.Create, permission.Title, nil); err != nil {
		return nil, err
	}

	errs := fieldErrors{}
	if in.Name == nil {
		errs.add("name", "this field is required")
	}
	if in.Year == nil {
		errs.add("year", "this field is required")
	}

	title := &models.Title{}
	genres, err := s.apply(ctx, errs, title, in)
	if err != nil {
		return nil, err
	}
	if err := errs.err(); err != nil {
		return nil, err
	}

	var linked []models.Genre
	if genres != nil {
		linked = *genres
	}
	if err := s.titles.Create(ctx, title, linked); err != nil {
		return nil, logFailure("Failed to create title", err, zap.String("name", title.Name))
	}

	logger.Log.Info("Title created",
		zap.Int64("title_id", title.ID),
		zap.String("name", title.Name),
		zap.String("created_by", caller.Username),
	)
	return s.Get(ctx, title.ID)
}

func (s *TitleService) Update(ctx context.Context, caller *models.User, id int64, in TitleInput) (*RatedTitle, error) {
	if err := permission.Require(caller, permission.Modify, permission.Title, nil); err != nil {
		return nil, err
	}

	title, err := s.titles.GetByID(ctx, id)
	if err != nil {
		return nil, logFailure("Failed to load title", err, zap.Int64("title_id", id))
	}
	if title == nil {
		return nil, apperrors.NotFound("title")
	}

	errs := fieldErrors{}
	genres, err := s.apply(ctx, errs, title, in)
	if err != nil {
		return nil, err
	}
	if err := errs.err(); err != nil {
		return nil, err
	}

	if err := s.titles.Update(ctx, title, genres); err != nil {
		return nil, logFailure("Failed to update title", err, zap.Int64("title_id", id))
	}

	logger.Log.Info("Title updated", zap.Int64("title_id", id), zap.String("updated_by", caller.Username))
	return s.Get(ctx, id)
}

func (s *TitleService) Delete(ctx context.Context, caller *models.User, id int64) error {
	if err := permission.Require(caller, permission.Modify, permission.Title, nil); err != nil {
		return err
	}

	deleted, err := s.titles.Delete(ctx, id)
	if err != nil {
		return logFailure("Failed to delete title", err, zap.Int64("title_id", id))
	}
	if !deleted {
		return apperrors.NotFound("title")
	}

	logger.Log.Info("Title deleted", zap.Int64("title_id", id), zap.String("deleted_by", caller.Username))
	return nil
}

// apply validates in, resolves slugs, and copies the set fields onto title.
// The returned genres are nil when in.Genres is nil.
func (s *TitleService) apply(ctx context.Context, errs fieldErrors, title *models.Title, in TitleInput) (*[]models.Genre, error) {
	if in.Name != nil {
		if *in.Name == "" {
			errs.add("name", "this field may not be blank")
		}
		validateMaxLen(errs, "name", *in.Name, maxTitleLen)
		title.Name = *in.Name
	}
	if in.Year != nil {
		if current := s.now().Year(); *in.Year > current {
			errs.add("year", "release year cannot be later than "+strconv.Itoa(current))
		}
		title.Year = *in.Year
	}
	if in.Description != nil {
		title.Description = *in.Description
	}

	if in.Category != nil {
		if *in.Category == "" {
			title.CategoryID = nil
			title.Category = nil
		} else {
			category, err := s.categories.GetBySlug(ctx, *in.Category)
			if err != nil {
				return nil, logFailure("Failed to resolve category", err)
			}
			if category == nil {
				errs.add("category", `unknown category "`+*in.Category+`"`)
			} else {
				title.CategoryID = &category.ID
				title.Category = category
			}
		}
	}

	if in.Genres == nil {
		return nil, nil
	}
	slugs := dedupe(*in.Genres)
	genres, err := s.genres.GetBySlugs(ctx, slugs)
	if err != nil {
		return nil, logFailure("Failed to resolve genres", err)
	}
	if len(genres) != len(slugs) {
		known := make(map[string]bool, len(genres))
		for _, g := range genres {
			known[g.Slug] = true
		}
		for _, slug := range slugs {
			if !known[slug] {
				errs.add("genre", `unknown genre "`+slug+`"`)
				break
			}
		}
	}
	return &genres, nil
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
