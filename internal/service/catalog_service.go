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

// CatalogService manages the category and genre lookup tables.
type CatalogService struct {
	categories *repository.CategoryRepository
	genres     *repository.GenreRepository
}

func NewCatalogService(categories *repository.CategoryRepository, genres *repository.GenreRepository) *CatalogService {
	return &CatalogService{categories: categories, genres: genres}
}

func (s *CatalogService) ListCategories(ctx context.Context, search string, page repository.Page) ([]models.Category, int64, error) {
	items, total, err := s.categories.List(ctx, search, page)
	if err != nil {
		return nil, 0, logFailure("Failed to list categories", err)
	}
	return items, total, nil
}

func (s *CatalogService) CreateCategory(ctx context.Context, caller *models.User, name, slug string) (*models.Category, error) {
	if err := permission.Require(caller, permission.Create, permission.Category, nil); err != nil {
		return nil, err
	}
	if err := validateTag(name, slug); err != nil {
		return nil, err
	}

	category := &models.Category{Name: name, Slug: slug}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, logFailure("Failed to create category", slugConflict(err), zap.String("slug", slug))
	}

	logger.Log.Info("Category created", zap.String("slug", slug), zap.String("created_by", caller.Username))
	return category, nil
}

func (s *CatalogService) DeleteCategory(ctx context.Context, caller *models.User, slug string) error {
	if err := permission.Require(caller, permission.Modify, permission.Category, nil); err != nil {
		return err
	}
	deleted, err := s.categories.DeleteBySlug(ctx, slug)
	if err != nil {
		return logFailure("Failed to delete category", err, zap.String("slug", slug))
	}
	if !deleted {
		return apperrors.NotFound("category")
	}

	logger.Log.Info("Category deleted", zap.String("slug", slug), zap.String("deleted_by", caller.Username))
	return nil
}

func (s *CatalogService) ListGenres(ctx context.Context, search string, page repository.Page) ([]models.Genre, int64, error) {
	items, total, err := s.genres.List(ctx, search, page)
	if err != nil {
		return nil, 0, logFailure("Failed to list genres", err)
	}
	return items, total, nil
}

func (s *CatalogService) CreateGenre(ctx context.Context, caller *models.User, name, slug string) (*models.Genre, error) {
	if err := permission.Require(caller, permission.Create, permission.Genre, nil); err != nil {
		return nil, err
	}
	if err := validateTag(name, slug); err != nil {
		return nil, err
	}

	genre := &models.Genre{Name: name, Slug: slug}
	if err := s.genres.Create(ctx, genre); err != nil {
		return nil, logFailure("Failed to create genre", slugConflict(err), zap.String("slug", slug))
	}

	logger.Log.Info("Genre created", zap.String("slug", slug), zap.String("created_by", caller.Username))
	return genre, nil
}

func (s *CatalogService) DeleteGenre(ctx context.Context, caller *models.User, slug string) error {
	if err := permission.Require(caller, permission.Modify, permission.Genre, nil); err != nil {
		return err
	}
	deleted, err := s.genres.DeleteBySlug(ctx, slug)
	if err != nil {
		return logFailure("Failed to delete genre", err, zap.String("slug", slug))
	}
	if !deleted {
		return apperrors.NotFound("genre")
	}

	logger.Log.Info("Genre deleted", zap.String("slug", slug), zap.String("deleted_by", caller.Username))
	return nil
}

func validateTag(name, slug string) error {
	errs := fieldErrors{}
	if name == "" {
		errs.add("name", "this field is required")
	}
	validateMaxLen(errs, "name", name, maxTagNameLen)
	validateSlug(errs, slug)
	return errs.err()
}

func slugConflict(err error) error {
	if errors.Is(err, repository.ErrDuplicate) {
		return apperrors.Conflict("slug", "this slug is already in use")
	}
	return err
}
