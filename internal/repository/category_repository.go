package repository

import (
	"context"

	"github.com/yamdb/yamdb/internal/models"
	"gorm.io/gorm"
)

type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) Create(ctx context.Context, category *models.Category) error {
	return translate(r.db.WithContext(ctx).Create(category).Error)
}

func (r *CategoryRepository) GetBySlug(ctx context.Context, slug string) (*models.Category, error) {
	return first[models.Category](r.db.WithContext(ctx).Where("slug = ?", slug))
}

func (r *CategoryRepository) List(ctx context.Context, search string, page Page) ([]models.Category, int64, error) {
	return listNamed[models.Category](r.db.WithContext(ctx), search, page)
}

// DeleteBySlug removes the category; titles in it become uncategorized.
func (r *CategoryRepository) DeleteBySlug(ctx context.Context, slug string) (bool, error) {
	var deleted bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		category, err := first[models.Category](tx.Where("slug = ?", slug))
		if err != nil || category == nil {
			return err
		}
		if err := tx.Model(&models.Title{}).Where("category_id = ?", category.ID).
			Update("category_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Delete(category).Error; err != nil {
			return err
		}
		deleted = true
		return nil
	})
	return deleted, err
}

// listNamed lists a slugged lookup table ordered by name with an optional
// case-insensitive name filter.
func listNamed[T any](db *gorm.DB, search string, page Page) ([]T, int64, error) {
	scope := func(q *gorm.DB) *gorm.DB {
		if search != "" {
			q = q.Where("LOWER(name) LIKE ?", containsPattern(search))
		}
		return q
	}

	var total int64
	if err := db.Model(new(T)).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []T
	if err := page.apply(db.Scopes(scope).Order("name").Order("id")).Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}
