package repository

import (
	"context"

	"github.com/yamdb/yamdb/internal/models"
	"gorm.io/gorm"
)

type GenreRepository struct {
	db *gorm.DB
}

func NewGenreRepository(db *gorm.DB) *GenreRepository {
	return &GenreRepository{db: db}
}

func (r *GenreRepository) Create(ctx context.Context, genre *models.Genre) error {
	return translate(r.db.WithContext(ctx).Create(genre).Error)
}

func (r *GenreRepository) GetBySlug(ctx context.Context, slug string) (*models.Genre, error) {
	return first[models.Genre](r.db.WithContext(ctx).Where("slug = ?", slug))
}

// GetBySlugs returns the genres matching slugs. Unknown slugs are simply
// absent from the result.
func (r *GenreRepository) GetBySlugs(ctx context.Context, slugs []string) ([]models.Genre, error) {
	if len(slugs) == 0 {
		return nil, nil
	}
	var genres []models.Genre
	err := r.db.WithContext(ctx).Where("slug IN ?", slugs).Order("name").Find(&genres).Error
	return genres, err
}

func (r *GenreRepository) List(ctx context.Context, search string, page Page) ([]models.Genre, int64, error) {
	return listNamed[models.Genre](r.db.WithContext(ctx), search, page)
}

// DeleteBySlug removes the genre from every title and then deletes it.
func (r *GenreRepository) DeleteBySlug(ctx context.Context, slug string) (bool, error) {
	var deleted bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		genre, err := first[models.Genre](tx.Where("slug = ?", slug))
		if err != nil || genre == nil {
			return err
		}
		if err := tx.Exec("DELETE FROM genre_titles WHERE genre_id = ?", genre.ID).Error; err != nil {
			return err
		}
		if err := tx.Delete(genre).Error; err != nil {
			return err
		}
		deleted = true
		return nil
	})
	return deleted, err
}
