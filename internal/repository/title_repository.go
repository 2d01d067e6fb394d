package repository

import (
	"context"

	"github.com/yamdb/yamdb/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TitleFilter narrows title listings. Zero values mean "no filter".
type TitleFilter struct {
	Category string // case-insensitive substring of the category slug
	Genre    string // case-insensitive substring of a genre slug
	Name     string // case-insensitive substring
	Year     *int
}

func (f TitleFilter) scope(db *gorm.DB) *gorm.DB {
	if f.Category != "" {
		db = db.Joins("JOIN categories ON categories.id = titles.category_id").
			Where("LOWER(categories.slug) LIKE ?", containsPattern(f.Category))
	}
	if f.Genre != "" {
		db = db.Where(`EXISTS (SELECT 1 FROM genre_titles
			JOIN genres ON genres.id = genre_titles.genre_id
			WHERE genre_titles.title_id = titles.id AND LOWER(genres.slug) LIKE ?)`, containsPattern(f.Genre))
	}
	if f.Name != "" {
		db = db.Where("LOWER(titles.name) LIKE ?", containsPattern(f.Name))
	}
	if f.Year != nil {
		db = db.Where("titles.year = ?", *f.Year)
	}
	return db
}

type TitleRepository struct {
	db *gorm.DB
}

func NewTitleRepository(db *gorm.DB) *TitleRepository {
	return &TitleRepository{db: db}
}

func (r *TitleRepository) List(ctx context.Context, filter TitleFilter, page Page) ([]models.Title, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Title{}).Scopes(filter.scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var titles []models.Title
	q := r.db.WithContext(ctx).Model(&models.Title{}).
		Select("titles.*").
		Scopes(filter.scope).
		Preload("Category").
		Preload("Genres", func(db *gorm.DB) *gorm.DB { return db.Order("genres.name") }).
		Order("titles.id")
	if err := page.apply(q).Find(&titles).Error; err != nil {
		return nil, 0, err
	}
	return titles, total, nil
}

func (r *TitleRepository) GetByID(ctx context.Context, id int64) (*models.Title, error) {
	return first[models.Title](r.db.WithContext(ctx).
		Preload("Category").
		Preload("Genres", func(db *gorm.DB) *gorm.DB { return db.Order("genres.name") }).
		Where("id = ?", id))
}

func (r *TitleRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Title{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// Create inserts the title and links its genres in one transaction.
func (r *TitleRepository) Create(ctx context.Context, title *models.Title, genres []models.Genre) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(title).Error; err != nil {
			return err
		}
		if len(genres) > 0 {
			if err := tx.Model(title).Omit("Genres.*").Association("Genres").Append(genres); err != nil {
				return err
			}
		}
		return nil
	})
}

// Update writes the scalar columns and, when genres is non-nil, replaces the
// genre set.
func (r *TitleRepository) Update(ctx context.Context, title *models.Title, genres *[]models.Genre) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(title).
			Select("Name", "Year", "Description", "CategoryID").
			Updates(title).Error; err != nil {
			return err
		}
		if genres == nil {
			return nil
		}
		association := tx.Model(title).Omit("Genres.*").Association("Genres")
		if len(*genres) == 0 {
			return association.Clear()
		}
		return association.Replace(*genres)
	})
}

// Delete removes the title, its reviews, and the comments on those reviews.
func (r *TitleRepository) Delete(ctx context.Context, id int64) (bool, error) {
	var deleted bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		reviews := tx.Model(&models.Review{}).Select("id").Where("title_id = ?", id)
		if err := tx.Where("review_id IN (?)", reviews).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("title_id = ?", id).Delete(&models.Review{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM genre_titles WHERE title_id = ?", id).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&models.Title{})
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected > 0
		return nil
	})
	return deleted, err
}
