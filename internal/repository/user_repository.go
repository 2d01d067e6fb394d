package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/yamdb/yamdb/internal/models"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Transaction runs fn with a repository bound to a single transaction.
func (r *UserRepository) Transaction(ctx context.Context, fn func(tx *UserRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewUserRepository(tx))
	})
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	return translate(r.db.WithContext(ctx).Create(user).Error)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return first[models.User](r.db.WithContext(ctx).Where("email = ?", email))
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return first[models.User](r.db.WithContext(ctx).Where("username = ?", username))
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return first[models.User](r.db.WithContext(ctx).Where("id = ?", id))
}

// List returns users ordered by username, optionally filtered by a
// case-insensitive username substring.
func (r *UserRepository) List(ctx context.Context, search string, page Page) ([]models.User, int64, error) {
	scope := func(db *gorm.DB) *gorm.DB {
		if search != "" {
			db = db.Where("LOWER(username) LIKE ?", containsPattern(search))
		}
		return db
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []models.User
	err := page.apply(r.db.WithContext(ctx).Scopes(scope).Order("username")).Find(&users).Error
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// Update writes every profile column of user.
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	return translate(r.db.WithContext(ctx).Model(user).
		Select("Username", "Email", "Role", "Bio", "FirstName", "LastName", "IsStaff", "IsSuperuser", "UpdatedAt").
		Updates(user).Error)
}

func (r *UserRepository) TouchLastLogin(ctx context.Context, user *models.User, at time.Time) error {
	if err := r.db.WithContext(ctx).Model(user).Update("last_login", at).Error; err != nil {
		return err
	}
	user.LastLogin = &at
	return nil
}

// Delete removes the user together with their reviews, the comments on those
// reviews, and their own comments.
func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	var deleted bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		authored := tx.Model(&models.Review{}).Select("id").Where("author_id = ?", id)
		if err := tx.Where("author_id = ? OR review_id IN (?)", id, authored).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("author_id = ?", id).Delete(&models.Review{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&models.User{})
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected > 0
		return nil
	})
	return deleted, err
}
