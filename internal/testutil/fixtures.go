package testutil

import (
	"testing"

	"github.com/yamdb/yamdb/internal/models"
	"gorm.io/gorm"
)

// CreateUser inserts an account with the given role; the email is derived
// from the username.
func CreateUser(t *testing.T, db *gorm.DB, username string, role models.Role) *models.User {
	t.Helper()
	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Role:     role,
	}
	mustCreate(t, db, user)
	return user
}

func CreateCategory(t *testing.T, db *gorm.DB, name, slug string) *models.Category {
	t.Helper()
	category := &models.Category{Name: name, Slug: slug}
	mustCreate(t, db, category)
	return category
}

func CreateGenre(t *testing.T, db *gorm.DB, name, slug string) *models.Genre {
	t.Helper()
	genre := &models.Genre{Name: name, Slug: slug}
	mustCreate(t, db, genre)
	return genre
}

// CreateTitle inserts a title, optionally in a category and with genres.
func CreateTitle(t *testing.T, db *gorm.DB, name string, year int, category *models.Category, genres ...*models.Genre) *models.Title {
	t.Helper()
	title := &models.Title{Name: name, Year: year}
	if category != nil {
		title.CategoryID = &category.ID
	}
	if err := db.Omit("Category", "Genres").Create(title).Error; err != nil {
		t.Fatalf("Failed to create title: %v", err)
	}
	for _, g := range genres {
		if err := db.Exec("INSERT INTO genre_titles (title_id, genre_id) VALUES (?, ?)", title.ID, g.ID).Error; err != nil {
			t.Fatalf("Failed to link genre: %v", err)
		}
	}
	return title
}

func CreateReview(t *testing.T, db *gorm.DB, title *models.Title, author *models.User, score int) *models.Review {
	t.Helper()
	review := &models.Review{TitleID: title.ID, AuthorID: author.ID, Text: "review by " + author.Username, Score: score}
	if err := db.Omit("Title", "Author").Create(review).Error; err != nil {
		t.Fatalf("Failed to create review: %v", err)
	}
	return review
}

func CreateComment(t *testing.T, db *gorm.DB, review *models.Review, author *models.User, text string) *models.Comment {
	t.Helper()
	comment := &models.Comment{ReviewID: review.ID, AuthorID: author.ID, Text: text}
	if err := db.Omit("Review", "Author").Create(comment).Error; err != nil {
		t.Fatalf("Failed to create comment: %v", err)
	}
	return comment
}

// Count returns the number of rows in model's table.
func Count(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var n int64
	if err := db.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("Failed to count rows: %v", err)
	}
	return n
}

func mustCreate(t *testing.T, db *gorm.DB, value interface{}) {
	t.Helper()
	if err := db.Create(value).Error; err != nil {
		t.Fatalf("Failed to create fixture: %v", err)
	}
}
