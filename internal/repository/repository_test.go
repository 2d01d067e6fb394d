package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yamdb/yamdb/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newMockDB returns a postgres-dialect gorm DB backed by go-sqlmock, with the
// error translation the server runs with.
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		sqlDB.Close()
	})
	return db, mock
}

func TestIsUniqueViolation(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"gorm translated", gorm.ErrDuplicatedKey, true},
		{"postgres unique", &pgconn.PgError{Code: "23505"}, true},
		{"postgres foreign key", &pgconn.PgError{Code: "23503"}, false},
		{"sqlite unique", errors.New("UNIQUE constraint failed: reviews.title_id, reviews.author_id"), true},
		{"other", errors.New("connection reset"), false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsUniqueViolation(tc.err))
		})
	}
}

func TestPage_Offset(t *testing.T) {
	assert.Equal(t, 0, Page{Number: 0, Size: 10}.Offset())
	assert.Equal(t, 0, Page{Number: 1, Size: 10}.Offset())
	assert.Equal(t, 20, Page{Number: 3, Size: 10}.Offset())
}

func TestReviewRepository_CreateDuplicateOnPostgres(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewReviewRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "reviews"`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "idx_reviews_title_author"})
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &models.Review{TitleID: 1, AuthorID: uuid.New(), Text: "again", Score: 5})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicate))
}

func TestReviewRepository_CreateOtherFailure(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewReviewRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "reviews"`).
		WillReturnError(&pgconn.PgError{Code: "23503"})
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &models.Review{TitleID: 99, AuthorID: uuid.New(), Text: "orphan", Score: 5})
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrDuplicate))
}

func TestReviewRepository_AverageScores(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewReviewRepository(db)

	mock.ExpectQuery(`SELECT title_id, CAST\(AVG\(score\) AS DOUBLE PRECISION\) AS average FROM "reviews" WHERE title_id IN .+ GROUP BY`).
		WithArgs(int64(1), int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"title_id", "average"}).AddRow(int64(1), 5.5))

	ratings, err := repo.AverageScores(context.Background(), []int64{1, 2})
	require.NoError(t, err)
	assert.Equal(t, map[int64]float64{1: 5.5}, ratings)
}

func TestReviewRepository_AverageScoresEmpty(t *testing.T) {
	db, _ := newMockDB(t)

	ratings, err := NewReviewRepository(db).AverageScores(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, ratings)
}
