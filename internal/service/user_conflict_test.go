package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yamdb/yamdb/internal/apperrors"
	"github.com/yamdb/yamdb/internal/models"
	"github.com/yamdb/yamdb/internal/notify"
	"github.com/yamdb/yamdb/internal/repository"
	"github.com/yamdb/yamdb/internal/service"
	"github.com/yamdb/yamdb/internal/utils"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newPostgresMock opens gorm the way the server does against Postgres, with
// driver errors translated, over go-sqlmock.
func newPostgresMock(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
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

func expectDuplicateUpdate(mock sqlmock.Sqlmock, constraint string) {
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "users" SET`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: constraint})
	mock.ExpectRollback()
}

func TestUserService_DuplicateEmailOnPostgres(t *testing.T) {
	db, mock := newPostgresMock(t)
	users := service.NewUserService(repository.NewUserRepository(db))
	caller := &models.User{ID: uuid.New(), Username: "alice", Email: "alice@example.com", Role: models.RoleUser}
	holder := uuid.New()

	expectDuplicateUpdate(mock, "idx_users_email")
	mock.ExpectQuery(`SELECT \* FROM "users" WHERE email = `).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email", "role"}).
			AddRow(holder.String(), "bob", "bob@example.com", "user"))

	email := "bob@example.com"
	_, err := users.UpdateMe(context.Background(), caller, service.UserInput{Email: &email})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrConflict))
	assert.Contains(t, apperrors.From(err).Fields, "email")
	assert.NotContains(t, apperrors.From(err).Fields, "username")
}

func TestUserService_DuplicateUsernameOnPostgres(t *testing.T) {
	db, mock := newPostgresMock(t)
	users := service.NewUserService(repository.NewUserRepository(db))
	caller := &models.User{ID: uuid.New(), Username: "alice", Email: "alice@example.com", Role: models.RoleUser}

	expectDuplicateUpdate(mock, "idx_users_username")
	mock.ExpectQuery(`SELECT \* FROM "users" WHERE email = `).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email", "role"}).
			AddRow(caller.ID.String(), "alice", "alice@example.com", "user"))

	username := "bob"
	_, err := users.UpdateMe(context.Background(), caller, service.UserInput{Username: &username})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrConflict))
	assert.Contains(t, apperrors.From(err).Fields, "username")
}

// expectSignupRace lets both pre-insert lookups miss and fails the insert as if
// a concurrent signup committed first.
func expectSignupRace(mock sqlmock.Sqlmock) {
	userColumns := []string{"id", "username", "email", "role"}
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "users" WHERE email = `).WillReturnRows(sqlmock.NewRows(userColumns))
	mock.ExpectQuery(`SELECT \* FROM "users" WHERE username = `).WillReturnRows(sqlmock.NewRows(userColumns))
	mock.ExpectExec(`INSERT INTO "users"`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "idx_users_email"})
	mock.ExpectRollback()
}

func newAuthOnPostgres(t *testing.T, db *gorm.DB) *service.AuthService {
	codes, err := utils.NewCodeGenerator("test-secret", time.Hour)
	require.NoError(t, err)
	return service.NewAuthService(repository.NewUserRepository(db), codes,
		utils.NewTokenIssuer("test-secret", time.Hour), notify.NewLogNotifier())
}

func TestAuthService_SignupRace(t *testing.T) {
	testCases := []struct {
		name   string
		holder bool
		field  string
	}{
		{"email taken by the other signup", true, "email"},
		{"username taken by the other signup", false, "username"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			db, mock := newPostgresMock(t)
			auth := newAuthOnPostgres(t, db)

			expectSignupRace(mock)
			rows := sqlmock.NewRows([]string{"id", "username", "email", "role"})
			if tc.holder {
				rows.AddRow(uuid.New().String(), "other", "alice@example.com", "user")
			}
			mock.ExpectQuery(`SELECT \* FROM "users" WHERE email = `).WillReturnRows(rows)

			user, err := auth.Signup(context.Background(), "alice", "alice@example.com")
			require.Error(t, err)
			assert.Nil(t, user)
			assert.True(t, errors.Is(err, apperrors.ErrConflict))
			assert.Contains(t, apperrors.From(err).Fields, tc.field)
		})
	}
}
