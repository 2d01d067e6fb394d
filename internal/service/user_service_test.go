package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/yamdb/yamdb/internal/apperrors"
	"github.com/yamdb/yamdb/internal/models"
	"github.com/yamdb/yamdb/internal/repository"
	"github.com/yamdb/yamdb/internal/service"
)

type UserServiceTestSuite struct {
	serviceSuite
}

func TestUserServiceSuite(t *testing.T) {
	suite.Run(t, new(UserServiceTestSuite))
}

func (s *UserServiceTestSuite) TestAdminOnlyOperations() {
	ctx := context.Background()
	plain := s.user("plain", models.RoleUser)
	moderator := s.user("mod", models.RoleModerator)

	for _, caller := range []*models.User{plain, moderator} {
		_, _, err := s.users.List(ctx, caller, "", repository.Page{Number: 1, Size: 10})
		s.True(errors.Is(err, apperrors.ErrPermission), caller.Username)

		_, err = s.users.Get(ctx, caller, "plain")
		s.True(errors.Is(err, apperrors.ErrPermission), caller.Username)

		s.True(errors.Is(s.users.Delete(ctx, caller, "plain"), apperrors.ErrPermission), caller.Username)
	}

	_, _, err := s.users.List(ctx, nil, "", repository.Page{Number: 1, Size: 10})
	s.True(errors.Is(err, apperrors.ErrUnauthenticated))
}

func (s *UserServiceTestSuite) TestAdminCreateListSearch() {
	ctx := context.Background()
	admin := s.user("root", models.RoleAdmin)

	created, err := s.users.Create(ctx, admin, service.UserInput{
		Username: ptr("critic"),
		Email:    ptr("critic@example.com"),
		Role:     ptr("moderator"),
		Bio:      ptr("watches everything"),
	})
	s.Require().NoError(err)
	s.Equal(models.RoleModerator, created.Role)

	users, total, err := s.users.List(ctx, admin, "crit", repository.Page{Number: 1, Size: 10})
	s.Require().NoError(err)
	s.Equal(int64(1), total)
	s.Equal("critic", users[0].Username)

	_, err = s.users.Create(ctx, admin, service.UserInput{Username: ptr("critic"), Email: ptr("x@example.com")})
	s.True(errors.Is(err, apperrors.ErrConflict))

	_, err = s.users.Create(ctx, admin, service.UserInput{Username: ptr("nobody")})
	s.True(errors.Is(err, apperrors.ErrValidation))

	_, err = s.users.Create(ctx, admin, service.UserInput{
		Username: ptr("boss"), Email: ptr("boss@example.com"), Role: ptr("emperor"),
	})
	s.True(errors.Is(err, apperrors.ErrValidation))
}

func (s *UserServiceTestSuite) TestUpdateMe_RoleEscalationRejected() {
	ctx := context.Background()
	plain := s.user("plain", models.RoleUser)

	_, err := s.users.UpdateMe(ctx, plain, service.UserInput{Role: ptr("admin")})
	s.True(errors.Is(err, apperrors.ErrPermission))

	stored, err := repository.NewUserRepository(s.testDB.DB).GetByUsername(ctx, "plain")
	s.Require().NoError(err)
	s.Equal(models.RoleUser, stored.Role)
	s.Equal(models.RoleUser, plain.Role, "caller must not be mutated")
}

func (s *UserServiceTestSuite) TestUpdateMe_SameRoleAndProfileFields() {
	ctx := context.Background()
	moderator := s.user("mod", models.RoleModerator)

	updated, err := s.users.UpdateMe(ctx, moderator, service.UserInput{
		Role:      ptr("moderator"),
		FirstName: ptr("Mo"),
		Bio:       ptr("keeps order"),
	})
	s.Require().NoError(err)
	s.Equal(models.RoleModerator, updated.Role)
	s.Equal("Mo", updated.FirstName)
	s.Equal("keeps order", updated.Bio)
}

func (s *UserServiceTestSuite) TestAdminChangesRoles() {
	ctx := context.Background()
	admin := s.user("root", models.RoleAdmin)
	s.user("plain", models.RoleUser)

	updated, err := s.users.Update(ctx, admin, "plain", service.UserInput{Role: ptr("moderator")})
	s.Require().NoError(err)
	s.Equal(models.RoleModerator, updated.Role)

	self, err := s.users.UpdateMe(ctx, admin, service.UserInput{Role: ptr("user")})
	s.Require().NoError(err)
	s.Equal(models.RoleUser, self.Role)

	_, err = s.users.Update(ctx, admin, "ghost", service.UserInput{Bio: ptr("x")})
	s.True(errors.Is(err, apperrors.ErrNotFound))
}

func (s *UserServiceTestSuite) TestDeleteCascadesAuthoredContent() {
	ctx := context.Background()
	admin := s.user("root", models.RoleAdmin)
	author := s.user("author", models.RoleUser)
	other := s.user("other", models.RoleUser)

	title := s.titleFixture("Film", 2000)
	review := s.reviewFixture(title, author, 8)
	s.commentFixture(review, other, "on author's review")
	otherReview := s.reviewFixture(title, other, 4)
	s.commentFixture(otherReview, author, "by author")

	s.Require().NoError(s.users.Delete(ctx, admin, "author"))

	var reviews, comments int64
	s.testDB.DB.Model(&models.Review{}).Count(&reviews)
	s.testDB.DB.Model(&models.Comment{}).Count(&comments)
	s.Equal(int64(1), reviews)
	s.Equal(int64(0), comments)
}
