package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/yamdb/yamdb/internal/apperrors"
	"github.com/yamdb/yamdb/internal/models"
)

type AuthServiceTestSuite struct {
	serviceSuite
}

func TestAuthServiceSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}

func (s *AuthServiceTestSuite) TestSignup_CreatesUserAndSendsCode() {
	user, err := s.auth.Signup(context.Background(), "alice", "alice@example.com")
	s.Require().NoError(err)

	s.Equal(models.RoleUser, user.Role)
	s.NotEmpty(s.notifier.CodeFor("alice@example.com"))
	s.Equal(1, s.notifier.Sent())
}

func (s *AuthServiceTestSuite) TestSignup_RepeatResendsWithoutDuplicating() {
	ctx := context.Background()
	first, err := s.auth.Signup(ctx, "alice", "alice@example.com")
	s.Require().NoError(err)
	second, err := s.auth.Signup(ctx, "alice", "alice@example.com")
	s.Require().NoError(err)

	s.Equal(first.ID, second.ID)
	s.Equal(2, s.notifier.Sent())

	var count int64
	s.testDB.DB.Model(&models.User{}).Count(&count)
	s.Equal(int64(1), count)
}

func (s *AuthServiceTestSuite) TestSignup_Conflicts() {
	ctx := context.Background()
	_, err := s.auth.Signup(ctx, "alice", "alice@example.com")
	s.Require().NoError(err)

	_, err = s.auth.Signup(ctx, "bob", "alice@example.com")
	s.True(errors.Is(err, apperrors.ErrConflict))
	s.Contains(apperrors.From(err).Fields, "email")

	_, err = s.auth.Signup(ctx, "alice", "other@example.com")
	s.True(errors.Is(err, apperrors.ErrConflict))
	s.Contains(apperrors.From(err).Fields, "username")
}

func (s *AuthServiceTestSuite) TestSignup_Validation() {
	testCases := []struct {
		name     string
		username string
		email    string
		field    string
	}{
		{"reserved me", "me", "me@example.com", "username"},
		{"reserved me any case", "ME", "me@example.com", "username"},
		{"invalid characters", "bad name!", "x@example.com", "username"},
		{"missing username", "", "x@example.com", "username"},
		{"invalid email", "carol", "not-an-email", "email"},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			_, err := s.auth.Signup(context.Background(), tc.username, tc.email)
			s.Require().Error(err)
			s.True(errors.Is(err, apperrors.ErrValidation))
			s.Contains(apperrors.From(err).Fields, tc.field)
		})
	}
	s.Zero(s.notifier.Sent())
}

func (s *AuthServiceTestSuite) TestSignup_DeliveryFailureIsInternal() {
	s.notifier.Err = errors.New("smtp down")

	_, err := s.auth.Signup(context.Background(), "alice", "alice@example.com")
	s.Require().Error(err)
	s.Equal(apperrors.KindInternal, apperrors.KindOf(err))
}

func (s *AuthServiceTestSuite) TestIssueToken_Flow() {
	ctx := context.Background()
	user, err := s.auth.Signup(ctx, "alice", "alice@example.com")
	s.Require().NoError(err)
	code := s.notifier.CodeFor("alice@example.com")

	token, err := s.auth.IssueToken(ctx, "alice", code)
	s.Require().NoError(err)
	s.NotEmpty(token)

	current, err := s.auth.Authenticate(ctx, token)
	s.Require().NoError(err)
	s.Equal(user.ID, current.ID)
	s.NotNil(current.LastLogin)
}

func (s *AuthServiceTestSuite) TestIssueToken_CodeIsSingleUse() {
	ctx := context.Background()
	_, err := s.auth.Signup(ctx, "alice", "alice@example.com")
	s.Require().NoError(err)
	code := s.notifier.CodeFor("alice@example.com")

	_, err = s.auth.IssueToken(ctx, "alice", code)
	s.Require().NoError(err)

	_, err = s.auth.IssueToken(ctx, "alice", code)
	s.True(errors.Is(err, apperrors.ErrAuthentication))
}

func (s *AuthServiceTestSuite) TestIssueToken_Failures() {
	ctx := context.Background()
	_, err := s.auth.Signup(ctx, "alice", "alice@example.com")
	s.Require().NoError(err)

	_, err = s.auth.IssueToken(ctx, "nobody", "abc-123")
	s.True(errors.Is(err, apperrors.ErrNotFound))

	_, err = s.auth.IssueToken(ctx, "alice", "abc-123")
	s.True(errors.Is(err, apperrors.ErrAuthentication))

	_, err = s.auth.IssueToken(ctx, "alice", "")
	s.True(errors.Is(err, apperrors.ErrValidation))
}

func (s *AuthServiceTestSuite) TestAuthenticate_RejectsDeletedUser() {
	ctx := context.Background()
	_, err := s.auth.Signup(ctx, "alice", "alice@example.com")
	s.Require().NoError(err)
	token, err := s.auth.IssueToken(ctx, "alice", s.notifier.CodeFor("alice@example.com"))
	s.Require().NoError(err)

	admin := s.user("root", models.RoleAdmin)
	s.Require().NoError(s.users.Delete(ctx, admin, "alice"))

	_, err = s.auth.Authenticate(ctx, token)
	s.True(errors.Is(err, apperrors.ErrUnauthenticated))

	_, err = s.auth.Authenticate(ctx, "garbage")
	s.True(errors.Is(err, apperrors.ErrUnauthenticated))
}
