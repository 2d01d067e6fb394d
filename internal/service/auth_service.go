package service

import (
	"context"
	"errors"
	"time"

	"github.com/yamdb/yamdb/internal/apperrors"
	"github.com/yamdb/yamdb/internal/models"
	"github.com/yamdb/yamdb/internal/notify"
	"github.com/yamdb/yamdb/internal/repository"
	"github.com/yamdb/yamdb/internal/utils"
	"github.com/yamdb/yamdb/pkg/logger"
	"go.uber.org/zap"
)

var errInvalidCode = apperrors.Authentication("invalid confirmation code")

type AuthService struct {
	userRepo *repository.UserRepository
	codes    *utils.CodeGenerator
	tokens   *utils.TokenIssuer
	notifier notify.Notifier
}

func NewAuthService(userRepo *repository.UserRepository, codes *utils.CodeGenerator, tokens *utils.TokenIssuer, notifier notify.Notifier) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		codes:    codes,
		tokens:   tokens,
		notifier: notifier,
	}
}

// Signup creates the account if needed and sends it a fresh confirmation
// code. Repeating a signup with the same username and email resends the code.
func (s *AuthService) Signup(ctx context.Context, username, email string) (*models.User, error) {
	start := time.Now()

	logger.Log.Debug("Processing signup",
		zap.String("username", username),
		zap.String("email", email),
	)

	errs := fieldErrors{}
	validateUsername(errs, username)
	validateEmail(errs, email)
	if err := errs.err(); err != nil {
		logger.Log.Warn("Signup validation failed",
			zap.String("username", username),
			zap.Error(err),
		)
		return nil, err
	}

	var user *models.User
	created := false
	err := s.userRepo.Transaction(ctx, func(tx *repository.UserRepository) error {
		byEmail, err := tx.GetByEmail(ctx, email)
		if err != nil {
			return err
		}
		if byEmail != nil && byEmail.Username != username {
			return apperrors.Conflict("email", "email is already registered to another username")
		}

		byName, err := tx.GetByUsername(ctx, username)
		if err != nil {
			return err
		}
		if byName != nil {
			if byName.Email != email {
				return apperrors.Conflict("username", "username is already registered with another email")
			}
			user = byName
			return nil
		}

		user = &models.User{Username: username, Email: email, Role: models.RoleUser}
		if err := tx.Create(ctx, user); err != nil {
			return err
		}
		created = true
		return nil
	})
	if errors.Is(err, repository.ErrDuplicate) {
		// Lost a race with a concurrent signup; the transaction is gone, so
		// the colliding account is looked up outside it.
		if duplicateUserField(ctx, s.userRepo, user.ID, email) == "email" {
			err = apperrors.Conflict("email", "email is already registered to another username")
		} else {
			err = apperrors.Conflict("username", "username is already registered with another email")
		}
	}
	if err != nil {
		return nil, logFailure("Signup failed", err, zap.String("username", username))
	}

	code := s.codes.Make(user)
	if err := s.notifier.SendConfirmationCode(ctx, user, code); err != nil {
		return nil, logFailure("Failed to deliver confirmation code",
			apperrors.Internal("could not send confirmation code", err),
			zap.String("username", username))
	}

	logger.Log.Info("Confirmation code sent",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username),
		zap.Bool("new_account", created),
		zap.Duration("total_duration", time.Since(start)),
	)
	return user, nil
}

// IssueToken exchanges a confirmation code for an access token. A successful
// exchange stamps last_login, which invalidates the code.
func (s *AuthService) IssueToken(ctx context.Context, username, code string) (string, error) {
	logger.Log.Debug("Processing token request", zap.String("username", username))

	errs := fieldErrors{}
	if username == "" {
		errs.add("username", "this field is required")
	}
	if code == "" {
		errs.add("confirmation_code", "this field is required")
	}
	if err := errs.err(); err != nil {
		return "", err
	}

	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return "", logFailure("Failed to load user", err, zap.String("username", username))
	}
	if user == nil {
		return "", logFailure("Token request for unknown user", apperrors.NotFound("user"), zap.String("username", username))
	}

	if !s.codes.Check(user, code) {
		return "", logFailure("Invalid confirmation code", errInvalidCode, zap.String("username", username))
	}

	if err := s.userRepo.TouchLastLogin(ctx, user, time.Now().UTC()); err != nil {
		return "", logFailure("Failed to record login", err, zap.String("username", username))
	}

	token, err := s.tokens.Generate(user)
	if err != nil {
		return "", logFailure("Failed to generate JWT token", err, zap.String("user_id", user.ID.String()))
	}

	logger.Log.Info("Access token issued",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username),
		zap.String("role", string(user.Role)),
	)
	return token, nil
}

// Authenticate resolves a bearer token to the current account. Tokens of
// deleted accounts are rejected.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return nil, apperrors.Unauthenticated("invalid or expired token")
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, apperrors.Internal("failed to load user", err)
	}
	if user == nil {
		return nil, apperrors.Unauthenticated("user not found")
	}
	return user, nil
}
