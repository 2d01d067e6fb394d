package service

import (
	"context"
	"errors"

	"github.com/yamdb/yamdb/internal/apperrors"
	"github.com/yamdb/yamdb/internal/models"
	"github.com/yamdb/yamdb/internal/permission"
	"github.com/yamdb/yamdb/internal/repository"
	"github.com/yamdb/yamdb/pkg/logger"
	"go.uber.org/zap"
)

// UserInput carries profile fields; nil means "leave unchanged".
type UserInput struct {
	Username  *string
	Email     *string
	FirstName *string
	LastName  *string
	Bio       *string
	Role      *string
}

type UserService struct {
	userRepo *repository.UserRepository
}

func NewUserService(userRepo *repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

func (s *UserService) List(ctx context.Context, caller *models.User, search string, page repository.Page) ([]models.User, int64, error) {
	if err := permission.Require(caller, permission.Read, permission.User, nil); err != nil {
		return nil, 0, err
	}
	users, total, err := s.userRepo.List(ctx, search, page)
	if err != nil {
		return nil, 0, logFailure("Failed to list users", err)
	}
	return users, total, nil
}

func (s *UserService) Get(ctx context.Context, caller *models.User, username string) (*models.User, error) {
	if err := permission.Require(caller, permission.Read, permission.User, nil); err != nil {
		return nil, err
	}
	return s.load(ctx, username)
}

// Create adds an account directly, bypassing the signup flow. Username and
// email are required; role defaults to user.
func (s *UserService) Create(ctx context.Context, caller *models.User, in UserInput) (*models.User, error) {
	if err := permission.Require(caller, permission.Create, permission.User, nil); err != nil {
		return nil, err
	}

	user := &models.User{Role: models.RoleUser}
	errs := fieldErrors{}
	if in.Username == nil {
		errs.add("username", "this field is required")
	}
	if in.Email == nil {
		errs.add("email", "this field is required")
	}
	s.apply(errs, user, in)
	if err := errs.err(); err != nil {
		return nil, err
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, logFailure("Failed to create user", s.conflict(ctx, user, err), zap.String("username", user.Username))
	}

	logger.Log.Info("User created",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username),
		zap.String("role", string(user.Role)),
		zap.String("created_by", caller.Username),
	)
	return user, nil
}

func (s *UserService) Update(ctx context.Context, caller *models.User, username string, in UserInput) (*models.User, error) {
	if err := permission.Require(caller, permission.Modify, permission.User, nil); err != nil {
		return nil, err
	}
	user, err := s.load(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.save(ctx, caller, user, in)
}

func (s *UserService) Delete(ctx context.Context, caller *models.User, username string) error {
	if err := permission.Require(caller, permission.Modify, permission.User, nil); err != nil {
		return err
	}
	user, err := s.load(ctx, username)
	if err != nil {
		return err
	}

	if _, err := s.userRepo.Delete(ctx, user.ID); err != nil {
		return logFailure("Failed to delete user", err, zap.String("username", username))
	}

	logger.Log.Info("User deleted",
		zap.String("user_id", user.ID.String()),
		zap.String("username", username),
		zap.String("deleted_by", caller.Username),
	)
	return nil
}

func (s *UserService) Me(ctx context.Context, caller *models.User) (*models.User, error) {
	if err := permission.Require(caller, permission.Read, permission.Profile, nil); err != nil {
		return nil, err
	}
	return caller, nil
}

// UpdateMe edits the caller's own profile. Non-admins cannot change their role.
func (s *UserService) UpdateMe(ctx context.Context, caller *models.User, in UserInput) (*models.User, error) {
	if err := permission.Require(caller, permission.Modify, permission.Profile, nil); err != nil {
		return nil, err
	}
	target := *caller
	return s.save(ctx, caller, &target, in)
}

func (s *UserService) save(ctx context.Context, caller, user *models.User, in UserInput) (*models.User, error) {
	if in.Role != nil {
		role := models.Role(*in.Role)
		if role.Valid() && !permission.CanAssignRole(caller, user, role) {
			logger.Log.Warn("Role change rejected",
				zap.String("requester", caller.Username),
				zap.String("target", user.Username),
				zap.String("role", *in.Role),
			)
			return nil, apperrors.Permission("you cannot change the role of this account")
		}
	}

	errs := fieldErrors{}
	s.apply(errs, user, in)
	if err := errs.err(); err != nil {
		return nil, err
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, logFailure("Failed to update user", s.conflict(ctx, user, err), zap.String("username", user.Username))
	}

	logger.Log.Info("User updated",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username),
		zap.String("updated_by", caller.Username),
	)
	return user, nil
}

// apply validates and copies the set fields of in onto user.
func (s *UserService) apply(errs fieldErrors, user *models.User, in UserInput) {
	if in.Username != nil {
		validateUsername(errs, *in.Username)
		user.Username = *in.Username
	}
	if in.Email != nil {
		validateEmail(errs, *in.Email)
		user.Email = *in.Email
	}
	if in.FirstName != nil {
		validateMaxLen(errs, "first_name", *in.FirstName, maxNameLen)
		user.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		validateMaxLen(errs, "last_name", *in.LastName, maxNameLen)
		user.LastName = *in.LastName
	}
	if in.Bio != nil {
		user.Bio = *in.Bio
	}
	if in.Role != nil {
		role := models.Role(*in.Role)
		if !role.Valid() {
			errs.add("role", `"`+*in.Role+`" is not a valid choice`)
		}
		user.Role = role
	}
}

func (s *UserService) load(ctx context.Context, username string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, logFailure("Failed to load user", err, zap.String("username", username))
	}
	if user == nil {
		return nil, apperrors.NotFound("user")
	}
	return user, nil
}

func (s *UserService) conflict(ctx context.Context, user *models.User, err error) error {
	if !errors.Is(err, repository.ErrDuplicate) {
		return err
	}
	field := duplicateUserField(ctx, s.userRepo, user.ID, user.Email)
	return apperrors.Conflict(field, "a user with that "+field+" already exists")
}
