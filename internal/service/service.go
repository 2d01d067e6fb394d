package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/yamdb/yamdb/internal/apperrors"
	"github.com/yamdb/yamdb/internal/repository"
	"github.com/yamdb/yamdb/pkg/logger"
	"go.uber.org/zap"
)

// logFailure logs client errors at Warn and everything else at Error, and
// returns err as an *apperrors.Error.
func logFailure(msg string, err error, fields ...zap.Field) error {
	appErr := apperrors.From(err)
	fields = append(fields, zap.String("kind", appErr.Kind.String()), zap.Error(err))
	if appErr.Kind == apperrors.KindInternal {
		logger.Log.Error(msg, fields...)
	} else {
		logger.Log.Warn(msg, fields...)
	}
	return appErr
}

// duplicateUserField names the unique index a failed user write collided
// with. Translated driver errors no longer carry the constraint, so the
// account currently holding email is re-read; anything else is the username.
func duplicateUserField(ctx context.Context, users *repository.UserRepository, id uuid.UUID, email string) string {
	holder, err := users.GetByEmail(ctx, email)
	if err == nil && holder != nil && holder.ID != id {
		return "email"
	}
	return "username"
}
