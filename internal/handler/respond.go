package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/yamdb/yamdb/internal/apperrors"
	"github.com/yamdb/yamdb/pkg/logger"
	"go.uber.org/zap"
)

var registerTagNames sync.Once

// useJSONFieldNames makes validator report json names ("first_name")
// instead of Go field names.
func useJSONFieldNames() {
	registerTagNames.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
	})
}

// respondError writes err as {"error": ..., "fields": {...}} with the status
// of its kind and logs it.
func respondError(c *gin.Context, err error) {
	appErr := apperrors.From(err)
	status := appErr.HTTPStatus()

	fields := []zap.Field{
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Int("status", status),
		zap.String("kind", appErr.Kind.String()),
		zap.Error(err),
	}
	if status >= 500 {
		logger.Log.Error("Request failed", fields...)
	} else {
		logger.Log.Debug("Request rejected", fields...)
	}

	message := appErr.Message
	if appErr.Kind == apperrors.KindInternal {
		message = "internal server error"
	}
	body := gin.H{"error": message}
	if len(appErr.Fields) > 0 {
		body["fields"] = appErr.Fields
	}
	c.AbortWithStatusJSON(status, body)
}

// bindJSON binds the request body into req, answering 400 on failure.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		logger.Log.Warn("Request parsing failed",
			zap.String("path", c.Request.URL.Path),
			zap.String("ip", c.ClientIP()),
			zap.Error(err),
		)
		respondError(c, bindError(err))
		return false
	}
	return true
}

func bindError(err error) *apperrors.Error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = fieldMessage(fe)
		}
		return apperrors.Validation("validation failed", fields)
	}
	return apperrors.Validation("invalid request body", nil)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "max":
		return fmt.Sprintf("ensure this field has no more than %s characters", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	}
	return fmt.Sprintf("failed on the %q rule", fe.Tag())
}

// pathID parses a numeric path parameter; a malformed id is a 404, the same
// as an id that does not exist.
func pathID(c *gin.Context, name, resource string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		respondError(c, apperrors.NotFound(resource))
		return 0, false
	}
	return id, true
}
