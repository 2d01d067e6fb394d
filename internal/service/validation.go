package service

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/yamdb/yamdb/internal/apperrors"
)

const (
	maxUsernameLen = 150
	maxEmailLen    = 254
	maxNameLen     = 150
	maxTagNameLen  = 50
	maxSlugLen     = 256
	maxTitleLen    = 256
	minScore       = 1
	maxScore       = 10

	reservedUsername = "me"
)

var (
	usernameRegex = regexp.MustCompile(`^[\w.@+-]+$`)
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	slugRegex     = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
)

// fieldErrors collects per-field validation messages.
type fieldErrors map[string]string

func (f fieldErrors) add(field, message string) {
	if _, exists := f[field]; !exists {
		f[field] = message
	}
}

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return apperrors.Validation("validation failed", f)
}

func validateUsername(errs fieldErrors, username string) {
	switch {
	case username == "":
		errs.add("username", "this field is required")
	case utf8.RuneCountInString(username) > maxUsernameLen:
		errs.add("username", "ensure this field has no more than 150 characters")
	case strings.EqualFold(username, reservedUsername):
		errs.add("username", `the username "me" is reserved`)
	case !usernameRegex.MatchString(username):
		errs.add("username", "enter a valid username: letters, digits and @/./+/-/_ only")
	}
}

func validateEmail(errs fieldErrors, email string) {
	switch {
	case email == "":
		errs.add("email", "this field is required")
	case len(email) > maxEmailLen:
		errs.add("email", "ensure this field has no more than 254 characters")
	case !emailRegex.MatchString(email):
		errs.add("email", "enter a valid email address")
	}
}

func validateMaxLen(errs fieldErrors, field, value string, max int) {
	if utf8.RuneCountInString(value) > max {
		errs.add(field, "ensure this field is not too long")
	}
}

func validateSlug(errs fieldErrors, slug string) {
	switch {
	case slug == "":
		errs.add("slug", "this field is required")
	case len(slug) > maxSlugLen:
		errs.add("slug", "ensure this field has no more than 256 characters")
	case !slugRegex.MatchString(slug):
		errs.add("slug", "enter a valid slug: letters, digits, underscores or hyphens")
	}
}

func validateScore(errs fieldErrors, score int) {
	if score < minScore || score > maxScore {
		errs.add("score", "ensure this value is between 1 and 10")
	}
}
