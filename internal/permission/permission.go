// Package permission decides which caller may do what to which resource.
package permission

import (
	"github.com/google/uuid"
	"github.com/yamdb/yamdb/internal/apperrors"
	"github.com/yamdb/yamdb/internal/models"
)

type Action string

const (
	Read   Action = "read"
	Create Action = "create"
	Modify Action = "modify" // update or delete
)

type Resource string

const (
	Category Resource = "category"
	Genre    Resource = "genre"
	Title    Resource = "title"
	Review   Resource = "review"
	Comment  Resource = "comment"
	User     Resource = "user"
	Profile  Resource = "profile"
)

// authored resources carry an author and allow owner and moderator edits.
func authored(r Resource) bool {
	return r == Review || r == Comment
}

func public(r Resource) bool {
	switch r {
	case Category, Genre, Title, Review, Comment:
		return true
	}
	return false
}

// Can reports whether caller may perform action on resource. caller is nil for
// anonymous requests; author is the owner of the target object, or nil when
// there is no object yet.
func Can(caller *models.User, action Action, resource Resource, author *uuid.UUID) bool {
	if action == Read && public(resource) {
		return true
	}
	if caller == nil {
		return false
	}
	if caller.IsAdmin() {
		return true
	}

	switch {
	case authored(resource):
		switch action {
		case Create:
			return true
		case Modify:
			isAuthor := author != nil && *author == caller.ID
			return isAuthor || caller.IsModerator()
		}
	case resource == Profile:
		return action == Read || action == Modify
	}
	return false
}

// Require is Can as an error: Unauthenticated for anonymous callers and
// Permission for authenticated ones.
func Require(caller *models.User, action Action, resource Resource, author *uuid.UUID) error {
	if Can(caller, action, resource, author) {
		return nil
	}
	if caller == nil {
		return apperrors.Unauthenticated("authentication credentials were not provided")
	}
	return apperrors.Permission("you do not have permission to perform this action")
}

// Precheck is the route level gate that runs before the target object is
// loaded. Modifying authored resources only needs a signed in caller here;
// Require with the real author runs once the object is known.
func Precheck(caller *models.User, action Action, resource Resource) error {
	if action == Modify && authored(resource) {
		if caller == nil {
			return apperrors.Unauthenticated("authentication credentials were not provided")
		}
		return nil
	}
	return Require(caller, action, resource, nil)
}

// CanAssignRole reports whether requester may set role on target. Admins may
// set any role on any account; everyone else may only keep their own role.
func CanAssignRole(requester, target *models.User, role models.Role) bool {
	if requester == nil {
		return false
	}
	if requester.IsAdmin() {
		return true
	}
	return requester.ID == target.ID && role == target.Role
}
