package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleModerator, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Username    string     `gorm:"type:varchar(150);uniqueIndex;not null"`
	Email       string     `gorm:"type:varchar(254);uniqueIndex;not null"`
	Role        Role       `gorm:"type:varchar(20);not null;default:'user'"`
	Bio         string     `gorm:"type:text"`
	FirstName   string     `gorm:"type:varchar(150)"`
	LastName    string     `gorm:"type:varchar(150)"`
	IsStaff     bool       `gorm:"not null;default:false"`
	IsSuperuser bool       `gorm:"not null;default:false"`
	LastLogin   *time.Time // part of the confirmation code state
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	return nil
}

// IsAdmin is true for the admin role and for staff or superuser accounts.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin || u.IsStaff || u.IsSuperuser
}

func (u *User) IsModerator() bool {
	return u.Role == RoleModerator
}
