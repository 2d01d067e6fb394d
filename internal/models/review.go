package models

import (
	"time"

	"github.com/google/uuid"
)

// Review is unique per (title, author) through idx_reviews_title_author.
type Review struct {
	ID       int64     `gorm:"primaryKey;autoIncrement"`
	TitleID  int64     `gorm:"not null;uniqueIndex:idx_reviews_title_author"`
	AuthorID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_reviews_title_author"`
	Text     string    `gorm:"type:text;not null"`
	Score    int       `gorm:"not null;check:score >= 1 AND score <= 10"`
	PubDate  time.Time `gorm:"autoCreateTime;index"`

	Title  Title `gorm:"foreignKey:TitleID;constraint:OnDelete:CASCADE;"`
	Author User  `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE;"`
}

type Comment struct {
	ID       int64     `gorm:"primaryKey;autoIncrement"`
	ReviewID int64     `gorm:"not null;index"`
	AuthorID uuid.UUID `gorm:"type:uuid;not null;index"`
	Text     string    `gorm:"type:text;not null"`
	PubDate  time.Time `gorm:"autoCreateTime;index"`

	Review Review `gorm:"foreignKey:ReviewID;constraint:OnDelete:CASCADE;"`
	Author User   `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE;"`
}

// All returns every model in migration order.
func All() []interface{} {
	return []interface{}{&User{}, &Category{}, &Genre{}, &Title{}, &Review{}, &Comment{}}
}
