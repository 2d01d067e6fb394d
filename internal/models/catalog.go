package models

import "time"

type Category struct {
	ID   int64  `gorm:"primaryKey;autoIncrement"`
	Name string `gorm:"type:varchar(50);not null;index"`
	Slug string `gorm:"type:varchar(256);uniqueIndex;not null"`
}

type Genre struct {
	ID   int64  `gorm:"primaryKey;autoIncrement"`
	Name string `gorm:"type:varchar(50);not null;index"`
	Slug string `gorm:"type:varchar(256);uniqueIndex;not null"`
}

// Title is a catalogued work. Its rating is derived from reviews and never stored.
type Title struct {
	ID          int64     `gorm:"primaryKey;autoIncrement"`
	Name        string    `gorm:"type:varchar(256);not null;index"`
	Year        int       `gorm:"not null;index"`
	Description string    `gorm:"type:text"`
	CategoryID  *int64    `gorm:"index"`
	Category    *Category `gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL;"`
	Genres      []Genre   `gorm:"many2many:genre_titles;constraint:OnDelete:CASCADE;"`
	CreatedAt   time.Time
}
