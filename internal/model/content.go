package model

import (
	"time"

	"github.com/google/uuid"
)

// News is a storefront article managed from the back office.
type News struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Title       string    `gorm:"not null"`
	Slug        string    `gorm:"uniqueIndex;not null"`
	Body        string    `gorm:"type:text;not null"`
	ImageURL    *string
	Published   bool `gorm:"not null;default:false"`
	PublishedAt *time.Time
	AuthorID    uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Ad is a storefront banner.
type Ad struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Title     string    `gorm:"not null"`
	ImageURL  string    `gorm:"not null"`
	LinkURL   *string
	Position  int  `gorm:"not null;default:0"`
	Active    bool `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Setting is a key/value pair of store configuration (name, address, receipt footer).
type Setting struct {
	Key       string `gorm:"primaryKey"`
	Value     string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}
