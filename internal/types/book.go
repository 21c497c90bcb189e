package types

import (
	"time"

	"gorm.io/datatypes"
)

type Book struct {
	ID            uint                        `gorm:"primaryKey" json:"id"`
	Title         string                      `gorm:"not null;index;column:title" json:"title"`
	Author        string                      `gorm:"not null;index;column:author" json:"author"`
	Description   string                      `gorm:"column:description" json:"description"`
	CoverImageURL string                      `gorm:"column:cover_image_url" json:"coverImageURL"`
	PublishedYear int                         `gorm:"column:published_year" json:"publishedYear"`
	Genres        datatypes.JSONSlice[string] `gorm:"column:genres" json:"genres"`
	AvgRating     float64                     `gorm:"not null;default:0;column:avg_rating" json:"avgRating"`
	ReviewCount   int                         `gorm:"not null;default:0;column:review_count" json:"reviewCount"`
	Reviews       []Review                    `gorm:"foreignKey:BookID" json:"reviews,omitempty"`
	CreatedAt     time.Time                   `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt     time.Time                   `gorm:"not null;default:now()" json:"updated_at"`
}

func (Book) TableName() string {
	return "book"
}
