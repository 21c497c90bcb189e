package types

import (
	"time"
)

type Review struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_review_user_book;column:user_id" json:"userId"`
	User      *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	BookID    uint      `gorm:"not null;uniqueIndex:idx_review_user_book;column:book_id" json:"bookId"`
	Book      *Book     `gorm:"constraint:OnDelete:CASCADE;foreignKey:BookID;references:ID" json:"book,omitempty"`
	Rating    int       `gorm:"not null;column:rating" json:"rating"`
	Text      string    `gorm:"column:text" json:"text"`
	CreatedAt time.Time `gorm:"not null;default:now();index" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Review) TableName() string {
	return "review"
}
