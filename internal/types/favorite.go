package types

import (
	"time"
)

type Favorite struct {
	UserID    uint      `gorm:"primaryKey;autoIncrement:false;column:user_id" json:"userId"`
	User      *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	BookID    uint      `gorm:"primaryKey;autoIncrement:false;column:book_id" json:"bookId"`
	Book      *Book     `gorm:"constraint:OnDelete:CASCADE;foreignKey:BookID;references:ID" json:"book,omitempty"`
	CreatedAt time.Time `gorm:"not null;default:now();index" json:"created_at"`
}

func (Favorite) TableName() string {
	return "favorite"
}
