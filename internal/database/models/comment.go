package models

import "github.com/google/uuid"

// Comment is an append-only review note on a post.
type Comment struct {
	Base
	PostID  uuid.UUID `gorm:"type:uuid;index;not null" json:"post_id"`
	UserID  uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`
	Content string    `gorm:"not null" json:"content"`

	Post *Post `gorm:"foreignKey:PostID" json:"-"`
	User *User `gorm:"foreignKey:UserID" json:"-"`
}

func (Comment) TableName() string {
	return "comments"
}
