package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type PostStatus string

const (
	PostStatusDraft     PostStatus = "draft"
	PostStatusPending   PostStatus = "pending"
	PostStatusScheduled PostStatus = "scheduled"
	PostStatusApproved  PostStatus = "approved"
	PostStatusPublished PostStatus = "published"
	PostStatusRejected  PostStatus = "rejected"
)

func ParsePostStatus(s string) (PostStatus, bool) {
	switch PostStatus(strings.ToLower(s)) {
	case PostStatusDraft:
		return PostStatusDraft, true
	case PostStatusPending:
		return PostStatusPending, true
	case PostStatusScheduled:
		return PostStatusScheduled, true
	case PostStatusApproved:
		return PostStatusApproved, true
	case PostStatusPublished:
		return PostStatusPublished, true
	case PostStatusRejected:
		return PostStatusRejected, true
	}
	return "", false
}

type Post struct {
	Base
	AgencyID uuid.UUID `gorm:"type:uuid;index;not null" json:"agency_id"`
	ClientID uuid.UUID `gorm:"type:uuid;index;not null" json:"client_id"`

	Title        string     `json:"title"`
	Content      string     `gorm:"not null" json:"content"`
	Media        []string   `gorm:"serializer:json" json:"media"`
	ScheduleDate time.Time  `gorm:"index;not null" json:"schedule_date"`
	Platform     string     `gorm:"not null" json:"platform"`
	PostType     string     `gorm:"not null" json:"post_type"`
	Status       PostStatus `gorm:"not null;index;default:'pending'" json:"status"`

	// Review trail
	Feedback string `json:"feedback,omitempty"`
	Comment  string `json:"comment,omitempty"`

	// Relationships
	Agency   *Agency   `gorm:"foreignKey:AgencyID" json:"-"`
	Client   *Client   `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Comments []Comment `gorm:"foreignKey:PostID" json:"-"`
}

func (Post) TableName() string {
	return "posts"
}
