package models

import "time"

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleAgency Role = "agency"
	RoleClient Role = "client"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleAgency, RoleClient:
		return true
	}
	return false
}

type User struct {
	Base
	Email           string     `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash    string     `gorm:"not null" json:"-"`
	Name            string     `json:"name"`
	Role            Role       `gorm:"not null;index" json:"role"`
	EmailVerifiedAt *time.Time `json:"email_verified_at,omitempty"`

	// Relationships
	Agency *Agency `gorm:"foreignKey:UserID" json:"agency,omitempty"`
	Client *Client `gorm:"foreignKey:UserID" json:"client,omitempty"`
}

func (User) TableName() string {
	return "users"
}
