package models

import "github.com/google/uuid"

type Client struct {
	Base
	UserID      uuid.UUID    `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	AgencyID    uuid.UUID    `gorm:"type:uuid;index;not null" json:"agency_id"`
	CompanyName string       `gorm:"not null" json:"company_name"`
	Status      TenantStatus `gorm:"not null;index;default:'pending'" json:"status"`

	// Relationships
	User   *User   `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Agency *Agency `gorm:"foreignKey:AgencyID" json:"-"`
	Posts  []Post  `gorm:"foreignKey:ClientID" json:"-"`
}

func (Client) TableName() string {
	return "clients"
}
