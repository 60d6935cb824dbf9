package models

import (
	"strings"

	"github.com/google/uuid"
)

// TenantStatus is the shared lifecycle enum for agencies and clients.
// Stored lowercase; ParseTenantStatus normalizes legacy mixed-case values.
type TenantStatus string

const (
	TenantStatusActive   TenantStatus = "active"
	TenantStatusInactive TenantStatus = "inactive"
	TenantStatusPending  TenantStatus = "pending"
)

func ParseTenantStatus(s string) (TenantStatus, bool) {
	switch TenantStatus(strings.ToLower(s)) {
	case TenantStatusActive:
		return TenantStatusActive, true
	case TenantStatusInactive:
		return TenantStatusInactive, true
	case TenantStatusPending:
		return TenantStatusPending, true
	}
	return "", false
}

type Agency struct {
	Base
	UserID      uuid.UUID    `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	CompanyName string       `gorm:"not null" json:"company_name"`
	Status      TenantStatus `gorm:"not null;index;default:'pending'" json:"status"`

	// Relationships
	User    *User    `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Clients []Client `gorm:"foreignKey:AgencyID" json:"-"`
	Posts   []Post   `gorm:"foreignKey:AgencyID" json:"-"`
}

func (Agency) TableName() string {
	return "agencies"
}
