package org

import (
	"time"

	"gorm.io/gorm"
)

const (
	MemberRoleOwner = "owner"
	MemberRoleAdmin = "admin"
	MemberRoleCoach = "coach"
)

// Org is a youth sports organization. It owns teams and receives the
// transferred share of application fees through its connected payment account.
type Org struct {
	gorm.Model
	Name             string `json:"name" gorm:"not null"`
	Slug             string `json:"slug" gorm:"uniqueIndex;not null"`
	Description      string `json:"description"`
	LogoURL          string `json:"logo_url"`
	CreatedByID      uint   `json:"created_by_id" gorm:"index"`
	PaymentAccountID string `json:"-" gorm:"index"`
	ChargesEnabled   bool   `json:"charges_enabled" gorm:"default:false"`
}

// OrgMember grants a user a management role within an org.
type OrgMember struct {
	gorm.Model
	OrgID  uint   `json:"org_id" gorm:"index;uniqueIndex:idx_org_user"`
	UserID uint   `json:"user_id" gorm:"index;uniqueIndex:idx_org_user"`
	Role   string `json:"role" gorm:"default:'coach'"`
}

type Team struct {
	gorm.Model
	OrgID       uint   `json:"org_id" gorm:"index;not null"`
	Name        string `json:"name" gorm:"not null"`
	Sport       string `json:"sport" gorm:"index"`
	Description string `json:"description"`
	CreatedByID uint   `json:"created_by_id" gorm:"index"`
}

type Season struct {
	gorm.Model
	OrgID    uint       `json:"org_id" gorm:"index;not null"`
	Name     string     `json:"name" gorm:"not null"`
	StartsAt *time.Time `json:"starts_at"`
	EndsAt   *time.Time `json:"ends_at"`
}

type Position struct {
	gorm.Model
	OrgID uint   `json:"org_id" gorm:"index;not null"`
	Name  string `json:"name" gorm:"not null"`
}
