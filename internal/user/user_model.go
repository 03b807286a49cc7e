package user

import (
	"time"

	"gorm.io/gorm"
)

const (
	RoleGuardian = "guardian"
	RoleCoach    = "coach"
	RoleAdmin    = "admin"
)

type User struct {
	gorm.Model
	Name     string `json:"name" gorm:"not null"`
	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	Password string `json:"-"`
	Phone    string `gorm:"index" json:"phone"`
	Roles    []Role `gorm:"many2many:user_roles" json:"roles"`
}

type Role struct {
	gorm.Model
	Name string `gorm:"unique;not null" json:"name"`
}

// Child is a guardian's player profile. Applications reference a child, not
// the guardian directly.
type Child struct {
	gorm.Model
	GuardianID uint       `json:"guardian_id" gorm:"index;not null"`
	FirstName  string     `json:"first_name" gorm:"not null"`
	LastName   string     `json:"last_name" gorm:"not null"`
	BirthDate  *time.Time `json:"birth_date"`
	GradeLevel *int       `json:"grade_level"`
}

type RefreshToken struct {
	gorm.Model
	UserID    uint      `json:"user_id" gorm:"index"`
	Token     string    `json:"-" gorm:"uniqueIndex;not null"`
	ExpiresAt time.Time `json:"expires_at"`
	Revoked   bool      `json:"revoked" gorm:"default:false"`
}
