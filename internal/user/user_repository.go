package user

import (
	"errors"

	"gorm.io/gorm"
)

// UserRepository defines data operations for users and children.
type UserRepository interface {
	GetUserByID(id uint) (*User, error)
	GetUserRoles(userID uint) ([]string, error)

	CreateChild(child *Child) error
	GetChildByID(id uint) (*Child, error)
	ListChildrenByGuardian(guardianID uint) ([]Child, error)
	UpdateChild(child *Child) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetUserByID(id uint) (*User, error) {
	var u User
	if err := r.db.Preload("Roles").First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) GetUserRoles(userID uint) ([]string, error) {
	var u User
	if err := r.db.Preload("Roles").First(&u, userID).Error; err != nil {
		return nil, err
	}
	roles := make([]string, 0, len(u.Roles))
	for _, role := range u.Roles {
		roles = append(roles, role.Name)
	}
	return roles, nil
}

func (r *userRepository) CreateChild(child *Child) error {
	return r.db.Create(child).Error
}

func (r *userRepository) GetChildByID(id uint) (*Child, error) {
	var child Child
	if err := r.db.First(&child, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &child, nil
}

func (r *userRepository) ListChildrenByGuardian(guardianID uint) ([]Child, error) {
	var children []Child
	if err := r.db.Where("guardian_id = ?", guardianID).Order("created_at asc").Find(&children).Error; err != nil {
		return nil, err
	}
	return children, nil
}

func (r *userRepository) UpdateChild(child *Child) error {
	return r.db.Save(child).Error
}
