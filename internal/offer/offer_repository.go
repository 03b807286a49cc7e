package offer

import (
	"errors"

	"gorm.io/gorm"
)

// OfferRepository defines data operations for offers.
type OfferRepository interface {
	Create(o *Offer) error
	GetByID(id uint) (*Offer, error)
	Update(o *Offer) error
	GetPendingByApplication(applicationID uint) (*Offer, error)
	ListByApplication(applicationID uint) ([]Offer, error)
	ListByGuardian(guardianID uint) ([]Offer, error)
}

type offerRepository struct {
	db *gorm.DB
}

func NewOfferRepository(db *gorm.DB) OfferRepository {
	return &offerRepository{db: db}
}

func (r *offerRepository) Create(o *Offer) error {
	return r.db.Create(o).Error
}

func (r *offerRepository) GetByID(id uint) (*Offer, error) {
	var o Offer
	if err := r.db.First(&o, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &o, nil
}

func (r *offerRepository) Update(o *Offer) error {
	return r.db.Save(o).Error
}

func (r *offerRepository) GetPendingByApplication(applicationID uint) (*Offer, error) {
	var o Offer
	err := r.db.Where("application_id = ? AND status = ?", applicationID, StatusPending).
		Order("created_at desc").First(&o).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &o, nil
}

func (r *offerRepository) ListByApplication(applicationID uint) ([]Offer, error) {
	var offers []Offer
	if err := r.db.Where("application_id = ?", applicationID).Order("created_at desc").Find(&offers).Error; err != nil {
		return nil, err
	}
	return offers, nil
}

func (r *offerRepository) ListByGuardian(guardianID uint) ([]Offer, error) {
	var offers []Offer
	err := r.db.Joins("JOIN applications ON applications.id = offers.application_id").
		Where("applications.guardian_id = ?", guardianID).
		Order("offers.created_at desc").
		Find(&offers).Error
	if err != nil {
		return nil, err
	}
	return offers, nil
}
