package application

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rosterup/rosterup/internal/roster"
)

// ApplicationRepository defines data operations for applications.
type ApplicationRepository interface {
	Create(app *Application) error
	GetByID(id uint) (*Application, error)
	Update(app *Application) error
	FindActiveBySpotAndChild(spotID, childID uint) (*Application, error)
	CountAcceptedForSpot(spotID uint) (int64, error)
	GetByPaymentIntentID(intentID string) (*Application, error)
	ListBySpot(spotID uint, status Status, page, limit int) ([]Application, int64, error)
	ListByGuardian(guardianID uint) ([]Application, error)

	// LockSpot loads the roster spot row under FOR UPDATE so a concurrent
	// accept on the same spot serializes behind this transaction. Only
	// meaningful inside WithTransaction.
	LockSpot(spotID uint) (*roster.RosterSpot, error)
	WithTransaction(fn func(ApplicationRepository) error) error
}

type applicationRepository struct {
	db *gorm.DB
}

func NewApplicationRepository(db *gorm.DB) ApplicationRepository {
	return &applicationRepository{db: db}
}

func (r *applicationRepository) Create(app *Application) error {
	return r.db.Create(app).Error
}

func (r *applicationRepository) GetByID(id uint) (*Application, error) {
	var app Application
	if err := r.db.First(&app, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &app, nil
}

func (r *applicationRepository) Update(app *Application) error {
	return r.db.Save(app).Error
}

func (r *applicationRepository) FindActiveBySpotAndChild(spotID, childID uint) (*Application, error) {
	var app Application
	err := r.db.Where("roster_spot_id = ? AND child_id = ? AND status <> ?", spotID, childID, StatusWithdrawn).
		First(&app).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &app, nil
}

func (r *applicationRepository) CountAcceptedForSpot(spotID uint) (int64, error) {
	var count int64
	err := r.db.Model(&Application{}).
		Where("roster_spot_id = ? AND status = ?", spotID, StatusAccepted).
		Count(&count).Error
	return count, err
}

func (r *applicationRepository) GetByPaymentIntentID(intentID string) (*Application, error) {
	var app Application
	if err := r.db.Where("payment_intent_id = ?", intentID).First(&app).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &app, nil
}

func (r *applicationRepository) ListBySpot(spotID uint, status Status, page, limit int) ([]Application, int64, error) {
	var apps []Application
	var total int64

	query := r.db.Model(&Application{}).Where("roster_spot_id = ?", spotID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	query.Count(&total)
	offset := (page - 1) * limit
	if err := query.Offset(offset).Limit(limit).Order("created_at asc").Find(&apps).Error; err != nil {
		return nil, 0, err
	}
	return apps, total, nil
}

func (r *applicationRepository) ListByGuardian(guardianID uint) ([]Application, error) {
	var apps []Application
	if err := r.db.Where("guardian_id = ?", guardianID).Order("created_at desc").Find(&apps).Error; err != nil {
		return nil, err
	}
	return apps, nil
}

func (r *applicationRepository) LockSpot(spotID uint) (*roster.RosterSpot, error) {
	var spot roster.RosterSpot
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&spot, spotID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &spot, nil
}

func (r *applicationRepository) WithTransaction(fn func(ApplicationRepository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&applicationRepository{db: tx})
	})
}
