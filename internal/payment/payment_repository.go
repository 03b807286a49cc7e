package payment

import (
	"errors"

	"gorm.io/gorm"
)

// PaymentRepository defines data operations for orders.
type PaymentRepository interface {
	CreateOrder(o *Order) error
	GetOrderByID(id uint) (*Order, error)
	GetOrderByIntentID(intentID string) (*Order, error)
	UpdateOrder(o *Order) error
	ListOrdersByOrg(orgID uint, page, limit int) ([]Order, int64, error)
}

type paymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) CreateOrder(o *Order) error {
	return r.db.Create(o).Error
}

func (r *paymentRepository) GetOrderByID(id uint) (*Order, error) {
	var o Order
	if err := r.db.First(&o, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &o, nil
}

func (r *paymentRepository) GetOrderByIntentID(intentID string) (*Order, error) {
	var o Order
	if err := r.db.Where("payment_intent_id = ?", intentID).First(&o).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &o, nil
}

func (r *paymentRepository) UpdateOrder(o *Order) error {
	return r.db.Save(o).Error
}

func (r *paymentRepository) ListOrdersByOrg(orgID uint, page, limit int) ([]Order, int64, error) {
	var orders []Order
	var total int64

	query := r.db.Model(&Order{}).Where("org_id = ?", orgID)
	query.Count(&total)

	offset := (page - 1) * limit
	if err := query.Offset(offset).Limit(limit).Order("created_at desc").Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}
