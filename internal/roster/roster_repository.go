package roster

import (
	"errors"

	"gorm.io/gorm"
)

// RosterRepository defines data operations for roster spots.
type RosterRepository interface {
	CreateSpot(spot *RosterSpot) error
	GetSpotByID(id uint) (*RosterSpot, error)
	UpdateSpot(spot *RosterSpot) error
	SetSpotStatus(id uint, status string) error
	ListSpots(page, limit int, filters map[string]interface{}) ([]RosterSpot, int64, error)
	ListSpotsByTeam(teamID uint) ([]RosterSpot, error)
}

type rosterRepository struct {
	db *gorm.DB
}

func NewRosterRepository(db *gorm.DB) RosterRepository {
	return &rosterRepository{db: db}
}

func (r *rosterRepository) CreateSpot(spot *RosterSpot) error {
	return r.db.Create(spot).Error
}

func (r *rosterRepository) GetSpotByID(id uint) (*RosterSpot, error) {
	var spot RosterSpot
	if err := r.db.First(&spot, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &spot, nil
}

func (r *rosterRepository) UpdateSpot(spot *RosterSpot) error {
	return r.db.Save(spot).Error
}

func (r *rosterRepository) SetSpotStatus(id uint, status string) error {
	return r.db.Model(&RosterSpot{}).Where("id = ?", id).Update("status", status).Error
}

func (r *rosterRepository) ListSpots(page, limit int, filters map[string]interface{}) ([]RosterSpot, int64, error) {
	var spots []RosterSpot
	var total int64

	query := r.db.Model(&RosterSpot{})

	if teamID, ok := filters["team_id"]; ok {
		query = query.Where("team_id = ?", teamID)
	}
	if seasonID, ok := filters["season_id"]; ok {
		query = query.Where("season_id = ?", seasonID)
	}
	if status, ok := filters["status"]; ok {
		query = query.Where("status = ?", status)
	}
	if visibility, ok := filters["visibility"]; ok {
		query = query.Where("visibility = ?", visibility)
	}
	if q, ok := filters["q"]; ok {
		query = query.Where("title ILIKE ?", "%"+q.(string)+"%")
	}

	query.Count(&total)
	offset := (page - 1) * limit
	if err := query.Offset(offset).Limit(limit).Order("created_at desc").Find(&spots).Error; err != nil {
		return nil, 0, err
	}
	return spots, total, nil
}

func (r *rosterRepository) ListSpotsByTeam(teamID uint) ([]RosterSpot, error) {
	var spots []RosterSpot
	if err := r.db.Where("team_id = ?", teamID).Order("created_at desc").Find(&spots).Error; err != nil {
		return nil, err
	}
	return spots, nil
}
