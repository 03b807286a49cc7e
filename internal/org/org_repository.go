package org

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OrgRepository defines data operations for orgs, teams, seasons and positions.
type OrgRepository interface {
	CreateOrg(o *Org) error
	GetOrgByID(id uint) (*Org, error)
	GetOrgBySlug(slug string) (*Org, error)
	UpdateOrg(o *Org) error

	AddMember(member *OrgMember) error
	GetMember(orgID, userID uint) (*OrgMember, error)
	IsOrgManager(orgID, userID uint) (bool, error)

	CreateTeam(team *Team) error
	GetTeamByID(id uint) (*Team, error)
	ListTeamsByOrg(orgID uint) ([]Team, error)
	GetOrgForTeam(teamID uint) (*Org, error)
	IsTeamManager(teamID, userID uint) (bool, error)

	CreateSeason(season *Season) error
	ListSeasonsByOrg(orgID uint) ([]Season, error)
	CreatePosition(position *Position) error
	ListPositionsByOrg(orgID uint) ([]Position, error)
}

type orgRepository struct {
	db *gorm.DB
}

func NewOrgRepository(db *gorm.DB) OrgRepository {
	return &orgRepository{db: db}
}

func (r *orgRepository) CreateOrg(o *Org) error {
	return r.db.Create(o).Error
}

func (r *orgRepository) GetOrgByID(id uint) (*Org, error) {
	var o Org
	if err := r.db.First(&o, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &o, nil
}

func (r *orgRepository) GetOrgBySlug(slug string) (*Org, error) {
	var o Org
	if err := r.db.Where("slug = ?", slug).First(&o).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &o, nil
}

func (r *orgRepository) UpdateOrg(o *Org) error {
	return r.db.Save(o).Error
}

func (r *orgRepository) AddMember(member *OrgMember) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "org_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"role", "updated_at"}),
	}).Create(member).Error
}

func (r *orgRepository) GetMember(orgID, userID uint) (*OrgMember, error) {
	var member OrgMember
	if err := r.db.Where("org_id = ? AND user_id = ?", orgID, userID).First(&member).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &member, nil
}

func (r *orgRepository) IsOrgManager(orgID, userID uint) (bool, error) {
	member, err := r.GetMember(orgID, userID)
	if err != nil {
		return false, err
	}
	if member == nil {
		return false, nil
	}
	return member.Role == MemberRoleOwner || member.Role == MemberRoleAdmin || member.Role == MemberRoleCoach, nil
}

func (r *orgRepository) CreateTeam(team *Team) error {
	return r.db.Create(team).Error
}

func (r *orgRepository) GetTeamByID(id uint) (*Team, error) {
	var team Team
	if err := r.db.First(&team, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &team, nil
}

func (r *orgRepository) ListTeamsByOrg(orgID uint) ([]Team, error) {
	var teams []Team
	if err := r.db.Where("org_id = ?", orgID).Order("created_at desc").Find(&teams).Error; err != nil {
		return nil, err
	}
	return teams, nil
}

func (r *orgRepository) GetOrgForTeam(teamID uint) (*Org, error) {
	team, err := r.GetTeamByID(teamID)
	if err != nil {
		return nil, err
	}
	if team == nil {
		return nil, nil
	}
	return r.GetOrgByID(team.OrgID)
}

func (r *orgRepository) IsTeamManager(teamID, userID uint) (bool, error) {
	team, err := r.GetTeamByID(teamID)
	if err != nil {
		return false, err
	}
	if team == nil {
		return false, nil
	}
	if team.CreatedByID == userID {
		return true, nil
	}
	return r.IsOrgManager(team.OrgID, userID)
}

func (r *orgRepository) CreateSeason(season *Season) error {
	return r.db.Create(season).Error
}

func (r *orgRepository) ListSeasonsByOrg(orgID uint) ([]Season, error) {
	var seasons []Season
	if err := r.db.Where("org_id = ?", orgID).Order("starts_at desc").Find(&seasons).Error; err != nil {
		return nil, err
	}
	return seasons, nil
}

func (r *orgRepository) CreatePosition(position *Position) error {
	return r.db.Create(position).Error
}

func (r *orgRepository) ListPositionsByOrg(orgID uint) ([]Position, error) {
	var positions []Position
	if err := r.db.Where("org_id = ?", orgID).Order("name asc").Find(&positions).Error; err != nil {
		return nil, err
	}
	return positions, nil
}
