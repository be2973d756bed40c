package repository

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/hints"

	"github.com/dmhub/campaign-manager-api/internal/database"
	"github.com/dmhub/campaign-manager-api/internal/models"
	"github.com/dmhub/campaign-manager-api/internal/utils"
)

const campaignOwnerIndex = "idx_campaigns_user_created"

// GormCampaignRepository is a GORM implementation of CampaignRepository
type GormCampaignRepository struct {
	db *gorm.DB
}

// NewCampaignRepository creates a new CampaignRepository
func NewCampaignRepository(db *gorm.DB) CampaignRepository {
	return &GormCampaignRepository{db: db}
}

func (r *GormCampaignRepository) Create(cp *models.Campaign) error {
	return translate(r.db.Create(cp).Error)
}

func (r *GormCampaignRepository) FindByID(id string) (*models.Campaign, error) {
	var cp models.Campaign
	if err := r.db.First(&cp, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &cp, nil
}

func (r *GormCampaignRepository) ListByOwner(userID string, params utils.PaginationParams) ([]models.Campaign, int64, error) {
	var total int64
	if err := r.db.Model(&models.Campaign{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}

	q := r.db.Where("user_id = ?", userID)
	if r.db.Dialector.Name() == "mysql" {
		q = q.Clauses(hints.ForceIndex(campaignOwnerIndex).ForOrderBy())
	}

	var campaigns []models.Campaign
	err := q.Order("created_at DESC").
		Scopes(database.Paginate(params)).
		Find(&campaigns).Error
	if err != nil {
		return nil, 0, translateList(err, campaignOwnerIndex)
	}
	return campaigns, total, nil
}

func (r *GormCampaignRepository) Update(cp *models.Campaign) error {
	return translate(r.db.Save(cp).Error)
}

func (r *GormCampaignRepository) UpdatePlayers(id string, players []models.PlayerLink) error {
	err := r.db.Model(&models.Campaign{}).
		Where("id = ?", id).
		Select("players", "updated_at").
		Updates(&models.Campaign{Players: players, UpdatedAt: time.Now()}).Error
	return translate(err)
}

func (r *GormCampaignRepository) Delete(id string) error {
	return translate(r.db.Delete(&models.Campaign{}, "id = ?", id).Error)
}
