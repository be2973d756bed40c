package repository

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/hints"

	"github.com/dmhub/campaign-manager-api/internal/database"
	"github.com/dmhub/campaign-manager-api/internal/models"
	"github.com/dmhub/campaign-manager-api/internal/utils"
)

const characterOwnerIndex = "idx_characters_user_created"

// GormCharacterRepository is a GORM implementation of CharacterRepository
type GormCharacterRepository struct {
	db *gorm.DB
}

// NewCharacterRepository creates a new CharacterRepository
func NewCharacterRepository(db *gorm.DB) CharacterRepository {
	return &GormCharacterRepository{db: db}
}

func (r *GormCharacterRepository) Create(ch *models.Character) error {
	return translate(r.db.Create(ch).Error)
}

func (r *GormCharacterRepository) FindByID(id string) (*models.Character, error) {
	var ch models.Character
	if err := r.db.First(&ch, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &ch, nil
}

func (r *GormCharacterRepository) ListByOwner(userID string, params utils.PaginationParams) ([]models.Character, int64, error) {
	var total int64
	if err := r.db.Model(&models.Character{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}

	q := r.db.Where("user_id = ?", userID)
	// Force the composite index so a missing one is a hard, actionable error
	// rather than a silent table scan. MySQL only; sqlite has no hint syntax.
	if r.db.Dialector.Name() == "mysql" {
		q = q.Clauses(hints.ForceIndex(characterOwnerIndex).ForOrderBy())
	}

	var chars []models.Character
	err := q.Order("created_at DESC").
		Scopes(database.Paginate(params)).
		Find(&chars).Error
	if err != nil {
		return nil, 0, translateList(err, characterOwnerIndex)
	}
	return chars, total, nil
}

func (r *GormCharacterRepository) Update(ch *models.Character) error {
	return translate(r.db.Save(ch).Error)
}

func (r *GormCharacterRepository) UpdateCampaignIDs(id string, campaignIDs []string) error {
	err := r.db.Model(&models.Character{}).
		Where("id = ?", id).
		Select("campaign_ids", "updated_at").
		Updates(&models.Character{CampaignIDs: campaignIDs, UpdatedAt: time.Now()}).Error
	return translate(err)
}

func (r *GormCharacterRepository) Delete(id string) error {
	return translate(r.db.Delete(&models.Character{}, "id = ?", id).Error)
}
