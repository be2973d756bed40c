package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Character is a player character document. CampaignIDs is the character's
// side of the character/campaign link; the campaign's side is its Players
// list. The two are kept in sync by the link service, never edited directly.
type Character struct {
	ID     string `gorm:"type:varchar(36);primarykey" json:"id"`
	UserID string `gorm:"type:varchar(36);not null;index:idx_characters_user_created,priority:1" json:"user_id"`

	CharacterName    string `gorm:"type:varchar(255)" json:"character_name"`
	Class            string `gorm:"type:varchar(50)" json:"class"`
	Level            int    `gorm:"default:1" json:"level"`
	Background       string `gorm:"type:varchar(255)" json:"background"`
	PlayerName       string `gorm:"type:varchar(255)" json:"player_name"`
	Race             string `gorm:"type:varchar(50)" json:"race"`
	Alignment        string `gorm:"type:varchar(50)" json:"alignment"`
	ExperiencePoints int    `json:"experience_points"`

	Strength     int `gorm:"default:10" json:"strength"`
	Dexterity    int `gorm:"default:10" json:"dexterity"`
	Constitution int `gorm:"default:10" json:"constitution"`
	Intelligence int `gorm:"default:10" json:"intelligence"`
	Wisdom       int `gorm:"default:10" json:"wisdom"`
	Charisma     int `gorm:"default:10" json:"charisma"`

	ArmorClass         int    `gorm:"default:10" json:"armor_class"`
	Initiative         int    `json:"initiative"`
	Speed              int    `gorm:"default:30" json:"speed"`
	MaxHitPoints       int    `gorm:"default:8" json:"max_hit_points"`
	CurrentHitPoints   int    `gorm:"default:8" json:"current_hit_points"`
	TemporaryHitPoints int    `json:"temporary_hit_points"`
	HitDice            string `gorm:"type:varchar(20);default:'1d8'" json:"hit_dice"`

	ProficiencyBonus         int      `gorm:"default:2" json:"proficiency_bonus"`
	SavingThrowProficiencies []string `gorm:"serializer:json;type:text" json:"saving_throw_proficiencies"`
	SkillProficiencies       []string `gorm:"serializer:json;type:text" json:"skill_proficiencies"`

	PersonalityTraits           string `gorm:"type:text" json:"personality_traits"`
	Ideals                      string `gorm:"type:text" json:"ideals"`
	Bonds                       string `gorm:"type:text" json:"bonds"`
	Flaws                       string `gorm:"type:text" json:"flaws"`
	CharacterAppearance         string `gorm:"type:text" json:"character_appearance"`
	AlliesAndOrganizations      string `gorm:"type:text" json:"allies_and_organizations"`
	AdditionalFeaturesAndTraits string `gorm:"type:text" json:"additional_features_and_traits"`
	Equipment                   string `gorm:"type:text" json:"equipment"`
	Spells                      string `gorm:"type:text" json:"spells"`

	ImageURL    string   `gorm:"type:varchar(512)" json:"image_url,omitempty"`
	CampaignIDs []string `gorm:"serializer:json;type:text" json:"campaign_ids"`

	CreatedAt time.Time `gorm:"index:idx_characters_user_created,priority:2" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *Character) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// IsLinkedTo reports whether the character's campaign id set contains id.
func (c *Character) IsLinkedTo(campaignID string) bool {
	for _, id := range c.CampaignIDs {
		if id == campaignID {
			return true
		}
	}
	return false
}

// WithoutCampaign returns a copy of the campaign id set with id removed.
func (c *Character) WithoutCampaign(campaignID string) []string {
	out := make([]string, 0, len(c.CampaignIDs))
	for _, id := range c.CampaignIDs {
		if id != campaignID {
			out = append(out, id)
		}
	}
	return out
}
