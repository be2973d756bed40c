package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CampaignStatus string

const (
	CampaignStatusActive    CampaignStatus = "Active"
	CampaignStatusOnHold    CampaignStatus = "On Hold"
	CampaignStatusCompleted CampaignStatus = "Completed"
	CampaignStatusPlanning  CampaignStatus = "Planning"
)

// PlayerLink is a campaign's record of a linked character. CharacterName and
// PlayerName are snapshots taken at link time; they are not refreshed when the
// source character changes.
type PlayerLink struct {
	UserID        string `json:"user_id"`
	CharacterID   string `json:"character_id"`
	CharacterName string `json:"character_name"`
	PlayerName    string `json:"player_name"`
}

// Campaign is a campaign document owned by its Dungeon Master. The document id
// doubles as the share code players use to link characters. Notes are visible
// to the owner only.
type Campaign struct {
	ID     string `gorm:"type:varchar(36);primarykey" json:"id"`
	UserID string `gorm:"type:varchar(36);not null;index:idx_campaigns_user_created,priority:1" json:"user_id"`

	CampaignName  string         `gorm:"type:varchar(255)" json:"campaign_name"`
	Description   string         `gorm:"type:text" json:"description"`
	Setting       string         `gorm:"type:varchar(255)" json:"setting"`
	World         string         `gorm:"type:text" json:"world"`
	DungeonMaster string         `gorm:"type:varchar(255)" json:"dungeon_master"`
	CurrentLevel  int            `gorm:"default:1" json:"current_level"`
	StartDate     string         `gorm:"type:varchar(10)" json:"start_date"`
	Status        CampaignStatus `gorm:"type:varchar(20);default:'Active'" json:"status"`
	Theme         string         `gorm:"type:varchar(255)" json:"theme"`
	Notes         string         `gorm:"type:text" json:"notes"`

	Players []PlayerLink `gorm:"serializer:json;type:text" json:"players"`

	CreatedAt time.Time `gorm:"index:idx_campaigns_user_created,priority:2" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *Campaign) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// FindPlayer returns the player link for characterID, or nil.
func (c *Campaign) FindPlayer(characterID string) *PlayerLink {
	for i := range c.Players {
		if c.Players[i].CharacterID == characterID {
			return &c.Players[i]
		}
	}
	return nil
}

// HasPlayerUser reports whether any player link belongs to userID.
func (c *Campaign) HasPlayerUser(userID string) bool {
	for _, p := range c.Players {
		if p.UserID == userID {
			return true
		}
	}
	return false
}

// WithoutPlayer returns a copy of the player list with the link matching the
// (characterID, userID) pair removed.
func (c *Campaign) WithoutPlayer(characterID, userID string) []PlayerLink {
	out := make([]PlayerLink, 0, len(c.Players))
	for _, p := range c.Players {
		if p.CharacterID == characterID && p.UserID == userID {
			continue
		}
		out = append(out, p)
	}
	return out
}
