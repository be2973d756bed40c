package dto

import (
	"github.com/dmhub/campaign-manager-api/internal/models"
	"github.com/dmhub/campaign-manager-api/internal/policy"
	"github.com/dmhub/campaign-manager-api/internal/services"
)

// CampaignDetailDTO is a campaign in detail responses. Notes appear only for
// the owner; the shadowed field keeps them out of the payload entirely for
// everyone else. Players carries the resolved roster with dangling flags.
type CampaignDetailDTO struct {
	models.Campaign
	Notes        string                 `json:"notes,omitempty"`
	Players      []services.PlayerEntry `json:"players"`
	Role         policy.Role            `json:"role"`
	Capabilities []policy.Capability    `json:"capabilities"`
}

// ToCampaignDetailDTO converts a campaign view to its API shape, withholding
// notes from non-owners.
func ToCampaignDetailDTO(view *services.CampaignView) CampaignDetailDTO {
	out := CampaignDetailDTO{
		Campaign:     *view.Campaign,
		Players:      view.Players,
		Role:         view.Role,
		Capabilities: view.Capabilities.List(),
	}
	if view.Capabilities.Has(policy.CapSeeNotes) {
		out.Notes = view.Campaign.Notes
	}
	return out
}

// CampaignListItemDTO represents a campaign in list responses (minimal data)
type CampaignListItemDTO struct {
	ID            string                `json:"id"`
	CampaignName  string                `json:"campaign_name"`
	Setting       string                `json:"setting"`
	DungeonMaster string                `json:"dungeon_master"`
	CurrentLevel  int                   `json:"current_level"`
	Status        models.CampaignStatus `json:"status"`
	PlayerCount   int                   `json:"player_count"`
}

// ToCampaignListItemDTO converts a campaign to its list shape.
func ToCampaignListItemDTO(cp models.Campaign) CampaignListItemDTO {
	return CampaignListItemDTO{
		ID:            cp.ID,
		CampaignName:  cp.CampaignName,
		Setting:       cp.Setting,
		DungeonMaster: cp.DungeonMaster,
		CurrentLevel:  cp.CurrentLevel,
		Status:        cp.Status,
		PlayerCount:   len(cp.Players),
	}
}

// CampaignListResponse represents a paginated list of campaigns
type CampaignListResponse struct {
	Campaigns  []CampaignListItemDTO `json:"campaigns"`
	Page       int                   `json:"page"`
	PageSize   int                   `json:"page_size"`
	TotalCount int64                 `json:"total_count"`
}
