package dto

import (
	"github.com/dmhub/campaign-manager-api/internal/models"
	"github.com/dmhub/campaign-manager-api/internal/policy"
	"github.com/dmhub/campaign-manager-api/internal/services"
)

// CharacterDetailDTO is a character in detail responses, enriched with the
// requesting user's role and capabilities and the resolved campaign links.
type CharacterDetailDTO struct {
	models.Character
	Role            policy.Role                  `json:"role"`
	Capabilities    []policy.Capability          `json:"capabilities"`
	ViewOnly        bool                         `json:"view_only"`
	LinkedCampaigns []services.LinkedCampaignRef `json:"linked_campaigns"`
}

// ToCharacterDetailDTO converts a character view to its API shape.
func ToCharacterDetailDTO(view *services.CharacterView) CharacterDetailDTO {
	return CharacterDetailDTO{
		Character:       *view.Character,
		Role:            view.Role,
		Capabilities:    view.Capabilities.List(),
		ViewOnly:        !view.Capabilities.Has(policy.CapEdit),
		LinkedCampaigns: view.LinkedCampaigns,
	}
}

// CharacterListResponse represents a paginated list of characters
type CharacterListResponse struct {
	Characters []models.Character `json:"characters"`
	Page       int                `json:"page"`
	PageSize   int                `json:"page_size"`
	TotalCount int64              `json:"total_count"`
}
