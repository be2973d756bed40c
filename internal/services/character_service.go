package services

import (
	"errors"
	"fmt"
	"io"
	"path"
	"sync"

	"go.uber.org/zap"

	"github.com/dmhub/campaign-manager-api/internal/models"
	"github.com/dmhub/campaign-manager-api/internal/policy"
	"github.com/dmhub/campaign-manager-api/internal/repository"
	"github.com/dmhub/campaign-manager-api/internal/storage"
	"github.com/dmhub/campaign-manager-api/internal/utils"
)

// LinkedCampaignRef is the character view's summary of one linked campaign.
// Unresolved marks a campaign id that could not be fetched; the link is kept
// and the summary degrades to a placeholder name.
type LinkedCampaignRef struct {
	ID            string                `json:"id"`
	CampaignName  string                `json:"campaign_name"`
	DungeonMaster string                `json:"dungeon_master"`
	Status        models.CampaignStatus `json:"status,omitempty"`
	Unresolved    bool                  `json:"unresolved,omitempty"`
}

// CharacterView is a character combined with everything the requesting user
// needs to render it: their role, what they may do, and the campaigns the
// character is linked into.
type CharacterView struct {
	Character       *models.Character
	Role            policy.Role
	Capabilities    policy.CapabilitySet
	LinkedCampaigns []LinkedCampaignRef
}

// CharacterService handles character business logic.
type CharacterService struct {
	characters repository.CharacterRepository
	campaigns  repository.CampaignRepository
	assets     storage.AssetStore
	links      *LinkService
	log        *zap.Logger
}

func NewCharacterService(characters repository.CharacterRepository, campaigns repository.CampaignRepository, assets storage.AssetStore, links *LinkService, log *zap.Logger) *CharacterService {
	return &CharacterService{
		characters: characters,
		campaigns:  campaigns,
		assets:     assets,
		links:      links,
		log:        log,
	}
}

// Get fetches a character and resolves its linked campaigns concurrently.
// A campaign fetch failure does not fail the read: that entry degrades to a
// placeholder and cannot contribute to the access decision.
func (s *CharacterService) Get(currentUserID, id string) (*CharacterView, error) {
	ch, err := s.characters.FindByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCharacterNotFound
		}
		return nil, err
	}

	resolved := make([]*models.Campaign, len(ch.CampaignIDs))
	var wg sync.WaitGroup
	for i, campaignID := range ch.CampaignIDs {
		wg.Add(1)
		go func(i int, campaignID string) {
			defer wg.Done()
			cp, err := s.campaigns.FindByID(campaignID)
			if err != nil {
				s.log.Warn("linked campaign fetch failed",
					zap.String("character_id", id),
					zap.String("campaign_id", campaignID),
					zap.Error(err))
				return
			}
			resolved[i] = cp
		}(i, campaignID)
	}
	wg.Wait()

	var linked []models.Campaign
	refs := make([]LinkedCampaignRef, 0, len(ch.CampaignIDs))
	for i, campaignID := range ch.CampaignIDs {
		cp := resolved[i]
		if cp == nil {
			refs = append(refs, LinkedCampaignRef{
				ID:           campaignID,
				CampaignName: "Campaign Not Found",
				Unresolved:   true,
			})
			continue
		}
		linked = append(linked, *cp)
		refs = append(refs, LinkedCampaignRef{
			ID:            cp.ID,
			CampaignName:  cp.CampaignName,
			DungeonMaster: cp.DungeonMaster,
			Status:        cp.Status,
		})
	}

	decision, err := policy.ForCharacter(currentUserID, ch, linked)
	if err != nil {
		return nil, err
	}

	return &CharacterView{
		Character:       ch,
		Role:            decision.Role,
		Capabilities:    decision.Capabilities,
		LinkedCampaigns: refs,
	}, nil
}

// List returns the current user's own characters, newest first.
func (s *CharacterService) List(currentUserID string, params utils.PaginationParams) ([]models.Character, int64, error) {
	return s.characters.ListByOwner(currentUserID, params)
}

// Create persists a new character owned by the current user. The campaign
// link set always starts empty; links are made through the link service.
func (s *CharacterService) Create(currentUserID string, ch *models.Character) error {
	ch.ID = ""
	ch.UserID = currentUserID
	ch.CampaignIDs = []string{}
	applyCharacterDefaults(ch)
	return s.characters.Create(ch)
}

// Update replaces the character's sheet fields. Ownership, link state and the
// portrait survive the update untouched.
func (s *CharacterService) Update(currentUserID, id string, updated *models.Character) (*models.Character, error) {
	existing, err := s.characters.FindByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCharacterNotFound
		}
		return nil, err
	}
	if existing.UserID != currentUserID {
		return nil, policy.ErrPermissionDenied
	}

	updated.ID = existing.ID
	updated.UserID = existing.UserID
	updated.CampaignIDs = existing.CampaignIDs
	updated.ImageURL = existing.ImageURL
	updated.CreatedAt = existing.CreatedAt

	if err := s.characters.Update(updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes the character after unwinding its campaign links.
func (s *CharacterService) Delete(currentUserID, id string) error {
	ch, err := s.characters.FindByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCharacterNotFound
		}
		return err
	}
	if ch.UserID != currentUserID {
		return policy.ErrPermissionDenied
	}
	return s.links.CascadeDeleteCharacter(ch)
}

// SetPortrait stores a new portrait image and points the character at it.
// The previous portrait is removed on a best effort basis.
func (s *CharacterService) SetPortrait(currentUserID, id, ext string, r io.Reader) (*models.Character, error) {
	ch, err := s.characters.FindByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCharacterNotFound
		}
		return nil, err
	}
	if ch.UserID != currentUserID {
		return nil, policy.ErrPermissionDenied
	}

	old := ch.ImageURL
	url, err := s.assets.Save(fmt.Sprintf("portrait_%s%s", ch.ID, ext), r)
	if err != nil {
		return nil, fmt.Errorf("store portrait: %w", err)
	}

	ch.ImageURL = url
	if err := s.characters.Update(ch); err != nil {
		return nil, err
	}

	if old != "" && old != url {
		if err := s.assets.Remove(path.Base(old)); err != nil {
			s.log.Warn("old portrait removal failed",
				zap.String("character_id", ch.ID),
				zap.Error(err))
		}
	}
	return ch, nil
}

// applyCharacterDefaults fills the sheet defaults for a freshly created
// character. Explicit zero values are treated as unset.
func applyCharacterDefaults(ch *models.Character) {
	if ch.Level == 0 {
		ch.Level = 1
	}
	for _, score := range []*int{&ch.Strength, &ch.Dexterity, &ch.Constitution, &ch.Intelligence, &ch.Wisdom, &ch.Charisma} {
		if *score == 0 {
			*score = 10
		}
	}
	if ch.ArmorClass == 0 {
		ch.ArmorClass = 10
	}
	if ch.Speed == 0 {
		ch.Speed = 30
	}
	if ch.MaxHitPoints == 0 {
		ch.MaxHitPoints = 8
	}
	if ch.CurrentHitPoints == 0 {
		ch.CurrentHitPoints = ch.MaxHitPoints
	}
	if ch.HitDice == "" {
		ch.HitDice = "1d8"
	}
	if ch.ProficiencyBonus == 0 {
		ch.ProficiencyBonus = 2
	}
	if ch.SavingThrowProficiencies == nil {
		ch.SavingThrowProficiencies = []string{}
	}
	if ch.SkillProficiencies == nil {
		ch.SkillProficiencies = []string{}
	}
}
