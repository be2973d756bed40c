package services

import (
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/dmhub/campaign-manager-api/internal/models"
	"github.com/dmhub/campaign-manager-api/internal/policy"
	"github.com/dmhub/campaign-manager-api/internal/repository"
	"github.com/dmhub/campaign-manager-api/internal/utils"
)

var ErrPlayerNotInCampaign = errors.New("player not in campaign")

// PlayerEntry is a campaign view's resolved player link. Dangling marks a
// link whose character no longer exists; the entry is kept so the owner can
// see and clean it up.
type PlayerEntry struct {
	models.PlayerLink
	Dangling bool `json:"dangling,omitempty"`
}

// CampaignView is a campaign combined with the requesting user's role and
// capabilities and the resolved player roster.
type CampaignView struct {
	Campaign     *models.Campaign
	Role         policy.Role
	Capabilities policy.CapabilitySet
	Players      []PlayerEntry
}

// CampaignService handles campaign business logic.
type CampaignService struct {
	campaigns  repository.CampaignRepository
	characters repository.CharacterRepository
	links      *LinkService
	log        *zap.Logger
}

func NewCampaignService(campaigns repository.CampaignRepository, characters repository.CharacterRepository, links *LinkService, log *zap.Logger) *CampaignService {
	return &CampaignService{
		campaigns:  campaigns,
		characters: characters,
		links:      links,
		log:        log,
	}
}

// Get fetches a campaign and resolves each player link against its character
// document concurrently. Links whose character is gone are flagged as
// dangling rather than hidden or treated as an error.
func (s *CampaignService) Get(currentUserID, id string) (*CampaignView, error) {
	cp, err := s.campaigns.FindByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCampaignNotFound
		}
		return nil, err
	}

	decision, err := policy.ForCampaign(currentUserID, cp)
	if err != nil {
		return nil, err
	}

	dangling := make([]bool, len(cp.Players))
	var wg sync.WaitGroup
	for i, p := range cp.Players {
		wg.Add(1)
		go func(i int, characterID string) {
			defer wg.Done()
			if _, err := s.characters.FindByID(characterID); errors.Is(err, repository.ErrNotFound) {
				dangling[i] = true
			}
		}(i, p.CharacterID)
	}
	wg.Wait()

	players := make([]PlayerEntry, len(cp.Players))
	for i, p := range cp.Players {
		players[i] = PlayerEntry{PlayerLink: p, Dangling: dangling[i]}
	}

	return &CampaignView{
		Campaign:     cp,
		Role:         decision.Role,
		Capabilities: decision.Capabilities,
		Players:      players,
	}, nil
}

// List returns the campaigns the current user runs, newest first.
func (s *CampaignService) List(currentUserID string, params utils.PaginationParams) ([]models.Campaign, int64, error) {
	return s.campaigns.ListByOwner(currentUserID, params)
}

// Create persists a new campaign run by the current user. The roster always
// starts empty; players join through the link service.
func (s *CampaignService) Create(currentUserID string, cp *models.Campaign) error {
	cp.ID = ""
	cp.UserID = currentUserID
	cp.Players = []models.PlayerLink{}
	if cp.Status == "" {
		cp.Status = models.CampaignStatusActive
	}
	if cp.CurrentLevel == 0 {
		cp.CurrentLevel = 1
	}
	return s.campaigns.Create(cp)
}

// Update replaces the campaign's own fields. The roster and ownership are
// not editable here.
func (s *CampaignService) Update(currentUserID, id string, updated *models.Campaign) (*models.Campaign, error) {
	existing, err := s.campaigns.FindByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCampaignNotFound
		}
		return nil, err
	}
	if existing.UserID != currentUserID {
		return nil, policy.ErrPermissionDenied
	}

	updated.ID = existing.ID
	updated.UserID = existing.UserID
	updated.Players = existing.Players
	updated.CreatedAt = existing.CreatedAt

	if err := s.campaigns.Update(updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes the campaign after stripping its id from every linked
// character.
func (s *CampaignService) Delete(currentUserID, id string) error {
	cp, err := s.campaigns.FindByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCampaignNotFound
		}
		return err
	}
	if cp.UserID != currentUserID {
		return policy.ErrPermissionDenied
	}
	return s.links.CascadeDeleteCampaign(cp)
}

// RemovePlayer takes a character out of the campaign roster. The owner may
// remove anyone; a player may remove only their own character. When the
// linked character no longer exists the stale roster entry is stripped
// directly, since there is no second side left to update.
func (s *CampaignService) RemovePlayer(currentUserID, campaignID, characterID string) error {
	cp, err := s.campaigns.FindByID(campaignID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCampaignNotFound
		}
		return err
	}

	decision, err := policy.ForCampaign(currentUserID, cp)
	if err != nil {
		return err
	}

	link := cp.FindPlayer(characterID)
	if link == nil {
		return ErrPlayerNotInCampaign
	}
	if !decision.Capabilities.Has(policy.CapRemoveAnyPlayer) && link.UserID != currentUserID {
		return policy.ErrPermissionDenied
	}

	if _, err := s.characters.FindByID(characterID); errors.Is(err, repository.ErrNotFound) {
		s.log.Info("removing dangling player link",
			zap.String("campaign_id", campaignID),
			zap.String("character_id", characterID))
		return s.campaigns.UpdatePlayers(campaignID, cp.WithoutPlayer(characterID, link.UserID))
	}

	return s.links.Unlink(currentUserID, characterID, campaignID)
}
