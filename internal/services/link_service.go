package services

import (
	"errors"
	"fmt"
	"path"
	"sync"

	"go.uber.org/zap"

	"github.com/dmhub/campaign-manager-api/internal/auth"
	"github.com/dmhub/campaign-manager-api/internal/models"
	"github.com/dmhub/campaign-manager-api/internal/repository"
	"github.com/dmhub/campaign-manager-api/internal/storage"
)

var (
	ErrCharacterNotFound  = errors.New("character not found")
	ErrCampaignNotFound   = errors.New("campaign not found")
	ErrAlreadyLinked      = errors.New("character already linked to campaign")
	ErrNotLinked          = errors.New("character not linked to campaign")
	ErrNotCharacterOwner  = errors.New("not the character owner")
	ErrNotLinkParticipant = errors.New("not a participant of this link")
	// ErrPairBusy means another link or unlink for the same pair is still
	// in flight on this instance.
	ErrPairBusy = errors.New("link operation already in progress for this pair")
)

// PartialFailureError reports a two-sided write where exactly one side
// succeeded. The documents are inconsistent until a retry or a repair on
// read completes the other side.
type PartialFailureError struct {
	Op          string
	CharacterID string
	CampaignID  string
	// Exactly one of these is non-nil.
	CharacterErr error
	CampaignErr  error
}

func (e *PartialFailureError) Error() string {
	side, cause := "campaign", e.CampaignErr
	if e.CharacterErr != nil {
		side, cause = "character", e.CharacterErr
	}
	return fmt.Sprintf("%s %s/%s: %s side failed: %v", e.Op, e.CharacterID, e.CampaignID, side, cause)
}

func (e *PartialFailureError) Unwrap() error {
	if e.CharacterErr != nil {
		return e.CharacterErr
	}
	return e.CampaignErr
}

type pairKey struct {
	characterID string
	campaignID  string
}

// LinkService maintains the two-document relationship between characters and
// campaigns. There is no cross-document transaction: each side is written
// independently and a failure on one side is surfaced as a partial failure
// rather than rolled back.
type LinkService struct {
	characters repository.CharacterRepository
	campaigns  repository.CampaignRepository
	assets     storage.AssetStore
	log        *zap.Logger

	mu       sync.Mutex
	inFlight map[pairKey]struct{}
}

func NewLinkService(characters repository.CharacterRepository, campaigns repository.CampaignRepository, assets storage.AssetStore, log *zap.Logger) *LinkService {
	return &LinkService{
		characters: characters,
		campaigns:  campaigns,
		assets:     assets,
		log:        log,
		inFlight:   make(map[pairKey]struct{}),
	}
}

func (s *LinkService) beginPair(k pairKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[k]; busy {
		return ErrPairBusy
	}
	s.inFlight[k] = struct{}{}
	return nil
}

func (s *LinkService) endPair(k pairKey) {
	s.mu.Lock()
	delete(s.inFlight, k)
	s.mu.Unlock()
}

// Link joins a character into a campaign by writing both sides of the
// relationship. Only the character's owner may link it. If one side already
// holds the link (a leftover from an earlier partial failure), only the
// missing side is written, which makes retrying a failed link safe.
// ErrAlreadyLinked is therefore deliberately stricter than a check on the
// character's campaign ids alone: it fires only when both sides already hold
// the link, so a half-linked pair repairs instead of erroring.
func (s *LinkService) Link(ident auth.Identity, characterID, campaignID string) error {
	ch, err := s.characters.FindByID(characterID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCharacterNotFound
		}
		return err
	}
	if ch.UserID != ident.UID {
		return ErrNotCharacterOwner
	}

	cp, err := s.campaigns.FindByID(campaignID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCampaignNotFound
		}
		return err
	}

	needCharacter := !ch.IsLinkedTo(campaignID)
	needCampaign := cp.FindPlayer(characterID) == nil
	if !needCharacter && !needCampaign {
		return ErrAlreadyLinked
	}

	key := pairKey{characterID, campaignID}
	if err := s.beginPair(key); err != nil {
		return err
	}
	defer s.endPair(key)

	var charErr, campErr error
	var wg sync.WaitGroup

	if needCharacter {
		wg.Add(1)
		go func() {
			defer wg.Done()
			charErr = s.characters.UpdateCampaignIDs(characterID, append(ch.CampaignIDs, campaignID))
		}()
	}
	if needCampaign {
		wg.Add(1)
		go func() {
			defer wg.Done()
			link := models.PlayerLink{
				UserID:        ident.UID,
				CharacterID:   characterID,
				CharacterName: ch.CharacterName,
				PlayerName:    playerDisplayName(ch, ident),
			}
			campErr = s.campaigns.UpdatePlayers(campaignID, append(cp.Players, link))
		}()
	}
	wg.Wait()

	return s.settle("link", characterID, campaignID, charErr, campErr)
}

// Unlink removes the relationship from both sides. The character's owner and
// the campaign's owner may both unlink; nobody else can.
func (s *LinkService) Unlink(actorUserID, characterID, campaignID string) error {
	ch, err := s.characters.FindByID(characterID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCharacterNotFound
		}
		return err
	}

	cp, err := s.campaigns.FindByID(campaignID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCampaignNotFound
		}
		return err
	}

	if ch.UserID != actorUserID && cp.UserID != actorUserID {
		return ErrNotLinkParticipant
	}

	needCharacter := ch.IsLinkedTo(campaignID)
	needCampaign := cp.FindPlayer(characterID) != nil
	if !needCharacter && !needCampaign {
		return ErrNotLinked
	}

	key := pairKey{characterID, campaignID}
	if err := s.beginPair(key); err != nil {
		return err
	}
	defer s.endPair(key)

	var charErr, campErr error
	var wg sync.WaitGroup

	if needCharacter {
		wg.Add(1)
		go func() {
			defer wg.Done()
			charErr = s.characters.UpdateCampaignIDs(characterID, ch.WithoutCampaign(campaignID))
		}()
	}
	if needCampaign {
		wg.Add(1)
		go func() {
			defer wg.Done()
			campErr = s.campaigns.UpdatePlayers(campaignID, cp.WithoutPlayer(characterID, ch.UserID))
		}()
	}
	wg.Wait()

	return s.settle("unlink", characterID, campaignID, charErr, campErr)
}

// settle folds the outcome of a two-sided write into a single error.
func (s *LinkService) settle(op, characterID, campaignID string, charErr, campErr error) error {
	switch {
	case charErr == nil && campErr == nil:
		return nil
	case charErr != nil && campErr != nil:
		return fmt.Errorf("%s %s/%s: both sides failed: character: %v; campaign: %w", op, characterID, campaignID, charErr, campErr)
	default:
		pf := &PartialFailureError{
			Op:           op,
			CharacterID:  characterID,
			CampaignID:   campaignID,
			CharacterErr: charErr,
			CampaignErr:  campErr,
		}
		s.log.Warn("two-sided write partially failed",
			zap.String("op", op),
			zap.String("character_id", characterID),
			zap.String("campaign_id", campaignID),
			zap.Error(pf.Unwrap()))
		return pf
	}
}

// CascadeDeleteCharacter strips the character out of every campaign it is
// linked to, drops its portrait, then deletes the character document itself.
// Campaign-side failures are logged and skipped; the resulting dangling
// player links are tolerated and surfaced on campaign reads. The character
// delete always runs last so a crash mid-cascade leaves the character
// retrievable and the cascade retryable.
func (s *LinkService) CascadeDeleteCharacter(ch *models.Character) error {
	var wg sync.WaitGroup
	for _, campaignID := range ch.CampaignIDs {
		wg.Add(1)
		go func(campaignID string) {
			defer wg.Done()
			cp, err := s.campaigns.FindByID(campaignID)
			if err != nil {
				s.log.Warn("cascade: campaign fetch failed, leaving link",
					zap.String("character_id", ch.ID),
					zap.String("campaign_id", campaignID),
					zap.Error(err))
				return
			}
			if cp.FindPlayer(ch.ID) == nil {
				return
			}
			if err := s.campaigns.UpdatePlayers(campaignID, cp.WithoutPlayer(ch.ID, ch.UserID)); err != nil {
				s.log.Warn("cascade: player removal failed, leaving link",
					zap.String("character_id", ch.ID),
					zap.String("campaign_id", campaignID),
					zap.Error(err))
			}
		}(campaignID)
	}
	wg.Wait()

	if ch.ImageURL != "" {
		if err := s.assets.Remove(path.Base(ch.ImageURL)); err != nil {
			s.log.Warn("cascade: portrait removal failed",
				zap.String("character_id", ch.ID),
				zap.Error(err))
		}
	}

	return s.characters.Delete(ch.ID)
}

// CascadeDeleteCampaign strips the campaign id from every linked character,
// then deletes the campaign document. Same failure posture as the character
// cascade: character-side failures leave a stale campaign id that reads
// resolve gracefully.
func (s *LinkService) CascadeDeleteCampaign(cp *models.Campaign) error {
	var wg sync.WaitGroup
	for _, p := range cp.Players {
		wg.Add(1)
		go func(characterID string) {
			defer wg.Done()
			ch, err := s.characters.FindByID(characterID)
			if err != nil {
				s.log.Warn("cascade: character fetch failed, leaving link",
					zap.String("campaign_id", cp.ID),
					zap.String("character_id", characterID),
					zap.Error(err))
				return
			}
			if !ch.IsLinkedTo(cp.ID) {
				return
			}
			if err := s.characters.UpdateCampaignIDs(characterID, ch.WithoutCampaign(cp.ID)); err != nil {
				s.log.Warn("cascade: campaign id removal failed, leaving link",
					zap.String("campaign_id", cp.ID),
					zap.String("character_id", characterID),
					zap.Error(err))
			}
		}(p.CharacterID)
	}
	wg.Wait()

	return s.campaigns.Delete(cp.ID)
}

// playerDisplayName picks the name recorded in a campaign's player list:
// the sheet's player name if filled in, otherwise the account's display
// name, then email.
func playerDisplayName(ch *models.Character, ident auth.Identity) string {
	if ch.PlayerName != "" {
		return ch.PlayerName
	}
	if ident.DisplayName != "" {
		return ident.DisplayName
	}
	if ident.Email != "" {
		return ident.Email
	}
	return "Unknown Player"
}
