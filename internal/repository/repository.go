// Package repository is the client for the document store. Services depend on
// these interfaces only; the store itself offers per-document reads and
// writes but no multi-document transaction the client can use across the
// characters and campaigns collections.
package repository

import (
	"errors"
	"fmt"

	"github.com/dmhub/campaign-manager-api/internal/models"
	"github.com/dmhub/campaign-manager-api/internal/utils"
)

// ErrNotFound is returned when a referenced document does not exist.
var ErrNotFound = errors.New("document not found")

// IndexRequiredError reports that a sorted, filtered query was rejected
// because its composite index is missing. This is an operational error of the
// store, not a logic bug; the index name tells the operator what to create.
type IndexRequiredError struct {
	Index string
	Err   error
}

func (e *IndexRequiredError) Error() string {
	return fmt.Sprintf("query requires missing index %q, create it and retry: %v", e.Index, e.Err)
}

func (e *IndexRequiredError) Unwrap() error {
	return e.Err
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	Create(user *models.User) error
	FindByID(id string) (*models.User, error)
	FindByEmail(email string) (*models.User, error)
}

// CharacterRepository defines the interface for the characters collection
type CharacterRepository interface {
	Create(ch *models.Character) error
	FindByID(id string) (*models.Character, error)

	// ListByOwner returns the owner's characters, newest first. Requires the
	// composite (user_id, created_at) index.
	ListByOwner(userID string, params utils.PaginationParams) ([]models.Character, int64, error)

	Update(ch *models.Character) error

	// UpdateCampaignIDs overwrites only the character's side of its campaign
	// links. Used by link operations so they cannot clobber unrelated edits.
	UpdateCampaignIDs(id string, campaignIDs []string) error

	Delete(id string) error
}

// CampaignRepository defines the interface for the campaigns collection
type CampaignRepository interface {
	Create(cp *models.Campaign) error
	FindByID(id string) (*models.Campaign, error)

	// ListByOwner returns the owner's campaigns, newest first. Requires the
	// composite (user_id, created_at) index.
	ListByOwner(userID string, params utils.PaginationParams) ([]models.Campaign, int64, error)

	Update(cp *models.Campaign) error

	// UpdatePlayers overwrites only the campaign's player list (last write
	// wins; callers re-fetch the authoritative list immediately before
	// computing the replacement).
	UpdatePlayers(id string, players []models.PlayerLink) error

	Delete(id string) error
}
