// Package policy computes what the acting user may do with a character or
// campaign. Pure functions over already-fetched documents: no I/O, no
// side effects. Callers resolve any documents the decision needs (such as the
// campaigns a character is linked to) before asking.
package policy

import (
	"errors"
	"sort"

	"github.com/dmhub/campaign-manager-api/internal/models"
)

// ErrPermissionDenied is returned when the user has no role granting view
// access to the requested document.
var ErrPermissionDenied = errors.New("permission denied")

type Role string

const (
	// RoleOwner owns the document outright.
	RoleOwner Role = "owner"
	// RoleCampaignDM may view a character because it is linked to a campaign
	// the user runs.
	RoleCampaignDM Role = "campaign-dm"
	// RolePlayer has a character linked into the campaign.
	RolePlayer Role = "player"
	RoleNone   Role = "none"
)

type Capability string

const (
	CapView            Capability = "view"
	CapEdit            Capability = "edit"
	CapDelete          Capability = "delete"
	CapLinkCampaign    Capability = "link-campaign"
	CapUnlinkOwnLinks  Capability = "unlink-own-links"
	CapManagePlayers   Capability = "manage-players"
	CapRemoveAnyPlayer Capability = "remove-any-player"
	CapSeeNotes        Capability = "see-notes"
	CapRemoveSelf      Capability = "remove-self"
)

// CapabilitySet is the authorized-action vocabulary for one role on one
// document. A set rather than booleans so new roles only add a variant here
// instead of touching every call site.
type CapabilitySet map[Capability]struct{}

func (s CapabilitySet) Has(c Capability) bool {
	_, ok := s[c]
	return ok
}

// List returns the capabilities in lexicographic order for stable JSON output.
func (s CapabilitySet) List() []Capability {
	out := make([]Capability, 0, len(s))
	for c := range s {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func newSet(caps ...Capability) CapabilitySet {
	s := make(CapabilitySet, len(caps))
	for _, c := range caps {
		s[c] = struct{}{}
	}
	return s
}

// Decision is the outcome of a policy check.
type Decision struct {
	Role         Role
	Capabilities CapabilitySet
}

// ForCharacter decides access to a character. linkedCampaigns are the
// campaigns referenced by the character's campaign id set that could actually
// be fetched; a campaign that failed to load simply cannot grant the DM role.
func ForCharacter(currentUserID string, ch *models.Character, linkedCampaigns []models.Campaign) (Decision, error) {
	if currentUserID == "" || ch == nil {
		return Decision{Role: RoleNone}, ErrPermissionDenied
	}

	if ch.UserID == currentUserID {
		return Decision{
			Role:         RoleOwner,
			Capabilities: newSet(CapView, CapEdit, CapDelete, CapLinkCampaign, CapUnlinkOwnLinks),
		}, nil
	}

	for _, cp := range linkedCampaigns {
		if cp.UserID == currentUserID {
			return Decision{
				Role:         RoleCampaignDM,
				Capabilities: newSet(CapView),
			}, nil
		}
	}

	return Decision{Role: RoleNone}, ErrPermissionDenied
}

// ForCampaign decides access to a campaign. Owners see and manage everything,
// including private notes; players may view (without notes) and remove their
// own character; everyone else is denied.
func ForCampaign(currentUserID string, cp *models.Campaign) (Decision, error) {
	if currentUserID == "" || cp == nil {
		return Decision{Role: RoleNone}, ErrPermissionDenied
	}

	if cp.UserID == currentUserID {
		return Decision{
			Role:         RoleOwner,
			Capabilities: newSet(CapView, CapEdit, CapDelete, CapManagePlayers, CapRemoveAnyPlayer, CapSeeNotes),
		}, nil
	}

	if cp.HasPlayerUser(currentUserID) {
		return Decision{
			Role:         RolePlayer,
			Capabilities: newSet(CapView, CapRemoveSelf),
		}, nil
	}

	return Decision{Role: RoleNone}, ErrPermissionDenied
}
