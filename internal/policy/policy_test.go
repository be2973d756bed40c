package policy

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmhub/campaign-manager-api/internal/models"
)

func TestForCharacterOwner(t *testing.T) {
	ch := &models.Character{ID: "char-1", UserID: "alice"}

	d, err := ForCharacter("alice", ch, nil)
	require.NoError(t, err)
	require.Equal(t, RoleOwner, d.Role)
	require.True(t, d.Capabilities.Has(CapView))
	require.True(t, d.Capabilities.Has(CapEdit))
	require.True(t, d.Capabilities.Has(CapDelete))
	require.True(t, d.Capabilities.Has(CapLinkCampaign))
	require.True(t, d.Capabilities.Has(CapUnlinkOwnLinks))
	require.False(t, d.Capabilities.Has(CapManagePlayers))
}

func TestForCharacterCampaignDM(t *testing.T) {
	ch := &models.Character{ID: "char-1", UserID: "alice", CampaignIDs: []string{"camp-1"}}
	campaigns := []models.Campaign{{ID: "camp-1", UserID: "bob"}}

	d, err := ForCharacter("bob", ch, campaigns)
	require.NoError(t, err)
	require.Equal(t, RoleCampaignDM, d.Role)
	require.True(t, d.Capabilities.Has(CapView))
	require.False(t, d.Capabilities.Has(CapEdit))
	require.False(t, d.Capabilities.Has(CapDelete))
	require.False(t, d.Capabilities.Has(CapLinkCampaign))
}

func TestForCharacterStranger(t *testing.T) {
	ch := &models.Character{ID: "char-1", UserID: "alice", CampaignIDs: []string{"camp-1"}}
	campaigns := []models.Campaign{{ID: "camp-1", UserID: "bob"}}

	_, err := ForCharacter("mallory", ch, campaigns)
	require.ErrorIs(t, err, ErrPermissionDenied)
}

func TestForCharacterUnresolvedCampaignGrantsNothing(t *testing.T) {
	// The campaign bob runs exists in the character's id set but failed to
	// load, so it is absent from the resolved slice. No role for bob.
	ch := &models.Character{ID: "char-1", UserID: "alice", CampaignIDs: []string{"camp-1"}}

	_, err := ForCharacter("bob", ch, nil)
	require.ErrorIs(t, err, ErrPermissionDenied)
}

func TestForCharacterAnonymous(t *testing.T) {
	ch := &models.Character{ID: "char-1", UserID: "alice"}

	_, err := ForCharacter("", ch, nil)
	require.ErrorIs(t, err, ErrPermissionDenied)
}

func TestForCampaignOwner(t *testing.T) {
	cp := &models.Campaign{ID: "camp-1", UserID: "bob"}

	d, err := ForCampaign("bob", cp)
	require.NoError(t, err)
	require.Equal(t, RoleOwner, d.Role)
	require.True(t, d.Capabilities.Has(CapView))
	require.True(t, d.Capabilities.Has(CapEdit))
	require.True(t, d.Capabilities.Has(CapDelete))
	require.True(t, d.Capabilities.Has(CapManagePlayers))
	require.True(t, d.Capabilities.Has(CapRemoveAnyPlayer))
	require.True(t, d.Capabilities.Has(CapSeeNotes))
}

func TestForCampaignPlayer(t *testing.T) {
	cp := &models.Campaign{
		ID:     "camp-1",
		UserID: "bob",
		Players: []models.PlayerLink{
			{UserID: "alice", CharacterID: "char-1", CharacterName: "Tasha"},
		},
	}

	d, err := ForCampaign("alice", cp)
	require.NoError(t, err)
	require.Equal(t, RolePlayer, d.Role)
	require.True(t, d.Capabilities.Has(CapView))
	require.True(t, d.Capabilities.Has(CapRemoveSelf))
	require.False(t, d.Capabilities.Has(CapSeeNotes))
	require.False(t, d.Capabilities.Has(CapRemoveAnyPlayer))
	require.False(t, d.Capabilities.Has(CapEdit))
}

func TestForCampaignStranger(t *testing.T) {
	cp := &models.Campaign{
		ID:      "camp-1",
		UserID:  "bob",
		Players: []models.PlayerLink{{UserID: "alice", CharacterID: "char-1"}},
	}

	_, err := ForCampaign("mallory", cp)
	require.ErrorIs(t, err, ErrPermissionDenied)
}

func TestCapabilitySetList(t *testing.T) {
	s := newSet(CapView, CapEdit, CapDelete)
	require.Equal(t, []Capability{CapDelete, CapEdit, CapView}, s.List())
}
