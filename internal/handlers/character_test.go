package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func createCharacter(t *testing.T, env *testEnv, cookies []*http.Cookie, name string) string {
	t.Helper()
	w := env.do(t, http.MethodPost, "/api/characters", map[string]any{
		"character_name": name,
		"class":          "Wizard",
		"strength":       8,
		"dexterity":      14,
	}, cookies)
	require.Equal(t, http.StatusCreated, w.Code)
	return decodeJSON(t, w)["id"].(string)
}

func createCampaign(t *testing.T, env *testEnv, cookies []*http.Cookie, name string) string {
	t.Helper()
	w := env.do(t, http.MethodPost, "/api/campaigns", map[string]any{
		"campaign_name": name,
		"notes":         "the lich is the mayor",
	}, cookies)
	require.Equal(t, http.StatusCreated, w.Code)
	return decodeJSON(t, w)["id"].(string)
}

// CharacterHandlerTestSuite defines the test suite for CharacterHandler
type CharacterHandlerTestSuite struct {
	suite.Suite
	env          *testEnv
	aliceCookies []*http.Cookie
	bobCookies   []*http.Cookie
}

func (s *CharacterHandlerTestSuite) SetupTest() {
	s.env = setupTestEnv(s.T())
	s.aliceCookies = s.env.signupAndLogin(s.T(), "alice@example.com", "Alice")
	s.bobCookies = s.env.signupAndLogin(s.T(), "bob@example.com", "Bob")
}

func (s *CharacterHandlerTestSuite) TestCreateAppliesDefaults() {
	w := s.env.do(s.T(), http.MethodPost, "/api/characters", map[string]any{
		"character_name": "Tasha",
	}, s.aliceCookies)
	s.Require().Equal(http.StatusCreated, w.Code)
	body := decodeJSON(s.T(), w)
	s.Require().Equal(float64(1), body["level"])
	s.Require().Equal(float64(10), body["strength"])
	s.Require().Equal("1d8", body["hit_dice"])
}

func (s *CharacterHandlerTestSuite) TestCreateRequiresName() {
	w := s.env.do(s.T(), http.MethodPost, "/api/characters", map[string]any{"class": "Bard"}, s.aliceCookies)
	s.Require().Equal(http.StatusBadRequest, w.Code)
}

func (s *CharacterHandlerTestSuite) TestLinkFlow() {
	charID := createCharacter(s.T(), s.env, s.aliceCookies, "Tasha")
	campID := createCampaign(s.T(), s.env, s.bobCookies, "Curse of Strahd")

	// Alice links her character using the campaign's share code.
	w := s.env.do(s.T(), http.MethodPost, "/api/characters/"+charID+"/links",
		map[string]any{"campaign_id": campID}, s.aliceCookies)
	s.Require().Equal(http.StatusOK, w.Code)

	// Both sides hold the link.
	w = s.env.do(s.T(), http.MethodGet, "/api/characters/"+charID, nil, s.aliceCookies)
	s.Require().Equal(http.StatusOK, w.Code)
	body := decodeJSON(s.T(), w)
	s.Require().Equal([]any{campID}, body["campaign_ids"])
	linked := body["linked_campaigns"].([]any)
	s.Require().Len(linked, 1)
	s.Require().Equal("Curse of Strahd", linked[0].(map[string]any)["campaign_name"])

	w = s.env.do(s.T(), http.MethodGet, "/api/campaigns/"+campID, nil, s.bobCookies)
	s.Require().Equal(http.StatusOK, w.Code)
	body = decodeJSON(s.T(), w)
	players := body["players"].([]any)
	s.Require().Len(players, 1)
	s.Require().Equal(charID, players[0].(map[string]any)["character_id"])
	s.Require().Equal("Tasha", players[0].(map[string]any)["character_name"])

	// Linking again conflicts.
	w = s.env.do(s.T(), http.MethodPost, "/api/characters/"+charID+"/links",
		map[string]any{"campaign_id": campID}, s.aliceCookies)
	s.Require().Equal(http.StatusConflict, w.Code)
	s.Require().Equal("ALREADY_LINKED", decodeJSON(s.T(), w)["code"])

	// Unlink clears both sides.
	w = s.env.do(s.T(), http.MethodDelete, "/api/characters/"+charID+"/links/"+campID, nil, s.aliceCookies)
	s.Require().Equal(http.StatusOK, w.Code)

	w = s.env.do(s.T(), http.MethodGet, "/api/characters/"+charID, nil, s.aliceCookies)
	body = decodeJSON(s.T(), w)
	s.Require().Empty(body["campaign_ids"])

	w = s.env.do(s.T(), http.MethodGet, "/api/campaigns/"+campID, nil, s.bobCookies)
	body = decodeJSON(s.T(), w)
	s.Require().Empty(body["players"])

	// With the link gone, Alice is no longer a player and loses campaign access.
	w = s.env.do(s.T(), http.MethodGet, "/api/campaigns/"+campID, nil, s.aliceCookies)
	s.Require().Equal(http.StatusForbidden, w.Code)
}

func (s *CharacterHandlerTestSuite) TestLinkRejectsNonOwner() {
	charID := createCharacter(s.T(), s.env, s.aliceCookies, "Tasha")
	campID := createCampaign(s.T(), s.env, s.bobCookies, "Curse of Strahd")

	// Bob cannot link Alice's character, even into his own campaign.
	w := s.env.do(s.T(), http.MethodPost, "/api/characters/"+charID+"/links",
		map[string]any{"campaign_id": campID}, s.bobCookies)
	s.Require().Equal(http.StatusForbidden, w.Code)
}

func (s *CharacterHandlerTestSuite) TestGetVisibility() {
	malloryCookies := s.env.signupAndLogin(s.T(), "mallory@example.com", "Mallory")

	charID := createCharacter(s.T(), s.env, s.aliceCookies, "Tasha")
	campID := createCampaign(s.T(), s.env, s.bobCookies, "Curse of Strahd")

	w := s.env.do(s.T(), http.MethodPost, "/api/characters/"+charID+"/links",
		map[string]any{"campaign_id": campID}, s.aliceCookies)
	s.Require().Equal(http.StatusOK, w.Code)

	// The owner is not view-only.
	w = s.env.do(s.T(), http.MethodGet, "/api/characters/"+charID, nil, s.aliceCookies)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Require().Equal(false, decodeJSON(s.T(), w)["view_only"])

	// The campaign DM can view but not edit.
	w = s.env.do(s.T(), http.MethodGet, "/api/characters/"+charID, nil, s.bobCookies)
	s.Require().Equal(http.StatusOK, w.Code)
	body := decodeJSON(s.T(), w)
	s.Require().Equal("campaign-dm", body["role"])
	s.Require().Equal(true, body["view_only"])
	s.Require().NotContains(body["capabilities"], "edit")

	w = s.env.do(s.T(), http.MethodPut, "/api/characters/"+charID,
		map[string]any{"character_name": "Stolen"}, s.bobCookies)
	s.Require().Equal(http.StatusForbidden, w.Code)

	// A stranger sees nothing.
	w = s.env.do(s.T(), http.MethodGet, "/api/characters/"+charID, nil, malloryCookies)
	s.Require().Equal(http.StatusForbidden, w.Code)
}

func (s *CharacterHandlerTestSuite) TestUpdateKeepsLinks() {
	charID := createCharacter(s.T(), s.env, s.aliceCookies, "Tasha")
	campID := createCampaign(s.T(), s.env, s.bobCookies, "Curse of Strahd")

	w := s.env.do(s.T(), http.MethodPost, "/api/characters/"+charID+"/links",
		map[string]any{"campaign_id": campID}, s.aliceCookies)
	s.Require().Equal(http.StatusOK, w.Code)

	// A full sheet update without campaign_ids must not drop the link.
	w = s.env.do(s.T(), http.MethodPut, "/api/characters/"+charID, map[string]any{
		"character_name": "Tasha the Archmage",
		"level":          18,
	}, s.aliceCookies)
	s.Require().Equal(http.StatusOK, w.Code)

	w = s.env.do(s.T(), http.MethodGet, "/api/characters/"+charID, nil, s.aliceCookies)
	body := decodeJSON(s.T(), w)
	s.Require().Equal("Tasha the Archmage", body["character_name"])
	s.Require().Equal([]any{campID}, body["campaign_ids"])
}

func (s *CharacterHandlerTestSuite) TestDeleteCascades() {
	charID := createCharacter(s.T(), s.env, s.aliceCookies, "Tasha")
	campID := createCampaign(s.T(), s.env, s.bobCookies, "Curse of Strahd")

	w := s.env.do(s.T(), http.MethodPost, "/api/characters/"+charID+"/links",
		map[string]any{"campaign_id": campID}, s.aliceCookies)
	s.Require().Equal(http.StatusOK, w.Code)

	w = s.env.do(s.T(), http.MethodDelete, "/api/characters/"+charID, nil, s.aliceCookies)
	s.Require().Equal(http.StatusOK, w.Code)

	w = s.env.do(s.T(), http.MethodGet, "/api/characters/"+charID, nil, s.aliceCookies)
	s.Require().Equal(http.StatusNotFound, w.Code)

	w = s.env.do(s.T(), http.MethodGet, "/api/campaigns/"+campID, nil, s.bobCookies)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Require().Empty(decodeJSON(s.T(), w)["players"])
}

func (s *CharacterHandlerTestSuite) TestList() {
	createCharacter(s.T(), s.env, s.aliceCookies, "Tasha")
	createCharacter(s.T(), s.env, s.aliceCookies, "Mordenkainen")
	createCharacter(s.T(), s.env, s.bobCookies, "Strahd")

	w := s.env.do(s.T(), http.MethodGet, "/api/characters", nil, s.aliceCookies)
	s.Require().Equal(http.StatusOK, w.Code)
	body := decodeJSON(s.T(), w)
	s.Require().Equal(float64(2), body["total_count"])
	s.Require().Len(body["characters"], 2)
}

func (s *CharacterHandlerTestSuite) TestSheetExportTemplateMissing() {
	// No template directories are configured in tests, so export reports the
	// template as unavailable rather than failing opaquely.
	charID := createCharacter(s.T(), s.env, s.aliceCookies, "Tasha")

	w := s.env.do(s.T(), http.MethodGet, "/api/characters/"+charID+"/sheet", nil, s.aliceCookies)
	s.Require().Equal(http.StatusServiceUnavailable, w.Code)
	s.Require().Equal("TEMPLATE_UNAVAILABLE", decodeJSON(s.T(), w)["code"])
}

func TestCharacterHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(CharacterHandlerTestSuite))
}
