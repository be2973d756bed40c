package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dmhub/campaign-manager-api/internal/dto"
	apierrors "github.com/dmhub/campaign-manager-api/internal/errors"
	"github.com/dmhub/campaign-manager-api/internal/middleware"
	"github.com/dmhub/campaign-manager-api/internal/models"
	"github.com/dmhub/campaign-manager-api/internal/policy"
	"github.com/dmhub/campaign-manager-api/internal/repository"
	"github.com/dmhub/campaign-manager-api/internal/services"
	"github.com/dmhub/campaign-manager-api/internal/utils"
)

// CampaignHandler coordinates campaign-related HTTP handlers.
type CampaignHandler struct {
	campaignService *services.CampaignService
}

// NewCampaignHandler creates a new CampaignHandler.
func NewCampaignHandler(campaignService *services.CampaignService) *CampaignHandler {
	return &CampaignHandler{
		campaignService: campaignService,
	}
}

// List returns the campaigns the current user runs, newest first.
func (h *CampaignHandler) List(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	params := utils.GetPaginationParams(c)

	campaigns, total, err := h.campaignService.List(userID, params)
	if err != nil {
		respondCampaignError(c, err)
		return
	}

	items := make([]dto.CampaignListItemDTO, 0, len(campaigns))
	for _, cp := range campaigns {
		items = append(items, dto.ToCampaignListItemDTO(cp))
	}

	c.JSON(http.StatusOK, dto.CampaignListResponse{
		Campaigns:  items,
		Page:       params.Page,
		PageSize:   params.Limit,
		TotalCount: total,
	})
}

// Create persists a new campaign run by the current user.
func (h *CampaignHandler) Create(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	var cp models.Campaign
	if err := c.ShouldBindJSON(&cp); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}
	if strings.TrimSpace(cp.CampaignName) == "" {
		apierrors.BadRequest(c, "Campaign name is required")
		return
	}

	if err := h.campaignService.Create(userID, &cp); err != nil {
		respondCampaignError(c, err)
		return
	}

	c.JSON(http.StatusCreated, cp)
}

// Get returns one campaign with the viewer's role, capabilities and the
// resolved player roster.
func (h *CampaignHandler) Get(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	view, err := h.campaignService.Get(userID, c.Param("id"))
	if err != nil {
		respondCampaignError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToCampaignDetailDTO(view))
}

// Update replaces the campaign's own fields.
func (h *CampaignHandler) Update(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	var cp models.Campaign
	if err := c.ShouldBindJSON(&cp); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	updated, err := h.campaignService.Update(userID, c.Param("id"), &cp)
	if err != nil {
		respondCampaignError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

// Delete removes the campaign and strips its id from linked characters.
func (h *CampaignHandler) Delete(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	if err := h.campaignService.Delete(userID, c.Param("id")); err != nil {
		respondCampaignError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Campaign deleted"})
}

// RemovePlayer takes a character out of the campaign roster.
func (h *CampaignHandler) RemovePlayer(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	err := h.campaignService.RemovePlayer(userID, c.Param("id"), c.Param("characterId"))
	if err != nil {
		respondCampaignError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Player removed from campaign"})
}

func respondCampaignError(c *gin.Context, err error) {
	var partial *services.PartialFailureError
	var indexErr *repository.IndexRequiredError

	switch {
	case errors.Is(err, services.ErrCampaignNotFound),
		errors.Is(err, services.ErrCharacterNotFound),
		errors.Is(err, services.ErrPlayerNotInCampaign):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, policy.ErrPermissionDenied),
		errors.Is(err, services.ErrNotLinkParticipant):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrNotLinked),
		errors.Is(err, services.ErrPairBusy):
		apierrors.Conflict(c, err.Error())
	case errors.As(err, &partial):
		code := apierrors.ErrCodeLinkPartiallyFailed
		if partial.Op == "unlink" {
			code = apierrors.ErrCodeUnlinkPartiallyFailed
		}
		apierrors.InternalErrorWithCode(c, code, "Link update partially failed, retry to repair", gin.H{
			"character_id": partial.CharacterID,
			"campaign_id":  partial.CampaignID,
		})
	case errors.As(err, &indexErr):
		apierrors.ServiceUnavailableWithCode(c, apierrors.ErrCodeIndexRequired, err.Error(), gin.H{
			"index": indexErr.Index,
		})
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
