package handlers

import (
	"bytes"
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dmhub/campaign-manager-api/internal/dto"
	apierrors "github.com/dmhub/campaign-manager-api/internal/errors"
	"github.com/dmhub/campaign-manager-api/internal/middleware"
	"github.com/dmhub/campaign-manager-api/internal/models"
	"github.com/dmhub/campaign-manager-api/internal/policy"
	"github.com/dmhub/campaign-manager-api/internal/repository"
	"github.com/dmhub/campaign-manager-api/internal/services"
	"github.com/dmhub/campaign-manager-api/internal/sheet"
	"github.com/dmhub/campaign-manager-api/internal/utils"
)

// portraitMaxBytes caps portrait uploads at 5 MiB.
const portraitMaxBytes = 5 << 20

// CharacterHandler coordinates character-related HTTP handlers.
type CharacterHandler struct {
	characterService *services.CharacterService
	authService      *services.AuthService
	linkService      *services.LinkService
	exporter         *sheet.Exporter
}

// NewCharacterHandler creates a new CharacterHandler.
func NewCharacterHandler(characterService *services.CharacterService, authService *services.AuthService, linkService *services.LinkService, exporter *sheet.Exporter) *CharacterHandler {
	return &CharacterHandler{
		characterService: characterService,
		authService:      authService,
		linkService:      linkService,
		exporter:         exporter,
	}
}

// List returns the current user's characters, newest first.
func (h *CharacterHandler) List(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	params := utils.GetPaginationParams(c)

	characters, total, err := h.characterService.List(userID, params)
	if err != nil {
		respondCharacterError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.CharacterListResponse{
		Characters: characters,
		Page:       params.Page,
		PageSize:   params.Limit,
		TotalCount: total,
	})
}

// Create persists a new character owned by the current user.
func (h *CharacterHandler) Create(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	var ch models.Character
	if err := c.ShouldBindJSON(&ch); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}
	if strings.TrimSpace(ch.CharacterName) == "" {
		apierrors.BadRequest(c, "Character name is required")
		return
	}

	if err := h.characterService.Create(userID, &ch); err != nil {
		respondCharacterError(c, err)
		return
	}

	c.JSON(http.StatusCreated, ch)
}

// Get returns one character with the viewer's role, capabilities and
// resolved campaign links.
func (h *CharacterHandler) Get(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	view, err := h.characterService.Get(userID, c.Param("id"))
	if err != nil {
		respondCharacterError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToCharacterDetailDTO(view))
}

// Update replaces the character's sheet fields.
func (h *CharacterHandler) Update(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	var ch models.Character
	if err := c.ShouldBindJSON(&ch); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	updated, err := h.characterService.Update(userID, c.Param("id"), &ch)
	if err != nil {
		respondCharacterError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

// Delete removes the character and unwinds its campaign links.
func (h *CharacterHandler) Delete(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	if err := h.characterService.Delete(userID, c.Param("id")); err != nil {
		respondCharacterError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Character deleted"})
}

// Link joins the character into a campaign identified by its share code.
func (h *CharacterHandler) Link(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	type LinkRequest struct {
		CampaignID string `json:"campaign_id" binding:"required"`
	}
	var req LinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	ident := h.authService.Identity(userID)
	if err := h.linkService.Link(ident, c.Param("id"), req.CampaignID); err != nil {
		respondCharacterError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Character linked to campaign"})
}

// Unlink removes the character from a campaign.
func (h *CharacterHandler) Unlink(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	if err := h.linkService.Unlink(userID, c.Param("id"), c.Param("campaignId")); err != nil {
		respondCharacterError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Character unlinked from campaign"})
}

// ExportSheet streams the character's filled PDF sheet.
func (h *CharacterHandler) ExportSheet(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	view, err := h.characterService.Get(userID, c.Param("id"))
	if err != nil {
		respondCharacterError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := h.exporter.Export(view.Character, &buf); err != nil {
		respondCharacterError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+sheet.Filename(view.Character)+`"`)
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

// UploadPortrait stores a new portrait image for the character.
func (h *CharacterHandler) UploadPortrait(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	file, err := c.FormFile("image")
	if err != nil {
		apierrors.BadRequest(c, "Image file is required")
		return
	}
	if file.Size > portraitMaxBytes {
		apierrors.BadRequest(c, "Image exceeds the 5MB limit")
		return
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	switch ext {
	case ".png", ".jpg", ".jpeg", ".gif", ".webp":
	default:
		apierrors.BadRequest(c, "Unsupported image type")
		return
	}

	src, err := file.Open()
	if err != nil {
		apierrors.InternalError(c, "Failed to read upload")
		return
	}
	defer src.Close()

	ch, err := h.characterService.SetPortrait(userID, c.Param("id"), ext, src)
	if err != nil {
		respondCharacterError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"image_url": ch.ImageURL})
}

func respondCharacterError(c *gin.Context, err error) {
	var partial *services.PartialFailureError
	var indexErr *repository.IndexRequiredError
	var templateErr *sheet.TemplateUnavailableError

	switch {
	case errors.Is(err, services.ErrCharacterNotFound),
		errors.Is(err, services.ErrCampaignNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, policy.ErrPermissionDenied),
		errors.Is(err, services.ErrNotCharacterOwner),
		errors.Is(err, services.ErrNotLinkParticipant):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrAlreadyLinked):
		apierrors.ConflictWithCode(c, apierrors.ErrCodeAlreadyLinked, err.Error())
	case errors.Is(err, services.ErrNotLinked):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrPairBusy):
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
	case errors.As(err, &templateErr):
		apierrors.ServiceUnavailableWithCode(c, apierrors.ErrCodeTemplateUnavailable, "Sheet template is not installed", gin.H{
			"attempted": templateErr.Attempted,
		})
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
