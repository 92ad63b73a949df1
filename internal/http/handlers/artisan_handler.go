package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/artisan-backend/internal/http/handlers/common"
	"github.com/ignatzorin/artisan-backend/internal/repository"
	"github.com/ignatzorin/artisan-backend/internal/service"
)

// ArtisanHandler предоставляет HTTP слой для мастеров: каталог, профиль,
// доступность и заработок.
type ArtisanHandler struct {
	artisans     *service.ArtisanService
	availability *service.AvailabilityService
	ledger       *service.LedgerService
	ratings      *service.RatingService
}

// NewArtisanHandler создаёт хэндлер мастеров.
func NewArtisanHandler(artisans *service.ArtisanService, availability *service.AvailabilityService, ledger *service.LedgerService, ratings *service.RatingService) *ArtisanHandler {
	return &ArtisanHandler{
		artisans:     artisans,
		availability: availability,
		ledger:       ledger,
		ratings:      ratings,
	}
}

// List обрабатывает GET /artisans.
func (h *ArtisanHandler) List(c *gin.Context) {
	limit, offset := common.GetPagination(c)

	params := repository.ArtisanListParams{
		OnlyVerified: c.Query("verified") != "false",
		Availability: c.Query("availability"),
		Limit:        limit,
		Offset:       offset,
	}

	if raw := c.Query("category_id"); raw != "" {
		categoryID, err := uuid.Parse(raw)
		if err != nil {
			common.RespondBadRequest(c, "category_id должен быть валидным UUID")
			return
		}
		params.CategoryID = &categoryID
	}

	artisans, err := h.artisans.List(c.Request.Context(), params)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"artisans": artisans})
}

// Get обрабатывает GET /artisans/:id.
func (h *ArtisanHandler) Get(c *gin.Context) {
	artisanID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	user, profile, err := h.artisans.GetProfile(c.Request.Context(), artisanID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":    user,
		"profile": profile,
	})
}

// Rating обрабатывает GET /artisans/:id/rating.
func (h *ArtisanHandler) Rating(c *gin.Context) {
	artisanID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	rating, count, err := h.ratings.Get(c.Request.Context(), artisanID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"rating":       rating,
		"review_count": count,
	})
}

// GetAvailability обрабатывает GET /artisan/availability.
func (h *ArtisanHandler) GetAvailability(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	status, err := h.availability.Get(c.Request.Context(), userID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"availability": status})
}

// SetAvailability обрабатывает PUT /artisan/availability.
func (h *ArtisanHandler) SetAvailability(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	var req struct {
		Availability string `json:"availability" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := h.availability.SetManual(c.Request.Context(), userID, req.Availability); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"availability": req.Availability})
}

// Earnings обрабатывает GET /artisan/earnings.
func (h *ArtisanHandler) Earnings(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	summary, err := h.ledger.GetSummary(c.Request.Context(), userID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"earnings": summary})
}
