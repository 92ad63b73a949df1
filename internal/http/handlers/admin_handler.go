package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/artisan-backend/internal/http/handlers/common"
	"github.com/ignatzorin/artisan-backend/internal/service"
)

// AdminHandler предоставляет HTTP слой для панели администратора:
// статистика и верификация мастеров.
type AdminHandler struct {
	stats        *service.StatsService
	verification *service.VerificationService
	auth         *service.AuthService
}

// NewAdminHandler создаёт хэндлер администратора.
func NewAdminHandler(stats *service.StatsService, verification *service.VerificationService, auth *service.AuthService) *AdminHandler {
	return &AdminHandler{
		stats:        stats,
		verification: verification,
		auth:         auth,
	}
}

// Dashboard обрабатывает GET /admin/dashboard.
func (h *AdminHandler) Dashboard(c *gin.Context) {
	stats, err := h.stats.Dashboard(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

// ListVerifications обрабатывает GET /admin/verifications.
func (h *AdminHandler) ListVerifications(c *gin.Context) {
	requests, err := h.verification.ListPending(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"verifications": requests})
}

// ReviewVerification обрабатывает POST /admin/verifications/:id/review.
func (h *AdminHandler) ReviewVerification(c *gin.Context) {
	reviewerID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	verificationID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req struct {
		Approve *bool   `json:"approve" binding:"required"`
		Comment *string `json:"comment"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	updated, err := h.verification.Review(c.Request.Context(), verificationID, reviewerID, *req.Approve, req.Comment)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"verification": updated})
}

// DeactivateUser обрабатывает POST /admin/users/:id/deactivate.
func (h *AdminHandler) DeactivateUser(c *gin.Context) {
	userID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req struct {
		Reason    *string `json:"reason"`
		Permanent bool    `json:"permanent"`
	}

	_ = c.ShouldBindJSON(&req)

	if err := h.auth.Deactivate(c.Request.Context(), userID, req.Reason, req.Permanent); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "пользователь деактивирован"})
}
