package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/artisan-backend/internal/http/handlers/common"
	"github.com/ignatzorin/artisan-backend/internal/service"
)

// WithdrawalHandler предоставляет HTTP слой для вывода средств.
type WithdrawalHandler struct {
	withdrawals *service.WithdrawalService
}

// NewWithdrawalHandler создаёт хэндлер выводов.
func NewWithdrawalHandler(withdrawals *service.WithdrawalService) *WithdrawalHandler {
	return &WithdrawalHandler{withdrawals: withdrawals}
}

// Create обрабатывает POST /artisan/withdrawals.
func (h *WithdrawalHandler) Create(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	var req struct {
		Amount         float64 `json:"amount" binding:"required"`
		Method         string  `json:"method" binding:"required"`
		AccountDetails string  `json:"account_details" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	withdrawal, err := h.withdrawals.Create(c.Request.Context(), userID, req.Amount, req.Method, req.AccountDetails)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"withdrawal": withdrawal})
}

// ListMine обрабатывает GET /artisan/withdrawals.
func (h *WithdrawalHandler) ListMine(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	withdrawals, err := h.withdrawals.ListForArtisan(c.Request.Context(), userID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"withdrawals": withdrawals})
}

// ListAll обрабатывает GET /admin/withdrawals.
func (h *WithdrawalHandler) ListAll(c *gin.Context) {
	limit, offset := common.GetPagination(c)
	status := c.Query("status")

	withdrawals, err := h.withdrawals.ListAll(c.Request.Context(), status, limit, offset)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"withdrawals": withdrawals})
}

// UpdateStatus обрабатывает PATCH /admin/withdrawals/:id.
func (h *WithdrawalHandler) UpdateStatus(c *gin.Context) {
	withdrawalID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req struct {
		Status          string  `json:"status" binding:"required"`
		RejectionReason *string `json:"rejection_reason"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	updated, err := h.withdrawals.UpdateStatus(c.Request.Context(), withdrawalID, req.Status, req.RejectionReason)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"withdrawal": updated})
}
