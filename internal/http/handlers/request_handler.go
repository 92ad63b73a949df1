package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/artisan-backend/internal/http/handlers/common"
	"github.com/ignatzorin/artisan-backend/internal/models"
	"github.com/ignatzorin/artisan-backend/internal/service"
)

// RequestHandler предоставляет HTTP слой для заявок на услуги.
type RequestHandler struct {
	requests *service.RequestService
}

// NewRequestHandler создаёт хэндлер заявок.
func NewRequestHandler(requests *service.RequestService) *RequestHandler {
	return &RequestHandler{requests: requests}
}

// currentActor собирает инициатора операции из контекста.
func currentActor(c *gin.Context) (service.Actor, bool) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return service.Actor{}, false
	}
	role, err := common.CurrentUserRole(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return service.Actor{}, false
	}
	return service.Actor{UserID: userID, Role: role}, true
}

// Create обрабатывает POST /requests.
func (h *RequestHandler) Create(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req struct {
		CategoryID    uuid.UUID  `json:"category_id" binding:"required"`
		Title         string     `json:"title" binding:"required"`
		Description   string     `json:"description" binding:"required"`
		Location      string     `json:"location" binding:"required"`
		PreferredDate *time.Time `json:"preferred_date"`
		PreferredTime *string    `json:"preferred_time"`
		PriceEstimate *float64   `json:"price_estimate"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	created, err := h.requests.Create(c.Request.Context(), service.CreateRequestInput{
		UserID:        actor.UserID,
		CategoryID:    req.CategoryID,
		Title:         req.Title,
		Description:   req.Description,
		Location:      req.Location,
		PreferredDate: req.PreferredDate,
		PreferredTime: req.PreferredTime,
		PriceEstimate: req.PriceEstimate,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"request": created})
}

// Get обрабатывает GET /requests/:id.
func (h *RequestHandler) Get(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	requestID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	req, err := h.requests.Get(c.Request.Context(), actor, requestID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"request": req})
}

// ListMine обрабатывает GET /requests — заявки текущего заказчика.
func (h *RequestHandler) ListMine(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	limit, offset := common.GetPagination(c)

	requests, err := h.requests.ListForCustomer(c.Request.Context(), actor.UserID, limit, offset)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"requests": requests})
}

// ListAssigned обрабатывает GET /artisan/requests — заявки мастера.
func (h *RequestHandler) ListAssigned(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	limit, offset := common.GetPagination(c)
	status := c.Query("status")

	requests, err := h.requests.ListForArtisan(c.Request.Context(), actor.UserID, status, limit, offset)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"requests": requests})
}

// ListAll обрабатывает GET /admin/requests.
func (h *RequestHandler) ListAll(c *gin.Context) {
	limit, offset := common.GetPagination(c)
	status := c.Query("status")

	requests, err := h.requests.ListAll(c.Request.Context(), status, limit, offset)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"requests": requests})
}

// Assign обрабатывает POST /admin/requests/:id/assign.
func (h *RequestHandler) Assign(c *gin.Context) {
	requestID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req struct {
		ArtisanID  uuid.UUID `json:"artisan_id" binding:"required"`
		AdminNotes *string   `json:"admin_notes"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	updated, err := h.requests.Assign(c.Request.Context(), requestID, req.ArtisanID, req.AdminNotes)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"request": updated})
}

// UpdateStatus обрабатывает PATCH /requests/:id/status.
func (h *RequestHandler) UpdateStatus(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	requestID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	updated, err := h.requests.Transition(c.Request.Context(), actor, requestID, req.Status)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"request": updated})
}

// Accept обрабатывает POST /artisan/requests/:id/accept — мастер берёт
// назначенную заявку в работу.
func (h *RequestHandler) Accept(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	requestID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	updated, err := h.requests.Transition(c.Request.Context(), actor, requestID, models.RequestStatusInProgress)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"request": updated})
}

// Complete обрабатывает POST /artisan/requests/:id/complete.
func (h *RequestHandler) Complete(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	requestID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	updated, err := h.requests.Transition(c.Request.Context(), actor, requestID, models.RequestStatusCompleted)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"request": updated})
}

// Cancel обрабатывает POST /requests/:id/cancel.
func (h *RequestHandler) Cancel(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	requestID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	updated, err := h.requests.Transition(c.Request.Context(), actor, requestID, models.RequestStatusCancelled)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"request": updated})
}

// Feedback обрабатывает POST /requests/:id/feedback.
func (h *RequestHandler) Feedback(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	requestID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req struct {
		Rating   int     `json:"rating" binding:"required"`
		Feedback *string `json:"feedback"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	updated, err := h.requests.AttachFeedback(c.Request.Context(), actor, requestID, req.Rating, req.Feedback)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"request": updated})
}

// UpdatePrice обрабатывает PATCH /admin/requests/:id/price.
func (h *RequestHandler) UpdatePrice(c *gin.Context) {
	requestID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req struct {
		PriceEstimate *float64 `json:"price_estimate"`
		ActualPrice   *float64 `json:"actual_price"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	updated, err := h.requests.UpdatePrice(c.Request.Context(), requestID, req.PriceEstimate, req.ActualPrice)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"request": updated})
}
