package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/artisan-backend/internal/http/handlers/common"
	"github.com/ignatzorin/artisan-backend/internal/models"
	"github.com/ignatzorin/artisan-backend/internal/service"
)

// CategoryHandler предоставляет HTTP слой для категорий услуг.
type CategoryHandler struct {
	categories *service.CategoryService
}

// NewCategoryHandler создаёт хэндлер категорий.
func NewCategoryHandler(categories *service.CategoryService) *CategoryHandler {
	return &CategoryHandler{categories: categories}
}

// List обрабатывает GET /categories. Публичный endpoint: отдаются только
// активные категории; администратор запрашивает все через all=true.
func (h *CategoryHandler) List(c *gin.Context) {
	activeOnly := true
	if c.Query("all") == "true" {
		role, err := common.CurrentUserRole(c)
		if err == nil && role == models.RoleAdmin {
			activeOnly = false
		}
	}

	categories, err := h.categories.List(c.Request.Context(), activeOnly)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// Get обрабатывает GET /categories/:id.
func (h *CategoryHandler) Get(c *gin.Context) {
	categoryID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	category, err := h.categories.Get(c.Request.Context(), categoryID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"category": category})
}

// Create обрабатывает POST /admin/categories.
func (h *CategoryHandler) Create(c *gin.Context) {
	var req struct {
		Name        string  `json:"name" binding:"required"`
		Description *string `json:"description"`
		Icon        *string `json:"icon"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	category, err := h.categories.Create(c.Request.Context(), service.CategoryInput{
		Name:        req.Name,
		Description: req.Description,
		Icon:        req.Icon,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"category": category})
}

// Update обрабатывает PUT /admin/categories/:id.
func (h *CategoryHandler) Update(c *gin.Context) {
	categoryID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req struct {
		Name        string  `json:"name" binding:"required"`
		Description *string `json:"description"`
		Icon        *string `json:"icon"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	category, err := h.categories.Update(c.Request.Context(), categoryID, service.CategoryInput{
		Name:        req.Name,
		Description: req.Description,
		Icon:        req.Icon,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"category": category})
}

// SetActive обрабатывает PATCH /admin/categories/:id/active.
func (h *CategoryHandler) SetActive(c *gin.Context) {
	categoryID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req struct {
		Active *bool `json:"active" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := h.categories.SetActive(c.Request.Context(), categoryID, *req.Active); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "категория обновлена"})
}
