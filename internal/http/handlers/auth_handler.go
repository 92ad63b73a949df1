package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/artisan-backend/internal/http/handlers/common"
	"github.com/ignatzorin/artisan-backend/internal/service"
)

// AuthHandler предоставляет HTTP слой для регистрации и логина.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler создаёт хэндлер.
func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// authResponse сериализует итог регистрации или входа.
func authResponse(result *service.AuthResult) gin.H {
	resp := gin.H{
		"user":   result.User,
		"tokens": result.TokenPair,
	}
	if result.Profile != nil {
		resp["artisan_profile"] = result.Profile
	}
	return resp
}

// Register обрабатывает POST /auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Email           string     `json:"email" binding:"required"`
		Phone           string     `json:"phone" binding:"required"`
		Password        string     `json:"password" binding:"required"`
		FullName        string     `json:"full_name" binding:"required"`
		Role            string     `json:"role"`
		Address         *string    `json:"address"`
		CategoryID      *uuid.UUID `json:"category_id"`
		Skills          *string    `json:"skills"`
		ExperienceYears int        `json:"experience_years"`
		HourlyRate      *float64   `json:"hourly_rate"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	meta := map[string]string{
		"user_agent": c.GetHeader("User-Agent"),
		"ip":         c.ClientIP(),
	}

	result, err := h.auth.Register(c.Request.Context(), service.RegisterInput{
		Email:           req.Email,
		Phone:           req.Phone,
		Password:        req.Password,
		FullName:        req.FullName,
		Role:            req.Role,
		Address:         req.Address,
		CategoryID:      req.CategoryID,
		Skills:          req.Skills,
		ExperienceYears: req.ExperienceYears,
		HourlyRate:      req.HourlyRate,
	}, meta)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, authResponse(result))
}

// Login обрабатывает POST /auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	meta := map[string]string{
		"user_agent": c.GetHeader("User-Agent"),
		"ip":         c.ClientIP(),
	}

	result, err := h.auth.Login(c.Request.Context(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	}, meta)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, authResponse(result))
}

// Refresh обрабатывает POST /auth/refresh.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	meta := map[string]string{
		"user_agent": c.GetHeader("User-Agent"),
		"ip":         c.ClientIP(),
	}

	pair, err := h.auth.Refresh(c.Request.Context(), req.RefreshToken, meta)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tokens": pair})
}

// Logout обрабатывает POST /auth/logout.
func (h *AuthHandler) Logout(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := h.auth.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "выход выполнен"})
}

// Me обрабатывает GET /auth/me.
func (h *AuthHandler) Me(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	user, profile, err := h.auth.Me(c.Request.Context(), userID)
	if err != nil {
		c.Error(err)
		return
	}

	resp := gin.H{"user": user}
	if profile != nil {
		resp["artisan_profile"] = profile
	}

	c.JSON(http.StatusOK, resp)
}

// UpgradeToArtisan обрабатывает POST /auth/upgrade-to-artisan.
func (h *AuthHandler) UpgradeToArtisan(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	var req struct {
		CategoryID      uuid.UUID `json:"category_id" binding:"required"`
		Skills          *string   `json:"skills"`
		ExperienceYears int       `json:"experience_years"`
		HourlyRate      *float64  `json:"hourly_rate"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	profile, err := h.auth.UpgradeToArtisan(c.Request.Context(), userID, service.ArtisanProfileInput{
		CategoryID:      req.CategoryID,
		Skills:          req.Skills,
		ExperienceYears: req.ExperienceYears,
		HourlyRate:      req.HourlyRate,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":         "заявка на верификацию отправлена",
		"artisan_profile": profile,
	})
}

// Deactivate обрабатывает POST /auth/deactivate.
func (h *AuthHandler) Deactivate(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	var req struct {
		Reason    *string `json:"reason"`
		Permanent bool    `json:"permanent"`
	}

	// Тело опционально: деактивация без причины допустима.
	_ = c.ShouldBindJSON(&req)

	if err := h.auth.Deactivate(c.Request.Context(), userID, req.Reason, req.Permanent); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":        "аккаунт деактивирован",
		"deactivated_at": time.Now().UTC(),
	})
}
