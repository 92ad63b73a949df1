package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/ignatzorin/artisan-backend/internal/http/middleware"
	"github.com/ignatzorin/artisan-backend/internal/models"
)

func authContext(userID uuid.UUID, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextUserIDKey, userID)
		c.Set(middleware.ContextRoleKey, role)
		c.Next()
	}
}

func TestRequestHandler_Create_Unauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &RequestHandler{requests: nil}
	r.POST("/requests", handler.Create)

	req, _ := http.NewRequest("POST", "/requests", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequestHandler_Get_InvalidID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(authContext(uuid.New(), models.RoleCustomer))
	handler := &RequestHandler{requests: nil}
	r.GET("/requests/:id", handler.Get)

	req, _ := http.NewRequest("GET", "/requests/not-a-uuid", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRequestHandler_Cancel_Unauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &RequestHandler{requests: nil}
	r.POST("/requests/:id/cancel", handler.Cancel)

	requestID := uuid.New()
	req, _ := http.NewRequest("POST", "/requests/"+requestID.String()+"/cancel", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequestHandler_Feedback_MissingBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(authContext(uuid.New(), models.RoleCustomer))
	handler := &RequestHandler{requests: nil}
	r.POST("/requests/:id/feedback", handler.Feedback)

	requestID := uuid.New()
	req, _ := http.NewRequest("POST", "/requests/"+requestID.String()+"/feedback", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRequestHandler_UpdateStatus_InvalidID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(authContext(uuid.New(), models.RoleAdmin))
	handler := &RequestHandler{requests: nil}
	r.PATCH("/requests/:id/status", handler.UpdateStatus)

	req, _ := http.NewRequest("PATCH", "/requests/invalid/status", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
