package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/itskasymzhomartsanzhar/routr/internal/core/services"
)

type AuthHandler struct {
	service *services.AuthService
}

func NewAuthHandler(service *services.AuthService) *AuthHandler {
	return &AuthHandler{
		service: service,
	}
}

type telegramAuthRequest struct {
	InitData string `json:"init_data" binding:"required"`
}

func (h *AuthHandler) Telegram(c *gin.Context) {
	var req telegramAuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.service.Authenticate(c.Request.Context(), req.InitData)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidInitData):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid init data"})
		case errors.Is(err, services.ErrStaleInitData):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "init data expired, relaunch the app"})
		default:
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/telegram", h.Telegram)
	}
}
