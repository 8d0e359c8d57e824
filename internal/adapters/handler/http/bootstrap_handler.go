package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/itskasymzhomartsanzhar/routr/internal/adapters/handler/http/middleware"
	"github.com/itskasymzhomartsanzhar/routr/internal/core/domain"
	"github.com/itskasymzhomartsanzhar/routr/internal/core/services"
)

type BootstrapHandler struct {
	svc *services.BootstrapService
}

func NewBootstrapHandler(svc *services.BootstrapService) *BootstrapHandler {
	return &BootstrapHandler{svc: svc}
}

func (h *BootstrapHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/app/bootstrap", h.Bootstrap)
}

// Bootstrap returns everything the Mini App renders on launch in one
// response.
func (h *BootstrapHandler) Bootstrap(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	snapshot, err := h.svc.Snapshot(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, snapshot)
}
