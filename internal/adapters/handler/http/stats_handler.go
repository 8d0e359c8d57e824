package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/itskasymzhomartsanzhar/routr/internal/adapters/handler/http/middleware"
	"github.com/itskasymzhomartsanzhar/routr/internal/core/domain"
	"github.com/itskasymzhomartsanzhar/routr/internal/core/services"
)

type StatsHandler struct {
	stats       *services.StatsService
	leaderboard *services.LeaderboardService
}

func NewStatsHandler(stats *services.StatsService, leaderboard *services.LeaderboardService) *StatsHandler {
	return &StatsHandler{stats: stats, leaderboard: leaderboard}
}

func (h *StatsHandler) RegisterRoutes(router *gin.RouterGroup) {
	stats := router.Group("/stats")
	{
		stats.GET("/balance", h.Balance)
		stats.GET("/range", h.Range)
		stats.GET("/leaderboard", h.Leaderboard)
	}
	router.GET("/habits/:id/calendar", h.Calendar)
	router.GET("/users/:id/profile", h.PublicProfile)
}

func writeStatsError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
	case errors.Is(err, domain.ErrHabitNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "habit not found"})
	case errors.Is(err, domain.ErrInvalidDate):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// Balance serves the category wheel. An optional user_id query shows
// another user's wheel, restricted to their public habits.
func (h *StatsHandler) Balance(c *gin.Context) {
	viewerID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	profileID := c.DefaultQuery("user_id", viewerID)

	result, err := h.stats.Balance(c.Request.Context(), viewerID, profileID)
	if err != nil {
		writeStatsError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *StatsHandler) Range(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	result, err := h.stats.Range(c.Request.Context(), userID, c.Query("start"), c.Query("end"))
	if err != nil {
		writeStatsError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *StatsHandler) Leaderboard(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	board, err := h.leaderboard.Get(c.Request.Context(), userID, c.Query("range"), limit)
	if err != nil {
		writeStatsError(c, err)
		return
	}

	c.JSON(http.StatusOK, board)
}

// PublicProfile serves the reduced profile for deep links carrying a
// profile_user_id parameter.
func (h *StatsHandler) PublicProfile(c *gin.Context) {
	if _, ok := middleware.GetUserID(c); !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	profile, err := h.stats.PublicProfile(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeStatsError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

func (h *StatsHandler) Calendar(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	now := time.Now()
	year, err := strconv.Atoi(c.DefaultQuery("year", strconv.Itoa(now.Year())))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid year"})
		return
	}
	month, err := strconv.Atoi(c.DefaultQuery("month", strconv.Itoa(int(now.Month()))))
	if err != nil || month < 1 || month > 12 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid month"})
		return
	}

	cal, err := h.stats.Calendar(c.Request.Context(), userID, c.Param("id"), year, time.Month(month))
	if err != nil {
		writeStatsError(c, err)
		return
	}

	c.JSON(http.StatusOK, cal)
}
