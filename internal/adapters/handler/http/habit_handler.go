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

type HabitHandler struct {
	svc *services.HabitService
}

func NewHabitHandler(svc *services.HabitService) *HabitHandler {
	return &HabitHandler{
		svc: svc,
	}
}

type completeHabitRequest struct {
	Count int    `json:"count"`
	Date  string `json:"date"`
}

type completeHabitResponse struct {
	Habit     domain.HabitRecord    `json:"habit"`
	XPAwarded int                   `json:"xp_awarded"`
	Progress  services.UserProgress `json:"progress"`
}

type sharePayloadResponse struct {
	Payload string `json:"payload"`
}

func (h *HabitHandler) RegisterRoutes(router *gin.RouterGroup) {
	habits := router.Group("/habits")
	{
		habits.POST("", h.Create)
		habits.GET("", h.List)
		habits.GET("/public", h.ListPublic)
		habits.GET("/resolve", h.Resolve)
		habits.GET("/:id", h.Get)
		habits.PUT("/:id", h.Update)
		habits.DELETE("/:id", h.Delete)
		habits.POST("/:id/complete", h.Complete)
		habits.POST("/:id/copy", h.Copy)
		habits.POST("/:id/share", h.Share)
		habits.GET("/:id/participants", h.Participants)
		habits.GET("/:id/participant-stats", h.ParticipantStats)
	}
}

// writeHabitError maps domain errors onto HTTP statuses. Anything not
// recognized is an internal error and its detail stays server-side.
func writeHabitError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrHabitNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "habit not found"})
	case errors.Is(err, domain.ErrParticipantNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "participant not found"})
	case errors.Is(err, domain.ErrHabitTitleEmpty),
		errors.Is(err, domain.ErrHabitTitleTooLong),
		errors.Is(err, domain.ErrInvalidReminder),
		errors.Is(err, domain.ErrInvalidSharePayload),
		errors.Is(err, domain.ErrInvalidDate):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrFutureDate),
		errors.Is(err, domain.ErrHabitNotScheduled):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrCompletionPending):
		c.JSON(http.StatusConflict, gin.H{"error": "completion already in progress"})
	case errors.Is(err, domain.ErrHabitAlreadyCopied):
		c.JSON(http.StatusConflict, gin.H{"error": "habit already copied"})
	case errors.Is(err, domain.ErrHabitNotPublic):
		c.JSON(http.StatusForbidden, gin.H{"error": "habit is not public"})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func (h *HabitHandler) Create(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	var payload domain.HabitPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	habit, err := h.svc.Create(c.Request.Context(), userID, payload.Form())
	if err != nil {
		writeHabitError(c, err)
		return
	}

	c.JSON(http.StatusCreated, habit.ToRecord(today()))
}

func today() string {
	return domain.FormatLocalDate(time.Now())
}

func (h *HabitHandler) List(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	date := c.Query("date")
	if date != "" {
		if _, err := domain.ParseLocalDate(date); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date format, use YYYY-MM-DD"})
			return
		}
	}

	list, err := h.svc.ListByOwner(c.Request.Context(), userID, date)
	if err != nil {
		writeHabitError(c, err)
		return
	}

	viewDate := date
	if viewDate == "" {
		viewDate = today()
	}
	records := make([]domain.HabitRecord, 0, len(list))
	for _, habit := range list {
		records = append(records, habit.ToRecord(viewDate))
	}

	c.JSON(http.StatusOK, records)
}

func (h *HabitHandler) ListPublic(c *gin.Context) {
	if _, ok := middleware.GetUserID(c); !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	list, err := h.svc.ListPublic(c.Request.Context(), c.Query("search"), limit)
	if err != nil {
		writeHabitError(c, err)
		return
	}

	viewDate := today()
	records := make([]domain.HabitRecord, 0, len(list))
	for _, habit := range list {
		records = append(records, habit.ToRecord(viewDate))
	}

	c.JSON(http.StatusOK, records)
}

func (h *HabitHandler) Get(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	habit, err := h.svc.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		writeHabitError(c, err)
		return
	}

	c.JSON(http.StatusOK, habit.ToRecord(today()))
}

func (h *HabitHandler) Update(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	var payload domain.HabitPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	habit, err := h.svc.Update(c.Request.Context(), userID, c.Param("id"), payload.Form())
	if err != nil {
		writeHabitError(c, err)
		return
	}

	c.JSON(http.StatusOK, habit.ToRecord(today()))
}

func (h *HabitHandler) Delete(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	if err := h.svc.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		writeHabitError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *HabitHandler) Complete(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	var req completeHabitRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	result, err := h.svc.Complete(c.Request.Context(), services.CompleteInput{
		OwnerID: userID,
		HabitID: c.Param("id"),
		Count:   req.Count,
		Date:    req.Date,
	})
	if err != nil {
		writeHabitError(c, err)
		return
	}

	viewDate := req.Date
	if viewDate == "" {
		viewDate = today()
	}
	c.JSON(http.StatusOK, completeHabitResponse{
		Habit:     result.Habit.ToRecord(viewDate),
		XPAwarded: result.XPAwarded,
		Progress:  result.Progress,
	})
}

func (h *HabitHandler) Copy(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	habit, err := h.svc.Copy(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		writeHabitError(c, err)
		return
	}

	c.JSON(http.StatusCreated, habit.ToRecord(today()))
}

func (h *HabitHandler) Participants(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	list, err := h.svc.Participants(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		writeHabitError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

func (h *HabitHandler) ParticipantStats(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	targetID := c.Query("user_id")
	if targetID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}

	habit, err := h.svc.ParticipantStats(c.Request.Context(), userID, c.Param("id"), targetID)
	if err != nil {
		writeHabitError(c, err)
		return
	}

	c.JSON(http.StatusOK, habit.ToRecord(today()))
}

// Resolve turns a Telegram start parameter into the public habit it
// points at, so the client can offer the copy flow on deep-link entry.
func (h *HabitHandler) Resolve(c *gin.Context) {
	if _, ok := middleware.GetUserID(c); !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	habit, err := h.svc.Resolve(c.Request.Context(), c.Query("payload"))
	if err != nil {
		writeHabitError(c, err)
		return
	}

	c.JSON(http.StatusOK, habit.ToRecord(today()))
}

func (h *HabitHandler) Share(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	payload, err := h.svc.Share(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		writeHabitError(c, err)
		return
	}

	c.JSON(http.StatusOK, sharePayloadResponse{Payload: payload})
}
