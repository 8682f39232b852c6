package handlers

import (
	"errors"
	"io"
	"net/http"

	"habithive/internal/application/usecase"
	"habithive/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type HabitHandler struct {
	habits *usecase.HabitSync
}

func NewHabitHandler(habits *usecase.HabitSync) *HabitHandler {
	return &HabitHandler{habits: habits}
}

func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	uid, err := uuid.Parse(c.GetString("userId")) // из AuthMiddleware
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid user id"})
		return uuid.Nil, false
	}
	return uid, true
}

// GET /api/v1/habits
func (h *HabitHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	habits, err := h.habits.List(c, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load habits"})
		return
	}
	c.JSON(http.StatusOK, toTodayView(habits))
}

// POST /api/v1/habits
func (h *HabitHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	habitID, err := h.habits.Create(c, userID, req.Name, req.Description)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyHabitName) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "habit name cannot be empty"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to add habit"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": habitID.String()})
}

// POST /api/v1/habits/:id/toggle
func (h *HabitHandler) Toggle(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	habitID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid habit id"})
		return
	}

	if err := h.habits.Toggle(c, userID, habitID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update habit"})
		return
	}

	// Удалённая привычка — тоже успех: состояние уже согласовано
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// DELETE /api/v1/habits/:id
func (h *HabitHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	habitID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid habit id"})
		return
	}

	if err := h.habits.Delete(c, userID, habitID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete habit"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GET /api/v1/habits/history
func (h *HabitHandler) History(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	habits, err := h.habits.List(c, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load habits"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"habits": toHistory(habits)})
}

// GET /api/v1/habits/stream
// SSE-поток: полный снапшот коллекции на каждое изменение,
// аналог realtime-листенера мобильного клиента.
func (h *HabitHandler) Stream(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	sess, err := h.habits.Subscribe(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to subscribe"})
		return
	}
	defer sess.Close()

	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		select {
		case habits, ok := <-sess.Snapshots():
			if !ok {
				return false
			}
			c.SSEvent("snapshot", toTodayView(habits))
			return true
		case err := <-sess.Errs():
			c.SSEvent("error", gin.H{"error": err.Error()})
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
