package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Conceptual-Machines/counterpoint-api/internal/api/middleware"
	"github.com/Conceptual-Machines/counterpoint-api/internal/logger"
	"github.com/Conceptual-Machines/counterpoint-api/internal/services"
	"github.com/Conceptual-Machines/counterpoint-api/internal/theory"
	"github.com/gin-gonic/gin"
)

type HistoryHandler struct {
	history *services.HistoryService
}

func NewHistoryHandler(history *services.HistoryService) *HistoryHandler {
	return &HistoryHandler{history: history}
}

// query builds the filter from ?species= and ?limit=. Callers behind the
// gateway only see their own generations.
func (h *HistoryHandler) query(c *gin.Context) (services.HistoryQuery, bool) {
	var q services.HistoryQuery
	if raw := c.Query("species"); raw != "" {
		sp, err := theory.ParseSpecies(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return q, false
		}
		q.Species = sp
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > maxHistoryPageSize {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and " + strconv.Itoa(maxHistoryPageSize)})
			return q, false
		}
		q.Limit = limit
	}
	if userID, ok := middleware.UserID(c); ok {
		q.UserID = userID
	}
	return q, true
}

func (h *HistoryHandler) respondError(c *gin.Context, err error) {
	if errors.Is(err, services.ErrHistoryDisabled) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	logger.Error("Failed to read generation history", err, logger.WithContext(c))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read generation history"})
}

// List returns recent generations
func (h *HistoryHandler) List(c *gin.Context) {
	q, ok := h.query(c)
	if !ok {
		return
	}

	logs, err := h.history.Recent(c.Request.Context(), q)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"generations": logs,
		"count":       len(logs),
	})
}

// Stats aggregates the stored generations
func (h *HistoryHandler) Stats(c *gin.Context) {
	q, ok := h.query(c)
	if !ok {
		return
	}

	stats, err := h.history.Stats(c.Request.Context(), q)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
