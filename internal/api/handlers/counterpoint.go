package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/Conceptual-Machines/counterpoint-api/internal/api/middleware"
	"github.com/Conceptual-Machines/counterpoint-api/internal/models"
	"github.com/Conceptual-Machines/counterpoint-api/internal/services"
	"github.com/Conceptual-Machines/counterpoint-api/internal/species"
	"github.com/Conceptual-Machines/counterpoint-api/internal/theory"
	"github.com/gin-gonic/gin"
)

type CounterpointHandler struct {
	svc *services.GenerationService
}

func NewCounterpointHandler(svc *services.GenerationService) *CounterpointHandler {
	return &CounterpointHandler{svc: svc}
}

// speciesParam reads :species, writing a 400 when it is not 1..5
func speciesParam(c *gin.Context) (theory.Species, bool) {
	sp, err := theory.ParseSpecies(c.Param("species"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return 0, false
	}
	return sp, true
}

// bindOptionalJSON binds the body, accepting an empty one
func bindOptionalJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}

// ListModes returns the church modes and finalis options
func (h *CounterpointHandler) ListModes(c *gin.Context) {
	modes := theory.Modes()
	resp := models.ModesResponse{
		Modes:   make([]models.ModeInfo, len(modes)),
		Finalis: theory.FinalisOptions(),
	}
	for i, m := range modes {
		resp.Modes[i] = models.ModeInfo{ID: m, Name: m.DisplayName(), Intervals: m.Intervals()}
	}
	c.JSON(http.StatusOK, resp)
}

// ListRules returns the default rule set for a species
func (h *CounterpointHandler) ListRules(c *gin.Context) {
	sp, ok := speciesParam(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, models.RulesResponse{
		Species: sp,
		Name:    sp.Name(),
		Rules:   h.svc.Rules(sp),
	})
}

// GenerateCantus builds a new cantus firmus
func (h *CounterpointHandler) GenerateCantus(c *gin.Context) {
	var req models.CantusRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	resp, err := h.svc.Cantus(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Generate writes a counterpoint line against the submitted cantus firmus.
// Request problems answer 400; a search that finds no line answers 422.
func (h *CounterpointHandler) Generate(c *gin.Context) {
	sp, ok := speciesParam(c)
	if !ok {
		return
	}

	var req models.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	meta := services.RequestMeta{RequestID: c.GetString("request_id")}
	if userID, ok := middleware.UserID(c); ok {
		meta.UserID = userID
	}

	resp, err := h.svc.Generate(c.Request.Context(), meta, sp, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	switch {
	case resp.Success:
		c.JSON(http.StatusOK, resp)
	case species.IsInputError(resp.Err):
		c.JSON(http.StatusBadRequest, resp)
	default:
		c.JSON(http.StatusUnprocessableEntity, resp)
	}
}

// Analyze reports rule results for a caller-supplied pair
func (h *CounterpointHandler) Analyze(c *gin.Context) {
	sp, ok := speciesParam(c)
	if !ok {
		return
	}

	var req models.AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report, err := h.svc.Analyze(sp, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, report)
}
