package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/adaptiveops/optimizer-backend-go/internal/core/tunables"
	"github.com/adaptiveops/optimizer-backend-go/pkg/utils"
)

// GetTunables returns all tunable parameters
func (h *Handlers) GetTunables(c *gin.Context) {
	params, err := h.store.List(c.Request.Context())
	if err != nil {
		utils.SendError(c, http.StatusInternalServerError, "Failed to list parameters")
		return
	}

	utils.SendSuccess(c, params)
}

// GetTunable returns a single tunable parameter by name
func (h *Handlers) GetTunable(c *gin.Context) {
	param, err := h.store.Get(c.Request.Context(), c.Param("name"))
	if err != nil {
		utils.SendError(c, http.StatusNotFound, err.Error())
		return
	}

	utils.SendSuccess(c, param)
}

// setTunableRequest is the body for SetTunable
type setTunableRequest struct {
	Value float64 `json:"value"`
}

// SetTunable replaces a parameter's value
func (h *Handlers) SetTunable(c *gin.Context) {
	var req setTunableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	name := c.Param("name")
	if err := h.store.Set(c.Request.Context(), name, req.Value); err != nil {
		utils.SendError(c, http.StatusNotFound, err.Error())
		return
	}

	param, err := h.store.Get(c.Request.Context(), name)
	if err != nil {
		utils.SendError(c, http.StatusInternalServerError, "Failed to read parameter")
		return
	}

	utils.SendSuccess(c, param)
}

// GetAdjustments returns recent audit entries when the store keeps them
func (h *Handlers) GetAdjustments(c *gin.Context) {
	audited, ok := h.store.(*tunables.SQLiteStore)
	if !ok {
		utils.SendError(c, http.StatusNotFound, "Adjustment audit is not available")
		return
	}

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 500 {
			limit = parsed
		}
	}

	adjustments, err := audited.RecentAdjustments(c.Request.Context(), limit)
	if err != nil {
		utils.SendError(c, http.StatusInternalServerError, "Failed to list adjustments")
		return
	}

	utils.SendSuccessWithMeta(c, adjustments, gin.H{"count": len(adjustments)})
}
