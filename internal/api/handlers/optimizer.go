package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzip"

	"github.com/adaptiveops/optimizer-backend-go/internal/core/optimizer"
	"github.com/adaptiveops/optimizer-backend-go/pkg/utils"
)

// GetStatus returns the current optimization loop status
func (h *Handlers) GetStatus(c *gin.Context) {
	utils.SendSuccess(c, h.loop.GetStatus())
}

// GetAnalytics returns trend and effectiveness statistics
func (h *Handlers) GetAnalytics(c *gin.Context) {
	utils.SendSuccess(c, h.loop.GetAnalytics())
}

// GetSnapshots returns the retained metric snapshots, oldest first
func (h *Handlers) GetSnapshots(c *gin.Context) {
	history := h.loop.History()
	utils.SendSuccessWithMeta(c, history, gin.H{"count": len(history)})
}

// GetActions returns the retained executed actions, oldest first
func (h *Handlers) GetActions(c *gin.Context) {
	actions := h.loop.Actions()
	utils.SendSuccessWithMeta(c, actions, gin.H{"count": len(actions)})
}

// startRequest is the optional body for StartLoop
type startRequest struct {
	Strategy string `json:"strategy"`
}

// StartLoop starts the optimization loop. Starting a running loop is a
// no-op.
func (h *Handlers) StartLoop(c *gin.Context) {
	var req startRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.SendError(c, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	strategy := optimizer.Strategy(req.Strategy)
	if req.Strategy == "" {
		strategy = optimizer.StrategyAdaptive
	}

	if err := h.loop.Start(strategy); err != nil {
		utils.SendError(c, http.StatusBadRequest, err.Error())
		return
	}

	utils.SendSuccess(c, h.loop.GetStatus())
}

// StopLoop stops the optimization loop. Stopping a stopped loop is a
// no-op.
func (h *Handlers) StopLoop(c *gin.Context) {
	h.loop.Stop()
	utils.SendSuccess(c, h.loop.GetStatus())
}

// historyExport bundles the retained history for download
type historyExport struct {
	Status    optimizer.Status           `json:"status"`
	Snapshots []optimizer.Snapshot       `json:"snapshots"`
	Actions   []optimizer.ExecutedAction `json:"actions"`
	Report    optimizer.Report           `json:"report"`
}

// ExportHistory streams the retained history as gzipped JSON
func (h *Handlers) ExportHistory(c *gin.Context) {
	export := historyExport{
		Status:    h.loop.GetStatus(),
		Snapshots: h.loop.History(),
		Actions:   h.loop.Actions(),
		Report:    h.loop.GetAnalytics(),
	}

	c.Header("Content-Type", "application/json")
	c.Header("Content-Encoding", "gzip")
	c.Header("Content-Disposition", `attachment; filename="optimizer-history.json.gz"`)
	c.Status(http.StatusOK)

	gz := gzip.NewWriter(c.Writer)
	defer gz.Close()

	if err := json.NewEncoder(gz).Encode(export); err != nil {
		h.logger.WithError(err).Error("Failed to encode history export")
	}
}
