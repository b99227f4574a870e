package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/adaptiveops/optimizer-backend-go/pkg/errors"
	"github.com/adaptiveops/optimizer-backend-go/pkg/utils"
)

// GetAlerts returns alerts; ?active=true restricts to unresolved ones
func (h *Handlers) GetAlerts(c *gin.Context) {
	if c.Query("active") == "true" {
		utils.SendSuccess(c, h.alerts.Active())
		return
	}

	utils.SendSuccess(c, h.alerts.All())
}

// ResolveAlert resolves an alert by ID
func (h *Handlers) ResolveAlert(c *gin.Context) {
	if err := h.alerts.Resolve(c.Param("id")); err != nil {
		c.Error(errors.WithDetails(errors.ErrNotFound, err.Error()))
		return
	}

	utils.SendSuccess(c, gin.H{"resolved": true})
}
