package handlers

import (
	"github.com/sirupsen/logrus"

	"github.com/adaptiveops/optimizer-backend-go/internal/config"
	"github.com/adaptiveops/optimizer-backend-go/internal/core/alerts"
	"github.com/adaptiveops/optimizer-backend-go/internal/core/optimizer"
	"github.com/adaptiveops/optimizer-backend-go/internal/core/tunables"
	"github.com/adaptiveops/optimizer-backend-go/internal/websocket"
)

// Handlers contains all HTTP handlers and their dependencies
type Handlers struct {
	cfg    *config.Config
	logger *logrus.Logger
	loop   *optimizer.Loop
	store  tunables.Store
	alerts *alerts.Manager
	wsHub  *websocket.Hub
}

// NewHandlers creates the handlers with their dependencies
func NewHandlers(cfg *config.Config, logger *logrus.Logger, loop *optimizer.Loop, store tunables.Store, alertManager *alerts.Manager, wsHub *websocket.Hub) *Handlers {
	return &Handlers{
		cfg:    cfg,
		logger: logger,
		loop:   loop,
		store:  store,
		alerts: alertManager,
		wsHub:  wsHub,
	}
}
