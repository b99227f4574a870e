package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/adaptiveops/optimizer-backend-go/internal/api"
	"github.com/adaptiveops/optimizer-backend-go/internal/config"
	"github.com/adaptiveops/optimizer-backend-go/internal/core/alerts"
	"github.com/adaptiveops/optimizer-backend-go/internal/core/maintenance"
	"github.com/adaptiveops/optimizer-backend-go/internal/core/optimizer"
	"github.com/adaptiveops/optimizer-backend-go/internal/core/sources"
	"github.com/adaptiveops/optimizer-backend-go/internal/core/tunables"
	"github.com/adaptiveops/optimizer-backend-go/internal/database"
	"github.com/adaptiveops/optimizer-backend-go/internal/metrics"
	"github.com/adaptiveops/optimizer-backend-go/internal/websocket"
	"github.com/adaptiveops/optimizer-backend-go/pkg/logger"
)

func main() {
	// Initialize logger
	log := logger.New()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}
	logger.Configure(log, cfg.Logging.Level, cfg.Logging.Format)

	// Initialize database
	db, err := database.Initialize(cfg.Database)
	if err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer db.Close()

	// Run migrations
	if err := database.Migrate(db, cfg.Database.MigrationsPath, log); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	// Tunable parameter store backing the action executor
	store, err := tunables.NewSQLiteStore(db, tunables.DefaultParameters())
	if err != nil {
		log.Fatal("Failed to initialize parameter store:", err)
	}

	// Policy thresholds, optionally overridden from file
	thresholds := optimizer.DefaultThresholds()
	if cfg.Optimizer.ThresholdsFile != "" {
		thresholds, err = optimizer.LoadThresholds(cfg.Optimizer.ThresholdsFile)
		if err != nil {
			log.WithError(err).Warn("Failed to load thresholds file, using defaults")
		}
	}

	// Metric sources
	var srcs []sources.Source
	if cfg.Optimizer.Sources.System {
		srcs = append(srcs, sources.NewSystemSource(log))
	}
	if cfg.Optimizer.Sources.Random {
		seed := cfg.Optimizer.Sources.RandomSeed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		srcs = append(srcs, sources.NewRandomSource("placeholder", seed, map[string]sources.Range{
			"coherence": {Min: 0.5, Max: 0.9},
			"resonance": {Min: 0.4, Max: 0.8},
		}))
	}

	// Assemble the optimization loop
	collector := optimizer.NewSourceCollector(log, srcs...)
	policy := optimizer.NewAdaptivePolicy(thresholds, log)
	executor := optimizer.NewStoreExecutor(store, log)

	loopCfg := optimizer.LoopConfig{
		Interval:          cfg.Optimizer.LoopInterval(),
		StopTimeout:       cfg.Optimizer.LoopStopTimeout(),
		HistorySize:       cfg.Optimizer.HistorySize,
		ActionHistorySize: cfg.Optimizer.ActionHistorySize,
	}
	loop := optimizer.NewLoop(loopCfg, collector, policy, executor, log)

	if cfg.Metrics.Enabled {
		loop.SetSink(metrics.NewPrometheusSink(&metrics.SinkConfig{
			Enabled: true,
			Prefix:  cfg.Metrics.Prefix,
		}))
	}

	// WebSocket hub for live subscribers
	wsHub := websocket.NewHub(log)
	go wsHub.Run()

	// Alert manager watching the same critical floors as the policy
	alertRetention, err := time.ParseDuration(cfg.Alerts.Retention)
	if err != nil {
		alertRetention = 24 * time.Hour
	}
	alertManager := alerts.NewManager(&alerts.ManagerConfig{
		Enabled:   cfg.Alerts.Enabled,
		MaxAlerts: cfg.Alerts.MaxAlerts,
		Retention: alertRetention,
	}, log)

	alertManager.OnCreated(func(alert *alerts.Alert) {
		wsHub.Broadcast(websocket.MessageTypeAlert, alert)
	})

	loop.RegisterCallback(func(snapshot optimizer.Snapshot) {
		alertManager.CheckScores(snapshot.Scores, thresholds.Critical)
		wsHub.Broadcast(websocket.MessageTypeSnapshot, snapshot)
	})

	// Maintenance scheduler
	var scheduler *maintenance.Scheduler
	if cfg.Maintenance.Enabled {
		auditRetention, err := time.ParseDuration(cfg.Maintenance.AuditRetention)
		if err != nil {
			auditRetention = 7 * 24 * time.Hour
		}

		scheduler = maintenance.NewScheduler(maintenance.Config{
			PruneSchedule:   cfg.Maintenance.PruneSchedule,
			SummarySchedule: cfg.Maintenance.SummarySchedule,
			AuditRetention:  auditRetention,
		}, store, loop, alertManager, log)

		if err := scheduler.Start(); err != nil {
			log.WithError(err).Warn("Failed to start maintenance scheduler")
			scheduler = nil
		}
	}

	// Start the optimization loop
	if cfg.Optimizer.AutoStart {
		if err := loop.Start(optimizer.Strategy(cfg.Optimizer.Strategy)); err != nil {
			log.Fatal("Failed to start optimization loop:", err)
		}
	}

	// Initialize router
	router := api.NewRouter(cfg, log, loop, store, alertManager, wsHub)

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server
	go func() {
		log.Infof("Starting optimizer backend on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server:", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	loop.Stop()

	if scheduler != nil {
		scheduler.Stop()
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Info("Server exited")
}
