package alerts

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Severity represents the severity level of an alert
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Alert represents a metric-floor breach
type Alert struct {
	ID         string     `json:"id"`
	Severity   Severity   `json:"severity"`
	Metric     string     `json:"metric"`
	Message    string     `json:"message"`
	Value      float64    `json:"value"`
	Threshold  float64    `json:"threshold"`
	Timestamp  time.Time  `json:"timestamp"`
	Resolved   bool       `json:"resolved"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
}

// ManagerConfig contains configuration for the alert manager
type ManagerConfig struct {
	Enabled   bool
	MaxAlerts int
	Retention time.Duration
}

// Manager raises and resolves metric breach alerts. Breach alerts are
// keyed by metric: a metric in breach keeps its single open alert until
// the score recovers, which auto-resolves it.
type Manager struct {
	config *ManagerConfig
	logger *logrus.Logger

	mu     sync.RWMutex
	alerts map[string]*Alert
	open   map[string]string // metric -> open alert ID

	onCreated  []func(*Alert)
	onResolved []func(*Alert)
}

// NewManager creates a new alert manager
func NewManager(config *ManagerConfig, logger *logrus.Logger) *Manager {
	if config == nil {
		config = &ManagerConfig{
			Enabled:   true,
			MaxAlerts: 1000,
			Retention: 24 * time.Hour,
		}
	}

	return &Manager{
		config: config,
		logger: logger,
		alerts: make(map[string]*Alert),
		open:   make(map[string]string),
	}
}

// CheckScores compares scores against their floors, opening an alert per
// newly breached metric and resolving alerts for recovered metrics
func (m *Manager) CheckScores(scores map[string]float64, floors map[string]float64) {
	if !m.config.Enabled {
		return
	}

	for metric, floor := range floors {
		value, ok := scores[metric]
		if !ok {
			continue
		}

		if value < floor {
			m.raise(metric, value, floor)
		} else {
			m.resolveMetric(metric)
		}
	}
}

func (m *Manager) raise(metric string, value, floor float64) {
	m.mu.Lock()

	if _, exists := m.open[metric]; exists {
		m.mu.Unlock()
		return
	}

	severity := SeverityWarning
	if value < floor*0.5 {
		severity = SeverityCritical
	}

	alert := &Alert{
		ID:        uuid.New().String(),
		Severity:  severity,
		Metric:    metric,
		Message:   fmt.Sprintf("%s below critical threshold: %.3f < %.3f", metric, value, floor),
		Value:     value,
		Threshold: floor,
		Timestamp: time.Now(),
	}

	if len(m.alerts) >= m.config.MaxAlerts {
		m.evictOldestResolved()
	}

	m.alerts[alert.ID] = alert
	m.open[metric] = alert.ID

	callbacks := make([]func(*Alert), len(m.onCreated))
	copy(callbacks, m.onCreated)
	m.mu.Unlock()

	m.logger.WithFields(logrus.Fields{
		"alert_id": alert.ID,
		"severity": alert.Severity,
		"metric":   alert.Metric,
		"value":    alert.Value,
	}).Warn("Alert created")

	for _, callback := range callbacks {
		callback(alert)
	}
}

func (m *Manager) resolveMetric(metric string) {
	m.mu.Lock()

	id, exists := m.open[metric]
	if !exists {
		m.mu.Unlock()
		return
	}

	alert := m.alerts[id]
	now := time.Now()
	alert.Resolved = true
	alert.ResolvedAt = &now
	delete(m.open, metric)

	callbacks := make([]func(*Alert), len(m.onResolved))
	copy(callbacks, m.onResolved)
	m.mu.Unlock()

	m.logger.WithFields(logrus.Fields{
		"alert_id": alert.ID,
		"metric":   alert.Metric,
		"duration": now.Sub(alert.Timestamp),
	}).Info("Alert resolved")

	for _, callback := range callbacks {
		callback(alert)
	}
}

// Resolve marks an alert resolved by ID
func (m *Manager) Resolve(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	alert, exists := m.alerts[id]
	if !exists {
		return fmt.Errorf("alert not found: %s", id)
	}
	if alert.Resolved {
		return fmt.Errorf("alert already resolved: %s", id)
	}

	now := time.Now()
	alert.Resolved = true
	alert.ResolvedAt = &now
	delete(m.open, alert.Metric)

	return nil
}

// Active returns all unresolved alerts, newest first
func (m *Manager) Active() []Alert {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var active []Alert
	for _, alert := range m.alerts {
		if !alert.Resolved {
			active = append(active, *alert)
		}
	}

	sort.Slice(active, func(i, j int) bool {
		return active[i].Timestamp.After(active[j].Timestamp)
	})

	return active
}

// All returns every retained alert
func (m *Manager) All() []Alert {
	m.mu.RLock()
	defer m.mu.RUnlock()

	all := make([]Alert, 0, len(m.alerts))
	for _, alert := range m.alerts {
		all = append(all, *alert)
	}

	sort.Slice(all, func(i, j int) bool {
		return all[i].Timestamp.After(all[j].Timestamp)
	})

	return all
}

// OnCreated registers a callback for alert creation
func (m *Manager) OnCreated(callback func(*Alert)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onCreated = append(m.onCreated, callback)
}

// OnResolved registers a callback for alert resolution
func (m *Manager) OnResolved(callback func(*Alert)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onResolved = append(m.onResolved, callback)
}

// Cleanup removes resolved alerts older than the retention period and
// returns the number removed
func (m *Manager) Cleanup() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-m.config.Retention)
	removed := 0

	for id, alert := range m.alerts {
		if alert.Resolved && alert.Timestamp.Before(cutoff) {
			delete(m.alerts, id)
			removed++
		}
	}

	return removed
}

// evictOldestResolved drops the oldest resolved alert; caller holds the lock
func (m *Manager) evictOldestResolved() {
	var oldest *Alert
	var oldestID string

	for id, alert := range m.alerts {
		if alert.Resolved && (oldest == nil || alert.Timestamp.Before(oldest.Timestamp)) {
			oldest = alert
			oldestID = id
		}
	}

	if oldest != nil {
		delete(m.alerts, oldestID)
	}
}
