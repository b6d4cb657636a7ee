package database

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Health check statuses
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
	StatusShutdown  = "shutdown"
)

// HealthStatus represents the current health status of the database
type HealthStatus struct {
	Status          string                 `json:"status"`
	Timestamp       time.Time              `json:"timestamp"`
	ResponseTime    time.Duration          `json:"response_time"`
	ConnectionCount int                    `json:"connection_count"`
	Errors          []string               `json:"errors,omitempty"`
	Details         map[string]interface{} `json:"details"`
}

// HealthChecker performs periodic and on-demand database health checks
type HealthChecker struct {
	manager *Manager
	logger  *zap.Logger

	mu        sync.RWMutex
	isActive  int32
	lastCheck time.Time
	status    *HealthStatus

	stopCh  chan struct{}
	stopped chan struct{}

	checkInterval   time.Duration
	timeoutDuration time.Duration
	criticalTables  []string
}

// NewHealthChecker creates a health checker for the manager
func NewHealthChecker(manager *Manager, logger *zap.Logger) *HealthChecker {
	return &HealthChecker{
		manager:  manager,
		logger:   logger,
		isActive: 1,

		checkInterval:   30 * time.Second,
		timeoutDuration: 10 * time.Second,
		criticalTables:  []string{"users", "activities", "join_requests", "verification_requests"},

		stopCh:  make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

// StartMonitoring begins periodic background health checks
func (hc *HealthChecker) StartMonitoring() {
	go func() {
		defer close(hc.stopped)

		ticker := time.NewTicker(hc.checkInterval)
		defer ticker.Stop()

		for {
			select {
			case <-hc.stopCh:
				return
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), hc.timeoutDuration)
				status := hc.Check(ctx)
				cancel()

				if status.Status != StatusHealthy {
					hc.logger.Warn("database health check failed",
						zap.String("status", status.Status),
						zap.Strings("errors", status.Errors),
					)
				}
			}
		}
	}()
}

// Check performs a health check against the database
func (hc *HealthChecker) Check(ctx context.Context) *HealthStatus {
	if atomic.LoadInt32(&hc.isActive) == 0 {
		return &HealthStatus{
			Status:    StatusShutdown,
			Timestamp: time.Now(),
			Errors:    []string{"health checker is shutdown"},
			Details:   make(map[string]interface{}),
		}
	}

	start := time.Now()
	status := &HealthStatus{
		Status:    StatusHealthy,
		Timestamp: start,
		Details:   make(map[string]interface{}),
	}

	if err := hc.manager.DB().PingContext(ctx); err != nil {
		status.Status = StatusUnhealthy
		status.Errors = append(status.Errors, fmt.Sprintf("ping failed: %v", err))
		status.ResponseTime = time.Since(start)
		hc.store(status)
		return status
	}

	// A degraded database answers pings but can't serve the tables
	// the application lives on
	for _, table := range hc.criticalTables {
		var exists bool
		query := `SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = $1)`
		if err := hc.manager.DB().QueryRowContext(ctx, query, table).Scan(&exists); err != nil {
			status.Status = StatusDegraded
			status.Errors = append(status.Errors, fmt.Sprintf("table check failed for %s: %v", table, err))
			continue
		}
		if !exists {
			status.Status = StatusDegraded
			status.Errors = append(status.Errors, fmt.Sprintf("critical table missing: %s", table))
		}
	}

	stats := hc.manager.Stats()
	status.ConnectionCount = stats.OpenConnections
	status.Details["in_use"] = stats.InUse
	status.Details["idle"] = stats.Idle
	status.Details["max_open_connections"] = stats.MaxOpenConnections
	status.ResponseTime = time.Since(start)

	hc.store(status)
	return status
}

// WaitForHealthy blocks until the database reports healthy or the
// timeout elapses.
func (hc *HealthChecker) WaitForHealthy(ctx context.Context, timeout time.Duration) error {
	deadline, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	for {
		status := hc.Check(deadline)
		if status.Status == StatusHealthy {
			return nil
		}

		select {
		case <-deadline.Done():
			return fmt.Errorf("database did not become healthy within %s: %w", timeout, deadline.Err())
		case <-time.After(time.Second):
		}
	}
}

// LastStatus returns the most recent health check result
func (hc *HealthChecker) LastStatus() *HealthStatus {
	hc.mu.RLock()
	defer hc.mu.RUnlock()
	return hc.status
}

// Stop shuts down background monitoring
func (hc *HealthChecker) Stop() {
	if !atomic.CompareAndSwapInt32(&hc.isActive, 1, 0) {
		return
	}
	close(hc.stopCh)
}

func (hc *HealthChecker) store(status *HealthStatus) {
	hc.mu.Lock()
	hc.lastCheck = status.Timestamp
	hc.status = status
	hc.mu.Unlock()
}
