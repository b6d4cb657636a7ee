package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"sync"
	"time"

	"campusboard/internal/config"

	"github.com/cenkalti/backoff/v4"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// DB is the global database manager instance
var DB *Manager

// initMutex prevents concurrent initialization
var initMutex sync.Mutex

// InitDB initializes the database manager, runs migrations and waits
// for the database to become healthy before returning.
func InitDB(cfg *config.Config, logger *zap.Logger) error {
	initMutex.Lock()
	defer initMutex.Unlock()

	if DB != nil {
		logger.Info("database manager already initialized")
		return nil
	}

	manager, err := NewManager(&cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	if cfg.Database.AutoMigrate {
		migrationsPath := determineMigrationsPath(cfg.Database.MigrationsPath)
		logger.Info("running migrations", zap.String("path", migrationsPath))

		if err := runMigrationsWithRetry(manager, migrationsPath, logger); err != nil {
			manager.Close()
			return fmt.Errorf("failed to run database migrations: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := manager.health.WaitForHealthy(ctx, 30*time.Second); err != nil {
		manager.Close()
		return fmt.Errorf("database failed to become healthy: %w", err)
	}

	manager.health.StartMonitoring()
	DB = manager

	stats := manager.Stats()
	logger.Info("database initialized",
		zap.Int("max_open_connections", stats.MaxOpenConnections),
		zap.Int("open_connections", stats.OpenConnections),
	)

	return nil
}

// runMigrationsWithRetry retries transient migration failures with
// exponential backoff. A fresh database container may still be coming
// up when the server starts.
func runMigrationsWithRetry(manager *Manager, migrationsPath string, logger *zap.Logger) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = time.Second
	policy.MaxElapsedTime = 30 * time.Second

	attempt := 0
	operation := func() error {
		attempt++
		if err := manager.Migrate(migrationsPath); err != nil {
			logger.Warn("migration attempt failed",
				zap.Error(err),
				zap.Int("attempt", attempt),
			)
			return err
		}
		return nil
	}

	if err := backoff.Retry(operation, policy); err != nil {
		return fmt.Errorf("migrations failed after %d attempts: %w", attempt, err)
	}
	return nil
}

// determineMigrationsPath falls back through common layouts when the
// configured path does not exist.
func determineMigrationsPath(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
	}

	paths := []string{
		"./migrations",
		"./internal/database/migrations",
		"../migrations",
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return "./migrations"
}

// GetDB returns the global database manager
func GetDB() *Manager {
	return DB
}

// Close closes the global database manager
func Close() error {
	if DB != nil {
		return DB.Close()
	}
	return nil
}

// Health returns the health of the global database manager
func Health(ctx context.Context) *HealthStatus {
	if DB == nil {
		return &HealthStatus{
			Status:    StatusUnhealthy,
			Timestamp: time.Now(),
			Errors:    []string{"database not initialized"},
			Details:   make(map[string]interface{}),
		}
	}
	return DB.Health(ctx)
}

// ExecuteTransaction runs fn inside a transaction, rolling back on
// error or panic.
func ExecuteTransaction(ctx context.Context, fn func(*sql.Tx) error) error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	tx, err := DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("transaction failed: %v, rollback failed: %w", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// IsConnected reports whether the global manager is healthy
func IsConnected(ctx context.Context) bool {
	if DB == nil {
		return false
	}
	return DB.Health(ctx).Status == StatusHealthy
}
