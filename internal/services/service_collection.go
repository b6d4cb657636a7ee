// file: internal/services/service_collection.go
package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"campusboard/internal/cache"
	"campusboard/internal/config"
	"campusboard/internal/database"
	"campusboard/internal/events"
	"campusboard/internal/repositories"

	"github.com/cloudinary/cloudinary-go/v2"
	"go.uber.org/zap"
)

// ServiceCollection wires the business services together with their
// infrastructure dependencies.
type ServiceCollection struct {
	// Core services
	AuthService         AuthService         `json:"-"`
	UserService         UserService         `json:"-"`
	ActivityService     ActivityService     `json:"-"`
	VerificationService VerificationService `json:"-"`

	// Infrastructure services
	FileService FileService `json:"-"`

	// Repository collection
	Repositories *repositories.Collection `json:"-"`

	// Infrastructure components
	Cache      cache.Cache            `json:"-"`
	EventBus   events.EventBus        `json:"-"`
	Logger     *zap.Logger            `json:"-"`
	Config     *config.Config         `json:"-"`
	DBManager  *database.Manager      `json:"-"`
	Cloudinary *cloudinary.Cloudinary `json:"-"`

	mu          sync.RWMutex
	initialized bool
}

// ServiceHealth summarizes service collection health
type ServiceHealth struct {
	Status       string                   `json:"status"`
	Timestamp    time.Time                `json:"timestamp"`
	Dependencies map[string]ServiceStatus `json:"dependencies"`
	Issues       []string                 `json:"issues,omitempty"`
}

// ServiceStatus is the health of a single dependency
type ServiceStatus struct {
	Name         string        `json:"name"`
	Status       string        `json:"status"` // healthy, unhealthy
	LastCheck    time.Time     `json:"last_check"`
	ResponseTime time.Duration `json:"response_time"`
	Error        string        `json:"error,omitempty"`
}

// NewServiceCollection creates the full service graph
func NewServiceCollection(
	dbManager *database.Manager,
	cfg *config.Config,
	logger *zap.Logger,
) (*ServiceCollection, error) {
	if dbManager == nil {
		return nil, fmt.Errorf("database manager is required")
	}
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	sc := &ServiceCollection{
		DBManager: dbManager,
		Config:    cfg,
		Logger:    logger,
	}

	// Initialize in dependency order
	if err := sc.initializeInfrastructure(); err != nil {
		return nil, fmt.Errorf("failed to initialize infrastructure: %w", err)
	}
	if err := sc.initializeRepositories(); err != nil {
		return nil, fmt.Errorf("failed to initialize repositories: %w", err)
	}
	sc.initializeServices()

	sc.initialized = true
	logger.Info("Service collection initialized")

	return sc, nil
}

// ===============================
// INITIALIZATION
// ===============================

func (sc *ServiceCollection) initializeInfrastructure() error {
	cacheImpl, err := cache.NewCache(&cache.Config{
		Provider:        sc.Config.Cache.Provider,
		RedisURL:        sc.Config.Cache.RedisURL,
		TTL:             sc.Config.Cache.DefaultTTL,
		MaxKeys:         10000,
		CleanupInterval: sc.Config.Cache.CleanupInterval,
		PoolSize:        10,
	}, sc.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}
	sc.Cache = cacheImpl

	sc.EventBus = events.NewEventBus(events.DefaultEventBusConfig(), sc.Logger)

	if sc.Config.Cloudinary.CloudName != "" {
		cld, err := cloudinary.NewFromParams(
			sc.Config.Cloudinary.CloudName,
			sc.Config.Cloudinary.APIKey,
			sc.Config.Cloudinary.APISecret,
		)
		if err != nil {
			return fmt.Errorf("failed to initialize Cloudinary: %w", err)
		}
		sc.Cloudinary = cld
	}

	return nil
}

func (sc *ServiceCollection) initializeRepositories() error {
	repos, err := repositories.NewCollection(sc.DBManager, sc.Logger)
	if err != nil {
		return fmt.Errorf("failed to create repository collection: %w", err)
	}
	sc.Repositories = repos
	return nil
}

func (sc *ServiceCollection) initializeServices() {
	// File service first. Services that store uploads depend on it;
	// without Cloudinary credentials uploads are rejected at the handler.
	if sc.Cloudinary != nil {
		sc.FileService = NewFileService(sc.Cloudinary, sc.EventBus, sc.Logger, &sc.Config.Cloudinary)
	}

	sc.AuthService = NewAuthService(sc.Repositories.User, sc.EventBus, sc.Logger, &sc.Config.Auth)
	sc.UserService = NewUserService(sc.Repositories, sc.Logger)
	sc.ActivityService = NewActivityService(sc.Repositories, sc.Cache, sc.EventBus, sc.Logger)
	sc.VerificationService = NewVerificationService(sc.Repositories, sc.FileService, sc.Cache, sc.EventBus, sc.Logger)
}

// ===============================
// LIFECYCLE
// ===============================

// Start brings up background event processing
func (sc *ServiceCollection) Start(ctx context.Context) error {
	if !sc.initialized {
		return fmt.Errorf("service collection not initialized")
	}
	if err := sc.EventBus.Start(ctx); err != nil {
		return fmt.Errorf("failed to start event bus: %w", err)
	}
	sc.Logger.Info("Service collection started")
	return nil
}

// Shutdown stops background processing and closes connections
func (sc *ServiceCollection) Shutdown(ctx context.Context) error {
	sc.Logger.Info("Shutting down service collection")

	var shutdownErrors []error

	if err := sc.EventBus.Stop(ctx); err != nil {
		shutdownErrors = append(shutdownErrors, fmt.Errorf("event bus stop: %w", err))
	}
	if sc.Cache != nil {
		if err := sc.Cache.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("cache close: %w", err))
		}
	}
	if sc.DBManager != nil {
		if err := sc.DBManager.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("database close: %w", err))
		}
	}

	if len(shutdownErrors) > 0 {
		return fmt.Errorf("shutdown completed with %d errors", len(shutdownErrors))
	}

	sc.Logger.Info("Service collection shutdown completed")
	return nil
}

// ===============================
// HEALTH
// ===============================

// HealthCheck probes the collection's infrastructure dependencies
func (sc *ServiceCollection) HealthCheck(ctx context.Context) (*ServiceHealth, error) {
	health := &ServiceHealth{
		Status:       "healthy",
		Timestamp:    time.Now(),
		Dependencies: make(map[string]ServiceStatus),
	}

	dbStatus := sc.checkDatabaseHealth(ctx)
	health.Dependencies["database"] = dbStatus
	if dbStatus.Status != "healthy" {
		health.Status = "degraded"
		health.Issues = append(health.Issues, fmt.Sprintf("database: %s", dbStatus.Error))
	}

	cacheStatus := sc.checkCacheHealth(ctx)
	health.Dependencies["cache"] = cacheStatus
	if cacheStatus.Status != "healthy" {
		health.Status = "degraded"
		health.Issues = append(health.Issues, fmt.Sprintf("cache: %s", cacheStatus.Error))
	}

	eventStatus := sc.checkEventBusHealth(ctx)
	health.Dependencies["events"] = eventStatus
	if eventStatus.Status != "healthy" {
		health.Status = "degraded"
		health.Issues = append(health.Issues, fmt.Sprintf("events: %s", eventStatus.Error))
	}

	return health, nil
}

func (sc *ServiceCollection) checkDatabaseHealth(ctx context.Context) ServiceStatus {
	start := time.Now()
	status := ServiceStatus{Name: "database", Status: "healthy", LastCheck: start}

	if err := sc.DBManager.DB().PingContext(ctx); err != nil {
		status.Status = "unhealthy"
		status.Error = err.Error()
	}

	status.ResponseTime = time.Since(start)
	return status
}

func (sc *ServiceCollection) checkCacheHealth(ctx context.Context) ServiceStatus {
	start := time.Now()
	status := ServiceStatus{Name: "cache", Status: "healthy", LastCheck: start}

	testKey := "health_check_test"
	if err := sc.Cache.Set(ctx, testKey, "ok", time.Minute); err != nil {
		status.Status = "unhealthy"
		status.Error = fmt.Sprintf("cache set failed: %v", err)
	} else {
		if _, found := sc.Cache.Get(ctx, testKey); !found {
			status.Status = "unhealthy"
			status.Error = "cache get failed"
		}
		sc.Cache.Delete(ctx, testKey)
	}

	status.ResponseTime = time.Since(start)
	return status
}

func (sc *ServiceCollection) checkEventBusHealth(ctx context.Context) ServiceStatus {
	start := time.Now()
	status := ServiceStatus{Name: "events", Status: "healthy", LastCheck: start}

	if err := sc.EventBus.Health(); err != nil {
		status.Status = "unhealthy"
		status.Error = err.Error()
	}

	status.ResponseTime = time.Since(start)
	return status
}

// IsInitialized reports whether the collection is fully wired
func (sc *ServiceCollection) IsInitialized() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.initialized
}
