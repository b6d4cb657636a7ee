// file: internal/repositories/collection.go
package repositories

import (
	"context"
	"fmt"
	"time"

	"campusboard/internal/database"

	"go.uber.org/zap"
)

// Collection holds all repository instances for dependency injection
type Collection struct {
	User         UserRepository
	Activity     ActivityRepository
	Comment      CommentRepository
	Like         LikeRepository
	JoinRequest  JoinRequestRepository
	Report       ReportRepository
	Verification VerificationRepository

	// Database and logger for custom operations
	db     *database.Manager
	logger *zap.Logger
}

// NewCollection creates a new repository collection with all dependencies
func NewCollection(db *database.Manager, logger *zap.Logger) (*Collection, error) {
	if db == nil {
		return nil, fmt.Errorf("database manager is required")
	}

	if logger == nil {
		logger, _ = zap.NewProduction()
	}

	collection := &Collection{
		db:     db,
		logger: logger,
	}

	collection.User = NewUserRepository(db, logger)
	collection.Activity = NewActivityRepository(db, logger)
	collection.Comment = NewCommentRepository(db, logger)
	collection.Like = NewLikeRepository(db, logger)
	collection.JoinRequest = NewJoinRequestRepository(db, logger)
	collection.Report = NewReportRepository(db, logger)
	collection.Verification = NewVerificationRepository(db, logger)

	logger.Info("Repository collection initialized successfully")

	return collection, nil
}

// ===============================
// HEALTH AND MONITORING
// ===============================

// HealthCheck performs health checks on the database and core tables
func (c *Collection) HealthCheck(ctx context.Context) map[string]interface{} {
	health := make(map[string]interface{})

	dbHealth := c.db.Health(ctx)
	health["database"] = map[string]interface{}{
		"status":        dbHealth.Status,
		"response_time": dbHealth.ResponseTime,
		"errors":        dbHealth.Errors,
	}

	health["repositories"] = c.checkRepositoriesHealth(ctx)

	metrics := c.db.Metrics()
	health["performance"] = map[string]interface{}{
		"query_count":        metrics.QueryCount,
		"error_count":        metrics.ErrorCount,
		"slow_query_count":   metrics.SlowQueryCount,
		"avg_query_duration": metrics.AvgQueryDuration,
	}

	return health
}

// checkRepositoriesHealth runs a cheap probe through each repository
func (c *Collection) checkRepositoriesHealth(ctx context.Context) map[string]interface{} {
	checks := make(map[string]interface{})

	checks["user"] = c.testRepositoryHealth(ctx, "users", func() error {
		_, err := c.User.CountActiveActivities(ctx, 1)
		return err
	})

	checks["activity"] = c.testRepositoryHealth(ctx, "activities", func() error {
		_, err := c.Activity.CountActiveByAuthor(ctx, 1)
		return err
	})

	checks["comment"] = c.testRepositoryHealth(ctx, "comments", func() error {
		_, err := c.Comment.CountByActivityID(ctx, 1)
		return err
	})

	checks["join_request"] = c.testRepositoryHealth(ctx, "join_requests", func() error {
		_, err := c.JoinRequest.CountByActivityID(ctx, 1)
		return err
	})

	return checks
}

// testRepositoryHealth runs a test operation for a repository
func (c *Collection) testRepositoryHealth(ctx context.Context, name string, testFn func() error) map[string]interface{} {
	start := time.Now()
	err := testFn()
	duration := time.Since(start)

	result := map[string]interface{}{
		"duration": duration,
		"healthy":  err == nil,
	}

	if err != nil {
		result["error"] = err.Error()
		c.logger.Warn("Repository health check failed",
			zap.String("repository", name),
			zap.Error(err),
			zap.Duration("duration", duration),
		)
	}

	return result
}

// ===============================
// UTILITIES
// ===============================

// GetDB returns the underlying database manager for advanced operations
func (c *Collection) GetDB() *database.Manager {
	return c.db
}

// GetLogger returns the logger instance
func (c *Collection) GetLogger() *zap.Logger {
	return c.logger
}

// Close closes all repository connections and cleans up resources
func (c *Collection) Close() error {
	c.logger.Info("Closing repository collection")

	if c.db != nil {
		return c.db.Close()
	}

	return nil
}

// NewTestCollection creates a collection for testing
func NewTestCollection(db *database.Manager, logger *zap.Logger) *Collection {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Collection{
		User:         NewUserRepository(db, logger),
		Activity:     NewActivityRepository(db, logger),
		Comment:      NewCommentRepository(db, logger),
		Like:         NewLikeRepository(db, logger),
		JoinRequest:  NewJoinRequestRepository(db, logger),
		Report:       NewReportRepository(db, logger),
		Verification: NewVerificationRepository(db, logger),
		db:           db,
		logger:       logger,
	}
}
