// file: internal/repositories/join_repository.go
package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"campusboard/internal/database"
	"campusboard/internal/models"

	"go.uber.org/zap"
)

// Sentinel errors for join outcomes the service layer must tell apart.
var (
	ErrActivityNotFound = errors.New("activity not found or inactive")
	ErrActivityFull     = errors.New("activity is at capacity")
	ErrAlreadyJoined    = errors.New("user already joined this activity")
)

// joinRequestRepository implements JoinRequestRepository
type joinRequestRepository struct {
	*BaseRepository
}

// NewJoinRequestRepository creates a new join request repository
func NewJoinRequestRepository(db *database.Manager, logger *zap.Logger) JoinRequestRepository {
	return &joinRequestRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

// Join confirms the user onto the activity. The activity row is locked
// for the capacity check so concurrent joins cannot oversubscribe, and
// the unique index on (user_id, activity_id) rejects duplicates.
func (r *joinRequestRepository) Join(ctx context.Context, userID, activityID int64) (*models.JoinRequest, error) {
	request := &models.JoinRequest{
		UserID:     userID,
		ActivityID: activityID,
		Status:     models.JoinStatusConfirmed,
	}

	err := r.WithTransaction(ctx, func(tx *sql.Tx) error {
		var capacity sql.NullInt64
		var joined int
		var active bool
		err := tx.QueryRowContext(
			ctx,
			`SELECT capacity, joined_count, is_active FROM activities WHERE id = $1 FOR UPDATE`,
			activityID,
		).Scan(&capacity, &joined, &active)
		if err == sql.ErrNoRows {
			return ErrActivityNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to lock activity: %w", err)
		}
		if !active {
			return ErrActivityNotFound
		}
		if capacity.Valid && int64(joined) >= capacity.Int64 {
			return ErrActivityFull
		}

		err = tx.QueryRowContext(
			ctx,
			`INSERT INTO join_requests (user_id, activity_id, status)
			VALUES ($1, $2, $3)
			RETURNING id, created_at`,
			userID, activityID, request.Status,
		).Scan(&request.ID, &request.CreatedAt)
		if err != nil {
			if IsUniqueViolation(err, "") {
				return ErrAlreadyJoined
			}
			return fmt.Errorf("failed to create join request: %w", err)
		}

		_, err = tx.ExecContext(
			ctx,
			`UPDATE activities SET joined_count = joined_count + 1 WHERE id = $1`,
			activityID,
		)
		if err != nil {
			return fmt.Errorf("failed to increment joined count: %w", err)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	r.GetLogger().Info("User joined activity",
		zap.Int64("user_id", userID),
		zap.Int64("activity_id", activityID),
	)

	return request, nil
}

// Leave removes the user's join and releases their slot. Only a
// confirmed join ever contributed to joined_count, so the deleted
// row's status decides whether to decrement.
func (r *joinRequestRepository) Leave(ctx context.Context, userID, activityID int64) error {
	return r.WithTransaction(ctx, func(tx *sql.Tx) error {
		var status string
		err := tx.QueryRowContext(
			ctx,
			`DELETE FROM join_requests WHERE user_id = $1 AND activity_id = $2 RETURNING status`,
			userID, activityID,
		).Scan(&status)
		if err == sql.ErrNoRows {
			return sql.ErrNoRows
		}
		if err != nil {
			return fmt.Errorf("failed to delete join request: %w", err)
		}

		if status != models.JoinStatusConfirmed {
			return nil
		}

		_, err = tx.ExecContext(
			ctx,
			`UPDATE activities SET joined_count = GREATEST(joined_count - 1, 0) WHERE id = $1`,
			activityID,
		)
		if err != nil {
			return fmt.Errorf("failed to decrement joined count: %w", err)
		}
		return nil
	})
}

// HasJoined reports whether the user has joined the activity
func (r *joinRequestRepository) HasJoined(ctx context.Context, userID, activityID int64) (bool, error) {
	var exists bool
	err := r.QueryRowContext(
		ctx,
		`SELECT EXISTS (SELECT 1 FROM join_requests WHERE user_id = $1 AND activity_id = $2)`,
		userID, activityID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check join: %w", err)
	}
	return exists, nil
}

// GetByActivityID lists the participants of an activity
func (r *joinRequestRepository) GetByActivityID(ctx context.Context, activityID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.JoinRequest], error) {
	total, err := r.GetTotalCount(
		ctx,
		`SELECT COUNT(*) FROM join_requests WHERE activity_id = $1`,
		activityID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to count join requests: %w", err)
	}

	query := `
		SELECT j.id, j.user_id, j.activity_id, j.status, j.created_at,
			u.id, u.name, u.roll_number, u.is_verified
		FROM join_requests j
		JOIN users u ON u.id = j.user_id
		WHERE j.activity_id = $1
		ORDER BY j.created_at ASC
		LIMIT $2 OFFSET $3`

	return r.queryJoinRequests(ctx, query, params, total, activityID, params.Limit, params.Offset)
}

// GetByUserID lists the activities a user has joined
func (r *joinRequestRepository) GetByUserID(ctx context.Context, userID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.JoinRequest], error) {
	total, err := r.GetTotalCount(
		ctx,
		`SELECT COUNT(*) FROM join_requests WHERE user_id = $1`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to count join requests: %w", err)
	}

	query := `
		SELECT j.id, j.user_id, j.activity_id, j.status, j.created_at,
			u.id, u.name, u.roll_number, u.is_verified
		FROM join_requests j
		JOIN users u ON u.id = j.user_id
		WHERE j.user_id = $1
		ORDER BY j.created_at DESC
		LIMIT $2 OFFSET $3`

	return r.queryJoinRequests(ctx, query, params, total, userID, params.Limit, params.Offset)
}

func (r *joinRequestRepository) queryJoinRequests(ctx context.Context, query string, params models.PaginationParams, total int64, args ...interface{}) (*models.PaginatedResponse[*models.JoinRequest], error) {
	rows, err := r.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list join requests: %w", err)
	}
	defer rows.Close()

	requests := make([]*models.JoinRequest, 0, params.Limit)
	for rows.Next() {
		var request models.JoinRequest
		var participant models.Author
		err := rows.Scan(
			&request.ID, &request.UserID, &request.ActivityID,
			&request.Status, &request.CreatedAt,
			&participant.ID, &participant.Name,
			&participant.RollNumber, &participant.IsVerified,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan join request: %w", err)
		}
		request.Participant = &participant
		requests = append(requests, &request)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate join requests: %w", err)
	}

	return &models.PaginatedResponse[*models.JoinRequest]{
		Data:       requests,
		Pagination: models.NewPaginationMeta(params, total),
	}, nil
}

// CountByActivityID counts confirmed joins on an activity
func (r *joinRequestRepository) CountByActivityID(ctx context.Context, activityID int64) (int, error) {
	var count int
	err := r.QueryRowContext(
		ctx,
		`SELECT COUNT(*) FROM join_requests WHERE activity_id = $1`,
		activityID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count join requests: %w", err)
	}
	return count, nil
}
