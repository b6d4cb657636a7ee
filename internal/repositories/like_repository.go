// file: internal/repositories/like_repository.go
package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"campusboard/internal/database"

	"go.uber.org/zap"
)

// likeRepository implements LikeRepository
type likeRepository struct {
	*BaseRepository
}

// NewLikeRepository creates a new like repository
func NewLikeRepository(db *database.Manager, logger *zap.Logger) LikeRepository {
	return &likeRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

// Toggle adds or removes the user's like in a single transaction and
// returns the resulting state with the fresh total. The unique index on
// (user_id, activity_id) keeps concurrent toggles from double-counting.
func (r *likeRepository) Toggle(ctx context.Context, userID, activityID int64) (bool, int, error) {
	var liked bool
	var count int

	err := r.WithTransaction(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(
			ctx,
			`DELETE FROM likes WHERE user_id = $1 AND activity_id = $2`,
			userID, activityID,
		)
		if err != nil {
			return fmt.Errorf("failed to remove like: %w", err)
		}

		removed, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to check like removal: %w", err)
		}

		if removed == 0 {
			_, err = tx.ExecContext(
				ctx,
				`INSERT INTO likes (user_id, activity_id) VALUES ($1, $2)`,
				userID, activityID,
			)
			if err != nil {
				return fmt.Errorf("failed to add like: %w", err)
			}
			liked = true
		}

		return tx.QueryRowContext(
			ctx,
			`SELECT COUNT(*) FROM likes WHERE activity_id = $1`,
			activityID,
		).Scan(&count)
	})

	if err != nil {
		return false, 0, err
	}

	r.GetLogger().Debug("Like toggled",
		zap.Int64("user_id", userID),
		zap.Int64("activity_id", activityID),
		zap.Bool("liked", liked),
	)

	return liked, count, nil
}

// HasLiked reports whether the user has liked the activity
func (r *likeRepository) HasLiked(ctx context.Context, userID, activityID int64) (bool, error) {
	var exists bool
	err := r.QueryRowContext(
		ctx,
		`SELECT EXISTS (SELECT 1 FROM likes WHERE user_id = $1 AND activity_id = $2)`,
		userID, activityID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check like: %w", err)
	}
	return exists, nil
}

// CountByActivityID counts likes on an activity
func (r *likeRepository) CountByActivityID(ctx context.Context, activityID int64) (int, error) {
	var count int
	err := r.QueryRowContext(
		ctx,
		`SELECT COUNT(*) FROM likes WHERE activity_id = $1`,
		activityID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count likes: %w", err)
	}
	return count, nil
}
