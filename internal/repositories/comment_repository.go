// file: internal/repositories/comment_repository.go
package repositories

import (
	"context"
	"fmt"

	"campusboard/internal/database"
	"campusboard/internal/models"

	"go.uber.org/zap"
)

// commentRepository implements CommentRepository
type commentRepository struct {
	*BaseRepository
}

// NewCommentRepository creates a new comment repository
func NewCommentRepository(db *database.Manager, logger *zap.Logger) CommentRepository {
	return &commentRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

// Create inserts a new comment
func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	query := `
		INSERT INTO comments (user_id, activity_id, text)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := r.QueryRowContext(
		ctx, query,
		comment.UserID, comment.ActivityID, comment.Text,
	).Scan(&comment.ID, &comment.CreatedAt)

	if err != nil {
		r.GetLogger().Error("Failed to create comment",
			zap.Error(err),
			zap.Int64("activity_id", comment.ActivityID),
			zap.Int64("user_id", comment.UserID),
		)
		return fmt.Errorf("failed to create comment: %w", err)
	}

	return nil
}

// GetByID retrieves a comment with its author
func (r *commentRepository) GetByID(ctx context.Context, id int64) (*models.Comment, error) {
	query := `
		SELECT c.id, c.user_id, c.activity_id, c.text, c.created_at,
			u.id, u.name, u.roll_number, u.is_verified
		FROM comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.id = $1`

	var comment models.Comment
	var author models.Author
	err := r.QueryRowContext(ctx, query, id).Scan(
		&comment.ID, &comment.UserID, &comment.ActivityID,
		&comment.Text, &comment.CreatedAt,
		&author.ID, &author.Name, &author.RollNumber, &author.IsVerified,
	)

	if err != nil {
		if r.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get comment by ID: %w", err)
	}

	comment.Author = author
	return &comment, nil
}

// Delete removes a comment
func (r *commentRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("comment %d not found", id)
	}

	return nil
}

// GetByActivityID lists an activity's comments, newest first
func (r *commentRepository) GetByActivityID(ctx context.Context, activityID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Comment], error) {
	total, err := r.GetTotalCount(
		ctx,
		`SELECT COUNT(*) FROM comments WHERE activity_id = $1`,
		activityID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to count comments: %w", err)
	}

	query := `
		SELECT c.id, c.user_id, c.activity_id, c.text, c.created_at,
			u.id, u.name, u.roll_number, u.is_verified
		FROM comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.activity_id = $1
		ORDER BY c.created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.QueryContext(ctx, query, activityID, params.Limit, params.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	comments := make([]*models.Comment, 0, params.Limit)
	for rows.Next() {
		var comment models.Comment
		var author models.Author
		err := rows.Scan(
			&comment.ID, &comment.UserID, &comment.ActivityID,
			&comment.Text, &comment.CreatedAt,
			&author.ID, &author.Name, &author.RollNumber, &author.IsVerified,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comment.Author = author
		comments = append(comments, &comment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate comments: %w", err)
	}

	return &models.PaginatedResponse[*models.Comment]{
		Data:       comments,
		Pagination: models.NewPaginationMeta(params, total),
	}, nil
}

// CountByActivityID counts comments on an activity
func (r *commentRepository) CountByActivityID(ctx context.Context, activityID int64) (int, error) {
	var count int
	err := r.QueryRowContext(
		ctx,
		`SELECT COUNT(*) FROM comments WHERE activity_id = $1`,
		activityID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count comments: %w", err)
	}
	return count, nil
}
