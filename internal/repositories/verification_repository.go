// file: internal/repositories/verification_repository.go
package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"campusboard/internal/database"
	"campusboard/internal/models"

	"go.uber.org/zap"
)

// Sentinel errors for verification review outcomes.
var (
	ErrRequestNotFound   = errors.New("verification request not found")
	ErrRequestNotPending = errors.New("verification request already decided")
)

// verificationRepository implements VerificationRepository
type verificationRepository struct {
	*BaseRepository
}

// NewVerificationRepository creates a new verification repository
func NewVerificationRepository(db *database.Manager, logger *zap.Logger) VerificationRepository {
	return &verificationRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

// Upsert creates the user's verification request, or resets an existing
// rejected one back to pending with the new ID image.
func (r *verificationRepository) Upsert(ctx context.Context, request *models.VerificationRequest) error {
	query := `
		INSERT INTO verification_requests (user_id, id_image_url, status)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE
		SET id_image_url = EXCLUDED.id_image_url,
			status = $3,
			admin_id = NULL,
			note = NULL,
			updated_at = NOW()
		WHERE verification_requests.status = $4
		RETURNING id, status, created_at, updated_at`

	err := r.QueryRowContext(
		ctx, query,
		request.UserID, request.IDImageURL,
		models.VerificationPending, models.VerificationRejected,
	).Scan(&request.ID, &request.Status, &request.CreatedAt, &request.UpdatedAt)

	if err != nil {
		// The conditional upsert returns no row when an existing
		// request is still pending or already approved.
		if r.IsNotFound(err) {
			return ErrRequestNotPending
		}
		r.GetLogger().Error("Failed to upsert verification request",
			zap.Error(err),
			zap.Int64("user_id", request.UserID),
		)
		return fmt.Errorf("failed to upsert verification request: %w", err)
	}

	r.GetLogger().Info("Verification requested",
		zap.Int64("request_id", request.ID),
		zap.Int64("user_id", request.UserID),
	)

	return nil
}

const verificationSelect = `
	SELECT v.id, v.user_id, v.id_image_url, v.status, v.admin_id, v.note,
		v.created_at, v.updated_at
	FROM verification_requests v`

func scanVerification(row interface{ Scan(...interface{}) error }) (*models.VerificationRequest, error) {
	var req models.VerificationRequest
	err := row.Scan(
		&req.ID, &req.UserID, &req.IDImageURL, &req.Status,
		&req.AdminID, &req.Note, &req.CreatedAt, &req.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// GetByUserID retrieves a user's verification request
func (r *verificationRepository) GetByUserID(ctx context.Context, userID int64) (*models.VerificationRequest, error) {
	req, err := scanVerification(r.QueryRowContext(ctx, verificationSelect+` WHERE v.user_id = $1`, userID))
	if err != nil {
		if r.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get verification request: %w", err)
	}
	return req, nil
}

// GetByID retrieves a verification request by ID
func (r *verificationRepository) GetByID(ctx context.Context, id int64) (*models.VerificationRequest, error) {
	req, err := scanVerification(r.QueryRowContext(ctx, verificationSelect+` WHERE v.id = $1`, id))
	if err != nil {
		if r.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get verification request: %w", err)
	}
	return req, nil
}

// Review decides a pending request. Approval flips the user's verified
// flag inside the same transaction so the two writes cannot diverge.
func (r *verificationRepository) Review(ctx context.Context, requestID, adminID int64, status, note string) (*models.VerificationRequest, error) {
	var req *models.VerificationRequest

	err := r.WithTransaction(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(
			ctx,
			`UPDATE verification_requests
			SET status = $2, admin_id = $3, note = $4, updated_at = NOW()
			WHERE id = $1 AND status = $5
			RETURNING id, user_id, id_image_url, status, admin_id, note,
				created_at, updated_at`,
			requestID, status, adminID, note, models.VerificationPending,
		)

		var err error
		req, err = scanVerification(row)
		if err == sql.ErrNoRows {
			// Distinguish a missing request from one already decided.
			var exists bool
			if checkErr := tx.QueryRowContext(
				ctx,
				`SELECT EXISTS (SELECT 1 FROM verification_requests WHERE id = $1)`,
				requestID,
			).Scan(&exists); checkErr != nil {
				return fmt.Errorf("failed to check verification request: %w", checkErr)
			}
			if exists {
				return ErrRequestNotPending
			}
			return ErrRequestNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to review verification request: %w", err)
		}

		verified := status == models.VerificationApproved
		_, err = tx.ExecContext(
			ctx,
			`UPDATE users SET is_verified = $2, updated_at = NOW() WHERE id = $1`,
			req.UserID, verified,
		)
		if err != nil {
			return fmt.Errorf("failed to update user verification: %w", err)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	r.GetLogger().Info("Verification reviewed",
		zap.Int64("request_id", requestID),
		zap.Int64("admin_id", adminID),
		zap.String("status", status),
	)

	return req, nil
}

// List returns verification requests for the admin queue
func (r *verificationRepository) List(ctx context.Context, status *string, params models.PaginationParams) (*models.PaginatedResponse[*models.VerificationRequest], error) {
	conditions := []string{}
	args := []interface{}{}
	if status != nil {
		args = append(args, *status)
		conditions = append(conditions, fmt.Sprintf("v.status = $%d", len(args)))
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	total, err := r.GetTotalCount(ctx, `SELECT COUNT(*) FROM verification_requests v`+where, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to count verification requests: %w", err)
	}

	args = append(args, params.Limit, params.Offset)
	query := `
		SELECT v.id, v.user_id, v.id_image_url, v.status, v.admin_id, v.note,
			v.created_at, v.updated_at,
			u.id, u.roll_number, u.name, u.is_verified, u.created_at
		FROM verification_requests v
		JOIN users u ON u.id = v.user_id` + where +
		fmt.Sprintf(" ORDER BY v.created_at ASC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list verification requests: %w", err)
	}
	defer rows.Close()

	requests := make([]*models.VerificationRequest, 0, params.Limit)
	for rows.Next() {
		var req models.VerificationRequest
		var user models.User
		err := rows.Scan(
			&req.ID, &req.UserID, &req.IDImageURL, &req.Status,
			&req.AdminID, &req.Note, &req.CreatedAt, &req.UpdatedAt,
			&user.ID, &user.RollNumber, &user.Name,
			&user.IsVerified, &user.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan verification request: %w", err)
		}
		req.User = &user
		requests = append(requests, &req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate verification requests: %w", err)
	}

	return &models.PaginatedResponse[*models.VerificationRequest]{
		Data:       requests,
		Pagination: models.NewPaginationMeta(params, total),
	}, nil
}
