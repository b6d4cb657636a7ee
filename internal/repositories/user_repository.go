// file: internal/repositories/user_repository.go
package repositories

import (
	"context"
	"fmt"

	"campusboard/internal/database"
	"campusboard/internal/models"

	"go.uber.org/zap"
)

// userRepository implements UserRepository
type userRepository struct {
	*BaseRepository
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.Manager, logger *zap.Logger) UserRepository {
	return &userRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

const userColumns = `
	u.id, u.roll_number, u.name, u.password_hash, u.email,
	u.profile_pic_url, u.is_verified, u.is_admin,
	u.created_at, u.updated_at`

func scanUser(row interface{ Scan(...interface{}) error }) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID, &user.RollNumber, &user.Name, &user.PasswordHash,
		&user.Email, &user.ProfilePicURL, &user.IsVerified, &user.IsAdmin,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ===============================
// BASIC CRUD OPERATIONS
// ===============================

// Create creates a new user
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (roll_number, name, password_hash, email)
		VALUES ($1, $2, $3, $4)
		RETURNING id, is_verified, is_admin, created_at, updated_at`

	err := r.QueryRowContext(
		ctx, query,
		user.RollNumber, user.Name, user.PasswordHash, user.Email,
	).Scan(
		&user.ID, &user.IsVerified, &user.IsAdmin,
		&user.CreatedAt, &user.UpdatedAt,
	)

	if err != nil {
		if IsUniqueViolation(err, "") {
			return err
		}
		r.GetLogger().Error("Failed to create user",
			zap.Error(err),
			zap.String("roll_number", user.RollNumber),
		)
		return fmt.Errorf("failed to create user: %w", err)
	}

	r.GetLogger().Info("User created successfully",
		zap.Int64("user_id", user.ID),
		zap.String("roll_number", user.RollNumber),
	)

	return nil
}

// GetByID retrieves a user by ID
func (r *userRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users u WHERE u.id = $1`, userColumns)

	user, err := scanUser(r.QueryRowContext(ctx, query, id))
	if err != nil {
		if r.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}

	return user, nil
}

// GetByRollNumber retrieves a user by roll number
func (r *userRepository) GetByRollNumber(ctx context.Context, rollNumber string) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users u WHERE u.roll_number = $1`, userColumns)

	user, err := scanUser(r.QueryRowContext(ctx, query, rollNumber))
	if err != nil {
		if r.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by roll number: %w", err)
	}

	return user, nil
}

// Update updates a user's mutable profile fields
func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET name = $2, email = $3, profile_pic_url = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.QueryRowContext(
		ctx, query,
		user.ID, user.Name, user.Email, user.ProfilePicURL,
	).Scan(&user.UpdatedAt)

	if err != nil {
		if r.IsNotFound(err) {
			return err
		}
		return fmt.Errorf("failed to update user: %w", err)
	}

	return nil
}

// UpdatePasswordHash writes a new password hash
func (r *userRepository) UpdatePasswordHash(ctx context.Context, userID int64, hash string) error {
	result, err := r.ExecContext(
		ctx,
		`UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`,
		userID, hash,
	)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("user %d not found", userID)
	}

	return nil
}

// Delete removes a user
func (r *userRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("user %d not found", id)
	}

	return nil
}

// ===============================
// PROFILE COMPOSITION
// ===============================

// GetProfile retrieves a user joined with their verification request
// and active activity count.
func (r *userRepository) GetProfile(ctx context.Context, id int64) (*models.User, error) {
	user, err := r.GetByID(ctx, id)
	if err != nil || user == nil {
		return user, err
	}

	query := `
		SELECT id, user_id, id_image_url, status, admin_id, note,
			created_at, updated_at
		FROM verification_requests
		WHERE user_id = $1`

	var req models.VerificationRequest
	err = r.QueryRowContext(ctx, query, id).Scan(
		&req.ID, &req.UserID, &req.IDImageURL, &req.Status,
		&req.AdminID, &req.Note, &req.CreatedAt, &req.UpdatedAt,
	)
	if err != nil && !r.IsNotFound(err) {
		return nil, fmt.Errorf("failed to get verification request: %w", err)
	}
	if err == nil {
		user.VerificationRequest = &req
	}

	count, err := r.CountActiveActivities(ctx, id)
	if err != nil {
		return nil, err
	}
	user.ActiveActivities = count

	return user, nil
}

// CountActiveActivities counts the user's currently active activities
func (r *userRepository) CountActiveActivities(ctx context.Context, userID int64) (int, error) {
	var count int
	err := r.QueryRowContext(
		ctx,
		`SELECT COUNT(*) FROM activities WHERE author_id = $1 AND is_active = true`,
		userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count active activities: %w", err)
	}
	return count, nil
}

// ===============================
// LISTING
// ===============================

// List returns users ordered by signup date, newest first
func (r *userRepository) List(ctx context.Context, params models.PaginationParams) (*models.PaginatedResponse[*models.User], error) {
	total, err := r.GetTotalCount(ctx, `SELECT COUNT(*) FROM users`)
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM users u
		ORDER BY u.created_at DESC
		LIMIT $1 OFFSET $2`, userColumns)

	rows, err := r.QueryContext(ctx, query, params.Limit, params.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := make([]*models.User, 0, params.Limit)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}

	return &models.PaginatedResponse[*models.User]{
		Data:       users,
		Pagination: models.NewPaginationMeta(params, total),
	}, nil
}
