// file: internal/repositories/activity_repository.go
package repositories

import (
	"context"
	"fmt"
	"strings"

	"campusboard/internal/database"
	"campusboard/internal/models"

	"go.uber.org/zap"
)

// activityRepository implements ActivityRepository
type activityRepository struct {
	*BaseRepository
}

// NewActivityRepository creates a new activity repository
func NewActivityRepository(db *database.Manager, logger *zap.Logger) ActivityRepository {
	return &activityRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

// ===============================
// BASIC CRUD OPERATIONS
// ===============================

// Create inserts a new activity with its type-specific payload
func (r *activityRepository) Create(ctx context.Context, activity *models.Activity) error {
	query := `
		INSERT INTO activities (
			author_id, title, description, type, genre, frequency,
			location, start_date, end_date, capacity, is_active,
			funding_goal, templates_used, application_form
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14
		) RETURNING id, created_at, updated_at`

	err := r.QueryRowContext(
		ctx, query,
		activity.AuthorID, activity.Title, activity.Description,
		activity.Type, activity.Genre, activity.Frequency,
		activity.Location, activity.StartDate, activity.EndDate,
		activity.Capacity, activity.IsActive, activity.FundingGoal,
		activity.TemplatesUsed, activity.ApplicationForm,
	).Scan(&activity.ID, &activity.CreatedAt, &activity.UpdatedAt)

	if err != nil {
		r.GetLogger().Error("Failed to create activity",
			zap.Error(err),
			zap.Int64("author_id", activity.AuthorID),
			zap.String("type", string(activity.Type)),
		)
		return fmt.Errorf("failed to create activity: %w", err)
	}

	r.GetLogger().Info("Activity created",
		zap.Int64("activity_id", activity.ID),
		zap.Int64("author_id", activity.AuthorID),
		zap.String("type", string(activity.Type)),
	)

	return nil
}

// activitySelect builds the shared projection for activity reads. The
// viewer flags collapse to constant false when no viewer is present, so
// a single scan path serves both anonymous and authenticated reads.
func activitySelect(withViewer bool) string {
	viewerFlags := `
		false AS has_liked,
		false AS has_joined`
	if withViewer {
		viewerFlags = `
		EXISTS (SELECT 1 FROM likes l2 WHERE l2.activity_id = a.id AND l2.user_id = $VIEWER) AS has_liked,
		EXISTS (SELECT 1 FROM join_requests j2 WHERE j2.activity_id = a.id AND j2.user_id = $VIEWER) AS has_joined`
	}

	return `
		SELECT
			a.id, a.author_id, a.title, a.description, a.type, a.genre,
			a.frequency, a.location, a.start_date, a.end_date, a.capacity,
			a.is_active, a.funding_goal, a.templates_used, a.application_form,
			a.joined_count, a.created_at, a.updated_at,
			(SELECT COUNT(*) FROM likes l WHERE l.activity_id = a.id) AS like_count,
			(SELECT COUNT(*) FROM comments c WHERE c.activity_id = a.id) AS comment_count,
			u.id, u.name, u.roll_number, u.is_verified,` + viewerFlags + `
		FROM activities a
		JOIN users u ON u.id = a.author_id`
}

func scanActivity(row interface{ Scan(...interface{}) error }) (*models.Activity, error) {
	var a models.Activity
	var author models.Author
	err := row.Scan(
		&a.ID, &a.AuthorID, &a.Title, &a.Description, &a.Type, &a.Genre,
		&a.Frequency, &a.Location, &a.StartDate, &a.EndDate, &a.Capacity,
		&a.IsActive, &a.FundingGoal, &a.TemplatesUsed, &a.ApplicationForm,
		&a.JoinedCount, &a.CreatedAt, &a.UpdatedAt,
		&a.LikeCount, &a.CommentCount,
		&author.ID, &author.Name, &author.RollNumber, &author.IsVerified,
		&a.HasLiked, &a.HasJoined,
	)
	if err != nil {
		return nil, err
	}
	a.Author = author
	return &a, nil
}

// GetByID retrieves an activity with engagement counts and, when a
// viewer is known, their like/join/ownership flags.
func (r *activityRepository) GetByID(ctx context.Context, id int64, viewerID *int64) (*models.Activity, error) {
	query := activitySelect(viewerID != nil) + ` WHERE a.id = $1`
	args := []interface{}{id}
	if viewerID != nil {
		query = strings.ReplaceAll(query, "$VIEWER", "$2")
		args = append(args, *viewerID)
	}

	activity, err := scanActivity(r.QueryRowContext(ctx, query, args...))
	if err != nil {
		if r.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get activity by ID: %w", err)
	}

	if viewerID != nil {
		activity.IsOwner = activity.AuthorID == *viewerID
	}

	return activity, nil
}

// Update rewrites an activity's editable fields
func (r *activityRepository) Update(ctx context.Context, activity *models.Activity) error {
	query := `
		UPDATE activities
		SET title = $2, description = $3, genre = $4, frequency = $5,
			location = $6, start_date = $7, end_date = $8, capacity = $9,
			funding_goal = $10, templates_used = $11, application_form = $12,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.QueryRowContext(
		ctx, query,
		activity.ID, activity.Title, activity.Description,
		activity.Genre, activity.Frequency, activity.Location,
		activity.StartDate, activity.EndDate, activity.Capacity,
		activity.FundingGoal, activity.TemplatesUsed, activity.ApplicationForm,
	).Scan(&activity.UpdatedAt)

	if err != nil {
		if r.IsNotFound(err) {
			return err
		}
		return fmt.Errorf("failed to update activity: %w", err)
	}

	return nil
}

// Delete removes an activity and its dependent rows (cascaded in schema)
func (r *activityRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.ExecContext(ctx, `DELETE FROM activities WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete activity: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("activity %d not found", id)
	}

	r.GetLogger().Info("Activity deleted", zap.Int64("activity_id", id))
	return nil
}

// ===============================
// LISTING AND FILTERING
// ===============================

// List returns the public feed: active activities matching the filter,
// sorted newest-first or by like count.
func (r *activityRepository) List(ctx context.Context, filter models.ActivityFilter, params models.PaginationParams, viewerID *int64) (*models.PaginatedResponse[*models.Activity], error) {
	conditions := []string{"a.is_active = true"}
	args := []interface{}{}

	addArg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Query != "" {
		p := addArg("%" + filter.Query + "%")
		conditions = append(conditions, fmt.Sprintf("(a.title ILIKE %s OR a.description ILIKE %s)", p, p))
	}
	if filter.Genre != "" {
		conditions = append(conditions, fmt.Sprintf("a.genre = %s", addArg(filter.Genre)))
	}
	if filter.Type != "" {
		conditions = append(conditions, fmt.Sprintf("a.type = %s", addArg(filter.Type)))
	}
	if filter.Frequency != "" {
		conditions = append(conditions, fmt.Sprintf("a.frequency = %s", addArg(filter.Frequency)))
	}

	where := " WHERE " + strings.Join(conditions, " AND ")

	countQuery := `SELECT COUNT(*) FROM activities a` + where
	total, err := r.GetTotalCount(ctx, countQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to count activities: %w", err)
	}

	orderBy := " ORDER BY a.created_at DESC"
	if params.Sort == models.SortByLikes {
		orderBy = " ORDER BY like_count DESC, a.created_at DESC"
	}

	query := activitySelect(viewerID != nil) + where + orderBy +
		fmt.Sprintf(" LIMIT %s OFFSET %s", addArg(params.Limit), addArg(params.Offset))
	if viewerID != nil {
		query = strings.ReplaceAll(query, "$VIEWER", addArg(*viewerID))
	}

	return r.queryActivities(ctx, query, args, params, total, viewerID)
}

// GetByAuthorID returns the activities a user authored. Owners see all
// of their activities; every other viewer sees only active ones. The
// filter lives in the query so pagination counts stay exact.
func (r *activityRepository) GetByAuthorID(ctx context.Context, authorID int64, params models.PaginationParams, viewerID *int64) (*models.PaginatedResponse[*models.Activity], error) {
	where := ` WHERE a.author_id = $1`
	if viewerID == nil || *viewerID != authorID {
		where += ` AND a.is_active = true`
	}

	total, err := r.GetTotalCount(ctx, `SELECT COUNT(*) FROM activities a`+where, authorID)
	if err != nil {
		return nil, fmt.Errorf("failed to count author activities: %w", err)
	}

	args := []interface{}{authorID, params.Limit, params.Offset}
	query := activitySelect(viewerID != nil) + where +
		` ORDER BY a.created_at DESC LIMIT $2 OFFSET $3`
	if viewerID != nil {
		args = append(args, *viewerID)
		query = strings.ReplaceAll(query, "$VIEWER", fmt.Sprintf("$%d", len(args)))
	}

	return r.queryActivities(ctx, query, args, params, total, viewerID)
}

// GetPendingFunded lists inactive funding activities awaiting approval
func (r *activityRepository) GetPendingFunded(ctx context.Context, params models.PaginationParams) (*models.PaginatedResponse[*models.Activity], error) {
	where := ` WHERE a.type = $1 AND a.is_active = false`
	args := []interface{}{models.TypeCollegeFunded}

	total, err := r.GetTotalCount(ctx, `SELECT COUNT(*) FROM activities a`+where, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to count pending activities: %w", err)
	}

	args = append(args, params.Limit, params.Offset)
	query := activitySelect(false) + where + ` ORDER BY a.created_at ASC LIMIT $2 OFFSET $3`

	return r.queryActivities(ctx, query, args, params, total, nil)
}

func (r *activityRepository) queryActivities(ctx context.Context, query string, args []interface{}, params models.PaginationParams, total int64, viewerID *int64) (*models.PaginatedResponse[*models.Activity], error) {
	rows, err := r.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	defer rows.Close()

	activities := make([]*models.Activity, 0, params.Limit)
	for rows.Next() {
		activity, err := scanActivity(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		if viewerID != nil {
			activity.IsOwner = activity.AuthorID == *viewerID
		}
		activities = append(activities, activity)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate activities: %w", err)
	}

	return &models.PaginatedResponse[*models.Activity]{
		Data:       activities,
		Pagination: models.NewPaginationMeta(params, total),
	}, nil
}

// ===============================
// LIFECYCLE
// ===============================

// SetActive flips an activity's visibility on the board
func (r *activityRepository) SetActive(ctx context.Context, activityID int64, active bool) error {
	result, err := r.ExecContext(
		ctx,
		`UPDATE activities SET is_active = $2, updated_at = NOW() WHERE id = $1`,
		activityID, active,
	)
	if err != nil {
		return fmt.Errorf("failed to set activity active state: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("activity %d not found", activityID)
	}

	return nil
}

// CountActiveByAuthor counts a user's active activities for quota checks
func (r *activityRepository) CountActiveByAuthor(ctx context.Context, authorID int64) (int, error) {
	var count int
	err := r.QueryRowContext(
		ctx,
		`SELECT COUNT(*) FROM activities WHERE author_id = $1 AND is_active = true`,
		authorID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count active activities: %w", err)
	}
	return count, nil
}
