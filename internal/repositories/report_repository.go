// file: internal/repositories/report_repository.go
package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"campusboard/internal/database"
	"campusboard/internal/models"

	"go.uber.org/zap"
)

// ErrAlreadyReported is returned when a user reports the same activity twice.
var ErrAlreadyReported = errors.New("activity already reported by this user")

// reportRepository implements ReportRepository
type reportRepository struct {
	*BaseRepository
}

// NewReportRepository creates a new report repository
func NewReportRepository(db *database.Manager, logger *zap.Logger) ReportRepository {
	return &reportRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

// Create files a report. The unique index on (reporter_id, activity_id)
// enforces one report per user per activity.
func (r *reportRepository) Create(ctx context.Context, report *models.Report) error {
	query := `
		INSERT INTO reports (reporter_id, activity_id, reason, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	if report.Status == "" {
		report.Status = models.ReportStatusOpen
	}

	err := r.QueryRowContext(
		ctx, query,
		report.ReporterID, report.ActivityID, report.Reason, report.Status,
	).Scan(&report.ID, &report.CreatedAt)

	if err != nil {
		if IsUniqueViolation(err, "") {
			return ErrAlreadyReported
		}
		r.GetLogger().Error("Failed to create report",
			zap.Error(err),
			zap.Int64("reporter_id", report.ReporterID),
			zap.Int64("activity_id", report.ActivityID),
		)
		return fmt.Errorf("failed to create report: %w", err)
	}

	r.GetLogger().Info("Report filed",
		zap.Int64("report_id", report.ID),
		zap.Int64("activity_id", report.ActivityID),
	)

	return nil
}

const reportSelect = `
	SELECT r.id, r.reporter_id, r.activity_id, r.reason, r.status, r.created_at,
		u.id, u.name, u.roll_number, u.is_verified,
		a.title, a.type,
		o.id, o.name, o.roll_number, o.is_verified
	FROM reports r
	JOIN users u ON u.id = r.reporter_id
	JOIN activities a ON a.id = r.activity_id
	JOIN users o ON o.id = a.author_id`

func scanReport(row interface{ Scan(...interface{}) error }) (*models.Report, error) {
	var report models.Report
	var owner models.Author
	err := row.Scan(
		&report.ID, &report.ReporterID, &report.ActivityID,
		&report.Reason, &report.Status, &report.CreatedAt,
		&report.Reporter.ID, &report.Reporter.Name,
		&report.Reporter.RollNumber, &report.Reporter.IsVerified,
		&report.ActivityTitle, &report.ActivityType,
		&owner.ID, &owner.Name, &owner.RollNumber, &owner.IsVerified,
	)
	if err != nil {
		return nil, err
	}
	report.ActivityOwner = &owner
	return &report, nil
}

// GetByID retrieves a report with its reporter and activity context
func (r *reportRepository) GetByID(ctx context.Context, id int64) (*models.Report, error) {
	report, err := scanReport(r.QueryRowContext(ctx, reportSelect+` WHERE r.id = $1`, id))
	if err != nil {
		if r.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get report by ID: %w", err)
	}
	return report, nil
}

// HasReported reports whether the user already reported the activity
func (r *reportRepository) HasReported(ctx context.Context, reporterID, activityID int64) (bool, error) {
	var exists bool
	err := r.QueryRowContext(
		ctx,
		`SELECT EXISTS (SELECT 1 FROM reports WHERE reporter_id = $1 AND activity_id = $2)`,
		reporterID, activityID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check report: %w", err)
	}
	return exists, nil
}

// List returns reports for the admin queue, oldest open first
func (r *reportRepository) List(ctx context.Context, status *string, params models.PaginationParams) (*models.PaginatedResponse[*models.Report], error) {
	conditions := []string{}
	args := []interface{}{}
	if status != nil {
		args = append(args, *status)
		conditions = append(conditions, fmt.Sprintf("r.status = $%d", len(args)))
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	total, err := r.GetTotalCount(ctx, `SELECT COUNT(*) FROM reports r`+where, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to count reports: %w", err)
	}

	args = append(args, params.Limit, params.Offset)
	query := reportSelect + where +
		fmt.Sprintf(" ORDER BY r.created_at ASC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	reports := make([]*models.Report, 0, params.Limit)
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		reports = append(reports, report)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reports: %w", err)
	}

	return &models.PaginatedResponse[*models.Report]{
		Data:       reports,
		Pagination: models.NewPaginationMeta(params, total),
	}, nil
}

// UpdateStatus resolves or dismisses a report
func (r *reportRepository) UpdateStatus(ctx context.Context, reportID int64, status string) error {
	result, err := r.ExecContext(
		ctx,
		`UPDATE reports SET status = $2 WHERE id = $1`,
		reportID, status,
	)
	if err != nil {
		return fmt.Errorf("failed to update report status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("report %d not found", reportID)
	}

	return nil
}
