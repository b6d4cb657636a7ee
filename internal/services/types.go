// file: internal/services/types.go
package services

import (
	"io"
	"time"

	"campusboard/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

// ===============================
// AUTH SERVICE TYPES
// ===============================

// RegisterRequest carries a signup submission
type RegisterRequest struct {
	RollNumber string  `json:"roll_number" validate:"required,rollnumber"`
	Name       string  `json:"name" validate:"required,min=2,max=100"`
	Password   string  `json:"password" validate:"required,min=8,max=128"`
	Email      *string `json:"email,omitempty" validate:"omitempty,email"`
}

// LoginRequest carries a login submission
type LoginRequest struct {
	RollNumber string `json:"roll_number" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

// AuthResponse is returned on successful register/login
type AuthResponse struct {
	User      *models.User `json:"user"`
	Token     string       `json:"-"`
	ExpiresAt time.Time    `json:"expires_at"`
}

// TokenClaims is the JWT payload issued on login
type TokenClaims struct {
	UserID     int64  `json:"uid"`
	RollNumber string `json:"roll_number"`
	IsAdmin    bool   `json:"is_admin"`
	jwt.RegisteredClaims
}

// ChangePasswordRequest carries a password change submission
type ChangePasswordRequest struct {
	UserID          int64  `json:"-" validate:"required"`
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=128"`
}

// ===============================
// USER SERVICE TYPES
// ===============================

// UpdateProfileRequest carries profile edits
type UpdateProfileRequest struct {
	UserID        int64   `json:"-" validate:"required"`
	Name          *string `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Email         *string `json:"email,omitempty" validate:"omitempty,email"`
	ProfilePicURL *string `json:"profile_pic_url,omitempty" validate:"omitempty,url"`
}

// ===============================
// ACTIVITY SERVICE TYPES
// ===============================

// OpenTemplateRequest is the OPEN activity payload
type OpenTemplateRequest struct {
	MeetingPointDetails     *string `json:"meeting_point_details,omitempty" validate:"omitempty,max=500"`
	ExpectedDurationMinutes *int    `json:"expected_duration_minutes,omitempty" validate:"omitempty,min=1"`
}

// CommunityTemplateRequest is the COMMUNITY activity payload
type CommunityTemplateRequest struct {
	CommunityName    string   `json:"community_name" validate:"required,min=3,max=50"`
	Goals            string   `json:"goals" validate:"required,min=10"`
	MeetingFrequency string   `json:"meeting_frequency" validate:"required,oneof=WEEKLY MONTHLY ON_DEMAND"`
	FirstMeetDate    *string  `json:"first_meet_date,omitempty"`
	CoOrganisers     []string `json:"co_organisers,omitempty"`
	Visibility       *string  `json:"visibility,omitempty" validate:"omitempty,oneof=PUBLIC INVITE_ONLY"`
}

// ApplicationFormRequest is the COLLEGE_FUNDED activity payload
type ApplicationFormRequest struct {
	BudgetBreakdown       []models.BudgetItem           `json:"budget_breakdown,omitempty" validate:"omitempty,dive"`
	VenueRequirement      *string                       `json:"venue_requirement,omitempty"`
	ExpectedAttendees     *int                          `json:"expected_attendees,omitempty" validate:"omitempty,min=1"`
	SafetyPlan            *string                       `json:"safety_plan,omitempty"`
	ProposedDates         []string                      `json:"proposed_dates,omitempty"`
	RepresentativeContact *models.RepresentativeContact `json:"representative_contact,omitempty"`
}

// CreateActivityRequest carries a new activity submission. Exactly one
// of the type payloads must match the declared type.
type CreateActivityRequest struct {
	AuthorID    int64   `json:"-" validate:"required"`
	Title       string  `json:"title" validate:"required,min=5,max=120"`
	Description string  `json:"description" validate:"required,min=15,max=2000"`
	Type        string  `json:"type" validate:"required,oneof=OPEN COMMUNITY COLLEGE_FUNDED"`
	Genre       string  `json:"genre" validate:"required,oneof=TECH ART MUSIC DANCE SPORTS OTHER"`
	Frequency   string  `json:"frequency" validate:"required,oneof=ONE_OFF WEEKLY FORTNIGHTLY MONTHLY ON_DEMAND"`
	Location    *string `json:"location,omitempty" validate:"omitempty,max=200"`
	StartDate   *string `json:"start_date,omitempty"`
	EndDate     *string `json:"end_date,omitempty"`
	Capacity    *int    `json:"capacity,omitempty" validate:"omitempty,min=1"`
	FundingGoal *int64  `json:"funding_goal,omitempty" validate:"omitempty,gt=0"`

	OpenTemplate      *OpenTemplateRequest      `json:"open_template,omitempty"`
	CommunityTemplate *CommunityTemplateRequest `json:"community_template,omitempty"`
	ApplicationForm   *ApplicationFormRequest   `json:"application_form,omitempty"`
}

// UpdateActivityRequest carries edits to an existing activity
type UpdateActivityRequest struct {
	ActivityID  int64    `json:"-" validate:"required"`
	UserID      int64    `json:"-" validate:"required"`
	Title       *string  `json:"title,omitempty" validate:"omitempty,min=5,max=120"`
	Description *string  `json:"description,omitempty" validate:"omitempty,min=15,max=2000"`
	Genre       *string  `json:"genre,omitempty" validate:"omitempty,oneof=TECH ART MUSIC DANCE SPORTS OTHER"`
	Frequency   *string  `json:"frequency,omitempty" validate:"omitempty,oneof=ONE_OFF WEEKLY FORTNIGHTLY MONTHLY ON_DEMAND"`
	Location    *string  `json:"location,omitempty" validate:"omitempty,max=200"`
	StartDate   *string  `json:"start_date,omitempty"`
	EndDate     *string  `json:"end_date,omitempty"`
	Capacity    *int    `json:"capacity,omitempty" validate:"omitempty,min=1"`
	FundingGoal *int64  `json:"funding_goal,omitempty" validate:"omitempty,gt=0"`

	OpenTemplate      *OpenTemplateRequest      `json:"open_template,omitempty"`
	CommunityTemplate *CommunityTemplateRequest `json:"community_template,omitempty"`
	ApplicationForm   *ApplicationFormRequest   `json:"application_form,omitempty"`
}

// ListActivitiesRequest carries feed query parameters
type ListActivitiesRequest struct {
	Filter     models.ActivityFilter   `json:"filter"`
	Pagination models.PaginationParams `json:"pagination"`
	ViewerID   *int64                  `json:"-"`
}

// CreateActivityResult pairs the created activity with a user-facing
// message. Funding activities carry the pending-approval notice.
type CreateActivityResult struct {
	Activity *models.Activity `json:"activity"`
	Message  string           `json:"message"`
}

// ToggleLikeResult reports the outcome of a like toggle
type ToggleLikeResult struct {
	Liked     bool `json:"liked"`
	LikeCount int  `json:"like_count"`
}

// CreateCommentRequest carries a new comment submission
type CreateCommentRequest struct {
	UserID     int64  `json:"-" validate:"required"`
	ActivityID int64  `json:"-" validate:"required"`
	Text       string `json:"text" validate:"required,min=1,max=1000"`
}

// ReportActivityRequest carries an activity report submission
type ReportActivityRequest struct {
	ReporterID int64  `json:"-" validate:"required"`
	ActivityID int64  `json:"-" validate:"required"`
	Reason     string `json:"reason" validate:"required,min=10,max=300"`
}

// ResolveReportRequest carries an admin's report decision
type ResolveReportRequest struct {
	ReportID int64  `json:"-" validate:"required"`
	AdminID  int64  `json:"-" validate:"required"`
	Status   string `json:"status" validate:"required,oneof=RESOLVED DISMISSED"`
}

// ===============================
// VERIFICATION SERVICE TYPES
// ===============================

// RequestVerificationRequest carries a verification submission with an
// optional ID image upload.
type RequestVerificationRequest struct {
	UserID  int64       `json:"-" validate:"required"`
	IDImage *FileUpload `json:"-"`
}

// ReviewVerificationRequest carries an admin's verification decision.
// A note is mandatory when rejecting so the student knows what to fix;
// approvals may leave it empty.
type ReviewVerificationRequest struct {
	RequestID int64  `json:"-" validate:"required"`
	AdminID   int64  `json:"-" validate:"required"`
	Approve   bool   `json:"approve"`
	Note      string `json:"note" validate:"omitempty,max=500"`
}

// ===============================
// FILE SERVICE TYPES
// ===============================

// FileUpload wraps an incoming multipart file
type FileUpload struct {
	File        io.Reader `json:"-"`
	Filename    string    `json:"filename"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
}

// FileUploadRequest carries a file destined for storage
type FileUploadRequest struct {
	UserID int64       `json:"-" validate:"required"`
	Upload *FileUpload `json:"-" validate:"required"`
	Folder string      `json:"folder,omitempty"`
}

// FileUploadResult describes a stored file
type FileUploadResult struct {
	URL      string `json:"url"`
	PublicID string `json:"public_id"`
	Size     int64  `json:"size"`
	Format   string `json:"format"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
}
