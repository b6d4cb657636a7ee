// file: internal/models/models.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// ===============================
// ENUMS
// ===============================

// Activity types
const (
	TypeOpen          = "OPEN"
	TypeCommunity     = "COMMUNITY"
	TypeCollegeFunded = "COLLEGE_FUNDED"
)

// Activity genres
const (
	GenreTech   = "TECH"
	GenreArt    = "ART"
	GenreMusic  = "MUSIC"
	GenreDance  = "DANCE"
	GenreSports = "SPORTS"
	GenreOther  = "OTHER"
)

// Activity frequencies
const (
	FrequencyOneOff      = "ONE_OFF"
	FrequencyWeekly      = "WEEKLY"
	FrequencyFortnightly = "FORTNIGHTLY"
	FrequencyMonthly     = "MONTHLY"
	FrequencyOnDemand    = "ON_DEMAND"
)

// Join request statuses. Only CONFIRMED is ever written today (joins
// auto-confirm on capacity check); PENDING exists for a future
// organizer-approval flow.
const (
	JoinStatusConfirmed = "CONFIRMED"
	JoinStatusPending   = "PENDING"
)

// Report statuses
const (
	ReportStatusOpen      = "OPEN"
	ReportStatusResolved  = "RESOLVED"
	ReportStatusDismissed = "DISMISSED"
)

// Verification request statuses
const (
	VerificationPending  = "PENDING"
	VerificationApproved = "APPROVED"
	VerificationRejected = "REJECTED"
)

// MaxActiveActivitiesPerUser caps how many simultaneously active
// activities a single author may own.
const MaxActiveActivitiesPerUser = 5

// MinReviewNoteLength is the shortest note an admin may attach when
// rejecting a verification request.
const MinReviewNoteLength = 5

// ===============================
// CORE ENTITIES
// ===============================

// User represents a student (or admin) account keyed by roll number
type User struct {
	ID         int64  `json:"id" db:"id"`
	RollNumber string `json:"roll_number" db:"roll_number" validate:"required,rollnumber"`
	Name       string `json:"name" db:"name" validate:"required,min=2,max=100"`

	// Authentication
	PasswordHash string `json:"-" db:"password_hash"`

	// Profile
	Email         *string `json:"email,omitempty" db:"email" validate:"omitempty,email,max=320"`
	ProfilePicURL *string `json:"profile_pic_url,omitempty" db:"profile_pic_url"`

	// Privileges
	IsVerified bool `json:"is_verified" db:"is_verified"`
	IsAdmin    bool `json:"is_admin" db:"is_admin"`

	// Timestamps
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	// Joined fields (not in DB)
	VerificationRequest *VerificationRequest `json:"verification_request,omitempty" db:"-"`
	ActiveActivities    int                  `json:"active_activities,omitempty" db:"-"`
}

// Author is the public projection of a user embedded in activity,
// comment and report payloads.
type Author struct {
	ID         int64  `json:"id" db:"id"`
	Name       string `json:"name" db:"name"`
	RollNumber string `json:"roll_number" db:"roll_number"`
	IsVerified bool   `json:"is_verified" db:"is_verified"`
}

/// Activity represents a postable item: an open event, an ongoing
// community, or a college-funded proposal.
type Activity struct {
	// Core fields
	ID          int64  `json:"id" db:"id"`
	AuthorID    int64  `json:"author_id" db:"author_id" validate:"required"`
	Title       string `json:"title" db:"title" validate:"required,min=5,max=120"`
	Description string `json:"description" db:"description" validate:"required,min=15,max=2000"`
	Type        string `json:"type" db:"type" validate:"required,oneof=OPEN COMMUNITY COLLEGE_FUNDED"`
	Genre       string `json:"genre" db:"genre" validate:"required,oneof=TECH ART MUSIC DANCE SPORTS OTHER"`
	Frequency   string `json:"frequency" db:"frequency" validate:"required,oneof=ONE_OFF WEEKLY FORTNIGHTLY MONTHLY ON_DEMAND"`

	// Scheduling
	Location  *string    `json:"location,omitempty" db:"location"`
	StartDate *time.Time `json:"start_date,omitempty" db:"start_date"`
	EndDate   *time.Time `json:"end_date,omitempty" db:"end_date"`
	Capacity  *int       `json:"capacity,omitempty" db:"capacity" validate:"omitempty,min=1"`

	// Lifecycle. COLLEGE_FUNDED activities start inactive and are
	// activated by an admin; everything else starts active.
	IsActive bool `json:"is_active" db:"is_active"`

	// Type-specific payloads, keyed by Type
	FundingGoal     *int64           `json:"funding_goal,omitempty" db:"funding_goal"`
	TemplatesUsed   *TemplatesUsed   `json:"templates_used,omitempty" db:"templates_used"`
	ApplicationForm *ApplicationForm `json:"application_form,omitempty" db:"application_form"`

	// Timestamps
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	// Derived counters, always computed from related rows
	LikeCount    int `json:"like_count" db:"like_count"`
	CommentCount int `json:"comment_count" db:"comment_count"`
	JoinedCount  int `json:"joined_count" db:"joined_count"`

	// Author information (joined)
	Author Author `json:"author" db:"-"`

	// User-specific fields (require user context)
	IsOwner   bool `json:"is_owner" db:"-"`
	HasLiked  bool `json:"has_liked" db:"-"`
	HasJoined bool `json:"has_joined" db:"-"`
}

// TemplatesUsed carries the template payload for OPEN and COMMUNITY
// activities. Exactly one variant is populated, matching Activity.Type.
type TemplatesUsed struct {
	Open      *OpenTemplate      `json:"open,omitempty"`
	Community *CommunityTemplate `json:"community,omitempty"`
}

// OpenTemplate holds the extra fields of an OPEN activity
type OpenTemplate struct {
	MeetingPointDetails     *string `json:"meeting_point_details,omitempty"`
	ExpectedDurationMinutes *int    `json:"expected_duration_minutes,omitempty"`
}

// CommunityTemplate holds the extra fields of a COMMUNITY activity
type CommunityTemplate struct {
	CommunityName    string     `json:"community_name"`
	Goals            string     `json:"goals"`
	MeetingFrequency string     `json:"meeting_frequency"`
	FirstMeetDate    *time.Time `json:"first_meet_date,omitempty"`
	CoOrganisers     []string   `json:"co_organisers,omitempty"`
	Visibility       *string    `json:"visibility,omitempty"`
}

// ApplicationForm holds the funding proposal attached to a
// COLLEGE_FUNDED activity.
type ApplicationForm struct {
	BudgetBreakdown       []BudgetItem           `json:"budget_breakdown,omitempty"`
	VenueRequirement      *string                `json:"venue_requirement,omitempty"`
	ExpectedAttendees     *int                   `json:"expected_attendees,omitempty"`
	SafetyPlan            *string                `json:"safety_plan,omitempty"`
	ProposedDates         []string               `json:"proposed_dates,omitempty"`
	RepresentativeContact *RepresentativeContact `json:"representative_contact,omitempty"`
}

// BudgetItem is a single line of a funding budget breakdown
type BudgetItem struct {
	Item string `json:"item"`
	Cost *int64 `json:"cost,omitempty"`
}

// RepresentativeContact identifies the student representative on a
// funding proposal.
type RepresentativeContact struct {
	Name       string `json:"name,omitempty"`
	RollNumber string `json:"roll_number,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Email      string `json:"email,omitempty"`
}

// Comment represents a comment on an activity
type Comment struct {
	ID         int64     `json:"id" db:"id"`
	UserID     int64     `json:"user_id" db:"user_id" validate:"required"`
	ActivityID int64     `json:"activity_id" db:"activity_id" validate:"required"`
	Text       string    `json:"text" db:"text" validate:"required,min=1,max=1000"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`

	// Author information (joined)
	Author Author `json:"author" db:"-"`
}

// Like marks that a user liked an activity. Presence of the row means
// "liked"; toggling deletes or re-creates it.
type Like struct {
	ID         int64     `json:"id" db:"id"`
	UserID     int64     `json:"user_id" db:"user_id" validate:"required"`
	ActivityID int64     `json:"activity_id" db:"activity_id" validate:"required"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// JoinRequest represents a user's membership in an activity. The
// (user, activity) pair is unique at the store level.
type JoinRequest struct {
	ID         int64     `json:"id" db:"id"`
	UserID     int64     `json:"user_id" db:"user_id" validate:"required"`
	ActivityID int64     `json:"activity_id" db:"activity_id" validate:"required"`
	Status     string    `json:"status" db:"status" validate:"oneof=CONFIRMED PENDING"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`

	// Joined fields
	Participant *Author `json:"participant,omitempty" db:"-"`
}

// Report represents a user flagging an activity for admin review
type Report struct {
	ID         int64     `json:"id" db:"id"`
	ReporterID int64     `json:"reporter_id" db:"reporter_id" validate:"required"`
	ActivityID int64     `json:"activity_id" db:"activity_id" validate:"required"`
	Reason     string    `json:"reason" db:"reason" validate:"required,min=10,max=300"`
	Status     string    `json:"status" db:"status" validate:"oneof=OPEN RESOLVED DISMISSED"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`

	// Joined fields
	Reporter      Author  `json:"reporter" db:"-"`
	ActivityTitle string  `json:"activity_title,omitempty" db:"-"`
	ActivityType  string  `json:"activity_type,omitempty" db:"-"`
	ActivityOwner *Author `json:"activity_owner,omitempty" db:"-"`
}

// VerificationRequest tracks a user's ID-verification ask. Each user
// owns at most one; a rejected request is reset to PENDING when the
// user asks again.
type VerificationRequest struct {
	ID         int64     `json:"id" db:"id"`
	UserID     int64     `json:"user_id" db:"user_id" validate:"required"`
	IDImageURL *string   `json:"id_image_url,omitempty" db:"id_image_url"`
	Status     string    `json:"status" db:"status" validate:"oneof=PENDING APPROVED REJECTED"`
	AdminID    *int64    `json:"admin_id,omitempty" db:"admin_id"`
	Note       *string   `json:"note,omitempty" db:"note"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`

	// Joined fields
	User *User `json:"user,omitempty" db:"-"`
}

// ===============================
// PAGINATION & QUERY HELPERS
// ===============================

// PaginationParams represents pagination parameters
type PaginationParams struct {
	Limit  int    `json:"limit" validate:"min=1,max=100"`
	Offset int    `json:"offset" validate:"min=0"`
	Sort   string `json:"sort,omitempty" validate:"omitempty,oneof=newest likes"`
}

// Feed sort orders
const (
	SortByNewest = "newest"
	SortByLikes  = "likes"
)

// ActivityFilter represents the feed filter parameters
type ActivityFilter struct {
	Query     string `json:"q,omitempty"`
	Genre     string `json:"genre,omitempty"`
	Type      string `json:"type,omitempty"`
	Frequency string `json:"frequency,omitempty"`
}

// PaginatedResponse represents a paginated API response
type PaginatedResponse[T any] struct {
	Data       []T            `json:"data"`
	Pagination PaginationMeta `json:"pagination"`
}

// PaginationMeta contains pagination metadata
type PaginationMeta struct {
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
	TotalItems int64 `json:"total_items"`
	HasNext    bool  `json:"has_next"`
}

// NewPaginationMeta derives pagination metadata from the request
// parameters and the total row count.
func NewPaginationMeta(params PaginationParams, total int64) PaginationMeta {
	return PaginationMeta{
		Limit:      params.Limit,
		Offset:     params.Offset,
		TotalItems: total,
		HasNext:    int64(params.Offset+params.Limit) < total,
	}
}

// ===============================
// CUSTOM TYPES
// ===============================

// Scan implements sql.Scanner for the JSONB templates column
func (t *TemplatesUsed) Scan(value interface{}) error {
	return scanJSON(value, t)
}

// Value implements driver.Valuer
func (t TemplatesUsed) Value() (driver.Value, error) {
	return json.Marshal(t)
}

// Scan implements sql.Scanner for the JSONB application form column
func (a *ApplicationForm) Scan(value interface{}) error {
	return scanJSON(value, a)
}

// Value implements driver.Valuer
func (a ApplicationForm) Value() (driver.Value, error) {
	return json.Marshal(a)
}

func scanJSON(value, dest interface{}) error {
	if value == nil {
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, dest)
	case string:
		return json.Unmarshal([]byte(v), dest)
	default:
		return fmt.Errorf("cannot scan %T into %T", value, dest)
	}
}

// ===============================
// HELPER METHODS
// ===============================

// IsOwnedBy checks if the user owns the activity
func (a *Activity) IsOwnedBy(userID int64) bool {
	return a.AuthorID == userID
}

// IsFull reports whether the activity's confirmed joins have reached
// its capacity. Activities without a capacity are never full.
func (a *Activity) IsFull() bool {
	return a.Capacity != nil && a.JoinedCount >= *a.Capacity
}

// NeedsApproval reports whether this activity type starts inactive
// pending an admin decision.
func (a *Activity) NeedsApproval() bool {
	return a.Type == TypeCollegeFunded
}

// IsOwnedBy checks if the user owns the comment
func (c *Comment) IsOwnedBy(userID int64) bool {
	return c.UserID == userID
}

// IsPending reports whether a verification request is still awaiting
// an admin decision.
func (v *VerificationRequest) IsPending() bool {
	return v.Status == VerificationPending
}

// PublicProfile returns the author projection for a user
func (u *User) PublicProfile() Author {
	return Author{
		ID:         u.ID,
		Name:       u.Name,
		RollNumber: u.RollNumber,
		IsVerified: u.IsVerified,
	}
}

// ===============================
// VALIDATION HELPERS
// ===============================

// rollNumberRegex matches institutional roll numbers such as CS2023/014
var rollNumberRegex = regexp.MustCompile(`^[A-Z]{2}\d{4}/\d{3}$`)

// ValidateRollNumber validates the roll number contract shared by
// signup, login and verification.
func ValidateRollNumber(rollNumber string) bool {
	return rollNumberRegex.MatchString(rollNumber)
}

// ValidateActivityType validates the activity type enum
func ValidateActivityType(t string) bool {
	switch t {
	case TypeOpen, TypeCommunity, TypeCollegeFunded:
		return true
	}
	return false
}

// ValidateGenre validates the genre enum
func ValidateGenre(g string) bool {
	switch g {
	case GenreTech, GenreArt, GenreMusic, GenreDance, GenreSports, GenreOther:
		return true
	}
	return false
}

// ValidateFrequency validates the frequency enum
func ValidateFrequency(f string) bool {
	switch f {
	case FrequencyOneOff, FrequencyWeekly, FrequencyFortnightly, FrequencyMonthly, FrequencyOnDemand:
		return true
	}
	return false
}

// ValidateMeetingFrequency validates the community meeting frequency enum
func ValidateMeetingFrequency(f string) bool {
	switch f {
	case FrequencyWeekly, FrequencyMonthly, FrequencyOnDemand:
		return true
	}
	return false
}

// ===============================
// SANITIZATION
// ===============================

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#x27;",
)

// Sanitize escapes markup-significant characters in free text before
// it is persisted.
func Sanitize(text string) string {
	return htmlEscaper.Replace(text)
}

// SanitizePtr sanitizes an optional string and returns the result
func SanitizePtr(text *string) *string {
	if text == nil {
		return nil
	}
	s := Sanitize(*text)
	return &s
}
