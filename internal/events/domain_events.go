package events

// Domain events for the activity board. Handlers subscribe by type
// (e.g. "activity.created") or pattern (e.g. "activity.*").

// ===============================
// USER EVENTS
// ===============================

// UserRegisteredEvent is emitted when a new account is created
type UserRegisteredEvent struct {
	BaseEvent
	RollNumber string `json:"roll_number"`
}

// NewUserRegisteredEvent creates a new user registered event
func NewUserRegisteredEvent(userID int64, rollNumber string) *UserRegisteredEvent {
	return &UserRegisteredEvent{
		BaseEvent:  newBase("user.registered", &userID),
		RollNumber: rollNumber,
	}
}

// UserLoggedInEvent is emitted on successful login
type UserLoggedInEvent struct {
	BaseEvent
}

// NewUserLoggedInEvent creates a new login event
func NewUserLoggedInEvent(userID int64) *UserLoggedInEvent {
	return &UserLoggedInEvent{
		BaseEvent: newBase("user.logged_in", &userID),
	}
}

// ===============================
// VERIFICATION EVENTS
// ===============================

// VerificationRequestedEvent is emitted when a user asks to be verified
type VerificationRequestedEvent struct {
	BaseEvent
	RequestID int64 `json:"request_id"`
}

// NewVerificationRequestedEvent creates a new verification requested event
func NewVerificationRequestedEvent(requestID, userID int64) *VerificationRequestedEvent {
	return &VerificationRequestedEvent{
		BaseEvent: newBase("verification.requested", &userID),
		RequestID: requestID,
	}
}

// VerificationReviewedEvent is emitted when an admin decides a request
type VerificationReviewedEvent struct {
	BaseEvent
	RequestID int64  `json:"request_id"`
	AdminID   int64  `json:"admin_id"`
	Status    string `json:"status"`
}

// NewVerificationReviewedEvent creates a new verification reviewed event
func NewVerificationReviewedEvent(requestID, userID, adminID int64, status string) *VerificationReviewedEvent {
	return &VerificationReviewedEvent{
		BaseEvent: newBase("verification.reviewed", &userID),
		RequestID: requestID,
		AdminID:   adminID,
		Status:    status,
	}
}

// ===============================
// ACTIVITY EVENTS
// ===============================

// ActivityCreatedEvent is emitted when an activity is posted
type ActivityCreatedEvent struct {
	BaseEvent
	ActivityID      int64  `json:"activity_id"`
	ActivityType    string `json:"activity_type"`
	Genre           string `json:"genre"`
	PendingApproval bool   `json:"pending_approval"`
}

// NewActivityCreatedEvent creates a new activity created event
func NewActivityCreatedEvent(activityID, authorID int64, activityType, genre string, pendingApproval bool) *ActivityCreatedEvent {
	return &ActivityCreatedEvent{
		BaseEvent:       newBase("activity.created", &authorID),
		ActivityID:      activityID,
		ActivityType:    activityType,
		Genre:           genre,
		PendingApproval: pendingApproval,
	}
}

// ActivityApprovedEvent is emitted when an admin activates a funding activity
type ActivityApprovedEvent struct {
	BaseEvent
	ActivityID int64 `json:"activity_id"`
	AdminID    int64 `json:"admin_id"`
}

// NewActivityApprovedEvent creates a new activity approved event
func NewActivityApprovedEvent(activityID, authorID, adminID int64) *ActivityApprovedEvent {
	return &ActivityApprovedEvent{
		BaseEvent:  newBase("activity.approved", &authorID),
		ActivityID: activityID,
		AdminID:    adminID,
	}
}

// ActivityDeletedEvent is emitted when an activity is removed
type ActivityDeletedEvent struct {
	BaseEvent
	ActivityID int64 `json:"activity_id"`
}

// NewActivityDeletedEvent creates a new activity deleted event
func NewActivityDeletedEvent(activityID, actorID int64) *ActivityDeletedEvent {
	return &ActivityDeletedEvent{
		BaseEvent:  newBase("activity.deleted", &actorID),
		ActivityID: activityID,
	}
}

// ActivityLikedEvent is emitted on every like toggle
type ActivityLikedEvent struct {
	BaseEvent
	ActivityID int64 `json:"activity_id"`
	Liked      bool  `json:"liked"`
}

// NewActivityLikedEvent creates a new activity liked event
func NewActivityLikedEvent(activityID, userID int64, liked bool) *ActivityLikedEvent {
	return &ActivityLikedEvent{
		BaseEvent:  newBase("activity.liked", &userID),
		ActivityID: activityID,
		Liked:      liked,
	}
}

// ActivityJoinedEvent is emitted when a user joins an activity
type ActivityJoinedEvent struct {
	BaseEvent
	ActivityID int64 `json:"activity_id"`
}

// NewActivityJoinedEvent creates a new activity joined event
func NewActivityJoinedEvent(activityID, userID int64) *ActivityJoinedEvent {
	return &ActivityJoinedEvent{
		BaseEvent:  newBase("activity.joined", &userID),
		ActivityID: activityID,
	}
}

// ActivityReportedEvent is emitted when a user flags an activity
type ActivityReportedEvent struct {
	BaseEvent
	ActivityID int64 `json:"activity_id"`
	ReportID   int64 `json:"report_id"`
}

// NewActivityReportedEvent creates a new activity reported event
func NewActivityReportedEvent(activityID, reportID, reporterID int64) *ActivityReportedEvent {
	return &ActivityReportedEvent{
		BaseEvent:  newBase("activity.reported", &reporterID),
		ActivityID: activityID,
		ReportID:   reportID,
	}
}

// ===============================
// COMMENT EVENTS
// ===============================

// CommentCreatedEvent is emitted when a comment is posted
type CommentCreatedEvent struct {
	BaseEvent
	CommentID  int64 `json:"comment_id"`
	ActivityID int64 `json:"activity_id"`
}

// NewCommentCreatedEvent creates a new comment created event
func NewCommentCreatedEvent(commentID, activityID, userID int64) *CommentCreatedEvent {
	return &CommentCreatedEvent{
		BaseEvent:  newBase("comment.created", &userID),
		CommentID:  commentID,
		ActivityID: activityID,
	}
}

// ===============================
// FILE EVENTS
// ===============================

// FileUploadedEvent is emitted when a file is stored successfully
type FileUploadedEvent struct {
	BaseEvent
	FileType string `json:"file_type"`
	FileSize int64  `json:"file_size"`
	URL      string `json:"url"`
	PublicID string `json:"public_id"`
}

// NewFileUploadedEvent creates a new file uploaded event
func NewFileUploadedEvent(fileType string, fileSize int64, url, publicID string, userID *int64) *FileUploadedEvent {
	return &FileUploadedEvent{
		BaseEvent: newBase("file.uploaded", userID),
		FileType:  fileType,
		FileSize:  fileSize,
		URL:       url,
		PublicID:  publicID,
	}
}
