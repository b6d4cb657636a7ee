// file: internal/services/mocks_test.go
package services

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"

	"campusboard/internal/models"
	"campusboard/internal/repositories"
)

// In-memory repository fakes used across the service tests. Each fake
// keeps just enough state for the behaviors under test and exposes err
// fields for failure injection.

// ===============================
// USER REPOSITORY FAKE
// ===============================

type fakeUserRepo struct {
	mu     sync.Mutex
	users  map[int64]*models.User
	nextID int64
	err    error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int64]*models.User), nextID: 1}
}

func (r *fakeUserRepo) add(user *models.User) *models.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.ID == 0 {
		user.ID = r.nextID
		r.nextID++
	} else if user.ID >= r.nextID {
		r.nextID = user.ID + 1
	}
	r.users[user.ID] = user
	return user
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	if r.err != nil {
		return r.err
	}
	r.mu.Lock()
	for _, u := range r.users {
		if u.RollNumber == user.RollNumber {
			r.mu.Unlock()
			return fmt.Errorf("duplicate key value violates unique constraint")
		}
	}
	r.mu.Unlock()
	r.add(user)
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.users[id], nil
}

func (r *fakeUserRepo) GetByRollNumber(ctx context.Context, rollNumber string) (*models.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.RollNumber == rollNumber {
			return u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) UpdatePasswordHash(ctx context.Context, userID int64, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[userID]; ok {
		u.PasswordHash = hash
		return nil
	}
	return fmt.Errorf("user %d not found", userID)
}

func (r *fakeUserRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) GetProfile(ctx context.Context, id int64) (*models.User, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeUserRepo) CountActiveActivities(ctx context.Context, userID int64) (int, error) {
	return 0, nil
}

func (r *fakeUserRepo) List(ctx context.Context, params models.PaginationParams) (*models.PaginatedResponse[*models.User], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	users := make([]*models.User, 0, len(r.users))
	for _, u := range r.users {
		users = append(users, u)
	}
	return &models.PaginatedResponse[*models.User]{
		Data:       users,
		Pagination: models.NewPaginationMeta(params, int64(len(users))),
	}, nil
}

// ===============================
// ACTIVITY REPOSITORY FAKE
// ===============================

type fakeActivityRepo struct {
	mu          sync.Mutex
	activities  map[int64]*models.Activity
	nextID      int64
	activeCount int
	err         error
}

func newFakeActivityRepo() *fakeActivityRepo {
	return &fakeActivityRepo{activities: make(map[int64]*models.Activity), nextID: 1}
}

func (r *fakeActivityRepo) add(a *models.Activity) *models.Activity {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a.ID == 0 {
		a.ID = r.nextID
		r.nextID++
	} else if a.ID >= r.nextID {
		r.nextID = a.ID + 1
	}
	r.activities[a.ID] = a
	return a
}

func (r *fakeActivityRepo) Create(ctx context.Context, activity *models.Activity) error {
	if r.err != nil {
		return r.err
	}
	r.add(activity)
	return nil
}

func (r *fakeActivityRepo) GetByID(ctx context.Context, id int64, viewerID *int64) (*models.Activity, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.activities[id]
	if !ok {
		return nil, nil
	}
	copy := *a
	if viewerID != nil {
		copy.IsOwner = copy.AuthorID == *viewerID
	}
	return &copy, nil
}

func (r *fakeActivityRepo) Update(ctx context.Context, activity *models.Activity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.activities[activity.ID] = activity
	return nil
}

func (r *fakeActivityRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.activities[id]; !ok {
		return fmt.Errorf("activity %d not found", id)
	}
	delete(r.activities, id)
	return nil
}

func (r *fakeActivityRepo) List(ctx context.Context, filter models.ActivityFilter, params models.PaginationParams, viewerID *int64) (*models.PaginatedResponse[*models.Activity], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	activities := make([]*models.Activity, 0)
	for _, a := range r.activities {
		if a.IsActive {
			activities = append(activities, a)
		}
	}
	return &models.PaginatedResponse[*models.Activity]{
		Data:       activities,
		Pagination: models.NewPaginationMeta(params, int64(len(activities))),
	}, nil
}

func (r *fakeActivityRepo) GetByAuthorID(ctx context.Context, authorID int64, params models.PaginationParams, viewerID *int64) (*models.PaginatedResponse[*models.Activity], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ownerView := viewerID != nil && *viewerID == authorID
	activities := make([]*models.Activity, 0)
	for _, a := range r.activities {
		if a.AuthorID == authorID && (ownerView || a.IsActive) {
			activities = append(activities, a)
		}
	}
	sort.Slice(activities, func(i, j int) bool { return activities[i].ID < activities[j].ID })
	total := int64(len(activities))
	if params.Offset < len(activities) {
		activities = activities[params.Offset:]
	} else {
		activities = nil
	}
	if params.Limit > 0 && params.Limit < len(activities) {
		activities = activities[:params.Limit]
	}
	return &models.PaginatedResponse[*models.Activity]{
		Data:       activities,
		Pagination: models.NewPaginationMeta(params, total),
	}, nil
}

func (r *fakeActivityRepo) GetPendingFunded(ctx context.Context, params models.PaginationParams) (*models.PaginatedResponse[*models.Activity], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	activities := make([]*models.Activity, 0)
	for _, a := range r.activities {
		if a.Type == models.TypeCollegeFunded && !a.IsActive {
			activities = append(activities, a)
		}
	}
	return &models.PaginatedResponse[*models.Activity]{
		Data:       activities,
		Pagination: models.NewPaginationMeta(params, int64(len(activities))),
	}, nil
}

func (r *fakeActivityRepo) SetActive(ctx context.Context, activityID int64, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.activities[activityID]
	if !ok {
		return fmt.Errorf("activity %d not found", activityID)
	}
	a.IsActive = active
	return nil
}

func (r *fakeActivityRepo) CountActiveByAuthor(ctx context.Context, authorID int64) (int, error) {
	if r.activeCount > 0 {
		return r.activeCount, nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, a := range r.activities {
		if a.AuthorID == authorID && a.IsActive {
			count++
		}
	}
	return count, nil
}

// ===============================
// COMMENT REPOSITORY FAKE
// ===============================

type fakeCommentRepo struct {
	mu       sync.Mutex
	comments map[int64]*models.Comment
	nextID   int64
}

func newFakeCommentRepo() *fakeCommentRepo {
	return &fakeCommentRepo{comments: make(map[int64]*models.Comment), nextID: 1}
}

func (r *fakeCommentRepo) Create(ctx context.Context, comment *models.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	comment.ID = r.nextID
	r.nextID++
	r.comments[comment.ID] = comment
	return nil
}

func (r *fakeCommentRepo) GetByID(ctx context.Context, id int64) (*models.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.comments[id], nil
}

func (r *fakeCommentRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.comments[id]; !ok {
		return fmt.Errorf("comment %d not found", id)
	}
	delete(r.comments, id)
	return nil
}

func (r *fakeCommentRepo) GetByActivityID(ctx context.Context, activityID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Comment], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	comments := make([]*models.Comment, 0)
	for _, c := range r.comments {
		if c.ActivityID == activityID {
			comments = append(comments, c)
		}
	}
	return &models.PaginatedResponse[*models.Comment]{
		Data:       comments,
		Pagination: models.NewPaginationMeta(params, int64(len(comments))),
	}, nil
}

func (r *fakeCommentRepo) CountByActivityID(ctx context.Context, activityID int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, c := range r.comments {
		if c.ActivityID == activityID {
			count++
		}
	}
	return count, nil
}

// ===============================
// LIKE REPOSITORY FAKE
// ===============================

type fakeLikeRepo struct {
	mu    sync.Mutex
	likes map[string]bool
}

func newFakeLikeRepo() *fakeLikeRepo {
	return &fakeLikeRepo{likes: make(map[string]bool)}
}

func likeKey(userID, activityID int64) string {
	return fmt.Sprintf("%d:%d", userID, activityID)
}

func (r *fakeLikeRepo) Toggle(ctx context.Context, userID, activityID int64) (bool, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := likeKey(userID, activityID)
	liked := !r.likes[key]
	if liked {
		r.likes[key] = true
	} else {
		delete(r.likes, key)
	}
	count := 0
	suffix := fmt.Sprintf(":%d", activityID)
	for k := range r.likes {
		if len(k) > len(suffix) && k[len(k)-len(suffix):] == suffix {
			count++
		}
	}
	return liked, count, nil
}

func (r *fakeLikeRepo) HasLiked(ctx context.Context, userID, activityID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.likes[likeKey(userID, activityID)], nil
}

func (r *fakeLikeRepo) CountByActivityID(ctx context.Context, activityID int64) (int, error) {
	return 0, nil
}

// ===============================
// JOIN REQUEST REPOSITORY FAKE
// ===============================

type fakeJoinRepo struct {
	mu      sync.Mutex
	joins   map[string]*models.JoinRequest
	nextID  int64
	joinErr error
}

func newFakeJoinRepo() *fakeJoinRepo {
	return &fakeJoinRepo{joins: make(map[string]*models.JoinRequest), nextID: 1}
}

func (r *fakeJoinRepo) Join(ctx context.Context, userID, activityID int64) (*models.JoinRequest, error) {
	if r.joinErr != nil {
		return nil, r.joinErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	key := likeKey(userID, activityID)
	if _, ok := r.joins[key]; ok {
		return nil, repositories.ErrAlreadyJoined
	}
	request := &models.JoinRequest{
		ID:         r.nextID,
		UserID:     userID,
		ActivityID: activityID,
		Status:     models.JoinStatusConfirmed,
	}
	r.nextID++
	r.joins[key] = request
	return request, nil
}

func (r *fakeJoinRepo) Leave(ctx context.Context, userID, activityID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := likeKey(userID, activityID)
	if _, ok := r.joins[key]; !ok {
		return sql.ErrNoRows
	}
	delete(r.joins, key)
	return nil
}

func (r *fakeJoinRepo) HasJoined(ctx context.Context, userID, activityID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.joins[likeKey(userID, activityID)]
	return ok, nil
}

func (r *fakeJoinRepo) GetByActivityID(ctx context.Context, activityID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.JoinRequest], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	requests := make([]*models.JoinRequest, 0)
	for _, j := range r.joins {
		if j.ActivityID == activityID {
			requests = append(requests, j)
		}
	}
	return &models.PaginatedResponse[*models.JoinRequest]{
		Data:       requests,
		Pagination: models.NewPaginationMeta(params, int64(len(requests))),
	}, nil
}

func (r *fakeJoinRepo) GetByUserID(ctx context.Context, userID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.JoinRequest], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	requests := make([]*models.JoinRequest, 0)
	for _, j := range r.joins {
		if j.UserID == userID {
			requests = append(requests, j)
		}
	}
	return &models.PaginatedResponse[*models.JoinRequest]{
		Data:       requests,
		Pagination: models.NewPaginationMeta(params, int64(len(requests))),
	}, nil
}

func (r *fakeJoinRepo) CountByActivityID(ctx context.Context, activityID int64) (int, error) {
	return 0, nil
}

// ===============================
// REPORT REPOSITORY FAKE
// ===============================

type fakeReportRepo struct {
	mu      sync.Mutex
	reports map[int64]*models.Report
	nextID  int64
}

func newFakeReportRepo() *fakeReportRepo {
	return &fakeReportRepo{reports: make(map[int64]*models.Report), nextID: 1}
}

func (r *fakeReportRepo) Create(ctx context.Context, report *models.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.reports {
		if existing.ReporterID == report.ReporterID && existing.ActivityID == report.ActivityID {
			return repositories.ErrAlreadyReported
		}
	}
	report.ID = r.nextID
	r.nextID++
	r.reports[report.ID] = report
	return nil
}

func (r *fakeReportRepo) GetByID(ctx context.Context, id int64) (*models.Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.reports[id], nil
}

func (r *fakeReportRepo) HasReported(ctx context.Context, reporterID, activityID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, report := range r.reports {
		if report.ReporterID == reporterID && report.ActivityID == activityID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeReportRepo) List(ctx context.Context, status *string, params models.PaginationParams) (*models.PaginatedResponse[*models.Report], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	reports := make([]*models.Report, 0)
	for _, report := range r.reports {
		if status == nil || report.Status == *status {
			reports = append(reports, report)
		}
	}
	return &models.PaginatedResponse[*models.Report]{
		Data:       reports,
		Pagination: models.NewPaginationMeta(params, int64(len(reports))),
	}, nil
}

func (r *fakeReportRepo) UpdateStatus(ctx context.Context, reportID int64, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	report, ok := r.reports[reportID]
	if !ok {
		return fmt.Errorf("report %d not found", reportID)
	}
	report.Status = status
	return nil
}

// ===============================
// VERIFICATION REPOSITORY FAKE
// ===============================

type fakeVerificationRepo struct {
	mu       sync.Mutex
	requests map[int64]*models.VerificationRequest
	users    *fakeUserRepo
	nextID   int64
}

func newFakeVerificationRepo(users *fakeUserRepo) *fakeVerificationRepo {
	return &fakeVerificationRepo{
		requests: make(map[int64]*models.VerificationRequest),
		users:    users,
		nextID:   1,
	}
}

func (r *fakeVerificationRepo) Upsert(ctx context.Context, request *models.VerificationRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.requests {
		if existing.UserID == request.UserID {
			if existing.Status != models.VerificationRejected {
				return repositories.ErrRequestNotPending
			}
			existing.Status = models.VerificationPending
			existing.IDImageURL = request.IDImageURL
			existing.AdminID = nil
			existing.Note = nil
			*request = *existing
			return nil
		}
	}
	request.ID = r.nextID
	request.Status = models.VerificationPending
	r.nextID++
	r.requests[request.ID] = request
	return nil
}

func (r *fakeVerificationRepo) GetByUserID(ctx context.Context, userID int64) (*models.VerificationRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, req := range r.requests {
		if req.UserID == userID {
			return req, nil
		}
	}
	return nil, nil
}

func (r *fakeVerificationRepo) GetByID(ctx context.Context, id int64) (*models.VerificationRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.requests[id], nil
}

func (r *fakeVerificationRepo) Review(ctx context.Context, requestID, adminID int64, status, note string) (*models.VerificationRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[requestID]
	if !ok {
		return nil, repositories.ErrRequestNotFound
	}
	if req.Status != models.VerificationPending {
		return nil, repositories.ErrRequestNotPending
	}
	req.Status = status
	req.AdminID = &adminID
	req.Note = &note
	if r.users != nil {
		if user := r.users.users[req.UserID]; user != nil {
			user.IsVerified = status == models.VerificationApproved
		}
	}
	return req, nil
}

func (r *fakeVerificationRepo) List(ctx context.Context, status *string, params models.PaginationParams) (*models.PaginatedResponse[*models.VerificationRequest], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	requests := make([]*models.VerificationRequest, 0)
	for _, req := range r.requests {
		if status == nil || req.Status == *status {
			requests = append(requests, req)
		}
	}
	return &models.PaginatedResponse[*models.VerificationRequest]{
		Data:       requests,
		Pagination: models.NewPaginationMeta(params, int64(len(requests))),
	}, nil
}
