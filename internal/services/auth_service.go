// file: internal/services/auth_service.go
package services

import (
	"context"
	"fmt"
	"time"

	"campusboard/internal/config"
	"campusboard/internal/events"
	"campusboard/internal/models"
	"campusboard/internal/repositories"
	"campusboard/internal/validation"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// authService implements AuthService
type authService struct {
	userRepo repositories.UserRepository
	events   events.EventBus
	logger   *zap.Logger
	cfg      *config.AuthConfig
}

// NewAuthService creates a new authentication service
func NewAuthService(
	userRepo repositories.UserRepository,
	eventBus events.EventBus,
	logger *zap.Logger,
	cfg *config.AuthConfig,
) AuthService {
	return &authService{
		userRepo: userRepo,
		events:   eventBus,
		logger:   logger,
		cfg:      cfg,
	}
}

// ===============================
// AUTHENTICATION
// ===============================

// Register creates a new account keyed by roll number
func (s *authService) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	req.RollNumber = models.NormalizeRollNumber(req.RollNumber)

	if violations := validation.CollectViolations(req); violations != nil {
		return nil, violationError("registration failed validation", violations)
	}

	// Escape only after the raw input has passed its length bounds.
	req.Name = models.Sanitize(req.Name)

	existing, err := s.userRepo.GetByRollNumber(ctx, req.RollNumber)
	if err != nil {
		return nil, NewInternalError("failed to check existing user")
	}
	if existing != nil {
		return nil, NewConflictError("an account with this roll number already exists", "ROLL_NUMBER_TAKEN")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cfg.BCryptCost)
	if err != nil {
		s.logger.Error("Failed to hash password", zap.Error(err))
		return nil, NewInternalError("failed to process password")
	}

	user := &models.User{
		RollNumber:   req.RollNumber,
		Name:         req.Name,
		PasswordHash: string(hash),
		Email:        req.Email,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if repositories.IsUniqueViolation(err, "") {
			return nil, NewConflictError("an account with this roll number already exists", "ROLL_NUMBER_TAKEN")
		}
		return nil, NewInternalError("failed to create account")
	}

	if pubErr := s.events.PublishAsync(ctx, events.NewUserRegisteredEvent(user.ID, user.RollNumber)); pubErr != nil {
		s.logger.Warn("Failed to publish registration event", zap.Error(pubErr))
	}

	s.logger.Info("User registered",
		zap.Int64("user_id", user.ID),
		zap.String("roll_number", user.RollNumber),
	)

	return s.issueToken(user)
}

// Login authenticates by roll number and password
func (s *authService) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	req.RollNumber = models.NormalizeRollNumber(req.RollNumber)

	if violations := validation.CollectViolations(req); violations != nil {
		return nil, violationError("login failed validation", violations)
	}

	user, err := s.userRepo.GetByRollNumber(ctx, req.RollNumber)
	if err != nil {
		return nil, NewInternalError("failed to look up account")
	}
	if user == nil {
		// Same error as a bad password so accounts can't be enumerated.
		return nil, NewUnauthorizedError("invalid roll number or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Warn("Failed login attempt",
			zap.String("roll_number", req.RollNumber),
		)
		return nil, NewUnauthorizedError("invalid roll number or password")
	}

	if pubErr := s.events.PublishAsync(ctx, events.NewUserLoggedInEvent(user.ID)); pubErr != nil {
		s.logger.Warn("Failed to publish login event", zap.Error(pubErr))
	}

	return s.issueToken(user)
}

// GetCurrentUser loads the authenticated user's account
func (s *authService) GetCurrentUser(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, NewInternalError("failed to load account")
	}
	if user == nil {
		return nil, NewUnauthorizedError("account no longer exists")
	}
	return user, nil
}

// ChangePassword rotates the user's password after verifying the
// current one.
func (s *authService) ChangePassword(ctx context.Context, req *ChangePasswordRequest) error {
	if violations := validation.CollectViolations(req); violations != nil {
		return violationError("password change failed validation", violations)
	}

	user, err := s.userRepo.GetByID(ctx, req.UserID)
	if err != nil {
		return NewInternalError("failed to load account")
	}
	if user == nil {
		return EntityNotFoundError("user", req.UserID)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return NewUnauthorizedError("current password is incorrect")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), s.cfg.BCryptCost)
	if err != nil {
		return NewInternalError("failed to process password")
	}

	if err := s.userRepo.UpdatePasswordHash(ctx, req.UserID, string(hash)); err != nil {
		return NewInternalError("failed to update password")
	}

	s.logger.Info("Password changed", zap.Int64("user_id", req.UserID))
	return nil
}

// ===============================
// TOKENS
// ===============================

// issueToken signs a JWT for the user
func (s *authService) issueToken(user *models.User) (*AuthResponse, error) {
	expiresAt := time.Now().Add(s.cfg.JWTExpiry)

	claims := &TokenClaims{
		UserID:     user.ID,
		RollNumber: user.RollNumber,
		IsAdmin:    user.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", user.ID),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		s.logger.Error("Failed to sign token", zap.Error(err))
		return nil, NewInternalError("failed to issue token")
	}

	return &AuthResponse{
		User:      user,
		Token:     signed,
		ExpiresAt: expiresAt,
	}, nil
}

// ValidateToken parses and verifies a JWT, returning its claims
func (s *authService) ValidateToken(ctx context.Context, tokenString string) (*TokenClaims, error) {
	claims := &TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, NewUnauthorizedError("invalid or expired token")
	}
	return claims, nil
}

// violationError converts field violations into a detailed validation error
func violationError(message string, violations []validation.FieldViolation) error {
	fields := make([]FieldError, 0, len(violations))
	for _, v := range violations {
		fields = append(fields, FieldError{
			Field:   v.Field,
			Value:   v.Value,
			Message: v.Message,
			Code:    v.Code,
		})
	}
	return NewDetailedValidationError(message, fields)
}
