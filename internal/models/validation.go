// file: internal/models/validation.go
package models

import (
	"fmt"
	"html"
	"strings"
	"time"
)

// ===============================
// VALIDATION ERRORS
// ===============================

// ValidationError represents a validation error
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Code    string      `json:"code"`
	Value   interface{} `json:"value,omitempty"`
}

// Error implements the error interface
func (e ValidationError) Error() string {
	return fmt.Sprintf("validation failed for field '%s': %s", e.Field, e.Message)
}

// ValidationErrors represents multiple validation errors
type ValidationErrors []ValidationError

// Error implements the error interface
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	if len(e) == 1 {
		return e[0].Error()
	}
	return fmt.Sprintf("validation failed with %d errors", len(e))
}

// Add adds a validation error
func (e *ValidationErrors) Add(field, message, code string, value interface{}) {
	*e = append(*e, ValidationError{
		Field:   field,
		Message: message,
		Code:    code,
		Value:   value,
	})
}

// HasErrors returns true if there are validation errors
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}

// GetField returns all errors for a specific field
func (e ValidationErrors) GetField(field string) []ValidationError {
	var fieldErrors []ValidationError
	for _, err := range e {
		if err.Field == field {
			fieldErrors = append(fieldErrors, err)
		}
	}
	return fieldErrors
}

// ===============================
// VALIDATOR INTERFACE
// ===============================

// Validator defines the validation interface
type Validator interface {
	Validate() ValidationErrors
}

// ===============================
// CORE VALIDATORS
// ===============================

// RollNumberValidator validates institutional roll numbers
func RollNumberValidator(field string, value string) *ValidationError {
	if value == "" {
		return &ValidationError{
			Field:   field,
			Message: "roll number is required",
			Code:    "required",
			Value:   value,
		}
	}

	if !ValidateRollNumber(value) {
		return &ValidationError{
			Field:   field,
			Message: "roll number must match the pattern AB1234/567",
			Code:    "invalid_format",
			Value:   value,
		}
	}

	return nil
}

// PasswordValidator validates passwords
func PasswordValidator(field string, value string) *ValidationError {
	if value == "" {
		return &ValidationError{
			Field:   field,
			Message: "password is required",
			Code:    "required",
		}
	}

	if len(value) < 8 {
		return &ValidationError{
			Field:   field,
			Message: "password must be at least 8 characters",
			Code:    "too_short",
		}
	}

	if len(value) > 128 {
		return &ValidationError{
			Field:   field,
			Message: "password must be 128 characters or less",
			Code:    "too_long",
		}
	}

	return nil
}

// ContentValidator validates free-text content fields
func ContentValidator(field string, value string, minLength, maxLength int) *ValidationError {
	if value == "" {
		return &ValidationError{
			Field:   field,
			Message: fmt.Sprintf("%s is required", field),
			Code:    "required",
			Value:   value,
		}
	}

	// Length bounds apply to the text as the user typed it. Values
	// arrive here both before and after Sanitize, so escaped entities
	// must count as the single character they encode.
	unescaped := html.UnescapeString(value)

	// Trim whitespace for the minimum-length check only
	trimmed := strings.TrimSpace(unescaped)
	if len(trimmed) < minLength {
		return &ValidationError{
			Field:   field,
			Message: fmt.Sprintf("%s must be at least %d characters", field, minLength),
			Code:    "too_short",
			Value:   value,
		}
	}

	if len(unescaped) > maxLength {
		return &ValidationError{
			Field:   field,
			Message: fmt.Sprintf("%s must be %d characters or less", field, maxLength),
			Code:    "too_long",
			Value:   value,
		}
	}

	return nil
}

// EnumValidator validates enum values
func EnumValidator(field string, value string, allowedValues []string) *ValidationError {
	if value == "" {
		return &ValidationError{
			Field:   field,
			Message: fmt.Sprintf("%s is required", field),
			Code:    "required",
			Value:   value,
		}
	}

	for _, allowed := range allowedValues {
		if value == allowed {
			return nil
		}
	}

	return &ValidationError{
		Field:   field,
		Message: fmt.Sprintf("%s must be one of: %s", field, strings.Join(allowedValues, ", ")),
		Code:    "invalid_value",
		Value:   value,
	}
}

// ===============================
// MODEL VALIDATORS
// ===============================

// Validate validates a User model
func (u *User) Validate() ValidationErrors {
	var errors ValidationErrors

	if err := RollNumberValidator("roll_number", u.RollNumber); err != nil {
		errors = append(errors, *err)
	}

	if err := ContentValidator("name", u.Name, 2, 100); err != nil {
		errors = append(errors, *err)
	}

	if u.Email != nil && *u.Email != "" {
		if !strings.Contains(*u.Email, "@") || len(*u.Email) > 320 {
			errors.Add("email", "invalid email format", "invalid_format", *u.Email)
		}
	}

	return errors
}

// Validate validates an Activity model. Type-specific template rules
// are enforced by the input validators in internal/validation; this
// covers the invariants shared by all types.
func (a *Activity) Validate() ValidationErrors {
	var errors ValidationErrors

	if err := ContentValidator("title", a.Title, 5, 120); err != nil {
		errors = append(errors, *err)
	}

	if err := ContentValidator("description", a.Description, 15, 2000); err != nil {
		errors = append(errors, *err)
	}

	if err := EnumValidator("type", a.Type, []string{TypeOpen, TypeCommunity, TypeCollegeFunded}); err != nil {
		errors = append(errors, *err)
	}

	if err := EnumValidator("genre", a.Genre, []string{GenreTech, GenreArt, GenreMusic, GenreDance, GenreSports, GenreOther}); err != nil {
		errors = append(errors, *err)
	}

	if err := EnumValidator("frequency", a.Frequency, []string{FrequencyOneOff, FrequencyWeekly, FrequencyFortnightly, FrequencyMonthly, FrequencyOnDemand}); err != nil {
		errors = append(errors, *err)
	}

	if a.AuthorID <= 0 {
		errors.Add("author_id", "valid author ID is required", "invalid", a.AuthorID)
	}

	if a.Capacity != nil && *a.Capacity < 1 {
		errors.Add("capacity", "capacity must be at least 1", "invalid_range", *a.Capacity)
	}

	// A one-off activity is meaningless without a date
	if a.Frequency == FrequencyOneOff && a.StartDate == nil {
		errors.Add("start_date", "start date is required for one-off activities", "required", nil)
	}

	if a.StartDate != nil && a.EndDate != nil && a.EndDate.Before(*a.StartDate) {
		errors.Add("end_date", "end date cannot be before start date", "invalid_range", a.EndDate.Format(time.RFC3339))
	}

	if a.Type == TypeCollegeFunded {
		if a.FundingGoal == nil || *a.FundingGoal <= 0 {
			errors.Add("funding_goal", "a positive funding goal is required for funding requests", "required", a.FundingGoal)
		}
	} else if a.FundingGoal != nil {
		errors.Add("funding_goal", "funding goal is only valid for funding requests", "invalid_value", *a.FundingGoal)
	}

	return errors
}

// Validate validates a Comment model
func (c *Comment) Validate() ValidationErrors {
	var errors ValidationErrors

	if err := ContentValidator("text", c.Text, 1, 1000); err != nil {
		errors = append(errors, *err)
	}

	if c.UserID <= 0 {
		errors.Add("user_id", "valid user ID is required", "invalid", c.UserID)
	}

	if c.ActivityID <= 0 {
		errors.Add("activity_id", "valid activity ID is required", "invalid", c.ActivityID)
	}

	return errors
}

// Validate validates a Report model
func (r *Report) Validate() ValidationErrors {
	var errors ValidationErrors

	if err := ContentValidator("reason", r.Reason, 10, 300); err != nil {
		errors = append(errors, *err)
	}

	if r.ReporterID <= 0 {
		errors.Add("reporter_id", "valid reporter ID is required", "invalid", r.ReporterID)
	}

	if r.ActivityID <= 0 {
		errors.Add("activity_id", "valid activity ID is required", "invalid", r.ActivityID)
	}

	return errors
}

// ===============================
// VALIDATION UTILITIES
// ===============================

// ValidateModel validates any model that implements the Validator interface
func ValidateModel(model Validator) error {
	if errors := model.Validate(); errors.HasErrors() {
		return errors
	}
	return nil
}

// NormalizeRollNumber normalizes a roll number before matching or
// storing it. The letter prefix is case-insensitive on input.
func NormalizeRollNumber(rollNumber string) string {
	return strings.ToUpper(strings.TrimSpace(rollNumber))
}
