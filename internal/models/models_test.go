// file: internal/models/models_test.go
package models

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ===============================
// ROLL NUMBERS
// ===============================

func TestValidateRollNumber(t *testing.T) {
	valid := []string{"CS2021/042", "EE1999/001", "ME2024/999"}
	for _, rollNumber := range valid {
		assert.True(t, ValidateRollNumber(rollNumber), "expected %q to be valid", rollNumber)
	}

	invalid := []string{
		"",
		"cs2021/042",   // lowercase prefix must be normalized first
		"C2021/042",    // one-letter prefix
		"CSE2021/042",  // three-letter prefix
		"CS21/042",     // short year
		"CS2021/42",    // short serial
		"CS2021/0421",  // long serial
		"CS2021-042",   // wrong separator
		" CS2021/042",  // stray whitespace
		"CS2021/042X",  // trailing garbage
	}
	for _, rollNumber := range invalid {
		assert.False(t, ValidateRollNumber(rollNumber), "expected %q to be invalid", rollNumber)
	}
}

func TestNormalizeRollNumber(t *testing.T) {
	assert.Equal(t, "CS2021/042", NormalizeRollNumber("  cs2021/042 "))
	assert.True(t, ValidateRollNumber(NormalizeRollNumber("ee1999/001")))
}

// ===============================
// ACTIVITY VALIDATION
// ===============================

func validActivity() *Activity {
	return &Activity{
		AuthorID:    1,
		Title:       "Weekly robotics build sessions",
		Description: "Hands-on sessions assembling the club's competition robot.",
		Type:        TypeOpen,
		Genre:       GenreTech,
		Frequency:   FrequencyWeekly,
	}
}

func TestActivityValidateHappyPath(t *testing.T) {
	errs := validActivity().Validate()
	assert.False(t, errs.HasErrors(), "expected no errors, got: %v", errs)
}

func TestActivityValidateTitleBounds(t *testing.T) {
	a := validActivity()
	a.Title = "Tiny"
	errs := a.Validate()
	require.True(t, errs.HasErrors())
	assert.NotEmpty(t, errs.GetField("title"))

	a.Title = "     Tiny     " // padding must not rescue a short title
	errs = a.Validate()
	assert.NotEmpty(t, errs.GetField("title"))
}

func TestActivityValidateOneOffRequiresStartDate(t *testing.T) {
	a := validActivity()
	a.Frequency = FrequencyOneOff

	errs := a.Validate()
	require.True(t, errs.HasErrors())
	assert.NotEmpty(t, errs.GetField("start_date"))

	start := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	a.StartDate = &start
	assert.False(t, a.Validate().HasErrors())
}

func TestActivityValidateEndBeforeStart(t *testing.T) {
	a := validActivity()
	start := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	end := start.Add(-time.Hour)
	a.StartDate = &start
	a.EndDate = &end

	errs := a.Validate()
	require.True(t, errs.HasErrors())
	assert.NotEmpty(t, errs.GetField("end_date"))
}

func TestActivityValidateFundingGoalRules(t *testing.T) {
	// Funded activities need a positive goal.
	a := validActivity()
	a.Type = TypeCollegeFunded
	errs := a.Validate()
	require.True(t, errs.HasErrors())
	assert.NotEmpty(t, errs.GetField("funding_goal"))

	goal := int64(50000)
	a.FundingGoal = &goal
	assert.False(t, a.Validate().HasErrors())

	// Non-funded activities must not carry a goal.
	b := validActivity()
	b.FundingGoal = &goal
	errs = b.Validate()
	require.True(t, errs.HasErrors())
	assert.NotEmpty(t, errs.GetField("funding_goal"))
}

func TestActivityValidateCapacity(t *testing.T) {
	a := validActivity()
	zero := 0
	a.Capacity = &zero

	errs := a.Validate()
	require.True(t, errs.HasErrors())
	assert.NotEmpty(t, errs.GetField("capacity"))
}

// ===============================
// ACTIVITY HELPERS
// ===============================

func TestActivityIsFull(t *testing.T) {
	a := validActivity()
	assert.False(t, a.IsFull(), "activities without a capacity are never full")

	capacity := 2
	a.Capacity = &capacity
	a.JoinedCount = 1
	assert.False(t, a.IsFull())

	a.JoinedCount = 2
	assert.True(t, a.IsFull())
}

func TestActivityNeedsApproval(t *testing.T) {
	a := validActivity()
	assert.False(t, a.NeedsApproval())

	a.Type = TypeCollegeFunded
	assert.True(t, a.NeedsApproval())
}

// ===============================
// COMMENT & REPORT VALIDATION
// ===============================

func TestCommentValidate(t *testing.T) {
	c := &Comment{UserID: 1, ActivityID: 2, Text: "See you there"}
	assert.False(t, c.Validate().HasErrors())

	c.Text = ""
	errs := c.Validate()
	require.True(t, errs.HasErrors())
	assert.NotEmpty(t, errs.GetField("text"))
}

func TestReportValidateReasonLength(t *testing.T) {
	r := &Report{ReporterID: 1, ActivityID: 2, Reason: "too short"}
	errs := r.Validate()
	require.True(t, errs.HasErrors())
	assert.NotEmpty(t, errs.GetField("reason"))

	r.Reason = "Misleading description of the event"
	assert.False(t, r.Validate().HasErrors())
}

// ===============================
// SANITIZATION
// ===============================

func TestSanitizeEscapesMarkup(t *testing.T) {
	assert.Equal(t,
		"&lt;script&gt;alert(&#x27;hi&#x27;)&lt;/script&gt;",
		Sanitize("<script>alert('hi')</script>"),
	)
	assert.Equal(t, "Tom &amp; Jerry", Sanitize("Tom & Jerry"))
}

func TestContentValidatorMeasuresUnescapedLength(t *testing.T) {
	raw := "it's " + strings.Repeat("a", 995)
	require.Len(t, raw, 1000)

	assert.Nil(t, ContentValidator("text", raw, 1, 1000))
	assert.Nil(t, ContentValidator("text", Sanitize(raw), 1, 1000),
		"escaping must not change where the length bound falls")

	tooLong := strings.Repeat("a", 1001)
	require.NotNil(t, ContentValidator("text", tooLong, 1, 1000))
	assert.NotNil(t, ContentValidator("text", Sanitize(tooLong), 1, 1000))
}

func TestSanitizePtr(t *testing.T) {
	assert.Nil(t, SanitizePtr(nil))

	raw := `say "hello"`
	escaped := SanitizePtr(&raw)
	require.NotNil(t, escaped)
	assert.Equal(t, "say &quot;hello&quot;", *escaped)
}

// ===============================
// PAGINATION
// ===============================

func TestNewPaginationMeta(t *testing.T) {
	meta := NewPaginationMeta(PaginationParams{Limit: 20, Offset: 0}, 45)
	assert.Equal(t, int64(45), meta.TotalItems)
	assert.True(t, meta.HasNext)

	meta = NewPaginationMeta(PaginationParams{Limit: 20, Offset: 40}, 45)
	assert.False(t, meta.HasNext, "last page should not report a next page")
}
