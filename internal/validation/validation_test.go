package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signupInput struct {
	RollNumber string  `json:"roll_number" validate:"required,rollnumber"`
	Name       string  `json:"name" validate:"required,min=2,max=100"`
	Email      *string `json:"email,omitempty" validate:"omitempty,email"`
}

func TestCollectViolationsValidStruct(t *testing.T) {
	violations := CollectViolations(&signupInput{
		RollNumber: "CS2021/042",
		Name:       "Asha Mensah",
	})
	assert.Nil(t, violations)
}

func TestCollectViolationsUsesJSONFieldNames(t *testing.T) {
	violations := CollectViolations(&signupInput{
		RollNumber: "nope",
		Name:       "A",
	})
	require.Len(t, violations, 2)

	byField := make(map[string]FieldViolation, len(violations))
	for _, v := range violations {
		byField[v.Field] = v
	}

	roll, ok := byField["roll_number"]
	require.True(t, ok, "violations should be keyed by the json tag, not the Go field name")
	assert.Equal(t, "rollnumber", roll.Code)
	assert.Equal(t, "roll_number must match the pattern AB1234/567", roll.Message)

	name, ok := byField["name"]
	require.True(t, ok)
	assert.Equal(t, "min", name.Code)
	assert.Equal(t, "name must be at least 2 characters", name.Message)
}

func TestCollectViolationsOptionalEmail(t *testing.T) {
	violations := CollectViolations(&signupInput{
		RollNumber: "CS2021/042",
		Name:       "Asha Mensah",
		Email:      nil,
	})
	assert.Nil(t, violations, "omitempty fields may be absent")

	bad := "not-an-email"
	violations = CollectViolations(&signupInput{
		RollNumber: "CS2021/042",
		Name:       "Asha Mensah",
		Email:      &bad,
	})
	require.Len(t, violations, 1)
	assert.Equal(t, "email", violations[0].Field)
	assert.Equal(t, "email must be a valid email address", violations[0].Message)
}

func TestValidateStructReportsFailedTags(t *testing.T) {
	err := ValidateStruct(&signupInput{RollNumber: "CS2021/042", Name: "Asha Mensah"})
	assert.NoError(t, err)

	err = ValidateStruct(&signupInput{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "roll_number")
}

func TestValidateStructRejectsNonStruct(t *testing.T) {
	err := ValidateStruct("not a struct")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected a struct")
}
