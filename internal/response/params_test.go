// File: internal/response/params_test.go
package response

import (
	"net/http/httptest"
	"testing"

	"campusboard/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestParsePaginationDefaults(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/v1/activities", nil)

	params := ParsePagination(r)
	assert.Equal(t, 20, params.Limit)
	assert.Equal(t, 0, params.Offset)
	assert.Equal(t, "newest", params.Sort)
}

func TestParsePaginationClampsLimit(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/v1/activities?limit=5000&offset=40", nil)

	params := ParsePagination(r)
	assert.Equal(t, 100, params.Limit, "limit should be clamped to the maximum")
	assert.Equal(t, 40, params.Offset)
}

func TestParsePaginationIgnoresGarbage(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/v1/activities?limit=banana&offset=-3&sort=loudest", nil)

	params := ParsePagination(r)
	assert.Equal(t, 20, params.Limit)
	assert.Equal(t, 0, params.Offset, "negative offsets fall back to zero")
	assert.Equal(t, "newest", params.Sort, "unknown sort values fall back to newest")
}

func TestParsePaginationLikesSort(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/v1/activities?sort=likes", nil)
	assert.Equal(t, "likes", ParsePagination(r).Sort)
}

func TestParseActivityFilter(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/v1/activities?q=football&genre=SPORTS&type=OPEN&frequency=WEEKLY", nil)

	filter := ParseActivityFilter(r)
	assert.Equal(t, "football", filter.Query)
	assert.Equal(t, models.GenreSports, filter.Genre)
	assert.Equal(t, models.TypeOpen, filter.Type)
	assert.Equal(t, models.FrequencyWeekly, filter.Frequency)
}

func TestParseActivityFilterDropsUnknownEnums(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/v1/activities?genre=KNITTING&type=SECRET&frequency=HOURLY", nil)

	filter := ParseActivityFilter(r)
	assert.Empty(t, filter.Genre, "unknown genres are dropped, not rejected")
	assert.Empty(t, filter.Type)
	assert.Empty(t, filter.Frequency)
}

func TestParseIDParam(t *testing.T) {
	id, ok := ParseIDParam("42")
	assert.True(t, ok)
	assert.Equal(t, int64(42), id)

	cases := []string{"", "0", "-1", "abc", "9999999999999999999999"}
	for _, raw := range cases {
		_, ok := ParseIDParam(raw)
		assert.False(t, ok, "expected %q to be rejected", raw)
	}
}
