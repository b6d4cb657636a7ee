// File: internal/response/params.go
package response

import (
	"net/http"
	"strconv"

	"campusboard/internal/models"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

// ParsePagination extracts limit/offset/sort query parameters,
// clamping them to sane bounds.
func ParsePagination(r *http.Request) models.PaginationParams {
	params := models.PaginationParams{
		Limit:  defaultLimit,
		Offset: 0,
		Sort:   "newest",
	}

	q := r.URL.Query()

	if raw := q.Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			params.Limit = v
		}
	}
	if params.Limit > maxLimit {
		params.Limit = maxLimit
	}

	if raw := q.Get("offset"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v >= 0 {
			params.Offset = v
		}
	}

	if sort := q.Get("sort"); sort == "likes" || sort == "newest" {
		params.Sort = sort
	}

	return params
}

// ParseActivityFilter extracts feed filter parameters. Unknown enum
// values are dropped rather than rejected so stale links still load.
func ParseActivityFilter(r *http.Request) models.ActivityFilter {
	q := r.URL.Query()

	filter := models.ActivityFilter{
		Query: q.Get("q"),
	}

	if genre := q.Get("genre"); models.ValidateGenre(genre) {
		filter.Genre = genre
	}
	if typ := q.Get("type"); models.ValidateActivityType(typ) {
		filter.Type = typ
	}
	if freq := q.Get("frequency"); models.ValidateFrequency(freq) {
		filter.Frequency = freq
	}

	return filter
}

// ParseIDParam parses a positive int64 path or query value
func ParseIDParam(raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
