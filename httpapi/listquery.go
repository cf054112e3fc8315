package httpapi

import (
	"net/http"
	"strconv"
	"strings"
)

const (
	defaultPageSize = 25
	maxPageSize     = 200
)

// ListQuery captures pagination and sorting intent from query parameters.
// Pagination is opt-in: it only activates when the caller sends page or limit,
// otherwise the full result set comes back as a bare array.
type ListQuery struct {
	Paginated bool
	Page      int
	Limit     int
	SortBy    string
	SortDesc  bool
}

// Offset returns the row offset for the current page, 0 when unpaginated.
func (q ListQuery) Offset() int {
	if !q.Paginated {
		return 0
	}
	return (q.Page - 1) * q.Limit
}

// LimitOrAll returns the page size, or a negative value meaning "no limit".
func (q ListQuery) LimitOrAll() int {
	if !q.Paginated {
		return -1
	}
	return q.Limit
}

// OrderSQL renders the validated sort as a SQL fragment. SortBy is only ever
// one of the allow-listed column names, so interpolation is safe here.
func (q ListQuery) OrderSQL() string {
	dir := "ASC"
	if q.SortDesc {
		dir = "DESC"
	}
	return q.SortBy + " " + dir
}

// parseListQuery reads page, limit, sort_by and sort_order from the request.
// Unknown sort columns fall back silently to defaultSort; out-of-range page
// and limit values are clamped rather than rejected.
func parseListQuery(r *http.Request, allowedSort map[string]bool, defaultSort string) ListQuery {
	q := ListQuery{
		Page:   1,
		Limit:  defaultPageSize,
		SortBy: defaultSort,
	}
	values := r.URL.Query()

	if values.Has("page") || values.Has("limit") {
		q.Paginated = true
	}
	if page, err := strconv.Atoi(values.Get("page")); err == nil && page > 0 {
		q.Page = page
	}
	if limit, err := strconv.Atoi(values.Get("limit")); err == nil && limit > 0 {
		q.Limit = limit
	}
	if q.Limit > maxPageSize {
		q.Limit = maxPageSize
	}

	if sort := strings.TrimSpace(values.Get("sort_by")); sort != "" && allowedSort[sort] {
		q.SortBy = sort
	}
	q.SortDesc = strings.EqualFold(values.Get("sort_order"), "desc")
	return q
}

type listMeta struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalItems int `json:"total_items"`
	TotalPages int `json:"total_pages"`
}

type listEnvelope struct {
	Data any      `json:"data"`
	Meta listMeta `json:"meta"`
}

// writeList renders items either as a bare array or, when pagination was
// requested, wrapped in the data/meta envelope.
func writeList(w http.ResponseWriter, q ListQuery, items any, total int) {
	if !q.Paginated {
		writeJSON(w, http.StatusOK, items)
		return
	}
	pages := total / q.Limit
	if total%q.Limit != 0 {
		pages++
	}
	writeJSON(w, http.StatusOK, listEnvelope{
		Data: items,
		Meta: listMeta{
			Page:       q.Page,
			Limit:      q.Limit,
			TotalItems: total,
			TotalPages: pages,
		},
	})
}
