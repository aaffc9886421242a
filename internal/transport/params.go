package transport

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
)

const (
	defaultPage    = 1
	defaultPerPage = 10
)

// Pagination reads the page/perpage query parameters and converts them
// to a limit and offset. Missing or malformed values fall back to the
// defaults.
func Pagination(r *http.Request) (limit, offset int) {
	page := queryInt(r, "page", defaultPage)
	perPage := queryInt(r, "perpage", defaultPerPage)

	if page < 1 {
		page = defaultPage
	}
	if perPage < 1 {
		perPage = defaultPerPage
	}

	return perPage, perPage * (page - 1)
}

// IDParam parses a numeric chi route parameter.
func IDParam(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
