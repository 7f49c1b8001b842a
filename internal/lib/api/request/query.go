package request

import (
	"net/http"
	"strconv"
)

// Page returns the 1-based page number from the "page" query parameter.
// Missing or malformed values mean the first page.
func Page(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}
