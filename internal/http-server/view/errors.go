package view

import (
	"net/http"

	"blog-console/internal/client/api"
	"blog-console/internal/lib/validate"
)

// ErrorStatus picks the status of a page showing err.
func ErrorStatus(err error) int {
	if _, ok := validate.AsFieldErrors(err); ok {
		return http.StatusUnprocessableEntity
	}

	if status := api.StatusOf(err); status >= 400 && status < 500 {
		return status
	}

	return http.StatusBadGateway
}

// WithError puts err on the page: per field for form errors, as the page
// message otherwise.
func (p Page) WithError(err error, fallback string) Page {
	if fe, ok := validate.AsFieldErrors(err); ok {
		p.Fields = fe
		return p
	}

	p.Error = api.Message(err, fallback)
	return p
}
