package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// FallbackMessage is the message of an Error whose response carried none.
const FallbackMessage = "an error occurred"

var ErrNoImageURL = errors.New("upload response carries no image url")

// Error is a backend error response normalized to a status and a message.
// Transport failures are never turned into an Error.
type Error struct {
	Status   int
	Message  string
	Response *http.Response
	// Body is the raw response body; Response.Body is already drained.
	Body []byte
}

func (e *Error) Error() string {
	return fmt.Sprintf("api: %d: %s", e.Status, e.Message)
}

// AsError unwraps err into an *Error if it carries one.
func AsError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsCanceled reports whether err stems from the caller canceling the request
// rather than from the backend or the network.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled)
}

// StatusOf returns the backend status carried by err, or 0.
func StatusOf(err error) int {
	if apiErr, ok := AsError(err); ok {
		return apiErr.Status
	}
	return 0
}

// Message returns the text to show a user for err, falling back to
// fallback for transport failures.
func Message(err error, fallback string) string {
	if apiErr, ok := AsError(err); ok {
		return apiErr.Message
	}
	return fallback
}
