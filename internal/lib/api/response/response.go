package response

const (
	StatusOk    = "OK"
	StatusError = "Error"
)

// Response is the JSON envelope of listing views and of JSON error replies.
type Response struct {
	Status     string `json:"status"`
	Error      string `json:"error,omitempty"`
	Data       any    `json:"data,omitempty"`
	Page       int    `json:"page,omitempty"`
	TotalPages int    `json:"totalPages,omitempty"`
}

func OK(data any, page, totalPages int) Response {
	return Response{
		Status:     StatusOk,
		Data:       data,
		Page:       page,
		TotalPages: totalPages,
	}
}

func Err(msg string) Response {
	return Response{
		Status: StatusError,
		Error:  msg,
	}
}
