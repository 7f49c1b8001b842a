package api

import (
	"context"
	"net/http"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string `json:"token"`
	Role  string `json:"role"`
}

type RegisterRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Role      string `json:"role"`
	AdminCode string `json:"adminCode,omitempty"`
}

func (c *Client) Login(ctx context.Context, req LoginRequest) (LoginResponse, error) {
	var resp LoginResponse

	_, err := c.Do(ctx, Request{Method: http.MethodPost, Path: "/auth/login", Body: req}, &resp)
	if err != nil {
		return LoginResponse{}, err
	}

	return resp, nil
}

// Register creates an account. The backend answers 201; any other success
// status is reported as an *Error.
func (c *Client) Register(ctx context.Context, req RegisterRequest) error {
	var body struct {
		Message string `json:"message"`
	}

	resp, err := c.Do(ctx, Request{Method: http.MethodPost, Path: "/auth/register", Body: req}, &body)
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusCreated {
		msg := body.Message
		if msg == "" {
			msg = "registration failed"
		}
		return &Error{Status: resp.StatusCode, Message: msg, Response: resp}
	}

	return nil
}
