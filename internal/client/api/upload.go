package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

const uploadField = "image"

// Upload sends an image to the backend and returns the URL it is served at.
func (c *Client) Upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	const op = "client.api.Upload"

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile(uploadField, filename)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	var resp struct {
		URL      string `json:"url"`
		ImageURL string `json:"imageUrl"`
		Data     struct {
			URL string `json:"url"`
		} `json:"data"`
	}

	_, err = c.Do(ctx, Request{
		Method:      http.MethodPost,
		Path:        "/upload",
		Body:        &buf,
		ContentType: mw.FormDataContentType(),
	}, &resp)
	if err != nil {
		return "", err
	}

	switch {
	case resp.URL != "":
		return resp.URL, nil
	case resp.ImageURL != "":
		return resp.ImageURL, nil
	case resp.Data.URL != "":
		return resp.Data.URL, nil
	}

	return "", fmt.Errorf("%s: %w", op, ErrNoImageURL)
}
