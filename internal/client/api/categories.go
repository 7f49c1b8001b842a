package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"blog-console/internal/domain/models"
)

// Categories lists categories. Besides the paginated envelope it accepts a
// bare array and a {"categories": [...]} object.
func (c *Client) Categories(ctx context.Context, q models.CategoryQuery) (*models.CategoryPage, error) {
	params := url.Values{}
	if q.Search != "" {
		params.Set("search", q.Search)
	}
	if q.Page > 0 {
		params.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}

	var raw json.RawMessage

	_, err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/categories", Params: params}, &raw)
	if err != nil {
		return nil, err
	}

	return decodeCategoryPage(raw)
}

func (c *Client) CreateCategory(ctx context.Context, in models.CategoryInput) (*models.Category, error) {
	var raw json.RawMessage

	_, err := c.Do(ctx, Request{Method: http.MethodPost, Path: "/categories", Body: in}, &raw)
	if err != nil {
		return nil, err
	}

	var cat models.Category
	if err := unwrapData(raw, &cat); err != nil {
		return nil, err
	}

	return &cat, nil
}

func (c *Client) UpdateCategory(ctx context.Context, id string, in models.CategoryInput) error {
	_, err := c.Do(ctx, Request{Method: http.MethodPut, Path: "/categories/" + url.PathEscape(id), Body: in}, nil)
	return err
}

func (c *Client) DeleteCategory(ctx context.Context, id string) error {
	_, err := c.Do(ctx, Request{Method: http.MethodDelete, Path: "/categories/" + url.PathEscape(id)}, nil)
	return err
}

func decodeCategoryPage(raw json.RawMessage) (*models.CategoryPage, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return &models.CategoryPage{TotalPages: 1}, nil
	}

	var page models.CategoryPage

	if raw[0] == '[' {
		if err := json.Unmarshal(raw, &page.Data); err != nil {
			return nil, err
		}
	} else {
		var env struct {
			models.CategoryPage
			Categories []models.Category `json:"categories"`
		}
		if err := json.Unmarshal(raw, &env); err != nil {
			return nil, err
		}
		page = env.CategoryPage
		if page.Data == nil {
			page.Data = env.Categories
		}
	}

	if page.TotalData == 0 {
		page.TotalData = len(page.Data)
	}
	if page.TotalPages < 1 {
		page.TotalPages = 1
	}

	return &page, nil
}
