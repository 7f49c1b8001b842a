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

func (c *Client) Articles(ctx context.Context, q models.ArticleQuery) (*models.ArticlePage, error) {
	params := url.Values{}
	if q.Page > 0 {
		params.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Category != "" {
		params.Set("category", q.Category)
	}
	if q.Search != "" {
		params.Set("search", q.Search)
	}
	if q.Exclude != "" {
		params.Set("exclude", q.Exclude)
	}

	var page models.ArticlePage

	_, err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/articles", Params: params}, &page)
	if err != nil {
		return nil, err
	}

	if page.Limit == 0 {
		page.Limit = q.Limit
	}

	return &page, nil
}

func (c *Client) Article(ctx context.Context, id string) (*models.Article, error) {
	var raw json.RawMessage

	_, err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/articles/" + url.PathEscape(id)}, &raw)
	if err != nil {
		return nil, err
	}

	var art models.Article
	if err := unwrapData(raw, &art); err != nil {
		return nil, err
	}

	return &art, nil
}

func (c *Client) CreateArticle(ctx context.Context, in models.ArticleInput) (*models.Article, error) {
	var raw json.RawMessage

	_, err := c.Do(ctx, Request{Method: http.MethodPost, Path: "/articles", Body: in}, &raw)
	if err != nil {
		return nil, err
	}

	var art models.Article
	if err := unwrapData(raw, &art); err != nil {
		return nil, err
	}

	return &art, nil
}

func (c *Client) UpdateArticle(ctx context.Context, id string, in models.ArticleInput) error {
	_, err := c.Do(ctx, Request{Method: http.MethodPut, Path: "/articles/" + url.PathEscape(id), Body: in}, nil)
	return err
}

func (c *Client) DeleteArticle(ctx context.Context, id string) error {
	_, err := c.Do(ctx, Request{Method: http.MethodDelete, Path: "/articles/" + url.PathEscape(id)}, nil)
	return err
}

// unwrapData decodes raw into v, looking inside a {"data": ...} envelope
// when the backend wrapped the object in one.
func unwrapData(raw json.RawMessage, v any) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}

	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &env); err == nil && len(env.Data) > 0 && env.Data[0] == '{' {
		raw = env.Data
	}

	return json.Unmarshal(raw, v)
}
