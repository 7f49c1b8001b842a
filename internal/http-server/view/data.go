package view

import (
	"maps"
	"net/url"
	"strconv"

	"blog-console/internal/domain/models"
)

// Pager links the pages of a listing, keeping the other query parameters.
type Pager struct {
	Page       int
	TotalPages int
	path       string
	query      url.Values
}

func NewPager(path string, query url.Values, page, totalPages int) Pager {
	return Pager{
		Page:       max(page, 1),
		TotalPages: max(totalPages, 1),
		path:       path,
		query:      query,
	}
}

func (p Pager) HasPrev() bool { return p.Page > 1 }

func (p Pager) HasNext() bool { return p.Page < p.TotalPages }

func (p Pager) Prev() string { return p.URL(p.Page - 1) }

func (p Pager) Next() string { return p.URL(p.Page + 1) }

func (p Pager) URL(page int) string {
	q := maps.Clone(p.query)
	if q == nil {
		q = url.Values{}
	}
	q.Set("page", strconv.Itoa(page))

	return p.path + "?" + q.Encode()
}

type ArticleList struct {
	Articles   []models.Article
	Categories []models.Category
	Search     string
	Category   string
	Pager      Pager
}

type ArticleDetail struct {
	Article models.Article
	Related []models.Article
}

type ArticleForm struct {
	Action     string
	Title      string
	Content    string
	CategoryID string
	ImageURL   string
	Categories []models.Category
}

type CategoryList struct {
	Categories []models.Category
	Search     string
	Pager      Pager
}

type CategoryForm struct {
	Action string
	Name   string
}

type AuthForm struct {
	Username string
	Email    string
	IsAdmin  bool
}
