package models

type Article struct {
	ID         string    `json:"id,omitempty"`
	Title      string    `json:"title,omitempty"`
	Content    string    `json:"content,omitempty"`
	ImageURL   string    `json:"imageUrl,omitempty"`
	CategoryID string    `json:"categoryId,omitempty"`
	Category   *Category `json:"category,omitempty"`
	User       *Author   `json:"user,omitempty"`
	CreatedAt  Time      `json:"createdAt,omitempty"`
	UpdatedAt  Time      `json:"updatedAt,omitempty"`
}

type Author struct {
	ID       string `json:"id,omitempty"`
	Username string `json:"username,omitempty"`
}

// ArticleInput is the write payload for creating and updating articles.
type ArticleInput struct {
	Title      string `json:"title"`
	Content    string `json:"content"`
	CategoryID string `json:"categoryId"`
	ImageURL   string `json:"imageUrl,omitempty"`
}

type ArticleQuery struct {
	Page     int
	Limit    int
	Category string
	Search   string
	Exclude  string
}

type ArticlePage struct {
	Data     []Article `json:"data"`
	Total    int       `json:"total"`
	Page     int       `json:"page"`
	Limit    int       `json:"limit"`
	LastPage int       `json:"last_page,omitempty"`
}

// TotalPages prefers the backend's last_page and otherwise derives it from
// total and limit. It never reports fewer than one page.
func (p ArticlePage) TotalPages() int {
	if p.LastPage > 0 {
		return p.LastPage
	}

	if p.Limit <= 0 || p.Total <= 0 {
		return 1
	}

	return (p.Total + p.Limit - 1) / p.Limit
}
