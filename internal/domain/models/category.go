package models

type Category struct {
	ID        string    `json:"id,omitempty"`
	Name      string    `json:"name,omitempty"`
	UserID    string    `json:"userId,omitempty"`
	CreatedAt Time      `json:"createdAt,omitempty"`
	UpdatedAt Time      `json:"updatedAt,omitempty"`
}

type CategoryInput struct {
	Name string `json:"name"`
}

type CategoryQuery struct {
	Search string
	Page   int
	Limit  int
}

type CategoryPage struct {
	Data        []Category `json:"data"`
	TotalData   int        `json:"totalData"`
	CurrentPage int        `json:"currentPage"`
	TotalPages  int        `json:"totalPages"`
}
