package request

// Form payloads of the console pages. Field names follow the HTML forms.

type Login struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required,min=6"`
}

type Register struct {
	Username  string `form:"username" validate:"required,min=3,max=20"`
	Email     string `form:"email" validate:"required,email"`
	Password  string `form:"password" validate:"required,min=6,hasupper,hasdigit"`
	IsAdmin   bool   `form:"isAdmin"`
	AdminCode string `form:"adminCode" validate:"required_if=IsAdmin true"`
}

type Article struct {
	Title      string `form:"title" validate:"required"`
	Content    string `form:"content" validate:"required"`
	CategoryID string `form:"categoryId" validate:"required"`
	ImageURL   string `form:"imageUrl"`
}

type Category struct {
	Name string `form:"name" validate:"required,min=3"`
}
