package models

const (
	RoleAdmin = "Admin"
	RoleUser  = "User"
)

// Credential identifies the user of a console session.
type Credential struct {
	Token    string `json:"token,omitempty"`
	Role     string `json:"role,omitempty"`
	Username string `json:"username,omitempty"`
}

// Authenticated reports whether the credential carries a token. Role and
// username are meaningless without one.
func (c Credential) Authenticated() bool {
	return c.Token != ""
}

func (c Credential) IsAdmin() bool {
	return c.Authenticated() && c.Role == RoleAdmin
}
