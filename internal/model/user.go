package model

import "strings"

// User is an account on the backend.
type User struct {
	ID      ID     `json:"id"`
	Name    string `json:"name"`
	Surname string `json:"surname"`
	Email   string `json:"email"`
	Avatar  string `json:"avatar,omitempty"`
}

// DisplayName joins name and surname, falling back to the email address.
func (u User) DisplayName() string {
	full := strings.TrimSpace(u.Name + " " + u.Surname)
	if full == "" {
		return u.Email
	}
	return full
}

// NewUser is the payload for account registration.
type NewUser struct {
	Name     string `json:"name"`
	Surname  string `json:"surname"`
	Email    string `json:"email"`
	Password string `json:"password"`
}
