package users

import (
	"errors"
	"strings"
)

var ErrNotFound = errors.New("profile not found")

// Identity is what the auth provider vouches for.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Profile is the backend-managed record that carries the admin flag.
type Profile struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	IsAdmin   bool   `json:"isAdmin"`
}

func (p Profile) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}
