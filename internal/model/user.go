package model

import "time"

const (
	RoleAdmin  = "ADMIN"
	RoleAgent  = "AGENT"
	RoleWriter = "WRITER"
)

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Profile is the user shape exposed through the API and to templates.
type Profile struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

func (u User) Profile() Profile {
	return Profile{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role}
}

func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleAgent, RoleWriter:
		return true
	}
	return false
}
