package domain

import (
	"strings"
	"time"
)

// Role defines user permission levels
type Role string

const (
	// RoleAdmin can manage users, settings and grammar rules
	RoleAdmin Role = "admin"
	// RoleMember can run conversions and view their results
	RoleMember Role = "member"
)

// IsValid checks if the role is a recognized value
func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleMember
}

// User represents a registered user account
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	TeamID       string    `json:"team_id"`
	Enabled      bool      `json:"enabled"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewUser creates a user with defaults applied
func NewUser(email, name string, role Role, teamID string) *User {
	now := time.Now()
	return &User{
		ID:        GenerateID(),
		Email:     NormalizeEmail(email),
		Name:      name,
		Role:      role,
		TeamID:    teamID,
		Enabled:   true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NormalizeEmail lower-cases and trims an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsAdmin checks if the user has the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Validate checks user invariants
func (u *User) Validate() error {
	if u.Email == "" || !strings.Contains(u.Email, "@") {
		return ErrInvalidInput
	}
	if !u.Role.IsValid() {
		return ErrInvalidInput
	}
	return nil
}

// UserSummary is the API-safe projection of a user
type UserSummary struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Role    Role   `json:"role"`
	Enabled bool   `json:"enabled"`
}

// Summary returns the API-safe projection of the user
func (u *User) Summary() *UserSummary {
	return &UserSummary{
		ID:      u.ID,
		Email:   u.Email,
		Name:    u.Name,
		Role:    u.Role,
		Enabled: u.Enabled,
	}
}

// CreateUserRequest is the admin request to create a user
type CreateUserRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
	Role     Role   `json:"role"`
}
