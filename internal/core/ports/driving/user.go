package driving

import (
	"context"

	"github.com/fairsailau/conganew/internal/core/domain"
)

// SetupRequest bootstraps a team's first admin user.
type SetupRequest struct {
	TeamID   string `json:"team_id,omitempty"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// SetupResponse is returned after successful setup.
type SetupResponse struct {
	TeamID string              `json:"team_id"`
	User   *domain.UserSummary `json:"user"`
}

// UserService manages user accounts (admin surface)
type UserService interface {
	// Setup creates the first admin user for a team. Fails once the team
	// has any users.
	Setup(ctx context.Context, req SetupRequest) (*SetupResponse, error)

	// Create creates a user with a hashed password
	Create(ctx context.Context, teamID string, req domain.CreateUserRequest) (*domain.User, error)

	// Get retrieves a user by ID
	Get(ctx context.Context, id string) (*domain.User, error)

	// List retrieves all users for a team
	List(ctx context.Context, teamID string) ([]*domain.UserSummary, error)

	// SetEnabled enables or disables a user account
	SetEnabled(ctx context.Context, id string, enabled bool) error

	// Delete removes a user and all their sessions
	Delete(ctx context.Context, id string) error
}
