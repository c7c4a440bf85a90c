package services

import (
	"context"
	"fmt"

	"github.com/fairsailau/conganew/internal/core/domain"
	"github.com/fairsailau/conganew/internal/core/ports/driven"
	"github.com/fairsailau/conganew/internal/core/ports/driving"
)

// Ensure userService implements UserService
var _ driving.UserService = (*userService)(nil)

// userService implements the UserService interface
type userService struct {
	userStore    driven.UserStore
	sessionStore driven.SessionStore
	authAdapter  driven.AuthAdapter
}

// NewUserService creates a new UserService
func NewUserService(
	userStore driven.UserStore,
	sessionStore driven.SessionStore,
	authAdapter driven.AuthAdapter,
) driving.UserService {
	return &userService{
		userStore:    userStore,
		sessionStore: sessionStore,
		authAdapter:  authAdapter,
	}
}

// Setup creates the first admin user for a team. Once the team has any
// users, further setup calls are forbidden.
func (s *userService) Setup(ctx context.Context, req driving.SetupRequest) (*driving.SetupResponse, error) {
	if req.Email == "" || req.Name == "" || req.Password == "" {
		return nil, domain.ErrInvalidInput
	}

	teamID := req.TeamID
	if teamID == "" {
		teamID = "default"
	}

	existing, err := s.userStore.List(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	if len(existing) > 0 {
		return nil, domain.ErrForbidden
	}

	user, err := s.Create(ctx, teamID, domain.CreateUserRequest{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
		Role:     domain.RoleAdmin,
	})
	if err != nil {
		return nil, err
	}

	return &driving.SetupResponse{
		TeamID: teamID,
		User:   user.Summary(),
	}, nil
}

// Create creates a user with a hashed password
func (s *userService) Create(ctx context.Context, teamID string, req domain.CreateUserRequest) (*domain.User, error) {
	if len(req.Password) < 8 {
		return nil, fmt.Errorf("%w: password too short", domain.ErrInvalidInput)
	}

	user := domain.NewUser(req.Email, req.Name, req.Role, teamID)
	if err := user.Validate(); err != nil {
		return nil, err
	}

	if existing, err := s.userStore.GetByEmail(ctx, user.Email); err == nil && existing != nil {
		return nil, domain.ErrAlreadyExists
	}

	hash, err := s.authAdapter.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = hash

	if err := s.userStore.Save(ctx, user); err != nil {
		return nil, fmt.Errorf("save user: %w", err)
	}
	return user, nil
}

// Get retrieves a user by ID
func (s *userService) Get(ctx context.Context, id string) (*domain.User, error) {
	return s.userStore.Get(ctx, id)
}

// List retrieves all users for a team
func (s *userService) List(ctx context.Context, teamID string) ([]*domain.UserSummary, error) {
	users, err := s.userStore.List(ctx, teamID)
	if err != nil {
		return nil, err
	}
	summaries := make([]*domain.UserSummary, 0, len(users))
	for _, u := range users {
		summaries = append(summaries, u.Summary())
	}
	return summaries, nil
}

// SetEnabled enables or disables a user account. Disabling logs the user
// out everywhere.
func (s *userService) SetEnabled(ctx context.Context, id string, enabled bool) error {
	user, err := s.userStore.Get(ctx, id)
	if err != nil {
		return err
	}
	user.Enabled = enabled
	if err := s.userStore.Save(ctx, user); err != nil {
		return err
	}
	if !enabled {
		return s.sessionStore.DeleteByUser(ctx, id)
	}
	return nil
}

// Delete removes a user and all their sessions
func (s *userService) Delete(ctx context.Context, id string) error {
	if err := s.userStore.Delete(ctx, id); err != nil {
		return err
	}
	return s.sessionStore.DeleteByUser(ctx, id)
}
