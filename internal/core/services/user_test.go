package services

import (
	"context"
	"errors"
	"testing"

	"github.com/fairsailau/conganew/internal/core/domain"
	"github.com/fairsailau/conganew/internal/core/ports/driven/mocks"
	"github.com/fairsailau/conganew/internal/core/ports/driving"
)

func TestUserSetup(t *testing.T) {
	users := &mocks.UserStore{}
	svc := NewUserService(users, &mocks.SessionStore{}, &mocks.AuthAdapter{})

	resp, err := svc.Setup(context.Background(), driving.SetupRequest{
		Email:    "Admin@Example.com",
		Name:     "Admin",
		Password: "correct horse",
	})
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if resp.TeamID != "default" {
		t.Errorf("team = %q, want default", resp.TeamID)
	}
	if resp.User.Role != domain.RoleAdmin {
		t.Errorf("role = %q, want admin", resp.User.Role)
	}
	if resp.User.Email != "admin@example.com" {
		t.Errorf("email = %q, want normalized lowercase", resp.User.Email)
	}
}

func TestUserSetupAlreadyComplete(t *testing.T) {
	users := &mocks.UserStore{
		ListFn: func(ctx context.Context, teamID string) ([]*domain.User, error) {
			return []*domain.User{domain.NewUser("a@example.com", "A", domain.RoleAdmin, teamID)}, nil
		},
	}
	svc := NewUserService(users, &mocks.SessionStore{}, &mocks.AuthAdapter{})

	_, err := svc.Setup(context.Background(), driving.SetupRequest{
		Email:    "b@example.com",
		Name:     "B",
		Password: "correct horse",
	})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("error = %v, want ErrForbidden", err)
	}
}

func TestUserSetupMissingFields(t *testing.T) {
	svc := NewUserService(&mocks.UserStore{}, &mocks.SessionStore{}, &mocks.AuthAdapter{})

	_, err := svc.Setup(context.Background(), driving.SetupRequest{Email: "a@example.com"})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("error = %v, want ErrInvalidInput", err)
	}
}

func TestUserCreate(t *testing.T) {
	var saved *domain.User
	users := &mocks.UserStore{
		SaveFn: func(ctx context.Context, u *domain.User) error {
			saved = u
			return nil
		},
	}
	adapter := &mocks.AuthAdapter{}
	svc := NewUserService(users, &mocks.SessionStore{}, adapter)

	user, err := svc.Create(context.Background(), "team-1", domain.CreateUserRequest{
		Email:    "Grace@Example.com",
		Name:     "Grace",
		Role:     domain.RoleMember,
		Password: "correct horse",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if user.Email != "grace@example.com" {
		t.Errorf("email = %q, want normalized lowercase", user.Email)
	}
	if saved == nil || !adapter.VerifyPassword("correct horse", saved.PasswordHash) {
		t.Error("password hash not saved")
	}
}

func TestUserCreateShortPassword(t *testing.T) {
	svc := NewUserService(&mocks.UserStore{}, &mocks.SessionStore{}, &mocks.AuthAdapter{})

	_, err := svc.Create(context.Background(), "team-1", domain.CreateUserRequest{
		Email:    "grace@example.com",
		Name:     "Grace",
		Role:     domain.RoleMember,
		Password: "short",
	})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("error = %v, want ErrInvalidInput", err)
	}
}

func TestUserCreateDuplicateEmail(t *testing.T) {
	existing := domain.NewUser("grace@example.com", "Grace", domain.RoleMember, "team-1")
	users := &mocks.UserStore{
		GetByEmailFn: func(ctx context.Context, email string) (*domain.User, error) {
			return existing, nil
		},
	}
	svc := NewUserService(users, &mocks.SessionStore{}, &mocks.AuthAdapter{})

	_, err := svc.Create(context.Background(), "team-1", domain.CreateUserRequest{
		Email:    "grace@example.com",
		Name:     "Grace",
		Role:     domain.RoleMember,
		Password: "correct horse",
	})
	if !errors.Is(err, domain.ErrAlreadyExists) {
		t.Errorf("error = %v, want ErrAlreadyExists", err)
	}
}

func TestUserDisableLogsOutEverywhere(t *testing.T) {
	user := domain.NewUser("grace@example.com", "Grace", domain.RoleMember, "team-1")
	users := &mocks.UserStore{
		GetFn: func(ctx context.Context, id string) (*domain.User, error) {
			return user, nil
		},
	}
	deleted := ""
	sessions := &mocks.SessionStore{
		DeleteByUserFn: func(ctx context.Context, userID string) error {
			deleted = userID
			return nil
		},
	}
	svc := NewUserService(users, sessions, &mocks.AuthAdapter{})

	if err := svc.SetEnabled(context.Background(), user.ID, false); err != nil {
		t.Fatalf("SetEnabled: %v", err)
	}
	if user.Enabled {
		t.Error("user still enabled")
	}
	if deleted != user.ID {
		t.Error("sessions were not invalidated")
	}

	// Re-enabling must not touch sessions.
	deleted = ""
	if err := svc.SetEnabled(context.Background(), user.ID, true); err != nil {
		t.Fatalf("SetEnabled: %v", err)
	}
	if deleted != "" {
		t.Error("enable should not delete sessions")
	}
}

func TestUserListSummaries(t *testing.T) {
	users := &mocks.UserStore{
		ListFn: func(ctx context.Context, teamID string) ([]*domain.User, error) {
			return []*domain.User{
				domain.NewUser("a@example.com", "A", domain.RoleAdmin, teamID),
				domain.NewUser("b@example.com", "B", domain.RoleMember, teamID),
			}, nil
		},
	}
	svc := NewUserService(users, &mocks.SessionStore{}, &mocks.AuthAdapter{})

	summaries, err := svc.List(context.Background(), "team-1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("got %d summaries, want 2", len(summaries))
	}
	if summaries[0].Email != "a@example.com" || summaries[0].Role != domain.RoleAdmin {
		t.Errorf("summary = %+v", summaries[0])
	}
}
