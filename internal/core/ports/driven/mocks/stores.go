package mocks

import (
	"context"
	"time"

	"github.com/fairsailau/conganew/internal/core/domain"
	"github.com/fairsailau/conganew/internal/core/ports/driven"
)

// JobStore is a function-field mock of the job store port.
type JobStore struct {
	SaveFn          func(ctx context.Context, job *domain.ConversionJob) error
	GetFn           func(ctx context.Context, id string) (*domain.ConversionJob, error)
	ListFn          func(ctx context.Context, teamID string, limit, offset int) ([]*domain.JobSummary, error)
	DeleteFn        func(ctx context.Context, id string) error
	PurgeFinishedFn func(ctx context.Context, teamID string, olderThan time.Time) (int, error)
	PingFn          func(ctx context.Context) error

	Saved []*domain.ConversionJob
}

var _ driven.JobStore = (*JobStore)(nil)

func (m *JobStore) Save(ctx context.Context, job *domain.ConversionJob) error {
	m.Saved = append(m.Saved, job)
	if m.SaveFn != nil {
		return m.SaveFn(ctx, job)
	}
	return nil
}

func (m *JobStore) Get(ctx context.Context, id string) (*domain.ConversionJob, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *JobStore) List(ctx context.Context, teamID string, limit, offset int) ([]*domain.JobSummary, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, teamID, limit, offset)
	}
	return nil, nil
}

func (m *JobStore) Delete(ctx context.Context, id string) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	return nil
}

func (m *JobStore) PurgeFinished(ctx context.Context, teamID string, olderThan time.Time) (int, error) {
	if m.PurgeFinishedFn != nil {
		return m.PurgeFinishedFn(ctx, teamID, olderThan)
	}
	return 0, nil
}

func (m *JobStore) Ping(ctx context.Context) error {
	if m.PingFn != nil {
		return m.PingFn(ctx)
	}
	return nil
}

// SettingsStore is a function-field mock of the settings store port.
type SettingsStore struct {
	GetSettingsFn    func(ctx context.Context, teamID string) (*domain.Settings, error)
	SaveSettingsFn   func(ctx context.Context, settings *domain.Settings) error
	GetAISettingsFn  func(ctx context.Context, teamID string) (*domain.AISettings, error)
	SaveAISettingsFn func(ctx context.Context, teamID string, settings *domain.AISettings) error
}

var _ driven.SettingsStore = (*SettingsStore)(nil)

func (m *SettingsStore) GetSettings(ctx context.Context, teamID string) (*domain.Settings, error) {
	if m.GetSettingsFn != nil {
		return m.GetSettingsFn(ctx, teamID)
	}
	return nil, domain.ErrNotFound
}

func (m *SettingsStore) SaveSettings(ctx context.Context, settings *domain.Settings) error {
	if m.SaveSettingsFn != nil {
		return m.SaveSettingsFn(ctx, settings)
	}
	return nil
}

func (m *SettingsStore) GetAISettings(ctx context.Context, teamID string) (*domain.AISettings, error) {
	if m.GetAISettingsFn != nil {
		return m.GetAISettingsFn(ctx, teamID)
	}
	return nil, domain.ErrNotFound
}

func (m *SettingsStore) SaveAISettings(ctx context.Context, teamID string, settings *domain.AISettings) error {
	if m.SaveAISettingsFn != nil {
		return m.SaveAISettingsFn(ctx, teamID, settings)
	}
	return nil
}

// UserStore is a function-field mock of the user store port.
type UserStore struct {
	SaveFn       func(ctx context.Context, user *domain.User) error
	GetFn        func(ctx context.Context, id string) (*domain.User, error)
	GetByEmailFn func(ctx context.Context, email string) (*domain.User, error)
	ListFn       func(ctx context.Context, teamID string) ([]*domain.User, error)
	DeleteFn     func(ctx context.Context, id string) error
}

var _ driven.UserStore = (*UserStore)(nil)

func (m *UserStore) Save(ctx context.Context, user *domain.User) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, user)
	}
	return nil
}

func (m *UserStore) Get(ctx context.Context, id string) (*domain.User, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *UserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.GetByEmailFn != nil {
		return m.GetByEmailFn(ctx, email)
	}
	return nil, domain.ErrNotFound
}

func (m *UserStore) List(ctx context.Context, teamID string) ([]*domain.User, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, teamID)
	}
	return nil, nil
}

func (m *UserStore) Delete(ctx context.Context, id string) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	return nil
}

// SessionStore is a function-field mock of the session store port.
type SessionStore struct {
	SaveFn              func(ctx context.Context, session *domain.Session) error
	GetFn               func(ctx context.Context, id string) (*domain.Session, error)
	GetByTokenFn        func(ctx context.Context, token string) (*domain.Session, error)
	GetByRefreshTokenFn func(ctx context.Context, refreshToken string) (*domain.Session, error)
	DeleteFn            func(ctx context.Context, id string) error
	DeleteByUserFn      func(ctx context.Context, userID string) error
}

var _ driven.SessionStore = (*SessionStore)(nil)

func (m *SessionStore) Save(ctx context.Context, session *domain.Session) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, session)
	}
	return nil
}

func (m *SessionStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, id)
	}
	return nil, domain.ErrSessionNotFound
}

func (m *SessionStore) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	if m.GetByTokenFn != nil {
		return m.GetByTokenFn(ctx, token)
	}
	return nil, domain.ErrSessionNotFound
}

func (m *SessionStore) GetByRefreshToken(ctx context.Context, refreshToken string) (*domain.Session, error) {
	if m.GetByRefreshTokenFn != nil {
		return m.GetByRefreshTokenFn(ctx, refreshToken)
	}
	return nil, domain.ErrSessionNotFound
}

func (m *SessionStore) Delete(ctx context.Context, id string) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	return nil
}

func (m *SessionStore) DeleteByUser(ctx context.Context, userID string) error {
	if m.DeleteByUserFn != nil {
		return m.DeleteByUserFn(ctx, userID)
	}
	return nil
}
