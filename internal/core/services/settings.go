package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fairsailau/conganew/internal/core/domain"
	"github.com/fairsailau/conganew/internal/core/ports/driven"
	"github.com/fairsailau/conganew/internal/core/ports/driving"
	"github.com/fairsailau/conganew/internal/runtime"
)

// Ensure settingsService implements SettingsService
var _ driving.SettingsService = (*settingsService)(nil)

// settingsService manages team settings and the runtime AI fallback
// configuration. Saving AI settings swaps the active client without a
// restart.
type settingsService struct {
	store   driven.SettingsStore
	factory driven.AIServiceFactory
	runtime *runtime.Services
	logger  *slog.Logger
}

// SettingsServiceConfig wires the settings service.
type SettingsServiceConfig struct {
	Store   driven.SettingsStore
	Factory driven.AIServiceFactory
	Runtime *runtime.Services
	Logger  *slog.Logger
}

// NewSettingsService creates a new SettingsService
func NewSettingsService(cfg SettingsServiceConfig) driving.SettingsService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &settingsService{
		store:   cfg.Store,
		factory: cfg.Factory,
		runtime: cfg.Runtime,
		logger:  logger,
	}
}

// GetSettings returns team settings, defaults on first read
func (s *settingsService) GetSettings(ctx context.Context, teamID string) (*domain.Settings, error) {
	settings, err := s.store.GetSettings(ctx, teamID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.DefaultSettings(teamID), nil
	}
	if err != nil {
		return nil, err
	}
	return settings, nil
}

// SaveSettings validates and persists team settings
func (s *settingsService) SaveSettings(ctx context.Context, settings *domain.Settings) error {
	if settings == nil || settings.TeamID == "" {
		return domain.ErrInvalidInput
	}
	if err := settings.Validate(); err != nil {
		return err
	}
	settings.UpdatedAt = time.Now()
	return s.store.SaveSettings(ctx, settings)
}

// GetAISettings returns AI fallback settings with key material redacted
func (s *settingsService) GetAISettings(ctx context.Context, teamID string) (*domain.AISettings, error) {
	settings, err := s.store.GetAISettings(ctx, teamID)
	if errors.Is(err, domain.ErrNotFound) {
		return &domain.AISettings{TeamID: teamID}, nil
	}
	if err != nil {
		return nil, err
	}
	return settings.Redacted(), nil
}

// SaveAISettings persists AI fallback settings and swaps the active
// client. Clearing the provider disables the fallback.
func (s *settingsService) SaveAISettings(ctx context.Context, teamID string, settings *domain.AISettings) error {
	if settings == nil {
		return domain.ErrInvalidInput
	}
	settings.TeamID = teamID
	settings.UpdatedAt = time.Now()

	client, err := s.factory.CreateFallback(settings)
	if err != nil {
		return fmt.Errorf("build fallback client: %w", err)
	}

	if err := s.runtime.ValidateAndSetFallback(ctx, client); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrServiceUnavailable, err)
	}

	if err := s.store.SaveAISettings(ctx, teamID, settings); err != nil {
		return fmt.Errorf("save ai settings: %w", err)
	}

	s.logger.Info("ai fallback reconfigured",
		"team_id", teamID,
		"provider", settings.Provider,
		"enabled", client != nil,
	)
	return nil
}

// TestAISettings builds a throwaway client from the settings and pings it
func (s *settingsService) TestAISettings(ctx context.Context, settings *domain.AISettings) error {
	client, err := s.factory.CreateFallback(settings)
	if err != nil {
		return err
	}
	if client == nil {
		return domain.ErrAdapterUnavailable
	}
	defer client.Close()
	return client.Ping(ctx)
}
