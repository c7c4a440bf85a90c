package driving

import (
	"context"

	"github.com/fairsailau/conganew/internal/core/domain"
)

// SettingsService manages team conversion settings and the AI fallback
// configuration. Saving AI settings rebuilds the fallback client at
// runtime; no restart is required.
type SettingsService interface {
	// GetSettings returns team settings, creating defaults on first read
	GetSettings(ctx context.Context, teamID string) (*domain.Settings, error)

	// SaveSettings validates and persists team settings
	SaveSettings(ctx context.Context, settings *domain.Settings) error

	// GetAISettings returns the AI fallback settings with the key redacted
	GetAISettings(ctx context.Context, teamID string) (*domain.AISettings, error)

	// SaveAISettings persists AI fallback settings and swaps the active
	// fallback client
	SaveAISettings(ctx context.Context, teamID string, settings *domain.AISettings) error

	// TestAISettings pings the provider described by the settings
	TestAISettings(ctx context.Context, settings *domain.AISettings) error
}
