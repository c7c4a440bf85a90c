package driven

import (
	"context"

	"github.com/fairsailau/conganew/internal/core/domain"
)

// SettingsStore persists team and AI settings
type SettingsStore interface {
	// GetSettings retrieves settings for a team
	GetSettings(ctx context.Context, teamID string) (*domain.Settings, error)

	// SaveSettings persists team settings
	SaveSettings(ctx context.Context, settings *domain.Settings) error

	// GetAISettings retrieves AI fallback settings for a team.
	// The API key comes back decrypted.
	GetAISettings(ctx context.Context, teamID string) (*domain.AISettings, error)

	// SaveAISettings persists AI fallback settings.
	// The API key is encrypted at rest.
	SaveAISettings(ctx context.Context, teamID string, settings *domain.AISettings) error
}
