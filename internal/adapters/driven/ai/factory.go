package ai

import (
	"fmt"

	"github.com/fairsailau/conganew/internal/core/domain"
	"github.com/fairsailau/conganew/internal/core/ports/driven"
)

// Ensure Factory implements AIServiceFactory
var _ driven.AIServiceFactory = (*Factory)(nil)

// Factory creates AI fallback clients based on configuration
type Factory struct{}

// NewFactory creates a new AI service factory
func NewFactory() *Factory {
	return &Factory{}
}

// CreateFallback creates a fallback client from settings.
// Returns nil, nil when the settings are not configured.
func (f *Factory) CreateFallback(settings *domain.AISettings) (driven.AIFallback, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderBox:
		return NewBoxFallback(settings.APIKey, settings.Model, settings.BaseURL)
	case domain.AIProviderOpenAI:
		return NewOpenAIFallback(settings.APIKey, settings.Model, settings.BaseURL)
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidProvider, settings.Provider)
	}
}
