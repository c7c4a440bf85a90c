package mocks

import (
	"github.com/fairsailau/conganew/internal/core/domain"
	"github.com/fairsailau/conganew/internal/core/ports/driven"
)

// AIServiceFactory is a function-field mock of the fallback factory port.
type AIServiceFactory struct {
	CreateFallbackFn func(settings *domain.AISettings) (driven.AIFallback, error)
}

var _ driven.AIServiceFactory = (*AIServiceFactory)(nil)

func (m *AIServiceFactory) CreateFallback(settings *domain.AISettings) (driven.AIFallback, error) {
	if m.CreateFallbackFn != nil {
		return m.CreateFallbackFn(settings)
	}
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}
	return &AIFallback{}, nil
}
