package driven

import "github.com/fairsailau/conganew/internal/core/domain"

// AIServiceFactory creates AI fallback clients from runtime settings.
type AIServiceFactory interface {
	// CreateFallback creates a fallback client from settings.
	// Returns nil, nil if settings are not configured.
	CreateFallback(settings *domain.AISettings) (AIFallback, error)
}
