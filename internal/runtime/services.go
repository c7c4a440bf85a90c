package runtime

import (
	"context"
	"sync"

	"github.com/fairsailau/conganew/internal/core/domain"
	"github.com/fairsailau/conganew/internal/core/ports/driven"
)

// Services holds references to dynamically configurable services.
// The AI fallback client can be updated at runtime via the settings API.
// Thread-safe for concurrent access.
type Services struct {
	mu sync.RWMutex

	// Config tracks capability flags
	config *domain.RuntimeConfig

	// Dynamic services (can be nil, updated at runtime)
	fallback driven.AIFallback
}

// NewServices creates a new Services registry
func NewServices(config *domain.RuntimeConfig) *Services {
	return &Services{
		config: config,
	}
}

// Config returns the runtime configuration
func (s *Services) Config() *domain.RuntimeConfig {
	return s.config
}

// Fallback returns the current AI fallback client (may be nil)
func (s *Services) Fallback() driven.AIFallback {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fallback
}

// SetFallback updates the AI fallback client.
// Closes the old client if present. Updates config flags.
func (s *Services) SetFallback(svc driven.AIFallback) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fallback != nil {
		_ = s.fallback.Close()
	}

	s.fallback = svc
	s.config.SetAIFallbackAvailable(svc != nil)
}

// ValidateAndSetFallback validates connectivity before setting the client
func (s *Services) ValidateAndSetFallback(ctx context.Context, svc driven.AIFallback) error {
	if svc == nil {
		s.SetFallback(nil)
		return nil
	}

	if err := svc.Ping(ctx); err != nil {
		_ = svc.Close()
		return err
	}

	s.SetFallback(svc)
	return nil
}

// Close shuts down all services
func (s *Services) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fallback != nil {
		_ = s.fallback.Close()
		s.fallback = nil
	}
	s.config.SetAIFallbackAvailable(false)
	return nil
}
