package domain

import "sync"

// RuntimeConfig tracks which services are available at runtime.
// This is determined at startup and can be updated dynamically for the AI
// fallback service. Thread-safe for concurrent access.
type RuntimeConfig struct {
	mu sync.RWMutex

	// Static (set at startup, read-only)
	SessionBackend string // "redis" or "postgres"
	QueueBackend   string // "redis" or "postgres"

	// Dynamic capability flags (updated when the AI fallback changes)
	aiFallbackAvailable bool
}

// NewRuntimeConfig creates a new RuntimeConfig with initial values
func NewRuntimeConfig(sessionBackend, queueBackend string) *RuntimeConfig {
	return &RuntimeConfig{
		SessionBackend: sessionBackend,
		QueueBackend:   queueBackend,
	}
}

// AIFallbackAvailable returns whether the AI fallback service is available
func (c *RuntimeConfig) AIFallbackAvailable() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.aiFallbackAvailable
}

// SetAIFallbackAvailable updates the AI fallback availability flag
func (c *RuntimeConfig) SetAIFallbackAvailable(available bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aiFallbackAvailable = available
}

// EffectiveUseAIFallback resolves the per-run flag against runtime
// availability: options can only enable what is actually configured.
func (c *RuntimeConfig) EffectiveUseAIFallback(requested bool) bool {
	return requested && c.AIFallbackAvailable()
}
