package domain

import "time"

// AIProvider identifies the AI fallback provider
type AIProvider string

const (
	AIProviderBox    AIProvider = "box"
	AIProviderOpenAI AIProvider = "openai"
	AIProviderNone   AIProvider = ""
)

// Settings holds team-wide conversion configuration
type Settings struct {
	TeamID string `json:"team_id"`

	// Conversion defaults
	DefaultValidationLevel ValidationLevel `json:"default_validation_level"`
	UseAIFallback          bool            `json:"use_ai_fallback"`
	PreserveFormatting     bool            `json:"preserve_formatting"`

	// Grammar extension
	CustomRulesPath string `json:"custom_rules_path,omitempty"`

	// Job retention
	JobRetentionHours int `json:"job_retention_hours"`

	// Metadata
	UpdatedAt time.Time `json:"updated_at"`
	UpdatedBy string    `json:"updated_by"` // User ID
}

// DefaultSettings returns sensible defaults for a new team
func DefaultSettings(teamID string) *Settings {
	return &Settings{
		TeamID:                 teamID,
		DefaultValidationLevel: ValidationLevelStandard,
		UseAIFallback:          false,
		PreserveFormatting:     true,
		JobRetentionHours:      24 * 7,
		UpdatedAt:              time.Now(),
	}
}

// Validate checks settings invariants
func (s *Settings) Validate() error {
	if !s.DefaultValidationLevel.IsValid() {
		return ErrInvalidInput
	}
	if s.JobRetentionHours < 1 {
		return ErrInvalidInput
	}
	return nil
}

// Options derives the pipeline configuration value from these settings.
func (s *Settings) Options() ConversionOptions {
	return ConversionOptions{
		UseAIFallback:      s.UseAIFallback,
		ValidationLevel:    s.DefaultValidationLevel,
		PreserveFormatting: s.PreserveFormatting,
	}
}

// AISettings holds AI fallback provider configuration.
// The API key is stored encrypted at rest; it never appears in list
// responses.
type AISettings struct {
	TeamID   string     `json:"team_id"`
	Provider AIProvider `json:"provider"`
	Model    string     `json:"model,omitempty"`
	BaseURL  string     `json:"base_url,omitempty"`
	APIKey   string     `json:"api_key,omitempty"`

	// MinConfidence is the floor below which suggestions are treated as
	// declines (0 selects the adapter default)
	MinConfidence float64 `json:"min_confidence,omitempty"`

	// TimeoutSeconds bounds each fallback call (0 selects the default)
	TimeoutSeconds int `json:"timeout_seconds,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
	UpdatedBy string    `json:"updated_by"`
}

// IsConfigured reports whether the settings are sufficient to build a client
func (s *AISettings) IsConfigured() bool {
	if s == nil || s.Provider == AIProviderNone {
		return false
	}
	return s.APIKey != "" || s.BaseURL != ""
}

// Redacted returns a copy safe to return from the API (no key material)
func (s *AISettings) Redacted() *AISettings {
	if s == nil {
		return nil
	}
	c := *s
	if c.APIKey != "" {
		c.APIKey = "********"
	}
	return &c
}
