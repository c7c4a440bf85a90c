package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/fairsailau/conganew/internal/core/domain"
	"github.com/fairsailau/conganew/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.SettingsStore = (*SettingsStore)(nil)

// SettingsStore implements driven.SettingsStore using PostgreSQL.
// The AI API key is encrypted with the SecretEncryptor before it touches
// the database.
type SettingsStore struct {
	db        *DB
	encryptor *SecretEncryptor
}

// NewSettingsStore creates a new SettingsStore
func NewSettingsStore(db *DB, encryptor *SecretEncryptor) *SettingsStore {
	return &SettingsStore{db: db, encryptor: encryptor}
}

// GetSettings retrieves settings for a team
func (s *SettingsStore) GetSettings(ctx context.Context, teamID string) (*domain.Settings, error) {
	query := `
		SELECT team_id, default_validation_level, use_ai_fallback, preserve_formatting,
			   custom_rules_path, job_retention_hours, updated_at, updated_by
		FROM settings
		WHERE team_id = $1
	`

	var settings domain.Settings
	err := s.db.QueryRowContext(ctx, query, teamID).Scan(
		&settings.TeamID,
		&settings.DefaultValidationLevel,
		&settings.UseAIFallback,
		&settings.PreserveFormatting,
		&settings.CustomRulesPath,
		&settings.JobRetentionHours,
		&settings.UpdatedAt,
		&settings.UpdatedBy,
	)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

// SaveSettings persists team settings
func (s *SettingsStore) SaveSettings(ctx context.Context, settings *domain.Settings) error {
	query := `
		INSERT INTO settings (team_id, default_validation_level, use_ai_fallback, preserve_formatting,
							  custom_rules_path, job_retention_hours, updated_at, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (team_id) DO UPDATE SET
			default_validation_level = EXCLUDED.default_validation_level,
			use_ai_fallback = EXCLUDED.use_ai_fallback,
			preserve_formatting = EXCLUDED.preserve_formatting,
			custom_rules_path = EXCLUDED.custom_rules_path,
			job_retention_hours = EXCLUDED.job_retention_hours,
			updated_at = EXCLUDED.updated_at,
			updated_by = EXCLUDED.updated_by
	`

	_, err := s.db.ExecContext(ctx, query,
		settings.TeamID,
		string(settings.DefaultValidationLevel),
		settings.UseAIFallback,
		settings.PreserveFormatting,
		settings.CustomRulesPath,
		settings.JobRetentionHours,
		settings.UpdatedAt,
		settings.UpdatedBy,
	)
	return err
}

// GetAISettings retrieves AI fallback settings with the API key decrypted
func (s *SettingsStore) GetAISettings(ctx context.Context, teamID string) (*domain.AISettings, error) {
	query := `
		SELECT team_id, provider, model, base_url, api_key_enc,
			   min_confidence, timeout_seconds, updated_at, updated_by
		FROM ai_settings
		WHERE team_id = $1
	`

	var settings domain.AISettings
	var apiKeyEnc []byte

	err := s.db.QueryRowContext(ctx, query, teamID).Scan(
		&settings.TeamID,
		&settings.Provider,
		&settings.Model,
		&settings.BaseURL,
		&apiKeyEnc,
		&settings.MinConfidence,
		&settings.TimeoutSeconds,
		&settings.UpdatedAt,
		&settings.UpdatedBy,
	)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if len(apiKeyEnc) > 0 {
		key, err := s.encryptor.DecryptString(apiKeyEnc)
		if err != nil {
			return nil, fmt.Errorf("decrypt api key: %w", err)
		}
		settings.APIKey = key
	}
	return &settings, nil
}

// SaveAISettings persists AI fallback settings, encrypting the API key
func (s *SettingsStore) SaveAISettings(ctx context.Context, teamID string, settings *domain.AISettings) error {
	var apiKeyEnc []byte
	if settings.APIKey != "" {
		blob, err := s.encryptor.EncryptString(settings.APIKey)
		if err != nil {
			return fmt.Errorf("encrypt api key: %w", err)
		}
		apiKeyEnc = blob
	}

	query := `
		INSERT INTO ai_settings (team_id, provider, model, base_url, api_key_enc,
								 min_confidence, timeout_seconds, updated_at, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (team_id) DO UPDATE SET
			provider = EXCLUDED.provider,
			model = EXCLUDED.model,
			base_url = EXCLUDED.base_url,
			api_key_enc = EXCLUDED.api_key_enc,
			min_confidence = EXCLUDED.min_confidence,
			timeout_seconds = EXCLUDED.timeout_seconds,
			updated_at = EXCLUDED.updated_at,
			updated_by = EXCLUDED.updated_by
	`

	if settings.UpdatedAt.IsZero() {
		settings.UpdatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, query,
		teamID,
		string(settings.Provider),
		settings.Model,
		settings.BaseURL,
		apiKeyEnc,
		settings.MinConfidence,
		settings.TimeoutSeconds,
		settings.UpdatedAt,
		settings.UpdatedBy,
	)
	return err
}
