package services

import (
	"context"
	"errors"
	"testing"

	"github.com/fairsailau/conganew/internal/core/domain"
	"github.com/fairsailau/conganew/internal/core/ports/driven"
	"github.com/fairsailau/conganew/internal/core/ports/driven/mocks"
	"github.com/fairsailau/conganew/internal/runtime"
)

func newSettingsFixture(factory driven.AIServiceFactory) (*mocks.SettingsStore, *runtime.Services, *settingsService) {
	store := &mocks.SettingsStore{}
	rt := runtime.NewServices(domain.NewRuntimeConfig("redis", "redis"))
	if factory == nil {
		factory = &mocks.AIServiceFactory{}
	}
	svc := NewSettingsService(SettingsServiceConfig{Store: store, Factory: factory, Runtime: rt})
	return store, rt, svc.(*settingsService)
}

func TestGetSettingsDefaults(t *testing.T) {
	_, _, svc := newSettingsFixture(nil)

	settings, err := svc.GetSettings(context.Background(), "team-1")
	if err != nil {
		t.Fatalf("GetSettings: %v", err)
	}
	if settings.DefaultValidationLevel != domain.ValidationLevelStandard {
		t.Errorf("default level = %s", settings.DefaultValidationLevel)
	}
	if settings.UseAIFallback {
		t.Error("fallback should default to off")
	}
}

func TestSaveSettingsValidates(t *testing.T) {
	_, _, svc := newSettingsFixture(nil)

	bad := domain.DefaultSettings("team-1")
	bad.JobRetentionHours = 0
	if err := svc.SaveSettings(context.Background(), bad); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("error = %v, want ErrInvalidInput", err)
	}
}

func TestGetAISettingsRedacted(t *testing.T) {
	store, _, svc := newSettingsFixture(nil)
	store.GetAISettingsFn = func(ctx context.Context, teamID string) (*domain.AISettings, error) {
		return &domain.AISettings{
			TeamID:   teamID,
			Provider: domain.AIProviderBox,
			APIKey:   "super-secret",
		}, nil
	}

	settings, err := svc.GetAISettings(context.Background(), "team-1")
	if err != nil {
		t.Fatalf("GetAISettings: %v", err)
	}
	if settings.APIKey == "super-secret" {
		t.Error("API key must be redacted in reads")
	}
}

func TestSaveAISettingsSwapsFallback(t *testing.T) {
	client := &mocks.AIFallback{}
	factory := &mocks.AIServiceFactory{
		CreateFallbackFn: func(settings *domain.AISettings) (driven.AIFallback, error) {
			if !settings.IsConfigured() {
				return nil, nil
			}
			return client, nil
		},
	}
	store, rt, svc := newSettingsFixture(factory)

	saved := false
	store.SaveAISettingsFn = func(ctx context.Context, teamID string, settings *domain.AISettings) error {
		saved = true
		return nil
	}

	err := svc.SaveAISettings(context.Background(), "team-1", &domain.AISettings{
		Provider: domain.AIProviderBox,
		APIKey:   "key",
	})
	if err != nil {
		t.Fatalf("SaveAISettings: %v", err)
	}
	if !saved {
		t.Error("settings were not persisted")
	}
	if rt.Fallback() != client {
		t.Error("runtime fallback was not swapped")
	}
	if !rt.Config().AIFallbackAvailable() {
		t.Error("availability flag not set")
	}

	// Clearing the provider disables the fallback.
	if err := svc.SaveAISettings(context.Background(), "team-1", &domain.AISettings{}); err != nil {
		t.Fatalf("SaveAISettings clear: %v", err)
	}
	if rt.Config().AIFallbackAvailable() {
		t.Error("availability flag should clear")
	}
}

func TestSaveAISettingsUnreachableProvider(t *testing.T) {
	client := &mocks.AIFallback{
		PingFn: func(ctx context.Context) error { return errors.New("connection refused") },
	}
	factory := &mocks.AIServiceFactory{
		CreateFallbackFn: func(settings *domain.AISettings) (driven.AIFallback, error) {
			return client, nil
		},
	}
	store, rt, svc := newSettingsFixture(factory)

	store.SaveAISettingsFn = func(ctx context.Context, teamID string, settings *domain.AISettings) error {
		t.Error("unreachable provider must not be persisted")
		return nil
	}

	err := svc.SaveAISettings(context.Background(), "team-1", &domain.AISettings{
		Provider: domain.AIProviderBox,
		APIKey:   "key",
	})
	if !errors.Is(err, domain.ErrServiceUnavailable) {
		t.Errorf("error = %v, want ErrServiceUnavailable", err)
	}
	if rt.Config().AIFallbackAvailable() {
		t.Error("failed swap must not mark the fallback available")
	}
}

func TestTestAISettings(t *testing.T) {
	pinged := false
	factory := &mocks.AIServiceFactory{
		CreateFallbackFn: func(settings *domain.AISettings) (driven.AIFallback, error) {
			return &mocks.AIFallback{PingFn: func(ctx context.Context) error {
				pinged = true
				return nil
			}}, nil
		},
	}
	_, _, svc := newSettingsFixture(factory)

	if err := svc.TestAISettings(context.Background(), &domain.AISettings{Provider: domain.AIProviderBox}); err != nil {
		t.Fatalf("TestAISettings: %v", err)
	}
	if !pinged {
		t.Error("provider was not pinged")
	}
}
