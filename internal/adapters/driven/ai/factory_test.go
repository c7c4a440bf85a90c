package ai

import (
	"testing"

	"github.com/fairsailau/conganew/internal/core/domain"
)

func TestFactory_CreateFallback_NilSettings(t *testing.T) {
	factory := NewFactory()

	svc, err := factory.CreateFallback(nil)
	if err != nil {
		t.Errorf("expected no error for nil settings, got %v", err)
	}
	if svc != nil {
		t.Error("expected nil client for nil settings")
	}
}

func TestFactory_CreateFallback_NotConfigured(t *testing.T) {
	factory := NewFactory()

	svc, err := factory.CreateFallback(&domain.AISettings{})
	if err != nil {
		t.Errorf("expected no error for unconfigured settings, got %v", err)
	}
	if svc != nil {
		t.Error("expected nil client for unconfigured settings")
	}
}

func TestFactory_CreateFallback_Box(t *testing.T) {
	factory := NewFactory()

	svc, err := factory.CreateFallback(&domain.AISettings{
		Provider: domain.AIProviderBox,
		APIKey:   "tok",
	})
	if err != nil {
		t.Errorf("expected no error for Box, got %v", err)
	}
	if svc == nil {
		t.Error("expected non-nil client for Box")
	}
}

func TestFactory_CreateFallback_OpenAI(t *testing.T) {
	factory := NewFactory()

	svc, err := factory.CreateFallback(&domain.AISettings{
		Provider: domain.AIProviderOpenAI,
		APIKey:   "sk-test",
		Model:    "gpt-4o-mini",
	})
	if err != nil {
		t.Errorf("expected no error for OpenAI, got %v", err)
	}
	if svc == nil {
		t.Error("expected non-nil client for OpenAI")
	}
}

func TestFactory_CreateFallback_InvalidProvider(t *testing.T) {
	factory := NewFactory()

	_, err := factory.CreateFallback(&domain.AISettings{
		Provider: "invalid-provider",
		APIKey:   "key",
	})
	if err == nil {
		t.Error("expected error for invalid provider")
	}
}
