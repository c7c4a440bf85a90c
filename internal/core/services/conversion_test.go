package services

import (
	"context"
	"testing"

	"github.com/fairsailau/conganew/internal/core/domain"
	"github.com/fairsailau/conganew/internal/core/ports/driven"
	"github.com/fairsailau/conganew/internal/core/ports/driven/mocks"
	"github.com/fairsailau/conganew/internal/grammar"
	"github.com/fairsailau/conganew/internal/runtime"
)

func newConversionService(fallback driven.AIFallback) (*runtime.Services, *conversionService) {
	rt := runtime.NewServices(domain.NewRuntimeConfig("redis", "redis"))
	if fallback != nil {
		rt.SetFallback(fallback)
	}
	svc := NewConversionService(ConversionServiceConfig{
		Registry: grammar.DefaultRegistry(),
		Runtime:  rt,
	})
	return rt, svc.(*conversionService)
}

func TestConvertDocument(t *testing.T) {
	_, svc := newConversionService(nil)

	sections := []domain.DocumentSection{
		{Text: "Dear {!Contact.FirstName},"},
		{Text: "[IF {!Amount}>100]Special offer![ENDIF]"},
	}

	outcome, err := svc.ConvertDocument(context.Background(), "team-1", sections, domain.DefaultConversionOptions())
	if err != nil {
		t.Fatalf("ConvertDocument: %v", err)
	}

	if len(outcome.Sections) != 2 {
		t.Fatalf("got %d sections, want 2", len(outcome.Sections))
	}
	if outcome.Sections[0].ConvertedText != "Dear {{contact.firstName}}," {
		t.Errorf("section 0 = %q", outcome.Sections[0].ConvertedText)
	}
	if outcome.Sections[1].ConvertedText != "{{#if amount>100}}Special offer!{{/if}}" {
		t.Errorf("section 1 = %q", outcome.Sections[1].ConvertedText)
	}
	if !outcome.Report.Passed() {
		t.Errorf("report should pass: %+v", outcome.Report)
	}
}

func TestConvertDocumentFallbackGatedByRuntime(t *testing.T) {
	// Fallback requested but not configured: the option is ignored.
	fallback := &mocks.AIFallback{}
	rt, svc := newConversionService(nil)
	rt.SetFallback(nil)

	opts := domain.DefaultConversionOptions()
	opts.UseAIFallback = true

	outcome, err := svc.ConvertDocument(context.Background(), "team-1",
		[]domain.DocumentSection{{Text: "{IF unquoted}"}}, opts)
	if err != nil {
		t.Fatalf("ConvertDocument: %v", err)
	}
	if len(fallback.Requests) != 0 {
		t.Errorf("fallback called despite being unavailable")
	}
	if len(outcome.Report.UnresolvedTags) != 1 {
		t.Errorf("unresolved = %d, want 1", len(outcome.Report.UnresolvedTags))
	}
}

func TestConvertDocumentFallbackUsedWhenAvailable(t *testing.T) {
	fallback := &mocks.AIFallback{
		SuggestConversionFn: func(ctx context.Context, req driven.FallbackRequest) (*driven.FallbackResponse, error) {
			return &driven.FallbackResponse{SuggestedText: "{{custom}}", Confidence: 0.95}, nil
		},
	}
	_, svc := newConversionService(fallback)

	opts := domain.DefaultConversionOptions()
	opts.UseAIFallback = true

	outcome, err := svc.ConvertDocument(context.Background(), "team-1",
		[]domain.DocumentSection{{Text: "{IF unquoted}"}}, opts)
	if err != nil {
		t.Fatalf("ConvertDocument: %v", err)
	}

	if len(fallback.Requests) != 1 {
		t.Fatalf("fallback called %d times, want 1", len(fallback.Requests))
	}
	result := outcome.Sections[0].Results[0]
	if result.Status != domain.StatusConvertedWithWarning {
		t.Errorf("status = %s, want converted_with_warning", result.Status)
	}
	if result.TargetText != "{{custom}}" {
		t.Errorf("targetText = %q", result.TargetText)
	}
}

func TestListAndAddRules(t *testing.T) {
	_, svc := newConversionService(nil)

	before := len(svc.ListRules())
	err := svc.AddRule(&grammar.Rule{
		ID:       "page-break",
		Kind:     domain.TagKindFormatting,
		Priority: 10,
		Pattern:  `\{PAGEBREAK\}`,
		Template: "{{pageBreak}}",
	})
	if err != nil {
		t.Fatalf("AddRule: %v", err)
	}
	if len(svc.ListRules()) != before+1 {
		t.Errorf("rule count did not grow")
	}

	if err := svc.AddRule(&grammar.Rule{ID: "page-break", Pattern: `x`, Template: "y"}); err == nil {
		t.Error("duplicate rule ID should fail")
	}
}
