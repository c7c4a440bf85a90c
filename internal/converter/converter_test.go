package converter

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/fairsailau/conganew/internal/core/domain"
	"github.com/fairsailau/conganew/internal/core/ports/driven"
	"github.com/fairsailau/conganew/internal/core/ports/driven/mocks"
	"github.com/fairsailau/conganew/internal/grammar"
	"github.com/fairsailau/conganew/internal/parser"
)

func convert(t *testing.T, c *Converter, text string, opts domain.ConversionOptions) *domain.SectionResult {
	t.Helper()
	section := domain.DocumentSection{Text: text}
	tags := parser.New(grammar.DefaultRegistry()).Parse(section)
	return c.ConvertSection(context.Background(), section, tags, opts)
}

func newConverter(fallback driven.AIFallback) *Converter {
	return New(Config{
		Registry: grammar.DefaultRegistry(),
		Fallback: fallback,
	})
}

func TestConvertScenario(t *testing.T) {
	c := newConverter(nil)
	text := "Dear {!Contact.FirstName}, [IF {!Amount}>100]Special offer![ENDIF]"

	result := convert(t, c, text, domain.DefaultConversionOptions())

	want := "Dear {{contact.firstName}}, {{#if amount>100}}Special offer!{{/if}}"
	if result.ConvertedText != want {
		t.Errorf("converted = %q\nwant        %q", result.ConvertedText, want)
	}
	if len(result.Results) != 2 {
		t.Fatalf("got %d results, want 2", len(result.Results))
	}
	for i, r := range result.Results {
		if r.Status != domain.StatusConverted {
			t.Errorf("result %d status = %s, want converted (%s)", i, r.Status, r.Note)
		}
	}
}

func TestConvertOneResultPerTag(t *testing.T) {
	c := newConverter(nil)
	text := "{!A} mid &=B end {TABLE group=C}{!D}{END C} {unknowable} [IF x]y[ENDIF]"
	section := domain.DocumentSection{Text: text}
	tags := parser.New(grammar.DefaultRegistry()).Parse(section)

	result := c.ConvertSection(context.Background(), section, tags, domain.DefaultConversionOptions())

	if len(result.Results) != len(tags) {
		t.Errorf("results = %d, tags = %d; must be equal", len(result.Results), len(tags))
	}
	if len(result.TagSpanMap) != len(tags) {
		t.Errorf("span map entries = %d, tags = %d", len(result.TagSpanMap), len(tags))
	}
}

func TestConvertSpanMap(t *testing.T) {
	c := newConverter(nil)
	text := "Hi {!Contact.FirstName}!"

	result := convert(t, c, text, domain.DefaultConversionOptions())

	if len(result.TagSpanMap) != 1 {
		t.Fatalf("span map entries = %d, want 1", len(result.TagSpanMap))
	}
	entry := result.TagSpanMap[0]
	if got := text[entry.Source.Start:entry.Source.End]; got != "{!Contact.FirstName}" {
		t.Errorf("source span covers %q", got)
	}
	if got := result.ConvertedText[entry.Target.Start:entry.Target.End]; got != "{{contact.firstName}}" {
		t.Errorf("target span covers %q", got)
	}
}

func TestConvertUnknownPassThrough(t *testing.T) {
	c := newConverter(nil)
	text := "before {IF unquoted} after"

	result := convert(t, c, text, domain.DefaultConversionOptions())

	if len(result.Results) != 1 {
		t.Fatalf("got %d results, want 1", len(result.Results))
	}
	r := result.Results[0]
	if r.Status != domain.StatusUnresolved {
		t.Errorf("status = %s, want unresolved", r.Status)
	}
	if r.TargetText != "{IF unquoted}" {
		t.Errorf("targetText = %q, want raw pass-through", r.TargetText)
	}
	if !strings.Contains(result.ConvertedText, "{IF unquoted}") {
		t.Errorf("raw text must appear verbatim in output: %q", result.ConvertedText)
	}
}

func TestConvertPartialRenderWarning(t *testing.T) {
	c := newConverter(nil)
	text := `{IF "Status" <> "Won" "open" "closed"}`

	result := convert(t, c, text, domain.DefaultConversionOptions())

	r := result.Results[0]
	if r.Status != domain.StatusConvertedWithWarning {
		t.Errorf("status = %s, want converted_with_warning", r.Status)
	}
	if r.Note == "" {
		t.Error("warning result must carry a note")
	}
	if !strings.Contains(result.ConvertedText, "{{!--") {
		t.Errorf("partial render should leave a marker comment: %q", result.ConvertedText)
	}
}

func TestConvertNestedUnresolvedDowngradesBlock(t *testing.T) {
	c := newConverter(nil)
	text := "[IF x]{IF unquoted}[ENDIF]"

	result := convert(t, c, text, domain.DefaultConversionOptions())

	if len(result.Results) != 1 {
		t.Fatalf("got %d results, want 1 (nested tags are not top-level)", len(result.Results))
	}
	r := result.Results[0]
	if r.Status != domain.StatusConvertedWithWarning {
		t.Errorf("status = %s, want converted_with_warning", r.Status)
	}
	if !strings.Contains(result.ConvertedText, "{IF unquoted}") {
		t.Errorf("nested unresolved tag must pass through: %q", result.ConvertedText)
	}
}

func TestConvertAIFallbackAccepted(t *testing.T) {
	fallback := &mocks.AIFallback{
		SuggestConversionFn: func(ctx context.Context, req driven.FallbackRequest) (*driven.FallbackResponse, error) {
			return &driven.FallbackResponse{SuggestedText: "{{custom}}", Confidence: 0.9}, nil
		},
	}
	c := newConverter(fallback)
	opts := domain.DefaultConversionOptions()
	opts.UseAIFallback = true

	result := convert(t, c, "x {IF unquoted} y", opts)

	r := result.Results[0]
	if r.Status != domain.StatusConvertedWithWarning {
		t.Errorf("status = %s, want converted_with_warning", r.Status)
	}
	if r.TargetText != "{{custom}}" {
		t.Errorf("targetText = %q, want {{custom}}", r.TargetText)
	}
	if len(fallback.Requests) != 1 {
		t.Fatalf("fallback called %d times, want 1", len(fallback.Requests))
	}
	if fallback.Requests[0].RawTagText != "{IF unquoted}" {
		t.Errorf("fallback request rawTagText = %q", fallback.Requests[0].RawTagText)
	}
}

func TestConvertAIFallbackLowConfidence(t *testing.T) {
	fallback := &mocks.AIFallback{
		SuggestConversionFn: func(ctx context.Context, req driven.FallbackRequest) (*driven.FallbackResponse, error) {
			return &driven.FallbackResponse{SuggestedText: "{{guess}}", Confidence: 0.2}, nil
		},
	}
	c := newConverter(fallback)
	opts := domain.DefaultConversionOptions()
	opts.UseAIFallback = true

	result := convert(t, c, "{IF unquoted}", opts)

	r := result.Results[0]
	if r.Status != domain.StatusUnresolved {
		t.Errorf("status = %s, want unresolved on low confidence", r.Status)
	}
	if r.TargetText != "{IF unquoted}" {
		t.Errorf("targetText = %q, want raw pass-through", r.TargetText)
	}
}

func TestConvertAIFallbackError(t *testing.T) {
	fallback := &mocks.AIFallback{
		SuggestConversionFn: func(ctx context.Context, req driven.FallbackRequest) (*driven.FallbackResponse, error) {
			return nil, errors.New("upstream unavailable")
		},
	}
	c := newConverter(fallback)
	opts := domain.DefaultConversionOptions()
	opts.UseAIFallback = true

	result := convert(t, c, "{IF unquoted}", opts)

	if result.Results[0].Status != domain.StatusUnresolved {
		t.Errorf("adapter error must degrade to pass-through, got %s", result.Results[0].Status)
	}
}

func TestConvertAIFallbackTimeout(t *testing.T) {
	fallback := &mocks.AIFallback{
		SuggestConversionFn: func(ctx context.Context, req driven.FallbackRequest) (*driven.FallbackResponse, error) {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Second):
				return &driven.FallbackResponse{SuggestedText: "{{late}}", Confidence: 0.99}, nil
			}
		},
	}
	c := New(Config{
		Registry:        grammar.DefaultRegistry(),
		Fallback:        fallback,
		FallbackTimeout: 10 * time.Millisecond,
	})
	opts := domain.DefaultConversionOptions()
	opts.UseAIFallback = true

	result := convert(t, c, "{IF unquoted}", opts)

	if result.Results[0].Status != domain.StatusUnresolved {
		t.Errorf("timeout must degrade to pass-through, got %s", result.Results[0].Status)
	}
}

func TestConvertFallbackDisabledByOptions(t *testing.T) {
	fallback := &mocks.AIFallback{
		SuggestConversionFn: func(ctx context.Context, req driven.FallbackRequest) (*driven.FallbackResponse, error) {
			return &driven.FallbackResponse{SuggestedText: "{{custom}}", Confidence: 0.9}, nil
		},
	}
	c := newConverter(fallback)

	result := convert(t, c, "{IF unquoted}", domain.DefaultConversionOptions())

	if result.Results[0].Status != domain.StatusUnresolved {
		t.Errorf("fallback must not run when options disable it")
	}
	if len(fallback.Requests) != 0 {
		t.Errorf("fallback called %d times, want 0", len(fallback.Requests))
	}
}

func TestConvertEmptySection(t *testing.T) {
	c := newConverter(nil)

	result := convert(t, c, "no tags at all", domain.DefaultConversionOptions())

	if result.ConvertedText != "no tags at all" {
		t.Errorf("converted = %q", result.ConvertedText)
	}
	if len(result.Results) != 0 {
		t.Errorf("got %d results, want 0", len(result.Results))
	}
}
