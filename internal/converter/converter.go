package converter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/fairsailau/conganew/internal/core/domain"
	"github.com/fairsailau/conganew/internal/core/ports/driven"
	"github.com/fairsailau/conganew/internal/grammar"
	"github.com/fairsailau/conganew/internal/parser"
)

const (
	// DefaultFallbackTimeout bounds one AI fallback call
	DefaultFallbackTimeout = 10 * time.Second

	// DefaultMinConfidence is the floor below which an AI suggestion is
	// treated as a decline
	DefaultMinConfidence = 0.7

	// contextWindow is how much surrounding text travels with a fallback request
	contextWindow = 80

	targetDialectHint = "Box DocGen (handlebars)"
)

// Config configures a Converter.
type Config struct {
	Registry *grammar.Registry

	// Fallback is optional; nil disables AI assistance regardless of options
	Fallback driven.AIFallback

	FallbackTimeout time.Duration
	MinConfidence   float64

	Logger *slog.Logger
}

// Converter rewrites parsed tags into the target dialect and splices the
// converted text. One tag failing never aborts the rest of the document.
type Converter struct {
	registry        *grammar.Registry
	parser          *parser.Parser
	fallback        driven.AIFallback
	fallbackTimeout time.Duration
	minConfidence   float64
	logger          *slog.Logger
}

// New creates a converter. The registry is required; everything else has
// working defaults.
func New(cfg Config) *Converter {
	if cfg.FallbackTimeout <= 0 {
		cfg.FallbackTimeout = DefaultFallbackTimeout
	}
	if cfg.MinConfidence <= 0 {
		cfg.MinConfidence = DefaultMinConfidence
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Converter{
		registry:        cfg.Registry,
		parser:          parser.New(cfg.Registry),
		fallback:        cfg.Fallback,
		fallbackTimeout: cfg.FallbackTimeout,
		minConfidence:   cfg.MinConfidence,
		logger:          cfg.Logger,
	}
}

// ConvertSection converts one parsed section: exactly one result per tag,
// in tag order, plus the spliced text and the source→target span map.
func (c *Converter) ConvertSection(ctx context.Context, section domain.DocumentSection, tags []*domain.Tag, opts domain.ConversionOptions) *domain.SectionResult {
	text := section.Text
	results := make([]*domain.ConversionResult, 0, len(tags))

	var out strings.Builder
	spanMap := make([]domain.TagSpanEntry, 0, len(tags))
	prev := 0

	for _, tag := range tags {
		result := c.convertTag(ctx, text, tag, opts)
		results = append(results, result)

		out.WriteString(text[prev:tag.Span.Start])
		targetStart := out.Len()
		out.WriteString(result.TargetText)
		spanMap = append(spanMap, domain.TagSpanEntry{
			Source: tag.Span,
			Target: domain.Span{Start: targetStart, End: out.Len()},
		})
		prev = tag.Span.End
	}
	out.WriteString(text[prev:])

	return &domain.SectionResult{
		ConvertedText: out.String(),
		Tags:          tags,
		Results:       results,
		TagSpanMap:    spanMap,
	}
}

// convertTag produces the result for a single tag. Unknown tags go to the
// AI fallback when enabled, otherwise pass through unchanged.
func (c *Converter) convertTag(ctx context.Context, text string, tag *domain.Tag, opts domain.ConversionOptions) *domain.ConversionResult {
	if tag.IsUnknown() {
		if opts.UseAIFallback && c.fallback != nil {
			if result := c.suggestWithFallback(ctx, text, tag); result != nil {
				return result
			}
		}
		return passThrough(tag)
	}

	rule, err := c.registry.Get(tag.RuleID)
	if err != nil {
		// The tag was classified by a rule this registry no longer has.
		c.logger.Warn("rule missing for classified tag", "rule_id", tag.RuleID)
		return passThrough(tag)
	}

	operands := tag.Operands
	var bodyNote string
	if rule.HasBodyOperand() {
		operands, bodyNote = c.convertBody(ctx, operands, opts)
	}

	rendered, err := rule.Render(operands)
	switch {
	case err == nil && bodyNote == "":
		return &domain.ConversionResult{
			Status:     domain.StatusConverted,
			TargetText: rendered,
			RuleID:     rule.ID,
		}
	case err == nil:
		return &domain.ConversionResult{
			Status:     domain.StatusConvertedWithWarning,
			TargetText: rendered,
			RuleID:     rule.ID,
			Note:       bodyNote,
		}
	case errors.Is(err, domain.ErrPartialRender):
		note := err.Error()
		if bodyNote != "" {
			note = note + "; " + bodyNote
		}
		return &domain.ConversionResult{
			Status:     domain.StatusConvertedWithWarning,
			TargetText: rendered,
			RuleID:     rule.ID,
			Note:       note,
		}
	default:
		c.logger.Warn("rule render failed", "rule_id", rule.ID, "error", err)
		return passThrough(tag)
	}
}

// convertBody recursively converts the captured body of a block tag.
// Nested tags are leaf operands of the outer rule: they are converted in
// place here and never surface as top-level results. A nested tag that
// does not fully convert downgrades the outer tag to a warning.
func (c *Converter) convertBody(ctx context.Context, operands map[string]string, opts domain.ConversionOptions) (map[string]string, string) {
	body, ok := operands["body"]
	if !ok {
		return operands, ""
	}

	inner := c.ConvertSection(ctx, domain.DocumentSection{Text: body}, c.parser.Parse(domain.DocumentSection{Text: body}), opts)

	var degraded int
	for _, r := range inner.Results {
		if r.Status != domain.StatusConverted {
			degraded++
		}
	}

	converted := make(map[string]string, len(operands))
	for k, v := range operands {
		converted[k] = v
	}
	converted["body"] = inner.ConvertedText

	if degraded > 0 {
		return converted, fmt.Sprintf("%d nested tag(s) did not fully convert", degraded)
	}
	return converted, ""
}

// suggestWithFallback asks the AI adapter for a conversion. Any failure
// returns nil so the caller degrades to pass-through; adapter trouble is
// logged, never surfaced as a document error.
func (c *Converter) suggestWithFallback(ctx context.Context, text string, tag *domain.Tag) *domain.ConversionResult {
	ctx, cancel := context.WithTimeout(ctx, c.fallbackTimeout)
	defer cancel()

	resp, err := c.fallback.SuggestConversion(ctx, driven.FallbackRequest{
		RawTagText:        tag.RawText,
		ContextBefore:     contextBefore(text, tag.Span.Start),
		ContextAfter:      contextAfter(text, tag.Span.End),
		TargetDialectHint: targetDialectHint,
	})
	if err != nil {
		// An explicit decline is a normal outcome, not adapter trouble.
		if !errors.Is(err, domain.ErrLowConfidence) {
			c.logger.Warn("ai fallback failed", "tag", tag.RawText, "error", err)
		}
		return nil
	}
	if resp == nil || resp.SuggestedText == "" || resp.Confidence < c.minConfidence {
		return nil
	}

	// AI output is never trusted at full confidence.
	return &domain.ConversionResult{
		Status:     domain.StatusConvertedWithWarning,
		TargetText: resp.SuggestedText,
		Note:       fmt.Sprintf("ai fallback suggestion (confidence %.2f)", resp.Confidence),
	}
}

func passThrough(tag *domain.Tag) *domain.ConversionResult {
	return &domain.ConversionResult{
		Status:     domain.StatusUnresolved,
		TargetText: tag.RawText,
		RuleID:     tag.RuleID,
		Note:       "no conversion available; raw text passed through",
	}
}

func contextBefore(text string, at int) string {
	start := at - contextWindow
	if start < 0 {
		start = 0
	}
	return text[start:at]
}

func contextAfter(text string, at int) string {
	end := at + contextWindow
	if end > len(text) {
		end = len(text)
	}
	return text[at:end]
}
