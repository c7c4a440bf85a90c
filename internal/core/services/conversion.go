package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/fairsailau/conganew/internal/converter"
	"github.com/fairsailau/conganew/internal/core/domain"
	"github.com/fairsailau/conganew/internal/core/ports/driven"
	"github.com/fairsailau/conganew/internal/core/ports/driving"
	"github.com/fairsailau/conganew/internal/grammar"
	"github.com/fairsailau/conganew/internal/parser"
	"github.com/fairsailau/conganew/internal/report"
	"github.com/fairsailau/conganew/internal/runtime"
	"github.com/fairsailau/conganew/internal/validator"
)

// Ensure conversionService implements ConversionService
var _ driving.ConversionService = (*conversionService)(nil)

// conversionService runs the synchronous pipeline: parse every section,
// convert every tag, validate, assemble. Stateless between calls except
// for the shared rule registry.
type conversionService struct {
	registry  *grammar.Registry
	parser    *parser.Parser
	assembler *report.Assembler
	runtime   *runtime.Services
	settings  driven.SettingsStore
	logger    *slog.Logger
}

// ConversionServiceConfig wires the conversion service.
type ConversionServiceConfig struct {
	Registry      *grammar.Registry
	Runtime       *runtime.Services
	SettingsStore driven.SettingsStore
	Logger        *slog.Logger
}

// NewConversionService creates a new ConversionService
func NewConversionService(cfg ConversionServiceConfig) driving.ConversionService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &conversionService{
		registry:  cfg.Registry,
		parser:    parser.New(cfg.Registry),
		assembler: report.NewAssembler(validator.New()),
		runtime:   cfg.Runtime,
		settings:  cfg.SettingsStore,
		logger:    logger,
	}
}

// ConvertDocument runs the pipeline over every section of one document.
func (s *conversionService) ConvertDocument(ctx context.Context, teamID string, sections []domain.DocumentSection, opts domain.ConversionOptions) (*domain.ConversionOutcome, error) {
	opts = opts.Normalize()
	// Options can only enable a fallback that is actually configured.
	opts.UseAIFallback = s.runtime.Config().EffectiveUseAIFallback(opts.UseAIFallback)

	timeout, minConfidence := s.aiTuning(ctx, teamID)
	conv := converter.New(converter.Config{
		Registry:        s.registry,
		Fallback:        s.runtime.Fallback(),
		Logger:          s.logger,
		FallbackTimeout: timeout,
		MinConfidence:   minConfidence,
	})

	start := time.Now()
	results := make([]*domain.SectionResult, 0, len(sections))
	for _, section := range sections {
		tags := s.parser.Parse(section)
		results = append(results, conv.ConvertSection(ctx, section, tags, opts))
	}

	outcome := s.assembler.Assemble(results, opts.ValidationLevel)
	s.logger.Info("document converted",
		"team_id", teamID,
		"sections", len(sections),
		"tags", outcome.TotalTags(),
		"completeness", outcome.Report.Completeness,
		"syntax_valid", outcome.Report.SyntaxValid,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return outcome, nil
}

// ListRules returns the active grammar rules in priority order
func (s *conversionService) ListRules() []*grammar.Rule {
	return s.registry.List()
}

// AddRule registers a grammar rule at runtime
func (s *conversionService) AddRule(rule *grammar.Rule) error {
	return s.registry.Register(rule)
}

// aiTuning reads the per-team fallback timeout and confidence floor.
// Zero values select the converter defaults.
func (s *conversionService) aiTuning(ctx context.Context, teamID string) (time.Duration, float64) {
	if s.settings == nil {
		return 0, 0
	}
	ai, err := s.settings.GetAISettings(ctx, teamID)
	if err != nil || ai == nil {
		return 0, 0
	}
	var timeout time.Duration
	if ai.TimeoutSeconds > 0 {
		timeout = time.Duration(ai.TimeoutSeconds) * time.Second
	}
	return timeout, ai.MinConfidence
}
