package driving

import (
	"context"

	"github.com/fairsailau/conganew/internal/core/domain"
	"github.com/fairsailau/conganew/internal/grammar"
)

// ConversionService runs the synchronous conversion pipeline.
type ConversionService interface {
	// ConvertDocument runs parse, convert and validate over every section
	// of one document. It never fails on malformed tags; the report is
	// always produced.
	ConvertDocument(ctx context.Context, teamID string, sections []domain.DocumentSection, opts domain.ConversionOptions) (*domain.ConversionOutcome, error)

	// ListRules returns the active grammar rules in priority order
	ListRules() []*grammar.Rule

	// AddRule registers a grammar rule at runtime (admin only at the API layer)
	AddRule(rule *grammar.Rule) error
}
