package report

import (
	"fmt"
	"strings"

	"github.com/fairsailau/conganew/internal/core/domain"
	"github.com/fairsailau/conganew/internal/validator"
)

// Assembler merges per-section conversion results with the validation
// report into the final document outcome.
type Assembler struct {
	validator *validator.Validator
}

// NewAssembler creates an assembler over the given validator.
func NewAssembler(v *validator.Validator) *Assembler {
	return &Assembler{validator: v}
}

// Assemble validates the converted sections and packages the outcome.
// The report is always produced, even when nothing converted.
func (a *Assembler) Assemble(sections []*domain.SectionResult, level domain.ValidationLevel) *domain.ConversionOutcome {
	return &domain.ConversionOutcome{
		Sections: sections,
		Report:   a.validator.Validate(sections, level),
	}
}

// Summarize renders a short human-readable account of an outcome, used
// in job logs and CLI output.
func Summarize(outcome *domain.ConversionOutcome) string {
	r := outcome.Report
	var b strings.Builder

	fmt.Fprintf(&b, "tags: %d, completeness: %.0f%% (%s level), syntax: %s\n",
		outcome.TotalTags(), r.Completeness*100, r.Level, boolWord(r.SyntaxValid, "valid", "invalid"))

	for _, f := range r.Errors {
		fmt.Fprintf(&b, "  error: %s\n", f.Message)
	}
	for _, f := range r.Warnings {
		fmt.Fprintf(&b, "  warning: %s\n", f.Message)
	}
	for _, tag := range r.UnresolvedTags {
		fmt.Fprintf(&b, "  unresolved at %d..%d: %s\n", tag.Span.Start, tag.Span.End, tag.RawText)
	}
	return b.String()
}

func boolWord(v bool, yes, no string) string {
	if v {
		return yes
	}
	return no
}
