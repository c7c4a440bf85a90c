package validator

import (
	"context"
	"strings"
	"testing"

	"github.com/fairsailau/conganew/internal/converter"
	"github.com/fairsailau/conganew/internal/core/domain"
	"github.com/fairsailau/conganew/internal/grammar"
	"github.com/fairsailau/conganew/internal/parser"
)

// convertText runs the real parse+convert pipeline so validator tests see
// exactly what production output looks like.
func convertText(t *testing.T, text string, opts domain.ConversionOptions) *domain.SectionResult {
	t.Helper()
	reg := grammar.DefaultRegistry()
	section := domain.DocumentSection{Text: text}
	tags := parser.New(reg).Parse(section)
	c := converter.New(converter.Config{Registry: reg})
	return c.ConvertSection(context.Background(), section, tags, opts)
}

func TestValidateCleanDocument(t *testing.T) {
	result := convertText(t, "Dear {!Contact.FirstName}, [IF {!Amount}>100]Special offer![ENDIF]", domain.DefaultConversionOptions())

	report := New().Validate([]*domain.SectionResult{result}, domain.ValidationLevelStandard)

	if !report.SyntaxValid {
		t.Errorf("syntaxValid = false, errors: %+v", report.Errors)
	}
	if report.Completeness != 1.0 {
		t.Errorf("completeness = %v, want 1.0", report.Completeness)
	}
	if !report.CompletenessPassed {
		t.Error("completeness should pass at standard level")
	}
	if !report.Passed() {
		t.Error("report should pass overall")
	}
	if len(report.UnresolvedTags) != 0 {
		t.Errorf("unresolved tags: %+v", report.UnresolvedTags)
	}
}

func TestValidateEmptyDocument(t *testing.T) {
	result := convertText(t, "plain text, zero tags", domain.DefaultConversionOptions())

	report := New().Validate([]*domain.SectionResult{result}, domain.ValidationLevelStandard)

	if report.Completeness != 1.0 {
		t.Errorf("completeness of tagless document = %v, want 1.0", report.Completeness)
	}
	if !report.Passed() {
		t.Error("tagless document should pass")
	}
}

func TestValidateUnterminatedBlock(t *testing.T) {
	result := convertText(t, "before [IF {!Amount}>100]Special offer!", domain.DefaultConversionOptions())

	report := New().Validate([]*domain.SectionResult{result}, domain.ValidationLevelStandard)

	if report.SyntaxValid {
		t.Error("syntaxValid = true, want false for unterminated block")
	}
	if len(report.Errors) != 1 {
		t.Errorf("got %d errors, want exactly 1 balance error: %+v", len(report.Errors), report.Errors)
	}
	if len(report.UnresolvedTags) != 1 {
		t.Errorf("got %d unresolved tags, want 1", len(report.UnresolvedTags))
	}
}

func TestValidateCompletenessThresholds(t *testing.T) {
	// One converted, one unresolved: completeness 0.5.
	result := convertText(t, "{!Name} and {IF unquoted}", domain.DefaultConversionOptions())

	tests := []struct {
		level domain.ValidationLevel
		want  bool
	}{
		{domain.ValidationLevelBasic, true},
		{domain.ValidationLevelStandard, false},
		{domain.ValidationLevelThorough, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.level), func(t *testing.T) {
			report := New().Validate([]*domain.SectionResult{result}, tt.level)
			if report.Completeness != 0.5 {
				t.Fatalf("completeness = %v, want 0.5", report.Completeness)
			}
			if report.CompletenessPassed != tt.want {
				t.Errorf("completenessPassed at %s = %v, want %v", tt.level, report.CompletenessPassed, tt.want)
			}
		})
	}
}

func TestValidateSyntaxAndCompletenessOrthogonal(t *testing.T) {
	// Syntactically fine output, but completeness fails.
	result := convertText(t, "{IF unquoted} {IF also} {IF broken}", domain.DefaultConversionOptions())

	report := New().Validate([]*domain.SectionResult{result}, domain.ValidationLevelStandard)

	if !report.SyntaxValid {
		t.Errorf("pass-through inline tags are balanced; errors: %+v", report.Errors)
	}
	if report.CompletenessPassed {
		t.Error("completeness 0.0 must fail the standard threshold")
	}
	if report.Passed() {
		t.Error("report must not pass overall")
	}
}

func TestValidateWarningsSurfaced(t *testing.T) {
	result := convertText(t, `{IF "Status" <> "Won" "a" "b"}`, domain.DefaultConversionOptions())

	report := New().Validate([]*domain.SectionResult{result}, domain.ValidationLevelBasic)

	if len(report.Warnings) != 1 {
		t.Fatalf("got %d warnings, want 1: %+v", len(report.Warnings), report.Warnings)
	}
	if !strings.Contains(report.Warnings[0].Message, "unsupported comparison operator") {
		t.Errorf("warning message = %q", report.Warnings[0].Message)
	}
}

func TestValidateMismatchedClose(t *testing.T) {
	sections := []*domain.SectionResult{{
		ConvertedText: "{{#each items}}row{{/if}}",
	}}

	report := New().Validate(sections, domain.ValidationLevelStandard)

	if report.SyntaxValid {
		t.Error("mismatched close must fail the balance check")
	}
}

func TestValidateCloseWithoutOpen(t *testing.T) {
	sections := []*domain.SectionResult{{
		ConvertedText: "text {{/each}} more",
	}}

	report := New().Validate(sections, domain.ValidationLevelStandard)

	if report.SyntaxValid {
		t.Error("close without open must fail the balance check")
	}
	if len(report.Errors) != 1 {
		t.Errorf("got %d errors, want 1", len(report.Errors))
	}
}

func TestValidateThoroughReparse(t *testing.T) {
	// Well-balanced but not a recognized target construct.
	sections := []*domain.SectionResult{{
		ConvertedText: "hello {{bogus construct here}} world",
	}}

	standard := New().Validate(sections, domain.ValidationLevelStandard)
	if !standard.SyntaxValid {
		t.Errorf("standard level should not re-parse target constructs: %+v", standard.Errors)
	}

	thorough := New().Validate(sections, domain.ValidationLevelThorough)
	if thorough.SyntaxValid {
		t.Error("thorough level must reject unrecognized target constructs")
	}
}

func TestValidateThoroughAcceptsRealOutput(t *testing.T) {
	result := convertText(t,
		"Dear {!Contact.FirstName}, {TABLE group=LineItems}{!Name}{END LineItems} [IF x]y[ENDIF] {!CloseDate \\@ MM/dd/yyyy}",
		domain.DefaultConversionOptions())

	report := New().Validate([]*domain.SectionResult{result}, domain.ValidationLevelThorough)

	if !report.SyntaxValid {
		t.Errorf("fully converted output must re-parse cleanly: %+v", report.Errors)
	}
	if !report.Passed() {
		t.Errorf("report should pass, completeness %v", report.Completeness)
	}
}

func TestValidateMultipleSectionsMerged(t *testing.T) {
	a := convertText(t, "{!Name}", domain.DefaultConversionOptions())
	b := convertText(t, "{IF unquoted}", domain.DefaultConversionOptions())

	report := New().Validate([]*domain.SectionResult{a, b}, domain.ValidationLevelBasic)

	if report.Completeness != 0.5 {
		t.Errorf("merged completeness = %v, want 0.5", report.Completeness)
	}
	if len(report.UnresolvedTags) != 1 {
		t.Errorf("unresolved = %d, want 1", len(report.UnresolvedTags))
	}
}

func TestValidateCustomTargetGrammar(t *testing.T) {
	// A restricted target dialect: plain fields only, no block helpers.
	target := grammar.NewRegistry()
	if err := target.Register(&grammar.Rule{
		ID:       "field-only",
		Kind:     domain.TagKindField,
		Priority: 50,
		Pattern:  `\{\{\s*(?P<field>[A-Za-z0-9._]+)\s*\}\}`,
	}); err != nil {
		t.Fatalf("register rule: %v", err)
	}

	sections := []*domain.SectionResult{{
		ConvertedText: "{{name}} {{#if amount}}x{{/if}}",
	}}

	report := NewWithTarget(target).Validate(sections, domain.ValidationLevelThorough)

	if report.SyntaxValid {
		t.Error("block helpers must be rejected by a fields-only target grammar")
	}
}
