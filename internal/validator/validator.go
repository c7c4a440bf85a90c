package validator

import (
	"fmt"
	"strings"

	"github.com/fairsailau/conganew/internal/core/domain"
	"github.com/fairsailau/conganew/internal/grammar"
)

// Validator checks converted output: a stack-based balance check over
// block constructs, the completeness ratio against the level threshold,
// and (at the thorough level) a re-parse of every emitted double-brace
// construct against the target grammar. It always produces a report,
// even for a document where nothing converted.
type Validator struct {
	target *grammar.Registry
}

// New creates a validator using the built-in target grammar.
func New() *Validator {
	return &Validator{target: grammar.TargetRegistry()}
}

// NewWithTarget creates a validator over a custom target grammar.
func NewWithTarget(target *grammar.Registry) *Validator {
	return &Validator{target: target}
}

// Validate produces the merged report for all converted sections.
// Completeness and syntax are orthogonal: either can fail alone.
func (v *Validator) Validate(sections []*domain.SectionResult, level domain.ValidationLevel) *domain.ValidationReport {
	report := &domain.ValidationReport{
		Level:          level,
		Errors:         []domain.Finding{},
		Warnings:       []domain.Finding{},
		UnresolvedTags: []*domain.Tag{},
	}

	total, succeeded := 0, 0
	for _, section := range sections {
		for i, result := range section.Results {
			total++
			if result.Succeeded() {
				succeeded++
			}
			tag := section.Tags[i]
			switch result.Status {
			case domain.StatusUnresolved:
				report.UnresolvedTags = append(report.UnresolvedTags, tag)
				report.Warnings = append(report.Warnings, domain.Finding{
					Severity: domain.SeverityWarning,
					Message:  fmt.Sprintf("unresolved tag %q passed through unchanged", tag.RawText),
					Span:     tag.Span,
				})
			case domain.StatusConvertedWithWarning:
				report.Warnings = append(report.Warnings, domain.Finding{
					Severity: domain.SeverityWarning,
					Message:  fmt.Sprintf("tag %q: %s", tag.RawText, result.Note),
					Span:     tag.Span,
				})
			}
		}

		report.Errors = append(report.Errors, checkBalance(section.ConvertedText)...)
		if level == domain.ValidationLevelThorough {
			report.Errors = append(report.Errors, v.reparseTarget(section.ConvertedText)...)
		}
	}

	if total == 0 {
		report.Completeness = 1.0
	} else {
		report.Completeness = float64(succeeded) / float64(total)
	}
	report.CompletenessPassed = report.Completeness >= level.CompletenessThreshold()
	report.SyntaxValid = len(report.Errors) == 0
	return report
}

// blockToken is one open or close construct found during the balance scan.
type blockToken struct {
	name  string
	open  bool
	span  domain.Span
	width int
}

// checkBalance walks the converted text and verifies that every block
// open has exactly one matching close of the same kind with correct
// nesting. Residual source-dialect blocks (from pass-through tags) are
// checked with the same stack so an unterminated source block surfaces
// as a balance error.
func checkBalance(text string) []domain.Finding {
	var findings []domain.Finding
	var stack []blockToken

	for i := 0; i < len(text); {
		tok, ok := scanBlockToken(text, i)
		if !ok {
			i++
			continue
		}
		if tok.open {
			stack = append(stack, tok)
		} else if n := len(stack); n == 0 {
			findings = append(findings, domain.Finding{
				Severity: domain.SeverityError,
				Message:  fmt.Sprintf("close %q without a matching open", tok.name),
				Span:     tok.span,
			})
		} else if stack[n-1].name != tok.name {
			findings = append(findings, domain.Finding{
				Severity: domain.SeverityError,
				Message:  fmt.Sprintf("close %q does not match open %q", tok.name, stack[n-1].name),
				Span:     tok.span,
			})
			stack = stack[:n-1]
		} else {
			stack = stack[:n-1]
		}
		i += tok.width
	}

	for _, tok := range stack {
		findings = append(findings, domain.Finding{
			Severity: domain.SeverityError,
			Message:  fmt.Sprintf("open %q is never closed", tok.name),
			Span:     tok.span,
		})
	}
	return findings
}

// scanBlockToken recognizes both target-dialect block markers and
// residual source-dialect ones at offset i.
func scanBlockToken(text string, i int) (blockToken, bool) {
	rest := text[i:]

	switch {
	case strings.HasPrefix(rest, "{{#"):
		name := helperName(rest[3:])
		if name == "" {
			return blockToken{}, false
		}
		return blockToken{name: name, open: true, span: tokSpan(i, 3+len(name)), width: 3 + len(name)}, true

	case strings.HasPrefix(rest, "{{/"):
		name := helperName(rest[3:])
		if name == "" {
			return blockToken{}, false
		}
		return blockToken{name: name, span: tokSpan(i, 3+len(name)), width: 3 + len(name)}, true

	case strings.HasPrefix(rest, "[IF ") || strings.HasPrefix(rest, "[IF\t"):
		return blockToken{name: "if-block", open: true, span: tokSpan(i, 3), width: 3}, true

	case strings.HasPrefix(rest, "[ENDIF]"):
		return blockToken{name: "if-block", span: tokSpan(i, 7), width: 7}, true

	case strings.HasPrefix(rest, "[TABLE ") || strings.HasPrefix(rest, "[TABLE\t"):
		return blockToken{name: "table-block", open: true, span: tokSpan(i, 6), width: 6}, true

	case strings.HasPrefix(rest, "[END]"):
		return blockToken{name: "table-block", span: tokSpan(i, 5), width: 5}, true

	case strings.HasPrefix(rest, "{TABLE ") || strings.HasPrefix(rest, "{TABLE\t"):
		return blockToken{name: "table", open: true, span: tokSpan(i, 6), width: 6}, true

	case strings.HasPrefix(rest, "{END ") || strings.HasPrefix(rest, "{END\t"):
		return blockToken{name: "table", span: tokSpan(i, 4), width: 4}, true
	}
	return blockToken{}, false
}

// helperName reads the block helper identifier after {{# or {{/.
func helperName(s string) string {
	j := 0
	for j < len(s) && (s[j] >= 'a' && s[j] <= 'z' || s[j] >= 'A' && s[j] <= 'Z') {
		j++
	}
	return s[:j]
}

func tokSpan(start, width int) domain.Span {
	return domain.Span{Start: start, End: start + width}
}

// reparseTarget re-parses every double-brace construct in the converted
// text against the target grammar. Anything that is not a well-formed
// target construct is a syntax error at the thorough level.
func (v *Validator) reparseTarget(text string) []domain.Finding {
	var findings []domain.Finding

	for i := 0; i < len(text); {
		if !strings.HasPrefix(text[i:], "{{") {
			i++
			continue
		}
		end := strings.Index(text[i+2:], "}}")
		if end < 0 {
			findings = append(findings, domain.Finding{
				Severity: domain.SeverityError,
				Message:  "unterminated double-brace construct in converted output",
				Span:     domain.Span{Start: i, End: len(text)},
			})
			break
		}
		raw := text[i : i+2+end+2]
		if _, _, err := v.target.Match(raw); err != nil {
			findings = append(findings, domain.Finding{
				Severity: domain.SeverityError,
				Message:  fmt.Sprintf("%q is not a recognized target construct", raw),
				Span:     domain.Span{Start: i, End: i + len(raw)},
			})
		}
		i += len(raw)
	}
	return findings
}
