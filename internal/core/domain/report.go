package domain

// ValidationLevel selects how strict the validator is.
type ValidationLevel string

const (
	ValidationLevelBasic    ValidationLevel = "basic"
	ValidationLevelStandard ValidationLevel = "standard"
	ValidationLevelThorough ValidationLevel = "thorough"
)

// CompletenessThreshold returns the minimum completeness ratio a document
// must reach at this level before the report is flagged as failing.
func (l ValidationLevel) CompletenessThreshold() float64 {
	switch l {
	case ValidationLevelBasic:
		return 0.5
	case ValidationLevelThorough:
		return 0.95
	default:
		return 0.8
	}
}

// IsValid reports whether the level is one of the recognized values.
func (l ValidationLevel) IsValid() bool {
	switch l {
	case ValidationLevelBasic, ValidationLevelStandard, ValidationLevelThorough:
		return true
	}
	return false
}

// FindingSeverity distinguishes errors from warnings in a report.
type FindingSeverity string

const (
	SeverityError   FindingSeverity = "error"
	SeverityWarning FindingSeverity = "warning"
)

// Finding is one human-readable validation observation, anchored to the
// span of the tag it concerns.
type Finding struct {
	Severity FindingSeverity `json:"severity"`
	Message  string          `json:"message"`
	Span     Span            `json:"span"`
}

// ValidationReport is the aggregate validation outcome for one document.
// It is a derived, read-only artifact of a single conversion run.
type ValidationReport struct {
	// SyntaxValid is true when all emitted tags are well-formed and every
	// block open has a matching close of the same kind
	SyntaxValid bool `json:"syntax_valid"`

	// Completeness is the fraction of source tags converted fully or with
	// warning, in [0, 1]. Recomputed deterministically from the status
	// ledger; never independently mutable.
	Completeness float64 `json:"completeness"`

	// CompletenessPassed is false when Completeness fell below the
	// threshold of the requested validation level. Orthogonal to
	// SyntaxValid: a syntactically perfect document can still fail
	// completeness and vice versa.
	CompletenessPassed bool `json:"completeness_passed"`

	// Level is the validation level the report was produced at
	Level ValidationLevel `json:"level"`

	// Errors and Warnings are ordered findings, each referencing a tag span
	Errors   []Finding `json:"errors"`
	Warnings []Finding `json:"warnings"`

	// UnresolvedTags is the subsequence of source tags whose conversion
	// status is unresolved, surfaced individually for hand-fixing
	UnresolvedTags []*Tag `json:"unresolved_tags"`
}

// Passed reports whether the document cleared both validation dimensions.
func (r *ValidationReport) Passed() bool {
	return r.SyntaxValid && r.CompletenessPassed
}
