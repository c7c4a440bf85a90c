package domain

// DocumentSection is one unit of flattened document text handed to the
// pipeline by the DOCX reader. RunBoundaryHints are byte offsets where
// formatting runs were joined; a tag delimiter split across a boundary
// must still parse as a single tag.
type DocumentSection struct {
	// Text is the full flattened text of the section
	Text string `json:"text"`

	// RunBoundaryHints are ascending byte offsets of run joins in Text.
	// They carry no visible characters; they only mark where the source
	// document switched formatting runs.
	RunBoundaryHints []int `json:"run_boundary_hints,omitempty"`
}

// ConversionOptions is the immutable configuration value threaded into a
// pipeline run. The core never reads ambient state; everything it needs
// arrives here.
type ConversionOptions struct {
	// UseAIFallback enables the AI fallback adapter for unresolved tags
	UseAIFallback bool `json:"use_ai_fallback"`

	// ValidationLevel selects the validator strictness
	ValidationLevel ValidationLevel `json:"validation_level"`

	// PreserveFormatting is consumed by the excluded splicing/serialization
	// step; it does not affect tag logic and is carried through untouched
	PreserveFormatting bool `json:"preserve_formatting"`
}

// DefaultConversionOptions returns the options used when the caller does
// not specify any.
func DefaultConversionOptions() ConversionOptions {
	return ConversionOptions{
		UseAIFallback:      false,
		ValidationLevel:    ValidationLevelStandard,
		PreserveFormatting: true,
	}
}

// Normalize fills unset fields with defaults and returns the result.
func (o ConversionOptions) Normalize() ConversionOptions {
	if !o.ValidationLevel.IsValid() {
		o.ValidationLevel = ValidationLevelStandard
	}
	return o
}

// TagSpanEntry maps one source tag span to the span its replacement
// occupies in the converted text. The DOCX writer uses this to map
// replacements back onto formatting runs.
type TagSpanEntry struct {
	Source Span `json:"source"`
	Target Span `json:"target"`
}

// SectionResult is the converted output for one document section.
type SectionResult struct {
	// ConvertedText is the section text with every tag replaced by its
	// target-dialect rendering (or passed through when unresolved)
	ConvertedText string `json:"converted_text"`

	// Tags is the ordered tag sequence the parser produced
	Tags []*Tag `json:"tags"`

	// Results holds exactly one entry per parsed tag, in tag order
	Results []*ConversionResult `json:"results"`

	// TagSpanMap relates source tag spans to converted-text spans
	TagSpanMap []TagSpanEntry `json:"tag_span_map"`
}

// ConversionOutcome is the full artifact of converting one document:
// per-section results plus the merged validation report.
type ConversionOutcome struct {
	Sections []*SectionResult  `json:"sections"`
	Report   *ValidationReport `json:"report"`
}

// TotalTags returns the number of tags parsed across all sections.
func (o *ConversionOutcome) TotalTags() int {
	n := 0
	for _, s := range o.Sections {
		n += len(s.Tags)
	}
	return n
}
