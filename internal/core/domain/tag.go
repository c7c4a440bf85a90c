package domain

// TagKind classifies a merge tag by its syntactic pattern.
type TagKind string

const (
	// TagKindField is a simple merge field (e.g. {!Contact.FirstName}, &=Account.Name)
	TagKindField TagKind = "field"
	// TagKindConditional is a conditional expression or block ([IF ...]...[ENDIF], {IF "a"="b" "t" "f"})
	TagKindConditional TagKind = "conditional"
	// TagKindLoopStart opens a table/loop region ({TABLE group=Collection})
	TagKindLoopStart TagKind = "loop_start"
	// TagKindLoopEnd closes a table/loop region ({END Collection})
	TagKindLoopEnd TagKind = "loop_end"
	// TagKindFormatting is a formatting directive (date/number format specifiers)
	TagKindFormatting TagKind = "formatting"
	// TagKindCompound is a nested/compound expression spanning an open and close delimiter pair
	TagKindCompound TagKind = "compound"
	// TagKindUnknown is a tag whose body matched no grammar rule, or a malformed tag
	TagKindUnknown TagKind = "unknown"
)

// Span is a half-open [Start, End) byte range in the source text stream.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() int {
	return s.End - s.Start
}

// Overlaps reports whether two spans share any byte.
func (s Span) Overlaps(other Span) bool {
	return s.Start < other.End && other.Start < s.End
}

// Tag is a single recognized merge-tag occurrence in the source dialect.
// Tags are immutable once parsed: they are created once per conversion run
// and never mutated afterwards.
type Tag struct {
	// Kind is the syntactic classification of the tag
	Kind TagKind `json:"kind"`

	// RuleID identifies the grammar rule that classified the tag
	// (empty when Kind is TagKindUnknown)
	RuleID string `json:"rule_id,omitempty"`

	// RawText is the exact source substring, delimiters included
	RawText string `json:"raw_text"`

	// Operands maps operand names to captured strings, in the order the
	// grammar rule's capture groups declare them
	Operands map[string]string `json:"operands,omitempty"`

	// Span locates the tag in the source text stream
	Span Span `json:"span"`
}

// IsUnknown reports whether the tag matched no grammar rule.
func (t *Tag) IsUnknown() bool {
	return t.Kind == TagKindUnknown
}

// ConversionStatus is the outcome of converting one Tag.
type ConversionStatus string

const (
	// StatusConverted means the tag was fully rewritten into the target dialect
	StatusConverted ConversionStatus = "converted"
	// StatusConvertedWithWarning means the tag was rewritten with an
	// untranslated portion left as an inline marker, or the replacement came
	// from the AI fallback (AI output is never trusted at full confidence)
	StatusConvertedWithWarning ConversionStatus = "converted_with_warning"
	// StatusUnresolved means no safe conversion was available; the raw text
	// is passed through unchanged
	StatusUnresolved ConversionStatus = "unresolved"
)

// ConversionResult is the output of converting one Tag.
type ConversionResult struct {
	// Status is the conversion outcome for the tag
	Status ConversionStatus `json:"status"`

	// TargetText is the replacement string in the target dialect.
	// For unresolved tags this equals the tag's RawText (pass-through).
	TargetText string `json:"target_text"`

	// RuleID identifies the grammar rule that produced the rendering
	// (empty when no rule matched)
	RuleID string `json:"rule_id,omitempty"`

	// Note explains warnings and failures in human-readable form
	Note string `json:"note,omitempty"`
}

// Succeeded reports whether the tag counts towards completeness.
func (r *ConversionResult) Succeeded() bool {
	return r.Status == StatusConverted || r.Status == StatusConvertedWithWarning
}
