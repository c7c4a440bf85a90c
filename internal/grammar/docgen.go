package grammar

import "github.com/fairsailau/conganew/internal/core/domain"

// DocGenRules returns the target-dialect grammar. These rules carry no
// templates: they exist so Thorough validation can re-parse converted
// output and confirm every emitted tag is a well-formed target construct.
func DocGenRules() []*Rule {
	return []*Rule{
		{
			ID:       "docgen-block-open",
			Kind:     domain.TagKindLoopStart,
			Priority: 100,
			Pattern:  `\{\{#(?P<helper>if|unless|eq|gt|lt|each)\s+(?P<args>[^}]+)\}\}`,
		},
		{
			ID:       "docgen-block-close",
			Kind:     domain.TagKindLoopEnd,
			Priority: 100,
			Pattern:  `\{\{/(?P<helper>if|unless|eq|gt|lt|each)\s*\}\}`,
		},
		{
			ID:       "docgen-else",
			Kind:     domain.TagKindFormatting,
			Priority: 95,
			Pattern:  `\{\{else\}\}`,
		},
		{
			ID:       "docgen-date",
			Kind:     domain.TagKindFormatting,
			Priority: 90,
			Pattern:  `\{\{date\s+(?P<field>[A-Za-z0-9._]+)\s+format="(?P<format>[^"]*)"\s*\}\}`,
		},
		{
			ID:       "docgen-comment",
			Kind:     domain.TagKindFormatting,
			Priority: 90,
			Pattern:  `\{\{!(?s:.*?)\}\}`,
		},
		{
			ID:       "docgen-field",
			Kind:     domain.TagKindField,
			Priority: 50,
			Pattern:  `\{\{\s*(?P<field>[A-Za-z0-9._]+)\s*\}\}`,
		},
	}
}

// TargetRegistry returns a registry pre-loaded with the target grammar.
func TargetRegistry() *Registry {
	r := NewRegistry()
	if err := r.RegisterAll(DocGenRules()); err != nil {
		panic(err)
	}
	return r
}
