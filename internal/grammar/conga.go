package grammar

import "github.com/fairsailau/conganew/internal/core/domain"

// CongaRules returns the default source-dialect rule set, most specific
// first. Block forms ([IF]...[ENDIF], [TABLE]...[END]) capture a body
// operand which the converter rewrites recursively; field references
// inside an extracted operand are never re-scanned against the full text.
func CongaRules() []*Rule {
	return []*Rule{
		{
			ID:       "conditional-block",
			Kind:     domain.TagKindConditional,
			Priority: 100,
			Pattern:  `\[IF\s+(?P<expr>[^\]]+)\](?s:(?P<body>.*))\[ENDIF\]`,
			Template: `{{#if ${expr}}}${body}{{/if}}`,
			Transforms: map[string]string{
				"expr": "condexpr",
			},
		},
		{
			ID:       "conditional-inline",
			Kind:     domain.TagKindConditional,
			Priority: 95,
			Pattern:  `\{IF\s+"(?P<field>[^"]+)"\s*(?P<op><>|!=|>=|<=|==|=|>|<)\s*"(?P<value>[^"]*)"\s+"(?P<iftrue>[^"]*)"\s+"(?P<iffalse>[^"]*)"\s*\}`,
			Template: `{{#${op} ${field} "${value}"}}${iftrue}{{else}}${iffalse}{{/${op}}}`,
			Transforms: map[string]string{
				"field": "fieldpath",
				"op":    "operator",
			},
		},
		{
			ID:       "table-start",
			Kind:     domain.TagKindLoopStart,
			Priority: 90,
			Pattern:  `\{TABLE\s+(?:[A-Za-z0-9_]+\s*=\s*)?(?P<collection>[A-Za-z0-9._]+)\s*\}`,
			Template: `{{#each ${collection}}}`,
			Transforms: map[string]string{
				"collection": "fieldpath",
			},
		},
		{
			ID:       "table-end",
			Kind:     domain.TagKindLoopEnd,
			Priority: 90,
			Pattern:  `\{END\s+(?P<collection>[A-Za-z0-9._]+)\s*\}`,
			Template: `{{/each}}`,
		},
		{
			ID:       "loop-block",
			Kind:     domain.TagKindCompound,
			Priority: 85,
			Pattern:  `\[TABLE\s+(?P<collection>[A-Za-z0-9._]+)\s*\](?s:(?P<body>.*))\[END\]`,
			Template: `{{#each ${collection}}}${body}{{/each}}`,
			Transforms: map[string]string{
				"collection": "fieldpath",
			},
		},
		{
			ID:       "date-format",
			Kind:     domain.TagKindFormatting,
			Priority: 81,
			Pattern:  `\{!\s*(?P<field>[A-Za-z0-9._]+)\s*\\@\s*(?P<format>[^}]+?)\s*\}`,
			Template: `{{date ${field} format="${format}"}}`,
			Transforms: map[string]string{
				"field": "fieldpath",
			},
		},
		{
			ID:       "date-format-curly",
			Kind:     domain.TagKindFormatting,
			Priority: 80,
			Pattern:  `\{\{\s*(?P<field>[A-Za-z0-9._]+)\s*\\@\s*(?P<format>[^}]+?)\s*\}\}`,
			Template: `{{date ${field} format="${format}"}}`,
			Transforms: map[string]string{
				"field": "fieldpath",
			},
		},
		{
			ID:       "field-bang",
			Kind:     domain.TagKindField,
			Priority: 50,
			Pattern:  `\{!\s*(?P<field>[A-Za-z0-9._]+)\s*\}`,
			Template: `{{${field}}}`,
			Transforms: map[string]string{
				"field": "fieldpath",
			},
		},
		{
			ID:       "merge-field",
			Kind:     domain.TagKindField,
			Priority: 50,
			Pattern:  `&=(?P<field>[A-Za-z0-9._]+)`,
			Template: `{{${field}}}`,
			Transforms: map[string]string{
				"field": "fieldpath",
			},
		},
		// Requires an upper-case leading segment so already-converted
		// target fields ({{contact.firstName}}) are left alone.
		{
			ID:       "curly-field",
			Kind:     domain.TagKindField,
			Priority: 40,
			Pattern:  `\{\{\s*(?P<field>[A-Z][A-Za-z0-9_]*(?:\.[A-Za-z0-9_]+)*)\s*\}\}`,
			Template: `{{${field}}}`,
			Transforms: map[string]string{
				"field": "fieldpath",
			},
		},
	}
}

// DefaultRegistry returns a registry pre-loaded with the Conga rule set.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	if err := r.RegisterAll(CongaRules()); err != nil {
		// The built-in rule set is compiled at init in practice; a failure
		// here is a programming error.
		panic(err)
	}
	return r
}
