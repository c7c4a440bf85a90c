package parser

import (
	"strings"

	"github.com/fairsailau/conganew/internal/core/domain"
	"github.com/fairsailau/conganew/internal/grammar"
)

// Parser scans flattened document text for source-dialect tags and
// classifies each against the grammar registry. Section text arrives with
// formatting runs already joined, so a delimiter split across a run
// boundary is contiguous here; the run-boundary hints only survive into
// the span map for the writer.
type Parser struct {
	registry *grammar.Registry
}

// New creates a parser over the given rule registry.
func New(registry *grammar.Registry) *Parser {
	return &Parser{registry: registry}
}

// blockDelim describes a bracket block form that nests.
type blockDelim struct {
	open  string
	close string
}

var blockDelims = []blockDelim{
	{open: "[IF", close: "[ENDIF]"},
	{open: "[TABLE", close: "[END]"},
}

// braceOpeners are single-brace tag prefixes that unambiguously start a
// source tag; an unterminated occurrence is malformed, not literal text.
var braceOpeners = []string{"{IF", "{TABLE", "{END", "{!"}

// Parse produces the ordered, non-overlapping tag sequence for one
// section. Tags the registry cannot classify come back as Unknown with
// empty operands; an unterminated tag becomes a single Unknown spanning
// to end-of-text. Parse never fails: malformed input degrades to Unknown
// tags and scanning continues.
func (p *Parser) Parse(section domain.DocumentSection) []*domain.Tag {
	text := section.Text
	var tags []*domain.Tag

	i := 0
	for i < len(text) {
		tag, next := p.scanAt(text, i)
		if tag != nil {
			tags = append(tags, tag)
			next = tag.Span.End
		}
		i = next
	}
	return tags
}

// scanAt tries to read a tag starting at offset i. It returns the tag (or
// nil when i starts no tag) and the offset scanning should resume from
// when no tag was produced.
func (p *Parser) scanAt(text string, i int) (*domain.Tag, int) {
	rest := text[i:]

	for _, bd := range blockDelims {
		if hasWordPrefix(rest, bd.open) {
			return p.scanBlock(text, i, bd), i + 1
		}
	}

	// Double-brace tags are ambiguous: the text may already contain
	// target-dialect output. Extract the candidate and keep it only when a
	// source rule claims it; otherwise it is literal text.
	if strings.HasPrefix(rest, "{{") {
		end := strings.Index(rest[2:], "}}")
		if end < 0 {
			return nil, i + 2
		}
		raw := text[i : i+2+end+2]
		if tag := p.classify(raw, i); !tag.IsUnknown() {
			return tag, 0
		}
		return nil, i + len(raw)
	}

	for _, open := range braceOpeners {
		if open == "{!" {
			if !strings.HasPrefix(rest, open) {
				continue
			}
		} else if !hasWordPrefix(rest, open) {
			continue
		}
		end := strings.IndexByte(rest, '}')
		if end < 0 {
			return unknownTag(text, i), 0
		}
		return p.classify(text[i:i+end+1], i), 0
	}

	if strings.HasPrefix(rest, "&=") {
		j := 2
		for j < len(rest) && isFieldChar(rest[j]) {
			j++
		}
		if j == 2 {
			return nil, i + 2
		}
		return p.classify(rest[:j], i), 0
	}

	return nil, i + 1
}

// scanBlock consumes a bracket block, counting nested opens of the same
// form. If depth never returns to zero the whole remainder is one
// malformed Unknown tag.
func (p *Parser) scanBlock(text string, start int, bd blockDelim) *domain.Tag {
	depth := 0
	i := start
	for i < len(text) {
		switch {
		case hasWordPrefix(text[i:], bd.open):
			depth++
			i += len(bd.open)
		case strings.HasPrefix(text[i:], bd.close):
			depth--
			i += len(bd.close)
			if depth == 0 {
				return p.classify(text[start:i], start)
			}
		default:
			i++
		}
	}
	return unknownTag(text, start)
}

// classify matches the raw tag text against the registry, first match by
// priority wins. Unmatched text becomes an Unknown tag.
func (p *Parser) classify(raw string, start int) *domain.Tag {
	span := domain.Span{Start: start, End: start + len(raw)}

	rule, operands, err := p.registry.Match(raw)
	if err != nil {
		return &domain.Tag{
			Kind:    domain.TagKindUnknown,
			RawText: raw,
			Span:    span,
		}
	}
	return &domain.Tag{
		Kind:     rule.Kind,
		RuleID:   rule.ID,
		RawText:  raw,
		Operands: operands,
		Span:     span,
	}
}

func unknownTag(text string, start int) *domain.Tag {
	return &domain.Tag{
		Kind:    domain.TagKindUnknown,
		RawText: text[start:],
		Span:    domain.Span{Start: start, End: len(text)},
	}
}

// hasWordPrefix reports whether s begins with a keyword opener followed
// by whitespace, so literal text like "[IFFY]" is not claimed as a tag.
func hasWordPrefix(s, open string) bool {
	if !strings.HasPrefix(s, open) || len(s) == len(open) {
		return false
	}
	c := s[len(open)]
	return c == ' ' || c == '\t'
}

func isFieldChar(b byte) bool {
	return b == '.' || b == '_' ||
		(b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}
