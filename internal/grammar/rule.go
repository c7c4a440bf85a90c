package grammar

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/fairsailau/conganew/internal/core/domain"
)

// Rule describes how to recognize and rewrite one tag form: a
// (pattern, target template, priority) triple with operand transforms.
// Rules are data - adding one extends the converter without code changes.
type Rule struct {
	// ID uniquely identifies the rule (e.g. "field-bang")
	ID string `yaml:"id" json:"id"`

	// Kind is the tag classification this rule assigns
	Kind domain.TagKind `yaml:"kind" json:"kind"`

	// Priority orders matching: highest first. Conditional and loop forms
	// must outrank generic field forms, since a field pattern is a
	// subset-matcher of more complex forms.
	Priority int `yaml:"priority" json:"priority"`

	// Pattern is an anchored regular expression with named capture groups
	// for operands, matched against the full raw tag text
	Pattern string `yaml:"pattern" json:"pattern"`

	// Template is the target-dialect output with ${operand} placeholders
	Template string `yaml:"template" json:"template"`

	// Transforms maps operand names to a named transform applied before
	// substitution (fieldpath, operator, condexpr, lower, trim)
	Transforms map[string]string `yaml:"transforms,omitempty" json:"transforms,omitempty"`

	re *regexp.Regexp
}

// placeholderRe matches ${name} references in a rule template.
var placeholderRe = regexp.MustCompile(`\$\{([A-Za-z0-9_]+)\}`)

// Compile compiles and anchors the rule pattern. Must be called before
// Match; Register does it for you.
func (r *Rule) Compile() error {
	if r.ID == "" || r.Pattern == "" {
		return fmt.Errorf("%w: rule needs id and pattern", domain.ErrInvalidInput)
	}
	pattern := r.Pattern
	if !strings.HasPrefix(pattern, "^") {
		pattern = "^" + pattern
	}
	if !strings.HasSuffix(pattern, "$") {
		pattern = pattern + "$"
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return fmt.Errorf("compile rule %s: %w", r.ID, err)
	}
	r.re = re
	return nil
}

// Match tests the raw tag text against the rule pattern and extracts
// named operands. Returns false when the rule does not apply.
func (r *Rule) Match(raw string) (map[string]string, bool) {
	if r.re == nil {
		if err := r.Compile(); err != nil {
			return nil, false
		}
	}
	m := r.re.FindStringSubmatch(raw)
	if m == nil {
		return nil, false
	}
	operands := make(map[string]string)
	for i, name := range r.re.SubexpNames() {
		if i == 0 || name == "" {
			continue
		}
		operands[name] = m[i]
	}
	return operands, true
}

// Render substitutes operands into the rule template, applying the
// configured transforms. When a transform cannot fully translate an
// operand (e.g. an unsupported comparison operator) the raw operand is
// substituted, an inline marker comment is appended, and the returned
// error wraps domain.ErrPartialRender describing what was left behind.
func (r *Rule) Render(operands map[string]string) (string, error) {
	var notes []string
	seen := make(map[string]bool)
	note := func(msg string) {
		if !seen[msg] {
			seen[msg] = true
			notes = append(notes, msg)
		}
	}

	out := placeholderRe.ReplaceAllStringFunc(r.Template, func(ph string) string {
		name := placeholderRe.FindStringSubmatch(ph)[1]
		value, ok := operands[name]
		if !ok {
			note(fmt.Sprintf("missing operand %q", name))
			return ""
		}
		if tname, ok := r.Transforms[name]; ok {
			transformed, err := applyTransform(tname, value)
			if err != nil {
				note(err.Error())
				return value
			}
			return transformed
		}
		return value
	})

	if len(notes) > 0 {
		msg := strings.Join(notes, "; ")
		out += fmt.Sprintf("{{!-- conga: %s --}}", msg)
		return out, fmt.Errorf("%w: %s", domain.ErrPartialRender, msg)
	}
	return out, nil
}

// HasBodyOperand reports whether the rule captures a nested body that the
// converter must itself convert before substitution (block forms).
func (r *Rule) HasBodyOperand() bool {
	if r.re == nil {
		if err := r.Compile(); err != nil {
			return false
		}
	}
	for _, name := range r.re.SubexpNames() {
		if name == "body" {
			return true
		}
	}
	return false
}

// Transforms

func applyTransform(name, value string) (string, error) {
	switch name {
	case "fieldpath":
		return FieldPath(value), nil
	case "operator":
		return operatorHelper(value)
	case "condexpr":
		return CondExpr(value), nil
	case "lower":
		return strings.ToLower(value), nil
	case "trim":
		return strings.TrimSpace(value), nil
	default:
		return "", fmt.Errorf("unknown transform %q", name)
	}
}

// FieldPath normalizes a Salesforce-style field path into the target
// dialect convention: first segment lower-cased, remaining segments
// lowerCamel (Contact.FirstName -> contact.firstName).
func FieldPath(path string) string {
	segments := strings.Split(strings.TrimSpace(path), ".")
	for i, seg := range segments {
		if seg == "" {
			continue
		}
		if i == 0 {
			segments[i] = strings.ToLower(seg)
			continue
		}
		segments[i] = strings.ToLower(seg[:1]) + seg[1:]
	}
	return strings.Join(segments, ".")
}

// operatorHelper maps a comparison operator to its target helper name.
func operatorHelper(op string) (string, error) {
	switch strings.TrimSpace(op) {
	case "=", "==":
		return "eq", nil
	case ">":
		return "gt", nil
	case "<":
		return "lt", nil
	default:
		return "", fmt.Errorf("unsupported comparison operator %q", op)
	}
}

// fieldRefRe matches embedded field references inside a conditional
// expression ({!Amount}, &=Account.Name).
var fieldRefRe = regexp.MustCompile(`\{!\s*([A-Za-z0-9._]+)\s*\}|&=([A-Za-z0-9._]+)`)

// CondExpr rewrites every embedded field reference inside a conditional
// expression to the target field convention, leaving operators and
// literals untouched ({!Amount}>100 -> amount>100).
func CondExpr(expr string) string {
	return strings.TrimSpace(fieldRefRe.ReplaceAllStringFunc(expr, func(ref string) string {
		m := fieldRefRe.FindStringSubmatch(ref)
		if m[1] != "" {
			return FieldPath(m[1])
		}
		return FieldPath(m[2])
	}))
}
