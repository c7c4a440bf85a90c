package grammar

import (
	"errors"
	"testing"

	"github.com/fairsailau/conganew/internal/core/domain"
)

func TestRegistryPriorityOrder(t *testing.T) {
	reg := NewRegistry()

	low := &Rule{ID: "any", Kind: domain.TagKindField, Priority: 1, Pattern: `\{x:(?P<v>.+)\}`, Template: "${v}"}
	high := &Rule{ID: "digits", Kind: domain.TagKindField, Priority: 10, Pattern: `\{x:(?P<v>\d+)\}`, Template: "#${v}"}

	// Registration order must not matter.
	if err := reg.Register(low); err != nil {
		t.Fatalf("Register low: %v", err)
	}
	if err := reg.Register(high); err != nil {
		t.Fatalf("Register high: %v", err)
	}

	rule, _, err := reg.Match("{x:123}")
	if err != nil {
		t.Fatalf("Match error: %v", err)
	}
	if rule.ID != "digits" {
		t.Errorf("matched %s, want higher-priority digits", rule.ID)
	}

	rule, _, err = reg.Match("{x:abc}")
	if err != nil {
		t.Fatalf("Match error: %v", err)
	}
	if rule.ID != "any" {
		t.Errorf("matched %s, want any", rule.ID)
	}
}

func TestRegistryDuplicateID(t *testing.T) {
	reg := NewRegistry()

	r := &Rule{ID: "dup", Kind: domain.TagKindField, Priority: 1, Pattern: `x`, Template: "y"}
	if err := reg.Register(r); err != nil {
		t.Fatalf("Register: %v", err)
	}
	err := reg.Register(&Rule{ID: "dup", Kind: domain.TagKindField, Priority: 2, Pattern: `z`, Template: "w"})
	if !errors.Is(err, domain.ErrAlreadyExists) {
		t.Errorf("Register duplicate error = %v, want ErrAlreadyExists", err)
	}
}

func TestRegistryGet(t *testing.T) {
	reg := DefaultRegistry()

	rule, err := reg.Get("field-bang")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rule.Kind != domain.TagKindField {
		t.Errorf("kind = %s, want %s", rule.Kind, domain.TagKindField)
	}

	if _, err := reg.Get("nope"); !errors.Is(err, domain.ErrRuleNotFound) {
		t.Errorf("Get missing error = %v, want ErrRuleNotFound", err)
	}
}

func TestRegistryListOrdered(t *testing.T) {
	reg := DefaultRegistry()

	rules := reg.List()
	if len(rules) != reg.Len() {
		t.Fatalf("List returned %d rules, Len reports %d", len(rules), reg.Len())
	}
	for i := 1; i < len(rules); i++ {
		if rules[i-1].Priority < rules[i].Priority {
			t.Errorf("rules out of order at %d: %d < %d", i, rules[i-1].Priority, rules[i].Priority)
		}
	}
}

func TestRegistryInvalidPattern(t *testing.T) {
	reg := NewRegistry()

	err := reg.Register(&Rule{ID: "bad", Kind: domain.TagKindField, Priority: 1, Pattern: `(`, Template: "x"})
	if err == nil {
		t.Error("Register with invalid pattern should fail")
	}
}
