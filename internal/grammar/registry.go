package grammar

import (
	"fmt"
	"sort"
	"sync"

	"github.com/fairsailau/conganew/internal/core/domain"
)

// Registry holds grammar rules ordered by priority (highest first).
// Classification is first-match-wins over that order, so specific forms
// (conditionals, loops) must carry higher priorities than generic field
// forms. Safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	rules []*Rule
	byID  map[string]*Rule
}

// NewRegistry creates an empty rule registry.
func NewRegistry() *Registry {
	return &Registry{byID: make(map[string]*Rule)}
}

// Register compiles and adds a rule, keeping priority order. Rules with
// equal priority keep their registration order.
func (r *Registry) Register(rule *Rule) error {
	if rule == nil {
		return fmt.Errorf("%w: nil rule", domain.ErrInvalidInput)
	}
	if err := rule.Compile(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[rule.ID]; exists {
		return fmt.Errorf("%w: rule %s", domain.ErrAlreadyExists, rule.ID)
	}
	r.byID[rule.ID] = rule
	r.rules = append(r.rules, rule)
	sort.SliceStable(r.rules, func(i, j int) bool {
		return r.rules[i].Priority > r.rules[j].Priority
	})
	return nil
}

// RegisterAll registers rules in order, stopping at the first error.
func (r *Registry) RegisterAll(rules []*Rule) error {
	for _, rule := range rules {
		if err := r.Register(rule); err != nil {
			return err
		}
	}
	return nil
}

// Match finds the highest-priority rule whose pattern matches the raw tag
// text and returns it with the extracted operands. Returns
// domain.ErrUnsupportedPattern when nothing matches.
func (r *Registry) Match(raw string) (*Rule, map[string]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, rule := range r.rules {
		if operands, ok := rule.Match(raw); ok {
			return rule, operands, nil
		}
	}
	return nil, nil, domain.ErrUnsupportedPattern
}

// Get returns the rule with the given ID.
func (r *Registry) Get(id string) (*Rule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rule, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrRuleNotFound, id)
	}
	return rule, nil
}

// List returns all rules in priority order (highest first).
func (r *Registry) List() []*Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Rule, len(r.rules))
	copy(out, r.rules)
	return out
}

// Len returns the number of registered rules.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rules)
}
