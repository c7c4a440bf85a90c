package grammar

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ruleFile is the on-disk shape of an external rule set.
type ruleFile struct {
	Rules []*Rule `yaml:"rules"`
}

// LoadRules parses a YAML rule file. Loaded rules use the same pattern /
// template / transform vocabulary as the built-in set, so a deployment can
// extend the grammar without a code change.
func LoadRules(path string) ([]*Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rule file: %w", err)
	}
	return ParseRules(data)
}

// ParseRules parses YAML rule definitions and compiles every pattern.
func ParseRules(data []byte) ([]*Rule, error) {
	var f ruleFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse rule file: %w", err)
	}
	for _, rule := range f.Rules {
		if err := rule.Compile(); err != nil {
			return nil, err
		}
	}
	return f.Rules, nil
}
