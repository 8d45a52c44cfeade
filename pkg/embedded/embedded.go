package embedded

import (
	_ "embed"
)

// RulesExampleYAML is a commented rule weight override file, printed by
// `counterpoint rules --example` as a starting point for RULES_CONFIG_PATH.
//
//go:embed data/rules.example.yaml
var RulesExampleYAML []byte
