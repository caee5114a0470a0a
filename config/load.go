// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadOrchestratorConfig reads a YAML orchestrator configuration file and
// validates it before returning, so callers never hold a config that would
// fail Validate().
func LoadOrchestratorConfig(path string) (OrchestratorConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return OrchestratorConfig{}, fmt.Errorf("reading orchestrator config: %w", err)
	}

	cfg := DefaultOrchestratorConfig()
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return OrchestratorConfig{}, fmt.Errorf("parsing orchestrator config: %w", err)
	}

	if result := cfg.Validate(); !result.Valid {
		return OrchestratorConfig{}, fmt.Errorf("invalid orchestrator config: %v", result.Errors)
	}
	return cfg, nil
}
