package lsp

import (
	"encoding/json"
	"fmt"

	"github.com/swaggitor/swaggitor/pkg/constants"
	"github.com/swaggitor/swaggitor/pkg/pipeline"
)

// validationSettings is the settings object of the configuration section
type validationSettings struct {
	CheckOnChange    *bool `json:"checkOnChange"`
	PreciseLocations *bool `json:"preciseLocations"`
}

// parseSettings reads a settings blob, either nested under the configuration
// section or flat. Options that are absent take their default value, so the
// result always replaces the previous configuration as a whole.
func parseSettings(raw json.RawMessage, base pipeline.Config) (pipeline.Config, error) {
	cfg := pipeline.DefaultConfig()
	cfg.Timeout = base.Timeout
	if len(raw) == 0 || string(raw) == "null" {
		return cfg, nil
	}

	var sections map[string]json.RawMessage
	if err := json.Unmarshal(raw, &sections); err != nil {
		return base, fmt.Errorf("invalid settings: %w", err)
	}
	section, nested := sections[constants.ConfigurationSection]
	if !nested {
		section = raw
	}

	var settings validationSettings
	if err := json.Unmarshal(section, &settings); err != nil {
		return base, fmt.Errorf("invalid %s settings: %w", constants.ConfigurationSection, err)
	}
	if settings.CheckOnChange != nil {
		cfg.CheckOnChange = *settings.CheckOnChange
	}
	if settings.PreciseLocations != nil {
		cfg.PreciseLocations = *settings.PreciseLocations
	}
	return cfg, nil
}
