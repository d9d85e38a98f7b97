package telegen

import (
	"github.com/arloliu/fuda"
)

// LoadConfig loads TelemetryConfig from a YAML or JSON file.
// Struct-tag defaults are applied first, then file values, then environment
// variables, and the result is validated.
func LoadConfig(path string) (*TelemetryConfig, error) {
	var cfg TelemetryConfig
	if err := fuda.LoadFile(path, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// ParseConfig parses TelemetryConfig from a byte slice (YAML or JSON,
// auto-detected) with the same default/env/validation pipeline as LoadConfig.
func ParseConfig(data []byte) (*TelemetryConfig, error) {
	var cfg TelemetryConfig
	if err := fuda.LoadBytes(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
