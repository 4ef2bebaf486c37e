// Package config provides the configuration of the toolset CLI and services.
package config

import (
	"github.com/Deduction-Dev/composio/pkg/telemetry"
	"github.com/Deduction-Dev/composio/toolset"
	"github.com/effective-security/x/configloader"
)

// Config of the toolset with telemetry.
type Config struct {
	Toolset   toolset.Config   `json:"toolset" yaml:"toolset"`
	Telemetry telemetry.Config `json:"telemetry" yaml:"telemetry"`
}

// LoadConfig from file, empty file name returns the default config.
// Environment variables in values are expanded.
func LoadConfig(file string) (*Config, error) {
	cfg := new(Config)
	if file == "" {
		return cfg, nil
	}

	err := configloader.UnmarshalAndExpand(file, cfg)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}
