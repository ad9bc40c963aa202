package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Profile is an optional YAML file overriding env-derived settings, for
// deployments that ship config alongside the corpus instead of via env.
type Profile struct {
	Port             string  `yaml:"port,omitempty"`
	LogLevel         string  `yaml:"log_level,omitempty"`
	CorpusFile       string  `yaml:"corpus_file,omitempty"`
	SigningKeyFile   string  `yaml:"signing_key_file,omitempty"`
	KeyID            string  `yaml:"key_id,omitempty"`
	AllowUnsigned    *bool   `yaml:"allow_unsigned,omitempty"`
	ReceiptDB        string  `yaml:"receipt_db,omitempty"`
	RateLimit        float64 `yaml:"rate_limit,omitempty"`
	TelemetryEnabled *bool   `yaml:"telemetry_enabled,omitempty"`
	OTLPEndpoint     string  `yaml:"otlp_endpoint,omitempty"`
}

// LoadWithProfile loads env configuration and, when TAT_PROFILE names a
// profile file, applies it over the env values.
func LoadWithProfile() (*Config, error) {
	cfg := Load()
	if cfg.ProfileFile == "" {
		return cfg, nil
	}
	if err := LoadProfile(cfg.ProfileFile, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadProfile reads a profile YAML and applies it over cfg. Unset profile
// fields leave cfg untouched.
func LoadProfile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("load profile %q: %w", path, err)
	}
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("parse profile %q: %w", path, err)
	}

	if p.Port != "" {
		cfg.Port = p.Port
	}
	if p.LogLevel != "" {
		cfg.LogLevel = p.LogLevel
	}
	if p.CorpusFile != "" {
		cfg.CorpusFile = p.CorpusFile
	}
	if p.SigningKeyFile != "" {
		cfg.SigningKeyFile = p.SigningKeyFile
	}
	if p.KeyID != "" {
		cfg.KeyID = p.KeyID
	}
	if p.AllowUnsigned != nil {
		cfg.AllowUnsigned = *p.AllowUnsigned
	}
	if p.ReceiptDB != "" {
		cfg.ReceiptDB = p.ReceiptDB
	}
	if p.RateLimit != 0 {
		cfg.RateLimit = p.RateLimit
	}
	if p.TelemetryEnabled != nil {
		cfg.TelemetryEnabled = *p.TelemetryEnabled
	}
	if p.OTLPEndpoint != "" {
		cfg.OTLPEndpoint = p.OTLPEndpoint
	}
	return nil
}
