package config

import _ "embed"

// DefaultConfigYAML embedded default configuration
//
//go:embed default.yaml
var DefaultConfigYAML []byte
