// Package configs embeds the configuration template written by
// `conductorboot config init`, so every distribution carries it.
//
// Configuration hierarchy (see internal/config Load):
//  1. Hardcoded defaults
//  2. User config (~/.config/conductor/config.yaml)
//  3. Project config (.conductor.yaml)
//  4. Environment variables (CONDUCTOR_*)
package configs

import _ "embed"

// ConfigTemplate is the commented example configuration.
//
//go:embed conductor.example.yaml
var ConfigTemplate string
