// Package config loads fetch client profiles from YAML files.
//
// It provides functionality for:
//   - Loading profiles from .fetchkit.yml or .fetchkit.yaml files
//   - Default profile values
//   - Environment variable expansion inside profile files
//   - Hot reload of a profile file via Watch
package config
