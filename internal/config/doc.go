// Package config loads relay configuration from YAML.
//
// Config files support ${VAR} environment substitution. Every field is
// optional; missing values fall back to defaults, so the daemon runs
// with no config file at all. The listen port additionally honors the
// RELAY_PORT environment variable when the file leaves it unset.
package config
