// Package config provides user configuration for espdash.
//
// The configuration is a YAML file holding the device URL, display
// preferences and the web listener settings. Missing sections and zero
// values are filled with defaults, so an absent or empty file is valid.
// Command-line flags override whatever the file says.
//
// # Configuration File Location
//
// The configuration file is stored in platform-appropriate locations:
//   - Linux: $XDG_CONFIG_HOME/espdash/config.yaml or $HOME/.config/espdash/config.yaml
//   - macOS: $HOME/.config/espdash/config.yaml
//   - Windows: %LOCALAPPDATA%\espdash\config.yaml
//
// # Example
//
//	version: 1
//	device:
//	  url: http://192.168.1.42
//	  timeout_seconds: 4
//	display:
//	  language: en
//	  refresh_seconds: 5
//	web:
//	  host: 0.0.0.0
//	  port: 8080
//	discovery:
//	  enabled: true
//	  timeout_seconds: 5
package config
