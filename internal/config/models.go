package config

import "time"

// CurrentVersion is the config file schema version this build reads
const CurrentVersion = 1

// Defaults used when the file omits a value
const (
	DefaultDeviceURL        = "http://esp32-diagnostic.local"
	DefaultTimeoutSeconds   = 4
	DefaultRefreshSeconds   = 5
	DefaultLanguage         = "fr"
	DefaultWebHost          = "127.0.0.1"
	DefaultWebPort          = 8080
	DefaultDiscoverySeconds = 5
)

// Config represents the entire user configuration file
type Config struct {
	Version   int                `yaml:"version"`
	Device    *DeviceSettings    `yaml:"device,omitempty"`
	Display   *DisplaySettings   `yaml:"display,omitempty"`
	Web       *WebSettings       `yaml:"web,omitempty"`
	Discovery *DiscoverySettings `yaml:"discovery,omitempty"`
}

// DeviceSettings describes how to reach the device
type DeviceSettings struct {
	URL            string `yaml:"url"`             // Base URL of the firmware web server
	TimeoutSeconds int    `yaml:"timeout_seconds"` // Per-request timeout
}

// DisplaySettings controls how the overview is rendered and refreshed
type DisplaySettings struct {
	Language         string `yaml:"language"`                    // Built-in table: "fr" or "en"
	TranslationsFile string `yaml:"translations_file,omitempty"` // YAML overrides merged onto the table
	RefreshSeconds   int    `yaml:"refresh_seconds"`             // Live field refresh period
}

// WebSettings controls the "serve" listener
type WebSettings struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	CertFile string `yaml:"cert_file,omitempty"`
	KeyFile  string `yaml:"key_file,omitempty"`
}

// DiscoverySettings controls mDNS lookup when no device URL is configured
type DiscoverySettings struct {
	Enabled        bool `yaml:"enabled"`
	TimeoutSeconds int  `yaml:"timeout_seconds"`
}

// NewConfig creates a Config with default values
func NewConfig() *Config {
	c := &Config{Version: CurrentVersion}
	c.fillDefaults()
	return c
}

// fillDefaults replaces missing sections and zero values with defaults
func (c *Config) fillDefaults() {
	if c.Device == nil {
		c.Device = &DeviceSettings{URL: DefaultDeviceURL}
	}
	if c.Device.TimeoutSeconds <= 0 {
		c.Device.TimeoutSeconds = DefaultTimeoutSeconds
	}

	if c.Display == nil {
		c.Display = &DisplaySettings{}
	}
	if c.Display.Language == "" {
		c.Display.Language = DefaultLanguage
	}
	if c.Display.RefreshSeconds <= 0 {
		c.Display.RefreshSeconds = DefaultRefreshSeconds
	}

	if c.Web == nil {
		c.Web = &WebSettings{}
	}
	if c.Web.Host == "" {
		c.Web.Host = DefaultWebHost
	}
	if c.Web.Port == 0 {
		c.Web.Port = DefaultWebPort
	}

	if c.Discovery == nil {
		c.Discovery = &DiscoverySettings{Enabled: true}
	}
	if c.Discovery.TimeoutSeconds <= 0 {
		c.Discovery.TimeoutSeconds = DefaultDiscoverySeconds
	}
}

// RequestTimeout returns the per-request device timeout
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Device.TimeoutSeconds) * time.Second
}

// RefreshInterval returns the live field refresh period
func (c *Config) RefreshInterval() time.Duration {
	return time.Duration(c.Display.RefreshSeconds) * time.Second
}

// DiscoveryTimeout returns how long mDNS lookup may take
func (c *Config) DiscoveryTimeout() time.Duration {
	return time.Duration(c.Discovery.TimeoutSeconds) * time.Second
}
