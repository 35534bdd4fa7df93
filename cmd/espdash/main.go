// Espdash is a live dashboard for ESP32 boards running the diagnostic
// firmware.
//
// It reads the firmware's JSON overview once, renders it as the same
// sectioned view the on-board web page shows, then keeps the uptime field
// current by polling the status resource. The view can be served to
// browsers, shown full-screen in a terminal, or printed once.
//
// Usage:
//
//	espdash [command] [flags]
//
// See 'espdash --help' for available commands.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/espdash/internal/config"
	"github.com/muurk/espdash/internal/logging"
	"github.com/muurk/espdash/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	logging.Sync()
}

// Persistent flags shared by every command
var (
	deviceURL       string
	configPath      string
	language        string
	translations    string
	refreshInterval time.Duration
	requestTimeout  time.Duration
	logLevel        string
)

// cfg is the loaded configuration with flag overrides applied
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "espdash",
	Short: "ESP32 diagnostic dashboard",
	Long: `A live dashboard for ESP32 boards running the diagnostic firmware.

The overview (chip, memory, WiFi) is fetched once and rendered; the uptime
field then refreshes on a fixed interval. Use 'serve' for a browser
dashboard, 'watch' for a terminal dashboard or 'show' for a one-shot print.

When no device URL is configured, espdash looks for esp32-diagnostic*.local
hosts with mDNS.`,
	Version:           version.Version,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&deviceURL, "device", "", "Device base URL or host (default from config, then mDNS)")
	flags.StringVar(&configPath, "config", "", "Config file (default $XDG_CONFIG_HOME/espdash/config.yaml)")
	flags.StringVar(&language, "lang", "", "Label language (fr, en)")
	flags.StringVar(&translations, "translations", "", "YAML file overriding label translations")
	flags.DurationVar(&refreshInterval, "interval", 0, "Uptime refresh interval (default 5s)")
	flags.DurationVar(&requestTimeout, "timeout", 0, "Per-request device timeout (default 4s)")
	flags.StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); silent when unset")

	rootCmd.AddCommand(versionCmd)
}

// setup initializes logging and loads the config, then applies flags that
// were set explicitly
func setup(cmd *cobra.Command, args []string) error {
	if err := logging.Initialize(logLevel); err != nil {
		return err
	}

	loaded, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("device") {
		loaded.Device.URL = deviceURL
	}
	if flags.Changed("lang") {
		loaded.Display.Language = language
	}
	if flags.Changed("translations") {
		loaded.Display.TranslationsFile = translations
	}
	if flags.Changed("interval") {
		seconds, err := wholeSeconds("interval", refreshInterval)
		if err != nil {
			return err
		}
		loaded.Display.RefreshSeconds = seconds
	}
	if flags.Changed("timeout") {
		seconds, err := wholeSeconds("timeout", requestTimeout)
		if err != nil {
			return err
		}
		loaded.Device.TimeoutSeconds = seconds
	}

	cfg = loaded
	return nil
}

// wholeSeconds converts a duration flag to the config's seconds field.
// Fractions are rejected instead of truncated.
func wholeSeconds(flag string, d time.Duration) (int, error) {
	if d < time.Second {
		return 0, fmt.Errorf("--%s must be at least 1s, got %v", flag, d)
	}
	if d%time.Second != 0 {
		return 0, fmt.Errorf("--%s must be a whole number of seconds, got %v", flag, d)
	}
	return int(d / time.Second), nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	// Printing the version needs neither logging nor config
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("espdash %s\n", version.Full())
	},
}
