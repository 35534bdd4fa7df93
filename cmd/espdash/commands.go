package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/espdash/internal/deviceapi"
	"github.com/muurk/espdash/internal/discovery"
	"github.com/muurk/espdash/internal/logging"
	"github.com/muurk/espdash/internal/refresh"
	"github.com/muurk/espdash/internal/render"
	"github.com/muurk/espdash/internal/server"
	"github.com/muurk/espdash/internal/ui"
)

// Command flags
var (
	serveHost   string
	servePort   int
	certPath    string
	keyPath     string
	showFormat  string
	scanTimeout int
	scanSave    bool
)

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(scanCmd)

	serveCmd.Flags().StringVar(&serveHost, "host", "", "Listen host (default from config, 127.0.0.1)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Listen port (default from config, 8080)")
	serveCmd.Flags().StringVar(&certPath, "cert", "", "TLS certificate file (serve HTTPS)")
	serveCmd.Flags().StringVar(&keyPath, "key", "", "TLS private key file")

	showCmd.Flags().StringVar(&showFormat, "format", "text", "Output format (text, html)")

	scanCmd.Flags().IntVar(&scanTimeout, "timeout", 0, "Scan timeout in seconds (default from config, 5)")
	scanCmd.Flags().BoolVar(&scanSave, "save", false, "Store the first device found as the configured device")
}

// serveCmd serves the browser dashboard
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard to browsers",
	Long: `Serve the ESP32 dashboard over HTTP.

The page shows the device overview and keeps the uptime field current.
Updates are pushed to open pages over a websocket, so browsers never
talk to the device directly. /healthz reports refresh counters as JSON.`,
	Example: `  # Serve on localhost:8080
  espdash serve --device 192.168.1.42

  # Serve on all interfaces with English labels
  espdash serve --host 0.0.0.0 --port 9000 --lang en

  # Serve over HTTPS
  espdash serve --cert cert.pem --key key.pem`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	s, err := newSession(ctx)
	if err != nil {
		return err
	}

	webCfg := *cfg.Web
	if cmd.Flags().Changed("host") {
		webCfg.Host = serveHost
	}
	if cmd.Flags().Changed("port") {
		webCfg.Port = servePort
	}
	if cmd.Flags().Changed("cert") || cmd.Flags().Changed("key") {
		webCfg.CertFile, webCfg.KeyFile = certPath, keyPath
	}

	srv, err := server.New(&server.Config{
		Host:        webCfg.Host,
		Port:        webCfg.Port,
		CertPath:    webCfg.CertFile,
		KeyPath:     webCfg.KeyFile,
		Lang:        cfg.Display.Language,
		Device:      s.device,
		Placeholder: `<div class="loading">` + render.Escape(s.translator.Translate("loading")) + `</div>`,
	})
	if err != nil {
		return err
	}

	loop := s.newLoop(srv.Page())
	srv.SetStatsFunc(loop.Stats)

	// Bind first so a busy port fails before any device traffic
	if err := srv.Listen(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// A failed first load is already rendered as the error block
	handle, _ := loop.InitialLoad(ctx)
	defer handle.Stop()

	fmt.Printf("Dashboard for %s at http://%s/\n", s.device, srv.Addr())
	return srv.Start(ctx)
}

// watchCmd shows the dashboard in the terminal
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Show a live dashboard in the terminal",
	Long: `Show the ESP32 overview full-screen in the terminal and keep the uptime
field current. Press r to reload the overview, q to quit.

When stdout is not a terminal, watch prints the overview once, like show.`,
	Example: `  espdash watch --device esp32-diagnostic.local
  espdash watch --interval 2s --lang en`,
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	if !ui.IsTerminal() {
		logging.Debug("stdout is not a terminal, printing once")
		return runShow(cmd, args)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	s, err := newSession(ctx)
	if err != nil {
		return err
	}

	// The model is built before the loop it reports on
	var loop *refresh.Loop
	model := ui.NewDashboard(ui.DashboardConfig{
		Title:       "ESP32 Diagnostic",
		Command:     cmd.CommandPath(),
		Device:      s.device,
		LoadingText: s.translator.Translate("loading"),
		Stats:       func() refresh.Stats { return loop.Stats() },
		Reload: func() {
			if err := loop.Load(ctx); err != nil {
				logging.Debug("Reload failed", zap.Error(err))
			}
		},
	})
	p := ui.NewDashboardProgram(ctx, model, os.Stdout)
	loop = s.newLoop(ui.NewDocument(p))

	// Document writes block until the program is running
	handles := make(chan *refresh.Handle, 1)
	go func() {
		handle, _ := loop.InitialLoad(ctx)
		handles <- handle
	}()

	runErr := ui.RunProgram(p)
	cancel()
	(<-handles).Stop()
	return runErr
}

// showCmd prints the overview once
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the device overview once",
	Long: `Fetch the overview once and print it.

The text format prints styled sections on a terminal and plain
"label: value" lines otherwise. The html format prints the fragment the
web dashboard shows, for embedding elsewhere.`,
	Example: `  espdash show --device 192.168.1.42
  espdash show --format html > overview.html
  espdash show --lang en | grep SSID`,
	RunE: runShow,
}

func runShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if showFormat != "text" && showFormat != "html" {
		return fmt.Errorf("unknown format %q (expected text or html)", showFormat)
	}

	s, err := newSession(ctx)
	if err != nil {
		return err
	}

	doc := &bufferDocument{}
	loadErr := s.newLoop(doc).Load(ctx)

	if showFormat == "html" {
		fmt.Println(doc.Container())
		return loadErr
	}

	frag, err := ui.ParseFragment(doc.Container())
	if err != nil {
		return err
	}

	if !ui.IsTerminal() {
		fmt.Print(ui.PlainText(frag))
		return loadErr
	}

	printer := ui.NewPrinter(os.Stdout)
	printer.PrintHeader(ui.NewHeader("ESP32 Diagnostic", cmd.CommandPath(),
		ui.Param{Key: "Device", Value: s.device},
		ui.Param{Key: "Language", Value: cfg.Display.Language},
	))
	if loadErr != nil {
		printer.PrintError("Could not load the overview", loadErr)
		return loadErr
	}
	printer.PrintFragment(frag)
	return nil
}

// scanCmd discovers devices on the network
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Find ESP32 diagnostic devices with mDNS",
	Long: `Browse mDNS for esp32-diagnostic*.local hosts and list them.

With --save, the first device found becomes the configured device.`,
	Example: `  espdash scan
  espdash scan --timeout 10 --save`,
	RunE: runScan,
}

func runScan(cmd *cobra.Command, args []string) error {
	scanner := discovery.NewScanner()
	scanner.Timeout = cfg.DiscoveryTimeout()
	if scanTimeout > 0 {
		scanner.Timeout = time.Duration(scanTimeout) * time.Second
	}

	printer := ui.NewPrinter(os.Stdout)
	printer.Println(fmt.Sprintf("Scanning for %s devices (timeout: %s)...", discovery.HostnamePrefix, scanner.Timeout))

	devices, err := scanner.ScanForDevices(cmd.Context())
	if err != nil {
		printer.PrintError("Scan failed", err)
		return fmt.Errorf("scan failed: %w", err)
	}

	if len(devices) == 0 {
		printer.Println(ui.RenderErrorBox("No devices found", nil, []string{
			"Ensure the board is powered and joined to this network",
			"Check that multicast (UDP 5353) is not blocked",
			"Try increasing --timeout for slower networks",
			"Use --device to give the address directly",
		}, printer.Width()))
		return nil
	}

	for _, d := range devices {
		details := []ui.Param{
			{Key: "URL", Value: d.BaseURL()},
			{Key: "Instance", Value: d.Instance},
		}
		for _, k := range []string{"board", "version"} {
			if v := d.GetMetadata(k); v != "" {
				details = append(details, ui.Param{Key: k, Value: v})
			}
		}
		printer.PrintSuccess(d.Name(), details)
	}
	printer.Println("Found " + strconv.Itoa(len(devices)) + " device(s). Use 'espdash watch --device <url>' to open one.")

	if scanSave {
		if err := verifyDevice(cmd.Context(), devices[0]); err != nil {
			printer.Println(ui.RenderErrorBox("Device not saved", err, ui.Troubleshooting(err), printer.Width()))
			return fmt.Errorf("device check failed: %w", err)
		}
		cfg.Device.URL = devices[0].BaseURL()
		if err := cfg.Save(configPath); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
		printer.Println("Saved " + cfg.Device.URL + " as the default device.")
	}
	return nil
}

// verifyDevice checks that a discovered host answers the diagnostic status
// resource before it becomes the default device
func verifyDevice(ctx context.Context, d *discovery.Device) error {
	client := deviceapi.NewClient(d.IP, d.Port)
	client.SetTimeout(cfg.RequestTimeout())

	err := client.Ping(ctx)
	if deviceapi.IsHTTPError(err) {
		return fmt.Errorf("%s answered but does not serve the diagnostic API: %w", d.Addr(), err)
	}
	return err
}
