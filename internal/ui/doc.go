// Package ui provides terminal output for the espdash CLI.
//
// It has two halves. The one-shot half (Printer, Header, result boxes)
// renders styled output and returns, and is used by "show" and "scan".
// The interactive half is the Dashboard Bubble Tea model used by "watch".
//
// Both consume the same overview markup the web dashboard shows.
// ParseFragment walks that markup with golang.org/x/net/html and yields
// sections of label/value rows, which RenderFragment lays out with
// Lipgloss and PlainText prints unstyled for pipes.
//
// # Live updates
//
// Document implements refresh.Document on top of a running program:
//
//	model := ui.NewDashboard(ui.DashboardConfig{Title: "ESP32 Diagnostic"})
//	p := ui.NewDashboardProgram(ctx, model, nil)
//	loop := refresh.New(client, builder, ui.NewDocument(p))
//	go loop.InitialLoad(ctx)
//	err := ui.RunProgram(p)
//
// Container writes are parsed once and sent to the model as a message.
// The uptime node resolves only while the current fragment declares it.
//
// # Logging Integration
//
// This package expects logging to be controlled via the ESPDASH_LOG_LEVEL
// environment variable. When unset or empty, zap logging is silent so log
// lines do not tear the full-screen dashboard.
package ui
