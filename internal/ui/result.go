package ui

import (
	"errors"
	"strings"

	"github.com/muurk/espdash/internal/deviceapi"
)

// RenderSuccessBox renders a success result box with ordered details
func RenderSuccessBox(title string, details []Param, width int) string {
	width = ClampWidth(width)

	lines := []string{"", SuccessTitleStyle.Render(" " + SuccessMarker + "  " + title), ""}
	for _, d := range details {
		lines = append(lines, ResultKeyStyle.Render(" "+d.Key+":")+" "+ResultValueStyle.Render(d.Value))
	}
	if len(details) > 0 {
		lines = append(lines, "")
	}

	return SuccessBoxStyle(width).Render(strings.Join(lines, "\n"))
}

// RenderErrorBox renders an error result box with troubleshooting tips
func RenderErrorBox(title string, err error, troubleshooting []string, width int) string {
	width = ClampWidth(width)

	lines := []string{"", ErrorTitleStyle.Render(" " + FailureMarker + "  FAILED  ─  " + title), ""}

	if err != nil {
		lines = append(lines, ErrorMessageStyle.Render(" Error: "+deviceapi.GetShortErrorMessage(err)), "")
	}

	if len(troubleshooting) > 0 {
		tips := []string{TroubleshootingTitleStyle.Render("Troubleshooting:"), ""}
		for _, tip := range troubleshooting {
			tips = append(tips, TroubleshootingItemStyle.Render("  • "+tip))
		}
		lines = append(lines, TroubleshootingBoxStyle(width).Render(strings.Join(tips, "\n")), "")
	}

	return ErrorBoxStyle(width).Render(strings.Join(lines, "\n"))
}

// Troubleshooting returns tips for a device error, or nil for other errors
func Troubleshooting(err error) []string {
	var devErr *deviceapi.DeviceError
	if !errors.As(err, &devErr) {
		return nil
	}

	switch devErr.Type {
	case deviceapi.ErrTypeDNS:
		return []string{
			"Check the device hostname, or use its IP address",
			"Run 'espdash scan' to discover devices on the local network",
		}
	case deviceapi.ErrTypeConnectionRefused:
		return []string{
			"The device answered but nothing listens on that port",
			"Check --device includes the web server port",
		}
	case deviceapi.ErrTypeTimeout, deviceapi.ErrTypeTransport:
		return []string{
			"Check the device is powered and joined to the same network",
			"Increase the request timeout in the config file",
		}
	case deviceapi.ErrTypeHTTP:
		return []string{
			"Check the device firmware exposes /api/overview and /api/status",
		}
	case deviceapi.ErrTypeParse, deviceapi.ErrTypeStructure:
		return []string{
			"The firmware answered with an unexpected payload",
			"Run with --log-level debug to see the request details",
		}
	}
	return nil
}
