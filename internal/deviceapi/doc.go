// Package deviceapi provides an HTTP client for the ESP32 diagnostic
// firmware's JSON API.
//
// Two resources are consumed, both with a parameterless GET:
//   - /api/overview: the full device snapshot (chip, memory, WiFi), fetched
//     once per dashboard load
//   - /api/status: a lightweight payload polled on every refresh tick; only
//     its uptime field is read
//
// # Usage Example
//
//	client := deviceapi.NewClient("192.168.1.5", 80)
//
//	overview, err := client.GetOverview(ctx)
//	if err != nil {
//	    log.Fatal(deviceapi.GetShortErrorMessage(err))
//	}
//	fmt.Println(overview.Chip.Model)
//
// # Error Handling
//
// Every failure is a *DeviceError whose Type places it in one of four
// categories: transport (including timeouts, refused connections and DNS
// failures), HTTP status, parse (body is not JSON) and structure (JSON that
// lacks a required record). Use the Is* predicates rather than comparing
// types directly. The client never retries; callers decide what a failure
// means.
//
// # Thread Safety
//
// Client instances are safe for concurrent use once configured.
package deviceapi
