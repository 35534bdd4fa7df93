// Package discovery finds ESP32 diagnostic devices with mDNS.
//
// The diagnostic firmware registers the hostname "esp32-diagnostic.local"
// (optionally with a suffix when several boards share a network) and
// advertises its web server as an "_http._tcp" service. The scanner browses
// that service type and keeps entries whose hostname matches.
//
// # Usage Example
//
//	scanner := discovery.NewScanner()
//	devices, err := scanner.ScanForDevices(ctx)
//	if err != nil {
//	    return err
//	}
//	for _, d := range devices {
//	    fmt.Println(d.Name(), d.BaseURL())
//	}
//
// # Network Requirements
//
// - Requires multicast support on the network interface
// - Devices must be on the same local network segment
// - Firewall must allow mDNS (UDP port 5353)
package discovery
