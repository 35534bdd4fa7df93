package discovery

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

// Device represents a diagnostic firmware instance found on the network
type Device struct {
	// Instance is the advertised service instance name
	Instance string

	// ID is the hostname suffix after "esp32-diagnostic-", empty for the
	// bare default hostname
	ID string

	// Hostname is the mDNS hostname (e.g., "esp32-diagnostic.local.")
	Hostname string

	// IP is the device address, IPv4 when available
	IP string

	// Port is the HTTP port (typically 80)
	Port int

	// Metadata contains additional mDNS TXT record data
	Metadata map[string]string

	// DiscoveredAt is when the device was discovered
	DiscoveredAt time.Time
}

// Name returns the hostname without the trailing dot
func (d *Device) Name() string {
	return strings.TrimSuffix(d.Hostname, ".")
}

// String returns a human-readable string representation of the device
func (d *Device) String() string {
	return fmt.Sprintf("ESP32 diagnostic device %s at %s", d.Name(), d.Addr())
}

// Addr returns host:port, bracketing IPv6 addresses
func (d *Device) Addr() string {
	return net.JoinHostPort(d.IP, strconv.Itoa(d.Port))
}

// BaseURL returns the HTTP base URL for the device
func (d *Device) BaseURL() string {
	return "http://" + d.Addr()
}

// GetMetadata retrieves a metadata value by key, or returns empty string if not found
func (d *Device) GetMetadata(key string) string {
	if d.Metadata == nil {
		return ""
	}
	return d.Metadata[key]
}
