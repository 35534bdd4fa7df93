package discovery

import (
	"testing"
	"time"
)

func TestDevice_String(t *testing.T) {
	device := &Device{
		Hostname: "esp32-diagnostic.local.",
		IP:       "192.168.4.16",
		Port:     80,
	}

	expected := "ESP32 diagnostic device esp32-diagnostic.local at 192.168.4.16:80"
	if device.String() != expected {
		t.Errorf("Device.String() = %v, want %v", device.String(), expected)
	}
}

func TestDevice_BaseURL(t *testing.T) {
	tests := []struct {
		name     string
		device   *Device
		expected string
	}{
		{
			name:     "standard HTTP port",
			device:   &Device{IP: "192.168.4.16", Port: 80},
			expected: "http://192.168.4.16:80",
		},
		{
			name:     "custom port",
			device:   &Device{IP: "10.0.0.5", Port: 8080},
			expected: "http://10.0.0.5:8080",
		},
		{
			name:     "IPv6 address",
			device:   &Device{IP: "fe80::1", Port: 80},
			expected: "http://[fe80::1]:80",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.device.BaseURL(); got != tt.expected {
				t.Errorf("Device.BaseURL() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestDevice_GetMetadata(t *testing.T) {
	device := &Device{
		Metadata: map[string]string{"path": "/", "board": "esp32"},
	}

	tests := []struct {
		key      string
		expected string
	}{
		{"path", "/"},
		{"board", "esp32"},
		{"missing", ""},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := device.GetMetadata(tt.key); got != tt.expected {
				t.Errorf("GetMetadata(%q) = %q, want %q", tt.key, got, tt.expected)
			}
		})
	}
}

func TestDevice_GetMetadata_NilMap(t *testing.T) {
	device := &Device{}

	if got := device.GetMetadata("anything"); got != "" {
		t.Errorf("GetMetadata() on nil map = %q, want empty", got)
	}
}

func TestDevice_DiscoveredAt(t *testing.T) {
	before := time.Now()
	device := &Device{DiscoveredAt: time.Now()}

	if device.DiscoveredAt.Before(before) {
		t.Error("DiscoveredAt should not be before creation")
	}
}
