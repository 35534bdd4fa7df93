package deviceapi

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// TemperatureUnavailable is the sentinel the firmware reports when the chip
// has no readable temperature sensor.
const TemperatureUnavailable = -999

// Text is a string field that also accepts JSON numbers and booleans.
// Firmware builds disagree on whether revision is "3" or 3.
type Text string

// UnmarshalJSON implements json.Unmarshaler
func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	}
	if bytes.Equal(data, []byte("true")) || bytes.Equal(data, []byte("false")) {
		*t = Text(data)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", data)
	}
	*t = Text(n.String())
	return nil
}

// String returns the text value
func (t Text) String() string {
	return string(t)
}

// DeviceOverview is the full device-state snapshot returned by /api/overview.
// Nested records are pointers so an absent record can be told apart from a
// zeroed one; Validate reports the absent ones.
type DeviceOverview struct {
	Chip   *ChipInfo   `json:"chip"`
	Memory *MemoryInfo `json:"memory"`
	WiFi   *WiFiInfo   `json:"wifi"`
}

// ChipInfo identifies the SoC and its runtime
type ChipInfo struct {
	Model       Text     `json:"model"`
	Revision    Text     `json:"revision"`
	Cores       int      `json:"cores"`
	Freq        int      `json:"freq"` // MHz
	MAC         Text     `json:"mac"`
	Uptime      int64    `json:"uptime"` // milliseconds since boot
	Temperature *float64 `json:"temperature,omitempty"`
}

// HasTemperature reports whether the payload carries a real temperature reading
func (c *ChipInfo) HasTemperature() bool {
	return c.Temperature != nil && *c.Temperature != TemperatureUnavailable
}

// MemoryBlock is a total/free pair in bytes
type MemoryBlock struct {
	Total int64 `json:"total"`
	Free  int64 `json:"free"`
}

// MemoryInfo holds internal SRAM and the optional external PSRAM
type MemoryInfo struct {
	SRAM  *MemoryBlock `json:"sram"`
	PSRAM *MemoryBlock `json:"psram,omitempty"`
}

// HasPSRAM reports whether external PSRAM is fitted
func (m *MemoryInfo) HasPSRAM() bool {
	return m.PSRAM != nil && m.PSRAM.Total > 0
}

// WiFiInfo is the station connection state. Both fields are empty while
// the device is not associated.
type WiFiInfo struct {
	SSID Text `json:"ssid"`
	IP   Text `json:"ip"`
}

// Validate returns a structure error naming every required record that is
// absent from the snapshot.
func (d *DeviceOverview) Validate() error {
	var missing []string
	if d.Chip == nil {
		missing = append(missing, "chip")
	}
	if d.Memory == nil {
		missing = append(missing, "memory")
	} else if d.Memory.SRAM == nil {
		missing = append(missing, "memory.sram")
	}
	if d.WiFi == nil {
		missing = append(missing, "wifi")
	}
	if len(missing) > 0 {
		return NewStructureError("overview", missing)
	}
	return nil
}

// StatusSnapshot is the lightweight payload returned by /api/status.
// The endpoint sends more fields; only uptime is consumed.
type StatusSnapshot struct {
	Uptime *int64 `json:"uptime"`
}

// Validate returns a structure error when uptime is absent
func (s *StatusSnapshot) Validate() error {
	if s.Uptime == nil {
		return NewStructureError("status", []string{"uptime"})
	}
	return nil
}

// UptimeMillis returns the uptime, or 0 when absent
func (s *StatusSnapshot) UptimeMillis() int64 {
	if s.Uptime == nil {
		return 0
	}
	return *s.Uptime
}

// CleanJSONResponse extracts the first complete JSON object from data.
//
// Some firmware builds pad the HTTP body after the object, either with
// stale buffer bytes or a trailing NUL:
//
//	{"uptime":3661000}\x00\x00<div>
//
// This function finds the end of the object and truncates the rest.
func CleanJSONResponse(data []byte) ([]byte, error) {
	start := bytes.IndexByte(data, '{')
	if start == -1 {
		return nil, fmt.Errorf("no JSON object found in response")
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(data); i++ {
		b := data[i]

		if escaped {
			escaped = false
			continue
		}
		if b == '\\' {
			escaped = true
			continue
		}

		// Braces inside strings don't count
		if b == '"' {
			inString = !inString
			continue
		}

		if !inString {
			if b == '{' {
				depth++
			} else if b == '}' {
				depth--
				if depth == 0 {
					return data[start : i+1], nil
				}
			}
		}
	}

	return nil, fmt.Errorf("unclosed JSON object in response")
}

// ParseOverview decodes and validates an overview payload
func ParseOverview(data []byte) (*DeviceOverview, error) {
	var overview DeviceOverview
	if err := decode(data, &overview); err != nil {
		return nil, err
	}
	if err := overview.Validate(); err != nil {
		return nil, err
	}
	return &overview, nil
}

// ParseStatus decodes and validates a status payload
func ParseStatus(data []byte) (*StatusSnapshot, error) {
	var status StatusSnapshot
	if err := decode(data, &status); err != nil {
		return nil, err
	}
	if err := status.Validate(); err != nil {
		return nil, err
	}
	return &status, nil
}

func decode(data []byte, v any) error {
	cleaned, err := CleanJSONResponse(data)
	if err != nil {
		return NewParseError("failed to clean JSON response", err)
	}
	if err := json.Unmarshal(cleaned, v); err != nil {
		return NewParseError("failed to parse JSON response", err)
	}
	return nil
}
