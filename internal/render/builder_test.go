package render

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/muurk/espdash/internal/deviceapi"
	"github.com/muurk/espdash/internal/i18n"
)

func fixture() *deviceapi.DeviceOverview {
	return &deviceapi.DeviceOverview{
		Chip: &deviceapi.ChipInfo{
			Model:    "ESP32-S3",
			Revision: "0.2",
			Cores:    2,
			Freq:     240,
			MAC:      "AA:BB:CC:DD:EE:FF",
			Uptime:   3661000,
		},
		Memory: &deviceapi.MemoryInfo{
			SRAM: &deviceapi.MemoryBlock{Total: 327680, Free: 150000},
		},
		WiFi: &deviceapi.WiFiInfo{SSID: "Home", IP: "192.168.1.5"},
	}
}

func englishBuilder(t *testing.T) *Builder {
	t.Helper()
	table, err := i18n.Builtin("en")
	if err != nil {
		t.Fatal(err)
	}
	return NewBuilder(i18n.New(table))
}

func TestBuildOverview_EndToEnd(t *testing.T) {
	out, err := englishBuilder(t).BuildOverview(fixture())
	if err != nil {
		t.Fatalf("BuildOverview() error = %v", err)
	}

	for _, want := range []string{
		"ESP32-S3",
		"0d 1h 1m",
		"320.00 KB",
		"146.48 KB free",
		"2 cores @ 240 MHz",
		"Home",
		"192.168.1.5",
		`id="uptime"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("BuildOverview() missing %q\n%s", want, out)
		}
	}

	if strings.Contains(out, "PSRAM") || strings.Contains(out, " MB") {
		t.Errorf("BuildOverview() should not render a PSRAM line\n%s", out)
	}
}

func TestBuildOverview_SectionOrder(t *testing.T) {
	out, err := englishBuilder(t).BuildOverview(fixture())
	if err != nil {
		t.Fatal(err)
	}

	chip := strings.Index(out, "Chip Information")
	memory := strings.Index(out, "Memory details")
	network := strings.Index(out, "WiFi connection")
	if chip < 0 || memory < 0 || network < 0 || !(chip < memory && memory < network) {
		t.Errorf("sections out of order: chip=%d memory=%d network=%d", chip, memory, network)
	}
	if n := strings.Count(out, `<div class="section">`); n != 3 {
		t.Errorf("section count = %d, want 3", n)
	}
}

func TestBuildOverview_UptimeNode(t *testing.T) {
	out, err := NewBuilder(nil).BuildOverview(fixture())
	if err != nil {
		t.Fatal(err)
	}

	want := `<div class="info-value" id="uptime">0d 1h 1m</div>`
	if !strings.Contains(out, want) {
		t.Errorf("BuildOverview() missing %s\n%s", want, out)
	}
	if strings.Count(out, `id="uptime"`) != 1 {
		t.Error("uptime id must appear exactly once")
	}
}

func TestBuildOverview_PSRAM(t *testing.T) {
	tests := []struct {
		name  string
		psram *deviceapi.MemoryBlock
		want  bool
	}{
		{"absent", nil, false},
		{"zero total", &deviceapi.MemoryBlock{Total: 0}, false},
		{"two megabytes", &deviceapi.MemoryBlock{Total: 2097152, Free: 1048576}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := fixture()
			d.Memory.PSRAM = tt.psram

			out, err := NewBuilder(nil).BuildOverview(d)
			if err != nil {
				t.Fatal(err)
			}
			if got := strings.Contains(out, "2.00 MB"); got != tt.want {
				t.Errorf("contains 2.00 MB = %v, want %v\n%s", got, tt.want, out)
			}
			if got := strings.Contains(out, "PSRAM"); got != tt.want {
				t.Errorf("contains PSRAM = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBuildOverview_EscapesPayload(t *testing.T) {
	d := fixture()
	d.WiFi.SSID = "<script>alert('x')</script>"
	d.WiFi.IP = `"><img>`
	d.Chip.Model = "ESP32 & co"
	d.Chip.MAC = "<mac>"

	out, err := NewBuilder(nil).BuildOverview(d)
	if err != nil {
		t.Fatal(err)
	}

	if strings.Contains(out, "<script>") {
		t.Errorf("raw <script> in output\n%s", out)
	}
	for _, want := range []string{
		"&lt;script&gt;alert(&#39;x&#39;)&lt;/script&gt;",
		"&quot;&gt;&lt;img&gt;",
		"ESP32 &amp; co",
		"&lt;mac&gt;",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s", want)
		}
	}
}

func TestBuildOverview_EscapesLabels(t *testing.T) {
	b := NewBuilder(i18n.New(i18n.Table{"chip_info": "<b>Chip</b>"}))

	out, err := b.BuildOverview(fixture())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "<h2>&lt;b&gt;Chip&lt;/b&gt;</h2>") {
		t.Errorf("label not escaped\n%s", out)
	}
}

func TestBuildOverview_MissingOptionalWiFi(t *testing.T) {
	d := fixture()
	d.WiFi = &deviceapi.WiFiInfo{}

	out, err := NewBuilder(nil).BuildOverview(d)
	if err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(out, `<div class="info-label">connected_ssid</div><div class="info-value"></div>`) {
		t.Errorf("SSID row should render empty\n%s", out)
	}
	if !strings.Contains(out, `<div class="info-label">IP</div><div class="info-value"></div>`) {
		t.Errorf("IP row should render empty\n%s", out)
	}
}

func TestBuildOverview_Temperature(t *testing.T) {
	d := fixture()
	temp := 41.25
	d.Chip.Temperature = &temp

	out, err := NewBuilder(nil).BuildOverview(d)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "41.2 °C") && !strings.Contains(out, "41.3 °C") {
		t.Errorf("temperature line missing\n%s", out)
	}

	sentinel := float64(deviceapi.TemperatureUnavailable)
	d.Chip.Temperature = &sentinel
	out, _ = NewBuilder(nil).BuildOverview(d)
	if strings.Contains(out, "°C") {
		t.Error("sentinel temperature should not render")
	}
}

func TestBuildOverview_StructureError(t *testing.T) {
	tests := []struct {
		name string
		d    *deviceapi.DeviceOverview
	}{
		{"nil snapshot", nil},
		{"no chip", &deviceapi.DeviceOverview{Memory: fixture().Memory, WiFi: fixture().WiFi}},
		{"no sram", &deviceapi.DeviceOverview{Chip: fixture().Chip, Memory: &deviceapi.MemoryInfo{}, WiFi: fixture().WiFi}},
		{"no wifi", &deviceapi.DeviceOverview{Chip: fixture().Chip, Memory: fixture().Memory}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := NewBuilder(nil).BuildOverview(tt.d)
			if !deviceapi.IsStructureError(err) {
				t.Errorf("BuildOverview() error = %v, want structure error", err)
			}
			if out != "" {
				t.Errorf("BuildOverview() = %q, want empty on error", out)
			}
		})
	}
}

func TestBuildOverview_DoesNotMutate(t *testing.T) {
	d := fixture()
	d.Memory.PSRAM = &deviceapi.MemoryBlock{Total: 4194304, Free: 100}
	before := fixture()
	before.Memory.PSRAM = &deviceapi.MemoryBlock{Total: 4194304, Free: 100}

	if _, err := NewBuilder(nil).BuildOverview(d); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(d, before) {
		t.Error("BuildOverview() modified its input")
	}
}

func TestErrorBlock(t *testing.T) {
	b := NewBuilder(i18n.New(i18n.Table{"error": "Erreur"}))

	out := b.ErrorBlock(errors.New(`dial tcp: <refused>`))
	want := `<div class="section"><p>Erreur: dial tcp: &lt;refused&gt;</p></div>`
	if out != want {
		t.Errorf("ErrorBlock() = %q, want %q", out, want)
	}
}

func TestFormatSizes(t *testing.T) {
	if got := FormatKB(327680); got != "320.00" {
		t.Errorf("FormatKB(327680) = %s, want 320.00", got)
	}
	if got := FormatKB(150000); got != "146.48" {
		t.Errorf("FormatKB(150000) = %s, want 146.48", got)
	}
	if got := FormatMB(2097152); got != "2.00" {
		t.Errorf("FormatMB(2097152) = %s, want 2.00", got)
	}
	if got := FormatMB(0); got != "0.00" {
		t.Errorf("FormatMB(0) = %s, want 0.00", got)
	}
}
