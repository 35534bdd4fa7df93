package render

import (
	"fmt"
	"strings"

	"github.com/muurk/espdash/internal/deviceapi"
	"github.com/muurk/espdash/internal/i18n"
)

// Stable node identifiers shared by the fragment, the page shell and the
// refresh loop.
const (
	ContainerID = "overviewContainer"
	UptimeID    = "uptime"
)

const (
	bytesPerKB = 1024
	bytesPerMB = 1048576
)

// Builder renders overview snapshots with labels from a Translator
type Builder struct {
	tr *i18n.Translator
}

// NewBuilder creates a Builder. A nil translator renders raw label keys.
func NewBuilder(tr *i18n.Translator) *Builder {
	return &Builder{tr: tr}
}

// label translates and escapes a label key
func (b *Builder) label(key string) string {
	return Escape(b.tr.Translate(key))
}

// BuildOverview renders the chip, memory and network sections of d.
// It returns a structure error when d lacks a required record, and never
// modifies d.
func (b *Builder) BuildOverview(d *deviceapi.DeviceOverview) (string, error) {
	if d == nil {
		return "", deviceapi.NewStructureError("overview", []string{"chip", "memory", "wifi"})
	}
	if err := d.Validate(); err != nil {
		return "", err
	}

	var h strings.Builder
	b.writeChipSection(&h, d.Chip)
	b.writeMemorySection(&h, d.Memory)
	b.writeNetworkSection(&h, d.WiFi)
	return h.String(), nil
}

func (b *Builder) writeChipSection(h *strings.Builder, chip *deviceapi.ChipInfo) {
	openSection(h, b.label("chip_info"))

	model := Escape(chip.Model) + " " + b.label("revision") + " " + Escape(chip.Revision)
	writeItem(h, b.label("full_model"), model, "")

	cpu := fmt.Sprintf("%d %s @ %d MHz", chip.Cores, b.label("cores"), chip.Freq)
	writeItem(h, b.label("cpu_cores"), cpu, "")

	writeItem(h, b.label("mac_wifi"), Escape(chip.MAC), "")
	writeItem(h, b.label("uptime"), FormatUptime(chip.Uptime), UptimeID)

	if chip.HasTemperature() {
		writeItem(h, b.label("temperature"), fmt.Sprintf("%.1f °C", *chip.Temperature), "")
	}

	closeSection(h)
}

func (b *Builder) writeMemorySection(h *strings.Builder, memory *deviceapi.MemoryInfo) {
	openSection(h, b.label("memory_details"))

	sram := fmt.Sprintf("%s KB (%s KB %s)",
		FormatKB(memory.SRAM.Total), FormatKB(memory.SRAM.Free), b.label("free"))
	writeItem(h, b.label("internal_sram"), sram, "")

	if memory.HasPSRAM() {
		writeItem(h, b.label("PSRAM"), FormatMB(memory.PSRAM.Total)+" MB", "")
	}

	closeSection(h)
}

func (b *Builder) writeNetworkSection(h *strings.Builder, wifi *deviceapi.WiFiInfo) {
	openSection(h, b.label("wifi_connection"))
	writeItem(h, b.label("connected_ssid"), Escape(wifi.SSID), "")
	writeItem(h, b.label("IP"), Escape(wifi.IP), "")
	closeSection(h)
}

// ErrorBlock renders the single visible error block shown in place of the
// overview when the initial load fails.
func (b *Builder) ErrorBlock(err error) string {
	return `<div class="section"><p>` + b.label("error") + ": " + Escape(err) + `</p></div>`
}

// FormatKB renders a byte count in kilobytes with two fraction digits
func FormatKB(bytes int64) string {
	return fmt.Sprintf("%.2f", float64(bytes)/bytesPerKB)
}

// FormatMB renders a byte count in megabytes with two fraction digits
func FormatMB(bytes int64) string {
	return fmt.Sprintf("%.2f", float64(bytes)/bytesPerMB)
}

// openSection, writeItem and closeSection take already-escaped text

func openSection(h *strings.Builder, title string) {
	h.WriteString(`<div class="section"><h2>`)
	h.WriteString(title)
	h.WriteString(`</h2><div class="info-grid">`)
}

func writeItem(h *strings.Builder, label, value, id string) {
	h.WriteString(`<div class="info-item"><div class="info-label">`)
	h.WriteString(label)
	h.WriteString(`</div><div class="info-value"`)
	if id != "" {
		h.WriteString(` id="`)
		h.WriteString(id)
		h.WriteString(`"`)
	}
	h.WriteString(`>`)
	h.WriteString(value)
	h.WriteString(`</div></div>`)
}

func closeSection(h *strings.Builder) {
	h.WriteString(`</div></div>`)
}
