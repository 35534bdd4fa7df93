package render

import "fmt"

// FormatUptime renders a millisecond duration as "<d>d <h>h <m>m".
// Components are floored, never rounded; negative input renders as zero.
func FormatUptime(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	seconds := ms / 1000
	minutes := seconds / 60
	hours := minutes / 60
	days := hours / 24
	return fmt.Sprintf("%dd %dh %dm", days, hours%24, minutes%60)
}
