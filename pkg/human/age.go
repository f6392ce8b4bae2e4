package human

import (
	"fmt"
	"time"
)

// Age renders the distance between t and now the way list
// outputs want it: "3d4h", "2h15m", "41s", "just now".
func Age(t time.Time) string {
	d := time.Since(t)
	if d < time.Second {
		return "just now"
	}

	switch {
	case d >= 24*time.Hour:
		days := d / (24 * time.Hour)
		hours := (d % (24 * time.Hour)) / time.Hour
		return fmt.Sprintf("%dd%dh", days, hours)
	case d >= time.Hour:
		hours := d / time.Hour
		mins := (d % time.Hour) / time.Minute
		return fmt.Sprintf("%dh%dm", hours, mins)
	case d >= time.Minute:
		mins := d / time.Minute
		secs := (d % time.Minute) / time.Second
		return fmt.Sprintf("%dm%ds", mins, secs)
	default:
		return fmt.Sprintf("%ds", d/time.Second)
	}
}
