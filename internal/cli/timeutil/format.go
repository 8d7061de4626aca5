// Package timeutil formats server-reported timestamps and durations for
// human-facing CLI output.
package timeutil

import (
	"fmt"
	"time"
)

// LocalTimeFormat is the layout for timestamps shown to the user.
const LocalTimeFormat = "Mon Jan 2 15:04:05 2006"

// FormatUptime renders a Go duration string such as "72h30m15s" as
// "3d 0h 30m 15s". Unparseable input is returned unchanged.
func FormatUptime(uptime string) string {
	dur, err := time.ParseDuration(uptime)
	if err != nil {
		return uptime
	}

	total := int(dur.Seconds())
	days := total / 86400
	hrs := total / 3600 % 24
	mins := total / 60 % 60
	secs := total % 60

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh %dm %ds", days, hrs, mins, secs)
	case hrs > 0:
		return fmt.Sprintf("%dh %dm %ds", hrs, mins, secs)
	case mins > 0:
		return fmt.Sprintf("%dm %ds", mins, secs)
	default:
		return fmt.Sprintf("%ds", secs)
	}
}

// FormatTime converts an RFC3339 timestamp to the local time zone using
// LocalTimeFormat. Unparseable input is returned unchanged.
func FormatTime(timestamp string) string {
	ts, err := time.Parse(time.RFC3339, timestamp)
	if err != nil {
		return timestamp
	}
	return ts.Local().Format(LocalTimeFormat)
}
