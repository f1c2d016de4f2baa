// Package progress computes display-ready progress, throughput, and ETA
// figures from raw job counters. It holds no state; the engine calls
// Compute with a consistent snapshot of its counters.
package progress

import (
	"fmt"
	"time"
)

// Indeterminate is reported as the ETA when no rate can be derived yet.
const Indeterminate = "--"

// Snapshot is the computed view of a job's progress at one instant.
type Snapshot struct {
	Percent        int
	BytesPerSecond float64
	Speed          string
	ETA            string
	ETASeconds     float64
	ETAKnown       bool
}

// Compute derives percent, speed, and ETA from raw counters.
//
// Percent prefers bytes over file counts and is clamped to [0,100]; a
// running job never reports more than 99 even when byte totals are still
// estimates that the transferred count has overtaken. ETA prefers the byte
// rate, falls back to the file completion rate, and is indeterminate when
// neither rate exists.
func Compute(elapsed time.Duration, bytesDone, totalBytes int64, filesDone, totalFiles int, running bool) Snapshot {
	var s Snapshot

	switch {
	case totalBytes > 0:
		s.Percent = int(bytesDone * 100 / totalBytes)
	case totalFiles > 0:
		s.Percent = filesDone * 100 / totalFiles
	}
	if s.Percent < 0 {
		s.Percent = 0
	}
	if s.Percent > 100 {
		s.Percent = 100
	}
	if running && s.Percent > 99 {
		s.Percent = 99
	}

	secs := elapsed.Seconds()
	if secs > 0 && bytesDone > 0 {
		s.BytesPerSecond = float64(bytesDone) / secs
	}
	s.Speed = FormatSpeed(s.BytesPerSecond)

	switch {
	case totalBytes > 0 && s.BytesPerSecond > 0:
		remaining := totalBytes - bytesDone
		if remaining < 0 {
			remaining = 0
		}
		s.ETASeconds = float64(remaining) / s.BytesPerSecond
		s.ETAKnown = true
	case totalFiles > 0 && filesDone > 0 && secs > 0:
		filesPerSecond := float64(filesDone) / secs
		s.ETASeconds = float64(totalFiles-filesDone) / filesPerSecond
		s.ETAKnown = true
	}

	if s.ETAKnown {
		s.ETA = FormatETA(time.Duration(s.ETASeconds * float64(time.Second)))
	} else {
		s.ETA = Indeterminate
	}
	return s
}

// FormatBytes renders a byte count with a binary-step unit and one decimal,
// e.g. "1.5 MB". Zero renders as "0 B".
func FormatBytes(n int64) string {
	if n <= 0 {
		return "0 B"
	}
	value := float64(n)
	for _, unit := range []string{"B", "KB", "MB", "GB"} {
		if value < 1024 {
			if unit == "B" {
				return fmt.Sprintf("%d B", int64(value))
			}
			return fmt.Sprintf("%.1f %s", value, unit)
		}
		value /= 1024
	}
	return fmt.Sprintf("%.1f TB", value)
}

// FormatSpeed renders a transfer rate, e.g. "2.0 MB/s".
func FormatSpeed(bytesPerSecond float64) string {
	return FormatBytes(int64(bytesPerSecond)) + "/s"
}

// FormatETA renders a duration as "45s", "2m 5s", or "1h 12m".
func FormatETA(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int64(d.Seconds())
	switch {
	case secs < 60:
		return fmt.Sprintf("%ds", secs)
	case secs < 3600:
		return fmt.Sprintf("%dm %ds", secs/60, secs%60)
	default:
		return fmt.Sprintf("%dh %dm", secs/3600, (secs%3600)/60)
	}
}
