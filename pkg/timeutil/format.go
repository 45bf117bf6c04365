package timeutil

import (
	"fmt"
	"strings"
	"time"
)

// Display units, largest first. A year is 365 days, a week 7.
var displayUnits = []struct {
	suffix string
	secs   int64
}{
	{"y", 365 * 24 * 3600},
	{"w", 7 * 24 * 3600},
	{"d", 24 * 3600},
	{"h", 3600},
	{"m", 60},
	{"s", 1},
}

// Display renders a duration as its two most significant non-zero units,
// truncated to whole seconds: "2y3w", "3h30m", "45s".
func Display(d time.Duration) string {
	return displayIn(d, "%d")
}

// DisplayPadded is Display with each value zero-padded to two digits, for
// column-aligned output: "02y03w", "03h30m".
func DisplayPadded(d time.Duration) string {
	return displayIn(d, "%02d")
}

func displayIn(d time.Duration, verb string) string {
	var out strings.Builder
	if d < 0 {
		out.WriteByte('-')
		d = -d
	}
	rem := int64(d / time.Second)
	shown := 0
	for _, u := range displayUnits {
		v := rem / u.secs
		rem %= u.secs
		if v == 0 {
			continue
		}
		fmt.Fprintf(&out, verb+"%s", v, u.suffix)
		if shown++; shown == 2 {
			break
		}
	}
	if shown == 0 {
		return fmt.Sprintf(verb+"s", 0)
	}
	return out.String()
}

// FormatBytes converts bytes to human-readable format (e.g., "1.5 MB").
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
