// Package timeutil provides human-friendly time and duration parsing
// and formatting.
package timeutil

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Absolute layouts tried in order. Go's parser accepts fractional seconds
// after the seconds field even when the layout omits them, so each layout
// also covers its millisecond variants. Month and weekday names match
// case-insensitively.
var layouts = []string{
	time.RFC3339,               // 2023-12-04T12:30:45Z, ±07:00 offsets
	"2006-01-02T15:04:05-0700", // offset without colon
	"2006-01-02T15:04:05",      // no zone, read as UTC
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05-0700",
	"2006-01-02 15:04:05", // space separator
	"2006-01-02",
	"2006/01/02",
	"2006.01.02",
	"01/02/2006", // US order for slashes
	"02-01-2006", // European order for dashes and dots
	"02.01.2006",
	"Jan 2, 2006",
	"Jan 2 2006",
	"2 Jan 2006",
	"January 2, 2006",
	"January 2 2006",
	time.RFC1123Z, // RFC 2822: Mon, 04 Dec 2023 12:30:45 +0000
}

var (
	digitsRe = regexp.MustCompile(`^\d+$`)
	clockRe  = regexp.MustCompile(`^(\d{1,2}:\d{2}(?::\d{2})?)[zZ]?$`)
	// Duration units run largest to smallest and appear at most once.
	humanDurationRe = regexp.MustCompile(`(?i)^(?:(\d+)w)?(?:(\d+)d)?(?:(\d+)h)?(?:(\d+)m)?(?:(\d+)s)?$`)
	// The ISO-8601 subset without years and months.
	isoDurationRe = regexp.MustCompile(`(?i)^p(?:(\d+)w)?(?:(\d+)d)?(?:t(?:(\d+)h)?(?:(\d+)m)?(?:(\d+(?:\.\d+)?)s)?)?$`)
)

// Parse interprets a time string in any of the common human formats.
//
// Examples:
//   - "now" -> current time
//   - "-1h30m", "+1w2d" -> offset from now; bare offsets like "2h" read as past
//   - "1701693045" or "1701693045000" -> unix seconds or milliseconds
//   - "2023-12-04T12:30:45Z" -> ISO-8601, lowercase t/z accepted
//   - "2023-12-04", "20231204", "12/04/2023", "Dec 4, 2023" -> dates
//   - "12:30", "12:30:45Z" -> time of day, today
//
// Results are normalized to UTC.
func Parse(input string) (time.Time, error) {
	s := strings.TrimSpace(input)
	if strings.EqualFold(s, "now") {
		return time.Now().UTC(), nil
	}

	if digitsRe.MatchString(s) {
		// Eight digits is a compact date, never a timestamp.
		if len(s) == 8 {
			t, err := time.Parse("20060102", s)
			if err != nil {
				return time.Time{}, errUnsupportedTime(input)
			}
			return t, nil
		}
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return fromUnix(n), nil
		}
	}

	// Fractional unix timestamps, e.g. "1701693045.5".
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return fromUnixFloat(f), nil
	}

	// Relative offsets reuse the human duration grammar.
	if s != "" && (s[0] == '+' || s[0] == '-') {
		if d, err := parseHumanDuration(s[1:]); err == nil {
			if s[0] == '-' {
				d = -d
			}
			return time.Now().UTC().Add(d), nil
		}
	} else if d, err := parseHumanDuration(s); err == nil {
		return time.Now().UTC().Add(-d), nil
	}

	if m := clockRe.FindStringSubmatch(s); m != nil {
		layout := "15:04"
		if strings.Count(m[1], ":") == 2 {
			layout = "15:04:05"
		}
		t, err := time.Parse(layout, m[1])
		if err != nil {
			return time.Time{}, errUnsupportedTime(input)
		}
		now := time.Now().UTC()
		return time.Date(now.Year(), now.Month(), now.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC), nil
	}

	// Lowercase ISO markers are accepted: 2023-12-04t12:30:45z.
	if len(s) > 10 && s[4] == '-' && s[7] == '-' && s[10] == 't' {
		s = s[:10] + "T" + s[11:]
	}
	if strings.HasSuffix(s, "z") {
		s = strings.TrimSuffix(s, "z") + "Z"
	}

	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, errUnsupportedTime(input)
}

// ParseDuration reads a duration in either human form ("1h30m", "2d",
// "1w2d3h4m5s") or ISO-8601 form ("PT1H30M", "P1W2DT3H"). Matching is
// case-insensitive. Years and months are not supported.
func ParseDuration(input string) (time.Duration, error) {
	s := strings.TrimSpace(input)
	if m := isoDurationRe.FindStringSubmatch(s); m != nil {
		return sumDurationUnits(m[1:], input)
	}
	if m := humanDurationRe.FindStringSubmatch(s); m != nil {
		return sumDurationUnits(m[1:], input)
	}
	return 0, errUnsupportedDuration(input)
}

func parseHumanDuration(s string) (time.Duration, error) {
	m := humanDurationRe.FindStringSubmatch(s)
	if m == nil {
		return 0, errUnsupportedDuration(s)
	}
	return sumDurationUnits(m[1:], s)
}

// sumDurationUnits folds submatches for weeks, days, hours, minutes and
// seconds into a duration. Only the seconds field may carry a fraction.
func sumDurationUnits(parts []string, input string) (time.Duration, error) {
	units := []time.Duration{7 * 24 * time.Hour, 24 * time.Hour, time.Hour, time.Minute, time.Second}
	var d time.Duration
	seen := false
	for i, v := range parts {
		if v == "" {
			continue
		}
		seen = true
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			d += time.Duration(n) * units[i]
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, errUnsupportedDuration(input)
		}
		d += time.Duration(math.Round(f * float64(time.Second)))
	}
	if !seen {
		return 0, errUnsupportedDuration(input)
	}
	return d, nil
}

// Timestamps at or above 1e11 are read as milliseconds; seconds values
// of that size are thousands of years away.
func fromUnix(n int64) time.Time {
	if n >= 1e11 || n <= -1e11 {
		return time.UnixMilli(n).UTC()
	}
	return time.Unix(n, 0).UTC()
}

func fromUnixFloat(f float64) time.Time {
	if f >= 1e11 || f <= -1e11 {
		return time.UnixMilli(int64(f)).UTC()
	}
	sec, frac := math.Modf(f)
	return time.Unix(int64(sec), int64(frac*1e9)).UTC()
}

func errUnsupportedTime(input string) error {
	return fmt.Errorf("unsupported time format: %s - use ISO-8601 (2023-12-04T12:30:45Z), a date (2023-12-04), a unix timestamp, or a relative offset (-1h30m, +2d)", input)
}

func errUnsupportedDuration(input string) error {
	return fmt.Errorf("unsupported duration format: %s - use 1h30m, 2d, or ISO-8601 (PT1H30M, P1W2D)", input)
}
