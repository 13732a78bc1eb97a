// Package format renders amounts and timestamps for display.
package format

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// DefaultPattern is the layout Pattern callers use when they have no preference
const DefaultPattern = "YYYY-MM-DD HH:mm:ss"

// Amount renders v with two decimals. nil renders as "0.00".
func Amount(v any) string {
	return AmountN(v, 2)
}

// AmountN renders v with the given number of decimals. Values that are not
// numeric render as "".
func AmountN(v any, decimals int) string {
	if decimals < 0 {
		decimals = 0
	}
	f, ok := toFloat(v)
	if !ok {
		return ""
	}
	return strconv.FormatFloat(f, 'f', decimals, 64)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case nil:
		return 0, true
	case float64:
		return n, !math.IsNaN(n) && !math.IsInf(n, 0)
	case float32:
		return toFloat(float64(n))
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		return toFloat(string(n))
	case *string:
		if n == nil {
			return 0, true
		}
		return toFloat(*n)
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0, true
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return toFloat(f)
	default:
		return 0, false
	}
}

var layouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Parse accepts a time.Time, a *time.Time or a backend timestamp string
func Parse(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, !t.IsZero()
	case *time.Time:
		if t == nil {
			return time.Time{}, false
		}
		return Parse(*t)
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return time.Time{}, false
		}
		for _, layout := range layouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				return parsed, true
			}
		}
	}
	return time.Time{}, false
}

// Date renders v as YYYY-MM-DD
func Date(v any) string {
	return Pattern(v, "YYYY-MM-DD")
}

// DateTime renders v as YYYY-MM-DD HH:mm:ss
func DateTime(v any) string {
	return Pattern(v, DefaultPattern)
}

var tokens = []struct {
	token  string
	layout string
}{
	{"YYYY", "2006"},
	{"MM", "01"},
	{"DD", "02"},
	{"HH", "15"},
	{"mm", "04"},
	{"ss", "05"},
}

// Pattern renders v using the YYYY MM DD HH mm ss tokens of pattern. The time
// keeps the offset it was parsed with. Invalid input renders as "".
func Pattern(v any, pattern string) string {
	t, ok := Parse(v)
	if !ok {
		return ""
	}
	if pattern == "" {
		pattern = DefaultPattern
	}

	out := pattern
	for _, tok := range tokens {
		out = strings.ReplaceAll(out, tok.token, t.Format(tok.layout))
	}
	return out
}

const (
	day   = 24 * time.Hour
	month = 30 * day
	year  = 365 * day
)

var magnitudes = []humanize.RelTimeMagnitude{
	{D: time.Minute, Format: "just now", DivBy: time.Second},
	{D: 2 * time.Minute, Format: "1 minute %s", DivBy: time.Minute},
	{D: time.Hour, Format: "%d minutes %s", DivBy: time.Minute},
	{D: 2 * time.Hour, Format: "1 hour %s", DivBy: time.Hour},
	{D: day, Format: "%d hours %s", DivBy: time.Hour},
	{D: 2 * day, Format: "1 day %s", DivBy: day},
	{D: month, Format: "%d days %s", DivBy: day},
	{D: 2 * month, Format: "1 month %s", DivBy: month},
	{D: year, Format: "%d months %s", DivBy: month},
	{D: 2 * year, Format: "1 year %s", DivBy: year},
	{D: math.MaxInt64, Format: "%d years %s", DivBy: year},
}

// Relative renders how long before now v happened. Months count as 30 days
// and years as 365; times in the future read "just now".
func Relative(v any, now time.Time) string {
	t, ok := Parse(v)
	if !ok {
		return ""
	}
	if t.After(now) {
		t = now
	}
	return humanize.CustomRelTime(t, now, "ago", "from now", magnitudes)
}
