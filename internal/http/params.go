package http

import (
	"strconv"
	"strings"
	"time"
)

// The single truthy/falsy token set for string-typed boolean flags. Applied
// at the decoding boundary so no handler grows its own variant.
var (
	truthyTokens = map[string]struct{}{"1": {}, "true": {}, "yes": {}, "on": {}}
	falsyTokens  = map[string]struct{}{"0": {}, "false": {}, "no": {}}
)

// ParseBoolToken maps a token to a bool. ok is false for tokens outside
// either set, which leaves tri-state filters unset.
func ParseBoolToken(s string) (value, ok bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if _, hit := truthyTokens[s]; hit {
		return true, true
	}
	if _, hit := falsyTokens[s]; hit {
		return false, true
	}
	return false, false
}

// Truthy interprets a permissively-decoded JSON value as a boolean flag.
// Anything unrecognized is false.
func Truthy(v interface{}) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		val, ok := ParseBoolToken(t)
		return ok && val
	case float64:
		return t != 0
	default:
		return false
	}
}

// Number coerces a permissively-decoded JSON value to float64, defaulting to
// zero on missing or unparseable input.
func Number(v interface{}) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0
		}
		return f
	case int:
		return float64(t)
	default:
		return 0
	}
}

var datetimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04", // HTML datetime-local
	"2006-01-02",
}

// ParseDateTime parses a date-time string; absent or unparseable values
// become nil, never an error.
func ParseDateTime(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range datetimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
