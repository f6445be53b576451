package services

import (
	"strings"

	"github.com/spf13/cast"
)

// TextValue renders a cell or field value as text. Integral numbers print
// without a fractional part, so a code read as 1001.0 matches "1001".
func TextValue(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return cast.ToString(v)
}

// BoolValue reads strings as true only when they say "true" in any case.
func BoolValue(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		return strings.EqualFold(strings.TrimSpace(b), "true")
	default:
		return cast.ToBool(v)
	}
}

// NumberOrZero coerces v to a float, falling back to 0.
func NumberOrZero(v any) float64 {
	n, err := cast.ToFloat64E(v)
	if err != nil {
		return 0
	}
	return n
}
