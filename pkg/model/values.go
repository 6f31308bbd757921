package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// IsEmptyValue reports whether a derived field value counts as "no answer".
// Empty answers are omitted from submission records rather than stored as
// empty strings.
func IsEmptyValue(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case []string:
		return len(v) == 0
	case []any:
		return len(v) == 0
	default:
		return false
	}
}

// StringValue coerces a field value to its string form for comparison and
// display. Slices join with ", " matching the history view formatting.
func StringValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []string:
		out := ""
		for i, item := range v {
			if i > 0 {
				out += ", "
			}
			out += item
		}
		return out
	case []any:
		out := ""
		for i, item := range v {
			if i > 0 {
				out += ", "
			}
			out += StringValue(item)
		}
		return out
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}

// SliceValue returns the value as a string slice when it is slice-typed, and
// ok=false otherwise.
func SliceValue(value any) ([]string, bool) {
	switch v := value.(type) {
	case []string:
		return v, true
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, StringValue(item))
		}
		return out, true
	default:
		return nil, false
	}
}

// NumberValue coerces a field value to float64 for range checks. ok is false
// when the value carries no parseable number.
func NumberValue(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

// DateValue normalises date-ish inputs (time.Time, ISO strings, epoch millis)
// to the calendar-date portion used by date inputs. Unparseable values return
// the empty string.
func DateValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case time.Time:
		if v.IsZero() {
			return ""
		}
		return v.UTC().Format("2006-01-02")
	case *time.Time:
		if v == nil {
			return ""
		}
		return DateValue(*v)
	case string:
		if v == "" {
			return ""
		}
		for _, layout := range []string{time.RFC3339, "2006-01-02", "2006-01-02 15:04:05"} {
			if parsed, err := time.Parse(layout, v); err == nil {
				return parsed.UTC().Format("2006-01-02")
			}
		}
		return ""
	case float64:
		return time.UnixMilli(int64(v)).UTC().Format("2006-01-02")
	case int64:
		return time.UnixMilli(v).UTC().Format("2006-01-02")
	default:
		return ""
	}
}
