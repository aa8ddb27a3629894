package jsonutil

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// FlexibleString converts a decoded JSON value to a string, handling payloads
// that carry numbers or booleans where a string is expected. Returns empty
// string for nil.
func FlexibleString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%g", val)
	case json.Number:
		return val.String()
	case bool:
		return fmt.Sprintf("%t", val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// FlexibleInt converts a decoded JSON value to an int. Whole-number floats
// (the default decoding of JSON numbers), json.Number, and digit strings all
// convert; anything else reports false.
func FlexibleInt(v any) (int, bool) {
	switch val := v.(type) {
	case float64:
		if val != float64(int64(val)) {
			return 0, false
		}
		return int(val), true
	case int:
		return val, true
	case int64:
		return int(val), true
	case json.Number:
		n, err := val.Int64()
		if err != nil {
			return 0, false
		}
		return int(n), true
	case string:
		n, err := strconv.Atoi(val)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}
