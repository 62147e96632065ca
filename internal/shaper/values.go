package shaper

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// cellString renders a value for the table view.
func cellString(v any) string {
	if v == nil {
		return "NULL"
	}
	return textValue(v)
}

// csvString renders a value for CSV, where NULL is an empty field.
func csvString(v any) string {
	if v == nil {
		return ""
	}
	return textValue(v)
}

func textValue(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case []byte:
		return string(x)
	case time.Time:
		return x.Format(time.RFC3339Nano)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

// jsonValue maps a driver value onto something JSON can carry.
// Values with no JSON form are written as strings.
func jsonValue(v any) any {
	switch x := v.(type) {
	case nil, string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
		return x
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return textValue(x)
		}
		return x
	case float32:
		if math.IsNaN(float64(x)) || math.IsInf(float64(x), 0) {
			return textValue(x)
		}
		return x
	default:
		return textValue(x)
	}
}
