package dataset

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// TimestampLayout is the layout used to render time values and the ##NOW##
// replacement.
const TimestampLayout = "2006-01-02 15:04:05"

// FormatValue renders a cell value in the string form used for sorting,
// comparison and display. nil renders as the empty string.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case bool:
		if x {
			return "1"
		}
		return "0"
	case int:
		return strconv.Itoa(x)
	case int8:
		return strconv.FormatInt(int64(x), 10)
	case int16:
		return strconv.FormatInt(int64(x), 10)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int64:
		return strconv.FormatInt(x, 10)
	case uint:
		return strconv.FormatUint(uint64(x), 10)
	case uint8:
		return strconv.FormatUint(uint64(x), 10)
	case uint16:
		return strconv.FormatUint(uint64(x), 10)
	case uint32:
		return strconv.FormatUint(uint64(x), 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case time.Time:
		return x.Format(TimestampLayout)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

var decimalPattern = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// ValuesEqual reports whether two cell values are equal for assertion
// purposes. nil only equals nil. Otherwise values are equal when their
// string forms match, or when both parse as numbers with the same value
// (so int64(5) from a driver equals "5" from a fixture, and "1.50" equals 1.5).
// Only plain decimal forms count as numbers: "1_000", "0x10" and "inf" do not.
func ValuesEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	as, bs := FormatValue(a), FormatValue(b)
	if as == bs {
		return true
	}
	if !decimalPattern.MatchString(as) || !decimalPattern.MatchString(bs) {
		return false
	}
	af, aerr := strconv.ParseFloat(as, 64)
	bf, berr := strconv.ParseFloat(bs, 64)
	return aerr == nil && berr == nil && af == bf
}
