package result

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"
)

const (
	dateLayout     = "2006-01-02"
	datetimeLayout = "2006-01-02 15:04:05.999999"
)

// Normalize converts a driver value into one of nil, bool, int64, float64
// or string. Byte slices become strings, times are printed in SQL datetime
// form, and anything else falls back to its printed form.
func Normalize(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case bool, int64, float64, string:
		return x
	case []byte:
		return string(x)
	case int:
		return int64(x)
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case uint8:
		return int64(x)
	case uint16:
		return int64(x)
	case uint32:
		return int64(x)
	case uint:
		return normalizeUint(uint64(x))
	case uint64:
		return normalizeUint(x)
	case float32:
		return float64(x)
	case time.Time:
		return formatTime(x)
	case interface{ Float64() float64 }:
		return x.Float64()
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

func normalizeUint(u uint64) any {
	if u > math.MaxInt64 {
		return strconv.FormatUint(u, 10)
	}
	return int64(u)
}

func formatTime(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format(dateLayout)
	}
	return t.Format(datetimeLayout)
}

// Key returns a canonical type-tagged encoding of v. Two values share a key
// exactly when they compare equal: integral floats key like the matching
// integer, and NULL keys differently from every string and number.
func Key(v any) string {
	switch x := Normalize(v).(type) {
	case nil:
		return "null"
	case bool:
		if x {
			return "b:true"
		}
		return "b:false"
	case int64:
		return "n:" + strconv.FormatInt(x, 10)
	case float64:
		if x == math.Trunc(x) && math.Abs(x) < math.MaxInt64 {
			return "n:" + strconv.FormatInt(int64(x), 10)
		}
		return "n:" + strconv.FormatFloat(x, 'g', -1, 64)
	case string:
		return "s:" + strconv.Quote(x)
	default:
		return "?:" + fmt.Sprint(x)
	}
}

// Equal reports whether two cells hold the same value.
func Equal(a, b any) bool {
	return Key(a) == Key(b)
}

// RowKey encodes a row, keeping value order.
func RowKey(row Row) string {
	keys := make([]string, len(row))
	for i, v := range row {
		keys[i] = Key(v)
	}
	return strings.Join(keys, "|")
}

// SortedRowKey encodes a row ignoring the order of its values.
func SortedRowKey(row Row) string {
	keys := make([]string, len(row))
	for i, v := range row {
		keys[i] = Key(v)
	}
	slices.Sort(keys)
	return strings.Join(keys, "|")
}

// Format renders a cell for display. NULL prints as "NULL".
func Format(v any) string {
	switch x := Normalize(v).(type) {
	case nil:
		return "NULL"
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}
