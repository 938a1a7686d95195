package database

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/spf13/cast"
)

// TimeLayout is the literal layout used for time values.
const TimeLayout = "2006-01-02 15:04:05.999999"

// QuoteValue renders v as a SQL literal, delegating strings to escape.
func QuoteValue(escape func(string) string, v any) string {
	switch v := v.(type) {
	case nil:
		return "NULL"
	case bool:
		if v {
			return "1"
		}
		return "0"
	case string:
		return escape(v)
	case []byte:
		return escape(string(v))
	case time.Time:
		return escape(v.Format(TimeLayout))
	case float32:
		return quoteFloat(float64(v), 32, escape)
	case float64:
		return quoteFloat(v, 64, escape)
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return cast.ToString(v)
	case fmt.Stringer:
		return escape(v.String())
	}

	s, err := cast.ToStringE(v)
	if err != nil {
		s = fmt.Sprint(v)
	}
	return escape(s)
}

func quoteFloat(f float64, bits int, escape func(string) string) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return escape(strconv.FormatFloat(f, 'g', -1, bits))
	}
	return strconv.FormatFloat(f, 'g', -1, bits)
}
