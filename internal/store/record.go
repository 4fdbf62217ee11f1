package store

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/iliyamo/parking-console/internal/model"
)

// Record is one result row keyed by column name as returned by the server.
// []byte values are converted to string when the row is scanned.
type Record map[string]any

func (r Record) Has(col string) bool {
	_, ok := r[col]
	return ok
}

// String returns the column as text; NULL and missing columns are "".
func (r Record) String(col string) string {
	switch v := r[col].(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case time.Time:
		return v.Format("2006-01-02 15:04:05")
	default:
		return fmt.Sprint(v)
	}
}

// Int64 returns the column as an integer; unparsable values are 0.
func (r Record) Int64(col string) int64 {
	switch v := r[col].(type) {
	case int64:
		return v
	case int32:
		return int64(v)
	case int:
		return int64(v)
	case uint64:
		return int64(v)
	case float64:
		return int64(v)
	default:
		n, _ := strconv.ParseInt(r.String(col), 10, 64)
		return n
	}
}

// Money returns a DECIMAL column in paise.
func (r Record) Money(col string) model.Money {
	switch v := r[col].(type) {
	case float64:
		return model.Money(math.Round(v * 100))
	case model.Money:
		return v
	default:
		m, _ := model.ParseMoney(r.String(col))
		return m
	}
}

// Time returns a DATETIME column.  The DSN sets parseTime=true so the driver
// hands back time.Time; text values are parsed in the local zone.
func (r Record) Time(col string) time.Time {
	switch v := r[col].(type) {
	case time.Time:
		return v
	case nil:
		return time.Time{}
	default:
		t, err := time.ParseInLocation("2006-01-02 15:04:05", r.String(col), time.Local)
		if err != nil {
			return time.Time{}
		}
		return t
	}
}
