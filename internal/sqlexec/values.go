package sqlexec

import (
	"database/sql/driver"
	"encoding/hex"
	"fmt"
	"math/big"
	"time"
)

// normalizeValue converts driver-specific scalar types into values that
// survive JSON encoding and read naturally in rendered results: timestamps
// as RFC 3339 strings, raw bytes as hex, exact numerics as their decimal
// string form.
func normalizeValue(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case time.Time:
		return val.UTC().Format(time.RFC3339)
	case []byte:
		return hex.EncodeToString(val)
	case *big.Int:
		return val.String()
	case bool, string, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return val
	}

	// pgtype values (numeric, interval, uuid, ...) implement driver.Valuer;
	// their Value form is already a plain scalar.
	if dv, ok := v.(driver.Valuer); ok {
		if out, err := dv.Value(); err == nil {
			switch o := out.(type) {
			case nil:
				return nil
			case time.Time:
				return o.UTC().Format(time.RFC3339)
			case []byte:
				return string(o)
			default:
				return o
			}
		}
	}
	return fmt.Sprint(v)
}
