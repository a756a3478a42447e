package cost

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

// Amount is a reported cost or metric. Unreachable results carry +Inf, which
// plain JSON cannot encode, so Amount writes it as the string "Infinity" and
// NaN as null.
type Amount float64

// Unbounded is the cost of a route that does not exist
var Unbounded = Amount(math.Inf(1))

// IsUnbounded reports whether a is +Inf
func (a Amount) IsUnbounded() bool {
	return math.IsInf(float64(a), 1)
}

// MarshalJSON implements json.Marshaler
func (a Amount) MarshalJSON() ([]byte, error) {
	f := float64(a)
	switch {
	case math.IsNaN(f):
		return []byte("null"), nil
	case math.IsInf(f, 1):
		return []byte(`"Infinity"`), nil
	case math.IsInf(f, -1):
		return []byte(`"-Infinity"`), nil
	}
	return strconv.AppendFloat(nil, f, 'f', -1, 64), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch string(data) {
	case "null":
		*a = Amount(math.NaN())
		return nil
	case `"Infinity"`:
		*a = Amount(math.Inf(1))
		return nil
	case `"-Infinity"`:
		*a = Amount(math.Inf(-1))
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*a = Amount(f)
	return nil
}

// Less orders amounts ascending with NaN after everything, including +Inf
func Less(a, b float64) bool {
	switch {
	case math.IsNaN(a):
		return false
	case math.IsNaN(b):
		return true
	}
	return a < b
}

// RoundTo rounds f to the given number of decimals, leaving Inf and NaN alone
func RoundTo(f float64, decimals int) float64 {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return f
	}
	p := math.Pow10(decimals)
	return math.Round(f*p) / p
}
