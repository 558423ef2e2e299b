package fdp

import (
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"reflect"
	"strconv"
	"strings"
)

// Params is the query parameter set of one call. A nil value marks an unset
// filter: the key stays in the set but no pair is written to the query
// string, so the service sees the parameter as absent rather than empty.
type Params map[string]any

// Values encodes the set for the query string. Booleans encode as True and
// False, slices repeat the key once per element, maps encode as JSON.
func (p Params) Values() url.Values {
	if len(p) == 0 {
		return nil
	}
	out := make(url.Values, len(p))
	for k, v := range p {
		for _, s := range formatValues(v) {
			out.Add(k, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func formatValues(v any) []string {
	if v == nil {
		return nil
	}
	switch val := v.(type) {
	case string:
		return []string{val}
	case []string:
		return append([]string(nil), val...)
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		if rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8 {
			return []string{string(rv.Bytes())}
		}
		out := make([]string, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			if s, ok := formatScalar(rv.Index(i)); ok {
				out = append(out, s)
			}
		}
		return out
	}
	if s, ok := formatScalar(rv); ok {
		return []string{s}
	}
	return nil
}

func formatScalar(rv reflect.Value) (string, bool) {
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return "", false
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.String:
		return rv.String(), true
	case reflect.Bool:
		if rv.Bool() {
			return "True", true
		}
		return "False", true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10), true
	case reflect.Float32:
		return formatFloat(rv.Float(), 32), true
	case reflect.Float64:
		return formatFloat(rv.Float(), 64), true
	case reflect.Map, reflect.Struct:
		raw, err := json.Marshal(rv.Interface())
		if err != nil {
			return fmt.Sprint(rv.Interface()), true
		}
		return string(raw), true
	default:
		return fmt.Sprint(rv.Interface()), true
	}
}

// formatFloat writes floats the way Python's str does: whole numbers keep a
// trailing ".0" and very small or large magnitudes use exponent notation.
func formatFloat(f float64, bitSize int) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	if abs := math.Abs(f); abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(f, 'e', -1, bitSize)
	}
	s := strconv.FormatFloat(f, 'f', -1, bitSize)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// String returns a pointer to v.
func String(v string) *string { return &v }

// Int64 returns a pointer to v.
func Int64(v int64) *int64 { return &v }

// Bool returns a pointer to v.
func Bool(v bool) *bool { return &v }

// optional turns a nil pointer into an untyped nil so the key reads as unset.
func optional[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}
