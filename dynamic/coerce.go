package dynamic

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/anirudhraja/thriftlite/schema"
)

// Helpers to coerce JSON inputs to integers (accept exponent/float forms if integral)
func coerceToInt64(v any) (int64, error) {
	switch t := v.(type) {
	case int64:
		return t, nil
	case int32:
		return int64(t), nil
	case int:
		return int64(t), nil
	case int16:
		return int64(t), nil
	case int8:
		return int64(t), nil
	case uint8:
		return int64(t), nil
	case uint16:
		return int64(t), nil
	case uint32:
		return int64(t), nil
	case uint64:
		if t > math.MaxInt64 {
			return 0, fmt.Errorf("%d overflows int64", t)
		}
		return int64(t), nil
	case json.Number:
		// Try integer first
		if iv, err := t.Int64(); err == nil {
			return iv, nil
		}
		return integralFloat(t.String())
	case float64:
		return floatToInt64(t)
	case string:
		// allow explicit integer strings
		if strings.ContainsAny(t, ".eE") {
			return integralFloat(t)
		}
		return strconv.ParseInt(t, 10, 64)
	default:
		// named integer types, e.g. generated enums
		rv := reflect.ValueOf(v)
		switch rv.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return rv.Int(), nil
		}
		return 0, fmt.Errorf("expected integer-like, got %T", v)
	}
}

func integralFloat(s string) (int64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return floatToInt64(f)
}

// floatToInt64 accepts only integral values in [-2^63, 2^63).
func floatToInt64(f float64) (int64, error) {
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("non-integer numeric for integer field")
	}
	if f < -(1<<63) || f >= 1<<63 {
		return 0, fmt.Errorf("%g overflows int64", f)
	}
	return int64(f), nil
}

// coerceToIntN checks that v fits in a signed integer of the given width.
func coerceToIntN(v any, bits int) (int64, error) {
	n, err := coerceToInt64(v)
	if err != nil {
		return 0, err
	}
	if bits < 64 {
		lo, hi := int64(-1)<<(bits-1), int64(1)<<(bits-1)-1
		if n < lo || n > hi {
			return 0, fmt.Errorf("%d out of range for i%d", n, bits)
		}
	}
	return n, nil
}

func coerceToFloat64(v any) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case float32:
		return float64(t), nil
	case json.Number:
		return t.Float64()
	case string:
		switch t {
		case "NaN":
			return math.NaN(), nil
		case "Infinity":
			return math.Inf(1), nil
		case "-Infinity":
			return math.Inf(-1), nil
		}
		return strconv.ParseFloat(t, 64)
	default:
		n, err := coerceToInt64(v)
		if err != nil {
			return 0, fmt.Errorf("expected number, got %T", v)
		}
		return float64(n), nil
	}
}

func coerceToBool(v any) (bool, error) {
	switch t := v.(type) {
	case bool:
		return t, nil
	case string:
		return strconv.ParseBool(t)
	default:
		return false, fmt.Errorf("expected bool, got %T", v)
	}
}

// coerceToBytes accepts raw bytes or base64 text, the JSON form of binary.
func coerceToBytes(v any) ([]byte, error) {
	switch t := v.(type) {
	case []byte:
		return t, nil
	case string:
		b, err := base64.StdEncoding.DecodeString(t)
		if err != nil {
			return nil, fmt.Errorf("binary value is not base64: %w", err)
		}
		return b, nil
	default:
		return nil, fmt.Errorf("expected bytes, got %T", v)
	}
}

func coerceToString(v any) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case []byte:
		return string(t), nil
	default:
		return "", fmt.Errorf("expected string, got %T", v)
	}
}

func coerceToUUID(v any) (uuid.UUID, error) {
	switch t := v.(type) {
	case uuid.UUID:
		return t, nil
	case [16]byte:
		return uuid.UUID(t), nil
	case []byte:
		return uuid.FromBytes(t)
	case string:
		return uuid.Parse(t)
	default:
		return uuid.Nil, fmt.Errorf("expected uuid, got %T", v)
	}
}

// toSlice accepts []any or any other slice or array.
func toSlice(v any) ([]any, error) {
	if s, ok := v.([]any); ok {
		return s, nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = rv.Index(i).Interface()
		}
		return out, nil
	case reflect.Map:
		// Generated sets are map[T]struct{}.
		out := make([]any, 0, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out = append(out, iter.Key().Interface())
		}
		return out, nil
	}
	return nil, fmt.Errorf("expected list, got %T", v)
}

type entry struct {
	key, value any
}

// toEntries accepts any map and returns its entries ordered by key text.
func toEntries(v any) ([]entry, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map {
		return nil, fmt.Errorf("expected map, got %T", v)
	}
	out := make([]entry, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out = append(out, entry{key: iter.Key().Interface(), value: iter.Value().Interface()})
	}
	sortEntries(out)
	return out, nil
}

func zeroPrimitive(p schema.Primitive) any {
	switch p {
	case schema.TypeI8:
		return int8(0)
	case schema.TypeI16:
		return int16(0)
	case schema.TypeI32:
		return int32(0)
	case schema.TypeI64:
		return int64(0)
	case schema.TypeDouble:
		return float64(0)
	case schema.TypeBool:
		return false
	case schema.TypeBinary:
		return []byte{}
	case schema.TypeUUID:
		return uuid.Nil
	default:
		return ""
	}
}
