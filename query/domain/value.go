package domain

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// Kind classifies the driver value carried by a Value.
type Kind uint8

const (
	// KindNull is SQL NULL.
	KindNull Kind = iota
	// KindBool is a boolean.
	KindBool
	// KindInt is any signed integer width.
	KindInt
	// KindUint is any unsigned integer width.
	KindUint
	// KindFloat is float32 or float64.
	KindFloat
	// KindString is text.
	KindString
	// KindBytes is a raw byte slice.
	KindBytes
	// KindTime is a time.Time.
	KindTime
	// KindObject is any other driver value (arrays, JSON documents, UUIDs, ...).
	KindObject
)

var kindNames = [...]string{
	KindNull:   "null",
	KindBool:   "bool",
	KindInt:    "int",
	KindUint:   "uint",
	KindFloat:  "float",
	KindString: "string",
	KindBytes:  "bytes",
	KindTime:   "time",
	KindObject: "object",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Value is a column value as delivered by the driver. The raw value is kept
// as-is; Kind only classifies it so callers can switch without reflection.
type Value struct {
	kind Kind
	raw  any
}

// ValueOf wraps a driver value without converting it.
func ValueOf(v any) Value {
	switch t := v.(type) {
	case nil:
		return Value{kind: KindNull}
	case Value:
		return t
	case bool:
		return Value{kind: KindBool, raw: v}
	case int, int8, int16, int32, int64:
		return Value{kind: KindInt, raw: v}
	case uint, uint8, uint16, uint32, uint64:
		return Value{kind: KindUint, raw: v}
	case float32, float64:
		return Value{kind: KindFloat, raw: v}
	case string:
		return Value{kind: KindString, raw: v}
	case []byte:
		if t == nil {
			return Value{kind: KindNull}
		}
		return Value{kind: KindBytes, raw: v}
	case time.Time:
		return Value{kind: KindTime, raw: v}
	default:
		return Value{kind: KindObject, raw: v}
	}
}

// Null returns the NULL value.
func Null() Value { return Value{kind: KindNull} }

// Kind reports the classification of the value.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value is SQL NULL.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Any returns the raw driver value, nil for NULL.
func (v Value) Any() any { return v.raw }

// Bool returns the value as a bool. Integers are true when non-zero.
func (v Value) Bool() (bool, bool) {
	switch v.kind {
	case KindBool:
		return v.raw.(bool), true
	case KindInt:
		i, _ := v.Int64()
		return i != 0, true
	case KindUint:
		u, _ := v.Uint64()
		return u != 0, true
	}
	return false, false
}

// Int64 returns the value as an int64 for any integer kind. Unsigned values
// larger than math.MaxInt64 do not fit and report false.
func (v Value) Int64() (int64, bool) {
	switch x := v.raw.(type) {
	case int:
		return int64(x), true
	case int8:
		return int64(x), true
	case int16:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case uint, uint8, uint16, uint32, uint64:
		u, _ := v.Uint64()
		if u > math.MaxInt64 {
			return 0, false
		}
		return int64(u), true
	}
	return 0, false
}

// Uint64 returns the value as a uint64 for non-negative integer kinds.
func (v Value) Uint64() (uint64, bool) {
	switch x := v.raw.(type) {
	case uint:
		return uint64(x), true
	case uint8:
		return uint64(x), true
	case uint16:
		return uint64(x), true
	case uint32:
		return uint64(x), true
	case uint64:
		return x, true
	case int, int8, int16, int32, int64:
		i, _ := v.Int64()
		if i < 0 {
			return 0, false
		}
		return uint64(i), true
	}
	return 0, false
}

// Float64 returns the value as a float64 for float and integer kinds.
func (v Value) Float64() (float64, bool) {
	switch x := v.raw.(type) {
	case float32:
		return float64(x), true
	case float64:
		return x, true
	}
	if v.kind == KindInt {
		i, _ := v.Int64()
		return float64(i), true
	}
	if v.kind == KindUint {
		u, _ := v.Uint64()
		return float64(u), true
	}
	return 0, false
}

// String returns text for string and bytes kinds, and a formatted
// representation for everything else. NULL renders as "NULL".
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "NULL"
	case KindString:
		return v.raw.(string)
	case KindBytes:
		return string(v.raw.([]byte))
	case KindTime:
		return v.raw.(time.Time).Format(time.RFC3339Nano)
	}
	return fmt.Sprint(v.raw)
}

// Bytes returns the raw bytes for bytes and string kinds.
func (v Value) Bytes() ([]byte, bool) {
	switch v.kind {
	case KindBytes:
		return v.raw.([]byte), true
	case KindString:
		return []byte(v.raw.(string)), true
	}
	return nil, false
}

// Time returns the value as a time.Time.
func (v Value) Time() (time.Time, bool) {
	if v.kind == KindTime {
		return v.raw.(time.Time), true
	}
	return time.Time{}, false
}
