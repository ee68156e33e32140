package mapper

import (
	"database/sql"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/satishbabariya/r2dbc-go/query/domain"
)

var (
	// ErrNotStruct is returned by Struct for a type that is not a struct or
	// pointer to struct.
	ErrNotStruct = errors.New("mapper: target type must be a struct")
	// ErrColumnCount is returned by SingleColumn when a row does not have
	// exactly one column.
	ErrColumnCount = errors.New("mapper: expected exactly one column")
)

var (
	timeType    = reflect.TypeOf(time.Time{})
	scannerType = reflect.TypeOf((*sql.Scanner)(nil)).Elem()
)

type fieldInfo struct {
	index  []int
	column string
}

var fieldCache sync.Map // reflect.Type -> []fieldInfo

// Struct returns a RowMapper filling exported fields of T from columns.
// A field binds to the column named by its db tag, then its json tag, then
// its lowercased name; matching falls back to ignoring case. Columns without
// a field are ignored. T may be a struct or a pointer to a struct.
func Struct[T any]() RowMapper[T] {
	return RowMapperFunc[T](func(row domain.Row, md domain.RowMetadata) (T, error) {
		var zero T
		cm, err := Default.Apply(row, md)
		if err != nil {
			return zero, err
		}

		out := reflect.New(reflect.TypeFor[T]()).Elem()
		target := out
		if target.Kind() == reflect.Pointer {
			target.Set(reflect.New(target.Type().Elem()))
			target = target.Elem()
		}
		if target.Kind() != reflect.Struct {
			return zero, fmt.Errorf("%w: %s", ErrNotStruct, out.Type())
		}

		for _, f := range structFields(target.Type()) {
			value, ok := cm.Get(f.column)
			if !ok {
				continue
			}
			if err := assign(target.FieldByIndex(f.index), value); err != nil {
				return zero, fmt.Errorf("mapper: column %s: %w", f.column, err)
			}
		}
		return out.Interface().(T), nil
	})
}

// SingleColumn returns a RowMapper converting the only column of a row to T.
func SingleColumn[T any]() RowMapper[T] {
	return RowMapperFunc[T](func(row domain.Row, md domain.RowMetadata) (T, error) {
		var zero T
		if md == nil {
			return zero, ErrNoMetadata
		}
		if n := len(md.ColumnMetadatas()); n != 1 {
			return zero, fmt.Errorf("%w, got %d", ErrColumnCount, n)
		}
		v, err := row.Get(0)
		if err != nil {
			return zero, err
		}
		if t, ok := v.(T); ok {
			return t, nil
		}
		out := reflect.New(reflect.TypeFor[T]()).Elem()
		if err := assign(out, v); err != nil {
			return zero, err
		}
		t, _ := out.Interface().(T)
		return t, nil
	})
}

func structFields(t reflect.Type) []fieldInfo {
	if cached, ok := fieldCache.Load(t); ok {
		return cached.([]fieldInfo)
	}
	var fields []fieldInfo
	collectFields(t, nil, &fields)
	actual, _ := fieldCache.LoadOrStore(t, fields)
	return actual.([]fieldInfo)
}

func collectFields(t reflect.Type, parent []int, out *[]fieldInfo) {
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		index := append(append([]int(nil), parent...), i)

		if field.Anonymous && field.Type.Kind() == reflect.Struct && field.Tag.Get("db") == "" {
			collectFields(field.Type, index, out)
			continue
		}
		if !field.IsExported() {
			continue
		}
		name := columnName(field)
		if name == "" {
			continue
		}
		*out = append(*out, fieldInfo{index: index, column: name})
	}
}

// columnName returns the column for a field, or "" when the field is skipped.
func columnName(field reflect.StructField) string {
	for _, key := range []string{"db", "json"} {
		tag, ok := field.Tag.Lookup(key)
		if !ok {
			continue
		}
		name, _, _ := strings.Cut(tag, ",")
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return strings.ToLower(field.Name)
}

// assign stores a driver value into field, converting between compatible
// kinds.
func assign(field reflect.Value, value any) error {
	if value == nil {
		field.Set(reflect.Zero(field.Type()))
		return nil
	}

	if field.CanAddr() && field.Addr().Type().Implements(scannerType) {
		return field.Addr().Interface().(sql.Scanner).Scan(value)
	}

	rv := reflect.ValueOf(value)
	fieldType := field.Type()
	if rv.Type().AssignableTo(fieldType) {
		field.Set(rv)
		return nil
	}

	if fieldType.Kind() == reflect.Pointer {
		ptr := reflect.New(fieldType.Elem())
		if err := assign(ptr.Elem(), value); err != nil {
			return err
		}
		field.Set(ptr)
		return nil
	}

	v := domain.ValueOf(value)
	switch fieldType.Kind() {
	case reflect.String:
		field.SetString(v.String())

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, ok := v.Int64()
		if !ok {
			f, isFloat := v.Float64()
			if !isFloat {
				parsed, err := parseText(v, func(s string) (int64, error) { return strconv.ParseInt(s, 10, 64) })
				if err != nil {
					return fmt.Errorf("cannot convert %T to %s: %w", value, fieldType, err)
				}
				i = parsed
			} else {
				if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
					return fmt.Errorf("cannot convert %v to %s", f, fieldType)
				}
				i = int64(f)
			}
		}
		if field.OverflowInt(i) {
			return fmt.Errorf("value %d overflows %s", i, fieldType)
		}
		field.SetInt(i)

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u, ok := v.Uint64()
		if !ok {
			parsed, err := parseText(v, func(s string) (uint64, error) { return strconv.ParseUint(s, 10, 64) })
			if err != nil {
				return fmt.Errorf("cannot convert %T to %s: %w", value, fieldType, err)
			}
			u = parsed
		}
		if field.OverflowUint(u) {
			return fmt.Errorf("value %d overflows %s", u, fieldType)
		}
		field.SetUint(u)

	case reflect.Float32, reflect.Float64:
		f, ok := v.Float64()
		if !ok {
			parsed, err := parseText(v, func(s string) (float64, error) { return strconv.ParseFloat(s, 64) })
			if err != nil {
				return fmt.Errorf("cannot convert %T to %s: %w", value, fieldType, err)
			}
			f = parsed
		}
		field.SetFloat(f)

	case reflect.Bool:
		b, ok := v.Bool()
		if !ok {
			parsed, err := parseText(v, strconv.ParseBool)
			if err != nil {
				return fmt.Errorf("cannot convert %T to bool: %w", value, err)
			}
			b = parsed
		}
		field.SetBool(b)

	case reflect.Slice:
		b, ok := v.Bytes()
		if !ok || fieldType.Elem().Kind() != reflect.Uint8 {
			return fmt.Errorf("cannot convert %T to %s", value, fieldType)
		}
		field.SetBytes(append([]byte(nil), b...))

	case reflect.Struct:
		if fieldType != timeType {
			return fmt.Errorf("unsupported struct type: %s", fieldType)
		}
		switch t := value.(type) {
		case string:
			parsed, err := time.Parse(time.RFC3339Nano, t)
			if err != nil {
				return fmt.Errorf("cannot parse time: %w", err)
			}
			field.Set(reflect.ValueOf(parsed))
		case []byte:
			parsed, err := time.Parse(time.RFC3339Nano, string(t))
			if err != nil {
				return fmt.Errorf("cannot parse time: %w", err)
			}
			field.Set(reflect.ValueOf(parsed))
		default:
			return fmt.Errorf("cannot convert %T to time.Time", value)
		}

	default:
		if rv.Type().ConvertibleTo(fieldType) {
			field.Set(rv.Convert(fieldType))
			return nil
		}
		return fmt.Errorf("unsupported field type: %s", fieldType)
	}
	return nil
}

// parseText parses string and byte values, which text protocol drivers such
// as MySQL return for numeric columns.
func parseText[N any](v domain.Value, parse func(string) (N, error)) (N, error) {
	var zero N
	if v.Kind() != domain.KindString && v.Kind() != domain.KindBytes {
		return zero, errors.New("not a numeric value")
	}
	return parse(v.String())
}
