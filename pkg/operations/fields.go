package operations

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/dukex/operion-kerio/pkg/kerio"
)

// Fields holds the user-supplied values of one operation invocation.
// Values arrive decoded from JSON or templates, so numbers may be float64
// and dates may be strings.
type Fields map[string]any

// Has reports whether key is present and not nil.
func (f Fields) Has(key string) bool {
	v, ok := f[key]

	return ok && v != nil
}

// String returns the value of key as a string, or "" when absent.
func (f Fields) String(key string) string {
	return f.StringOr(key, "")
}

// StringOr returns the value of key as a string, or def when absent or empty.
func (f Fields) StringOr(key, def string) string {
	switch v := f[key].(type) {
	case nil:
		return def
	case string:
		if v == "" {
			return def
		}

		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// Int returns the value of key as an int, or def when absent or not numeric.
func (f Fields) Int(key string, def int) int {
	switch v := f[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n)
		}
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}

	return def
}

// Bool returns the value of key as a bool and whether it was supplied.
func (f Fields) Bool(key string) (bool, bool) {
	switch v := f[key].(type) {
	case bool:
		return v, true
	case string:
		b, err := strconv.ParseBool(v)
		if err != nil {
			return false, false
		}

		return b, true
	}

	return false, false
}

// BoolOr returns the value of key as a bool, or def when not supplied.
func (f Fields) BoolOr(key string, def bool) bool {
	if b, ok := f.Bool(key); ok {
		return b
	}

	return def
}

// Map returns the nested object under key, or an empty Fields.
func (f Fields) Map(key string) Fields {
	switch v := f[key].(type) {
	case Fields:
		return v
	case map[string]any:
		return Fields(v)
	}

	return Fields{}
}

// Collection returns the entries of a fixed collection, accepting either
// {key: {item: [...]}} or a bare {key: [...]}.
func (f Fields) Collection(key, item string) []Fields {
	raw := f[key]
	if m, ok := raw.(map[string]any); ok {
		raw = m[item]
	} else if m, ok := raw.(Fields); ok {
		raw = m[item]
	}

	var entries []Fields

	switch list := raw.(type) {
	case []Fields:
		entries = append(entries, list...)
	case []map[string]any:
		for _, entry := range list {
			entries = append(entries, Fields(entry))
		}
	case []any:
		for _, entry := range list {
			if m, ok := entry.(map[string]any); ok {
				entries = append(entries, Fields(m))
			}
		}
	}

	return entries
}

// Time parses the date value under key. The second return is false when the
// key is absent or empty.
func (f Fields) Time(key string, loc *time.Location) (time.Time, bool, error) {
	switch v := f[key].(type) {
	case time.Time:
		return v, true, nil
	case string:
		if v == "" {
			return time.Time{}, false, nil
		}

		t, err := kerio.ParseTime(v, loc)
		if err != nil {
			return time.Time{}, false, kerio.NewValidationError(key, fmt.Sprintf("Invalid date for %s: %s", key, v))
		}

		return t, true, nil
	case nil:
		return time.Time{}, false, nil
	}

	return time.Time{}, false, kerio.NewValidationError(key, fmt.Sprintf("Invalid date for %s", key))
}

// Binary returns the bytes stored under binary[name]. Strings are base64.
func (f Fields) Binary(name string) ([]byte, bool) {
	switch v := f.Map("binary")[name].(type) {
	case []byte:
		return v, true
	case string:
		data, err := base64.StdEncoding.DecodeString(v)
		if err != nil {
			return nil, false
		}

		return data, true
	case map[string]any:
		if s, ok := v["data"].(string); ok {
			data, err := base64.StdEncoding.DecodeString(s)
			if err == nil {
				return data, true
			}
		}
	}

	return nil, false
}
