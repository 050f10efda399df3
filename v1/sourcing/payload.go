package sourcing

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Payload is a record's metadata as returned by the store. Its accessors
// accept the shapes different writers have produced over time: integers as
// int64 or float64, numbers as strings, lists as []any or []string.
// Absent keys and nulls decode to zero values; anything else unexpected is
// ErrMalformedStoredData.
type Payload map[string]any

// Has reports whether key is present and non-null.
func (p Payload) Has(key string) bool {
	v, ok := p[key]
	return ok && v != nil
}

// Lookup returns the value under key if it is a string, otherwise "".
func (p Payload) Lookup(key string) string {
	s, _ := p[key].(string)
	return s
}

// String returns key as a string. Numbers and booleans are formatted.
func (p Payload) String(key string) (string, error) {
	switch v := p[key].(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case int:
		return strconv.Itoa(v), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(v), nil
	default:
		return "", malformed(key, v)
	}
}

// Float returns key as a float64.
func (p Payload) Float(key string) (float64, error) {
	switch v := p[key].(type) {
	case nil:
		return 0, nil
	case float64:
		return v, nil
	case int64:
		return float64(v), nil
	case int:
		return float64(v), nil
	case string:
		if strings.TrimSpace(v) == "" {
			return 0, nil
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, malformed(key, v)
		}
		return f, nil
	default:
		return 0, malformed(key, v)
	}
}

// Int returns key as an int64. Fractional numbers are malformed.
func (p Payload) Int(key string) (int64, error) {
	switch v := p[key].(type) {
	case nil:
		return 0, nil
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case float64:
		if v != math.Trunc(v) {
			return 0, malformed(key, v)
		}
		return int64(v), nil
	case string:
		if strings.TrimSpace(v) == "" {
			return 0, nil
		}
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, malformed(key, v)
		}
		return n, nil
	default:
		return 0, malformed(key, v)
	}
}

// Bool returns key as a bool. "true" and "false" strings are accepted.
func (p Payload) Bool(key string) (bool, error) {
	switch v := p[key].(type) {
	case nil:
		return false, nil
	case bool:
		return v, nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return false, malformed(key, v)
		}
		return b, nil
	default:
		return false, malformed(key, v)
	}
}

// Strings returns key as a list of strings. Every element must be a string.
func (p Payload) Strings(key string) ([]string, error) {
	switch v := p[key].(type) {
	case nil:
		return nil, nil
	case []string:
		return append([]string(nil), v...), nil
	case []any:
		out := make([]string, 0, len(v))
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, &FieldError{
					Err:   ErrMalformedStoredData,
					Field: key,
					Cause: fmt.Errorf("element %d has type %T", i, item),
				}
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, malformed(key, v)
	}
}

// Time returns key as a time. RFC 3339 strings and unix milliseconds are
// accepted.
func (p Payload) Time(key string) (time.Time, error) {
	switch v := p[key].(type) {
	case nil:
		return time.Time{}, nil
	case string:
		if v == "" {
			return time.Time{}, nil
		}
		t, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return time.Time{}, &FieldError{Err: ErrMalformedStoredData, Field: key, Cause: err}
		}
		return t, nil
	case int64:
		return time.UnixMilli(v).UTC(), nil
	case float64:
		return time.UnixMilli(int64(v)).UTC(), nil
	default:
		return time.Time{}, malformed(key, v)
	}
}

func malformed(key string, v any) error {
	return &FieldError{Err: ErrMalformedStoredData, Field: key, Cause: fmt.Errorf("unexpected value %v (%T)", v, v)}
}

// FormatTime renders t the way records store timestamps.
func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// decoder accumulates the first decoding error so codecs can read many
// fields without checking each one.
type decoder struct {
	p   Payload
	err error
}

func (d *decoder) string(key string) string {
	s, err := d.p.String(key)
	d.keep(err)
	return s
}

func (d *decoder) float(key string) float64 {
	f, err := d.p.Float(key)
	d.keep(err)
	return f
}

func (d *decoder) int(key string) int64 {
	n, err := d.p.Int(key)
	d.keep(err)
	return n
}

func (d *decoder) bool(key string) bool {
	b, err := d.p.Bool(key)
	d.keep(err)
	return b
}

func (d *decoder) strings(key string) []string {
	s, err := d.p.Strings(key)
	d.keep(err)
	return s
}

func (d *decoder) time(key string) time.Time {
	t, err := d.p.Time(key)
	d.keep(err)
	return t
}

func (d *decoder) keep(err error) {
	if d.err == nil && err != nil {
		d.err = err
	}
}
