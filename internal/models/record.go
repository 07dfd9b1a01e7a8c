package models

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Record is one row of backend data (store, merchant, loan, customer, ...).
// Values keep their decoded JSON types: string, float64, bool, nil,
// map[string]any and []any.
type Record map[string]any

// isoDatePattern recognises ISO-8601-like date-time strings
var isoDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T`)

// timestamp layouts accepted for date fields, most specific first
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Get returns the raw value for key and whether it was present and non-nil.
func (r Record) Get(key string) (any, bool) {
	v, ok := r[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// Text returns the value of key as display-free text ("" when absent).
func (r Record) Text(key string) string {
	v, ok := r.Get(key)
	if !ok {
		return ""
	}
	return ValueText(v)
}

// Optional returns the text of key wrapped as an Optional.
func (r Record) Optional(key string) Optional[string] {
	s := r.Text(key)
	if s == "" {
		return None[string]()
	}
	return Some(s)
}

// Time parses the value of key as a timestamp.
func (r Record) Time(key string) (time.Time, bool) {
	v, ok := r.Get(key)
	if !ok {
		return time.Time{}, false
	}
	switch t := v.(type) {
	case time.Time:
		return t, !t.IsZero()
	case string:
		return ParseTime(t)
	}
	return time.Time{}, false
}

// FirstTime returns the first parseable timestamp among keys.
func (r Record) FirstTime(keys ...string) (time.Time, bool) {
	for _, k := range keys {
		if t, ok := r.Time(k); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

// Number returns the value of key as a float64 when it is numeric.
func (r Record) Number(key string) (float64, bool) {
	v, ok := r.Get(key)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}

// Bool returns the value of key as a bool ("true"/"false" strings accepted).
func (r Record) Bool(key string) bool {
	v, ok := r.Get(key)
	if !ok {
		return false
	}
	switch b := v.(type) {
	case bool:
		return b
	case string:
		parsed, _ := strconv.ParseBool(b)
		return parsed
	}
	return false
}

// Map returns a nested object stored under key.
func (r Record) Map(key string) (Record, bool) {
	v, ok := r.Get(key)
	if !ok {
		return nil, false
	}
	switch m := v.(type) {
	case map[string]any:
		return Record(m), true
	case Record:
		return m, true
	}
	return nil, false
}

// ID returns the identifier of the record using the first present key.
// With no keys the common identifier fields are tried.
func (r Record) ID(keys ...string) string {
	if len(keys) == 0 {
		keys = []string{"_id", "id", "leadId"}
	}
	for _, k := range keys {
		if s := r.Text(k); s != "" {
			return s
		}
	}
	return ""
}

// ParseTime parses an ISO-8601-like timestamp string.
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// IsDateTimeString reports whether s looks like an ISO date-time and parses.
func IsDateTimeString(s string) bool {
	if !isoDatePattern.MatchString(s) {
		return false
	}
	_, ok := ParseTime(s)
	return ok
}

// FormatDDMMYYYY formats an instant as DD-MM-YYYY in local time.
func FormatDDMMYYYY(t time.Time) string {
	return t.Local().Format("02-01-2006")
}

// FormatCalendarDate formats an instant as a local YYYY-MM-DD calendar date.
// No timezone conversion is applied beyond using the local wall clock.
func FormatCalendarDate(t time.Time) string {
	return fmt.Sprintf("%04d-%02d-%02d", t.Year(), int(t.Month()), t.Day())
}

// ValueText renders any decoded JSON value as plain text.
func ValueText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case json.Number:
		return t.String()
	case time.Time:
		return t.Format(time.RFC3339)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}

// DisplayValue renders a value for a table cell. ISO date-times become
// DD-MM-YYYY; missing values use fallback.
func DisplayValue(v any, fallback string) string {
	if s, ok := v.(string); ok && IsDateTimeString(s) {
		t, _ := ParseTime(s)
		return FormatDDMMYYYY(t)
	}
	if t, ok := v.(time.Time); ok && !t.IsZero() {
		return FormatDDMMYYYY(t)
	}
	text := ValueText(v)
	if text == "" {
		return fallback
	}
	return text
}

// DecodeRecords decodes a JSON array of objects into records.
func DecodeRecords(data []byte) ([]Record, error) {
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to decode records: %w", err)
	}
	return records, nil
}
