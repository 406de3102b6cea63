package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// String returns the attribute as a string; numbers are formatted and
// absent or null values yield "".
func (r *Record) String(name string) string {
	switch v := r.data[name].(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// Int64 returns a numeric attribute, 0 when absent or not a number.
func (r *Record) Int64(name string) int64 {
	switch v := r.data[name].(type) {
	case json.Number:
		i, _ := v.Int64()
		return i
	case float64:
		return int64(v)
	case int:
		return int64(v)
	case int64:
		return v
	case string:
		i, _ := strconv.ParseInt(v, 10, 64)
		return i
	}
	return 0
}

// Bool returns a boolean attribute, false when absent.
func (r *Record) Bool(name string) bool {
	switch v := r.data[name].(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(v)
		return b
	}
	return false
}

// Decimal returns a money or quantity attribute. Shopify sends prices as
// strings; numbers are accepted too.
func (r *Record) Decimal(name string) (decimal.Decimal, bool) {
	var s string
	switch v := r.data[name].(type) {
	case string:
		s = v
	case json.Number:
		s = v.String()
	case float64:
		return decimal.NewFromFloat(v), true
	case int:
		return decimal.NewFromInt(int64(v)), true
	case int64:
		return decimal.NewFromInt(v), true
	default:
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// SetDecimal stores d in Shopify's string form.
func (r *Record) SetDecimal(name string, d decimal.Decimal) *Record {
	return r.SetOriginal(name, d.StringFixed(2))
}

// Time parses an ISO 8601 attribute. The second result is false for
// absent, null or unparsable values.
func (r *Record) Time(name string) (time.Time, bool) {
	s, ok := r.data[name].(string)
	if !ok || s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05-0700", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// SetTime stores t as RFC 3339. A zero t stores null.
func (r *Record) SetTime(name string, t time.Time) *Record {
	if t.IsZero() {
		return r.SetOriginal(name, nil)
	}
	return r.SetOriginal(name, t.Format(time.RFC3339))
}

func (r *Record) CreatedAt() (time.Time, bool) { return r.Time("created_at") }

func (r *Record) UpdatedAt() (time.Time, bool) { return r.Time("updated_at") }

func (r *Record) SetCreatedAt(t time.Time) *Record { return r.SetTime("created_at", t) }

func (r *Record) SetUpdatedAt(t time.Time) *Record { return r.SetTime("updated_at", t) }

// tags splits a comma separated attribute, dropping blanks.
func (r *Record) tags(name string) []string {
	var out []string
	for _, t := range strings.Split(r.String(name), ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func (r *Record) setTags(name string, tags []string) *Record {
	var kept []string
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			kept = append(kept, t)
		}
	}
	return r.SetOriginal(name, strings.Join(kept, ", "))
}
