package api

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// ID is a resource identifier as it appears in paths. The zero value means
// "no identity".
type ID string

func (id ID) String() string { return string(id) }

// IsZero reports whether id is empty.
func (id ID) IsZero() bool { return id == "" }

// Int64 parses id as a numeric Shopify id.
func (id ID) Int64() (int64, error) {
	return strconv.ParseInt(string(id), 10, 64)
}

// IDOf returns the identifier form of an id attribute value. The second
// result is false for nil, empty or non-scalar values.
func IDOf(v any) (ID, bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case ID:
		return x, x != ""
	case string:
		return ID(x), x != ""
	case json.Number:
		return ID(x.String()), x != ""
	case int:
		return ID(strconv.Itoa(x)), true
	case int32:
		return ID(strconv.FormatInt(int64(x), 10)), true
	case int64:
		return ID(strconv.FormatInt(x, 10)), true
	case uint64:
		return ID(strconv.FormatUint(x, 10)), true
	case float64:
		return ID(strconv.FormatFloat(x, 'f', -1, 64)), true
	case fmt.Stringer:
		s := x.String()
		return ID(s), s != ""
	}
	return "", false
}
