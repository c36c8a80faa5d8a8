package fetch

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// Param is a single query-string entry. Value may be a scalar, a slice, or
// nil; nil values are dropped during encoding.
type Param struct {
	Key   string
	Value any
}

// Params is an ordered parameter list. Encoding walks the list front to
// back, so the same list always yields the same query string.
type Params []Param

// P builds a parameter list from alternating key/value arguments.
func P(pairs ...any) Params {
	params := make(Params, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			continue
		}
		params = append(params, Param{Key: key, Value: pairs[i+1]})
	}
	return params
}

// ParamsFromMap converts a plain map into Params. Keys are sorted so the
// resulting encoding is deterministic.
func ParamsFromMap(m map[string]any) Params {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	params := make(Params, 0, len(keys))
	for _, k := range keys {
		params = append(params, Param{Key: k, Value: m[k]})
	}
	return params
}

// Add appends one entry and returns the extended list.
func (p Params) Add(key string, value any) Params {
	return append(p, Param{Key: key, Value: value})
}

// Encode serializes the list into a URL query string. Entries with a nil
// value are skipped, slice values emit one key=value pair per element in
// element order, and both keys and values are percent-encoded. An empty or
// fully skipped list encodes to "".
func (p Params) Encode() string {
	var b strings.Builder
	for _, param := range p {
		if param.Value == nil {
			continue
		}
		switch v := param.Value.(type) {
		case []string:
			for _, item := range v {
				writePair(&b, param.Key, item)
			}
		case []int:
			for _, item := range v {
				writePair(&b, param.Key, strconv.Itoa(item))
			}
		case []any:
			for _, item := range v {
				if item == nil {
					continue
				}
				writePair(&b, param.Key, formatValue(item))
			}
		default:
			writePair(&b, param.Key, formatValue(param.Value))
		}
	}
	return b.String()
}

// AppendParams attaches the encoded params to rawURL, joining with "&" when
// the URL already carries a query string and "?" otherwise. A list that
// encodes to nothing leaves the URL untouched.
func AppendParams(rawURL string, p Params) string {
	query := p.Encode()
	if query == "" {
		return rawURL
	}
	separator := "?"
	if strings.Contains(rawURL, "?") {
		separator = "&"
	}
	return rawURL + separator + query
}

func writePair(b *strings.Builder, key, value string) {
	if b.Len() > 0 {
		b.WriteByte('&')
	}
	b.WriteString(url.QueryEscape(key))
	b.WriteByte('=')
	b.WriteString(url.QueryEscape(value))
}

func formatValue(v any) string {
	switch value := v.(type) {
	case string:
		return value
	case bool:
		return strconv.FormatBool(value)
	case int:
		return strconv.Itoa(value)
	case int64:
		return strconv.FormatInt(value, 10)
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case fmt.Stringer:
		return value.String()
	default:
		return fmt.Sprintf("%v", value)
	}
}
