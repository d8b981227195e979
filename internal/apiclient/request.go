package apiclient

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Request describes one call against the resource API.
type Request struct {
	Method string
	// Path is relative to the API base ("/project/v1/hubs") or an absolute
	// URL on the API host.
	Path    string
	Query   map[string]any
	Body    any
	Headers map[string]string
}

func (r Request) method() string {
	if r.Method == "" {
		return http.MethodGet
	}
	return strings.ToUpper(r.Method)
}

func hasBody(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPatch, http.MethodPut:
		return true
	}
	return false
}

// encodeQuery merges params into q: scalars replace, slices append one
// value per element, nil values are skipped.
func encodeQuery(q url.Values, params map[string]any) {
	for key, value := range params {
		switch v := value.(type) {
		case nil:
		case []string:
			for _, s := range v {
				q.Add(key, s)
			}
		case []any:
			for _, item := range v {
				if item != nil {
					q.Add(key, scalarString(item))
				}
			}
		case []int:
			for _, n := range v {
				q.Add(key, fmt.Sprint(n))
			}
		default:
			q.Set(key, scalarString(v))
		}
	}
}

func scalarString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		// JSON numbers arrive as float64; keep integers free of exponents.
		if s == float64(int64(s)) {
			return fmt.Sprintf("%d", int64(s))
		}
		return fmt.Sprint(s)
	default:
		return fmt.Sprint(s)
	}
}

func encodeBody(body any) ([]byte, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case []byte:
		return b, nil
	case json.RawMessage:
		return b, nil
	case string:
		return []byte(b), nil
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		return data, nil
	}
}
