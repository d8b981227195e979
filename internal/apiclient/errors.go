package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	pkgstrings "apsmcp/pkg/strings"
)

// maxErrorBodyLen bounds the body text embedded in error messages.
const maxErrorBodyLen = 500

// APIError is a non-success response from the resource API.
type APIError struct {
	StatusCode int
	Method     string
	Path       string
	Body       string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	msg := fmt.Sprintf("%s %s failed with status %d", e.Method, e.Path, e.StatusCode)
	if body := strings.TrimSpace(e.Body); body != "" {
		msg += ": " + pkgstrings.Truncate(body, maxErrorBodyLen)
	}
	return msg
}

// AsAPIError unwraps err to an *APIError.
func AsAPIError(err error) (*APIError, bool) {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// ErrNotJSON marks a successful response whose body is not a JSON document.
var ErrNotJSON = errors.New("response is not JSON")

// ContentError is a 2xx response whose body could not be read as JSON.
type ContentError struct {
	Status      int
	ContentType string
	Body        string
}

// Error implements the error interface.
func (e *ContentError) Error() string {
	contentType := e.ContentType
	if contentType == "" {
		contentType = "no content type"
	}
	return fmt.Sprintf("API returned status %d with a non-JSON body (%s): %s",
		e.Status, contentType, pkgstrings.Truncate(e.Body, maxErrorBodyLen))
}

// Is lets errors.Is match ErrNotJSON.
func (e *ContentError) Is(target error) bool {
	return target == ErrNotJSON
}

// HostMismatchError rejects an absolute URL outside the API host.
type HostMismatchError struct {
	Host    string
	Allowed string
}

// Error implements the error interface.
func (e *HostMismatchError) Error() string {
	return fmt.Sprintf("refusing to send credentials to host %q: only %q is allowed", e.Host, e.Allowed)
}

// IsHostMismatch reports whether err is or wraps a *HostMismatchError.
func IsHostMismatch(err error) bool {
	var he *HostMismatchError
	return errors.As(err, &he)
}

// Diagnostic is the structured form of an APIError handed back to the assistant.
type Diagnostic struct {
	Status      int    `json:"status"`
	StatusText  string `json:"status_text"`
	Method      string `json:"method"`
	Path        string `json:"path"`
	LikelyCause string `json:"likely_cause"`
	Fix         string `json:"fix"`
	Response    any    `json:"response,omitempty"`
}

type hint struct {
	cause string
	fix   string
}

var statusHints = map[int]hint{
	http.StatusUnauthorized: {
		cause: "The access token is missing, expired or was rejected.",
		fix:   "Retry once; if it persists run aps_login again or check the client ID, secret and scopes.",
	},
	http.StatusForbidden: {
		cause: "The app or user has no access to this resource. For ACC/BIM 360 the client ID may not be provisioned as a Custom Integration, or the user lacks project permissions.",
		fix:   "Ask an account admin to add the client ID under Account Admin > Custom Integrations, and confirm the token scopes include what the call needs.",
	},
	http.StatusNotFound: {
		cause: "The resource does not exist or the ID has the wrong format (missing \"b.\" prefix, item URN used where a version URN is expected, or the reverse).",
		fix:   "Re-list the parent resource to obtain a valid ID and check the ID family expected by this endpoint.",
	},
	http.StatusConflict: {
		cause: "The request conflicts with the current state of the resource, e.g. a name that already exists or a stale version.",
		fix:   "Fetch the current state, adjust the request and try again.",
	},
	http.StatusTooManyRequests: {
		cause: "The rate limit for this endpoint was exceeded.",
		fix:   "Wait before retrying and reduce page sizes or request frequency.",
	},
	http.StatusInternalServerError: {
		cause: "The platform returned an internal error.",
		fix:   "Retry later. If the error is persistent, check the platform status page.",
	},
	http.StatusServiceUnavailable: {
		cause: "The service is temporarily unavailable or overloaded.",
		fix:   "Retry after a short delay.",
	},
}

// Diagnose builds a Diagnostic for e. The response body is embedded as JSON
// when it parses, as bounded text otherwise.
func Diagnose(e *APIError) Diagnostic {
	d := Diagnostic{
		Status:     e.StatusCode,
		StatusText: http.StatusText(e.StatusCode),
		Method:     e.Method,
		Path:       e.Path,
	}

	if h, ok := statusHints[e.StatusCode]; ok {
		d.LikelyCause = h.cause
		d.Fix = h.fix
	} else if e.StatusCode >= 500 {
		d.LikelyCause = "The platform failed to process the request."
		d.Fix = "Retry later."
	} else {
		d.LikelyCause = "The request was rejected by the API."
		d.Fix = "Check the request parameters against the endpoint documentation."
	}

	body := strings.TrimSpace(e.Body)
	if body != "" {
		var parsed any
		if json.Unmarshal([]byte(body), &parsed) == nil {
			d.Response = parsed
		} else {
			d.Response = pkgstrings.Truncate(body, maxErrorBodyLen)
		}
	}

	return d
}

// IsAPIError reports whether err is or wraps an *APIError.
func IsAPIError(err error) bool {
	_, ok := AsAPIError(err)
	return ok
}
