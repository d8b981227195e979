package apiclient

import (
	"encoding/json"
	"mime"
	"strings"
)

// Result is a successful response. Exactly one of JSON or Text is set unless
// the body was empty.
type Result struct {
	Status      int
	ContentType string
	JSON        json.RawMessage
	Text        string
}

// JSONBody returns the JSON document of the response. An empty response
// yields nil; a text body yields a *ContentError so summarizing callers never
// mistake it for an empty result.
func (r *Result) JSONBody() (json.RawMessage, error) {
	if r.Text != "" {
		return nil, &ContentError{Status: r.Status, ContentType: r.ContentType, Body: r.Text}
	}
	return r.JSON, nil
}

// Value renders the result for generic consumers: the parsed JSON document,
// or a marker object {ok, status[, body]} for empty and non-JSON responses.
func (r *Result) Value() any {
	if len(r.JSON) > 0 {
		var v any
		if err := json.Unmarshal(r.JSON, &v); err == nil {
			return v
		}
	}
	marker := map[string]any{"ok": true, "status": r.Status}
	if r.Text != "" {
		marker["body"] = r.Text
	}
	return marker
}

func isJSONContentType(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = contentType
	}
	mediaType = strings.ToLower(mediaType)
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

func newResult(status int, contentType string, body []byte) *Result {
	r := &Result{Status: status, ContentType: contentType}
	if len(body) == 0 {
		return r
	}
	if isJSONContentType(contentType) && json.Valid(body) {
		r.JSON = json.RawMessage(body)
		return r
	}
	r.Text = string(body)
	return r
}
