package summarize

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path"
	"strconv"
	"strings"
)

const bytesPerMB = 1024 * 1024

// noExtension keys files without an extension in file type counts.
const noExtension = "(none)"

// FormatSizeMB renders a byte count as megabytes with one decimal.
func FormatSizeMB(size int64) string {
	return fmt.Sprintf("%.1f", float64(size)/bytesPerMB)
}

func sizeMB(size *int64) string {
	if size == nil {
		return ""
	}
	return FormatSizeMB(*size)
}

// Platform names the product family behind a hub or project extension type.
func Platform(extensionType string) string {
	t := strings.ToLower(extensionType)
	switch {
	case t == "":
		return ""
	case strings.Contains(t, "autodesk.bim360"):
		return "ACC/BIM 360"
	case strings.Contains(t, "autodesk.core"):
		return "Fusion"
	case strings.Contains(t, "autodesk.a360"):
		return "A360 Personal"
	default:
		return "Other"
	}
}

// FileExtension returns the lowercase extension of a display name without
// the leading dot.
func FileExtension(name string) string {
	ext := path.Ext(strings.TrimSpace(name))
	return normalizeExtension(ext)
}

func normalizeExtension(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}

// flexString accepts a JSON string or number.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return nil
		}
		*f = flexString(s)
		return nil
	}
	if _, err := strconv.ParseFloat(string(b), 64); err == nil {
		*f = flexString(b)
	}
	return nil
}
