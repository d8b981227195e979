package validation

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// Error is a rejected caller input.
type Error struct {
	Field string
	Value string
	Msg   string
	Hint  string
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Msg)
	if e.Hint != "" {
		msg += ". " + e.Hint
	}
	return msg
}

// IsValidationError reports whether err is or wraps an *Error.
func IsValidationError(err error) bool {
	var ve *Error
	return errors.As(err, &ve)
}

var (
	hubIDPattern  = regexp.MustCompile(`^[ab]\.[A-Za-z0-9_\-]+$`)
	folderPattern = regexp.MustCompile(`^urn:adsk\.wip[a-z]+:fs\.folder:co\.[A-Za-z0-9_\-]+$`)
	itemPattern   = regexp.MustCompile(`^urn:adsk\.wip[a-z]+:dm\.lineage:[A-Za-z0-9_\-]+$`)
	guidPattern   = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)
)

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return &Error{Field: field, Value: value, Msg: "must not be empty"}
	}
	return nil
}

// HubID accepts "b." (ACC / BIM 360) and "a." (personal) hub IDs.
func HubID(id string) error {
	if err := required("hub_id", id); err != nil {
		return err
	}
	if !hubIDPattern.MatchString(id) {
		return &Error{
			Field: "hub_id",
			Value: id,
			Msg:   "wrong ID prefix",
			Hint:  `Hub IDs look like "b.<account-guid>"; take the id from aps_list_hubs`,
		}
	}
	return nil
}

// ProjectID accepts data-management project IDs, which carry the hub prefix.
func ProjectID(id string) error {
	if err := required("project_id", id); err != nil {
		return err
	}
	if !hubIDPattern.MatchString(id) {
		hint := `Project IDs look like "b.<project-guid>"; take the id from aps_list_projects`
		if guidPattern.MatchString(id) {
			hint = `This looks like a bare project GUID; prefix it with "b." for data-management calls`
		}
		return &Error{Field: "project_id", Value: id, Msg: "wrong ID prefix", Hint: hint}
	}
	return nil
}

// StripProjectPrefix converts a data-management project ID ("b.<guid>") to
// the bare GUID expected by the construction services (issues, submittals).
func StripProjectPrefix(id string) string {
	return strings.TrimPrefix(strings.TrimPrefix(id, "b."), "a.")
}

// ConstructionProjectID accepts either form and returns the bare GUID.
func ConstructionProjectID(id string) (string, error) {
	if err := required("project_id", id); err != nil {
		return "", err
	}
	bare := StripProjectPrefix(id)
	if !guidPattern.MatchString(bare) {
		return "", &Error{
			Field: "project_id",
			Value: id,
			Msg:   "not a project GUID",
			Hint:  `Use the project GUID ("xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx") or the "b."-prefixed project id`,
		}
	}
	return bare, nil
}

// FolderID validates a folder URN.
func FolderID(id string) error {
	if err := required("folder_id", id); err != nil {
		return err
	}
	if !folderPattern.MatchString(id) {
		return &Error{
			Field: "folder_id",
			Value: id,
			Msg:   "not a folder URN",
			Hint:  `Folder IDs look like "urn:adsk.wipprod:fs.folder:co.<id>"; take them from aps_get_top_folders or aps_get_folder_contents`,
		}
	}
	return nil
}

// ItemID validates an item (lineage) URN.
func ItemID(id string) error {
	if err := required("item_id", id); err != nil {
		return err
	}
	if !itemPattern.MatchString(id) {
		hint := `Item IDs look like "urn:adsk.wipprod:dm.lineage:<id>"`
		if strings.Contains(id, ":fs.file:") {
			hint = "This is a version URN; pass the item (dm.lineage) URN instead"
		}
		return &Error{Field: "item_id", Value: id, Msg: "not an item URN", Hint: hint}
	}
	return nil
}

// APIPath validates a caller-supplied request path for the generic request
// tool. Absolute URLs pass here; the forwarder enforces the host.
func APIPath(path string) error {
	if err := required("path", path); err != nil {
		return err
	}

	if strings.Contains(path, `\`) {
		return &Error{Field: "path", Value: path, Msg: "backslashes are not allowed"}
	}

	u, err := url.Parse(path)
	if err != nil {
		return &Error{Field: "path", Value: path, Msg: "not a valid URL path", Hint: `Use a path such as "/project/v1/hubs"`}
	}
	if u.IsAbs() {
		return checkSegments(path, u.EscapedPath())
	}
	if !strings.HasPrefix(path, "/") {
		return &Error{
			Field: "path",
			Value: path,
			Msg:   "must start with /",
			Hint:  `Use a path relative to the API host, e.g. "/data/v1/projects/b.<id>/folders/<urn>/contents"`,
		}
	}
	return checkSegments(path, u.EscapedPath())
}

func checkSegments(original, escaped string) error {
	decoded, err := url.PathUnescape(escaped)
	if err != nil {
		decoded = escaped
	}
	for _, p := range []string{escaped, decoded} {
		for _, seg := range strings.Split(p, "/") {
			if seg == ".." || seg == "." {
				return &Error{
					Field: "path",
					Value: original,
					Msg:   "path traversal is not allowed",
					Hint:  "Remove '.' and '..' segments and address the resource directly",
				}
			}
		}
	}
	return nil
}
