package summarize

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Document is the tolerant top-level shape of a JSON:API response. Members
// of the wrong shape decode as empty, and resources that are not objects are
// dropped.
type Document struct {
	Data     ResourceList `json:"data"`
	Included ResourceList `json:"included"`
	Links    *Links       `json:"links,omitempty"`
}

// Links holds the pagination links of a list response.
type Links struct {
	Next *Link `json:"next,omitempty"`
}

// UnmarshalJSON implements json.Unmarshaler. A link may be an object with an
// href or a bare URL string.
func (l *Links) UnmarshalJSON(b []byte) error {
	var raw struct {
		Next json.RawMessage `json:"next"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil
	}
	l.Next = decodeLink(raw.Next)
	return nil
}

func decodeLink(b json.RawMessage) *Link {
	var href flexString
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0:
		return nil
	case b[0] == '"':
		_ = href.UnmarshalJSON(b)
	case b[0] == '{':
		var obj struct {
			Href flexString `json:"href"`
		}
		if err := json.Unmarshal(b, &obj); err != nil {
			return nil
		}
		href = obj.Href
	}
	if href == "" {
		return nil
	}
	return &Link{Href: string(href)}
}

// Link is a JSON:API link object.
type Link struct {
	Href string `json:"href"`
}

// Resource is one JSON:API resource object with lazily decoded attributes.
type Resource struct {
	Type          string                  `json:"type"`
	ID            string                  `json:"id"`
	Attributes    json.RawMessage         `json:"attributes,omitempty"`
	Relationships map[string]Relationship `json:"relationships,omitempty"`
}

// UnmarshalJSON implements json.Unmarshaler. Only a non-object fails;
// numeric ids are kept as text and malformed members are left empty.
func (r *Resource) UnmarshalJSON(b []byte) error {
	var raw struct {
		Type          flexString      `json:"type"`
		ID            flexString      `json:"id"`
		Attributes    json.RawMessage `json:"attributes"`
		Relationships json.RawMessage `json:"relationships"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	*r = Resource{Type: string(raw.Type), ID: string(raw.ID)}
	if isObject(raw.Attributes) {
		r.Attributes = raw.Attributes
	}
	if isObject(raw.Relationships) {
		var rels map[string]Relationship
		if err := json.Unmarshal(raw.Relationships, &rels); err == nil {
			r.Relationships = rels
		}
	}
	return nil
}

// Relationship is a JSON:API relationship with a single resource linkage.
type Relationship struct {
	Data *ResourceRef `json:"data,omitempty"`
}

// UnmarshalJSON implements json.Unmarshaler. To-many linkage and malformed
// data decode as an empty relationship.
func (r *Relationship) UnmarshalJSON(b []byte) error {
	var raw struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil
	}
	if !isObject(raw.Data) {
		return nil
	}
	var ref struct {
		Type flexString `json:"type"`
		ID   flexString `json:"id"`
	}
	if err := json.Unmarshal(raw.Data, &ref); err != nil {
		return nil
	}
	r.Data = &ResourceRef{Type: string(ref.Type), ID: string(ref.ID)}
	return nil
}

// ResourceRef identifies a related resource.
type ResourceRef struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// ResourceList decodes a member given either as a single object or a list.
// Elements that are not resource objects are skipped.
type ResourceList []Resource

// UnmarshalJSON implements json.Unmarshaler.
func (l *ResourceList) UnmarshalJSON(b []byte) error {
	*l = nil
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0:
		return nil
	case b[0] == '[':
		var elems []json.RawMessage
		if err := json.Unmarshal(b, &elems); err != nil {
			return nil
		}
		items := make(ResourceList, 0, len(elems))
		for _, elem := range elems {
			if !isObject(elem) {
				continue
			}
			var r Resource
			if err := json.Unmarshal(elem, &r); err != nil {
				continue
			}
			items = append(items, r)
		}
		*l = items
	case b[0] == '{':
		var one Resource
		if err := json.Unmarshal(b, &one); err == nil {
			*l = ResourceList{one}
		}
	}
	return nil
}

// DecodeDocument parses raw into a Document. Only invalid JSON is an error;
// a valid document of an unexpected shape yields an empty Document.
func DecodeDocument(raw []byte) (*Document, error) {
	var doc Document
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return &doc, nil
	}
	if !json.Valid(raw) {
		return nil, fmt.Errorf("failed to decode JSON:API document: invalid JSON")
	}
	if !isObject(raw) {
		return &doc, nil
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode JSON:API document: %w", err)
	}
	return &doc, nil
}

func isObject(b []byte) bool {
	b = bytes.TrimSpace(b)
	return len(b) > 0 && b[0] == '{'
}

// Attrs decodes the resource attributes into v. Malformed attributes leave
// v unchanged.
func (r Resource) Attrs(v any) {
	if len(r.Attributes) == 0 {
		return
	}
	_ = json.Unmarshal(r.Attributes, v)
}

// RelatedID returns the id linked by the named relationship, or "".
func (r Resource) RelatedID(name string) string {
	rel, ok := r.Relationships[name]
	if !ok || rel.Data == nil {
		return ""
	}
	return rel.Data.ID
}

// indexIncluded maps included resources of the given type by id.
func indexIncluded(included []Resource, resourceType string) map[string]Resource {
	idx := make(map[string]Resource, len(included))
	for _, r := range included {
		if r.Type == resourceType {
			idx[r.ID] = r
		}
	}
	return idx
}

// extension holds the JSON:API extension block used across the data API.
type extension struct {
	Type string `json:"type"`
	Data struct {
		ProjectType string `json:"projectType"`
	} `json:"data"`
}
