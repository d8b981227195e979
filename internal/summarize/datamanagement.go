package summarize

import (
	"sort"
)

// HubSummary is a compact hub record.
type HubSummary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Region   string `json:"region,omitempty"`
	Platform string `json:"platform,omitempty"`
}

// ProjectSummary is a compact project record.
type ProjectSummary struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Platform     string `json:"platform,omitempty"`
	ProjectType  string `json:"project_type,omitempty"`
	RootFolderID string `json:"root_folder_id,omitempty"`
}

// FolderEntry is a folder inside a listing.
type FolderEntry struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	ObjectCount  *int   `json:"object_count,omitempty"`
	LastModified string `json:"last_modified,omitempty"`
	Hidden       bool   `json:"hidden,omitempty"`
}

// FileEntry is an item inside a listing, enriched from its tip version.
type FileEntry struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Extension      string `json:"extension,omitempty"`
	VersionNumber  int    `json:"version_number,omitempty"`
	SizeMB         string `json:"size_mb,omitempty"`
	LastModified   string `json:"last_modified,omitempty"`
	LastModifiedBy string `json:"last_modified_by,omitempty"`
	TipVersionID   string `json:"tip_version_id,omitempty"`
}

// FolderContents is the summary of one folder listing page.
type FolderContents struct {
	Folders   []FolderEntry  `json:"folders"`
	Files     []FileEntry    `json:"files"`
	FileTypes map[string]int `json:"file_types"`
	HasMore   bool           `json:"has_more,omitempty"`
}

// ContentsOptions tunes the folder contents summary.
type ContentsOptions struct {
	// FilterExtensions keeps only files with one of these extensions.
	// Matching is case-insensitive and the leading dot is optional.
	FilterExtensions []string
}

// VersionSummary is a compact version record.
type VersionSummary struct {
	ID             string `json:"id"`
	VersionNumber  int    `json:"version_number,omitempty"`
	Name           string `json:"name,omitempty"`
	FileType       string `json:"file_type,omitempty"`
	SizeMB         string `json:"size_mb,omitempty"`
	CreateTime     string `json:"create_time,omitempty"`
	CreatedBy      string `json:"created_by,omitempty"`
	LastModified   string `json:"last_modified,omitempty"`
	LastModifiedBy string `json:"last_modified_by,omitempty"`
}

// ItemSummary is a single item with its tip version.
type ItemSummary struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Extension    string          `json:"extension,omitempty"`
	CreateTime   string          `json:"create_time,omitempty"`
	LastModified string          `json:"last_modified,omitempty"`
	TipVersion   *VersionSummary `json:"tip_version,omitempty"`
}

type namedAttributes struct {
	Name                 string    `json:"name"`
	DisplayName          string    `json:"displayName"`
	Region               string    `json:"region"`
	ObjectCount          *int      `json:"objectCount"`
	Hidden               bool      `json:"hidden"`
	CreateTime           string    `json:"createTime"`
	CreateUserName       string    `json:"createUserName"`
	LastModifiedTime     string    `json:"lastModifiedTime"`
	LastModifiedUserName string    `json:"lastModifiedUserName"`
	VersionNumber        int       `json:"versionNumber"`
	StorageSize          *int64    `json:"storageSize"`
	FileType             string    `json:"fileType"`
	Extension            extension `json:"extension"`
}

func (a namedAttributes) displayName() string {
	if a.DisplayName != "" {
		return a.DisplayName
	}
	return a.Name
}

func attributesOf(r Resource) namedAttributes {
	var a namedAttributes
	r.Attrs(&a)
	return a
}

// Hubs summarizes a hubs listing.
func Hubs(doc *Document) []HubSummary {
	out := make([]HubSummary, 0, len(doc.Data))
	for _, r := range doc.Data {
		a := attributesOf(r)
		out = append(out, HubSummary{
			ID:       r.ID,
			Name:     a.displayName(),
			Region:   a.Region,
			Platform: Platform(a.Extension.Type),
		})
	}
	return out
}

// Projects summarizes a projects listing.
func Projects(doc *Document) []ProjectSummary {
	out := make([]ProjectSummary, 0, len(doc.Data))
	for _, r := range doc.Data {
		a := attributesOf(r)
		out = append(out, ProjectSummary{
			ID:           r.ID,
			Name:         a.displayName(),
			Platform:     Platform(a.Extension.Type),
			ProjectType:  a.Extension.Data.ProjectType,
			RootFolderID: r.RelatedID("rootFolder"),
		})
	}
	return out
}

// Folders summarizes the folder resources of a listing, such as the top
// folders of a project.
func Folders(doc *Document) []FolderEntry {
	out := make([]FolderEntry, 0, len(doc.Data))
	for _, r := range doc.Data {
		if r.Type != "folders" {
			continue
		}
		out = append(out, folderEntry(r))
	}
	return out
}

func folderEntry(r Resource) FolderEntry {
	a := attributesOf(r)
	return FolderEntry{
		ID:           r.ID,
		Name:         a.displayName(),
		ObjectCount:  a.ObjectCount,
		LastModified: a.LastModifiedTime,
		Hidden:       a.Hidden,
	}
}

// Contents summarizes a folder contents page. Files are enriched from the
// included tip versions.
func Contents(doc *Document, opts ContentsOptions) FolderContents {
	filter := make(map[string]bool, len(opts.FilterExtensions))
	for _, ext := range opts.FilterExtensions {
		if n := normalizeExtension(ext); n != "" {
			filter[n] = true
		}
	}

	versions := indexIncluded(doc.Included, "versions")
	out := FolderContents{
		Folders:   []FolderEntry{},
		Files:     []FileEntry{},
		FileTypes: map[string]int{},
		HasMore:   doc.Links != nil && doc.Links.Next != nil && doc.Links.Next.Href != "",
	}

	for _, r := range doc.Data {
		switch r.Type {
		case "folders":
			out.Folders = append(out.Folders, folderEntry(r))
		case "items":
			f := fileEntry(r, versions)
			if len(filter) > 0 && !filter[f.Extension] {
				continue
			}
			out.Files = append(out.Files, f)
			key := f.Extension
			if key == "" {
				key = noExtension
			}
			out.FileTypes[key]++
		}
	}

	return out
}

func fileEntry(r Resource, versions map[string]Resource) FileEntry {
	a := attributesOf(r)
	f := FileEntry{
		ID:             r.ID,
		Name:           a.displayName(),
		LastModified:   a.LastModifiedTime,
		LastModifiedBy: a.LastModifiedUserName,
		TipVersionID:   r.RelatedID("tip"),
	}

	if tip, ok := versions[f.TipVersionID]; ok {
		v := attributesOf(tip)
		f.VersionNumber = v.VersionNumber
		f.SizeMB = sizeMB(v.StorageSize)
		if f.Name == "" {
			f.Name = v.displayName()
		}
	}
	f.Extension = FileExtension(f.Name)
	return f
}

func versionSummary(r Resource) VersionSummary {
	a := attributesOf(r)
	return VersionSummary{
		ID:             r.ID,
		VersionNumber:  a.VersionNumber,
		Name:           a.displayName(),
		FileType:       a.FileType,
		SizeMB:         sizeMB(a.StorageSize),
		CreateTime:     a.CreateTime,
		CreatedBy:      a.CreateUserName,
		LastModified:   a.LastModifiedTime,
		LastModifiedBy: a.LastModifiedUserName,
	}
}

// Versions summarizes an item versions listing, newest first.
func Versions(doc *Document) []VersionSummary {
	out := make([]VersionSummary, 0, len(doc.Data))
	for _, r := range doc.Data {
		if r.Type != "" && r.Type != "versions" {
			continue
		}
		out = append(out, versionSummary(r))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].VersionNumber > out[j].VersionNumber
	})
	return out
}

// Item summarizes a single item response with its included tip version.
func Item(doc *Document) *ItemSummary {
	if len(doc.Data) == 0 {
		return nil
	}
	r := doc.Data[0]
	a := attributesOf(r)
	item := &ItemSummary{
		ID:           r.ID,
		Name:         a.displayName(),
		Extension:    FileExtension(a.displayName()),
		CreateTime:   a.CreateTime,
		LastModified: a.LastModifiedTime,
	}

	if tip, ok := indexIncluded(doc.Included, "versions")[r.RelatedID("tip")]; ok {
		v := versionSummary(tip)
		item.TipVersion = &v
	}
	return item
}
