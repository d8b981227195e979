package summarize

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDecode(t *testing.T, raw string) *Document {
	t.Helper()
	doc, err := DecodeDocument([]byte(raw))
	require.NoError(t, err)
	return doc
}

const folderContentsPayload = `{
  "data": [
    {"type": "folders", "id": "urn:adsk.wipprod:fs.folder:co.sub", "attributes": {"displayName": "Sheets", "objectCount": 3}},
    {"type": "items", "id": "urn:adsk.wipprod:dm.lineage:a", "attributes": {"displayName": "Tower.RVT", "lastModifiedUserName": "Ada"},
     "relationships": {"tip": {"data": {"type": "versions", "id": "urn:adsk.wipprod:fs.file:vf.a?version=3"}}}},
    {"type": "items", "id": "urn:adsk.wipprod:dm.lineage:b", "attributes": {"displayName": "Site.dwg"},
     "relationships": {"tip": {"data": {"type": "versions", "id": "urn:adsk.wipprod:fs.file:vf.b?version=1"}}}},
    {"type": "items", "id": "urn:adsk.wipprod:dm.lineage:c", "attributes": {"displayName": "Podium.rvt"},
     "relationships": {"refs": {"data": []}}}
  ],
  "included": [
    {"type": "versions", "id": "urn:adsk.wipprod:fs.file:vf.a?version=3", "attributes": {"versionNumber": 3, "storageSize": 1048576}},
    {"type": "versions", "id": "urn:adsk.wipprod:fs.file:vf.b?version=1", "attributes": {"versionNumber": 1, "storageSize": 5767168}}
  ],
  "links": {"next": {"href": "https://developer.api.autodesk.com/data/v1/projects/b.1/folders/x/contents?page%5Bnumber%5D=1"}}
}`

func TestContents_EnrichesFromTipVersion(t *testing.T) {
	doc := mustDecode(t, folderContentsPayload)
	got := Contents(doc, ContentsOptions{})

	require.Len(t, got.Folders, 1)
	assert.Equal(t, "Sheets", got.Folders[0].Name)
	require.NotNil(t, got.Folders[0].ObjectCount)
	assert.Equal(t, 3, *got.Folders[0].ObjectCount)

	require.Len(t, got.Files, 3)
	tower := got.Files[0]
	assert.Equal(t, "Tower.RVT", tower.Name)
	assert.Equal(t, "rvt", tower.Extension)
	assert.Equal(t, 3, tower.VersionNumber)
	assert.Equal(t, "1.0", tower.SizeMB)
	assert.Equal(t, "Ada", tower.LastModifiedBy)

	assert.Equal(t, "5.5", got.Files[1].SizeMB)
	assert.Empty(t, got.Files[2].SizeMB, "no tip version, no size")
	assert.Equal(t, map[string]int{"rvt": 2, "dwg": 1}, got.FileTypes)
	assert.True(t, got.HasMore)
}

func TestContents_FilterExtensions(t *testing.T) {
	doc := mustDecode(t, folderContentsPayload)

	for _, filter := range [][]string{{".rvt"}, {"RVT"}, {" .Rvt "}} {
		got := Contents(doc, ContentsOptions{FilterExtensions: filter})

		require.Len(t, got.Files, 2, "filter %v", filter)
		for _, f := range got.Files {
			assert.Equal(t, "rvt", f.Extension)
		}
		assert.Equal(t, map[string]int{"rvt": 2}, got.FileTypes)
		assert.NotContains(t, got.FileTypes, "dwg")
		assert.Len(t, got.Folders, 1, "folders are never filtered")
	}
}

func TestContents_TolerantOfMissingFields(t *testing.T) {
	for _, raw := range []string{``, `{}`, `{"data": null}`, `{"data": [{"type": "items"}]}`, `{"data": [{"type":"items","attributes":"oops"}]}`} {
		doc := mustDecode(t, raw)
		got := Contents(doc, ContentsOptions{})
		assert.NotNil(t, got.Files)
		assert.NotNil(t, got.Folders)
		assert.NotNil(t, got.FileTypes)
	}

	doc := mustDecode(t, `{"data": [{"type": "items", "id": "x"}]}`)
	got := Contents(doc, ContentsOptions{})
	require.Len(t, got.Files, 1)
	assert.Equal(t, map[string]int{noExtension: 1}, got.FileTypes)

	out, err := json.Marshal(got.Files[0])
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"x","name":""}`, string(out))
}

func TestDecodeDocument_RejectsInvalidJSON(t *testing.T) {
	_, err := DecodeDocument([]byte(`{"data": [`))
	require.Error(t, err)
}

func TestDecodeDocument_TolerantOfMalformedShapes(t *testing.T) {
	t.Run("included given as an object", func(t *testing.T) {
		doc := mustDecode(t, `{
			"data": [{"type": "items", "id": "i1", "attributes": {"displayName": "A.rvt"},
			          "relationships": {"tip": {"data": {"type": "versions", "id": "v1"}}}}],
			"included": {"type": "versions", "id": "v1", "attributes": {"versionNumber": 4, "storageSize": 2097152}}
		}`)
		got := Contents(doc, ContentsOptions{})
		require.Len(t, got.Files, 1)
		assert.Equal(t, 4, got.Files[0].VersionNumber)
		assert.Equal(t, "2.0", got.Files[0].SizeMB)
	})

	t.Run("included given as a scalar", func(t *testing.T) {
		doc := mustDecode(t, `{"data": [{"type": "hubs", "id": "b.1"}], "included": 7}`)
		assert.Empty(t, doc.Included)
		assert.Len(t, Hubs(doc), 1)
	})

	t.Run("numeric id is kept as text", func(t *testing.T) {
		doc := mustDecode(t, `{"data": [{"type": "hubs", "id": 12345, "attributes": {"name": "Numeric"}}]}`)
		got := Hubs(doc)
		require.Len(t, got, 1)
		assert.Equal(t, "12345", got[0].ID)
		assert.Equal(t, "Numeric", got[0].Name)
	})

	t.Run("scalars inside data are skipped", func(t *testing.T) {
		doc := mustDecode(t, `{"data": [1, "x", null, {"type": "hubs", "id": "b.1", "attributes": {"name": "Kept"}}, [true]]}`)
		got := Hubs(doc)
		require.Len(t, got, 1)
		assert.Equal(t, "Kept", got[0].Name)
	})

	t.Run("relationships given as an array", func(t *testing.T) {
		doc := mustDecode(t, `{"data": {"type": "projects", "id": "b.p1", "attributes": {"name": "Hospital"},
			"relationships": [{"rootFolder": "f1"}]}}`)
		got := Projects(doc)
		require.Len(t, got, 1)
		assert.Equal(t, "Hospital", got[0].Name)
		assert.Empty(t, got[0].RootFolderID)
	})

	t.Run("wrongly typed relationship linkage", func(t *testing.T) {
		doc := mustDecode(t, `{"data": {"type": "projects", "id": "b.p1",
			"relationships": {"rootFolder": {"data": {"type": "folders", "id": 99}}, "hub": "b.acc"}}}`)
		got := Projects(doc)
		require.Len(t, got, 1)
		assert.Equal(t, "99", got[0].RootFolderID)
	})

	t.Run("next link as a bare string", func(t *testing.T) {
		doc := mustDecode(t, `{"data": [], "links": {"next": "https://example.com/next"}}`)
		assert.True(t, Contents(doc, ContentsOptions{}).HasMore)

		doc = mustDecode(t, `{"data": [], "links": "nope"}`)
		assert.False(t, Contents(doc, ContentsOptions{}).HasMore)
	})

	t.Run("top-level array", func(t *testing.T) {
		doc := mustDecode(t, `[{"type": "hubs", "id": "b.1"}]`)
		assert.Empty(t, Hubs(doc))
	})
}

func TestHubs(t *testing.T) {
	doc := mustDecode(t, `{"data": [
		{"type": "hubs", "id": "b.acc", "attributes": {"name": "Contoso", "region": "US", "extension": {"type": "hubs:autodesk.bim360:Account"}}},
		{"type": "hubs", "id": "a.team", "attributes": {"name": "Team", "extension": {"type": "hubs:autodesk.core:Hub"}}},
		{"type": "hubs", "id": "a.me", "attributes": {"name": "Me", "extension": {"type": "hubs:autodesk.a360:PersonalHub"}}}
	]}`)

	got := Hubs(doc)
	assert.Equal(t, []HubSummary{
		{ID: "b.acc", Name: "Contoso", Region: "US", Platform: "ACC/BIM 360"},
		{ID: "a.team", Name: "Team", Platform: "Fusion"},
		{ID: "a.me", Name: "Me", Platform: "A360 Personal"},
	}, got)
}

func TestProjects(t *testing.T) {
	doc := mustDecode(t, `{"data": {
		"type": "projects", "id": "b.p1",
		"attributes": {"name": "Hospital", "extension": {"type": "projects:autodesk.bim360:Project", "data": {"projectType": "ACC"}}},
		"relationships": {"rootFolder": {"data": {"type": "folders", "id": "urn:adsk.wipprod:fs.folder:co.root"}}}
	}}`)

	got := Projects(doc)
	require.Len(t, got, 1)
	assert.Equal(t, ProjectSummary{
		ID:           "b.p1",
		Name:         "Hospital",
		Platform:     "ACC/BIM 360",
		ProjectType:  "ACC",
		RootFolderID: "urn:adsk.wipprod:fs.folder:co.root",
	}, got[0])
}

func TestFolders_SkipsNonFolders(t *testing.T) {
	doc := mustDecode(t, `{"data": [
		{"type": "folders", "id": "f1", "attributes": {"name": "Project Files", "hidden": false}},
		{"type": "items", "id": "i1"},
		{"type": "folders", "id": "f2", "attributes": {"name": "Recycle", "hidden": true}}
	]}`)

	got := Folders(doc)
	require.Len(t, got, 2)
	assert.Equal(t, "Project Files", got[0].Name)
	assert.True(t, got[1].Hidden)
}

func TestVersions_NewestFirst(t *testing.T) {
	doc := mustDecode(t, `{"data": [
		{"type": "versions", "id": "v1", "attributes": {"versionNumber": 1, "storageSize": 0, "createUserName": "Ada"}},
		{"type": "versions", "id": "v2", "attributes": {"versionNumber": 2, "fileType": "rvt"}}
	]}`)

	got := Versions(doc)
	require.Len(t, got, 2)
	assert.Equal(t, "v2", got[0].ID)
	assert.Equal(t, "rvt", got[0].FileType)
	assert.Empty(t, got[0].SizeMB)
	assert.Equal(t, "0.0", got[1].SizeMB)
	assert.Equal(t, "Ada", got[1].CreatedBy)
}

func TestItem(t *testing.T) {
	doc := mustDecode(t, `{
		"data": {"type": "items", "id": "i1", "attributes": {"displayName": "Plan.pdf", "createTime": "2024-01-01T00:00:00Z"},
		         "relationships": {"tip": {"data": {"type": "versions", "id": "v9"}}}},
		"included": [{"type": "versions", "id": "v9", "attributes": {"versionNumber": 9, "storageSize": 2097152}}]
	}`)

	got := Item(doc)
	require.NotNil(t, got)
	assert.Equal(t, "pdf", got.Extension)
	require.NotNil(t, got.TipVersion)
	assert.Equal(t, 9, got.TipVersion.VersionNumber)
	assert.Equal(t, "2.0", got.TipVersion.SizeMB)

	assert.Nil(t, Item(mustDecode(t, `{}`)))
}

func TestPlatformAndExtension(t *testing.T) {
	assert.Equal(t, "", Platform(""))
	assert.Equal(t, "Other", Platform("hubs:something:else"))
	assert.Equal(t, "gz", FileExtension("archive.tar.gz"))
	assert.Equal(t, "", FileExtension("README"))
	assert.Equal(t, "1.0", FormatSizeMB(1048576))
	assert.Equal(t, "0.5", FormatSizeMB(524288))
}
