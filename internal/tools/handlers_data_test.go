package tools

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	rootFolder = "urn:adsk.wipprod:fs.folder:co.root"
	subFolder  = "urn:adsk.wipprod:fs.folder:co.sub"
	itemURN    = "urn:adsk.wipprod:dm.lineage:abc"
)

const rootContents = `{
  "data": [
    {"type": "folders", "id": "urn:adsk.wipprod:fs.folder:co.sub", "attributes": {"displayName": "Sheets"}},
    {"type": "items", "id": "urn:adsk.wipprod:dm.lineage:a", "attributes": {"displayName": "Tower.rvt"},
     "relationships": {"tip": {"data": {"type": "versions", "id": "urn:adsk.wipprod:fs.file:vf.a?version=2"}}}},
    {"type": "items", "id": "urn:adsk.wipprod:dm.lineage:b", "attributes": {"displayName": "Site.dwg"}}
  ],
  "included": [
    {"type": "versions", "id": "urn:adsk.wipprod:fs.file:vf.a?version=2", "attributes": {"versionNumber": 2, "storageSize": 1048576}}
  ]
}`

func TestHandleListHubsAndProjects(t *testing.T) {
	api := newFakeAPI(t, map[string]func(http.ResponseWriter, *http.Request){
		"/project/v1/hubs": jsonRoute(http.StatusOK, `{"data":[
			{"type":"hubs","id":"b.acct","attributes":{"name":"Acme","region":"US","extension":{"type":"hubs:autodesk.bim360:Account"}}}
		]}`),
		"/project/v1/hubs/b.acct/projects": jsonRoute(http.StatusOK, `{"data":[
			{"type":"projects","id":"b.proj","attributes":{"name":"Tower","extension":{"type":"projects:autodesk.bim360:Project","data":{"projectType":"ACC"}}},
			 "relationships":{"rootFolder":{"data":{"type":"folders","id":"urn:adsk.wipprod:fs.folder:co.root"}}}}
		]}`),
	})
	p := newTestProvider(t, api, &fakeTokens{}, nil)

	var hubs []map[string]any
	decodeResult(t, call(t, p, ToolListHubs, nil), &hubs)
	require.Len(t, hubs, 1)
	assert.Equal(t, "b.acct", hubs[0]["id"])
	assert.Equal(t, "Acme", hubs[0]["name"])
	assert.Equal(t, "ACC/BIM 360", hubs[0]["platform"])

	var projects []map[string]any
	decodeResult(t, call(t, p, ToolListProjects, map[string]any{"hub_id": "b.acct"}), &projects)
	require.Len(t, projects, 1)
	assert.Equal(t, "Tower", projects[0]["name"])
	assert.Equal(t, "ACC", projects[0]["project_type"])
	assert.Equal(t, rootFolder, projects[0]["root_folder_id"])

	for _, c := range api.Calls() {
		assert.Equal(t, "Bearer tok-123", c.auth)
	}
}

func TestHandleGetTopFolders(t *testing.T) {
	api := newFakeAPI(t, map[string]func(http.ResponseWriter, *http.Request){
		"/project/v1/hubs/b.acct/projects/b.proj/topFolders": jsonRoute(http.StatusOK, `{"data":[
			{"type":"folders","id":"urn:adsk.wipprod:fs.folder:co.pf","attributes":{"displayName":"Project Files","objectCount":4}},
			{"type":"folders","id":"urn:adsk.wipprod:fs.folder:co.pl","attributes":{"displayName":"Plans","hidden":true}}
		]}`),
	})
	p := newTestProvider(t, api, &fakeTokens{}, nil)

	var folders []map[string]any
	decodeResult(t, call(t, p, ToolGetTopFolders, map[string]any{"hub_id": "b.acct", "project_id": "b.proj"}), &folders)
	require.Len(t, folders, 2)
	assert.Equal(t, "Project Files", folders[0]["name"])
	assert.Equal(t, float64(4), folders[0]["object_count"])
	assert.Equal(t, true, folders[1]["hidden"])
}

func TestHandleGetFolderContents(t *testing.T) {
	api := newFakeAPI(t, map[string]func(http.ResponseWriter, *http.Request){
		"/data/v1/projects/b.proj/folders/" + rootFolder + "/contents": jsonRoute(http.StatusOK, rootContents),
	})
	p := newTestProvider(t, api, &fakeTokens{}, nil)

	t.Run("summarized with configured page size", func(t *testing.T) {
		var contents struct {
			Folders   []map[string]any `json:"folders"`
			Files     []map[string]any `json:"files"`
			FileTypes map[string]int   `json:"file_types"`
		}
		decodeResult(t, call(t, p, ToolGetFolderContents, map[string]any{"project_id": "b.proj", "folder_id": rootFolder}), &contents)

		require.Len(t, contents.Folders, 1)
		require.Len(t, contents.Files, 2)
		assert.Equal(t, "1.0", contents.Files[0]["size_mb"])
		assert.Equal(t, float64(2), contents.Files[0]["version_number"])
		assert.Equal(t, map[string]int{"rvt": 1, "dwg": 1}, contents.FileTypes)
		assert.Equal(t, "page%5Blimit%5D=50", api.Calls()[0].query)
	})

	t.Run("extension filter and explicit limit", func(t *testing.T) {
		var contents struct {
			Files     []map[string]any `json:"files"`
			FileTypes map[string]int   `json:"file_types"`
		}
		decodeResult(t, call(t, p, ToolGetFolderContents, map[string]any{
			"project_id":        "b.proj",
			"folder_id":         rootFolder,
			"filter_extensions": []any{".RVT"},
			"limit":             float64(10),
		}), &contents)

		require.Len(t, contents.Files, 1)
		assert.Equal(t, "Tower.rvt", contents.Files[0]["name"])
		assert.Equal(t, map[string]int{"rvt": 1}, contents.FileTypes)
		calls := api.Calls()
		assert.Equal(t, "page%5Blimit%5D=10", calls[len(calls)-1].query)
	})
}

func TestHandleGetFolderTree(t *testing.T) {
	routes := map[string]func(http.ResponseWriter, *http.Request){
		"/data/v1/projects/b.proj/folders/" + rootFolder + "/contents": jsonRoute(http.StatusOK, rootContents),
		"/data/v1/projects/b.proj/folders/" + subFolder + "/contents": jsonRoute(http.StatusOK, `{"data":[
			{"type":"items","id":"urn:adsk.wipprod:dm.lineage:s","attributes":{"displayName":"A-101.pdf"}}
		]}`),
	}

	t.Run("depth one fetches only the root", func(t *testing.T) {
		api := newFakeAPI(t, routes)
		p := newTestProvider(t, api, &fakeTokens{}, nil)

		var out struct {
			MaxDepth int `json:"max_depth"`
			Tree     struct {
				Files     []string `json:"files"`
				FileCount int      `json:"file_count"`
				Children  []struct {
					Name      string `json:"name"`
					Truncated bool   `json:"truncated"`
				} `json:"children"`
			} `json:"tree"`
		}
		decodeResult(t, call(t, p, ToolGetFolderTree, map[string]any{"project_id": "b.proj", "folder_id": rootFolder, "max_depth": float64(1)}), &out)

		assert.Equal(t, 1, out.MaxDepth)
		assert.Len(t, api.Calls(), 1)
		assert.Equal(t, []string{"Tower.rvt", "Site.dwg"}, out.Tree.Files)
		require.Len(t, out.Tree.Children, 1)
		assert.True(t, out.Tree.Children[0].Truncated)
	})

	t.Run("default depth expands children and clamps", func(t *testing.T) {
		api := newFakeAPI(t, routes)
		p := newTestProvider(t, api, &fakeTokens{}, nil)

		var out struct {
			MaxDepth int `json:"max_depth"`
			Tree     struct {
				Children []struct {
					Files     []string `json:"files"`
					Truncated bool     `json:"truncated"`
				} `json:"children"`
			} `json:"tree"`
		}
		decodeResult(t, call(t, p, ToolGetFolderTree, map[string]any{"project_id": "b.proj", "folder_id": rootFolder, "max_depth": float64(42)}), &out)

		assert.Equal(t, 5, out.MaxDepth)
		assert.Len(t, api.Calls(), 2)
		require.Len(t, out.Tree.Children, 1)
		assert.Equal(t, []string{"A-101.pdf"}, out.Tree.Children[0].Files)
		assert.False(t, out.Tree.Children[0].Truncated)
	})
}

func TestHandleGetItemVersions(t *testing.T) {
	api := newFakeAPI(t, map[string]func(http.ResponseWriter, *http.Request){
		"/data/v1/projects/b.proj/items/" + itemURN: jsonRoute(http.StatusOK, `{
			"data": {"type":"items","id":"urn:adsk.wipprod:dm.lineage:abc","attributes":{"displayName":"Tower.rvt"},
			         "relationships":{"tip":{"data":{"type":"versions","id":"urn:adsk.wipprod:fs.file:vf.abc?version=2"}}}},
			"included": [{"type":"versions","id":"urn:adsk.wipprod:fs.file:vf.abc?version=2","attributes":{"versionNumber":2}}]
		}`),
		"/data/v1/projects/b.proj/items/" + itemURN + "/versions": jsonRoute(http.StatusOK, `{"data":[
			{"type":"versions","id":"urn:adsk.wipprod:fs.file:vf.abc?version=1","attributes":{"versionNumber":1}},
			{"type":"versions","id":"urn:adsk.wipprod:fs.file:vf.abc?version=2","attributes":{"versionNumber":2}}
		]}`),
	})
	p := newTestProvider(t, api, &fakeTokens{}, nil)

	var out struct {
		Item struct {
			Name       string         `json:"name"`
			TipVersion map[string]any `json:"tip_version"`
		} `json:"item"`
		Versions []struct {
			VersionNumber int `json:"version_number"`
		} `json:"versions"`
	}
	decodeResult(t, call(t, p, ToolGetItemVersions, map[string]any{"project_id": "b.proj", "item_id": itemURN}), &out)

	assert.Equal(t, "Tower.rvt", out.Item.Name)
	assert.Equal(t, float64(2), out.Item.TipVersion["version_number"])
	require.Len(t, out.Versions, 2)
	assert.Equal(t, 2, out.Versions[0].VersionNumber)
	assert.Len(t, api.Calls(), 2)
}

func TestHandleGetItemVersions_NotFound(t *testing.T) {
	api := newFakeAPI(t, map[string]func(http.ResponseWriter, *http.Request){
		"/data/v1/projects/b.proj/items/" + itemURN + "/versions": jsonRoute(http.StatusOK, `{"data":[]}`),
	})
	p := newTestProvider(t, api, &fakeTokens{}, nil)

	result := call(t, p, ToolGetItemVersions, map[string]any{"project_id": "b.proj", "item_id": itemURN})
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), `"status": 404`)
}
