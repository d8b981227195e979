package tools

// Tool names.
const (
	ToolAuthStatus        = "aps_auth_status"
	ToolLogin             = "aps_login"
	ToolLogout            = "aps_logout"
	ToolListHubs          = "aps_list_hubs"
	ToolListProjects      = "aps_list_projects"
	ToolGetTopFolders     = "aps_get_top_folders"
	ToolGetFolderContents = "aps_get_folder_contents"
	ToolGetFolderTree     = "aps_get_folder_tree"
	ToolGetItemVersions   = "aps_get_item_versions"
	ToolListIssues        = "aps_list_issues"
	ToolListSubmittals    = "aps_list_submittals"
	ToolAPIRequest        = "aps_api_request"
)

// AuthStatus is the aps_auth_status result.
type AuthStatus struct {
	Mode                  string      `json:"mode"`
	CredentialsConfigured bool        `json:"credentials_configured"`
	CredentialsError      string      `json:"credentials_error,omitempty"`
	Scope                 string      `json:"scope"`
	Session               interface{} `json:"session,omitempty"`
	Hint                  string      `json:"hint,omitempty"`
}

// LoginResult is the aps_login result. It never contains token values.
type LoginResult struct {
	Status  string      `json:"status"`
	Session interface{} `json:"session"`
}

// ItemVersions is the aps_get_item_versions result.
type ItemVersions struct {
	Item     interface{} `json:"item,omitempty"`
	Versions interface{} `json:"versions"`
}

// APIRequestResult wraps the generic request response.
type APIRequestResult struct {
	Status   int    `json:"status"`
	AuthMode string `json:"auth_mode"`
	Response any    `json:"response"`
}
