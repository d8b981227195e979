// Package config loads apsmcp configuration.
//
// Configuration is read from config.yaml in ~/.config/apsmcp (or a directory
// passed with --config-path) and layered over built-in defaults. A missing
// file is not an error. Selected values can be overridden from the
// environment:
//
//	APS_CLIENT_ID       auth.clientID
//	APS_CLIENT_SECRET   auth.clientSecret
//	APS_SCOPE           auth.scope
//	APS_CALLBACK_PORT   auth.callbackPort
//
// Example config.yaml:
//
//	api:
//	  baseURL: https://developer.api.autodesk.com
//	  timeout: 30s
//	  rateLimit: 10
//	auth:
//	  clientID: my-app
//	  scope: "data:read account:read"
//	  callbackPort: 8910
//	tools:
//	  treeMaxDepth: 3
//	logging:
//	  level: debug
//	  format: json
package config
