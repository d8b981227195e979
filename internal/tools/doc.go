// Package tools exposes the data management, issues and submittals APIs as
// MCP tools.
//
// Every handler follows the same pipeline: validate arguments without any
// network I/O, obtain a bearer token from the TokenSource (user session
// first, application token otherwise), forward the request through the
// API client and return the summarized response as indented JSON text.
//
// Failures never escape as Go errors. They are mapped to tool results with
// isError set: validation problems carry a corrective hint, API errors a
// structured diagnostic, and panics are recovered into the same shape.
package tools
