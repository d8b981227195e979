// Package summarize flattens JSON:API payloads from the data management,
// issues and submittals services into compact records.
//
// Every summarizer is a pure function over a decoded document. Missing
// arrays decode as empty slices and missing nested attributes become zero
// values that are omitted from the JSON output, so partially populated
// responses never cause an error.
//
// The folder tree builder is the only component that performs I/O, through
// the FolderFetcher interface.
package summarize
