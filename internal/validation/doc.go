// Package validation checks caller-supplied identifiers and API paths before
// any network call is made.
//
// The platform uses several ID families that are easy to mix up:
//
//	hub / project      b.<guid>  (ACC, BIM 360)   a.<id> (personal hubs)
//	folder             urn:adsk.wipprod:fs.folder:co.<id>
//	item (lineage)     urn:adsk.wipprod:dm.lineage:<id>
//	version            urn:adsk.wipprod:fs.file:vf.<id>?version=<n>
//
// Every failure is an *Error whose Hint describes the expected format so the
// assistant can correct its next call.
package validation
