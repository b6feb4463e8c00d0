// Package post defines the catch post and its document record.
//
// A Post is what the feed shows and what the publish pipeline creates. Every
// document store adapter persists the same record shape, keyed by post id:
//
//	id, username, timestamp, imageUrl, fishType, description,
//	location {latitude, longitude}, locationName
//
// Decode turns a raw document back into a Post. It is an explicit,
// schema-checked decode: required fields that are missing, mistyped or
// invalid produce a *FieldError and are never silently defaulted. Only
// description and locationName are optional.
package post
