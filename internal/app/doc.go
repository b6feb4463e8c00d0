// Package app assembles the components for the configured backend.
//
// Every backend keeps user accounts in the local SQLite database. Posts and
// images go to SQLite, Firestore plus Cloud Storage, or PostgreSQL plus the
// local blob table, depending on Config.Backend.
package app
