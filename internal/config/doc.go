// Package config loads spearfished configuration.
//
// Values come from, in increasing precedence: built-in defaults, a YAML
// file, a .env file and the process environment. Process variables win over
// the .env file. Unknown YAML keys are rejected. The merged result is
// checked against an embedded CUE schema before it is returned.
//
// Environment variables:
//
//	SPEARFISHED_BACKEND        sqlite | firestore | postgres
//	SPEARFISHED_LISTEN         gateway listen address
//	SPEARFISHED_PUBLIC_URL     base URL the gateway is reachable at
//	SQLITE_PATH                local database file
//	DATABASE_URL               postgres connection string
//	FIREBASE_CREDENTIALS_PATH  service account JSON
//	FIREBASE_PROJECT_ID
//	FIREBASE_STORAGE_BUCKET
//	JWT_SECRET                 session token signing key
//	REDIS_ADDR                 species cache; empty uses process memory
//	SPECIES_SOURCE             static | remote | path to a JSON file
//	LOG_LEVEL                  debug | info | warn | error
package config
