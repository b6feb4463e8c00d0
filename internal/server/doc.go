// Package server is the HTTP gateway over the feed, publish pipeline,
// species catalog and accounts.
//
// Routes:
//
//	GET  /healthz
//	GET  /feed             current feed snapshot, newest first
//	GET  /feed/map         map pins and center
//	POST /posts            multipart publish; requires a bearer token
//	GET  /blobs/{key}      stored images (local backends only)
//	GET  /species          catalog, optionally ?q= to match one species
//	POST /auth/signup      {"email","password"} -> session token
//	POST /auth/signin
//
// Errors are JSON objects {"status", "error", "error_code"}.
package server
