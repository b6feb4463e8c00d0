// Package identity signs users in and tracks who is signed in.
//
// Provider is the collaborator interface the rest of the system depends on:
// sign in, sign up, sign out, read the current identity and watch it change.
// An identity's display label is its email address; that is what the
// publish pipeline stamps on a post when no username is given.
//
// Local is a Provider backed by the SQLite store. Passwords are hashed with
// bcrypt. Sessions are HS256 JWTs, so the HTTP gateway can authenticate
// requests statelessly with Verify.
package identity
