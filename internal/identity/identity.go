package identity

import (
	"context"
	"errors"
	"fmt"
)

// Identity is an authenticated user.
type Identity struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
}

// DisplayLabel is the name shown on the user's posts.
func (i Identity) DisplayLabel() string {
	return i.Email
}

// State is the signed-in state pushed to watchers.
type State struct {
	Identity Identity
	SignedIn bool
}

// Provider is an identity provider.
type Provider interface {
	SignIn(ctx context.Context, email, password string) (Identity, error)
	SignUp(ctx context.Context, email, password string) (Identity, error)
	SignOut(ctx context.Context) error
	// Current returns the signed-in identity, or false if nobody is signed in.
	Current() (Identity, bool)
	// Watch streams the current state and every change until ctx is done.
	Watch(ctx context.Context) <-chan State
}

// AuthCode classifies an authentication failure.
type AuthCode string

const (
	CodeInvalidEmail  AuthCode = "invalid_email"
	CodeWeakPassword  AuthCode = "weak_password"
	CodeEmailInUse    AuthCode = "email_in_use"
	CodeUserNotFound  AuthCode = "user_not_found"
	CodeWrongPassword AuthCode = "wrong_password"
	CodeInvalidToken  AuthCode = "invalid_token"
	CodeInternal      AuthCode = "internal"
)

// AuthError is returned by Provider operations and Verify.
type AuthError struct {
	Code    AuthCode
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("auth %s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("auth %s: %s", e.Code, e.Message)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// IsAuthError reports whether err is an *AuthError with the given code.
func IsAuthError(err error, code AuthCode) bool {
	var ae *AuthError
	return errors.As(err, &ae) && ae.Code == code
}
