package identity

import (
	"context"

	"firebase.google.com/go/v4/auth"
)

// Verifier checks bearer tokens presented to the gateway.
type Verifier interface {
	VerifyToken(ctx context.Context, token string) (Identity, error)
}

// VerifyToken is Verify with a context, so Local satisfies Verifier.
func (l *Local) VerifyToken(_ context.Context, token string) (Identity, error) {
	return l.Verify(token)
}

type idTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// Firebase verifies ID tokens minted by Firebase Authentication. Mobile
// clients sign in against Firebase directly; the gateway only verifies.
type Firebase struct {
	client idTokenVerifier
}

// NewFirebase wraps an Auth client.
func NewFirebase(client *auth.Client) *Firebase {
	return &Firebase{client: client}
}

// VerifyToken checks an ID token and returns the identity it names.
func (f *Firebase) VerifyToken(ctx context.Context, token string) (Identity, error) {
	tok, err := f.client.VerifyIDToken(ctx, token)
	if err != nil {
		return Identity{}, &AuthError{Code: CodeInvalidToken, Message: "invalid firebase id token", Err: err}
	}
	email, _ := tok.Claims["email"].(string)
	return Identity{UID: tok.UID, Email: email}, nil
}
