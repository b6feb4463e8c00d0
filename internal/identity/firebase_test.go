package identity

import (
	"context"
	"errors"
	"testing"

	"firebase.google.com/go/v4/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIDTokens map[string]*auth.Token

func (f fakeIDTokens) VerifyIDToken(_ context.Context, token string) (*auth.Token, error) {
	if tok, ok := f[token]; ok {
		return tok, nil
	}
	return nil, errors.New("ID token has invalid signature")
}

func TestFirebase_VerifyToken(t *testing.T) {
	f := &Firebase{client: fakeIDTokens{
		"good": {UID: "fb-1", Claims: map[string]interface{}{"email": "diver@example.com"}},
		"anon": {UID: "fb-2", Claims: map[string]interface{}{}},
	}}
	ctx := context.Background()

	id, err := f.VerifyToken(ctx, "good")
	require.NoError(t, err)
	assert.Equal(t, Identity{UID: "fb-1", Email: "diver@example.com"}, id)

	id, err = f.VerifyToken(ctx, "anon")
	require.NoError(t, err)
	assert.Empty(t, id.Email)

	_, err = f.VerifyToken(ctx, "forged")
	assert.True(t, IsAuthError(err, CodeInvalidToken))
}

func TestLocal_SatisfiesVerifier(t *testing.T) {
	l := newTestLocal(t)
	var v Verifier = l

	token, err := l.Issue(Identity{UID: "u1", Email: "diver@example.com"})
	require.NoError(t, err)

	id, err := v.VerifyToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "u1", id.UID)
}
