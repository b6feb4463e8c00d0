package identity

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/roach88/spearfished/internal/ids"
	"github.com/roach88/spearfished/internal/store"
	"github.com/roach88/spearfished/internal/testutil"
)

var testSecret = []byte("test-secret")

func newTestLocal(t *testing.T, opts ...LocalOption) *Local {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "identity.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	opts = append([]LocalOption{WithBcryptCost(bcrypt.MinCost)}, opts...)
	l, err := NewLocal(s, testSecret, opts...)
	require.NoError(t, err)
	return l
}

func TestNewLocal_RequiresSecret(t *testing.T) {
	_, err := NewLocal(nil, nil)
	assert.Error(t, err)
}

func TestSignUp_SetsCurrent(t *testing.T) {
	l := newTestLocal(t, WithIDs(ids.NewFixedGenerator("uid-1")))
	ctx := context.Background()

	_, ok := l.Current()
	assert.False(t, ok)

	id, err := l.SignUp(ctx, "Diver@Example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, Identity{UID: "uid-1", Email: "diver@example.com"}, id)
	assert.Equal(t, "diver@example.com", id.DisplayLabel())

	cur, ok := l.Current()
	require.True(t, ok)
	assert.Equal(t, id, cur)
}

func TestSignUp_Rejects(t *testing.T) {
	l := newTestLocal(t)
	ctx := context.Background()

	_, err := l.SignUp(ctx, "diver@example.com", "secret1")
	require.NoError(t, err)

	tests := []struct {
		name     string
		email    string
		password string
		code     AuthCode
	}{
		{"empty email", "", "secret1", CodeInvalidEmail},
		{"no at sign", "diver.example.com", "secret1", CodeInvalidEmail},
		{"display name form", "Diver <d@example.com>", "secret1", CodeInvalidEmail},
		{"short password", "new@example.com", "12345", CodeWeakPassword},
		{"email in use", "DIVER@example.com", "secret1", CodeEmailInUse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := l.SignUp(ctx, tt.email, tt.password)
			require.Error(t, err)
			assert.True(t, IsAuthError(err, tt.code), "got %v", err)
		})
	}
}

func TestSignIn(t *testing.T) {
	l := newTestLocal(t)
	ctx := context.Background()

	_, err := l.Register(ctx, "diver@example.com", "secret1")
	require.NoError(t, err)
	_, ok := l.Current()
	assert.False(t, ok, "Register must not sign in")

	_, err = l.SignIn(ctx, "diver@example.com", "wrong!!")
	assert.True(t, IsAuthError(err, CodeWrongPassword))

	_, err = l.SignIn(ctx, "nobody@example.com", "secret1")
	assert.True(t, IsAuthError(err, CodeUserNotFound))

	id, err := l.SignIn(ctx, " diver@example.com ", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "diver@example.com", id.Email)

	cur, ok := l.Current()
	require.True(t, ok)
	assert.Equal(t, id, cur)
}

func TestSignOut(t *testing.T) {
	l := newTestLocal(t)
	ctx := context.Background()

	_, err := l.SignUp(ctx, "diver@example.com", "secret1")
	require.NoError(t, err)
	require.NoError(t, l.SignOut(ctx))

	_, ok := l.Current()
	assert.False(t, ok)
}

func TestWatch_StreamsChanges(t *testing.T) {
	l := newTestLocal(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := l.Watch(ctx)
	first := <-ch
	assert.False(t, first.SignedIn)

	id, err := l.SignUp(ctx, "diver@example.com", "secret1")
	require.NoError(t, err)

	select {
	case s := <-ch:
		assert.True(t, s.SignedIn)
		assert.Equal(t, id, s.Identity)
	case <-time.After(time.Second):
		t.Fatal("no state after sign up")
	}

	require.NoError(t, l.SignOut(ctx))
	select {
	case s := <-ch:
		assert.False(t, s.SignedIn)
	case <-time.After(time.Second):
		t.Fatal("no state after sign out")
	}
}

func TestToken_RoundTrip(t *testing.T) {
	l := newTestLocal(t)
	id := Identity{UID: "uid-1", Email: "diver@example.com"}

	token, err := l.Issue(id)
	require.NoError(t, err)

	got, err := l.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestVerify_Rejects(t *testing.T) {
	l := newTestLocal(t)
	id := Identity{UID: "uid-1", Email: "diver@example.com"}

	expired := newTestLocal(t, WithClock(testutil.NewManualClock()), WithTokenTTL(time.Hour))
	oldToken, err := expired.Issue(id)
	require.NoError(t, err)

	other, err := NewLocal(nil, []byte("other-secret"))
	require.NoError(t, err)
	foreign, err := other.Issue(id)
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Issuer:  issuer,
		Subject: "uid-1",
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	wrongIssuer, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:  "someone-else",
		Subject: "uid-1",
	}).SignedString(testSecret)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"garbage":      "not-a-token",
		"expired":      oldToken,
		"foreign key":  foreign,
		"alg none":     none,
		"wrong issuer": wrongIssuer,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := l.Verify(token)
			assert.True(t, IsAuthError(err, CodeInvalidToken), "got %v", err)
		})
	}
}

func TestVerify_UsesProviderClock(t *testing.T) {
	clock := testutil.NewManualClockAt(testutil.Epoch, 0)
	l := newTestLocal(t, WithClock(clock), WithTokenTTL(time.Hour))
	id := Identity{UID: "uid-1", Email: "diver@example.com"}

	token, err := l.Issue(id)
	require.NoError(t, err)

	got, err := l.Verify(token)
	require.NoError(t, err, "valid by the provider clock even though the wall clock is past expiry")
	assert.Equal(t, id, got)

	clock.Advance(time.Hour + time.Second)
	_, err = l.Verify(token)
	assert.True(t, IsAuthError(err, CodeInvalidToken), "got %v", err)
}

func TestResume(t *testing.T) {
	l := newTestLocal(t)
	ctx := context.Background()

	id, err := l.Register(ctx, "diver@example.com", "secret1")
	require.NoError(t, err)
	token, err := l.Issue(id)
	require.NoError(t, err)

	got, err := l.Resume(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, id, got)

	cur, ok := l.Current()
	require.True(t, ok)
	assert.Equal(t, id, cur)

	ghost, err := l.Issue(Identity{UID: "deleted", Email: "ghost@example.com"})
	require.NoError(t, err)
	_, err = l.Resume(ctx, ghost)
	assert.True(t, IsAuthError(err, CodeUserNotFound))
}

func TestAuthError_Message(t *testing.T) {
	err := &AuthError{Code: CodeWeakPassword, Message: "too short"}
	assert.Equal(t, "auth weak_password: too short", err.Error())
	assert.Nil(t, err.Unwrap())
}
