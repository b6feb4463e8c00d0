package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsers_CreateAndLookup(t *testing.T) {
	s, clock := createTestStore(t)
	ctx := context.Background()

	want := clock.Peek()
	u, err := s.CreateUser(ctx, User{UID: "u1", Email: "diver@example.com", PasswordHash: []byte("hash")})
	require.NoError(t, err)
	assert.True(t, u.CreatedAt.Equal(want))

	byEmail, err := s.UserByEmail(ctx, "DIVER@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", byEmail.UID)
	assert.Equal(t, []byte("hash"), byEmail.PasswordHash)

	byUID, err := s.UserByUID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "diver@example.com", byUID.Email)
}

func TestUsers_DuplicateEmail(t *testing.T) {
	s, _ := createTestStore(t)
	ctx := context.Background()

	_, err := s.CreateUser(ctx, User{UID: "u1", Email: "diver@example.com", PasswordHash: []byte("h")})
	require.NoError(t, err)

	_, err = s.CreateUser(ctx, User{UID: "u2", Email: "Diver@Example.com", PasswordHash: []byte("h")})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestUsers_NotFound(t *testing.T) {
	s, _ := createTestStore(t)

	_, err := s.UserByEmail(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}
