package userstore

import (
	"context"
	"testing"

	"github.com/MrEthical07/verifact"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLifecycle(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, err := m.GetUserByEmail(ctx, "alice@example.com")
	require.ErrorIs(t, err, verifact.ErrUserNotFound)

	created, err := m.CreateUser(ctx, verifact.CreateUserInput{
		Name:         "Alice",
		Email:        "alice@example.com",
		PasswordHash: "hash-1",
		Authorities:  []string{"ROLE_USER"},
	})
	require.NoError(t, err)
	_, err = uuid.Parse(created.ID)
	require.NoError(t, err)
	assert.True(t, created.Enabled)
	assert.False(t, created.EmailVerified)

	_, err = m.CreateUser(ctx, verifact.CreateUserInput{Email: "alice@example.com"})
	require.ErrorIs(t, err, verifact.ErrAccountExists)

	require.NoError(t, m.UpdatePasswordHash(ctx, "alice@example.com", "hash-2"))
	require.NoError(t, m.MarkEmailVerified(ctx, "alice@example.com"))
	require.NoError(t, m.SetEnabled("alice@example.com", false))

	got, err := m.GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "hash-2", got.PasswordHash)
	assert.True(t, got.EmailVerified)
	assert.False(t, got.Enabled)

	require.ErrorIs(t, m.MarkEmailVerified(ctx, "ghost@example.com"), verifact.ErrUserNotFound)
}

func TestMemoryReturnsCopies(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	m.Put(verifact.UserRecord{Email: "bob@example.com", Authorities: []string{"ROLE_USER"}})

	got, err := m.GetUserByEmail(ctx, "bob@example.com")
	require.NoError(t, err)
	got.Authorities[0] = "ROLE_ADMIN"

	again, err := m.GetUserByEmail(ctx, "bob@example.com")
	require.NoError(t, err)
	assert.Equal(t, []string{"ROLE_USER"}, again.Authorities)
	assert.NotEmpty(t, again.ID)
}
