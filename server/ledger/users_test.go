package ledger

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campushq/unievents/server/store"
)

func TestEnsureUser(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	user, err := svc.EnsureUser(ctx, "u1", "Ada", "ada@campus.test")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, "Ada", user.Name)
	assert.Equal(t, RoleStudent, user.Role)
	assert.Equal(t, testTime, user.CreatedAt)

	// A second sign-in returns the stored document untouched, even with a
	// different display name.
	again, err := svc.EnsureUser(ctx, "u1", "Ada Lovelace", "ada@campus.test")
	require.NoError(t, err)
	assert.Equal(t, "Ada", again.Name)

	_, err = svc.EnsureUser(ctx, "", "Nameless", "")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestEnsureUser_KeepsExistingRole(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	seedHead(t, st, "head", 500)

	user, err := svc.EnsureUser(ctx, "head", "The Head", "head@campus.test")
	require.NoError(t, err)
	assert.Equal(t, RoleHead, user.Role)
	assert.Equal(t, 500, user.AvailableSupply)
}

func TestSetWalletAddress(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	seedStudent(t, st, "u1")

	require.NoError(t, svc.SetWalletAddress(ctx, "u1", "0xabc"))
	assert.Equal(t, "0xabc", getUser(t, svc, "u1").WalletAddress)

	require.NoError(t, svc.SetWalletAddress(ctx, "u1", ""))
	assert.Empty(t, getUser(t, svc, "u1").WalletAddress)

	assert.ErrorIs(t, svc.SetWalletAddress(ctx, "missing", "0xabc"), ErrNotFound)
}

func TestGetUser_NormalizesStoredRole(t *testing.T) {
	svc, st := newTestService(t)

	seedDoc(t, st, store.CollectionUsers, "u1", map[string]any{
		"name":  "Ada",
		"email": "ada@campus.test",
		"role":  "  Club ",
	})
	seedDoc(t, st, store.CollectionUsers, "u2", map[string]any{
		"name": "Bob",
		"role": "superuser",
	})

	assert.Equal(t, RoleClub, getUser(t, svc, "u1").Role)
	assert.Equal(t, RoleStudent, getUser(t, svc, "u2").Role, "unknown roles degrade to student")
}

func TestGetUser_RejectsNegativeBalance(t *testing.T) {
	svc, st := newTestService(t)

	seedDoc(t, st, store.CollectionUsers, "u1", map[string]any{
		"name":   "Ada",
		"tokens": -5,
	})

	_, err := svc.GetUser(context.Background(), "u1")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestGetUsersByIDs(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	seedStudent(t, st, "u1")
	seedStudent(t, st, "u2")

	users, err := svc.GetUsersByIDs(ctx, []string{"u1", "missing", "u2"})
	require.NoError(t, err)
	require.Len(t, users, 2, "missing users are skipped")
	assert.Equal(t, "u1", users[0].ID)
	assert.Equal(t, "u2", users[1].ID)
}

func TestGetUsersByIDs_MalformedDocument(t *testing.T) {
	svc, st := newTestService(t)

	seedStudent(t, st, "u1")
	seedDoc(t, st, store.CollectionUsers, "bad", json.RawMessage(`"not an object"`))

	_, err := svc.GetUsersByIDs(context.Background(), []string{"u1", "bad"})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}
