package ledger

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateClub(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	seedHead(t, st, "head", 500)
	seedStudent(t, st, "student")

	club, err := svc.CreateClub(ctx, "head", "Robotics")
	require.NoError(t, err)
	assert.NotEmpty(t, club.ID)
	assert.Equal(t, "Robotics", club.Name)
	assert.Equal(t, 0, club.TokenBalance)
	assert.Equal(t, 1, club.RequiredApprovals)

	_, err = svc.CreateClub(ctx, "student", "Chess")
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.CreateClub(ctx, "head", "")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestDeleteClub(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	seedHead(t, st, "head", 0)
	seedClub(t, st, Club{ID: "club1", Name: "Robotics"})

	require.NoError(t, svc.DeleteClub(ctx, "head", "club1"))

	_, err := svc.GetClub(ctx, "club1")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, svc.DeleteClub(ctx, "head", "club1"), ErrNotFound)
}

func TestAllocate(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	seedHead(t, st, "head", 500)
	seedClub(t, st, Club{ID: "club1", Name: "Robotics"})

	require.NoError(t, svc.Allocate(ctx, "head", "club1", 100))

	head := getUser(t, svc, "head")
	assert.Equal(t, 400, head.AvailableSupply)
	assert.Equal(t, 500, head.TotalSupply, "total supply never moves on allocation")
	assert.Equal(t, 100, getClub(t, svc, "club1").TokenBalance)

	entries, err := svc.ClubLedger(ctx, "club1", 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, LedgerAllocation, entries[0].Type)
	assert.Equal(t, 100, entries[0].Amount)
	assert.Equal(t, "head", entries[0].Actor)
}

func TestAllocate_Validation(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	seedHead(t, st, "head", 500)
	seedStudent(t, st, "student")
	seedClub(t, st, Club{ID: "club1", Name: "Robotics"})

	assert.ErrorIs(t, svc.Allocate(ctx, "head", "club1", 0), ErrInvalidArgument)
	assert.ErrorIs(t, svc.Allocate(ctx, "head", "club1", -10), ErrInvalidArgument)
	assert.ErrorIs(t, svc.Allocate(ctx, "head", "club1", 501), ErrInvalidArgument)
	assert.ErrorIs(t, svc.Allocate(ctx, "student", "club1", 10), ErrUnauthorized)
	assert.ErrorIs(t, svc.Allocate(ctx, "head", "missing", 10), ErrNotFound)

	// Failed calls leave everything untouched.
	assert.Equal(t, 500, getUser(t, svc, "head").AvailableSupply)
	assert.Equal(t, 0, getClub(t, svc, "club1").TokenBalance)
	entries, err := svc.ClubLedger(ctx, "club1", 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSetAllowance(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	seedHead(t, st, "head", 0)
	seedClub(t, st, Club{ID: "club1", Name: "Robotics"})

	require.NoError(t, svc.SetAllowance(ctx, "head", "club1", 250))
	assert.Equal(t, 250, getClub(t, svc, "club1").TokenAllowance)

	assert.ErrorIs(t, svc.SetAllowance(ctx, "head", "club1", -1), ErrInvalidArgument)
}

func TestSetRequiredApprovals(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	seedHead(t, st, "head", 0)
	seedClub(t, st, Club{ID: "club1", Name: "Robotics"})

	require.NoError(t, svc.SetRequiredApprovals(ctx, "head", "club1", 2))
	assert.Equal(t, 2, getClub(t, svc, "club1").RequiredApprovals)

	assert.ErrorIs(t, svc.SetRequiredApprovals(ctx, "head", "club1", 0), ErrInvalidArgument)
}

func TestAddAdmin(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	seedHead(t, st, "head", 0)
	seedClub(t, st, Club{ID: "club1", Name: "Robotics"})
	seedStudent(t, st, "u1")

	require.NoError(t, svc.AddAdmin(ctx, "head", "club1", "u1"))

	club := getClub(t, svc, "club1")
	assert.Equal(t, []string{"u1"}, club.Admins)

	user := getUser(t, svc, "u1")
	assert.Equal(t, RoleClub, user.Role)
	assert.Equal(t, "club1", user.ClubID)

	// Adding again is a no-op.
	require.NoError(t, svc.AddAdmin(ctx, "head", "club1", "u1"))
	assert.Len(t, getClub(t, svc, "club1").Admins, 1)
}

func TestAddAdmin_Limit(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	seedHead(t, st, "head", 0)
	seedClub(t, st, Club{ID: "club1", Name: "Robotics"})
	for i := range 4 {
		seedStudent(t, st, fmt.Sprintf("u%d", i))
	}

	for i := range MaxClubAdmins {
		require.NoError(t, svc.AddAdmin(ctx, "head", "club1", fmt.Sprintf("u%d", i)))
	}

	err := svc.AddAdmin(ctx, "head", "club1", "u3")
	assert.ErrorIs(t, err, ErrLimitExceeded)
	assert.Len(t, getClub(t, svc, "club1").Admins, MaxClubAdmins)
	assert.Equal(t, RoleStudent, getUser(t, svc, "u3").Role)
}

func TestRemoveAdmin(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	seedHead(t, st, "head", 0)
	seedClub(t, st, Club{ID: "club1", Name: "Robotics", Admins: []string{"adminX", "adminY"}})

	require.NoError(t, svc.RemoveAdmin(ctx, "head", "club1", "adminX"))

	club := getClub(t, svc, "club1")
	assert.Equal(t, []string{"adminY"}, club.Admins)

	user := getUser(t, svc, "adminX")
	assert.Equal(t, RoleStudent, user.Role)
	assert.Empty(t, user.ClubID)

	// Removing a non-admin is a no-op.
	seedStudent(t, st, "u1")
	require.NoError(t, svc.RemoveAdmin(ctx, "head", "club1", "u1"))
	assert.Len(t, getClub(t, svc, "club1").Admins, 1)
}

func TestTransferHeadRole(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	seedHead(t, st, "head", 500)
	seedStudent(t, st, "u1")

	require.NoError(t, svc.TransferHeadRole(ctx, "head", "u1"))

	from := getUser(t, svc, "head")
	assert.Equal(t, RoleStudent, from.Role)
	assert.Equal(t, 0, from.TotalSupply)
	assert.Equal(t, 0, from.AvailableSupply)

	to := getUser(t, svc, "u1")
	assert.Equal(t, RoleHead, to.Role)
	assert.Equal(t, 500, to.TotalSupply)
	assert.Equal(t, 500, to.AvailableSupply)
}

func TestTransferHeadRole_Validation(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	seedHead(t, st, "head", 500)
	seedStudent(t, st, "u1")

	assert.ErrorIs(t, svc.TransferHeadRole(ctx, "head", "head"), ErrInvalidArgument)
	assert.ErrorIs(t, svc.TransferHeadRole(ctx, "head", "missing"), ErrNotFound)
	assert.ErrorIs(t, svc.TransferHeadRole(ctx, "u1", "head"), ErrUnauthorized)
}
