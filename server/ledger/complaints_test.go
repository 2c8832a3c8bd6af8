package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileComplaint(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	seedStudent(t, st, "u1")

	complaint, err := svc.FileComplaint(ctx, "u1", "Broken projector", "Room 204 projector flickers.")
	require.NoError(t, err)
	assert.NotEmpty(t, complaint.ID)
	assert.Equal(t, "u1", complaint.AuthorID)
	assert.Equal(t, ComplaintOpen, complaint.Status)

	complaints, err := svc.ListComplaints(ctx)
	require.NoError(t, err)
	require.Len(t, complaints, 1)
	assert.Equal(t, complaint.ID, complaints[0].ID)

	_, err = svc.FileComplaint(ctx, "u1", "", "no title")
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = svc.FileComplaint(ctx, "ghost", "Anything", "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMarkComplaintSeen(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	seedStudent(t, st, "u1")
	seedClub(t, st, Club{ID: "club1", Name: "Robotics", Admins: []string{"adminX"}})
	seedHead(t, st, "head", 0)

	complaint, err := svc.FileComplaint(ctx, "u1", "Broken projector", "")
	require.NoError(t, err)

	require.NoError(t, svc.MarkComplaintSeen(ctx, complaint.ID, "adminX"))
	require.NoError(t, svc.MarkComplaintSeen(ctx, complaint.ID, "head"))
	// Seeing twice records once.
	require.NoError(t, svc.MarkComplaintSeen(ctx, complaint.ID, "adminX"))

	complaints, err := svc.ListComplaints(ctx)
	require.NoError(t, err)
	require.Len(t, complaints, 1)
	assert.Equal(t, []string{"adminX", "head"}, complaints[0].SeenBy)

	assert.ErrorIs(t, svc.MarkComplaintSeen(ctx, complaint.ID, "u1"), ErrUnauthorized)
	assert.ErrorIs(t, svc.MarkComplaintSeen(ctx, "missing", "head"), ErrNotFound)
}

func TestCloseComplaint(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	seedStudent(t, st, "u1")
	seedHead(t, st, "head", 0)

	complaint, err := svc.FileComplaint(ctx, "u1", "Broken projector", "")
	require.NoError(t, err)

	require.NoError(t, svc.CloseComplaint(ctx, complaint.ID, "head"))

	complaints, err := svc.ListComplaints(ctx)
	require.NoError(t, err)
	assert.Equal(t, ComplaintClosed, complaints[0].Status)

	// Closing again is a no-op.
	require.NoError(t, svc.CloseComplaint(ctx, complaint.ID, "head"))

	assert.ErrorIs(t, svc.CloseComplaint(ctx, complaint.ID, "u1"), ErrUnauthorized)
}
