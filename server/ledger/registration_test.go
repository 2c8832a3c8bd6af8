package ledger

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterForEvent(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	seedStudent(t, st, "alice")
	seedEvent(t, st, Event{ID: "ev1", Name: "Hack Night", Date: "2025-03-20", Capacity: 10, ClubID: "club1"})

	require.NoError(t, svc.RegisterForEvent(ctx, "ev1", "alice"))
	assert.Equal(t, []string{"alice"}, getEvent(t, svc, "ev1").Participants)

	// Registering twice is a no-op.
	require.NoError(t, svc.RegisterForEvent(ctx, "ev1", "alice"))
	assert.Equal(t, []string{"alice"}, getEvent(t, svc, "ev1").Participants)
}

func TestRegisterForEvent_NotFound(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	seedStudent(t, st, "alice")
	err := svc.RegisterForEvent(ctx, "missing", "alice")
	assert.ErrorIs(t, err, ErrNotFound)

	seedEvent(t, st, Event{ID: "ev1", Name: "Hack Night", Date: "2025-03-20", Capacity: 10})
	err = svc.RegisterForEvent(ctx, "ev1", "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRegisterForEvent_Full(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	seedStudent(t, st, "alice")
	seedStudent(t, st, "bob")
	seedEvent(t, st, Event{ID: "ev1", Name: "Workshop", Date: "2025-03-20", Capacity: 1})

	require.NoError(t, svc.RegisterForEvent(ctx, "ev1", "alice"))
	err := svc.RegisterForEvent(ctx, "ev1", "bob")
	assert.ErrorIs(t, err, ErrFull)

	assert.Equal(t, []string{"alice"}, getEvent(t, svc, "ev1").Participants)
}

func TestRegisterForEvent_UnlimitedCapacity(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	seedEvent(t, st, Event{ID: "ev1", Name: "Open Mic", Date: "2025-03-20", Capacity: 0})
	for _, id := range []string{"a", "b", "c", "d"} {
		seedStudent(t, st, id)
		require.NoError(t, svc.RegisterForEvent(ctx, "ev1", id))
	}
	assert.Len(t, getEvent(t, svc, "ev1").Participants, 4)
}

// Three users race for two seats: exactly two must win and the loser must
// see ErrFull, never a corrupted participant list.
func TestRegisterForEvent_ConcurrentCapacityBoundary(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	users := []string{"a", "b", "c"}
	for _, id := range users {
		seedStudent(t, st, id)
	}
	seedEvent(t, st, Event{ID: "ev1", Name: "Finals", Date: "2025-03-20", Capacity: 2})

	errs := make([]error, len(users))
	var wg sync.WaitGroup
	for i, id := range users {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = svc.RegisterForEvent(ctx, "ev1", id)
		}()
	}
	wg.Wait()

	var full int
	for _, err := range errs {
		if err != nil {
			require.ErrorIs(t, err, ErrFull)
			full++
		}
	}
	assert.Equal(t, 1, full)
	assert.Len(t, getEvent(t, svc, "ev1").Participants, 2)
}

func TestUnregisterFromEvent(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	seedStudent(t, st, "alice")
	seedEvent(t, st, Event{ID: "ev1", Name: "Hack Night", Date: "2025-03-20", Capacity: 5})

	// Unregistering from a missing event or without being registered is a no-op.
	require.NoError(t, svc.UnregisterFromEvent(ctx, "missing", "alice"))
	require.NoError(t, svc.UnregisterFromEvent(ctx, "ev1", "alice"))

	require.NoError(t, svc.RegisterForEvent(ctx, "ev1", "alice"))
	require.NoError(t, svc.UnregisterFromEvent(ctx, "ev1", "alice"))
	assert.Empty(t, getEvent(t, svc, "ev1").Participants)

	// Register, unregister, register leaves exactly one registration.
	require.NoError(t, svc.RegisterForEvent(ctx, "ev1", "alice"))
	assert.Equal(t, []string{"alice"}, getEvent(t, svc, "ev1").Participants)
}

func TestStars(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	seedEvent(t, st, Event{ID: "ev1", Name: "Hack Night", Date: "2025-03-20"})

	require.NoError(t, svc.AddStar(ctx, "ev1", "alice"))
	require.NoError(t, svc.AddStar(ctx, "ev1", "alice"))
	assert.Equal(t, []string{"alice"}, getEvent(t, svc, "ev1").StarredBy)

	require.NoError(t, svc.RemoveStar(ctx, "ev1", "alice"))
	require.NoError(t, svc.RemoveStar(ctx, "ev1", "alice"))
	assert.Empty(t, getEvent(t, svc, "ev1").StarredBy)

	err := svc.AddStar(ctx, "missing", "alice")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRegisterForEvent_MalformedEventDocument(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	seedStudent(t, st, "alice")
	seedDoc(t, st, "events", "broken", json.RawMessage(`"not an object"`))

	err := svc.RegisterForEvent(ctx, "broken", "alice")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}
