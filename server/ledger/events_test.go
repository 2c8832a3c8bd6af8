package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateEvent(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	seedClub(t, st, Club{ID: "club1", Name: "Robotics", Admins: []string{"adminX"}})

	event, err := svc.CreateEvent(ctx, "adminX", CreateEvent{
		Name:     "Hack Night",
		Date:     "2025-04-01",
		Venue:    "Lab 2",
		Capacity: 40,
		Tokens:   20,
		ClubID:   "club1",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, event.ID)
	assert.Equal(t, "adminX", event.CreatedBy)
	assert.Empty(t, event.Participants)
	assert.False(t, event.Completed)

	got := getEvent(t, svc, event.ID)
	assert.Equal(t, "Hack Night", got.Name)
	assert.Equal(t, 40, got.Capacity)
}

func TestCreateEvent_HeadActor(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	seedHead(t, st, "head", 0)
	seedClub(t, st, Club{ID: "club1", Name: "Robotics", Admins: []string{"adminX"}})

	_, err := svc.CreateEvent(ctx, "head", CreateEvent{
		Name:   "Town Hall",
		Date:   "2025-04-01",
		ClubID: "club1",
	})
	require.NoError(t, err)
}

func TestCreateEvent_Validation(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	seedClub(t, st, Club{ID: "club1", Name: "Robotics", Admins: []string{"adminX"}})
	seedStudent(t, st, "student")

	valid := CreateEvent{Name: "Hack Night", Date: "2025-04-01", ClubID: "club1"}

	for name, mutate := range map[string]func(*CreateEvent){
		"empty name":        func(p *CreateEvent) { p.Name = "" },
		"bad date":          func(p *CreateEvent) { p.Date = "01/04/2025" },
		"negative capacity": func(p *CreateEvent) { p.Capacity = -1 },
		"negative tokens":   func(p *CreateEvent) { p.Tokens = -5 },
		"missing club":      func(p *CreateEvent) { p.ClubID = "" },
	} {
		t.Run(name, func(t *testing.T) {
			params := valid
			mutate(&params)
			_, err := svc.CreateEvent(ctx, "adminX", params)
			assert.ErrorIs(t, err, ErrInvalidArgument)
		})
	}

	_, err := svc.CreateEvent(ctx, "student", valid)
	assert.ErrorIs(t, err, ErrUnauthorized)

	params := valid
	params.ClubID = "missing"
	_, err = svc.CreateEvent(ctx, "adminX", params)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEventStatus(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, EventCompleted, Event{Date: "2025-03-01"}.Status(now))
	assert.Equal(t, EventOngoing, Event{Date: "2025-03-10"}.Status(now))
	assert.Equal(t, EventUpcoming, Event{Date: "2025-03-11"}.Status(now))

	// The stored flag wins over the date.
	assert.Equal(t, EventCompleted, Event{Date: "2025-03-11", Completed: true}.Status(now))

	// Unparseable dates fall back to upcoming.
	assert.Equal(t, EventUpcoming, Event{Date: "soon"}.Status(now))
}

func TestMarkEventCompleted(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	seedClub(t, st, Club{ID: "club1", Name: "Robotics", Admins: []string{"adminX"}})
	seedEvent(t, st, Event{ID: "ev1", Name: "Hack Night", Date: "2025-06-01", ClubID: "club1"})
	seedStudent(t, st, "student")

	require.NoError(t, svc.MarkEventCompleted(ctx, "ev1", "adminX"))
	assert.True(t, getEvent(t, svc, "ev1").Completed)

	// Marking again is a no-op, not an error.
	require.NoError(t, svc.MarkEventCompleted(ctx, "ev1", "adminX"))
	assert.True(t, getEvent(t, svc, "ev1").Completed)

	assert.ErrorIs(t, svc.MarkEventCompleted(ctx, "ev1", "student"), ErrUnauthorized)
	assert.ErrorIs(t, svc.MarkEventCompleted(ctx, "missing", "adminX"), ErrNotFound)
}

func TestListEvents(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	seedEvent(t, st, Event{ID: "ev2", Name: "B", Date: "2025-05-01", ClubID: "club1"})
	seedEvent(t, st, Event{ID: "ev1", Name: "A", Date: "2025-04-01", ClubID: "club1"})
	seedEvent(t, st, Event{ID: "ev3", Name: "C", Date: "2025-06-01", ClubID: "club1"})

	events, err := svc.ListEvents(ctx)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, "ev1", events[0].ID)
	assert.Equal(t, "ev2", events[1].ID)
	assert.Equal(t, "ev3", events[2].ID)
}
