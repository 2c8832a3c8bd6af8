package ledger

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/campushq/unievents/server/store"
	"github.com/campushq/unievents/server/store/memory"
)

var testTime = time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*Service, *memory.Store) {
	t.Helper()

	st := memory.New()
	t.Cleanup(func() {
		_ = st.Close()
	})

	svc := New(st)
	svc.now = func() time.Time { return testTime }
	return svc, st
}

func seedDoc(t *testing.T, st store.Store, collection string, id string, v any) {
	t.Helper()

	data, err := json.Marshal(v)
	require.NoError(t, err)

	err = st.RunTransaction(context.Background(), func(tx store.Tx) error {
		return tx.Put(collection, id, data)
	})
	require.NoError(t, err)
}

func seedUser(t *testing.T, st store.Store, user User) {
	t.Helper()
	seedDoc(t, st, store.CollectionUsers, user.ID, user)
}

func seedStudent(t *testing.T, st store.Store, id string) {
	t.Helper()
	seedUser(t, st, User{ID: id, Name: id, Email: id + "@campus.test", Role: RoleStudent})
}

func seedHead(t *testing.T, st store.Store, id string, supply int) {
	t.Helper()
	seedUser(t, st, User{
		ID:              id,
		Name:            id,
		Email:           id + "@campus.test",
		Role:            RoleHead,
		TotalSupply:     supply,
		AvailableSupply: supply,
	})
}

func seedClub(t *testing.T, st store.Store, club Club) {
	t.Helper()

	if club.RequiredApprovals == 0 {
		club.RequiredApprovals = 1
	}
	seedDoc(t, st, store.CollectionClubs, club.ID, club)
	for _, admin := range club.Admins {
		seedUser(t, st, User{ID: admin, Name: admin, Role: RoleClub, ClubID: club.ID})
	}
}

func seedEvent(t *testing.T, st store.Store, event Event) {
	t.Helper()

	if event.Participants == nil {
		event.Participants = []string{}
	}
	seedDoc(t, st, store.CollectionEvents, event.ID, event)
}

func getUser(t *testing.T, svc *Service, id string) User {
	t.Helper()

	user, err := svc.GetUser(context.Background(), id)
	require.NoError(t, err)
	return user
}

func getEvent(t *testing.T, svc *Service, id string) Event {
	t.Helper()

	event, err := svc.GetEvent(context.Background(), id)
	require.NoError(t, err)
	return event
}

func getClub(t *testing.T, svc *Service, id string) Club {
	t.Helper()

	club, err := svc.GetClub(context.Background(), id)
	require.NoError(t, err)
	return club
}
