// Package ledger implements the token reward ledger: capacity-bounded event
// registration, reward proposals, multi-admin voting with exactly-once
// settlement, and the club treasury. Every mutation runs as one optimistic
// transaction against the document store so decisions are always made on
// current server-side state, never on cached copies.
package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/campushq/unievents/server/store"
)

var operationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "unievents_ledger_operations_total",
	Help: "Ledger operations by name and outcome.",
}, []string{"operation", "status"})

func New(st store.Store) *Service {
	return &Service{
		store: st,
		now:   time.Now,
	}
}

type Service struct {
	store store.Store
	// now is swapped out in tests.
	now func() time.Time
}

// run executes fn as one transaction and translates exhausted store retries
// into the ledger's own conflict error.
func (s *Service) run(ctx context.Context, operation string, fn func(tx store.Tx) error) error {
	err := s.store.RunTransaction(ctx, fn)
	if errors.Is(err, store.ErrConflict) {
		err = fmt.Errorf("%s aborted after repeated conflicts: %w", operation, ErrConflict)
	}
	operationsTotal.WithLabelValues(operation, statusLabel(err)).Inc()
	return err
}

func statusLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidArgument):
		return "invalid_argument"
	case errors.Is(err, ErrFull):
		return "full"
	case errors.Is(err, ErrLimitExceeded):
		return "limit_exceeded"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrConflict):
		return "conflict"
	default:
		return "error"
	}
}

func (s *Service) txUser(tx store.Tx, id string) (User, error) {
	doc, err := tx.Get(store.CollectionUsers, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return User{}, fmt.Errorf("user %q: %w", id, ErrNotFound)
		}
		return User{}, fmt.Errorf("failed to get user %q: %w", id, err)
	}
	return decodeUser(doc)
}

func (s *Service) txEvent(tx store.Tx, id string) (Event, error) {
	doc, err := tx.Get(store.CollectionEvents, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Event{}, fmt.Errorf("event %q: %w", id, ErrNotFound)
		}
		return Event{}, fmt.Errorf("failed to get event %q: %w", id, err)
	}
	return decodeEvent(doc)
}

func (s *Service) txClub(tx store.Tx, id string) (Club, error) {
	doc, err := tx.Get(store.CollectionClubs, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Club{}, fmt.Errorf("club %q: %w", id, ErrNotFound)
		}
		return Club{}, fmt.Errorf("failed to get club %q: %w", id, err)
	}
	return decodeClub(doc)
}

func (s *Service) txProposal(tx store.Tx, id string) (Proposal, error) {
	doc, err := tx.Get(store.CollectionProposals, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Proposal{}, fmt.Errorf("proposal %q: %w", id, ErrNotFound)
		}
		return Proposal{}, fmt.Errorf("failed to get proposal %q: %w", id, err)
	}
	return decodeProposal(doc)
}

func (s *Service) txComplaint(tx store.Tx, id string) (Complaint, error) {
	doc, err := tx.Get(store.CollectionComplaints, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Complaint{}, fmt.Errorf("complaint %q: %w", id, ErrNotFound)
		}
		return Complaint{}, fmt.Errorf("failed to get complaint %q: %w", id, err)
	}
	return decodeComplaint(doc)
}

func put(tx store.Tx, collection string, id string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s document: %w", collection, err)
	}
	return tx.Put(collection, id, data)
}

func create(tx store.Tx, collection string, id string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s document: %w", collection, err)
	}
	return tx.Create(collection, id, data)
}

// requireRole loads the actor inside the transaction and checks its role.
func (s *Service) requireRole(tx store.Tx, actorID string, roles ...Role) (User, error) {
	actor, err := s.txUser(tx, actorID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, fmt.Errorf("actor %q: %w", actorID, ErrUnauthorized)
		}
		return User{}, err
	}
	for _, role := range roles {
		if actor.Role == role {
			return actor, nil
		}
	}
	return User{}, fmt.Errorf("actor %q has role %q: %w", actorID, actor.Role, ErrUnauthorized)
}

// requireClubAdmin checks that the actor is one of the club's admins.
func (s *Service) requireClubAdmin(tx store.Tx, clubID string, actorID string) (Club, error) {
	club, err := s.txClub(tx, clubID)
	if err != nil {
		return Club{}, err
	}
	if !club.IsAdmin(actorID) {
		return Club{}, fmt.Errorf("actor %q is not an admin of club %q: %w", actorID, clubID, ErrUnauthorized)
	}
	return club, nil
}
