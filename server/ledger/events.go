package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/campushq/unievents/server/store"
)

type CreateEvent struct {
	Name        string
	Description string
	Date        string
	StartTime   string
	EndTime     string
	Venue       string
	Capacity    int
	Tokens      int
	ClubID      string
}

func (c CreateEvent) validate() error {
	if c.Name == "" {
		return fmt.Errorf("event name is required: %w", ErrInvalidArgument)
	}
	if _, err := time.Parse("2006-01-02", c.Date); err != nil {
		return fmt.Errorf("event date %q is not a valid YYYY-MM-DD date: %w", c.Date, ErrInvalidArgument)
	}
	if c.Capacity < 0 {
		return fmt.Errorf("event capacity must not be negative: %w", ErrInvalidArgument)
	}
	if c.Tokens < 0 {
		return fmt.Errorf("event token reward must not be negative: %w", ErrInvalidArgument)
	}
	if c.ClubID == "" {
		return fmt.Errorf("event club id is required: %w", ErrInvalidArgument)
	}
	return nil
}

// CreateEvent creates a new event owned by a club. The actor must be an
// admin of that club or the head user.
func (s *Service) CreateEvent(ctx context.Context, actorID string, params CreateEvent) (Event, error) {
	if err := params.validate(); err != nil {
		operationsTotal.WithLabelValues("create_event", statusLabel(err)).Inc()
		return Event{}, err
	}

	event := Event{
		ID:           uuid.NewString(),
		Name:         params.Name,
		Description:  params.Description,
		Date:         params.Date,
		StartTime:    params.StartTime,
		EndTime:      params.EndTime,
		Venue:        params.Venue,
		Capacity:     params.Capacity,
		Tokens:       params.Tokens,
		ClubID:       params.ClubID,
		CreatedBy:    actorID,
		Participants: []string{},
		CreatedAt:    s.now(),
	}

	err := s.run(ctx, "create_event", func(tx store.Tx) error {
		actor, err := s.txUser(tx, actorID)
		if err != nil {
			return err
		}
		if actor.Role != RoleHead {
			if _, err = s.requireClubAdmin(tx, params.ClubID, actorID); err != nil {
				return err
			}
		} else if _, err = s.txClub(tx, params.ClubID); err != nil {
			return err
		}
		return create(tx, store.CollectionEvents, event.ID, event)
	})
	if err != nil {
		return Event{}, err
	}
	return event, nil
}

// MarkEventCompleted sets the stored completed flag. The flag only moves
// forward; marking an already completed event is a no-op. Completion is what
// makes an event's participants eligible for reward proposals.
func (s *Service) MarkEventCompleted(ctx context.Context, eventID string, actorID string) error {
	return s.run(ctx, "mark_event_completed", func(tx store.Tx) error {
		event, err := s.txEvent(tx, eventID)
		if err != nil {
			return err
		}

		actor, err := s.txUser(tx, actorID)
		if err != nil {
			return err
		}
		if actor.Role != RoleHead {
			if _, err = s.requireClubAdmin(tx, event.ClubID, actorID); err != nil {
				return err
			}
		}

		if event.Completed {
			return nil
		}
		event.Completed = true
		return put(tx, store.CollectionEvents, eventID, event)
	})
}
