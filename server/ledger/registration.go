package ledger

import (
	"context"
	"fmt"

	"github.com/campushq/unievents/server/store"
)

// RegisterForEvent adds the user to the event's participant list. The
// capacity check and the append happen in one transaction so concurrent
// registrations near the capacity boundary cannot oversubscribe the event.
// Registering twice is a no-op.
func (s *Service) RegisterForEvent(ctx context.Context, eventID string, userID string) error {
	return s.run(ctx, "register_for_event", func(tx store.Tx) error {
		event, err := s.txEvent(tx, eventID)
		if err != nil {
			return err
		}
		if _, err = s.txUser(tx, userID); err != nil {
			return err
		}

		for _, id := range event.Participants {
			if id == userID {
				return nil
			}
		}
		if !event.Unlimited() && len(event.Participants) >= event.Capacity {
			return fmt.Errorf("event %q has %d of %d participants: %w", eventID, len(event.Participants), event.Capacity, ErrFull)
		}

		event.Participants = append(event.Participants, userID)
		return put(tx, store.CollectionEvents, eventID, event)
	})
}

// UnregisterFromEvent removes the user from the event's participant list.
// A missing event or a user that never registered is a no-op.
func (s *Service) UnregisterFromEvent(ctx context.Context, eventID string, userID string) error {
	return s.run(ctx, "unregister_from_event", func(tx store.Tx) error {
		event, err := s.txEvent(tx, eventID)
		if err != nil {
			if isNotFound(err) {
				return nil
			}
			return err
		}

		before := len(event.Participants)
		event.Participants = removeFromSet(event.Participants, userID)
		if len(event.Participants) == before {
			return nil
		}
		return put(tx, store.CollectionEvents, eventID, event)
	})
}

// AddStar bookmarks the event for the user.
func (s *Service) AddStar(ctx context.Context, eventID string, userID string) error {
	return s.run(ctx, "add_star", func(tx store.Tx) error {
		event, err := s.txEvent(tx, eventID)
		if err != nil {
			return err
		}

		before := len(event.StarredBy)
		event.StarredBy = addToSet(event.StarredBy, userID)
		if len(event.StarredBy) == before {
			return nil
		}
		return put(tx, store.CollectionEvents, eventID, event)
	})
}

// RemoveStar drops the user's bookmark of the event.
func (s *Service) RemoveStar(ctx context.Context, eventID string, userID string) error {
	return s.run(ctx, "remove_star", func(tx store.Tx) error {
		event, err := s.txEvent(tx, eventID)
		if err != nil {
			return err
		}

		before := len(event.StarredBy)
		event.StarredBy = removeFromSet(event.StarredBy, userID)
		if len(event.StarredBy) == before {
			return nil
		}
		return put(tx, store.CollectionEvents, eventID, event)
	})
}
