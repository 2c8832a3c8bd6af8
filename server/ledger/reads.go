package ledger

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/campushq/unievents/internal/tsync"
	"github.com/campushq/unievents/server/store"
)

func (s *Service) GetUser(ctx context.Context, id string) (User, error) {
	doc, err := s.store.Get(ctx, store.CollectionUsers, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return User{}, fmt.Errorf("user %q: %w", id, ErrNotFound)
		}
		return User{}, fmt.Errorf("failed to get user %q: %w", id, err)
	}
	return decodeUser(doc)
}

// GetUsersByIDs fetches several user documents in parallel. Missing users
// are skipped rather than failing the whole read.
func (s *Service) GetUsersByIDs(ctx context.Context, ids []string) ([]User, error) {
	results := make([]*User, len(ids))

	eg, ctx := tsync.ErrorGroupWithContext(ctx)
	eg.SetLimit(8)
	for i, id := range ids {
		eg.Go(func() error {
			user, err := s.GetUser(ctx, id)
			if err != nil {
				if isNotFound(err) {
					return nil
				}
				return err
			}
			results[i] = &user
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	users := make([]User, 0, len(ids))
	for _, user := range results {
		if user != nil {
			users = append(users, *user)
		}
	}
	return users, nil
}

func (s *Service) GetEvent(ctx context.Context, id string) (Event, error) {
	doc, err := s.store.Get(ctx, store.CollectionEvents, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Event{}, fmt.Errorf("event %q: %w", id, ErrNotFound)
		}
		return Event{}, fmt.Errorf("failed to get event %q: %w", id, err)
	}
	return decodeEvent(doc)
}

// ListEvents returns all events ordered by date ascending. Malformed
// documents are rejected, not silently skipped.
func (s *Service) ListEvents(ctx context.Context) ([]Event, error) {
	docs, err := s.store.List(ctx, store.CollectionEvents)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	events := make([]Event, 0, len(docs))
	for _, doc := range docs {
		event, err := decodeEvent(doc)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	slices.SortStableFunc(events, func(a, b Event) int {
		if a.Date < b.Date {
			return -1
		} else if a.Date > b.Date {
			return 1
		}
		return 0
	})
	return events, nil
}

func (s *Service) GetClub(ctx context.Context, id string) (Club, error) {
	doc, err := s.store.Get(ctx, store.CollectionClubs, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Club{}, fmt.Errorf("club %q: %w", id, ErrNotFound)
		}
		return Club{}, fmt.Errorf("failed to get club %q: %w", id, err)
	}
	return decodeClub(doc)
}

func (s *Service) ListClubs(ctx context.Context) ([]Club, error) {
	docs, err := s.store.List(ctx, store.CollectionClubs)
	if err != nil {
		return nil, fmt.Errorf("failed to list clubs: %w", err)
	}

	clubs := make([]Club, 0, len(docs))
	for _, doc := range docs {
		club, err := decodeClub(doc)
		if err != nil {
			return nil, err
		}
		clubs = append(clubs, club)
	}
	return clubs, nil
}

// ClubLedger returns the club's treasury entries, newest first, capped at
// limit when limit > 0.
func (s *Service) ClubLedger(ctx context.Context, clubID string, limit int) ([]LedgerEntry, error) {
	docs, err := s.store.List(ctx, store.CollectionLedger)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger entries: %w", err)
	}

	entries := make([]LedgerEntry, 0, len(docs))
	for _, doc := range docs {
		entry, err := decodeLedgerEntry(doc)
		if err != nil {
			return nil, err
		}
		if entry.ClubID == clubID {
			entries = append(entries, entry)
		}
	}
	slices.SortStableFunc(entries, func(a, b LedgerEntry) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func (s *Service) GetProposal(ctx context.Context, id string) (Proposal, error) {
	doc, err := s.store.Get(ctx, store.CollectionProposals, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Proposal{}, fmt.Errorf("proposal %q: %w", id, ErrNotFound)
		}
		return Proposal{}, fmt.Errorf("failed to get proposal %q: %w", id, err)
	}
	return decodeProposal(doc)
}

// ListProposals returns proposals, filtered to one club when clubID is set,
// newest first.
func (s *Service) ListProposals(ctx context.Context, clubID string) ([]Proposal, error) {
	docs, err := s.store.List(ctx, store.CollectionProposals)
	if err != nil {
		return nil, fmt.Errorf("failed to list proposals: %w", err)
	}

	proposals := make([]Proposal, 0, len(docs))
	for _, doc := range docs {
		proposal, err := decodeProposal(doc)
		if err != nil {
			return nil, err
		}
		if clubID == "" || proposal.ClubID == clubID {
			proposals = append(proposals, proposal)
		}
	}
	slices.SortStableFunc(proposals, func(a, b Proposal) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return proposals, nil
}

// ListComplaints returns complaints newest first.
func (s *Service) ListComplaints(ctx context.Context) ([]Complaint, error) {
	docs, err := s.store.List(ctx, store.CollectionComplaints)
	if err != nil {
		return nil, fmt.Errorf("failed to list complaints: %w", err)
	}

	complaints := make([]Complaint, 0, len(docs))
	for _, doc := range docs {
		complaint, err := decodeComplaint(doc)
		if err != nil {
			return nil, err
		}
		complaints = append(complaints, complaint)
	}
	slices.SortStableFunc(complaints, func(a, b Complaint) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return complaints, nil
}

// WatchEvents subscribes to event document changes. The caller must Close
// the subscription when done with it.
func (s *Service) WatchEvents(ctx context.Context) (*store.Subscription, error) {
	return s.store.Watch(ctx, store.CollectionEvents)
}

// WatchProposals subscribes to proposal document changes. The caller must
// Close the subscription when done with it.
func (s *Service) WatchProposals(ctx context.Context) (*store.Subscription, error) {
	return s.store.Watch(ctx, store.CollectionProposals)
}
