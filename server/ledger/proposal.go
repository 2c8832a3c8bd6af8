package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/campushq/unievents/server/store"
)

type CreateProposal struct {
	EventID string
	ClubID  string
	// Users are the candidate participants to be rewarded.
	Users []string
	// TokensPerUser overrides the event's reward amount when > 0.
	TokensPerUser int
	// RequiredVotes overrides the club's configured default threshold
	// when > 0.
	RequiredVotes int
}

// CreateProposal opens a reward proposal binding a candidate set to an event
// and a per-user token amount. Threshold and amount are snapshotted into the
// proposal document; later changes to the club's defaults do not affect it.
// The event must be completed before rewards can be proposed. Nothing stops
// a second proposal for the same event; the rewardedEvents guard in the
// voting engine keeps duplicates from double-paying.
func (s *Service) CreateProposal(ctx context.Context, actorID string, params CreateProposal) (Proposal, error) {
	if len(params.Users) == 0 {
		err := fmt.Errorf("proposal candidate set is empty: %w", ErrInvalidArgument)
		operationsTotal.WithLabelValues("create_proposal", statusLabel(err)).Inc()
		return Proposal{}, err
	}
	if params.RequiredVotes < 0 || params.TokensPerUser < 0 {
		err := fmt.Errorf("proposal votes and tokens must not be negative: %w", ErrInvalidArgument)
		operationsTotal.WithLabelValues("create_proposal", statusLabel(err)).Inc()
		return Proposal{}, err
	}

	var proposal Proposal
	err := s.run(ctx, "create_proposal", func(tx store.Tx) error {
		club, err := s.requireClubAdmin(tx, params.ClubID, actorID)
		if err != nil {
			return err
		}

		event, err := s.txEvent(tx, params.EventID)
		if err != nil {
			return err
		}
		if event.ClubID != params.ClubID {
			return fmt.Errorf("event %q does not belong to club %q: %w", params.EventID, params.ClubID, ErrInvalidArgument)
		}
		if event.Status(s.now()) != EventCompleted {
			return fmt.Errorf("event %q is not completed yet: %w", params.EventID, ErrInvalidArgument)
		}

		candidates := make([]string, 0, len(params.Users))
		for _, id := range params.Users {
			candidates = addToSet(candidates, id)
		}

		tokens := params.TokensPerUser
		if tokens == 0 {
			tokens = event.Tokens
		}

		required := params.RequiredVotes
		if required == 0 {
			required = club.RequiredApprovals
		}

		proposal = Proposal{
			ID:            uuid.NewString(),
			EventID:       params.EventID,
			ClubID:        params.ClubID,
			Users:         candidates,
			Tokens:        tokens,
			Votes:         map[string]map[string]bool{},
			RequiredVotes: required,
			CreatedAt:     s.now(),
		}
		return create(tx, store.CollectionProposals, proposal.ID, proposal)
	})
	if err != nil {
		return Proposal{}, err
	}
	return proposal, nil
}
